package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLinkifyStripsTrailingPunctuation(t *testing.T) {
	got := Format("Visita http://example.com/a,")

	assert.Contains(t, got, `<a href="http://example.com/a" target="_blank" rel="noopener">http://example.com/a</a>`)
	// The comma stays outside the anchor.
	assert.Contains(t, got, `</a>,`)
}

func TestFormatHighlightsPhoneNumbers(t *testing.T) {
	got := Format("Chiama 045 807 1111 per informazioni")

	assert.Equal(t, "Chiama <strong>045 807 1111</strong> per informazioni", got)
}

func TestFormatHighlightsTimes(t *testing.T) {
	got := Format("Aperto dalle 8:30 alle 17:00")

	assert.Equal(t, "Aperto dalle <strong>8:30</strong> alle <strong>17:00</strong>", got)
}

func TestFormatAnnotatesKeywords(t *testing.T) {
	got := Format("Il Pronto Soccorso è aperto, prenota al CUP")

	assert.Contains(t, got, "🚑 Pronto Soccorso")
	assert.Contains(t, got, "📅 CUP")
}

func TestFormatDoesNotTouchLinkTargets(t *testing.T) {
	// Digits and keywords inside a URL must survive untouched: the anchor is
	// placeholdered before the phone/time/keyword rules run.
	got := Format("Orari su https://ulss9.it/cup/045 807 1111")

	assert.Contains(t, got, `href="https://ulss9.it/cup/045`)
	assert.NotContains(t, got, `href="https://ulss9.it/📅`)
}

func TestFormatDeterministic(t *testing.T) {
	in := "Chiama 045 807 1111 o visita http://example.com alle 9:15"

	first := Format(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Format(in))
	}
}

func TestFormatPlainTextUnchanged(t *testing.T) {
	in := "Nessun numero, nessun link e nessuna parola chiave qui."
	assert.Equal(t, in, Format(in))
}
