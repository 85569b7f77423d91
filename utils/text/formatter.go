package text

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format annotates a raw assistant reply for display: bare URLs become
// anchors, phone numbers and times of day are emphasised, and a few domain
// keywords gain a leading glyph. The pipeline order is fixed — anchors are
// swapped for placeholders first so the digit and keyword rules can never
// touch a link target. Apply exactly once per raw reply; re-running over
// already-annotated output is undefined.
func Format(text string) string {
	out, anchors := linkify(text)
	out = highlightPhoneNumbers(out)
	out = highlightTimes(out)
	out = annotateKeywords(out)
	return restoreAnchors(out, anchors)
}

var (
	urlRegex   = regexp.MustCompile(`https?://[^\s<]+`)
	phoneRegex = regexp.MustCompile(`\b\d{3,4} \d{3,4} \d{3,4}\b`)
	timeRegex  = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

// trailingPunct are characters stripped from the end of a matched URL: a
// sentence-final "http://example.com/a," should link example.com/a, not the
// comma.
const trailingPunct = ".,!?)"

var keywordGlyphs = []struct {
	pattern *regexp.Regexp
	glyph   string
}{
	{regexp.MustCompile(`(?i)\bpronto soccorso\b`), "🚑"},
	{regexp.MustCompile(`(?i)\bcup\b`), "📅"},
}

// linkify replaces each bare URL with an anchor, then swaps the anchor for an
// opaque placeholder so later rules cannot match digits or keywords inside
// the href. restoreAnchors reverses the swap at the end of the pipeline.
func linkify(text string) (string, []string) {
	var anchors []string
	out := urlRegex.ReplaceAllStringFunc(text, func(match string) string {
		url := strings.TrimRight(match, trailingPunct)
		trailer := match[len(url):]
		anchors = append(anchors, fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`, url, url))
		return placeholder(len(anchors)-1) + trailer
	})
	return out, anchors
}

func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

func restoreAnchors(text string, anchors []string) string {
	for i, anchor := range anchors {
		text = strings.Replace(text, placeholder(i), anchor, 1)
	}
	return text
}

func highlightPhoneNumbers(text string) string {
	return phoneRegex.ReplaceAllString(text, "<strong>${0}</strong>")
}

func highlightTimes(text string) string {
	return timeRegex.ReplaceAllString(text, "<strong>${0}</strong>")
}

func annotateKeywords(text string) string {
	for _, kw := range keywordGlyphs {
		text = kw.pattern.ReplaceAllString(text, kw.glyph+" ${0}")
	}
	return text
}
