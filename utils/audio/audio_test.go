package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestULawBytesToPCMDoublesLength(t *testing.T) {
	frame := []byte{0xFF, 0x7F, 0x00, 0x80}
	pcm := ULawBytesToPCM(frame)
	assert.Len(t, pcm, len(frame)*2)
}

func TestULawSilenceDecodesNearZero(t *testing.T) {
	// 0xFF is µ-law digital silence.
	pcm := ULawBytesToPCM([]byte{0xFF})
	s := int16(binary.LittleEndian.Uint16(pcm))
	assert.InDelta(t, 0, int(s), 8)
}
