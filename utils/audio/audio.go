package audio

import "github.com/zaf/g711"

// Widget microphone frames arrive as 8 kHz mono µ-law, the same framing
// telephony media streams use. The transcription service wants 16-bit LPCM.

const (
	StreamSampleRate = 8000
	StreamChannels   = 1
)

// ULawBytesToPCM converts a µ-law frame to 16-bit little-endian PCM bytes
// using the ITU-T G.711 standard.
func ULawBytesToPCM(uBytes []byte) []byte {
	return g711.DecodeUlaw(uBytes)
}
