package voice

// VoiceConfig describes the capture capabilities negotiated with the widget
// at register time and the locale used for playback and transcription.
type VoiceConfig struct {
	// Locale is the BCP 47 tag used to pick a voice and a recognition model.
	Locale string `json:"locale"`
	// PlatformSTT is true when the widget runs a native recognizer and sends
	// transcripts itself.
	PlatformSTT bool `json:"platform_stt"`
	// MicStream is true when the widget can stream raw microphone frames for
	// server-side transcription, the fallback for platforms without a native
	// recognizer.
	MicStream bool `json:"mic_stream"`
}

// DefaultConfig returns a VoiceConfig with the widget's deployment locale.
func DefaultConfig() VoiceConfig {
	return VoiceConfig{Locale: "it-IT"}
}
