package playback

// PlaybackRequestEvent asks the voice handler to speak the given text. The
// dispatcher only emits it with the unformatted reply; annotation markup must
// never reach the speech layer.
type PlaybackRequestEvent struct {
	Text string
}

func (e *PlaybackRequestEvent) GetId() string {
	return "playback.request"
}

// VoiceOutputToggledEvent propagates the voice-output switch after the
// dispatcher has recorded it on the session.
type VoiceOutputToggledEvent struct {
	Enabled bool
}

func (e *VoiceOutputToggledEvent) GetId() string {
	return "playback.voice_output_toggled"
}

// SpeakRenderEvent is the render command telling the widget to start an
// utterance with a locale-matching voice.
type SpeakRenderEvent struct {
	Text   string
	Locale string
}

func (e *SpeakRenderEvent) GetId() string {
	return "playback.speak_render"
}

// SpeakCancelRenderEvent tells the widget to stop any in-flight utterance.
type SpeakCancelRenderEvent struct{}

func (e *SpeakCancelRenderEvent) GetId() string {
	return "playback.speak_cancel_render"
}
