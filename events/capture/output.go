package capture

// CaptureStartRequestedEvent asks the voice handler to open a capture
// session. A second request while a session is active is a no-op.
type CaptureStartRequestedEvent struct{}

func (e *CaptureStartRequestedEvent) GetId() string {
	return "capture.start_requested"
}

type CaptureStopRequestedEvent struct{}

func (e *CaptureStopRequestedEvent) GetId() string {
	return "capture.stop_requested"
}

// CaptureInterimEvent carries a partial transcript, mirrored live into the
// widget's input field.
type CaptureInterimEvent struct {
	Text string
}

func (e *CaptureInterimEvent) GetId() string {
	return "capture.interim"
}

// CaptureFinalEvent is one of the three terminal events of a capture session.
type CaptureFinalEvent struct {
	Text string
}

func (e *CaptureFinalEvent) GetId() string {
	return "capture.final"
}

type CaptureErrorEvent struct {
	Reason string
}

func (e *CaptureErrorEvent) GetId() string {
	return "capture.error"
}

// CaptureEndedEvent signals that the platform recognizer ended the session on
// its own (silence timeout, user dismissal) without a final result.
type CaptureEndedEvent struct{}

func (e *CaptureEndedEvent) GetId() string {
	return "capture.ended"
}

// CaptureAudioChunkEvent carries one μ-law encoded microphone frame from a
// widget running in stream-capture mode.
type CaptureAudioChunkEvent struct {
	Data []byte
}

func (e *CaptureAudioChunkEvent) GetId() string {
	return "capture.audio_chunk"
}

// CaptureBeginRenderEvent is the render command telling the widget which
// capture mode to start.
type CaptureBeginRenderEvent struct {
	Mode string // "platform" or "stream"
}

func (e *CaptureBeginRenderEvent) GetId() string {
	return "capture.begin_render"
}

// CaptureEndRenderEvent tells the widget to stop capturing.
type CaptureEndRenderEvent struct{}

func (e *CaptureEndRenderEvent) GetId() string {
	return "capture.end_render"
}
