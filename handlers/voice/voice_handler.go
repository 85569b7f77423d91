package voice

import (
	"context"

	"assistkit/core"
	"assistkit/events/capture"
	"assistkit/events/playback"
	"assistkit/events/ui"
	"assistkit/services/transcribe"
	"assistkit/session"
	"assistkit/utils/audio"
)

const relayerName = "VoiceHandler"

const unsupportedMessage = "Il riconoscimento vocale non è disponibile su questo dispositivo"

type captureState int

const (
	stateIdle captureState = iota
	stateCapturing
)

type captureMode int

const (
	modePlatform captureMode = iota
	modeStream
)

// VoiceHandler mediates speech capture and playback. At most one capture
// session is active at a time; each session ends with exactly one terminal
// transition (final transcript, error, or external end), all of which return
// the handler to idle and clear the session's listening flag.
//
// Platform capture is preferred: the widget runs its own recognizer and sends
// transcripts. Widgets without one fall back to streaming µ-law microphone
// frames, which are decoded and piped through the transcription service.
type VoiceHandler struct {
	core.BaseHandler
	sess        *session.Session
	config      VoiceConfig
	transcriber transcribe.Service // nil when stream capture is not configured

	state      captureState
	mode       captureMode
	resultChan chan transcribe.Result
	errChan    chan error
}

func NewVoiceHandler(sess *session.Session, config VoiceConfig, transcriber transcribe.Service, logger *core.Logger) *VoiceHandler {
	h := &VoiceHandler{
		sess:        sess,
		config:      config,
		transcriber: transcriber,
	}
	h.Logger = logger
	return h
}

func (h *VoiceHandler) Initialize(
	inputChan <-chan *core.EventPacket,
	outputNextChan chan<- *core.EventPacket,
	outputTopChan chan<- *core.EventPacket,
	ctx context.Context,
) error {
	h.resultChan = make(chan transcribe.Result, 8)
	h.errChan = make(chan error, 1)
	if err := h.BaseHandler.Initialize(inputChan, outputNextChan, outputTopChan, ctx); err != nil {
		return err
	}
	if h.transcriber != nil {
		if err := h.transcriber.Initialize(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *VoiceHandler) Start() error {
	go h.eventLoop()
	return nil
}

func (h *VoiceHandler) eventLoop() {
	for {
		select {
		case packet := <-h.InputChan:
			if err := h.HandleEvent(packet); err != nil {
				h.Logger.Error("voice event failed", "event", packet.Event.GetId(), "error", err)
			}
		case result := <-h.resultChan:
			// Transcripts from the server-side transcriber take the same
			// transitions as platform transcripts.
			if result.Final {
				h.onFinalTranscript(result.Text)
			} else {
				h.onInterimTranscript(result.Text)
			}
		case err := <-h.errChan:
			h.onCaptureError(err.Error())
		case <-h.Ctx.Done():
			return
		}
	}
}

func (h *VoiceHandler) HandleEvent(packet *core.EventPacket) error {
	switch e := packet.Event.(type) {
	case *capture.CaptureStartRequestedEvent:
		h.startCapture()
		return nil
	case *capture.CaptureStopRequestedEvent:
		h.endCapture(true)
		return nil
	case *capture.CaptureInterimEvent:
		h.onInterimTranscript(e.Text)
		return nil
	case *capture.CaptureFinalEvent:
		h.onFinalTranscript(e.Text)
		return nil
	case *capture.CaptureErrorEvent:
		h.onCaptureError(e.Reason)
		return nil
	case *capture.CaptureEndedEvent:
		// The platform recognizer ended the session on its own.
		h.endCapture(false)
		return nil
	case *capture.CaptureAudioChunkEvent:
		h.onAudioChunk(e.Data)
		return nil

	case *playback.PlaybackRequestEvent:
		h.speak(e.Text)
		return nil
	case *playback.VoiceOutputToggledEvent:
		if !e.Enabled {
			// Disabling voice output silences any in-flight utterance at once.
			h.sendTop(&playback.SpeakCancelRenderEvent{})
		}
		return nil

	default:
		h.SendPacket(packet)
		return nil
	}
}

func (h *VoiceHandler) startCapture() {
	if h.state == stateCapturing {
		// A second activation while listening is a no-op.
		h.Logger.Debug("capture already active, ignoring start request")
		return
	}

	switch {
	case h.config.PlatformSTT:
		h.mode = modePlatform
		h.sendTop(&capture.CaptureBeginRenderEvent{Mode: "platform"})

	case h.config.MicStream && h.transcriber != nil:
		h.mode = modeStream
		if err := h.transcriber.StartSession(h.resultChan, h.errChan); err != nil {
			h.Logger.Error("transcription session failed to start", "error", err)
			h.notify(unsupportedMessage, ui.SeverityWarning)
			return
		}
		h.sendTop(&capture.CaptureBeginRenderEvent{Mode: "stream"})

	default:
		// Capability absent: advisory only, no state change.
		h.notify(unsupportedMessage, ui.SeverityWarning)
		return
	}

	h.state = stateCapturing
	h.sess.SetListening(true)
}

func (h *VoiceHandler) onInterimTranscript(transcript string) {
	if h.state != stateCapturing {
		return
	}
	// Live-typing effect: partial transcripts mirror into the input field.
	h.sendTop(&ui.SetInputTextEvent{Text: transcript})
}

func (h *VoiceHandler) onFinalTranscript(transcript string) {
	if h.state != stateCapturing {
		return
	}
	h.sendTop(&ui.SetInputTextEvent{Text: transcript})
	h.endCapture(true)
}

func (h *VoiceHandler) onCaptureError(reason string) {
	if h.state != stateCapturing {
		return
	}
	h.notify("Errore del riconoscimento vocale: "+reason, ui.SeverityError)
	h.endCapture(true)
}

// endCapture is the single exit path for a capture session, guaranteeing one
// terminal transition per session. tellWidget is false when the widget itself
// reported the end.
func (h *VoiceHandler) endCapture(tellWidget bool) {
	if h.state != stateCapturing {
		return
	}
	h.state = stateIdle
	h.sess.SetListening(false)
	if h.mode == modeStream && h.transcriber != nil {
		if err := h.transcriber.Close(); err != nil {
			h.Logger.Warn("transcriber close failed", "error", err)
		}
	}
	if tellWidget {
		h.sendTop(&capture.CaptureEndRenderEvent{})
	}
}

func (h *VoiceHandler) onAudioChunk(ulaw []byte) {
	if h.state != stateCapturing || h.mode != modeStream || h.transcriber == nil {
		return
	}
	pcm := audio.ULawBytesToPCM(ulaw)
	if err := h.transcriber.SendAudio(pcm); err != nil {
		h.Logger.Warn("audio frame dropped", "error", err)
	}
}

// speak forwards text to the widget's synthesis layer. Any in-flight
// utterance is cancelled first so at most one is audible. Playback is
// fire-and-forget; no completion callback is consumed.
func (h *VoiceHandler) speak(plainText string) {
	if !h.sess.VoiceOutput() {
		return // playback suppressed, not an error
	}
	h.sendTop(&playback.SpeakCancelRenderEvent{})
	h.sendTop(&playback.SpeakRenderEvent{Text: plainText, Locale: h.config.Locale})
}

func (h *VoiceHandler) notify(message string, severity ui.Severity) {
	h.SendPacket(core.NewEventPacket(
		&ui.NotificationEvent{Message: message, Severity: severity},
		core.EventRelayDestinationNextHandler, relayerName,
	))
}

func (h *VoiceHandler) sendTop(event core.IEvent) {
	h.SendPacket(core.NewEventPacket(event, core.EventRelayDestinationTopHandler, relayerName))
}

func (h *VoiceHandler) Cleanup() error {
	if h.transcriber != nil {
		return h.transcriber.Close()
	}
	return nil
}

func (h *VoiceHandler) Reset() error {
	h.state = stateIdle
	h.sess.SetListening(false)
	return nil
}
