package transport

import (
	"context"

	"assistkit/core"
	"assistkit/events/capture"
	"assistkit/events/playback"
	"assistkit/events/turn"
	"assistkit/events/ui"
	"assistkit/protocol"
	"assistkit/transports/widget"
)

const relayerName = "TransportHandler"

// Transport is the connection to the widget surface.
type Transport interface {
	Send(msgType protocol.MessageType, payload interface{}) error
	StartReceiving(outputChan chan<- widget.InboundMessage, errorChan chan<- error)
	Close() error
}

// TransportHandler sits at the top of the pipeline. Inbound widget messages
// become events flowing down the chain; events echoed back to the top become
// render commands sent to the widget, then continue downstream so the other
// handlers can observe them.
type TransportHandler struct {
	core.BaseHandler
	service     Transport
	inboundChan chan widget.InboundMessage
	errorChan   chan error
}

func NewTransportHandler(service Transport, logger *core.Logger) *TransportHandler {
	h := &TransportHandler{service: service}
	h.Logger = logger
	return h
}

func (h *TransportHandler) Initialize(
	inputChan <-chan *core.EventPacket,
	outputNextChan chan<- *core.EventPacket,
	outputTopChan chan<- *core.EventPacket,
	ctx context.Context,
) error {
	h.inboundChan = make(chan widget.InboundMessage, 32)
	h.errorChan = make(chan error, 1)
	return h.BaseHandler.Initialize(inputChan, outputNextChan, outputTopChan, ctx)
}

func (h *TransportHandler) Start() error {
	h.service.StartReceiving(h.inboundChan, h.errorChan)
	go h.eventLoop()
	return nil
}

func (h *TransportHandler) eventLoop() {
	for {
		select {
		case msg := <-h.inboundChan:
			h.handleInbound(msg)
		case packet := <-h.InputChan:
			if err := h.HandleEvent(packet); err != nil {
				h.Logger.Error("transport render failed", "event", packet.Event.GetId(), "error", err)
			}
		case err := <-h.errorChan:
			// The widget connection is gone; there is nothing left to render to.
			h.Logger.Info("widget connection closed", "reason", err.Error())
			h.SendPacket(core.NewEventPacket(
				&core.EndSessionEvent{Reason: err.Error()},
				core.EventRelayDestinationTopHandler, relayerName,
			))
			return
		case <-h.Ctx.Done():
			return
		}
	}
}

// handleInbound translates one widget message into a pipeline event.
func (h *TransportHandler) handleInbound(msg widget.InboundMessage) {
	emit := func(event core.IEvent) {
		h.SendPacket(core.NewEventPacket(event, core.EventRelayDestinationNextHandler, relayerName))
	}

	switch msg.Type {
	case protocol.MsgSubmit, protocol.MsgSuggestionClick:
		// A suggestion click behaves identically to typing the text and
		// submitting it.
		p, err := protocol.UnmarshalPayload[protocol.SubmitPayload](msg.Payload)
		if err != nil {
			h.Logger.Warn("bad submit payload", "error", err)
			return
		}
		emit(&turn.TurnSubmittedEvent{Text: p.Text})

	case protocol.MsgCaptureStart:
		emit(&capture.CaptureStartRequestedEvent{})
	case protocol.MsgCaptureStop:
		emit(&capture.CaptureStopRequestedEvent{})

	case protocol.MsgCaptureInterim:
		p, err := protocol.UnmarshalPayload[protocol.CaptureTranscriptPayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&capture.CaptureInterimEvent{Text: p.Text})
	case protocol.MsgCaptureFinal:
		p, err := protocol.UnmarshalPayload[protocol.CaptureTranscriptPayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&capture.CaptureFinalEvent{Text: p.Text})
	case protocol.MsgCaptureError:
		p, err := protocol.UnmarshalPayload[protocol.CaptureErrorPayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&capture.CaptureErrorEvent{Reason: p.Reason})
	case protocol.MsgCaptureEnded:
		emit(&capture.CaptureEndedEvent{})

	case protocol.MsgAudioFrame:
		p, err := protocol.UnmarshalPayload[protocol.AudioFramePayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&capture.CaptureAudioChunkEvent{Data: p.Data})

	case protocol.MsgVoiceToggle:
		p, err := protocol.UnmarshalPayload[protocol.VoiceTogglePayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&ui.VoiceOutputToggleRequestedEvent{Enabled: p.Enabled})

	case protocol.MsgFontSize:
		p, err := protocol.UnmarshalPayload[protocol.FontSizePayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&ui.FontScaleRequestedEvent{Steps: p.Steps})

	case protocol.MsgFeedback:
		p, err := protocol.UnmarshalPayload[protocol.FeedbackPayload](msg.Payload)
		if err != nil {
			return
		}
		emit(&turn.TurnFeedbackEvent{TurnId: p.TurnId, Positive: p.Positive})

	default:
		h.Logger.Warn("unhandled widget message", "type", string(msg.Type))
	}
}

// HandleEvent renders a top-echoed event to the widget, then re-relays it
// down the chain so the notify and suggest handlers can observe it. The
// destination is rewritten to next-handler first or the packet would bounce
// to the top forever.
func (h *TransportHandler) HandleEvent(packet *core.EventPacket) error {
	var sendErr error
	send := func(msgType protocol.MessageType, payload interface{}) {
		if err := h.service.Send(msgType, payload); err != nil {
			sendErr = err
		}
	}

	switch e := packet.Event.(type) {
	case *turn.TurnStartedEvent:
		send(protocol.MsgTurnStarted, protocol.TurnStartedPayload{TurnId: e.TurnId, UserText: e.UserText})
	case *turn.TurnSucceededEvent:
		send(protocol.MsgTurnSucceeded, protocol.TurnSucceededPayload{
			TurnId:        e.TurnId,
			Html:          e.FormattedText,
			Intent:        e.Intent,
			Elapsed:       e.Elapsed,
			ServerElapsed: e.ServerElapsed,
			Cached:        e.Cached,
		})
		// The input field is cleared only once the turn has resolved.
		send(protocol.MsgClearInput, nil)
	case *turn.TurnFailedEvent:
		send(protocol.MsgTurnFailed, protocol.TurnFailedPayload{TurnId: e.TurnId, Message: e.Message})
		send(protocol.MsgClearInput, nil)
	case *ui.SetInputTextEvent:
		send(protocol.MsgSetInput, protocol.SetInputPayload{Text: e.Text})
	case *ui.NotificationShowEvent:
		send(protocol.MsgNotification, protocol.NotificationPayload{Uid: e.Uid, Message: e.Message, Severity: string(e.Severity)})
	case *ui.NotificationDismissEvent:
		send(protocol.MsgNotificationDismiss, protocol.NotificationDismissPayload{Uid: e.Uid})
	case *ui.StatusRenderEvent:
		send(protocol.MsgStatus, protocol.StatusPayload{Message: e.Message, Visible: e.Visible})
	case *ui.SuggestionsRenderEvent:
		send(protocol.MsgSuggestions, protocol.SuggestionsPayload{Items: e.Items})
	case *ui.FontScaleAppliedEvent:
		send(protocol.MsgFontScale, protocol.FontScalePayload{Scale: e.Scale})
	case *playback.SpeakRenderEvent:
		send(protocol.MsgSpeak, protocol.SpeakPayload{Text: e.Text, Locale: e.Locale})
	case *playback.SpeakCancelRenderEvent:
		send(protocol.MsgSpeakCancel, nil)
	case *capture.CaptureBeginRenderEvent:
		send(protocol.MsgCaptureBegin, protocol.CaptureBeginPayload{Mode: e.Mode})
	case *capture.CaptureEndRenderEvent:
		send(protocol.MsgCaptureEnd, nil)
	default:
	}

	packet.Destination = core.EventRelayDestinationNextHandler
	h.SendPacket(packet)
	return sendErr
}

func (h *TransportHandler) Cleanup() error {
	return h.service.Close()
}

func (h *TransportHandler) Reset() error {
	return nil
}
