package notify

import (
	"context"
	"time"

	"assistkit/core"
	"assistkit/events/turn"
	"assistkit/events/ui"
)

const relayerName = "NotifyHandler"

// NotifyConfig controls the advisory surface.
type NotifyConfig struct {
	// DisplayInterval is how long a transient advisory stays visible.
	DisplayInterval time.Duration `json:"-"`
	// ProcessingMessage is the persistent indicator text while a turn is in
	// flight.
	ProcessingMessage string `json:"processing_message"`
}

// DefaultConfig returns a NotifyConfig with the standard display interval.
func DefaultConfig() NotifyConfig {
	return NotifyConfig{
		DisplayInterval:   3 * time.Second,
		ProcessingMessage: "Sto cercando la risposta…",
	}
}

// NotifyHandler drives the advisory surface: transient notifications that
// self-dismiss after the display interval (several may be visible at once, no
// de-duplication or queueing) and the single persistent processing indicator,
// which follows the turn lifecycle.
type NotifyHandler struct {
	core.BaseHandler
	config      NotifyConfig
	dismissChan chan string
}

func NewNotifyHandler(config NotifyConfig, logger *core.Logger) *NotifyHandler {
	h := &NotifyHandler{config: config}
	h.Logger = logger
	return h
}

func (h *NotifyHandler) Initialize(
	inputChan <-chan *core.EventPacket,
	outputNextChan chan<- *core.EventPacket,
	outputTopChan chan<- *core.EventPacket,
	ctx context.Context,
) error {
	h.dismissChan = make(chan string, 16)
	return h.BaseHandler.Initialize(inputChan, outputNextChan, outputTopChan, ctx)
}

func (h *NotifyHandler) Start() error {
	go h.eventLoop()
	return nil
}

func (h *NotifyHandler) eventLoop() {
	for {
		select {
		case packet := <-h.InputChan:
			if err := h.HandleEvent(packet); err != nil {
				h.Logger.Error("notify event failed", "event", packet.Event.GetId(), "error", err)
			}
		case uid := <-h.dismissChan:
			h.SendPacket(core.NewEventPacket(
				&ui.NotificationDismissEvent{Uid: uid},
				core.EventRelayDestinationTopHandler, relayerName,
			))
		case <-h.Ctx.Done():
			return
		}
	}
}

func (h *NotifyHandler) HandleEvent(packet *core.EventPacket) error {
	switch e := packet.Event.(type) {
	case *ui.NotificationEvent:
		// The packet uid doubles as the display uid so dismissal can target
		// exactly this advisory.
		uid := packet.Uid
		h.SendPacket(core.NewEventPacket(
			&ui.NotificationShowEvent{Uid: uid, Message: e.Message, Severity: e.Severity},
			core.EventRelayDestinationTopHandler, relayerName,
		))
		time.AfterFunc(h.config.DisplayInterval, func() {
			select {
			case h.dismissChan <- uid:
			case <-h.Ctx.Done():
			}
		})
		return nil

	case *turn.TurnStartedEvent:
		h.setStatus(h.config.ProcessingMessage, true)
	case *turn.TurnSucceededEvent:
		h.setStatus("", false)
	case *turn.TurnFailedEvent:
		h.setStatus("", false)
	default:
	}

	h.SendPacket(packet)
	return nil
}

// setStatus replaces the single persistent indicator; newest wins.
func (h *NotifyHandler) setStatus(message string, visible bool) {
	h.SendPacket(core.NewEventPacket(
		&ui.StatusRenderEvent{Message: message, Visible: visible},
		core.EventRelayDestinationTopHandler, relayerName,
	))
}
