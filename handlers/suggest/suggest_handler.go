package suggest

import (
	"assistkit/core"
	"assistkit/events/turn"
	"assistkit/events/ui"
)

const relayerName = "SuggestHandler"

// SuggestHandler renders server-suggested follow-up prompts. Suggestions are
// replaced on every reply, never accumulated; an empty set hides the strip,
// and the strip is hidden while a turn is pending. Clicks come back through
// the transport as ordinary submissions.
type SuggestHandler struct {
	core.BaseHandler
}

func NewSuggestHandler(logger *core.Logger) *SuggestHandler {
	h := &SuggestHandler{}
	h.Logger = logger
	return h
}

func (h *SuggestHandler) Start() error {
	go h.eventLoop()
	return nil
}

func (h *SuggestHandler) eventLoop() {
	for {
		select {
		case packet := <-h.InputChan:
			if err := h.HandleEvent(packet); err != nil {
				h.Logger.Error("suggest event failed", "event", packet.Event.GetId(), "error", err)
			}
		case <-h.Ctx.Done():
			return
		}
	}
}

func (h *SuggestHandler) HandleEvent(packet *core.EventPacket) error {
	switch e := packet.Event.(type) {
	case *turn.TurnStartedEvent:
		h.render(nil)
	case *turn.TurnSucceededEvent:
		h.render(e.Suggestions)
	default:
	}

	h.SendPacket(packet)
	return nil
}

func (h *SuggestHandler) render(items []string) {
	h.SendPacket(core.NewEventPacket(
		&ui.SuggestionsRenderEvent{Items: items},
		core.EventRelayDestinationTopHandler, relayerName,
	))
}
