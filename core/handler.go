package core

import "context"

type IHandler interface {
	Initialize(
		inputChan <-chan *EventPacket,
		outputNextChan chan<- *EventPacket,
		outputTopChan chan<- *EventPacket,
		ctx context.Context,
	) error
	Start() error // Starts the handler's main loop. This is where the handler begins processing events.
	HandleEvent(packet *EventPacket) error

	Cleanup() error // Cleans up resources used by the handler.
	Reset() error   // Resets the handler to its initial state.
}

// BaseHandler carries the channel plumbing shared by every pipeline handler.
// Concrete handlers embed it and implement Start with their own select loop
// so that all state mutation happens on a single goroutine per handler.
type BaseHandler struct {
	Ctx       context.Context
	InputChan <-chan *EventPacket
	Logger    *Logger

	outputNextChan chan<- *EventPacket
	outputTopChan  chan<- *EventPacket
}

func (h *BaseHandler) Initialize(
	inputChan <-chan *EventPacket,
	outputNextChan chan<- *EventPacket,
	outputTopChan chan<- *EventPacket,
	ctx context.Context,
) error {
	h.InputChan = inputChan
	h.outputNextChan = outputNextChan
	h.outputTopChan = outputTopChan
	h.Ctx = ctx
	if h.Logger == nil {
		h.Logger = GetLogger()
	}
	return nil
}

func (h *BaseHandler) SendPacket(packet *EventPacket) {
	switch packet.Destination {
	case EventRelayDestinationNextHandler:
		h.outputNextChan <- packet
	case EventRelayDestinationTopHandler:
		h.outputTopChan <- packet
	default:
		// Default to the next handler if the destination is unrecognized.
		h.outputNextChan <- packet
	}
}

func (h *BaseHandler) Cleanup() error {
	return nil
}

func (h *BaseHandler) Reset() error {
	return nil
}
