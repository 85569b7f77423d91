package runner

import (
	"context"
	"sync"

	"assistkit/core"
)

// Runner wires a pipeline of handlers together with buffered channels and
// pumps top-destined packets back to the first handler. One runner per
// widget session.
type Runner struct {
	Handlers []core.IHandler

	logger         *core.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	topOutputChan  chan *core.EventPacket
	lastOutputChan chan *core.EventPacket
	stopOnce       sync.Once
	done           chan struct{}
}

func NewRunner(handlers []core.IHandler, logger *core.Logger) *Runner {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Runner{
		Handlers: handlers,
		logger:   logger.With(map[string]interface{}{"component": "runner"}),
		done:     make(chan struct{}),
	}
}

func (r *Runner) Start() error {
	if len(r.Handlers) == 0 {
		close(r.done)
		return nil
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.topOutputChan = make(chan *core.EventPacket, 100)
	r.lastOutputChan = make(chan *core.EventPacket, 100)

	// Create channels for each handler's input.
	inputChans := make([]chan *core.EventPacket, len(r.Handlers))
	for i := range inputChans {
		inputChans[i] = make(chan *core.EventPacket, 100)
	}

	// Initialize handlers with proper channel connections.
	for i, handler := range r.Handlers {
		var outputNextChan chan<- *core.EventPacket

		if i < len(r.Handlers)-1 {
			// Not the last handler: output goes to the next handler's input.
			outputNextChan = inputChans[i+1]
		} else {
			// Last handler: output goes to our capture channel.
			outputNextChan = r.lastOutputChan
		}

		err := handler.Initialize(
			inputChans[i],
			outputNextChan,
			r.topOutputChan,
			r.ctx,
		)
		if err != nil {
			r.cancel()
			return err
		}

		if err := handler.Start(); err != nil {
			r.cancel()
			return err
		}
	}

	go r.listenToOutputs()

	return nil
}

// Done is closed when the pipeline has stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) listenToOutputs() {
	for {
		select {
		case packet := <-r.lastOutputChan:
			// Events that reached the end of the chain are fully consumed.
			_ = packet
		case packet := <-r.topOutputChan:
			r.processTopOutput(packet)
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Runner) processTopOutput(packet *core.EventPacket) {
	switch e := packet.Event.(type) {
	case *core.EndSessionEvent:
		r.logger.Info("session ended", "reason", e.Reason)
		go r.Stop()
	case *core.CriticalErrorEvent:
		r.logger.Error("pipeline critical error", "error", e.Error)
		go r.Stop()
	default:
		// Echo back to the first handler, which renders and re-relays.
		if err := r.Handlers[0].HandleEvent(packet); err != nil {
			r.logger.Error("top echo failed", "event", packet.Event.GetId(), "error", err)
		}
	}
}

func (r *Runner) Stop() error {
	var firstErr error
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		for _, handler := range r.Handlers {
			if err := handler.Cleanup(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		close(r.done)
	})
	return firstErr
}

func (r *Runner) Reset() error {
	var firstErr error
	for _, handler := range r.Handlers {
		if err := handler.Reset(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
