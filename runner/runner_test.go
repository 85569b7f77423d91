package runner

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistkit/core"
)

type pingEvent struct{}

func (e *pingEvent) GetId() string { return "test.ping" }

type pongEvent struct{}

func (e *pongEvent) GetId() string { return "test.pong" }

// headProbe stands in for the transport at the top of the chain: it records
// events echoed to it and re-relays them downstream, and lets tests inject
// events as if they came from the outside.
type headProbe struct {
	core.BaseHandler
	inject chan core.IEvent

	mu       sync.Mutex
	rendered []string
}

func newHeadProbe() *headProbe {
	return &headProbe{inject: make(chan core.IEvent, 8)}
}

func (h *headProbe) Start() error {
	go func() {
		for {
			select {
			case event := <-h.inject:
				h.SendPacket(core.NewEventPacket(event, core.EventRelayDestinationNextHandler, "headProbe"))
			case packet := <-h.InputChan:
				h.SendPacket(packet)
			case <-h.Ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (h *headProbe) HandleEvent(packet *core.EventPacket) error {
	h.mu.Lock()
	h.rendered = append(h.rendered, packet.Event.GetId())
	h.mu.Unlock()
	packet.Destination = core.EventRelayDestinationNextHandler
	h.SendPacket(packet)
	return nil
}

func (h *headProbe) renderedIds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.rendered))
	copy(out, h.rendered)
	return out
}

// replyProbe answers every ping with a pong aimed at the top of the chain and
// relays everything else.
type replyProbe struct {
	core.BaseHandler
}

func (h *replyProbe) Start() error {
	go func() {
		for {
			select {
			case packet := <-h.InputChan:
				if _, ok := packet.Event.(*pingEvent); ok {
					h.SendPacket(core.NewEventPacket(&pongEvent{}, core.EventRelayDestinationTopHandler, "replyProbe"))
					continue
				}
				h.SendPacket(packet)
			case <-h.Ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (h *replyProbe) HandleEvent(packet *core.EventPacket) error {
	h.SendPacket(packet)
	return nil
}

func TestTopDestinedEventsEchoThroughFirstHandler(t *testing.T) {
	head := newHeadProbe()
	r := NewRunner([]core.IHandler{head, &replyProbe{}}, nil)
	require.NoError(t, r.Start())
	defer r.Stop()

	head.inject <- &pingEvent{}

	require.Eventually(t, func() bool {
		return len(head.renderedIds()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"test.pong"}, head.renderedIds())
}

func TestEndSessionStopsThePipeline(t *testing.T) {
	head := newHeadProbe()
	r := NewRunner([]core.IHandler{head, &replyProbe{}}, nil)
	require.NoError(t, r.Start())

	head.SendPacket(core.NewEventPacket(
		&core.EndSessionEvent{Reason: "widget disconnected"},
		core.EventRelayDestinationTopHandler, "test",
	))

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not stop on end-session event")
	}
	assert.Empty(t, head.renderedIds(), "end-session is consumed by the runner, not rendered")
}

func TestStopIsIdempotent(t *testing.T) {
	head := newHeadProbe()
	r := NewRunner([]core.IHandler{head}, nil)
	require.NoError(t, r.Start())

	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
	select {
	case <-r.Done():
	default:
		t.Fatal("done channel not closed after stop")
	}
}
