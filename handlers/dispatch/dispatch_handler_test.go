package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistkit/core"
	"assistkit/events/playback"
	"assistkit/events/turn"
	"assistkit/events/ui"
	"assistkit/services/ask"
	"assistkit/session"
)

type fakeAskService struct {
	mu      sync.Mutex
	calls   []ask.Request
	reply   *ask.ReplyPayload
	err     error
}

func (f *fakeAskService) Ask(ctx context.Context, question string, history []session.Turn, sessionID string) (*ask.ReplyPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ask.Request{Question: question, History: history, SessionId: sessionID})
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeAskService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAskService) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type testPipe struct {
	handler *DispatchHandler
	input   chan *core.EventPacket
	next    chan *core.EventPacket
	top     chan *core.EventPacket
	cancel  context.CancelFunc
}

func newTestPipe(t *testing.T, svc ask.Service, sess *session.Session) *testPipe {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p := &testPipe{
		handler: NewDispatchHandler(svc, sess, DefaultConfig(), nil),
		input:   make(chan *core.EventPacket, 32),
		next:    make(chan *core.EventPacket, 32),
		top:     make(chan *core.EventPacket, 32),
		cancel:  cancel,
	}
	require.NoError(t, p.handler.Initialize(p.input, p.next, p.top, ctx))
	require.NoError(t, p.handler.Start())
	return p
}

func (p *testPipe) submit(text string) {
	p.input <- core.NewEventPacket(&turn.TurnSubmittedEvent{Text: text}, core.EventRelayDestinationNextHandler, "test")
}

func waitPacket(t *testing.T, ch chan *core.EventPacket) *core.EventPacket {
	t.Helper()
	select {
	case packet := <-ch:
		return packet
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event packet")
		return nil
	}
}

func assertNoPacket(t *testing.T, ch chan *core.EventPacket) {
	t.Helper()
	select {
	case packet := <-ch:
		t.Fatalf("unexpected packet: %s", packet.Event.GetId())
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEmptyInputIsAdvisoryOnly(t *testing.T) {
	svc := &fakeAskService{reply: &ask.ReplyPayload{Risposta: "ok"}}
	sess := session.New()
	p := newTestPipe(t, svc, sess)

	p.submit("   \t  ")

	packet := waitPacket(t, p.next)
	notif, ok := packet.Event.(*ui.NotificationEvent)
	require.True(t, ok, "expected a notification, got %s", packet.Event.GetId())
	assert.Equal(t, ui.SeverityWarning, notif.Severity)

	assertNoPacket(t, p.top)
	assert.Zero(t, svc.callCount(), "no network request for empty input")
	assert.Zero(t, sess.HistoryLen(), "no history mutation for empty input")
}

func TestSuccessfulTurnLifecycle(t *testing.T) {
	svc := &fakeAskService{reply: &ask.ReplyPayload{
		Risposta:      "Il CUP risponde al numero 045 807 1111",
		Intent:        "contatti",
		Suggerimenti:  []string{"Quali sono gli orari del CUP?"},
		TempoRisposta: 0.3,
	}}
	sess := session.New()
	p := newTestPipe(t, svc, sess)

	p.submit("  Come contatto il CUP?  ")

	started, ok := waitPacket(t, p.top).Event.(*turn.TurnStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "Come contatto il CUP?", started.UserText, "input is trimmed before dispatch")

	succeeded, ok := waitPacket(t, p.top).Event.(*turn.TurnSucceededEvent)
	require.True(t, ok)
	assert.Equal(t, started.TurnId, succeeded.TurnId)
	assert.Equal(t, "Il CUP risponde al numero 045 807 1111", succeeded.PlainText)
	assert.Contains(t, succeeded.FormattedText, "<strong>045 807 1111</strong>")
	assert.Contains(t, succeeded.FormattedText, "📅 CUP")
	assert.Equal(t, []string{"Quali sono gli orari del CUP?"}, succeeded.Suggestions)
	assert.Equal(t, "contatti", succeeded.Intent)
	assert.GreaterOrEqual(t, succeeded.Elapsed, 0.0)

	require.Equal(t, 1, sess.HistoryLen())
	history := sess.History()
	assert.Equal(t, "Come contatto il CUP?", history[0].UserText)
	assert.Equal(t, "Il CUP risponde al numero 045 807 1111", history[0].AssistantText, "history keeps the raw reply")

	// Voice output is off: nothing reaches the speech layer.
	assertNoPacket(t, p.next)
}

func TestVoiceEnabledForwardsUnformattedText(t *testing.T) {
	svc := &fakeAskService{reply: &ask.ReplyPayload{Risposta: "Chiama il numero 045 807 1111"}}
	sess := session.New()
	sess.SetVoiceOutput(true)
	p := newTestPipe(t, svc, sess)

	p.submit("contatti")

	waitPacket(t, p.top) // TurnStarted
	request, ok := waitPacket(t, p.next).Event.(*playback.PlaybackRequestEvent)
	require.True(t, ok)
	assert.Equal(t, "Chiama il numero 045 807 1111", request.Text)
	assert.NotContains(t, request.Text, "<strong>", "markup must never reach the speech layer")
	waitPacket(t, p.top) // TurnSucceeded
}

func TestFailedTurnLeavesHistoryUntouched(t *testing.T) {
	svc := &fakeAskService{err: errors.New("connection refused")}
	sess := session.New()
	p := newTestPipe(t, svc, sess)

	p.submit("domanda")

	_, ok := waitPacket(t, p.top).Event.(*turn.TurnStartedEvent)
	require.True(t, ok)

	failed, ok := waitPacket(t, p.top).Event.(*turn.TurnFailedEvent)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "045 807 1111", "fallback includes the human contact")
	assert.Equal(t, "connection refused", failed.Reason)

	assert.Zero(t, sess.HistoryLen())
	assertNoPacket(t, p.top)

	// No lingering failure state: the next submission proceeds normally.
	svc.setErr(nil)
	svc.mu.Lock()
	svc.reply = &ask.ReplyPayload{Risposta: "tutto bene"}
	svc.mu.Unlock()

	p.submit("riprova")
	waitPacket(t, p.top) // TurnStarted
	succeeded, ok := waitPacket(t, p.top).Event.(*turn.TurnSucceededEvent)
	require.True(t, ok)
	assert.Equal(t, "tutto bene", succeeded.PlainText)
	assert.Equal(t, 1, sess.HistoryLen())
}

func TestHistoryIsCappedAcrossManyTurns(t *testing.T) {
	svc := &fakeAskService{reply: &ask.ReplyPayload{Risposta: "risposta"}}
	sess := session.New()
	p := newTestPipe(t, svc, sess)

	const submissions = session.MaxHistory + 3
	for i := 0; i < submissions; i++ {
		p.submit(fmt.Sprintf("domanda %d", i))
		waitPacket(t, p.top) // TurnStarted
		_, ok := waitPacket(t, p.top).Event.(*turn.TurnSucceededEvent)
		require.True(t, ok)
	}

	assert.Equal(t, session.MaxHistory, sess.HistoryLen())
	assert.Equal(t, "domanda 3", sess.History()[0].UserText, "oldest turns are evicted first")
}

func TestHistorySnapshotTakenAtCallTime(t *testing.T) {
	svc := &fakeAskService{reply: &ask.ReplyPayload{Risposta: "risposta"}}
	sess := session.New()
	sess.AppendTurn("precedente", "ok")
	p := newTestPipe(t, svc, sess)

	p.submit("nuova domanda")
	waitPacket(t, p.top) // TurnStarted
	waitPacket(t, p.top) // TurnSucceeded

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Len(t, svc.calls, 1)
	require.Len(t, svc.calls[0].History, 1, "request carries the history as of call time")
	assert.Equal(t, "precedente", svc.calls[0].History[0].UserText)
	assert.Equal(t, sess.ID(), svc.calls[0].SessionId)
}

func TestFontScaleRequestIsClampedAndEchoed(t *testing.T) {
	svc := &fakeAskService{}
	sess := session.New()
	p := newTestPipe(t, svc, sess)

	for i := 0; i < 6; i++ {
		p.input <- core.NewEventPacket(&ui.FontScaleRequestedEvent{Steps: 1}, core.EventRelayDestinationNextHandler, "test")
	}

	var last *ui.FontScaleAppliedEvent
	for i := 0; i < 6; i++ {
		applied, ok := waitPacket(t, p.top).Event.(*ui.FontScaleAppliedEvent)
		require.True(t, ok)
		last = applied
	}
	assert.Equal(t, session.FontScaleMax, last.Scale)
	assert.Equal(t, session.FontScaleMax, sess.FontScale())
}

func TestVoiceToggleRecordedAndPropagated(t *testing.T) {
	svc := &fakeAskService{}
	sess := session.New()
	p := newTestPipe(t, svc, sess)

	p.input <- core.NewEventPacket(&ui.VoiceOutputToggleRequestedEvent{Enabled: true}, core.EventRelayDestinationNextHandler, "test")

	toggled, ok := waitPacket(t, p.next).Event.(*playback.VoiceOutputToggledEvent)
	require.True(t, ok)
	assert.True(t, toggled.Enabled)
	assert.True(t, sess.VoiceOutput())
}
