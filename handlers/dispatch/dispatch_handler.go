package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"assistkit/core"
	"assistkit/events/playback"
	"assistkit/events/turn"
	"assistkit/events/ui"
	"assistkit/services/ask"
	"assistkit/session"
	"assistkit/utils/text"
)

const relayerName = "DispatchHandler"

// DispatchHandler orchestrates one conversational turn: it validates input,
// emits the pending-state event before any I/O, calls the answering service
// with a history snapshot, folds the reply into the session and emits the
// terminal turn event. It owns the Session; the voice handler only reads it.
//
// Concurrent submissions are independent: each gets its own request and its
// own TurnStarted/terminal pair, with no de-duplication and no cancellation
// of in-flight turns. Replies are folded into history in arrival order.
type DispatchHandler struct {
	core.BaseHandler
	service    ask.Service
	sess       *session.Session
	config     DispatchConfig
	resultChan chan turnResult
}

// turnResult is what the per-turn goroutine reports back to the handler loop.
// All session mutation happens on the loop, never on the goroutine.
type turnResult struct {
	turnId   string
	question string
	reply    *ask.ReplyPayload
	elapsed  float64
	err      error
}

func NewDispatchHandler(service ask.Service, sess *session.Session, config DispatchConfig, logger *core.Logger) *DispatchHandler {
	h := &DispatchHandler{
		service: service,
		sess:    sess,
		config:  config,
	}
	h.Logger = logger
	return h
}

func (h *DispatchHandler) Initialize(
	inputChan <-chan *core.EventPacket,
	outputNextChan chan<- *core.EventPacket,
	outputTopChan chan<- *core.EventPacket,
	ctx context.Context,
) error {
	h.resultChan = make(chan turnResult, 8)
	return h.BaseHandler.Initialize(inputChan, outputNextChan, outputTopChan, ctx)
}

func (h *DispatchHandler) Start() error {
	go h.eventLoop()
	return nil
}

func (h *DispatchHandler) eventLoop() {
	for {
		select {
		case packet := <-h.InputChan:
			if err := h.HandleEvent(packet); err != nil {
				h.Logger.Error("dispatch event failed", "event", packet.Event.GetId(), "error", err)
			}
		case result := <-h.resultChan:
			h.resolveTurn(result)
		case <-h.Ctx.Done():
			return
		}
	}
}

func (h *DispatchHandler) HandleEvent(packet *core.EventPacket) error {
	switch e := packet.Event.(type) {
	case *turn.TurnSubmittedEvent:
		h.submitTurn(e.Text)
		return nil // consumed

	case *ui.VoiceOutputToggleRequestedEvent:
		h.sess.SetVoiceOutput(e.Enabled)
		h.Logger.Info("voice output toggled", "enabled", e.Enabled)
		// The voice handler reacts downstream (cancelling playback on disable).
		h.SendPacket(core.NewEventPacket(
			&playback.VoiceOutputToggledEvent{Enabled: e.Enabled},
			core.EventRelayDestinationNextHandler, relayerName,
		))
		return nil

	case *ui.FontScaleRequestedEvent:
		scale := h.sess.AdjustFontScale(e.Steps)
		h.SendPacket(core.NewEventPacket(
			&ui.FontScaleAppliedEvent{Scale: scale},
			core.EventRelayDestinationTopHandler, relayerName,
		))
		return nil

	case *turn.TurnFeedbackEvent:
		// Logged only; never forwarded to the answering service.
		h.Logger.Info("turn feedback", "turn_id", e.TurnId, "positive", e.Positive)
		return nil

	default:
		h.SendPacket(packet)
		return nil
	}
}

// submitTurn runs steps 1-3 of the turn contract: validate, emit the pending
// state, fire the request. Steps 4-6 happen in resolveTurn when the reply
// arrives on resultChan.
func (h *DispatchHandler) submitTurn(rawInput string) {
	question := strings.TrimSpace(rawInput)
	if question == "" {
		h.SendPacket(core.NewEventPacket(
			&ui.NotificationEvent{Message: h.config.EmptyInputMessage, Severity: ui.SeverityWarning},
			core.EventRelayDestinationNextHandler, relayerName,
		))
		return
	}

	turnId := uuid.New().String()

	// The pending state must render before any I/O begins.
	h.SendPacket(core.NewEventPacket(
		&turn.TurnStartedEvent{TurnId: turnId, UserText: question},
		core.EventRelayDestinationTopHandler, relayerName,
	))

	// Snapshot the history at call time; a concurrent turn resolving while
	// this request is in flight must not alter what this request carries.
	history := h.sess.History()
	sessionId := h.sess.ID()

	go func() {
		start := time.Now()
		reply, err := h.service.Ask(h.Ctx, question, history, sessionId)
		result := turnResult{
			turnId:   turnId,
			question: question,
			reply:    reply,
			elapsed:  time.Since(start).Seconds(),
			err:      err,
		}
		select {
		case h.resultChan <- result:
		case <-h.Ctx.Done():
		}
	}()
}

func (h *DispatchHandler) resolveTurn(result turnResult) {
	if result.err != nil {
		// History stays untouched; the failure is terminal for this turn and
		// the user resubmits.
		h.Logger.Error("turn failed", "turn_id", result.turnId, "error", result.err)
		h.SendPacket(core.NewEventPacket(
			&turn.TurnFailedEvent{
				TurnId:  result.turnId,
				Message: h.config.FallbackMessage,
				Reason:  result.err.Error(),
			},
			core.EventRelayDestinationTopHandler, relayerName,
		))
		return
	}

	reply := result.reply
	formatted := text.Format(reply.Risposta)

	// History keeps the raw reply: annotation markup belongs to the render
	// layer, and the answering service expects clean text back.
	h.sess.AppendTurn(result.question, reply.Risposta)

	if h.sess.VoiceOutput() {
		h.SendPacket(core.NewEventPacket(
			&playback.PlaybackRequestEvent{Text: reply.Risposta},
			core.EventRelayDestinationNextHandler, relayerName,
		))
	}

	h.SendPacket(core.NewEventPacket(
		&turn.TurnSucceededEvent{
			TurnId:        result.turnId,
			FormattedText: formatted,
			PlainText:     reply.Risposta,
			Intent:        reply.Intent,
			Suggestions:   reply.Suggerimenti,
			Elapsed:       result.elapsed,
			ServerElapsed: reply.TempoRisposta,
			Cached:        reply.Cached,
		},
		core.EventRelayDestinationTopHandler, relayerName,
	))
}
