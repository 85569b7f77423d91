package turn

// TurnSubmittedEvent carries raw user input from the widget (typed text or a
// suggestion click — both take the same path through the dispatcher).
type TurnSubmittedEvent struct {
	Text string
}

func (e *TurnSubmittedEvent) GetId() string {
	return "turn.submitted"
}

// TurnStartedEvent is emitted before any I/O begins so the widget can render
// the user message and the pending indicator without a gap.
type TurnStartedEvent struct {
	TurnId   string
	UserText string
}

func (e *TurnStartedEvent) GetId() string {
	return "turn.started"
}

type TurnSucceededEvent struct {
	TurnId        string
	FormattedText string   // annotated HTML for the chat bubble
	PlainText     string   // unformatted reply, the only form allowed to reach the speech layer
	Intent        string
	Suggestions   []string
	Elapsed       float64 // wall-clock seconds measured locally
	ServerElapsed float64 // tempo_risposta reported by the answering service
	Cached        bool
}

func (e *TurnSucceededEvent) GetId() string {
	return "turn.succeeded"
}

type TurnFailedEvent struct {
	TurnId  string
	Message string // user-facing fallback, includes the human-contact alternative
	Reason  string // diagnostic detail, logged but never rendered
}

func (e *TurnFailedEvent) GetId() string {
	return "turn.failed"
}

// TurnFeedbackEvent is the per-turn thumbs up/down signal. Logged only; never
// forwarded to the answering service.
type TurnFeedbackEvent struct {
	TurnId   string
	Positive bool
}

func (e *TurnFeedbackEvent) GetId() string {
	return "turn.feedback"
}
