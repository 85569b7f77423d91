package ui

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// NotificationEvent is a transient advisory. The notify handler assigns it a
// display uid, shows it, and dismisses it after the display interval.
type NotificationEvent struct {
	Message  string
	Severity Severity
}

func (e *NotificationEvent) GetId() string {
	return "ui.notification"
}

// NotificationShowEvent is the render command for one advisory.
type NotificationShowEvent struct {
	Uid      string
	Message  string
	Severity Severity
}

func (e *NotificationShowEvent) GetId() string {
	return "ui.notification_show"
}

type NotificationDismissEvent struct {
	Uid string
}

func (e *NotificationDismissEvent) GetId() string {
	return "ui.notification_dismiss"
}

// StatusRenderEvent toggles the single persistent processing indicator.
// Newest replaces previous; Visible false clears it.
type StatusRenderEvent struct {
	Message string
	Visible bool
}

func (e *StatusRenderEvent) GetId() string {
	return "ui.status_render"
}

// SuggestionsRenderEvent replaces the suggestion strip. An empty list hides it.
type SuggestionsRenderEvent struct {
	Items []string
}

func (e *SuggestionsRenderEvent) GetId() string {
	return "ui.suggestions_render"
}

// SetInputTextEvent overwrites the widget input field, used for the
// live-typing effect during voice capture.
type SetInputTextEvent struct {
	Text string
}

func (e *SetInputTextEvent) GetId() string {
	return "ui.set_input_text"
}

// FontScaleRequestedEvent carries a font-size control press (+1 or -1 step).
type FontScaleRequestedEvent struct {
	Steps int
}

func (e *FontScaleRequestedEvent) GetId() string {
	return "ui.font_scale_requested"
}

// FontScaleAppliedEvent echoes the clamped scale back to the widget.
type FontScaleAppliedEvent struct {
	Scale int
}

func (e *FontScaleAppliedEvent) GetId() string {
	return "ui.font_scale_applied"
}

// VoiceOutputToggleRequestedEvent carries the voice-output switch press from
// the widget, before the dispatcher records it on the session.
type VoiceOutputToggleRequestedEvent struct {
	Enabled bool
}

func (e *VoiceOutputToggleRequestedEvent) GetId() string {
	return "ui.voice_output_toggle_requested"
}
