package protocol

import "encoding/json"

// MessageType enumerates all widget-plane message types.
type MessageType string

const (
	// Widget -> controller
	MsgRegister        MessageType = "register"
	MsgSubmit          MessageType = "submit"
	MsgSuggestionClick MessageType = "suggestion_click"
	MsgCaptureStart    MessageType = "capture_start"
	MsgCaptureStop     MessageType = "capture_stop"
	MsgCaptureInterim  MessageType = "capture_interim"
	MsgCaptureFinal    MessageType = "capture_final"
	MsgCaptureError    MessageType = "capture_error"
	MsgCaptureEnded    MessageType = "capture_ended"
	MsgAudioFrame      MessageType = "audio_frame"
	MsgVoiceToggle     MessageType = "voice_toggle"
	MsgFontSize        MessageType = "font_size"
	MsgFeedback        MessageType = "feedback"

	// Controller -> widget
	MsgRegistered          MessageType = "registered"
	MsgTurnStarted         MessageType = "turn_started"
	MsgTurnSucceeded       MessageType = "turn_succeeded"
	MsgTurnFailed          MessageType = "turn_failed"
	MsgSetInput            MessageType = "set_input"
	MsgClearInput          MessageType = "clear_input"
	MsgNotification        MessageType = "notification"
	MsgNotificationDismiss MessageType = "notification_dismiss"
	MsgStatus              MessageType = "status"
	MsgSuggestions         MessageType = "suggestions"
	MsgSpeak               MessageType = "speak"
	MsgSpeakCancel         MessageType = "speak_cancel"
	MsgCaptureBegin        MessageType = "capture_begin"
	MsgCaptureEnd          MessageType = "capture_end"
	MsgFontScale           MessageType = "font_scale"
)

// Capture capabilities the widget may declare at register time.
const (
	CapabilityPlatformSTT = "platform_stt" // browser-native speech recognition
	CapabilityMicStream   = "mic_stream"   // raw microphone streaming (μ-law frames)
)

// Envelope is the outer JSON wrapper for all WebSocket messages.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Widget -> controller payloads ---

// RegisterPayload is sent once by the widget immediately after connecting.
type RegisterPayload struct {
	Capabilities []string `json:"capabilities,omitempty"`
	Locale       string   `json:"locale,omitempty"`
	UserAgent    string   `json:"user_agent,omitempty"`
}

// HasCapability reports whether the widget declared the given capability.
func (p RegisterPayload) HasCapability(name string) bool {
	for _, c := range p.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

type SubmitPayload struct {
	Text string `json:"text"`
}

// AudioFramePayload carries one μ-law encoded microphone frame, base64 in
// JSON the same way telephony media streams deliver it.
type AudioFramePayload struct {
	Data []byte `json:"data"` // base64-encoded by the JSON codec
}

type CaptureTranscriptPayload struct {
	Text string `json:"text"`
}

type CaptureErrorPayload struct {
	Reason string `json:"reason"`
}

type VoiceTogglePayload struct {
	Enabled bool `json:"enabled"`
}

// FontSizePayload carries a single control press: +1 or -1 step.
type FontSizePayload struct {
	Steps int `json:"steps"`
}

type FeedbackPayload struct {
	TurnId   string `json:"turn_id"`
	Positive bool   `json:"positive"`
}

// --- Controller -> widget payloads ---

type RegisteredPayload struct {
	SessionId string `json:"session_id"`
	FontScale int    `json:"font_scale"`
}

type TurnStartedPayload struct {
	TurnId   string `json:"turn_id"`
	UserText string `json:"user_text"`
}

type TurnSucceededPayload struct {
	TurnId        string  `json:"turn_id"`
	Html          string  `json:"html"`
	Intent        string  `json:"intent,omitempty"`
	Elapsed       float64 `json:"elapsed"`
	ServerElapsed float64 `json:"server_elapsed,omitempty"`
	Cached        bool    `json:"cached,omitempty"`
}

type TurnFailedPayload struct {
	TurnId  string `json:"turn_id"`
	Message string `json:"message"`
}

type SetInputPayload struct {
	Text string `json:"text"`
}

type NotificationPayload struct {
	Uid      string `json:"uid"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type NotificationDismissPayload struct {
	Uid string `json:"uid"`
}

type StatusPayload struct {
	Message string `json:"message"`
	Visible bool   `json:"visible"`
}

type SuggestionsPayload struct {
	Items []string `json:"items"`
}

type SpeakPayload struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// CaptureBeginPayload tells the widget which capture mode to start:
// "platform" runs the browser recognizer, "stream" streams raw mic frames.
type CaptureBeginPayload struct {
	Mode string `json:"mode"`
}

type FontScalePayload struct {
	Scale int `json:"scale"`
}
