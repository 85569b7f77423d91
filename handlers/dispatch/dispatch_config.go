package dispatch

// DispatchConfig holds the user-facing copy the dispatcher emits. Messages
// are configuration so deployments can adjust tone without a rebuild.
type DispatchConfig struct {
	// EmptyInputMessage is the advisory shown when the user submits blank input.
	EmptyInputMessage string `json:"empty_input_message"`
	// FallbackMessage is shown when a turn fails. It must include a
	// human-contact alternative so the user is never left without a way
	// forward.
	FallbackMessage string `json:"fallback_message"`
}

// DefaultConfig returns a DispatchConfig with the standard Italian copy.
func DefaultConfig() DispatchConfig {
	return DispatchConfig{
		EmptyInputMessage: "Scrivi una domanda prima di inviare",
		FallbackMessage:   "Non riesco a contattare il servizio in questo momento. Riprova tra qualche istante o chiama il centralino ULSS9 al 045 807 1111.",
	}
}
