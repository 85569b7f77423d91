package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxHistory is the maximum number of turns kept per session. Older
	// turns are evicted first so the answering service always receives a
	// bounded context window.
	MaxHistory = 10

	FontScaleMin  = 10
	FontScaleMax  = 20
	FontScaleStep = 2
	fontScaleDef  = 14
)

// Turn is one user question paired with its assistant answer. Immutable once
// appended to a session's history.
type Turn struct {
	UserText      string `json:"utente"`
	AssistantText string `json:"ai"`
	Timestamp     string `json:"timestamp"`
}

// Session is the lifetime-scoped conversational context for one widget
// connection: identity, bounded history and accessibility flags. All methods
// are safe for concurrent use; the dispatch and voice handlers share one
// instance.
type Session struct {
	id string

	mu          sync.Mutex
	history     []Turn
	voiceOutput bool
	fontScale   int
	listening   bool
}

// New creates a session with a fresh id and default accessibility settings.
func New() *Session {
	return &Session{
		id:        generateID(),
		fontScale: fontScaleDef,
	}
}

// generateID builds the session identity sent to the answering service. The
// format is opaque to the server; the timestamp prefix keeps ids roughly
// sortable in server logs.
func generateID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}

func (s *Session) ID() string {
	return s.id
}

// AppendTurn records a completed exchange, evicting the oldest turn once the
// history cap is reached. UserText is expected to be trimmed and non-empty;
// the timestamp is taken at append time.
func (s *Session) AppendTurn(userText, assistantText string) Turn {
	turn := Turn{
		UserText:      userText,
		AssistantText: assistantText,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
	if len(s.history) > MaxHistory {
		s.history = s.history[len(s.history)-MaxHistory:]
	}
	return turn
}

// History returns a snapshot copy of the current history. Callers may hold it
// across I/O without racing concurrent appends.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *Session) SetVoiceOutput(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceOutput = enabled
}

func (s *Session) VoiceOutput() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceOutput
}

// AdjustFontScale moves the display font scale by the given number of steps
// (usually +1 or -1), clamped to [FontScaleMin, FontScaleMax], and returns
// the resulting scale.
func (s *Session) AdjustFontScale(steps int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontScale += steps * FontScaleStep
	if s.fontScale > FontScaleMax {
		s.fontScale = FontScaleMax
	}
	if s.fontScale < FontScaleMin {
		s.fontScale = FontScaleMin
	}
	return s.fontScale
}

func (s *Session) FontScale() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fontScale
}

func (s *Session) SetListening(listening bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = listening
}

func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}
