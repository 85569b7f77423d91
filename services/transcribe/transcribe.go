package transcribe

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"assistkit/core"
	"assistkit/utils/audio"
)

// Result is one transcript message from the transcription endpoint.
type Result struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Service is the streaming speech-to-text contract used by the voice handler
// when the widget platform has no recognizer of its own: PCM goes in,
// interim/final transcripts come out.
type Service interface {
	Initialize(ctx context.Context) error
	StartSession(outChan chan<- Result, errChan chan<- error) error
	SendAudio(pcm []byte) error
	Close() error
}

// Config holds the transcription endpoint configuration.
type Config struct {
	URL      string `json:"url"`      // ws:// or wss:// endpoint
	Language string `json:"language"` // BCP 47 tag, e.g. "it-IT"
}

// WSService implements Service over a WebSocket: binary frames carry 16-bit
// LPCM audio upstream, text frames carry Result JSON downstream.
type WSService struct {
	config Config
	logger *core.Logger

	conn        *websocket.Conn
	connMu      sync.Mutex
	isConnected bool

	outChan chan<- Result
	errChan chan<- error
	done    <-chan struct{}
}

func NewWSService(config Config, logger *core.Logger) *WSService {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &WSService{
		config: config,
		logger: logger.With(map[string]interface{}{"component": "transcribe"}),
	}
}

func (s *WSService) Initialize(ctx context.Context) error {
	if s.config.URL == "" {
		return fmt.Errorf("transcribe: endpoint URL is required")
	}
	s.done = ctx.Done()
	return nil
}

// StartSession dials the endpoint and starts the read loop. One session at a
// time; Close before starting another.
func (s *WSService) StartSession(outChan chan<- Result, errChan chan<- error) error {
	u, err := url.Parse(s.config.URL)
	if err != nil {
		return fmt.Errorf("transcribe: parse endpoint %q: %w", s.config.URL, err)
	}
	q := u.Query()
	q.Set("language", s.config.Language)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(audio.StreamSampleRate))
	q.Set("channels", strconv.Itoa(audio.StreamChannels))
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("transcribe: dial %q: %w", u.String(), err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.isConnected = true
	s.outChan = outChan
	s.errChan = errChan
	s.connMu.Unlock()

	s.logger.Info("transcription session started", "endpoint", u.Host, "language", s.config.Language)
	go s.readLoop(conn)
	return nil
}

func (s *WSService) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.connMu.Lock()
			active := s.isConnected && s.conn == conn
			s.connMu.Unlock()
			if !active {
				return // closed by us, not an error
			}
			select {
			case s.errChan <- fmt.Errorf("transcribe: read: %w", err):
			case <-s.done:
			}
			return
		}

		var result Result
		if err := sonic.Unmarshal(msg, &result); err != nil {
			s.logger.Warn("discarding undecodable transcript message", "error", err)
			continue
		}
		select {
		case s.outChan <- result:
		case <-s.done:
			return
		}
	}
}

// SendAudio forwards one 16-bit LPCM frame to the endpoint.
func (s *WSService) SendAudio(pcm []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if !s.isConnected || s.conn == nil {
		return fmt.Errorf("transcribe: no active session")
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, pcm)
}

// Close ends the current session. Safe to call when no session is active.
func (s *WSService) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if !s.isConnected || s.conn == nil {
		return nil
	}
	s.isConnected = false
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := s.conn.Close()
	s.conn = nil
	return err
}
