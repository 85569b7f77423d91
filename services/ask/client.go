package ask

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"assistkit/core"
	"assistkit/session"
)

const askPath = "/api/ask"

// Service is what the dispatch handler depends on; the concrete Client talks
// HTTP, tests substitute a fake.
type Service interface {
	Ask(ctx context.Context, question string, history []session.Turn, sessionID string) (*ReplyPayload, error)
}

// Config holds the answering service endpoint configuration. The endpoint is
// fixed configuration, not discovered at runtime.
type Config struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"-"`
}

// Client is the HTTP client for the answering service. One request per turn;
// no retries — a failed turn is terminal and the user resubmits.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *core.Logger
}

func NewClient(config Config, logger *core.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With(map[string]interface{}{"component": "ask"}),
	}
}

// Ask performs one question/answer exchange. Any transport error, non-2xx
// status or schema violation is returned as an error; the caller never sees a
// partial reply.
func (c *Client) Ask(ctx context.Context, question string, history []session.Turn, sessionID string) (*ReplyPayload, error) {
	body, err := sonic.Marshal(Request{
		Question:  question,
		History:   history,
		SessionId: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("ask: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+askPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ask: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ask: unexpected status %d from %s", resp.StatusCode, c.config.BaseURL+askPath)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ask: read response: %w", err)
	}

	var reply ReplyPayload
	if err := sonic.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if err := reply.Validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("reply received",
		"intent", reply.Intent,
		"cached", reply.Cached,
		"suggestions", len(reply.Suggerimenti),
	)
	return &reply, nil
}
