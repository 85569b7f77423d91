package factories

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"assistkit/handlers/dispatch"
	"assistkit/handlers/notify"
	"assistkit/handlers/voice"
	"assistkit/services/ask"
	"assistkit/services/transcribe"
)

// SettingsConfig is the top-level config loaded from settings.json, with
// environment variables taking precedence. The answering endpoint is fixed
// configuration — nothing is discovered at runtime.
type SettingsConfig struct {
	// ListenAddr is the address the widget-facing HTTP server binds to.
	ListenAddr string `json:"listen_addr"`
	// Ask configures the answering service endpoint.
	Ask ask.Config `json:"ask"`
	// AskTimeoutSeconds bounds one answering request at the transport level.
	AskTimeoutSeconds int `json:"ask_timeout_seconds"`
	// Transcribe configures the streaming transcription endpoint used for
	// stream-capture widgets. Leave the URL empty to disable the fallback.
	Transcribe transcribe.Config `json:"transcribe"`
	// Voice configures locale and capture defaults; widget capabilities
	// narrow it per session.
	Voice voice.VoiceConfig `json:"voice"`
	// Dispatch carries the user-facing dispatcher copy.
	Dispatch dispatch.DispatchConfig `json:"dispatch"`
	// Notify carries the advisory surface copy.
	Notify notify.NotifyConfig `json:"notify"`
}

// DefaultSettingsConfig returns a SettingsConfig pre-filled with component
// defaults.
func DefaultSettingsConfig() SettingsConfig {
	cfg := SettingsConfig{
		ListenAddr:        ":8787",
		AskTimeoutSeconds: 60,
		Voice:             voice.DefaultConfig(),
		Dispatch:          dispatch.DefaultConfig(),
		Notify:            notify.DefaultConfig(),
	}
	cfg.Transcribe.Language = cfg.Voice.Locale
	return cfg
}

// SettingsConfigFromFile reads and parses a SettingsConfig from a JSON file,
// layered over the defaults.
func SettingsConfigFromFile(path string) (SettingsConfig, error) {
	cfg := DefaultSettingsConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("settings: read %q: %w", path, err)
	}
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("settings: parse %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Env wins over the
// settings file so deployments can override without editing it.
func (c *SettingsConfig) ApplyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ASK_BASE_URL"); v != "" {
		c.Ask.BaseURL = v
	}
	if v := os.Getenv("ASK_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AskTimeoutSeconds = n
		}
	}
	if v := os.Getenv("TRANSCRIBE_URL"); v != "" {
		c.Transcribe.URL = v
	}
	if v := os.Getenv("ASSISTANT_LOCALE"); v != "" {
		c.Voice.Locale = v
		c.Transcribe.Language = v
	}
}

// Validate checks the parts without usable defaults.
func (c *SettingsConfig) Validate() error {
	if c.Ask.BaseURL == "" {
		return fmt.Errorf("settings: answering service base URL is required (ASK_BASE_URL)")
	}
	return nil
}

// AskClientConfig resolves the ask.Config including the timeout.
func (c *SettingsConfig) AskClientConfig() ask.Config {
	cfg := c.Ask
	cfg.Timeout = time.Duration(c.AskTimeoutSeconds) * time.Second
	return cfg
}

// NotifyHandlerConfig resolves the notify config, restoring the non-JSON
// display interval default.
func (c *SettingsConfig) NotifyHandlerConfig() notify.NotifyConfig {
	cfg := c.Notify
	if cfg.DisplayInterval == 0 {
		cfg.DisplayInterval = notify.DefaultConfig().DisplayInterval
	}
	return cfg
}
