package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"assistkit/core"
	"assistkit/factories"
	"assistkit/protocol"
	"assistkit/session"
	"assistkit/transports/widget"
)

const shutdownTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The widget is served from the health authority's own pages; the
	// reverse proxy in front of us enforces the origin policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	var settingsPath string
	flag.StringVar(&settingsPath, "settings", "", "path to settings.json (optional)")
	flag.Parse()

	logger := core.GetLogger()

	if err := godotenv.Load(".env.local"); err != nil {
		logger.With(map[string]interface{}{"error": err}).Warn("No .env.local file found or failed to load")
	}

	settings := factories.DefaultSettingsConfig()
	if settingsPath != "" {
		loaded, err := factories.SettingsConfigFromFile(settingsPath)
		if err != nil {
			logger.Fatal("failed to load settings", "path", settingsPath, "error", err)
		}
		settings = loaded
	}
	settings.ApplyEnv()
	if err := settings.Validate(); err != nil {
		logger.Fatal(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", settings.ListenAddr)
	if err != nil {
		logger.Fatal("failed to bind listen address", "addr", settings.ListenAddr, "error", err)
	}

	logger.Info("listening for widget connections", "addr", ln.Addr().String())
	if err := serve(ctx, ln, settings, logger); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
	logger.Info("server shut down")
}

// serve runs the widget-facing HTTP server on ln until ctx is cancelled, then
// drains it gracefully. In-flight websocket sessions end when their
// connections close.
func serve(ctx context.Context, ln net.Listener, settings factories.SettingsConfig, logger *core.Logger) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"assistkit"}`))
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}
		go serveWidget(conn, settings, logger)
	})

	srv := &http.Server{Handler: mux}
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveWidget runs one widget connection end to end: register handshake,
// pipeline construction, then blocks until the session ends.
func serveWidget(conn *websocket.Conn, settings factories.SettingsConfig, logger *core.Logger) {
	transport := widget.NewWebSocketService(conn, logger)

	reg, err := transport.ReadRegister()
	if err != nil {
		logger.Warn("widget handshake failed", "error", err)
		_ = transport.Close()
		return
	}

	sess := session.New()
	if err := transport.Send(protocol.MsgRegistered, protocol.RegisteredPayload{
		SessionId: sess.ID(),
		FontScale: sess.FontScale(),
	}); err != nil {
		logger.Warn("failed to confirm registration", "error", err)
		_ = transport.Close()
		return
	}

	logger.Info("widget session started",
		"session_id", sess.ID(),
		"capabilities", reg.Capabilities,
		"locale", reg.Locale,
	)

	pipeline := factories.BuildPipeline(transport, reg, sess, settings, logger)
	if err := pipeline.Start(); err != nil {
		logger.Error("pipeline failed to start", "session_id", sess.ID(), "error", err)
		_ = transport.Close()
		return
	}

	<-pipeline.Done()
	logger.Info("widget session closed", "session_id", sess.ID(), "turns", sess.HistoryLen())
}
