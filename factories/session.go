package factories

import (
	"assistkit/core"
	dispatchhandler "assistkit/handlers/dispatch"
	notifyhandler "assistkit/handlers/notify"
	suggesthandler "assistkit/handlers/suggest"
	transporthandler "assistkit/handlers/transport"
	voicehandler "assistkit/handlers/voice"
	"assistkit/protocol"
	"assistkit/runner"
	"assistkit/services/ask"
	"assistkit/services/transcribe"
	"assistkit/session"
	"assistkit/transports/widget"
)

// BuildPipeline assembles the full handler chain for one widget connection:
// transport → dispatch → voice → notify → suggest. The widget's register
// payload narrows the capture capabilities; the session is shared between the
// dispatch handler (which owns turn lifecycle) and the voice handler (which
// reads the voice flags).
func BuildPipeline(
	transport *widget.WebSocketService,
	reg protocol.RegisterPayload,
	sess *session.Session,
	settings SettingsConfig,
	logger *core.Logger,
) *runner.Runner {
	if logger == nil {
		logger = core.GetLogger()
	}
	sessionLogger := logger.With(map[string]interface{}{"session_id": sess.ID()})

	askClient := ask.NewClient(settings.AskClientConfig(), sessionLogger)

	voiceCfg := settings.Voice
	voiceCfg.PlatformSTT = reg.HasCapability(protocol.CapabilityPlatformSTT)
	voiceCfg.MicStream = reg.HasCapability(protocol.CapabilityMicStream)
	if reg.Locale != "" {
		voiceCfg.Locale = reg.Locale
	}

	var transcriber transcribe.Service
	if voiceCfg.MicStream && settings.Transcribe.URL != "" {
		transcribeCfg := settings.Transcribe
		transcribeCfg.Language = voiceCfg.Locale
		transcriber = transcribe.NewWSService(transcribeCfg, sessionLogger)
	}

	handlers := []core.IHandler{
		transporthandler.NewTransportHandler(transport, sessionLogger),
		dispatchhandler.NewDispatchHandler(askClient, sess, settings.Dispatch, sessionLogger),
		voicehandler.NewVoiceHandler(sess, voiceCfg, transcriber, sessionLogger),
		notifyhandler.NewNotifyHandler(settings.NotifyHandlerConfig(), sessionLogger),
		suggesthandler.NewSuggestHandler(sessionLogger),
	}

	return runner.NewRunner(handlers, sessionLogger)
}
