// Package logger provides a configured slog factory with environment presets
// and context-driven attribute injection.
//
// Basic usage:
//
//	log := logger.New(logger.WithProduction("callbell"))
//	log.Info("server starting", logger.Component("httpserver"))
//
// Attributes can be injected from context on every record:
//
//	log := logger.New(
//		logger.WithDevelopment("callbell"),
//		logger.WithContextValue("session_id", sessionKey{}),
//	)
package logger
