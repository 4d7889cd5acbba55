// Package logger provides structured logging for the DeepSeek client
// using zerolog.
//
// The client logs nothing unless a logger is injected. Build one from a
// Config (or from LOG_* environment variables) and pass it to
// deepseek.WithLogger.
//
// # Configuration
//
//	logger:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewFromEnv("deepseek")
//	client, err := deepseek.New(cfg, deepseek.WithLogger(log))
package logger
