// Package logging provides structured logging for the instinct CLI.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Console or JSON encoding to the diagnostic stream (stderr)
//   - Automatic context field injection (command)
//
// # Usage
//
// Create logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, os.Stderr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	ctx := logging.WithCommand(ctx, "evolve")
//	logger.Warn(ctx, "skipping instinct file", zap.String("file", path), zap.Error(err))
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLogger()
//	tl.Warn(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.WarnLevel, "test message")
//	tl.AssertField(t, "test message", "key", "value")
//
// # Concurrency Safety
//
// Logger is safe for concurrent use. Child loggers (With, Named) are
// independent and do not affect parent or siblings.
package logging
