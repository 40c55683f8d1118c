// Package logging provides a minimal logging facade for nilql programs.
//
// Logger wraps a subset of log/slog so callers can plug in slog, zap, or a
// custom implementation for tests:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// # Backends
//
//	logger := logging.New(nil)                 // slog.Default()
//	logger = logging.NewZap(zap.Must(zap.NewProduction()))
//	logger = logging.Nop()                     // discard
//
// Arguments follow the slog convention of alternating keys and values, or
// slog.Attr values.
//
// # Redaction
//
// Keys, plaintexts and shares must never be logged. Use Redacted to record
// that a value was intentionally left out:
//
//	logger.Info(ctx, "key loaded", "operation", "sum", logging.Redacted("material"))
//	// material="[redacted]"
package logging
