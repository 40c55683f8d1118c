package logging

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/zap"
)

// NewZap returns a Logger backed by z. Passing nil binds to zap.L().
func NewZap(z *zap.Logger) Logger {
	if z == nil {
		z = zap.L()
	}
	return &zapLogger{logger: z}
}

type zapLogger struct {
	logger *zap.Logger
}

func (l *zapLogger) Debug(_ context.Context, msg string, args ...any) {
	l.logger.Debug(msg, zapFields(args)...)
}

func (l *zapLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.Info(msg, zapFields(args)...)
}

func (l *zapLogger) Warn(_ context.Context, msg string, args ...any) {
	l.logger.Warn(msg, zapFields(args)...)
}

func (l *zapLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.Error(msg, zapFields(args)...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{logger: l.logger.With(zapFields(args)...)}
}

// zapFields converts slog-style arguments (alternating key/value pairs or
// slog.Attr values) into zap fields. A trailing key without a value is kept
// under "!BADKEY" as slog does.
func zapFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			fields = append(fields, zapAttr(a))
		case string:
			if i+1 >= len(args) {
				fields = append(fields, zap.String("!BADKEY", a))
				continue
			}
			fields = append(fields, zap.Any(a, args[i+1]))
			i++
		default:
			fields = append(fields, zap.Any("!BADKEY", fmt.Sprint(a)))
		}
	}
	return fields
}

func zapAttr(a slog.Attr) zap.Field {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return zap.String(a.Key, v.String())
	case slog.KindInt64:
		return zap.Int64(a.Key, v.Int64())
	case slog.KindUint64:
		return zap.Uint64(a.Key, v.Uint64())
	case slog.KindBool:
		return zap.Bool(a.Key, v.Bool())
	case slog.KindDuration:
		return zap.Duration(a.Key, v.Duration())
	default:
		return zap.Any(a.Key, v.Any())
	}
}
