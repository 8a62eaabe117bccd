package auth

import (
	"context"
	"log/slog"

	"github.com/flowgrid/flowgrid-go/pkg/logger"
)

// authLogger adds auth-specific semantics on top of slog so call sites
// stay one-liners and log shape stays uniform across operations.
type authLogger struct {
	log *slog.Logger
}

func newAuthLogger(log *slog.Logger) *authLogger {
	if log == nil {
		log = slog.Default()
	}
	return &authLogger{log: log.With(slog.String("component", "auth"))}
}

func (l *authLogger) success(ctx context.Context, op string, attrs ...slog.Attr) {
	l.log.LogAttrs(ctx, slog.LevelInfo, "auth operation succeeded",
		append([]slog.Attr{slog.String("op", op)}, attrs...)...)
}

func (l *authLogger) failure(ctx context.Context, op string, err error) {
	attrs := []slog.Attr{slog.String("op", op), logger.Error(err)}
	if ae, ok := AsAuthError(err); ok {
		attrs = append(attrs,
			slog.String("code", string(ae.Code)),
			slog.String("category", string(ae.Category)))
	}
	l.log.LogAttrs(ctx, slog.LevelWarn, "auth operation failed", attrs...)
}

func (l *authLogger) token(ctx context.Context, event string, attrs ...slog.Attr) {
	l.log.LogAttrs(ctx, slog.LevelDebug, "token event",
		append([]slog.Attr{slog.String("event", event)}, attrs...)...)
}

func (l *authLogger) hydration(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
