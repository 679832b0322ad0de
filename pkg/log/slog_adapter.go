package log

import (
	"encoding/hex"
	"log/slog"
)

// SlogAdapter forwards replay events to a standard library slog.Logger,
// for console inspection during development.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter wrapping logger. A nil logger uses
// slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log emits the event through slog. Message events carry hex-encoded
// bytes at debug level; everything else logs at info level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []any{
		slog.String("kind", event.Kind.String()),
	}
	if event.File != "" {
		attrs = append(attrs, slog.String("file", event.File))
	}
	if event.Protocol != "" {
		attrs = append(attrs, slog.String("protocol", event.Protocol))
	}
	if event.Line != 0 {
		attrs = append(attrs, slog.Int("line", event.Line))
	}

	switch {
	case event.Message != nil:
		m := event.Message
		attrs = append(attrs,
			slog.Int("step", m.Step),
			slog.String("sender", m.Sender),
			slog.String("payload", hex.EncodeToString(m.Payload)),
			slog.String("ciphertext", hex.EncodeToString(m.Ciphertext)),
		)
		a.logger.Debug("replay message", attrs...)
	case event.Result != nil:
		attrs = append(attrs, slog.String("outcome", event.Result.Outcome))
		if event.Result.Diagnostic != "" {
			attrs = append(attrs, slog.String("diagnostic", event.Result.Diagnostic))
		}
		a.logger.Info("replay result", attrs...)
	default:
		a.logger.Info("replay event", attrs...)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
