package log

// Logger is the interface the harness uses to emit replay events.
// Pass NoopLogger to disable event capture.
type Logger interface {
	// Log records a replay event. Implementations must be safe for
	// concurrent use.
	Log(event Event)
}

// NoopLogger discards all events. It is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
