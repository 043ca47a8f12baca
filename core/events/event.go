package events

import (
	"log/slog"

	"pifpchain/core/types"
)

// Event represents a structured state change emitted by a module.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is the default for engines whose callers do not wire an event sink.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// payloadCarrier is implemented by events that expose a canonical payload.
type payloadCarrier interface {
	Event() *types.Event
}

// SlogEmitter writes every emitted event as a structured log line. Payload
// attributes are flattened into the log record.
type SlogEmitter struct {
	Logger *slog.Logger
}

// Emit implements the Emitter interface.
func (s SlogEmitter) Emit(evt Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if evt == nil {
		return
	}
	args := make([]any, 0, 8)
	if carrier, ok := evt.(payloadCarrier); ok {
		if payload := carrier.Event(); payload != nil {
			for key, value := range payload.Attributes {
				args = append(args, slog.String(key, value))
			}
		}
	}
	logger.Info(evt.EventType(), args...)
}
