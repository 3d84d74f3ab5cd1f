package groups

import (
	"context"
	"log/slog"
)

// Telemetry records tree-view events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// MultiTelemetry fans one event out to several sinks.
type MultiTelemetry []Telemetry

// Record forwards the event to every non-nil sink.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, t := range m {
		if t != nil {
			t.Record(ctx, event, payload)
		}
	}
}

// LogTelemetry writes every event as a debug log line.
type LogTelemetry struct {
	Logger *slog.Logger
}

// Record logs the event with its payload as attributes.
func (t LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t.Logger == nil {
		return
	}
	attrs := make([]slog.Attr, 0, len(payload))
	for key, value := range payload {
		attrs = append(attrs, slog.Any(key, value))
	}
	t.Logger.LogAttrs(ctx, slog.LevelDebug, event, attrs...)
}

func normalizeLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
