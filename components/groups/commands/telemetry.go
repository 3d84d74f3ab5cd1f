package commands

import (
	"context"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

// Telemetry is the sink commands report to. Service telemetry can be reused as is.
type Telemetry = groups.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}
