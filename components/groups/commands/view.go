package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
)

// SetFilterInput replaces the viewer's filter criteria.
type SetFilterInput struct {
	Viewer groups.ViewerContext `json:"viewer"`
	Filter groups.FilterInput   `json:"filter"`
}

type filterService interface {
	SetFilter(ctx context.Context, viewer groups.ViewerContext, input groups.FilterInput) error
}

// SetFilterCommand stores the viewer's filter.
type SetFilterCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSetFilterCommand creates the command.
func NewSetFilterCommand(service filterService, telemetry Telemetry) *SetFilterCommand {
	return &SetFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetFilterInput] = (*SetFilterCommand)(nil)

// Execute delegates to the service.
func (c *SetFilterCommand) Execute(ctx context.Context, msg SetFilterInput) error {
	if c.service == nil {
		return errors.New("filter command requires service")
	}
	if err := c.service.SetFilter(ctx, msg.Viewer, msg.Filter); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "customer_groups.command.filter", map[string]any{
		"user_id": msg.Viewer.UserID,
		"active":  msg.Filter.Criteria().ActiveCount(),
	})
	return nil
}

// SetColumnsInput lists the column keys the viewer wants shown.
type SetColumnsInput struct {
	Viewer  groups.ViewerContext `json:"viewer"`
	Columns []string             `json:"columns"`
}

type columnsService interface {
	SetColumns(ctx context.Context, viewer groups.ViewerContext, columns []string) error
}

// SetColumnsCommand stores the viewer's column selection.
type SetColumnsCommand struct {
	service   columnsService
	telemetry Telemetry
}

// NewSetColumnsCommand creates the command.
func NewSetColumnsCommand(service columnsService, telemetry Telemetry) *SetColumnsCommand {
	return &SetColumnsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetColumnsInput] = (*SetColumnsCommand)(nil)

// Execute delegates to the service.
func (c *SetColumnsCommand) Execute(ctx context.Context, msg SetColumnsInput) error {
	if c.service == nil {
		return errors.New("columns command requires service")
	}
	if err := c.service.SetColumns(ctx, msg.Viewer, msg.Columns); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "customer_groups.command.columns", map[string]any{
		"user_id": msg.Viewer.UserID,
		"columns": len(msg.Columns),
	})
	return nil
}
