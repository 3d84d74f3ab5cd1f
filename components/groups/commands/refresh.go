package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
)

// RefreshInput emits a refresh notification without changing state.
type RefreshInput struct {
	Event groups.RefreshEvent
}

type refreshNotifier interface {
	NotifyGroupsUpdated(ctx context.Context, event groups.RefreshEvent) error
}

// RefreshCommand triggers refresh hooks, e.g. after an external edit.
type RefreshCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshCommand creates the command.
func NewRefreshCommand(service refreshNotifier, telemetry Telemetry) *RefreshCommand {
	return &RefreshCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshInput] = (*RefreshCommand)(nil)

// Execute notifies the service's refresh hook.
func (c *RefreshCommand) Execute(ctx context.Context, msg RefreshInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.NotifyGroupsUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "customer_groups.command.refresh", map[string]any{
		"reason":   msg.Event.Reason,
		"group_id": msg.Event.GroupID,
	})
	return nil
}
