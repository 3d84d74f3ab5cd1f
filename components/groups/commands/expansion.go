package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
)

// ExpansionAction names a change to the viewer's expanded set.
type ExpansionAction string

const (
	ActionExpand      ExpansionAction = "expand"
	ActionCollapse    ExpansionAction = "collapse"
	ActionToggle      ExpansionAction = "toggle"
	ActionExpandAll   ExpansionAction = "expand_all"
	ActionCollapseAll ExpansionAction = "collapse_all"
)

var errUnknownAction = errors.New("expansion command: unknown action")

// IsUnknownAction reports whether err came from an unrecognized ExpansionAction.
func IsUnknownAction(err error) bool {
	return errors.Is(err, errUnknownAction)
}

// ExpansionInput carries a tree expansion request. GroupID is ignored by the
// bulk actions.
type ExpansionInput struct {
	Viewer  groups.ViewerContext `json:"viewer"`
	Action  ExpansionAction      `json:"action"`
	GroupID int                  `json:"group_id"`
}

type expansionService interface {
	Expand(ctx context.Context, viewer groups.ViewerContext, id int) error
	Collapse(ctx context.Context, viewer groups.ViewerContext, id int) error
	Toggle(ctx context.Context, viewer groups.ViewerContext, id int) error
	ExpandAll(ctx context.Context, viewer groups.ViewerContext) error
	CollapseAll(ctx context.Context, viewer groups.ViewerContext) error
}

// ExpansionCommand dispatches expand/collapse requests to the service.
type ExpansionCommand struct {
	service   expansionService
	telemetry Telemetry
}

// NewExpansionCommand creates the command.
func NewExpansionCommand(service expansionService, telemetry Telemetry) *ExpansionCommand {
	return &ExpansionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExpansionInput] = (*ExpansionCommand)(nil)

// Execute applies the requested action for the viewer.
func (c *ExpansionCommand) Execute(ctx context.Context, msg ExpansionInput) error {
	if c.service == nil {
		return errors.New("expansion command requires service")
	}
	action := ExpansionAction(strings.ToLower(strings.TrimSpace(string(msg.Action))))
	var err error
	switch action {
	case ActionExpand:
		err = c.service.Expand(ctx, msg.Viewer, msg.GroupID)
	case ActionCollapse:
		err = c.service.Collapse(ctx, msg.Viewer, msg.GroupID)
	case ActionToggle:
		err = c.service.Toggle(ctx, msg.Viewer, msg.GroupID)
	case ActionExpandAll:
		err = c.service.ExpandAll(ctx, msg.Viewer)
	case ActionCollapseAll:
		err = c.service.CollapseAll(ctx, msg.Viewer)
	default:
		return fmt.Errorf("%w %q", errUnknownAction, msg.Action)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "customer_groups.command.expansion", map[string]any{
		"action":   string(action),
		"group_id": msg.GroupID,
		"user_id":  msg.Viewer.UserID,
	})
	return nil
}
