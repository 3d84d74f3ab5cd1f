package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
)

// ReloadDatasetInput requests a reload from the record source.
type ReloadDatasetInput struct {
	// Strict rejects the fetched records, keeping the live dataset, when any
	// of them would be excluded from the tree.
	Strict bool `json:"strict"`
}

type reloadService interface {
	ReloadWith(ctx context.Context, opts groups.ReloadOptions) (groups.BuildReport, error)
}

type cachePurger interface {
	Purge()
}

// ReloadDatasetCommand refetches the records and drops cached charts.
type ReloadDatasetCommand struct {
	service   reloadService
	cache     cachePurger
	telemetry Telemetry
}

// NewReloadDatasetCommand creates the command. cache may be nil.
func NewReloadDatasetCommand(service reloadService, cache cachePurger, telemetry Telemetry) *ReloadDatasetCommand {
	return &ReloadDatasetCommand{service: service, cache: cache, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReloadDatasetInput] = (*ReloadDatasetCommand)(nil)

// Execute reloads the dataset.
func (c *ReloadDatasetCommand) Execute(ctx context.Context, msg ReloadDatasetInput) error {
	if c.service == nil {
		return errors.New("reload command requires service")
	}
	report, err := c.service.ReloadWith(ctx, groups.ReloadOptions{Strict: msg.Strict})
	c.telemetry.Record(ctx, "customer_groups.command.reload", map[string]any{
		"issues":   len(report.Issues),
		"strict":   msg.Strict,
		"rejected": groups.IsIntegrity(err),
	})
	if err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Purge()
	}
	return nil
}
