package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
	"github.com/goliatone/go-customer-groups/components/groups/commands"
	"github.com/goliatone/go-customer-groups/components/groups/queries"
)

// Executor is the transport-facing surface of the customer group commands and
// queries. Both the net/http handlers and the go-router adapter use it.
type Executor interface {
	Rows(ctx context.Context, viewer groups.ViewerContext) (groups.View, error)
	Stats(ctx context.Context) (groups.Stats, error)
	Expansion(ctx context.Context, input commands.ExpansionInput) error
	Filter(ctx context.Context, input commands.SetFilterInput) error
	Columns(ctx context.Context, input commands.SetColumnsInput) error
	Reload(ctx context.Context, input commands.ReloadDatasetInput) error
	Refresh(ctx context.Context, input commands.RefreshInput) error
}

// CommandExecutor adapts go-command commanders and queriers to Executor.
// Unset fields fail with an error instead of panicking.
type CommandExecutor struct {
	RowsQuery        gocommand.Querier[groups.ViewerContext, groups.View]
	StatsQuery       gocommand.Querier[queries.StatsInput, groups.Stats]
	ExpansionCommand gocommand.Commander[commands.ExpansionInput]
	FilterCommand    gocommand.Commander[commands.SetFilterInput]
	ColumnsCommand   gocommand.Commander[commands.SetColumnsInput]
	ReloadCommand    gocommand.Commander[commands.ReloadDatasetInput]
	RefreshCommand   gocommand.Commander[commands.RefreshInput]
}

var _ Executor = (*CommandExecutor)(nil)

type cachePurger interface {
	Purge()
}

// NewServiceExecutor wires every command and query against one service.
// cache may be nil.
func NewServiceExecutor(service *groups.Service, cache cachePurger, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		RowsQuery:        queries.NewVisibleRowsQuery(service),
		StatsQuery:       queries.NewStatsQuery(service),
		ExpansionCommand: commands.NewExpansionCommand(service, telemetry),
		FilterCommand:    commands.NewSetFilterCommand(service, telemetry),
		ColumnsCommand:   commands.NewSetColumnsCommand(service, telemetry),
		ReloadCommand:    commands.NewReloadDatasetCommand(service, cache, telemetry),
		RefreshCommand:   commands.NewRefreshCommand(service, telemetry),
	}
}

func (e *CommandExecutor) Rows(ctx context.Context, viewer groups.ViewerContext) (groups.View, error) {
	if e.RowsQuery == nil {
		return groups.View{}, errors.New("httpapi: rows query not configured")
	}
	return e.RowsQuery.Query(ctx, viewer)
}

func (e *CommandExecutor) Stats(ctx context.Context) (groups.Stats, error) {
	if e.StatsQuery == nil {
		return groups.Stats{}, errors.New("httpapi: stats query not configured")
	}
	return e.StatsQuery.Query(ctx, queries.StatsInput{})
}

func (e *CommandExecutor) Expansion(ctx context.Context, input commands.ExpansionInput) error {
	if e.ExpansionCommand == nil {
		return errors.New("httpapi: expansion command not configured")
	}
	return e.ExpansionCommand.Execute(ctx, input)
}

func (e *CommandExecutor) Filter(ctx context.Context, input commands.SetFilterInput) error {
	if e.FilterCommand == nil {
		return errors.New("httpapi: filter command not configured")
	}
	return e.FilterCommand.Execute(ctx, input)
}

func (e *CommandExecutor) Columns(ctx context.Context, input commands.SetColumnsInput) error {
	if e.ColumnsCommand == nil {
		return errors.New("httpapi: columns command not configured")
	}
	return e.ColumnsCommand.Execute(ctx, input)
}

func (e *CommandExecutor) Reload(ctx context.Context, input commands.ReloadDatasetInput) error {
	if e.ReloadCommand == nil {
		return errors.New("httpapi: reload command not configured")
	}
	return e.ReloadCommand.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshInput) error {
	if e.RefreshCommand == nil {
		return errors.New("httpapi: refresh command not configured")
	}
	return e.RefreshCommand.Execute(ctx, input)
}
