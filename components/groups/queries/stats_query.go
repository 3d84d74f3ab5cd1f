package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
)

// StatsInput is empty; stats cover the whole dataset regardless of viewer.
type StatsInput struct{}

type statsService interface {
	Stats(ctx context.Context) (groups.Stats, error)
}

// StatsQuery returns the summary cards shown above the tree.
type StatsQuery struct {
	service statsService
}

// NewStatsQuery builds the query.
func NewStatsQuery(service statsService) *StatsQuery {
	return &StatsQuery{service: service}
}

var _ gocommand.Querier[StatsInput, groups.Stats] = (*StatsQuery)(nil)

// Query computes the stats.
func (q *StatsQuery) Query(ctx context.Context, _ StatsInput) (groups.Stats, error) {
	return q.service.Stats(ctx)
}
