package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	groups "github.com/goliatone/go-customer-groups/components/groups"
)

type rowsService interface {
	Rows(ctx context.Context, viewer groups.ViewerContext) (groups.View, error)
}

// VisibleRowsQuery resolves the viewer's filtered, gated rows.
type VisibleRowsQuery struct {
	service rowsService
}

// NewVisibleRowsQuery builds the query.
func NewVisibleRowsQuery(service rowsService) *VisibleRowsQuery {
	return &VisibleRowsQuery{service: service}
}

var _ gocommand.Querier[groups.ViewerContext, groups.View] = (*VisibleRowsQuery)(nil)

// Query returns the current view for the viewer.
func (q *VisibleRowsQuery) Query(ctx context.Context, viewer groups.ViewerContext) (groups.View, error) {
	return q.service.Rows(ctx, viewer)
}
