package queries

import (
	"context"
	"testing"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

type stubRowsService struct {
	calls int
}

func (s *stubRowsService) Rows(context.Context, groups.ViewerContext) (groups.View, error) {
	s.calls++
	return groups.View{}, nil
}

func TestVisibleRowsQuery(t *testing.T) {
	service := &stubRowsService{}
	query := NewVisibleRowsQuery(service)
	if _, err := query.Query(context.Background(), groups.ViewerContext{UserID: "u"}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 {
		t.Fatalf("expected 1 call, got %d", service.calls)
	}
}

func TestStatsQueryAgainstService(t *testing.T) {
	service := groups.NewService(groups.Options{Source: groups.StaticSource{Records: groups.DefaultRecords()}})
	stats, err := NewStatsQuery(service).Query(context.Background(), StatsInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if stats.TotalGroups != 6 || stats.MaxDiscount != 30 || stats.TotalCustomers != 1534 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
