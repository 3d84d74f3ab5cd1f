package groups_test

import (
	"context"
	"testing"

	groupspkg "github.com/goliatone/go-customer-groups/pkg/groups"
)

func TestNewStaticServiceFallsBackToSampleGroups(t *testing.T) {
	service := groupspkg.NewStaticService(nil)
	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalGroups != 6 {
		t.Fatalf("expected sample groups, got %d", stats.TotalGroups)
	}

	custom := groupspkg.NewStaticService([]groupspkg.GroupRecord{{ID: 1, Name: "Solo"}})
	view, err := custom.Rows(context.Background(), groupspkg.ViewerContext{UserID: "u"})
	if err != nil {
		t.Fatalf("Rows returned error: %v", err)
	}
	if len(view.Rows) != 1 || view.Rows[0].Name != "Solo" {
		t.Fatalf("unexpected rows %#v", view.Rows)
	}
}
