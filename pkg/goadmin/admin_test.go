package goadmin_test

import (
	"context"
	"testing"

	core "github.com/goliatone/go-customer-groups/components/groups"
	"github.com/goliatone/go-customer-groups/pkg/activity"
	"github.com/goliatone/go-customer-groups/pkg/goadmin"
	groupspkg "github.com/goliatone/go-customer-groups/pkg/groups"
)

type stubMenuBuilder struct {
	calls int
	last  goadmin.MenuItem
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item goadmin.MenuItem) error {
	s.calls++
	s.last = item
	return nil
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableCustomerGroups: true,
		Service:              groupspkg.NewStaticService(nil),
		MenuBuilder:          builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 1 {
		t.Fatalf("expected 1 call, got %d", builder.calls)
	}
	if builder.last.Route != "admin.customer_groups" || builder.last.Label != "Nhóm khách hàng" {
		t.Fatalf("unexpected default menu item %+v", builder.last)
	}
	if builder.last.Badge != "6" {
		t.Fatalf("expected badge with 6 groups, got %q", builder.last.Badge)
	}
	if admin.CustomerGroups() == nil {
		t.Fatalf("expected customer group service")
	}
}

func TestAdminBuildsServiceFromSource(t *testing.T) {
	capture := &activity.CaptureHook{}
	admin, err := goadmin.New(goadmin.Config{
		EnableCustomerGroups: true,
		Source:               core.StaticSource{Records: core.DefaultRecords()},
		ActivityHooks:        activity.Hooks{capture},
		ActivityConfig:       activity.Config{Enabled: true},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	service := admin.CustomerGroups()
	if service == nil {
		t.Fatalf("expected service built from source")
	}
	if err := service.Expand(context.Background(), core.ViewerContext{UserID: "admin"}, 3); err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected activity hooks to be wired, got %d events", len(capture.Events))
	}
}

func TestAdminRequiresServiceOrSource(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableCustomerGroups: true}); err == nil {
		t.Fatalf("expected error without service or source")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{MenuBuilder: builder})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 0 {
		t.Fatalf("expected 0 calls, got %d", builder.calls)
	}
	if admin.CustomerGroups() != nil {
		t.Fatalf("expected nil service when disabled")
	}
}

func TestAdminLocalizesMenuLabel(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableCustomerGroups: true,
		Locale:               "en",
		Service:              groupspkg.NewStaticService(nil),
		MenuBuilder:          builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.last.Label != "Customer groups" {
		t.Fatalf("expected english label, got %q", builder.last.Label)
	}
}

func TestAdminStrictDatasetRejectsOrphans(t *testing.T) {
	records := append(core.DefaultRecords(), core.GroupRecord{ID: 40, Name: "lost", ParentID: core.ParentRef(99)})
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableCustomerGroups: true,
		StrictDataset:        true,
		Service:              groupspkg.NewStaticService(records),
		MenuBuilder:          builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	err = admin.Bootstrap(context.Background())
	if !groupspkg.IsIntegrity(err) {
		t.Fatalf("expected strict bootstrap to fail on an orphan, got %v", err)
	}
	if builder.calls != 0 {
		t.Fatalf("expected no menu seeding after a rejected dataset")
	}
}
