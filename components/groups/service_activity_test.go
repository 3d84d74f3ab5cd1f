package groups

import (
	"context"
	"testing"

	"github.com/goliatone/go-customer-groups/pkg/activity"
)

func TestExpandEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		Source:         StaticSource{Records: DefaultRecords()},
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: true, Channel: "crm"},
	})
	ctx := ContextWithActivity(context.Background(), ActivityContext{
		ActorID:  "actor-1",
		UserID:   "user-1",
		TenantID: "tenant-1",
	})

	if err := service.Expand(ctx, ViewerContext{UserID: "user-1"}, 3); err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Verb != EventExpand || event.ObjectType != "customer_group" || event.ObjectID != "3" {
		t.Fatalf("unexpected event payload: %+v", event)
	}
	if event.ActorID != "actor-1" || event.UserID != "user-1" || event.TenantID != "tenant-1" {
		t.Fatalf("unexpected actor context: %+v", event)
	}
	if event.Channel != "crm" {
		t.Fatalf("expected channel crm, got %q", event.Channel)
	}
	if event.Metadata["group_id"] != 3 {
		t.Fatalf("expected group_id metadata, got %+v", event.Metadata)
	}
}

func TestSetFilterEmitsViewActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		Source:         StaticSource{Records: DefaultRecords()},
		ActivityHooks:  activity.Hooks{capture},
		ActivityConfig: activity.Config{Enabled: true},
	})

	err := service.SetFilter(context.Background(), ViewerContext{UserID: "user-7"}, FilterInput{Query: "vip", Bracket: "medium"})
	if err != nil {
		t.Fatalf("SetFilter returned error: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 activity event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.ObjectType != "customer_group_view" || event.ObjectID != "user-7" {
		t.Fatalf("unexpected object: %+v", event)
	}
	if event.ActorID != "user-7" {
		t.Fatalf("expected actor to default to viewer, got %q", event.ActorID)
	}
	if event.Metadata["active"] != 2 {
		t.Fatalf("expected active filter count metadata, got %+v", event.Metadata)
	}
	if event.Channel != activity.DefaultChannel {
		t.Fatalf("expected default channel, got %q", event.Channel)
	}
}

func TestActivityDisabledByDefault(t *testing.T) {
	capture := &activity.CaptureHook{}
	service := NewService(Options{
		Source:        StaticSource{Records: DefaultRecords()},
		ActivityHooks: activity.Hooks{capture},
	})
	if err := service.CollapseAll(context.Background(), ViewerContext{UserID: "u"}); err != nil {
		t.Fatalf("CollapseAll returned error: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no activity when disabled, got %d", len(capture.Events))
	}
}

func TestViewActivityDefaultsIdentityFromViewer(t *testing.T) {
	if _, ok := ActivityFromContext(context.Background()); ok {
		t.Fatalf("expected no activity context on a bare context")
	}
	event := viewActivity(context.Background(), ViewerContext{UserID: "user-2", Locale: "en"}, EventColumnsChanged, "", nil)
	if event.ActorID != "user-2" || event.UserID != "user-2" {
		t.Fatalf("expected viewer identity, got actor=%q user=%q", event.ActorID, event.UserID)
	}
	if event.ObjectType != ObjectView || event.ObjectID != "user-2" {
		t.Fatalf("expected view object, got %s/%s", event.ObjectType, event.ObjectID)
	}
	if event.Metadata["locale"] != "en" {
		t.Fatalf("expected locale metadata, got %+v", event.Metadata)
	}
}
