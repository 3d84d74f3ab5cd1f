package usersink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-customer-groups/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()
	objectID := "42"

	event := activity.Event{
		Verb:           "customer_groups.tree.expand",
		ActorID:        actorID.String(),
		UserID:         userID.String(),
		TenantID:       tenantID.String(),
		ObjectType:     "customer_group",
		ObjectID:       objectID,
		Channel:        "customer_groups",
		DefinitionCode: "customer_group:expand",
		Recipients:     []string{"crm@shop.example"},
		Metadata: map[string]any{
			"locale": "vi",
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != "customer_groups.tree.expand" || record.ObjectType != "customer_group" || record.ObjectID != objectID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "customer_groups" {
		t.Fatalf("expected channel customer_groups got %q", record.Channel)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["definition_code"] != "customer_group:expand" {
		t.Fatalf("expected definition_code metadata got %v", record.Data["definition_code"])
	}
	if record.Data["locale"] != "vi" {
		t.Fatalf("expected locale metadata got %v", record.Data["locale"])
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "crm@shop.example" {
		t.Fatalf("expected recipients metadata got %v", record.Data["recipients"])
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDerivesStableIDsForNonUUIDViewers(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	for _, actor := range []string{"Admin@Shop.example", "admin@shop.example"} {
		err := hook.Notify(context.Background(), activity.Event{
			Verb:    "customer_groups.tree.collapse",
			ActorID: actor,
		})
		if err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
	first, second := sink.records[0], sink.records[1]
	if first.ActorID == uuid.Nil || first.ActorID != second.ActorID {
		t.Fatalf("expected one stable actor uuid, got %s and %s", first.ActorID, second.ActorID)
	}
	if first.ActorID.Version() != 5 {
		t.Fatalf("expected a name-based uuid, got version %d", first.ActorID.Version())
	}
	if first.Data["actor_ref"] != "Admin@Shop.example" {
		t.Fatalf("expected raw actor id in data, got %v", first.Data["actor_ref"])
	}
	if first.UserID != uuid.Nil {
		t.Fatalf("expected empty user to stay nil, got %s", first.UserID)
	}
	if _, ok := first.Data["user_ref"]; ok {
		t.Fatalf("did not expect user_ref for an empty user id")
	}
}

func TestHookNotifyPropagatesSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink offline")}
	hook := Hook{Sink: sink}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "v"}); err == nil {
		t.Fatalf("expected sink error")
	}
}
