// Package usersink forwards activity events to go-users activity sinks.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-customer-groups/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the go-users activity logger contract.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook adapts an activity.Hook onto a go-users Sink.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// ViewerNamespace seeds the name-based UUIDs derived for viewer ids that are
// not UUIDs themselves (emails, usernames).
var ViewerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:customer-groups:viewer"))

// Notify maps the event to an ActivityRecord. Non-UUID identifiers become
// stable UUIDv5 values and the raw id is kept in Data under "<field>_ref".
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	data := recordData(event)
	return h.Sink.Log(ctx, types.ActivityRecord{
		ActorID:    resolveID(event.ActorID, "actor_ref", data),
		UserID:     resolveID(event.UserID, "user_ref", data),
		TenantID:   resolveID(event.TenantID, "tenant_ref", data),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	})
}

func recordData(event activity.Event) map[string]any {
	data := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = event.Recipients
	}
	return data
}

func resolveID(raw, refKey string, data map[string]any) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	data[refKey] = raw
	return uuid.NewSHA1(ViewerNamespace, []byte(strings.ToLower(raw)))
}
