package groups

import (
	"context"

	"github.com/goliatone/go-customer-groups/pkg/activity"
)

// Activity object types.
const (
	ObjectGroup = "customer_group"
	ObjectView  = "customer_group_view"
)

// ActivityContext names who acted, on whose behalf and within which tenant.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityKey struct{}

// ContextWithActivity attaches audit identity to ctx. Host applications set it
// in middleware when the acting admin differs from the viewer.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	return context.WithValue(ctx, activityKey{}, meta)
}

// ActivityFromContext returns the identity attached by ContextWithActivity.
func ActivityFromContext(ctx context.Context) (ActivityContext, bool) {
	meta, ok := ctx.Value(activityKey{}).(ActivityContext)
	return meta, ok
}

// resolve fills gaps from the viewer. The actor defaults to the user.
func (m ActivityContext) resolve(viewer ViewerContext) ActivityContext {
	if m.UserID == "" {
		m.UserID = viewer.UserID
	}
	if m.ActorID == "" {
		m.ActorID = m.UserID
	}
	return m
}

// viewActivity builds the audit event for a view-state mutation. A mutation
// without a group id targets the viewer's own view.
func viewActivity(ctx context.Context, viewer ViewerContext, verb, groupID string, metadata map[string]any) activity.Event {
	meta, _ := ActivityFromContext(ctx)
	meta = meta.resolve(viewer)
	event := activity.Event{
		Verb:       verb,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: ObjectGroup,
		ObjectID:   groupID,
		Metadata:   metadata,
	}
	if groupID == "" {
		event.ObjectType = ObjectView
		event.ObjectID = viewer.UserID
	}
	if viewer.Locale != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]any{}
		}
		event.Metadata["locale"] = viewer.Locale
	}
	return event
}
