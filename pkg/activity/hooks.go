// Package activity defines audit events emitted when viewers change the
// customer group tree, plus hooks that forward them to activity feeds.
package activity

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// Event is a single audit entry.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f HookFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Hooks fans an event out to several hooks.
type Hooks []Hook

// Notify normalizes the event and forwards it to every hook. Events without a
// verb are dropped. Hook errors are joined; one failing hook does not stop the rest.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims identifiers and copies the mutable fields so hooks
// cannot alter the caller's event.
func NormalizeEvent(event Event) Event {
	event.Verb = strings.TrimSpace(event.Verb)
	event.ActorID = strings.TrimSpace(event.ActorID)
	event.UserID = strings.TrimSpace(event.UserID)
	event.TenantID = strings.TrimSpace(event.TenantID)
	event.ObjectType = strings.TrimSpace(event.ObjectType)
	event.ObjectID = strings.TrimSpace(event.ObjectID)
	event.Channel = strings.TrimSpace(event.Channel)
	event.DefinitionCode = strings.TrimSpace(event.DefinitionCode)
	if event.Metadata != nil {
		event.Metadata = maps.Clone(event.Metadata)
	}
	if event.Recipients != nil {
		event.Recipients = slices.Clone(event.Recipients)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}

// CaptureHook stores every event it receives. Useful in tests.
type CaptureHook struct {
	Events []Event
}

// Notify appends the event.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.Events = append(h.Events, event)
	return nil
}
