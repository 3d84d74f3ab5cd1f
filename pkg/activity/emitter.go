package activity

import "context"

// DefaultChannel tags events that do not name a channel.
const DefaultChannel = "customer_groups"

// Config toggles emission and sets the default channel.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter sends events to hooks when enabled.
type Emitter struct {
	hooks   Hooks
	channel string
	enabled bool
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or
// there are no hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{
		hooks:   hooks,
		channel: channel,
		enabled: cfg.Enabled && len(hooks) > 0,
	}
}

// Enabled reports whether Emit will forward anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit fills the channel and forwards the event.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
