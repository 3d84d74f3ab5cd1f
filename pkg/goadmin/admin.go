package goadmin

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	activitypkg "github.com/goliatone/go-customer-groups/pkg/activity"
	groupspkg "github.com/goliatone/go-customer-groups/pkg/groups"
)

// MenuBuilder ensures the customer groups entry exists within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures navigation link metadata. Badge carries the number of
// groups once Bootstrap has loaded the dataset.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Badge    string
	Position int
}

// Config wires the customer group service and feature flag into an admin shell.
// When Service is nil and Source is set, New builds a service from Source
// carrying the activity settings. Locale picks the default menu label.
// StrictDataset makes Bootstrap fail when records had to be excluded.
type Config struct {
	EnableCustomerGroups bool
	Locale               string
	StrictDataset        bool
	MenuCode             string
	MenuBuilder          MenuBuilder
	Service              *groupspkg.Service
	Source               groupspkg.RecordSource
	DefaultMenuItem      MenuItem
	ActivityHooks        activitypkg.Hooks
	ActivityConfig       activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed the customer groups menu entry.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableCustomerGroups && cfg.Service == nil {
		if cfg.Source == nil {
			return nil, errors.New("goadmin: customer group service or source is required when enabled")
		}
		cfg.Service = groupspkg.NewService(groupspkg.Options{
			Source:         cfg.Source,
			ActivityHooks:  cfg.ActivityHooks,
			ActivityConfig: cfg.ActivityConfig,
		})
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = groupspkg.Label("title", cfg.Locale)
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.customer_groups"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "users"
	}
	return &Admin{cfg: cfg}, nil
}

// CustomerGroups exposes the configured service when enabled.
func (a *Admin) CustomerGroups() *groupspkg.Service {
	if !a.cfg.EnableCustomerGroups {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap loads the dataset and seeds the menu entry with a group count
// badge. It is a no-op when customer groups are disabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableCustomerGroups {
		return nil
	}
	if _, err := a.cfg.Service.ReloadWith(ctx, groupspkg.ReloadOptions{Strict: a.cfg.StrictDataset}); err != nil {
		return fmt.Errorf("goadmin: load customer groups: %w", err)
	}
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	item := a.cfg.DefaultMenuItem
	if item.Badge == "" {
		stats, err := a.cfg.Service.Stats(ctx)
		if err != nil {
			return err
		}
		item.Badge = strconv.Itoa(stats.TotalGroups)
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item)
}
