// Package groups re-exports the customer group service for host applications.
package groups

import (
	core "github.com/goliatone/go-customer-groups/components/groups"
)

// Service exposes the underlying components/groups.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext identifies the user a view is resolved for.
type ViewerContext = core.ViewerContext

// GroupRecord is a single customer group as stored by a RecordSource.
type GroupRecord = core.GroupRecord

// RecordSource supplies the flat group list.
type RecordSource = core.RecordSource

// ReloadOptions tunes Service.ReloadWith.
type ReloadOptions = core.ReloadOptions

// IsIntegrity reports whether a strict reload rejected the dataset.
func IsIntegrity(err error) bool {
	return core.IsIntegrity(err)
}

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewStaticService builds a service over a fixed record list, falling back to
// the bundled sample groups when records is empty.
func NewStaticService(records []GroupRecord) *Service {
	if len(records) == 0 {
		records = core.DefaultRecords()
	}
	return core.NewService(Options{Source: core.StaticSource{Records: records}})
}

// Label returns the localized UI label for key, falling back to Vietnamese.
func Label(key, locale string) string {
	return core.Label(key, locale)
}
