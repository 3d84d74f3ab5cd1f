package groups

import "context"

// RecordSource supplies the flat list of customer group records. Implementations
// may be backed by a static list, a YAML dataset, a SQL table, or a remote API.
type RecordSource interface {
	FetchAll(ctx context.Context) ([]GroupRecord, error)
}

// ViewStateStore persists per-viewer tree view state (expansion, columns, filter).
type ViewStateStore interface {
	ViewState(ctx context.Context, viewer ViewerContext) (ViewState, error)
	SaveViewState(ctx context.Context, viewer ViewerContext, state ViewState) error
}

// RefreshHook notifies transports (REST/WebSocket) about view or dataset changes.
type RefreshHook interface {
	GroupsUpdated(ctx context.Context, event RefreshEvent) error
}

// ColorTag is the palette key used to render a group badge.
type ColorTag string

const (
	ColorWarning   ColorTag = "warning"
	ColorPrimary   ColorTag = "primary"
	ColorSecondary ColorTag = "secondary"
	ColorSuccess   ColorTag = "success"
	ColorInfo      ColorTag = "info"
)

// GroupRecord is a customer segment definition with discount and benefit metadata.
type GroupRecord struct {
	ID              int      `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	CustomerCount   int      `json:"customer_count" yaml:"customer_count"`
	DiscountPercent int      `json:"discount_percent" yaml:"discount_percent"`
	Benefits        []string `json:"benefits,omitempty" yaml:"benefits,omitempty"`
	ColorTag        ColorTag `json:"color_tag,omitempty" yaml:"color_tag,omitempty"`
	ParentID        *int     `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// IsRoot reports whether the record has no parent reference.
func (r GroupRecord) IsRoot() bool {
	return r.ParentID == nil
}

// Clone returns a deep copy so callers can hand records out without sharing slices.
func (r GroupRecord) Clone() GroupRecord {
	out := r
	if r.Benefits != nil {
		out.Benefits = append([]string(nil), r.Benefits...)
	}
	if r.ParentID != nil {
		parent := *r.ParentID
		out.ParentID = &parent
	}
	return out
}

// ParentRef is a small helper for building records with a parent reference.
func ParentRef(id int) *int {
	return &id
}

func cloneRecords(records []GroupRecord) []GroupRecord {
	if records == nil {
		return nil
	}
	out := make([]GroupRecord, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

// GroupNode is a record augmented with its children, in input order.
type GroupNode struct {
	GroupRecord
	Children []*GroupNode
}

// Row pairs a node with its depth in the forest (roots are level 0).
type Row struct {
	Node  *GroupNode
	Level int
}

// ID is a shortcut for the wrapped record id.
func (r Row) ID() int {
	if r.Node == nil {
		return 0
	}
	return r.Node.ID
}

// ViewerContext captures the active user/locale information needed to render the tree.
type ViewerContext struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
}

// RefreshEvent describes changes that transports might care about.
type RefreshEvent struct {
	Reason  string `json:"reason"`
	UserID  string `json:"user_id,omitempty"`
	GroupID int    `json:"group_id,omitempty"`
}
