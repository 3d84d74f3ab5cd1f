package groups

import (
	"encoding/json"
	"sort"
)

// ExpansionState is the set of group ids whose children are shown.
// The zero value is an empty, ready-to-use set.
type ExpansionState struct {
	ids map[int]struct{}
}

// NewExpansionState builds a set holding the given ids.
func NewExpansionState(ids ...int) ExpansionState {
	s := ExpansionState{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is expanded.
func (s ExpansionState) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of expanded ids.
func (s ExpansionState) Len() int {
	return len(s.ids)
}

// Expand adds id to the set.
func (s *ExpansionState) Expand(id int) {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	s.ids[id] = struct{}{}
}

// Collapse removes id from the set.
func (s *ExpansionState) Collapse(id int) {
	delete(s.ids, id)
}

// Toggle flips id and returns whether it is now expanded.
func (s *ExpansionState) Toggle(id int) bool {
	if s.Has(id) {
		s.Collapse(id)
		return false
	}
	s.Expand(id)
	return true
}

// ExpandAll adds every id in allIDs.
func (s *ExpansionState) ExpandAll(allIDs []int) {
	for _, id := range allIDs {
		s.Expand(id)
	}
}

// CollapseAll empties the set.
func (s *ExpansionState) CollapseAll() {
	s.ids = nil
}

// IDs returns the expanded ids in ascending order.
func (s ExpansionState) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy.
func (s ExpansionState) Clone() ExpansionState {
	return NewExpansionState(s.IDs()...)
}

// MarshalJSON encodes the set as a sorted id array.
func (s ExpansionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an id array.
func (s *ExpansionState) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewExpansionState(ids...)
	return nil
}

// GateRows keeps the rows that an expand/collapse tree would actually show.
// Level-0 rows always pass. A deeper row passes only when every ancestor up to
// and including its root is expanded. Ancestors are resolved through records,
// the full unfiltered list, so collapsing a group that fails the filter still
// hides its descendants.
func GateRows(rows []Row, expanded ExpansionState, records []GroupRecord) []Row {
	parents := parentIndex(records)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Node == nil {
			continue
		}
		if row.Level == 0 || ancestorsExpanded(row.Node.ID, parents, expanded) {
			out = append(out, row)
		}
	}
	return out
}

func ancestorsExpanded(id int, parents map[int]*int, expanded ExpansionState) bool {
	// a chain longer than the record count can only be a cycle
	limit := len(parents)
	cur := parents[id]
	for steps := 0; cur != nil; steps++ {
		if steps > limit || !expanded.Has(*cur) {
			return false
		}
		cur = parents[*cur]
	}
	return true
}

func parentIndex(records []GroupRecord) map[int]*int {
	parents := make(map[int]*int, len(records))
	for _, rec := range records {
		if _, seen := parents[rec.ID]; seen {
			continue
		}
		parents[rec.ID] = rec.ParentID
	}
	return parents
}

// ParentIDs returns the ids that have at least one child in the record set.
func ParentIDs(records []GroupRecord) map[int]bool {
	out := make(map[int]bool)
	for _, rec := range records {
		if rec.ParentID != nil && *rec.ParentID != rec.ID {
			out[*rec.ParentID] = true
		}
	}
	return out
}
