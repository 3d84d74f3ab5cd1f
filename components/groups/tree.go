package groups

import (
	"errors"
	"fmt"
)

// IssueKind classifies data-integrity faults found while building the forest.
type IssueKind string

const (
	// IssueOrphan marks a record whose parent id does not resolve.
	IssueOrphan IssueKind = "orphan"
	// IssueSelfReference marks a record that names itself as parent.
	IssueSelfReference IssueKind = "self_reference"
	// IssueCycle marks a record that is part of a parent cycle.
	IssueCycle IssueKind = "cycle"
	// IssueDuplicateID marks a repeated id; the first occurrence wins.
	IssueDuplicateID IssueKind = "duplicate_id"
	// IssueDetached marks a record whose ancestor chain hits one of the faults above.
	IssueDetached IssueKind = "detached"
)

// IntegrityIssue reports one record excluded from the forest.
type IntegrityIssue struct {
	Kind     IssueKind `json:"kind"`
	ID       int       `json:"id"`
	ParentID *int      `json:"parent_id,omitempty"`
}

func (i IntegrityIssue) Error() string {
	if i.ParentID == nil {
		return fmt.Sprintf("groups: record %d excluded (%s)", i.ID, i.Kind)
	}
	return fmt.Sprintf("groups: record %d excluded (%s, parent %d)", i.ID, i.Kind, *i.ParentID)
}

// BuildReport lists every record that could not be attached to the forest.
type BuildReport struct {
	Issues []IntegrityIssue `json:"issues,omitempty"`
}

// OK reports whether every record was attached.
func (r BuildReport) OK() bool {
	return len(r.Issues) == 0
}

// Err joins all issues into a single error, or nil when the dataset is clean.
func (r BuildReport) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Issues))
	for i, issue := range r.Issues {
		errs[i] = issue
	}
	return errors.Join(errs...)
}

// Count returns the number of issues of the given kind.
func (r BuildReport) Count(kind IssueKind) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

// Forest is an ordered collection of rooted trees plus the faults found while building it.
type Forest struct {
	Roots  []*GroupNode
	Report BuildReport
	nodes  map[int]*GroupNode
}

// Node looks up an attached node by id.
func (f Forest) Node(id int) (*GroupNode, bool) {
	node, ok := f.nodes[id]
	return node, ok
}

// Size returns the number of nodes reachable from the roots.
func (f Forest) Size() int {
	return len(f.nodes)
}

const (
	stateUnknown = iota
	stateVisiting
	stateRooted
	stateBroken
)

// BuildForest turns a flat list of records into a forest. Every record gets its
// own node in an id-indexed arena; parent chains are resolved before anything is
// attached, so orphans, self references and cycles are excluded up front and
// traversal of the result always terminates. Sibling order follows input order.
func BuildForest(records []GroupRecord) Forest {
	index := make(map[int]int, len(records))
	kinds := make(map[int]IssueKind)
	var duplicates []IntegrityIssue
	for i, rec := range records {
		if _, exists := index[rec.ID]; exists {
			duplicates = append(duplicates, IntegrityIssue{Kind: IssueDuplicateID, ID: rec.ID, ParentID: rec.ParentID})
			continue
		}
		index[rec.ID] = i
	}

	state := make(map[int]int, len(index))
	resolve := func(id int) {
		var path []int
		result := stateRooted
		cur := id
	walk:
		for {
			switch state[cur] {
			case stateRooted, stateBroken:
				result = state[cur]
				break walk
			case stateVisiting:
				for i := len(path) - 1; i >= 0; i-- {
					kinds[path[i]] = IssueCycle
					if path[i] == cur {
						break
					}
				}
				result = stateBroken
				break walk
			}
			state[cur] = stateVisiting
			path = append(path, cur)
			rec := records[index[cur]]
			if rec.IsRoot() {
				result = stateRooted
				break
			}
			parent := *rec.ParentID
			if parent == cur {
				kinds[cur] = IssueSelfReference
				result = stateBroken
				break
			}
			if _, ok := index[parent]; !ok {
				kinds[cur] = IssueOrphan
				result = stateBroken
				break
			}
			cur = parent
		}
		for _, id := range path {
			state[id] = result
			if result == stateBroken {
				if _, flagged := kinds[id]; !flagged {
					kinds[id] = IssueDetached
				}
			}
		}
	}

	nodes := make(map[int]*GroupNode, len(index))
	for i, rec := range records {
		if index[rec.ID] != i {
			continue
		}
		if state[rec.ID] == stateUnknown {
			resolve(rec.ID)
		}
		if state[rec.ID] == stateRooted {
			nodes[rec.ID] = &GroupNode{GroupRecord: rec.Clone()}
		}
	}

	forest := Forest{nodes: nodes}
	for i, rec := range records {
		if index[rec.ID] != i {
			continue
		}
		node, ok := nodes[rec.ID]
		if !ok {
			forest.Report.Issues = append(forest.Report.Issues, IntegrityIssue{
				Kind:     kinds[rec.ID],
				ID:       rec.ID,
				ParentID: rec.ParentID,
			})
			continue
		}
		if rec.IsRoot() {
			forest.Roots = append(forest.Roots, node)
			continue
		}
		parent := nodes[*rec.ParentID]
		parent.Children = append(parent.Children, node)
	}
	forest.Report.Issues = append(forest.Report.Issues, duplicates...)
	return forest
}

// Flatten walks the forest in pre-order and returns one row per node, carrying
// the depth of each node (roots at level 0).
func Flatten(roots []*GroupNode) []Row {
	var rows []Row
	var visit func(node *GroupNode, level int)
	visit = func(node *GroupNode, level int) {
		if node == nil {
			return
		}
		rows = append(rows, Row{Node: node, Level: level})
		for _, child := range node.Children {
			visit(child, level+1)
		}
	}
	for _, root := range roots {
		visit(root, 0)
	}
	return rows
}
