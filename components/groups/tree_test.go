package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id int, parent *int) GroupRecord {
	return GroupRecord{ID: id, Name: "group", ParentID: parent}
}

func rowIDs(rows []Row) []int {
	ids := make([]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID()
	}
	return ids
}

func TestBuildForestAttachesChildrenInInputOrder(t *testing.T) {
	records := []GroupRecord{
		rec(1, nil),
		rec(3, ParentRef(1)),
		rec(2, ParentRef(1)),
		rec(4, nil),
		rec(5, ParentRef(3)),
	}
	forest := BuildForest(records)

	require.True(t, forest.Report.OK())
	require.Len(t, forest.Roots, 2)
	assert.Equal(t, 1, forest.Roots[0].ID)
	assert.Equal(t, 4, forest.Roots[1].ID)
	require.Len(t, forest.Roots[0].Children, 2)
	assert.Equal(t, 3, forest.Roots[0].Children[0].ID)
	assert.Equal(t, 2, forest.Roots[0].Children[1].ID)
	assert.Equal(t, 5, forest.Roots[0].Children[0].Children[0].ID)
	assert.Equal(t, 5, forest.Size())
}

func TestBuildForestChildBeforeParentInInput(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		rec(2, ParentRef(1)),
		rec(1, nil),
	})
	require.Len(t, forest.Roots, 1)
	require.Len(t, forest.Roots[0].Children, 1)
	assert.Equal(t, 2, forest.Roots[0].Children[0].ID)
}

func TestBuildForestCopiesRecords(t *testing.T) {
	records := []GroupRecord{{ID: 1, Name: "VIP", Benefits: []string{"a"}}}
	forest := BuildForest(records)
	records[0].Name = "changed"
	records[0].Benefits[0] = "changed"

	node, ok := forest.Node(1)
	require.True(t, ok)
	assert.Equal(t, "VIP", node.Name)
	assert.Equal(t, "a", node.Benefits[0])
}

func TestBuildForestExcludesOrphan(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		rec(1, nil),
		rec(9, ParentRef(99)),
	})

	_, ok := forest.Node(9)
	assert.False(t, ok)
	assert.NotContains(t, rowIDs(Flatten(forest.Roots)), 9)
	require.Len(t, forest.Report.Issues, 1)
	issue := forest.Report.Issues[0]
	assert.Equal(t, IssueOrphan, issue.Kind)
	assert.Equal(t, 9, issue.ID)
	require.NotNil(t, issue.ParentID)
	assert.Equal(t, 99, *issue.ParentID)
	assert.Error(t, forest.Report.Err())
}

func TestBuildForestExcludesDescendantsOfOrphan(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		rec(9, ParentRef(99)),
		rec(10, ParentRef(9)),
		rec(11, ParentRef(10)),
	})
	assert.Empty(t, forest.Roots)
	assert.Equal(t, 1, forest.Report.Count(IssueOrphan))
	assert.Equal(t, 2, forest.Report.Count(IssueDetached))
}

func TestBuildForestExcludesSelfReference(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		rec(1, nil),
		rec(2, ParentRef(2)),
		rec(3, ParentRef(2)),
	})
	assert.Equal(t, []int{1}, rowIDs(Flatten(forest.Roots)))
	assert.Equal(t, 1, forest.Report.Count(IssueSelfReference))
	assert.Equal(t, 1, forest.Report.Count(IssueDetached))
}

func TestBuildForestExcludesCycles(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		rec(1, nil),
		rec(2, ParentRef(4)),
		rec(3, ParentRef(2)),
		rec(4, ParentRef(3)),
		rec(5, ParentRef(4)),
	})

	assert.Equal(t, []int{1}, rowIDs(Flatten(forest.Roots)))
	assert.Equal(t, 3, forest.Report.Count(IssueCycle))
	assert.Equal(t, 1, forest.Report.Count(IssueDetached))
	for _, issue := range forest.Report.Issues {
		if issue.ID == 5 {
			assert.Equal(t, IssueDetached, issue.Kind)
		}
	}
}

func TestBuildForestCycleReachedFromTail(t *testing.T) {
	// 5 is visited first and walks into the 2-3 cycle; only the cycle
	// members are tagged as cycle.
	forest := BuildForest([]GroupRecord{
		rec(5, ParentRef(3)),
		rec(2, ParentRef(3)),
		rec(3, ParentRef(2)),
	})
	kinds := map[int]IssueKind{}
	for _, issue := range forest.Report.Issues {
		kinds[issue.ID] = issue.Kind
	}
	assert.Equal(t, IssueDetached, kinds[5])
	assert.Equal(t, IssueCycle, kinds[2])
	assert.Equal(t, IssueCycle, kinds[3])
}

func TestBuildForestDuplicateIDFirstWins(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		{ID: 1, Name: "first"},
		{ID: 1, Name: "second"},
	})
	require.Len(t, forest.Roots, 1)
	assert.Equal(t, "first", forest.Roots[0].Name)
	assert.Equal(t, 1, forest.Report.Count(IssueDuplicateID))
}

func TestBuildForestEmpty(t *testing.T) {
	forest := BuildForest(nil)
	assert.Empty(t, forest.Roots)
	assert.True(t, forest.Report.OK())
	assert.NoError(t, forest.Report.Err())
	assert.Empty(t, Flatten(forest.Roots))
}

func TestFlattenPreOrderWithLevels(t *testing.T) {
	forest := BuildForest([]GroupRecord{
		rec(1, nil),
		rec(2, ParentRef(1)),
		rec(3, ParentRef(2)),
		rec(4, ParentRef(1)),
		rec(5, nil),
	})
	rows := Flatten(forest.Roots)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, rowIDs(rows))
	levels := make([]int, len(rows))
	for i, row := range rows {
		levels[i] = row.Level
	}
	assert.Equal(t, []int{0, 1, 2, 1, 0}, levels)
}

func TestIntegrityIssueError(t *testing.T) {
	assert.Equal(t, "groups: record 9 excluded (orphan, parent 99)",
		IntegrityIssue{Kind: IssueOrphan, ID: 9, ParentID: ParentRef(99)}.Error())
	assert.Equal(t, "groups: record 1 excluded (duplicate_id)",
		IntegrityIssue{Kind: IssueDuplicateID, ID: 1}.Error())
}
