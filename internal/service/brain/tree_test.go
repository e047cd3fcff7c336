package brain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subbrain/internal/domain/models/brain"
)

func col(id, name string, parent *string) brain.Collection {
	return brain.Collection{ID: id, Name: name, ParentID: parent, CreatedAt: time.Unix(0, 0)}
}

// shape lists node names in pre-order
func shape(nodes []*brain.CollectionTreeNode) []string {
	var out []string
	for _, n := range FlattenCollectionTree(nodes) {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildCollectionTree_NestingAndDepth(t *testing.T) {
	input := []brain.Collection{
		col("3", "Grandchild", ptr("2")),
		col("1", "Root", nil),
		col("2", "Child", ptr("1")),
		col("4", "Other", nil),
	}

	tree := BuildCollectionTree(input)
	require.Len(t, tree, 2)

	assert.Equal(t, "Other", tree[0].Name)
	assert.Equal(t, "Root", tree[1].Name)
	assert.Equal(t, 0, tree[1].Depth)

	require.Len(t, tree[1].Children, 1)
	child := tree[1].Children[0]
	assert.Equal(t, "Child", child.Name)
	assert.Equal(t, 1, child.Depth)

	require.Len(t, child.Children, 1)
	assert.Equal(t, "Grandchild", child.Children[0].Name)
	assert.Equal(t, 2, child.Children[0].Depth)
	assert.Empty(t, child.Children[0].Children)
}

func TestBuildCollectionTree_Empty(t *testing.T) {
	tree := BuildCollectionTree(nil)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
	assert.Empty(t, FlattenCollectionTree(tree))
	assert.Empty(t, BuildDescendantMap(tree))
}

func TestBuildCollectionTree_DanglingParentBecomesRoot(t *testing.T) {
	tree := BuildCollectionTree([]brain.Collection{
		col("1", "Orphan", ptr("missing")),
		col("2", "Kid", ptr("1")),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, "Orphan", tree[0].Name)
	assert.Equal(t, 0, tree[0].Depth)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, 1, tree[0].Children[0].Depth)
}

func TestBuildCollectionTree_EveryNodeOnceEvenWithCycles(t *testing.T) {
	input := []brain.Collection{
		col("a", "A", ptr("b")),
		col("b", "B", ptr("a")),
		col("c", "C", ptr("a")),
		col("s", "Self", ptr("s")),
		col("r", "Root", nil),
	}

	tree := BuildCollectionTree(input)
	flat := FlattenCollectionTree(tree)
	require.Len(t, flat, len(input))

	seen := map[string]bool{}
	for _, n := range flat {
		assert.False(t, seen[n.ID], "node %s appears twice", n.ID)
		seen[n.ID] = true
	}

	// The cycle is broken at its lowest-sorting member
	var names []string
	for _, r := range tree {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"A", "Root", "Self"}, names)
	assert.Equal(t, []string{"A", "B", "C", "Root", "Self"}, shape(tree))
}

func TestBuildCollectionTree_DepthMatchesParent(t *testing.T) {
	input := []brain.Collection{
		col("1", "a", nil),
		col("2", "b", ptr("1")),
		col("3", "c", ptr("2")),
		col("4", "d", ptr("2")),
		col("5", "e", ptr("4")),
	}

	var check func(nodes []*brain.CollectionTreeNode, depth int)
	check = func(nodes []*brain.CollectionTreeNode, depth int) {
		for _, n := range nodes {
			assert.Equal(t, depth, n.Depth, n.Name)
			check(n.Children, depth+1)
		}
	}
	check(BuildCollectionTree(input), 0)
}

func TestBuildCollectionTree_DeterministicUnderPermutation(t *testing.T) {
	input := []brain.Collection{
		col("1", "Work", nil),
		col("2", "work", nil),
		col("3", "Projects", ptr("1")),
		col("4", "Archive", ptr("1")),
		col("5", "Same", nil),
		col("6", "Same", nil),
		col("7", "Deep", ptr("3")),
	}

	want := FlattenCollectionTree(BuildCollectionTree(input))
	var wantIDs []string
	for _, n := range want {
		wantIDs = append(wantIDs, n.ID)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]brain.Collection(nil), input...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		var gotIDs []string
		for _, n := range FlattenCollectionTree(BuildCollectionTree(shuffled)) {
			gotIDs = append(gotIDs, n.ID)
		}
		require.Equal(t, wantIDs, gotIDs)
	}
}

func TestBuildCollectionTree_LocaleAwareOrdering(t *testing.T) {
	tree := BuildCollectionTree([]brain.Collection{
		col("1", "zebra", nil),
		col("2", "Émile", nil),
		col("3", "apple", nil),
		col("4", "Banana", nil),
	})

	assert.Equal(t, []string{"apple", "Banana", "Émile", "zebra"}, shape(tree))
}

func TestFlattenCollectionTree_PreOrder(t *testing.T) {
	tree := BuildCollectionTree([]brain.Collection{
		col("1", "A", nil),
		col("2", "A1", ptr("1")),
		col("3", "A1x", ptr("2")),
		col("4", "A2", ptr("1")),
		col("5", "B", nil),
	})

	assert.Equal(t, []string{"A", "A1", "A1x", "A2", "B"}, shape(tree))
}

func TestBuildDescendantMap(t *testing.T) {
	tree := BuildCollectionTree([]brain.Collection{
		col("1", "A", nil),
		col("2", "A1", ptr("1")),
		col("3", "A1x", ptr("2")),
		col("4", "A2", ptr("1")),
		col("5", "B", nil),
	})

	m := BuildDescendantMap(tree)
	assert.Len(t, m, 5)
	assert.Equal(t, []string{"2", "3", "4"}, m["1"])
	assert.Equal(t, []string{"3"}, m["2"])
	assert.Equal(t, []string{}, m["3"])
	assert.Equal(t, []string{}, m["5"])
}
