package brain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"subbrain/internal/domain/models/brain"
)

// BuildCollectionTree assembles the flat collection list into a forest.
//
// Collections whose parent is missing from the input become roots. Siblings
// are ordered by name using locale-aware collation, ties broken by ID, so the
// result does not depend on input order. Every input collection appears
// exactly once: members of a parent cycle (which no root can reach) are
// detached from their parent and promoted to roots.
func BuildCollectionTree(collections []brain.Collection) []*brain.CollectionTreeNode {
	// Collator holds scratch buffers and is not safe for concurrent use
	cmp := newSiblingOrder()

	// First pass: create all nodes
	nodes := make(map[string]*brain.CollectionTreeNode, len(collections))
	order := make([]*brain.CollectionTreeNode, 0, len(collections))
	for _, c := range collections {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		node := &brain.CollectionTreeNode{
			Collection: c,
			Children:   []*brain.CollectionTreeNode{},
		}
		nodes[c.ID] = node
		order = append(order, node)
	}

	// Second pass: attach children to parents, everything else is a root
	parentOf := make(map[string]*brain.CollectionTreeNode, len(order))
	roots := []*brain.CollectionTreeNode{}
	for _, node := range order {
		if node.ParentID != nil && *node.ParentID != node.ID {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				parentOf[node.ID] = parent
				continue
			}
		}
		roots = append(roots, node)
	}

	// Third pass: order siblings and assign depth from the roots down
	for _, node := range order {
		cmp.sort(node.Children)
	}
	cmp.sort(roots)

	visited := make(map[string]bool, len(order))
	for _, root := range roots {
		assignDepth(root, 0, visited)
	}

	// Anything unvisited sits on a parent cycle
	if len(visited) < len(order) {
		var stranded []*brain.CollectionTreeNode
		for _, node := range order {
			if !visited[node.ID] {
				stranded = append(stranded, node)
			}
		}
		cmp.sort(stranded)

		for _, node := range stranded {
			if visited[node.ID] {
				continue
			}
			if parent := parentOf[node.ID]; parent != nil {
				parent.Children = removeChild(parent.Children, node.ID)
			}
			roots = append(roots, node)
			assignDepth(node, 0, visited)
		}
		cmp.sort(roots)
	}

	return roots
}

func assignDepth(node *brain.CollectionTreeNode, depth int, visited map[string]bool) {
	if visited[node.ID] {
		return
	}
	visited[node.ID] = true
	node.Depth = depth
	for _, child := range node.Children {
		assignDepth(child, depth+1, visited)
	}
}

func removeChild(children []*brain.CollectionTreeNode, id string) []*brain.CollectionTreeNode {
	out := children[:0]
	for _, c := range children {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

type siblingOrder struct {
	collator *collate.Collator
}

func newSiblingOrder() *siblingOrder {
	return &siblingOrder{collator: collate.New(language.Und)}
}

func (o *siblingOrder) less(a, b *brain.CollectionTreeNode) bool {
	if c := o.collator.CompareString(a.Name, b.Name); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (o *siblingOrder) sort(nodes []*brain.CollectionTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool { return o.less(nodes[i], nodes[j]) })
}

// FlattenCollectionTree lists the forest in depth-first pre-order.
func FlattenCollectionTree(tree []*brain.CollectionTreeNode) []*brain.CollectionTreeNode {
	var out []*brain.CollectionTreeNode
	var walk func(nodes []*brain.CollectionTreeNode)
	walk = func(nodes []*brain.CollectionTreeNode) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(tree)
	if out == nil {
		out = []*brain.CollectionTreeNode{}
	}
	return out
}

// BuildDescendantMap maps every node ID to the IDs of all its transitive
// descendants, in pre-order. Leaves map to an empty slice.
func BuildDescendantMap(tree []*brain.CollectionTreeNode) map[string][]string {
	m := make(map[string][]string)
	var collect func(node *brain.CollectionTreeNode) []string
	collect = func(node *brain.CollectionTreeNode) []string {
		desc := []string{}
		for _, child := range node.Children {
			desc = append(desc, child.ID)
			desc = append(desc, collect(child)...)
		}
		m[node.ID] = desc
		return desc
	}
	for _, root := range tree {
		collect(root)
	}
	return m
}
