// Package commenttree turns a post's flat, parent-linked comments into a
// forest of remix branches and linearizes it for sequential navigation.
package commenttree

import "github.com/blendi-remade/reve-studio/internal/models"

// Node is a comment with its replies and its depth in the forest (roots are 0).
// Nodes are rebuilt on every read and never persisted.
type Node struct {
	*models.Comment
	Children []*Node `json:"children"`
	Depth    int     `json:"depth"`
}

// BuildTree links comments to their parents in O(n). Children keep the
// input order, so callers pass comments sorted by creation time.
//
// A comment whose parent is not in the input becomes a root at depth 0
// along with its subtree. A parent cycle, which well-formed data never has,
// is broken at the first member in input order so no comment is dropped.
func BuildTree(comments []*models.Comment) []*Node {
	index := make(map[uint]*Node, len(comments))
	nodes := make([]*Node, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		if _, dup := index[c.ID]; dup {
			continue
		}
		n := &Node{Comment: c, Children: []*Node{}}
		index[c.ID] = n
		nodes = append(nodes, n)
	}

	var roots []*Node
	parentOf := make(map[*Node]*Node, len(nodes))
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := index[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				parentOf[n] = parent
				continue
			}
		}
		roots = append(roots, n)
	}

	visited := make(map[*Node]bool, len(nodes))
	for _, r := range roots {
		assignDepths(r, visited)
	}

	// Anything still unvisited sits on a parent cycle.
	if len(visited) < len(nodes) {
		for _, n := range nodes {
			if visited[n] {
				continue
			}
			if parent := parentOf[n]; parent != nil {
				parent.Children = removeChild(parent.Children, n)
			}
			roots = append(roots, n)
			assignDepths(n, visited)
		}
	}

	if roots == nil {
		roots = []*Node{}
	}
	return roots
}

// assignDepths sets depth = parent depth + 1 below root without recursion.
func assignDepths(root *Node, visited map[*Node]bool) {
	root.Depth = 0
	visited[root] = true
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range n.Children {
			if visited[child] {
				continue
			}
			child.Depth = n.Depth + 1
			visited[child] = true
			stack = append(stack, child)
		}
	}
}

func removeChild(children []*Node, target *Node) []*Node {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

// Flatten returns the forest in pre-order: every node precedes its
// descendants, and a subtree is finished before the next sibling starts.
func Flatten(forest []*Node) []*Node {
	out := make([]*Node, 0, len(forest))
	stack := make([]*Node, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}
