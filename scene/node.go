package scene

import (
	"github.com/vecboard/vecboard"
)

// MaxChildren is N from spec.md §3: a SceneNode splits once it would carry
// more than this many children.
const MaxChildren = 30

// SceneNode is a node in the spatial index: it holds either a content
// component (a leaf) or up to MaxChildren children (an interior node),
// never both. Per spec.md §9's design notes, nodes deliberately carry no
// parent back-pointer — the tree is a strict tree, and "who is my parent"
// is answered by re-traversing from the root (FindParent), not by a stored
// pointer that would create a cycle.
type SceneNode struct {
	id       uint64
	bbox     vecboard.Rect2
	content  Component
	children []*SceneNode
}

// NewSceneNode creates an empty node, ready to receive its first leaf via
// AddLeaf.
func NewSceneNode() *SceneNode {
	return &SceneNode{id: nextID()}
}

// ID returns the node's freshness token: it increments on every
// content-change, per spec.md §4.3, so the rendering cache can tell a
// subtree's content changed without diffing it.
func (n *SceneNode) ID() uint64 { return n.id }

// BBox returns the node's bounding box: the content's bbox when a leaf,
// else the union of its children's bboxes.
func (n *SceneNode) BBox() vecboard.Rect2 { return n.bbox }

// Content returns the node's component, or nil if it is an interior node.
func (n *SceneNode) Content() Component { return n.content }

// Children returns the node's children, or nil if it is a leaf.
func (n *SceneNode) Children() []*SceneNode { return n.children }

// IsLeaf reports whether the node holds content rather than children.
func (n *SceneNode) IsLeaf() bool { return n.content != nil }

// IsEmpty reports whether the node holds neither content nor children.
func (n *SceneNode) IsEmpty() bool { return n.content == nil && len(n.children) == 0 }

// AddLeaf inserts component into the subtree rooted at n, following
// spec.md §4.3:
//
//  1. If n is empty, install component as n's content directly.
//  2. If n is already a content leaf, demote it: the former content
//     becomes n's first child, and the new leaf is added beside it as a
//     direct child (steps 3 and 4 are skipped: the former content's bbox
//     is n's own, so recursing into it would only demote again).
//  3. If the new leaf's bbox contains n's own bbox, add it as a direct
//     child of n rather than recursing further — from n's perspective,
//     a leaf that would engulf the whole subtree is a sibling of
//     everything currently here, not a descendant of any one child.
//  4. Otherwise, among children whose bbox fully contains the leaf's
//     bbox, recurse into the smallest by area.
//  5. If no child contains the bbox, add component as a new direct child.
//
// Every node along the insertion path gets its id bumped (a fresh
// freshness token) and its bbox grown to include the new leaf. Returns
// the leaf node holding component, so a caller (EditorImage) can register
// it in a by-id map without a separate tree search.
func (n *SceneNode) AddLeaf(c Component) *SceneNode {
	leafBBox := c.ContentBBox()

	if n.IsEmpty() {
		n.content = c
		n.bbox = leafBBox
		n.id = nextID()
		return n
	}

	demoted := n.IsLeaf()
	if demoted {
		former := n.content
		n.content = nil
		n.children = []*SceneNode{{id: nextID(), bbox: former.ContentBBox(), content: former}}
	}

	if !demoted && !leafBBox.ContainsRect(n.bbox) {
		if best := n.smallestContainingChild(leafBBox); best != nil {
			leaf := best.AddLeaf(c)
			n.bbox = n.bbox.Union(leafBBox)
			n.id = nextID()
			return leaf
		}
	}

	leaf := &SceneNode{id: nextID(), bbox: leafBBox, content: c}
	n.children = append(n.children, leaf)
	n.bbox = n.bbox.Union(leafBBox)
	n.id = nextID()

	if len(n.children) > MaxChildren {
		n.splitChildren()
	}
	return leaf
}

// smallestContainingChild returns the child whose bbox fully contains
// leafBBox with the smallest area, or nil if no child qualifies.
func (n *SceneNode) smallestContainingChild(leafBBox vecboard.Rect2) *SceneNode {
	var best *SceneNode
	bestArea := -1.0
	for _, child := range n.children {
		if !child.bbox.ContainsRect(leafBBox) {
			continue
		}
		area := child.bbox.Width() * child.bbox.Height()
		if best == nil || area < bestArea {
			best = child
			bestArea = area
		}
	}
	return best
}

// splitChildren regroups n's overflowing children into two new interior
// nodes using a quadratic-split heuristic (pick the two children whose
// combined bbox wastes the most area as seeds, then assign the rest to
// whichever seed's group grows least), keeping the interior balanced
// instead of letting a single node's fan-out grow unbounded.
func (n *SceneNode) splitChildren() {
	children := n.children
	seedA, seedB := pickSeeds(children)

	groupA := []*SceneNode{children[seedA]}
	groupB := []*SceneNode{children[seedB]}
	bboxA := children[seedA].bbox
	bboxB := children[seedB].bbox

	for i, child := range children {
		if i == seedA || i == seedB {
			continue
		}
		growA := bboxA.Union(child.bbox)
		growB := bboxB.Union(child.bbox)
		costA := area(growA) - area(bboxA)
		costB := area(growB) - area(bboxB)
		if costA <= costB {
			groupA = append(groupA, child)
			bboxA = growA
		} else {
			groupB = append(groupB, child)
			bboxB = growB
		}
	}

	n.children = []*SceneNode{
		{id: nextID(), bbox: bboxA, children: groupA},
		{id: nextID(), bbox: bboxB, children: groupB},
	}
}

func area(r vecboard.Rect2) float64 { return r.Width() * r.Height() }

// pickSeeds returns the indices of the two children whose bboxes, if
// unioned, waste the most area relative to their individual areas — the
// classic R-tree quadratic-split seed choice.
func pickSeeds(children []*SceneNode) (int, int) {
	bestWaste := -1.0
	bestA, bestB := 0, 1
	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			combined := area(children[i].bbox.Union(children[j].bbox))
			waste := combined - area(children[i].bbox) - area(children[j].bbox)
			if waste > bestWaste {
				bestWaste = waste
				bestA, bestB = i, j
			}
		}
	}
	return bestA, bestB
}

// LeavesIntersecting returns every leaf node whose bbox intersects region,
// pruning subtrees whose bbox does not intersect or that tooSmall (if
// non-nil) reports as beneath the renderer's resolution.
func (n *SceneNode) LeavesIntersecting(region vecboard.Rect2, tooSmall func(vecboard.Rect2) bool) []*SceneNode {
	if !n.bbox.Intersects(region) {
		return nil
	}
	if tooSmall != nil && tooSmall(n.bbox) {
		return nil
	}
	if n.IsLeaf() {
		return []*SceneNode{n}
	}
	var out []*SceneNode
	for _, child := range n.children {
		out = append(out, child.LeavesIntersecting(region, tooSmall)...)
	}
	return out
}

// FindParent re-traverses the subtree rooted at root looking for target's
// parent, per spec.md §9's "weak lookup" parent model. Returns nil if
// target is root itself or is not found in the subtree.
func FindParent(root, target *SceneNode) *SceneNode {
	for _, child := range root.children {
		if child == target {
			return root
		}
		if found := FindParent(child, target); found != nil {
			return found
		}
	}
	return nil
}

// removeChild removes target from n's direct children, recomputes n's
// bbox, and bumps its freshness token. Reports whether target was found.
func (n *SceneNode) removeChild(target *SceneNode) bool {
	for i, child := range n.children {
		if child == target {
			n.children = append(n.children[:i], n.children[i+1:]...)
			n.bbox = unionAll(n.children)
			n.id = nextID()
			return true
		}
	}
	return false
}

func unionAll(nodes []*SceneNode) vecboard.Rect2 {
	if len(nodes) == 0 {
		return vecboard.Rect2{}
	}
	r := nodes[0].bbox
	for _, n := range nodes[1:] {
		r = r.Union(n.bbox)
	}
	return r
}

// RemoveFromTree removes n (found by identity, via FindParent) from the
// tree rooted at root, then collapses any interior node left with a
// single child, per spec.md §4.3's "removal triggers rebalance" rule.
// Reports whether n was found and removed. Removing the root itself just
// empties it, since a SceneNode can't detach itself from nothing.
func (n *SceneNode) RemoveFromTree(root *SceneNode) bool {
	if n == root {
		root.content = nil
		root.children = nil
		root.bbox = vecboard.Rect2{}
		root.id = nextID()
		return true
	}

	parent := FindParent(root, n)
	if parent == nil {
		return false
	}
	if !parent.removeChild(n) {
		return false
	}
	collapseIfSingleChild(root, parent)
	return true
}

// collapseIfSingleChild absorbs node's only child into node itself,
// applied bottom-up after a removal so an interior node never lingers
// with exactly one child — spec.md §9's "rebalance that collapses any
// parent with a single child into its grandparent".
func collapseIfSingleChild(root, node *SceneNode) {
	for node != nil {
		if len(node.children) == 1 {
			only := node.children[0]
			node.content = only.content
			node.children = only.children
			node.bbox = only.bbox
			node.id = nextID()
		}
		if node == root {
			return
		}
		node = FindParent(root, node)
	}
}
