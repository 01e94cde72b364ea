package rendercache

import "github.com/vecboard/vecboard"

// TileNode is one node of the cache's tile tree: a square canvas-space
// region that either owns a backing record (a cached rendering of its
// intersecting leaves) or has been split into a 3x3 grid of children,
// created lazily as Render descends into them. tokenList/maxZIndex record
// what the node's current record (if any) actually contains, so a later
// render call can tell in O(1) whether the cached surface is still
// correct without re-walking the scene.
type TileNode struct {
	region vecboard.Rect2

	children [9]*TileNode // row-major 3x3 grid, index = row*3+col; nil until descended into

	record    *cacheRecord
	tokenList []uint64 // sorted component ids last rendered into record
	maxZIndex uint64
}

func newTileNode(region vecboard.Rect2) *TileNode {
	return &TileNode{region: region}
}

// childRegions returns this node's region split into its 3x3 grid, in the
// same row-major order TileNode.children uses.
func (n *TileNode) childRegions() []vecboard.Rect2 {
	return n.region.Grid(3, 3)
}

// childContaining returns the lazily-created child whose region fully
// contains rect, or nil if rect straddles more than one child (or this
// node has no children yet and rect doesn't uniquely fit one).
func (n *TileNode) childContaining(rect vecboard.Rect2) *TileNode {
	regions := n.childRegions()
	idx := -1
	for i, r := range regions {
		if r.ContainsRect(rect) {
			if idx != -1 {
				return nil // ambiguous (shouldn't happen: grid cells don't overlap)
			}
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}
	if n.children[idx] == nil {
		n.children[idx] = newTileNode(regions[idx])
	}
	return n.children[idx]
}

// descendToContaining walks down from n to the smallest existing-or-newly
// -created node whose region still contains rect, per spec.md §4.5's
// "descend to the smallest node whose region contains the visible
// rectangle".
func (n *TileNode) descendToContaining(rect vecboard.Rect2) *TileNode {
	for {
		child := n.childContaining(rect)
		if child == nil {
			return n
		}
		n = child
	}
}
