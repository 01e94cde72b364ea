package scene

import (
	"testing"

	"github.com/vecboard/vecboard"
)

func leafAt(x, y, w, h float64) Component {
	return NewSolidBackground(vecboard.NewRect2XYWH(x, y, w, h), vecboard.RGB(1, 0, 0))
}

func TestSceneNode_AddLeaf(t *testing.T) {
	t.Run("first leaf becomes content", func(t *testing.T) {
		n := NewSceneNode()
		c := leafAt(0, 0, 10, 10)
		leaf := n.AddLeaf(c)

		if !n.IsLeaf() {
			t.Fatal("node did not become a leaf")
		}
		if leaf != n {
			t.Error("AddLeaf on an empty node should return the node itself")
		}
		if n.Content().ID() != c.ID() {
			t.Error("node content is not the added component")
		}
	})

	t.Run("second leaf demotes to interior node", func(t *testing.T) {
		n := NewSceneNode()
		n.AddLeaf(leafAt(0, 0, 10, 10))
		n.AddLeaf(leafAt(100, 100, 10, 10))

		if n.IsLeaf() {
			t.Fatal("node should be an interior node after a second leaf")
		}
		if len(n.Children()) != 2 {
			t.Fatalf("children = %d, want 2", len(n.Children()))
		}
	})

	t.Run("bbox grows to union of children", func(t *testing.T) {
		n := NewSceneNode()
		n.AddLeaf(leafAt(0, 0, 10, 10))
		n.AddLeaf(leafAt(100, 100, 10, 10))

		bbox := n.BBox()
		if bbox.Max.X < 110 || bbox.Max.Y < 110 {
			t.Errorf("bbox = %+v, want a union reaching (110,110)", bbox)
		}
	})

	t.Run("engulfing leaf becomes a sibling, not a descendant", func(t *testing.T) {
		n := NewSceneNode()
		n.AddLeaf(leafAt(0, 0, 10, 10))
		big := leafAt(-1000, -1000, 5000, 5000)
		n.AddLeaf(big)

		if len(n.Children()) != 2 {
			t.Fatalf("children = %d, want 2 (engulfing leaf as direct sibling)", len(n.Children()))
		}
	})

	t.Run("splits when child count exceeds MaxChildren", func(t *testing.T) {
		n := NewSceneNode()
		for i := 0; i < MaxChildren+5; i++ {
			n.AddLeaf(leafAt(float64(i)*20, 0, 10, 10))
		}
		if len(n.Children()) > MaxChildren {
			t.Errorf("children = %d, want <= %d after split", len(n.Children()), MaxChildren)
		}
	})
}

func TestSceneNode_LeavesIntersecting(t *testing.T) {
	n := NewSceneNode()
	n.AddLeaf(leafAt(0, 0, 10, 10))
	n.AddLeaf(leafAt(1000, 1000, 10, 10))

	leaves := n.LeavesIntersecting(vecboard.NewRect2XYWH(-5, -5, 20, 20), nil)
	if len(leaves) != 1 {
		t.Fatalf("leaves = %d, want 1", len(leaves))
	}
}

func TestSceneNode_RemoveFromTree(t *testing.T) {
	t.Run("removes a leaf and collapses single-child interior nodes", func(t *testing.T) {
		n := NewSceneNode()
		n.AddLeaf(leafAt(0, 0, 10, 10))
		n.AddLeaf(leafAt(100, 100, 10, 10))
		a := n.Children()[0] // the first leaf, moved under n by the demotion

		if !a.RemoveFromTree(n) {
			t.Fatal("RemoveFromTree reported not found")
		}
		if !n.IsLeaf() {
			t.Error("removing one of two children should collapse the interior node back to a leaf")
		}
	})

	t.Run("removing the only leaf empties the root", func(t *testing.T) {
		n := NewSceneNode()
		n.AddLeaf(leafAt(0, 0, 10, 10))

		if !n.RemoveFromTree(n) {
			t.Fatal("RemoveFromTree reported not found")
		}
		if !n.IsEmpty() {
			t.Error("root should be empty after removing its only content")
		}
	})

	t.Run("reports false for a node not in the tree", func(t *testing.T) {
		n := NewSceneNode()
		n.AddLeaf(leafAt(0, 0, 10, 10))
		stray := NewSceneNode()
		stray.AddLeaf(leafAt(5, 5, 1, 1))

		if stray.RemoveFromTree(n) {
			t.Error("RemoveFromTree should not find a node outside the tree")
		}
	})
}

func TestFindParent(t *testing.T) {
	n := NewSceneNode()
	n.AddLeaf(leafAt(0, 0, 10, 10))
	n.AddLeaf(leafAt(100, 100, 10, 10))

	child := n.Children()[0]
	if FindParent(n, child) != n {
		t.Error("FindParent did not find the direct parent")
	}
	if FindParent(n, n) != nil {
		t.Error("FindParent(root, root) should be nil")
	}
}
