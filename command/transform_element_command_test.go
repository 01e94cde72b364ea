package command

import (
	"testing"

	"github.com/vecboard/vecboard"
)

func TestTransformElementCommand_ApplyAndUnapply(t *testing.T) {
	editor := newEditor()
	c := backgroundAt(0, 0, 10, 10)
	editor.AddComponent(c, false)

	originalZ := c.ZIndex()
	targetZ := originalZ + 100

	cmd := NewTransformElementCommand(c.ID(), vecboard.Translate(5, 5), targetZ)
	if err := cmd.Apply(editor); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, ok := editor.ByID(c.ID())
	if !ok {
		t.Fatal("component missing after Apply")
	}
	if got.ZIndex() != targetZ {
		t.Errorf("ZIndex = %d, want %d", got.ZIndex(), targetZ)
	}
	wantBBox := vecboard.NewRect2XYWH(5, 5, 10, 10)
	if got.ContentBBox() != wantBBox {
		t.Errorf("ContentBBox = %+v, want %+v", got.ContentBBox(), wantBBox)
	}

	if err := cmd.Unapply(editor); err != nil {
		t.Fatalf("Unapply: %v", err)
	}
	got, ok = editor.ByID(c.ID())
	if !ok {
		t.Fatal("component missing after Unapply")
	}
	if got.ZIndex() != originalZ {
		t.Errorf("ZIndex after Unapply = %d, want original %d", got.ZIndex(), originalZ)
	}
	if got.ContentBBox() != c.ContentBBox() {
		t.Errorf("ContentBBox after Unapply = %+v, want original %+v", got.ContentBBox(), c.ContentBBox())
	}
}

func TestTransformElementCommand_PreservesID(t *testing.T) {
	editor := newEditor()
	c := backgroundAt(0, 0, 10, 10)
	editor.AddComponent(c, false)

	cmd := NewTransformElementCommand(c.ID(), vecboard.Scale(2, 2), c.ZIndex()+1)
	if err := cmd.Apply(editor); err != nil {
		t.Fatal(err)
	}
	if _, ok := editor.ByID(c.ID()); !ok {
		t.Fatal("ReplaceComponent must preserve the original id so ByID keeps resolving it")
	}
}

func TestTransformElementCommand_UnresolvedReference(t *testing.T) {
	editor := newEditor()
	cmd := NewTransformElementCommand(999, vecboard.Identity(), 1)
	if err := cmd.Apply(editor); err == nil {
		t.Fatal("Apply on a missing id should fail")
	}
}
