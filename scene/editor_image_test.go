package scene

import (
	"testing"

	"github.com/vecboard/vecboard"
)

func TestEditorImage_AddAndLookup(t *testing.T) {
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
	c := leafAt(0, 0, 10, 10)
	e.AddComponent(c, false)

	got, ok := e.ByID(c.ID())
	if !ok {
		t.Fatal("component not found by id after AddComponent")
	}
	if got.ID() != c.ID() {
		t.Errorf("ByID returned id %d, want %d", got.ID(), c.ID())
	}
}

func TestEditorImage_AddAndLookup_SurvivesDemotion(t *testing.T) {
	// Regression test: adding a second, nearby component demotes the first
	// component's node from root-as-leaf to an interior node with the
	// first component moved under a fresh child. ByID must still resolve
	// the first id correctly afterward.
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
	first := leafAt(0, 0, 10, 10)
	e.AddComponent(first, false)

	for i := 0; i < 40; i++ {
		e.AddComponent(leafAt(float64(i)*5, 0, 4, 4), false)
	}

	got, ok := e.ByID(first.ID())
	if !ok {
		t.Fatal("first component not found after later insertions demoted its node")
	}
	if got.ID() != first.ID() {
		t.Errorf("ByID returned id %d, want %d", got.ID(), first.ID())
	}
}

func TestEditorImage_RemoveComponent(t *testing.T) {
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
	a := leafAt(0, 0, 10, 10)
	b := leafAt(100, 100, 10, 10)
	e.AddComponent(a, false)
	e.AddComponent(b, false)

	if !e.RemoveComponent(a.ID()) {
		t.Fatal("RemoveComponent reported not found")
	}
	if _, ok := e.ByID(a.ID()); ok {
		t.Error("removed component is still found by id")
	}
	if _, ok := e.ByID(b.ID()); !ok {
		t.Error("unrelated component should survive the removal")
	}
	if e.RemoveComponent(a.ID()) {
		t.Error("removing an already-removed id should report false")
	}
}

func TestEditorImage_ForegroundBackgroundSeparation(t *testing.T) {
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
	fg := leafAt(0, 0, 10, 10)
	bg := leafAt(0, 0, 500, 500)
	e.AddComponent(fg, false)
	e.AddComponent(bg, true)

	if e.Foreground().IsEmpty() {
		t.Error("foreground root should hold fg")
	}
	if e.Background().IsEmpty() {
		t.Error("background root should hold bg")
	}
	if _, ok := e.ByID(bg.ID()); !ok {
		t.Error("background component should still resolve via ByID")
	}
}

func TestEditorImage_ReplaceComponent(t *testing.T) {
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
	bg := NewSolidBackground(vecboard.NewRect2XYWH(0, 0, 10, 10), vecboard.RGB(0, 0, 0))
	e.AddComponent(bg, false)

	restyled := bg.ForceStyle(vecboard.DefaultRenderingStyle().WithFill(vecboard.RGB(1, 1, 1)))
	if !e.ReplaceComponent(bg.ID(), restyled) {
		t.Fatal("ReplaceComponent reported not found")
	}

	got, ok := e.ByID(bg.ID())
	if !ok {
		t.Fatal("replaced component not found by id")
	}
	restyledBG := got.(BackgroundComponent)
	if restyledBG.MainColor != (vecboard.RGB(1, 1, 1)) {
		t.Errorf("MainColor = %+v, want white", restyledBG.MainColor)
	}
}

func TestEditorImage_QueueRerenderOf(t *testing.T) {
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 500, 500))
	c := leafAt(0, 0, 10, 10)
	e.AddComponent(c, false)

	nodeBefore := e.NodeByID(c.ID())
	idBefore := nodeBefore.ID()

	e.QueueRerenderOf(c.ID())

	nodeAfter := e.NodeByID(c.ID())
	if nodeAfter == nil {
		t.Fatal("component missing after QueueRerenderOf")
	}
	if nodeAfter.ID() == idBefore {
		t.Error("QueueRerenderOf should bump the node's freshness token")
	}
}

func TestEditorImage_ExportRectEvents(t *testing.T) {
	e := NewEditorImage(vecboard.NewRect2XYWH(0, 0, 100, 100))

	var gotOld, gotNew vecboard.Rect2
	fired := 0
	e.SubscribeExportRect(func(kind ExportRectEventKind, payload ExportRectChangedPayload) {
		fired++
		gotOld = payload.Old
		gotNew = payload.New
	})

	next := vecboard.NewRect2XYWH(0, 0, 200, 200)
	e.SetExportRect(next)

	if fired != 1 {
		t.Fatalf("listener fired %d times, want 1", fired)
	}
	if gotNew != next {
		t.Errorf("payload.New = %+v, want %+v", gotNew, next)
	}
	if gotOld == next {
		t.Error("payload.Old should be the previous rect, not the new one")
	}

	e.SetExportRect(next)
	if fired != 1 {
		t.Error("setting the same export rect again should not dispatch")
	}
}
