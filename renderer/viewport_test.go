package renderer

import (
	"testing"

	"github.com/vecboard/vecboard"
)

func TestViewportVisibleRectIdentity(t *testing.T) {
	v := NewViewport(800, 600)
	rect := v.VisibleRect()
	if rect.Min != (vecboard.Vec2{}) || rect.Max != (vecboard.Vec2{X: 800, Y: 600}) {
		t.Errorf("VisibleRect() = %+v, want [0,0]-[800,600] at identity", rect)
	}
}

func TestViewportZoomToRecentersWithoutRescaleWhenAlreadyFit(t *testing.T) {
	v := NewViewport(1000, 1000)
	rect := vecboard.NewRect2XYWH(300, 300, 400, 400) // well within the center 4/5, not under 1/3 either
	v.ZoomTo(rect, true, true)

	got := v.CanvasToScreen().TransformVec2(vecboard.V2(500, 500))
	want := vecboard.V2(500, 500)
	if !got.Approx(want, 1e-6) {
		t.Errorf("center of rect maps to %v, want %v (screen center)", got, want)
	}
}

func TestViewportZoomToZoomsOutWhenTooBig(t *testing.T) {
	v := NewViewport(100, 100)
	big := vecboard.NewRect2XYWH(0, 0, 1000, 1000)
	v.ZoomTo(big, true, true)

	scale := v.CanvasToScreen().MaxScaleFactor()
	if scale >= 1 {
		t.Errorf("MaxScaleFactor() = %v, want < 1 after zooming out to fit a 10x larger rect", scale)
	}
}

func TestViewportZoomToRefusesZoomOutWhenDisallowed(t *testing.T) {
	v := NewViewport(100, 100)
	big := vecboard.NewRect2XYWH(0, 0, 1000, 1000)
	v.ZoomTo(big, true, false)

	scale := v.CanvasToScreen().MaxScaleFactor()
	if scale != 1 {
		t.Errorf("MaxScaleFactor() = %v, want 1 (zoom-out disallowed)", scale)
	}
}

func TestViewportZoomToZoomsInWhenTooSmall(t *testing.T) {
	v := NewViewport(900, 900)
	small := vecboard.NewRect2XYWH(0, 0, 10, 10) // under 1/3 of 900
	v.ZoomTo(small, true, true)

	scale := v.CanvasToScreen().MaxScaleFactor()
	if scale <= 1 {
		t.Errorf("MaxScaleFactor() = %v, want > 1 after zooming in on a rect far under 1/3 of the window", scale)
	}
}

func TestAsPointerMapperMatchesScreenToCanvas(t *testing.T) {
	v := NewViewport(800, 600)
	v.SetTransform(vecboard.Translate(100, 50))

	mapper := v.AsPointerMapper()
	screenPt := vecboard.V2(150, 80)

	got := mapper.ScreenToCanvas(screenPt)
	want := v.ScreenToCanvas().TransformVec2(screenPt)
	if !got.Approx(want, 1e-9) {
		t.Errorf("pointerMapper.ScreenToCanvas(%v) = %v, want %v", screenPt, got, want)
	}
}
