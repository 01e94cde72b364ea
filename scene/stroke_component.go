package scene

import (
	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/stroke"
)

// StrokeComponent adapts stroke.Stroke (which has no dependency on this
// package, to avoid an import cycle) to the Component interface. stroke
// already implements Render/Intersects/Describe with matching signatures;
// Transform and Clone need re-wrapping since Go requires exact return
// types for interface satisfaction, and stroke.Stroke.Transform/Clone
// return a concrete stroke.Stroke rather than Component.
type StrokeComponent struct {
	stroke.Stroke
}

// NewStrokeComponent wraps a built Stroke, assigning it an id and z-index
// if it was constructed directly rather than through a Builder.
func NewStrokeComponent(s stroke.Stroke) StrokeComponent {
	if s.ID == 0 {
		s.ID = nextID()
	}
	if s.ZIndex == 0 {
		s.ZIndex = NextZIndex()
	}
	return StrokeComponent{Stroke: s}
}

func (c StrokeComponent) ID() uint64                  { return c.Stroke.ID }
func (c StrokeComponent) ZIndex() uint64               { return c.Stroke.ZIndex }
func (c StrokeComponent) ContentBBox() vecboard.Rect2  { return c.Stroke.ContentBBox }
func (c StrokeComponent) LoadSaveData() map[string]any { return c.Stroke.LoadSaveData }

func (c StrokeComponent) Transform(m vecboard.Mat33) Component {
	return StrokeComponent{Stroke: c.Stroke.Transform(m)}
}

// StyleOf returns the stroke's uniform style and whether it has one,
// satisfying rendercache's narrower styleSource interface. Only a Stroke
// built via stroke.FromPolygons (the SVG codec's load path) has one; a
// pointer-drawn Stroke reports ok=false and is painted with the rendering
// cache's default style instead.
func (c StrokeComponent) StyleOf() (vecboard.RenderingStyle, bool) {
	return c.Stroke.StyleOf()
}

func (c StrokeComponent) Clone() Component {
	return StrokeComponent{Stroke: c.Stroke.Clone()}
}
