package scene

import (
	"fmt"
	"image"

	"github.com/vecboard/vecboard"
)

// ImageComponent wraps a decoded raster image plus the transform that
// places it in canvas space, per spec.md §4.7's `<image>` handling: an
// href (kept in LoadSaveData so the SVG codec can re-emit it without
// re-encoding pixels the loader never decoded) and a transform.
type ImageComponent struct {
	base

	Href      string
	Image     image.Image
	Xform     vecboard.Mat33
}

// NewImageComponent places img at the unit square [0,1]x[0,1] mapped
// through transform, matching the SVG `<image>` element's own convention
// of a unit-square intrinsic box scaled/positioned by its transform and
// width/height attributes (folded into transform by the caller).
func NewImageComponent(href string, img image.Image, transform vecboard.Mat33) ImageComponent {
	c := ImageComponent{Href: href, Image: img, Xform: transform}
	c.base = newBase(c.computeBBox())
	return c
}

func (c ImageComponent) computeBBox() vecboard.Rect2 {
	unit := vecboard.NewRect2XYWH(0, 0, 1, 1)
	return unit.Transformed(c.Xform)
}

// Render draws the image's unit-square outline as a Path; the rendering
// cache special-cases ImageComponent (via a type assertion) to
// blit Image directly rather than filling this outline, matching the
// teacher's separation between vector fill paths and direct pixel blits.
func (c ImageComponent) Render() *vecboard.Path {
	bbox := c.computeBBox()
	p := vecboard.NewPath()
	p.MoveTo(bbox.Min.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Max.Y)
	p.LineTo(bbox.Min.X, bbox.Max.Y)
	p.Close()
	return p
}

func (c ImageComponent) Intersects(p0, p1 vecboard.Vec2) bool {
	line := vecboard.Line{P0: p0, P1: p1}
	return c.computeBBox().Intersects(line.BoundingBox())
}

func (c ImageComponent) Transform_(m vecboard.Mat33) ImageComponent {
	c.Xform = m.Multiply(c.Xform)
	c.base.bbox = c.computeBBox()
	c.base.zIndex = NextZIndex()
	return c
}

func (c ImageComponent) Transform(m vecboard.Mat33) Component {
	return c.Transform_(m)
}

func (c ImageComponent) Clone() Component {
	out := c
	out.base.loadSaveData = c.base.cloneLoadSaveData()
	return out
}

func (c ImageComponent) Describe(locale string) string {
	return fmt.Sprintf("image %q", c.Href)
}

// WithLoadSaveData returns a copy of c carrying data as its LoadSaveData,
// the side channel the SVG codec uses to round-trip an `<image>` element's
// unrecognized attributes back onto re-exported markup.
func (c ImageComponent) WithLoadSaveData(data map[string]any) ImageComponent {
	c.base.loadSaveData = data
	return c
}
