package scene

import (
	"fmt"

	"github.com/vecboard/vecboard"
)

// BackgroundKind distinguishes the two background patterns spec.md §4.7
// round-trips through the SVG codec: a flat fill, and a fill overlaid
// with an evenly spaced grid of a second color.
type BackgroundKind uint8

const (
	BackgroundSolid BackgroundKind = iota
	BackgroundGrid
)

// BackgroundComponent is the document's backdrop, per spec.md §4.7's
// `<g class=image-background…>`/background-class `<path>` handling: a
// solid color, or a solid color plus a grid pattern at GridSize spacing
// in SecondaryColor. Background.go's round-trip test (spec.md §8) pins
// both colors and GridSize as the fields that must survive a save/load
// cycle unchanged.
type BackgroundComponent struct {
	base

	Kind           BackgroundKind
	MainColor      vecboard.RGBA
	SecondaryColor vecboard.RGBA
	GridSize       float64
}

// NewSolidBackground creates a flat-color background filling region.
func NewSolidBackground(region vecboard.Rect2, color vecboard.RGBA) BackgroundComponent {
	c := BackgroundComponent{Kind: BackgroundSolid, MainColor: color}
	c.base = newBase(region)
	return c
}

// NewGridBackground creates a background filling region with mainColor,
// overlaid with a grid of gridSize-spaced lines in secondaryColor.
func NewGridBackground(region vecboard.Rect2, mainColor, secondaryColor vecboard.RGBA, gridSize float64) BackgroundComponent {
	c := BackgroundComponent{
		Kind:           BackgroundGrid,
		MainColor:      mainColor,
		SecondaryColor: secondaryColor,
		GridSize:       gridSize,
	}
	c.base = newBase(region)
	return c
}

// Render returns the background's fill region as a rectangle path. The
// grid overlay is not part of it: GridLines returns the overlay's
// segments separately, and neither the rendering cache nor the renderer
// back-ends call GridLines, so a grid background renders as its fill
// region only.
func (c BackgroundComponent) Render() *vecboard.Path {
	bbox := c.ContentBBox()
	p := vecboard.NewPath()
	p.MoveTo(bbox.Min.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Max.Y)
	p.LineTo(bbox.Min.X, bbox.Max.Y)
	p.Close()
	return p
}

// GridLines returns the grid overlay's line segments within the
// background's region, for a renderer to stroke directly. Returns nil for
// a solid background or a non-positive GridSize.
func (c BackgroundComponent) GridLines() []vecboard.Line {
	if c.Kind != BackgroundGrid || c.GridSize <= 0 {
		return nil
	}
	bbox := c.ContentBBox()
	var lines []vecboard.Line
	for x := bbox.Min.X; x <= bbox.Max.X; x += c.GridSize {
		lines = append(lines, vecboard.Line{
			P0: vecboard.Vec2{X: x, Y: bbox.Min.Y},
			P1: vecboard.Vec2{X: x, Y: bbox.Max.Y},
		})
	}
	for y := bbox.Min.Y; y <= bbox.Max.Y; y += c.GridSize {
		lines = append(lines, vecboard.Line{
			P0: vecboard.Vec2{X: bbox.Min.X, Y: y},
			P1: vecboard.Vec2{X: bbox.Max.X, Y: y},
		})
	}
	return lines
}

func (c BackgroundComponent) Intersects(p0, p1 vecboard.Vec2) bool {
	line := vecboard.Line{P0: p0, P1: p1}
	return c.ContentBBox().Intersects(line.BoundingBox())
}

func (c BackgroundComponent) Transform(m vecboard.Mat33) Component {
	c.base.bbox = c.base.bbox.Transformed(m)
	c.base.zIndex = NextZIndex()
	return c
}

func (c BackgroundComponent) Clone() Component {
	out := c
	out.base.loadSaveData = c.base.cloneLoadSaveData()
	return out
}

func (c BackgroundComponent) Describe(locale string) string {
	if c.Kind == BackgroundGrid {
		return fmt.Sprintf("grid background (size %.1f)", c.GridSize)
	}
	return "solid background"
}

// WithLoadSaveData returns a copy of c carrying data as its LoadSaveData,
// the side channel the SVG codec uses to round-trip a background
// element's unrecognized attributes back onto re-exported markup.
func (c BackgroundComponent) WithLoadSaveData(data map[string]any) BackgroundComponent {
	c.base.loadSaveData = data
	return c
}

// StyleOf returns the background's current fill color as a RenderingStyle,
// satisfying RestyleableComponent.
func (c BackgroundComponent) StyleOf() vecboard.RenderingStyle {
	return vecboard.DefaultRenderingStyle().WithFill(c.MainColor)
}

// ForceStyle replaces MainColor with style's fill, without recording
// history.
func (c BackgroundComponent) ForceStyle(style vecboard.RenderingStyle) Component {
	c.MainColor = style.Fill
	return c
}
