package scene

import (
	"fmt"

	"github.com/vecboard/vecboard"
)

// TextComponent is a recursive text/tspan node: spec.md §4.7 has the SVG
// codec build one per `<text>`/`<tspan>` with its own style and an
// absolute transform, nesting children for tspans the way the source
// markup nests them.
//
// Render here produces the text's layout rectangle rather than shaped
// glyph outlines: turning a string into glyph paths is the renderer's
// concern (it owns the go-text/typesetting face cache and is what
// actually draws pixels), not the scene model's. TextComponent only needs
// to know where the text sits and how big it is, so SceneNode insertion,
// hit-testing, and the rendering cache's dirty-region tracking all work
// without a font being loaded.
type TextComponent struct {
	base

	Text      string
	Origin    vecboard.Vec2
	Style     vecboard.TextStyle
	Xform     vecboard.Mat33

	children []TextComponent
}

// NewTextComponent creates a leaf text run at origin, in the identity
// transform, with no nested tspans.
func NewTextComponent(text string, origin vecboard.Vec2, style vecboard.TextStyle) TextComponent {
	tc := TextComponent{
		Text:      text,
		Origin:    origin,
		Style:     style,
		Xform:     vecboard.Identity(),
	}
	tc.base = newBase(tc.computeBBox())
	return tc
}

// AddChild appends a nested tspan, recomputing the parent's content bbox
// to cover it.
func (c TextComponent) AddChild(child TextComponent) TextComponent {
	c.children = append(append([]TextComponent(nil), c.children...), child)
	c.base.bbox = c.base.bbox.Union(child.ContentBBox())
	return c
}

// Children returns the component's nested tspans, if any.
func (c TextComponent) Children() []TextComponent { return c.children }

// estimatedAdvance approximates the whole run's advance width, counting
// Style.Size*0.6 per character (the conventional average-glyph-width
// fraction used when no face is loaded to shape against).
func (c TextComponent) estimatedAdvance() float64 {
	return float64(len([]rune(c.Text))) * c.Style.Size * 0.6
}

func (c TextComponent) computeBBox() vecboard.Rect2 {
	w := c.estimatedAdvance()
	h := c.Style.Size
	local := vecboard.NewRect2XYWH(c.Origin.X, c.Origin.Y-h, w, h)
	return local.Transformed(c.Xform)
}

func (c TextComponent) Render() *vecboard.Path {
	p := vecboard.NewPath()
	bbox := c.computeBBox()
	p.MoveTo(bbox.Min.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Max.Y)
	p.LineTo(bbox.Min.X, bbox.Max.Y)
	p.Close()
	for _, child := range c.children {
		appendPath(p, child.Render())
	}
	return p
}

// appendPath replays src's elements onto dst, used to flatten a
// TextComponent's nested tspans into one renderable Path.
func appendPath(dst, src *vecboard.Path) {
	for _, e := range src.Elements() {
		switch el := e.(type) {
		case vecboard.MoveTo:
			dst.MoveTo(el.Vec2.X, el.Vec2.Y)
		case vecboard.LineTo:
			dst.LineTo(el.Vec2.X, el.Vec2.Y)
		case vecboard.QuadTo:
			dst.QuadraticTo(el.Control.X, el.Control.Y, el.Vec2.X, el.Vec2.Y)
		case vecboard.CubicTo:
			dst.CubicTo(el.Control1.X, el.Control1.Y, el.Control2.X, el.Control2.Y, el.Vec2.X, el.Vec2.Y)
		case vecboard.Close:
			dst.Close()
		}
	}
}

func (c TextComponent) Intersects(p0, p1 vecboard.Vec2) bool {
	bbox := c.computeBBox()
	line := vecboard.Line{P0: p0, P1: p1}
	if bbox.Intersects(line.BoundingBox()) {
		return true
	}
	for _, child := range c.children {
		if child.Intersects(p0, p1) {
			return true
		}
	}
	return false
}

func (c TextComponent) Transform_(m vecboard.Mat33) TextComponent {
	c.Xform = c.Xform.Multiply(m)
	newChildren := make([]TextComponent, len(c.children))
	for i, child := range c.children {
		newChildren[i] = child.Transform_(m)
	}
	c.children = newChildren
	c.base.bbox = c.computeBBox()
	c.base.zIndex = NextZIndex()
	return c
}

func (c TextComponent) Transform(m vecboard.Mat33) Component {
	return c.Transform_(m)
}

func (c TextComponent) Clone() Component {
	out := c
	out.children = make([]TextComponent, len(c.children))
	for i, child := range c.children {
		out.children[i] = child.Clone().(TextComponent)
	}
	out.base.loadSaveData = c.base.cloneLoadSaveData()
	return out
}

func (c TextComponent) Describe(locale string) string {
	return fmt.Sprintf("text %q", c.Text)
}

// WithLoadSaveData returns a copy of c carrying data as its LoadSaveData,
// the side channel the SVG codec uses to round-trip a `<text>`/`<tspan>`
// element's unrecognized attributes back onto re-exported markup.
func (c TextComponent) WithLoadSaveData(data map[string]any) TextComponent {
	c.base.loadSaveData = data
	return c
}

// StyleOf returns the component's current rendering style, satisfying
// RestyleableComponent.
func (c TextComponent) StyleOf() vecboard.RenderingStyle { return c.Style.RenderingStyle }

// ForceStyle returns a copy with Style's RenderingStyle replaced in place,
// without recording history — the non-historic mutator spec.md §4.4 names
// as the restyle command's delegate.
func (c TextComponent) ForceStyle(style vecboard.RenderingStyle) Component {
	c.Style.RenderingStyle = style
	return c
}
