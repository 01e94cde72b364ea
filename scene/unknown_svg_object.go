package scene

import (
	"fmt"

	"github.com/vecboard/vecboard"
)

// UnknownSVGObject preserves an SVG element the loader doesn't recognize
// (an unmatched tag, or a `<style>` block) as an opaque blob, per
// spec.md §4.7/§6: stored only when the loader's store_unknown option is
// set, and round-tripped back out verbatim by the writer so data is never
// silently dropped from an imported document it didn't fully understand.
type UnknownSVGObject struct {
	base

	TagName string
	RawXML  string
}

// NewUnknownSVGObject creates an opaque placeholder for an unrecognized
// element, positioned at region (typically the document's viewBox, since
// an unknown element's true extent can't be determined without
// understanding it).
func NewUnknownSVGObject(tagName, rawXML string, region vecboard.Rect2) UnknownSVGObject {
	c := UnknownSVGObject{TagName: tagName, RawXML: rawXML}
	c.base = newBase(region)
	return c
}

// Render returns an empty path: an unknown object has no renderable
// geometry of its own, only raw markup the writer re-emits.
func (c UnknownSVGObject) Render() *vecboard.Path { return vecboard.NewPath() }

func (c UnknownSVGObject) Intersects(p0, p1 vecboard.Vec2) bool { return false }

func (c UnknownSVGObject) Transform(m vecboard.Mat33) Component {
	c.base.bbox = c.base.bbox.Transformed(m)
	c.base.zIndex = NextZIndex()
	return c
}

func (c UnknownSVGObject) Clone() Component {
	out := c
	out.base.loadSaveData = c.base.cloneLoadSaveData()
	return out
}

func (c UnknownSVGObject) Describe(locale string) string {
	return fmt.Sprintf("unrecognized <%s> element", c.TagName)
}

// SVGGlobalAttributesObject preserves the root `<svg>` element's own
// attributes (viewBox, width, height, and any unrecognized attribute on
// it) that don't belong to any child component, so the writer can restore
// them on the outer element of a re-exported document.
type SVGGlobalAttributesObject struct {
	base

	ViewBox           vecboard.Rect2
	UnknownAttributes map[string]string
}

// NewSVGGlobalAttributesObject creates the root-attributes holder for
// viewBox, with any unrecognized root attributes carried in
// unknownAttributes.
func NewSVGGlobalAttributesObject(viewBox vecboard.Rect2, unknownAttributes map[string]string) SVGGlobalAttributesObject {
	c := SVGGlobalAttributesObject{ViewBox: viewBox, UnknownAttributes: unknownAttributes}
	c.base = newBase(viewBox)
	return c
}

func (c SVGGlobalAttributesObject) Render() *vecboard.Path { return vecboard.NewPath() }

func (c SVGGlobalAttributesObject) Intersects(p0, p1 vecboard.Vec2) bool { return false }

func (c SVGGlobalAttributesObject) Transform(m vecboard.Mat33) Component {
	c.base.bbox = c.base.bbox.Transformed(m)
	c.ViewBox = c.ViewBox.Transformed(m)
	c.base.zIndex = NextZIndex()
	return c
}

func (c SVGGlobalAttributesObject) Clone() Component {
	out := c
	if c.UnknownAttributes != nil {
		out.UnknownAttributes = make(map[string]string, len(c.UnknownAttributes))
		for k, v := range c.UnknownAttributes {
			out.UnknownAttributes[k] = v
		}
	}
	out.base.loadSaveData = c.base.cloneLoadSaveData()
	return out
}

func (c SVGGlobalAttributesObject) Describe(locale string) string {
	return "svg root attributes"
}
