package renderer

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/vecboard/vecboard"
)

// VectorBackend is spec.md §4.6's vector back-end: every draw call appends
// structured SVG elements instead of touching pixels, so "render to
// screen" and "export to SVG" (svgcodec's Writer) share this one
// contract rather than duplicating serialization logic. Grounded on
// encoding/xml's Encoder, the same package svgcodec's Loader uses for the
// inverse (DOM-walk) direction — no third-party XML/SVG library appears
// anywhere in the example pack.
type VectorBackend struct {
	buf *bytes.Buffer
	enc *xml.Encoder

	width, height  int
	transform      vecboard.Mat33
	transformStack []vecboard.Mat33

	openTags []string
	batch    objectBatcher
	inObject bool
	clipSeq  int
}

// NewVectorBackend creates a vector backend that serializes into an
// internal buffer; call Bytes (or WriteTo) once drawing is complete.
func NewVectorBackend(width, height int) *VectorBackend {
	buf := &bytes.Buffer{}
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")

	b := &VectorBackend{
		buf:       buf,
		enc:       enc,
		width:     width,
		height:    height,
		transform: vecboard.Identity(),
	}
	b.startElement("svg", xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2000/svg"},
		xml.Attr{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(width)},
		xml.Attr{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(height)},
		xml.Attr{Name: xml.Name{Local: "viewBox"}, Value: fmt.Sprintf("0 0 %d %d", width, height)},
	)
	return b
}

// Bytes finalizes the document (closing every still-open element) and
// returns the serialized SVG.
func (b *VectorBackend) Bytes() []byte {
	for len(b.openTags) > 0 {
		b.endElement()
	}
	_ = b.enc.Flush()
	return b.buf.Bytes()
}

func (b *VectorBackend) BackingKind() string { return "vector" }

func (b *VectorBackend) DisplaySize() (width, height int) { return b.width, b.height }

// Clear is a no-op: a freshly built SVG document has no prior content to
// erase, unlike a raster surface's pixel buffer.
func (b *VectorBackend) Clear() {}

func (b *VectorBackend) SetTransform(m vecboard.Mat33) { b.transform = m }

func (b *VectorBackend) PushTransform() {
	b.transformStack = append(b.transformStack, b.transform)
}

func (b *VectorBackend) PopTransform() {
	n := len(b.transformStack)
	if n == 0 {
		return
	}
	b.transform = b.transformStack[n-1]
	b.transformStack = b.transformStack[:n-1]
}

// StartObject opens a <g> element, optionally clipped to bbox via a
// <clipPath> defined immediately before it. Unlike the raster back-end,
// no object is ever skipped here: SVG is resolution-independent, so
// spec.md §4.6's screen-AABB skip thresholds don't apply to it.
func (b *VectorBackend) StartObject(bbox vecboard.Rect2, clip bool) {
	if clip {
		b.clipSeq++
		id := fmt.Sprintf("clip%d", b.clipSeq)
		b.startElement("clipPath", xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
		b.emptyElement("rect",
			xml.Attr{Name: xml.Name{Local: "x"}, Value: formatFloat(bbox.Min.X)},
			xml.Attr{Name: xml.Name{Local: "y"}, Value: formatFloat(bbox.Min.Y)},
			xml.Attr{Name: xml.Name{Local: "width"}, Value: formatFloat(bbox.Width())},
			xml.Attr{Name: xml.Name{Local: "height"}, Value: formatFloat(bbox.Height())},
		)
		b.endElement()
		b.startElement("g", xml.Attr{Name: xml.Name{Local: "clip-path"}, Value: fmt.Sprintf("url(#%s)", id)})
	} else {
		b.startElement("g")
	}
	b.inObject = true
	b.batch.reset()
}

// EndObject flushes the object's batched paths as children of its <g>,
// re-applies loadSaveData as extra attributes on that <g> (the mechanism
// for round-tripping attributes the loader didn't understand), and closes
// the element.
func (b *VectorBackend) EndObject(loadSaveData map[string]any) {
	b.batch.flush(b.emitPath)
	b.inObject = false
	b.applyLoadSaveData(loadSaveData)
	b.endElement()
}

func (b *VectorBackend) DrawPath(path *vecboard.Path, style vecboard.RenderingStyle) {
	if !b.inObject {
		b.emitPath(path, style)
		return
	}
	b.batch.add(path, style)
}

func (b *VectorBackend) DrawPoints(points []vecboard.Vec2, style vecboard.RenderingStyle) {
	if len(points) == 0 {
		return
	}
	p := vecboard.NewPath()
	p.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	b.emitPath(p, style)
}

// DrawText emits a <text> element. Unlike the raster back-end, no
// GlyphMetricsSource is consulted: the host's own SVG renderer shapes and
// lays the glyphs out itself, so the text-shaping non-goal is moot here —
// the SVG document simply carries the string.
func (b *VectorBackend) DrawText(text string, transform vecboard.Mat33, style vecboard.TextStyle) {
	full := b.transform.Multiply(transform)
	attrs := []xml.Attr{
		{Name: xml.Name{Local: "transform"}, Value: matrixAttr(full)},
		{Name: xml.Name{Local: "font-size"}, Value: formatFloat(style.Size)},
	}
	if style.Family != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "font-family"}, Value: style.Family})
	}
	if style.Weight != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "font-weight"}, Value: strconv.Itoa(*style.Weight)})
	}
	if style.Variant != nil {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "font-style"}, Value: *style.Variant})
	}
	attrs = append(attrs, styleAttrs(style.RenderingStyle)...)

	b.startElement("text", attrs...)
	_ = b.enc.EncodeToken(xml.CharData(text))
	b.endElement()
}

// DrawImage embeds img as a base64-encoded PNG data URI, positioned by
// transform the same way the raster back-end interprets it: mapping img's
// own pixel space straight to this renderer's current device space.
func (b *VectorBackend) DrawImage(img image.Image, transform vecboard.Mat33) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		vecboard.Logger().Warn("renderer: vector backend failed to encode image", "error", err)
		return
	}
	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBuf.Bytes())

	bounds := img.Bounds()
	b.emptyElement("image",
		xml.Attr{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(bounds.Dx())},
		xml.Attr{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(bounds.Dy())},
		xml.Attr{Name: xml.Name{Local: "transform"}, Value: matrixAttr(transform)},
		xml.Attr{Name: xml.Name{Local: "href"}, Value: href},
	)
}

// WriteRaw flushes pending encoder state and splices an already-serialized
// XML fragment in verbatim, the same raw-byte technique
// RenderFromOtherOfSameType uses to inline another backend's document.
// Used by the SVG codec's writer to restore an unrecognized element's
// original markup untouched.
func (b *VectorBackend) WriteRaw(fragment string) {
	_ = b.enc.Flush()
	b.buf.WriteString(fragment)
}

// SetStyleBlock injects a literal <style> element as the document's first
// child. Used by the SVG codec's writer for the stroke-linecap/linejoin
// boilerplate that applies uniformly to every <path>, rather than
// repeating it as a presentation attribute on each one.
func (b *VectorBackend) SetStyleBlock(css string) {
	if css == "" || len(b.openTags) == 0 {
		return
	}
	b.startElement("style")
	_ = b.enc.EncodeToken(xml.CharData(css))
	b.endElement()
}

// IsTooSmallToRender always reports false: SVG content is resolution
// independent, so the rendering cache's "is this node worth descending
// into" pruning never applies when the screen renderer is this backend
// (and indeed never runs it, since the cache falls back to direct
// rendering whenever BackingKind doesn't match its own, per spec.md §4.5).
func (b *VectorBackend) IsTooSmallToRender(vecboard.Rect2) bool { return false }

// CanRenderFromWithoutDataLoss reports whether other is also a vector
// backend: compositing one SVG fragment into another loses nothing,
// while flattening a raster tile into an SVG document would (it would
// have to be embedded as an opaque <image>, discarding its structure).
func (b *VectorBackend) CanRenderFromWithoutDataLoss(other Renderer) bool {
	_, ok := other.(*VectorBackend)
	return ok
}

// RenderFromOtherOfSameType inlines other's already-built elements as a
// transformed <g>, re-parenting its fragment into this document.
func (b *VectorBackend) RenderFromOtherOfSameType(transform vecboard.Mat33, other Renderer) {
	src, ok := other.(*VectorBackend)
	if !ok {
		return
	}
	b.startElement("g", xml.Attr{Name: xml.Name{Local: "transform"}, Value: matrixAttr(transform)})
	_ = b.enc.Flush()
	b.buf.Write(src.Bytes())
	b.endElement()
}

// emitPath writes path (in canvas space, per the current transform) as a
// single <path> element.
func (b *VectorBackend) emitPath(path *vecboard.Path, style vecboard.RenderingStyle) {
	d := pathToSVGData(path.Transform(b.transform))
	if d == "" {
		return
	}
	attrs := append([]xml.Attr{{Name: xml.Name{Local: "d"}, Value: d}}, styleAttrs(style)...)
	b.emptyElement("path", attrs...)
}

// applyLoadSaveData re-applies attributes the loader preserved verbatim
// (spec.md §4.6/§4.7's unknown-attribute round-trip) onto the currently
// open <g>. Values are formatted with fmt's default verb, which covers
// the string/number/bool shapes the SVG loader stores them as.
func (b *VectorBackend) applyLoadSaveData(data map[string]any) {
	if len(data) == 0 || len(b.openTags) == 0 {
		return
	}
	for k, v := range data {
		b.buf.Write([]byte(fmt.Sprintf(` %s=%q`, k, fmt.Sprint(v))))
	}
}

func (b *VectorBackend) startElement(name string, attrs ...xml.Attr) {
	_ = b.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
	b.openTags = append(b.openTags, name)
}

func (b *VectorBackend) endElement() {
	n := len(b.openTags)
	if n == 0 {
		return
	}
	name := b.openTags[n-1]
	b.openTags = b.openTags[:n-1]
	_ = b.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

// emptyElement writes a self-contained start+end element pair, since
// encoding/xml's Encoder has no dedicated "self-closing tag" token.
func (b *VectorBackend) emptyElement(name string, attrs ...xml.Attr) {
	_ = b.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
	_ = b.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

// styleAttrs converts a RenderingStyle into SVG presentation attributes.
func styleAttrs(style vecboard.RenderingStyle) []xml.Attr {
	attrs := []xml.Attr{{Name: xml.Name{Local: "fill"}, Value: style.Fill.ToHex()}}
	if style.Fill.A == 0 {
		attrs[0].Value = "none"
	}
	if style.Stroke != nil {
		attrs = append(attrs,
			xml.Attr{Name: xml.Name{Local: "stroke"}, Value: style.Stroke.Color.ToHex()},
			xml.Attr{Name: xml.Name{Local: "stroke-width"}, Value: formatFloat(style.Stroke.Width)},
		)
	} else {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "stroke"}, Value: "none"})
	}
	return attrs
}

// matrixAttr formats m as an SVG transform="matrix(...)" value: SVG's
// matrix order is (a b c d e f), mapping x'=a*x+c*y+e, y'=b*x+d*y+f —
// Mat33's row-major A..F fields line up directly (A,D,B,E,C,F).
func matrixAttr(m vecboard.Mat33) string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)",
		formatFloat(m.A), formatFloat(m.D), formatFloat(m.B),
		formatFloat(m.E), formatFloat(m.C), formatFloat(m.F))
}

// pathToSVGData converts path's elements to an SVG path "d" attribute
// value. No third-party SVG path writer appears anywhere in the example
// pack; this mirrors svgcodec's loader doing the inverse parse by hand.
func pathToSVGData(path *vecboard.Path) string {
	var buf bytes.Buffer
	for _, e := range path.Elements() {
		switch el := e.(type) {
		case vecboard.MoveTo:
			fmt.Fprintf(&buf, "M%s,%s ", formatFloat(el.Vec2.X), formatFloat(el.Vec2.Y))
		case vecboard.LineTo:
			fmt.Fprintf(&buf, "L%s,%s ", formatFloat(el.Vec2.X), formatFloat(el.Vec2.Y))
		case vecboard.QuadTo:
			fmt.Fprintf(&buf, "Q%s,%s %s,%s ",
				formatFloat(el.Control.X), formatFloat(el.Control.Y),
				formatFloat(el.Vec2.X), formatFloat(el.Vec2.Y))
		case vecboard.CubicTo:
			fmt.Fprintf(&buf, "C%s,%s %s,%s %s,%s ",
				formatFloat(el.Control1.X), formatFloat(el.Control1.Y),
				formatFloat(el.Control2.X), formatFloat(el.Control2.Y),
				formatFloat(el.Vec2.X), formatFloat(el.Vec2.Y))
		case vecboard.Close:
			buf.WriteString("Z ")
		}
	}
	return strings.TrimSpace(buf.String())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ Renderer = (*VectorBackend)(nil)

func init() {
	Register("vector", func(width, height int) Renderer {
		return NewVectorBackend(width, height)
	})
}
