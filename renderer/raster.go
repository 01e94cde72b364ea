package renderer

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/surface"
)

// flattenTolerance is spec.md §4.6's draft-mode-dependent curve-flattening
// tolerance (draft: 9, normal: 0.5), in device pixels. surface.ImageSurface
// flattens curves internally too, but at a fixed tolerance baked into its
// own raster.EdgeBuilder at construction time (surface/image_surface.go's
// NewEdgeBuilder(2) call) with no per-draw override, so draft-mode fidelity
// has to be produced here instead: DrawPath flattens every curve itself,
// at this mode's tolerance, before handing the surface nothing but
// MoveTo/LineTo/Close.
var flattenTolerance = map[PipelineMode]float64{
	NormalMode: 0.5,
	DraftMode:  9,
}

// skipThreshold is spec.md §4.6's per-mode object-skip thresholds: an
// object whose screen AABB's smaller or larger dimension falls under the
// respective value is skipped entirely, and StartObject/EndObject calls
// nested inside it are skipped along with it.
type skipThreshold struct{ smaller, larger float64 }

var objectSkipThreshold = map[PipelineMode]skipThreshold{
	NormalMode: {smaller: 1e-6, larger: 0.2},
	DraftMode:  {smaller: 0.5, larger: 2},
}

// RasterBackend renders onto a surface.Surface, per spec.md §4.6's raster
// back-end: rasterized paths, type-asserted image blits, and layout-only
// text (real glyph outlines are out of scope — see GlyphMetricsSource).
// Grounded on the teacher's Context (context.go), which plays the same
// role atop its own GPU surface: a transform stack plus the same
// StartObject/EndObject/DrawPath vocabulary.
type RasterBackend struct {
	surf    surface.Surface
	metrics GlyphMetricsSource
	mode    PipelineMode

	transform      vecboard.Mat33
	transformStack []vecboard.Mat33

	batch     objectBatcher
	inObject  bool
	skipDepth int
	clipDepth int
}

// NewRasterBackend wraps surf for drawing. metrics may be nil; DrawText is
// then a no-op, matching a host that never loaded a font.
func NewRasterBackend(surf surface.Surface, metrics GlyphMetricsSource) *RasterBackend {
	return &RasterBackend{
		surf:      surf,
		metrics:   metrics,
		mode:      NormalMode,
		transform: vecboard.Identity(),
	}
}

// SetPipelineMode switches between draft and normal fidelity, per
// spec.md §4.6. Grounded on the teacher's Context.SetPipelineMode
// (pipeline_mode.go).
func (b *RasterBackend) SetPipelineMode(mode PipelineMode) { b.mode = mode }

// PipelineMode returns the backend's current fidelity mode.
func (b *RasterBackend) PipelineMode() PipelineMode { return b.mode }

func (b *RasterBackend) BackingKind() string { return "raster" }

func (b *RasterBackend) DisplaySize() (width, height int) {
	return b.surf.Width(), b.surf.Height()
}

func (b *RasterBackend) Clear() {
	b.surf.Clear(vecboard.RGBA{}.Color())
}

func (b *RasterBackend) SetTransform(m vecboard.Mat33) { b.transform = m }

func (b *RasterBackend) PushTransform() {
	b.transformStack = append(b.transformStack, b.transform)
}

func (b *RasterBackend) PopTransform() {
	n := len(b.transformStack)
	if n == 0 {
		return
	}
	b.transform = b.transformStack[n-1]
	b.transformStack = b.transformStack[:n-1]
}

// StartObject begins a new object. clip, when true and the backing
// surface implements surface.ClippableSurface, pushes bbox (transformed
// into device space) as the active clip region — spec.md §4.6's
// "clipping is honored when start_object(bbox, true)". An object whose
// device-space bbox falls under this mode's skip thresholds is skipped
// entirely, and the skip propagates to every StartObject/EndObject
// nested inside it via skipDepth.
func (b *RasterBackend) StartObject(bbox vecboard.Rect2, clip bool) {
	if b.skipDepth > 0 {
		b.skipDepth++
		return
	}

	deviceBBox := bbox.Transformed(b.transform)
	th := objectSkipThreshold[b.mode]
	smaller, larger := deviceBBox.Width(), deviceBBox.Height()
	if smaller > larger {
		smaller, larger = larger, smaller
	}
	if smaller < th.smaller || larger < th.larger {
		b.skipDepth = 1
		return
	}

	b.inObject = true
	b.batch.reset()

	if clip {
		if clippable, ok := b.surf.(surface.ClippableSurface); ok {
			clippable.PushClip()
			clippable.SetClip(b.toSurfacePath(bboxPath(deviceBBox)))
			b.clipDepth++
		}
	}
}

// EndObject flushes the object's batched paths and pops any clip pushed
// by the matching StartObject. loadSaveData is accepted for interface
// symmetry with the vector back-end but otherwise unused here: a raster
// surface has no attributes to round-trip.
func (b *RasterBackend) EndObject(loadSaveData map[string]any) {
	_ = loadSaveData

	if b.skipDepth > 0 {
		b.skipDepth--
		return
	}

	b.batch.flush(b.paint)
	b.inObject = false

	if b.clipDepth > 0 {
		if clippable, ok := b.surf.(surface.ClippableSurface); ok {
			clippable.PopClip()
		}
		b.clipDepth--
	}
}

// DrawPath defers path into the current object's batch (or, outside any
// object, paints it immediately — DrawPoints and a handful of direct
// callers draw without a StartObject/EndObject bracket at all).
func (b *RasterBackend) DrawPath(path *vecboard.Path, style vecboard.RenderingStyle) {
	if b.skipDepth > 0 {
		return
	}
	if !b.inObject {
		b.paint(path, style)
		return
	}
	b.batch.add(path, style)
}

// paint rasterizes path (already in canvas space) onto the surface: fills
// it if style has a fill with nonzero alpha, strokes it if style has a
// stroke, using this backend's current transform and pipeline-mode
// flattening tolerance.
func (b *RasterBackend) paint(path *vecboard.Path, style vecboard.RenderingStyle) {
	device := path.Transform(b.transform)
	surfacePath := b.toSurfacePath(device)
	if surfacePath.IsEmpty() {
		return
	}

	if style.Fill.A > 0 {
		b.surf.Fill(surfacePath, surface.FillStyle{Color: style.Fill.Color()})
	}
	if style.Stroke != nil {
		scale := b.transform.MaxScaleFactor()
		b.surf.Stroke(surfacePath, surface.StrokeStyle{
			Color:      style.Stroke.Color.Color(),
			Width:      style.Stroke.Width * scale,
			Cap:        surface.LineCapRound,
			Join:       surface.LineJoinRound,
			MiterLimit: surface.DefaultStrokeStyle().MiterLimit,
		})
	}
}

func (b *RasterBackend) DrawPoints(points []vecboard.Vec2, style vecboard.RenderingStyle) {
	if b.skipDepth > 0 || len(points) == 0 {
		return
	}
	p := vecboard.NewPath()
	p.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	b.paint(p, style)
}

// DrawImage blits img directly onto the surface, bypassing the path
// batcher. transform maps img's own pixel space (0,0)-(w,h) straight to
// this backend's device space, per renderer.Renderer.DrawImage's
// contract; it is NOT further composed with b.transform, matching
// rendercache's own blit call (which builds the full tile-pixel-to-screen
// transform itself and passes it as-is).
//
// surface.ImageSurface.DrawImage itself only ever blits pixel-for-pixel
// (its DstRect/Filter options are accepted but not actually honored), so
// any scale transform carries would be silently dropped if img were
// handed to it directly. DrawImage resamples into the device-space
// footprint itself first, with golang.org/x/image/draw's bilinear
// scaler, and only then hands the surface an already-sized image to
// place at dst.Min.
func (b *RasterBackend) DrawImage(img image.Image, transform vecboard.Mat33) {
	if b.skipDepth > 0 {
		return
	}
	bounds := img.Bounds()
	corner := transform.TransformVec2(vecboard.V2(0, 0))
	opposite := transform.TransformVec2(vecboard.V2(float64(bounds.Dx()), float64(bounds.Dy())))

	dst := image.Rect(
		int(math.Round(corner.X)), int(math.Round(corner.Y)),
		int(math.Round(opposite.X)), int(math.Round(opposite.Y)),
	).Canon()
	if dst.Dx() == 0 || dst.Dy() == 0 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)

	b.surf.DrawImage(scaled, surface.Pt(float64(dst.Min.X), float64(dst.Min.Y)), &surface.DrawImageOptions{
		Alpha: 1,
	})
}

// DrawText lays out text along the baseline using metrics' advances,
// drawing each glyph's box with style's fill — real glyph outlines are
// out of scope (spec.md §1 Non-goals: "text shaping (glyph metrics only,
// via GlyphMetricsSource)"). transform maps the text's own baseline-local
// space into canvas space; this backend composes it with b.transform the
// same way DrawPath's payload is expected in canvas space.
func (b *RasterBackend) DrawText(text string, transform vecboard.Mat33, style vecboard.TextStyle) {
	if b.skipDepth > 0 || b.metrics == nil || text == "" {
		return
	}

	full := b.transform.Multiply(transform)
	ascent := b.metrics.Ascent() * style.Size
	descent := b.metrics.Descent() * style.Size

	pen := 0.0
	for _, r := range text {
		advance := b.metrics.AdvanceWidth(r, style.Size)
		if b.metrics.HasGlyph(r) && r != ' ' {
			box := vecboard.NewRect2XYWH(pen, -ascent, advance, ascent+descent)
			p := bboxPath(box)
			b.paint(p.Transform(full), style.RenderingStyle)
		}
		pen += advance
	}
}

// IsTooSmallToRender reports whether rect's device-space AABB would be
// invisible under the current transform, using the normal-mode object-skip
// thresholds regardless of this backend's own pipeline mode — rendercache
// calls this to prune scene traversal, which must stay conservative even
// while a drag is loosening the raster backend's own paint fidelity.
func (b *RasterBackend) IsTooSmallToRender(rect vecboard.Rect2) bool {
	device := rect.Transformed(b.transform)
	th := objectSkipThreshold[NormalMode]
	smaller, larger := device.Width(), device.Height()
	if smaller > larger {
		smaller, larger = larger, smaller
	}
	return smaller < th.smaller || larger < th.larger
}

// CanRenderFromWithoutDataLoss reports whether other is also a raster
// backend: a raster tile composites onto another raster surface with no
// loss, but would lose structure if flattened into, say, a vector
// back-end's SVG tree.
func (b *RasterBackend) CanRenderFromWithoutDataLoss(other Renderer) bool {
	_, ok := other.(*RasterBackend)
	return ok
}

// RenderFromOtherOfSameType composites other's pixels onto this backend,
// used both to blit a cached tile and to promote a wet-ink surface onto
// the screen renderer in place.
func (b *RasterBackend) RenderFromOtherOfSameType(transform vecboard.Mat33, other Renderer) {
	src, ok := other.(*RasterBackend)
	if !ok {
		return
	}
	b.DrawImage(src.surf.Snapshot(), transform)
}

// toSurfacePath replays path's elements onto a fresh surface.Path,
// flattening every curve to lines at this backend's pipeline-mode
// tolerance as it goes (rather than passing QuadTo/CubicTo through to
// surface.Path, whose own internal flattening tolerance is fixed at
// construction and not mode-dependent).
func (b *RasterBackend) toSurfacePath(path *vecboard.Path) *surface.Path {
	out := surface.NewPath()
	tolerance := flattenTolerance[b.mode]
	current := vecboard.Vec2{}

	for _, e := range path.Elements() {
		switch el := e.(type) {
		case vecboard.MoveTo:
			out.MoveTo(el.Vec2.X, el.Vec2.Y)
			current = el.Vec2
		case vecboard.LineTo:
			out.LineTo(el.Vec2.X, el.Vec2.Y)
			current = el.Vec2
		case vecboard.QuadTo:
			flattenQuadInto(out, current, el.Control, el.Vec2, tolerance)
			current = el.Vec2
		case vecboard.CubicTo:
			flattenCubicInto(out, current, el.Control1, el.Control2, el.Vec2, tolerance)
			current = el.Vec2
		case vecboard.Close:
			out.Close()
		}
	}
	return out
}

// flattenQuadInto recursively subdivides a quadratic Bezier, emitting
// LineTo calls onto dst. Mirrors path_ops.go's unexported
// flattenQuadRecursive flatness test (distance from the control point to
// the chord midpoint) — that helper can't be called directly from this
// package, so its formula is reproduced here rather than routed through
// Path.FlattenCallback, whose point stream can't be told apart from an
// ordinary two-point line run at a MoveTo boundary.
func flattenQuadInto(dst *surface.Path, p0, p1, p2 vecboard.Vec2, tolerance float64) {
	flattenQuadRecursive(dst, p0, p1, p2, tolerance*tolerance, 0)
}

func flattenQuadRecursive(dst *surface.Path, p0, p1, p2 vecboard.Vec2, toleranceSq float64, depth int) {
	mid := p0.Lerp(p2, 0.5)
	dist := p1.Sub(mid)
	if depth > 16 || dist.LengthSquared() <= toleranceSq {
		dst.LineTo(p2.X, p2.Y)
		return
	}
	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	mid2 := p01.Lerp(p12, 0.5)
	flattenQuadRecursive(dst, p0, p01, mid2, toleranceSq, depth+1)
	flattenQuadRecursive(dst, mid2, p12, p2, toleranceSq, depth+1)
}

// flattenCubicInto recursively subdivides a cubic Bezier the same way
// flattenQuadInto handles a quadratic, using the maximum control-point
// deviation from the chord as the flatness test.
func flattenCubicInto(dst *surface.Path, p0, p1, p2, p3 vecboard.Vec2, tolerance float64) {
	flattenCubicRecursive(dst, p0, p1, p2, p3, tolerance*tolerance, 0)
}

func flattenCubicRecursive(dst *surface.Path, p0, p1, p2, p3 vecboard.Vec2, toleranceSq float64, depth int) {
	d1 := distToChordSq(p1, p0, p3)
	d2 := distToChordSq(p2, p0, p3)
	worst := d1
	if d2 > worst {
		worst = d2
	}
	if depth > 16 || worst <= toleranceSq {
		dst.LineTo(p3.X, p3.Y)
		return
	}

	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	p23 := p2.Lerp(p3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	mid := p012.Lerp(p123, 0.5)

	flattenCubicRecursive(dst, p0, p01, p012, mid, toleranceSq, depth+1)
	flattenCubicRecursive(dst, mid, p123, p23, p3, toleranceSq, depth+1)
}

// distToChordSq returns the squared distance from pt to the line through
// a and b (or to a itself, if a and b coincide).
func distToChordSq(pt, a, b vecboard.Vec2) float64 {
	chord := b.Sub(a)
	lenSq := chord.LengthSquared()
	if lenSq == 0 {
		return pt.Sub(a).LengthSquared()
	}
	toPt := pt.Sub(a)
	cross := chord.X*toPt.Y - chord.Y*toPt.X
	return cross * cross / lenSq
}

// bboxPath returns a closed rectangular path outlining bbox.
func bboxPath(bbox vecboard.Rect2) *vecboard.Path {
	p := vecboard.NewPath()
	p.MoveTo(bbox.Min.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Min.Y)
	p.LineTo(bbox.Max.X, bbox.Max.Y)
	p.LineTo(bbox.Min.X, bbox.Max.Y)
	p.Close()
	return p
}

var _ Renderer = (*RasterBackend)(nil)

func init() {
	Register("raster", func(width, height int) Renderer {
		return NewRasterBackend(surface.NewImageSurface(width, height), NewUniformMetrics())
	})
}
