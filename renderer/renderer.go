package renderer

import (
	"image"

	"github.com/vecboard/vecboard"
)

// Renderer is spec.md §4.6's Abstract Renderer contract: display sizing,
// object-scoped drawing (start_object/end_object bracket a group of paths
// so the batcher can coalesce them), and the three draw primitives
// (path, text, image/points). Its method set is a structural superset of
// rendercache.ItemRenderer — rendercache declares that narrower interface
// itself (rather than importing this package) to avoid a dependency
// cycle, the same trick events.ViewportMapper and scene.RestyleableComponent
// use; any concrete Renderer here satisfies rendercache.ItemRenderer
// automatically, with no explicit adapter needed.
type Renderer interface {
	// BackingKind tags the renderer's concrete family ("raster", "vector",
	// ...), compared against rendercache's configured backing kind to
	// decide whether a cached tile can be blitted to it directly.
	BackingKind() string

	DisplaySize() (width, height int)
	Clear()

	// StartObject begins a new object: clip is honored by the raster
	// back-end per spec.md §4.6 ("clipping is honored when
	// start_object(bbox, true)"); the vector back-end ignores it (SVG
	// expresses clipping structurally, not via this flag).
	StartObject(bbox vecboard.Rect2, clip bool)

	// EndObject closes the current object, flushing any paths the
	// batcher deferred since the matching StartObject. loadSaveData, if
	// non-nil, is re-applied to the elements this object emitted — the
	// vector back-end's mechanism for round-tripping unknown SVG
	// attributes (spec.md §4.6).
	EndObject(loadSaveData map[string]any)

	// DrawPath defers path into the current object's batch; consecutive
	// calls with an equal style coalesce into one filled/stroked outline
	// at EndObject, per spec.md §4.6.
	DrawPath(path *vecboard.Path, style vecboard.RenderingStyle)

	// DrawText draws a text run at the given transform. Glyph metrics
	// come from a GlyphMetricsSource the back-end was configured with,
	// not from shaping — spec.md §1 Non-goals excludes text shaping.
	DrawText(text string, transform vecboard.Mat33, style vecboard.TextStyle)

	// DrawImage composites img onto this renderer, positioned by
	// transform.
	DrawImage(img image.Image, transform vecboard.Mat33)

	// DrawPoints draws a dot or short run of same-style points directly,
	// bypassing path batching — used for the stroke synthesizer's
	// snap-to-start dot case.
	DrawPoints(points []vecboard.Vec2, style vecboard.RenderingStyle)

	SetTransform(m vecboard.Mat33)

	// PushTransform/PopTransform save and restore the current transform
	// on an internal stack, mirroring the teacher's Context.Push/Pop.
	PushTransform()
	PopTransform()

	// IsTooSmallToRender reports whether rect, in the renderer's current
	// transform, would be invisible — rendercache prunes scene traversal
	// at nodes this returns true for (spec.md §4.3's
	// leaves_intersecting "too_small?" parameter).
	IsTooSmallToRender(rect vecboard.Rect2) bool

	// CanRenderFromWithoutDataLoss reports whether RenderFromOtherOfSameType
	// can reuse other's already-drawn content instead of rerendering from
	// the scene — true only when other is the same concrete back-end
	// family; pipeline mode (fidelity) is not compared.
	CanRenderFromWithoutDataLoss(other Renderer) bool

	// RenderFromOtherOfSameType composites other's content onto this
	// renderer through transform, used by the rendering cache to blit a
	// cached tile (as a Renderer-typed value) or to promote a wet-ink
	// surface onto the screen renderer in place.
	RenderFromOtherOfSameType(transform vecboard.Mat33, other Renderer)
}
