package rendercache

import (
	"image"

	"github.com/vecboard/vecboard"
)

// ItemRenderer is the subset of the abstract renderer contract (spec.md
// §4.6) the cache actually drives: starting/ending an object, emitting a
// styled path, and blitting an already-rendered image back onto this
// renderer (used both to reuse a cached backing surface and to draw
// ImageComponent content). Declared locally rather than importing the
// renderer package, so rendercache has no dependency on it; renderer's
// concrete backends (raster, vector) satisfy this structurally, the same
// narrow-interface trick events.ViewportMapper and scene's
// RestyleableComponent use to avoid their own cross-package cycles.
type ItemRenderer interface {
	// BackingKind tags the renderer's concrete family ("raster",
	// "vector", ...). Render bypasses the cache entirely when the screen
	// renderer's kind doesn't match the cache's configured backing kind,
	// per spec.md §4.5's "if the screen renderer is not of the cache's
	// backing type, fall back to direct rendering" — a blitted raster
	// tile means nothing to an SVG-emitting vector renderer.
	BackingKind() string

	DisplaySize() (width, height int)
	Clear()
	StartObject(bbox vecboard.Rect2, clip bool)
	EndObject(loadSaveData map[string]any)
	DrawPath(path *vecboard.Path, style vecboard.RenderingStyle)
	SetTransform(m vecboard.Mat33)
	IsTooSmallToRender(rect vecboard.Rect2) bool

	// DrawImage composites img onto this renderer, positioned by
	// transform. The cache uses this both for a cached tile's Snapshot
	// and for ImageComponent's own Href image.
	DrawImage(img image.Image, transform vecboard.Mat33)
}

// Viewport is the subset of spec.md §4.8's Viewport the cache needs: the
// visible canvas-space rectangle, and the canvas<->screen transform pair
// used to judge a tile's on-screen resolution and to blit a finished tile
// back to the screen.
type Viewport interface {
	VisibleRect() vecboard.Rect2
	CanvasToScreen() vecboard.Mat33
	ScreenToCanvas() vecboard.Mat33
}
