package rendercache

import (
	"image/color"
	"sort"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/scene"
	"github.com/vecboard/vecboard/surface"
)

// BackingRendererFactory builds an ItemRenderer that draws onto s, used to
// paint a node's intersecting leaves onto a pooled backing surface before
// it gets blitted to the screen.
type BackingRendererFactory func(s surface.Surface) ItemRenderer

// RenderingCache is the hierarchical tile cache spec.md §4.5 describes.
// One instance is shared across the lifetime of a view of the document;
// Render is called once per frame with the current screen renderer and
// viewport.
type RenderingCache struct {
	params         Params
	backingKind    string
	backingFactory BackingRendererFactory
	records        *CacheRecordManager

	root  *TileNode
	cycle uint64
}

// NewRenderingCache builds a cache that, when its decisions call for
// allocating a backing surface, creates it via newSurface and wraps it
// for drawing via backingFactory. backingKind must match the BackingKind
// a compatible screen ItemRenderer reports.
func NewRenderingCache(params Params, backingKind string, newSurface func(width, height int) surface.Surface, backingFactory BackingRendererFactory) *RenderingCache {
	return &RenderingCache{
		params:         params,
		backingKind:    backingKind,
		backingFactory: backingFactory,
		records:        NewCacheRecordManager(params.CacheSizeBytes, params.TileResolution, newSurface),
	}
}

// Cycle returns the current rendering cycle counter, incremented once per
// Render call.
func (rc *RenderingCache) Cycle() uint64 { return rc.cycle }

// leafRef pairs a scene leaf with which of EditorImage's two trees it
// came from; background leaves are treated as lower in paint order than
// anything in the foreground tree regardless of their own z-index.
type leafRef struct {
	node       *scene.SceneNode
	background bool
}

// Render paints everything visible through viewport onto screen, using
// the tile tree to reuse prior work where possible, per spec.md §4.5.
func (rc *RenderingCache) Render(screen ItemRenderer, foreground, background *scene.SceneNode, viewport Viewport) {
	rc.cycle++
	visible := viewport.VisibleRect()

	if screen.BackingKind() != rc.backingKind {
		rc.renderDirect(screen, gatherLeaves(foreground, background, visible), viewport)
		return
	}

	rc.ensureRoot(visible)
	node := rc.root.descendToContaining(visible)
	leaves := gatherLeaves(foreground, background, visible)
	rc.renderNode(node, screen, leaves, viewport)
}

// ensureRoot lazily creates the tree's root (just large enough to hold
// visible) or, if visible has outgrown it, repeatedly wraps it in a
// larger parent whose center child is the current root, per spec.md
// §4.5's "root can be extended" rule.
func (rc *RenderingCache) ensureRoot(visible vecboard.Rect2) {
	if rc.root == nil {
		side := visible.Width()
		if visible.Height() > side {
			side = visible.Height()
		}
		if side <= 0 {
			side = float64(rc.params.TileResolution)
		}
		cx := (visible.Min.X + visible.Max.X) / 2
		cy := (visible.Min.Y + visible.Max.Y) / 2
		half := side / 2
		rc.root = newTileNode(vecboard.Rect2{
			Min: vecboard.V2(cx-half, cy-half),
			Max: vecboard.V2(cx+half, cy+half),
		})
	}
	for !rc.root.region.ContainsRect(visible) {
		rc.root = wrapRoot(rc.root)
	}
}

// wrapRoot builds a new root three times old's side, with old installed
// as its center child (index 4 of the row-major 3x3 grid).
func wrapRoot(old *TileNode) *TileNode {
	side := old.region.Width()
	newMin := vecboard.V2(old.region.Min.X-side, old.region.Min.Y-side)
	parent := newTileNode(vecboard.Rect2{
		Min: newMin,
		Max: vecboard.V2(newMin.X+3*side, newMin.Y+3*side),
	})
	parent.children[4] = old
	return parent
}

func gatherLeaves(foreground, background *scene.SceneNode, region vecboard.Rect2) []leafRef {
	var out []leafRef
	for _, n := range background.LeavesIntersecting(region, nil) {
		out = append(out, leafRef{node: n, background: true})
	}
	for _, n := range foreground.LeavesIntersecting(region, nil) {
		out = append(out, leafRef{node: n, background: false})
	}
	return out
}

func clipToRegion(leaves []leafRef, region vecboard.Rect2) []leafRef {
	var out []leafRef
	for _, l := range leaves {
		if l.node.BBox().Intersects(region) {
			out = append(out, l)
		}
	}
	return out
}

func sortedTokens(leaves []leafRef) []uint64 {
	ids := make([]uint64, len(leaves))
	for i, l := range leaves {
		ids[i] = l.node.Content().ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func maxZIndexOf(leaves []leafRef) uint64 {
	var max uint64
	for _, l := range leaves {
		if z := l.node.Content().ZIndex(); z > max {
			max = z
		}
	}
	return max
}

func tokensEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// renderNode implements spec.md §4.5's per-node rendering decision.
func (rc *RenderingCache) renderNode(node *TileNode, screen ItemRenderer, leaves []leafRef, viewport Viewport) {
	clipped := clipToRegion(leaves, node.region)

	if len(clipped) == 0 {
		if node.record != nil {
			rc.records.Release(node.record)
		}
		node.tokenList = nil
		node.maxZIndex = 0
		return
	}

	if rc.tooBlurry(node.region, viewport) {
		rc.recurseChildren(node, screen, clipped, viewport)
		return
	}

	tokens := sortedTokens(clipped)
	maxZ := maxZIndexOf(clipped)

	if node.record != nil && tokensEqual(node.tokenList, tokens) {
		rc.records.Touch(node.record, rc.cycle)
		rc.blit(node, screen, viewport)
		return
	}

	if node.record != nil && isAppendOnly(node.tokenList, node.maxZIndex, clipped) {
		rc.drawIncremental(node, clipped, tokens, maxZ)
		rc.records.Touch(node.record, rc.cycle)
		rc.blit(node, screen, viewport)
		return
	}

	if rc.childrenUpToDate(node, clipped) {
		rc.recurseChildren(node, screen, clipped, viewport)
		return
	}

	if estimateRenderCost(clipped) >= rc.params.MinPropTimePerCache {
		rc.renderToBackingSurface(node, clipped, tokens, maxZ)
		rc.records.Touch(node.record, rc.cycle)
		rc.blit(node, screen, viewport)
		return
	}

	rc.renderDirect(screen, clipped, viewport)
}

// tooBlurry reports whether one backing-tile pixel of node's region would
// project to more than params.MaxScale screen pixels, per spec.md §4.5.
func (rc *RenderingCache) tooBlurry(region vecboard.Rect2, viewport Viewport) bool {
	if rc.params.TileResolution <= 0 {
		return false
	}
	canvasPixelSize := region.Width() / float64(rc.params.TileResolution)
	screenPixelsPerTilePixel := canvasPixelSize * viewport.CanvasToScreen().MaxScaleFactor()
	return screenPixelsPerTilePixel > rc.params.MaxScale
}

// estimateRenderCost stands in for the source's profiled per-leaf render
// time (spec.md's "proportional rendering time"); this engine has no
// profiling hook to draw on, so total intersecting bbox area is used as a
// cheap, monotonic-in-the-right-direction proxy — more and larger leaves
// cost more to render directly every frame, which is the only property
// the threshold comparison actually needs.
func estimateRenderCost(leaves []leafRef) float64 {
	var total float64
	for _, l := range leaves {
		b := l.node.BBox()
		total += b.Width() * b.Height()
	}
	return total
}

func isAppendOnly(oldTokens []uint64, oldMaxZ uint64, clipped []leafRef) bool {
	old := make(map[uint64]bool, len(oldTokens))
	for _, id := range oldTokens {
		old[id] = true
	}
	matched := 0
	for _, l := range clipped {
		c := l.node.Content()
		if old[c.ID()] {
			matched++
			continue
		}
		if c.ZIndex() <= oldMaxZ {
			return false
		}
	}
	return matched == len(oldTokens)
}

// childrenUpToDate reports whether every one of node's 3x3 sub-regions
// already has a cached record matching the leaves that intersect it, so
// recursing costs nothing beyond nine blits instead of a fresh render.
func (rc *RenderingCache) childrenUpToDate(node *TileNode, clipped []leafRef) bool {
	for i, r := range node.childRegions() {
		subset := clipToRegion(clipped, r)
		child := node.children[i]
		if len(subset) == 0 {
			if child != nil && child.record != nil {
				return false
			}
			continue
		}
		if child == nil || child.record == nil {
			return false
		}
		if !tokensEqual(child.tokenList, sortedTokens(subset)) {
			return false
		}
	}
	return true
}

func (rc *RenderingCache) recurseChildren(node *TileNode, screen ItemRenderer, clipped []leafRef, viewport Viewport) {
	for i, r := range node.childRegions() {
		subset := clipToRegion(clipped, r)
		if len(subset) == 0 {
			continue
		}
		if node.children[i] == nil {
			node.children[i] = newTileNode(r)
		}
		rc.renderNode(node.children[i], screen, subset, viewport)
	}
}

// tileProjection maps node's canvas-space region onto a
// resolution x resolution backing surface's pixel space.
func tileProjection(region vecboard.Rect2, resolution int) vecboard.Mat33 {
	sx := float64(resolution) / region.Width()
	sy := float64(resolution) / region.Height()
	return vecboard.Scale(sx, sy).Multiply(vecboard.Translate(-region.Min.X, -region.Min.Y))
}

func (rc *RenderingCache) renderToBackingSurface(node *TileNode, leaves []leafRef, tokens []uint64, maxZ uint64) {
	if node.record == nil {
		node.record = rc.records.Alloc(node.region, func() {
			node.record = nil
			node.tokenList = nil
			node.maxZIndex = 0
		})
	}
	surf := node.record.Surface()
	surf.Clear(color.RGBA{})
	backing := rc.backingFactory(surf)
	paintLeaves(backing, leaves, tileProjection(node.region, rc.params.TileResolution))
	node.tokenList = tokens
	node.maxZIndex = maxZ
}

func (rc *RenderingCache) drawIncremental(node *TileNode, leaves []leafRef, tokens []uint64, maxZ uint64) {
	old := make(map[uint64]bool, len(node.tokenList))
	for _, id := range node.tokenList {
		old[id] = true
	}
	var fresh []leafRef
	for _, l := range leaves {
		if !old[l.node.Content().ID()] {
			fresh = append(fresh, l)
		}
	}
	backing := rc.backingFactory(node.record.Surface())
	paintLeaves(backing, fresh, tileProjection(node.region, rc.params.TileResolution))
	node.tokenList = tokens
	node.maxZIndex = maxZ
}

// blit composites node's backing surface onto screen through the inverse
// of its canvas-to-tile projection, composed with the viewport's
// canvas-to-screen transform, per spec.md §4.5's "blit the backing
// surface to the screen through the inverse of the tile's
// canvas-to-tile transform".
func (rc *RenderingCache) blit(node *TileNode, screen ItemRenderer, viewport Viewport) {
	if node.record == nil {
		return
	}
	projection := tileProjection(node.region, rc.params.TileResolution)
	inverse, err := projection.Invert()
	if err != nil {
		return
	}
	img := node.record.Surface().Snapshot()
	screen.DrawImage(img, viewport.CanvasToScreen().Multiply(inverse))
}

// renderDirect paints leaves straight onto screen with no tile
// bookkeeping at all: used both for the cache-bypass fallback (screen
// renderer of the wrong backing kind) and for a node whose leaves are
// too cheap to be worth caching.
func (rc *RenderingCache) renderDirect(screen ItemRenderer, leaves []leafRef, viewport Viewport) {
	paintLeaves(screen, leaves, viewport.CanvasToScreen())
}

// paintLeaves sorts background leaves ahead of every foreground leaf
// regardless of z-index, per leafRef's doc comment, breaking ties by
// z-index within each group.
func paintLeaves(target ItemRenderer, leaves []leafRef, transform vecboard.Mat33) {
	sorted := append([]leafRef(nil), leaves...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.background != b.background {
			return a.background
		}
		return a.node.Content().ZIndex() < b.node.Content().ZIndex()
	})
	target.SetTransform(transform)
	for _, l := range sorted {
		c := l.node.Content()
		target.StartObject(c.ContentBBox(), false)
		if img, ok := c.(scene.ImageComponent); ok {
			drawImageComponent(target, img, transform)
		} else if style, ok := styleOf(c); ok {
			target.DrawPath(c.Render(), style)
		} else {
			target.DrawPath(c.Render(), vecboard.DefaultRenderingStyle())
		}
		target.EndObject(c.LoadSaveData())
	}
}

// drawImageComponent blits img's decoded pixels directly rather than
// filling its unit-square outline, per ImageComponent.Render's own doc
// comment. DrawImage's transform maps the image's own pixel space
// (0,0)-(w,h) straight to the target's device space, so img's
// intrinsic-unit-square placement (Xform) is folded in here together
// with the pixel-to-unit scale, ahead of the leaf's own transform.
func drawImageComponent(target ItemRenderer, img scene.ImageComponent, transform vecboard.Mat33) {
	if img.Image == nil {
		// The SVG codec leaves Image nil for an href it didn't decode
		// itself (anything but an embedded data: URI): spec.md §5 leaves
		// fetching that pixel data to the host's own async loading
		// sequence, which hasn't necessarily run yet.
		return
	}
	bounds := img.Image.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return
	}
	toUnit := vecboard.Scale(1/w, 1/h)
	target.DrawImage(img.Image, transform.Multiply(img.Xform).Multiply(toUnit))
}

// styleSource is the narrower capability a Component may offer instead of
// full scene.RestyleableComponent: a style to paint with, but no ForceStyle
// mutator. scene.StrokeComponent satisfies this for a Stroke loaded from
// SVG (one fixed fill/stroke for the whole element) without claiming to
// support the restyle command, which a pointer-drawn stroke's per-sample
// coloring can't honor.
type styleSource interface {
	StyleOf() (vecboard.RenderingStyle, bool)
}

func styleOf(c scene.Component) (vecboard.RenderingStyle, bool) {
	if restyleable, ok := c.(scene.RestyleableComponent); ok {
		return restyleable.StyleOf(), true
	}
	if src, ok := c.(styleSource); ok {
		return src.StyleOf()
	}
	return vecboard.RenderingStyle{}, false
}
