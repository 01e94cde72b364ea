package rendercache

import (
	"image"
	"testing"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/scene"
	"github.com/vecboard/vecboard/stroke"
	"github.com/vecboard/vecboard/surface"
)

// fakeRenderer is a minimal ItemRenderer that only records how many
// objects and images it was asked to draw, enough to assert the cache's
// decisions without a real rasterizer.
type fakeRenderer struct {
	kind        string
	objects     int
	images      int
	lastTransform vecboard.Mat33
	order       []vecboard.Rect2
}

func newFakeRenderer(kind string) *fakeRenderer { return &fakeRenderer{kind: kind} }

func (f *fakeRenderer) BackingKind() string     { return f.kind }
func (f *fakeRenderer) DisplaySize() (int, int) { return 512, 512 }
func (f *fakeRenderer) Clear()                  {}
func (f *fakeRenderer) StartObject(bbox vecboard.Rect2, clip bool) {
	f.objects++
	f.order = append(f.order, bbox)
}
func (f *fakeRenderer) EndObject(map[string]any)      {}
func (f *fakeRenderer) DrawPath(*vecboard.Path, vecboard.RenderingStyle) {}
func (f *fakeRenderer) SetTransform(m vecboard.Mat33) { f.lastTransform = m }
func (f *fakeRenderer) IsTooSmallToRender(vecboard.Rect2) bool { return false }
func (f *fakeRenderer) DrawImage(image.Image, vecboard.Mat33) { f.images++ }

func newBackingFactory(kind string) BackingRendererFactory {
	return func(surface.Surface) ItemRenderer { return newFakeRenderer(kind) }
}

type fixedViewport struct {
	visible        vecboard.Rect2
	canvasToScreen vecboard.Mat33
}

func (v fixedViewport) VisibleRect() vecboard.Rect2   { return v.visible }
func (v fixedViewport) CanvasToScreen() vecboard.Mat33 { return v.canvasToScreen }
func (v fixedViewport) ScreenToCanvas() vecboard.Mat33 {
	inv, _ := v.canvasToScreen.Invert()
	return inv
}

func buildStroke(x, y, w, h float64) stroke.Stroke {
	b := stroke.NewBuilder(stroke.Sample{Pos: vecboard.Pt(x, y), Width: 1, TimeMS: 0}, 0.5, 5)
	b.AddPoint(stroke.Sample{Pos: vecboard.Pt(x+w, y+h), Width: 1, TimeMS: 1})
	return b.Build()
}

func strokeLeaf(t *testing.T, root *scene.SceneNode, x, y, w, h float64) *scene.SceneNode {
	t.Helper()
	return root.AddLeaf(scene.NewStrokeComponent(buildStroke(x, y, w, h)))
}

func rect(x, y, w, h float64) vecboard.Rect2 {
	return vecboard.NewRect2(vecboard.Pt(x, y), vecboard.Pt(x+w, y+h))
}

// imageSurface adapts surface.NewImageSurface, which returns the concrete
// *ImageSurface, to the surface.Surface-returning factory type
// NewRenderingCache takes.
func imageSurface(width, height int) surface.Surface {
	return surface.NewImageSurface(width, height)
}

func identityViewport(visible vecboard.Rect2) fixedViewport {
	return fixedViewport{visible: visible, canvasToScreen: vecboard.Identity()}
}

func TestRenderingCache_DirectFallbackWhenBackingKindMismatches(t *testing.T) {
	fg := scene.NewSceneNode()
	bg := scene.NewSceneNode()
	strokeLeaf(t, fg, 0, 0, 10, 10)

	rc := NewRenderingCache(DefaultParams(), "raster", imageSurface, newBackingFactory("raster"))
	screen := newFakeRenderer("vector")
	rc.Render(screen, fg, bg, identityViewport(rect(0, 0, 100, 100)))

	if screen.objects != 1 {
		t.Errorf("objects drawn = %d, want 1 (direct fallback should paint the leaf itself)", screen.objects)
	}
	if rc.root != nil {
		t.Errorf("root should stay nil when falling back to direct rendering")
	}
}

func TestRenderingCache_EmptyRegionSkipsRender(t *testing.T) {
	fg := scene.NewSceneNode()
	bg := scene.NewSceneNode()

	rc := NewRenderingCache(DefaultParams(), "raster", imageSurface, newBackingFactory("raster"))
	screen := newFakeRenderer("raster")
	rc.Render(screen, fg, bg, identityViewport(rect(0, 0, 100, 100)))

	if screen.objects != 0 || screen.images != 0 {
		t.Errorf("empty scene should draw nothing, got objects=%d images=%d", screen.objects, screen.images)
	}
}

func TestRenderingCache_CachesThenReusesBackingSurface(t *testing.T) {
	fg := scene.NewSceneNode()
	bg := scene.NewSceneNode()
	strokeLeaf(t, fg, 0, 0, 10, 10)
	strokeLeaf(t, fg, 20, 20, 10, 10)

	params := DefaultParams()
	params.MinPropTimePerCache = 0 // force every non-trivial leaf set to be worth caching

	rc := NewRenderingCache(params, "raster", imageSurface, newBackingFactory("raster"))
	viewport := identityViewport(rect(0, 0, 64, 64))

	screen1 := newFakeRenderer("raster")
	rc.Render(screen1, fg, bg, viewport)
	if screen1.images != 1 {
		t.Fatalf("first render: images blitted = %d, want 1 (root tile should cache and blit once)", screen1.images)
	}

	screen2 := newFakeRenderer("raster")
	rc.Render(screen2, fg, bg, viewport)
	if screen2.images != 1 {
		t.Errorf("second render: images blitted = %d, want 1 (unchanged token list should reuse the cached surface)", screen2.images)
	}

	if rc.root == nil || rc.root.record == nil {
		t.Fatalf("root tile should have allocated a backing record")
	}
	if rc.records.Len() != 1 {
		t.Errorf("record pool size = %d, want 1", rc.records.Len())
	}
}

func TestRenderingCache_RootGrowsToContainExpandingViewport(t *testing.T) {
	fg := scene.NewSceneNode()
	strokeLeaf(t, fg, 0, 0, 1, 1)

	rc := NewRenderingCache(DefaultParams(), "raster", imageSurface, newBackingFactory("raster"))

	small := rect(0, 0, 32, 32)
	rc.ensureRoot(small)
	firstRoot := rc.root
	if !firstRoot.region.ContainsRect(small) {
		t.Fatalf("initial root does not contain its own visible rect")
	}

	large := rect(-32, -32, 96, 96) // exactly the once-wrapped (tripled) root
	rc.ensureRoot(large)
	if rc.root == firstRoot {
		t.Errorf("root should have been replaced by a wrapping parent once the viewport outgrew it")
	}
	if !rc.root.region.ContainsRect(large) {
		t.Errorf("grown root does not contain the larger visible rect")
	}
	if rc.root.children[4] != firstRoot {
		t.Errorf("old root should be installed as the new root's center child")
	}
}

func TestTokensEqualAndSortedTokens(t *testing.T) {
	root := scene.NewSceneNode()
	c1 := scene.NewStrokeComponent(buildStroke(0, 0, 1, 1))
	c2 := scene.NewStrokeComponent(buildStroke(5, 5, 1, 1))
	root.AddLeaf(c1)
	n2 := root.AddLeaf(c2)
	n1 := root.Children()[0] // c1's leaf, moved under root by the demotion

	leaves := []leafRef{{node: n2}, {node: n1}}
	tokens := sortedTokens(leaves)
	if len(tokens) != 2 || tokens[0] >= tokens[1] {
		t.Errorf("sortedTokens() = %v, want ascending ids", tokens)
	}
	if !tokensEqual(tokens, tokens) {
		t.Errorf("tokensEqual should be reflexive")
	}
	if tokensEqual(tokens, tokens[:1]) {
		t.Errorf("tokensEqual should reject differing lengths")
	}
}

func TestPaintLeaves_BackgroundAlwaysPaintsBelowForeground(t *testing.T) {
	root := scene.NewSceneNode()

	// Give the background leaf a z-index far above the foreground leaf's,
	// so a naive ZIndex()-only sort would paint it on top.
	bgComponent := scene.NewStrokeComponent(buildStroke(0, 0, 1, 1)).WithZIndex(1_000_000).(scene.StrokeComponent)
	fgComponent := scene.NewStrokeComponent(buildStroke(100, 100, 1, 1)).WithZIndex(1).(scene.StrokeComponent)

	root.AddLeaf(bgComponent)
	fgNode := root.AddLeaf(fgComponent)
	bgNode := root.Children()[0] // bgComponent's leaf, moved under root by the demotion

	leaves := []leafRef{
		{node: bgNode, background: true},
		{node: fgNode, background: false},
	}

	target := newFakeRenderer("raster")
	paintLeaves(target, leaves, vecboard.Identity())

	if len(target.order) != 2 {
		t.Fatalf("StartObject calls = %d, want 2", len(target.order))
	}
	if target.order[0] != bgNode.BBox() {
		t.Errorf("first painted bbox = %+v, want the background leaf's bbox %+v (background must paint below foreground regardless of z-index)", target.order[0], bgNode.BBox())
	}
	if target.order[1] != fgNode.BBox() {
		t.Errorf("second painted bbox = %+v, want the foreground leaf's bbox %+v", target.order[1], fgNode.BBox())
	}
}

func TestPaintLeaves_TiesBrokenByZIndexWithinGroup(t *testing.T) {
	root := scene.NewSceneNode()

	low := scene.NewStrokeComponent(buildStroke(0, 0, 1, 1)).WithZIndex(1).(scene.StrokeComponent)
	high := scene.NewStrokeComponent(buildStroke(100, 100, 1, 1)).WithZIndex(2).(scene.StrokeComponent)

	root.AddLeaf(low)
	highNode := root.AddLeaf(high)
	lowNode := root.Children()[0] // low's leaf, moved under root by the demotion

	leaves := []leafRef{
		{node: highNode, background: false},
		{node: lowNode, background: false},
	}

	target := newFakeRenderer("raster")
	paintLeaves(target, leaves, vecboard.Identity())

	if target.order[0] != lowNode.BBox() {
		t.Errorf("first painted bbox = %+v, want the lower z-index leaf's bbox within the same group", target.order[0])
	}
}

func TestIsAppendOnly(t *testing.T) {
	root := scene.NewSceneNode()
	first := scene.NewStrokeComponent(buildStroke(0, 0, 1, 1))
	firstNode := root.AddLeaf(first)
	oldTokens := []uint64{firstNode.Content().ID()}
	oldMaxZ := firstNode.Content().ZIndex()

	second := scene.NewStrokeComponent(buildStroke(5, 5, 1, 1))
	secondNode := root.AddLeaf(second)
	firstNode = root.Children()[0] // first's leaf, moved under root by the demotion

	clipped := []leafRef{{node: firstNode}, {node: secondNode}}
	if !isAppendOnly(oldTokens, oldMaxZ, clipped) {
		t.Errorf("appending a new leaf with higher z-index on top of the unchanged old set should be append-only")
	}

	notExceededZ := secondNode.Content().ZIndex() // recorded max equal to the new leaf's z-index
	if isAppendOnly(oldTokens, notExceededZ, clipped) {
		t.Errorf("a new leaf whose z-index does not exceed oldMaxZ must not be treated as append-only (it could sit beneath an existing leaf)")
	}

	droppedOld := []leafRef{{node: secondNode}}
	if isAppendOnly(oldTokens, oldMaxZ, droppedOld) {
		t.Errorf("losing a previously-cached leaf must not be treated as append-only")
	}
}
