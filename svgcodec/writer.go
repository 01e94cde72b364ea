package svgcodec

import (
	"io"
	"sort"
	"strconv"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/renderer"
	"github.com/vecboard/vecboard/scene"
)

// styleBlock is the uniform path styling spec.md §6's SVG output carries
// once at the document level, rather than repeating stroke-linecap/
// stroke-linejoin as a presentation attribute on every <path>.
const styleBlock = "path { stroke-linecap: round; stroke-linejoin: round; }"

// WriteOptions configures Write.
type WriteOptions struct {
	// Sanitize, when true, drops attributes the loader couldn't interpret
	// instead of restoring them verbatim onto the re-exported element.
	Sanitize bool
}

// Write serializes img's current content to an SVG document, per spec.md
// §4.7/§6, by streaming every draw call through renderer's vector
// back-end: the same contract the on-screen vector renderer draws
// through, so export doesn't duplicate serialization logic.
func Write(img *scene.EditorImage, w io.Writer, opts WriteOptions) error {
	region := img.ExportRect()
	width, height := int(region.Width()), int(region.Height())
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	offset := vecboard.Translate(-region.X(), -region.Y())
	vb := renderer.NewVectorBackend(width, height)
	vb.SetTransform(offset)
	vb.SetStyleBlock(styleBlock)

	dw := &docWriter{vb: vb, offset: offset, opts: opts}
	dw.writeTree(img.Background())
	dw.writeTree(img.Foreground())

	_, err := w.Write(vb.Bytes())
	return err
}

type docWriter struct {
	vb     *renderer.VectorBackend
	offset vecboard.Mat33
	opts   WriteOptions
}

// writeTree walks every leaf under root in z-index order and streams it
// through the vector backend, matching rendercache's own paintLeaves
// ordering so an exported document stacks elements the same way the
// screen does.
func (w *docWriter) writeTree(root *scene.SceneNode) {
	leaves := collectLeaves(root, nil)
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].ZIndex() < leaves[j].ZIndex()
	})
	for _, c := range leaves {
		w.writeComponent(c)
	}
}

func collectLeaves(n *scene.SceneNode, out []scene.Component) []scene.Component {
	if n == nil || n.IsEmpty() {
		return out
	}
	if n.IsLeaf() {
		return append(out, n.Content())
	}
	for _, child := range n.Children() {
		out = collectLeaves(child, out)
	}
	return out
}

func (w *docWriter) writeComponent(c scene.Component) {
	loadSaveData := c.LoadSaveData()
	if w.opts.Sanitize {
		loadSaveData = nil
	}

	switch v := c.(type) {
	case scene.ImageComponent:
		w.writeImage(v, loadSaveData)
	case scene.TextComponent:
		w.writeText(v, loadSaveData)
	case scene.BackgroundComponent:
		w.writeBackground(v, loadSaveData)
	case scene.UnknownSVGObject:
		w.writeUnknown(v)
	case scene.SVGGlobalAttributesObject:
		// Root-level attributes belong on the outer <svg> element, which
		// the vector backend already wrote in NewVectorBackend; nothing
		// to stream as a child here.
	default:
		w.vb.StartObject(c.ContentBBox(), false)
		style, ok := styleOf(c)
		if !ok {
			style = vecboard.DefaultRenderingStyle()
		}
		w.vb.DrawPath(c.Render(), style)
		w.vb.EndObject(loadSaveData)
	}
}

// styleSource mirrors rendercache's own narrower capability: a Component
// may report a style without supporting the restyle command (a Stroke
// loaded from SVG, via stroke.FromPolygons).
type styleSource interface {
	StyleOf() (vecboard.RenderingStyle, bool)
}

type restyleable interface {
	StyleOf() vecboard.RenderingStyle
}

func styleOf(c scene.Component) (vecboard.RenderingStyle, bool) {
	if r, ok := c.(restyleable); ok {
		return r.StyleOf(), true
	}
	if s, ok := c.(styleSource); ok {
		return s.StyleOf()
	}
	return vecboard.RenderingStyle{}, false
}

// writeImage emits img's pixels directly, the same way rendercache's own
// drawImageComponent composes a pixel-to-canvas transform ahead of the
// leaf's own placement. A nil Image (an href the loader never decoded,
// since fetching it is the host's asynchronous concern) re-emits a bare
// placeholder carrying only the href, so the document still round-trips
// the reference even though no pixels are embedded.
func (w *docWriter) writeImage(c scene.ImageComponent, loadSaveData map[string]any) {
	w.vb.StartObject(c.ContentBBox(), false)
	if c.Image == nil {
		w.vb.EndObject(mergeLoadSaveData(loadSaveData, map[string]any{"href": c.Href}))
		return
	}
	bounds := c.Image.Bounds()
	width, height := float64(bounds.Dx()), float64(bounds.Dy())
	if width > 0 && height > 0 {
		toUnit := vecboard.Scale(1/width, 1/height)
		w.vb.DrawImage(c.Image, w.offset.Multiply(c.Xform).Multiply(toUnit))
	}
	w.vb.EndObject(loadSaveData)
}

// writeText emits one <text> element per node in c's tspan tree: the
// vector backend's DrawText contract only ever produces a flat <text>
// element, so a nested tspan becomes a sibling run inside the same
// wrapping <g> rather than a nested child element. Content and absolute
// placement survive the round trip; the parent/child grouping does not.
func (w *docWriter) writeText(c scene.TextComponent, loadSaveData map[string]any) {
	w.vb.StartObject(c.ContentBBox(), false)
	w.writeTextRun(c)
	w.vb.EndObject(loadSaveData)
}

func (w *docWriter) writeTextRun(c scene.TextComponent) {
	w.vb.DrawText(c.Text, c.Xform, c.Style)
	for _, child := range c.Children() {
		w.writeTextRun(child)
	}
}

// writeBackground emits a solid or grid background as a filled rectangle
// wrapped in a <g>, with the background-identifying class and (for a
// grid) its secondary color/spacing carried through loadSaveData so
// Load's loadBackgroundGroup can read them back.
func (w *docWriter) writeBackground(c scene.BackgroundComponent, loadSaveData map[string]any) {
	extra := map[string]any{"class": backgroundClassPrefix}
	if c.Kind == scene.BackgroundGrid {
		extra["class"] = backgroundClassPrefix + "-grid"
		extra["data-grid-size"] = formatFloat(c.GridSize)
		extra["data-secondary-color"] = c.SecondaryColor.ToHex()
	}

	w.vb.StartObject(c.ContentBBox(), false)
	w.vb.DrawPath(c.Render(), vecboard.DefaultRenderingStyle().WithFill(c.MainColor))
	w.vb.EndObject(mergeLoadSaveData(loadSaveData, extra))
}

// writeUnknown re-emits an unrecognized element's preserved markup
// verbatim, unless Sanitize is set, in which case it is dropped.
func (w *docWriter) writeUnknown(c scene.UnknownSVGObject) {
	if w.opts.Sanitize {
		return
	}
	w.vb.WriteRaw(c.RawXML)
}

func mergeLoadSaveData(a, b map[string]any) map[string]any {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
