package svgcodec

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strconv"
	"strings"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/internal/cache"
	"github.com/vecboard/vecboard/scene"
	"github.com/vecboard/vecboard/stroke"
)

// ErrSandboxUnavailable is returned by Load when opts.Sandboxed is false:
// spec.md §7's "sandbox integrity" error class requires loading to fail
// immediately, producing no partial document, when the caller cannot
// establish the isolation boundary an SVG loader runs inside.
var ErrSandboxUnavailable = errors.New("svgcodec: no sandbox isolation boundary available")

// defaultFlattenTolerance is how far (in path-local units) a flattened
// curve may stray from a loaded <path>'s true outline: a tenth of a unit,
// fine enough that a shape round-tripped through a save/load cycle doesn't
// visibly coarsen.
const defaultFlattenTolerance = 0.1

// LoadOptions configures Load.
type LoadOptions struct {
	// Sandboxed must be set true by the caller to assert that parsing is
	// happening inside an isolation boundary (a sandboxed DOM host, a
	// worker with no network/filesystem access, or equivalent). Go has no
	// built-in DOM sandbox primitive to check this itself; Load can only
	// require the caller to declare it.
	Sandboxed bool

	// StoreUnknown, when true, preserves an unrecognized element as a
	// scene.UnknownSVGObject instead of silently dropping it.
	StoreUnknown bool
}

// xmlNode is a generic recursive XML tree, decoded in one dec.Decode call
// rather than a hand-rolled Token() loop. InnerXML captures the element's
// raw inner markup verbatim, for unknown elements the writer must restore
// byte-for-byte.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Chardata string     `xml:",chardata"`
	InnerXML string     `xml:",innerxml"`
	Children []xmlNode  `xml:",any"`
}

func (n xmlNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n xmlNode) attrOr(name, def string) string {
	if v, ok := n.attr(name); ok {
		return v
	}
	return def
}

// rawXML reconstructs n's own start tag plus its already-captured
// InnerXML, for an element the loader doesn't understand. Not a byte-exact
// copy of the original source (attribute order and self-closing form can
// differ) but round-trips the element's name, attributes, and content.
func (n xmlNode) rawXML() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.XMLName.Local)
	for _, a := range n.Attrs {
		fmt.Fprintf(&b, ` %s=%q`, a.Name.Local, a.Value)
	}
	if strings.TrimSpace(n.InnerXML) == "" {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteByte('>')
	b.WriteString(n.InnerXML)
	b.WriteString("</")
	b.WriteString(n.XMLName.Local)
	b.WriteByte('>')
	return b.String()
}

// Load parses an SVG document into a fresh EditorImage, per spec.md §4.7.
// The caller MUST set opts.Sandboxed to confirm the document is being
// parsed inside an isolation boundary; Load refuses immediately otherwise,
// producing no partial document (spec.md §7's sandbox-integrity class).
func Load(r io.Reader, opts LoadOptions) (*scene.EditorImage, error) {
	if !opts.Sandboxed {
		return nil, ErrSandboxUnavailable
	}

	var root xmlNode
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("svgcodec: %w", err)
	}
	if root.XMLName.Local != "svg" {
		return nil, fmt.Errorf("svgcodec: root element is %q, want <svg>", root.XMLName.Local)
	}

	l := &loader{
		opts:       opts,
		imageCache: cache.New[string, image.Image](0),
	}
	return l.loadDocument(root)
}

type loader struct {
	opts       LoadOptions
	imageCache *cache.Cache[string, image.Image]
}

func (l *loader) loadDocument(root xmlNode) (*scene.EditorImage, error) {
	viewBox := parseViewBox(root)
	img := scene.NewEditorImage(viewBox)

	unknownRootAttrs := map[string]string{}
	for _, a := range root.Attrs {
		switch a.Name.Local {
		case "viewBox", "width", "height", "xmlns":
		default:
			unknownRootAttrs[a.Name.Local] = a.Value
		}
	}
	if len(unknownRootAttrs) > 0 {
		img.AddComponent(scene.NewSVGGlobalAttributesObject(viewBox, unknownRootAttrs), true)
	}

	for _, child := range root.Children {
		comp, toBackground, err := l.loadElement(child, viewBox)
		if err != nil {
			vecboard.Logger().Warn("svgcodec: dropping element", "tag", child.XMLName.Local, "error", err)
			continue
		}
		if comp != nil {
			img.AddComponent(comp, toBackground)
		}
	}
	return img, nil
}

func parseViewBox(root xmlNode) vecboard.Rect2 {
	if vb, ok := root.attr("viewBox"); ok {
		fields := strings.Fields(vb)
		if len(fields) == 4 {
			x, _ := strconv.ParseFloat(fields[0], 64)
			y, _ := strconv.ParseFloat(fields[1], 64)
			w, _ := strconv.ParseFloat(fields[2], 64)
			h, _ := strconv.ParseFloat(fields[3], 64)
			return vecboard.NewRect2XYWH(x, y, w, h)
		}
	}
	w, _ := strconv.ParseFloat(root.attrOr("width", "0"), 64)
	h, _ := strconv.ParseFloat(root.attrOr("height", "0"), 64)
	return vecboard.NewRect2XYWH(0, 0, w, h)
}

// backgroundClassPrefix matches the host's own convention for marking a
// background element (a <g> or background-only <path>) as the document's
// backdrop rather than ordinary content.
const backgroundClassPrefix = "js-draw-image-background"

func isBackgroundClass(class string) bool {
	for _, c := range strings.Fields(class) {
		if strings.HasPrefix(c, backgroundClassPrefix) {
			return true
		}
	}
	return false
}

// loadElement maps one child of <svg> to a Component, reporting whether it
// belongs in the background tree. A nil Component with a nil error means
// the element was intentionally skipped (an unrecognized tag with
// StoreUnknown off).
func (l *loader) loadElement(n xmlNode, region vecboard.Rect2) (scene.Component, bool, error) {
	switch n.XMLName.Local {
	case "g":
		class, _ := n.attr("class")
		if isBackgroundClass(class) {
			return l.loadBackgroundGroup(n, region)
		}
		return nil, false, fmt.Errorf("unsupported <g> element (not a background group)")
	case "path":
		class, _ := n.attr("class")
		if isBackgroundClass(class) {
			return l.loadBackgroundPath(n, region)
		}
		return l.loadPath(n)
	case "text":
		comp, err := l.loadText(n)
		if err != nil {
			return nil, false, err
		}
		return comp, false, nil
	case "image":
		return l.loadImage(n)
	default:
		if l.opts.StoreUnknown {
			return scene.NewUnknownSVGObject(n.XMLName.Local, n.rawXML(), region), false, nil
		}
		return nil, false, nil
	}
}

// splitPathData splits d into one chunk per M/m command, the boundary
// spec.md §4.7 fuses a Stroke's outlines at: ParsePathData itself keeps
// appending subpaths into a single *Path rather than starting a new one at
// each moveto, so per-loop isolation is the caller's job.
func splitPathData(d string) []string {
	var chunks []string
	start := -1
	for i, r := range d {
		if r == 'M' || r == 'm' {
			if start >= 0 {
				chunks = append(chunks, d[start:i])
			}
			start = i
		}
	}
	if start >= 0 {
		chunks = append(chunks, d[start:])
	}
	return chunks
}

func (l *loader) loadPath(n xmlNode) (scene.Component, bool, error) {
	d, ok := n.attr("d")
	if !ok {
		return nil, false, fmt.Errorf("<path> missing d attribute")
	}

	var loops [][]vecboard.Vec2
	var bbox vecboard.Rect2
	haveBBox := false
	for _, chunk := range splitPathData(d) {
		p, err := vecboard.ParsePathData(chunk)
		if err != nil {
			return nil, false, fmt.Errorf("parsing path data: %w", err)
		}
		loop := p.Flatten(defaultFlattenTolerance)
		if len(loop) < 2 {
			continue
		}
		loops = append(loops, loop)
		cbbox := p.BoundingBox()
		if !haveBBox {
			bbox, haveBBox = cbbox, true
		} else {
			bbox = bbox.Union(cbbox)
		}
	}
	if len(loops) == 0 {
		return nil, false, fmt.Errorf("<path> has no usable subpaths")
	}

	style := parseStyle(n)
	s := stroke.FromPolygons(loops, bbox, style)
	if data := unknownAttrs(n, "d", "fill", "stroke", "stroke-width", "transform", "class"); len(data) > 0 {
		s.LoadSaveData = data
	}
	comp := scene.NewStrokeComponent(s)

	if xform, ok := parseTransform(n); ok {
		return comp.Transform(xform), false, nil
	}
	return comp, false, nil
}

// unknownAttrs collects n's attributes other than known, as the generic
// side channel re-applied by the writer (via EndObject's loadSaveData
// parameter, or WithLoadSaveData) onto re-exported markup.
func unknownAttrs(n xmlNode, known ...string) map[string]any {
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}
	var out map[string]any
	for _, a := range n.Attrs {
		if knownSet[a.Name.Local] {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[a.Name.Local] = a.Value
	}
	return out
}

// parseStyle reads fill/stroke/stroke-width presentation attributes, per
// spec.md §4.7's "fill defaults to transparent; stroke to absent".
func parseStyle(n xmlNode) vecboard.RenderingStyle {
	style := vecboard.RenderingStyle{Fill: vecboard.Transparent}
	if fill, ok := n.attr("fill"); ok && fill != "none" && fill != "" {
		if c, err := vecboard.ParseColor(fill); err == nil {
			style.Fill = c
		}
	}
	if strokeAttr, ok := n.attr("stroke"); ok && strokeAttr != "none" && strokeAttr != "" {
		width := 1.0
		if w, ok := n.attr("stroke-width"); ok {
			if v, err := strconv.ParseFloat(w, 64); err == nil {
				width = v
			}
		}
		if c, err := vecboard.ParseColor(strokeAttr); err == nil {
			style = style.WithStroke(c, width)
		}
	}
	return style
}

func parseTransform(n xmlNode) (vecboard.Mat33, bool) {
	t, ok := n.attr("transform")
	if !ok {
		return vecboard.Identity(), false
	}
	m, err := vecboard.ParseCSSMatrix(t)
	if err != nil {
		return vecboard.Identity(), false
	}
	return m, true
}

func (l *loader) loadBackgroundGroup(n xmlNode, region vecboard.Rect2) (scene.Component, bool, error) {
	var pathNode *xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == "path" {
			pathNode = &n.Children[i]
			break
		}
	}

	mainColor := vecboard.RGB(0, 0, 0)
	bbox := region
	if pathNode != nil {
		if fill, ok := pathNode.attr("fill"); ok {
			if c, err := vecboard.ParseColor(fill); err == nil {
				mainColor = c
			}
		}
		if d, ok := pathNode.attr("d"); ok {
			if p, err := vecboard.ParsePathData(d); err == nil {
				bbox = p.BoundingBox()
			}
		}
	}

	class, _ := n.attr("class")
	if !strings.Contains(class, "grid") {
		return scene.NewSolidBackground(bbox, mainColor), true, nil
	}

	secondary := vecboard.RGB(1, 1, 1)
	if hex, ok := n.attr("data-secondary-color"); ok {
		if c, err := vecboard.ParseColor(hex); err == nil {
			secondary = c
		}
	}
	gridSize := 32.0
	if gs, ok := n.attr("data-grid-size"); ok {
		if v, err := strconv.ParseFloat(gs, 64); err == nil {
			gridSize = v
		}
	}
	return scene.NewGridBackground(bbox, mainColor, secondary, gridSize), true, nil
}

func (l *loader) loadBackgroundPath(n xmlNode, region vecboard.Rect2) (scene.Component, bool, error) {
	d, ok := n.attr("d")
	if !ok {
		return nil, false, fmt.Errorf("background <path> missing d attribute")
	}
	p, err := vecboard.ParsePathData(d)
	if err != nil {
		return nil, false, fmt.Errorf("parsing background path: %w", err)
	}
	mainColor := vecboard.RGB(0, 0, 0)
	if fill, ok := n.attr("fill"); ok {
		if c, err := vecboard.ParseColor(fill); err == nil {
			mainColor = c
		}
	}
	return scene.NewSolidBackground(p.BoundingBox(), mainColor), true, nil
}

func (l *loader) loadText(n xmlNode) (scene.TextComponent, error) {
	x, _ := strconv.ParseFloat(n.attrOr("x", "0"), 64)
	y, _ := strconv.ParseFloat(n.attrOr("y", "0"), 64)
	size := 16.0
	if sz, ok := n.attr("font-size"); ok {
		if v, err := strconv.ParseFloat(sz, 64); err == nil {
			size = v
		}
	}

	style := vecboard.TextStyle{Size: size, RenderingStyle: parseStyle(n)}
	if fam, ok := n.attr("font-family"); ok {
		style.Family = fam
	}
	if w, ok := n.attr("font-weight"); ok {
		if v, err := strconv.Atoi(w); err == nil {
			style = style.WithWeight(v)
		}
	}
	if fs, ok := n.attr("font-style"); ok {
		style = style.WithVariant(fs)
	}

	tc := scene.NewTextComponent(strings.TrimSpace(n.Chardata), vecboard.V2(x, y), style)
	if xform, ok := parseTransform(n); ok {
		tc = tc.Transform_(xform)
	}
	if data := unknownAttrs(n, "x", "y", "font-size", "font-family", "font-weight", "font-style",
		"fill", "stroke", "stroke-width", "transform"); len(data) > 0 {
		tc = tc.WithLoadSaveData(data)
	}

	for _, child := range n.Children {
		if child.XMLName.Local != "tspan" {
			continue
		}
		childComp, err := l.loadText(child)
		if err != nil {
			vecboard.Logger().Warn("svgcodec: dropping tspan", "error", err)
			continue
		}
		tc = tc.AddChild(childComp)
	}
	return tc, nil
}

func (l *loader) loadImage(n xmlNode) (scene.Component, bool, error) {
	href, ok := n.attr("href")
	if !ok {
		href, ok = n.attr("xlink:href")
	}
	if !ok {
		return nil, false, fmt.Errorf("<image> missing href")
	}

	w, _ := strconv.ParseFloat(n.attrOr("width", "0"), 64)
	h, _ := strconv.ParseFloat(n.attrOr("height", "0"), 64)
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	xform := vecboard.Scale(w, h)
	if t, ok := parseTransform(n); ok {
		xform = t.Multiply(xform)
	}

	img := l.imageCache.GetOrCreate(href, func() image.Image {
		decoded, _ := decodeDataURI(href)
		return decoded
	})

	comp := scene.NewImageComponent(href, img, xform)
	if data := unknownAttrs(n, "href", "xlink:href", "width", "height", "transform"); len(data) > 0 {
		comp = comp.WithLoadSaveData(data)
	}
	return comp, false, nil
}

// decodeDataURI decodes an embedded "data:image/...;base64,..." href.
// Non-data hrefs (a relative or absolute URL) return (nil, false): fetching
// and decoding those is the host's asynchronous collaborator concern per
// spec.md §5, not something the loader blocks on.
func decodeDataURI(href string) (image.Image, bool) {
	const prefix = "data:"
	if !strings.HasPrefix(href, prefix) {
		return nil, false
	}
	comma := strings.IndexByte(href, ',')
	if comma < 0 {
		return nil, false
	}
	meta := href[len(prefix):comma]
	if !strings.Contains(meta, ";base64") {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(href[comma+1:])
	if err != nil {
		return nil, false
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	return img, true
}
