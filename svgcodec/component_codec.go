package svgcodec

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/command"
	"github.com/vecboard/vecboard/scene"
	"github.com/vecboard/vecboard/stroke"
)

// This file registers the per-kind JSON command.ComponentCodec pair each
// scene.Component variant needs so command.AddElementCommand can serialize
// itself into undo/redo history. This is a separate, simpler path from
// Load/Write's full SVG document text: a compact JSON shape for history
// within one project file, not an SVG-interoperable representation. A
// stroke is stored as its Stroke.Polygons loops, so a Builder stroke's
// curved outline comes back as straight-edged loops, and a decoded stroke
// always carries a style (DefaultRenderingStyle when it had none).

type jsonVec2 struct {
	X, Y float64
}

func toJSONVec2(v vecboard.Vec2) jsonVec2 { return jsonVec2{X: v.X, Y: v.Y} }
func (v jsonVec2) toVec2() vecboard.Vec2  { return vecboard.V2(v.X, v.Y) }

type jsonRect struct {
	X, Y, W, H float64
}

func toJSONRect(r vecboard.Rect2) jsonRect {
	return jsonRect{X: r.X(), Y: r.Y(), W: r.Width(), H: r.Height()}
}

func (r jsonRect) toRect2() vecboard.Rect2 {
	return vecboard.NewRect2XYWH(r.X, r.Y, r.W, r.H)
}

type jsonMatrix struct {
	A, B, C, D, E, F float64
}

func toJSONMatrix(m vecboard.Mat33) jsonMatrix {
	return jsonMatrix{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F}
}

func (m jsonMatrix) toMat33() vecboard.Mat33 {
	return vecboard.Mat33{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F}
}

type jsonStrokeInfo struct {
	Color string
	Width float64
}

type jsonRenderingStyle struct {
	Fill   string
	Stroke *jsonStrokeInfo `json:",omitempty"`
}

func toJSONStyle(s vecboard.RenderingStyle) jsonRenderingStyle {
	out := jsonRenderingStyle{Fill: s.Fill.ToHex()}
	if s.Stroke != nil {
		out.Stroke = &jsonStrokeInfo{Color: s.Stroke.Color.ToHex(), Width: s.Stroke.Width}
	}
	return out
}

func (s jsonRenderingStyle) toStyle() (vecboard.RenderingStyle, error) {
	fill, err := vecboard.ParseColor(s.Fill)
	if err != nil {
		return vecboard.RenderingStyle{}, fmt.Errorf("decoding fill: %w", err)
	}
	style := vecboard.RenderingStyle{Fill: fill}
	if s.Stroke != nil {
		color, err := vecboard.ParseColor(s.Stroke.Color)
		if err != nil {
			return vecboard.RenderingStyle{}, fmt.Errorf("decoding stroke color: %w", err)
		}
		style = style.WithStroke(color, s.Stroke.Width)
	}
	return style, nil
}

// --- stroke ---

type jsonStroke struct {
	Polygons [][]jsonVec2
	BBox     jsonRect
	Style    *jsonRenderingStyle `json:",omitempty"`
}

func encodeStroke(c scene.Component) (json.RawMessage, error) {
	sc, ok := c.(scene.StrokeComponent)
	if !ok {
		return nil, fmt.Errorf("encodeStroke: unexpected type %T", c)
	}
	polys := sc.Stroke.Polygons()
	jsonPolys := make([][]jsonVec2, len(polys))
	for i, loop := range polys {
		pts := make([]jsonVec2, len(loop))
		for j, p := range loop {
			pts[j] = toJSONVec2(p)
		}
		jsonPolys[i] = pts
	}
	data := jsonStroke{Polygons: jsonPolys, BBox: toJSONRect(sc.ContentBBox())}
	if style, ok := sc.Stroke.StyleOf(); ok {
		js := toJSONStyle(style)
		data.Style = &js
	}
	return json.Marshal(data)
}

func decodeStroke(raw json.RawMessage) (scene.Component, error) {
	var data jsonStroke
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	loops := make([][]vecboard.Vec2, len(data.Polygons))
	for i, pts := range data.Polygons {
		loop := make([]vecboard.Vec2, len(pts))
		for j, p := range pts {
			loop[j] = p.toVec2()
		}
		loops[i] = loop
	}
	style := vecboard.DefaultRenderingStyle()
	if data.Style != nil {
		s, err := data.Style.toStyle()
		if err != nil {
			return nil, err
		}
		style = s
	}
	s := stroke.FromPolygons(loops, data.BBox.toRect2(), style)
	return scene.NewStrokeComponent(s), nil
}

// --- text ---

type jsonText struct {
	Text     string
	Origin   jsonVec2
	Xform    jsonMatrix
	Size     float64
	Family   string
	Weight   *int
	Variant  *string
	Style    jsonRenderingStyle
	Children []jsonText `json:",omitempty"`
}

func toJSONText(c scene.TextComponent) jsonText {
	jt := jsonText{
		Text:    c.Text,
		Origin:  toJSONVec2(c.Origin),
		Xform:   toJSONMatrix(c.Xform),
		Size:    c.Style.Size,
		Family:  c.Style.Family,
		Weight:  c.Style.Weight,
		Variant: c.Style.Variant,
		Style:   toJSONStyle(c.Style.RenderingStyle),
	}
	for _, child := range c.Children() {
		jt.Children = append(jt.Children, toJSONText(child))
	}
	return jt
}

func (jt jsonText) toTextComponent() (scene.TextComponent, error) {
	renderingStyle, err := jt.Style.toStyle()
	if err != nil {
		return scene.TextComponent{}, err
	}
	style := vecboard.TextStyle{
		Size:           jt.Size,
		Family:         jt.Family,
		Weight:         jt.Weight,
		Variant:        jt.Variant,
		RenderingStyle: renderingStyle,
	}
	tc := scene.NewTextComponent(jt.Text, jt.Origin.toVec2(), style)
	tc = tc.Transform_(jt.Xform.toMat33())
	for _, jchild := range jt.Children {
		child, err := jchild.toTextComponent()
		if err != nil {
			return scene.TextComponent{}, err
		}
		tc = tc.AddChild(child)
	}
	return tc, nil
}

func encodeText(c scene.Component) (json.RawMessage, error) {
	tc, ok := c.(scene.TextComponent)
	if !ok {
		return nil, fmt.Errorf("encodeText: unexpected type %T", c)
	}
	return json.Marshal(toJSONText(tc))
}

func decodeText(raw json.RawMessage) (scene.Component, error) {
	var jt jsonText
	if err := json.Unmarshal(raw, &jt); err != nil {
		return nil, err
	}
	return jt.toTextComponent()
}

// --- image ---

type jsonImage struct {
	Href  string
	Xform jsonMatrix
}

func encodeImage(c scene.Component) (json.RawMessage, error) {
	ic, ok := c.(scene.ImageComponent)
	if !ok {
		return nil, fmt.Errorf("encodeImage: unexpected type %T", c)
	}
	return json.Marshal(jsonImage{Href: ic.Href, Xform: toJSONMatrix(ic.Xform)})
}

func decodeImage(raw json.RawMessage) (scene.Component, error) {
	var data jsonImage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	var img image.Image
	if decoded, ok := decodeDataURI(data.Href); ok {
		img = decoded
	}
	return scene.NewImageComponent(data.Href, img, data.Xform.toMat33()), nil
}

// --- background ---

type jsonBackground struct {
	Kind           scene.BackgroundKind
	MainColor      string
	SecondaryColor string
	GridSize       float64
	BBox           jsonRect
}

func encodeBackground(c scene.Component) (json.RawMessage, error) {
	bg, ok := c.(scene.BackgroundComponent)
	if !ok {
		return nil, fmt.Errorf("encodeBackground: unexpected type %T", c)
	}
	return json.Marshal(jsonBackground{
		Kind:           bg.Kind,
		MainColor:      bg.MainColor.ToHex(),
		SecondaryColor: bg.SecondaryColor.ToHex(),
		GridSize:       bg.GridSize,
		BBox:           toJSONRect(bg.ContentBBox()),
	})
}

func decodeBackground(raw json.RawMessage) (scene.Component, error) {
	var data jsonBackground
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	mainColor, err := vecboard.ParseColor(data.MainColor)
	if err != nil {
		return nil, fmt.Errorf("decoding main color: %w", err)
	}
	if data.Kind == scene.BackgroundSolid {
		return scene.NewSolidBackground(data.BBox.toRect2(), mainColor), nil
	}
	secondary, err := vecboard.ParseColor(data.SecondaryColor)
	if err != nil {
		return nil, fmt.Errorf("decoding secondary color: %w", err)
	}
	return scene.NewGridBackground(data.BBox.toRect2(), mainColor, secondary, data.GridSize), nil
}

// --- unknown svg object ---

type jsonUnknownObject struct {
	TagName string
	RawXML  string
	BBox    jsonRect
}

func encodeUnknownObject(c scene.Component) (json.RawMessage, error) {
	u, ok := c.(scene.UnknownSVGObject)
	if !ok {
		return nil, fmt.Errorf("encodeUnknownObject: unexpected type %T", c)
	}
	return json.Marshal(jsonUnknownObject{TagName: u.TagName, RawXML: u.RawXML, BBox: toJSONRect(u.ContentBBox())})
}

func decodeUnknownObject(raw json.RawMessage) (scene.Component, error) {
	var data jsonUnknownObject
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return scene.NewUnknownSVGObject(data.TagName, data.RawXML, data.BBox.toRect2()), nil
}

// --- svg global attributes ---

type jsonSVGGlobalAttributes struct {
	ViewBox           jsonRect
	UnknownAttributes map[string]string
}

func encodeSVGGlobalAttributes(c scene.Component) (json.RawMessage, error) {
	g, ok := c.(scene.SVGGlobalAttributesObject)
	if !ok {
		return nil, fmt.Errorf("encodeSVGGlobalAttributes: unexpected type %T", c)
	}
	return json.Marshal(jsonSVGGlobalAttributes{ViewBox: toJSONRect(g.ViewBox), UnknownAttributes: g.UnknownAttributes})
}

func decodeSVGGlobalAttributes(raw json.RawMessage) (scene.Component, error) {
	var data jsonSVGGlobalAttributes
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return scene.NewSVGGlobalAttributesObject(data.ViewBox.toRect2(), data.UnknownAttributes), nil
}

func init() {
	command.RegisterComponentCodec("stroke", command.ComponentCodec{Encode: encodeStroke, Decode: decodeStroke})
	command.RegisterComponentCodec("text", command.ComponentCodec{Encode: encodeText, Decode: decodeText})
	command.RegisterComponentCodec("image", command.ComponentCodec{Encode: encodeImage, Decode: decodeImage})
	command.RegisterComponentCodec("background", command.ComponentCodec{Encode: encodeBackground, Decode: decodeBackground})
	command.RegisterComponentCodec("unknown_svg_object", command.ComponentCodec{Encode: encodeUnknownObject, Decode: decodeUnknownObject})
	command.RegisterComponentCodec("svg_global_attributes", command.ComponentCodec{Encode: encodeSVGGlobalAttributes, Decode: decodeSVGGlobalAttributes})
}
