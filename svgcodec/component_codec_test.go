package svgcodec

import (
	"encoding/json"
	"testing"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/scene"
	"github.com/vecboard/vecboard/stroke"
)

// componentCodec pairs one kind's encodeX/decodeX functions, the same
// shape registered with command.RegisterComponentCodec in this package's
// init(), so these tests exercise the exact functions that registration
// wires up without needing command's package-private registry.
type componentCodec struct {
	encode func(scene.Component) (json.RawMessage, error)
	decode func(json.RawMessage) (scene.Component, error)
}

var testCodecs = map[string]componentCodec{
	"stroke":                {encodeStroke, decodeStroke},
	"text":                  {encodeText, decodeText},
	"image":                 {encodeImage, decodeImage},
	"background":            {encodeBackground, decodeBackground},
	"unknown_svg_object":    {encodeUnknownObject, decodeUnknownObject},
	"svg_global_attributes": {encodeSVGGlobalAttributes, decodeSVGGlobalAttributes},
}

func roundTrip(t *testing.T, kind string, c scene.Component) scene.Component {
	t.Helper()
	codec, ok := testCodecs[kind]
	if !ok {
		t.Fatalf("no test codec wired for kind %q", kind)
	}
	raw, err := codec.encode(c)
	if err != nil {
		t.Fatalf("Encode(%s) error = %v", kind, err)
	}
	decoded, err := codec.decode(raw)
	if err != nil {
		t.Fatalf("Decode(%s) error = %v: %s", kind, err, raw)
	}
	return decoded
}

func TestStrokeComponentCodecRoundTrip(t *testing.T) {
	style := vecboard.DefaultRenderingStyle().WithStroke(vecboard.RGB(1, 0, 0), 2.5)
	loop := []vecboard.Vec2{vecboard.V2(0, 0), vecboard.V2(10, 0), vecboard.V2(10, 10), vecboard.V2(0, 10)}
	bbox := vecboard.NewRect2XYWH(0, 0, 10, 10)
	s := scene.NewStrokeComponent(stroke.FromPolygons([][]vecboard.Vec2{loop}, bbox, style))

	decoded := roundTrip(t, "stroke", s)
	sc, ok := decoded.(scene.StrokeComponent)
	if !ok {
		t.Fatalf("decoded value is %T, want scene.StrokeComponent", decoded)
	}
	gotStyle, ok := sc.StyleOf()
	if !ok {
		t.Fatal("round-tripped stroke lost its style")
	}
	if gotStyle.Stroke == nil || gotStyle.Stroke.Width != 2.5 {
		t.Errorf("round-tripped stroke width = %+v, want 2.5", gotStyle.Stroke)
	}
	if len(sc.Stroke.Polygons()) != 1 || len(sc.Stroke.Polygons()[0]) != 4 {
		t.Errorf("round-tripped polygons = %+v, want one 4-point loop", sc.Stroke.Polygons())
	}
}

func TestTextComponentCodecRoundTrip(t *testing.T) {
	style := vecboard.TextStyle{Size: 18, Family: "serif", RenderingStyle: vecboard.DefaultRenderingStyle()}
	tc := scene.NewTextComponent("outer", vecboard.V2(1, 2), style)
	tc = tc.AddChild(scene.NewTextComponent("inner", vecboard.V2(1, 20), style))

	decoded := roundTrip(t, "text", tc)
	got, ok := decoded.(scene.TextComponent)
	if !ok {
		t.Fatalf("decoded value is %T, want scene.TextComponent", decoded)
	}
	if got.Text != "outer" {
		t.Errorf("Text = %q, want %q", got.Text, "outer")
	}
	if len(got.Children()) != 1 || got.Children()[0].Text != "inner" {
		t.Errorf("nested child not preserved: %+v", got.Children())
	}
	if got.Style.Family != "serif" {
		t.Errorf("Family = %q, want serif", got.Style.Family)
	}
}

func TestImageComponentCodecRoundTrip(t *testing.T) {
	xform := vecboard.Translate(5, 5).Multiply(vecboard.Scale(20, 20))
	ic := scene.NewImageComponent("https://example.com/a.png", nil, xform)

	decoded := roundTrip(t, "image", ic)
	got, ok := decoded.(scene.ImageComponent)
	if !ok {
		t.Fatalf("decoded value is %T, want scene.ImageComponent", decoded)
	}
	if got.Href != ic.Href {
		t.Errorf("Href = %q, want %q", got.Href, ic.Href)
	}
	if got.Xform != ic.Xform {
		t.Errorf("Xform = %+v, want %+v", got.Xform, ic.Xform)
	}
}

func TestBackgroundComponentCodecRoundTrip(t *testing.T) {
	bg := scene.NewGridBackground(vecboard.NewRect2XYWH(0, 0, 100, 100),
		vecboard.RGB(0.2, 0.3, 0.4), vecboard.RGB(0.5, 0.6, 0.7), 16)

	decoded := roundTrip(t, "background", bg)
	got, ok := decoded.(scene.BackgroundComponent)
	if !ok {
		t.Fatalf("decoded value is %T, want scene.BackgroundComponent", decoded)
	}
	if got.Kind != scene.BackgroundGrid {
		t.Errorf("Kind = %v, want BackgroundGrid", got.Kind)
	}
	if got.GridSize != 16 {
		t.Errorf("GridSize = %v, want 16", got.GridSize)
	}
	if got.MainColor.ToHex() != bg.MainColor.ToHex() {
		t.Errorf("MainColor = %s, want %s", got.MainColor.ToHex(), bg.MainColor.ToHex())
	}
}

func TestUnknownSVGObjectCodecRoundTrip(t *testing.T) {
	u := scene.NewUnknownSVGObject("metadata", `<metadata foo="bar"/>`, vecboard.NewRect2XYWH(0, 0, 10, 10))

	decoded := roundTrip(t, "unknown_svg_object", u)
	got, ok := decoded.(scene.UnknownSVGObject)
	if !ok {
		t.Fatalf("decoded value is %T, want scene.UnknownSVGObject", decoded)
	}
	if got.TagName != "metadata" || got.RawXML != u.RawXML {
		t.Errorf("round trip = %+v, want TagName/RawXML preserved", got)
	}
}

func TestSVGGlobalAttributesCodecRoundTrip(t *testing.T) {
	g := scene.NewSVGGlobalAttributesObject(vecboard.NewRect2XYWH(0, 0, 300, 200), map[string]string{"data-foo": "bar"})

	decoded := roundTrip(t, "svg_global_attributes", g)
	got, ok := decoded.(scene.SVGGlobalAttributesObject)
	if !ok {
		t.Fatalf("decoded value is %T, want scene.SVGGlobalAttributesObject", decoded)
	}
	if got.UnknownAttributes["data-foo"] != "bar" {
		t.Errorf("UnknownAttributes = %+v, want data-foo=bar", got.UnknownAttributes)
	}
	if got.ViewBox.Width() != 300 {
		t.Errorf("ViewBox.Width() = %v, want 300", got.ViewBox.Width())
	}
}
