package renderer

import (
	"strings"
	"testing"

	"github.com/vecboard/vecboard"
)

func TestVectorBackendEmitsSVGRoot(t *testing.T) {
	b := NewVectorBackend(200, 100)
	out := string(b.Bytes())

	if !strings.Contains(out, `<svg`) || !strings.Contains(out, `</svg>`) {
		t.Fatalf("output missing svg root element: %s", out)
	}
	if !strings.Contains(out, `width="200"`) || !strings.Contains(out, `height="100"`) {
		t.Errorf("output missing expected dimensions: %s", out)
	}
}

func TestVectorBackendEmitsPathWithinObject(t *testing.T) {
	b := NewVectorBackend(100, 100)
	style := vecboard.DefaultRenderingStyle().WithFill(vecboard.RGB(1, 0, 0))

	b.StartObject(vecboard.NewRect2XYWH(0, 0, 10, 10), false)
	b.DrawPath(rectPath(0, 0, 10, 10), style)
	b.EndObject(nil)

	out := string(b.Bytes())
	if !strings.Contains(out, "<path") {
		t.Fatalf("output missing <path> element: %s", out)
	}
	if !strings.Contains(out, `fill="#ff0000"`) {
		t.Errorf("output missing expected fill attribute: %s", out)
	}
}

func TestVectorBackendCoalescesEqualStyleWithinObject(t *testing.T) {
	b := NewVectorBackend(100, 100)
	style := vecboard.DefaultRenderingStyle()

	b.StartObject(vecboard.NewRect2XYWH(0, 0, 100, 100), false)
	b.DrawPath(rectPath(0, 0, 10, 10), style)
	b.DrawPath(rectPath(20, 20, 10, 10), style)

	if len(b.batch.runs) != 1 {
		t.Fatalf("len(batch.runs) = %d, want 1 before EndObject", len(b.batch.runs))
	}
	b.EndObject(nil)

	out := string(b.Bytes())
	if strings.Count(out, "<path") != 1 {
		t.Errorf("want exactly one <path> element for two coalesced equal-style draws, got: %s", out)
	}
}

func TestVectorBackendClipPath(t *testing.T) {
	b := NewVectorBackend(100, 100)
	b.StartObject(vecboard.NewRect2XYWH(1, 2, 3, 4), true)
	b.EndObject(nil)

	out := string(b.Bytes())
	if !strings.Contains(out, "<clipPath") {
		t.Fatalf("clip=true should emit a <clipPath>: %s", out)
	}
	if !strings.Contains(out, "clip-path=") {
		t.Errorf("clip=true should reference the clipPath from its <g>: %s", out)
	}
}

func TestVectorBackendLoadSaveDataRoundTrip(t *testing.T) {
	b := NewVectorBackend(100, 100)
	b.StartObject(vecboard.NewRect2XYWH(0, 0, 10, 10), false)
	b.EndObject(map[string]any{"data-foo": "bar"})

	out := string(b.Bytes())
	if !strings.Contains(out, `data-foo="bar"`) {
		t.Errorf("loadSaveData was not re-applied to the closing object: %s", out)
	}
}

func TestPathToSVGData(t *testing.T) {
	p := vecboard.NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.Close()

	got := pathToSVGData(p)
	want := "M0,0 L10,0 Z"
	if got != want {
		t.Errorf("pathToSVGData() = %q, want %q", got, want)
	}
}

func TestMatrixAttrRoundTripsThroughCSSMatrix(t *testing.T) {
	m := vecboard.Translate(5, 7).Multiply(vecboard.Scale(2, 3))
	attr := matrixAttr(m)
	if !strings.HasPrefix(attr, "matrix(") {
		t.Fatalf("matrixAttr() = %q, want a matrix(...) value", attr)
	}

	body := strings.TrimSuffix(strings.TrimPrefix(attr, "matrix("), ")")
	parsed, err := vecboard.ParseCSSMatrix("matrix(" + body + ")")
	if err != nil {
		t.Fatalf("ParseCSSMatrix(%q) failed: %v", attr, err)
	}
	if parsed != m {
		t.Errorf("round-tripped matrix = %+v, want %+v", parsed, m)
	}
}
