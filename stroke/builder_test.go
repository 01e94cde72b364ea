package stroke

import (
	"math"
	"testing"

	"github.com/vecboard/vecboard"
)

func sampleAt(x, y, width, t float64) Sample {
	return Sample{Pos: vecboard.Pt(x, y), Width: width, Color: vecboard.Black, TimeMS: t}
}

func TestNewBuilder_ClampsMinFit(t *testing.T) {
	b := NewBuilder(sampleAt(0, 0, 2, 0), 10, 100)
	if b.minFit > 1 {
		t.Errorf("minFit = %v, want <= width/2 (1)", b.minFit)
	}
}

func TestBuilder_RejectsDuplicateSample(t *testing.T) {
	first := sampleAt(0, 0, 4, 0)
	b := NewBuilder(first, 0.5, 5)

	if err := b.AddPoint(first); err != nil {
		t.Fatalf("AddPoint duplicate returned error: %v", err)
	}
	if len(b.buffer) != 1 {
		t.Errorf("buffer grew on duplicate sample: len = %d", len(b.buffer))
	}
}

func TestBuilder_RejectsNaNSample(t *testing.T) {
	b := NewBuilder(sampleAt(0, 0, 4, 0), 0.5, 5)
	bad := Sample{Pos: vecboard.Pt(math.NaN(), 1), Width: 4, TimeMS: 1}

	if err := b.AddPoint(bad); err != nil {
		t.Fatalf("AddPoint NaN sample returned error: %v", err)
	}
	if len(b.buffer) != 1 {
		t.Errorf("buffer grew on NaN sample: len = %d", len(b.buffer))
	}
}

func TestBuilder_SnapsNearStart(t *testing.T) {
	b := NewBuilder(sampleAt(0, 0, 12, 0), 0.5, 5)
	// Within min(prevWidth, newWidth)/3 = 4 units of start.
	if err := b.AddPoint(sampleAt(1, 0, 12, 10)); err != nil {
		t.Fatalf("AddPoint returned error: %v", err)
	}
	if b.haveCurve {
		t.Error("snap-to-start sample should not seed a provisional curve")
	}
}

func TestBuilder_GrowsBoundingBox(t *testing.T) {
	b := NewBuilder(sampleAt(0, 0, 2, 0), 0.1, 5)
	_ = b.AddPoint(sampleAt(10, 0, 2, 10))
	_ = b.AddPoint(sampleAt(10, 10, 2, 20))

	if b.bbox.Width() <= 0 || b.bbox.Height() <= 0 {
		t.Errorf("bbox did not grow: %+v", b.bbox)
	}
}

func TestBuilder_BuildEmitsDotForSingleSample(t *testing.T) {
	b := NewBuilder(sampleAt(5, 5, 7, 0), 0.1, 5)
	s := b.Build()

	if len(s.outlines) != 1 {
		t.Fatalf("Build() with a single sample produced %d outlines, want 1", len(s.outlines))
	}
}

func TestBuilder_BuildProducesRibbonForMotion(t *testing.T) {
	b := NewBuilder(sampleAt(0, 0, 4, 0), 0.1, 50)
	for i := 1; i <= 20; i++ {
		_ = b.AddPoint(sampleAt(float64(i)*3, float64(i), 4, float64(i)*10))
	}
	s := b.Build()

	if len(s.outlines) == 0 {
		t.Fatal("Build() produced no outlines for a moving stroke")
	}
	if s.ContentBBox.Width() <= 0 {
		t.Error("ContentBBox has zero width after motion")
	}
}

func TestBuilder_PreviewReflectsWorkInProgress(t *testing.T) {
	b := NewBuilder(sampleAt(0, 0, 4, 0), 0.1, 50)
	_ = b.AddPoint(sampleAt(5, 5, 4, 10))

	preview := b.Preview()
	if len(preview.Path.Elements()) == 0 {
		t.Error("Preview() returned an empty path mid-stroke")
	}
}

func TestRayIntersection_Parallel(t *testing.T) {
	_, ok := rayIntersection(vecboard.Pt(0, 0), vecboard.V2(1, 0), vecboard.Pt(0, 1), vecboard.V2(1, 0), 10)
	if ok {
		t.Error("parallel rays should not intersect")
	}
}

func TestRayIntersection_Basic(t *testing.T) {
	p, ok := rayIntersection(vecboard.Pt(0, 0), vecboard.V2(1, 0), vecboard.Pt(5, -5), vecboard.V2(0, 1), 10)
	if !ok {
		t.Fatal("expected intersection")
	}
	if math.Abs(p.X-5) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("intersection = %+v, want (5, 0)", p)
	}
}
