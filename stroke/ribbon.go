package stroke

import (
	"math"

	"github.com/vecboard/vecboard"
)

// runSplitDot is the enter/exit direction dot-product threshold below which
// two consecutive segments are considered to disagree enough to start a new
// run, per spec: offset ribbons built across a sharp direction reversal
// self-cross instead of forming a clean outline.
const runSplitDot = 0.3

// run is a maximal chain of finalSegments that stitch into one continuous
// ribbon outline.
type run struct {
	segments []finalSegment
}

// splitRuns partitions a chain of finalized segments into runs, breaking
// wherever the entering direction disagrees with the previous segment's
// exit direction, or wherever the offset curves of consecutive segments
// would intersect their counterparts.
func splitRuns(segs []finalSegment) []run {
	if len(segs) == 0 {
		return nil
	}
	var runs []run
	cur := run{segments: []finalSegment{segs[0]}}
	for i := 1; i < len(segs); i++ {
		prev := segs[i-1]
		next := segs[i]
		prevExit := prev.curve.End().Sub(prev.curve.Eval(0.5))
		if prevExit.IsZero() {
			prevExit = prev.curve.End().Sub(prev.curve.Start())
		}
		agreement := prevExit.Normalize().Dot(next.enterDir)

		if agreement < runSplitDot || offsetCurvesCross(prev, next) {
			runs = append(runs, cur)
			cur = run{segments: []finalSegment{next}}
			continue
		}
		cur.segments = append(cur.segments, next)
	}
	runs = append(runs, cur)
	return runs
}

// offsetCurvesCross reports whether the outer offset curves of two
// consecutive segments would intersect, a cheap proxy evaluated by sampling
// both curves' outer rails and checking for a crossing chord.
func offsetCurvesCross(a, b finalSegment) bool {
	outerA := offsetQuad(a.curve, a.startWidth, a.endWidth, 1)
	outerB := offsetQuad(b.curve, b.startWidth, b.endWidth, 1)

	const samples = 6
	for i := 0; i < samples; i++ {
		t0 := float64(i) / samples
		t1 := float64(i+1) / samples
		for j := 0; j < samples; j++ {
			s0 := float64(j) / samples
			s1 := float64(j+1) / samples
			if segmentsIntersect(outerA.Eval(t0), outerA.Eval(t1), outerB.Eval(s0), outerB.Eval(s1)) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 vecboard.Vec2) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func direction(a, b, c vecboard.Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// outlineSegment is one edge of a ribbonOutline's closed boundary, stored as
// a full quadratic curve (the exact offset Bezier computed by offsetQuad)
// rather than a sampled polyline, so Stroke.Render can emit it back out as a
// QuadraticTo. A straight connector (an end cap, a joint between successive
// segments of a rail, or FromPolygons' already-polygonal input) sets
// isCurve false and leaves ctrl unused.
type outlineSegment struct {
	start, ctrl, end vecboard.Vec2
	isCurve          bool
}

// ribbonOutline is the closed boundary (outer rail forward, inner rail
// reversed, joined by end caps) approximating a run's filled stroke shape.
type ribbonOutline struct {
	segments []outlineSegment
}

// curveSampleCount is how densely a retained curve segment is flattened for
// hit-testing (Intersects) and for the point-loop views Polygons/Clone/
// Transform operate on. Render itself never samples; it walks segments
// directly and emits a QuadraticTo per curve.
const curveSampleCount = 8

// points flattens the outline into a closed loop of vertices: the exact
// endpoints for straight connectors, and curveSampleCount samples per
// retained curve. Used wherever a polygon approximation suffices (point-in-
// polygon tests, segment intersection, and the JSON outline round trip),
// never by Render.
func (o ribbonOutline) points() []vecboard.Vec2 {
	if len(o.segments) == 0 {
		return nil
	}
	pts := make([]vecboard.Vec2, 0, len(o.segments)*curveSampleCount)
	pts = append(pts, o.segments[0].start)
	for _, seg := range o.segments {
		if !seg.isCurve {
			pts = append(pts, seg.end)
			continue
		}
		q := vecboard.NewQuadBez(seg.start, seg.ctrl, seg.end)
		for i := 1; i <= curveSampleCount; i++ {
			pts = append(pts, q.Eval(float64(i)/curveSampleCount))
		}
	}
	return pts
}

// buildRibbons expands every run into a closed ribbon outline, offsetting
// each segment's curve by half-width along its normal and stitching
// successive segments with straight connectors.
func buildRibbons(runs []run) []ribbonOutline {
	outlines := make([]ribbonOutline, 0, len(runs))
	for _, r := range runs {
		outlines = append(outlines, buildRibbon(r))
	}
	return outlines
}

func buildRibbon(r run) ribbonOutline {
	outer := make([]outlineSegment, 0, len(r.segments))
	inner := make([]outlineSegment, 0, len(r.segments))

	for _, seg := range r.segments {
		outerCurve := offsetQuad(seg.curve, seg.startWidth, seg.endWidth, 1)
		innerCurve := offsetQuad(seg.curve, seg.startWidth, seg.endWidth, -1)
		// Stitch any gap from the previous segment's rail end with a
		// straight connector.
		if n := len(outer); n > 0 && outer[n-1].end != outerCurve.P0 {
			outer = append(outer, outlineSegment{start: outer[n-1].end, end: outerCurve.P0})
		}
		if n := len(inner); n > 0 && inner[n-1].end != innerCurve.P0 {
			inner = append(inner, outlineSegment{start: inner[n-1].end, end: innerCurve.P0})
		}
		outer = append(outer, outlineSegment{start: outerCurve.P0, ctrl: outerCurve.P1, end: outerCurve.P2, isCurve: true})
		inner = append(inner, outlineSegment{start: innerCurve.P0, ctrl: innerCurve.P1, end: innerCurve.P2, isCurve: true})
	}

	segments := make([]outlineSegment, 0, len(outer)+len(inner)+1)
	segments = append(segments, outer...)
	if len(inner) > 0 {
		// End cap: a straight connector from the outer rail's last point to
		// the inner rail's last point. The start cap back to outer's first
		// point is implicit in Stroke.Render's Close().
		segments = append(segments, outlineSegment{start: outer[len(outer)-1].end, end: inner[len(inner)-1].end})
	}
	for i := len(inner) - 1; i >= 0; i-- {
		// Reverse the inner rail's curve direction; the control point stays
		// the same, only the endpoints swap.
		segments = append(segments, outlineSegment{start: inner[i].end, ctrl: inner[i].ctrl, end: inner[i].start, isCurve: inner[i].isCurve})
	}
	return ribbonOutline{segments: segments}
}

// offsetQuad approximates the offset of a quadratic Bézier by side (+1 for
// outer/left, -1 for inner/right) at half the interpolated width, scaling
// the control point's offset from the curve's normal at its parametric
// projection rather than from the raw control-point normal, per spec.
func offsetQuad(q vecboard.QuadBez, startWidth, endWidth float64, side float64) vecboard.QuadBez {
	n0 := quadNormalAt(q, 0)
	n1 := quadNormalAt(q, 0.5)
	n2 := quadNormalAt(q, 1)

	p0 := q.P0.Add(n0.Mul(side * startWidth / 2))
	midWidth := (startWidth + endWidth) / 2
	p1 := q.P1.Add(n1.Mul(side * midWidth / 2))
	p2 := q.P2.Add(n2.Mul(side * endWidth / 2))

	return vecboard.NewQuadBez(p0, p1, p2)
}

// quadNormalAt returns the unit normal of q at parameter t, falling back to
// straight-down when the tangent degenerates to zero (a zero-length curve).
func quadNormalAt(q vecboard.QuadBez, t float64) vecboard.Vec2 {
	if q.Tangent(t).IsZero() {
		return vecboard.Vec2{X: 0, Y: -1}
	}
	return q.Normal(t)
}

// dotOutline returns a 4-quadrant quadratic approximation of a circle of
// the given radius centered at c. Its control points are snapped to a
// rounding grid so that two dot strokes at visually identical positions
// construct bit-identical curves (and so sample to bit-identical points).
func dotOutline(c vecboard.Vec2, radius float64) ribbonOutline {
	const grid = 1.0 / 64
	snap := func(v float64) float64 { return math.Round(v/grid) * grid }
	snapPt := func(p vecboard.Vec2) vecboard.Vec2 { return vecboard.Pt(snap(p.X), snap(p.Y)) }

	// Magic constant for a 4-arc quadratic circle approximation: the
	// control point sits at distance radius/cos(pi/4) along the diagonal.
	k := radius / math.Cos(math.Pi/4)

	quadrants := [4]vecboard.Vec2{
		{X: radius, Y: 0},
		{X: 0, Y: radius},
		{X: -radius, Y: 0},
		{X: 0, Y: -radius},
	}
	controls := [4]vecboard.Vec2{
		{X: k * math.Cos(math.Pi/4), Y: k * math.Sin(math.Pi/4)},
		{X: -k * math.Cos(math.Pi/4), Y: k * math.Sin(math.Pi/4)},
		{X: -k * math.Cos(math.Pi/4), Y: -k * math.Sin(math.Pi/4)},
		{X: k * math.Cos(math.Pi/4), Y: -k * math.Sin(math.Pi/4)},
	}

	segments := make([]outlineSegment, 0, 4)
	for i := 0; i < 4; i++ {
		segments = append(segments, outlineSegment{
			start:   snapPt(c.Add(quadrants[i])),
			ctrl:    snapPt(c.Add(controls[i])),
			end:     snapPt(c.Add(quadrants[(i+1)%4])),
			isCurve: true,
		})
	}
	return ribbonOutline{segments: segments}
}
