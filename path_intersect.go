package vecboard

import "math"

// IntersectionPoint is one intersection between a queried Line and a path's
// geometry. T is the parameter along the path's own segment (in [0,1]); it
// is NaN when the intersection was found via stroke-radius raymarching,
// since only the point (not a parameter) is guaranteed there.
type IntersectionPoint struct {
	Point        Vec2
	T            float64
	SegmentIndex int
}

// geomKind tags a materialized geometry segment with which curve type it
// holds, mirroring spec.md §4.1's "lazily computed geometry list materializes
// each command as either a LineSegment2 or a Bezier".
type geomKind int

const (
	geomLine geomKind = iota
	geomQuad
	geomCubic
)

type geomSegment struct {
	kind  geomKind
	line  Line
	quad  QuadBez
	cubic CubicBez
	bbox  Rect2
	index int
}

// geometrySegments materializes p's elements into line/quad/cubic geometry
// segments, folding Close into a closing LineSegment2 back to the subpath
// start, per spec.md §3's Path invariant.
func (p *Path) geometrySegments() []geomSegment {
	var segs []geomSegment
	var current, start Vec2
	idx := 0

	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			current, start = e.Vec2, e.Vec2
		case LineTo:
			l := NewLine(current, e.Vec2)
			segs = append(segs, geomSegment{kind: geomLine, line: l, bbox: l.BoundingBox(), index: idx})
			current = e.Vec2
			idx++
		case QuadTo:
			q := NewQuadBez(current, e.Control, e.Vec2)
			segs = append(segs, geomSegment{kind: geomQuad, quad: q, bbox: q.BoundingBox(), index: idx})
			current = e.Vec2
			idx++
		case CubicTo:
			c := NewCubicBez(current, e.Control1, e.Control2, e.Vec2)
			segs = append(segs, geomSegment{kind: geomCubic, cubic: c, bbox: c.BoundingBox(), index: idx})
			current = e.Vec2
			idx++
		case Close:
			if current != start {
				l := NewLine(current, start)
				segs = append(segs, geomSegment{kind: geomLine, line: l, bbox: l.BoundingBox(), index: idx})
			}
			current = start
			idx++
		}
	}
	return segs
}

// Intersection finds where segment crosses p, per spec.md §4.1.
//
// With strokeRadius == 0, each geometry segment is filtered by AABB, then
// solved in closed form (line/line) or via the curve's parametric
// substitution into segment's implicit line equation (line/quad, line/cubic),
// keeping only roots in [0,1] whose resulting point also lies on segment
// itself.
//
// With strokeRadius > 0, intersections are instead found by raymarching
// along segment toward the iso-surface stroke_radius away from p's
// centerline: starting from segment's endpoints and every centerline
// intersection point found above, step by the signed distance to that
// surface (up to 6 iterations), accepting a step when the residual distance
// falls under strokeRadius/10. T is NaN for every point found this way.
func (p *Path) Intersection(segment Line, strokeRadius float64) []IntersectionPoint {
	segs := p.geometrySegments()
	segBBox := segment.BoundingBox()

	var centerHits []IntersectionPoint
	for _, g := range segs {
		if !g.bbox.Intersects(segBBox) {
			continue
		}
		switch g.kind {
		case geomLine:
			if pt, t, ok := lineLineIntersection(segment, g.line); ok {
				centerHits = append(centerHits, IntersectionPoint{Point: pt, T: t, SegmentIndex: g.index})
			}
		case geomQuad:
			for _, t := range lineQuadIntersections(segment, g.quad) {
				centerHits = append(centerHits, IntersectionPoint{Point: g.quad.Eval(t), T: t, SegmentIndex: g.index})
			}
		case geomCubic:
			for _, t := range lineCubicIntersections(segment, g.cubic) {
				centerHits = append(centerHits, IntersectionPoint{Point: g.cubic.Eval(t), T: t, SegmentIndex: g.index})
			}
		}
	}

	if strokeRadius <= 0 {
		return centerHits
	}

	sdf := func(pt Vec2) float64 {
		best := math.MaxFloat64
		for _, g := range segs {
			d := closestDistanceToSegment(g, pt)
			if d < best {
				best = d
			}
		}
		return best - strokeRadius
	}

	seeds := []Vec2{segment.Start(), segment.End()}
	for _, h := range centerHits {
		seeds = append(seeds, h.Point)
	}

	dir := segment.End().Sub(segment.Start())
	length := dir.Length()
	if length == 0 {
		return centerHits
	}
	dir = dir.Div(length)

	tol := strokeRadius / 10
	var out []IntersectionPoint
	for _, seed := range seeds {
		pt := seed
		for i := 0; i < 6; i++ {
			d := sdf(pt)
			if math.Abs(d) < tol {
				out = append(out, IntersectionPoint{Point: pt, T: math.NaN(), SegmentIndex: -1})
				break
			}
			pt = pt.Add(dir.Mul(d))
		}
	}
	return out
}

func closestDistanceToSegment(g geomSegment, pt Vec2) float64 {
	switch g.kind {
	case geomLine:
		return distanceToLine(g.line, pt)
	case geomQuad:
		return g.quad.ClosestDistance(pt)
	default:
		return closestDistanceToCubicBez(g.cubic, pt)
	}
}

func distanceToLine(l Line, pt Vec2) float64 {
	v := l.End().Sub(l.Start())
	lenSq := v.LengthSquared()
	if lenSq == 0 {
		return pt.Distance(l.Start())
	}
	t := pt.Sub(l.Start()).Dot(v) / lenSq
	t = math.Max(0, math.Min(1, t))
	return pt.Distance(l.Eval(t))
}

func closestDistanceToCubicBez(c CubicBez, pt Vec2) float64 {
	const samples = 32
	best := math.MaxFloat64
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		if d := c.Eval(t).Distance(pt); d < best {
			best = d
		}
	}
	return best
}

// lineLineIntersection solves for the intersection of two finite segments in
// closed form, returning the point and the parameter along a.
func lineLineIntersection(a, b Line) (Vec2, float64, bool) {
	d1 := a.End().Sub(a.Start())
	d2 := b.End().Sub(b.Start())
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-12 {
		return Vec2{}, 0, false
	}
	diff := b.Start().Sub(a.Start())
	t := diff.Cross(d2) / denom
	u := diff.Cross(d1) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec2{}, 0, false
	}
	return a.Eval(t), t, true
}

// lineImplicit returns (nx, ny, c) such that nx*x + ny*y = c for every point
// on line l, used to substitute a curve's parametric form and obtain a
// polynomial in t for where the curve crosses l.
func lineImplicit(l Line) (nx, ny, c float64) {
	d := l.End().Sub(l.Start())
	nx, ny = -d.Y, d.X
	c = nx*l.Start().X + ny*l.Start().Y
	return
}

// pointOnSegment reports whether pt (assumed to already lie on segment's
// infinite line) falls within its finite extent.
func pointOnSegment(segment Line, pt Vec2) bool {
	d := segment.End().Sub(segment.Start())
	lenSq := d.LengthSquared()
	if lenSq == 0 {
		return pt.Approx(segment.Start(), 1e-9)
	}
	t := pt.Sub(segment.Start()).Dot(d) / lenSq
	return t >= -1e-9 && t <= 1+1e-9
}

// lineQuadIntersections substitutes q's parametric form into segment's
// implicit line equation, producing a quadratic in t, then keeps roots in
// [0,1] whose point also lies on segment's finite extent.
func lineQuadIntersections(segment Line, q QuadBez) []float64 {
	nx, ny, c := lineImplicit(segment)

	// B(t) = P0 + 2t(P1-P0) + t^2(P0 - 2P1 + P2); solve nx*Bx+ny*By = c.
	p0, p1, p2 := q.P0, q.P1, q.P2
	a2x, a2y := p0.X-2*p1.X+p2.X, p0.Y-2*p1.Y+p2.Y
	a1x, a1y := 2 * (p1.X - p0.X), 2 * (p1.Y - p0.Y)
	a0x, a0y := p0.X, p0.Y

	a := nx*a2x + ny*a2y
	b := nx*a1x + ny*a1y
	cc := nx*a0x + ny*a0y - c

	roots := SolveQuadraticInUnitInterval(a, b, cc)
	var out []float64
	for _, t := range roots {
		if pointOnSegment(segment, q.Eval(t)) {
			out = append(out, t)
		}
	}
	return out
}

// lineCubicIntersections is lineQuadIntersections' cubic analogue.
func lineCubicIntersections(segment Line, cb CubicBez) []float64 {
	nx, ny, c := lineImplicit(segment)

	p0, p1, p2, p3 := cb.P0, cb.P1, cb.P2, cb.P3
	// B(t) = (1-t)^3 P0 + 3(1-t)^2 t P1 + 3(1-t) t^2 P2 + t^3 P3, expanded in
	// the standard power basis.
	a3x := -p0.X + 3*p1.X - 3*p2.X + p3.X
	a3y := -p0.Y + 3*p1.Y - 3*p2.Y + p3.Y
	a2x := 3*p0.X - 6*p1.X + 3*p2.X
	a2y := 3*p0.Y - 6*p1.Y + 3*p2.Y
	a1x := -3*p0.X + 3*p1.X
	a1y := -3*p0.Y + 3*p1.Y
	a0x, a0y := p0.X, p0.Y

	a := nx*a3x + ny*a3y
	b := nx*a2x + ny*a2y
	cc := nx*a1x + ny*a1y
	d := nx*a0x + ny*a0y - c

	roots := SolveCubicInUnitInterval(a, b, cc, d)
	var out []float64
	for _, t := range roots {
		if pointOnSegment(segment, cb.Eval(t)) {
			out = append(out, t)
		}
	}
	return out
}

// scaleRectFromCenter grows r by factor around its own center, used to
// build the "4x grown" visible rect that VisualEquivalent tests segment
// AABBs against.
func scaleRectFromCenter(r Rect2, factor float64) Rect2 {
	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2
	hw := (r.Max.X - r.Min.X) / 2 * factor
	hh := (r.Max.Y - r.Min.Y) / 2 * factor
	return Rect2{Min: Vec2{X: cx - hw, Y: cy - hh}, Max: Vec2{X: cx + hw, Y: cy + hh}}
}

// VisualEquivalent returns a path that renders identically to p within
// visibleRect for a shape of the given strokeWidth, per spec.md §4.1:
// segments whose AABB (expanded by strokeWidth) do not intersect
// visibleRect expanded 4x are replaced by a MoveTo (when the caller only
// strokes, never fills, this shape) or a LineTo (otherwise, to preserve the
// filled area), keeping both endpoints exactly where they were.
func (p *Path) VisualEquivalent(visibleRect Rect2, strokeWidth float64, strokeOnly bool) *Path {
	grown := scaleRectFromCenter(visibleRect, 4)

	result := NewPath()
	var current Vec2

	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			result.MoveTo(e.Vec2.X, e.Vec2.Y)
			current = e.Vec2
		case LineTo:
			bbox := NewLine(current, e.Vec2).BoundingBox().Expanded(strokeWidth)
			if bbox.Intersects(grown) {
				result.LineTo(e.Vec2.X, e.Vec2.Y)
			} else if strokeOnly {
				result.MoveTo(e.Vec2.X, e.Vec2.Y)
			} else {
				result.LineTo(e.Vec2.X, e.Vec2.Y)
			}
			current = e.Vec2
		case QuadTo:
			bbox := NewQuadBez(current, e.Control, e.Vec2).BoundingBox().Expanded(strokeWidth)
			if bbox.Intersects(grown) {
				result.QuadraticTo(e.Control.X, e.Control.Y, e.Vec2.X, e.Vec2.Y)
			} else if strokeOnly {
				result.MoveTo(e.Vec2.X, e.Vec2.Y)
			} else {
				result.LineTo(e.Vec2.X, e.Vec2.Y)
			}
			current = e.Vec2
		case CubicTo:
			bbox := NewCubicBez(current, e.Control1, e.Control2, e.Vec2).BoundingBox().Expanded(strokeWidth)
			if bbox.Intersects(grown) {
				result.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Vec2.X, e.Vec2.Y)
			} else if strokeOnly {
				result.MoveTo(e.Vec2.X, e.Vec2.Y)
			} else {
				result.LineTo(e.Vec2.X, e.Vec2.Y)
			}
			current = e.Vec2
		case Close:
			result.Close()
		}
	}
	return result
}
