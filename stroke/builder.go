package stroke

import (
	"math"

	"github.com/vecboard/vecboard"
)

// momentumLerp is the smoothing factor applied to velocity on every sample:
// the new velocity keeps 0.9 of the previous value and blends in 0.1 of the
// instantaneous delta, damping jitter from a noisy pointer device.
const momentumLerp = 0.9

// finalSegment is one committed provisional curve: the fitted quadratic plus
// the width/color at each endpoint (ribbon construction interpolates
// between them) and the direction the curve was entered on, used by the
// next segment's run-splitting test.
type finalSegment struct {
	curve                vecboard.QuadBez
	startWidth, endWidth float64
	startColor, endColor vecboard.RGBA
	enterDir             vecboard.Vec2
}

// Builder incrementally fits a chain of quadratic Béziers to a stream of
// pointer samples, producing a ribbon outline once finalized. It mirrors
// the teacher's Stroke value-object style for its small settings (builder
// constructed once, mutated in place across AddPoint calls) but the
// per-sample smoothing state machine itself has no teacher analogue.
type Builder struct {
	minFit, maxFit  float64
	curveStartWidth float64

	segStart  Sample
	lastPoint Sample
	buffer    []Sample

	velocity    vecboard.Vec2
	haveCurve   bool
	curve       vecboard.QuadBez
	prevCurve   vecboard.QuadBez
	lastExitVec vecboard.Vec2
	haveExitVec bool

	finalized []finalSegment
	bbox      vecboard.Rect2
	haveBBox  bool
}

// NewBuilder creates a Builder seeded with the first sample of a stroke.
// min_fit is lowered to at most first.Width/2, matching the spec's
// requirement that the curve-fit tolerance never exceed a sample's own
// half-width.
func NewBuilder(first Sample, minFit, maxFit float64) *Builder {
	if w := first.Width / 2; minFit > w {
		minFit = w
	}
	b := &Builder{
		minFit:          minFit,
		maxFit:          maxFit,
		curveStartWidth: first.Width,
		segStart:        first,
		lastPoint:       first,
		buffer:          []Sample{first},
	}
	b.growBBox(first)
	return b
}

func (b *Builder) growBBox(s Sample) {
	r := s.Width / 2
	pt := vecboard.NewRect2XYWH(s.Pos.X-r, s.Pos.Y-r, r*2, r*2)
	if !b.haveBBox {
		b.bbox = pt
		b.haveBBox = true
		return
	}
	b.bbox = b.bbox.Union(pt)
}

// AddPoint feeds a new timed sample into the smoother. It returns nil for
// samples that were accepted (including ones silently rejected as
// duplicate/invalid per step 1, which is not an error condition).
func (b *Builder) AddPoint(s Sample) error {
	// Step 1: reject duplicate position, zero-delta-t, or NaN samples.
	if !s.isValid() {
		return nil
	}
	if s.approxEqual(b.lastPoint) {
		return nil
	}
	if s.TimeMS == b.lastPoint.TimeMS {
		return nil
	}

	// Step 2: snap to the starting point when still on the first segment
	// and within min(prevWidth, newWidth)/3 of start.
	if len(b.buffer) == 1 {
		minW := math.Min(b.lastPoint.Width, s.Width)
		if s.Pos.Distance(b.segStart.Pos) < minW/3 {
			b.lastPoint = s
			b.growBBox(s)
			return nil
		}
	}

	// Step 3: update smoothed velocity.
	dt := s.TimeMS - b.lastPoint.TimeMS
	if dt == 0 {
		dt = 1
	}
	instVelocity := s.Pos.Sub(b.lastPoint.Pos).Mul(1 / dt)
	b.velocity = b.velocity.Mul(momentumLerp).Add(instVelocity.Mul(1 - momentumLerp))

	// Step 4: grow bounding box.
	b.growBBox(s)

	b.buffer = append(b.buffer, s)
	b.lastPoint = s

	// Step 5: seed a provisional curve if none exists yet.
	if !b.haveCurve {
		enter := b.enteringDirection()
		b.curve = vecboard.NewQuadBez(b.segStart.Pos, b.segStart.Pos.Add(enter), s.Pos)
		b.haveCurve = true
	}

	// Step 6/7: refit the provisional curve's control point.
	b.refit(s)

	// Step 8: test fit against the buffered points once the segment has
	// grown past the startup width and has enough samples to judge.
	if len(b.buffer) > 3 {
		chord := b.segStart.Pos.Distance(s.Pos)
		if chord > b.curveStartWidth {
			if !b.testFit() {
				b.rejectAndRestart()
			}
		}
	}

	return nil
}

// enteringDirection estimates the direction the curve enters its start
// point: the previous segment's exit vector if one exists, otherwise a
// chord across the current buffer.
func (b *Builder) enteringDirection() vecboard.Vec2 {
	if b.haveExitVec {
		return b.lastExitVec
	}
	if len(b.buffer) >= 2 {
		chord := b.buffer[len(b.buffer)-1].Pos.Sub(b.buffer[0].Pos)
		if !chord.IsZero() {
			return chord.Normalize()
		}
	}
	return vecboard.Vec2{X: 1, Y: 0}
}

// refit recomputes the provisional curve's control point from the current
// entering direction, the smoothed exiting direction (from velocity), and
// the two endpoints, per step 6.
func (b *Builder) refit(end Sample) {
	b.prevCurve = b.curve

	start := b.segStart.Pos
	chord := start.Distance(end.Pos)
	if chord == 0 {
		chord = 1e-6
	}
	maxLen := 2 * chord

	enter := b.enteringDirection()
	exit := b.velocity
	if exit.IsZero() {
		exit = end.Pos.Sub(start)
	}
	exit = exit.Normalize()

	// Ray 1: from start, direction enter. Ray 2: from end, direction
	// -exit (tangent line continuing backward into the curve).
	ctrl, ok := rayIntersection(start, enter, end.Pos, exit.Neg(), maxLen)
	if !ok {
		ctrl = start.Add(enter.Mul(chord / 3))
	}

	b.curve = vecboard.NewQuadBez(start, ctrl, end.Pos)
	b.lastExitVec = exit
	b.haveExitVec = true
}

// rayIntersection finds the intersection of two rays, each starting at its
// own origin and extending in its own (assumed-normalized) direction, up to
// maxLen. Returns ok=false if the rays are parallel or the intersection
// falls outside [0, maxLen] along either ray, or coincides with an
// endpoint.
func rayIntersection(p1, d1, p2, d2 vecboard.Vec2, maxLen float64) (vecboard.Vec2, bool) {
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-9 {
		return vecboard.Vec2{}, false
	}
	diff := p2.Sub(p1)
	t1 := diff.Cross(d2) / denom
	t2 := diff.Cross(d1) / denom

	if t1 < 0 || t1 > maxLen || t2 < 0 || t2 > maxLen {
		return vecboard.Vec2{}, false
	}
	if t1 < 1e-9 || t2 < 1e-9 {
		return vecboard.Vec2{}, false
	}

	return p1.Add(d1.Mul(t1)), true
}

// testFit checks that every buffered point lies within tolerance of the
// current provisional curve, per step 8.
func (b *Builder) testFit() bool {
	tol := math.Max(math.Min(b.segStart.Width, b.lastPoint.Width)/3, b.minFit)
	for _, s := range b.buffer {
		d := b.curve.ClosestDistance(s.Pos)
		if d > tol || d > b.maxFit {
			return false
		}
	}
	return true
}

// rejectAndRestart finalizes the curve as it stood before the rejected
// sample, rolls back to the last two buffered points, and begins a new
// segment from there.
func (b *Builder) rejectAndRestart() {
	b.curve = b.prevCurve

	finalizing := b.lastPoint
	b.buffer = b.buffer[:len(b.buffer)-1]
	if len(b.buffer) > 0 {
		b.lastPoint = b.buffer[len(b.buffer)-1]
	}

	b.commitSegment(b.lastPoint)

	// Restart the new segment from the last two buffered points.
	restart := b.buffer
	if len(restart) < 2 {
		restart = []Sample{b.lastPoint, finalizing}
	} else {
		restart = restart[len(restart)-2:]
	}

	b.segStart = restart[0]
	b.curveStartWidth = b.segStart.Width
	b.buffer = []Sample{restart[0]}
	b.haveCurve = false
	b.lastPoint = restart[0]

	for _, s := range restart[1:] {
		b.buffer = append(b.buffer, s)
		b.lastPoint = s
		if !b.haveCurve {
			enter := b.enteringDirection()
			b.curve = vecboard.NewQuadBez(b.segStart.Pos, b.segStart.Pos.Add(enter), s.Pos)
			b.haveCurve = true
		}
		b.refit(s)
	}
}

// commitSegment appends the current provisional curve to the finalized
// list together with its enterDir. Runs are not split here: splitRuns
// later starts a new run where that direction disagrees sharply with the
// previous segment's exit direction.
func (b *Builder) commitSegment(end Sample) {
	if !b.haveCurve {
		return
	}
	seg := finalSegment{
		curve:      b.curve,
		startWidth: b.segStart.Width,
		endWidth:   end.Width,
		startColor: b.segStart.Color,
		endColor:   end.Color,
		enterDir:   b.enteringDirection(),
	}
	b.finalized = append(b.finalized, seg)
}

// Preview returns a RenderablePathSpec reflecting the builder's current
// work-in-progress: all finalized segments plus the in-progress curve
// extended to the last received sample.
func (b *Builder) Preview() RenderablePathSpec {
	segs := append([]finalSegment(nil), b.finalized...)
	if b.haveCurve {
		segs = append(segs, finalSegment{
			curve:      b.curve,
			startWidth: b.segStart.Width,
			endWidth:   b.lastPoint.Width,
			startColor: b.segStart.Color,
			endColor:   b.lastPoint.Color,
			enterDir:   b.enteringDirection(),
		})
	}
	return buildRenderableSpec(segs, b.bbox)
}

// Build finalizes the stroke and returns the completed component. If no
// sample beyond the starting one was ever accepted, Build emits a dot
// stroke instead of an (empty) ribbon.
func (b *Builder) Build() Stroke {
	if len(b.buffer) <= 1 && len(b.finalized) == 0 {
		return newDotStroke(b.segStart, b.bbox)
	}
	b.commitSegment(b.lastPoint)

	runs := splitRuns(b.finalized)
	return newStroke(runs, b.bbox)
}
