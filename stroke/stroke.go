package stroke

import (
	"fmt"

	"github.com/vecboard/vecboard"
)

// Stroke is a finished stroke component: one or more ribbon outlines built
// from a pointer-sample stream. It carries the four fields spec.md
// requires of every Component (ID, ZIndex, ContentBBox, LoadSaveData) and
// implements the Component capability set (Render/Intersects/Transform/
// Clone/Serialize/Describe) structurally, so scene.Component can embed it
// without stroke importing scene.
type Stroke struct {
	ID           uint64
	ZIndex       uint64
	ContentBBox  vecboard.Rect2
	LoadSaveData map[string]any

	// Style is the uniform fill/stroke a loaded (not pointer-drawn) Stroke
	// renders with. A pointer-smoothed stroke built through Builder leaves
	// this at its zero value and is painted with vecboard.
	// DefaultRenderingStyle by the rendering cache instead, since its
	// per-sample Color varies along the ribbon rather than being one flat
	// style (see scene.RestyleableComponent's doc comment).
	Style    vecboard.RenderingStyle
	hasStyle bool

	outlines []ribbonOutline
}

// newStroke builds a Stroke from the runs produced by splitRuns.
func newStroke(runs []run, bbox vecboard.Rect2) Stroke {
	return Stroke{
		ContentBBox: bbox,
		outlines:    buildRibbons(runs),
	}
}

// newDotStroke builds a Stroke representing a single tap: a small circular
// dot of radius ~= width/3.5 centered at the starting sample.
func newDotStroke(start Sample, bbox vecboard.Rect2) Stroke {
	radius := start.Width / 3.5
	return Stroke{
		ContentBBox: bbox,
		outlines:    []ribbonOutline{dotOutline(start.Pos, radius)},
	}
}

// FromPolygons builds a static Stroke directly from already-finished closed
// polygon loops, bypassing Builder's pointer-sample curve fitting. Used by
// the SVG codec when loading a `<path>` element: its `d` attribute already
// describes finished geometry split at each M/m, rather than a live pointer
// stream, and carries one fill/stroke pair for the whole element rather
// than a per-sample color.
func FromPolygons(loops [][]vecboard.Vec2, bbox vecboard.Rect2, style vecboard.RenderingStyle) Stroke {
	outlines := make([]ribbonOutline, 0, len(loops))
	for _, loop := range loops {
		if len(loop) < 2 {
			continue
		}
		segments := make([]outlineSegment, 0, len(loop)-1)
		for i := 0; i < len(loop)-1; i++ {
			segments = append(segments, outlineSegment{start: loop[i], end: loop[i+1]})
		}
		outlines = append(outlines, ribbonOutline{segments: segments})
	}
	return Stroke{ContentBBox: bbox, outlines: outlines, Style: style, hasStyle: true}
}

// StyleOf returns the Stroke's uniform style and whether it has one: true
// for a Stroke built by FromPolygons, false for one built by Builder.
func (s Stroke) StyleOf() (vecboard.RenderingStyle, bool) {
	return s.Style, s.hasStyle
}

// Polygons returns a copy of the stroke's ribbon outlines as closed point
// loops. For a Stroke built by FromPolygons these are exactly its input
// loops; each curved segment of a Builder stroke is sampled
// curveSampleCount times, so those loops approximate the curves. Used by
// svgcodec's JSON component codec, so undo/redo history stores the
// outline geometry rather than re-deriving it from pointer samples.
func (s Stroke) Polygons() [][]vecboard.Vec2 {
	loops := make([][]vecboard.Vec2, len(s.outlines))
	for i, o := range s.outlines {
		loops[i] = o.points()
	}
	return loops
}

// Render converts the stroke's ribbon outlines into a fillable Path, one
// closed subpath per outline. Each retained curve segment is emitted as a
// QuadraticTo rather than flattened, so the path's d-string carries the
// ribbon's actual piecewise-quadratic geometry.
func (s Stroke) Render() *vecboard.Path {
	return renderOutlines(s.outlines)
}

// renderOutlines converts a set of ribbon outlines into a fillable Path,
// one closed subpath per outline, shared by Stroke.Render and Builder's
// work-in-progress preview path.
func renderOutlines(outlines []ribbonOutline) *vecboard.Path {
	p := vecboard.NewPath()
	for _, o := range outlines {
		if len(o.segments) == 0 {
			continue
		}
		start := o.segments[0].start
		p.MoveTo(start.X, start.Y)
		for _, seg := range o.segments {
			if seg.isCurve {
				p.QuadraticTo(seg.ctrl.X, seg.ctrl.Y, seg.end.X, seg.end.Y)
			} else {
				p.LineTo(seg.end.X, seg.end.Y)
			}
		}
		p.Close()
	}
	return p
}

// Intersects reports whether the given line segment crosses any of the
// stroke's ribbon outlines, or lies inside one.
func (s Stroke) Intersects(p0, p1 vecboard.Vec2) bool {
	for _, o := range s.outlines {
		pts := o.points()
		n := len(pts)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a := pts[i]
			b := pts[(i+1)%n]
			if segmentsIntersect(p0, p1, a, b) {
				return true
			}
		}
		// The midpoint test covers a segment whose endpoints both lie on
		// the outline itself, which no strict crossing reports.
		if pointInPolygon(p0, pts) || pointInPolygon(p0.Lerp(p1, 0.5), pts) {
			return true
		}
	}
	return false
}

// pointInPolygon implements the standard ray-casting test.
func pointInPolygon(pt vecboard.Vec2, poly []vecboard.Vec2) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xCross := (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if pt.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// Transform returns a copy of the stroke with every outline point mapped
// through m, and ContentBBox recomputed from the transformed bounds.
func (s Stroke) Transform(m vecboard.Mat33) Stroke {
	out := s.Clone()
	out.ContentBBox = s.ContentBBox.Transformed(m)
	for i, o := range out.outlines {
		segs := make([]outlineSegment, len(o.segments))
		for j, seg := range o.segments {
			segs[j] = outlineSegment{
				start:   m.TransformVec2(seg.start),
				ctrl:    m.TransformVec2(seg.ctrl),
				end:     m.TransformVec2(seg.end),
				isCurve: seg.isCurve,
			}
		}
		out.outlines[i] = ribbonOutline{segments: segs}
	}
	return out
}

// Clone returns a deep copy of the stroke, matching the teacher's Stroke
// value-object Clone() pattern.
func (s Stroke) Clone() Stroke {
	out := s
	out.outlines = make([]ribbonOutline, len(s.outlines))
	for i, o := range s.outlines {
		out.outlines[i] = ribbonOutline{segments: append([]outlineSegment(nil), o.segments...)}
	}
	if s.LoadSaveData != nil {
		out.LoadSaveData = make(map[string]any, len(s.LoadSaveData))
		for k, v := range s.LoadSaveData {
			out.LoadSaveData[k] = v
		}
	}
	return out
}

// Describe returns a short human-readable summary, used by undo/redo
// history entries and debug tooling. locale is accepted for forward
// compatibility with localized descriptions but only "en" is implemented.
func (s Stroke) Describe(locale string) string {
	return fmt.Sprintf("stroke with %d outline(s)", len(s.outlines))
}

// RenderablePathSpec is a lightweight, render-only view of work-in-progress
// stroke geometry, returned by Builder.Preview so a caller can draw the
// in-flight stroke every frame without finalizing it into a Component.
type RenderablePathSpec struct {
	Path vecboard.Path
	BBox vecboard.Rect2
}

// buildRenderableSpec flattens a set of finalized/in-progress segments into
// a single fillable path for preview rendering.
func buildRenderableSpec(segs []finalSegment, bbox vecboard.Rect2) RenderablePathSpec {
	runs := splitRuns(segs)
	outlines := buildRibbons(runs)
	return RenderablePathSpec{Path: *renderOutlines(outlines), BBox: bbox}
}
