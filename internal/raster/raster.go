// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster implements a compact CPU scanline rasterizer used by the
// image-backed surface. It fills closed paths with anti-aliased coverage
// computed by supersampling each scanline, rather than the analytic
// edge-coverage pipeline a GPU-oriented renderer would carry; the engine
// has no GPU backend, so a simple, single-threaded filler is enough to
// back the rendering cache's CPU tiles.
package raster

import "sort"

// PathVerb identifies a path construction command.
type PathVerb uint8

const (
	VerbMoveTo PathVerb = iota
	VerbLineTo
	VerbQuadTo
	VerbCubicTo
	VerbClose
)

// PathLike is anything that can be flattened into edges: a verb stream plus
// its associated (x, y) coordinate pairs, in the same shape the vecboard
// path builder produces.
type PathLike interface {
	Verbs() []PathVerb
	Points() []float32
}

// Transform maps a point to another point. IdentityTransform leaves points
// unchanged; EdgeBuilder accepts any Transform so callers in the renderer
// package can flatten directly into device space.
type Transform interface {
	Apply(x, y float32) (float32, float32)
}

// IdentityTransform is a no-op Transform.
type IdentityTransform struct{}

// Apply returns x, y unchanged.
func (IdentityTransform) Apply(x, y float32) (float32, float32) { return x, y }

// FillRule selects how overlapping sub-path winding is resolved.
type FillRule uint8

const (
	FillRuleNonZero FillRule = iota
	FillRuleEvenOdd
)

type edge struct {
	x0, y0, x1, y1 float32 // y0 < y1 always; winding below records original direction
	winding        int
}

// EdgeBuilder flattens a PathLike into monotonic line edges ready for
// scanline filling. It is reused across Fill calls via Reset to avoid
// reallocating its edge slice.
type EdgeBuilder struct {
	edges          []edge
	flattenCurves  bool
	tolerance      float32
	curX, curY     float32
	startX, startY float32
}

// NewEdgeBuilder creates a builder. quality roughly controls curve
// flattening tolerance: higher quality values produce finer segments.
func NewEdgeBuilder(quality int) *EdgeBuilder {
	tol := float32(0.35)
	if quality > 0 {
		tol = 0.35 / float32(quality)
	}
	return &EdgeBuilder{tolerance: tol}
}

// Reset clears accumulated edges for reuse.
func (b *EdgeBuilder) Reset() {
	b.edges = b.edges[:0]
	b.curX, b.curY = 0, 0
	b.startX, b.startY = 0, 0
}

// SetFlattenCurves controls whether quadratic/cubic verbs are subdivided
// into line edges (always true in this filler; curves must become lines
// before they can be scan-converted).
func (b *EdgeBuilder) SetFlattenCurves(v bool) { b.flattenCurves = v }

// IsEmpty reports whether any edges were produced.
func (b *EdgeBuilder) IsEmpty() bool { return len(b.edges) == 0 }

// BuildFromPath flattens path's verbs into edges, applying t to every
// vertex and control point before adding it.
func (b *EdgeBuilder) BuildFromPath(path PathLike, t Transform) {
	verbs := path.Verbs()
	pts := path.Points()
	i := 0
	for _, v := range verbs {
		switch v {
		case VerbMoveTo:
			x, y := t.Apply(pts[i], pts[i+1])
			i += 2
			if b.curX != b.startX || b.curY != b.startY {
				b.closeSubpath()
			}
			b.startX, b.startY = x, y
			b.curX, b.curY = x, y
		case VerbLineTo:
			x, y := t.Apply(pts[i], pts[i+1])
			i += 2
			b.addLine(b.curX, b.curY, x, y)
			b.curX, b.curY = x, y
		case VerbQuadTo:
			cx, cy := t.Apply(pts[i], pts[i+1])
			x, y := t.Apply(pts[i+2], pts[i+3])
			i += 4
			b.flattenQuad(b.curX, b.curY, cx, cy, x, y, 0)
			b.curX, b.curY = x, y
		case VerbCubicTo:
			c1x, c1y := t.Apply(pts[i], pts[i+1])
			c2x, c2y := t.Apply(pts[i+2], pts[i+3])
			x, y := t.Apply(pts[i+4], pts[i+5])
			i += 6
			b.flattenCubic(b.curX, b.curY, c1x, c1y, c2x, c2y, x, y, 0)
			b.curX, b.curY = x, y
		case VerbClose:
			b.closeSubpath()
		}
	}
	b.closeSubpath()
}

func (b *EdgeBuilder) closeSubpath() {
	if b.curX != b.startX || b.curY != b.startY {
		b.addLine(b.curX, b.curY, b.startX, b.startY)
	}
	b.curX, b.curY = b.startX, b.startY
}

func (b *EdgeBuilder) addLine(x0, y0, x1, y1 float32) {
	if y0 == y1 {
		return // horizontal edges never cross a scanline
	}
	winding := 1
	if y0 > y1 {
		x0, y0, x1, y1 = x1, y1, x0, y0
		winding = -1
	}
	b.edges = append(b.edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, winding: winding})
}

func (b *EdgeBuilder) flattenQuad(x0, y0, cx, cy, x1, y1 float32, depth int) {
	if depth > 16 || b.flatEnoughQuad(x0, y0, cx, cy, x1, y1) {
		b.addLine(x0, y0, x1, y1)
		return
	}
	q0x, q0y := (x0+cx)*0.5, (y0+cy)*0.5
	q1x, q1y := (cx+x1)*0.5, (cy+y1)*0.5
	mx, my := (q0x+q1x)*0.5, (q0y+q1y)*0.5
	b.flattenQuad(x0, y0, q0x, q0y, mx, my, depth+1)
	b.flattenQuad(mx, my, q1x, q1y, x1, y1, depth+1)
}

func (b *EdgeBuilder) flatEnoughQuad(x0, y0, cx, cy, x1, y1 float32) bool {
	dx, dy := x1-x0, y1-y0
	dcx, dcy := cx-x0, cy-y0
	cross := dcx*dy - dcy*dx
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return true
	}
	return cross*cross/lenSq < b.tolerance*b.tolerance
}

func (b *EdgeBuilder) flattenCubic(x0, y0, c1x, c1y, c2x, c2y, x1, y1 float32, depth int) {
	if depth > 16 || b.flatEnoughCubic(x0, y0, c1x, c1y, c2x, c2y, x1, y1) {
		b.addLine(x0, y0, x1, y1)
		return
	}
	m01x, m01y := (x0+c1x)*0.5, (y0+c1y)*0.5
	m12x, m12y := (c1x+c2x)*0.5, (c1y+c2y)*0.5
	m23x, m23y := (c2x+x1)*0.5, (c2y+y1)*0.5
	m012x, m012y := (m01x+m12x)*0.5, (m01y+m12y)*0.5
	m123x, m123y := (m12x+m23x)*0.5, (m12y+m23y)*0.5
	mx, my := (m012x+m123x)*0.5, (m012y+m123y)*0.5
	b.flattenCubic(x0, y0, m01x, m01y, m012x, m012y, mx, my, depth+1)
	b.flattenCubic(mx, my, m123x, m123y, m23x, m23y, x1, y1, depth+1)
}

func (b *EdgeBuilder) flatEnoughCubic(x0, y0, c1x, c1y, c2x, c2y, x1, y1 float32) bool {
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return true
	}
	d1 := (c1x-x0)*dy - (c1y-y0)*dx
	d2 := (c2x-x0)*dy - (c2y-y0)*dx
	m := absf32(d1)
	if absf32(d2) > m {
		m = absf32(d2)
	}
	return m*m/lenSq < b.tolerance*b.tolerance
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// AlphaRuns holds per-pixel coverage for one scanline, in the range [0, 255].
type AlphaRuns struct {
	width int
	cov   []uint8
}

func newAlphaRuns(width int) *AlphaRuns {
	return &AlphaRuns{width: width, cov: make([]uint8, width)}
}

func (r *AlphaRuns) reset() {
	for i := range r.cov {
		r.cov[i] = 0
	}
}

// Iter yields (x, alpha) for every pixel with non-zero coverage.
func (r *AlphaRuns) Iter() func(yield func(int, uint8) bool) {
	return func(yield func(int, uint8) bool) {
		for x, a := range r.cov {
			if a == 0 {
				continue
			}
			if !yield(x, a) {
				return
			}
		}
	}
}

const subSamples = 4 // vertical supersamples per scanline row

// AnalyticFiller scan-converts edges produced by an EdgeBuilder into
// per-row alpha coverage, supersampling vertically and resolving partial
// horizontal coverage by exact x-intercept accumulation.
type AnalyticFiller struct {
	width, height int
	runs          *AlphaRuns
	accum         []float32
}

// NewAnalyticFiller creates a filler targeting a width x height surface.
func NewAnalyticFiller(width, height int) *AnalyticFiller {
	return &AnalyticFiller{
		width:  width,
		height: height,
		runs:   newAlphaRuns(width),
		accum:  make([]float32, width),
	}
}

// Reset clears filler state between Fill calls (no-op besides buffer reuse;
// buffers are zeroed per row inside Fill).
func (f *AnalyticFiller) Reset() {}

type crossing struct {
	x       float32
	winding int
}

// Fill scan-converts eb's edges under rule, invoking emit once per row that
// has any coverage, in increasing y order.
func (f *AnalyticFiller) Fill(eb *EdgeBuilder, rule FillRule, emit func(y int, runs *AlphaRuns)) {
	if len(eb.edges) == 0 {
		return
	}

	minY, maxY := f.height, 0
	for _, e := range eb.edges {
		y0, y1 := int(e.y0), int(e.y1)+1
		if y0 < minY {
			minY = y0
		}
		if y1 > maxY {
			maxY = y1
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > f.height {
		maxY = f.height
	}

	var xs []crossing
	for y := minY; y < maxY; y++ {
		for i := range f.accum {
			f.accum[i] = 0
		}
		any := false
		for s := 0; s < subSamples; s++ {
			sy := float32(y) + (float32(s)+0.5)/float32(subSamples)
			xs = xs[:0]
			for _, e := range eb.edges {
				if sy < e.y0 || sy >= e.y1 {
					continue
				}
				t := (sy - e.y0) / (e.y1 - e.y0)
				x := e.x0 + t*(e.x1-e.x0)
				xs = append(xs, crossing{x: x, winding: e.winding})
			}
			if len(xs) == 0 {
				continue
			}
			sort.Slice(xs, func(i, j int) bool { return xs[i].x < xs[j].x })

			winding := 0
			inside := false
			spanStart := float32(0)
			for _, c := range xs {
				wasInside := inside
				winding += c.winding
				switch rule {
				case FillRuleEvenOdd:
					inside = winding%2 != 0
				default:
					inside = winding != 0
				}
				if !wasInside && inside {
					spanStart = c.x
				} else if wasInside && !inside {
					f.accumulateSpan(spanStart, c.x)
					any = true
				}
			}
		}
		if !any {
			continue
		}
		f.runs.reset()
		for x := 0; x < f.width; x++ {
			cov := f.accum[x] / float32(subSamples)
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			f.runs.cov[x] = uint8(cov*255 + 0.5)
		}
		emit(y, f.runs)
	}
}

// accumulateSpan adds fractional horizontal coverage for [x0, x1) into the
// row's accumulator, splitting partial coverage at the boundary pixels.
func (f *AnalyticFiller) accumulateSpan(x0, x1 float32) {
	if x1 <= x0 {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > float32(f.width) {
		x1 = float32(f.width)
	}
	if x1 <= x0 {
		return
	}

	ix0 := int(x0)
	ix1 := int(x1)
	if ix0 == ix1 {
		f.accum[ix0] += x1 - x0
		return
	}
	f.accum[ix0] += float32(ix0+1) - x0
	for x := ix0 + 1; x < ix1; x++ {
		f.accum[x] += 1
	}
	if ix1 < f.width {
		f.accum[ix1] += x1 - float32(ix1)
	}
}
