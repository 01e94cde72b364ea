package renderer

import "github.com/vecboard/vecboard"

// objectBatcher defers DrawPath calls made inside one StartObject/EndObject
// bracket so consecutive paths with an equal style coalesce into a single
// outline, per spec.md §4.6's "draw_path defers emission while inside an
// object so consecutive paths with equal style coalesce into a single
// filled/stroked outline (preventing visible seams between adjacent stroke
// segments)". Shared between the raster and vector back-ends rather than
// duplicated, since the batching rule itself is back-end-independent —
// only what happens at flush (rasterize vs. serialize) differs.
type objectBatcher struct {
	runs []batchedRun
}

type batchedRun struct {
	style vecboard.RenderingStyle
	path  *vecboard.Path
}

// reset clears the batcher for a new object.
func (b *objectBatcher) reset() {
	b.runs = b.runs[:0]
}

// add appends path to the batcher: if the previous run's style matches,
// path's elements are merged into it; otherwise a new run starts.
func (b *objectBatcher) add(path *vecboard.Path, style vecboard.RenderingStyle) {
	if n := len(b.runs); n > 0 && b.runs[n-1].style.Equal(style) {
		appendPath(b.runs[n-1].path, path)
		return
	}
	b.runs = append(b.runs, batchedRun{style: style, path: path.Clone()})
}

// flush calls emit once per run, in the order the runs were started
// (spec.md §4.6: "batched paths flush in the order received"), then
// resets the batcher.
func (b *objectBatcher) flush(emit func(path *vecboard.Path, style vecboard.RenderingStyle)) {
	for _, run := range b.runs {
		emit(run.path, run.style)
	}
	b.reset()
}

// appendPath replays src's elements onto dst, merging two paths into one
// outline. Mirrors scene's unexported helper of the same purpose; kept
// separate here since renderer must not import scene for a two-line
// helper and scene must not import renderer (the cache-interface cycle
// this module avoids throughout).
func appendPath(dst, src *vecboard.Path) {
	for _, e := range src.Elements() {
		switch el := e.(type) {
		case vecboard.MoveTo:
			dst.MoveTo(el.Vec2.X, el.Vec2.Y)
		case vecboard.LineTo:
			dst.LineTo(el.Vec2.X, el.Vec2.Y)
		case vecboard.QuadTo:
			dst.QuadraticTo(el.Control.X, el.Control.Y, el.Vec2.X, el.Vec2.Y)
		case vecboard.CubicTo:
			dst.CubicTo(el.Control1.X, el.Control1.Y, el.Control2.X, el.Control2.Y, el.Vec2.X, el.Vec2.Y)
		case vecboard.Close:
			dst.Close()
		}
	}
}
