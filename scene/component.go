// Package scene holds the spatial scene graph: the Component capability
// set, the SceneNode spatial index, and EditorImage, the editor's
// top-level document (foreground + background trees, by-id map, and the
// export viewport). Grounded stylistically on the teacher's scene.Scene
// (NewX constructors, a monotonic counter bumped on every mutation, Reset)
// even though the teacher's Scene is a flat draw-command encoding rather
// than a spatial tree.
package scene

import (
	"sync/atomic"

	"github.com/vecboard/vecboard"
)

// idCounter and zIndexCounter are process-wide monotonic sources, matching
// spec.md §3's "id: opaque, unique within a process run" and "z_index:
// monotonically increasing counter at creation; updated on mutation so
// most-recent is topmost".
var idCounter uint64
var zIndexCounter uint64

func nextID() uint64 { return atomic.AddUint64(&idCounter, 1) }

// NextZIndex returns a fresh z-index value, used both at component
// creation and whenever a component is restyled or otherwise brought to
// the front.
func NextZIndex() uint64 { return atomic.AddUint64(&zIndexCounter, 1) }

// Component is the capability set every scene object exposes, modeled as a
// tagged variant rather than inheritance per spec.md §9: Stroke,
// TextComponent, ImageComponent, BackgroundComponent, UnknownSVGObject,
// and SVGGlobalAttributesObject all implement it directly.
type Component interface {
	ID() uint64
	ZIndex() uint64
	ContentBBox() vecboard.Rect2
	LoadSaveData() map[string]any

	Render() *vecboard.Path
	Intersects(p0, p1 vecboard.Vec2) bool
	Transform(m vecboard.Mat33) Component
	Clone() Component
	Describe(locale string) string
}

// base is embedded by every Component implementation native to this
// package (not StrokeComponent, which wraps stroke.Stroke's own fields).
// It carries the four fields spec.md §3 requires of every component.
type base struct {
	id           uint64
	zIndex       uint64
	bbox         vecboard.Rect2
	loadSaveData map[string]any
}

func newBase(bbox vecboard.Rect2) base {
	return base{id: nextID(), zIndex: NextZIndex(), bbox: bbox}
}

func (b base) ID() uint64                     { return b.id }
func (b base) ZIndex() uint64                 { return b.zIndex }
func (b base) ContentBBox() vecboard.Rect2    { return b.bbox }
func (b base) LoadSaveData() map[string]any   { return b.loadSaveData }

// withZIndex returns a copy of b with ZIndex replaced. id is left
// untouched: it is the component's stable identity (spec.md §3's "opaque,
// unique within a process run"), and EditorImage.ReplaceComponent relies
// on a transformed/restyled/re-z-indexed component keeping the same id
// as the one it replaces.
func (b base) withZIndex(z uint64) base {
	b.zIndex = z
	return b
}

func (b base) cloneLoadSaveData() map[string]any {
	if b.loadSaveData == nil {
		return nil
	}
	out := make(map[string]any, len(b.loadSaveData))
	for k, v := range b.loadSaveData {
		out[k] = v
	}
	return out
}
