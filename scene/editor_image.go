package scene

import (
	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/events"
)

// ExportRectEventKind tags the one event EditorImage's bus carries, per
// spec.md §3's "event bus for export-rect changes".
type ExportRectEventKind uint8

const ExportRectChanged ExportRectEventKind = 0

// ExportRectChangedPayload carries the old and new export rectangle
// across an ExportRectChanged dispatch.
type ExportRectChangedPayload struct {
	Old vecboard.Rect2
	New vecboard.Rect2
}

// EditorImage is the editor's top-level document, per spec.md §3: two
// SceneNode roots (foreground content and background), a by-id map for
// component lookup, an import/export viewport rectangle, and an event bus
// that fires when that rectangle changes.
//
// The by-id map records only which tree (foreground or background) a
// component lives in, not a cached *SceneNode: SceneNode.AddLeaf can
// demote an existing leaf into an interior node as a side effect of a
// later, unrelated insertion nearby, which would silently invalidate a
// cached pointer to that leaf. Resolving the actual node with a DFS on
// every lookup costs more per call but is never stale.
type EditorImage struct {
	foreground *SceneNode
	background *SceneNode
	byID       map[uint64]bool // id -> true if in background, false if foreground

	exportRect vecboard.Rect2
	exportBus  *events.EventDispatcher[ExportRectEventKind, ExportRectChangedPayload]
}

// NewEditorImage creates an empty document with the given initial export
// rectangle.
func NewEditorImage(exportRect vecboard.Rect2) *EditorImage {
	return &EditorImage{
		foreground: NewSceneNode(),
		background: NewSceneNode(),
		byID:       make(map[uint64]bool),
		exportRect: exportRect,
		exportBus:  events.NewEventDispatcher[ExportRectEventKind, ExportRectChangedPayload](),
	}
}

// Foreground returns the root of the document's main content tree.
func (e *EditorImage) Foreground() *SceneNode { return e.foreground }

// Background returns the root of the document's background tree.
func (e *EditorImage) Background() *SceneNode { return e.background }

// ExportRect returns the currently configured export/import rectangle.
func (e *EditorImage) ExportRect() vecboard.Rect2 { return e.exportRect }

// SetExportRect updates the export rectangle and dispatches
// ExportRectChanged with the old and new values, unless they're equal.
func (e *EditorImage) SetExportRect(rect vecboard.Rect2) {
	old := e.exportRect
	if old == rect {
		return
	}
	e.exportRect = rect
	e.exportBus.Dispatch(ExportRectChanged, ExportRectChangedPayload{Old: old, New: rect})
}

// SubscribeExportRect registers a listener for export-rect changes,
// returning a token UnsubscribeExportRect accepts to remove it again.
func (e *EditorImage) SubscribeExportRect(listener events.Listener[ExportRectEventKind, ExportRectChangedPayload]) uint64 {
	return e.exportBus.Subscribe(listener)
}

// UnsubscribeExportRect removes a previously registered export-rect
// listener.
func (e *EditorImage) UnsubscribeExportRect(token uint64) bool {
	return e.exportBus.Unsubscribe(token)
}

// findNodeByComponentID does a DFS for the leaf node whose content has the
// given id, returning nil if none matches.
func findNodeByComponentID(n *SceneNode, id uint64) *SceneNode {
	if n.IsLeaf() {
		if n.Content().ID() == id {
			return n
		}
		return nil
	}
	for _, child := range n.Children() {
		if found := findNodeByComponentID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// NodeByID returns the SceneNode holding the component with the given id,
// or nil if not found. Exposed (rather than only Component) so the
// rendering cache can operate on the node directly.
func (e *EditorImage) NodeByID(id uint64) *SceneNode {
	inBackground, ok := e.byID[id]
	if !ok {
		return nil
	}
	root := e.foreground
	if inBackground {
		root = e.background
	}
	return findNodeByComponentID(root, id)
}

// ByID looks up a component by id, returning (nil, false) if no component
// with that id is currently in the document.
func (e *EditorImage) ByID(id uint64) (Component, bool) {
	node := e.NodeByID(id)
	if node == nil {
		return nil, false
	}
	return node.Content(), true
}

// AddComponent inserts c as a leaf of the foreground tree (or the
// background tree, if toBackground) and registers it in the by-id map.
// This is the low-level primitive the command package's
// AddElementCommand.Apply calls; EditorImage itself does not record
// history.
func (e *EditorImage) AddComponent(c Component, toBackground bool) {
	root := e.foreground
	if toBackground {
		root = e.background
	}
	root.AddLeaf(c)
	e.byID[c.ID()] = toBackground
}

// RemoveComponent removes the component with the given id from whichever
// tree holds it and from the by-id map. Reports whether it was found.
func (e *EditorImage) RemoveComponent(id uint64) bool {
	node := e.NodeByID(id)
	if node == nil {
		return false
	}
	inBackground := e.byID[id]
	delete(e.byID, id)
	root := e.foreground
	if inBackground {
		root = e.background
	}
	return node.RemoveFromTree(root)
}

// ReplaceComponent swaps the component stored at id for replacement (used
// by TransformElementCommand/RestyleElementCommand, which produce a new
// Component value rather than mutating one in place, since every native
// Component here is a value type). The replacement lands on whichever
// side (foreground/background) id currently occupies; replacement is
// expected to carry the same id (Transform/ForceStyle both preserve the
// embedded base, id included).
func (e *EditorImage) ReplaceComponent(id uint64, replacement Component) bool {
	node := e.NodeByID(id)
	if node == nil {
		return false
	}
	inBackground := e.byID[id]
	root := e.foreground
	if inBackground {
		root = e.background
	}
	node.RemoveFromTree(root)
	delete(e.byID, id)

	e.AddComponent(replacement, inBackground)
	return true
}

// QueueRerenderOf marks id's region dirty for the rendering cache by
// removing and reinserting its node, per spec.md §4.3: the reinsertion
// bumps every node id (freshness token) on the path, so a cache walk sees
// a changed freshness token without needing to diff content.
func (e *EditorImage) QueueRerenderOf(id uint64) {
	node := e.NodeByID(id)
	if node == nil {
		return
	}
	content := node.Content()
	inBackground := e.byID[id]
	root := e.foreground
	if inBackground {
		root = e.background
	}
	node.RemoveFromTree(root)
	e.AddComponent(content, inBackground)
}
