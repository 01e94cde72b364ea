package command

import (
	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/events"
	"github.com/vecboard/vecboard/scene"
)

// DefaultHistoryCap is the default bound on UndoRedoHistory's undo stack,
// per spec.md §3.
const DefaultHistoryCap = 700

// dropChunkSize is how many entries UndoRedoHistory drops at once from the
// oldest end of an overflowing undo stack, per spec.md §4.4 step 4.
const dropChunkSize = 10

// HistoryEventKind tags the three events UndoRedoHistory's bus carries,
// per spec.md §4.4.
type HistoryEventKind uint8

const (
	UndoRedoStackUpdated HistoryEventKind = iota
	CommandDone
	CommandUndone
)

// HistoryEventPayload carries the command a CommandDone/CommandUndone
// event concerns, or nil for a bare UndoRedoStackUpdated.
type HistoryEventPayload struct {
	Command Command
}

// UndoRedoHistory is two bounded stacks of Commands, per spec.md §3:
// pushing clears the redo stack, and the undo stack drops its oldest
// entries in chunks once it exceeds Cap.
type UndoRedoHistory struct {
	Cap int

	undo []Command
	redo []Command

	editor *scene.EditorImage
	bus    *events.EventDispatcher[HistoryEventKind, HistoryEventPayload]
}

// NewUndoRedoHistory creates a history bound to editor, with the default
// capacity.
func NewUndoRedoHistory(editor *scene.EditorImage) *UndoRedoHistory {
	return &UndoRedoHistory{
		Cap:    DefaultHistoryCap,
		editor: editor,
		bus:    events.NewEventDispatcher[HistoryEventKind, HistoryEventPayload](),
	}
}

// Subscribe registers a listener for history events (UndoRedoStackUpdated,
// CommandDone, CommandUndone).
func (h *UndoRedoHistory) Subscribe(listener events.Listener[HistoryEventKind, HistoryEventPayload]) uint64 {
	return h.bus.Subscribe(listener)
}

// Unsubscribe removes a previously registered listener.
func (h *UndoRedoHistory) Unsubscribe(token uint64) bool {
	return h.bus.Unsubscribe(token)
}

// Push applies cmd (unless apply is false, for a command already applied
// by its caller), pushes it onto the undo stack, and clears the redo
// stack, per spec.md §4.4's push algorithm:
//  1. Optionally call Apply.
//  2. Push onto the undo stack.
//  3. Drop every command on the redo stack, calling OnDrop on each.
//  4. If the undo stack now exceeds Cap, drop the oldest dropChunkSize,
//     calling OnDrop on each.
//  5. Emit UndoRedoStackUpdated and CommandDone.
func (h *UndoRedoHistory) Push(cmd Command, apply bool) error {
	if apply {
		if err := cmd.Apply(h.editor); err != nil {
			return err
		}
	}

	h.undo = append(h.undo, cmd)

	for _, dropped := range h.redo {
		dropped.OnDrop(h.editor)
	}
	h.redo = h.redo[:0]

	if len(h.undo) > h.Cap {
		n := len(h.undo) - h.Cap
		if n < dropChunkSize {
			n = dropChunkSize
		}
		if n > len(h.undo) {
			n = len(h.undo)
		}
		for _, dropped := range h.undo[:n] {
			dropped.OnDrop(h.editor)
		}
		h.undo = append([]Command(nil), h.undo[n:]...)
		vecboard.Logger().Debug("undo history truncated", "dropped", n)
	}

	h.bus.Dispatch(UndoRedoStackUpdated, HistoryEventPayload{})
	h.bus.Dispatch(CommandDone, HistoryEventPayload{Command: cmd})
	return nil
}

// Undo moves the most recent undo-stack command to the redo stack,
// invoking Unapply. Reports whether there was a command to undo.
func (h *UndoRedoHistory) Undo() (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	if err := cmd.Unapply(h.editor); err != nil {
		h.undo = append(h.undo, cmd)
		return false, err
	}

	h.redo = append(h.redo, cmd)
	h.bus.Dispatch(CommandUndone, HistoryEventPayload{Command: cmd})
	h.bus.Dispatch(UndoRedoStackUpdated, HistoryEventPayload{})
	return true, nil
}

// Redo moves the most recently undone command back to the undo stack,
// invoking Apply. Reports whether there was a command to redo.
func (h *UndoRedoHistory) Redo() (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	if err := cmd.Apply(h.editor); err != nil {
		h.redo = append(h.redo, cmd)
		return false, err
	}

	h.undo = append(h.undo, cmd)
	h.bus.Dispatch(CommandDone, HistoryEventPayload{Command: cmd})
	h.bus.Dispatch(UndoRedoStackUpdated, HistoryEventPayload{})
	return true, nil
}

// UndoLen and RedoLen report the current stack depths, mainly for tests
// and UI affordances (enabling/disabling undo/redo controls).
func (h *UndoRedoHistory) UndoLen() int { return len(h.undo) }
func (h *UndoRedoHistory) RedoLen() int { return len(h.redo) }
