package command

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vecboard/vecboard/scene"
)

// ComponentCodec lets a concrete scene.Component variant register how to
// turn itself into JSON and back, so AddElementCommand can serialize an
// arbitrary component without this package needing to know every variant.
// Full fidelity SVG encode/decode lives in the svgcodec package; a
// ComponentCodec registered there (or by scene itself, for the common
// variants) is what AddElementCommand.Serialize/decodeAddElementCommand
// actually call through to.
type ComponentCodec struct {
	Encode func(scene.Component) (json.RawMessage, error)
	Decode func(json.RawMessage) (scene.Component, error)
}

var (
	componentCodecMu sync.Mutex
	componentCodecs  = make(map[string]ComponentCodec)
)

// RegisterComponentCodec associates kind with codec, replacing any prior
// registration for the same kind, matching Register's replace-on-conflict
// rule.
func RegisterComponentCodec(kind string, codec ComponentCodec) {
	componentCodecMu.Lock()
	defer componentCodecMu.Unlock()
	componentCodecs[kind] = codec
}

func componentCodecFor(kind string) (ComponentCodec, bool) {
	componentCodecMu.Lock()
	defer componentCodecMu.Unlock()
	codec, ok := componentCodecs[kind]
	return codec, ok
}

// AddElementCommand inserts a single component into the editor, per
// spec.md §4.4: apply calls EditorImage.AddComponent (which internally
// does add_leaf plus the by-id registration); unapply removes it again.
//
// The first Apply is expected to represent a gesture already visible on
// screen as a "wet ink" preview (spec.md's flattened-stroke-preview
// surface) being promoted onto the main scene in place, so it does not
// force a rerender of anything beyond the new component's own region.
// Every later Apply (a redo, or a replay during deserialization) has no
// such preview to promote from, so it asks the rendering cache for a full
// rerender of the component's region via QueueRerenderOf.
type AddElementCommand struct {
	Component    scene.Component
	ToBackground bool

	applied bool
}

// NewAddElementCommand builds a command that inserts c into the
// foreground tree (or the background tree, if toBackground).
func NewAddElementCommand(c scene.Component, toBackground bool) *AddElementCommand {
	return &AddElementCommand{Component: c, ToBackground: toBackground}
}

func (c *AddElementCommand) Apply(editor *scene.EditorImage) error {
	if !c.applied {
		editor.AddComponent(c.Component, c.ToBackground)
		c.applied = true
		return nil
	}
	editor.AddComponent(c.Component, c.ToBackground)
	editor.QueueRerenderOf(c.Component.ID())
	return nil
}

func (c *AddElementCommand) Unapply(editor *scene.EditorImage) error {
	if !editor.RemoveComponent(c.Component.ID()) {
		return fmt.Errorf("unapply add element %d: %w", c.Component.ID(), ErrUnresolvedReference)
	}
	return nil
}

// OnDrop removes the component from the editor if the history evicts this
// command while it is still applied (an overflowing undo stack, or a
// truncated redo stack for a command that was undone and never redone).
func (c *AddElementCommand) OnDrop(editor *scene.EditorImage) {
	if c.applied {
		editor.RemoveComponent(c.Component.ID())
	}
}

func (c *AddElementCommand) Describe(locale string) string {
	return fmt.Sprintf("add element %d", c.Component.ID())
}

type addElementCommandData struct {
	Kind         string          `json:"kind"`
	Data         json.RawMessage `json:"data"`
	ToBackground bool            `json:"to_background"`
	Applied      bool            `json:"applied"`
}

// componentKind identifies which ComponentCodec to use for c. Concrete
// component variants are expected to expose their kind via this type
// switch; svgcodec's registrations key on the same strings.
func componentKind(c scene.Component) (string, bool) {
	switch c.(type) {
	case scene.StrokeComponent:
		return "stroke", true
	case scene.TextComponent:
		return "text", true
	case scene.ImageComponent:
		return "image", true
	case scene.BackgroundComponent:
		return "background", true
	case scene.UnknownSVGObject:
		return "unknown_svg_object", true
	case scene.SVGGlobalAttributesObject:
		return "svg_global_attributes", true
	default:
		return "", false
	}
}

func (c *AddElementCommand) Serialize() (SerializedCommand, error) {
	kind, ok := componentKind(c.Component)
	if !ok {
		return SerializedCommand{}, fmt.Errorf("add element: unrecognized component type %T", c.Component)
	}
	codec, ok := componentCodecFor(kind)
	if !ok {
		return SerializedCommand{}, fmt.Errorf("add element: no codec registered for kind %q", kind)
	}
	encoded, err := codec.Encode(c.Component)
	if err != nil {
		return SerializedCommand{}, err
	}
	data, err := json.Marshal(addElementCommandData{
		Kind:         kind,
		Data:         encoded,
		ToBackground: c.ToBackground,
		Applied:      c.applied,
	})
	if err != nil {
		return SerializedCommand{}, err
	}
	return SerializedCommand{CommandType: addElementCommandType, Data: data}, nil
}

const addElementCommandType = "add_element"

func decodeAddElementCommand(data json.RawMessage) (SerializableCommand, error) {
	var d addElementCommandData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	codec, ok := componentCodecFor(d.Kind)
	if !ok {
		return nil, fmt.Errorf("add element: no codec registered for kind %q", d.Kind)
	}
	comp, err := codec.Decode(d.Data)
	if err != nil {
		return nil, err
	}
	return &AddElementCommand{Component: comp, ToBackground: d.ToBackground, applied: d.Applied}, nil
}

func init() {
	Register(addElementCommandType, decodeAddElementCommand)
}
