package command

import (
	"encoding/json"
	"fmt"

	"github.com/vecboard/vecboard"
	"github.com/vecboard/vecboard/scene"
)

// RestyleElementCommand swaps a restyleable component's RenderingStyle,
// per spec.md §4.4: `{ id, old_style, new_style }`. Unlike
// TransformElementCommand, both endpoints are known up front, so there's
// nothing to capture lazily. Only scene.RestyleableComponent variants
// (TextComponent, BackgroundComponent) support this; Stroke's per-sample
// color model has no single uniform style to replace.
type RestyleElementCommand struct {
	ID       uint64
	OldStyle vecboard.RenderingStyle
	NewStyle vecboard.RenderingStyle
}

// NewRestyleElementCommand builds a command that forces the component
// with the given id from oldStyle to newStyle.
func NewRestyleElementCommand(id uint64, oldStyle, newStyle vecboard.RenderingStyle) *RestyleElementCommand {
	return &RestyleElementCommand{ID: id, OldStyle: oldStyle, NewStyle: newStyle}
}

func (c *RestyleElementCommand) restyle(editor *scene.EditorImage, style vecboard.RenderingStyle) error {
	comp, ok := editor.ByID(c.ID)
	if !ok {
		return fmt.Errorf("restyle element %d: %w", c.ID, ErrUnresolvedReference)
	}
	restyleable, ok := comp.(scene.RestyleableComponent)
	if !ok {
		return fmt.Errorf("restyle element %d: component is not restyleable", c.ID)
	}
	if !editor.ReplaceComponent(c.ID, restyleable.ForceStyle(style)) {
		return fmt.Errorf("restyle element %d: %w", c.ID, ErrUnresolvedReference)
	}
	return nil
}

func (c *RestyleElementCommand) Apply(editor *scene.EditorImage) error {
	return c.restyle(editor, c.NewStyle)
}

func (c *RestyleElementCommand) Unapply(editor *scene.EditorImage) error {
	return c.restyle(editor, c.OldStyle)
}

// OnDrop does nothing: a dropped restyle command leaves the component
// however the most recent Apply/Unapply left it.
func (c *RestyleElementCommand) OnDrop(editor *scene.EditorImage) {}

func (c *RestyleElementCommand) Describe(locale string) string {
	return fmt.Sprintf("restyle element %d", c.ID)
}

type restyleElementCommandData struct {
	ID       uint64                  `json:"id"`
	OldStyle vecboard.RenderingStyle `json:"old_style"`
	NewStyle vecboard.RenderingStyle `json:"new_style"`
}

func (c *RestyleElementCommand) Serialize() (SerializedCommand, error) {
	data, err := json.Marshal(restyleElementCommandData{
		ID:       c.ID,
		OldStyle: c.OldStyle,
		NewStyle: c.NewStyle,
	})
	if err != nil {
		return SerializedCommand{}, err
	}
	return SerializedCommand{CommandType: restyleElementCommandType, Data: data}, nil
}

const restyleElementCommandType = "restyle_element"

func decodeRestyleElementCommand(data json.RawMessage) (SerializableCommand, error) {
	var d restyleElementCommandData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &RestyleElementCommand{ID: d.ID, OldStyle: d.OldStyle, NewStyle: d.NewStyle}, nil
}

func init() {
	Register(restyleElementCommandType, decodeRestyleElementCommand)
}
