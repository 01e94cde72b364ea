package command

import (
	"encoding/json"
	"fmt"

	"github.com/vecboard/vecboard/scene"
)

// UniteCommand bundles an ordered list of commands into one undo step, per
// spec.md §4.4: Apply runs the sub-commands left to right, Unapply runs
// them right to left, and the bundle is pushed onto history as a single
// entry so one undo reverts the whole gesture (e.g. a multi-stroke paste,
// or a drag that both moves and restyles a selection).
type UniteCommand struct {
	Commands []SerializableCommand
}

// NewUniteCommand bundles commands, in application order.
func NewUniteCommand(commands ...SerializableCommand) *UniteCommand {
	return &UniteCommand{Commands: commands}
}

func (c *UniteCommand) Apply(editor *scene.EditorImage) error {
	for i, sub := range c.Commands {
		if err := sub.Apply(editor); err != nil {
			for j := i - 1; j >= 0; j-- {
				c.Commands[j].Unapply(editor)
			}
			return fmt.Errorf("unite command: sub-command %d: %w", i, err)
		}
	}
	return nil
}

func (c *UniteCommand) Unapply(editor *scene.EditorImage) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Unapply(editor); err != nil {
			return fmt.Errorf("unite command: sub-command %d: %w", i, err)
		}
	}
	return nil
}

// OnDrop forwards to every sub-command, in reverse order, matching
// Unapply's ordering.
func (c *UniteCommand) OnDrop(editor *scene.EditorImage) {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		c.Commands[i].OnDrop(editor)
	}
}

func (c *UniteCommand) Describe(locale string) string {
	return fmt.Sprintf("unite %d commands", len(c.Commands))
}

func (c *UniteCommand) Serialize() (SerializedCommand, error) {
	serialized := make([]SerializedCommand, len(c.Commands))
	for i, sub := range c.Commands {
		s, err := sub.Serialize()
		if err != nil {
			return SerializedCommand{}, fmt.Errorf("unite command: sub-command %d: %w", i, err)
		}
		serialized[i] = s
	}
	data, err := json.Marshal(serialized)
	if err != nil {
		return SerializedCommand{}, err
	}
	return SerializedCommand{CommandType: uniteCommandType, Data: data}, nil
}

const uniteCommandType = "unite"

func decodeUniteCommand(data json.RawMessage) (SerializableCommand, error) {
	var serialized []SerializedCommand
	if err := json.Unmarshal(data, &serialized); err != nil {
		return nil, err
	}
	commands := make([]SerializableCommand, len(serialized))
	for i, s := range serialized {
		sub, err := Deserialize(s)
		if err != nil {
			return nil, fmt.Errorf("unite command: sub-command %d: %w", i, err)
		}
		commands[i] = sub
	}
	return &UniteCommand{Commands: commands}, nil
}

func init() {
	Register(uniteCommandType, decodeUniteCommand)
}
