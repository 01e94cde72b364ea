package scene

import "github.com/vecboard/vecboard"

// RestyleableComponent is the subset of Component variants that carry a
// single RenderingStyle a caller can change: TextComponent and
// BackgroundComponent implement it; Stroke does not, since its color
// varies per sample along the stroke rather than being one uniform style.
//
// ForceStyle is the non-historic mutator spec.md §4.4 names: it applies
// the new style directly and returns the updated Component, with no undo
// record. The command package's restyle command calls it from both
// apply (new_style) and unapply (old_style); the command itself is what
// makes the change historic.
type RestyleableComponent interface {
	Component
	StyleOf() vecboard.RenderingStyle
	ForceStyle(style vecboard.RenderingStyle) Component
}
