package scene

// ZIndexSettable is the subset of Component variants that can have their
// z-index replaced directly, without a full Transform. The
// transform-element command (spec.md §4.4) needs this: besides applying
// an affine transform, it raises a component's z-index to a specific
// recorded value (target_z_index) rather than merely bumping it to
// "next", since redo must reproduce the exact same z-order every time.
type ZIndexSettable interface {
	Component
	WithZIndex(z uint64) Component
}

func (c TextComponent) WithZIndex(z uint64) Component {
	c.base = c.base.withZIndex(z)
	return c
}

func (c ImageComponent) WithZIndex(z uint64) Component {
	c.base = c.base.withZIndex(z)
	return c
}

func (c BackgroundComponent) WithZIndex(z uint64) Component {
	c.base = c.base.withZIndex(z)
	return c
}

func (c UnknownSVGObject) WithZIndex(z uint64) Component {
	c.base = c.base.withZIndex(z)
	return c
}

func (c SVGGlobalAttributesObject) WithZIndex(z uint64) Component {
	c.base = c.base.withZIndex(z)
	return c
}

func (c StrokeComponent) WithZIndex(z uint64) Component {
	c.Stroke.ZIndex = z
	return c
}
