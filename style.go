package vecboard

// StrokeInfo is the optional stroke half of a RenderingStyle: a component
// with no stroke omits this entirely rather than encoding it as a
// zero-width stroke, so "no stroke" and "invisible stroke" stay
// distinguishable.
type StrokeInfo struct {
	Color RGBA
	Width float64
}

// RenderingStyle is the fill/stroke pair every drawable component and SVG
// element carries, per spec.md §3: { fill, stroke? }. Two styles compare
// equal only when both their fill and their stroke (including stroke
// presence/absence) match.
type RenderingStyle struct {
	Fill   RGBA
	Stroke *StrokeInfo
}

// DefaultRenderingStyle returns an opaque black fill with no stroke.
func DefaultRenderingStyle() RenderingStyle {
	return RenderingStyle{Fill: RGBA{A: 1}}
}

// WithFill returns a copy of s with its fill color replaced.
func (s RenderingStyle) WithFill(c RGBA) RenderingStyle {
	s.Fill = c
	return s
}

// WithStroke returns a copy of s with a stroke of the given color and
// width.
func (s RenderingStyle) WithStroke(c RGBA, width float64) RenderingStyle {
	s.Stroke = &StrokeInfo{Color: c, Width: width}
	return s
}

// WithoutStroke returns a copy of s with no stroke.
func (s RenderingStyle) WithoutStroke() RenderingStyle {
	s.Stroke = nil
	return s
}

// Equal reports whether s and other have the same fill and the same
// stroke, treating "no stroke" on one side and "a stroke" on the other as
// unequal regardless of the stroke's color or width.
func (s RenderingStyle) Equal(other RenderingStyle) bool {
	if s.Fill != other.Fill {
		return false
	}
	if (s.Stroke == nil) != (other.Stroke == nil) {
		return false
	}
	if s.Stroke == nil {
		return true
	}
	return *s.Stroke == *other.Stroke
}

// TextStyle is the style of a rendered text run, per spec.md §3:
// { size, family, weight?, variant?, rendering_style }. Weight and Variant
// are pointers so "unset" (inherit from the host's default) stays
// distinguishable from an explicit, falsy value.
type TextStyle struct {
	Size           float64
	Family         string
	Weight         *int
	Variant        *string
	RenderingStyle RenderingStyle
}

// WithWeight returns a copy of s with an explicit font weight.
func (s TextStyle) WithWeight(weight int) TextStyle {
	s.Weight = &weight
	return s
}

// WithVariant returns a copy of s with an explicit font variant (e.g.
// "italic", "small-caps").
func (s TextStyle) WithVariant(variant string) TextStyle {
	s.Variant = &variant
	return s
}

// Equal reports whether s and other specify the same size, family, weight,
// variant, and rendering style.
func (s TextStyle) Equal(other TextStyle) bool {
	if s.Size != other.Size || s.Family != other.Family {
		return false
	}
	if (s.Weight == nil) != (other.Weight == nil) {
		return false
	}
	if s.Weight != nil && *s.Weight != *other.Weight {
		return false
	}
	if (s.Variant == nil) != (other.Variant == nil) {
		return false
	}
	if s.Variant != nil && *s.Variant != *other.Variant {
		return false
	}
	return s.RenderingStyle.Equal(other.RenderingStyle)
}
