package renderer

import (
	"bytes"

	"github.com/go-text/typesetting/font"
)

// GlyphMetricsSource is the host-provided glyph metrics contract spec.md
// §1 Non-goals substitutes for full text shaping: advance widths and
// font-wide vertical metrics only. DrawText lays a run's glyphs out along
// the baseline itself using this; ligatures, kerning pairs, and
// complex-script reordering (what go-text/typesetting's HarfbuzzShaper
// actually does, per the teacher's GoTextShaper in text/shaper_gotext.go)
// are out of scope here — metrics lookup is not shaping.
type GlyphMetricsSource interface {
	// Ascent returns the distance from the baseline to the font's top,
	// Descent the distance to the bottom, and LineGap the recommended
	// extra space between lines — all as a fraction of one em, so a
	// caller scales by the requested point size to get pixels.
	Ascent() float64
	Descent() float64
	LineGap() float64

	// AdvanceWidth returns how far the pen moves after drawing r at the
	// given point size.
	AdvanceWidth(r rune, size float64) float64

	// HasGlyph reports whether the font carries a glyph for r, so a
	// caller can fall back to another face rather than silently
	// measuring a missing glyph as zero-width.
	HasGlyph(r rune) bool
}

// TypesettingMetrics adapts a parsed go-text/typesetting font to
// GlyphMetricsSource. It wraps font.Font rather than font.Face: Font is
// read-only and safe for concurrent use, the same reason the teacher's
// GoTextShaper caches Font instead of Face (text/shaper_gotext.go's
// fontCache field doc).
type TypesettingMetrics struct {
	font *font.Font
	upem float64
}

// NewTypesettingMetrics parses TTF/OTF font data and returns a metrics
// source backed by it.
func NewTypesettingMetrics(data []byte) (*TypesettingMetrics, error) {
	parsed, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &TypesettingMetrics{font: parsed.Font, upem: float64(parsed.Font.Upem())}, nil
}

// emUnits scales a raw font-unit value down to a fraction of one em.
func (m *TypesettingMetrics) emUnits(v float32) float64 {
	if m.upem == 0 {
		return 0
	}
	return float64(v) / m.upem
}

func (m *TypesettingMetrics) Ascent() float64 {
	extents, ok := m.font.FontHExtents()
	if !ok {
		return 0
	}
	return m.emUnits(extents.Ascender)
}

func (m *TypesettingMetrics) Descent() float64 {
	extents, ok := m.font.FontHExtents()
	if !ok {
		return 0
	}
	return -m.emUnits(extents.Descender)
}

func (m *TypesettingMetrics) LineGap() float64 {
	extents, ok := m.font.FontHExtents()
	if !ok {
		return 0
	}
	return m.emUnits(extents.LineGap)
}

func (m *TypesettingMetrics) AdvanceWidth(r rune, size float64) float64 {
	gid, ok := m.font.NominalGlyph(r)
	if !ok {
		return 0
	}
	return m.emUnits(m.font.HorizontalAdvance(gid)) * size
}

func (m *TypesettingMetrics) HasGlyph(r rune) bool {
	_, ok := m.font.NominalGlyph(r)
	return ok
}

// uniformMetrics is a GlyphMetricsSource backed by a fixed per-character
// advance, used by tests and by callers with no loaded font (mirroring
// scene.TextComponent's own estimatedAdvance placeholder of
// size*0.6-per-rune, but surfaced here as a real GlyphMetricsSource so
// DrawText never needs a font-or-not branch).
type uniformMetrics struct {
	advanceFraction float64
	ascent, descent, lineGap float64
}

// NewUniformMetrics returns a GlyphMetricsSource with a fixed per-rune
// advance (as a fraction of the point size) and fixed vertical metrics,
// for hosts that have not loaded a real font.
func NewUniformMetrics() GlyphMetricsSource {
	return uniformMetrics{advanceFraction: 0.6, ascent: 0.8, descent: 0.2, lineGap: 0.1}
}

func (u uniformMetrics) Ascent() float64  { return u.ascent }
func (u uniformMetrics) Descent() float64 { return u.descent }
func (u uniformMetrics) LineGap() float64 { return u.lineGap }
func (u uniformMetrics) AdvanceWidth(_ rune, size float64) float64 {
	return size * u.advanceFraction
}
func (u uniformMetrics) HasGlyph(_ rune) bool { return true }
