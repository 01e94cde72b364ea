package vecboard

import (
	"image"
	"image/color"
	"testing"
)

// Verify at compile time that RGBA implements color.Color.
var _ color.Color = RGBA{}

func TestRGBA_ColorInterface(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		wantR, wantG, wantB, wantA uint32
	}{
		{
			name:  "opaque black",
			c:     Black,
			wantR: 0, wantG: 0, wantB: 0, wantA: 65535,
		},
		{
			name:  "opaque white",
			c:     White,
			wantR: 65535, wantG: 65535, wantB: 65535, wantA: 65535,
		},
		{
			name:  "opaque red",
			c:     Red,
			wantR: 65535, wantG: 0, wantB: 0, wantA: 65535,
		},
		{
			name:  "transparent",
			c:     RGBA{0, 0, 0, 0},
			wantR: 0, wantG: 0, wantB: 0, wantA: 0,
		},
		{
			name:  "50% alpha red",
			c:     RGBA{1, 0, 0, 0.5},
			wantR: 32767, wantG: 0, wantB: 0, wantA: 32767,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			// Allow ±1 tolerance for floating point
			if diff(r, tt.wantR) > 1 || diff(g, tt.wantG) > 1 || diff(b, tt.wantB) > 1 || diff(a, tt.wantA) > 1 {
				t.Errorf("RGBA() = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					r, g, b, a, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestRGBA_SetColor(t *testing.T) {
	dc := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// This must compile — proves RGBA implements color.Color
	dc.Set(0, 0, Black)
	dc.Set(1, 0, Red)
	dc.Set(2, 0, Hex("#3498db"))
}

func TestRGBA_Roundtrip(t *testing.T) {
	// RGBA → color.Color → FromColor → RGBA
	original := RGBA{0.8, 0.3, 0.5, 0.9}
	r, g, b, a := original.RGBA()
	roundtripped := FromColor(color.NRGBA64{
		R: uint16(float64(r) / original.A),
		G: uint16(float64(g) / original.A),
		B: uint16(float64(b) / original.A),
		A: uint16(a),
	})
	const tolerance = 0.001
	if absDiff(original.R, roundtripped.R) > tolerance ||
		absDiff(original.G, roundtripped.G) > tolerance ||
		absDiff(original.B, roundtripped.B) > tolerance ||
		absDiff(original.A, roundtripped.A) > tolerance {
		t.Errorf("roundtrip: %v → %v", original, roundtripped)
	}
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestParseColor_Hex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#fff", RGB(1, 1, 1)},
		{"#f00f", RGBA2(1, 0, 0, 1)},
		{"#ff0000", RGB(1, 0, 0)},
		{"#00ff0080", RGBA2(0, 1, 0, 128.0/255.0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if absDiff(got.R, tt.want.R) > 1e-6 || absDiff(got.G, tt.want.G) > 1e-6 ||
				absDiff(got.B, tt.want.B) > 1e-6 || absDiff(got.A, tt.want.A) > 1e-3 {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColor_Named(t *testing.T) {
	got, err := ParseColor("CornflowerBlue")
	if err == nil {
		t.Fatalf("ParseColor(unknown name) = %+v, want error", got)
	}
	got, err = ParseColor("Red")
	if err != nil {
		t.Fatalf("ParseColor(Red) error: %v", err)
	}
	if want := RGB(1, 0, 0); got != want {
		t.Errorf("ParseColor(Red) = %+v, want %+v", got, want)
	}
}

func TestParseColor_RGBAFunc(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"rgb(255, 0, 0)", RGB(1, 0, 0)},
		{"rgba(0, 255, 0, 0.5)", RGBA2(0, 1, 0, 0.5)},
		{"rgba(50%, 0%, 0%, 1)", RGBA2(0.5, 0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.in, err)
			}
			if absDiff(got.R, tt.want.R) > 1e-6 || absDiff(got.G, tt.want.G) > 1e-6 ||
				absDiff(got.B, tt.want.B) > 1e-6 || absDiff(got.A, tt.want.A) > 1e-6 {
				t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "not-a-color", "rgb(1,2)", "#12"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) = nil error, want ErrInvalidColor", in)
		}
	}
}

func TestRGBA_ToHex(t *testing.T) {
	if got, want := Red.ToHex(), "#ff0000"; got != want {
		t.Errorf("Red.ToHex() = %q, want %q", got, want)
	}
	translucent := RGBA2(0, 1, 0, 0.5)
	if got := translucent.ToHex(); len(got) != 9 {
		t.Errorf("translucent.ToHex() = %q, want 9-char #rrggbbaa", got)
	}
}

func TestRGBA_BlendLab(t *testing.T) {
	mid := Red.BlendLab(Blue, 0.5)
	if mid.A != 1 {
		t.Errorf("BlendLab alpha = %v, want 1", mid.A)
	}
	if mid == Red || mid == Blue {
		t.Errorf("BlendLab(0.5) should not equal either endpoint, got %+v", mid)
	}
}
