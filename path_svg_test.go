package vecboard

import (
	"errors"
	"testing"
)

func TestParsePathData(t *testing.T) {
	tests := []struct {
		name    string
		d       string
		want    []Vec2 // expected points visited, in order (MoveTo/LineTo/curve endpoints, Close excluded)
		wantErr bool
	}{
		{
			name: "move and lines",
			d:    "M0,0 L10,0 L10,10 Z",
			want: []Vec2{Pt(0, 0), Pt(10, 0), Pt(10, 10)},
		},
		{
			name: "horizontal and vertical shorthand",
			d:    "M5,5 H20 V30",
			want: []Vec2{Pt(5, 5), Pt(20, 5), Pt(20, 30)},
		},
		{
			name: "relative lines accumulate from current point",
			d:    "M0,0 l10,0 l0,10",
			want: []Vec2{Pt(0, 0), Pt(10, 0), Pt(10, 10)},
		},
		{
			name: "quadratic curve, absolute",
			d:    "M0,0 Q5,10 10,0",
			want: []Vec2{Pt(0, 0), Pt(10, 0)},
		},
		{
			name: "cubic curve, relative",
			d:    "M0,0 c5,5 10,5 15,0",
			want: []Vec2{Pt(0, 0), Pt(15, 0)},
		},
		{
			name: "exponent sign is not a number separator",
			// "1e-2" is one number (0.01): the '-' after 'e' does not
			// start a new number; the space before "3" separates them.
			d:    "M0,0 L1e-2 3",
			want: []Vec2{Pt(0, 0), Pt(0.01, 3)},
		},
		{
			name: "minus sign starts a new number without a preceding separator",
			d:    "M0,0 L5-2",
			want: []Vec2{Pt(0, 0), Pt(5, -2)},
		},
		{
			name:    "unsupported command",
			d:       "M0,0 A5,5 0 0 1 10,10",
			wantErr: true,
		},
		{
			name:    "missing coordinate",
			d:       "M0,0 L10",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePathData(tt.d)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidPathData) {
					t.Errorf("error = %v, want wrapping ErrInvalidPathData", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var got []Vec2
			for _, elem := range p.Elements() {
				switch e := elem.(type) {
				case MoveTo:
					got = append(got, e.Vec2)
				case LineTo:
					got = append(got, e.Vec2)
				case QuadTo:
					got = append(got, e.Vec2)
				case CubicTo:
					got = append(got, e.Vec2)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d points %v, want %d points %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if !pointsEqual(got[i], tt.want[i], epsilon) {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParsePathData_ClosePathReturnsToSubpathStart(t *testing.T) {
	p, err := ParsePathData("M0,0 L10,0 L10,10 Z L-5,-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elems := p.Elements()
	last, ok := elems[len(elems)-1].(LineTo)
	if !ok {
		t.Fatalf("last element = %T, want LineTo", elems[len(elems)-1])
	}
	// The L after Z is relative to Z's reset point (0,0), so it lands at
	// (-5, -5) absolute, not (10-5, 10-5).
	if !pointsEqual(last.Vec2, Pt(-5, -5), epsilon) {
		t.Errorf("post-Z LineTo = %v, want (-5, -5)", last.Vec2)
	}
}

func TestPathString(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want string
	}{
		{
			// spec.md §8's worked rounding/serialization example.
			name: "rounds to four decimal places and trims float noise",
			d:    "M0.100000001,0.199999999 Q9999,-10.999999995 0.000300001,1.400000002",
			want: "M0.1,0.2Q9999,-11 0.0003,1.4",
		},
		{
			name: "simple triangle stays absolute and close-terminated",
			d:    "M0,0 L10,0 L10,10 Z",
			want: "M0,0L10,0L10,10Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePathData(tt.d)
			if err != nil {
				t.Fatalf("ParsePathData: %v", err)
			}
			if got := p.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathString_RoundTripsThroughParse(t *testing.T) {
	// Invariant 1 from spec.md §8: parse(serialize(p)) == p up to 4-decimal
	// rounding.
	original, err := ParsePathData("M1,2 L3,4 Q5,6 7,8 C9,10 11,12 13,14 Z")
	if err != nil {
		t.Fatalf("ParsePathData: %v", err)
	}

	reparsed, err := ParsePathData(original.String())
	if err != nil {
		t.Fatalf("ParsePathData(original.String()): %v", err)
	}

	origElems := original.Elements()
	gotElems := reparsed.Elements()
	if len(origElems) != len(gotElems) {
		t.Fatalf("element count = %d, want %d", len(gotElems), len(origElems))
	}
	for i := range origElems {
		origPt, origOK := endpointOf(origElems[i])
		gotPt, gotOK := endpointOf(gotElems[i])
		if origOK != gotOK {
			t.Fatalf("element %d kind mismatch: %T vs %T", i, origElems[i], gotElems[i])
		}
		if origOK && !pointsEqual(origPt, gotPt, 1e-4) {
			t.Errorf("element %d endpoint = %v, want %v", i, gotPt, origPt)
		}
	}
}

func endpointOf(e PathElement) (Vec2, bool) {
	switch v := e.(type) {
	case MoveTo:
		return v.Vec2, true
	case LineTo:
		return v.Vec2, true
	case QuadTo:
		return v.Vec2, true
	case CubicTo:
		return v.Vec2, true
	default:
		return Vec2{}, false
	}
}

func TestPathString_CachesUntilNextMutation(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)

	first := p.String()
	p.LineTo(10, 10)
	second := p.String()

	if first == second {
		t.Error("String() did not pick up the element appended after the first call")
	}
	if second != p.String() {
		t.Error("String() is not stable across repeated calls with no mutation")
	}
}
