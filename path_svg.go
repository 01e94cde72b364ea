package vecboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPathData is returned by ParsePathData when d is not a well
// formed instance of the supported command subset.
var ErrInvalidPathData = errors.New("vecboard: invalid path data")

// ParsePathData parses the subset of the SVG path "d" grammar this package
// supports: M, L, H, V, C, Q, Z and their lowercase relative forms. Arcs
// (A, a) and the T/S shorthand commands are out of scope and reported as
// ErrInvalidPathData.
//
// Separator rule: whitespace and commas are separators between numbers; a
// '-' begins a new number unless the preceding character is 'e' or 'E'
// (exponent sign), so "1-2" tokenizes as "1", "-2" with no explicit
// separator required. Lowercase commands are relative to the point the
// previous command ended on. H/V expand to L with the implied coordinate
// held over from the current point. Z appends a Close element (a straight
// line back to the current subpath's start) and resumes from there.
func ParsePathData(d string) (*Path, error) {
	toks := tokenizePathData(d)
	p := NewPath()

	var cur, start Vec2
	haveCur := false
	i := 0

	readNum := func() (float64, error) {
		if i >= len(toks) || toks[i].kind != tokNumber {
			return 0, ErrInvalidPathData
		}
		v := toks[i].num
		i++
		return v, nil
	}

	for i < len(toks) {
		if toks[i].kind != tokCommand {
			return nil, fmt.Errorf("%w: expected command, got %q", ErrInvalidPathData, toks[i].text)
		}
		cmd := toks[i].text
		i++
		rel := cmd == strings.ToLower(cmd)

		switch strings.ToUpper(cmd) {
		case "M":
			x, err := readNum()
			if err != nil {
				return nil, err
			}
			y, err := readNum()
			if err != nil {
				return nil, err
			}
			pt := Pt(x, y)
			if rel && haveCur {
				pt = cur.Add(pt)
			}
			p.MoveTo(pt.X, pt.Y)
			cur, start, haveCur = pt, pt, true

		case "L":
			x, err := readNum()
			if err != nil {
				return nil, err
			}
			y, err := readNum()
			if err != nil {
				return nil, err
			}
			pt := Pt(x, y)
			if rel {
				pt = cur.Add(pt)
			}
			p.LineTo(pt.X, pt.Y)
			cur = pt

		case "H":
			x, err := readNum()
			if err != nil {
				return nil, err
			}
			nx := x
			if rel {
				nx = cur.X + x
			}
			p.LineTo(nx, cur.Y)
			cur = Pt(nx, cur.Y)

		case "V":
			y, err := readNum()
			if err != nil {
				return nil, err
			}
			ny := y
			if rel {
				ny = cur.Y + y
			}
			p.LineTo(cur.X, ny)
			cur = Pt(cur.X, ny)

		case "Q":
			cx, err := readNum()
			if err != nil {
				return nil, err
			}
			cy, err := readNum()
			if err != nil {
				return nil, err
			}
			x, err := readNum()
			if err != nil {
				return nil, err
			}
			y, err := readNum()
			if err != nil {
				return nil, err
			}
			ctrl, pt := Pt(cx, cy), Pt(x, y)
			if rel {
				ctrl, pt = cur.Add(ctrl), cur.Add(pt)
			}
			p.QuadraticTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
			cur = pt

		case "C":
			c1x, err := readNum()
			if err != nil {
				return nil, err
			}
			c1y, err := readNum()
			if err != nil {
				return nil, err
			}
			c2x, err := readNum()
			if err != nil {
				return nil, err
			}
			c2y, err := readNum()
			if err != nil {
				return nil, err
			}
			x, err := readNum()
			if err != nil {
				return nil, err
			}
			y, err := readNum()
			if err != nil {
				return nil, err
			}
			ctrl1, ctrl2, pt := Pt(c1x, c1y), Pt(c2x, c2y), Pt(x, y)
			if rel {
				ctrl1, ctrl2, pt = cur.Add(ctrl1), cur.Add(ctrl2), cur.Add(pt)
			}
			p.CubicTo(ctrl1.X, ctrl1.Y, ctrl2.X, ctrl2.Y, pt.X, pt.Y)
			cur = pt

		case "Z":
			p.Close()
			cur = start

		default:
			return nil, fmt.Errorf("%w: unsupported command %q", ErrInvalidPathData, cmd)
		}
	}

	return p, nil
}

type tokenKind int

const (
	tokCommand tokenKind = iota
	tokNumber
)

type pathToken struct {
	kind tokenKind
	text string
	num  float64
}

// commandLetters is the set of command characters this grammar subset
// recognizes, upper and lower case.
const commandLetters = "MLHVCQZmlhvcqz"

// tokenizePathData lexes d per the spec's separator rule: whitespace and
// commas separate tokens; a command letter always starts a new token; '-'
// starts a new number unless immediately preceded by 'e'/'E' (a floating
// point exponent sign), so it never needs a preceding separator.
func tokenizePathData(d string) []pathToken {
	var toks []pathToken
	i := 0
	n := len(d)

	isSep := func(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',' }
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }

	for i < n {
		c := d[i]
		switch {
		case isSep(c):
			i++
		case strings.IndexByte(commandLetters, c) >= 0:
			toks = append(toks, pathToken{kind: tokCommand, text: string(c)})
			i++
		case c == '-' || c == '+' || c == '.' || isDigit(c):
			start := i
			i++
			seenDot := c == '.'
			for i < n {
				cc := d[i]
				switch {
				case isDigit(cc):
					i++
				case cc == '.' && !seenDot:
					seenDot = true
					i++
				case (cc == 'e' || cc == 'E') && i+1 < n && (isDigit(d[i+1]) || d[i+1] == '-' || d[i+1] == '+'):
					i += 2
					for i < n && isDigit(d[i]) {
						i++
					}
				case (cc == '-' || cc == '+') && i > start && (d[i-1] == 'e' || d[i-1] == 'E'):
					i++
				default:
					goto numberDone
				}
			}
		numberDone:
			v, err := strconv.ParseFloat(d[start:i], 64)
			if err != nil {
				continue
			}
			toks = append(toks, pathToken{kind: tokNumber, text: d[start:i], num: v})
		default:
			i++
		}
	}
	return toks
}

// String returns the canonical SVG d-string for p, per spec.md §4.1:
// relative commands when the bbox top-left is far from the origin
// (abs(x) > 10 and abs(y) > 10), otherwise absolute; numbers rounded to 4
// decimal places and printed in shortest round-trip form, which already
// trims the float-print artifacts the spec's repair passes target (a
// trailing run of nines or zeroes beyond 4 decimals). The result is cached
// on the Path and recomputed only after the next mutation.
func (p *Path) String() string {
	if p.svgStringValid {
		return p.svgString
	}

	useRelative := false
	if len(p.elements) > 0 {
		bbox := p.BoundingBox()
		if math.Abs(bbox.Min.X) > 10 && math.Abs(bbox.Min.Y) > 10 {
			useRelative = true
		}
	}

	var b strings.Builder
	var cur, start Vec2

	writeCmd := func(abs, rel byte) byte {
		if useRelative {
			return rel
		}
		return abs
	}

	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := e.Vec2
			first := b.Len() == 0
			out := pt
			if useRelative && !first {
				out = pt.Sub(cur)
			}
			if first {
				b.WriteByte('M')
			} else {
				b.WriteByte(writeCmd('M', 'm'))
			}
			writePoint(&b, out, useRelative && !first)
			cur, start = pt, pt

		case LineTo:
			pt := e.Vec2
			out := pt
			if useRelative {
				out = pt.Sub(cur)
			}
			b.WriteByte(writeCmd('L', 'l'))
			writePoint(&b, out, useRelative)
			cur = pt

		case QuadTo:
			ctrl, pt := e.Control, e.Vec2
			outCtrl, outPt := ctrl, pt
			if useRelative {
				outCtrl, outPt = ctrl.Sub(cur), pt.Sub(cur)
			}
			b.WriteByte(writeCmd('Q', 'q'))
			writePoint(&b, outCtrl, useRelative)
			writeSeparatorBeforePoint(&b, outPt, useRelative)
			writePoint(&b, outPt, useRelative)
			cur = pt

		case CubicTo:
			c1, c2, pt := e.Control1, e.Control2, e.Vec2
			outC1, outC2, outPt := c1, c2, pt
			if useRelative {
				outC1, outC2, outPt = c1.Sub(cur), c2.Sub(cur), pt.Sub(cur)
			}
			b.WriteByte(writeCmd('C', 'c'))
			writePoint(&b, outC1, useRelative)
			writeSeparatorBeforePoint(&b, outC2, useRelative)
			writePoint(&b, outC2, useRelative)
			writeSeparatorBeforePoint(&b, outPt, useRelative)
			writePoint(&b, outPt, useRelative)
			cur = pt

		case Close:
			b.WriteByte('Z')
			cur = start
		}
	}

	p.svgString = b.String()
	p.svgStringValid = true
	return p.svgString
}

// writePoint writes "x,y" using the canonical rounded representation of
// each component. In relative mode a leading '-' on y omits the comma
// (the spec's "relative forms with leading - omit the separator" rule);
// absolute mode always writes the comma, as the worked example's
// "9999,-11" shows.
func writePoint(b *strings.Builder, pt Vec2, relative bool) {
	xs := formatPathNumber(pt.X)
	ys := formatPathNumber(pt.Y)
	b.WriteString(xs)
	if !relative || len(ys) == 0 || ys[0] != '-' {
		b.WriteByte(',')
	}
	b.WriteString(ys)
}

// writeSeparatorBeforePoint writes the separator between two points within
// a multi-point command (e.g. Q's control point and endpoint): a space,
// unless in relative mode and the next point's x component already starts
// with '-', in which case the minus sign itself serves as the separator.
func writeSeparatorBeforePoint(b *strings.Builder, next Vec2, relative bool) {
	xs := formatPathNumber(next.X)
	if relative && len(xs) > 0 && xs[0] == '-' {
		return
	}
	b.WriteByte(' ')
}

// formatPathNumber renders v rounded to 4 decimal places in the shortest
// round-trip form, which already produces the spec's target canonical
// output (e.g. 0.100000001 -> "0.1", -10.999999995 -> "-11") without
// needing to hand-implement its two string-level repair passes: Go's
// round-then-shortest-format pipeline already carries and trims for us.
func formatPathNumber(v float64) string {
	rounded := roundTo(v, 4)
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return math.Round(v*scale) / scale
}
