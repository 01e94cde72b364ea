package vecboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrSingularMatrix is returned by Invert when a matrix has no inverse
// (determinant within epsilon of zero). Callers that need a transform's
// inverse to map device space back to canvas space must handle this rather
// than silently substituting the identity.
var ErrSingularMatrix = errors.New("vecboard: singular matrix has no inverse")

// ErrInvalidMatrix is returned by ParseCSSMatrix when s is not a recognized
// CSS transform-function syntax.
var ErrInvalidMatrix = errors.New("vecboard: invalid matrix")

// Mat33 is a row-major 3x3 affine transformation matrix:
//
//	| A  B  C |
//	| D  E  F |
//	| 0  0  1 |
//
// representing x' = A*x + B*y + C, y' = D*x + E*y + F. The bottom row is
// implicit; Mat33 only ever stores affine transforms, never a general
// projective one.
type Mat33 struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Mat33 {
	return Mat33{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Mat33 {
	return Mat33{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Mat33 {
	return Mat33{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Mat33 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Mat33{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Shear creates a shear matrix.
func Shear(x, y float64) Mat33 {
	return Mat33{
		A: 1, B: x, C: 0,
		D: y, E: 1, F: 0,
	}
}

// Multiply multiplies two matrices (m * other), applying other first.
func (m Mat33) Multiply(other Mat33) Mat33 {
	return Mat33{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformVec2 applies the transformation to a position, including
// translation.
func (m Mat33) TransformVec2(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformDir applies the transformation to a direction, ignoring
// translation.
func (m Mat33) TransformDir(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.B*p.Y,
		Y: m.D*p.X + m.E*p.Y,
	}
}

// TransformVec3 applies the full 3x3 matrix to a homogeneous point,
// including its W component.
func (m Mat33) TransformVec3(p Vec3) Vec3 {
	return Vec3{
		X: m.A*p.X + m.B*p.Y + m.C*p.W,
		Y: m.D*p.X + m.E*p.Y + m.F*p.W,
		W: p.W,
	}
}

// ParseCSSMatrix parses a CSS transform-function string into a Mat33. It
// accepts matrix(a,b,c,d,e,f), the generator shorthands translate(x[,y]),
// scale(x[,y]), rotate(deg), skewX(deg), and skewY(deg), and a
// whitespace-separated list of them applied left to right (each shorthand
// post-multiplies onto the accumulated result, the same order CSS applies
// transform lists). Angles are degrees, as CSS specifies. Returns
// ErrInvalidMatrix if s is not one of these forms or its argument count or
// number syntax is wrong.
func ParseCSSMatrix(s string) (Mat33, error) {
	result := Identity()
	matched := false

	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return Mat33{}, fmt.Errorf("%w: %q", ErrInvalidMatrix, s)
		}
		name := strings.TrimSpace(rest[:open])
		closeIdx := strings.IndexByte(rest[open:], ')')
		if closeIdx < 0 {
			return Mat33{}, fmt.Errorf("%w: %q", ErrInvalidMatrix, s)
		}
		closeIdx += open

		args, err := parseCSSArgs(rest[open+1 : closeIdx])
		if err != nil {
			return Mat33{}, fmt.Errorf("%w: %q", ErrInvalidMatrix, s)
		}

		m, err := cssTransformFunc(name, args)
		if err != nil {
			return Mat33{}, fmt.Errorf("%w: %q", ErrInvalidMatrix, s)
		}
		result = result.Multiply(m)
		matched = true

		rest = strings.TrimSpace(rest[closeIdx+1:])
	}

	if !matched {
		return Mat33{}, fmt.Errorf("%w: %q", ErrInvalidMatrix, s)
	}
	return result, nil
}

func parseCSSArgs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	args := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func cssTransformFunc(name string, args []float64) (Mat33, error) {
	deg2rad := func(d float64) float64 { return d * math.Pi / 180 }

	switch name {
	case "matrix":
		if len(args) != 6 {
			return Mat33{}, ErrInvalidMatrix
		}
		// CSS matrix(a,b,c,d,e,f) is column-major: x'=a*x+c*y+e, y'=b*x+d*y+f.
		return Mat33{A: args[0], B: args[2], C: args[4], D: args[1], E: args[3], F: args[5]}, nil
	case "translate":
		switch len(args) {
		case 1:
			return Translate(args[0], 0), nil
		case 2:
			return Translate(args[0], args[1]), nil
		default:
			return Mat33{}, ErrInvalidMatrix
		}
	case "scale":
		switch len(args) {
		case 1:
			return Scale(args[0], args[0]), nil
		case 2:
			return Scale(args[0], args[1]), nil
		default:
			return Mat33{}, ErrInvalidMatrix
		}
	case "rotate":
		if len(args) != 1 {
			return Mat33{}, ErrInvalidMatrix
		}
		return Rotate(deg2rad(args[0])), nil
	case "skewX":
		if len(args) != 1 {
			return Mat33{}, ErrInvalidMatrix
		}
		return Shear(math.Tan(deg2rad(args[0])), 0), nil
	case "skewY":
		if len(args) != 1 {
			return Mat33{}, ErrInvalidMatrix
		}
		return Shear(0, math.Tan(deg2rad(args[0]))), nil
	default:
		return Mat33{}, ErrInvalidMatrix
	}
}

// Determinant returns the determinant of the linear part of m.
func (m Mat33) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse of m. It returns ErrSingularMatrix if m's
// determinant is within epsilon of zero rather than silently returning the
// identity, since a caller relying on an inverse for hit-testing or
// device-to-canvas mapping needs to know the transform could not be undone.
func (m Mat33) Invert() (Mat33, error) {
	det := m.Determinant()
	if math.Abs(det) < 1e-10 {
		return Mat33{}, ErrSingularMatrix
	}

	invDet := 1.0 / det
	return Mat33{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, nil
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Mat33) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsTranslation returns true if the matrix is only a translation.
func (m Mat33) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1
}

// IsTranslationOnly reports whether m has no rotation, scale, or shear
// component, equivalent to IsTranslation but named to match the renderer's
// fast-path naming for "can this be blitted instead of rasterized".
func (m Mat33) IsTranslationOnly() bool {
	return m.IsTranslation()
}

// IsScaleOnly reports whether m's linear part is diagonal: pure scale (or
// scale plus translation), with no rotation or shear.
func (m Mat33) IsScaleOnly() bool {
	return m.B == 0 && m.D == 0
}

// MaxScaleFactor returns the largest singular value of m's linear part: the
// greatest factor by which m can stretch a unit vector in any direction.
// The renderer and stroke builder use this to pick curve-flattening
// tolerance and cache resolution so that device-space detail matches the
// transform's magnification instead of a fixed canvas-space tolerance.
func (m Mat33) MaxScaleFactor() float64 {
	// Singular values of [[A B][D E]] are sqrt of the eigenvalues of
	// M^T * M = [[p q][q r]] where p = A^2+D^2, r = B^2+E^2, q = A*B+D*E.
	p := m.A*m.A + m.D*m.D
	r := m.B*m.B + m.E*m.E
	q := m.A*m.B + m.D*m.E

	sum := p + r
	diff := p - r
	disc := math.Sqrt(diff*diff + 4*q*q)
	maxEigen := (sum + disc) / 2
	if maxEigen < 0 {
		maxEigen = 0
	}
	return math.Sqrt(maxEigen)
}
