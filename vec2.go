package vecboard

import "math"

// Vec2 represents a 2D point or displacement vector. Canvas geometry,
// stroke synthesis, and matrix transforms all operate on Vec2; there is no
// separate position/direction type because every position is just the
// displacement from the origin.
type Vec2 struct {
	X, Y float64
}

// Pt is a convenience constructor for Vec2, commonly used for positions.
func Pt(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// V2 is a convenience constructor for Vec2, commonly used for directions.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Div returns the vector divided by a scalar.
func (v Vec2) Div(s float64) Vec2 {
	return Vec2{X: v.X / s, Y: v.Y / s}
}

// Neg returns the negation of the vector.
func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the 2D cross product (scalar), the z-component of the 3D
// cross product with z=0.
func (v Vec2) Cross(w Vec2) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Length returns the length (magnitude) of the vector.
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns the squared length of the vector.
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the distance between two points.
func (v Vec2) Distance(w Vec2) float64 {
	return v.Sub(w).Length()
}

// DistanceSquared returns the squared distance between two points.
func (v Vec2) DistanceSquared(w Vec2) float64 {
	return v.Sub(w).LengthSquared()
}

// Normalize returns a unit vector in the same direction, or the zero vector
// if v has zero length.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Lerp performs linear interpolation between two vectors: t=0 returns v,
// t=1 returns w.
func (v Vec2) Lerp(w Vec2, t float64) Vec2 {
	return Vec2{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// Rotate returns the vector rotated by angle radians around the origin.
func (v Vec2) Rotate(angle float64) Vec2 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Atan2 returns the angle of the vector in radians.
func (v Vec2) Atan2() float64 {
	return math.Atan2(v.Y, v.X)
}

// Angle returns the signed angle between two vectors in radians.
func (v Vec2) Angle(w Vec2) float64 {
	return math.Atan2(v.Cross(w), v.Dot(w))
}

// IsZero reports whether v is the zero vector.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Approx reports whether two vectors are equal within epsilon on each axis.
func (v Vec2) Approx(w Vec2, epsilon float64) bool {
	return math.Abs(v.X-w.X) < epsilon && math.Abs(v.Y-w.Y) < epsilon
}

// Vec3 is a homogeneous 2D point (x, y, w) used for Mat33 transforms.
type Vec3 struct {
	X, Y, W float64
}

// V3 constructs a Vec3.
func V3(x, y, w float64) Vec3 {
	return Vec3{X: x, Y: y, W: w}
}

// ToVec2 projects a homogeneous Vec3 back to Vec2, dividing by W.
// A zero W returns the X, Y components unchanged.
func (v Vec3) ToVec2() Vec2 {
	if v.W == 0 || v.W == 1 {
		return Vec2{X: v.X, Y: v.Y}
	}
	return Vec2{X: v.X / v.W, Y: v.Y / v.W}
}
