// Package vecmath provides the small amount of vector math the worm body
// needs: 2D/3D vectors, interpolation helpers and a Catmull-Rom curve.
// Vector arithmetic is done by mgl64; the named-field types keep world
// code and JSON snapshots readable.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a 2D vector. Used for steering input (x right, y up).
type Vec2 struct {
	X, Y float64
}

// Len returns the vector length.
func (v Vec2) Len() float64 {
	return mgl64.Vec2{v.X, v.Y}.Len()
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec2) Normalize() Vec2 {
	if v.Len() == 0 {
		return Vec2{}
	}
	n := mgl64.Vec2{v.X, v.Y}.Normalize()
	return Vec2{X: n[0], Y: n[1]}
}

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool {
	return Finite(v.X) && Finite(v.Y)
}

// Vec3 is a 3D vector in world space. Y is up; the floor is the XZ plane.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMGL(m mgl64.Vec3) Vec3 {
	return Vec3{X: m[0], Y: m[1], Z: m[2]}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return fromMGL(v.mgl().Add(o.mgl()))
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return fromMGL(v.mgl().Sub(o.mgl()))
}

func (v Vec3) Scale(s float64) Vec3 {
	return fromMGL(v.mgl().Mul(s))
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.mgl().Dot(o.mgl())
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return fromMGL(v.mgl().Cross(o.mgl()))
}

// Len returns the vector length.
func (v Vec3) Len() float64 {
	return v.mgl().Len()
}

// Dist returns the distance between two points.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// DistSq returns the squared distance between two points.
func (v Vec3) DistSq(o Vec3) float64 {
	d := v.mgl().Sub(o.mgl())
	return d.Dot(d)
}

// PlanarDist returns the distance between two points projected onto the
// floor (XZ) plane.
func (v Vec3) PlanarDist(o Vec3) float64 {
	return mgl64.Vec2{v.X - o.X, v.Z - o.Z}.Len()
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	if v.Len() == 0 {
		return Vec3{}
	}
	return fromMGL(v.mgl().Normalize())
}

// Lerp interpolates from v to o by t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	a := v.mgl()
	return fromMGL(a.Add(o.mgl().Sub(a).Mul(t)))
}

// Finite reports whether all components are finite numbers.
func (v Vec3) Finite() bool {
	return Finite(v.X) && Finite(v.Y) && Finite(v.Z)
}

// RotateY rotates v around the +Y axis by angle radians.
func (v Vec3) RotateY(angle float64) Vec3 {
	return fromMGL(mgl64.Rotate3DY(angle).Mul3x1(v.mgl()))
}

// RotateAxis rotates v around a unit axis by angle radians.
func (v Vec3) RotateAxis(axis Vec3, angle float64) Vec3 {
	return fromMGL(mgl64.QuatRotate(angle, axis.mgl()).Rotate(v.mgl()))
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Damp moves x toward y with exponential decay rate lambda over dt seconds.
// Frame-rate independent and never overshoots for lambda, dt >= 0.
func Damp(x, y, lambda, dt float64) float64 {
	return Lerp(x, y, 1-math.Exp(-lambda*dt))
}

// ClampF restricts v to [lo, hi].
func ClampF(v, lo, hi float64) float64 {
	return mgl64.Clamp(v, lo, hi)
}
