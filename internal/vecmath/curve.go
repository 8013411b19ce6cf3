package vecmath

import "math"

// DefaultArcDivisions is the resolution of the arc-length lookup table.
const DefaultArcDivisions = 200

// CatmullRom is an open Catmull-Rom spline through a list of points.
// Tension scales the tangents: 0.5 is the classic uniform spline, smaller
// values hug the control polygon more tightly.
//
// The end tangents are built from points mirrored past each end, so the
// curve passes through every control point including the first and last.
type CatmullRom struct {
	points  []Vec3
	tension float64
	lengths []float64 // cumulative arc length at DefaultArcDivisions+1 samples
}

// NewCatmullRom builds a curve through points. The slice is not copied;
// callers must not mutate it while the curve is in use.
// At least two points are required; fewer yields nil.
func NewCatmullRom(points []Vec3, tension float64) *CatmullRom {
	if len(points) < 2 {
		return nil
	}
	c := &CatmullRom{points: points, tension: tension}
	c.buildLengths(DefaultArcDivisions)
	return c
}

// Point returns the curve position at parameter t in [0, 1].
// The parameter is uniform per control segment, not per unit length.
func (c *CatmullRom) Point(t float64) Vec3 {
	pts := c.points
	l := len(pts)

	p := float64(l-1) * ClampF(t, 0, 1)
	seg := int(math.Floor(p))
	w := p - float64(seg)
	if seg >= l-1 {
		seg = l - 2
		w = 1
	}

	var p0, p3 Vec3
	p1 := pts[seg]
	p2 := pts[seg+1]
	if seg > 0 {
		p0 = pts[seg-1]
	} else {
		p0 = pts[0].Scale(2).Sub(pts[1])
	}
	if seg+2 < l {
		p3 = pts[seg+2]
	} else {
		p3 = pts[l-1].Scale(2).Sub(pts[l-2])
	}

	return Vec3{
		X: c.poly(p0.X, p1.X, p2.X, p3.X, w),
		Y: c.poly(p0.Y, p1.Y, p2.Y, p3.Y, w),
		Z: c.poly(p0.Z, p1.Z, p2.Z, p3.Z, w),
	}
}

// poly evaluates one cubic Hermite component with Catmull-Rom tangents.
func (c *CatmullRom) poly(x0, x1, x2, x3, w float64) float64 {
	t0 := c.tension * (x2 - x0)
	t1 := c.tension * (x3 - x1)
	c0 := x1
	c1 := t0
	c2 := -3*x1 + 3*x2 - 2*t0 - t1
	c3 := 2*x1 - 2*x2 + t0 + t1
	return c0 + w*(c1+w*(c2+w*c3))
}

func (c *CatmullRom) buildLengths(divisions int) {
	c.lengths = make([]float64, divisions+1)
	prev := c.Point(0)
	sum := 0.0
	for i := 1; i <= divisions; i++ {
		cur := c.Point(float64(i) / float64(divisions))
		sum += cur.Dist(prev)
		c.lengths[i] = sum
		prev = cur
	}
}

// Length returns the approximate arc length of the curve.
func (c *CatmullRom) Length() float64 {
	return c.lengths[len(c.lengths)-1]
}

// ParamAt maps an arc-length fraction u in [0, 1] to the curve parameter t.
func (c *CatmullRom) ParamAt(u float64) float64 {
	lengths := c.lengths
	n := len(lengths)
	target := ClampF(u, 0, 1) * lengths[n-1]

	lo, hi := 0, n-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		switch {
		case lengths[mid] < target:
			lo = mid + 1
		case lengths[mid] > target:
			hi = mid - 1
		default:
			return float64(mid) / float64(n-1)
		}
	}
	i := hi
	if i < 0 {
		return 0
	}
	if i >= n-1 {
		return 1
	}
	segLen := lengths[i+1] - lengths[i]
	frac := 0.0
	if segLen > 0 {
		frac = (target - lengths[i]) / segLen
	}
	return (float64(i) + frac) / float64(n-1)
}

// PointAt returns the curve position at arc-length fraction u.
func (c *CatmullRom) PointAt(u float64) Vec3 {
	return c.Point(c.ParamAt(u))
}

// TangentAt returns the unit tangent at arc-length fraction u.
func (c *CatmullRom) TangentAt(u float64) Vec3 {
	const delta = 1e-4
	t := c.ParamAt(u)
	t1 := ClampF(t-delta, 0, 1)
	t2 := ClampF(t+delta, 0, 1)
	return c.Point(t2).Sub(c.Point(t1)).Normalize()
}
