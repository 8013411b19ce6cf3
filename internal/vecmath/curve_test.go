package vecmath

import (
	"math"
	"testing"
)

func TestCatmullRomNeedsTwoPoints(t *testing.T) {
	if c := NewCatmullRom([]Vec3{V3(0, 0, 0)}, 0.4); c != nil {
		t.Error("expected nil curve for a single point")
	}
	if c := NewCatmullRom(nil, 0.4); c != nil {
		t.Error("expected nil curve for no points")
	}
}

func TestCatmullRomPassesThroughEndpoints(t *testing.T) {
	pts := []Vec3{V3(0, 0, 0), V3(1, 0, 0.5), V3(2, 0, 0), V3(3, 0, -1)}
	c := NewCatmullRom(pts, 0.4)

	if p := c.Point(0); p.Dist(pts[0]) > 1e-9 {
		t.Errorf("Point(0) = %v, expected %v", p, pts[0])
	}
	if p := c.Point(1); p.Dist(pts[3]) > 1e-9 {
		t.Errorf("Point(1) = %v, expected %v", p, pts[3])
	}
	// Interior control points sit at t = i/(n-1).
	if p := c.Point(1.0 / 3); p.Dist(pts[1]) > 1e-9 {
		t.Errorf("Point(1/3) = %v, expected %v", p, pts[1])
	}
}

func TestCatmullRomStraightLineLength(t *testing.T) {
	pts := []Vec3{V3(0, 0, 0), V3(0, 0, 1), V3(0, 0, 2), V3(0, 0, 3)}
	c := NewCatmullRom(pts, 0.4)

	if got := c.Length(); math.Abs(got-3) > 1e-6 {
		t.Errorf("Length() = %v, expected 3", got)
	}
	// Arc-length sampling is uniform along a straight line.
	if p := c.PointAt(0.5); math.Abs(p.Z-1.5) > 1e-3 {
		t.Errorf("PointAt(0.5).Z = %v, expected 1.5", p.Z)
	}
}

func TestCatmullRomTangent(t *testing.T) {
	pts := []Vec3{V3(0, 0, 0), V3(1, 0, 0)}
	c := NewCatmullRom(pts, 0.4)

	for _, u := range []float64{0, 0.25, 0.5, 1} {
		tan := c.TangentAt(u)
		if tan.Dist(V3(1, 0, 0)) > 1e-6 {
			t.Errorf("TangentAt(%v) = %v, expected (1, 0, 0)", u, tan)
		}
	}
}

func TestParamAtMonotonic(t *testing.T) {
	pts := []Vec3{V3(0, 0, 0), V3(0.1, 0, 1), V3(1, 0, 1.2), V3(3, 0, 0)}
	c := NewCatmullRom(pts, 0.4)

	prev := -1.0
	for i := 0; i <= 50; i++ {
		p := c.ParamAt(float64(i) / 50)
		if p < prev {
			t.Fatalf("ParamAt not monotonic at step %d: %v < %v", i, p, prev)
		}
		prev = p
	}
}
