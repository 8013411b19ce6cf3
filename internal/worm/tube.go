package worm

import (
	"math"

	"github.com/cancode/hyperworm/internal/vecmath"
)

// TaperRadius returns the tube radius at fraction t of the distance from the
// head. The falloff is quadratic so the tail tip does not pinch.
func TaperRadius(bodyRadius, tailRadius, t float64) float64 {
	t = vecmath.ClampF(t, 0, 1)
	return vecmath.Lerp(bodyRadius, tailRadius, t*t)
}

// Ring is one cross-section of the tube.
type Ring struct {
	Center   vecmath.Vec3
	Radius   float64
	Tangent  vecmath.Vec3 // points from head toward tail
	Normal   vecmath.Vec3
	Binormal vecmath.Vec3
}

// Mesh is a triangulated tube surface. A Mesh is immutable once built and
// becomes invalid after Release.
type Mesh struct {
	Positions []vecmath.Vec3
	Normals   []vecmath.Vec3
	Indices   []uint32
	Rings     []Ring
	Length    float64 // arc length of the fitted curve

	released bool
	owner    *TubeBuilder
}

// Release returns the mesh buffers to the builder that produced it.
// The mesh must not be used afterwards. Releasing twice is a no-op.
func (m *Mesh) Release() {
	if m == nil || m.released {
		return
	}
	m.released = true
	if m.owner != nil {
		m.owner.recycle(m)
	}
	m.Positions, m.Normals, m.Indices, m.Rings = nil, nil, nil, nil
	m.owner = nil
}

// Released reports whether Release has been called.
func (m *Mesh) Released() bool {
	return m.released
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// meshBuffers are the reusable backing arrays of a released mesh.
type meshBuffers struct {
	positions []vecmath.Vec3
	normals   []vecmath.Vec3
	indices   []uint32
	rings     []Ring
}

// maxFreeBuffers bounds the builder's recycle list.
const maxFreeBuffers = 2

// TubeBuilder fits a Catmull-Rom curve through a spine and skins it with a
// tapered tube.
type TubeBuilder struct {
	BodyRadius      float64
	TailRadius      float64
	RadialSegments  int
	TubularSegments int
	Tension         float64

	free  []meshBuffers
	built int
	freed int
}

// NewTubeBuilder creates a builder from worm parameters.
func NewTubeBuilder(cfg Config) *TubeBuilder {
	cfg = cfg.withDefaults()
	return &TubeBuilder{
		BodyRadius:      cfg.BodyRadius,
		TailRadius:      cfg.TailRadius,
		RadialSegments:  cfg.RadialSegments,
		TubularSegments: cfg.TubularSegments,
		Tension:         cfg.CurveTension,
	}
}

// Live returns the number of meshes built and not yet released.
func (b *TubeBuilder) Live() int {
	return b.built - b.freed
}

func (b *TubeBuilder) recycle(m *Mesh) {
	b.freed++
	if len(b.free) >= maxFreeBuffers {
		return
	}
	b.free = append(b.free, meshBuffers{
		positions: m.Positions[:0],
		normals:   m.Normals[:0],
		indices:   m.Indices[:0],
		rings:     m.Rings[:0],
	})
}

func (b *TubeBuilder) buffers() meshBuffers {
	if n := len(b.free); n > 0 {
		buf := b.free[n-1]
		b.free = b.free[:n-1]
		return buf
	}
	verts := (b.TubularSegments + 1) * (b.RadialSegments + 1)
	return meshBuffers{
		positions: make([]vecmath.Vec3, 0, verts),
		normals:   make([]vecmath.Vec3, 0, verts),
		indices:   make([]uint32, 0, b.TubularSegments*b.RadialSegments*6),
		rings:     make([]Ring, 0, b.TubularSegments+1),
	}
}

// Build produces a new mesh for spine (head first). It returns nil when the
// spine is degenerate (fewer than two points or zero length).
func (b *TubeBuilder) Build(spine []vecmath.Vec3) *Mesh {
	curve := vecmath.NewCatmullRom(spine, b.Tension)
	if curve == nil || curve.Length() < 1e-9 {
		return nil
	}

	n := b.TubularSegments
	radial := b.RadialSegments
	tangents, normals, binormals := b.frames(curve, n)

	buf := b.buffers()
	m := &Mesh{
		Positions: buf.positions,
		Normals:   buf.normals,
		Indices:   buf.indices,
		Rings:     buf.rings,
		Length:    curve.Length(),
		owner:     b,
	}

	for i := 0; i <= n; i++ {
		u := float64(i) / float64(n)
		center := curve.PointAt(u)
		r := TaperRadius(b.BodyRadius, b.TailRadius, u)
		m.Rings = append(m.Rings, Ring{
			Center:   center,
			Radius:   r,
			Tangent:  tangents[i],
			Normal:   normals[i],
			Binormal: binormals[i],
		})

		for j := 0; j <= radial; j++ {
			v := float64(j) / float64(radial) * 2 * math.Pi
			sin, cos := math.Sin(v), -math.Cos(v)
			dir := normals[i].Scale(cos).Add(binormals[i].Scale(sin)).Normalize()
			m.Positions = append(m.Positions, center.Add(dir.Scale(r)))
			m.Normals = append(m.Normals, vecmath.Vec3{})
		}
	}

	stride := uint32(radial + 1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= radial; j++ {
			a := stride*uint32(i-1) + uint32(j-1)
			bb := stride*uint32(i) + uint32(j-1)
			c := stride*uint32(i) + uint32(j)
			d := stride*uint32(i-1) + uint32(j)
			m.Indices = append(m.Indices, a, bb, d, bb, c, d)
		}
	}

	b.computeNormals(m)
	b.built++
	return m
}

// frames computes parallel-transport frames at n+1 arc-length samples.
func (b *TubeBuilder) frames(curve *vecmath.CatmullRom, n int) (tangents, normals, binormals []vecmath.Vec3) {
	tangents = make([]vecmath.Vec3, n+1)
	normals = make([]vecmath.Vec3, n+1)
	binormals = make([]vecmath.Vec3, n+1)

	for i := 0; i <= n; i++ {
		t := curve.TangentAt(float64(i) / float64(n))
		if t == (vecmath.Vec3{}) && i > 0 {
			t = tangents[i-1]
		}
		tangents[i] = t
	}
	if tangents[0] == (vecmath.Vec3{}) {
		for i := 1; i <= n; i++ {
			if tangents[i] != (vecmath.Vec3{}) {
				tangents[0] = tangents[i]
				break
			}
		}
	}

	// Seed the first normal from the axis least aligned with the tangent.
	t0 := tangents[0]
	ax, ay, az := math.Abs(t0.X), math.Abs(t0.Y), math.Abs(t0.Z)
	axis := vecmath.V3(0, 0, 1)
	switch {
	case ax <= ay && ax <= az:
		axis = vecmath.V3(1, 0, 0)
	case ay <= az:
		axis = vecmath.V3(0, 1, 0)
	}
	side := t0.Cross(axis).Normalize()
	normals[0] = t0.Cross(side)
	binormals[0] = t0.Cross(normals[0])

	for i := 1; i <= n; i++ {
		normals[i] = normals[i-1]
		axis := tangents[i-1].Cross(tangents[i])
		if axis.Len() > 1e-9 {
			axis = axis.Normalize()
			theta := math.Acos(vecmath.ClampF(tangents[i-1].Dot(tangents[i]), -1, 1))
			normals[i] = normals[i].RotateAxis(axis, theta)
		}
		binormals[i] = tangents[i].Cross(normals[i])
	}
	return tangents, normals, binormals
}

// computeNormals accumulates area-weighted face normals per vertex and
// welds the duplicated seam column of each ring.
func (b *TubeBuilder) computeNormals(m *Mesh) {
	for k := 0; k+2 < len(m.Indices); k += 3 {
		ia, ib, ic := m.Indices[k], m.Indices[k+1], m.Indices[k+2]
		pa, pb, pc := m.Positions[ia], m.Positions[ib], m.Positions[ic]
		fn := pc.Sub(pb).Cross(pa.Sub(pb))
		m.Normals[ia] = m.Normals[ia].Add(fn)
		m.Normals[ib] = m.Normals[ib].Add(fn)
		m.Normals[ic] = m.Normals[ic].Add(fn)
	}

	stride := b.RadialSegments + 1
	for i, ring := range m.Rings {
		first, last := i*stride, i*stride+b.RadialSegments
		seam := m.Normals[first].Add(m.Normals[last])
		m.Normals[first], m.Normals[last] = seam, seam

		for j := 0; j < stride; j++ {
			idx := i*stride + j
			nrm := m.Normals[idx].Normalize()
			if nrm == (vecmath.Vec3{}) {
				nrm = m.Positions[idx].Sub(ring.Center).Normalize()
			}
			m.Normals[idx] = nrm
		}
	}
}
