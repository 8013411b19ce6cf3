package worm

import (
	"github.com/cancode/hyperworm/internal/vecmath"
)

// MaxStep is the largest dt a single update integrates.
const MaxStep = 0.033

// Worm is the player entity. It owns its spine, length controller, steering
// and the current tube mesh. One frame is:
//
//	SetDirection (input) → Advance: steering → head move → growth → spine → mesh
type Worm struct {
	cfg      Config
	head     vecmath.Vec3
	spine    *Spine
	growth   *Growth
	steering *Steering
	builder  *TubeBuilder
	mesh     *Mesh
}

// New spawns a worm at pos facing heading with cfg.InitialLength.
func New(cfg Config, pos, heading vecmath.Vec3) *Worm {
	cfg = cfg.withDefaults()
	steering := NewSteering(heading, cfg.SteerBlend)
	w := &Worm{
		cfg:      cfg,
		head:     pos,
		spine:    NewSpine(cfg.MinPointDistance, pos, steering.Heading().Scale(-1)),
		growth:   NewGrowth(cfg.InitialLength, cfg.MinLength, cfg.MaxLength, cfg.GrowRate),
		steering: steering,
		builder:  NewTubeBuilder(cfg),
	}
	w.rebuild()
	return w
}

// Config returns the effective configuration.
func (w *Worm) Config() Config {
	return w.cfg
}

// sanitizeDT rejects non-finite or negative steps and caps long frames.
func sanitizeDT(dt float64) float64 {
	if !vecmath.Finite(dt) || dt < 0 {
		return 0
	}
	if dt > MaxStep {
		return MaxStep
	}
	return dt
}

// Advance steers, moves the head forward at speed units per second and
// updates the body.
func (w *Worm) Advance(dt, speed float64) {
	dt = sanitizeDT(dt)
	w.steering.Update()
	if vecmath.Finite(speed) && speed > 0 {
		w.head = w.head.Add(w.steering.Heading().Scale(speed * dt))
	}
	w.Update(w.head, dt)
}

// Update moves the body to follow head: growth, then spine, then mesh.
// A non-finite head is ignored for this frame.
func (w *Worm) Update(head vecmath.Vec3, dt float64) {
	w.growth.Update(sanitizeDT(dt))
	if !head.Finite() {
		return
	}
	w.head = head
	w.spine.Push(head, w.growth.Current())
	w.rebuild()
}

// rebuild replaces the mesh. The previous mesh is released first so its
// buffers can be reused. A degenerate spine keeps the previous mesh.
func (w *Worm) rebuild() {
	if !w.spine.Buildable() {
		return
	}
	w.mesh.Release()
	w.mesh = w.builder.Build(w.spine.Points())
}

// Reset moves the worm to pos with a fresh two-point spine trailing behind
// the current heading. The visual length jumps to the target length.
func (w *Worm) Reset(pos vecmath.Vec3) {
	if !pos.Finite() {
		return
	}
	w.head = pos
	w.spine.Reset(pos, w.steering.Heading().Scale(-1))
	w.growth.Settle()
	w.rebuild()
}

// Release frees the mesh. The worm must not be updated afterwards.
func (w *Worm) Release() {
	w.mesh.Release()
	w.mesh = nil
}

// Grow extends the target length by amount.
func (w *Worm) Grow(amount float64) {
	w.growth.Grow(amount)
}

// Feed grows by the configured pickup amount.
func (w *Worm) Feed() {
	w.growth.Grow(w.cfg.GrowAmount)
}

// SetTargetLength sets the target length (clamped).
func (w *Worm) SetTargetLength(l float64) {
	w.growth.SetTargetLength(l)
}

// SetDirection feeds 2D steering input.
func (w *Worm) SetDirection(v vecmath.Vec2) {
	w.steering.SetDirection(v)
}

// Turn rotates the desired direction about +Y.
func (w *Worm) Turn(angle float64) {
	w.steering.Turn(angle)
}

// Head returns the head world position.
func (w *Worm) Head() vecmath.Vec3 { return w.head }

// Forward returns the unit heading.
func (w *Worm) Forward() vecmath.Vec3 { return w.steering.Heading() }

// Length returns the smoothed visual length.
func (w *Worm) Length() float64 { return w.growth.Current() }

// TargetLength returns the authoritative length.
func (w *Worm) TargetLength() float64 { return w.growth.Target() }

// GrowthState reports whether the body is growing.
func (w *Worm) GrowthState() GrowthState { return w.growth.State() }

// Spine returns the centreline points, head first. Read only.
func (w *Worm) Spine() []vecmath.Vec3 { return w.spine.Points() }

// Mesh returns the current tube mesh. It may be nil after Release.
func (w *Worm) Mesh() *Mesh { return w.mesh }

// LiveMeshes returns how many meshes this worm holds unreleased.
func (w *Worm) LiveMeshes() int { return w.builder.Live() }

// RadiusAt returns the body radius at fraction t from the head.
func (w *Worm) RadiusAt(t float64) float64 {
	return TaperRadius(w.cfg.BodyRadius, w.cfg.TailRadius, t)
}
