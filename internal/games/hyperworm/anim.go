package hyperworm

// AnimState is the lifecycle of an Animation.
type AnimState int

const (
	AnimIdle AnimState = iota
	AnimRunning
	AnimDone
	AnimCancelled
)

func (s AnimState) String() string {
	switch s {
	case AnimIdle:
		return "idle"
	case AnimRunning:
		return "running"
	case AnimDone:
		return "done"
	case AnimCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Animation is a fixed-duration timeline advanced by the simulation step.
// It never schedules itself; the owner calls Advance once per tick.
type Animation struct {
	duration float64
	elapsed  float64
	state    AnimState
}

// NewAnimation creates an idle animation lasting duration seconds.
func NewAnimation(duration float64) *Animation {
	return &Animation{duration: max(duration, 0)}
}

// Start (re)starts the timeline from zero.
func (a *Animation) Start() {
	a.elapsed = 0
	a.state = AnimRunning
	if a.duration == 0 {
		a.state = AnimDone
	}
}

// Advance moves the timeline forward by dt seconds and reports whether the
// animation finished during this call.
func (a *Animation) Advance(dt float64) bool {
	if a.state != AnimRunning || dt <= 0 {
		return false
	}
	a.elapsed += dt
	if a.elapsed >= a.duration {
		a.elapsed = a.duration
		a.state = AnimDone
		return true
	}
	return false
}

// Cancel stops a running animation. Progress jumps to 1 so anything scaled
// by it lands in its final pose.
func (a *Animation) Cancel() {
	if a.state == AnimRunning || a.state == AnimIdle {
		a.state = AnimCancelled
	}
}

// Progress returns the normalized time in [0, 1].
func (a *Animation) Progress() float64 {
	switch a.state {
	case AnimIdle:
		return 0
	case AnimDone, AnimCancelled:
		return 1
	}
	if a.duration == 0 {
		return 1
	}
	return a.elapsed / a.duration
}

// Done reports whether the animation completed or was cancelled.
func (a *Animation) Done() bool {
	return a.state == AnimDone || a.state == AnimCancelled
}

// Running reports whether the animation is in progress.
func (a *Animation) Running() bool {
	return a.state == AnimRunning
}

// State returns the lifecycle state.
func (a *Animation) State() AnimState {
	return a.state
}
