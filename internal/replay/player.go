package replay

import (
	"errors"
	"fmt"
	"io"

	"github.com/cancode/hyperworm/internal/core"
	"github.com/cancode/hyperworm/internal/registry"
)

var (
	// ErrDigestMismatch is returned when a replayed tick diverges from the recording.
	ErrDigestMismatch = errors.New("replay: digest mismatch")
	// ErrTickOrder is returned when tick numbers do not increase.
	ErrTickOrder = errors.New("replay: ticks out of order")
)

// Result summarizes a playback.
type Result struct {
	Ticks   uint64 // ticks stepped
	Checked uint64 // ticks whose digest was compared
	State   core.GameState
}

// Play resets g from the header and steps it through every recorded tick.
// With verify set, each digest in the file is compared against the game's
// observation after the step and the first divergence is returned as
// ErrDigestMismatch. onTick, when non-nil, runs after every step.
func Play(r *Reader, g registry.Game, verify bool, onTick func(Tick, core.StepResult)) (Result, error) {
	h := r.Header()
	g.Reset(h.Runtime())

	obs, observable := g.(registry.Observable)
	resizable, canResize := g.(registry.Resizable)

	var res Result
	var last uint64
	for {
		t, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		if res.Ticks > 0 && t.Tick <= last {
			return res, fmt.Errorf("%w: %d after %d", ErrTickOrder, t.Tick, last)
		}
		last = t.Tick

		if t.Resize != nil && canResize {
			resizable.Resize(t.Resize[0], t.Resize[1])
		}
		step := g.Step(t.Input())
		res.Ticks++
		res.State = step.State

		if verify && observable && t.Digest != "" {
			got, err := Digest(obs.Observe())
			if err != nil {
				return res, err
			}
			if got != t.Digest {
				return res, fmt.Errorf("%w at tick %d: got %s, recorded %s", ErrDigestMismatch, t.Tick, got, t.Digest)
			}
			res.Checked++
		}

		if onTick != nil {
			onTick(t, step)
		}
	}
	return res, nil
}
