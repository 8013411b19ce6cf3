// Package replay records runs as zstd-compressed JSON lines and plays them
// back against a fresh game to check that the simulation is deterministic.
//
// A file starts with one header line, continues with one line per tick and
// ends with an end line. Every tick line carries the input of that tick and
// a digest of the game snapshot taken after stepping it.
package replay

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/cancode/hyperworm/internal/core"
)

// Version is the file format version written to headers.
const Version = 1

// Ext is the conventional replay file extension.
const Ext = ".jsonl.zst"

var (
	// ErrBadHeader is returned when a file does not start with a valid header.
	ErrBadHeader = errors.New("replay: missing or invalid header")
	// ErrVersion is returned for files written by an unknown format version.
	ErrVersion = errors.New("replay: unsupported version")
	// ErrClosed is returned when writing to a closed recorder.
	ErrClosed = errors.New("replay: recorder closed")
)

// Line kinds.
const (
	KindHeader = "header"
	KindTick   = "tick"
	KindEnd    = "end"
)

// Header describes the run a file was recorded from.
type Header struct {
	Version   int             `json:"version"`
	RunID     string          `json:"run_id"`
	GameID    string          `json:"game_id"`
	Seed      int64           `json:"seed"`
	TickRate  int             `json:"tick_rate"`
	ScreenW   int             `json:"screen_w"`
	ScreenH   int             `json:"screen_h"`
	Config    json.RawMessage `json:"config,omitempty"`
	StartedAt time.Time       `json:"started_at"`
}

// Runtime returns the runtime config the run was reset with.
func (h Header) Runtime() core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  h.ScreenW,
		ScreenH:  h.ScreenH,
		TickRate: h.TickRate,
		Seed:     h.Seed,
	}
}

// Tick is one recorded simulation step.
type Tick struct {
	Tick    uint64      `json:"tick"`
	Actions []string    `json:"actions,omitempty"`
	Steer   *[2]float64 `json:"steer,omitempty"`
	Resize  *[2]int     `json:"resize,omitempty"` // screen size applied before the step
	Score   int         `json:"score"`
	Digest  string      `json:"digest,omitempty"`
}

// Input rebuilds the frame that was fed to the game. Unknown action names
// are skipped.
func (t Tick) Input() core.InputFrame {
	in := core.NewInputFrame()
	for _, name := range t.Actions {
		if a, ok := core.ParseAction(name); ok {
			in.Set(a)
		}
	}
	if t.Steer != nil {
		in.SetSteer(t.Steer[0], t.Steer[1])
	}
	return in
}

// End closes a recording.
type End struct {
	Ticks   uint64    `json:"ticks"`
	Score   int       `json:"score"`
	Outcome string    `json:"outcome"`
	EndedAt time.Time `json:"ended_at"`
}

type line struct {
	Kind   string  `json:"kind"`
	Header *Header `json:"header,omitempty"`
	Tick   *Tick   `json:"tick,omitempty"`
	End    *End    `json:"end,omitempty"`
}

// Digest hashes the JSON encoding of a game observation.
func Digest(observation any) (string, error) {
	b, err := json.Marshal(observation)
	if err != nil {
		return "", fmt.Errorf("replay: digest: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8]), nil
}

// Recorder writes a replay file. It is safe for concurrent use.
type Recorder struct {
	path string

	mu      sync.Mutex
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	ticks   uint64
	score   int
	pending *[2]int
	closed  bool
}

// Create opens path for writing and writes the header.
func Create(path string, h Header) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("replay: cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot create %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("replay: zstd: %w", err)
	}

	r := &Recorder{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}
	h.Version = Version
	if h.StartedAt.IsZero() {
		h.StartedAt = time.Now().UTC()
	}
	if err := r.writeLocked(line{Kind: KindHeader, Header: &h}); err != nil {
		_ = r.closeLocked()
		return nil, err
	}
	return r, nil
}

// Path returns the file being written.
func (r *Recorder) Path() string {
	return r.path
}

// Resize notes a screen size change. It is stored with the next tick.
func (r *Recorder) Resize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &[2]int{w, h}
}

// Record appends one tick: the input fed to the game and a digest of its
// observation after the step. A nil observation records no digest.
func (r *Recorder) Record(tick uint64, in core.InputFrame, score int, observation any) error {
	t := Tick{Tick: tick, Score: score}
	for _, a := range in.List() {
		t.Actions = append(t.Actions, a.String())
	}
	if in.HasSteer {
		t.Steer = &[2]float64{in.SteerX, in.SteerY}
	}
	if observation != nil {
		d, err := Digest(observation)
		if err != nil {
			return err
		}
		t.Digest = d
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	t.Resize, r.pending = r.pending, nil
	r.ticks++
	r.score = score
	return r.writeLocked(line{Kind: KindTick, Tick: &t})
}

// Close writes the end line and flushes the file. Closing twice is a no-op.
func (r *Recorder) Close(outcome string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	err := r.writeLocked(line{Kind: KindEnd, End: &End{
		Ticks:   r.ticks,
		Score:   r.score,
		Outcome: outcome,
		EndedAt: time.Now().UTC(),
	}})
	if cerr := r.closeLocked(); err == nil {
		err = cerr
	}
	return err
}

func (r *Recorder) writeLocked(l line) error {
	b, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("replay: marshal: %w", err)
	}
	if _, err := r.w.Write(b); err != nil {
		return fmt.Errorf("replay: write: %w", err)
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("replay: write: %w", err)
	}
	return nil
}

func (r *Recorder) closeLocked() error {
	r.closed = true
	var err error
	if r.w != nil {
		err = r.w.Flush()
	}
	if r.enc != nil {
		if cerr := r.enc.Close(); err == nil {
			err = cerr
		}
	}
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("replay: close: %w", err)
	}
	return nil
}

// Reader reads a replay file line by line.
type Reader struct {
	f      *os.File
	dec    *zstd.Decoder
	sc     *bufio.Scanner
	header Header
	end    *End
}

// Open opens a replay file and reads its header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot open %s: %w", path, err)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("replay: zstd: %w", err)
	}

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	r := &Reader{f: f, dec: dec, sc: sc}

	l, err := r.next()
	if err != nil || l.Kind != KindHeader || l.Header == nil {
		r.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
		return nil, ErrBadHeader
	}
	if l.Header.Version != Version {
		r.Close()
		return nil, fmt.Errorf("%w: %d", ErrVersion, l.Header.Version)
	}
	r.header = *l.Header
	return r, nil
}

// Header returns the run header.
func (r *Reader) Header() Header {
	return r.header
}

// End returns the end line once Next has returned io.EOF. A recording cut
// short by a crash has no end line and End returns nil.
func (r *Reader) End() *End {
	return r.end
}

// Next returns the next tick, or io.EOF after the last one.
func (r *Reader) Next() (Tick, error) {
	for {
		l, err := r.next()
		if err != nil {
			return Tick{}, err
		}
		switch l.Kind {
		case KindTick:
			if l.Tick != nil {
				return *l.Tick, nil
			}
		case KindEnd:
			r.end = l.End
			return Tick{}, io.EOF
		}
	}
}

func (r *Reader) next() (line, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return line{}, fmt.Errorf("replay: read: %w", err)
		}
		return line{}, io.EOF
	}
	var l line
	if err := json.Unmarshal(r.sc.Bytes(), &l); err != nil {
		return line{}, fmt.Errorf("replay: unmarshal: %w", err)
	}
	return l, nil
}

// Close releases the file.
func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
