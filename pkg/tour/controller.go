package tour

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/condtour/pkg/debug"
	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
	"github.com/vanderheijden86/condtour/pkg/metrics"
)

// Controller errors.
var (
	ErrEnded     = errors.New("tour: session has ended")
	ErrEmptyPath = errors.New("tour: path has no points")
)

// State is the externally visible tour state. PathIndex is 1-based and
// always within [1, path length].
type State struct {
	PathIndex int
	Bandwidth float64
	Kind      kernel.DistanceKind
}

// Camera is the orthogonal 3-D sub-view orientation. It never affects
// weights; 2-D consumers ignore it.
type Camera struct {
	Azimuth    float64
	Colatitude float64
}

// Snapshot is the read-only state bundle handed to views and to the static
// exporter. Weights is a private copy; mutating it affects nothing.
type Snapshot struct {
	State      State
	PathLength int
	Point      frame.Point
	Weights    []float64
	Centroids  []frame.Point
	Camera     Camera
}

// Controller is the tour state machine. It owns the cursor, the current
// bandwidth, and the precomputed weight matrix; views receive read-only
// snapshots through Subscribe callbacks or on-demand via Snapshot.
//
// All mutation is serialized through the caller's event loop: the
// controller itself holds no locks and must not be shared across
// goroutines.
type Controller struct {
	table *frame.Table
	cols  []string
	path  *Path
	kopts kernel.Options

	state       State
	initialBW   float64
	matrix      [][]float64 // one weight row per path position, at initialBW
	current     []float64   // weight row for state.PathIndex at state.Bandwidth
	camera      Camera
	ended       bool
	subscribers []func(Snapshot)
}

// NewController precomputes the full weight matrix for the session's
// initial bandwidth and positions the cursor at the first path point.
// Precomputation parallelizes across path rows; it is the only concurrent
// code in the engine and finishes before the controller is usable.
func NewController(ctx context.Context, t *frame.Table, condCols []string, path *Path, bandwidth float64, kopts kernel.Options) (*Controller, error) {
	if path == nil || path.Len() == 0 {
		return nil, ErrEmptyPath
	}
	matrix, err := precomputeMatrix(ctx, t, condCols, path, bandwidth, kopts)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		table:     t,
		cols:      condCols,
		path:      path,
		kopts:     kopts,
		state:     State{PathIndex: 1, Bandwidth: bandwidth, Kind: kopts.Kind},
		initialBW: bandwidth,
		matrix:    matrix,
		current:   matrix[0],
	}
	return c, nil
}

func precomputeMatrix(ctx context.Context, t *frame.Table, cols []string, path *Path, bandwidth float64, kopts kernel.Options) ([][]float64, error) {
	defer metrics.Timer(metrics.MatrixPrecompute)()
	defer debug.LogEnterExit("precomputeMatrix")()
	if !(bandwidth > 0) {
		return nil, kernel.ErrBandwidth
	}
	matrix := make([][]float64, path.Len())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, pt := range path.Points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, err := kernel.Weights(pt, t, cols, bandwidth, kopts)
			if err != nil {
				return fmt.Errorf("path position %d: %w", i+1, err)
			}
			matrix[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	debug.Log("precomputed %dx%d weight matrix", path.Len(), t.NumRows())
	return matrix, nil
}

// Subscribe registers a view callback invoked after every successful
// transition. Views pull the slice of state they need from the snapshot.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.subscribers = append(c.subscribers, fn)
}

// State returns the current tour state.
func (c *Controller) State() State { return c.state }

// Ended reports whether End has been called.
func (c *Controller) Ended() bool { return c.ended }

// PathLength returns the number of dense path positions.
func (c *Controller) PathLength() int { return c.path.Len() }

// CurrentPoint returns the active conditioning point.
func (c *Controller) CurrentPoint() frame.Point {
	return c.path.Points[c.state.PathIndex-1]
}

// Advance moves the cursor one position forward. At the final position the
// transition is a silent no-op, not an error.
func (c *Controller) Advance() {
	c.moveTo(c.state.PathIndex + 1)
}

// Retreat moves the cursor one position back, clamped at the first
// position.
func (c *Controller) Retreat() {
	c.moveTo(c.state.PathIndex - 1)
}

// JumpTo moves the cursor straight to position i (1-based), clamped to the
// path bounds. Used by pointer navigation on the diagnostic strip.
func (c *Controller) JumpTo(i int) {
	c.moveTo(i)
}

func (c *Controller) moveTo(i int) {
	if c.ended {
		return
	}
	if i < 1 {
		i = 1
	}
	if l := c.path.Len(); i > l {
		i = l
	}
	if i == c.state.PathIndex {
		return
	}
	row, err := c.weightRow(i)
	if err != nil {
		// Post-setup the kernel cannot fail on session columns; leave
		// state untouched rather than show a half-applied transition.
		debug.Log("moveTo(%d): %v", i, err)
		return
	}
	c.state.PathIndex = i
	c.current = row
	c.notify()
}

// weightRow returns the weights for path position i (1-based). While the
// bandwidth still matches the precomputed matrix the row is served from
// the matrix; after an interactive bandwidth change rows are recomputed
// on demand.
func (c *Controller) weightRow(i int) ([]float64, error) {
	if c.matrix != nil && c.state.Bandwidth == c.initialBW {
		return c.matrix[i-1], nil
	}
	defer metrics.Timer(metrics.WeightRecompute)()
	return kernel.Weights(c.path.Points[i-1], c.table, c.cols, c.state.Bandwidth, c.kopts)
}

// AdjustBandwidth applies a multiplicative nudge: bandwidth *= (1+delta).
// Only the weight row for the current path position is recomputed; the
// precomputed matrix stays untouched and is reused only if the bandwidth
// returns to its initial value. A nudge that would make the bandwidth
// non-positive fails and leaves the state unchanged.
func (c *Controller) AdjustBandwidth(delta float64) error {
	if c.ended {
		return ErrEnded
	}
	nb := c.state.Bandwidth * (1 + delta)
	if !(nb > 0) {
		return fmt.Errorf("tour: bandwidth %g * (1%+g) is not positive: %w", c.state.Bandwidth, delta, kernel.ErrBandwidth)
	}
	defer metrics.Timer(metrics.WeightRecompute)()
	start := time.Now()
	row, err := kernel.Weights(c.CurrentPoint(), c.table, c.cols, nb, c.kopts)
	if err != nil {
		return err
	}
	debug.LogTiming("bandwidth recompute", time.Since(start))
	c.state.Bandwidth = nb
	c.current = row
	c.notify()
	return nil
}

// Orbit rotates the linked 3-D perspective sub-view. Pure local state: no
// weight recomputation, no effect on the cursor.
func (c *Controller) Orbit(dAzimuth, dColatitude float64) {
	if c.ended {
		return
	}
	c.camera.Azimuth += dAzimuth
	c.camera.Colatitude += dColatitude
	c.notify()
}

// Snapshot returns a read-only bundle of the current state. Safe to call
// in any state, including immediately after JumpTo and after End.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:      c.state,
		PathLength: c.path.Len(),
		Point:      c.CurrentPoint().Clone(),
		Centroids:  c.path.Centroids,
		Camera:     c.camera,
	}
	if c.current != nil {
		s.Weights = append([]float64(nil), c.current...)
	}
	return s
}

// MatrixRow exposes one precomputed weight row for diagnostics and tests.
// The returned slice must not be mutated. Nil once End has run or when i
// is out of range.
func (c *Controller) MatrixRow(i int) []float64 {
	if c.matrix == nil || i < 1 || i > len(c.matrix) {
		return nil
	}
	return c.matrix[i-1]
}

// End terminates the session and releases the precomputed matrix. All
// further transitions are rejected; Snapshot keeps working on the last
// state.
func (c *Controller) End() {
	if c.ended {
		return
	}
	// Keep the current row alive for post-end snapshots, drop the rest.
	c.current = append([]float64(nil), c.current...)
	c.matrix = nil
	c.ended = true
}

func (c *Controller) notify() {
	snap := c.Snapshot()
	for _, fn := range c.subscribers {
		fn(snap)
	}
}
