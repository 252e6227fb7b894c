// Package sweep runs the trial controller over every sampled kick speed and
// direction and collects one classified cell per kick.
package sweep

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/charleschow/possession-sim/internal/core/trial"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

const progressInterval = 2 * time.Second

// Observer receives every cell as it completes. Calls are serialized by
// the sweeper, but with more than one worker the order across directions
// is not fixed.
type Observer interface {
	OnCell(c Cell)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Cell)

func (f ObserverFunc) OnCell(c Cell) { f(c) }

// Sweeper owns one sweep over the full grid. The base context is never
// mutated; each worker kicks against its own clone.
type Sweeper struct {
	id        string
	base      *trial.Context
	workers   int
	observers []Observer

	emitMu   sync.Mutex
	done     atomic.Int64
	progress rate.Sometimes
}

// New creates a sweeper. workers <= 1 runs the grid sequentially in
// direction-major order; larger values run direction rows in parallel.
func New(base *trial.Context, workers int, observers ...Observer) *Sweeper {
	if workers < 1 {
		workers = 1
	}
	return &Sweeper{
		id:        uuid.NewString(),
		base:      base,
		workers:   workers,
		observers: observers,
		progress:  rate.Sometimes{Interval: progressInterval},
	}
}

func (s *Sweeper) ID() string { return s.id }

// AddObserver registers o for subsequent runs. Not safe to call during Run.
func (s *Sweeper) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Run kicks every cell of the grid. Each cell starts from freshly reset
// teams. It returns ctx.Err() if cancelled before the grid completes.
func (s *Sweeper) Run(ctx context.Context) (*Map, error) {
	start := time.Now()
	m := &Map{ID: s.id, Cells: make([]Cell, Cells)}
	s.done.Store(0)

	telemetry.Infof("Sweep %s started  cells=%d  workers=%d", s.id, Cells, s.workers)

	var err error
	if s.workers == 1 {
		err = s.runSequential(ctx, m)
	} else {
		err = s.runParallel(ctx, m)
	}
	if err != nil {
		telemetry.Warnf("Sweep %s stopped after %d/%d directions: %v", s.id, s.done.Load(), Directions, err)
		return nil, err
	}

	m.Elapsed = time.Since(start)
	telemetry.Metrics.SweepsRun.Inc()
	telemetry.Metrics.SweepDuration.Record(m.Elapsed)
	telemetry.Infof("Sweep %s finished in %s", s.id, m.Elapsed.Round(time.Millisecond))
	return m, nil
}

func (s *Sweeper) runSequential(ctx context.Context, m *Map) error {
	tc := s.worker()
	for j := 0; j < Directions; j++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runRow(tc, j, m)
	}
	return nil
}

func (s *Sweeper) runParallel(ctx context.Context, m *Map) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for j := 0; j < Directions; j++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.runRow(s.worker(), j, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// errgroup only reports errors from its own goroutines.
	return ctx.Err()
}

func (s *Sweeper) worker() *trial.Context {
	tc := s.base.Clone()
	tc.SkipSnapshots = true
	return tc
}

// runRow kicks every speed for direction j. Rows write disjoint slices of
// m.Cells, so no locking is needed for the map itself.
func (s *Sweeper) runRow(tc *trial.Context, j int, m *Map) {
	dir := Direction(j)
	row := m.Cells[j*Speeds : (j+1)*Speeds]
	for i := range row {
		out := tc.Kick(Speed(i), dir)
		row[i] = newCell(j, i, out)
		s.emit(row[i])
	}

	n := s.done.Add(1)
	s.progress.Do(func() {
		telemetry.Infof("Sweep %s: %d/%d directions", s.id, n, Directions)
	})
}

func (s *Sweeper) emit(c Cell) {
	if len(s.observers) == 0 {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	for _, o := range s.observers {
		o.OnCell(c)
	}
}
