package sweep

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/charleschow/possession-sim/internal/core/formation"
	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/trial"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

func base(t *testing.T) *trial.Context {
	t.Helper()
	ctx, err := formation.Anfield().Build()
	require.NoError(t, err)
	return ctx
}

func TestGridParameters(t *testing.T) {
	assert.Equal(t, 20480, Cells)
	assert.Zero(t, Direction(0))
	assert.InDelta(t, math.Pi, Direction(128), 1e-12)
	assert.InDelta(t, 2*math.Pi*255/256, Direction(255), 1e-12)
	assert.Zero(t, Speed(0))
	assert.Equal(t, 19.75, Speed(79))
}

type countingObserver struct {
	mu    sync.Mutex
	seen  map[[2]int]int
	total int
}

func (o *countingObserver) OnCell(c Cell) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = make(map[[2]int]int)
	}
	o.seen[[2]int{c.DirIndex, c.SpeedIndex}]++
	o.total++
}

func TestSweepRunsEveryCellOnce(t *testing.T) {
	obs := &countingObserver{}
	before := telemetry.Metrics.TrialsRun.Value()

	m, err := New(base(t), 1, obs).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(Cells), telemetry.Metrics.TrialsRun.Value()-before)
	assert.Equal(t, Cells, obs.total)
	assert.Len(t, obs.seen, Cells)
	require.Len(t, m.Cells, Cells)

	for j := 0; j < Directions; j += 17 {
		for i := 0; i < Speeds; i += 7 {
			c := m.At(j, i)
			assert.Equal(t, j, c.DirIndex)
			assert.Equal(t, i, c.SpeedIndex)
		}
	}
}

func TestSweepCellsMatchFreshKicks(t *testing.T) {
	// Every cell must see freshly reset teams: re-kicking a cell from a
	// brand new context gives the same result.
	m, err := New(base(t), 1).Run(context.Background())
	require.NoError(t, err)

	for j := 0; j < Directions; j += 13 {
		for i := 0; i < Speeds; i += 11 {
			fresh := base(t).Kick(Speed(i), Direction(j))
			c := m.At(j, i)
			assert.Equal(t, fresh.Status, c.Status, "cell %d,%d", j, i)
			assert.Equal(t, fresh.Side, c.Side, "cell %d,%d", j, i)
			assert.Equal(t, fresh.Probability, c.Probability, "cell %d,%d", j, i)
			assert.Equal(t, fresh.Steps, c.Steps, "cell %d,%d", j, i)
		}
	}
}

func TestSweepLeavesBaseUntouched(t *testing.T) {
	b := base(t)
	_, err := New(b, 1).Run(context.Background())
	require.NoError(t, err)
	for _, p := range append(b.Red.Players, b.Blue.Players...) {
		assert.Equal(t, physics.RestingReach, p.Reach)
		assert.False(t, p.Excluded)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	seq, err := New(base(t), 1).Run(context.Background())
	require.NoError(t, err)
	par, err := New(base(t), 8).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seq.Cells, par.Cells)
	assert.Equal(t, seq.Summary(), par.Summary())
}

func TestSweepSummaryShape(t *testing.T) {
	m, err := New(base(t), 4).Run(context.Background())
	require.NoError(t, err)

	s := m.Summary()
	assert.Equal(t, Cells, s.Total)
	assert.Equal(t, s.Total, s.Red+s.Blue+s.LeftPitch+s.Exhausted)
	// The kicking side wins most of the map from this position.
	assert.Greater(t, s.Red, s.Blue)
	assert.Greater(t, s.LeftPitch, 0)
	assert.Greater(t, s.Exclusions, 0)
	assert.GreaterOrEqual(t, s.MeanConfidence, 0.7)
	assert.LessOrEqual(t, s.MeanConfidence, 0.99)

	// A dead ball is always the kicker's.
	for j := 0; j < Directions; j++ {
		c := m.At(j, 0)
		assert.Equal(t, physics.SideRed, c.Side, "direction %d", j)
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		m, err := New(base(t), workers).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, m)
	}
}

func TestSweeperIDsAreUnique(t *testing.T) {
	a := New(base(t), 1)
	b := New(base(t), 0)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 1, b.workers)
}

func TestWriteYAML(t *testing.T) {
	m := &Map{ID: "test", Cells: []Cell{
		{DirIndex: 0, SpeedIndex: 0, Status: trial.StatusResolved, Side: physics.SideRed, Probability: 0.976},
		{DirIndex: 0, SpeedIndex: 1, Status: trial.StatusLeftPitch},
	}}

	var buf bytes.Buffer
	require.NoError(t, m.WriteYAML(&buf, "anfield"))

	var doc Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "anfield", doc.Formation)
	assert.Equal(t, Directions, doc.Directions)
	assert.Equal(t, 1, doc.Summary.Red)
	assert.Equal(t, 1, doc.Summary.LeftPitch)
	assert.Contains(t, buf.String(), "status: left_pitch")
}
