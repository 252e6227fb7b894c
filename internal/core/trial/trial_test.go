package trial_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/possession-sim/internal/core/formation"
	"github.com/charleschow/possession-sim/internal/core/intercept"
	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/trial"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

func anfield(t *testing.T) *trial.Context {
	t.Helper()
	ctx, err := formation.Anfield().Build()
	require.NoError(t, err)
	return ctx
}

// custom builds a context with one-off rosters and no kicker geometry.
func custom(red, blue [][2]float64) *trial.Context {
	r := physics.NewTeam(physics.SideRed, formation.RedColor, physics.TieFirst)
	for _, p := range red {
		r.AddPlayer(p[0], p[1])
	}
	b := physics.NewTeam(physics.SideBlue, formation.BlueColor, physics.TieLast)
	for _, p := range blue {
		b.AddPlayer(p[0], p[1])
	}
	return trial.NewContext(physics.DefaultPitch(), 34, 50, r, b)
}

func TestDeadBallGoesToKicker(t *testing.T) {
	out := anfield(t).Kick(0, 0)

	require.Equal(t, trial.StatusResolved, out.Status)
	assert.True(t, out.Conclusive())
	assert.Equal(t, physics.SideRed, out.Side)
	assert.InDelta(t, 0.976, out.Probability, 1e-6)
	assert.Equal(t, intercept.Band(1), out.Band)
	assert.Equal(t, 1, out.Steps)
	assert.Equal(t, trial.DefaultTimeStep, out.TimeStep)
	assert.InDelta(t, 38, out.Ball.X, 1e-9)
	assert.InDelta(t, 23.5, out.Ball.Y, 1e-9)

	require.Len(t, out.Attempts, 1)
	assert.Equal(t, 5, out.Attempts[0].Player)
	assert.True(t, out.Red[out.Attempts[0].Player].Kicker)
	assert.True(t, out.Attempts[0].Secured)
	assert.Len(t, out.Red, 11)
	assert.Len(t, out.Blue, 11)
}

func TestHardKickEastLeavesPitch(t *testing.T) {
	out := anfield(t).Kick(19.75, math.Pi/2)

	assert.Equal(t, trial.StatusLeftPitch, out.Status)
	assert.False(t, out.Conclusive())
	assert.Equal(t, physics.SideNone, out.Side)
	assert.Zero(t, out.Probability)
	assert.Empty(t, out.Attempts)
	assert.Equal(t, 18, out.Steps)
	assert.Greater(t, out.Ball.X, 68.0)
	assert.Equal(t, intercept.WeakestBand, out.Band)
}

func TestBallLeavesOnFirstStep(t *testing.T) {
	ctx := custom([][2]float64{{5, 5}}, [][2]float64{{5, 95}})
	out := ctx.Run(physics.Ball{X: 67, Y: 50, Speed: 20, Direction: math.Pi / 2})

	assert.Equal(t, trial.StatusLeftPitch, out.Status)
	assert.Equal(t, 1, out.Steps)
	// Players are not advanced once the ball is gone.
	assert.Equal(t, physics.RestingReach, out.Red[0].Reach)
}

func TestStepBudgetExhausted(t *testing.T) {
	ctx := custom([][2]float64{{0, 0}}, [][2]float64{{0, 0}})
	out := ctx.Run(physics.Ball{X: 68, Y: 101})

	assert.Equal(t, trial.StatusExhausted, out.Status)
	assert.False(t, out.Conclusive())
	assert.Equal(t, trial.DefaultMaxSteps, out.Steps)
	assert.Equal(t, physics.SideNone, out.Side)
	assert.Zero(t, out.Probability)
	assert.Equal(t, intercept.WeakestBand, out.Band)
	assert.Empty(t, out.Attempts)
	assert.InDelta(t, 64.9, out.Red[0].Reach, 1e-6)
}

func TestDeadHeatExcludesThenResolves(t *testing.T) {
	ctx := custom([][2]float64{{30, 50}}, [][2]float64{{30, 50}})
	out := ctx.Run(physics.Ball{X: 30, Y: 50.3})

	require.Equal(t, trial.StatusResolved, out.Status)
	require.Len(t, out.Attempts, 2)

	first := out.Attempts[0]
	assert.Equal(t, physics.SideRed, first.Side)
	assert.Equal(t, 0.5, first.Probability)
	assert.False(t, first.Secured)

	assert.Equal(t, physics.SideBlue, out.Side)
	assert.Equal(t, 0.99, out.Probability)
	assert.Equal(t, 2, out.Steps)
	assert.True(t, out.Red[0].Excluded)
	assert.False(t, out.Blue[0].Excluded)
}

func TestUncontrollableBallForcesRetry(t *testing.T) {
	// Both players are level with the ball as it passes at ~59 m/s: the
	// reach signal is fully attenuated to 0.5 and red drops out.
	ctx := custom([][2]float64{{36, 50}}, [][2]float64{{36, 50}})
	out := ctx.Run(physics.Ball{X: 30, Y: 50.3, Speed: 60, Direction: math.Pi / 2})

	require.NotEmpty(t, out.Attempts)
	assert.Equal(t, 0.5, out.Attempts[0].Probability)
	assert.False(t, out.Attempts[0].Secured)
	assert.True(t, out.Red[0].Excluded)
	assert.Equal(t, trial.StatusLeftPitch, out.Status)
	assert.Equal(t, 7, out.Steps)
}

func TestNearestTieBreakAsymmetry(t *testing.T) {
	// Two equidistant players: red keeps the first index, blue takes the last.
	redOnly := custom([][2]float64{{20, 50}, {40, 50}}, nil)
	out := redOnly.Run(physics.Ball{X: 30, Y: 50})
	require.Equal(t, trial.StatusResolved, out.Status)
	assert.Equal(t, physics.SideRed, out.Side)
	assert.Equal(t, 0, out.Attempts[0].Player)
	assert.Equal(t, 31, out.Steps)

	blueOnly := custom(nil, [][2]float64{{20, 50}, {40, 50}})
	out = blueOnly.Run(physics.Ball{X: 30, Y: 50})
	require.Equal(t, trial.StatusResolved, out.Status)
	assert.Equal(t, physics.SideBlue, out.Side)
	assert.Equal(t, 1, out.Attempts[0].Player)
}

func TestKickResetsBetweenTrials(t *testing.T) {
	ctx := custom([][2]float64{{30, 50}}, [][2]float64{{30, 50}})
	ctx.KickerX, ctx.KickerY = 30, 50.8

	first := ctx.Kick(0, 0)
	require.True(t, ctx.Red.Players[0].Excluded)

	second := ctx.Kick(0, 0)
	assert.Equal(t, first, second)
}

func TestCloneIsolatesState(t *testing.T) {
	base := anfield(t)
	clone := base.Clone()
	clone.Kick(5, math.Pi)

	for _, p := range base.Red.Players {
		assert.Equal(t, physics.RestingReach, p.Reach)
	}
	assert.Equal(t, base.Kick(5, math.Pi), clone.Kick(5, math.Pi))
}

func TestSkipSnapshots(t *testing.T) {
	ctx := anfield(t)
	ctx.SkipSnapshots = true
	out := ctx.Kick(0, 0)
	assert.Nil(t, out.Red)
	assert.Nil(t, out.Blue)
}

func TestRunCountsTrials(t *testing.T) {
	before := telemetry.Metrics.TrialsRun.Value()
	resolved := telemetry.Metrics.Resolved.Value()
	anfield(t).Kick(0, 0)
	assert.Equal(t, before+1, telemetry.Metrics.TrialsRun.Value())
	assert.Equal(t, resolved+1, telemetry.Metrics.Resolved.Value())
}

func TestOutcomeCarriesTimeStep(t *testing.T) {
	ctx := anfield(t)
	ctx.TimeStep = 0.05
	ctx.MaxSteps = 400

	out := ctx.Kick(19.75, math.Pi/2)
	assert.Equal(t, 0.05, out.TimeStep)
	assert.InDelta(t, float64(out.Steps)*0.05, out.Elapsed(out.Steps), 1e-12)
	assert.InDelta(t, 0.3, trial.Outcome{}.Elapsed(3), 1e-12)
}
