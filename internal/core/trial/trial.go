// Package trial runs a single kick to a terminal outcome.
//
// Each trial advances in fixed timesteps. Within a step the ball moves
// first, then every player on both teams, then the resolver is consulted
// if any player has the ball in range. A trial ends when the ball leaves
// the pitch, when the resolver awards possession, or when the step budget
// runs out.
package trial

import (
	"github.com/charleschow/possession-sim/internal/core/intercept"
	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

const (
	DefaultTimeStep = 0.1 // seconds
	DefaultMaxSteps = 100 // ten simulated seconds
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusLeftPitch Status = "left_pitch"
	StatusResolved  Status = "resolved"
	// StatusExhausted marks a trial that used its whole step budget
	// without anyone securing the ball. It is inconclusive like
	// StatusLeftPitch: no side, zero probability.
	StatusExhausted Status = "exhausted"
)

// Attempt records one resolver call, including failed control attempts.
type Attempt struct {
	Step        int            `json:"step"`
	Ball        physics.Ball   `json:"ball"`
	Side        physics.Side   `json:"side"`
	Player      int            `json:"player"`
	Probability float64        `json:"probability"`
	Band        intercept.Band `json:"band"`
	Secured     bool           `json:"secured"`
}

// Outcome is the terminal state of one trial.
type Outcome struct {
	Status      Status           `json:"status"`
	Side        physics.Side     `json:"side,omitempty"`
	Probability float64          `json:"probability"`
	Band        intercept.Band   `json:"band"`
	Steps       int              `json:"steps"`
	TimeStep    float64          `json:"time_step"`
	Ball        physics.Ball     `json:"ball"`
	Attempts    []Attempt        `json:"attempts,omitempty"`
	Red         []physics.Player `json:"red,omitempty"`
	Blue        []physics.Player `json:"blue,omitempty"`
}

// Conclusive reports whether a side was awarded the ball.
func (o Outcome) Conclusive() bool { return o.Status == StatusResolved }

// Elapsed converts a step count into seconds of simulated time.
func (o Outcome) Elapsed(step int) float64 {
	dt := o.TimeStep
	if dt <= 0 {
		dt = DefaultTimeStep
	}
	return float64(step) * dt
}

// Context owns the mutable state for a run of trials. A Context must not
// be shared between goroutines; use Clone to give each worker its own.
type Context struct {
	Pitch    physics.Pitch
	KickerX  float64
	KickerY  float64
	Red      *physics.Team
	Blue     *physics.Team
	TimeStep float64
	MaxSteps int

	// SkipSnapshots leaves Outcome.Red and Outcome.Blue empty. Sweeps set
	// it to avoid copying 22 players per cell.
	SkipSnapshots bool
}

func NewContext(pitch physics.Pitch, kickerX, kickerY float64, red, blue *physics.Team) *Context {
	return &Context{
		Pitch:    pitch,
		KickerX:  kickerX,
		KickerY:  kickerY,
		Red:      red,
		Blue:     blue,
		TimeStep: DefaultTimeStep,
		MaxSteps: DefaultMaxSteps,
	}
}

func (c *Context) Clone() *Context {
	cp := *c
	cp.Red = c.Red.Clone()
	cp.Blue = c.Blue.Clone()
	return &cp
}

// Reset returns both teams to their standing start.
func (c *Context) Reset() {
	c.Red.Reset()
	c.Blue.Reset()
}

// Kick resets both teams and runs one trial for a ball struck from the
// kicker's position.
func (c *Context) Kick(speed, direction float64) Outcome {
	c.Reset()
	return c.Run(physics.NewKick(c.KickerX, c.KickerY, speed, direction))
}

// Run steps ball against the current team state until the trial ends.
// It does not reset the teams.
func (c *Context) Run(ball physics.Ball) Outcome {
	telemetry.Metrics.TrialsRun.Inc()

	dt := c.TimeStep
	out := Outcome{Status: StatusRunning, TimeStep: dt}

	for step := 1; step <= c.MaxSteps; step++ {
		out.Steps = step

		ball.Update(dt)
		if !ball.OnPitch(c.Pitch) {
			out.Status = StatusLeftPitch
			break
		}

		red := c.Red.Advance(dt, ball)
		blue := c.Blue.Advance(dt, ball)
		if !red.InRange() && !blue.InRange() {
			continue
		}

		d := intercept.Resolve(ball, red, blue)
		attempt := Attempt{
			Step:        step,
			Ball:        ball,
			Side:        d.Side,
			Probability: d.Probability,
			Band:        d.Band,
			Secured:     d.Finished,
		}
		if d.Side == physics.SideRed {
			attempt.Player = red.Index
		} else {
			attempt.Player = blue.Index
		}
		out.Attempts = append(out.Attempts, attempt)

		if d.Finished {
			out.Status = StatusResolved
			out.Side = d.Side
			out.Probability = d.Probability
			out.Band = d.Band
			break
		}
		c.exclude(d)
	}

	out.Ball = ball
	if out.Status == StatusRunning {
		out.Status = StatusExhausted
	}
	if out.Status != StatusResolved {
		out.Band = intercept.WeakestBand
	}
	if !c.SkipSnapshots {
		out.Red = c.Red.Snapshot()
		out.Blue = c.Blue.Snapshot()
	}

	countOutcome(out.Status)
	return out
}

func (c *Context) exclude(d intercept.Decision) {
	telemetry.Metrics.Exclusions.Inc()
	if d.Side == physics.SideRed {
		c.Red.Exclude(d.ExcludeIndex)
		return
	}
	c.Blue.Exclude(d.ExcludeIndex)
}

func countOutcome(s Status) {
	switch s {
	case StatusResolved:
		telemetry.Metrics.Resolved.Inc()
	case StatusLeftPitch:
		telemetry.Metrics.LeftPitch.Inc()
	case StatusExhausted:
		telemetry.Metrics.Exhausted.Inc()
	}
}
