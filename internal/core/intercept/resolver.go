package intercept

import "github.com/charleschow/possession-sim/internal/core/physics"

// SecureThreshold is the combined probability below which the favoured
// player fails to secure the ball and is dropped from the trial.
const SecureThreshold = 0.7

// Decision is the resolver's verdict for one timestep.
type Decision struct {
	Finished    bool
	Side        physics.Side
	Probability float64
	Band        Band

	// ExcludeIndex is the favoured player to drop when Finished is false,
	// on the team named by Side.
	ExcludeIndex int
}

// Resolve decides possession for a timestep where at least one side has a
// player in range. Red is favoured on equal scores.
func Resolve(ball physics.Ball, red, blue physics.Closest) Decision {
	prob := Combined(red.Score, blue.Score, ball.Speed)

	d := Decision{
		Side:        physics.SideBlue,
		Probability: prob,
		Band:        BandFor(prob),
	}
	favoured := blue
	if red.Score <= blue.Score {
		d.Side = physics.SideRed
		favoured = red
	}

	if prob < SecureThreshold {
		d.ExcludeIndex = favoured.Index
		return d
	}
	d.Finished = true
	return d
}
