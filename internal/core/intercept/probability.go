// Package intercept turns the two sides' interception scores into a
// possession probability and decides whether a trial is over.
package intercept

import "math"

const (
	tieMargin      = 0.2  // score gap treated as a dead heat
	decisiveMargin = 25.0 // 5² m: gap beyond which the closer side is near certain
	maxDiffProb    = 0.99

	easyControlSpeed = 10.0 // m/s, below this control is certain
	noControlSpeed   = 50.0 // m/s, above this control is impossible
)

// DiffProb converts the gap between the two sides' scores (squared
// metres) into the probability that the closer side has time to take
// the ball. The linear ramp is capped at 0.99 so the curve never dips
// when it reaches the decisive margin.
func DiffProb(delta float64) float64 {
	m := math.Abs(delta) - tieMargin
	if m >= decisiveMargin {
		return maxDiffProb
	}
	if m <= 0 {
		return 0.5
	}
	return math.Min(0.5+0.5*(m/decisiveMargin), maxDiffProb)
}

// ControlProb is the probability that the intercepting player controls a
// ball arriving at speed. Only ball speed is considered.
func ControlProb(speed float64) float64 {
	if speed <= easyControlSpeed {
		return 1
	}
	if speed > noControlSpeed {
		return 0
	}
	return 1 - speed/noControlSpeed
}

// Combined attenuates the reach advantage toward a coin flip as the ball
// gets harder to control.
func Combined(redScore, blueScore, ballSpeed float64) float64 {
	return 0.5 + (DiffProb(redScore-blueScore)-0.5)*ControlProb(ballSpeed)
}
