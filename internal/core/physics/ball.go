// Package physics holds the kinematic model for the ball and the players.
//
// Lengths are metres, speeds m/s, time seconds. Directions are radians
// measured clockwise from north, so 0 is north (−y), π/2 east, π south and
// 3π/2 west.
package physics

import "math"

// Rolling deceleration grows with speed: 0.7 m/s² at 2 m/s, 0.9 m/s² at 3 m/s.
// A 3 m/s roll stops after about 7 m, a 4 m/s roll after about 10 m.
const (
	ballDragBase  = 0.4
	ballDragSlope = 0.16

	// KickOffset is how far in front of the kicker a new ball is placed so
	// it is not captured before it starts moving.
	KickOffset = 0.5
)

type Ball struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Speed     float64 `json:"speed" yaml:"speed"`
	Direction float64 `json:"direction" yaml:"direction"`
}

// NewKick places a ball KickOffset metres from (kickerX, kickerY) along
// direction.
func NewKick(kickerX, kickerY, speed, direction float64) Ball {
	return Ball{
		X:         kickerX + KickOffset*math.Sin(direction),
		Y:         kickerY - KickOffset*math.Cos(direction),
		Speed:     speed,
		Direction: direction,
	}
}

// Update moves the ball over dt at its current speed, then applies the
// speed-dependent rolling deceleration. Speed is floored at zero.
func (b *Ball) Update(dt float64) {
	d := b.Speed * dt
	b.X += d * math.Sin(b.Direction)
	b.Y -= d * math.Cos(b.Direction)

	acc := -ballDragBase - ballDragSlope*b.Speed
	b.Speed += acc * dt
	if b.Speed < 0 {
		b.Speed = 0
	}
}

// OnPitch reports whether the ball is inside p, boundaries included.
func (b Ball) OnPitch(p Pitch) bool {
	return p.Contains(b.X, b.Y)
}
