// Package formation holds the static set-piece layouts the simulator is
// run against and builds trial contexts from them.
package formation

import (
	"errors"
	"fmt"

	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/trial"
)

const (
	RedColor  = "#FF7777"
	BlueColor = "#7777FF"
)

type Spot struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Kicker bool    `yaml:"kicker,omitempty"`
}

// Formation is one set piece: the kicking side (red) and the defending
// side (blue). Roster order is significant; results refer to players by
// index.
type Formation struct {
	Name  string        `yaml:"name"`
	Pitch physics.Pitch `yaml:"pitch"`
	Red   []Spot        `yaml:"red"`
	Blue  []Spot        `yaml:"blue"`
}

var (
	ErrNoKicker     = errors.New("red side needs exactly one kicker")
	ErrBlueKicker   = errors.New("blue side cannot have a kicker")
	ErrEmptySide    = errors.New("both sides need at least one player")
	ErrOffPitch     = errors.New("player is off the pitch")
	ErrInvalidPitch = errors.New("pitch dimensions must be positive")
)

// Anfield is the built-in free kick: red kicks from (38, 24) into a
// defending blue shape.
func Anfield() Formation {
	return Formation{
		Name:  "anfield",
		Pitch: physics.DefaultPitch(),
		Red: []Spot{
			{X: 32, Y: 4},
			{X: 22, Y: 18},
			{X: 43, Y: 17},
			{X: 20, Y: 21},
			{X: 35, Y: 23},
			{X: 38, Y: 24, Kicker: true},
			{X: 8, Y: 25},
			{X: 33, Y: 41},
			{X: 58, Y: 41},
			{X: 37, Y: 55},
			{X: 20, Y: 61},
		},
		Blue: []Spot{
			{X: 32, Y: 88},
			{X: 25, Y: 58},
			{X: 39, Y: 63},
			{X: 7, Y: 54},
			{X: 24, Y: 48},
			{X: 45, Y: 51},
			{X: 46, Y: 42},
			{X: 18, Y: 30},
			{X: 36, Y: 32},
			{X: 40, Y: 28},
			{X: 25, Y: 22},
		},
	}
}

// Validate checks the roster shape and that everyone starts on the pitch.
// A zero Pitch is treated as the default pitch.
func (f Formation) Validate() error {
	pitch := f.pitch()
	if pitch.Width <= 0 || pitch.Height <= 0 {
		return ErrInvalidPitch
	}
	if len(f.Red) == 0 || len(f.Blue) == 0 {
		return ErrEmptySide
	}

	kickers := 0
	for i, s := range f.Red {
		if s.Kicker {
			kickers++
		}
		if !pitch.Contains(s.X, s.Y) {
			return fmt.Errorf("red[%d] at (%.1f, %.1f): %w", i, s.X, s.Y, ErrOffPitch)
		}
	}
	if kickers != 1 {
		return ErrNoKicker
	}
	for i, s := range f.Blue {
		if s.Kicker {
			return fmt.Errorf("blue[%d]: %w", i, ErrBlueKicker)
		}
		if !pitch.Contains(s.X, s.Y) {
			return fmt.Errorf("blue[%d] at (%.1f, %.1f): %w", i, s.X, s.Y, ErrOffPitch)
		}
	}
	return nil
}

// Kicker returns the kicking player's spot.
func (f Formation) Kicker() (Spot, bool) {
	for _, s := range f.Red {
		if s.Kicker {
			return s, true
		}
	}
	return Spot{}, false
}

// Build validates the formation and returns a fresh trial context.
// Red ties in the nearest-player search go to the earlier index, blue ties
// to the later one.
func (f Formation) Build() (*trial.Context, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("formation %q: %w", f.Name, err)
	}

	red := physics.NewTeam(physics.SideRed, RedColor, physics.TieFirst)
	for _, s := range f.Red {
		if s.Kicker {
			red.AddKicker(s.X, s.Y)
			continue
		}
		red.AddPlayer(s.X, s.Y)
	}

	blue := physics.NewTeam(physics.SideBlue, BlueColor, physics.TieLast)
	for _, s := range f.Blue {
		blue.AddPlayer(s.X, s.Y)
	}

	kicker, _ := f.Kicker()
	return trial.NewContext(f.pitch(), kicker.X, kicker.Y, red, blue), nil
}

func (f Formation) pitch() physics.Pitch {
	if f.Pitch == (physics.Pitch{}) {
		return physics.DefaultPitch()
	}
	return f.Pitch
}
