package sweep

import (
	"math"
	"time"

	"github.com/charleschow/possession-sim/internal/core/intercept"
	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/trial"
)

// The grid samples a full circle at ~1.41° and 0–19.75 m/s at 0.25 m/s.
const (
	Directions = 256
	Speeds     = 80
	Cells      = Directions * Speeds
)

// Direction returns the kick direction for direction index j.
func Direction(j int) float64 { return math.Pi * float64(j) / (Directions / 2) }

// Speed returns the kick speed for speed index i.
func Speed(i int) float64 { return float64(i) / 4 }

// Cell is the condensed outcome of one kick.
type Cell struct {
	DirIndex    int            `json:"dir_index" yaml:"dir_index"`
	SpeedIndex  int            `json:"speed_index" yaml:"speed_index"`
	Direction   float64        `json:"direction" yaml:"direction"`
	Speed       float64        `json:"speed" yaml:"speed"`
	Status      trial.Status   `json:"status" yaml:"status"`
	Side        physics.Side   `json:"side,omitempty" yaml:"side,omitempty"`
	Probability float64        `json:"probability" yaml:"probability"`
	Band        intercept.Band `json:"band" yaml:"band"`
	Steps       int            `json:"steps" yaml:"steps"`
	Ball        physics.Ball   `json:"ball" yaml:"ball"`
	Exclusions  int            `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
}

func newCell(j, i int, out trial.Outcome) Cell {
	c := Cell{
		DirIndex:    j,
		SpeedIndex:  i,
		Direction:   Direction(j),
		Speed:       Speed(i),
		Status:      out.Status,
		Side:        out.Side,
		Probability: out.Probability,
		Band:        out.Band,
		Steps:       out.Steps,
		Ball:        out.Ball,
	}
	for _, a := range out.Attempts {
		if !a.Secured {
			c.Exclusions++
		}
	}
	return c
}

// Map holds every cell of a completed sweep, direction-major.
type Map struct {
	ID      string
	Cells   []Cell
	Elapsed time.Duration
}

// At returns the cell for direction index j and speed index i.
func (m *Map) At(j, i int) Cell { return m.Cells[j*Speeds+i] }

// Summary tallies a sweep by outcome.
type Summary struct {
	Total          int     `json:"total" yaml:"total"`
	Red            int     `json:"red" yaml:"red"`
	Blue           int     `json:"blue" yaml:"blue"`
	LeftPitch      int     `json:"left_pitch" yaml:"left_pitch"`
	Exhausted      int     `json:"exhausted" yaml:"exhausted"`
	Exclusions     int     `json:"exclusions" yaml:"exclusions"`
	MeanConfidence float64 `json:"mean_confidence" yaml:"mean_confidence"`
}

func (m *Map) Summary() Summary {
	var s Summary
	var probSum float64
	for _, c := range m.Cells {
		s.Total++
		s.Exclusions += c.Exclusions
		switch c.Status {
		case trial.StatusResolved:
			probSum += c.Probability
			if c.Side == physics.SideRed {
				s.Red++
			} else {
				s.Blue++
			}
		case trial.StatusLeftPitch:
			s.LeftPitch++
		case trial.StatusExhausted:
			s.Exhausted++
		}
	}
	if resolved := s.Red + s.Blue; resolved > 0 {
		s.MeanConfidence = probSum / float64(resolved)
	}
	return s
}
