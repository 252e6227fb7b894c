package events

import (
	"time"

	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/core/trial"
)

// Event is the envelope that flows through the event bus.
type Event struct {
	ID        string
	Type      EventType
	SweepID   string
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	EventSweepStarted  EventType = "sweep_started"
	EventCellResolved  EventType = "cell_resolved"
	EventSweepFinished EventType = "sweep_finished"
	EventKick          EventType = "kick"
)

// SweepStarted is published before the first cell of a sweep.
type SweepStarted struct {
	Formation  string `json:"formation"`
	Directions int    `json:"directions"`
	Speeds     int    `json:"speeds"`
	Workers    int    `json:"workers"`
}

// CellResolved carries one finished grid cell.
type CellResolved struct {
	Cell sweep.Cell `json:"cell"`
}

// SweepFinished closes a sweep with its tallies.
type SweepFinished struct {
	Summary   sweep.Summary `json:"summary"`
	ElapsedMs int64         `json:"elapsed_ms"`
}

// KickResolved is a single-kick trial with full player state.
type KickResolved struct {
	Speed     float64       `json:"speed"`
	Direction float64       `json:"direction"`
	Outcome   trial.Outcome `json:"outcome"`
}
