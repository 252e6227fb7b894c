package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/possession-sim/internal/core/physics"
	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/core/trial"
	"github.com/charleschow/possession-sim/internal/events"
)

func TestParseKick(t *testing.T) {
	k, err := parseKick("12.5:1.5708")
	require.NoError(t, err)
	assert.Equal(t, 12.5, k.Speed)
	assert.InDelta(t, 1.5708, k.Direction, 1e-12)

	for _, bad := range []string{"12", "x:1", "1:y", "-1:0"} {
		_, err := parseKick(bad)
		assert.Error(t, err, bad)
	}
}

func TestWatcherRebuildsSweep(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewBus()
	newWatcher(&buf, false).subscribe(bus)

	bus.Publish(events.Event{Type: events.EventSweepStarted, SweepID: "s1", Payload: events.SweepStarted{Formation: "anfield", Directions: sweep.Directions, Speeds: sweep.Speeds, Workers: 2}})
	for j := 0; j < sweep.Directions; j++ {
		for i := 0; i < sweep.Speeds; i++ {
			c := sweep.Cell{DirIndex: j, SpeedIndex: i, Status: trial.StatusLeftPitch}
			if i == 0 {
				c = sweep.Cell{DirIndex: j, Status: trial.StatusResolved, Side: physics.SideRed, Probability: 0.9}
			}
			bus.Publish(events.Event{Type: events.EventCellResolved, SweepID: "s1", Payload: events.CellResolved{Cell: c}})
		}
	}
	bus.Publish(events.Event{Type: events.EventSweepFinished, SweepID: "s1", Payload: events.SweepFinished{ElapsedMs: 1200}})

	s := buf.String()
	assert.Contains(t, s, "Sweep s1 on anfield")
	assert.Contains(t, s, "20,480 cells in 1.2s")
	assert.Contains(t, s, "R"+strings.Repeat(".", sweep.Speeds-1))
}

func TestWatcherJoinedMidSweep(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewBus()
	newWatcher(&buf, false).subscribe(bus)

	bus.Publish(events.Event{Type: events.EventCellResolved, SweepID: "s2", Payload: events.CellResolved{Cell: sweep.Cell{Status: trial.StatusLeftPitch}}})
	bus.Publish(events.Event{Type: events.EventSweepFinished, SweepID: "s2", Payload: events.SweepFinished{Summary: sweep.Summary{Total: sweep.Cells, Red: 7}, ElapsedMs: 500}})

	assert.Contains(t, buf.String(), "20,480 cells in 500ms")
}
