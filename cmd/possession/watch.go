package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charleschow/possession-sim/internal/core/display"
	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/events"
)

// watcher rebuilds streamed sweeps locally and prints them as they finish.
// Bus handlers run on the client's read goroutine, so no locking is needed.
type watcher struct {
	out    io.Writer
	colour bool
	tally  display.Tally
	m      *sweep.Map
}

func newWatcher(out io.Writer, colour bool) *watcher {
	return &watcher{out: out, colour: colour}
}

func (w *watcher) subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventSweepStarted, w.onStarted)
	bus.Subscribe(events.EventCellResolved, w.onCell)
	bus.Subscribe(events.EventSweepFinished, w.onFinished)
	bus.Subscribe(events.EventKick, w.onKick)
}

func (w *watcher) onStarted(e events.Event) error {
	p, ok := e.Payload.(events.SweepStarted)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	w.tally.Reset()
	w.m = &sweep.Map{ID: e.SweepID, Cells: make([]sweep.Cell, sweep.Cells)}
	fmt.Fprintf(w.out, "Sweep %s on %s  (%dx%d, %d workers)\n", e.SweepID, p.Formation, p.Directions, p.Speeds, p.Workers)
	return nil
}

func (w *watcher) onCell(e events.Event) error {
	p, ok := e.Payload.(events.CellResolved)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	w.tally.OnCell(p.Cell)
	if w.m != nil && w.m.ID == e.SweepID {
		k := p.Cell.DirIndex*sweep.Speeds + p.Cell.SpeedIndex
		if k >= 0 && k < len(w.m.Cells) {
			w.m.Cells[k] = p.Cell
		}
	}
	return nil
}

func (w *watcher) onFinished(e events.Event) error {
	p, ok := e.Payload.(events.SweepFinished)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	elapsed := time.Duration(p.ElapsedMs) * time.Millisecond

	// Joined mid-sweep: the local map is partial, so trust the server's tallies.
	if w.m == nil || w.m.ID != e.SweepID || w.tally.Summary().Total != sweep.Cells {
		display.PrintSummary(w.out, e.SweepID, p.Summary, elapsed)
		return nil
	}
	display.PrintMap(w.out, w.m, 4, w.colour)
	display.PrintSummary(w.out, e.SweepID, w.tally.Summary(), elapsed)
	return nil
}

func (w *watcher) onKick(e events.Event) error {
	p, ok := e.Payload.(events.KickResolved)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	display.PrintKick(w.out, p.Speed, p.Direction, p.Outcome)
	return nil
}
