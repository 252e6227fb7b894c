package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/core/trial"
)

// SweepPublisher implements sweep.Observer. It wraps each finished cell in
// an Event and publishes it on the bus, optionally paced so viewers can
// watch the map fill in.
type SweepPublisher struct {
	ctx     context.Context
	bus     *Bus
	sweepID string
	limiter *rate.Limiter
}

// NewSweepPublisher creates a publisher for one sweep. cellsPerSec <= 0
// publishes as fast as the sweep produces cells. Pacing blocks the sweep,
// and stops once ctx is done.
func NewSweepPublisher(ctx context.Context, bus *Bus, sweepID string, cellsPerSec float64) *SweepPublisher {
	p := &SweepPublisher{ctx: ctx, bus: bus, sweepID: sweepID}
	if cellsPerSec > 0 {
		burst := max(1, int(cellsPerSec/10))
		p.limiter = rate.NewLimiter(rate.Limit(cellsPerSec), burst)
	}
	return p
}

func (p *SweepPublisher) OnCell(c sweep.Cell) {
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			return
		}
	}
	p.publish(EventCellResolved, CellResolved{Cell: c})
}

func (p *SweepPublisher) Started(formation string, workers int) {
	p.publish(EventSweepStarted, SweepStarted{
		Formation:  formation,
		Directions: sweep.Directions,
		Speeds:     sweep.Speeds,
		Workers:    workers,
	})
}

func (p *SweepPublisher) Finished(m *sweep.Map) {
	p.publish(EventSweepFinished, SweepFinished{
		Summary:   m.Summary(),
		ElapsedMs: m.Elapsed.Milliseconds(),
	})
}

func (p *SweepPublisher) publish(t EventType, payload any) {
	p.bus.Publish(Event{
		ID:        uuid.NewString(),
		Type:      t,
		SweepID:   p.sweepID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// Kick publishes a single-kick trial under the publisher's sweep ID.
func (p *SweepPublisher) Kick(speed, direction float64, out trial.Outcome) {
	p.publish(EventKick, KickResolved{Speed: speed, Direction: direction, Outcome: out})
}
