package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charleschow/possession-sim/internal/config"
	"github.com/charleschow/possession-sim/internal/core/formation"
	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/core/trial"
	"github.com/charleschow/possession-sim/internal/events"
	"github.com/charleschow/possession-sim/internal/fanout"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

// Setup resolves the configured formation and builds a trial context with
// the configured step settings applied.
func Setup(cfg *config.Config) (formation.Formation, *trial.Context, error) {
	f, err := cfg.ResolveFormation()
	if err != nil {
		return formation.Formation{}, nil, err
	}
	tc, err := f.Build()
	if err != nil {
		return formation.Formation{}, nil, err
	}
	if cfg.TimeStep > 0 {
		tc.TimeStep = cfg.TimeStep
	}
	if cfg.MaxSteps > 0 {
		tc.MaxSteps = cfg.MaxSteps
	}
	return f, tc, nil
}

// Kick is one kick to replay to viewers before a sweep starts.
type Kick struct {
	Speed     float64
	Direction float64
}

// ServeOptions controls a streaming session.
type ServeOptions struct {
	// Rounds is the number of sweeps to stream; <= 0 repeats until ctx is done.
	Rounds int
	// Pause between rounds so viewers can read the finished map.
	Pause time.Duration
	Kicks []Kick
}

// Serve runs sweeps against the configured formation and streams every
// cell to connected viewers. After the last round it keeps serving until
// ctx is done, then shuts the viewer feed down.
func Serve(ctx context.Context, cfg *config.Config, opts ServeOptions) error {
	f, tc, err := Setup(cfg)
	if err != nil {
		return err
	}

	ln, err := fanout.Listen(cfg.FanoutPort)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	srv := fanout.NewServer(bus)

	// A viewer feed that dies mid-session stops the sweeps too.
	runCtx, stop := context.WithCancelCause(ctx)
	defer stop(nil)
	go func() {
		if err := srv.Serve(ln); err != nil {
			stop(err)
		}
	}()

	telemetry.Infof("Serving formation %q  workers=%d  pace=%.0f/s", f.Name, cfg.SweepWorkers, cfg.StreamPace)

	runErr := stream(runCtx, bus, f.Name, tc, cfg, opts)
	if runErr == nil {
		<-runCtx.Done()
	}
	if cause := context.Cause(runCtx); cause != nil && ctx.Err() == nil {
		runErr = cause
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Warnf("fanout shutdown: %v", err)
	}

	telemetry.Infof("Shutdown complete  sweeps=%d  trials=%d  streamed=%d  drops=%d  p50=%s",
		telemetry.Metrics.SweepsRun.Value(),
		telemetry.Metrics.TrialsRun.Value(),
		telemetry.Metrics.EventsStreamed.Value(),
		telemetry.Metrics.ViewerDrops.Value(),
		telemetry.Metrics.SweepDuration.P50(),
	)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func stream(ctx context.Context, bus *events.Bus, name string, tc *trial.Context, cfg *config.Config, opts ServeOptions) error {
	for round := 1; opts.Rounds <= 0 || round <= opts.Rounds; round++ {
		sw := sweep.New(tc, cfg.SweepWorkers)
		pub := events.NewSweepPublisher(ctx, bus, sw.ID(), cfg.StreamPace)
		sw.AddObserver(pub)

		for _, k := range opts.Kicks {
			pub.Kick(k.Speed, k.Direction, tc.Kick(k.Speed, k.Direction))
		}

		pub.Started(name, cfg.SweepWorkers)
		m, err := sw.Run(ctx)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		pub.Finished(m)

		s := m.Summary()
		telemetry.Infof("Round %d  red=%d  blue=%d  left=%d  exhausted=%d  mean=%.3f",
			round, s.Red, s.Blue, s.LeftPitch, s.Exhausted, s.MeanConfidence)

		if opts.Pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Pause):
			}
		}
	}
	return nil
}
