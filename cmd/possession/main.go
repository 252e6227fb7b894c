package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/charleschow/possession-sim/internal/config"
	"github.com/charleschow/possession-sim/internal/core/display"
	"github.com/charleschow/possession-sim/internal/core/sweep"
	"github.com/charleschow/possession-sim/internal/events"
	"github.com/charleschow/possession-sim/internal/fanout"
	"github.com/charleschow/possession-sim/internal/process"
	"github.com/charleschow/possession-sim/internal/telemetry"
)

const (
	formationFlag = "formation"
	logLevelFlag  = "log-level"
	workersFlag   = "workers"
)

var build string
var semanticVersion = "v0.1.0-dev" + build

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:    "possession",
		Usage:   "Simulate who wins a loose ball after a kick",
		Version: semanticVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        formationFlag,
				Aliases:     []string{"f"},
				Usage:       "YAML formation file (default: built-in anfield)",
				Value:       cfg.FormationPath,
				Destination: &cfg.FormationPath,
			},
			&cli.StringFlag{
				Name:        logLevelFlag,
				Usage:       "debug, info, warn or error",
				Value:       cfg.LogLevel,
				Destination: &cfg.LogLevel,
			},
		},
		Before: func(_ *cli.Context) error {
			telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
			return nil
		},
		Commands: []*cli.Command{
			kickCommand(cfg),
			sweepCommand(cfg),
			serveCommand(cfg),
			watchCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func kickCommand(cfg *config.Config) *cli.Command {
	var speed, direction float64
	var degrees bool
	return &cli.Command{
		Name:  "kick",
		Usage: "Run a single kick and print the outcome",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "speed", Aliases: []string{"s"}, Usage: "initial ball speed in m/s", Destination: &speed},
			&cli.Float64Flag{Name: "direction", Aliases: []string{"d"}, Usage: "kick direction, clockwise from up the pitch", Destination: &direction},
			&cli.BoolFlag{Name: "degrees", Usage: "read --direction in degrees instead of radians", Destination: &degrees},
		},
		Action: func(_ *cli.Context) error {
			if speed < 0 {
				return fmt.Errorf("speed must not be negative: %v", speed)
			}
			if degrees {
				direction = direction * math.Pi / 180
			}
			_, tc, err := process.Setup(cfg)
			if err != nil {
				return err
			}
			display.PrintKick(os.Stdout, speed, direction, tc.Kick(speed, direction))
			return nil
		},
	}
}

func sweepCommand(cfg *config.Config) *cli.Command {
	var (
		out     string
		showMap bool
		stride  int
		colour  bool
	)
	return &cli.Command{
		Name:  "sweep",
		Usage: "Kick every direction and speed on the grid",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: workersFlag, Aliases: []string{"w"}, Usage: "direction rows run in parallel", Value: cfg.SweepWorkers, Destination: &cfg.SweepWorkers},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the map as YAML to this file, or \"-\" for stdout", Destination: &out},
			&cli.BoolFlag{Name: "map", Usage: "print the map as text", Destination: &showMap},
			&cli.IntFlag{Name: "stride", Usage: "print every nth direction row", Value: 4, Destination: &stride},
			&cli.BoolFlag{Name: "color", Usage: "shade map cells with ANSI colours", Destination: &colour},
		},
		Action: func(_ *cli.Context) error {
			f, tc, err := process.Setup(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sw := sweep.New(tc, cfg.SweepWorkers)
			m, err := sw.Run(ctx)
			if err != nil {
				return err
			}

			if showMap {
				display.PrintMap(os.Stdout, m, stride, colour)
			}
			display.PrintSummary(os.Stdout, m.ID, m.Summary(), m.Elapsed)

			switch out {
			case "":
				return nil
			case "-":
				return m.WriteYAML(os.Stdout, f.Name)
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := m.WriteYAML(file, f.Name); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		},
	}
}

func serveCommand(cfg *config.Config) *cli.Command {
	var (
		rounds int
		pause  time.Duration
		kicks  cli.StringSlice
	)
	return &cli.Command{
		Name:  "serve",
		Usage: "Run sweeps and stream every cell to WebSocket viewers",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: workersFlag, Aliases: []string{"w"}, Value: cfg.SweepWorkers, Destination: &cfg.SweepWorkers},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: cfg.FanoutPort, Destination: &cfg.FanoutPort},
			&cli.Float64Flag{Name: "pace", Usage: "cells per second sent to viewers (0 is unpaced)", Value: cfg.StreamPace, Destination: &cfg.StreamPace},
			&cli.IntFlag{Name: "rounds", Usage: "sweeps to stream, 0 repeats until stopped", Value: 1, Destination: &rounds},
			&cli.DurationFlag{Name: "pause", Usage: "wait between rounds", Value: 5 * time.Second, Destination: &pause},
			&cli.StringSliceFlag{Name: "kick", Usage: "SPEED:DIRECTION kick (radians) to replay before each sweep", Destination: &kicks},
		},
		Action: func(_ *cli.Context) error {
			opts := process.ServeOptions{Rounds: rounds, Pause: pause}
			for _, raw := range kicks.Value() {
				k, err := parseKick(raw)
				if err != nil {
					return err
				}
				opts.Kicks = append(opts.Kicks, k)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return process.Serve(ctx, cfg, opts)
		},
	}
}

func watchCommand(cfg *config.Config) *cli.Command {
	var colour bool
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow a streaming server and print each finished sweep",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "host:port of the server", Value: cfg.FanoutAddr, Destination: &cfg.FanoutAddr},
			&cli.BoolFlag{Name: "color", Usage: "shade map cells with ANSI colours", Destination: &colour},
		},
		Action: func(_ *cli.Context) error {
			bus := events.NewBus()
			w := newWatcher(os.Stdout, colour)
			w.subscribe(bus)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fanout.NewClient(cfg.FanoutAddr, bus).ConnectWithRetry(ctx)
			return nil
		},
	}
}

func parseKick(raw string) (process.Kick, error) {
	speedStr, dirStr, ok := strings.Cut(raw, ":")
	if !ok {
		return process.Kick{}, fmt.Errorf("kick %q: want SPEED:DIRECTION", raw)
	}
	speed, err := strconv.ParseFloat(speedStr, 64)
	if err != nil || speed < 0 {
		return process.Kick{}, fmt.Errorf("kick %q: bad speed", raw)
	}
	dir, err := strconv.ParseFloat(dirStr, 64)
	if err != nil {
		return process.Kick{}, fmt.Errorf("kick %q: bad direction", raw)
	}
	return process.Kick{Speed: speed, Direction: dir}, nil
}
