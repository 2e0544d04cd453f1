// Package runner drives a cell world from a configuration: it builds the
// world, seeds the population, steps it and feeds the telemetry outputs.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/morphogen/cell"
	"github.com/pthm-cable/morphogen/config"
	"github.com/pthm-cable/morphogen/connection"
	"github.com/pthm-cable/morphogen/integrator"
	"github.com/pthm-cable/morphogen/mesh"
	"github.com/pthm-cable/morphogen/scripting"
	"github.com/pthm-cable/morphogen/telemetry"
	"github.com/pthm-cable/morphogen/vecmath"
	"github.com/pthm-cable/morphogen/world"
)

// Options configure a run on top of the configuration file.
type Options struct {
	Seed      uint64 // 0 = population.seed
	LogStats  bool
	OutputDir string // empty disables file output
	Script    string // overrides behavior.script
	Check     bool   // fail on non-finite state after every step
	Logger    *slog.Logger
}

// Runner owns a world of cells and its telemetry.
type Runner struct {
	cfg    *config.Config
	world  *world.World[*cell.Cell]
	rng    *rand.Rand
	seed   uint64
	logger *slog.Logger

	program cell.Program
	script  *scripting.Program

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager

	logStats bool
	check    bool

	// statsCallback is called with each flushed window, if set.
	statsCallback func(telemetry.WindowStats)
}

// Params converts the configuration into world parameters.
func Params(cfg *config.Config) world.Params {
	link := func(l config.LinkConfig) connection.LinkParams {
		return connection.LinkParams{
			Stiffness:  l.Stiffness,
			Damping:    l.Damping,
			BreakRatio: l.BreakRatio,
			Adhesion:   l.Adhesion,
		}
	}
	return world.Params{
		Dt:                  cfg.World.DT,
		Gravity:             cfg.Derived.Gravity,
		Viscosity:           cfg.World.Viscosity,
		CellCellCollisions:  cfg.World.CellCellCollisions,
		CellModelCollisions: cfg.World.CellModelCollisions,
		AgentCellSize:       cfg.Derived.AgentCellSize,
		ModelCellSize:       cfg.Derived.ModelCellSize,
		CellLink:            link(cfg.Link),
		ModelLink:           link(cfg.ModelLink),
	}
}

// ModelSource returns the mesh source a model entry describes.
func ModelSource(m config.ModelConfig) (mesh.Source, error) {
	switch m.Kind {
	case "file":
		return mesh.File(m.Path), nil
	case "plane":
		return mesh.Static(mesh.Plane(m.Name, m.Y, m.Half)), nil
	case "box":
		lo := vecmath.V(m.Lo[0], m.Lo[1], m.Lo[2])
		hi := vecmath.V(m.Hi[0], m.Hi[1], m.Hi[2])
		return mesh.Static(mesh.Box(m.Name, lo, hi)), nil
	}
	return nil, fmt.Errorf("%w: unknown model kind %q", config.ErrInvalid, m.Kind)
}

// New builds a runner. The caller must Close it.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Population.Seed
	}
	integ, ok := integrator.ByName(cfg.World.Integrator)
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", config.ErrInvalid, cfg.World.Integrator)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	r := &Runner{
		cfg:    cfg,
		rng:    vecmath.NewRand(seed),
		seed:   seed,
		logger: logger,
		world: world.New[*cell.Cell](world.Options{
			Params:     Params(cfg),
			Integrator: integ,
			Logger:     logger,
			Perf:       perf,
			Workers:    cfg.World.Workers,
		}),
		perf:      perf,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.World.DT),
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.HistorySize),
		output:    output,
		logStats:  opts.LogStats,
		check:     opts.Check,
	}

	if err := r.loadProgram(opts.Script); err != nil {
		r.Close()
		return nil, err
	}
	for _, m := range cfg.Models {
		src, err := ModelSource(m)
		if err == nil {
			err = r.world.AddModel(m.Name, src)
		}
		if err != nil {
			r.Close()
			return nil, err
		}
	}
	r.spawnInitialPopulation()
	return r, nil
}

// loadProgram selects the Lua script if one is configured and the built-in
// grow/divide program otherwise.
func (r *Runner) loadProgram(override string) error {
	path := r.cfg.Behavior.Script
	if override != "" {
		path = override
	}
	if path == "" {
		b := r.cfg.Behavior
		r.program = cell.GrowDivide{
			GrowthRate:     b.GrowthRate,
			DivisionRadius: b.DivisionRadius,
			MaxAge:         b.MaxAge,
			DeathRate:      b.DeathRate,
		}
		return nil
	}
	p, err := scripting.Load(path, r.logger)
	if err != nil {
		return fmt.Errorf("behavior script %s: %w", path, err)
	}
	r.script = p
	r.program = p
	r.logger.Info("loaded behavior script", "path", path)
	return nil
}

// spawnInitialPopulation scatters the initial cells uniformly in a cube.
func (r *Runner) spawnInitialPopulation() {
	pop := r.cfg.Population
	opts := cell.Options{
		MinRadius:     r.cfg.Cell.MinRadius,
		DivisionSigma: r.cfg.Behavior.DivisionSigma,
	}
	for i := 0; i < pop.Initial; i++ {
		pos := vecmath.V(
			(r.rng.Float64()*2-1)*pop.Spread,
			(r.rng.Float64()*2-1)*pop.Spread,
			(r.rng.Float64()*2-1)*pop.Spread,
		)
		r.world.AddAgent(cell.New(pos, r.cfg.Cell.Mass, r.cfg.Cell.Radius, r.program, r.rng, opts))
	}
	r.logger.Info("spawned initial population", "cells", pop.Initial, "seed", r.seed)
}

// World returns the simulated world.
func (r *Runner) World() *world.World[*cell.Cell] { return r.world }

// Frame returns the number of completed steps.
func (r *Runner) Frame() uint64 { return r.world.Frame() }

// Seed returns the seed of the run.
func (r *Runner) Seed() uint64 { return r.seed }

// OnStats registers a callback receiving every flushed window.
func (r *Runner) OnStats(fn func(telemetry.WindowStats)) { r.statsCallback = fn }

// Step advances the world once and handles telemetry.
func (r *Runner) Step() error {
	r.world.Step()
	r.collector.Record(r.world.LastFrame())

	frame := r.world.Frame()
	if r.check {
		if err := r.world.Check(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	if every := r.cfg.Telemetry.SnapshotEvery; every > 0 && frame%every == 0 {
		r.saveSnapshot(nil)
	}
	r.flushTelemetry()
	return nil
}

// Run steps until maxTicks frames have completed, or forever when maxTicks
// is 0. It stops early on a failed check, on an extinct population, or when
// ctx is done; cancellation is not an error.
func (r *Runner) Run(ctx context.Context, maxTicks uint64) error {
	for maxTicks == 0 || r.Frame() < maxTicks {
		if ctx.Err() != nil {
			r.logger.Info("interrupted", "frame", r.Frame())
			return nil
		}
		if err := r.Step(); err != nil {
			return err
		}
		if r.world.Len() == 0 {
			r.logger.Info("population extinct", "frame", r.Frame())
			return nil
		}
	}
	r.logger.Info("max ticks reached", "frame", r.Frame())
	return nil
}

// Close releases the world, the script VM and the output files.
func (r *Runner) Close() error {
	r.world.Close()
	if r.script != nil {
		r.script.Close()
	}
	return r.output.Close()
}
