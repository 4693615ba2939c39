// cmd/collbench/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/scene"
)

var allKinds = []physics.BroadPhaseKind{
	physics.BroadPhaseSpatialHash,
	physics.BroadPhaseQuadTree,
	physics.BroadPhaseBrute,
}

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), "")
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := flag.String("config", "", "Path to configuration file; only the physics section is used")
	kind := flag.String("random", "circles", "Random scenario: 'circles' or 'mixed'")
	count := flag.Int("count", 500, "Number of bodies")
	seed := flag.Int64("seed", 42, "Seed of the random scenario")
	size := flag.Float64("size", 1000, "Edge of the square area bodies are placed in")
	frames := flag.Int("frames", 120, "Frames to simulate")
	dt := flag.Float64("dt", 1.0/60, "Fixed time step in seconds")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}
	if err := cfg.Physics.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	ropts := scene.DefaultRandomOptions()
	ropts.Seed = *seed
	ropts.Count = *count
	ropts.Width, ropts.Height = *size, *size

	var (
		bodies *scene.Scene
		err    error
	)
	switch *kind {
	case "circles":
		bodies, err = scene.RandomCircles(ropts)
	case "mixed":
		bodies, err = scene.RandomMixed(ropts)
	default:
		logger.Error(ctx, "Unknown random scenario", nil, "random", *kind)
		os.Exit(1)
	}
	if err != nil {
		logger.Error(ctx, "Failed to generate scene", err)
		os.Exit(1)
	}

	wopts := cfg.Physics.WorldOptions(nil, logger)
	wopts.QuadTreeBounds = areaBounds(ropts)

	logger.Info(ctx, "Starting broad phase comparison",
		"run_id", logging.GetCorrelationID(ctx),
		"scene", bodies.Name,
		"bodies", len(bodies.Bodies),
		"frames", *frames,
		"solver", cfg.Physics.Solver,
	)

	results, err := benchmark(ctx, bodies, allKinds, benchOptions{
		World:  wopts,
		Frames: *frames,
		DT:     *dt,
		Logger: logger,
	})
	if err != nil {
		logger.Error(ctx, "Benchmark failed", err)
		os.Exit(1)
	}

	for _, r := range results {
		logger.Info(ctx, "Broad phase result",
			"broad_phase", string(r.Kind),
			"elapsed", r.Elapsed.String(),
			"candidates", r.Candidates,
			"tests", r.Tests,
			"hits", r.Hits,
			"pairs", r.pairCount(),
		)
	}

	mismatch := false
	for _, r := range results[1:] {
		if err := compare(results[0], r); err != nil {
			logger.Error(ctx, "Broad phases disagree", err)
			mismatch = true
		}
	}
	if mismatch {
		os.Exit(1)
	}
	logger.Info(ctx, "All broad phases agree", "pairs", results[0].pairCount())
}

// areaBounds is the placement area grown by the largest body and the
// distance a body can travel in a few seconds.
func areaBounds(o scene.RandomOptions) physics.Bounds {
	margin := o.MaxSize + o.MaxSpeed*4
	return physics.Bounds{
		Left:   -margin,
		Top:    -margin,
		Right:  o.Width + margin,
		Bottom: o.Height + margin,
	}
}
