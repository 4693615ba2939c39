// cmd/sandbox/run.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/opd-ai/go-collide/pkg/health"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/render"
)

// runOptions configures a fixed-step simulation loop
type runOptions struct {
	World    *physics.World
	Renderer render.Renderer
	Tracker  *render.CollisionTracker
	Logger   *logging.Logger

	Frames int
	DT     float64
	// Pace sleeps between frames so one frame takes DT of wall time.
	Pace bool

	Health      *health.Checker
	HealthEvery int
}

// summary describes a finished run
type summary struct {
	Frames  int
	Hits    int
	Elapsed time.Duration
	Report  health.Report
}

// run steps the world Frames times, or until ctx is cancelled when Frames
// is zero. Every frame is drawn; health is checked every HealthEvery
// frames and at the end unless the last frame was just checked.
func run(ctx context.Context, opts runOptions) (summary, error) {
	var s summary
	start := time.Now()
	checkedAt := -1

	var tick <-chan time.Time
	if opts.Pace {
		ticker := time.NewTicker(time.Duration(opts.DT * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for opts.Frames == 0 || s.Frames < opts.Frames {
		if err := ctx.Err(); err != nil {
			break
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				continue
			case <-tick:
			}
		}

		opts.Tracker.Reset()
		opts.World.Step(opts.DT)
		s.Frames++
		s.Hits += opts.World.Stats().Hits

		if err := render.DrawWorld(opts.Renderer, opts.World, opts.Tracker); err != nil {
			return s, fmt.Errorf("failed to draw frame %d: %w", opts.World.Frame(), err)
		}

		if opts.Health != nil && opts.HealthEvery > 0 && s.Frames%opts.HealthEvery == 0 {
			checkHealth(ctx, opts, &s)
			checkedAt = s.Frames
		}
	}

	if opts.Health != nil && checkedAt != s.Frames {
		checkHealth(ctx, opts, &s)
	}
	s.Elapsed = time.Since(start)

	if opts.Health != nil && !s.Report.Healthy() {
		return s, fmt.Errorf("simulation unhealthy: %v", s.Report.Failed())
	}
	return s, nil
}

func checkHealth(ctx context.Context, opts runOptions, s *summary) {
	s.Report = opts.Health.Run(ctx)
	if s.Report.Healthy() {
		opts.Logger.Debug(ctx, "Health check passed", "frame", opts.World.Frame())
		return
	}
	opts.Logger.Warn(ctx, "Health check failed",
		"frame", opts.World.Frame(),
		"failed", s.Report.Failed(),
	)
}
