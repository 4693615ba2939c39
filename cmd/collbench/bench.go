// cmd/collbench/bench.go
package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/scene"
)

// pair is a colliding pair of body indices with A < B
type pair struct {
	A, B int
}

func comparePairs(x, y pair) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	return cmp.Compare(x.B, y.B)
}

// result is what one broad phase produced for the scenario
type result struct {
	Kind    physics.BroadPhaseKind
	Frames  [][]pair
	Elapsed time.Duration

	Candidates int
	Tests      int
	Hits       int
}

// benchOptions are shared by every broad phase run
type benchOptions struct {
	World  physics.WorldOptions
	Frames int
	DT     float64
	Logger *logging.Logger
}

// benchmark runs bodies through every kind concurrently. Results are in
// the order of kinds.
func benchmark(ctx context.Context, bodies *scene.Scene, kinds []physics.BroadPhaseKind, opts benchOptions) ([]result, error) {
	results := make([]result, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			r, err := runKind(ctx, kind, bodies, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runKind steps a private world that uses the given broad phase. Collision
// responses are suppressed so every broad phase sees the same motion.
func runKind(ctx context.Context, kind physics.BroadPhaseKind, bodies *scene.Scene, opts benchOptions) (result, error) {
	bus := event.NewEventBus()
	wopts := opts.World
	wopts.BroadPhase = kind
	wopts.Bus = bus
	wopts.Logger = opts.Logger

	w, err := physics.NewWorld(wopts)
	if err != nil {
		return result{}, err
	}
	colliders, err := bodies.Build(ctx, w, opts.Logger)
	if err != nil {
		return result{}, err
	}

	index := make(map[uint64]int, len(colliders))
	veto := physics.HandlerFuncs{OnCollide: func(*physics.Collider, physics.Contact) bool { return false }}
	for i, c := range colliders {
		index[c.ID] = i
		c.Handler = veto
	}

	var current []pair
	sub := bus.Subscribe(event.BodyCollision, func(e event.Event) {
		ce, ok := e.(*event.CollisionEvent)
		if !ok {
			return
		}
		a, b := index[ce.EntityA], index[ce.EntityB]
		if a > b {
			a, b = b, a
		}
		current = append(current, pair{A: a, B: b})
	})
	defer sub.Cancel()

	r := result{Kind: kind, Frames: make([][]pair, 0, opts.Frames)}
	start := time.Now()
	for f := 0; f < opts.Frames; f++ {
		if err := ctx.Err(); err != nil {
			return result{}, err
		}
		current = nil
		w.Step(opts.DT)

		slices.SortFunc(current, comparePairs)
		r.Frames = append(r.Frames, current)

		stats := w.Stats()
		r.Candidates += stats.Candidates
		r.Tests += stats.Tests
		r.Hits += stats.Hits
	}
	r.Elapsed = time.Since(start)

	opts.Logger.Debug(ctx, "broad phase finished",
		"broad_phase", string(kind),
		"frames", len(r.Frames),
	)
	return r, nil
}

// compare returns an error describing the first frame where got differs
// from want.
func compare(want, got result) error {
	if len(want.Frames) != len(got.Frames) {
		return fmt.Errorf("%s ran %d frames, %s ran %d",
			want.Kind, len(want.Frames), got.Kind, len(got.Frames))
	}
	for f := range want.Frames {
		w, g := want.Frames[f], got.Frames[f]
		if slices.Equal(w, g) {
			continue
		}
		for i := 0; i < min(len(w), len(g)); i++ {
			if w[i] != g[i] {
				return fmt.Errorf("frame %d: %s reports pair %v where %s reports %v",
					f+1, want.Kind, w[i], got.Kind, g[i])
			}
		}
		return fmt.Errorf("frame %d: %s found %d pairs, %s found %d",
			f+1, want.Kind, len(w), got.Kind, len(g))
	}
	return nil
}

// pairCount totals the pairs over every frame
func (r result) pairCount() int {
	n := 0
	for _, f := range r.Frames {
		n += len(f)
	}
	return n
}
