// pkg/physics/world.go
package physics

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
)

// WorldOptions configures a World. Zero values select the defaults: no
// gravity, the AABB solver and a spatial hash with DefaultCellSize cells.
type WorldOptions struct {
	Gravity    Vector2D
	Solver     SolverKind
	BroadPhase BroadPhaseKind

	CellSize         float64
	QuadTreeBounds   Bounds
	QuadTreeCapacity int

	// Bus receives body and collision events when set.
	Bus    *event.Bus
	Logger *logging.Logger
}

// Stats counts the work done by the most recent Update
type Stats struct {
	Bodies     int
	Candidates int
	Tests      int
	Hits       int
}

type pairKey struct {
	lo uint64
	hi uint64
}

func keyOf(a, b *Collider) pairKey {
	if a.ID < b.ID {
		return pairKey{lo: a.ID, hi: b.ID}
	}
	return pairKey{lo: b.ID, hi: a.ID}
}

// World owns the collider bookkeeping, the broad phase and the solver, and
// runs the per-frame integrate, broad, narrow and response pipeline. It is
// not safe for concurrent use.
type World struct {
	Gravity Vector2D

	bodies []*Collider
	groups map[int][]*Collider

	broad  BroadPhase
	solver Solver

	checked    map[pairKey]struct{}
	response   Response
	candidates []*Collider
	stats      Stats
	frame      uint64

	bus    *event.Bus
	logger *logging.Logger
}

// NewWorld creates a world from opts
func NewWorld(opts WorldOptions) (*World, error) {
	solver, err := NewSolver(opts.Solver)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	w := &World{
		Gravity: opts.Gravity,
		groups:  make(map[int][]*Collider),
		solver:  solver,
		checked: make(map[pairKey]struct{}),
		bus:     opts.Bus,
		logger:  opts.Logger,
	}
	if w.logger == nil {
		w.logger = logger
	}

	w.broad, err = newBroadPhase(opts.BroadPhase, opts, w.groups)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}
	return w, nil
}

// NewWorldWith creates a world around a caller-provided broad phase and
// solver.
func NewWorldWith(broad BroadPhase, solver Solver, gravity Vector2D) *World {
	return &World{
		Gravity: gravity,
		groups:  make(map[int][]*Collider),
		broad:   broad,
		solver:  solver,
		checked: make(map[pairKey]struct{}),
		logger:  logger,
	}
}

// Solver returns the narrow-phase solver in use
func (w *World) Solver() Solver {
	return w.solver
}

// BroadPhase returns the broad phase in use
func (w *World) BroadPhase() BroadPhase {
	return w.broad
}

// Bodies returns the registered colliders, including those flagged for
// removal that have not yet been evicted. The slice must not be modified.
func (w *World) Bodies() []*Collider {
	return w.bodies
}

// Group returns the members of a collision group. The slice must not be
// modified.
func (w *World) Group(group int) []*Collider {
	return w.groups[group]
}

// Extent returns the union of the bounds of every registered collider. ok
// is false for an empty world.
func (w *World) Extent() (extent Bounds, ok bool) {
	for i, c := range w.bodies {
		b := c.Bounds()
		if i == 0 {
			extent = b
			continue
		}
		extent.Left = min(extent.Left, b.Left)
		extent.Top = min(extent.Top, b.Top)
		extent.Right = max(extent.Right, b.Right)
		extent.Bottom = max(extent.Bottom, b.Bottom)
	}
	return extent, len(w.bodies) > 0
}

// Stats returns the counters of the last Update
func (w *World) Stats() Stats {
	return w.stats
}

// Frame returns the number of completed Update calls
func (w *World) Frame() uint64 {
	return w.frame
}

// AddBody registers a collider. Adding a collider that is already in this
// world is a no-op, and it cancels a pending removal.
func (w *World) AddBody(c *Collider) error {
	if c == nil {
		return ErrNilCollider
	}
	if c.world == w {
		c.removed = false
		return nil
	}
	if c.world != nil {
		return fmt.Errorf("collider %d: %w", c.ID, ErrAlreadyRegistered)
	}
	if !c.valid() {
		w.logger.Warn(context.Background(), "collider added with invalid shape",
			"collider_id", c.ID,
		)
	}

	c.world = w
	c.removed = false
	c.snapshot()
	c.refreshBounds()
	w.bodies = append(w.bodies, c)
	if c.group != NoGroup {
		w.groups[c.group] = append(w.groups[c.group], c)
	}

	if w.bus != nil {
		w.bus.Publish(event.NewBodyEvent(event.BodyAdded, w, c.ID, c.group))
	}
	return nil
}

// RemoveBody flags a collider for removal at the next PreUpdate. Removing
// an unregistered or already removed collider is a no-op.
func (w *World) RemoveBody(c *Collider) {
	if c == nil || c.world != w {
		return
	}
	c.removed = true
}

// SetCollisionGroup moves a collider to another group bucket
func (w *World) SetCollisionGroup(c *Collider, group int) error {
	if c == nil {
		return ErrNilCollider
	}
	if c.world != w {
		return fmt.Errorf("collider %d: %w", c.ID, ErrNotRegistered)
	}
	if err := checkGroup(group); err != nil {
		return err
	}
	if c.group == group {
		return nil
	}

	if c.group != NoGroup {
		w.groups[c.group] = removeCollider(w.groups[c.group], c)
	}
	c.group = group
	if group != NoGroup {
		w.groups[group] = append(w.groups[group], c)
	}
	return nil
}

// SetCollideAgainst sets the groups a collider responds to
func (w *World) SetCollideAgainst(c *Collider, groups ...int) error {
	if c == nil {
		return ErrNilCollider
	}
	if c.world != w {
		return fmt.Errorf("collider %d: %w", c.ID, ErrNotRegistered)
	}
	return c.SetCollideAgainst(groups...)
}

// Step runs PreUpdate and Update for one frame
func (w *World) Step(dt float64) {
	w.PreUpdate(dt)
	w.Update(dt)
}

// PreUpdate evicts colliders flagged for removal, snapshots last-frame
// positions and resets the per-frame pair table. It is the only place where
// removal takes effect.
func (w *World) PreUpdate(dt float64) {
	kept := w.bodies[:0]
	for _, c := range w.bodies {
		if c.removed {
			w.evict(c)
			continue
		}
		c.snapshot()
		kept = append(kept, c)
	}
	clearTail(w.bodies, len(kept))
	w.bodies = kept

	clear(w.checked)
}

func (w *World) evict(c *Collider) {
	if c.group != NoGroup {
		w.groups[c.group] = removeCollider(w.groups[c.group], c)
	}
	c.world = nil
	c.removed = false
	if w.bus != nil {
		w.bus.Publish(event.NewBodyEvent(event.BodyRemoved, w, c.ID, c.group))
	}
}

// Update integrates every dynamic collider, rebuilds the broad phase and
// resolves collisions for every collider with a non-empty collide-against
// mask.
func (w *World) Update(dt float64) {
	w.stats = Stats{Bodies: len(w.bodies)}

	for _, c := range w.bodies {
		if !c.removed {
			c.integrate(w.Gravity, dt)
		}
		c.refreshBounds()
	}

	w.broad.Clear()
	for _, c := range w.bodies {
		if !c.removed && c.valid() {
			w.broad.Insert(c)
		}
	}

	// Bodies added by callbacks join the next frame.
	n := len(w.bodies)
	for i := 0; i < n; i++ {
		if c := w.bodies[i]; !c.removed && c.against != 0 {
			c.beforeCollide()
		}
	}
	for i := 0; i < n; i++ {
		if c := w.bodies[i]; !c.removed && c.against != 0 {
			w.collide(c)
		}
	}

	w.frame++
	if w.bus != nil {
		w.bus.Publish(event.NewFrameEvent(w, w.frame,
			w.stats.Bodies, w.stats.Candidates, w.stats.Tests, w.stats.Hits))
	}
}

// collide runs the narrow phase and response for every candidate of a
func (w *World) collide(a *Collider) {
	w.candidates = w.broad.Retrieve(a, w.candidates[:0])
	w.stats.Candidates += len(w.candidates)
	slices.SortFunc(w.candidates, func(x, y *Collider) int {
		return cmp.Compare(x.ID, y.ID)
	})

	for _, b := range w.candidates {
		if b == a || b.removed || a.removed {
			continue
		}
		aWantsB := a.against&b.groupBit() != 0
		bWantsA := b.against&a.groupBit() != 0
		if !aWantsB && !bWantsA {
			continue
		}

		key := keyOf(a, b)
		if _, done := w.checked[key]; done {
			continue
		}
		w.checked[key] = struct{}{}

		w.stats.Tests++
		if !w.solver.HitTest(a, b, &w.response) {
			continue
		}
		w.stats.Hits++
		w.solver.HitResponse(a, b, aWantsB, bWantsA, &w.response)

		if aWantsB {
			a.afterCollide(b)
		}
		if bWantsA {
			b.afterCollide(a)
		}
		if w.bus != nil {
			w.bus.Publish(event.NewCollisionEvent(w, a.ID, b.ID))
		}
	}
	clearTail(w.candidates, 0)
}

func removeCollider(list []*Collider, c *Collider) []*Collider {
	i := slices.Index(list, c)
	if i < 0 {
		return list
	}
	last := len(list) - 1
	list[i] = list[last]
	list[last] = nil
	return list[:last]
}
