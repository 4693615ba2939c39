// pkg/render/renderer.go
package render

import (
	"context"
	"sync"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
)

// Renderer draws colliders. A frame is Clear, any number of
// RenderCollider calls, then Present.
type Renderer interface {
	Clear()
	RenderCollider(c *physics.Collider, colliding bool)
	Present() error
}

// DrawWorld renders every collider of w that is not flagged for removal.
// hits may be nil.
func DrawWorld(r Renderer, w *physics.World, hits *CollisionTracker) error {
	r.Clear()
	for _, c := range w.Bodies() {
		if c.Removed() {
			continue
		}
		r.RenderCollider(c, hits.Colliding(c.ID))
	}
	return r.Present()
}

// NullRenderer logs what it is asked to draw at debug level.
type NullRenderer struct {
	logger *logging.Logger
	drawn  int
}

// NewNullRenderer creates a new NullRenderer. A nil logger uses the
// default stderr logger.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.drawn = 0
}

// RenderCollider implements Renderer.
func (d *NullRenderer) RenderCollider(c *physics.Collider, colliding bool) {
	ctx := context.Background()
	if c == nil {
		d.logger.Debug(ctx, "RenderCollider called with nil collider")
		return
	}
	d.drawn++

	kind := "none"
	if c.Shape != nil {
		kind = c.Shape.Kind().String()
	}
	d.logger.Debug(ctx, "RenderCollider called",
		"collider_id", c.ID,
		"shape", kind,
		"x", c.Position.X,
		"y", c.Position.Y,
		"colliding", colliding,
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() error {
	d.logger.Debug(context.Background(), "Present called", "colliders", d.drawn)
	return nil
}

// Drawn returns the number of colliders rendered since the last Clear
func (d *NullRenderer) Drawn() int {
	return d.drawn
}

// CollisionTracker records which bodies collided, from the collision
// events of a world's bus, until Reset. A nil tracker reports no hits.
type CollisionTracker struct {
	mu   sync.Mutex
	hits map[uint64]int
	subs []*event.Subscription
}

// NewCollisionTracker subscribes to collision events on bus
func NewCollisionTracker(bus *event.Bus) *CollisionTracker {
	t := &CollisionTracker{hits: make(map[uint64]int)}
	t.subs = append(t.subs, bus.Subscribe(event.BodyCollision, func(e event.Event) {
		ce, ok := e.(*event.CollisionEvent)
		if !ok {
			return
		}
		t.mu.Lock()
		t.hits[ce.EntityA]++
		t.hits[ce.EntityB]++
		t.mu.Unlock()
	}))
	return t
}

// Colliding reports whether id was part of a collision since the last Reset
func (t *CollisionTracker) Colliding(id uint64) bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits[id] > 0
}

// Count returns the number of bodies with at least one collision
func (t *CollisionTracker) Count() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.hits)
}

// Reset forgets all recorded collisions
func (t *CollisionTracker) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	clear(t.hits)
	t.mu.Unlock()
}

// Close stops listening for events
func (t *CollisionTracker) Close() {
	for _, sub := range t.subs {
		sub.Cancel()
	}
	t.subs = nil
}
