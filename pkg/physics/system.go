// pkg/physics/system.go
package physics

import (
	"github.com/EngoEngine/ecs"
)

// SystemPriority runs the physics system ahead of the default render
// priority so drawn positions reflect the resolved frame.
const SystemPriority = 100

type systemEntity struct {
	basic    *ecs.BasicEntity
	collider *Collider
}

// System drives a World from an ecs.World update loop. Each entity owns
// exactly one collider.
type System struct {
	World *World

	entities map[uint64]systemEntity
}

// NewSystem wraps w in an ecs system
func NewSystem(w *World) *System {
	return &System{
		World:    w,
		entities: make(map[uint64]systemEntity),
	}
}

// Add registers the collider of an entity with the world
func (s *System) Add(basic *ecs.BasicEntity, c *Collider) error {
	if err := s.World.AddBody(c); err != nil {
		return err
	}
	if c.UserData == nil {
		c.UserData = basic
	}
	s.entities[basic.ID()] = systemEntity{basic: basic, collider: c}
	return nil
}

// Remove implements ecs.System. The collider leaves the world at the next
// frame.
func (s *System) Remove(basic ecs.BasicEntity) {
	e, ok := s.entities[basic.ID()]
	if !ok {
		return
	}
	s.World.RemoveBody(e.collider)
	delete(s.entities, basic.ID())
}

// Collider returns the collider registered for an entity
func (s *System) Collider(basic ecs.BasicEntity) (*Collider, bool) {
	e, ok := s.entities[basic.ID()]
	return e.collider, ok
}

// Len returns the number of registered entities
func (s *System) Len() int {
	return len(s.entities)
}

// Update implements ecs.System.
func (s *System) Update(dt float32) {
	s.World.Step(float64(dt))
}

// Priority implements ecs.Prioritizer.
func (s *System) Priority() int {
	return SystemPriority
}
