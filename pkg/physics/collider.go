// pkg/physics/collider.go
package physics

import (
	"math"
	"sync/atomic"
)

var lastColliderID atomic.Uint64

// Handler receives the gameplay collision hooks of a collider.
type Handler interface {
	// BeforeCollide runs once per frame before any pair involving the
	// collider is resolved.
	BeforeCollide()
	// Collide is called when the collider overlaps other and wants to
	// collide with it. Returning false refuses positional correction.
	Collide(other *Collider, contact Contact) bool
	// AfterCollide runs after the response for the pair has been applied.
	AfterCollide(other *Collider)
}

// HandlerFuncs adapts optional functions to the Handler interface.
// A nil OnCollide accepts every correction.
type HandlerFuncs struct {
	OnBefore  func()
	OnCollide func(other *Collider, contact Contact) bool
	OnAfter   func(other *Collider)
}

func (h HandlerFuncs) BeforeCollide() {
	if h.OnBefore != nil {
		h.OnBefore()
	}
}

func (h HandlerFuncs) Collide(other *Collider, contact Contact) bool {
	if h.OnCollide == nil {
		return true
	}
	return h.OnCollide(other, contact)
}

func (h HandlerFuncs) AfterCollide(other *Collider) {
	if h.OnAfter != nil {
		h.OnAfter(other)
	}
}

// Bounds is an axis-aligned bounding box in world space (y axis down)
type Bounds struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the horizontal extent
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

// Center returns the middle point of the box
func (b Bounds) Center() Vector2D {
	return Vector2D{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Overlaps reports a strict overlap; touching edges do not count
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Right > o.Left && b.Left < o.Right && b.Bottom > o.Top && b.Top < o.Bottom
}

// Touches reports an overlap that includes shared edges
func (b Bounds) Touches(o Bounds) bool {
	return b.Right >= o.Left && b.Left <= o.Right && b.Bottom >= o.Top && b.Top <= o.Bottom
}

// Contains reports whether o lies entirely inside b
func (b Bounds) Contains(o Bounds) bool {
	return o.Left >= b.Left && o.Right <= b.Right && o.Top >= b.Top && o.Bottom <= b.Bottom
}

// Finite reports whether every edge is a finite number
func (b Bounds) Finite() bool {
	for _, v := range [4]float64{b.Left, b.Top, b.Right, b.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Collider is a positioned body carrying one shape. It is owned by the
// gameplay code that created it; a World only keeps references to it.
type Collider struct {
	ID    uint64
	Shape Shape

	Position      Vector2D
	LastPosition  Vector2D
	Velocity      Vector2D
	VelocityLimit Vector2D
	Force         Vector2D
	Mass          float64
	// Damping in [0,1) decays velocity as (1-Damping)^dt.
	Damping float64
	// Anchor is the normalized pivot of the shape; (0.5, 0.5) is the center.
	Anchor Vector2D
	Static bool

	Handler  Handler
	UserData any

	group   int
	against Mask
	world   *World
	removed bool

	aabb       Bounds
	lastBounds Bounds

	// SAT form of a Box shape, built on first use
	satPolygon *Polygon
	satSource  Box
	satAnchor  Vector2D
}

// NewCollider creates a collider with a unique id, a centered anchor, unit
// mass and no collision group.
func NewCollider(shape Shape) *Collider {
	return &Collider{
		ID:     lastColliderID.Add(1),
		Shape:  shape,
		Mass:   1,
		Anchor: Vector2D{X: 0.5, Y: 0.5},
		group:  NoGroup,
	}
}

// SetShape replaces the shape. A cached SAT polygon is rebuilt on next use.
func (c *Collider) SetShape(shape Shape) {
	c.Shape = shape
	c.satPolygon = nil
	c.refreshBounds()
}

// Group returns the collision group index, or NoGroup
func (c *Collider) Group() int {
	return c.group
}

// CollideAgainst returns the mask of groups this collider responds to
func (c *Collider) CollideAgainst() Mask {
	return c.against
}

// SetGroup assigns the collision group, keeping the owning world's group
// buckets in sync.
func (c *Collider) SetGroup(group int) error {
	if c.world != nil {
		return c.world.SetCollisionGroup(c, group)
	}
	if err := checkGroup(group); err != nil {
		return err
	}
	c.group = group
	return nil
}

// SetCollideAgainst replaces the set of groups this collider responds to
func (c *Collider) SetCollideAgainst(groups ...int) error {
	for _, g := range groups {
		if g == NoGroup {
			continue
		}
		if err := checkGroup(g); err != nil {
			return err
		}
	}
	c.against = MaskOf(groups...)
	return nil
}

// World returns the world the collider is registered with, if any
func (c *Collider) World() *World {
	return c.world
}

// Remove flags the collider for removal. It leaves its world at the start
// of the next PreUpdate.
func (c *Collider) Remove() {
	if c.world != nil {
		c.removed = true
	}
}

// Removed reports whether the collider is waiting to leave its world
func (c *Collider) Removed() bool {
	return c.removed
}

// Center returns the center of the shape in world space
func (c *Collider) Center() Vector2D {
	return c.centerAt(c.Position)
}

// Bounds returns the bounding box at the current position
func (c *Collider) Bounds() Bounds {
	return c.boundsAt(c.Position)
}

// LastBounds returns the bounding box captured at the previous frame's
// position.
func (c *Collider) LastBounds() Bounds {
	return c.lastBounds
}

func (c *Collider) groupBit() Mask {
	if c.group == NoGroup {
		return 0
	}
	return Mask(1) << uint(c.group)
}

func (c *Collider) valid() bool {
	return c.Shape != nil && c.Shape.Valid()
}

func (c *Collider) anchorOffset() Vector2D {
	if c.Shape == nil {
		return Vector2D{}
	}
	return Vector2D{
		X: (0.5 - c.Anchor.X) * c.Shape.Width(),
		Y: (0.5 - c.Anchor.Y) * c.Shape.Height(),
	}
}

func (c *Collider) centerAt(pos Vector2D) Vector2D {
	if p, ok := c.Shape.(*Polygon); ok {
		min, max := p.Bounds()
		return pos.Add(min.Add(max).Scale(0.5))
	}
	return pos.Add(c.anchorOffset())
}

func (c *Collider) boundsAt(pos Vector2D) Bounds {
	switch s := c.Shape.(type) {
	case nil:
		return Bounds{Left: pos.X, Top: pos.Y, Right: pos.X, Bottom: pos.Y}
	case *Polygon:
		min, max := s.Bounds()
		return Bounds{Left: pos.X + min.X, Top: pos.Y + min.Y, Right: pos.X + max.X, Bottom: pos.Y + max.Y}
	case *Box:
		if s.Rotation != 0 {
			min, max := c.boxPolygon(s).Bounds()
			return Bounds{Left: pos.X + min.X, Top: pos.Y + min.Y, Right: pos.X + max.X, Bottom: pos.Y + max.Y}
		}
	}
	w, h := c.Shape.Width(), c.Shape.Height()
	left := pos.X - w*c.Anchor.X
	top := pos.Y - h*c.Anchor.Y
	return Bounds{Left: left, Top: top, Right: left + w, Bottom: top + h}
}

// boxPolygon returns the polygon form of a box shape, converting it the
// first time and again whenever the box or anchor changes.
func (c *Collider) boxPolygon(b *Box) *Polygon {
	if c.satPolygon == nil || c.satSource != *b || c.satAnchor != c.Anchor {
		c.satPolygon = b.ToPolygon()
		c.satPolygon.SetOffset(c.anchorOffset())
		c.satSource = *b
		c.satAnchor = c.Anchor
	}
	return c.satPolygon
}

// snapshot records the previous-frame position and bounds
func (c *Collider) snapshot() {
	c.LastPosition = c.Position
	c.lastBounds = c.boundsAt(c.LastPosition)
}

func (c *Collider) refreshBounds() {
	c.aabb = c.boundsAt(c.Position)
}

// integrate advances velocity and position by dt seconds
func (c *Collider) integrate(gravity Vector2D, dt float64) {
	if c.Static {
		return
	}

	c.Velocity = c.Velocity.Add(gravity.Scale(c.Mass * dt))
	if c.Mass > 0 {
		c.Velocity = c.Velocity.Add(c.Force.Scale(dt / c.Mass))
	} else {
		c.Velocity = c.Velocity.Add(c.Force.Scale(dt))
	}
	if c.Damping > 0 {
		c.Velocity = c.Velocity.Scale(math.Pow(1-c.Damping, dt))
	}
	c.Velocity = c.Velocity.ClampComponents(c.VelocityLimit)

	c.Position = c.Position.Add(c.Velocity.Scale(dt))
}

func (c *Collider) beforeCollide() {
	if c.Handler != nil {
		c.Handler.BeforeCollide()
	}
}

func (c *Collider) collide(other *Collider, contact Contact) bool {
	if c.Handler == nil {
		return true
	}
	return c.Handler.Collide(other, contact)
}

func (c *Collider) afterCollide(other *Collider) {
	if c.Handler != nil {
		c.Handler.AfterCollide(other)
	}
}
