// pkg/physics/shape.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind identifies the concrete geometry behind a Shape
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
	ShapePolygon
)

// String returns the lowercase name of the shape kind
func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Shape is the geometry owned by a Collider. The set of implementations is
// closed: *Box, *Circle and *Polygon.
type Shape interface {
	Kind() ShapeKind
	// Width and Height are the extents of the axis-aligned bounding box.
	Width() float64
	Height() float64
	// Valid reports whether the shape can take part in a collision test.
	Valid() bool
	shape()
}

// Box is an axis-aligned rectangle. Rotation only matters once the box is
// converted to a polygon for the SAT solver.
type Box struct {
	W        float64
	H        float64
	Rotation float64
}

// NewBox creates a box shape
func NewBox(width, height float64) *Box {
	return &Box{W: width, H: height}
}

func (b *Box) Kind() ShapeKind { return ShapeBox }
func (b *Box) Width() float64  { return b.W }
func (b *Box) Height() float64 { return b.H }
func (b *Box) Valid() bool     { return b != nil && b.W > 0 && b.H > 0 }
func (b *Box) shape()          {}

// ToPolygon returns a clockwise rectangle centered at the origin with the
// box rotation applied.
func (b *Box) ToPolygon() *Polygon {
	hw, hh := b.W/2, b.H/2
	p := NewPolygon([]Vector2D{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	})
	if b.Rotation != 0 {
		p.SetRotation(b.Rotation)
	}
	return p
}

// Circle is a circular shape centered on its collider's anchor point
type Circle struct {
	Radius float64
}

// NewCircle creates a circle shape
func NewCircle(radius float64) *Circle {
	return &Circle{Radius: radius}
}

func (c *Circle) Kind() ShapeKind { return ShapeCircle }
func (c *Circle) Width() float64  { return c.Radius * 2 }
func (c *Circle) Height() float64 { return c.Radius * 2 }
func (c *Circle) Valid() bool     { return c != nil && c.Radius > 0 }
func (c *Circle) shape()          {}

// Polygon is a convex polygon whose points are listed clockwise in screen
// space (y axis pointing down). Points are relative to the collider position.
//
// CalcPoints, Edges and Normals are derived caches. They are recomputed
// eagerly by every mutator and must not be written by callers.
type Polygon struct {
	Points   []Vector2D
	Offset   Vector2D
	Rotation float64

	CalcPoints []Vector2D
	Edges      []Vector2D
	Normals    []Vector2D

	min Vector2D
	max Vector2D
}

// NewPolygon creates a polygon from clockwise points
func NewPolygon(points []Vector2D) *Polygon {
	p := &Polygon{}
	p.SetPoints(points)
	return p
}

func (p *Polygon) Kind() ShapeKind { return ShapePolygon }
func (p *Polygon) Width() float64  { return p.max.X - p.min.X }
func (p *Polygon) Height() float64 { return p.max.Y - p.min.Y }
func (p *Polygon) Valid() bool     { return p != nil && len(p.CalcPoints) >= 3 }
func (p *Polygon) shape()          {}

// Bounds returns the extrema of the calculated points, relative to the
// collider position.
func (p *Polygon) Bounds() (min, max Vector2D) {
	return p.min, p.max
}

// SetPoints replaces the source points. The caches are reallocated only when
// the vertex count changes.
func (p *Polygon) SetPoints(points []Vector2D) *Polygon {
	if len(points) != len(p.Points) {
		p.CalcPoints = make([]Vector2D, len(points))
		p.Edges = make([]Vector2D, len(points))
		p.Normals = make([]Vector2D, len(points))
	}
	p.Points = append(p.Points[:0], points...)
	p.recalc()
	return p
}

// SetOffset sets the offset applied to every point before rotation
func (p *Polygon) SetOffset(offset Vector2D) *Polygon {
	p.Offset = offset
	p.recalc()
	return p
}

// SetRotation sets the absolute rotation in radians
func (p *Polygon) SetRotation(angle float64) *Polygon {
	p.Rotation = angle
	p.recalc()
	return p
}

// Rotate rotates the source points by angle radians around the origin
func (p *Polygon) Rotate(angle float64) *Polygon {
	m := mgl64.Rotate2D(angle)
	for i, pt := range p.Points {
		r := m.Mul2x1(mgl64.Vec2{pt.X, pt.Y})
		p.Points[i] = Vector2D{X: r[0], Y: r[1]}
	}
	p.recalc()
	return p
}

// Translate moves the source points by (dx, dy)
func (p *Polygon) Translate(dx, dy float64) *Polygon {
	for i := range p.Points {
		p.Points[i].X += dx
		p.Points[i].Y += dy
	}
	p.recalc()
	return p
}

// recalc applies offset then rotation to every point and rebuilds edges,
// normals and extents.
func (p *Polygon) recalc() {
	n := len(p.Points)
	if n == 0 {
		p.min, p.max = Vector2D{}, Vector2D{}
		return
	}

	rot := mgl64.Rotate2D(p.Rotation)
	for i, pt := range p.Points {
		calc := pt.Add(p.Offset)
		if p.Rotation != 0 {
			r := rot.Mul2x1(mgl64.Vec2{calc.X, calc.Y})
			calc = Vector2D{X: r[0], Y: r[1]}
		}
		p.CalcPoints[i] = calc
	}

	p.min = Vector2D{X: math.Inf(1), Y: math.Inf(1)}
	p.max = Vector2D{X: math.Inf(-1), Y: math.Inf(-1)}
	for i, pt := range p.CalcPoints {
		next := p.CalcPoints[(i+1)%n]
		p.Edges[i] = next.Sub(pt)
		p.Normals[i] = p.Edges[i].Perp().Normalize()

		p.min.X = math.Min(p.min.X, pt.X)
		p.min.Y = math.Min(p.min.Y, pt.Y)
		p.max.X = math.Max(p.max.X, pt.X)
		p.max.Y = math.Max(p.max.Y, pt.Y)
	}
}
