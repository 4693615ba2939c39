// pkg/physics/sat_solver.go
package physics

import (
	"fmt"
	"math"
)

// Voronoi regions of a point relative to a line segment
const (
	leftVoronoiRegion   = -1
	middleVoronoiRegion = 0
	rightVoronoiRegion  = 1
)

// SATSolver performs exact tests for convex polygons and circles using the
// separating axis theorem. Boxes are converted to polygons on first use.
//
// A SATSolver keeps scratch buffers and must not be shared between
// goroutines.
type SATSolver struct {
	scratch *scratch
}

// NewSATSolver creates a SAT solver with a small preallocated scratch arena
func NewSATSolver() *SATSolver {
	return &SATSolver{scratch: newScratch(8, 4)}
}

// HitTest implements Solver.
func (s *SATSolver) HitTest(a, b *Collider, r *Response) bool {
	r.Clear(a, b)
	if !a.valid() || !b.valid() {
		return false
	}

	pa, ca := s.form(a)
	pb, cb := s.form(b)
	switch {
	case ca != nil && cb != nil:
		return s.testCircleCircle(a.Center(), ca.Radius, b.Center(), cb.Radius, r)
	case ca != nil:
		return s.testCirclePolygon(a.Center(), ca.Radius, b.Position, pb, r)
	case cb != nil:
		return s.testPolygonCircle(a.Position, pa, b.Center(), cb.Radius, r)
	default:
		return s.testPolygonPolygon(a.Position, pa, b.Position, pb, r)
	}
}

// HitResponse implements Solver. Both colliders move along the single
// overlap vector: a by -OverlapV, b by +OverlapV.
func (s *SATSolver) HitResponse(a, b *Collider, aWantsB, bWantsA bool, r *Response) {
	n := r.OverlapN
	angle := n.Angle()
	ca := Contact{Direction: directionOf(n), Angle: angle, Response: r}
	cb := Contact{Direction: directionOf(n.Reverse()), Angle: angle + math.Pi, Response: r}

	applyCorrection(a, b, aWantsB, bWantsA, ca, cb, r.OverlapV.Reverse())
}

// form returns the SAT geometry of a collider: a polygon or a circle.
// Any other shape is a programming error.
func (s *SATSolver) form(c *Collider) (*Polygon, *Circle) {
	switch sh := c.Shape.(type) {
	case *Polygon:
		return sh, nil
	case *Circle:
		return nil, sh
	case *Box:
		return c.boxPolygon(sh), nil
	default:
		panic(fmt.Sprintf("physics: SAT solver cannot handle shape %T", c.Shape))
	}
}

func (s *SATSolver) testCircleCircle(ca Vector2D, ra float64, cb Vector2D, rb float64, r *Response) bool {
	difference := cb.Sub(ca)
	total := ra + rb
	distSq := difference.LengthSquared()
	if distSq >= total*total {
		return false
	}

	dist := math.Sqrt(distSq)
	r.Overlap = total - dist
	if dist > 0 {
		r.OverlapN = difference.Scale(1 / dist)
	} else {
		r.OverlapN = Vector2D{X: 1}
	}
	r.OverlapV = r.OverlapN.Scale(r.Overlap)
	r.AInB = ra <= rb && dist <= rb-ra
	r.BInA = rb <= ra && dist <= ra-rb
	return true
}

func (s *SATSolver) testPolygonPolygon(aPos Vector2D, a *Polygon, bPos Vector2D, b *Polygon, r *Response) bool {
	for _, n := range a.Normals {
		if s.isSeparatingAxis(aPos, bPos, a.CalcPoints, b.CalcPoints, n, r) {
			return false
		}
	}
	for _, n := range b.Normals {
		if s.isSeparatingAxis(aPos, bPos, a.CalcPoints, b.CalcPoints, n, r) {
			return false
		}
	}

	r.OverlapV = r.OverlapN.Scale(r.Overlap)
	return true
}

// isSeparatingAxis projects both point sets onto axis and reports a gap.
// When the projections overlap it records the overlap in r if it is the
// smallest seen so far, and drops containment flags that no longer hold.
func (s *SATSolver) isSeparatingAxis(aPos, bPos Vector2D, aPoints, bPoints []Vector2D, axis Vector2D, r *Response) bool {
	defer s.scratch.release(s.scratch.mark())

	rangeA := s.scratch.rng()
	rangeB := s.scratch.rng()
	flattenPointsOn(aPoints, axis, rangeA)
	flattenPointsOn(bPoints, axis, rangeB)

	offset := bPos.Sub(aPos).Dot(axis)
	rangeB[0] += offset
	rangeB[1] += offset

	// Touching projections do not collide.
	if rangeA[0] >= rangeB[1] || rangeB[0] >= rangeA[1] {
		return true
	}

	if rangeA[0] < rangeB[0] || rangeA[1] > rangeB[1] {
		r.AInB = false
	}
	if rangeB[0] < rangeA[0] || rangeB[1] > rangeA[1] {
		r.BInA = false
	}

	option1 := rangeA[1] - rangeB[0]
	option2 := rangeB[1] - rangeA[0]
	overlap := option1
	if option2 <= option1 {
		overlap = -option2
	}

	if abs := math.Abs(overlap); abs < r.Overlap {
		r.Overlap = abs
		r.OverlapN = axis
		if overlap < 0 {
			r.OverlapN = axis.Reverse()
		}
	}
	return false
}

func flattenPointsOn(points []Vector2D, normal Vector2D, result *Range) {
	min := math.MaxFloat64
	max := -math.MaxFloat64
	for _, p := range points {
		dot := p.Dot(normal)
		if dot < min {
			min = dot
		}
		if dot > max {
			max = dot
		}
	}
	result[0] = min
	result[1] = max
}

// voronoiRegion classifies point (relative to the start of line) as
// before the segment, along it or past its end.
func voronoiRegion(line, point Vector2D) int {
	len2 := line.LengthSquared()
	dp := point.Dot(line)
	switch {
	case dp < 0:
		return leftVoronoiRegion
	case dp > len2:
		return rightVoronoiRegion
	default:
		return middleVoronoiRegion
	}
}

func (s *SATSolver) testPolygonCircle(polyPos Vector2D, poly *Polygon, center Vector2D, radius float64, r *Response) bool {
	defer s.scratch.release(s.scratch.mark())

	circlePos := s.scratch.vec()
	point := s.scratch.vec()
	point2 := s.scratch.vec()
	*circlePos = center.Sub(polyPos)

	radius2 := radius * radius
	points := poly.CalcPoints
	n := len(points)
	best := math.MaxFloat64

	for i := 0; i < n; i++ {
		next := (i + 1) % n
		prev := (i + n - 1) % n
		overlap := 0.0
		var overlapN Vector2D
		found := false

		*point = circlePos.Sub(points[i])
		if point.LengthSquared() > radius2 {
			r.AInB = false
		}

		switch voronoiRegion(poly.Edges[i], *point) {
		case leftVoronoiRegion:
			// Closest to the start vertex only if also past the end of the
			// previous edge.
			*point2 = circlePos.Sub(points[prev])
			if voronoiRegion(poly.Edges[prev], *point2) == rightVoronoiRegion {
				dist := point.Length()
				if dist >= radius {
					return false
				}
				r.BInA = false
				overlapN = point.Normalize()
				overlap = radius - dist
				found = true
			}
		case rightVoronoiRegion:
			*point = circlePos.Sub(points[next])
			if voronoiRegion(poly.Edges[next], *point) == leftVoronoiRegion {
				dist := point.Length()
				if dist >= radius {
					return false
				}
				r.BInA = false
				overlapN = point.Normalize()
				overlap = radius - dist
				found = true
			}
		default:
			normal := poly.Normals[i]
			dist := point.Dot(normal)
			if dist > 0 && dist >= radius {
				return false
			}
			overlapN = normal
			overlap = radius - dist
			if dist >= 0 || overlap < 2*radius {
				r.BInA = false
			}
			found = true
		}

		if found && math.Abs(overlap) < best {
			best = math.Abs(overlap)
			r.Overlap = overlap
			r.OverlapN = overlapN
		}
	}

	r.OverlapV = r.OverlapN.Scale(r.Overlap)
	return true
}

func (s *SATSolver) testCirclePolygon(center Vector2D, radius float64, polyPos Vector2D, poly *Polygon, r *Response) bool {
	a, b := r.A, r.B
	r.A, r.B = b, a
	if !s.testPolygonCircle(polyPos, poly, center, radius, r) {
		r.A, r.B = a, b
		return false
	}
	r.swap()
	return true
}
