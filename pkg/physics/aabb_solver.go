// pkg/physics/aabb_solver.go
package physics

import "math"

// AABBSolver resolves boxes and circles with axis-aligned corrections.
// Polygons and rotated boxes are treated as their bounding boxes.
//
// The side a box was hit on is taken from the previous frame's bounds, not
// from the current overlap, so corner hits resolve the same way every time.
type AABBSolver struct{}

// NewAABBSolver creates an AABB solver
func NewAABBSolver() *AABBSolver {
	return &AABBSolver{}
}

// HitTest implements Solver.
func (s *AABBSolver) HitTest(a, b *Collider, r *Response) bool {
	r.Clear(a, b)
	if !a.valid() || !b.valid() {
		return false
	}

	ab, bb := a.Bounds(), b.Bounds()
	if !ab.Overlaps(bb) {
		return false
	}

	ac, aCircle := a.Shape.(*Circle)
	bc, bCircle := b.Shape.(*Circle)
	switch {
	case aCircle && bCircle:
		return circlesOverlap(a.Center(), ac.Radius, b.Center(), bc.Radius)
	case aCircle:
		return circleOverlapsBox(a.Center(), ac.Radius, bb)
	case bCircle:
		return circleOverlapsBox(b.Center(), bc.Radius, ab)
	default:
		return true
	}
}

// HitResponse implements Solver.
func (s *AABBSolver) HitResponse(a, b *Collider, aWantsB, bWantsA bool, r *Response) {
	ac, aCircle := a.Shape.(*Circle)
	bc, bCircle := b.Shape.(*Circle)

	var (
		corr   Vector2D
		ca, cb Contact
	)
	switch {
	case aCircle && bCircle:
		corr, ca, cb = resolveCircles(a.Center(), ac.Radius, b.Center(), bc.Radius)
	case aCircle:
		// corr is computed for the box, which is b here
		var boxCorr Vector2D
		boxCorr, cb, ca = resolveBoxCircle(b.Bounds(), a.Center(), ac.Radius)
		corr = boxCorr.Reverse()
	case bCircle:
		corr, ca, cb = resolveBoxCircle(a.Bounds(), b.Center(), bc.Radius)
	default:
		corr, ca, cb = resolveBoxes(a, b)
	}

	r.OverlapV = corr.Reverse()
	r.Overlap = corr.Length()
	r.OverlapN = r.OverlapV.Normalize()

	applyCorrection(a, b, aWantsB, bWantsA, ca, cb, corr)
}

func circlesOverlap(ca Vector2D, ra float64, cb Vector2D, rb float64) bool {
	total := ra + rb
	return ca.DistanceSquared(cb) < total*total
}

func circleOverlapsBox(center Vector2D, radius float64, box Bounds) bool {
	closest := clampToBounds(center, box)
	return center.DistanceSquared(closest) < radius*radius
}

func clampToBounds(p Vector2D, b Bounds) Vector2D {
	return Vector2D{
		X: math.Max(b.Left, math.Min(b.Right, p.X)),
		Y: math.Max(b.Top, math.Min(b.Bottom, p.Y)),
	}
}

// resolveBoxes classifies the approach side from last-frame bounds and
// returns the correction for a along that axis only.
func resolveBoxes(a, b *Collider) (Vector2D, Contact, Contact) {
	la, lb := a.LastBounds(), b.LastBounds()
	ab, bb := a.Bounds(), b.Bounds()

	var (
		dir  Direction
		corr Vector2D
	)
	switch {
	case la.Bottom <= lb.Top:
		dir, corr = DirectionBottom, Vector2D{Y: bb.Top - ab.Bottom}
	case la.Top >= lb.Bottom:
		dir, corr = DirectionTop, Vector2D{Y: bb.Bottom - ab.Top}
	case la.Right <= lb.Left:
		dir, corr = DirectionRight, Vector2D{X: bb.Left - ab.Right}
	case la.Left >= lb.Right:
		dir, corr = DirectionLeft, Vector2D{X: bb.Right - ab.Left}
	default:
		dir, corr = leastOverlap(ab, bb)
	}

	angle := a.Center().AngleTo(b.Center())
	return corr,
		Contact{Direction: dir, Angle: angle},
		Contact{Direction: dir.Opposite(), Angle: angle + math.Pi}
}

// leastOverlap pushes a out of b along the axis with the smaller overlap
func leastOverlap(a, b Bounds) (Direction, Vector2D) {
	overlapX := math.Min(a.Right, b.Right) - math.Max(a.Left, b.Left)
	overlapY := math.Min(a.Bottom, b.Bottom) - math.Max(a.Top, b.Top)
	ac, bc := a.Center(), b.Center()

	if overlapX < overlapY {
		if ac.X < bc.X {
			return DirectionRight, Vector2D{X: b.Left - a.Right}
		}
		return DirectionLeft, Vector2D{X: b.Right - a.Left}
	}
	if ac.Y < bc.Y {
		return DirectionBottom, Vector2D{Y: b.Top - a.Bottom}
	}
	return DirectionTop, Vector2D{Y: b.Bottom - a.Top}
}

// resolveCircles pushes circle a away from circle b along the line between
// their centers.
func resolveCircles(ca Vector2D, ra float64, cb Vector2D, rb float64) (Vector2D, Contact, Contact) {
	delta := cb.Sub(ca)
	dist := delta.Length()
	angle := 0.0
	if dist > 0 {
		angle = delta.Angle()
	}
	overlap := ra + rb - dist
	corr := FromAngle(angle, -overlap)

	n := FromAngle(angle, 1)
	return corr,
		Contact{Direction: directionOf(n), Angle: angle},
		Contact{Direction: directionOf(n.Reverse()), Angle: angle + math.Pi}
}

// resolveBoxCircle returns the correction for the box and the contacts for
// the box and the circle, in that order. The face is chosen from the point
// of the box closest to the circle center; when that point is a corner the
// box is pushed along the corner-to-center line, moving both axes at once.
func resolveBoxCircle(box Bounds, center Vector2D, radius float64) (Vector2D, Contact, Contact) {
	closest := clampToBounds(center, box)

	var (
		dir  Direction
		corr Vector2D
	)
	switch {
	case closest == center:
		dir, corr = deepestBoxCircle(box, center, radius)
	case closest.X == center.X:
		if center.Y < box.Top {
			dir, corr = DirectionTop, Vector2D{Y: center.Y + radius - box.Top}
		} else {
			dir, corr = DirectionBottom, Vector2D{Y: center.Y - radius - box.Bottom}
		}
	case closest.Y == center.Y:
		if center.X < box.Left {
			dir, corr = DirectionLeft, Vector2D{X: center.X + radius - box.Left}
		} else {
			dir, corr = DirectionRight, Vector2D{X: center.X - radius - box.Right}
		}
	default:
		d := center.Sub(closest)
		dist := d.Length()
		n := d.Scale(1 / dist)
		corr = n.Scale(-(radius - dist))
		dir = directionOf(n)
	}

	angle := box.Center().AngleTo(center)
	return corr,
		Contact{Direction: dir, Angle: angle},
		Contact{Direction: dir.Opposite(), Angle: angle + math.Pi}
}

// deepestBoxCircle handles a circle whose center is inside the box: the box
// takes the shortest of the four ways out.
func deepestBoxCircle(box Bounds, center Vector2D, radius float64) (Direction, Vector2D) {
	options := [4]struct {
		dir  Direction
		corr Vector2D
	}{
		{DirectionRight, Vector2D{X: center.X - radius - box.Right}},
		{DirectionLeft, Vector2D{X: center.X + radius - box.Left}},
		{DirectionBottom, Vector2D{Y: center.Y - radius - box.Bottom}},
		{DirectionTop, Vector2D{Y: center.Y + radius - box.Top}},
	}

	best := options[0]
	for _, o := range options[1:] {
		if o.corr.LengthSquared() < best.corr.LengthSquared() {
			best = o
		}
	}
	return best.dir, best.corr
}
