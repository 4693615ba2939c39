// pkg/physics/response.go
package physics

import "math"

// Direction is the side of a collider that was hit
type Direction int

const (
	DirectionNone Direction = iota
	DirectionTop
	DirectionBottom
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionTop:
		return "TOP"
	case DirectionBottom:
		return "BOTTOM"
	case DirectionLeft:
		return "LEFT"
	case DirectionRight:
		return "RIGHT"
	default:
		return "NONE"
	}
}

// Opposite returns the side facing d on the other collider
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionTop:
		return DirectionBottom
	case DirectionBottom:
		return DirectionTop
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	default:
		return DirectionNone
	}
}

// directionOf classifies a vector pointing from a collider toward the other
// one by its dominant axis.
func directionOf(n Vector2D) Direction {
	switch {
	case n.X == 0 && n.Y == 0:
		return DirectionNone
	case math.Abs(n.Y) >= math.Abs(n.X) && n.Y > 0:
		return DirectionBottom
	case math.Abs(n.Y) >= math.Abs(n.X):
		return DirectionTop
	case n.X > 0:
		return DirectionRight
	default:
		return DirectionLeft
	}
}

// Contact is what a collider learns about a hit in its Collide callback.
// Direction and Angle are expressed from the receiving collider's point of
// view: Angle points from it toward the other collider.
type Contact struct {
	Direction Direction
	Angle     float64
	// Response is the full SAT result. Only the SAT solver sets it and it is
	// only valid for the duration of the callback.
	Response *Response
}

// Response describes the overlap of two colliders found by a narrow-phase
// test. It is owned by the caller and reused across tests; its contents are
// valid only until the next HitTest with the same value.
type Response struct {
	A *Collider
	B *Collider
	// Overlap is the magnitude of the overlap on the axis of least overlap.
	Overlap float64
	// OverlapN is the unit axis of least overlap, pointing from A to B.
	OverlapN Vector2D
	// OverlapV is OverlapN * Overlap; subtracting it from A separates the pair.
	OverlapV Vector2D
	// AInB and BInA report full containment.
	AInB bool
	BInA bool
}

// Clear prepares the response for a new test between a and b
func (r *Response) Clear(a, b *Collider) *Response {
	r.A = a
	r.B = b
	r.Overlap = math.MaxFloat64
	r.OverlapN = Vector2D{}
	r.OverlapV = Vector2D{}
	r.AInB = true
	r.BInA = true
	return r
}

// swap exchanges the roles of A and B, reversing the overlap vectors
func (r *Response) swap() {
	r.A, r.B = r.B, r.A
	r.OverlapN = r.OverlapN.Reverse()
	r.OverlapV = r.OverlapV.Reverse()
	r.AInB, r.BInA = r.BInA, r.AInB
}
