// pkg/physics/solver.go
package physics

import "fmt"

// Solver performs the narrow phase for a candidate pair and resolves hits.
type Solver interface {
	// HitTest reports whether a and b overlap. It fills r with whatever
	// overlap data the solver computes; r must not be retained.
	HitTest(a, b *Collider, r *Response) bool
	// HitResponse runs the Collide callbacks of the sides that want the
	// pair and applies positional correction to the sides that accept it.
	HitResponse(a, b *Collider, aWantsB, bWantsA bool, r *Response)
}

// SolverKind selects one of the built-in solvers
type SolverKind string

const (
	SolverAABB SolverKind = "aabb"
	SolverSAT  SolverKind = "sat"
)

// NewSolver builds the solver for kind
func NewSolver(kind SolverKind) (Solver, error) {
	switch kind {
	case SolverAABB, "":
		return NewAABBSolver(), nil
	case SolverSAT:
		return NewSATSolver(), nil
	default:
		return nil, fmt.Errorf("unknown solver %q", kind)
	}
}

// applyCorrection asks each interested side whether it accepts a hit and
// moves the accepting, non-static sides. corr is the full displacement that
// separates a from b when only a moves; b moves by -corr. When both sides
// accept, the displacement is split evenly.
func applyCorrection(a, b *Collider, aWantsB, bWantsA bool, ca, cb Contact, corr Vector2D) {
	aAccepts := aWantsB && a.collide(b, ca) && !a.Static
	bAccepts := bWantsA && b.collide(a, cb) && !b.Static

	switch {
	case aAccepts && bAccepts:
		half := corr.Scale(0.5)
		a.Position = a.Position.Add(half)
		b.Position = b.Position.Sub(half)
	case aAccepts:
		a.Position = a.Position.Add(corr)
	case bAccepts:
		b.Position = b.Position.Sub(corr)
	}
}
