// Package validation checks shapes and body parameters before they reach a
// collision world.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// Limits applied to scene input
const (
	MaxBodyNameLen    = 32
	MaxPolygonPoints  = 64
	MaxShapeDimension = 1 << 20
)

var validBodyNameChars = regexp.MustCompile(`^[a-zA-Z0-9\-_.:]+$`)

// ValidateBodyName validates a body name and returns it trimmed
func ValidateBodyName(name string) (string, error) {
	if len(name) > MaxBodyNameLen {
		return "", fmt.Errorf("body name too long: %d characters (max %d)", len(name), MaxBodyNameLen)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("body name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("body name cannot be empty")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("body name contains control characters")
		}
	}

	if !validBodyNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("body name contains invalid characters (only alphanumeric, hyphens, underscores, dots and colons allowed)")
	}

	return trimmed, nil
}

// ValidateDimension checks a single shape extent such as a width or radius
func ValidateDimension(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be finite, got %v", what, v)
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", what, v)
	}
	if v > MaxShapeDimension {
		return fmt.Errorf("%s too large: %v (max %d)", what, v, MaxShapeDimension)
	}
	return nil
}

// ValidateVector checks that both components are finite numbers
func ValidateVector(what string, v physics.Vector2D) error {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) || math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
		return fmt.Errorf("%s must be finite, got (%v, %v)", what, v.X, v.Y)
	}
	return nil
}

// ValidateBox validates box dimensions
func ValidateBox(width, height float64) error {
	if err := ValidateDimension("box width", width); err != nil {
		return err
	}
	return ValidateDimension("box height", height)
}

// ValidateCircle validates a circle radius
func ValidateCircle(radius float64) error {
	return ValidateDimension("circle radius", radius)
}

// ValidatePolygon checks that points describe a convex polygon wound
// clockwise in screen space (y down) without repeated points or crossing
// edges.
func ValidatePolygon(points []physics.Vector2D) error {
	n := len(points)
	if n < 3 {
		return fmt.Errorf("polygon needs at least 3 points, got %d", n)
	}
	if n > MaxPolygonPoints {
		return fmt.Errorf("polygon has too many points: %d (max %d)", n, MaxPolygonPoints)
	}

	for i, p := range points {
		if err := ValidateVector(fmt.Sprintf("polygon point %d", i), p); err != nil {
			return err
		}
		if p == points[(i+1)%n] {
			return fmt.Errorf("polygon points %d and %d are identical", i, (i+1)%n)
		}
	}

	for i := 0; i < n; i++ {
		a1, a2 := points[i], points[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			if segmentsIntersect(a1, a2, points[j], points[(j+1)%n]) {
				return fmt.Errorf("polygon edges %d and %d intersect", i, j)
			}
		}
	}

	area := signedArea(points)
	switch {
	case area == 0:
		return fmt.Errorf("polygon has zero area")
	case area < 0:
		return fmt.Errorf("polygon points must be clockwise")
	}

	for i := 0; i < n; i++ {
		e1 := points[(i+1)%n].Sub(points[i])
		e2 := points[(i+2)%n].Sub(points[(i+1)%n])
		if e1.Cross(e2) < 0 {
			return fmt.Errorf("polygon is not convex at point %d", (i+1)%n)
		}
	}

	return nil
}

// ValidateShape dispatches to the validator of the concrete shape
func ValidateShape(shape physics.Shape) error {
	switch s := shape.(type) {
	case nil:
		return fmt.Errorf("shape is required")
	case *physics.Box:
		if s == nil {
			return fmt.Errorf("shape is required")
		}
		if err := ValidateBox(s.W, s.H); err != nil {
			return err
		}
		if math.IsNaN(s.Rotation) || math.IsInf(s.Rotation, 0) {
			return fmt.Errorf("box rotation must be finite, got %v", s.Rotation)
		}
		return nil
	case *physics.Circle:
		if s == nil {
			return fmt.Errorf("shape is required")
		}
		return ValidateCircle(s.Radius)
	case *physics.Polygon:
		if s == nil {
			return fmt.Errorf("shape is required")
		}
		return ValidatePolygon(s.Points)
	default:
		return fmt.Errorf("unsupported shape %T", shape)
	}
}

// ValidateDamping checks that damping lies in [0, 1)
func ValidateDamping(damping float64) error {
	if math.IsNaN(damping) || damping < 0 || damping >= 1 {
		return fmt.Errorf("damping must be in [0, 1), got %v", damping)
	}
	return nil
}

// ValidateMass checks that mass is finite and not negative
func ValidateMass(mass float64) error {
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass < 0 {
		return fmt.Errorf("mass must be a finite non-negative number, got %v", mass)
	}
	return nil
}

// ValidateGroup validates a collision group index. NoGroup is accepted.
func ValidateGroup(group int) error {
	if group == physics.NoGroup {
		return nil
	}
	if group < 0 || group >= physics.MaxGroups {
		return fmt.Errorf("invalid collision group: %d (must be %d or 0-%d)",
			group, physics.NoGroup, physics.MaxGroups-1)
	}
	return nil
}

// ValidateCollider runs every body check against a collider
func ValidateCollider(c *physics.Collider) error {
	if c == nil {
		return physics.ErrNilCollider
	}
	if err := ValidateShape(c.Shape); err != nil {
		return fmt.Errorf("collider %d: %w", c.ID, err)
	}
	checks := []func() error{
		func() error { return ValidateVector("position", c.Position) },
		func() error { return ValidateVector("velocity", c.Velocity) },
		func() error { return ValidateVector("anchor", c.Anchor) },
		func() error { return ValidateMass(c.Mass) },
		func() error { return ValidateDamping(c.Damping) },
		func() error { return ValidateGroup(c.Group()) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return fmt.Errorf("collider %d: %w", c.ID, err)
		}
	}
	return nil
}

// signedArea is twice the shoelace area. Clockwise on screen is positive.
func signedArea(points []physics.Vector2D) float64 {
	var sum float64
	for i, p := range points {
		sum += p.Cross(points[(i+1)%len(points)])
	}
	return sum
}

func segmentsIntersect(p1, p2, q1, q2 physics.Vector2D) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func orientation(a, b, c physics.Vector2D) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p physics.Vector2D) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
