// Package scene loads body descriptions from JSON or YAML files and builds
// them into a collision world.
package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/validation"
)

// Shape type names
const (
	ShapeBox     = "box"
	ShapeCircle  = "circle"
	ShapePolygon = "polygon"
)

// MaxBodies caps the number of bodies a scene file may describe
const MaxBodies = 100000

// ShapeSpec describes one shape. Only the fields of Type are read.
type ShapeSpec struct {
	Type     string             `json:"type" yaml:"type"`
	Width    float64            `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64            `json:"height,omitempty" yaml:"height,omitempty"`
	Radius   float64            `json:"radius,omitempty" yaml:"radius,omitempty"`
	Rotation float64            `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Points   []physics.Vector2D `json:"points,omitempty" yaml:"points,omitempty"`
}

// Body describes a collider and its placement
type Body struct {
	Name          string            `json:"name" yaml:"name"`
	Shape         ShapeSpec         `json:"shape" yaml:"shape"`
	Position      physics.Vector2D  `json:"position" yaml:"position"`
	Velocity      physics.Vector2D  `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	VelocityLimit physics.Vector2D  `json:"velocityLimit,omitempty" yaml:"velocityLimit,omitempty"`
	Mass          *float64          `json:"mass,omitempty" yaml:"mass,omitempty"`
	Damping       float64           `json:"damping,omitempty" yaml:"damping,omitempty"`
	Anchor        *physics.Vector2D `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	// Group is the collision group index; nil means no group.
	Group          *int  `json:"group,omitempty" yaml:"group,omitempty"`
	CollideAgainst []int `json:"collideAgainst,omitempty" yaml:"collideAgainst,omitempty"`
	Static         bool  `json:"static,omitempty" yaml:"static,omitempty"`
}

// Scene is a named list of bodies
type Scene struct {
	Name   string `json:"name" yaml:"name"`
	Bodies []Body `json:"bodies" yaml:"bodies"`
}

// Load reads a scene file. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	s := &Scene{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	return s, nil
}

// Save writes the scene using the same format rules as Load
func (s *Scene) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks every body and reports the first problem found
func (s *Scene) Validate() error {
	if len(s.Bodies) > MaxBodies {
		return fmt.Errorf("scene has too many bodies: %d (max %d)", len(s.Bodies), MaxBodies)
	}

	names := make(map[string]int, len(s.Bodies))
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if err := b.Validate(); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		if b.Name == "" {
			continue
		}
		if prev, dup := names[b.Name]; dup {
			return fmt.Errorf("body %d: name %q already used by body %d", i, b.Name, prev)
		}
		names[b.Name] = i
	}
	return nil
}

// Validate checks a single body description
func (b *Body) Validate() error {
	if b.Name != "" {
		if _, err := validation.ValidateBodyName(b.Name); err != nil {
			return err
		}
	}

	shape, err := b.Shape.Build()
	if err != nil {
		return err
	}
	if err := validation.ValidateShape(shape); err != nil {
		return err
	}

	vectors := []struct {
		what string
		v    physics.Vector2D
	}{
		{"position", b.Position},
		{"velocity", b.Velocity},
		{"velocity limit", b.VelocityLimit},
	}
	for _, vec := range vectors {
		if err := validation.ValidateVector(vec.what, vec.v); err != nil {
			return err
		}
	}
	if b.Anchor != nil {
		if err := validation.ValidateVector("anchor", *b.Anchor); err != nil {
			return err
		}
	}
	if b.Mass != nil {
		if err := validation.ValidateMass(*b.Mass); err != nil {
			return err
		}
	}
	if err := validation.ValidateDamping(b.Damping); err != nil {
		return err
	}
	if b.Group != nil {
		if err := validation.ValidateGroup(*b.Group); err != nil {
			return err
		}
	}
	for _, g := range b.CollideAgainst {
		if err := validation.ValidateGroup(g); err != nil {
			return fmt.Errorf("collide against: %w", err)
		}
	}
	return nil
}

// Build creates the physics shape described by s
func (s ShapeSpec) Build() (physics.Shape, error) {
	switch strings.ToLower(s.Type) {
	case ShapeBox:
		return &physics.Box{W: s.Width, H: s.Height, Rotation: s.Rotation}, nil
	case ShapeCircle:
		return physics.NewCircle(s.Radius), nil
	case ShapePolygon:
		p := physics.NewPolygon(s.Points)
		if s.Rotation != 0 {
			p.SetRotation(s.Rotation)
		}
		return p, nil
	case "":
		return nil, fmt.Errorf("shape type is required")
	default:
		return nil, fmt.Errorf("unknown shape type %q", s.Type)
	}
}

// Collider creates an unregistered collider from the description
func (b *Body) Collider() (*physics.Collider, error) {
	shape, err := b.Shape.Build()
	if err != nil {
		return nil, err
	}

	c := physics.NewCollider(shape)
	c.Position = b.Position
	c.Velocity = b.Velocity
	c.VelocityLimit = b.VelocityLimit
	c.Damping = b.Damping
	c.Static = b.Static
	if b.Mass != nil {
		c.Mass = *b.Mass
	}
	if b.Anchor != nil {
		c.Anchor = *b.Anchor
	}
	if b.Group != nil {
		if err := c.SetGroup(*b.Group); err != nil {
			return nil, err
		}
	}
	if err := c.SetCollideAgainst(b.CollideAgainst...); err != nil {
		return nil, err
	}
	if b.Name != "" {
		c.UserData = b.Name
	}
	return c, nil
}

// Build validates the scene and registers one collider per body with w.
// The returned colliders are in body order.
func (s *Scene) Build(ctx context.Context, w *physics.World, logger *logging.Logger) ([]*physics.Collider, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene %q: %w", s.Name, err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	colliders := make([]*physics.Collider, 0, len(s.Bodies))
	for i := range s.Bodies {
		c, err := s.Bodies[i].Collider()
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		if err := w.AddBody(c); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		colliders = append(colliders, c)
	}

	logger.Debug(ctx, "scene built",
		"scene", s.Name,
		"bodies", len(colliders),
	)
	return colliders, nil
}
