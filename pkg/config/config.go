// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
)

// Config contains configuration for a collision world and the sandbox that
// drives it
type Config struct {
	Physics PhysicsConfig `json:"physics" yaml:"physics"`
	Sandbox SandboxConfig `json:"sandbox" yaml:"sandbox"`
}

// PhysicsConfig contains world configuration
type PhysicsConfig struct {
	Gravity          physics.Vector2D `json:"gravity" yaml:"gravity"`
	Solver           string           `json:"solver" yaml:"solver"`
	BroadPhase       string           `json:"broadPhase" yaml:"broadPhase"`
	CellSize         float64          `json:"cellSize" yaml:"cellSize"`
	QuadTreeCapacity int              `json:"quadTreeCapacity" yaml:"quadTreeCapacity"`
	QuadTreeBounds   Rect             `json:"quadTreeBounds" yaml:"quadTreeBounds"`
	PublishEvents    bool             `json:"publishEvents" yaml:"publishEvents"`
}

// Rect is an axis-aligned area given by its top-left corner and size
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Bounds converts the rectangle to physics bounds
func (r Rect) Bounds() physics.Bounds {
	return physics.Bounds{Left: r.X, Top: r.Y, Right: r.X + r.W, Bottom: r.Y + r.H}
}

// SandboxConfig contains settings for the sandbox runner
type SandboxConfig struct {
	Frames   int     `json:"frames" yaml:"frames"`
	DT       float64 `json:"dt" yaml:"dt"`
	Renderer string  `json:"renderer" yaml:"renderer"`
	Width    int     `json:"width" yaml:"width"`
	Height   int     `json:"height" yaml:"height"`
	// Scale is the number of world units per terminal cell.
	Scale float64 `json:"scale" yaml:"scale"`
}

// Renderer names understood by the sandbox
const (
	RendererNone     = "none"
	RendererTerminal = "terminal"
	RendererEngo     = "engo"
)

// LoadConfig loads a configuration from a file. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, using the same format rules as
// LoadConfig
func SaveConfig(config *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			Solver:           string(physics.SolverAABB),
			BroadPhase:       string(physics.BroadPhaseSpatialHash),
			CellSize:         physics.DefaultCellSize,
			QuadTreeCapacity: physics.DefaultQuadTreeCapacity,
			QuadTreeBounds:   Rect{X: -4096, Y: -4096, W: 8192, H: 8192},
		},
		Sandbox: SandboxConfig{
			Frames:   600,
			DT:       1.0 / 60,
			Renderer: RendererNone,
			Width:    80,
			Height:   24,
			Scale:    10,
		},
	}
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	return c.Sandbox.Validate()
}

// Validate checks the physics settings
func (p *PhysicsConfig) Validate() error {
	switch physics.SolverKind(p.Solver) {
	case physics.SolverAABB, physics.SolverSAT:
	default:
		return fmt.Errorf("unknown solver %q", p.Solver)
	}

	switch physics.BroadPhaseKind(p.BroadPhase) {
	case physics.BroadPhaseSpatialHash, physics.BroadPhaseQuadTree, physics.BroadPhaseBrute:
	default:
		return fmt.Errorf("unknown broad phase %q", p.BroadPhase)
	}

	if p.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %v", p.CellSize)
	}
	if p.QuadTreeCapacity <= 0 {
		return fmt.Errorf("quad tree capacity must be positive, got %d", p.QuadTreeCapacity)
	}
	if p.QuadTreeBounds.W <= 0 || p.QuadTreeBounds.H <= 0 {
		return fmt.Errorf("quad tree bounds must have a positive size, got %vx%v",
			p.QuadTreeBounds.W, p.QuadTreeBounds.H)
	}
	return nil
}

// Validate checks the sandbox settings
func (s *SandboxConfig) Validate() error {
	if s.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", s.Frames)
	}
	if s.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %v", s.DT)
	}
	switch s.Renderer {
	case RendererNone, RendererTerminal, RendererEngo:
	default:
		return fmt.Errorf("unknown renderer %q", s.Renderer)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("viewport must have a positive size, got %dx%d", s.Width, s.Height)
	}
	if s.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", s.Scale)
	}
	return nil
}

// WorldOptions converts the physics settings into options for
// physics.NewWorld. The bus is attached only when PublishEvents is set.
func (p *PhysicsConfig) WorldOptions(bus *event.Bus, logger *logging.Logger) physics.WorldOptions {
	opts := physics.WorldOptions{
		Gravity:          p.Gravity,
		Solver:           physics.SolverKind(p.Solver),
		BroadPhase:       physics.BroadPhaseKind(p.BroadPhase),
		CellSize:         p.CellSize,
		QuadTreeBounds:   p.QuadTreeBounds.Bounds(),
		QuadTreeCapacity: p.QuadTreeCapacity,
		Logger:           logger,
	}
	if p.PublishEvents {
		opts.Bus = bus
	}
	return opts
}
