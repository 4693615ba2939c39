package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if config.Physics.Solver != "aabb" {
		t.Errorf("Expected solver 'aabb', got '%s'", config.Physics.Solver)
	}
	if config.Physics.BroadPhase != "spatialhash" {
		t.Errorf("Expected broad phase 'spatialhash', got '%s'", config.Physics.BroadPhase)
	}
	if config.Physics.CellSize != physics.DefaultCellSize {
		t.Errorf("Expected CellSize %d, got %f", physics.DefaultCellSize, config.Physics.CellSize)
	}
	if config.Sandbox.Renderer != RendererNone {
		t.Errorf("Expected renderer '%s', got '%s'", RendererNone, config.Sandbox.Renderer)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig is not valid: %v", err)
	}
}

func TestLoadConfig_FormatByExtension(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{
			name: "json",
			file: "world.json",
			contents: `{
  "physics": {"gravity": {"x": 0, "y": 9.8}, "solver": "sat", "broadPhase": "quadtree", "cellSize": 32},
  "sandbox": {"frames": 10, "renderer": "terminal"}
}`,
		},
		{
			name: "yaml",
			file: "world.yaml",
			contents: `physics:
  gravity: {x: 0, y: 9.8}
  solver: sat
  broadPhase: quadtree
  cellSize: 32
sandbox:
  frames: 10
  renderer: terminal
`,
		},
		{
			name: "yml_upper_case",
			file: "WORLD.YML",
			contents: `physics: {gravity: {x: 0, y: 9.8}, solver: sat, broadPhase: quadtree, cellSize: 32}
sandbox: {frames: 10, renderer: terminal}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if config.Physics.Gravity != (physics.Vector2D{X: 0, Y: 9.8}) {
				t.Errorf("Expected gravity (0, 9.8), got %v", config.Physics.Gravity)
			}
			if config.Physics.Solver != "sat" || config.Physics.BroadPhase != "quadtree" {
				t.Errorf("Unexpected solver/broad phase %q/%q", config.Physics.Solver, config.Physics.BroadPhase)
			}
			if config.Physics.CellSize != 32 {
				t.Errorf("Expected CellSize 32, got %f", config.Physics.CellSize)
			}
			if config.Sandbox.Frames != 10 || config.Sandbox.Renderer != RendererTerminal {
				t.Errorf("Unexpected sandbox %+v", config.Sandbox)
			}
			// Missing fields keep their defaults.
			if config.Sandbox.DT != DefaultConfig().Sandbox.DT {
				t.Errorf("Expected default dt, got %f", config.Sandbox.DT)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	badJSON := filepath.Join(dir, "bad.json")
	badYAML := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badJSON, []byte(`{"physics": invalid}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(badYAML, []byte("physics: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"missing_file", filepath.Join(dir, "missing.json"), "failed to read config file"},
		{"invalid_json", badJSON, "failed to parse config file"},
		{"invalid_yaml", badYAML, "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(tt.path)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if config != nil {
				t.Error("Expected nil config on error")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error to contain '%s', got '%s'", tt.expected, err.Error())
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"saved.json", "saved.yaml"} {
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			config.Physics.Solver = "sat"
			config.Physics.Gravity = physics.Vector2D{X: 1.5, Y: -2}
			config.Physics.PublishEvents = true
			config.Sandbox.Frames = 42

			path := filepath.Join(t.TempDir(), name)
			if err := SaveConfig(config, path); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}

			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("Failed to load saved config: %v", err)
			}
			if *loaded != *config {
				t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", *loaded, *config)
			}
		})
	}
}

func TestSaveConfig_InvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "config.json")

	err := SaveConfig(DefaultConfig(), path)
	if err == nil {
		t.Fatal("Expected error when saving to invalid path, got nil")
	}
	if !strings.Contains(err.Error(), "failed to write config file") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown_solver", func(c *Config) { c.Physics.Solver = "verlet" }, "unknown solver"},
		{"unknown_broad_phase", func(c *Config) { c.Physics.BroadPhase = "octree" }, "unknown broad phase"},
		{"zero_cell_size", func(c *Config) { c.Physics.CellSize = 0 }, "cell size"},
		{"zero_capacity", func(c *Config) { c.Physics.QuadTreeCapacity = 0 }, "capacity"},
		{"flat_quad_tree", func(c *Config) { c.Physics.QuadTreeBounds.H = 0 }, "quad tree bounds"},
		{"negative_frames", func(c *Config) { c.Sandbox.Frames = -1 }, "frames"},
		{"zero_dt", func(c *Config) { c.Sandbox.DT = 0 }, "dt"},
		{"unknown_renderer", func(c *Config) { c.Sandbox.Renderer = "opengl" }, "unknown renderer"},
		{"empty_viewport", func(c *Config) { c.Sandbox.Width = 0 }, "viewport"},
		{"zero_scale", func(c *Config) { c.Sandbox.Scale = 0 }, "scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvSolver, "sat")
	t.Setenv(EnvBroadPhase, "brute")
	t.Setenv(EnvCellSize, "128")
	t.Setenv(EnvGravityX, "")
	t.Setenv(EnvGravityY, "-9.81")

	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
	}

	if config.Physics.Solver != "sat" {
		t.Errorf("Expected solver 'sat', got '%s'", config.Physics.Solver)
	}
	if config.Physics.BroadPhase != "brute" {
		t.Errorf("Expected broad phase 'brute', got '%s'", config.Physics.BroadPhase)
	}
	if config.Physics.CellSize != 128 {
		t.Errorf("Expected CellSize 128, got %f", config.Physics.CellSize)
	}
	if config.Physics.Gravity != (physics.Vector2D{X: 0, Y: -9.81}) {
		t.Errorf("Unexpected gravity %v", config.Physics.Gravity)
	}
}

func TestApplyEnvironmentOverrides_InvalidNumber(t *testing.T) {
	t.Setenv(EnvSolver, "sat")
	t.Setenv(EnvCellSize, "huge")

	config := DefaultConfig()
	err := ApplyEnvironmentOverrides(config)
	if err == nil {
		t.Fatal("Expected error for malformed cell size")
	}
	if !strings.Contains(err.Error(), EnvCellSize) {
		t.Errorf("Expected error to name %s, got %v", EnvCellSize, err)
	}
	if config.Physics.Solver != "aabb" {
		t.Errorf("Config changed despite the error: solver %q", config.Physics.Solver)
	}
}

func TestPhysicsConfig_WorldOptions(t *testing.T) {
	config := DefaultConfig()
	config.Physics.Solver = "sat"
	config.Physics.BroadPhase = "quadtree"
	config.Physics.QuadTreeBounds = Rect{X: -10, Y: -20, W: 100, H: 200}
	bus := event.NewEventBus()

	opts := config.Physics.WorldOptions(bus, logging.Discard())
	if opts.Bus != nil {
		t.Error("Bus attached although PublishEvents is false")
	}
	if opts.Solver != physics.SolverSAT || opts.BroadPhase != physics.BroadPhaseQuadTree {
		t.Errorf("Unexpected kinds %q/%q", opts.Solver, opts.BroadPhase)
	}
	want := physics.Bounds{Left: -10, Top: -20, Right: 90, Bottom: 180}
	if opts.QuadTreeBounds != want {
		t.Errorf("QuadTreeBounds = %+v, want %+v", opts.QuadTreeBounds, want)
	}

	config.Physics.PublishEvents = true
	opts = config.Physics.WorldOptions(bus, nil)
	if opts.Bus != bus {
		t.Error("Bus not attached with PublishEvents set")
	}

	w, err := physics.NewWorld(opts)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	if _, ok := w.BroadPhase().(*physics.QuadTree); !ok {
		t.Errorf("Expected a quad tree broad phase, got %T", w.BroadPhase())
	}
}
