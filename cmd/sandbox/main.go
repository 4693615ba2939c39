// cmd/sandbox/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/EngoEngine/engo"
	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/health"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/render"
	engorender "github.com/opd-ai/go-collide/pkg/render/engo"
	"github.com/opd-ai/go-collide/pkg/scene"
)

// Random scenario names accepted by -random
const (
	randomCircles = "circles"
	randomMixed   = "mixed"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), "")

	configPath := flag.String("config", "", "Path to configuration file (JSON or YAML)")
	createDefault := flag.Bool("default", false, "Write the default configuration to -config and exit")
	scenePath := flag.String("scene", "", "Path to a scene file; a random scenario is used when empty")
	randomKind := flag.String("random", randomCircles, "Random scenario: 'circles' or 'mixed'")
	count := flag.Int("count", 200, "Number of bodies in a random scenario")
	seed := flag.Int64("seed", 42, "Seed of the random scenario")
	frames := flag.Int("frames", -1, "Frames to run, 0 runs until interrupted (overrides config)")
	rendererName := flag.String("renderer", "", "Renderer: 'none', 'terminal' or 'engo' (overrides config)")
	healthEvery := flag.Int("health-every", 60, "Frames between health checks, 0 checks only at the end")
	maxMemoryMB := flag.Int64("max-memory", 512, "Heap limit in MB for the memory health check")
	windowWidth := flag.Int("width", 1024, "Window width (engo only)")
	windowHeight := flag.Int("height", 768, "Window height (engo only)")
	flag.Parse()

	if *createDefault {
		if *configPath == "" {
			logger.Error(ctx, "No configuration path given", nil)
			os.Exit(1)
		}
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	if *frames >= 0 {
		cfg.Sandbox.Frames = *frames
	}
	if *rendererName != "" {
		cfg.Sandbox.Renderer = *rendererName
	}
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	bodies, err := loadScene(*scenePath, *randomKind, *count, *seed)
	if err != nil {
		logger.Error(ctx, "Failed to prepare scene", err, "scene_path", *scenePath)
		os.Exit(1)
	}

	// Collision highlighting and the HUD are fed from the bus.
	if cfg.Sandbox.Renderer != config.RendererNone {
		cfg.Physics.PublishEvents = true
	}
	bus := event.NewEventBus()
	physics.SetLogger(logger)
	world, err := physics.NewWorld(cfg.Physics.WorldOptions(bus, logger))
	if err != nil {
		logger.Error(ctx, "Failed to create world", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting sandbox",
		"run_id", logging.GetCorrelationID(ctx),
		"scene", bodies.Name,
		"bodies", len(bodies.Bodies),
		"solver", cfg.Physics.Solver,
		"broad_phase", cfg.Physics.BroadPhase,
		"renderer", cfg.Sandbox.Renderer,
	)

	if cfg.Sandbox.Renderer == config.RendererEngo {
		debugScene, err := engorender.NewDebugScene(world, bus, bodies, cfg.Sandbox.DT, logger)
		if err != nil {
			logger.Error(ctx, "Failed to create debug scene", err)
			os.Exit(1)
		}
		engo.Run(engo.RunOptions{
			Title:  "go-collide sandbox",
			Width:  *windowWidth,
			Height: *windowHeight,
			VSync:  true,
		}, debugScene)
		return
	}

	if _, err := bodies.Build(ctx, world, logger); err != nil {
		logger.Error(ctx, "Failed to build scene", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := render.NewCollisionTracker(bus)
	defer tracker.Close()

	opts := runOptions{
		World:       world,
		Tracker:     tracker,
		Logger:      logger,
		Frames:      cfg.Sandbox.Frames,
		DT:          cfg.Sandbox.DT,
		Health:      newChecker(world, *maxMemoryMB),
		HealthEvery: *healthEvery,
	}

	if cfg.Sandbox.Renderer == config.RendererTerminal {
		screen, err := openScreen()
		if err != nil {
			logger.Error(ctx, "Failed to open terminal", err)
			os.Exit(1)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		go watchQuitKeys(screen, cancel)

		tr := render.NewTerminalRenderer(screen, cfg.Sandbox.Width, cfg.Sandbox.Height, cfg.Sandbox.Scale)
		tr.SetCenter(sceneCenter(world))
		opts.Renderer = tr
		opts.Pace = true

		s, err := run(ctx, opts)
		screen.Fini()
		cancel()
		finish(ctx, logger, s, err)
		return
	}

	opts.Renderer = render.NewNullRenderer(logger)
	s, err := run(ctx, opts)
	finish(ctx, logger, s, err)
}

// loadConfig reads path, falling back to defaults when path is empty or
// missing, and applies COLLIDE_* overrides.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Info(ctx, "Configuration file not found, using default configuration",
				"config_path", path,
			)
		} else {
			if cfg, err = config.LoadConfig(path); err != nil {
				return nil, err
			}
		}
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadScene reads a scene file, or generates a random scenario when path is
// empty.
func loadScene(path, kind string, count int, seed int64) (*scene.Scene, error) {
	if path != "" {
		return scene.Load(path)
	}

	opts := scene.DefaultRandomOptions()
	opts.Count = count
	opts.Seed = seed
	switch kind {
	case randomCircles:
		return scene.RandomCircles(opts)
	case randomMixed:
		return scene.RandomMixed(opts)
	default:
		return nil, fmt.Errorf("unknown random scenario %q", kind)
	}
}

func newChecker(w *physics.World, maxMemoryMB int64) *health.Checker {
	checker := health.NewChecker()
	checker.AddCheck(health.NewFiniteBodiesCheck(w))
	checker.AddCheck(health.NewProgressCheck(w.Frame))
	checker.AddCheck(health.NewMemoryCheck(maxMemoryMB, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.HeapAlloc / 1024 / 1024)
	}))
	return checker
}

// sceneCenter returns the middle of the area covered by the bodies
func sceneCenter(w *physics.World) physics.Vector2D {
	extent, ok := w.Extent()
	if !ok {
		return physics.Vector2D{}
	}
	return extent.Center()
}

func openScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	return screen, nil
}

// watchQuitKeys cancels the run on Escape, Ctrl-C or q. It returns once the
// screen is finalized.
func watchQuitKeys(screen tcell.Screen, cancel context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC ||
			(key.Key() == tcell.KeyRune && key.Rune() == 'q') {
			cancel()
		}
	}
}

func finish(ctx context.Context, logger *logging.Logger, s summary, err error) {
	if err != nil {
		logger.Error(ctx, "Sandbox run failed", err,
			"frames", s.Frames,
		)
		os.Exit(1)
	}
	logger.Info(ctx, "Sandbox run finished",
		"frames", s.Frames,
		"hits", s.Hits,
		"elapsed", s.Elapsed.String(),
		"health", s.Report.Status,
	)
}
