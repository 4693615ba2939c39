// pkg/render/engo/scene.go
package engo

import (
	"context"
	"fmt"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/render"
	"github.com/opd-ai/go-collide/pkg/scene"
)

// drawPriority runs the draw system after the camera, input and HUD
// systems and before engo's RenderSystem.
const drawPriority = -10

// DebugScene is an engo scene that steps a physics world at a fixed rate
// and draws every collider.
type DebugScene struct {
	world  *physics.World
	bus    *event.Bus
	bodies *scene.Scene
	dt     float64
	logger *logging.Logger

	physics  *physics.System
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem
	assets   *AssetManager
	renderer *EngoRenderer
	tracker  *render.CollisionTracker

	entities []*ecs.BasicEntity
	paused   bool
	stepOnce bool
	target   int
}

// NewDebugScene creates a scene for w populated from bodies. The world
// must publish on bus. dt is the fixed step used for every frame.
func NewDebugScene(w *physics.World, bus *event.Bus, bodies *scene.Scene, dt float64, logger *logging.Logger) (*DebugScene, error) {
	if w == nil || bus == nil {
		return nil, fmt.Errorf("debug scene needs a world and an event bus")
	}
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %v", dt)
	}
	if err := bodies.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene %q: %w", bodies.Name, err)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &DebugScene{
		world:  w,
		bus:    bus,
		bodies: bodies,
		dt:     dt,
		logger: logger,
		assets: NewAssetManager(DefaultPalette()),
		target: -1,
	}, nil
}

// Type implements engo.Scene.
func (s *DebugScene) Type() string {
	return "DebugScene"
}

// Preload implements engo.Scene.
func (s *DebugScene) Preload() {
	if err := s.assets.LoadAssets(); err != nil {
		s.logger.Warn(context.Background(), "HUD font unavailable", "error", err)
	}
}

// Setup implements engo.Scene.
func (s *DebugScene) Setup(u engo.Updater) {
	ctx := context.Background()
	world, ok := u.(*ecs.World)
	if !ok {
		s.logger.Error(ctx, "unexpected updater", fmt.Errorf("got %T", u))
		return
	}

	common.SetBackground(color.Black)
	SetupControls()
	resetEngoCamera()

	rs := &common.RenderSystem{}
	world.AddSystem(rs)

	systems, err := s.attach(rs)
	if err != nil {
		s.logger.Error(ctx, "failed to populate debug scene", err)
		return
	}
	for _, sys := range systems {
		world.AddSystem(sys)
	}
}

// attach adds the bodies to the world and creates the systems that drive
// and draw it. Render entities go to sink.
func (s *DebugScene) attach(sink SpriteSink) ([]ecs.System, error) {
	s.physics = physics.NewSystem(s.world)
	for i := range s.bodies.Bodies {
		c, err := s.bodies.Bodies[i].Collider()
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		basic := ecs.NewBasic()
		if err := s.physics.Add(&basic, c); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		s.entities = append(s.entities, &basic)
	}

	s.camera = NewCameraSystem()
	s.camera.LookAt(sceneCenter(s.world))
	s.tracker = render.NewCollisionTracker(s.bus)
	s.renderer = NewEngoRenderer(sink, s.camera, s.assets)
	s.input = NewInputSystem(s)
	s.hud = NewHUDSystem(s.bus)
	s.hud.SetFont(s.assets.Font())
	s.hud.SetSink(sink)

	s.logger.Info(context.Background(), "debug scene ready",
		"scene", s.bodies.Name,
		"bodies", s.physics.Len(),
	)

	return []ecs.System{
		&simSystem{scene: s},
		s.camera,
		s.input,
		s.hud,
		&drawSystem{scene: s},
	}, nil
}

// sceneCenter returns the middle of the area covered by the bodies
func sceneCenter(w *physics.World) physics.Vector2D {
	extent, ok := w.Extent()
	if !ok {
		return physics.Vector2D{}
	}
	return extent.Center()
}

// TogglePause implements Controller.
func (s *DebugScene) TogglePause() {
	s.paused = !s.paused
	s.hud.SetPaused(s.paused)
}

// StepOnce implements Controller. It advances a paused simulation by one
// frame.
func (s *DebugScene) StepOnce() {
	s.stepOnce = true
}

// CycleTarget implements Controller. The camera follows the next dynamic
// body, and stops following after the last one.
func (s *DebugScene) CycleTarget() {
	bodies := s.world.Bodies()
	for i := s.target + 1; i < len(bodies); i++ {
		if c := bodies[i]; !c.Static && !c.Removed() {
			s.target = i
			s.camera.Follow(c)
			s.hud.SetTarget(colliderName(c))
			return
		}
	}
	s.target = -1
	s.camera.Follow(nil)
	s.hud.SetTarget("")
}

func colliderName(c *physics.Collider) string {
	if name, ok := c.UserData.(string); ok && name != "" {
		return name
	}
	return fmt.Sprintf("collider %d", c.ID)
}

// Paused reports whether the simulation is paused
func (s *DebugScene) Paused() bool {
	return s.paused
}

// advance steps the world unless paused
func (s *DebugScene) advance() {
	if s.paused && !s.stepOnce {
		return
	}
	s.stepOnce = false
	s.tracker.Reset()
	s.physics.Update(float32(s.dt))
}

func (s *DebugScene) draw() {
	if err := render.DrawWorld(s.renderer, s.world, s.tracker); err != nil {
		s.logger.Error(context.Background(), "failed to draw frame", err)
	}
}

// Exit releases the event subscriptions
func (s *DebugScene) Exit() {
	if s.tracker != nil {
		s.tracker.Close()
	}
	if s.hud != nil {
		s.hud.Close()
	}
}

// simSystem steps the world with the scene's fixed dt, ignoring the frame
// time engo reports.
type simSystem struct {
	scene *DebugScene
}

func (ss *simSystem) Update(dt float32)            { ss.scene.advance() }
func (ss *simSystem) Remove(basic ecs.BasicEntity) {}
func (ss *simSystem) Priority() int                { return physics.SystemPriority }

type drawSystem struct {
	scene *DebugScene
}

func (ds *drawSystem) Update(dt float32)            { ds.scene.draw() }
func (ds *drawSystem) Remove(basic ecs.BasicEntity) {}
func (ds *drawSystem) Priority() int                { return drawPriority }
