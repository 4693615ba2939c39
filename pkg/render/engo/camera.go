// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// DefaultPixelsPerUnit is the screen size of one world unit at zoom 1
const DefaultPixelsPerUnit = 1.0

// CameraSystem maps world coordinates to screen pixels and optionally
// follows a collider.
type CameraSystem struct {
	target *physics.Collider

	zoom          float32
	minZoom       float32
	maxZoom       float32
	pixelsPerUnit float64

	followSpeed float32
	smoothing   bool

	currentPos physics.Vector2D

	// screen size; zero means use engo.GameWidth/GameHeight
	width  float32
	height float32
}

// NewCameraSystem creates a new camera system centered on the origin
func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		zoom:          1.0,
		minZoom:       0.1,
		maxZoom:       10.0,
		pixelsPerUnit: DefaultPixelsPerUnit,
		followSpeed:   4.0,
		smoothing:     true,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update follows the target and applies zoom input
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()

	if cs.target != nil {
		if cs.target.World() == nil {
			cs.target = nil
		} else {
			cs.follow(cs.target.Center(), dt)
		}
	}
}

func (cs *CameraSystem) handleZoomInput() {
	if engo.Input == nil {
		return
	}
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1.0 + scrollY*0.1))
	}
	if engo.Input.Button(ButtonZoomIn).Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button(ButtonZoomOut).Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button(ButtonResetView).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// follow moves the camera toward pos, immediately when smoothing is off
func (cs *CameraSystem) follow(pos physics.Vector2D, dt float32) {
	if !cs.smoothing {
		cs.currentPos = pos
		return
	}
	t := float64(cs.followSpeed * dt)
	if t > 1 {
		t = 1
	}
	cs.currentPos = cs.currentPos.Add(pos.Sub(cs.currentPos).Scale(t))
}

// Follow makes the camera track a collider. Passing nil stops following.
// The camera jumps to the first target.
func (cs *CameraSystem) Follow(c *physics.Collider) {
	first := cs.target == nil
	cs.target = c
	if c != nil && (first || !cs.smoothing) {
		cs.currentPos = c.Center()
	}
}

// Target returns the followed collider, or nil
func (cs *CameraSystem) Target() *physics.Collider {
	return cs.target
}

// LookAt centers the camera on pos and stops following
func (cs *CameraSystem) LookAt(pos physics.Vector2D) {
	cs.target = nil
	cs.currentPos = pos
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// Zoom returns the current zoom level
func (cs *CameraSystem) Zoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

// SetPixelsPerUnit sets how many pixels one world unit covers at zoom 1
func (cs *CameraSystem) SetPixelsPerUnit(ppu float64) {
	if ppu > 0 {
		cs.pixelsPerUnit = ppu
	}
}

// EnableSmoothing enables or disables smooth following
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// SetScreenSize overrides the engo window size used for centering
func (cs *CameraSystem) SetScreenSize(width, height float32) {
	cs.width, cs.height = width, height
}

// Position returns the world position at the middle of the screen
func (cs *CameraSystem) Position() physics.Vector2D {
	return cs.currentPos
}

func (cs *CameraSystem) screenSize() (float32, float32) {
	if cs.width > 0 && cs.height > 0 {
		return cs.width, cs.height
	}
	return engo.GameWidth(), engo.GameHeight()
}

// Scale returns the number of pixels per world unit at the current zoom
func (cs *CameraSystem) Scale() float64 {
	return cs.pixelsPerUnit * float64(cs.zoom)
}

// WorldToScreen converts world coordinates to screen pixels
func (cs *CameraSystem) WorldToScreen(worldPos physics.Vector2D) engo.Point {
	w, h := cs.screenSize()
	rel := worldPos.Sub(cs.currentPos).Scale(cs.Scale())
	return engo.Point{
		X: float32(rel.X) + w/2,
		Y: float32(rel.Y) + h/2,
	}
}

// ScreenToWorld converts screen pixels to world coordinates
func (cs *CameraSystem) ScreenToWorld(p engo.Point) physics.Vector2D {
	w, h := cs.screenSize()
	rel := physics.Vector2D{X: float64(p.X - w/2), Y: float64(p.Y - h/2)}
	return rel.Scale(1 / cs.Scale()).Add(cs.currentPos)
}

// Button names registered by SetupControls
const (
	ButtonZoomIn    = "zoomIn"
	ButtonZoomOut   = "zoomOut"
	ButtonResetView = "resetView"
	ButtonPause     = "pause"
	ButtonStep      = "step"
	ButtonFollow    = "follow"
)

// SetupControls registers the key bindings of the debug view
func SetupControls() {
	engo.Input.RegisterButton(ButtonZoomIn, engo.KeyZ)
	engo.Input.RegisterButton(ButtonZoomOut, engo.KeyX)
	engo.Input.RegisterButton(ButtonResetView, engo.KeyR)
	engo.Input.RegisterButton(ButtonPause, engo.KeySpace)
	engo.Input.RegisterButton(ButtonStep, engo.KeyN)
	engo.Input.RegisterButton(ButtonFollow, engo.KeyF)
}

// resetEngoCamera puts the engo camera at the window center so screen
// coordinates computed by WorldToScreen land where expected.
func resetEngoCamera() {
	if engo.Mailbox == nil {
		return
	}
	w, h := engo.GameWidth(), engo.GameHeight()
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.XAxis, Value: w / 2})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.YAxis, Value: h / 2})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.ZAxis, Value: 1})
}
