// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
)

// Controller is driven by the debug view key bindings
type Controller interface {
	TogglePause()
	StepOnce()
	CycleTarget()
}

// buttons reports button edges; engo.Input satisfies it through inputButtons
type buttons interface {
	JustPressed(name string) bool
}

type inputButtons struct{}

func (inputButtons) JustPressed(name string) bool {
	if engo.Input == nil {
		return false
	}
	return engo.Input.Button(name).JustPressed()
}

// InputSystem translates key presses into Controller calls
type InputSystem struct {
	controller Controller
	buttons    buttons
}

// NewInputSystem creates a new input system
func NewInputSystem(controller Controller) *InputSystem {
	return &InputSystem{
		controller: controller,
		buttons:    inputButtons{},
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls the pause, step and follow buttons
func (is *InputSystem) Update(dt float32) {
	if is.controller == nil {
		return
	}
	if is.buttons.JustPressed(ButtonPause) {
		is.controller.TogglePause()
	}
	if is.buttons.JustPressed(ButtonStep) {
		is.controller.StepOnce()
	}
	if is.buttons.JustPressed(ButtonFollow) {
		is.controller.CycleTarget()
	}
}
