// pkg/render/engo/input_test.go
package engo

import "testing"

type fakeButtons map[string]bool

func (f fakeButtons) JustPressed(name string) bool { return f[name] }

type countingController struct {
	pauses, steps, cycles int
}

func (c *countingController) TogglePause() { c.pauses++ }
func (c *countingController) StepOnce()    { c.steps++ }
func (c *countingController) CycleTarget() { c.cycles++ }

func TestInputSystem_Update(t *testing.T) {
	tests := []struct {
		name    string
		pressed fakeButtons
		want    countingController
	}{
		{"nothing pressed", fakeButtons{}, countingController{}},
		{"pause", fakeButtons{ButtonPause: true}, countingController{pauses: 1}},
		{"step", fakeButtons{ButtonStep: true}, countingController{steps: 1}},
		{"follow", fakeButtons{ButtonFollow: true}, countingController{cycles: 1}},
		{"all at once", fakeButtons{ButtonPause: true, ButtonStep: true, ButtonFollow: true},
			countingController{pauses: 1, steps: 1, cycles: 1}},
		{"zoom is not a controller action", fakeButtons{ButtonZoomIn: true}, countingController{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &countingController{}
			is := NewInputSystem(ctrl)
			is.buttons = tt.pressed

			is.Update(0.016)
			if *ctrl != tt.want {
				t.Errorf("controller calls = %+v, want %+v", *ctrl, tt.want)
			}
		})
	}

	t.Run("nil controller", func(t *testing.T) {
		is := NewInputSystem(nil)
		is.buttons = fakeButtons{ButtonPause: true}
		is.Update(0.016)
	})
}
