// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"sync"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-collide/pkg/event"
)

const hudLineHeight = 16

type hudLine struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
}

// HUDSystem shows the statistics of the last stepped frame
type HUDSystem struct {
	mu     sync.Mutex
	last   event.FrameEvent
	seen   bool
	paused bool
	target string

	sub *event.Subscription

	font  *common.Font
	sink  SpriteSink
	lines []*hudLine
}

// NewHUDSystem creates a HUD fed by the frame events of bus
func NewHUDSystem(bus *event.Bus) *HUDSystem {
	hud := &HUDSystem{}
	hud.sub = bus.Subscribe(event.FrameStepped, func(e event.Event) {
		fe, ok := e.(*event.FrameEvent)
		if !ok {
			return
		}
		hud.mu.Lock()
		hud.last = *fe
		hud.seen = true
		hud.mu.Unlock()
	})
	return hud
}

// SetFont sets the font used for HUD text rendering. Text is only drawn
// once both a font and a sink are set.
func (hud *HUDSystem) SetFont(font *common.Font) {
	hud.font = font
}

// SetSink sets where the HUD text entities are added
func (hud *HUDSystem) SetSink(sink SpriteSink) {
	hud.sink = sink
}

// SetPaused records whether the simulation is paused
func (hud *HUDSystem) SetPaused(paused bool) {
	hud.mu.Lock()
	hud.paused = paused
	hud.mu.Unlock()
}

// SetTarget records the name of the followed body; empty clears it
func (hud *HUDSystem) SetTarget(name string) {
	hud.mu.Lock()
	hud.target = name
	hud.mu.Unlock()
}

// Lines returns the HUD text
func (hud *HUDSystem) Lines() []string {
	hud.mu.Lock()
	defer hud.mu.Unlock()

	lines := []string{"waiting for first frame"}
	if hud.seen {
		lines = []string{
			fmt.Sprintf("frame %d", hud.last.Frame),
			fmt.Sprintf("bodies %d", hud.last.Bodies),
			fmt.Sprintf("candidates %d  tests %d  hits %d",
				hud.last.Candidates, hud.last.Tests, hud.last.Hits),
		}
	}
	if hud.target != "" {
		lines = append(lines, "following "+hud.target)
	}
	if hud.paused {
		lines = append(lines, "PAUSED")
	}
	return lines
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update refreshes the text entities
func (hud *HUDSystem) Update(dt float32) {
	if hud.font == nil || hud.sink == nil {
		return
	}

	text := hud.Lines()
	for len(hud.lines) < len(text) {
		l := &hudLine{basic: ecs.NewBasic()}
		l.space.Position = engo.Point{X: 10, Y: float32(10 + len(hud.lines)*hudLineHeight)}
		l.render.Drawable = common.Text{Font: hud.font}
		l.render.SetZIndex(10)
		hud.lines = append(hud.lines, l)
		hud.sink.Add(&l.basic, &l.render, &l.space)
	}
	for len(hud.lines) > len(text) {
		l := hud.lines[len(hud.lines)-1]
		hud.sink.Remove(l.basic)
		hud.lines = hud.lines[:len(hud.lines)-1]
	}

	for i, l := range hud.lines {
		l.render.Drawable = common.Text{Font: hud.font, Text: text[i]}
	}
}

// Close stops listening for frame events
func (hud *HUDSystem) Close() {
	if hud.sub != nil {
		hud.sub.Cancel()
		hud.sub = nil
	}
}
