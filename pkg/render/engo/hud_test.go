// pkg/render/engo/hud_test.go
package engo

import (
	"reflect"
	"testing"

	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-collide/pkg/event"
)

func TestHUDSystem_Lines(t *testing.T) {
	bus := event.NewEventBus()
	hud := NewHUDSystem(bus)
	defer hud.Close()

	if got := hud.Lines(); !reflect.DeepEqual(got, []string{"waiting for first frame"}) {
		t.Errorf("Lines() before any frame = %q", got)
	}

	bus.Publish(event.NewFrameEvent(nil, 3, 10, 20, 5, 2))
	want := []string{
		"frame 3",
		"bodies 10",
		"candidates 20  tests 5  hits 2",
	}
	if got := hud.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}

	hud.SetTarget("crate")
	hud.SetPaused(true)
	want = append(want, "following crate", "PAUSED")
	if got := hud.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
}

func TestHUDSystem_Close(t *testing.T) {
	bus := event.NewEventBus()
	hud := NewHUDSystem(bus)
	hud.Close()
	hud.Close()

	if bus.HasSubscribers(event.FrameStepped) {
		t.Error("Expected no frame subscribers after Close")
	}
	bus.Publish(event.NewFrameEvent(nil, 1, 1, 0, 0, 0))
	if got := hud.Lines(); len(got) != 1 {
		t.Errorf("Expected HUD to ignore frames after Close, got %q", got)
	}
}

func TestHUDSystem_Update(t *testing.T) {
	bus := event.NewEventBus()
	hud := NewHUDSystem(bus)
	defer hud.Close()
	sink := newFakeSink()

	t.Run("no font draws nothing", func(t *testing.T) {
		hud.SetSink(sink)
		hud.Update(0.016)
		if len(sink.added) != 0 {
			t.Errorf("Expected no text entities without a font, got %d", len(sink.added))
		}
	})

	hud.SetFont(&common.Font{})
	bus.Publish(event.NewFrameEvent(nil, 1, 2, 1, 1, 1))

	t.Run("one entity per line", func(t *testing.T) {
		hud.SetPaused(true)
		hud.Update(0.016)
		if len(sink.added) != 4 {
			t.Fatalf("Expected 4 text entities, got %d", len(sink.added))
		}
		text, ok := hud.lines[3].render.Drawable.(common.Text)
		if !ok || text.Text != "PAUSED" {
			t.Errorf("Expected last line to read PAUSED, got %+v", hud.lines[3].render.Drawable)
		}
	})

	t.Run("surplus lines removed", func(t *testing.T) {
		hud.SetPaused(false)
		hud.Update(0.016)
		if len(sink.added) != 3 || len(sink.removed) != 1 {
			t.Errorf("Expected 3 entities and 1 removal, got %d and %d", len(sink.added), len(sink.removed))
		}
	})
}
