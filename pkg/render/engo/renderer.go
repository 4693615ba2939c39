// pkg/render/engo/renderer.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// SpriteSink receives render entities. *common.RenderSystem implements it.
type SpriteSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type colliderSprite struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	seen   bool
}

// EngoRenderer implements render.Renderer by keeping one engo render
// entity per collider.
type EngoRenderer struct {
	sink   SpriteSink
	camera *CameraSystem
	assets *AssetManager

	sprites map[uint64]*colliderSprite
}

// NewEngoRenderer creates a renderer that feeds sink
func NewEngoRenderer(sink SpriteSink, camera *CameraSystem, assets *AssetManager) *EngoRenderer {
	return &EngoRenderer{
		sink:    sink,
		camera:  camera,
		assets:  assets,
		sprites: make(map[uint64]*colliderSprite),
	}
}

// Clear implements render.Renderer.
func (r *EngoRenderer) Clear() {
	for _, s := range r.sprites {
		s.seen = false
	}
}

// RenderCollider implements render.Renderer.
func (r *EngoRenderer) RenderCollider(c *physics.Collider, colliding bool) {
	if c == nil || c.Shape == nil {
		return
	}

	s, ok := r.sprites[c.ID]
	if !ok {
		s = &colliderSprite{basic: ecs.NewBasic()}
		r.sprites[c.ID] = s
		r.update(s, c, colliding)
		r.sink.Add(&s.basic, &s.render, &s.space)
	} else {
		r.update(s, c, colliding)
	}
	s.seen = true
}

func (r *EngoRenderer) update(s *colliderSprite, c *physics.Collider, colliding bool) {
	drawable, bounds := r.assets.ShapeDrawable(c)
	scale := float32(r.camera.Scale())

	s.render.Drawable = drawable
	s.render.Color = r.assets.Palette().Fill(c, colliding)
	s.space.Position = r.camera.WorldToScreen(physics.Vector2D{X: bounds.Left, Y: bounds.Top})
	s.space.Width = float32(bounds.Width()) * scale
	s.space.Height = float32(bounds.Height()) * scale
}

// Present implements render.Renderer. Sprites of colliders that were not
// rendered since Clear are dropped.
func (r *EngoRenderer) Present() error {
	for id, s := range r.sprites {
		if s.seen {
			continue
		}
		r.sink.Remove(s.basic)
		delete(r.sprites, id)
	}
	return nil
}

// Len returns the number of live sprites
func (r *EngoRenderer) Len() int {
	return len(r.sprites)
}

// spriteFor returns the render state of a collider, for tests and the HUD
func (r *EngoRenderer) spriteFor(id uint64) (*common.RenderComponent, engo.Point, bool) {
	s, ok := r.sprites[id]
	if !ok {
		return nil, engo.Point{}, false
	}
	return &s.render, s.space.Position, true
}
