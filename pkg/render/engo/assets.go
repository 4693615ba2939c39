// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// fontURL is the virtual file the embedded HUD font is registered under
const fontURL = "gomono.ttf"

// Palette holds the colors used to draw colliders
type Palette struct {
	Body    color.Color
	Static  color.Color
	Hit     color.Color
	Removed color.Color
	Text    color.Color
}

// DefaultPalette returns the debug view colors
func DefaultPalette() Palette {
	return Palette{
		Body:    color.RGBA{0, 200, 0, 160},
		Static:  color.RGBA{60, 120, 255, 160},
		Hit:     color.RGBA{255, 40, 40, 200},
		Removed: color.RGBA{128, 128, 128, 96},
		Text:    color.RGBA{255, 255, 255, 255},
	}
}

// Fill returns the fill color for a collider
func (p Palette) Fill(c *physics.Collider, colliding bool) color.Color {
	switch {
	case c.Removed():
		return p.Removed
	case colliding:
		return p.Hit
	case c.Static:
		return p.Static
	default:
		return p.Body
	}
}

// AssetManager loads the HUD font and builds drawables for shapes
type AssetManager struct {
	palette Palette
	font    *common.Font
}

// NewAssetManager creates a new asset manager
func NewAssetManager(palette Palette) *AssetManager {
	return &AssetManager{palette: palette}
}

// LoadAssets registers and parses the embedded HUD font. It must run
// inside an engo scene.
func (am *AssetManager) LoadAssets() error {
	if err := engo.Files.LoadReaderData(fontURL, bytes.NewReader(gomono.TTF)); err != nil {
		return fmt.Errorf("failed to load HUD font: %w", err)
	}

	font := &common.Font{URL: fontURL, FG: am.palette.Text, Size: 14}
	if err := font.CreatePreloaded(); err != nil {
		return fmt.Errorf("failed to create HUD font: %w", err)
	}
	am.font = font
	return nil
}

// Font returns the HUD font, or nil before LoadAssets
func (am *AssetManager) Font() *common.Font {
	return am.font
}

// Palette returns the collider colors
func (am *AssetManager) Palette() Palette {
	return am.palette
}

// ShapeDrawable returns a drawable for shape and the size in world units
// of the box it is stretched over. Rotated boxes and polygons are drawn as
// triangle fans over their bounds.
func (am *AssetManager) ShapeDrawable(c *physics.Collider) (common.Drawable, physics.Bounds) {
	bounds := c.Bounds()
	switch s := c.Shape.(type) {
	case *physics.Circle:
		return common.Circle{}, bounds
	case *physics.Box:
		if s.Rotation == 0 {
			return common.Rectangle{}, bounds
		}
		poly := s.ToPolygon()
		center := c.Center()
		return common.ComplexTriangles{Points: fanPoints(poly.CalcPoints, center, bounds)}, bounds
	case *physics.Polygon:
		return common.ComplexTriangles{Points: fanPoints(s.CalcPoints, c.Position, bounds)}, bounds
	default:
		return common.Rectangle{BorderWidth: 1, BorderColor: am.palette.Removed}, bounds
	}
}

// fanPoints triangulates a convex polygon from its first vertex. Points are
// relative to origin in world space and are returned normalized to bounds,
// which is how ComplexTriangles expects them.
func fanPoints(points []physics.Vector2D, origin physics.Vector2D, bounds physics.Bounds) []engo.Point {
	if len(points) < 3 {
		return nil
	}
	w, h := bounds.Width(), bounds.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	norm := func(p physics.Vector2D) engo.Point {
		world := p.Add(origin)
		return engo.Point{
			X: float32((world.X - bounds.Left) / w),
			Y: float32((world.Y - bounds.Top) / h),
		}
	}

	out := make([]engo.Point, 0, (len(points)-2)*3)
	first := norm(points[0])
	for i := 1; i+1 < len(points); i++ {
		out = append(out, first, norm(points[i]), norm(points[i+1]))
	}
	return out
}
