package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// Glyphs used by the terminal renderer
const (
	GlyphBox     = '#'
	GlyphCircle  = 'o'
	GlyphPolygon = '*'
	GlyphHit     = 'X'
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStatic = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleHit    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

type cell struct {
	r     rune
	style tcell.Style
}

// TerminalRenderer rasterizes colliders into a character grid and presents
// it on a tcell screen inside a one-cell border. Each cell covers scale
// world units in both directions.
type TerminalRenderer struct {
	screen    tcell.Screen
	width     int
	height    int
	buffer    [][]cell
	scale     float64
	centerPos physics.Vector2D
}

// NewTerminalRenderer creates a new terminal renderer with the specified
// dimensions. The screen must already be initialized.
func NewTerminalRenderer(screen tcell.Screen, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]cell, height)
	for i := range buffer {
		buffer[i] = make([]cell, width)
	}

	r := &TerminalRenderer{
		screen: screen,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// SetCenter sets the world position shown in the middle of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to buffer coordinates
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2))
	return screenX, screenY
}

// screenToWorld returns the world position of the middle of a buffer cell
func (r *TerminalRenderer) screenToWorld(x, y int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(x)+0.5-float64(r.width)/2)*r.scale + r.centerPos.X,
		Y: (float64(y)+0.5-float64(r.height)/2)*r.scale + r.centerPos.Y,
	}
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = cell{r: ' ', style: tcell.StyleDefault}
		}
	}
}

// RenderCollider implements Renderer. Every cell whose center lies inside
// the shape is filled; a collider smaller than a cell still marks the cell
// under its center.
func (r *TerminalRenderer) RenderCollider(c *physics.Collider, colliding bool) {
	if c == nil || c.Shape == nil {
		return
	}

	glyph, style := GlyphBox, styleBody
	switch c.Shape.(type) {
	case *physics.Circle:
		glyph = GlyphCircle
	case *physics.Polygon:
		glyph = GlyphPolygon
	}
	if c.Static {
		style = styleStatic
	}
	if colliding {
		glyph, style = GlyphHit, styleHit
	}

	inside := containsFunc(c)
	b := c.Bounds()
	x0, y0 := r.worldToScreen(physics.Vector2D{X: b.Left, Y: b.Top})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: b.Right, Y: b.Bottom})
	for y := max(y0, 0); y <= min(y1, r.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.width-1); x++ {
			if inside(r.screenToWorld(x, y)) {
				r.buffer[y][x] = cell{r: glyph, style: style}
			}
		}
	}

	if x, y := r.worldToScreen(c.Center()); r.inView(x, y) {
		r.buffer[y][x] = cell{r: glyph, style: style}
	}
}

func (r *TerminalRenderer) inView(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() error {
	r.screen.Clear()

	right, bottom := r.width+1, r.height+1
	r.screen.SetContent(0, 0, '+', nil, styleBorder)
	r.screen.SetContent(right, 0, '+', nil, styleBorder)
	r.screen.SetContent(0, bottom, '+', nil, styleBorder)
	r.screen.SetContent(right, bottom, '+', nil, styleBorder)
	for x := 1; x <= r.width; x++ {
		r.screen.SetContent(x, 0, '-', nil, styleBorder)
		r.screen.SetContent(x, bottom, '-', nil, styleBorder)
	}
	for y := 1; y <= r.height; y++ {
		r.screen.SetContent(0, y, '|', nil, styleBorder)
		r.screen.SetContent(right, y, '|', nil, styleBorder)
	}

	for y, row := range r.buffer {
		for x, c := range row {
			r.screen.SetContent(x+1, y+1, c.r, nil, c.style)
		}
	}

	r.screen.Show()
	return nil
}

// containsFunc returns a world-space point test for the collider's shape
func containsFunc(c *physics.Collider) func(physics.Vector2D) bool {
	switch s := c.Shape.(type) {
	case *physics.Circle:
		center, r2 := c.Center(), s.Radius*s.Radius
		return func(p physics.Vector2D) bool {
			return p.DistanceSquared(center) <= r2
		}
	case *physics.Box:
		if s.Rotation == 0 {
			b := c.Bounds()
			return func(p physics.Vector2D) bool {
				return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
			}
		}
		points, origin := s.ToPolygon().CalcPoints, c.Center()
		return func(p physics.Vector2D) bool {
			return insideConvex(points, p.Sub(origin))
		}
	case *physics.Polygon:
		points, origin := s.CalcPoints, c.Position
		return func(p physics.Vector2D) bool {
			return insideConvex(points, p.Sub(origin))
		}
	default:
		return func(physics.Vector2D) bool { return false }
	}
}

// insideConvex tests p against a clockwise (screen space) convex polygon
func insideConvex(points []physics.Vector2D, p physics.Vector2D) bool {
	if len(points) < 3 {
		return false
	}
	for i, a := range points {
		b := points[(i+1)%len(points)]
		if b.Sub(a).Cross(p.Sub(a)) < 0 {
			return false
		}
	}
	return true
}
