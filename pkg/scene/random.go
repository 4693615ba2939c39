package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// RandomOptions controls the generated scenarios. Every body is placed in
// [0, Width) x [0, Height), belongs to group 0 and collides against group 0.
type RandomOptions struct {
	Seed      int64
	Count     int
	Width     float64
	Height    float64
	MinSize   float64
	MaxSize   float64
	MaxSpeed  float64
	StaticPct float64
}

// DefaultRandomOptions returns a medium density scenario
func DefaultRandomOptions() RandomOptions {
	return RandomOptions{
		Seed:     42,
		Count:    200,
		Width:    1000,
		Height:   1000,
		MinSize:  4,
		MaxSize:  16,
		MaxSpeed: 50,
	}
}

func (o RandomOptions) validate() error {
	if o.Count < 0 || o.Count > MaxBodies {
		return fmt.Errorf("count must be in [0, %d], got %d", MaxBodies, o.Count)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("area must have a positive size, got %vx%v", o.Width, o.Height)
	}
	if o.MinSize <= 0 || o.MaxSize < o.MinSize {
		return fmt.Errorf("size range [%v, %v] is invalid", o.MinSize, o.MaxSize)
	}
	if o.StaticPct < 0 || o.StaticPct > 1 {
		return fmt.Errorf("static fraction must be in [0, 1], got %v", o.StaticPct)
	}
	return nil
}

type generator struct {
	opts RandomOptions
	rng  *rand.Rand
}

func newGenerator(opts RandomOptions) (*generator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &generator{opts: opts, rng: rand.New(rand.NewSource(opts.Seed))}, nil
}

func (g *generator) size() float64 {
	return g.opts.MinSize + g.rng.Float64()*(g.opts.MaxSize-g.opts.MinSize)
}

func (g *generator) body(name string, shape ShapeSpec) Body {
	group := 0
	b := Body{
		Name:           name,
		Shape:          shape,
		Position:       physics.Vector2D{X: g.rng.Float64() * g.opts.Width, Y: g.rng.Float64() * g.opts.Height},
		Group:          &group,
		CollideAgainst: []int{0},
	}
	if g.rng.Float64() < g.opts.StaticPct {
		b.Static = true
		return b
	}
	b.Velocity = physics.FromAngle(g.rng.Float64()*2*math.Pi, g.rng.Float64()*g.opts.MaxSpeed)
	return b
}

// RandomCircles generates Count circles with radii in [MinSize, MaxSize].
// The same options always produce the same scene.
func RandomCircles(opts RandomOptions) (*Scene, error) {
	g, err := newGenerator(opts)
	if err != nil {
		return nil, err
	}

	s := &Scene{Name: fmt.Sprintf("circles-%d-%d", opts.Count, opts.Seed)}
	for i := 0; i < opts.Count; i++ {
		shape := ShapeSpec{Type: ShapeCircle, Radius: g.size()}
		s.Bodies = append(s.Bodies, g.body(fmt.Sprintf("circle-%d", i), shape))
	}
	return s, nil
}

// RandomMixed generates boxes, circles and regular polygons in equal
// proportion.
func RandomMixed(opts RandomOptions) (*Scene, error) {
	g, err := newGenerator(opts)
	if err != nil {
		return nil, err
	}

	s := &Scene{Name: fmt.Sprintf("mixed-%d-%d", opts.Count, opts.Seed)}
	for i := 0; i < opts.Count; i++ {
		var shape ShapeSpec
		switch i % 3 {
		case 0:
			shape = ShapeSpec{Type: ShapeBox, Width: g.size(), Height: g.size()}
		case 1:
			shape = ShapeSpec{Type: ShapeCircle, Radius: g.size() / 2}
		default:
			shape = ShapeSpec{
				Type:     ShapePolygon,
				Points:   RegularPolygon(3+g.rng.Intn(5), g.size()/2),
				Rotation: g.rng.Float64() * 2 * math.Pi,
			}
		}
		s.Bodies = append(s.Bodies, g.body(fmt.Sprintf("body-%d", i), shape))
	}
	return s, nil
}

// RegularPolygon returns the clockwise points of a regular polygon with n
// sides centered on the origin.
func RegularPolygon(n int, radius float64) []physics.Vector2D {
	points := make([]physics.Vector2D, n)
	for i := range points {
		points[i] = physics.FromAngle(2*math.Pi*float64(i)/float64(n), radius)
	}
	return points
}
