package scene

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/validation"
)

const dropYAML = `name: drop
bodies:
  - name: ground
    shape: {type: box, width: 100, height: 10}
    position: {x: 0, y: 50}
    static: true
    group: 0
  - name: crate
    shape: {type: box, width: 10, height: 10}
    position: {x: 0, y: 42}
    mass: 2
    group: 1
    collideAgainst: [0]
  - name: wedge
    shape:
      type: polygon
      points: [{x: 0, y: 0}, {x: 4, y: 4}, {x: 0, y: 4}]
    position: {x: 300, y: 300}
`

func newWorld(t *testing.T) *physics.World {
	t.Helper()
	w, err := physics.NewWorld(physics.WorldOptions{})
	require.NoError(t, err)
	return w
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestLoad_YAML(t *testing.T) {
	s, err := Load(writeFile(t, "drop.yaml", dropYAML))
	require.NoError(t, err)

	assert.Equal(t, "drop", s.Name)
	require.Len(t, s.Bodies, 3)
	assert.Equal(t, ShapeBox, s.Bodies[0].Shape.Type)
	assert.True(t, s.Bodies[0].Static)
	require.NotNil(t, s.Bodies[1].Mass)
	assert.Equal(t, 2.0, *s.Bodies[1].Mass)
	assert.Equal(t, []int{0}, s.Bodies[1].CollideAgainst)
	assert.Nil(t, s.Bodies[2].Group)
	assert.Len(t, s.Bodies[2].Shape.Points, 3)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read scene file")

	_, err = Load(writeFile(t, "bad.json", `{"bodies": [}`))
	assert.ErrorContains(t, err, "failed to parse scene file")
}

func TestSave_RoundTrip(t *testing.T) {
	for _, name := range []string{"scene.json", "scene.yml"} {
		t.Run(name, func(t *testing.T) {
			original, err := RandomMixed(RandomOptions{
				Seed: 7, Count: 9, Width: 100, Height: 100, MinSize: 2, MaxSize: 6, MaxSpeed: 10,
			})
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, original.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestScene_Validate(t *testing.T) {
	circle := ShapeSpec{Type: ShapeCircle, Radius: 1}

	tests := []struct {
		name    string
		bodies  []Body
		wantErr string
	}{
		{"empty", nil, ""},
		{"unnamed bodies", []Body{{Shape: circle}, {Shape: circle}}, ""},
		{"missing shape type", []Body{{Name: "a"}}, "shape type is required"},
		{"unknown shape type", []Body{{Shape: ShapeSpec{Type: "capsule"}}}, "unknown shape type"},
		{"duplicate names", []Body{{Name: "a", Shape: circle}, {Name: "a", Shape: circle}}, "already used"},
		{"bad name", []Body{{Name: "a b", Shape: circle}}, "invalid characters"},
		{"zero radius", []Body{{Shape: ShapeSpec{Type: ShapeCircle}}}, "circle radius"},
		{"counter-clockwise polygon", []Body{{Shape: ShapeSpec{
			Type:   ShapePolygon,
			Points: []physics.Vector2D{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}},
		}}}, "clockwise"},
		{"group out of range", []Body{{Shape: circle, Group: intPtr(physics.MaxGroups)}}, "invalid collision group"},
		{"against out of range", []Body{{Shape: circle, CollideAgainst: []int{40}}}, "collide against"},
		{"zero mass", []Body{{Shape: circle, Mass: new(float64)}}, ""},
		{"negative mass", []Body{{Shape: circle, Mass: floatPtr(-1)}}, "mass"},
		{"damping", []Body{{Shape: circle, Damping: 1.5}}, "damping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Scene{Bodies: tt.bodies}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestScene_Build(t *testing.T) {
	s, err := Load(writeFile(t, "drop.yaml", dropYAML))
	require.NoError(t, err)

	w := newWorld(t)
	colliders, err := s.Build(context.Background(), w, nil)
	require.NoError(t, err)
	require.Len(t, colliders, 3)
	assert.Len(t, w.Bodies(), 3)

	ground, crate, wedge := colliders[0], colliders[1], colliders[2]
	assert.Equal(t, "ground", ground.UserData)
	assert.True(t, ground.Static)
	assert.Equal(t, 0, ground.Group())
	assert.Equal(t, 1, crate.Group())
	assert.True(t, crate.CollideAgainst().Has(0))
	assert.Equal(t, 2.0, crate.Mass)
	assert.Equal(t, physics.NoGroup, wedge.Group())
	assert.Equal(t, 1.0, wedge.Mass)
	assert.Same(t, w, crate.World())
	assert.Equal(t, []*physics.Collider{ground}, w.Group(0))

	// The crate starts 2 units into the ground and is pushed back out.
	w.Step(1.0 / 60)
	assert.InDelta(t, 40, crate.Position.Y, 1e-9)
	assert.Equal(t, physics.Vector2D{X: 0, Y: 50}, ground.Position)
}

func TestScene_BuildRejectsInvalidScene(t *testing.T) {
	s := &Scene{Name: "broken", Bodies: []Body{
		{Shape: ShapeSpec{Type: ShapeCircle, Radius: 1}},
		{Shape: ShapeSpec{Type: ShapeBox, Width: -1, Height: 1}},
	}}

	w := newWorld(t)
	colliders, err := s.Build(context.Background(), w, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid scene "broken"`)
	assert.Nil(t, colliders)
	assert.Empty(t, w.Bodies(), "no body should be added when validation fails")
}

func TestBody_ColliderAnchorAndRotation(t *testing.T) {
	b := Body{
		Shape:    ShapeSpec{Type: ShapeBox, Width: 4, Height: 2, Rotation: 0.5},
		Position: physics.Vector2D{X: 1, Y: 2},
		Anchor:   &physics.Vector2D{X: 0, Y: 0},
	}
	c, err := b.Collider()
	require.NoError(t, err)

	box, ok := c.Shape.(*physics.Box)
	require.True(t, ok)
	assert.Equal(t, 0.5, box.Rotation)
	assert.Equal(t, physics.Vector2D{}, c.Anchor)
	assert.Nil(t, c.UserData)
	assert.Nil(t, c.World())
}

func TestRandomCircles(t *testing.T) {
	opts := DefaultRandomOptions()
	opts.StaticPct = 0.25

	a, err := RandomCircles(opts)
	require.NoError(t, err)
	b, err := RandomCircles(opts)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must give the same scene")
	require.Len(t, a.Bodies, opts.Count)
	require.NoError(t, a.Validate())

	statics := 0
	for _, body := range a.Bodies {
		r := body.Shape.Radius
		assert.GreaterOrEqual(t, r, opts.MinSize)
		assert.LessOrEqual(t, r, opts.MaxSize)
		assert.True(t, body.Position.X >= 0 && body.Position.X < opts.Width)
		assert.True(t, body.Position.Y >= 0 && body.Position.Y < opts.Height)
		assert.LessOrEqual(t, body.Velocity.Length(), opts.MaxSpeed+1e-9)
		if body.Static {
			statics++
			assert.Equal(t, physics.Vector2D{}, body.Velocity)
		}
	}
	assert.Greater(t, statics, 0)
	assert.Less(t, statics, opts.Count)

	opts.Seed++
	c, err := RandomCircles(opts)
	require.NoError(t, err)
	assert.NotEqual(t, a.Bodies, c.Bodies)
}

func TestRandomMixed_IsValid(t *testing.T) {
	s, err := RandomMixed(DefaultRandomOptions())
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	kinds := map[string]int{}
	for _, body := range s.Bodies {
		kinds[body.Shape.Type]++
	}
	assert.Len(t, kinds, 3)
}

func TestRandomOptions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *RandomOptions)
	}{
		{"negative count", func(o *RandomOptions) { o.Count = -1 }},
		{"flat area", func(o *RandomOptions) { o.Height = 0 }},
		{"inverted sizes", func(o *RandomOptions) { o.MinSize, o.MaxSize = 5, 1 }},
		{"static fraction", func(o *RandomOptions) { o.StaticPct = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultRandomOptions()
			tt.mutate(&opts)
			_, err := RandomCircles(opts)
			assert.Error(t, err)
		})
	}
}

func TestRegularPolygon_IsClockwiseConvex(t *testing.T) {
	for n := 3; n <= 12; n++ {
		assert.NoError(t, validation.ValidatePolygon(RegularPolygon(n, 5)), "n=%d", n)
	}
}
