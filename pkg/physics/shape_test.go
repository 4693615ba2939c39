// pkg/physics/shape_test.go
package physics

import (
	"math"
	"testing"
)

func TestShapeKind_String(t *testing.T) {
	tests := []struct {
		kind     ShapeKind
		expected string
	}{
		{ShapeBox, "box"},
		{ShapeCircle, "circle"},
		{ShapePolygon, "polygon"},
		{ShapeKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("String() = %q, expected %q", got, tt.expected)
		}
	}
}

func TestShape_Valid(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		valid bool
	}{
		{"box", NewBox(1, 2), true},
		{"flat_box", NewBox(0, 2), false},
		{"circle", NewCircle(1), true},
		{"negative_circle", NewCircle(-1), false},
		{"triangle", NewPolygon([]Vector2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}), true},
		{"segment", NewPolygon([]Vector2D{{X: 0, Y: 0}, {X: 1, Y: 0}}), false},
		{"nil_box", (*Box)(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, expected %v", got, tt.valid)
			}
		})
	}
}

func TestBox_ToPolygon_ClockwiseWithOutwardNormals(t *testing.T) {
	p := NewBox(4, 2).ToPolygon()

	expectedPoints := []Vector2D{{X: -2, Y: -1}, {X: 2, Y: -1}, {X: 2, Y: 1}, {X: -2, Y: 1}}
	expectedNormals := []Vector2D{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

	for i := range expectedPoints {
		if !vecNearlyEqual(p.CalcPoints[i], expectedPoints[i]) {
			t.Errorf("CalcPoints[%d] = %v, expected %v", i, p.CalcPoints[i], expectedPoints[i])
		}
		if !vecNearlyEqual(p.Normals[i], expectedNormals[i]) {
			t.Errorf("Normals[%d] = %v, expected %v", i, p.Normals[i], expectedNormals[i])
		}
	}
	if p.Width() != 4 || p.Height() != 2 {
		t.Errorf("extents = %vx%v, expected 4x2", p.Width(), p.Height())
	}
}

func TestBox_ToPolygon_KeepsRotation(t *testing.T) {
	b := NewBox(2, 2)
	b.Rotation = math.Pi / 4
	p := b.ToPolygon()

	if p.Rotation != b.Rotation {
		t.Errorf("Rotation = %v, expected %v", p.Rotation, b.Rotation)
	}
	if !nearlyEqual(p.Width(), 2*math.Sqrt2) || !nearlyEqual(p.Height(), 2*math.Sqrt2) {
		t.Errorf("rotated extents = %vx%v, expected %v", p.Width(), p.Height(), 2*math.Sqrt2)
	}
}

func TestPolygon_Recalc_OffsetThenRotation(t *testing.T) {
	p := NewBox(2, 2).ToPolygon()
	p.SetOffset(Vector2D{X: 1})

	if !vecNearlyEqual(p.CalcPoints[0], Vector2D{X: 0, Y: -1}) {
		t.Fatalf("offset CalcPoints[0] = %v, expected (0, -1)", p.CalcPoints[0])
	}

	p.SetRotation(math.Pi / 2)
	if !vecNearlyEqual(p.CalcPoints[0], Vector2D{X: 1, Y: 0}) {
		t.Errorf("rotated CalcPoints[0] = %v, expected (1, 0)", p.CalcPoints[0])
	}
	if p.Points[0] != (Vector2D{X: -1, Y: -1}) {
		t.Errorf("source point changed to %v", p.Points[0])
	}

	for i, n := range p.Normals {
		if !nearlyEqual(n.Length(), 1) {
			t.Errorf("Normals[%d] length = %v, expected 1", i, n.Length())
		}
	}
}

func TestPolygon_Mutators_ReuseCaches(t *testing.T) {
	p := NewPolygon([]Vector2D{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}})
	calc := &p.CalcPoints[0]
	normals := &p.Normals[0]

	p.Rotate(0.3)
	p.Translate(5, -1)
	p.SetPoints([]Vector2D{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 1, Y: 3}})

	if &p.CalcPoints[0] != calc || &p.Normals[0] != normals {
		t.Error("caches were reallocated without a vertex count change")
	}

	p.SetPoints([]Vector2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}})
	if len(p.CalcPoints) != 4 || len(p.Edges) != 4 || len(p.Normals) != 4 {
		t.Errorf("caches not resized: %d %d %d", len(p.CalcPoints), len(p.Edges), len(p.Normals))
	}
}

func TestPolygon_TranslateAndRotate_MoveSourcePoints(t *testing.T) {
	p := NewPolygon([]Vector2D{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}})

	p.Translate(1, 1)
	if p.Points[0] != (Vector2D{X: 1, Y: 1}) || p.CalcPoints[0] != (Vector2D{X: 1, Y: 1}) {
		t.Errorf("Translate() point = %v calc = %v", p.Points[0], p.CalcPoints[0])
	}

	p.Rotate(math.Pi)
	if !vecNearlyEqual(p.Points[0], Vector2D{X: -1, Y: -1}) {
		t.Errorf("Rotate() point = %v, expected (-1, -1)", p.Points[0])
	}
	if p.Rotation != 0 {
		t.Errorf("Rotate() changed Rotation to %v", p.Rotation)
	}

	min, max := p.Bounds()
	if !vecNearlyEqual(min, Vector2D{X: -3, Y: -3}) || !vecNearlyEqual(max, Vector2D{X: -1, Y: -1}) {
		t.Errorf("Bounds() = %v %v", min, max)
	}
}

func BenchmarkPolygon_SetRotation(b *testing.B) {
	p := NewBox(10, 20).ToPolygon()

	for i := 0; i < b.N; i++ {
		p.SetRotation(float64(i) * 0.01)
	}
}
