// pkg/physics/broadphase_test.go
package physics

import (
	"math"
	"testing"
)

func containsCollider(list []*Collider, c *Collider) bool {
	for _, o := range list {
		if o == c {
			return true
		}
	}
	return false
}

func TestSpatialHash_RetrieveDeduplicatesAndExcludesSelf(t *testing.T) {
	h := NewSpatialHash(10)
	big := colliderAt(NewBox(40, 40), 0, 0)
	small := colliderAt(NewBox(2, 2), 5, 5)
	far := colliderAt(NewBox(2, 2), 500, 500)

	h.Clear()
	for _, c := range []*Collider{big, small, far} {
		h.Insert(c)
	}

	got := h.Retrieve(big, nil)
	if len(got) != 1 || got[0] != small {
		t.Fatalf("Retrieve(big) = %v, expected only the small box", got)
	}
	if containsCollider(h.Retrieve(small, nil), small) {
		t.Error("Retrieve() returned the query collider")
	}
	if len(h.Retrieve(far, nil)) != 0 {
		t.Error("far collider should have no candidates")
	}
}

func TestSpatialHash_ClearDropsStaleBuckets(t *testing.T) {
	h := NewSpatialHash(10)
	c := colliderAt(NewBox(2, 2), 0, 0)

	h.Clear()
	h.Insert(c)
	occupied := h.Cells()
	if occupied == 0 {
		t.Fatal("expected occupied cells after Insert")
	}

	c.Position = Vector2D{X: 1000, Y: 1000}
	c.refreshBounds()
	h.Clear()
	h.Insert(c)
	h.Clear()
	h.Insert(c)

	if h.Cells() != occupied {
		t.Errorf("Cells() = %d, expected %d after the collider moved away", h.Cells(), occupied)
	}
}

func TestSpatialHash_SkipsNonFiniteBounds(t *testing.T) {
	h := NewSpatialHash(0)
	if h.CellSize() != DefaultCellSize {
		t.Errorf("CellSize() = %v, expected default %v", h.CellSize(), DefaultCellSize)
	}

	c := colliderAt(NewCircle(1), math.NaN(), 0)
	h.Clear()
	h.Insert(c)
	if h.Cells() != 0 {
		t.Errorf("NaN collider occupied %d cells", h.Cells())
	}
	if got := h.Retrieve(c, nil); len(got) != 0 {
		t.Errorf("Retrieve() = %v for NaN collider", got)
	}
}

func TestCellKey_NegativeCoordinatesAreDistinct(t *testing.T) {
	keys := map[uint64]bool{}
	for _, xy := range [][2]int32{{0, 0}, {-1, 0}, {0, -1}, {-1, -1}, {1, -1}} {
		k := cellKey(xy[0], xy[1])
		if keys[k] {
			t.Fatalf("duplicate key for %v", xy)
		}
		keys[k] = true
	}
}

func TestQuadTree_SubdividesAndFindsNeighbours(t *testing.T) {
	qt := NewQuadTree(Bounds{Left: 0, Top: 0, Right: 256, Bottom: 256}, 2)
	var all []*Collider
	for i := 0; i < 16; i++ {
		c := colliderAt(NewCircle(2), float64(8+i*15), float64(8+i*15))
		all = append(all, c)
		qt.Insert(c)
	}

	if qt.Depth() == 0 {
		t.Error("expected the tree to subdivide past capacity")
	}

	probe := colliderAt(NewCircle(4), 38, 38)
	got := qt.Retrieve(probe, nil)
	if !containsCollider(got, all[2]) {
		t.Errorf("Retrieve() missed the overlapping collider, got %d candidates", len(got))
	}
	if containsCollider(got, all[10]) {
		t.Error("Retrieve() returned a distant collider")
	}
}

func TestQuadTree_KeepsCollidersOutsideBoundary(t *testing.T) {
	qt := NewQuadTree(Bounds{Left: 0, Top: 0, Right: 100, Bottom: 100}, 1)
	inside := colliderAt(NewCircle(1), 50, 50)
	outside := colliderAt(NewCircle(5), 200, 200)
	near := colliderAt(NewCircle(5), 205, 200)

	for _, c := range []*Collider{inside, outside, near} {
		qt.Insert(c)
	}

	got := qt.Retrieve(near, nil)
	if !containsCollider(got, outside) {
		t.Error("collider outside the boundary was lost")
	}
	if containsCollider(got, near) {
		t.Error("Retrieve() returned the query collider")
	}

	qt.Clear()
	if len(qt.Retrieve(near, nil)) != 0 {
		t.Error("Clear() left colliders behind")
	}
}

func TestGroupBuckets_UsesCollideAgainstMask(t *testing.T) {
	a := colliderAt(NewCircle(1), 0, 0)
	b := colliderAt(NewCircle(1), 500, 0)
	c := colliderAt(NewCircle(1), 0, 0)
	a.group, b.group, c.group = 0, 1, 2
	a.against = MaskOf(0, 1)

	g := &GroupBuckets{groups: map[int][]*Collider{0: {a}, 1: {b}, 2: {c}}}
	got := g.Retrieve(a, nil)

	if len(got) != 1 || got[0] != b {
		t.Errorf("Retrieve() = %v, expected only the group 1 member", got)
	}
}
