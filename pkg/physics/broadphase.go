// pkg/physics/broadphase.go
package physics

import (
	"fmt"
	"math"
)

// BroadPhase narrows the set of colliders that might overlap a query
// collider. Results are a superset of the truly overlapping colliders and
// never include the query collider itself.
type BroadPhase interface {
	// Clear empties the structure; it is called once per frame.
	Clear()
	// Insert files a collider under its current cached bounds.
	Insert(c *Collider)
	// Retrieve appends the candidates for c to out and returns it.
	Retrieve(c *Collider, out []*Collider) []*Collider
}

// BroadPhaseKind selects one of the built-in broad phases
type BroadPhaseKind string

const (
	BroadPhaseSpatialHash BroadPhaseKind = "spatialhash"
	BroadPhaseQuadTree    BroadPhaseKind = "quadtree"
	BroadPhaseBrute       BroadPhaseKind = "brute"
)

// DefaultCellSize is the spatial hash cell edge used when none is configured
const DefaultCellSize = 64

// SpatialHash buckets colliders into a uniform grid. Buckets are kept
// between frames and reused, so a steady scene does not allocate.
type SpatialHash struct {
	cellSize float64
	inv      float64
	cells    map[uint64]*hashBucket
	frame    uint64
	seen     map[*Collider]struct{}
}

type hashBucket struct {
	items []*Collider
	frame uint64
}

// NewSpatialHash creates a spatial hash with square cells of cellSize
func NewSpatialHash(cellSize float64) *SpatialHash {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return &SpatialHash{
		cellSize: cellSize,
		inv:      1 / cellSize,
		cells:    make(map[uint64]*hashBucket),
		frame:    1,
		seen:     make(map[*Collider]struct{}),
	}
}

// CellSize returns the grid cell edge length
func (h *SpatialHash) CellSize() float64 {
	return h.cellSize
}

// Clear implements BroadPhase. Buckets untouched for a whole frame are
// dropped so the map tracks the occupied area.
func (h *SpatialHash) Clear() {
	for key, b := range h.cells {
		if b.frame != h.frame {
			delete(h.cells, key)
		}
	}
	h.frame++
}

// Insert implements BroadPhase.
func (h *SpatialHash) Insert(c *Collider) {
	minX, minY, maxX, maxY, ok := h.span(c.aabb)
	if !ok {
		return
	}
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			key := cellKey(x, y)
			b := h.cells[key]
			if b == nil {
				b = &hashBucket{}
				h.cells[key] = b
			}
			if b.frame != h.frame {
				b.items = b.items[:0]
				b.frame = h.frame
			}
			b.items = append(b.items, c)
		}
	}
}

// Retrieve implements BroadPhase.
func (h *SpatialHash) Retrieve(c *Collider, out []*Collider) []*Collider {
	minX, minY, maxX, maxY, ok := h.span(c.aabb)
	if !ok {
		return out
	}
	clear(h.seen)
	h.seen[c] = struct{}{}
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			b := h.cells[cellKey(x, y)]
			if b == nil || b.frame != h.frame {
				continue
			}
			for _, other := range b.items {
				if _, dup := h.seen[other]; dup {
					continue
				}
				h.seen[other] = struct{}{}
				out = append(out, other)
			}
		}
	}
	return out
}

// Cells returns the number of buckets currently allocated
func (h *SpatialHash) Cells() int {
	return len(h.cells)
}

func (h *SpatialHash) span(b Bounds) (minX, minY, maxX, maxY int32, ok bool) {
	if !b.Finite() {
		return 0, 0, 0, 0, false
	}
	return int32(math.Floor(b.Left * h.inv)),
		int32(math.Floor(b.Top * h.inv)),
		int32(math.Floor(b.Right * h.inv)),
		int32(math.Floor(b.Bottom * h.inv)),
		true
}

func cellKey(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

// GroupBuckets is the brute-force broad phase: a collider's candidates are
// every member of the groups in its collide-against mask. It reads the
// world's group buckets directly and keeps no state of its own.
type GroupBuckets struct {
	groups map[int][]*Collider
}

// Clear implements BroadPhase.
func (g *GroupBuckets) Clear() {}

// Insert implements BroadPhase.
func (g *GroupBuckets) Insert(*Collider) {}

// Retrieve implements BroadPhase.
func (g *GroupBuckets) Retrieve(c *Collider, out []*Collider) []*Collider {
	for group := 0; group < MaxGroups; group++ {
		if c.against&(Mask(1)<<uint(group)) == 0 {
			continue
		}
		for _, other := range g.groups[group] {
			if other != c {
				out = append(out, other)
			}
		}
	}
	return out
}

func newBroadPhase(kind BroadPhaseKind, opts WorldOptions, groups map[int][]*Collider) (BroadPhase, error) {
	switch kind {
	case BroadPhaseSpatialHash, "":
		return NewSpatialHash(opts.CellSize), nil
	case BroadPhaseQuadTree:
		return NewQuadTree(opts.QuadTreeBounds, opts.QuadTreeCapacity), nil
	case BroadPhaseBrute:
		return &GroupBuckets{groups: groups}, nil
	default:
		return nil, fmt.Errorf("unknown broad phase %q", kind)
	}
}
