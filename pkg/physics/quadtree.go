// pkg/physics/quadtree.go
package physics

// QuadTree for spatial partitioning of collider bounds
type QuadTree struct {
	root     *quadNode
	Boundary Bounds
	Capacity int
	MaxDepth int

	free []*quadNode
	seen map[*Collider]struct{}
}

type quadNode struct {
	boundary Bounds
	depth    int
	objects  []*Collider
	divided  bool

	northWest *quadNode
	northEast *quadNode
	southWest *quadNode
	southEast *quadNode
}

// Defaults used when a quad tree is created without explicit settings
const (
	DefaultQuadTreeCapacity = 8
	DefaultQuadTreeDepth    = 8
)

// NewQuadTree creates a new quad tree with the given boundary and capacity.
// Colliders outside the boundary are kept at the root, so nothing is lost.
func NewQuadTree(boundary Bounds, capacity int) *QuadTree {
	if capacity <= 0 {
		capacity = DefaultQuadTreeCapacity
	}
	if boundary.Width() <= 0 || boundary.Height() <= 0 {
		boundary = Bounds{Left: -4096, Top: -4096, Right: 4096, Bottom: 4096}
	}
	qt := &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		MaxDepth: DefaultQuadTreeDepth,
		seen:     make(map[*Collider]struct{}),
	}
	qt.root = qt.node(boundary, 0)
	return qt
}

// Clear implements BroadPhase. Nodes are recycled for the next frame.
func (qt *QuadTree) Clear() {
	qt.recycle(qt.root)
	qt.root = qt.node(qt.Boundary, 0)
}

// Insert implements BroadPhase.
func (qt *QuadTree) Insert(c *Collider) {
	if !c.aabb.Finite() {
		return
	}
	qt.insert(qt.root, c)
}

// Retrieve implements BroadPhase.
func (qt *QuadTree) Retrieve(c *Collider, out []*Collider) []*Collider {
	if !c.aabb.Finite() {
		return out
	}
	clear(qt.seen)
	qt.seen[c] = struct{}{}
	return qt.query(qt.root, c.aabb, out, true)
}

// Depth returns the deepest level currently in use
func (qt *QuadTree) Depth() int {
	return depthOf(qt.root)
}

func depthOf(n *quadNode) int {
	if !n.divided {
		return n.depth
	}
	d := n.depth
	for _, child := range n.children() {
		if cd := depthOf(child); cd > d {
			d = cd
		}
	}
	return d
}

func (qt *QuadTree) insert(n *quadNode, c *Collider) {
	if n.divided {
		if child := n.fit(c.aabb); child != nil {
			qt.insert(child, c)
			return
		}
		n.objects = append(n.objects, c)
		return
	}

	n.objects = append(n.objects, c)
	if len(n.objects) <= qt.Capacity || n.depth >= qt.MaxDepth {
		return
	}

	qt.subdivide(n)
	kept := n.objects[:0]
	for _, obj := range n.objects {
		if child := n.fit(obj.aabb); child != nil {
			qt.insert(child, obj)
		} else {
			kept = append(kept, obj)
		}
	}
	clearTail(n.objects, len(kept))
	n.objects = kept
}

// subdivide splits the node into four quadrants
func (qt *QuadTree) subdivide(n *quadNode) {
	b := n.boundary
	mid := b.Center()
	d := n.depth + 1

	n.northWest = qt.node(Bounds{Left: b.Left, Top: b.Top, Right: mid.X, Bottom: mid.Y}, d)
	n.northEast = qt.node(Bounds{Left: mid.X, Top: b.Top, Right: b.Right, Bottom: mid.Y}, d)
	n.southWest = qt.node(Bounds{Left: b.Left, Top: mid.Y, Right: mid.X, Bottom: b.Bottom}, d)
	n.southEast = qt.node(Bounds{Left: mid.X, Top: mid.Y, Right: b.Right, Bottom: b.Bottom}, d)
	n.divided = true
}

// query returns all objects whose bounds touch area. The root is always
// scanned because it holds colliders lying outside the boundary.
func (qt *QuadTree) query(n *quadNode, area Bounds, out []*Collider, root bool) []*Collider {
	if !root && !n.boundary.Touches(area) {
		return out
	}

	for _, obj := range n.objects {
		if _, dup := qt.seen[obj]; dup {
			continue
		}
		if obj.aabb.Touches(area) {
			qt.seen[obj] = struct{}{}
			out = append(out, obj)
		}
	}

	if !n.divided {
		return out
	}
	for _, child := range n.children() {
		out = qt.query(child, area, out, false)
	}
	return out
}

func (n *quadNode) children() [4]*quadNode {
	return [4]*quadNode{n.northWest, n.northEast, n.southWest, n.southEast}
}

// fit returns the child that fully contains b, if any
func (n *quadNode) fit(b Bounds) *quadNode {
	for _, child := range n.children() {
		if child.boundary.Contains(b) {
			return child
		}
	}
	return nil
}

func (qt *QuadTree) node(boundary Bounds, depth int) *quadNode {
	if k := len(qt.free); k > 0 {
		n := qt.free[k-1]
		qt.free = qt.free[:k-1]
		n.boundary = boundary
		n.depth = depth
		return n
	}
	return &quadNode{boundary: boundary, depth: depth}
}

func (qt *QuadTree) recycle(n *quadNode) {
	if n == nil {
		return
	}
	if n.divided {
		for _, child := range n.children() {
			qt.recycle(child)
		}
	}
	clearTail(n.objects, 0)
	n.objects = n.objects[:0]
	n.divided = false
	n.northWest, n.northEast, n.southWest, n.southEast = nil, nil, nil, nil
	qt.free = append(qt.free, n)
}

// clearTail drops references past n so recycled slices do not pin colliders
func clearTail(s []*Collider, n int) {
	for i := n; i < len(s); i++ {
		s[i] = nil
	}
}
