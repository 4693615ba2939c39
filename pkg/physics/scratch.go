// pkg/physics/scratch.go
package physics

// Range is the [min, max] projection of a point set onto an axis
type Range [2]float64

// scratch is a stack of reusable temporaries owned by a solver. Slots are
// handed out in order and returned together by release(mark), so every
// acquire must be paired with a deferred release:
//
//	defer s.release(s.mark())
//
// Slots are not cleared; callers initialise every slot they take.
type scratch struct {
	vecs   []*Vector2D
	ranges []*Range
	vtop   int
	rtop   int
}

type scratchMark struct {
	vtop int
	rtop int
}

func newScratch(vecs, ranges int) *scratch {
	s := &scratch{
		vecs:   make([]*Vector2D, vecs),
		ranges: make([]*Range, ranges),
	}
	for i := range s.vecs {
		s.vecs[i] = new(Vector2D)
	}
	for i := range s.ranges {
		s.ranges[i] = new(Range)
	}
	return s
}

func (s *scratch) mark() scratchMark {
	return scratchMark{vtop: s.vtop, rtop: s.rtop}
}

func (s *scratch) release(m scratchMark) {
	s.vtop = m.vtop
	s.rtop = m.rtop
}

func (s *scratch) vec() *Vector2D {
	if s.vtop == len(s.vecs) {
		s.vecs = append(s.vecs, new(Vector2D))
	}
	v := s.vecs[s.vtop]
	s.vtop++
	return v
}

func (s *scratch) rng() *Range {
	if s.rtop == len(s.ranges) {
		s.ranges = append(s.ranges, new(Range))
	}
	r := s.ranges[s.rtop]
	s.rtop++
	return r
}

// inUse reports the number of vectors and ranges currently handed out
func (s *scratch) inUse() (vecs, ranges int) {
	return s.vtop, s.rtop
}
