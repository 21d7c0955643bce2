package boolean

// StripSide marks whether a strip endpoint sits at the Start or End of a
// polygon edge traversal, or neither.
type StripSide int

const (
	SideNone StripSide = iota
	SideStart
	SideEnd
)

// StripPtR is a reference to a StripPoint within one strip element. It
// carries the two freshly minted duplicate point ids used as left/right
// sides when the strip is woven through the polygon (spec section 3,
// "desc[0]" / "desc[1]"), plus mutable cutter bookkeeping.
type StripPtR struct {
	Ind  int // key into PStrips.Points (== StripPoint.Ind)
	Desc [2]int
	Side StripSide
	Ref  int // polygon vertex currently adjacent to this endpoint
}

// Strip is a non-empty ordered sequence of StripPtR forming a simple chain:
// consecutive references are connected by one contact line; only endpoints
// may be shared between strips.
type Strip struct {
	ID   int
	Pts  []StripPtR
	Hole bool // both endpoints CaptNone and HasArea() false
}

// Start returns the strip's first element.
func (s *Strip) Start() *StripPtR { return &s.Pts[0] }

// End returns the strip's last element.
func (s *Strip) End() *StripPtR { return &s.Pts[len(s.Pts)-1] }

// Reverse reverses the element order in place, swapping Desc sides so the
// left/right meaning of each element is preserved from the new traversal
// direction.
func (s *Strip) Reverse() {
	pts := s.Pts
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	for i := range pts {
		pts[i].Desc[0], pts[i].Desc[1] = pts[i].Desc[1], pts[i].Desc[0]
	}
}

// HasArea reports whether the strip traces out a non-degenerate loop: an
// odd-length strip is degenerate (no area) iff its index sequence is a
// palindrome (a doubled chain folded back on itself), per spec section 4.2.
func (s *Strip) HasArea() bool {
	n := len(s.Pts)
	if n%2 == 0 {
		return true
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		if s.Pts[i].Ind != s.Pts[j].Ind {
			return true
		}
	}
	return false
}

// PStrips is the per-polygon bundle produced by the strip builder: the
// polygon ring, its outward normal, an in-plane basis, the StripPoint map,
// and the polygon's strips.
type PStrips struct {
	PolyID int
	Ring   []int   // original polygon vertex indices, in order
	Coords []Point // Ring coordinates
	Normal Point
	BasisU Point // in-plane basis vector 1
	BasisV Point // in-plane basis vector 2

	Points map[int]*StripPoint // contact-curve index -> localised StripPoint
	Strips []*Strip
}

// Project2D projects p into the polygon's planar basis, centered at Ring[0].
func (ps *PStrips) Project2D(p Point) (float64, float64) {
	rel := p.Sub(ps.Coords[0])
	return rel.Dot(ps.BasisU), rel.Dot(ps.BasisV)
}

// EdgeVerts returns the polygon-local (u, v) vertex indices for edge k.
func (ps *PStrips) EdgeVerts(k int) (int, int) {
	n := len(ps.Ring)
	return ps.Ring[k], ps.Ring[(k+1)%n]
}

// AbsoluteT returns a monotonically increasing position counter along the
// polygon boundary: edge index k plus fractional parameter t.
func (ps *PStrips) AbsoluteT(edgeStart int, t float64) float64 {
	n := len(ps.Ring)
	for k := 0; k < n; k++ {
		if ps.Ring[k] == edgeStart {
			return float64(k) + t
		}
	}
	return t
}

// buildBasis derives an orthonormal in-plane basis (u, v) from the ring's
// first edge and normal.
func buildBasis(ring []Point, normal Point) (Point, Point) {
	if len(ring) < 2 {
		return Point{X: 1}, Point{Y: 1}
	}
	u := ring[1].Sub(ring[0])
	u = u.Sub(normal.Scale(u.Dot(normal))).Normalize()
	v := normal.Cross(u).Normalize()
	return u, v
}
