package boolean

// NoSource marks a contact-line endpoint that does not coincide with an
// original vertex of the respective source polygon.
const NoSource = -1

// Side distinguishes the two input meshes a contact line straddles.
type Side int

const (
	SideA Side = iota
	SideB
)

// ContactLine is an undirected segment between two contact-curve point
// indices, tagged with the polygon of each mesh it traverses and, for each
// endpoint, the source-mesh vertex index it coincides with (or NoSource).
type ContactLine struct {
	P0, P1 int // indices into ContactCurve.Points

	PolyA, PolyB int // polygon index in mesh A / mesh B this line traverses

	// SrcA0/SrcA1 give, for endpoints P0 and P1 respectively, the vertex
	// index of PolyA that endpoint coincides with, or NoSource.
	SrcA0, SrcA1 int
	// SrcB0/SrcB1 are the same for PolyB.
	SrcB0, SrcB1 int

	deleted bool
}

// ContactCurve is the pre-computed one-dimensional intersection of the two
// input surfaces: a sequence of line segments tagged with the polygons they
// traverse in each mesh. Its computation is out of scope for this package —
// callers must supply one that satisfies the collaborator contract of
// spec section 6: no two capture points of one polygon collapse to the
// same coordinate, and every contact line names real polygons of A and B.
type ContactCurve struct {
	Points []Point
	Lines  []ContactLine
}

// ContactAdapter holds a ContactCurve plus the per-polygon line-index index
// the strip builder needs (spec section 2, stage 2).
type ContactAdapter struct {
	Curve *ContactCurve

	byPolyA map[int][]int // polygon index in A -> contact line indices
	byPolyB map[int][]int // polygon index in B -> contact line indices
}

// NewContactAdapter builds the per-polygon indices over curve.
func NewContactAdapter(curve *ContactCurve) *ContactAdapter {
	a := &ContactAdapter{
		Curve:   curve,
		byPolyA: make(map[int][]int),
		byPolyB: make(map[int][]int),
	}
	for i, l := range curve.Lines {
		a.byPolyA[l.PolyA] = append(a.byPolyA[l.PolyA], i)
		a.byPolyB[l.PolyB] = append(a.byPolyB[l.PolyB], i)
	}
	return a
}

// LinesForPoly returns the (undeleted) contact-line indices that traverse
// polygon polyIdx of the given side.
func (a *ContactAdapter) LinesForPoly(side Side, polyIdx int) []int {
	var idxs []int
	if side == SideA {
		idxs = a.byPolyA[polyIdx]
	} else {
		idxs = a.byPolyB[polyIdx]
	}
	out := make([]int, 0, len(idxs))
	for _, i := range idxs {
		if !a.Curve.Lines[i].deleted {
			out = append(out, i)
		}
	}
	return out
}

// ContactedPolys returns the set of polygon indices of the given side that
// at least one surviving contact line traverses.
func (a *ContactAdapter) ContactedPolys(side Side) []int {
	m := a.byPolyA
	if side == SideB {
		m = a.byPolyB
	}
	out := make([]int, 0, len(m))
	for poly, idxs := range m {
		for _, i := range idxs {
			if !a.Curve.Lines[i].deleted {
				out = append(out, poly)
				break
			}
		}
	}
	return out
}

// pointDegree returns, for every contact-curve point index, the number of
// surviving contact lines incident on it.
func (a *ContactAdapter) pointDegree() map[int]int {
	deg := make(map[int]int)
	for _, l := range a.Curve.Lines {
		if l.deleted {
			continue
		}
		deg[l.P0]++
		deg[l.P1]++
	}
	return deg
}

// CheckDangling returns an error if any surviving contact-curve endpoint
// has degree < 2, per spec's InputTopology error kind.
func (a *ContactAdapter) CheckDangling() error {
	for pt, d := range a.pointDegree() {
		if d < 2 {
			return errDanglingEnd(pointDetail(pt, d))
		}
	}
	return nil
}

func pointDetail(pt, degree int) string {
	if degree == 1 {
		return "point has degree 1"
	}
	return "point has degree 0"
}
