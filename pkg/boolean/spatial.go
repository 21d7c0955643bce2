package boolean

import (
	"github.com/dhconnelly/rtreego"
)

// pointLocator answers "which points fall within Tolerance of this query
// point" range queries. It stands in for the k-d point locator spec
// section 4.4 and 4.8 treat as an external collaborator: an R-tree answers
// the same bounded-range queries a k-d tree would.
type pointLocator struct {
	tree *rtreego.Rtree
}

type indexedPoint struct {
	idx int
	pt  Point
}

func (ip *indexedPoint) Bounds() rtreego.Rect {
	r, _ := rtreego.NewRect(rtreego.Point{ip.pt.X, ip.pt.Y, ip.pt.Z}, []float64{1e-9, 1e-9, 1e-9})
	return r
}

// newPointLocator indexes every point of pts, keyed by its slice index.
func newPointLocator(pts []Point) *pointLocator {
	tree := rtreego.NewTree(3, 4, 32)
	for i, p := range pts {
		tree.Insert(&indexedPoint{idx: i, pt: p})
	}
	return &pointLocator{tree: tree}
}

// Within returns the indices of every indexed point within Tolerance of q.
func (l *pointLocator) Within(q Point) []int {
	half := Tolerance
	rect, err := rtreego.NewRect(
		rtreego.Point{q.X - half, q.Y - half, q.Z - half},
		[]float64{2 * half, 2 * half, 2 * half},
	)
	if err != nil {
		return nil
	}
	hits := l.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		ip := h.(*indexedPoint)
		if SamePoint(ip.pt, q) {
			out = append(out, ip.idx)
		}
	}
	return out
}

// planarSegment is a 2-D line segment, projected into a polygon's local
// basis, indexed for the strip builder's self-intersection guard (spec
// section 4.1). It substitutes an R-tree of segment bounding boxes for the
// 2-D BSP tree spec treats as an external collaborator.
type planarSegment struct {
	stripID  int
	a0, a1   int // contact-curve point indices of the segment's endpoints
	ax, ay   float64
	bx, by   float64
}

func (s *planarSegment) Bounds() rtreego.Rect {
	minX, maxX := s.ax, s.bx
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := s.ay, s.by
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	lenX := maxX - minX + 1e-9
	lenY := maxY - minY + 1e-9
	r, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	return r
}

type segmentIndex struct {
	tree *rtreego.Rtree
	segs []*planarSegment
}

func newSegmentIndex() *segmentIndex {
	return &segmentIndex{tree: rtreego.NewTree(2, 4, 32)}
}

func (si *segmentIndex) Insert(s *planarSegment) {
	si.segs = append(si.segs, s)
	si.tree.Insert(s)
}

// CandidatesNear returns the segments whose bounding box overlaps s's.
func (si *segmentIndex) CandidatesNear(s *planarSegment) []*planarSegment {
	bb := s.Bounds()
	hits := si.tree.SearchIntersect(bb)
	out := make([]*planarSegment, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*planarSegment))
	}
	return out
}

// segmentsCross reports whether 2-D segments (a0,a1)-(b0,b1) properly cross
// (strict interior intersection, sharing no endpoint).
func segmentsCross(ax0, ay0, ax1, ay1, bx0, by0, bx1, by1 float64) bool {
	d1 := cross2(bx1-bx0, by1-by0, ax0-bx0, ay0-by0)
	d2 := cross2(bx1-bx0, by1-by0, ax1-bx0, ay1-by0)
	d3 := cross2(ax1-ax0, ay1-ay0, bx0-ax0, by0-ay0)
	d4 := cross2(ax1-ax0, ay1-ay0, bx1-ax0, by1-ay0)
	const eps = 1e-12
	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}
	return false
}

func cross2(ax, ay, bx, by float64) float64 { return ax*by - ay*bx }
