package boolean

// MergePoints implements spec section 4.8, the inverse complement of the
// disjoiner: DisjoinPolys split every Capt::A vertex shared by more than
// one cell into one duplicate per cell, but some of those duplicates never
// needed separating in the first place — two cells that happen to touch at
// a StripPoint coordinate without the contact curve actually running
// between them there. This collapses exactly those: for each strip
// endpoint, every mesh point within Tolerance of it is a candidate; two
// candidates merge only when, at some incident polygon of each, the pair of
// ring neighbors (previous and next, compared by coordinate regardless of
// order) agrees between them, since that is what tells two duplicated
// corners they were always the same vertex. A blanket
// tolerance merge would undo the disjoiner's work entirely; this does not,
// because genuinely distinct cells meeting at a StripPoint have different
// far neighbors.
func MergePoints(mesh *Mesh, bundles map[int]*PStrips) {
	n := len(mesh.Points)
	if n == 0 {
		return
	}
	mesh.RebuildAdjacency()
	locator := newPointLocator(mesh.Points)
	dsu := newUnionFind(n)

	for _, ep := range stripEndpoints(bundles) {
		cands := locator.Within(ep)
		if len(cands) < 2 {
			continue
		}
		unionMatchingArms(mesh, dsu, cands)
	}

	compactByUnionFind(mesh, dsu)
}

// stripEndpoints returns the coordinates of every strip's Start and End
// StripPoint across all bundles, deduplicated by coordinate: exactly the
// points invariant 5's disjoining could have duplicated.
func stripEndpoints(bundles map[int]*PStrips) []Point {
	seen := make(map[[3]int64]bool)
	var out []Point
	add := func(p Point) {
		k := roundKey(p)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, p)
	}
	for _, ps := range bundles {
		for _, strip := range ps.Strips {
			for _, ptr := range strip.Pts {
				if ptr.Side == SideNone {
					continue
				}
				add(ps.Points[ptr.Ind].Pt)
			}
		}
	}
	return out
}

// armSig identifies one (polygon, point) pair's pair of ring neighbors, by
// coordinate and independent of traversal direction, so two occurrences of
// a duplicated vertex compare equal iff their surrounding geometry matches.
type armSig struct{ a, b [3]int64 }

func makeArmSig(prev, next Point) armSig {
	pa, pb := roundKey(prev), roundKey(next)
	if lessKey(pb, pa) {
		pa, pb = pb, pa
	}
	return armSig{pa, pb}
}

// unionMatchingArms unions every pair of candidate vertices that share an
// (polygon, point) neighbor signature: same pair of ring-neighbor
// coordinates at some incident polygon, regardless of which polygon or
// which candidate vertex it was found at.
func unionMatchingArms(mesh *Mesh, dsu *unionFind, cands []int) {
	type arm struct {
		v   int
		sig armSig
	}
	var arms []arm
	for _, v := range cands {
		for _, pi := range mesh.PolysAt(v) {
			verts := mesh.Polys[pi].Verts
			m := len(verts)
			for k, vv := range verts {
				if vv != v {
					continue
				}
				prev := mesh.Points[verts[(k-1+m)%m]]
				next := mesh.Points[verts[(k+1)%m]]
				arms = append(arms, arm{v: v, sig: makeArmSig(prev, next)})
			}
		}
	}
	for i := 0; i < len(arms); i++ {
		for j := i + 1; j < len(arms); j++ {
			if arms[i].v != arms[j].v && arms[i].sig == arms[j].sig {
				dsu.union(arms[i].v, arms[j].v)
			}
		}
	}
}

// compactByUnionFind rewrites mesh's point array to one point per
// union-find root and remaps every polygon ring accordingly.
func compactByUnionFind(mesh *Mesh, dsu *unionFind) {
	n := len(mesh.Points)
	repOf := make([]int, n)
	newIndex := make(map[int]int)
	newPoints := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		root := dsu.find(i)
		ni, ok := newIndex[root]
		if !ok {
			ni = len(newPoints)
			newPoints = append(newPoints, mesh.Points[root])
			newIndex[root] = ni
		}
		repOf[i] = ni
	}

	for pi := range mesh.Polys {
		verts := mesh.Polys[pi].Verts
		for k, v := range verts {
			verts[k] = repOf[v]
		}
	}
	mesh.Points = newPoints
	mesh.adjacency = nil
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
