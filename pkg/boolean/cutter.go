package boolean

import (
	"fmt"
	"math"
	"sort"
)

// CutCells implements spec section 4.3 (CutCells): every contacted polygon
// is subdivided along its strips into a set of sub-polygons.
//
// The subdivision is built as a planar straight-line graph (the polygon's
// own boundary, subdivided at every edge-interior capture, plus every
// strip as a chain of chord edges) and its faces are enumerated by the
// standard half-edge "turn most clockwise at each vertex" walk. This
// generalizes the branch-point sand-glass case from spec section 4.3
// uniformly: a StripPoint shared by three or more chords is simply a graph
// node of degree > 2, and the walk produces one face per angular wedge
// around it without any case split on its degree.
//
// Every node touched by more than one resulting face is duplicated once
// per extra use (the point restoration and merge stages, spec sections 4.4
// and 4.8, are what re-unify the ones that should not have stayed split).
func CutCells(mesh *Mesh, bundles map[int]*PStrips) error {
	for polyIdx, ps := range bundles {
		if len(ps.Strips) == 0 {
			continue
		}
		faces, err := cutPolygon(mesh, ps)
		if err != nil {
			return err
		}
		if len(faces) == 0 {
			continue
		}
		orig := mesh.Polys[polyIdx]
		mesh.DeletePolygon(polyIdx)
		for _, face := range faces {
			mesh.AddPolygon(face, orig.OrigCellId)
		}
	}
	return nil
}

type graphNode struct {
	key    string
	x, y   float64
	pos3D  Point
	isRing bool
	ringID int // mesh vertex id, valid iff isRing
}

type cutCtx struct {
	mesh     *Mesh
	ps       *PStrips
	nodes    map[string]*graphNode
	adj      map[string][]string
	nodeUse  map[string]int
	baseVert map[string]int
	uses     map[string][]int // every mesh vertex id minted for a node key, in use order
}

func ringNodeKey(vertID int) string { return fmt.Sprintf("R%d", vertID) }
func cutNodeKey(ind int) string     { return fmt.Sprintf("S%d", ind) }

// cutPolygon subdivides one contacted polygon and returns its replacement
// faces as mesh-vertex-index rings.
func cutPolygon(mesh *Mesh, ps *PStrips) ([][]int, error) {
	ctx := &cutCtx{
		mesh:     mesh,
		ps:       ps,
		nodes:    make(map[string]*graphNode),
		adj:      make(map[string][]string),
		nodeUse:  make(map[string]int),
		baseVert: make(map[string]int),
		uses:     make(map[string][]int),
	}

	for k, v := range ps.Ring {
		key := ringNodeKey(v)
		if _, ok := ctx.nodes[key]; ok {
			continue
		}
		x, y := ps.Project2D(mesh.Points[v])
		ctx.nodes[key] = &graphNode{key: key, x: x, y: y, pos3D: mesh.Points[v], isRing: true, ringID: v}
		ctx.baseVert[key] = v
		_ = k
	}

	for ind, sp := range ps.Points {
		if sp.Capt == CaptA {
			continue // coincides with a ring node, already added above
		}
		key := cutNodeKey(ind)
		pos := sp.Pt
		if sp.Capt.IsBoundary() {
			pos = sp.CaptPt
		}
		x, y := ps.Project2D(pos)
		ctx.nodes[key] = &graphNode{key: key, x: x, y: y, pos3D: pos, isRing: false}
	}

	ringSeq, err := buildSubdividedRing(ps)
	if err != nil {
		return nil, err
	}
	n := len(ringSeq)
	for k := 0; k < n; k++ {
		ctx.addEdge(ringSeq[k], ringSeq[(k+1)%n])
	}

	for _, strip := range ps.Strips {
		for i := 0; i+1 < len(strip.Pts); i++ {
			a := keyForInd(ps, strip.Pts[i].Ind)
			b := keyForInd(ps, strip.Pts[i+1].Ind)
			if a == b {
				continue
			}
			ctx.addEdge(a, b)
		}
	}

	for key := range ctx.adj {
		from := ctx.nodes[key]
		sort.Slice(ctx.adj[key], func(i, j int) bool {
			ai := angleAt(from, ctx.nodes[ctx.adj[key][i]])
			aj := angleAt(from, ctx.nodes[ctx.adj[key][j]])
			return ai < aj
		})
	}

	ringArea := shoelaceArea(ps)

	faces, err := traceFaces(ctx)
	if err != nil {
		return nil, err
	}

	var out [][]int
	for _, face := range faces {
		if len(face) < 3 {
			continue
		}
		if signOf(faceArea(ctx, face)) != signOf(ringArea) {
			continue
		}
		verts := make([]int, 0, len(face))
		for _, key := range face {
			verts = append(verts, ctx.vertexFor(key))
		}
		out = append(out, verts)
	}
	assignStripRefs(ps, ctx)
	return out, nil
}

func keyForInd(ps *PStrips, ind int) string {
	sp := ps.Points[ind]
	if sp.Capt == CaptA {
		return ringNodeKey(sp.Edge[0])
	}
	return cutNodeKey(ind)
}

// buildSubdividedRing returns the polygon boundary's node-key sequence
// after inserting every edge-interior capture, sorted by its parameter
// along that edge.
func buildSubdividedRing(ps *PStrips) ([]string, error) {
	n := len(ps.Ring)
	edgeCuts := make(map[int][]*StripPoint, n)
	for _, sp := range ps.Points {
		if sp.Capt != CaptEdge {
			continue
		}
		k := ps.edgeStartingAt(sp.Edge[0])
		if k < 0 {
			return nil, errCutFailed("edge-interior capture references an unknown edge")
		}
		edgeCuts[k] = append(edgeCuts[k], sp)
	}
	for k := range edgeCuts {
		a, _ := ps.EdgeVerts(k)
		sort.Slice(edgeCuts[k], func(i, j int) bool {
			return ps.AbsoluteT(a, edgeCuts[k][i].T) < ps.AbsoluteT(a, edgeCuts[k][j].T)
		})
	}

	seq := make([]string, 0, n)
	for k := 0; k < n; k++ {
		a, _ := ps.EdgeVerts(k)
		seq = append(seq, ringNodeKey(a))
		for _, sp := range edgeCuts[k] {
			seq = append(seq, cutNodeKey(sp.Ind))
		}
	}
	return seq, nil
}

func (c *cutCtx) addEdge(a, b string) {
	if !containsStr(c.adj[a], b) {
		c.adj[a] = append(c.adj[a], b)
	}
	if !containsStr(c.adj[b], a) {
		c.adj[b] = append(c.adj[b], a)
	}
}

func containsStr(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

func angleAt(from, to *graphNode) float64 {
	return math.Atan2(to.y-from.y, to.x-from.x)
}

// traceFaces walks every directed edge of the planar graph exactly once,
// turning to the most-clockwise neighbor at each node, and returns the
// resulting closed node-key cycles (one per face, including the single
// unbounded exterior face).
func traceFaces(c *cutCtx) ([][]string, error) {
	type dedge struct{ from, to string }
	visited := make(map[dedge]bool)

	var faces [][]string
	for u, neigh := range c.adj {
		for _, v := range neigh {
			start := dedge{u, v}
			if visited[start] {
				continue
			}
			face := []string{}
			from, to := u, v
			for steps := 0; ; steps++ {
				if steps > 4*len(c.nodes)+16 {
					return nil, errCutFailed("face trace did not close")
				}
				e := dedge{from, to}
				if visited[e] {
					if from == u && to == v {
						break
					}
					return nil, errCutFailed("face trace revisited an edge")
				}
				visited[e] = true
				face = append(face, from)

				neighbors := c.adj[to]
				idx := indexOfStr(neighbors, from)
				if idx < 0 {
					return nil, errCutFailed("inconsistent adjacency while tracing a face")
				}
				nextIdx := (idx - 1 + len(neighbors)) % len(neighbors)
				nf, nt := to, neighbors[nextIdx]
				from, to = nf, nt
				if from == u && to == v {
					visited[dedge{from, to}] = true
					break
				}
			}
			faces = append(faces, face)
		}
	}
	return faces, nil
}

func indexOfStr(xs []string, x string) int {
	for i, s := range xs {
		if s == x {
			return i
		}
	}
	return -1
}

func shoelaceArea(ps *PStrips) float64 {
	n := len(ps.Ring)
	area := 0.0
	for k := 0; k < n; k++ {
		x0, y0 := ps.Project2D(ps.Coords[k])
		x1, y1 := ps.Project2D(ps.Coords[(k+1)%n])
		area += x0*y1 - x1*y0
	}
	return area / 2
}

func faceArea(c *cutCtx, face []string) float64 {
	n := len(face)
	area := 0.0
	for i := 0; i < n; i++ {
		a := c.nodes[face[i]]
		b := c.nodes[face[(i+1)%n]]
		area += a.x*b.y - b.x*a.y
	}
	return area / 2
}

func signOf(v float64) int {
	switch {
	case v > 1e-12:
		return 1
	case v < -1e-12:
		return -1
	default:
		return 0
	}
}

// vertexFor returns the mesh vertex id to use for one face's occurrence of
// a graph node: the first use of a ring node reuses the original vertex,
// the first use of a cut node mints a fresh point, and every later use
// (meaning the node sits at a branch shared by multiple resulting faces)
// duplicates the base vertex.
func (c *cutCtx) vertexFor(key string) int {
	n := c.nodeUse[key]
	c.nodeUse[key] = n + 1
	var v int
	if n == 0 {
		if base, ok := c.baseVert[key]; ok {
			v = base
		} else {
			v = c.mesh.AddPoint(c.nodes[key].pos3D)
			c.baseVert[key] = v
		}
	} else {
		v = c.mesh.DuplicatePoint(c.baseVert[key])
	}
	c.uses[key] = append(c.uses[key], v)
	return v
}

// assignStripRefs wires spec section 3's desc[0]/desc[1] and the cutter
// bookkeeping fields (Side, Ref) into every strip element: desc holds the
// (up to two) mesh vertex ids the cutter actually minted for that
// StripPoint's node key, Side marks the strip's two endpoints, and Ref
// records the vertex desc[0] resolved to, which the disjoiner keys its own
// point lookups on.
func assignStripRefs(ps *PStrips, ctx *cutCtx) {
	for _, strip := range ps.Strips {
		for i := range strip.Pts {
			ptr := &strip.Pts[i]
			key := keyForInd(ps, ptr.Ind)
			used := ctx.uses[key]
			switch len(used) {
			case 0:
				continue
			case 1:
				ptr.Desc = [2]int{used[0], used[0]}
			default:
				ptr.Desc = [2]int{used[0], used[1]}
			}
			ptr.Ref = ptr.Desc[0]
			switch {
			case i == 0:
				ptr.Side = SideStart
			case i == len(strip.Pts)-1:
				ptr.Side = SideEnd
			default:
				ptr.Side = SideNone
			}
		}
	}
}
