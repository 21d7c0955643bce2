package boolean

import "sort"

// AddAdjacentPoints implements spec section 4.6: cutting only ever
// subdivides the polygons the contact curve actually traverses, so a
// neighboring, uncontacted polygon that shares an edge with a freshly cut
// one can be left with a run of contact-curve points strictly between its
// own two endpoints sitting on its boundary, unaccounted for in its ring.
// Left alone this is a manifold violation (a T-vertex): this pass finds
// every such run and splices it into the owning ring in order.
//
// Only contact-curve points are ever inserted, and a run only ever
// extends through points whose degree in the contact-line graph is at
// most one: a point shared by a second contact line (a branch in the
// contact curve itself) must stay its own ring vertex in every polygon
// that touches it, so a run never silently swallows one.
func AddAdjacentPoints(mesh *Mesh, adapter *ContactAdapter) {
	pts := adapter.Curve.Points
	degree := adapter.pointDegree()
	for pi := range mesh.Polys {
		if mesh.Deleted(pi) {
			continue
		}
		insertRuns(mesh, pi, pts, degree)
	}
}

func insertRuns(mesh *Mesh, pi int, pts []Point, degree map[int]int) {
	verts := mesh.Polys[pi].Verts
	n := len(verts)
	out := make([]int, 0, n)
	for k := 0; k < n; k++ {
		a, b := verts[k], verts[(k+1)%n]
		out = append(out, a)
		out = append(out, runPoints(mesh, a, b, pts, degree)...)
	}
	mesh.Polys[pi].Verts = out
	mesh.adjacency = nil
}

// runPoints returns the indices of every mesh point that both lies
// strictly between a and b on segment (a, b) and coincides with a
// contact-curve point of degree <= 1, ordered by position along (a, b).
// A higher-degree contact point is a genuine branch of the contact curve
// and is handled by the cutter itself, not by this adjacency pass.
func runPoints(mesh *Mesh, a, b int, pts []Point, degree map[int]int) []int {
	av, bv := mesh.Points[a], mesh.Points[b]
	edge := bv.Sub(av)
	edgeLen := edge.Norm()
	if edgeLen < 1e-15 {
		return nil
	}

	type hit struct {
		idx int
		t   float64
	}
	var hits []hit
	for ind, cp := range pts {
		if degree[ind] > 1 {
			continue
		}
		rel := cp.Sub(av)
		d := rel.Cross(edge).Norm() / edgeLen
		t := rel.Dot(edge) / (edgeLen * edgeLen)
		if d < Tolerance && t > Tolerance && t < 1-Tolerance {
			hits = append(hits, hit{idx: findOrAddOnSegment(mesh, cp, a, b), t: t})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.idx
	}
	return out
}

// findOrAddOnSegment returns the mesh point index already coincident with
// cp, if one exists (excluding a and b themselves), or mints one. A
// contact-curve point only ever materializes in a polygon it actually
// subdivides; elsewhere it must be added fresh to subdivide this edge too.
func findOrAddOnSegment(mesh *Mesh, cp Point, a, b int) int {
	for i, p := range mesh.Points {
		if i == a || i == b {
			continue
		}
		if SamePoint(p, cp) {
			return i
		}
	}
	return mesh.AddPoint(cp)
}
