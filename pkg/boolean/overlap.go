package boolean

// ResolveOverlaps implements spec section 4.5: the two meshes were cut
// independently along the same contact curve, so a contact-curve vertex
// that became a genuine ring corner in one mesh can still sit strictly
// inside an edge of the other — a T-junction. This finds every such case
// and splits the offending edge, duplicating the shared vertex so both
// meshes carry the same vertex at that coordinate before region
// combination. Only coordinates that are themselves contact-curve points
// are ever considered: an incidental collinear mesh point that happens to
// lie on an edge but never appeared on the contact curve is not a
// T-junction and must not be split.
func ResolveOverlaps(meshA, meshB *Mesh, adapter *ContactAdapter) {
	pts := adapter.Curve.Points
	resolveOverlapsOneWay(meshB, pts)
	resolveOverlapsOneWay(meshA, pts)
}

// resolveOverlapsOneWay splits edges of dst wherever a contact-curve point
// lands strictly in their interior, forming directed edges (a, b) and
// (b, c) with a != c -- the T-junction test of spec section 4.5. a == c
// would mean the edge is already degenerate (zero length folded back on
// itself); such an edge is never split, since there is no material T to
// resolve there.
func resolveOverlapsOneWay(dst *Mesh, pts []Point) {
	for _, p := range pts {
		for pi := range dst.Polys {
			if dst.Deleted(pi) {
				continue
			}
			splitEdgeAtPoint(dst, pi, p)
		}
	}
}

// splitEdgeAtPoint inserts a duplicate of p into polygon pi's ring if p
// lies strictly within Tolerance of one of its edges, without already
// coinciding with either endpoint, and the resulting directed edges
// (edgeStart, p) / (p, edgeEnd) have distinct endpoints.
func splitEdgeAtPoint(mesh *Mesh, pi int, p Point) {
	verts := mesh.Polys[pi].Verts
	n := len(verts)
	for k := 0; k < n; k++ {
		a, b := verts[k], verts[(k+1)%n]
		if a == b {
			continue // degenerate edge: a == c, never a genuine T
		}
		av, bv := mesh.Points[a], mesh.Points[b]
		if SamePoint(p, av) || SamePoint(p, bv) {
			return
		}
		edge := bv.Sub(av)
		edgeLen := edge.Norm()
		if edgeLen < 1e-15 {
			continue
		}
		rel := p.Sub(av)
		d := rel.Cross(edge).Norm() / edgeLen
		t := rel.Dot(edge) / (edgeLen * edgeLen)
		if d < Tolerance && t > Tolerance && t < 1-Tolerance {
			newV := mesh.AddPoint(p)
			mesh.InsertAfter(pi, a, newV)
			return
		}
	}
}
