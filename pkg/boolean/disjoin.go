package boolean

// DisjoinPolys implements spec section 4.7: cutting leaves every Capt::A
// StripPoint realized as the mesh vertex it coincided with, shared by every
// cell that used to meet there. Invariant 5 requires cells to be disjoint
// at a vertex they only share because the contact curve passed through it,
// so this duplicates that vertex once per extra cell: the first cell
// incident on it keeps the original point, every other cell is re-pointed
// to a fresh duplicate at the same coordinate.
func DisjoinPolys(mesh *Mesh, bundles map[int]*PStrips) {
	mesh.RebuildAdjacency()
	for v := range captAVerts(bundles) {
		polys := append([]int(nil), mesh.PolysAt(v)...)
		if len(polys) <= 1 {
			continue
		}
		for _, pi := range polys[1:] {
			dup := mesh.DuplicatePoint(v)
			mesh.ReplacePoint(pi, v, dup)
		}
	}
	mesh.RebuildAdjacency()
}

// captAVerts collects the set of mesh vertex indices that realize some
// StripPoint captured as CaptA (coincident with a polygon's own edge-start
// vertex) in any of bundles, across every contacted polygon. The realized
// vertex is read from the strip element's own Ref, the vertex id the
// cutter actually resolved that occurrence to (spec section 3's
// desc[0]/desc[1]), falling back to the pre-cut edge-start vertex for a
// StripPoint that never appeared inside a strip's element list.
func captAVerts(bundles map[int]*PStrips) map[int]bool {
	out := make(map[int]bool)
	for _, ps := range bundles {
		refs := make(map[int]int, len(ps.Points))
		for _, strip := range ps.Strips {
			for _, ptr := range strip.Pts {
				if ptr.Ref != 0 || ptr.Desc[0] != 0 {
					refs[ptr.Ind] = ptr.Ref
				}
			}
		}
		for ind, sp := range ps.Points {
			if sp.Capt != CaptA {
				continue
			}
			if v, ok := refs[ind]; ok {
				out[v] = true
				continue
			}
			out[sp.Edge[0]] = true
		}
	}
	return out
}
