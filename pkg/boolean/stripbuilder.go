package boolean

import "sort"

// BuildAllStrips runs the strip builder (spec section 4.1) over every
// contacted polygon of the given mesh side, returning one PStrips bundle
// per contacted polygon index.
func BuildAllStrips(mesh *Mesh, side Side, adapter *ContactAdapter) (map[int]*PStrips, error) {
	bundles := make(map[int]*PStrips)
	polys := adapter.ContactedPolys(side)
	sort.Ints(polys)

	for _, polyIdx := range polys {
		ps, err := localizePoly(mesh, side, polyIdx, adapter)
		if err != nil {
			return nil, err
		}
		bundles[polyIdx] = ps
	}

	resolveSourceFallback(bundles)

	for _, ps := range bundles {
		if err := assembleStrips(ps, adapter, side); err != nil {
			return nil, err
		}
		MergeHoles(mesh, ps)
		if err := guardSelfIntersection(ps); err != nil {
			return nil, err
		}
	}
	return bundles, nil
}

// localizePoly constructs and localises the StripPoints of one contacted
// polygon, without the cross-polygon source-vertex fallback.
func localizePoly(mesh *Mesh, side Side, polyIdx int, adapter *ContactAdapter) (*PStrips, error) {
	poly := mesh.Polys[polyIdx]
	ring := append([]int(nil), poly.Verts...)
	coords := mesh.Ring(polyIdx)
	normal := NewellNormal(coords)
	u, v := buildBasis(coords, normal)

	ps := &PStrips{
		PolyID: polyIdx,
		Ring:   ring,
		Coords: coords,
		Normal: normal,
		BasisU: u,
		BasisV: v,
		Points: make(map[int]*StripPoint),
	}

	lineIdxs := adapter.LinesForPoly(side, polyIdx)
	srcTag := make(map[int]int) // contact point index -> source vertex index or NoSource

	occurrences := make(map[int]int) // contact point index -> number of lines touching it
	for _, li := range lineIdxs {
		l := adapter.Curve.Lines[li]
		p0, p1 := l.P0, l.P1
		s0, s1 := l.SrcA0, l.SrcA1
		if side == SideB {
			s0, s1 = l.SrcB0, l.SrcB1
		}
		occurrences[p0]++
		occurrences[p1]++
		if s0 != NoSource {
			srcTag[p0] = s0
		}
		if s1 != NoSource {
			srcTag[p1] = s1
		}
	}

	for ind := range occurrences {
		sp, err := localizeOne(mesh, ps, ind, adapter.Curve.Points[ind], srcTag[ind])
		if err != nil {
			return nil, err
		}
		if sp.Capt == CaptNone && occurrences[ind] >= 3 {
			sp.Capt = CaptBranched
		}
		ps.Points[ind] = sp
	}

	if err := checkDistinctCaptures(ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// localizeOne localises a single contact-curve point against polygon ps,
// per spec section 4.1's edge-matching rule.
func localizeOne(mesh *Mesh, ps *PStrips, ind int, pt Point, srcVert int) (*StripPoint, error) {
	n := len(ps.Ring)
	best := -1
	bestT := 0.0
	bestD := 1e18
	bestIsA, bestIsB := false, false

	for k := 0; k < n; k++ {
		a, _ := ps.EdgeVerts(k)
		if srcVert != NoSource && a != srcVert {
			continue
		}
		av, bv := ps.Coords[k], ps.Coords[(k+1)%n]
		edge := bv.Sub(av)
		edgeLen := edge.Norm()
		if edgeLen < 1e-15 {
			continue
		}
		rel := pt.Sub(av)
		d := rel.Cross(edge).Norm() / edgeLen
		t := rel.Dot(edge) / (edgeLen * edgeLen)

		if d < Tolerance && t > -Tolerance && t < 1+Tolerance {
			tc := clamp(t, 0, 1)
			if d < bestD {
				bestD = d
				best = k
				bestT = tc
				bestIsA = SamePoint(pt, av)
				bestIsB = SamePoint(pt, bv)
			}
		}
	}

	sp := &StripPoint{Ind: ind, Pt: pt, PolyID: ps.PolyID}
	if best == -1 {
		sp.Capt = CaptNone
		sp.CutPt = pt
		sp.CaptPt = pt
		sp.Catched = srcVert == NoSource
		return sp, nil
	}

	a, b := ps.EdgeVerts(best)
	sp.Edge = [2]int{a, b}
	sp.HasEdge = true
	sp.T = bestT
	sp.Catched = true

	switch {
	case bestIsA:
		sp.Capt = CaptA
	case bestIsB:
		// Rotate B to A by advancing to the next edge, per spec section 3.
		nk := (best + 1) % n
		na, nb := ps.EdgeVerts(nk)
		sp.Edge = [2]int{na, nb}
		sp.T = 0
		sp.Capt = CaptA
	default:
		sp.Capt = CaptEdge
		sp.CaptPt = ps.Coords[best].Lerp(ps.Coords[(best+1)%n], bestT)
	}
	if sp.Capt == CaptA {
		sp.CaptPt = mesh.Points[sp.Edge[0]]
	}
	sp.CutPt = sp.CaptPt
	return sp, nil
}

// checkDistinctCaptures enforces invariant 1 of spec section 3: within one
// polygon, no two boundary-captured StripPoints may share their snapped
// cutPt coordinate.
func checkDistinctCaptures(ps *PStrips) error {
	seen := make([]Point, 0, len(ps.Points))
	for _, sp := range ps.Points {
		if !sp.Capt.IsBoundary() {
			continue
		}
		for _, q := range seen {
			if SamePoint(q, sp.CutPt) {
				return errCaptureCollision(ps.PolyID)
			}
		}
		seen = append(seen, sp.CutPt)
	}
	return nil
}

// resolveSourceFallback implements spec section 4.1's cross-polygon
// fallback: a StripPoint that declared a source vertex but failed to match
// locally (Capt == CaptNone, Catched == false) is searched across sibling
// polygons' bundles that share the same contact-curve point index; if one
// of them captured it as CaptA, the capture is copied in and the host edge
// replaced by the matching edge in the local polygon, if one exists.
func resolveSourceFallback(bundles map[int]*PStrips) {
	byInd := make(map[int][]*StripPoint)
	for _, ps := range bundles {
		for ind, sp := range ps.Points {
			byInd[ind] = append(byInd[ind], sp)
		}
	}

	for ind, sps := range byInd {
		var donor *StripPoint
		for _, sp := range sps {
			if sp.Capt == CaptA {
				donor = sp
				break
			}
		}
		if donor == nil {
			continue
		}
		for _, sp := range sps {
			if sp == donor || sp.Catched {
				continue
			}
			if sp.Capt != CaptNone {
				continue
			}
			ps := bundles[sp.PolyID]
			if k := ps.edgeStartingAt(donor.Edge[0]); k >= 0 {
				a, b := ps.EdgeVerts(k)
				sp.Edge = [2]int{a, b}
				sp.HasEdge = true
				sp.T = 0
				sp.Capt = CaptA
				sp.CaptPt = donor.CaptPt
				sp.CutPt = donor.CaptPt
				sp.Catched = true
			}
		}
		_ = ind
	}
}

func (ps *PStrips) edgeStartingAt(v int) int {
	for k, rv := range ps.Ring {
		if rv == v {
			return k
		}
	}
	return -1
}

// assembleStrips implements spec section 4.1's strip assembly and
// completion.
func assembleStrips(ps *PStrips, adapter *ContactAdapter, side Side) error {
	lineIdxs := adapter.LinesForPoly(side, ps.PolyID)
	type pair struct{ a, b int }
	remaining := make(map[int]pair, len(lineIdxs))
	for _, li := range lineIdxs {
		l := adapter.Curve.Lines[li]
		remaining[li] = pair{l.P0, l.P1}
	}

	nextID := 0
	for len(remaining) > 0 {
		var firstLi int
		for li := range remaining {
			firstLi = li
			break
		}
		p := remaining[firstLi]
		delete(remaining, firstLi)

		refs := []StripPtR{{Ind: p.a}, {Ind: p.b}}

		extend := func(atEnd bool) {
			for {
				var cur int
				if atEnd {
					cur = refs[len(refs)-1].Ind
				} else {
					cur = refs[0].Ind
				}
				sp := ps.Points[cur]
				if sp.Capt != CaptNone {
					return
				}
				var foundLi int = -1
				var otherEnd int
				for li, pr := range remaining {
					if pr.a == cur {
						foundLi, otherEnd = li, pr.b
						break
					}
					if pr.b == cur {
						foundLi, otherEnd = li, pr.a
						break
					}
				}
				if foundLi == -1 {
					return
				}
				delete(remaining, foundLi)
				if atEnd {
					refs = append(refs, StripPtR{Ind: otherEnd})
				} else {
					refs = append([]StripPtR{{Ind: otherEnd}}, refs...)
				}
			}
		}
		extend(true)
		extend(false)

		strip := &Strip{ID: nextID, Pts: refs}
		nextID++

		start, end := ps.Points[strip.Start().Ind], ps.Points[strip.End().Ind]
		if start.Capt == CaptNone && end.Capt == CaptNone && strip.Start().Ind != strip.End().Ind {
			// Not a closed loop: double it (minus the junction element) so
			// cutting sees a closed trace.
			doubled := make([]StripPtR, 0, len(strip.Pts)*2-1)
			doubled = append(doubled, strip.Pts...)
			for i := len(strip.Pts) - 2; i >= 0; i-- {
				doubled = append(doubled, strip.Pts[i])
			}
			strip.Pts = doubled
		}

		ps.Strips = append(ps.Strips, strip)
	}
	return nil
}

// guardSelfIntersection implements spec section 4.1's self-intersection
// guard: all strips are projected into the polygon's planar basis and
// checked pairwise for strict crossings between segments sharing no
// endpoint.
func guardSelfIntersection(ps *PStrips) error {
	idx := newSegmentIndex()
	for _, strip := range ps.Strips {
		for i := 0; i+1 < len(strip.Pts); i++ {
			a, b := strip.Pts[i].Ind, strip.Pts[i+1].Ind
			pa, pb := ps.Points[a].Pt, ps.Points[b].Pt
			ax, ay := ps.Project2D(pa)
			bx, by := ps.Project2D(pb)
			seg := &planarSegment{stripID: strip.ID, a0: a, a1: b, ax: ax, ay: ay, bx: bx, by: by}
			for _, cand := range idx.CandidatesNear(seg) {
				if cand.a0 == seg.a0 || cand.a0 == seg.a1 || cand.a1 == seg.a0 || cand.a1 == seg.a1 {
					continue
				}
				if segmentsCross(seg.ax, seg.ay, seg.bx, seg.by, cand.ax, cand.ay, cand.bx, cand.by) {
					return errStripsInvalid("self-intersecting strip arrangement")
				}
			}
			idx.Insert(seg)
		}
	}
	return nil
}
