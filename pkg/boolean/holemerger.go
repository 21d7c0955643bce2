package boolean

// MergeHoles implements spec section 4.1's hole-merging step: a strip whose
// two ends coincide at the same StripPoint and that still encloses area is
// a closed loop strictly interior to the polygon — a hole, disconnected
// from the outer ring in the strip graph. This finds the nearest ring
// vertex to each hole and splices in a zero-area bridge strip connecting
// them, so the cutter's planar-graph face walk (spec section 4.3) sees one
// connected component instead of two, and threads the bridge into both the
// hole's own face and the ring's outer face automatically.
func MergeHoles(mesh *Mesh, ps *PStrips) {
	var holeStrips []*Strip
	for _, s := range ps.Strips {
		if len(s.Pts) > 1 && s.Start().Ind == s.End().Ind && s.HasArea() {
			holeStrips = append(holeStrips, s)
		}
	}

	for _, hole := range holeStrips {
		bestDist := -1.0
		bestHoleInd, bestRingK := -1, -1
		for _, ptr := range hole.Pts {
			hp := ps.Points[ptr.Ind].Pt
			for k, rv := range ps.Ring {
				d := DistSq(hp, mesh.Points[rv])
				if bestDist < 0 || d < bestDist {
					bestDist = d
					bestHoleInd = ptr.Ind
					bestRingK = k
				}
			}
		}
		if bestRingK < 0 {
			continue
		}

		rv := ps.Ring[bestRingK]
		nk := (bestRingK + 1) % len(ps.Ring)
		anchorInd := nextSyntheticInd(ps)
		ps.Points[anchorInd] = &StripPoint{
			Ind:     anchorInd,
			Pt:      mesh.Points[rv],
			CutPt:   mesh.Points[rv],
			CaptPt:  mesh.Points[rv],
			Edge:    [2]int{rv, ps.Ring[nk]},
			HasEdge: true,
			Capt:    CaptA,
			PolyID:  ps.PolyID,
			Catched: true,
		}
		bridge := &Strip{
			ID:  len(ps.Strips),
			Pts: []StripPtR{{Ind: anchorInd}, {Ind: bestHoleInd}},
		}
		ps.Strips = append(ps.Strips, bridge)
	}
}

// nextSyntheticInd allocates a StripPoint key guaranteed absent from ps,
// distinct from every real (non-negative) contact-curve index.
func nextSyntheticInd(ps *PStrips) int {
	seq := -1
	for {
		if _, exists := ps.Points[seq]; !exists {
			return seq
		}
		seq--
	}
}
