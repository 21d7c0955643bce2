package boolean

// CleanStrips implements spec section 4.2: degenerate strips (both
// endpoints CaptNone, folded back on themselves with no enclosed area) are
// marked Hole and dropped from their polygon's strip list, since they
// contribute nothing to the cut. If nothing survives across every bundle of
// either side, the whole operation is degenerate and fails fast.
func CleanStrips(sideA, sideB map[int]*PStrips) error {
	survivors := 0

	clean := func(bundles map[int]*PStrips) {
		for _, ps := range bundles {
			kept := ps.Strips[:0]
			for _, strip := range ps.Strips {
				start, end := ps.Points[strip.Start().Ind], ps.Points[strip.End().Ind]
				if start.Capt == CaptNone && end.Capt == CaptNone && !strip.HasArea() {
					strip.Hole = true
					continue
				}
				kept = append(kept, strip)
				survivors++
			}
			ps.Strips = kept
		}
	}

	clean(sideA)
	clean(sideB)

	if survivors == 0 {
		return errNoContact
	}
	return nil
}
