package boolean

// RestoreOrigPoints implements spec section 4.4: cutting mints new points
// from captured and interpolated coordinates that can drift by a few
// epsilon from the lattice of either input mesh's original vertices. This
// pass snaps every mesh point that falls within Tolerance of an original
// vertex back onto that vertex's exact coordinate, so later stages compare
// coordinates that are bit-for-bit identical wherever the geometry says
// they should be, instead of merely close.
//
// orig is the snapshot of the mesh's own point list taken before cutting
// began; it is queried through the same R-tree-backed point locator
// MergePoints uses, standing in for the k-d tree spec section 4.4 treats as
// an external collaborator.
func RestoreOrigPoints(mesh *Mesh, orig []Point) {
	if len(orig) == 0 {
		return
	}
	locator := newPointLocator(orig)
	for i, p := range mesh.Points {
		hits := locator.Within(p)
		if len(hits) == 0 {
			continue
		}
		mesh.Points[i] = orig[hits[0]]
	}
}
