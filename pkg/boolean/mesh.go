package boolean

// Polygon is an ordered ring of point indices. Winding defines the outward
// normal via the Newell formula (see NewellNormal). OrigCellId is preserved
// through the pipeline so later stages and callers can attribute produced
// polygons back to input polygons.
type Polygon struct {
	Verts      []int
	OrigCellId int
	RegionID   int // assigned by CombineRegions; -1 until then
	deleted    bool
}

// Mesh is an editable indexed polygon soup: a point array, a polygon array,
// and lazily maintained point-to-polygon adjacency links. Links are
// invalidated by any mutation and rebuilt explicitly by RebuildAdjacency.
type Mesh struct {
	Points []Point
	Polys  []Polygon

	adjacency map[int][]int // point index -> polygon indices, nil until built
}

// NewMesh creates an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// AddPoint appends a point and returns its index.
func (m *Mesh) AddPoint(p Point) int {
	m.Points = append(m.Points, p)
	m.adjacency = nil
	return len(m.Points) - 1
}

// AddPolygon appends a polygon and returns its index.
func (m *Mesh) AddPolygon(verts []int, origCellID int) int {
	ring := make([]int, len(verts))
	copy(ring, verts)
	m.Polys = append(m.Polys, Polygon{Verts: ring, OrigCellId: origCellID, RegionID: -1})
	m.adjacency = nil
	return len(m.Polys) - 1
}

// DeletePolygon marks a polygon deleted. It is not removed from the array
// until Compact is called, so earlier-taken polygon indices stay valid
// until a deliberate compaction point (a stage boundary, per spec section 9
// "Iterator-invalidation hazards").
func (m *Mesh) DeletePolygon(i int) {
	m.Polys[i].deleted = true
	m.adjacency = nil
}

// Deleted reports whether polygon i has been marked deleted.
func (m *Mesh) Deleted(i int) bool { return m.Polys[i].deleted }

// Compact removes deleted polygons, renumbering the survivors. It returns a
// map from old polygon index to new polygon index (deleted entries absent).
func (m *Mesh) Compact() map[int]int {
	remap := make(map[int]int, len(m.Polys))
	out := m.Polys[:0]
	for i, p := range m.Polys {
		if p.deleted {
			continue
		}
		remap[i] = len(out)
		out = append(out, p)
	}
	m.Polys = out
	m.adjacency = nil
	return remap
}

// RebuildAdjacency (re)computes the point -> incident-polygon links.
// Deleted polygons are excluded.
func (m *Mesh) RebuildAdjacency() {
	adj := make(map[int][]int, len(m.Points))
	for pi, poly := range m.Polys {
		if poly.deleted {
			continue
		}
		for _, v := range poly.Verts {
			adj[v] = append(adj[v], pi)
		}
	}
	m.adjacency = adj
}

// PolysAt returns the polygons incident on point index v, rebuilding the
// adjacency links first if a mutation has invalidated them.
func (m *Mesh) PolysAt(v int) []int {
	if m.adjacency == nil {
		m.RebuildAdjacency()
	}
	return m.adjacency[v]
}

// Ring returns the point coordinates of polygon i's ring, in order.
func (m *Mesh) Ring(i int) []Point {
	verts := m.Polys[i].Verts
	ring := make([]Point, len(verts))
	for j, v := range verts {
		ring[j] = m.Points[v]
	}
	return ring
}

// Normal returns the outward normal of polygon i.
func (m *Mesh) Normal(i int) Point {
	return NewellNormal(m.Ring(i))
}

// EdgeIndex returns the position of directed edge (u, v) within polygon i's
// ring, or -1 if the ring has no such directed edge.
func (m *Mesh) EdgeIndex(i, u, v int) int {
	verts := m.Polys[i].Verts
	n := len(verts)
	for k := 0; k < n; k++ {
		if verts[k] == u && verts[(k+1)%n] == v {
			return k
		}
	}
	return -1
}

// ReplacePoint rewrites every occurrence of point index from within polygon
// i's ring to point index to.
func (m *Mesh) ReplacePoint(i, from, to int) {
	verts := m.Polys[i].Verts
	for k, v := range verts {
		if v == from {
			verts[k] = to
		}
	}
	m.adjacency = nil
}

// InsertAfter splices newVert into polygon i's ring immediately after every
// occurrence of vertex after, subdividing the edge that followed it. It
// reports whether after was found.
func (m *Mesh) InsertAfter(i, after, newVert int) bool {
	verts := m.Polys[i].Verts
	out := make([]int, 0, len(verts)+1)
	found := false
	for _, v := range verts {
		out = append(out, v)
		if v == after {
			out = append(out, newVert)
			found = true
		}
	}
	if found {
		m.Polys[i].Verts = out
		m.adjacency = nil
	}
	return found
}

// DuplicatePoint allocates a fresh point at the same coordinate as v and
// returns its index.
func (m *Mesh) DuplicatePoint(v int) int {
	return m.AddPoint(m.Points[v])
}

// ReverseWinding reverses the vertex order of polygon i in place.
func (m *Mesh) ReverseWinding(i int) {
	verts := m.Polys[i].Verts
	for a, b := 0, len(verts)-1; a < b; a, b = a+1, b-1 {
		verts[a], verts[b] = verts[b], verts[a]
	}
	m.adjacency = nil
}

// Clone returns a deep copy of the mesh (adjacency is not copied; call
// RebuildAdjacency on the clone if needed).
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Points: append([]Point(nil), m.Points...),
		Polys:  make([]Polygon, len(m.Polys)),
	}
	for i, p := range m.Polys {
		out.Polys[i] = Polygon{
			Verts:      append([]int(nil), p.Verts...),
			OrigCellId: p.OrigCellId,
			RegionID:   p.RegionID,
			deleted:    p.deleted,
		}
	}
	return out
}
