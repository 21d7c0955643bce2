// Package exact implements the kernel.Kernel interface directly on top of
// pkg/boolean's mesh-cutting pipeline, rather than delegating to an SDF or
// a C++ mesh library. Box and Cylinder build explicit polygon meshes;
// Union/Difference/Intersection stay lazy (mirroring the way sdfx composes
// sdf.SDF3 values without evaluating them) and only run the pipeline when
// ToMesh is finally called, since that is the first point at which a
// cutting failure can be reported through the kernel.Kernel interface.
package exact

import (
	"fmt"
	"math"

	"github.com/chazu/meshbool/pkg/boolean"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/samber/lo"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Options configures an exact Kernel. The zero value is usable and applies
// the defaults pkg/boolean itself uses.
type Options struct {
	// Tolerance overrides pkg/boolean's coincidence tolerance for contact
	// curve generation. Zero means use boolean.Tolerance.
	Tolerance float64
	// MaxFacePairs bounds the face-pair contact search (len(A.Polys) *
	// len(B.Polys)) so a pathologically dense pair of meshes fails fast
	// instead of hanging. Zero means use defaultMaxFacePairs.
	MaxFacePairs int
}

const defaultMaxFacePairs = 1_000_000

func (o Options) tolerance() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return boolean.Tolerance
}

func (o Options) maxFacePairs() int {
	if o.MaxFacePairs > 0 {
		return o.MaxFacePairs
	}
	return defaultMaxFacePairs
}

// Kernel implements kernel.Kernel using pkg/boolean directly: Box and
// Cylinder are built as explicit convex-polygon meshes, and boolean
// combinators run the real cut-and-classify pipeline instead of an
// implicit-surface approximation.
type Kernel struct {
	opts Options
}

// New returns an exact Kernel with the given options.
func New(opts Options) *Kernel {
	return &Kernel{opts: opts}
}

// opKind distinguishes a leaf mesh from a pending boolean combination.
type opKind int

const (
	opLeaf opKind = iota
	opUnion
	opDifference
	opIntersection
)

// solid is a lazily-evaluated CSG expression: either a concrete mesh, or a
// pending combination of two other solids. Evaluation (and therefore
// pipeline failure) is deferred to ToMesh.
type solid struct {
	kind opKind
	mesh *boolean.Mesh // valid when kind == opLeaf
	a, b *solid        // valid otherwise
}

// BoundingBox returns the axis-aligned bounding box. For a leaf this is
// exact; for a pending operation it is the union of both operands' boxes,
// which safely over-approximates Difference and Intersection results
// without forcing evaluation.
func (s *solid) BoundingBox() (min, max [3]float64) {
	switch s.kind {
	case opLeaf:
		return meshBoundingBox(s.mesh)
	default:
		aMin, aMax := s.a.BoundingBox()
		bMin, bMax := s.b.BoundingBox()
		for i := 0; i < 3; i++ {
			min[i] = math.Min(aMin[i], bMin[i])
			max[i] = math.Max(aMax[i], bMax[i])
		}
		return min, max
	}
}

func meshBoundingBox(m *boolean.Mesh) (min, max [3]float64) {
	if len(m.Points) == 0 {
		return min, max
	}
	min = [3]float64{m.Points[0].X, m.Points[0].Y, m.Points[0].Z}
	max = min
	for _, p := range m.Points[1:] {
		min[0], max[0] = math.Min(min[0], p.X), math.Max(max[0], p.X)
		min[1], max[1] = math.Min(min[1], p.Y), math.Max(max[1], p.Y)
		min[2], max[2] = math.Min(min[2], p.Z), math.Max(max[2], p.Z)
	}
	return min, max
}

func leaf(m *boolean.Mesh) *solid { return &solid{kind: opLeaf, mesh: m} }

func unwrap(s kernel.Solid) *solid { return s.(*solid) }

// addFace appends a polygon built from pts, reversing the ring if needed so
// its Newell normal agrees with outward. This keeps winding correct without
// requiring every call site to hand-derive CCW order.
func addFace(m *boolean.Mesh, verts []int, pts []boolean.Point, outward boolean.Point) {
	if boolean.NewellNormal(pts).Dot(outward) < 0 {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}
	m.AddPolygon(verts, len(m.Polys))
}

// Box builds a box with its minimum corner at the origin, matching the
// sdfx backend's convention so placement translations behave the same
// regardless of which kernel is active.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	m := boolean.NewMesh()
	p := [8]int{
		m.AddPoint(boolean.Point{X: 0, Y: 0, Z: 0}),
		m.AddPoint(boolean.Point{X: x, Y: 0, Z: 0}),
		m.AddPoint(boolean.Point{X: x, Y: y, Z: 0}),
		m.AddPoint(boolean.Point{X: 0, Y: y, Z: 0}),
		m.AddPoint(boolean.Point{X: 0, Y: 0, Z: z}),
		m.AddPoint(boolean.Point{X: x, Y: 0, Z: z}),
		m.AddPoint(boolean.Point{X: x, Y: y, Z: z}),
		m.AddPoint(boolean.Point{X: 0, Y: y, Z: z}),
	}
	pt := func(i int) boolean.Point { return m.Points[p[i]] }
	faces := [][4]int{
		{0, 1, 2, 3}, // bottom, z=0
		{4, 5, 6, 7}, // top, z=z
		{0, 1, 5, 4}, // front, y=0
		{3, 2, 6, 7}, // back, y=y
		{0, 3, 7, 4}, // left, x=0
		{1, 2, 6, 5}, // right, x=x
	}
	outwards := []boolean.Point{
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: -1, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: -1, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
	}
	for i, f := range faces {
		verts := []int{p[f[0]], p[f[1]], p[f[2]], p[f[3]]}
		pts := []boolean.Point{pt(f[0]), pt(f[1]), pt(f[2]), pt(f[3])}
		addFace(m, verts, pts, outwards[i])
	}
	return leaf(m)
}

// Cylinder builds a regular segments-sided prism, centered on the origin
// and spanning [-height/2, height/2] along Z, matching sdfx's centered
// convention. segments below 3 is clamped to 3.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments < 3 {
		segments = 3
	}
	m := boolean.NewMesh()
	bottom := make([]int, segments)
	top := make([]int, segments)
	halfH := height / 2
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		cx, cy := radius*math.Cos(theta), radius*math.Sin(theta)
		bottom[i] = m.AddPoint(boolean.Point{X: cx, Y: cy, Z: -halfH})
		top[i] = m.AddPoint(boolean.Point{X: cx, Y: cy, Z: halfH})
	}

	ring := func(idxs []int) []boolean.Point {
		pts := make([]boolean.Point, len(idxs))
		for i, idx := range idxs {
			pts[i] = m.Points[idx]
		}
		return pts
	}

	bottomVerts := append([]int(nil), bottom...)
	addFace(m, bottomVerts, ring(bottomVerts), boolean.Point{X: 0, Y: 0, Z: -1})

	topVerts := append([]int(nil), top...)
	addFace(m, topVerts, ring(topVerts), boolean.Point{X: 0, Y: 0, Z: 1})

	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		verts := []int{bottom[i], bottom[j], top[j], top[i]}
		mid := 2 * math.Pi * (float64(i) + 0.5) / float64(segments)
		outward := boolean.Point{X: math.Cos(mid), Y: math.Sin(mid), Z: 0}
		addFace(m, verts, ring(verts), outward)
	}

	return leaf(m)
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return &solid{kind: opUnion, a: unwrap(a), b: unwrap(b)}
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return &solid{kind: opDifference, a: unwrap(a), b: unwrap(b)}
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return &solid{kind: opIntersection, a: unwrap(a), b: unwrap(b)}
}

// Cut exposes pkg/boolean's NONE-mode pass-through directly: every
// surviving polygon of both inputs after cutting and merging, with no
// region classification applied. This is not part of kernel.Kernel, which
// only speaks the three-verb boolean vocabulary; callers that want the raw
// cut (or SymmetricDifference, which kernel.Kernel expresses generically as
// a union of two differences) reach for this instead.
func (k *Kernel) Cut(a, b kernel.Solid) (boolean.Result, error) {
	meshA, meshB, err := k.evalPair(unwrap(a), unwrap(b))
	if err != nil {
		return boolean.Result{}, err
	}
	curve, err := k.contactCurve(meshA, meshB)
	if err != nil {
		return boolean.Result{}, err
	}
	return boolean.Cut(meshA, meshB, curve)
}

// SymmetricDifference runs pkg/boolean's SymmetricDifference operator
// directly, rather than the Union-of-two-Differences expansion the
// kernel.Kernel interface falls back to.
func (k *Kernel) SymmetricDifference(a, b kernel.Solid) (boolean.Result, error) {
	return k.combine(unwrap(a), unwrap(b), boolean.SymmetricDifference)
}

func transformPoints(m *boolean.Mesh, f func(boolean.Point) boolean.Point) *boolean.Mesh {
	out := m.Clone()
	for i, p := range out.Points {
		out.Points[i] = f(p)
	}
	return out
}

func mapSolid(s *solid, f func(boolean.Point) boolean.Point) *solid {
	if s.kind == opLeaf {
		return leaf(transformPoints(s.mesh, f))
	}
	return &solid{kind: s.kind, a: mapSolid(s.a, f), b: mapSolid(s.b, f)}
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	d := boolean.Point{X: x, Y: y, Z: z}
	return mapSolid(unwrap(s), func(p boolean.Point) boolean.Point { return p.Add(d) })
}

// Rotate rotates by Euler angles in degrees, applied X then Y then Z, about
// the origin.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rx, ry, rz := x*math.Pi/180, y*math.Pi/180, z*math.Pi/180
	sx, cx := math.Sincos(rx)
	sy, cy := math.Sincos(ry)
	sz, cz := math.Sincos(rz)
	return mapSolid(unwrap(s), func(p boolean.Point) boolean.Point {
		// Rotate about X.
		y1 := p.Y*cx - p.Z*sx
		z1 := p.Y*sx + p.Z*cx
		x1 := p.X
		// Rotate about Y.
		x2 := x1*cy + z1*sy
		z2 := -x1*sy + z1*cy
		y2 := y1
		// Rotate about Z.
		x3 := x2*cz - y2*sz
		y3 := x2*sz + y2*cz
		return boolean.Point{X: x3, Y: y3, Z: z2}
	})
}

// evalPair evaluates both operands of a pending combination to concrete
// meshes, cloning leaves so the pipeline's in-place cutting never mutates a
// solid that might be reused elsewhere in the design graph.
func (k *Kernel) evalPair(a, b *solid) (*boolean.Mesh, *boolean.Mesh, error) {
	meshA, err := k.eval(a)
	if err != nil {
		return nil, nil, err
	}
	meshB, err := k.eval(b)
	if err != nil {
		return nil, nil, err
	}
	return meshA, meshB, nil
}

// eval recursively resolves a solid to a concrete mesh, running the boolean
// pipeline for every pending operation node along the way.
func (k *Kernel) eval(s *solid) (*boolean.Mesh, error) {
	if s.kind == opLeaf {
		return s.mesh.Clone(), nil
	}
	var op boolean.Operator
	switch s.kind {
	case opUnion:
		op = boolean.Union
	case opDifference:
		op = boolean.Difference
	case opIntersection:
		op = boolean.Intersection
	default:
		return nil, fmt.Errorf("exact: unknown op kind %v", s.kind)
	}
	res, err := k.combine(s.a, s.b, op)
	if err != nil {
		return nil, err
	}
	return res.Mesh, nil
}

func (k *Kernel) combine(a, b *solid, op boolean.Operator) (boolean.Result, error) {
	meshA, meshB, err := k.evalPair(a, b)
	if err != nil {
		return boolean.Result{}, err
	}
	curve, err := k.contactCurve(meshA, meshB)
	if err != nil {
		return boolean.Result{}, err
	}
	return boolean.Combine(meshA, meshB, curve, op)
}

func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	result, err := k.eval(unwrap(s))
	if err != nil {
		return nil, fmt.Errorf("exact: %w", err)
	}
	return triangulate(result), nil
}

// triangulate splits every polygon of m into triangles of a flat
// kernel.Mesh. A single
// straight cut chord always leaves both of its sides convex, but a bent
// chord (two chords meeting at an interior branch point, which CutCells
// produces whenever a corner of one solid lands inside a face of the
// other) leaves the far side of the cut a simple but non-convex polygon.
// Fanning from vertex 0 would fold triangles across such a face, so every
// ring is run through ear-clipping instead; ear-clipping degrades to
// exactly a fan on already-convex rings, so this costs nothing there.
func triangulate(m *boolean.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{}
	for pi := range m.Polys {
		if m.Deleted(pi) {
			continue
		}
		verts := m.Polys[pi].Verts
		if len(verts) < 3 {
			continue
		}
		n := m.Normal(pi)
		pts := make([]boolean.Point, len(verts))
		for i, v := range verts {
			pts[i] = m.Points[v]
		}
		base := uint32(len(out.Vertices) / 3)
		for _, p := range pts {
			out.Vertices = append(out.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		for _, tri := range earClip(pts, n) {
			out.Indices = append(out.Indices, base+uint32(tri[0]), base+uint32(tri[1]), base+uint32(tri[2]))
		}
	}
	return out
}

// earClip triangulates a simple (possibly non-convex) planar ring, returning
// index triples into ring. n is the ring's outward normal, used to project
// into a consistent 2-D basis and to orient the reflex test; the algorithm
// mirrors the ear-validity test used by mapbox-style ear-cutters (reflex
// candidates never qualify, and a candidate ear is rejected if any other
// remaining vertex falls inside it), simplified from a doubly-linked active
// ring to a plain shrinking index slice since these rings are always small.
func earClip(ring []boolean.Point, n boolean.Point) [][3]int {
	if len(ring) < 3 {
		return nil
	}
	u := ring[1].Sub(ring[0])
	if u.Norm() < boolean.Tolerance {
		for _, p := range ring[2:] {
			if u = p.Sub(ring[0]); u.Norm() >= boolean.Tolerance {
				break
			}
		}
	}
	u = u.Normalize()
	v := n.Cross(u).Normalize()
	origin := ring[0]
	pts2 := make([][2]float64, len(ring))
	for i, p := range ring {
		d := p.Sub(origin)
		pts2[i] = [2]float64{d.Dot(u), d.Dot(v)}
	}

	idx := make([]int, len(ring))
	for i := range idx {
		idx[i] = i
	}
	if signedArea2D(pts2, idx) < 0 {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	var tris [][3]int
	guard := 0
	for len(idx) > 3 && guard < len(ring)*len(ring)+16 {
		guard++
		cut := -1
		m := len(idx)
		for i := 0; i < m; i++ {
			ip := idx[(i-1+m)%m]
			ic := idx[i]
			in := idx[(i+1)%m]
			if cross2D(pts2[ip], pts2[ic], pts2[in]) <= 0 {
				continue // reflex or degenerate, can't be an ear
			}
			if anyPointInTriangle(pts2, idx, ip, ic, in) {
				continue
			}
			cut = i
			break
		}
		if cut < 0 {
			// Numerically degenerate ring (near-collinear points defeating
			// the reflex test); fan the remainder rather than looping.
			break
		}
		m2 := len(idx)
		ip := idx[(cut-1+m2)%m2]
		ic := idx[cut]
		in := idx[(cut+1)%m2]
		tris = append(tris, [3]int{ip, ic, in})
		idx = append(idx[:cut], idx[cut+1:]...)
	}
	for i := 1; i+1 < len(idx); i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris
}

func signedArea2D(pts [][2]float64, idx []int) float64 {
	sum := 0.0
	n := len(idx)
	for i := 0; i < n; i++ {
		a, b := pts[idx[i]], pts[idx[(i+1)%n]]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// cross2D is twice the signed area of triangle (a,b,c); positive when b is a
// convex (left) turn from a to c.
func cross2D(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

func anyPointInTriangle(pts [][2]float64, idx []int, ia, ib, ic int) bool {
	a, b, c := pts[ia], pts[ib], pts[ic]
	for _, i := range idx {
		if i == ia || i == ib || i == ic {
			continue
		}
		if pointInTriangle(pts[i], a, b, c) {
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c [2]float64) bool {
	d1 := cross2D(a, b, p)
	d2 := cross2D(b, c, p)
	d3 := cross2D(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// faceBox is an axis-aligned bounding box for one polygon, used to cull
// face pairs before the exact plane-plane intersection is attempted.
type faceBox struct {
	idx      int
	min, max boolean.Point
}

func faceBoxOf(m *boolean.Mesh, idx int) faceBox {
	pts := m.Ring(idx)
	fb := faceBox{idx: idx, min: pts[0], max: pts[0]}
	for _, p := range pts[1:] {
		fb.min.X, fb.max.X = math.Min(fb.min.X, p.X), math.Max(fb.max.X, p.X)
		fb.min.Y, fb.max.Y = math.Min(fb.min.Y, p.Y), math.Max(fb.max.Y, p.Y)
		fb.min.Z, fb.max.Z = math.Min(fb.min.Z, p.Z), math.Max(fb.max.Z, p.Z)
	}
	return fb
}

func boxesOverlap(a, b faceBox, tol float64) bool {
	return a.min.X-tol <= b.max.X && b.min.X-tol <= a.max.X &&
		a.min.Y-tol <= b.max.Y && b.min.Y-tol <= a.max.Y &&
		a.min.Z-tol <= b.max.Z && b.min.Z-tol <= a.max.Z
}

// contactCurve computes the one-dimensional intersection of meshA and
// meshB's surfaces by pairing every face of A against every (bounding-box
// overlapping) face of B, intersecting their planes, and clipping the
// resulting line against both faces' convex boundaries. pkg/boolean treats
// this computation as an external collaborator's responsibility; this is
// that collaborator, specialised to the convex planar polygons Box and
// Cylinder produce.
func (k *Kernel) contactCurve(meshA, meshB *boolean.Mesh) (*boolean.ContactCurve, error) {
	tol := k.opts.tolerance()

	if len(meshA.Polys)*len(meshB.Polys) > k.opts.maxFacePairs() {
		return nil, fmt.Errorf("exact: face pair count %d exceeds limit %d", len(meshA.Polys)*len(meshB.Polys), k.opts.maxFacePairs())
	}

	facesA := lo.Map(lo.Range(len(meshA.Polys)), func(i, _ int) faceBox { return faceBoxOf(meshA, i) })
	facesB := lo.Map(lo.Range(len(meshB.Polys)), func(i, _ int) faceBox { return faceBoxOf(meshB, i) })

	curve := &boolean.ContactCurve{}
	grid := 1 / tol
	index := map[[3]int64]int{}

	getOrAdd := func(p boolean.Point) int {
		key := [3]int64{
			int64(math.Round(p.X * grid)),
			int64(math.Round(p.Y * grid)),
			int64(math.Round(p.Z * grid)),
		}
		if idx, ok := index[key]; ok {
			return idx
		}
		idx := len(curve.Points)
		curve.Points = append(curve.Points, p)
		index[key] = idx
		return idx
	}

	for _, fa := range facesA {
		candidates := lo.Filter(facesB, func(fb faceBox, _ int) bool { return boxesOverlap(fa, fb, tol) })
		for _, fb := range candidates {
			p0, p1, ok := facePairIntersection(meshA, fa.idx, meshB, fb.idx, tol)
			if !ok {
				continue
			}
			i0 := getOrAdd(p0)
			i1 := getOrAdd(p1)
			if i0 == i1 {
				continue
			}
			curve.Lines = append(curve.Lines, boolean.ContactLine{
				P0: i0, P1: i1,
				PolyA: fa.idx, PolyB: fb.idx,
				SrcA0: boolean.NoSource, SrcA1: boolean.NoSource,
				SrcB0: boolean.NoSource, SrcB1: boolean.NoSource,
			})
		}
	}

	return curve, nil
}

// facePairIntersection clips the line of intersection between polyA's
// plane and polyB's plane against both polygons' convex boundaries,
// returning the overlapping segment, if any.
func facePairIntersection(meshA *boolean.Mesh, polyA int, meshB *boolean.Mesh, polyB int, tol float64) (boolean.Point, boolean.Point, bool) {
	ringA := meshA.Ring(polyA)
	ringB := meshB.Ring(polyB)
	n1 := boolean.NewellNormal(ringA)
	n2 := boolean.NewellNormal(ringB)

	a0, b0 := ringA[0], ringB[0]
	A := n1.Dot(n1)
	B := n1.Dot(n2)
	C := n2.Dot(n2)
	det := A*C - B*B
	if det < tol*tol {
		// Planes are parallel (or one face is degenerate): no transversal
		// contact line between them.
		return boolean.Point{}, boolean.Point{}, false
	}

	h1 := n1.Dot(a0)
	h2 := n2.Dot(b0)
	alpha := (h1*C - h2*B) / det
	beta := (h2*A - h1*B) / det
	p0 := n1.Scale(alpha).Add(n2.Scale(beta))
	dir := n1.Cross(n2).Normalize()

	tMin, tMax := math.Inf(-1), math.Inf(1)
	if !clipToRing(ringA, n1, p0, dir, tol, &tMin, &tMax) {
		return boolean.Point{}, boolean.Point{}, false
	}
	if !clipToRing(ringB, n2, p0, dir, tol, &tMin, &tMax) {
		return boolean.Point{}, boolean.Point{}, false
	}

	if tMax-tMin < tol {
		return boolean.Point{}, boolean.Point{}, false
	}
	return p0.Add(dir.Scale(tMin)), p0.Add(dir.Scale(tMax)), true
}

// clipToRing narrows [*tMin, *tMax] to the portion of the line p0+t*dir
// that lies within ring's convex boundary (ring's own plane has normal n).
// It reports false if the line misses the ring entirely.
func clipToRing(ring []boolean.Point, n, p0, dir boolean.Point, tol float64, tMin, tMax *float64) bool {
	count := len(ring)
	for i := 0; i < count; i++ {
		v0 := ring[i]
		v1 := ring[(i+1)%count]
		edge := v1.Sub(v0)
		inward := n.Cross(edge)

		c := inward.Dot(dir)
		rhs := -inward.Dot(p0.Sub(v0))

		switch {
		case c > tol:
			if t := rhs / c; t > *tMin {
				*tMin = t
			}
		case c < -tol:
			if t := rhs / c; t < *tMax {
				*tMax = t
			}
		default:
			if inward.Dot(p0.Sub(v0)) < -tol {
				return false
			}
		}
		if *tMin > *tMax {
			return false
		}
	}
	return true
}
