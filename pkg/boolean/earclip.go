package boolean

// earClipTriangles triangulates a planar point ring by ear-clipping: it
// walks the remaining index loop, and at each candidate vertex checks it is
// convex and that no other remaining vertex falls inside the candidate
// triangle, clipping the first ear that passes both tests. Unlike a fan
// over (v0, vk, vk+1), this is sound on non-convex rings, which the cutter
// can and does produce. A convex ring degrades to a fan at no extra cost,
// since every candidate passes on the first pass.
//
// Adapted from pkg/kernel/exact's earClip for this package's own Point
// type; ray-casting only needs the triangles, not the clipped polygon, so
// this returns triangle corners directly instead of index triples.
func earClipTriangles(ring []Point) [][3]Point {
	n := len(ring)
	if n < 3 {
		return nil
	}
	if n == 3 {
		return [][3]Point{{ring[0], ring[1], ring[2]}}
	}

	normal := NewellNormal(ring)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var out [][3]Point
	guard := 0
	for len(idx) > 3 && guard < n*n+8 {
		guard++
		clipped := false
		m := len(idx)
		for i := 0; i < m; i++ {
			prev := ring[idx[(i-1+m)%m]]
			cur := ring[idx[i]]
			next := ring[idx[(i+1)%m]]

			if signedTriArea(prev, cur, next, normal) <= 0 {
				continue // reflex vertex, not a valid ear
			}

			isEar := true
			for j := 0; j < m; j++ {
				if j == (i-1+m)%m || j == i || j == (i+1)%m {
					continue
				}
				if pointInTri(ring[idx[j]], prev, cur, next, normal) {
					isEar = false
					break
				}
			}
			if !isEar {
				continue
			}

			out = append(out, [3]Point{prev, cur, next})
			idx = append(append([]int(nil), idx[:i]...), idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break // degenerate ring; stop rather than loop forever
		}
	}
	if len(idx) == 3 {
		out = append(out, [3]Point{ring[idx[0]], ring[idx[1]], ring[idx[2]]})
	}
	return out
}

// signedTriArea returns twice the signed area of triangle (a,b,c) projected
// along normal: positive when (a,b,c) winds the same way as normal.
func signedTriArea(a, b, c, normal Point) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Dot(normal)
}

// pointInTri reports whether p lies inside triangle (a,b,c), using the same
// normal-relative orientation test for all three edges so it works for
// rings that are only approximately planar.
func pointInTri(p, a, b, c, normal Point) bool {
	d1 := signedTriArea(a, b, p, normal)
	d2 := signedTriArea(b, c, p, normal)
	d3 := signedTriArea(c, a, p, normal)
	hasNeg := d1 < -1e-12 || d2 < -1e-12 || d3 < -1e-12
	hasPos := d1 > 1e-12 || d2 > 1e-12 || d3 > 1e-12
	return !(hasNeg && hasPos)
}
