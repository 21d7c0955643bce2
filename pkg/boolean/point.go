package boolean

import "math"

// Tolerance is the linear tolerance used throughout the pipeline for
// coincidence, edge-capture and self-intersection tests, per spec section 3.
const Tolerance = 1e-5

// ToleranceSq is Tolerance squared, used when comparing squared distances.
const ToleranceSq = Tolerance * Tolerance

// Point is a 3-D coordinate.
type Point struct {
	X, Y, Z float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s, p.Z * s} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y + p.Z*q.Z }

// Cross returns the cross product p x q.
func (p Point) Cross(q Point) Point {
	return Point{
		X: p.Y*q.Z - p.Z*q.Y,
		Y: p.Z*q.X - p.X*q.Z,
		Z: p.X*q.Y - p.Y*q.X,
	}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 { return math.Sqrt(p.Dot(p)) }

// NormSq returns the squared Euclidean length of p.
func (p Point) NormSq() float64 { return p.Dot(p) }

// Normalize returns p scaled to unit length; the zero vector maps to itself.
func (p Point) Normalize() Point {
	n := p.Norm()
	if n < 1e-15 {
		return p
	}
	return p.Scale(1 / n)
}

// Lerp linearly interpolates between p and q at parameter t.
func (p Point) Lerp(q Point, t float64) Point {
	return p.Add(q.Sub(p).Scale(t))
}

// DistSq returns the squared distance between p and q.
func DistSq(p, q Point) float64 {
	d := p.Sub(q)
	return d.Dot(d)
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 { return math.Sqrt(DistSq(p, q)) }

// SamePoint reports whether p and q are within Tolerance of each other.
func SamePoint(p, q Point) bool { return DistSq(p, q) < ToleranceSq }

// NewellNormal computes the polygon normal of a point ring using Newell's
// method, robust to mild non-planarity.
func NewellNormal(ring []Point) Point {
	var n Point
	m := len(ring)
	for i := 0; i < m; i++ {
		a := ring[i]
		b := ring[(i+1)%m]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// angleAbout returns the signed angle from vector a to vector b, measured
// about axis (which need not be normalized), in the range (-pi, pi].
func angleAbout(a, b, axis Point) float64 {
	axisN := axis.Normalize()
	cos := clamp(a.Normalize().Dot(b.Normalize()), -1, 1)
	angle := math.Acos(cos)
	if a.Cross(b).Dot(axisN) < 0 {
		angle = -angle
	}
	return angle
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
