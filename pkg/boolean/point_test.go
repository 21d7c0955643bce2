package boolean_test

import (
	"math"
	"testing"

	"github.com/chazu/meshbool/pkg/boolean"
)

func TestPointVectorOps(t *testing.T) {
	a := boolean.Point{X: 1, Y: 2, Z: 3}
	b := boolean.Point{X: 4, Y: 5, Z: 6}

	if got := a.Add(b); got != (boolean.Point{X: 5, Y: 7, Z: 9}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (boolean.Point{X: 3, Y: 3, Z: 3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != (boolean.Point{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Scale = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}

func TestPointCross(t *testing.T) {
	x := boolean.Point{X: 1, Y: 0, Z: 0}
	y := boolean.Point{X: 0, Y: 1, Z: 0}
	got := x.Cross(y)
	want := boolean.Point{X: 0, Y: 0, Z: 1}
	if got != want {
		t.Errorf("Cross(x,y) = %v, want %v", got, want)
	}
}

func TestPointNorm(t *testing.T) {
	p := boolean.Point{X: 3, Y: 4, Z: 0}
	if got := p.Norm(); math.Abs(got-5) > 1e-9 {
		t.Errorf("Norm() = %v, want 5", got)
	}
}

func TestPointNormalize(t *testing.T) {
	p := boolean.Point{X: 0, Y: 0, Z: 0}
	if got := p.Normalize(); got != p {
		t.Errorf("Normalize of zero vector should return itself, got %v", got)
	}

	q := boolean.Point{X: 5, Y: 0, Z: 0}
	got := q.Normalize()
	want := boolean.Point{X: 1, Y: 0, Z: 0}
	if boolean.Dist(got, want) > 1e-9 {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}
}

func TestSamePoint(t *testing.T) {
	a := boolean.Point{X: 1, Y: 1, Z: 1}
	b := boolean.Point{X: 1 + 1e-7, Y: 1, Z: 1}
	c := boolean.Point{X: 1.1, Y: 1, Z: 1}

	if !boolean.SamePoint(a, b) {
		t.Error("points within tolerance should be SamePoint")
	}
	if boolean.SamePoint(a, c) {
		t.Error("points far apart should not be SamePoint")
	}
}

func TestNewellNormalSquare(t *testing.T) {
	// Unit square in the XY plane, CCW as seen from +Z.
	ring := []boolean.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	n := boolean.NewellNormal(ring)
	want := boolean.Point{X: 0, Y: 0, Z: 1}
	if boolean.Dist(n, want) > 1e-9 {
		t.Errorf("NewellNormal() = %v, want %v", n, want)
	}
}

func TestNewellNormalReversedWinding(t *testing.T) {
	ring := []boolean.Point{
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0},
	}
	n := boolean.NewellNormal(ring)
	want := boolean.Point{X: 0, Y: 0, Z: -1}
	if boolean.Dist(n, want) > 1e-9 {
		t.Errorf("NewellNormal() reversed = %v, want %v", n, want)
	}
}

func TestLerp(t *testing.T) {
	a := boolean.Point{X: 0, Y: 0, Z: 0}
	b := boolean.Point{X: 10, Y: 0, Z: 0}
	got := a.Lerp(b, 0.25)
	want := boolean.Point{X: 2.5, Y: 0, Z: 0}
	if got != want {
		t.Errorf("Lerp(0.25) = %v, want %v", got, want)
	}
}
