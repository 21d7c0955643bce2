package exact

import (
	"testing"

	"github.com/chazu/meshbool/pkg/boolean"
)

func triArea(tris [][3]int, pts []boolean.Point) float64 {
	total := 0.0
	for _, t := range tris {
		a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
		total += b.Sub(a).Cross(c.Sub(a)).Norm() / 2
	}
	return total
}

func TestEarClipConvexSquare(t *testing.T) {
	ring := []boolean.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	n := boolean.Point{X: 0, Y: 0, Z: 1}
	tris := earClip(ring, n)
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles for a convex quad, got %d", len(tris))
	}
	if got := triArea(tris, ring); got < 0.999 || got > 1.001 {
		t.Errorf("triangulated area = %f, want 1", got)
	}
}

// A box corner-notch cut leaves an L-shaped hexagon on the untouched faces:
// the [0,20]x[0,20] square with its [10,20]x[10,20] quadrant removed.
func TestEarClipNonConvexLShape(t *testing.T) {
	ring := []boolean.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 20, Y: 0, Z: 0},
		{X: 20, Y: 10, Z: 0},
		{X: 10, Y: 10, Z: 0},
		{X: 10, Y: 20, Z: 0},
		{X: 0, Y: 20, Z: 0},
	}
	n := boolean.Point{X: 0, Y: 0, Z: 1}
	tris := earClip(ring, n)
	if len(tris) != len(ring)-2 {
		t.Fatalf("expected %d triangles for a %d-gon, got %d", len(ring)-2, len(ring), len(tris))
	}
	wantArea := 20.0*20.0 - 10.0*10.0
	if got := triArea(tris, ring); got < wantArea-0.001 || got > wantArea+0.001 {
		t.Errorf("triangulated area = %f, want %f", got, wantArea)
	}
	// No triangle should fold across the missing quadrant: every triangle's
	// centroid must land within the L, not the removed corner square.
	for _, tri := range tris {
		a, b, c := ring[tri[0]], ring[tri[1]], ring[tri[2]]
		cx := (a.X + b.X + c.X) / 3
		cy := (a.Y + b.Y + c.Y) / 3
		if cx > 10 && cy > 10 {
			t.Errorf("triangle %v centroid (%f,%f) falls inside the removed notch", tri, cx, cy)
		}
	}
}

func TestEarClipTriangleIsFan(t *testing.T) {
	ring := []boolean.Point{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	n := boolean.Point{X: 0, Y: 0, Z: 1}
	tris := earClip(ring, n)
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
}
