package tessellate_test

import (
	"testing"

	"github.com/chazu/meshbool/pkg/boolean"
	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/sdfx"
	"github.com/chazu/meshbool/pkg/tessellate"
)

// newKernel returns a fresh sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return sdfx.New()
}

// makeBox creates a box primitive node with the given name and dimensions.
func makeBox(name string, x, y, z float64) *graph.Node {
	id := graph.NewNodeID(name)
	return &graph.Node{
		ID:   id,
		Kind: graph.NodePrimitive,
		Name: name,
		Data: graph.BoxData{
			PrimKind:   graph.PrimBox,
			Dimensions: graph.Vec3{X: x, Y: y, Z: z},
		},
	}
}

// makeCylinder creates a cylinder primitive node.
func makeCylinder(name string, height, radius float64, segments int) *graph.Node {
	id := graph.NewNodeID(name)
	return &graph.Node{
		ID:   id,
		Kind: graph.NodePrimitive,
		Name: name,
		Data: graph.CylinderData{
			PrimKind: graph.PrimCylinder,
			Height:   height,
			Radius:   radius,
			Segments: segments,
		},
	}
}

// makePlaceTransform creates a transform node with a translation.
func makePlaceTransform(name string, tx, ty, tz float64, children ...graph.NodeID) *graph.Node {
	id := graph.NewNodeID(name)
	t := graph.Vec3{X: tx, Y: ty, Z: tz}
	return &graph.Node{
		ID:       id,
		Kind:     graph.NodeTransform,
		Name:     name,
		Children: children,
		Data: graph.TransformData{
			Translation: &t,
		},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	id := graph.NewNodeID(name)
	return &graph.Node{
		ID:       id,
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

// makeBoolean creates a boolean-combinator node over the given children.
func makeBoolean(name string, op boolean.Operator, children ...graph.NodeID) *graph.Node {
	id := graph.NewNodeID(name)
	return &graph.Node{
		ID:       id,
		Kind:     graph.NodeBoolean,
		Name:     name,
		Children: children,
		Data:     graph.BooleanData{Op: op},
	}
}

func TestSingleBox(t *testing.T) {
	k := newKernel()
	g := graph.New()

	box := makeBox("shelf", 600, 300, 18)
	g.AddNode(box)
	g.AddRoot(box.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}
	if m.VertexCount() == 0 {
		t.Error("mesh should have vertices")
	}
	if m.TriangleCount() == 0 {
		t.Error("mesh should have triangles")
	}
}

func TestTwoParts(t *testing.T) {
	k := newKernel()
	g := graph.New()

	side := makeBox("side-panel", 400, 300, 18)
	top := makeBox("top-panel", 600, 300, 18)
	g.AddNode(side)
	g.AddNode(top)
	g.AddRoot(side.ID)
	g.AddRoot(top.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Error("mesh should not be empty")
		}
		names[m.PartName] = true
	}

	if !names["side-panel"] {
		t.Error("missing mesh for side-panel")
	}
	if !names["top-panel"] {
		t.Error("missing mesh for top-panel")
	}
}

func TestPartWithTransform(t *testing.T) {
	k := newKernel()
	g := graph.New()

	box := makeBox("shelf", 100, 50, 10)
	g.AddNode(box)

	// Place the box at an offset of (200, 100, 50).
	place := makePlaceTransform("place-shelf", 200, 100, 50, box.ID)
	g.AddNode(place)
	g.AddRoot(place.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}

	// Box has min-corner at origin, so a 100x50x10 box placed at
	// (200,100,50) spans (200,100,50)-(300,150,60). Centroid near (250,125,55).
	var cx, cy, cz float64
	n := m.VertexCount()
	for i := 0; i < n; i++ {
		cx += float64(m.Vertices[i*3])
		cy += float64(m.Vertices[i*3+1])
		cz += float64(m.Vertices[i*3+2])
	}
	cx /= float64(n)
	cy /= float64(n)
	cz /= float64(n)

	// Use a generous tolerance since marching cubes is approximate.
	const tol = 20.0
	if abs(cx-250) > tol {
		t.Errorf("centroid X = %.1f, expected near 250", cx)
	}
	if abs(cy-125) > tol {
		t.Errorf("centroid Y = %.1f, expected near 125", cy)
	}
	if abs(cz-55) > tol {
		t.Errorf("centroid Z = %.1f, expected near 55", cz)
	}
}

func TestAssembly(t *testing.T) {
	k := newKernel()
	g := graph.New()

	left := makeBox("left-side", 400, 300, 18)
	right := makeBox("right-side", 400, 300, 18)
	top := makeBox("top", 600, 300, 18)
	g.AddNode(left)
	g.AddNode(right)
	g.AddNode(top)

	placeLeft := makePlaceTransform("place-left", 0, 0, 0, left.ID)
	placeRight := makePlaceTransform("place-right", 582, 0, 0, right.ID)
	placeTop := makePlaceTransform("place-top", 300, 400, 0, top.ID)
	g.AddNode(placeLeft)
	g.AddNode(placeRight)
	g.AddNode(placeTop)

	assembly := makeGroup("bookshelf", placeLeft.ID, placeRight.ID, placeTop.ID)
	g.AddNode(assembly)
	g.AddRoot(assembly.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("mesh %q should not be empty", m.PartName)
		}
		names[m.PartName] = true
	}

	for _, want := range []string{"left-side", "right-side", "top"} {
		if !names[want] {
			t.Errorf("missing mesh for %q", want)
		}
	}
}

func TestEmptyGraph(t *testing.T) {
	k := newKernel()
	g := graph.New()

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestBooleanUnionProducesOneMesh(t *testing.T) {
	k := newKernel()
	g := graph.New()

	a := makeBox("box-a", 40, 40, 40)
	b := makeCylinder("cyl-b", 60, 15, 24)
	g.AddNode(a)
	g.AddNode(b)

	union := makeBoolean("union-a-b", boolean.Union, a.ID, b.ID)
	g.AddNode(union)
	g.AddRoot(union.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 combined mesh, got %d", len(meshes))
	}
	if meshes[0].IsEmpty() {
		t.Fatal("union mesh should not be empty")
	}
	if meshes[0].PartName != "union-a-b" {
		t.Errorf("expected PartName %q, got %q", "union-a-b", meshes[0].PartName)
	}
}

func TestStandaloneBooleanUsesImplicitRoot(t *testing.T) {
	k := newKernel()
	g := graph.New()

	a := makeBox("box-a", 40, 40, 40)
	b := makeCylinder("cyl-b", 60, 15, 24)
	g.AddNode(a)
	g.AddNode(b)

	// No assembly, no explicit AddRoot: a bare combinator must still be
	// picked up by the implicit top-level-node fallback.
	union := makeBoolean("union-a-b", boolean.Union, a.ID, b.ID)
	g.AddNode(union)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 combined mesh from implicit root, got %d", len(meshes))
	}
	if meshes[0].PartName != "union-a-b" {
		t.Errorf("expected PartName %q, got %q", "union-a-b", meshes[0].PartName)
	}
}

func TestStandalonePrimitiveAndBooleanBothSurfaceViaImplicitRoot(t *testing.T) {
	k := newKernel()
	g := graph.New()

	// A part fed into a boolean should NOT also surface on its own,
	// since it's referenced as a child of the boolean node.
	a := makeBox("box-a", 40, 40, 40)
	b := makeBox("box-b", 20, 20, 20)
	g.AddNode(a)
	g.AddNode(b)
	union := makeBoolean("union-a-b", boolean.Union, a.ID, b.ID)
	g.AddNode(union)

	// A wholly unrelated standalone part should surface alongside it.
	standalone := makeBox("standalone", 10, 10, 10)
	g.AddNode(standalone)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes (union + standalone), got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		names[m.PartName] = true
	}
	if !names["union-a-b"] {
		t.Error("missing mesh for union-a-b")
	}
	if !names["standalone"] {
		t.Error("missing mesh for standalone")
	}
	if names["box-a"] || names["box-b"] {
		t.Error("box-a/box-b should not surface independently, they are referenced by the union")
	}
}

func TestBooleanRequiresTwoChildren(t *testing.T) {
	k := newKernel()
	g := graph.New()

	a := makeBox("box-a", 10, 10, 10)
	g.AddNode(a)

	union := makeBoolean("union-lonely", boolean.Union, a.ID)
	g.AddNode(union)
	g.AddRoot(union.ID)

	if _, err := tessellate.Tessellate(g, k); err == nil {
		t.Fatal("expected an error for a boolean node with fewer than two children")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
