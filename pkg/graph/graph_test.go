package graph

import (
	"testing"

	"github.com/chazu/meshbool/pkg/boolean"
)

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Defaults.Units != "mm" {
		t.Errorf("default units = %q, want %q", g.Defaults.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NodeID("box/a")
	node := &Node{
		ID:   id,
		Kind: NodePrimitive,
		Name: "a",
		Data: BoxData{PrimKind: PrimBox, Dimensions: Vec3{X: 1, Y: 1, Z: 1}},
	}
	g.AddNode(node)
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}

	found := g.Lookup("a")
	if found == nil || found.ID != id {
		t.Fatalf("Lookup('a') = %v, want node %s", found, id)
	}

	must := g.MustLookup("a")
	if must.ID != id {
		t.Errorf("MustLookup returned wrong node")
	}

	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}

	got := g.Get(id)
	if got == nil || got.Name != "a" {
		t.Errorf("Get by ID failed")
	}

	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id)
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic on missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestPartsAndBooleans(t *testing.T) {
	g := New()

	aID := NodeID("box/a")
	bID := NodeID("box/b")
	unionID := NodeID("union/ab")

	g.AddNode(&Node{ID: aID, Kind: NodePrimitive, Name: "a", Data: BoxData{Dimensions: Vec3{X: 1, Y: 1, Z: 1}}})
	g.AddNode(&Node{ID: bID, Kind: NodePrimitive, Name: "b", Data: BoxData{Dimensions: Vec3{X: 1, Y: 1, Z: 1}}})
	g.AddNode(&Node{
		ID: unionID, Kind: NodeBoolean,
		Children: []NodeID{aID, bID},
		Data:     BooleanData{Op: boolean.Union},
	})

	if len(g.Parts()) != 2 {
		t.Errorf("Parts() count = %d, want 2", len(g.Parts()))
	}
	if len(g.Booleans()) != 1 {
		t.Errorf("Booleans() count = %d, want 1", len(g.Booleans()))
	}
}

func TestChildren(t *testing.T) {
	g := New()

	childID := NodeID("box/shelf")
	parentID := NodeID("group/case")

	g.AddNode(&Node{
		ID: childID, Kind: NodePrimitive, Name: "shelf",
		Data: BoxData{Dimensions: Vec3{X: 600, Y: 300, Z: 19}},
	})
	g.AddNode(&Node{
		ID: parentID, Kind: NodeGroup, Name: "case",
		Children: []NodeID{childID},
		Data:     GroupData{},
	})

	parent := g.Get(parentID)
	children := g.Children(parent)
	if len(children) != 1 {
		t.Fatalf("Children count = %d, want 1", len(children))
	}
	if children[0].Name != "shelf" {
		t.Errorf("child name = %q, want %q", children[0].Name, "shelf")
	}
}

func TestVec3Add(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 5, Z: 6}
	sum := a.Add(b)
	if sum != (Vec3{X: 5, Y: 7, Z: 9}) {
		t.Errorf("Add = %v, want (5, 7, 9)", sum)
	}
}

func TestNodeDataInterface(t *testing.T) {
	var _ NodeData = BoxData{}
	var _ NodeData = CylinderData{}
	var _ NodeData = TransformData{}
	var _ NodeData = GroupData{}
	var _ NodeData = BooleanData{}
}

func TestNodeKindStringer(t *testing.T) {
	if NodePrimitive.String() != "primitive" {
		t.Errorf("NodePrimitive.String() = %q", NodePrimitive.String())
	}
	if NodeBoolean.String() != "boolean" {
		t.Errorf("NodeBoolean.String() = %q", NodeBoolean.String())
	}
	if NodeKind(99).String() != "unknown" {
		t.Errorf("unknown NodeKind should stringify to %q", "unknown")
	}
}

func TestNodeIDShort(t *testing.T) {
	id := NodeID("a-very-long-node-identifier")
	if len(id.Short()) != 8 {
		t.Errorf("Short() len = %d, want 8", len(id.Short()))
	}
	short := NodeID("abc")
	if short.Short() != "abc" {
		t.Errorf("Short() of a short id should be unchanged, got %q", short.Short())
	}
}
