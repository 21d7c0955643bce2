// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per part; a boolean node's
// children are combined into a single solid before tessellation.
package tessellate

import (
	"fmt"
	"sort"

	"github.com/chazu/meshbool/pkg/boolean"
	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/kernel"
)

// transformStack accumulates spatial transforms during graph traversal.
type transformStack struct {
	translations []graph.Vec3
	rotations    []graph.Vec3
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) pushTranslation(v graph.Vec3) {
	ts.translations = append(ts.translations, v)
}

func (ts *transformStack) pushRotation(v graph.Vec3) {
	ts.rotations = append(ts.rotations, v)
}

func (ts *transformStack) pop() {
	if len(ts.translations) > 0 {
		ts.translations = ts.translations[:len(ts.translations)-1]
	}
	if len(ts.rotations) > 0 {
		ts.rotations = ts.rotations[:len(ts.rotations)-1]
	}
}

// accumulatedTranslation returns the sum of all translations on the stack.
func (ts *transformStack) accumulatedTranslation() graph.Vec3 {
	var sum graph.Vec3
	for _, t := range ts.translations {
		sum = sum.Add(t)
	}
	return sum
}

// accumulatedRotation returns the sum of all rotations on the stack.
func (ts *transformStack) accumulatedRotation() graph.Vec3 {
	var sum graph.Vec3
	for _, r := range ts.rotations {
		sum = sum.Add(r)
	}
	return sum
}

// Tessellate walks the design graph and produces one triangle mesh per
// primitive or boolean-combined part using the provided geometry kernel.
// The tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	ts := newTransformStack()

	roots := g.Roots
	if len(roots) == 0 {
		// No assembly declared any roots: fall back to rendering every
		// top-level primitive or boolean node, so a bare defpart or a
		// standalone union/difference/etc. is still visible.
		roots = topLevelNodes(g)
	}

	for _, rootID := range roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// topLevelNodes returns the IDs of every primitive or boolean node that is
// not referenced as a child of any other node, sorted for deterministic
// output. Used as the implicit root set when a graph declares no assemblies,
// so a standalone defpart or a standalone union/difference/etc. still
// produces a mesh without requiring an explicit assembly wrapper.
func topLevelNodes(g *graph.DesignGraph) []graph.NodeID {
	referenced := make(map[graph.NodeID]bool)
	for _, n := range g.Nodes {
		for _, cid := range n.Children {
			referenced[cid] = true
		}
	}

	var ids []graph.NodeID
	for _, n := range g.Nodes {
		if referenced[n.ID] {
			continue
		}
		if n.Kind == graph.NodePrimitive || n.Kind == graph.NodeBoolean {
			ids = append(ids, n.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// walkNode recursively traverses a node and its children, collecting one
// mesh per part encountered.
func walkNode(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return handlePrimitive(k, n, ts)

	case graph.NodeTransform:
		return handleTransform(g, k, n, ts)

	case graph.NodeGroup:
		return handleGroup(g, k, n, ts)

	case graph.NodeBoolean:
		return handleBoolean(g, k, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// nodeSolid resolves a node to a single kernel.Solid, for use as a boolean
// operand. Unlike walkNode it never splits a subtree into multiple parts:
// a transform or group node used this way must have exactly one child.
func nodeSolid(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return primitiveSolid(k, n, ts)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		translation, rotation := graph.Vec3{}, graph.Vec3{}
		if td.Translation != nil {
			translation = *td.Translation
		}
		if td.Rotation != nil {
			rotation = *td.Rotation
		}
		ts.pushTranslation(translation)
		ts.pushRotation(rotation)
		defer ts.pop()

		children := g.Children(n)
		if len(children) != 1 {
			return nil, fmt.Errorf("transform node %s used as a boolean operand must have exactly one child, has %d", n.ID.Short(), len(children))
		}
		return nodeSolid(g, k, children[0], ts)

	case graph.NodeGroup:
		children := g.Children(n)
		if len(children) != 1 {
			return nil, fmt.Errorf("group node %s used as a boolean operand must have exactly one child, has %d", n.ID.Short(), len(children))
		}
		return nodeSolid(g, k, children[0], ts)

	case graph.NodeBoolean:
		return booleanSolid(g, k, n, ts)

	default:
		return nil, fmt.Errorf("node %s cannot be used as a boolean operand", n.ID.Short())
	}
}

// primitiveSolid builds and transforms the solid for a primitive node,
// without converting it to a mesh.
func primitiveSolid(k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	var solid kernel.Solid

	switch data := n.Data.(type) {
	case graph.BoxData:
		solid = k.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z)
	case graph.CylinderData:
		solid = k.Cylinder(data.Height, data.Radius, data.Segments)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	// Apply accumulated rotation first, then translation.
	rot := ts.accumulatedRotation()
	if rot.X != 0 || rot.Y != 0 || rot.Z != 0 {
		solid = k.Rotate(solid, rot.X, rot.Y, rot.Z)
	}

	trans := ts.accumulatedTranslation()
	if trans.X != 0 || trans.Y != 0 || trans.Z != 0 {
		solid = k.Translate(solid, trans.X, trans.Y, trans.Z)
	}

	return solid, nil
}

// handlePrimitive creates geometry for a primitive node.
func handlePrimitive(k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	solid, err := primitiveSolid(k, n, ts)
	if err != nil {
		return nil, err
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	namePart(mesh, n)
	return []*kernel.Mesh{mesh}, nil
}

// booleanSolid folds a boolean node's children into a single solid via the
// kernel's own Union/Difference/Intersection primitives, left-to-right.
// SymmetricDifference is expressed as Union(Difference(a,b), Difference(b,a)),
// the definition pkg/boolean gives for its own SymmetricDifference operator.
func booleanSolid(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	children := g.Children(n)
	if len(children) < 2 {
		return nil, fmt.Errorf("boolean node %s needs at least two children, has %d", n.ID.Short(), len(children))
	}

	acc, err := nodeSolid(g, k, children[0], ts)
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		other, err := nodeSolid(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		switch bd.Op {
		case boolean.Union:
			acc = k.Union(acc, other)
		case boolean.Intersection:
			acc = k.Intersection(acc, other)
		case boolean.Difference:
			acc = k.Difference(acc, other)
		case boolean.SymmetricDifference:
			acc = k.Union(k.Difference(acc, other), k.Difference(other, acc))
		default:
			return nil, fmt.Errorf("boolean node %s has unsupported operator %v", n.ID.Short(), bd.Op)
		}
	}
	return acc, nil
}

// handleBoolean combines a boolean node's children into one solid and
// tessellates the result as a single part.
func handleBoolean(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	solid, err := booleanSolid(g, k, n, ts)
	if err != nil {
		return nil, err
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	namePart(mesh, n)
	return []*kernel.Mesh{mesh}, nil
}

// namePart sets a mesh's part name from its originating node.
func namePart(mesh *kernel.Mesh, n *graph.Node) {
	if n.Name != "" {
		mesh.PartName = n.Name
	} else {
		mesh.PartName = n.ID.Short()
	}
}

// handleTransform pushes the transform, recurses into children, then pops.
func handleTransform(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	// Push transform onto the stack.
	translation := graph.Vec3{}
	rotation := graph.Vec3{}
	if td.Translation != nil {
		translation = *td.Translation
	}
	if td.Rotation != nil {
		rotation = *td.Rotation
	}
	ts.pushTranslation(translation)
	ts.pushRotation(rotation)

	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			ts.pop()
			return nil, err
		}
		meshes = append(meshes, collected...)
	}

	ts.pop()
	return meshes, nil
}

// handleGroup recurses into children transparently.
func handleGroup(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node, ts *transformStack) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for _, child := range g.Children(n) {
		collected, err := walkNode(g, k, child, ts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
