package graph

import "github.com/chazu/meshbool/pkg/boolean"

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox PrimitiveKind = iota
	PrimCylinder
)

// BoxData represents an axis-aligned rectangular solid.
type BoxData struct {
	PrimKind   PrimitiveKind `json:"prim_kind"`
	Dimensions Vec3          `json:"dimensions"` // x, y, z extents
}

func (BoxData) nodeData() {}

// CylinderData represents a cylindrical solid along the Z axis.
type CylinderData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Height   float64       `json:"height"`
	Radius   float64       `json:"radius"`
	Segments int           `json:"segments"`
}

func (CylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ... :at ... :rotate ...) Lisp form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping. Its children are tessellated
// independently and their meshes collected; it performs no combination.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanData specifies a CSG combinator applied left-to-right across the
// node's children: children[0] op children[1] op children[2] ...
type BooleanData struct {
	Op boolean.Operator `json:"op"`
}

func (BooleanData) nodeData() {}
