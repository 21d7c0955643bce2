package graph

// NodeID identifies a node in the design graph; see NewNodeID for how ids
// are formed.
type NodeID string

// NewNodeID wraps a caller-chosen string as a NodeID. Callers that want
// real content-addressing should derive the string themselves (e.g. a hash
// of the node's canonical form); this is the identity case used by tests
// and by callers that already have a stable name to key nodes by.
func NewNodeID(s string) NodeID { return NodeID(s) }

// Short returns a shortened form of the id suitable for diagnostics.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Vec3 is a 3-D vector used for translations, rotations and dimensions.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}
