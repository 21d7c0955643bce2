package boolean

// Capture classifies how a StripPoint binds to its host polygon.
type Capture int

const (
	// CaptNone: strict polygon interior, degree-2 node.
	CaptNone Capture = iota
	// CaptA: coincides with the edge-start vertex of the captured edge.
	CaptA
	// CaptEdge: strictly interior to an edge.
	CaptEdge
	// CaptBranched: interior to the polygon but shared by >= 3 contact lines.
	CaptBranched
)

func (c Capture) String() string {
	switch c {
	case CaptNone:
		return "None"
	case CaptA:
		return "A"
	case CaptEdge:
		return "Edge"
	case CaptBranched:
		return "Branched"
	default:
		return "Unknown"
	}
}

// IsBoundary reports whether the capture is on the polygon boundary
// (vertex or edge), as opposed to None or Branched.
func (c Capture) IsBoundary() bool { return c == CaptA || c == CaptEdge }

// StripPoint is one endpoint of a contact line, localised against a
// specific host polygon. See spec section 3.
type StripPoint struct {
	Ind int // index into the contact curve point array
	Pt  Point

	CaptPt Point // snapped coordinate used for cutting
	CutPt  Point // CaptPt for boundary captures, else Pt

	Edge    [2]int // directed polygon edge (u, v); valid iff Capt.IsBoundary()
	HasEdge bool
	T       float64 // parameter along Edge, clamped to [0, 1]

	Capt    Capture
	PolyID  int
	Catched bool // false only if a source vertex was declared and no incident edge was found
}
