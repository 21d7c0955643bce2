// Package boolean implements the mesh-cutting and region-classification
// pipeline at the core of a surface-mesh Boolean engine: given two closed
// polygonal meshes and a pre-computed contact curve between them, it
// produces the union, intersection, difference or symmetric difference of
// the two solids they bound.
//
// The pipeline is strictly sequential (see Combine): strip building, strip
// cleaning, cutting, point restoration, overlap resolution, adjacent-point
// insertion, polygon disjoining, point merging and region combination each
// consume the mesh state left by the previous stage. Nothing here computes
// the contact curve itself, nor does it sanitize the two input meshes —
// both are treated as external collaborators supplied by the caller.
package boolean
