// Package graph defines the design graph types for meshbool.
// The design graph is an immutable DAG of primitives, transforms, and
// boolean combinators that describes a constructive-solid-geometry tree
// to be walked by pkg/tessellate against a pkg/kernel.Kernel backend.
package graph
