// Command meshbool evaluates a CSG design-graph source file and reports
// the triangle meshes it produces.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/meshbool"
	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/kernel/exact"
	"github.com/chazu/meshbool/pkg/tessellate"
)

func main() {
	kernelName := flag.String("kernel", "sdfx", "geometry kernel to use: sdfx or exact")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: meshbool [-kernel sdfx|exact] <source.lignin>\n")
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading source: %v", err)
	}

	switch *kernelName {
	case "sdfx":
		runWithApp(string(src))
	case "exact":
		runWithKernel(string(src), exact.New(exact.Options{}))
	default:
		log.Fatalf("unknown kernel %q: want sdfx or exact", *kernelName)
	}
}

// runWithApp drives evaluation through meshboolapp.App, the same path a
// GUI frontend would use, with the default sdfx kernel.
func runWithApp(source string) {
	app := meshboolapp.NewApp()
	result := app.Evaluate(source)

	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error (line %d, col %d): %s\n", e.Line, e.Col, e.Message)
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}

	fmt.Printf("Meshes produced: %d\n", len(result.Meshes))
	for _, m := range result.Meshes {
		fmt.Printf("  - %s (%s): %d vertices, %d triangles\n",
			m.PartName, m.Color, len(m.Vertices)/3, len(m.Indices)/3)
	}
}

// runWithKernel drives evaluation directly against an arbitrary
// kernel.Kernel, bypassing App. Used to exercise non-default backends such
// as the exact mesh-cutting kernel from the command line.
func runWithKernel(source string, k kernel.Kernel) {
	eng := engine.NewEngine()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	for _, e := range evalErrs {
		fmt.Fprintf(os.Stderr, "error (line %d, col %d): %s\n", e.Line, e.Col, e.Message)
	}
	if len(evalErrs) > 0 {
		os.Exit(1)
	}

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		log.Fatalf("tessellate: %v", err)
	}

	fmt.Printf("Meshes produced: %d\n", len(meshes))
	for _, m := range meshes {
		fmt.Printf("  - %s: %d vertices, %d triangles\n", m.PartName, m.VertexCount(), m.TriangleCount())
	}
}
