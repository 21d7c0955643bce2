package meshboolapp

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty source: additional invariants beyond TestE2EEmptySource.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(defpart \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ESyntaxErrorSingleLineMissingParen(t *testing.T) {
	app := NewApp()

	result := app.Evaluate("(+ 1 2")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for missing closing paren")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("error message should not be empty")
	}
}

// ---------------------------------------------------------------------------
// 3. Undefined part reference.
// ---------------------------------------------------------------------------

func TestE2EUndefinedPartReference(t *testing.T) {
	app := NewApp()

	source := `
(defpart "shelf" (box :x 600 :y 300 :z 18))

(assembly "unit"
  (place (part "nonexistent") :at (vec3 0 0 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined part reference")
	}

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "nonexistent") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected error mentioning 'nonexistent', got: %v", result.Errors)
	}

	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EUndefinedPartReferenceStandalone(t *testing.T) {
	app := NewApp()

	// Standalone part reference without any defpart.
	source := `(part "ghost")`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for referencing undefined part")
	}

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "ghost") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected error mentioning 'ghost', got: %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// 4. Degenerate dimensions.
// ---------------------------------------------------------------------------

func TestE2EZeroDimensionBox(t *testing.T) {
	app := NewApp()

	source := `(defpart "bad" (box :x 0 :y 100 :z 19))`
	result := app.Evaluate(source)

	// The system should either produce an error or produce a (possibly
	// empty) mesh without panicking. Either outcome is acceptable.
	if len(result.Errors) > 0 {
		t.Logf("zero-dimension box produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	t.Logf("zero-dimension box produced %d meshes (no error)", len(result.Meshes))
}

func TestE2EAllZeroDimensions(t *testing.T) {
	app := NewApp()

	source := `(defpart "void" (box :x 0 :y 0 :z 0))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Logf("all-zero dimensions produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	t.Logf("all-zero dimensions produced %d meshes (no error)", len(result.Meshes))
}

func TestE2ENegativeDimension(t *testing.T) {
	app := NewApp()

	source := `(defpart "negative" (box :x -100 :y 100 :z 19))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Logf("negative dimension produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	t.Logf("negative dimension produced %d meshes (no error)", len(result.Meshes))
}

// ---------------------------------------------------------------------------
// 5. Rapid sequential evaluation: no panics, no data races.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// Simulates debounce: rapid sequential calls to Evaluate on the same App.
	// The engine holds a mutex, so rapid sequential calls exercise the
	// generation-counter and timeout paths. We verify no panics occur.
	app := NewApp()

	sources := []string{
		`(defpart "a" (box :x 100 :y 50 :z 10))`,
		`(defpart "b" (box :x 200 :y 100 :z 20))`,
		`(+ 1 2)`,
		``,
		`(defpart "c" (box :x 300 :y 150 :z 30))`,
		`(defpart "d" (cylinder :height 50 :radius 20 :segments 16))`,
		`(+ 100 200)`,
		``,
		`(defpart "e" (box :x 500 :y 250 :z 25))`,
		`(defpart "f" (box :x 600 :y 300 :z 18))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	app := NewApp()

	sources := []string{
		`(defpart "ok" (box :x 100 :y 50 :z 10))`,
		`(defpart "broken"`,
		``,
		`(part "missing")`,
		`(defpart "also-ok" (box :x 200 :y 100 :z 20))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(defpart "fine" (box :x 300 :y 150 :z 30))`,
		`(undefined-func 1 2 3)`,
		`(defpart "last" (box :x 400 :y 200 :z 18))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}
}

// ---------------------------------------------------------------------------
// 6. Large dimensions.
// ---------------------------------------------------------------------------

func TestE2ELargeDimensions(t *testing.T) {
	app := NewApp()

	source := `(defpart "huge" (box :x 10000 :y 10000 :z 19))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors for large box: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh for large box, got %d", len(result.Meshes))
	}

	m := result.Meshes[0]
	if len(m.Vertices) == 0 {
		t.Error("large box mesh should have vertices")
	}
	if len(m.Normals) == 0 {
		t.Error("large box mesh should have normals")
	}
	if len(m.Indices) == 0 {
		t.Error("large box mesh should have indices")
	}
	if m.PartName != "huge" {
		t.Errorf("expected part name 'huge', got %q", m.PartName)
	}
}

func TestE2EVeryLargeDimensions(t *testing.T) {
	app := NewApp()

	// 100,000 mm = 100 meters. Extreme but should not crash.
	source := `(defpart "giant" (box :x 100000 :y 50000 :z 100))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Logf("very large dimensions produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices")
	}
}

// ---------------------------------------------------------------------------
// 7. Multiple assemblies.
// ---------------------------------------------------------------------------

func TestE2EMultipleAssemblies(t *testing.T) {
	app := NewApp()

	source := `
(defpart "shelf-a" (box :x 600 :y 300 :z 18))
(defpart "shelf-b" (box :x 400 :y 200 :z 18))

(assembly "unit-a"
  (place (part "shelf-a") :at (vec3 0 0 0)))

(assembly "unit-b"
  (place (part "shelf-b") :at (vec3 700 0 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// Two assemblies, each with one part -> 2 meshes.
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes from two assemblies, got %d", len(result.Meshes))
	}

	names := make(map[string]bool)
	for _, m := range result.Meshes {
		names[m.PartName] = true
		if len(m.Vertices) == 0 {
			t.Errorf("mesh %q should have vertices", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned", m.PartName)
		}
	}

	if !names["shelf-a"] {
		t.Error("missing mesh for shelf-a")
	}
	if !names["shelf-b"] {
		t.Error("missing mesh for shelf-b")
	}
}

func TestE2EMultipleAssembliesWithSharedParts(t *testing.T) {
	app := NewApp()

	source := `
(defpart "panel" (box :x 300 :y 200 :z 18))
(defpart "rail" (box :x 300 :y 50 :z 18))

(assembly "frame-a"
  (place (part "panel") :at (vec3 0 0 0))
  (place (part "rail")  :at (vec3 0 200 0)))

(assembly "frame-b"
  (place (part "panel") :at (vec3 500 0 0))
  (place (part "rail")  :at (vec3 500 200 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// Two assemblies, each referencing the same 2 parts. Each assembly
	// places 2 parts, so expect 4 meshes total.
	if len(result.Meshes) != 4 {
		t.Fatalf("expected 4 meshes from two assemblies sharing parts, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 8. Standalone defparts / combinators: implicit-root tessellation fallback.
// ---------------------------------------------------------------------------

func TestE2EStandaloneDefpart(t *testing.T) {
	app := NewApp()

	source := `(defpart "shelf" (box :x 600 :y 300 :z 18))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// No assembly means no roots, so the tessellator falls back to all
	// top-level primitives.
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh from standalone defpart, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "shelf" {
		t.Errorf("expected part name 'shelf', got %q", result.Meshes[0].PartName)
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("standalone defpart mesh should have vertices")
	}
}

func TestE2EMultipleStandaloneDefparts(t *testing.T) {
	app := NewApp()

	source := `
(defpart "top" (box :x 600 :y 300 :z 18))
(defpart "bottom" (box :x 600 :y 300 :z 18))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	// Two standalone defparts, no assembly -> tessellator produces 2 meshes.
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes from two standalone defparts, got %d", len(result.Meshes))
	}

	names := make(map[string]bool)
	for _, m := range result.Meshes {
		names[m.PartName] = true
	}
	if !names["top"] {
		t.Error("missing mesh for 'top'")
	}
	if !names["bottom"] {
		t.Error("missing mesh for 'bottom'")
	}
}

func TestE2EStandaloneBooleanCombinator(t *testing.T) {
	app := NewApp()

	// A union with no assembly: the boolean node itself is the implicit
	// root, and its two operand parts are not separately visible since
	// they are referenced as its children.
	source := `
(defpart "a" (box :x 40 :y 40 :z 40))
(defpart "b" (cylinder :height 60 :radius 15 :segments 24))
(union "hull" (part "a") (part "b"))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh from standalone union, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "hull" {
		t.Errorf("expected part name 'hull', got %q", result.Meshes[0].PartName)
	}
}

// ---------------------------------------------------------------------------
// 9. Comments-only source.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()

	source := `
;; This is a comment
;; Another comment
; And another
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments-only source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for comments-only source, got %d", len(result.Meshes))
	}
}

func TestE2ECommentsWithWhitespace(t *testing.T) {
	app := NewApp()

	source := `
  ;; leading whitespace
  ;; trailing whitespace
  ; tabs	everywhere
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments+whitespace source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 10. Nested arithmetic in def expressions.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := NewApp()

	source := `
(def w (* 2 150))
(defpart "wide-shelf" (box :x w :y 200 :z 18))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "wide-shelf" {
		t.Errorf("expected part name 'wide-shelf', got %q", result.Meshes[0].PartName)
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices")
	}
}

func TestE2EComplexArithmeticExpressions(t *testing.T) {
	app := NewApp()

	source := `
(def base-length 400)
(def margin 19)
(def inner-length (- base-length (* 2 margin)))
(def thickness 19)

(defpart "inner-panel" (box :x inner-length :y 200 :z thickness))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}

	// inner-length = 400 - 2*19 = 362. The mesh should have non-empty geometry.
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("mesh should have vertices for computed dimensions")
	}
}

func TestE2ENestedDefWithDivision(t *testing.T) {
	app := NewApp()

	source := `
(def total 600)
(def half (/ total 2))
(defpart "half-shelf" (box :x half :y 200 :z 18))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// Additional edge cases
// ---------------------------------------------------------------------------

func TestE2EWhitespaceOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("   \n\t\n   \n")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for whitespace-only source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for whitespace-only source, got %d", len(result.Meshes))
	}
}

func TestE2EDefpartMissingBody(t *testing.T) {
	app := NewApp()

	// defpart with name but no box/cylinder expression.
	source := `(defpart "oops")`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for defpart with no body")
	}
}

func TestE2EAssemblyNoChildren(t *testing.T) {
	app := NewApp()

	// An assembly with just a name and no place children.
	source := `(assembly "empty-asm")`
	result := app.Evaluate(source)

	// Should not panic. May produce 0 meshes or an error -- both acceptable.
	if len(result.Errors) > 0 {
		t.Logf("empty assembly produced error (acceptable): %s", result.Errors[0].Message)
		return
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty assembly, got %d", len(result.Meshes))
	}
}

func TestE2EFloatingPointDimensions(t *testing.T) {
	app := NewApp()

	source := `(defpart "precise" (box :x 123.456 :y 78.9 :z 12.7))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Vertices) == 0 {
		t.Error("floating-point dimension mesh should have vertices")
	}
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := NewApp()

	// More parts than the palette likely has colors, to exercise wrapping.
	source := `
(defpart "p1" (box :x 100 :y 50 :z 10))
(defpart "p2" (box :x 100 :y 50 :z 10))
(defpart "p3" (box :x 100 :y 50 :z 10))
(defpart "p4" (box :x 100 :y 50 :z 10))
(defpart "p5" (box :x 100 :y 50 :z 10))
(defpart "p6" (box :x 100 :y 50 :z 10))
(defpart "p7" (box :x 100 :y 50 :z 10))
(defpart "p8" (box :x 100 :y 50 :z 10))
(defpart "p9" (box :x 100 :y 50 :z 10))

(assembly "many"
  (place (part "p1") :at (vec3 0 0 0))
  (place (part "p2") :at (vec3 110 0 0))
  (place (part "p3") :at (vec3 220 0 0))
  (place (part "p4") :at (vec3 330 0 0))
  (place (part "p5") :at (vec3 440 0 0))
  (place (part "p6") :at (vec3 550 0 0))
  (place (part "p7") :at (vec3 660 0 0))
  (place (part "p8") :at (vec3 770 0 0))
  (place (part "p9") :at (vec3 880 0 0)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}

	if len(result.Meshes) != 9 {
		t.Fatalf("expected 9 meshes, got %d", len(result.Meshes))
	}

	// All meshes must have a non-empty color (palette wraps around).
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned (palette wrapping)", m.PartName)
		}
	}
}
