package engine

import (
	"strings"
	"testing"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(n0de :id "adder")`,
			expect: `(n0de "__kw_id" "adder")`,
		},
		{
			name:   "multiple keywords",
			input:  `(input :label "a" :at 0)`,
			expect: `(input "__kw_label" "a" "__kw_at" 0)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `(n0de :type "say \"hi :x\"" :id "q")`,
			expect: `(n0de "__kw_type" "say \"hi :x\"" "__kw_id" "q")`,
		},
		{
			name:   "unterminated string",
			input:  `(input :label "open :at`,
			expect: `(input "__kw_label" "open :at`,
		},
		{
			name:   "subtraction with a number",
			input:  `(vec2 x-1 -5)`,
			expect: `(vec2 x-1 -5)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(socket-type :socket-id ref)`,
			expect: `(socket_type "__kw_socket-id" ref)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "comment ends at newline",
			input:  "; note\n(inner :id \"k\")",
			expect: "// note\n(inner \"__kw_id\" \"k\")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) *Document {
	t.Helper()
	doc, evalErrs, err := NewEngine(nil).Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return doc
}

// evalFails evaluates source and returns the eval errors, failing the test
// if there are none.
func evalFails(t *testing.T, source string) []EvalError {
	t.Helper()
	doc, evalErrs, err := NewEngine(nil).Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatalf("expected eval errors, got document %+v", doc)
	}
	if doc != nil {
		t.Error("expected nil document alongside eval errors")
	}
	return evalErrs
}

// ---------------------------------------------------------------------------
// n0de
// ---------------------------------------------------------------------------

func TestN0deDeclaration(t *testing.T) {
	doc := evalOK(t, `(n0de :id "adder" :type "Adder")`)

	if !doc.Declared {
		t.Fatal("expected n0de to be declared")
	}
	if doc.Outer.ID != "adder" {
		t.Errorf("id = %q, want adder", doc.Outer.ID)
	}
	if doc.Outer.Type != "Adder" {
		t.Errorf("type = %q, want Adder", doc.Outer.Type)
	}
}

func TestN0deWithoutIDGetsUUID(t *testing.T) {
	doc := evalOK(t, `(n0de :type "Adder")`)

	if _, err := uuid.Parse(doc.Outer.ID); err != nil {
		t.Errorf("expected generated uuid, got %q: %v", doc.Outer.ID, err)
	}
}

func TestN0deDeclaredTwice(t *testing.T) {
	errs := evalFails(t, `
(n0de :id "a")
(n0de :id "b")
`)
	if !strings.Contains(errs[0].Message, "already declared") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestN0deBadIDType(t *testing.T) {
	evalFails(t, `(n0de :id 42)`)
}

// ---------------------------------------------------------------------------
// input / output
// ---------------------------------------------------------------------------

func TestInputsAndOutputs(t *testing.T) {
	doc := evalOK(t, `
(n0de :id "adder" :type "Adder")
(input :label "a" :type "num" :id "a")
(input :label "b" :type "num" :id "b")
(output :label "sum" :type "num" :id "sum")
`)

	if len(doc.Outer.Inputs) != 2 {
		t.Fatalf("inputs = %d, want 2", len(doc.Outer.Inputs))
	}
	if doc.Outer.Inputs[0].ID != "a" || doc.Outer.Inputs[1].ID != "b" {
		t.Errorf("inputs out of order: %+v", doc.Outer.Inputs)
	}
	if len(doc.Outer.Outputs) != 1 {
		t.Fatalf("outputs = %d, want 1", len(doc.Outer.Outputs))
	}
	out := doc.Outer.Outputs[0]
	if out.Label != "sum" || out.Type != "num" || out.ID != "sum" {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestSocketAtOverwrites(t *testing.T) {
	doc := evalOK(t, `
(n0de :id "x")
(output :label "first" :id "o1")
(output :label "second" :id "o2" :at 0)
`)

	if len(doc.Outer.Outputs) != 1 {
		t.Fatalf("outputs = %d, want 1", len(doc.Outer.Outputs))
	}
	if doc.Outer.Outputs[0].ID != "o2" {
		t.Errorf("output 0 = %q, want o2", doc.Outer.Outputs[0].ID)
	}
}

func TestSocketAtEndAppends(t *testing.T) {
	doc := evalOK(t, `
(n0de :id "x")
(input :label "a" :id "a" :at 0)
(input :label "b" :id "b" :at 1)
`)
	if len(doc.Outer.Inputs) != 2 {
		t.Fatalf("inputs = %d, want 2", len(doc.Outer.Inputs))
	}
}

func TestSocketAtOutOfRange(t *testing.T) {
	errs := evalFails(t, `
(n0de :id "x")
(input :label "a" :id "a" :at 2)
`)
	if !strings.Contains(errs[0].Message, "out of range") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestSocketAtNotWhole(t *testing.T) {
	evalFails(t, `
(n0de :id "x")
(input :label "a" :id "a" :at 0.5)
`)
}

func TestSocketWithoutN0de(t *testing.T) {
	errs := evalFails(t, `(input :label "a" :id "a")`)
	if !strings.Contains(errs[0].Message, "no n0de declared") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestSocketRequiresID(t *testing.T) {
	errs := evalFails(t, `
(n0de :id "x")
(output :label "sum")
`)
	if !strings.Contains(errs[0].Message, "requires :id") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestDuplicateSocketIDRejected(t *testing.T) {
	errs := evalFails(t, `
(n0de :id "x")
(input :label "a" :id "dup")
(output :label "b" :id "dup")
`)
	if !strings.Contains(errs[0].Message, "dup") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestMissingLabelWarns(t *testing.T) {
	doc := evalOK(t, `
(n0de :id "x")
(input :type "num" :id "a")
`)
	if len(doc.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(doc.Warnings))
	}
	if doc.Warnings[0].SocketID != "a" {
		t.Errorf("warning socket = %q, want a", doc.Warnings[0].SocketID)
	}
}

// ---------------------------------------------------------------------------
// vec2 / inner
// ---------------------------------------------------------------------------

func TestInnerNode(t *testing.T) {
	doc := evalOK(t, `
(n0de :id "adder")
(inner :id "k" :type "Const" :at (vec2 40 60)
       :outputs (list (socket :label "value" :type "num" :id "v")))
`)

	if len(doc.Inner) != 1 {
		t.Fatalf("inner = %d, want 1", len(doc.Inner))
	}
	in := doc.Inner[0]
	if in.ID != "k" || in.Type != "Const" {
		t.Errorf("unexpected inner %+v", in.Spec)
	}
	if in.At != geom.V(40, 60) {
		t.Errorf("at = %v, want (40, 60)", in.At)
	}
	if len(in.Outputs) != 1 || in.Outputs[0].ID != "v" {
		t.Errorf("unexpected outputs %+v", in.Outputs)
	}
}

func TestInnerWithoutOuter(t *testing.T) {
	doc := evalOK(t, `(inner :type "Const")`)
	if doc.Declared {
		t.Error("inner must not declare the outer n0de")
	}
	if len(doc.Inner) != 1 || doc.Inner[0].ID == "" {
		t.Errorf("expected one inner node with a generated id, got %+v", doc.Inner)
	}
}

func TestInnerDuplicateID(t *testing.T) {
	evalFails(t, `
(inner :id "k")
(inner :id "k")
`)
}

func TestInnerAtRequiresVec2(t *testing.T) {
	errs := evalFails(t, `(inner :id "k" :at 5)`)
	if !strings.Contains(errs[0].Message, "expected vec2") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestInnerInputsRequireSockets(t *testing.T) {
	evalFails(t, `(inner :id "k" :inputs (list 1 2))`)
}

func TestVec2WrongArity(t *testing.T) {
	errs := evalFails(t, `(inner :id "k" :at (vec2 1))`)
	if !strings.Contains(errs[0].Message, "exactly 2") {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestVariableReference(t *testing.T) {
	doc := evalOK(t, `
(def origin (vec2 10 20))
(inner :id "a" :at origin)
(inner :id "b" :at origin)
`)
	if len(doc.Inner) != 2 {
		t.Fatalf("inner = %d, want 2", len(doc.Inner))
	}
	if doc.Inner[1].At != geom.V(10, 20) {
		t.Errorf("at = %v, want (10, 20)", doc.Inner[1].At)
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	doc := evalOK(t, `(inner :id "k" :at (vec2 (+ 10 5) (* 2 3)))`)
	if doc.Inner[0].At != geom.V(15, 6) {
		t.Errorf("at = %v, want (15, 6)", doc.Inner[0].At)
	}
}
