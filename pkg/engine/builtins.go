package engine

import (
	"fmt"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/node"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef is returned by n0de and inner so scripts can print what they
// declared.
type sexpNodeRef struct {
	id  string
	typ string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(n0de %q %q)", n.id, n.typ)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpSocket wraps a node.SocketSpec so it can be passed to inner.
type sexpSocket struct {
	spec node.SocketSpec
}

func (s *sexpSocket) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(socket :id %q :label %q :type %q)", s.spec.ID, s.spec.Label, s.spec.Type)
}
func (s *sexpSocket) Type() *zygo.RegisteredType { return nil }

// sexpVec2 wraps a geom.Vec.
type sexpVec2 struct {
	vec geom.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %.1f %.1f)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Shared argument decoding
// ---------------------------------------------------------------------------

// socketSpecArgs reads :label, :type and :id.
func socketSpecArgs(fn string, pa kwArgs) (node.SocketSpec, error) {
	var spec node.SocketSpec
	var err error
	if spec.Label, err = pa.str("label", ""); err != nil {
		return spec, fmt.Errorf("%s: label: %w", fn, err)
	}
	if spec.Type, err = pa.str("type", ""); err != nil {
		return spec, fmt.Errorf("%s: type: %w", fn, err)
	}
	if spec.ID, err = pa.str("id", ""); err != nil {
		return spec, fmt.Errorf("%s: id: %w", fn, err)
	}
	if spec.ID == "" {
		return spec, fmt.Errorf("%s requires :id", fn)
	}
	return spec, nil
}

// placeSocket appends spec to seq, or overwrites the entry at :at.
// :at may equal len(seq), which appends.
func placeSocket(fn string, seq []node.SocketSpec, spec node.SocketSpec, pa kwArgs) ([]node.SocketSpec, error) {
	v, ok := pa.kw["at"]
	if !ok {
		return append(seq, spec), nil
	}
	at, err := toInt(v)
	if err != nil {
		return seq, fmt.Errorf("%s: at: %w", fn, err)
	}
	switch {
	case at < 0 || at > len(seq):
		return seq, fmt.Errorf("%s: at %d out of range 0..%d", fn, at, len(seq))
	case at == len(seq):
		return append(seq, spec), nil
	}
	seq[at] = spec
	return seq, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the n0de DSL builtins into a zygomys environment.
// The builtins fill in doc during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, doc *Document) {
	innerIDs := make(map[string]bool)

	// -----------------------------------------------------------------------
	// (n0de :id "adder" :type "Adder")
	// -----------------------------------------------------------------------
	env.AddFunction("n0de", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if doc.Declared {
			return zygo.SexpNull, fmt.Errorf("n0de: already declared as %q", doc.Outer.ID)
		}
		pa := parseArgs(args)

		id, err := pa.str("id", "")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("n0de: id: %w", err)
		}
		if id == "" {
			id = uuid.NewString()
		}
		typ, err := pa.str("type", "")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("n0de: type: %w", err)
		}

		doc.Outer = node.Spec{ID: id, Type: typ}
		doc.Declared = true
		return &sexpNodeRef{id: id, typ: typ}, nil
	})

	// -----------------------------------------------------------------------
	// (input :label "a" :type "num" :id "a" :at 0)
	// (output :label "sum" :type "num" :id "sum")
	// -----------------------------------------------------------------------
	outerSocket := func(fn string, seq *[]node.SocketSpec) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if !doc.Declared {
				return zygo.SexpNull, fmt.Errorf("%s: no n0de declared", fn)
			}
			pa := parseArgs(args)
			spec, err := socketSpecArgs(fn, pa)
			if err != nil {
				return zygo.SexpNull, err
			}
			updated, err := placeSocket(fn, *seq, spec, pa)
			if err != nil {
				return zygo.SexpNull, err
			}
			*seq = updated
			return &sexpSocket{spec: spec}, nil
		}
	}
	env.AddFunction("input", outerSocket("input", &doc.Outer.Inputs))
	env.AddFunction("output", outerSocket("output", &doc.Outer.Outputs))

	// -----------------------------------------------------------------------
	// (socket :label "k" :type "num" :id "k")
	// -----------------------------------------------------------------------
	env.AddFunction("socket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		spec, err := socketSpecArgs("socket", parseArgs(args))
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSocket{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (vec2 40 60)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}

		return &sexpVec2{vec: geom.V(x, y)}, nil
	})

	// -----------------------------------------------------------------------
	// (inner :id "k" :type "Const" :at (vec2 40 60)
	//        :inputs (list (socket ...)) :outputs (list (socket ...)))
	// -----------------------------------------------------------------------
	env.AddFunction("inner", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var in InnerSpec
		var err error

		if in.ID, err = pa.str("id", ""); err != nil {
			return zygo.SexpNull, fmt.Errorf("inner: id: %w", err)
		}
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		if innerIDs[in.ID] {
			return zygo.SexpNull, fmt.Errorf("inner: duplicate id %q", in.ID)
		}
		if in.Type, err = pa.str("type", ""); err != nil {
			return zygo.SexpNull, fmt.Errorf("inner: type: %w", err)
		}
		if v, ok := pa.kw["at"]; ok {
			if in.At, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("inner: at: %w", err)
			}
		}
		if v, ok := pa.kw["inputs"]; ok {
			if in.Inputs, err = toSockets(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("inner: inputs: %w", err)
			}
		}
		if v, ok := pa.kw["outputs"]; ok {
			if in.Outputs, err = toSockets(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("inner: outputs: %w", err)
			}
		}

		innerIDs[in.ID] = true
		doc.Inner = append(doc.Inner, in)
		return &sexpNodeRef{id: in.ID, typ: in.Type}, nil
	})
}
