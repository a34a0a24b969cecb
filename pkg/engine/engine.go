// Package engine evaluates n0de scripts. It wraps zygomys in a sandboxed
// environment and turns a script into the specs of the outer node and the
// inner nodes it contains.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/node"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a problem that does not stop the document from
// being displayed.
type EvalWarning struct {
	Message  string
	SocketID string
}

// InnerSpec places an inner node inside the outer node.
type InnerSpec struct {
	node.Spec
	At geom.Vec
}

// Document is the result of evaluating a script.
type Document struct {
	Outer    node.Spec
	Declared bool // whether the script declared an outer node
	Inner    []InnerSpec
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	logger     *zap.Logger
}

// NewEngine creates a new Engine instance.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger.Named("engine")}
}

// Evaluate takes script source and produces a Document.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns document + nil errors + nil error
//   - On parse/eval failure: returns nil document + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Document, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		doc, evalErrs, err := e.evaluate(source)
		ch <- evalResult{doc: doc, errors: evalErrs, err: err}
	}()

	doc, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation)
	switch {
	case err != nil:
		e.logger.Error("evaluation failed", zap.Uint64("generation", gen), zap.Error(err))
	case len(evalErrs) > 0:
		e.logger.Debug("evaluation reported errors", zap.Uint64("generation", gen), zap.Int("errors", len(evalErrs)))
	default:
		e.logger.Debug("evaluation finished", zap.Uint64("generation", gen),
			zap.Bool("declared", doc.Declared), zap.Int("inner", len(doc.Inner)))
	}
	return doc, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Document, []EvalError, error) {
	doc := &Document{}

	// Empty source is a valid program that declares nothing.
	if strings.TrimSpace(source) == "" {
		return doc, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, doc)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if evalErrs := validateDocument(doc); len(evalErrs) > 0 {
		return nil, evalErrs, nil
	}
	return doc, nil, nil
}

// validateDocument checks every declared node. Missing labels only warn;
// anything that would stop a node from being built is an error.
func validateDocument(doc *Document) []EvalError {
	var evalErrs []EvalError
	check := func(spec node.Spec) {
		for _, v := range node.Validate(spec) {
			if v.Code == "MISSING_SOCKET_LABEL" {
				doc.Warnings = append(doc.Warnings, EvalWarning{Message: v.Message, SocketID: v.SocketID})
				continue
			}
			evalErrs = append(evalErrs, EvalError{Message: fmt.Sprintf("n0de %q: %s", spec.ID, v.Error())})
		}
	}
	if doc.Declared {
		check(doc.Outer)
	}
	for _, in := range doc.Inner {
		check(in.Spec)
	}
	return evalErrs
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
