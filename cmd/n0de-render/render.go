package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chazu/n0de/pkg/engine"
	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/svg"
	"github.com/chazu/n0de/pkg/view"
	"go.uber.org/zap"
)

// scriptError carries the evaluation errors of a script that could not be
// rendered.
type scriptError struct {
	errs []engine.EvalError
}

func (e *scriptError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return "script errors: " + strings.Join(msgs, "; ")
}

// renderer turns scripts into SVG documents. The margins table may be
// swapped while renders are running.
type renderer struct {
	mu    sync.RWMutex
	table margins.Table

	// evalMu serializes evaluation. The engine cancels all but its newest
	// request, and zygomys sandboxes cannot be created concurrently.
	evalMu sync.Mutex
	engine *engine.Engine
	logger *zap.Logger
}

func newRenderer(t margins.Table, logger *zap.Logger) *renderer {
	return &renderer{table: t, engine: engine.NewEngine(logger), logger: logger}
}

func (r *renderer) setTable(t margins.Table) {
	r.mu.Lock()
	r.table = t
	r.mu.Unlock()
}

func (r *renderer) currentTable() margins.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// render evaluates source and writes the resulting document, sized to the
// given viewport, to w.
func (r *renderer) render(w io.Writer, source string, size geom.Size) error {
	doc, evalErrs, err := r.evaluate(source)
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		return &scriptError{errs: evalErrs}
	}
	for _, warn := range doc.Warnings {
		r.logger.Warn("script warning", zap.String("socket", warn.SocketID), zap.String("message", warn.Message))
	}

	v, err := view.New(svg.NewSurface(r.logger), r.currentTable(), r.logger)
	if err != nil {
		return err
	}
	if err := v.Load(doc); err != nil {
		return err
	}
	if err := v.Resize(size); err != nil {
		return fmt.Errorf("viewport %s: %w", size, err)
	}
	return v.Render(w)
}

func (r *renderer) evaluate(source string) (*engine.Document, []engine.EvalError, error) {
	r.evalMu.Lock()
	defer r.evalMu.Unlock()
	return r.engine.Evaluate(source)
}
