package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/n0de/pkg/engine"
	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/node"
	"github.com/chazu/n0de/pkg/svg"
	"github.com/chazu/n0de/pkg/view"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// ViewUpdatedEvent is emitted to the frontend after every change to the
// document.
const ViewUpdatedEvent = "view:updated"

// errNotOpen is reported when an edit needs an opened n0de.
var errNotOpen = errors.New("no n0de is open")

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	logger *zap.Logger

	mu     sync.Mutex
	table  margins.Table
	view   *view.View
	source string
	edits  []socketEdit
	size   geom.Size
	sized  bool
}

// socketEdit is a socket added through the AddSocket binding. Edits are
// replayed on top of the script whenever the document is rebuilt.
type socketEdit struct {
	spec  node.SocketSpec
	dir   node.Direction
	index int
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ViewResult is the full result returned to the frontend.
type ViewResult struct {
	SVG      string          `json:"svg"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newViewResult() ViewResult {
	return ViewResult{Errors: []EvalErrorData{}, Warnings: []EvalErrorData{}}
}

func (r *ViewResult) addError(err error) {
	r.Errors = append(r.Errors, EvalErrorData{Message: err.Error()})
}

// NewApp creates a new App using the built-in margins table.
func NewApp(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		engine: engine.NewEngine(logger),
		logger: logger.Named("app"),
		table:  margins.Default(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
}

// Open evaluates a script and shows the n0de it declares. When the script
// has errors the previous document stays on screen.
// This is the primary binding called by the frontend editor.
func (a *App) Open(source string) ViewResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newViewResult()

	doc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate failed", zap.Error(err))
		result.addError(err)
		return a.finish(result)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return a.finish(result)
	}
	for _, w := range doc.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}

	if err := a.rebuild(doc, source, nil, &result); err != nil {
		result.addError(err)
	}
	return a.finish(result)
}

// FitToWindow records the window size and fits the opened n0de to it.
func (a *App) FitToWindow(w, h float64) ViewResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newViewResult()
	a.size = geom.S(w, h)
	a.sized = true
	if a.view != nil {
		if err := a.view.Resize(a.size); err != nil {
			result.addError(err)
		}
	}
	return a.finish(result)
}

// AddSocket adds or replaces a socket on the opened n0de. dir is "in" or
// "out".
func (a *App) AddSocket(label, typ, id, dir string, index int) ViewResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newViewResult()
	if a.view == nil || a.view.Outer() == nil {
		result.addError(errNotOpen)
		return a.finish(result)
	}
	edit := socketEdit{
		spec:  node.SocketSpec{Label: label, Type: typ, ID: id},
		dir:   node.Direction(dir),
		index: index,
	}
	if _, err := a.view.Outer().AddSocket(edit.spec, edit.dir, edit.index); err != nil {
		a.logger.Warn("add socket rejected", zap.String("id", id), zap.Error(err))
		result.addError(err)
		return a.finish(result)
	}
	a.edits = append(a.edits, edit)
	return a.finish(result)
}

// SetMargins swaps the margins table and rebuilds the current document
// with it.
func (a *App) SetMargins(t margins.Table) ViewResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newViewResult()
	a.table = t
	if a.view == nil {
		return a.finish(result)
	}
	doc, evalErrs, err := a.engine.Evaluate(a.source)
	switch {
	case err != nil:
		result.addError(err)
	case len(evalErrs) > 0:
		result.addError(evalErrs[0])
	default:
		if err := a.rebuild(doc, a.source, a.edits, &result); err != nil {
			result.addError(err)
		}
	}
	return a.finish(result)
}

// rebuild replaces the view with a fresh document for doc, evaluated from
// source, and replays edits on it. Nothing changes unless the document
// loads. A window too small for the margins is only a warning: the n0de
// keeps its initial size. Callers hold mu.
func (a *App) rebuild(doc *engine.Document, source string, edits []socketEdit, result *ViewResult) error {
	v, err := view.New(svg.NewSurface(a.logger), a.table, a.logger)
	if err != nil {
		return err
	}
	if err := v.Load(doc); err != nil {
		return err
	}
	for _, e := range edits {
		if v.Outer() == nil {
			return errNotOpen
		}
		if _, err := v.Outer().AddSocket(e.spec, e.dir, e.index); err != nil {
			return fmt.Errorf("replaying socket %q: %w", e.spec.ID, err)
		}
	}
	if a.sized {
		if err := v.Resize(a.size); err != nil {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: err.Error()})
		}
	}
	a.view, a.source, a.edits = v, source, edits
	return nil
}

// finish renders the current document into result and tells the frontend.
// Callers hold mu.
func (a *App) finish(result ViewResult) ViewResult {
	if a.view != nil {
		var buf bytes.Buffer
		if err := a.view.Render(&buf); err != nil {
			result.addError(err)
		} else {
			result.SVG = buf.String()
		}
	}
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, ViewUpdatedEvent, result)
	}
	return result
}
