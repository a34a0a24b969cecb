// Package view hosts an opened node in an SVG document. It owns the
// document-level definitions the outer node relies on, the group that holds
// nested content, and the viewport size the outer node is fitted to.
package view

import (
	"errors"
	"fmt"
	"io"

	"github.com/chazu/n0de/pkg/engine"
	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/node"
	"github.com/chazu/n0de/pkg/outer"
	"github.com/chazu/n0de/pkg/svg"
	"go.uber.org/zap"
)

// ContentID is the id of the group holding inner nodes.
const ContentID = "n0deContent"

var (
	// ErrAlreadyOpen is returned by Open while another node is open.
	ErrAlreadyOpen = errors.New("view: a n0de is already open")
	// ErrDuplicateInner is returned when an inner node id is reused.
	ErrDuplicateInner = errors.New("view: duplicate inner n0de")
)

const stylesheet = `
.n0de .frame { fill: #2b2d31; stroke: #5c5f66; stroke-width: 1; }
.n0de .title { fill: #e3e5e8; font: 12px sans-serif; }
.outerN0deFrame { fill: none; stroke: #8e9297; stroke-width: 2; }
.s0cket circle { fill: #5865f2; }
.s0cket.inner circle { fill: #3ba55c; }
.s0cket text { fill: #b9bbbe; font: 10px sans-serif; }
`

// View is a document with at most one opened node. It is not safe for
// concurrent use.
type View struct {
	surface *svg.Surface
	table   margins.Table
	policy  node.SizePolicy
	logger  *zap.Logger

	content *svg.Element
	outer   *outer.Node
	inner   []*node.Base
	ids     map[string]bool

	size  geom.Size
	sized bool
}

// Option configures a View.
type Option func(*View)

// WithSizePolicy selects how the opened node treats viewports smaller than
// its margins.
func WithSizePolicy(p node.SizePolicy) Option {
	return func(v *View) { v.policy = p }
}

// New prepares surface for hosting a node: it registers the full-screen
// rectangle used by masks and adds the stylesheet and the content group.
func New(surface *svg.Surface, t margins.Table, logger *zap.Logger, opts ...Option) (*View, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &View{
		surface: surface,
		table:   t,
		policy:  node.RejectNegative,
		logger:  logger.Named("view"),
		ids:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(v)
	}

	rect := surface.CreateElement("rect")
	rect.SetID(svg.FullScreenRectID)
	rect.SetAttr("width", "100%")
	rect.SetAttr("height", "100%")
	if err := surface.AddDef(rect); err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}

	style := surface.CreateElement("style")
	style.SetText(stylesheet)
	surface.Root().AppendChild(style)

	v.content = surface.CreateElement("g")
	v.content.SetID(ContentID)
	surface.Root().AppendChild(v.content)

	v.logger.Debug("view created", zap.Stringer("policy", v.policy))
	return v, nil
}

// Outer returns the opened node, or nil.
func (v *View) Outer() *outer.Node { return v.outer }

// Inner returns the inner nodes in the order they were added.
func (v *View) Inner() []*node.Base { return v.inner }

// Content returns the group holding inner nodes.
func (v *View) Content() *svg.Element { return v.content }

// Size returns the viewport size and whether one has been set.
func (v *View) Size() (geom.Size, bool) { return v.size, v.sized }

// Open builds the outer node for spec and places it above the content
// group, which is clipped to the node's frame. If a viewport size is known
// the node is fitted to it; a viewport that is too small is logged and the
// node keeps its initial size.
func (v *View) Open(spec node.Spec) (*outer.Node, error) {
	if v.outer != nil {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyOpen, v.outer.ID())
	}
	o, err := outer.New(v.surface, v.table, spec, outer.WithSizePolicy(v.policy))
	if err != nil {
		return nil, err
	}
	if err := v.surface.AddDef(o.Mask()); err != nil {
		v.surface.RemoveDef(outer.FrameDefID)
		return nil, fmt.Errorf("view: register mask: %w", err)
	}
	v.content.SetAttr("mask", "url(#"+outer.MaskID+")")
	v.surface.Root().AppendChild(o.Element())
	v.outer = o

	if v.sized {
		if err := o.FitToWindow(v.size); err != nil {
			v.logger.Warn("viewport too small for n0de",
				zap.String("id", spec.ID), zap.Stringer("viewport", v.size), zap.Error(err))
		}
	}
	v.logger.Info("n0de opened", zap.String("id", spec.ID), zap.String("type", spec.Type),
		zap.Int("inputs", len(spec.Inputs)), zap.Int("outputs", len(spec.Outputs)))
	return o, nil
}

// Close removes the opened node, its definitions and all inner nodes so
// that another node can be opened on the same document. Closing an empty
// view does nothing.
func (v *View) Close() {
	v.content.RemoveChildren()
	v.inner = nil
	v.ids = make(map[string]bool)

	if v.outer == nil {
		return
	}
	id := v.outer.ID()
	v.outer.Element().Remove()
	v.surface.RemoveDef(outer.MaskID)
	v.surface.RemoveDef(outer.FrameDefID)
	v.content.RemoveAttr("mask")
	v.outer = nil
	v.logger.Info("n0de closed", zap.String("id", id))
}

// AddInner creates an inner node at the document position at.
func (v *View) AddInner(spec node.Spec, at geom.Vec) (*node.Base, error) {
	if v.ids[spec.ID] {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateInner, spec.ID)
	}
	n, err := node.NewInner(spec, node.WithMetrics(v.table.Node), node.WithSizePolicy(v.policy))
	if err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}
	n.SetPosition(at)
	v.content.AppendChild(n.Element())
	v.inner = append(v.inner, n)
	v.ids[spec.ID] = true
	v.logger.Debug("inner n0de added", zap.String("id", spec.ID), zap.Float64("x", at.X), zap.Float64("y", at.Y))
	return n, nil
}

// Load replaces the view's contents with an evaluated document. Inner node
// positions are relative to the opened node, or to the document origin when
// nothing is declared.
func (v *View) Load(doc *engine.Document) error {
	v.Close()

	var origin geom.Vec
	if doc.Declared {
		o, err := v.Open(doc.Outer)
		if err != nil {
			return err
		}
		origin = o.Position()
	}
	for _, in := range doc.Inner {
		if _, err := v.AddInner(in.Spec, origin.Add(in.At)); err != nil {
			return err
		}
	}
	return nil
}

// Resize sets the viewport size and fits the opened node to it. The
// document keeps the new size even when the node rejects it.
func (v *View) Resize(size geom.Size) error {
	v.size = size
	v.sized = true
	root := v.surface.Root()
	root.SetFloat("width", size.W)
	root.SetFloat("height", size.H)
	root.SetAttr("viewBox", fmt.Sprintf("0 0 %s %s", svg.FormatFloat(size.W), svg.FormatFloat(size.H)))

	if v.outer == nil {
		return nil
	}
	if err := v.outer.FitToWindow(size); err != nil {
		v.logger.Warn("resize rejected", zap.Stringer("viewport", size), zap.Error(err))
		return err
	}
	v.logger.Info("viewport resized", zap.Stringer("viewport", size), zap.Stringer("content", v.outer.Size()))
	return nil
}

// Render writes the whole document.
func (v *View) Render(w io.Writer) error {
	if err := v.surface.Render(w); err != nil {
		v.logger.Error("render failed", zap.Error(err))
		return fmt.Errorf("view: render: %w", err)
	}
	return nil
}

// HitTest reports whether the document point p lies inside the opened
// node's frame.
func (v *View) HitTest(p geom.Vec) bool {
	return v.outer != nil && v.outer.Contains(p)
}

// SocketAt returns the socket under the document point p. Sockets of the
// opened node win over sockets of inner nodes.
func (v *View) SocketAt(p geom.Vec) (*node.Socket, bool) {
	if v.outer != nil {
		if s, ok := v.outer.SocketAt(p); ok {
			return s, true
		}
	}
	for i := len(v.inner) - 1; i >= 0; i-- {
		n := v.inner[i]
		if s, ok := n.SocketAt(p.Sub(n.Position())); ok {
			return s, true
		}
	}
	return nil, false
}
