// Package outer implements the outer node: the container shown when a node
// is opened for editing. Nested nodes are drawn beneath it and clipped to
// its frame through a mask, while its own border and sockets stay on top.
package outer

import (
	"fmt"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/node"
	"github.com/chazu/n0de/pkg/svg"
)

// Element ids and classes. There is at most one outer node per document,
// so the ids are constants.
const (
	FrameDefID = "outerN0deFrameDef"
	MaskID     = "outerN0deMask"
	MaskBackID = "outerN0deMaskBack"
	NodeClass  = "outerN0de"
	FrameClass = "outerN0deFrame"
)

// Registry creates elements and registers reusable definitions.
// *svg.Surface implements it.
type Registry interface {
	CreateElement(tag string) *svg.Element
	AddDef(el *svg.Element) error
}

// Base is the node behaviour an outer node delegates to. *node.Base
// implements it.
type Base interface {
	node.Node
	ID() string
	Title() *svg.Element
	Frame() *svg.Element
	Size() geom.Size
	Metrics() margins.Node
	TemporaryPosition() geom.Vec
	SetPosition(p geom.Vec)
	SetTemporaryPosition(p geom.Vec)
	Socket(dir node.Direction, index int) (*node.Socket, bool)
	Inputs() []*node.Socket
	Outputs() []*node.Socket
	SocketAt(p geom.Vec) (*node.Socket, bool)
}

// Compile-time interface checks.
var (
	_ Base     = (*node.Base)(nil)
	_ Registry = (*svg.Surface)(nil)
)

// Node is the outer node.
type Node struct {
	base    Base
	margins margins.Outer
	frames  assembly
}

type config struct {
	policy node.SizePolicy
}

// Option configures New.
type Option func(*config)

// WithSizePolicy selects how FitToWindow treats viewports smaller than the
// margins.
func WithSizePolicy(p node.SizePolicy) Option {
	return func(c *config) { c.policy = p }
}

// New builds an outer node for spec, registering its frame definition with
// reg.
func New(reg Registry, t margins.Table, spec node.Spec, opts ...Option) (*Node, error) {
	cfg := config{policy: node.RejectNegative}
	for _, opt := range opts {
		opt(&cfg)
	}
	base, err := node.New(spec.ID, spec.Type, node.WithMetrics(t.Node), node.WithSizePolicy(cfg.policy))
	if err != nil {
		return nil, fmt.Errorf("outer: %w", err)
	}
	return Wrap(reg, t.Outer, base, spec)
}

// Wrap turns an existing base node into an outer node. The base is
// modified in place and must not be used on its own afterwards. The frame
// definition is registered last, so a failed Wrap leaves reg untouched.
func Wrap(reg Registry, m margins.Outer, base Base, spec node.Spec) (*Node, error) {
	for i, s := range spec.Inputs {
		if _, err := base.AddSocketRaw(s, node.LayerOuter, node.In, i); err != nil {
			return nil, fmt.Errorf("outer: input %d: %w", i, err)
		}
	}
	for i, s := range spec.Outputs {
		if _, err := base.AddSocketRaw(s, node.LayerOuter, node.Out, i); err != nil {
			return nil, fmt.Errorf("outer: output %d: %w", i, err)
		}
	}

	el := base.Element()
	el.AddClass(NodeClass)
	el.Prepend(base.Title())

	frames, err := assemble(reg, base, m)
	if err != nil {
		return nil, err
	}

	n := &Node{base: base, margins: m, frames: frames}
	n.MoveTo(geom.V(m.SideMargin, m.TopMargin))
	return n, nil
}

// Mask returns the clip mask for content nested in this node. The same
// element is returned for the node's whole lifetime.
func (n *Node) Mask() *svg.Element { return n.frames.mask }

// MaskFrame returns the frame instance inside the mask.
func (n *Node) MaskFrame() *svg.Element { return n.frames.maskFrame }

// Border returns the border overlay instance.
func (n *Node) Border() *svg.Element { return n.frames.border }

// Element returns the node's root element.
func (n *Node) Element() *svg.Element { return n.base.Element() }

// ID returns the node's id.
func (n *Node) ID() string { return n.base.ID() }

// Size returns the content size inside the margins.
func (n *Node) Size() geom.Size { return n.base.Size() }

// Position returns the committed position.
func (n *Node) Position() geom.Vec { return n.base.Position() }

// TemporaryPosition returns the position used during a drag.
func (n *Node) TemporaryPosition() geom.Vec { return n.base.TemporaryPosition() }

// SetTemporaryPosition moves only the temporary position; the mask is not
// affected until the move is committed with MoveTo.
func (n *Node) SetTemporaryPosition(p geom.Vec) { n.base.SetTemporaryPosition(p) }

// MoveTo commits a new position. The mask's frame instance moves with the
// node so clipping stays aligned with the visible border.
func (n *Node) MoveTo(p geom.Vec) {
	n.base.SetPosition(p)
	n.frames.maskFrame.SetFloat("x", p.X)
	n.frames.maskFrame.SetFloat("y", p.Y)
}

// AddSocket adds or replaces one of the node's own sockets. Errors from the
// base node are returned unchanged.
func (n *Node) AddSocket(spec node.SocketSpec, dir node.Direction, index int) (*node.Socket, error) {
	return n.base.AddSocketRaw(spec, node.LayerOuter, dir, index)
}

// Socket returns the socket at index in the given direction.
func (n *Node) Socket(dir node.Direction, index int) (*node.Socket, bool) {
	return n.base.Socket(dir, index)
}

// Inputs returns the input sockets in order.
func (n *Node) Inputs() []*node.Socket { return n.base.Inputs() }

// Outputs returns the output sockets in order.
func (n *Node) Outputs() []*node.Socket { return n.base.Outputs() }

// ContentSize returns the size left for the node inside a viewport of the
// given size once the margins are taken off. It does not clamp.
func (n *Node) ContentSize(viewport geom.Size) geom.Size {
	return geom.Size{
		W: viewport.W - n.margins.SideMargin*2,
		H: viewport.H - (n.margins.TopMargin + n.margins.BottomMargin),
	}
}

// FitToWindow resizes the node to fill a viewport of the given size.
// Errors from the base resize are returned unchanged.
func (n *Node) FitToWindow(viewport geom.Size) error {
	return n.base.Resize(n.ContentSize(viewport))
}

// Contains reports whether a document-space point lies inside the frame.
func (n *Node) Contains(p geom.Vec) bool {
	f := geom.Frame{Size: n.base.Size(), Radius: n.base.Metrics().CornerRadius}
	return f.Contains(n.base.Position(), p)
}

// SocketAt returns the node's socket under a document-space point.
func (n *Node) SocketAt(p geom.Vec) (*node.Socket, bool) {
	return n.base.SocketAt(p.Sub(n.base.Position()))
}
