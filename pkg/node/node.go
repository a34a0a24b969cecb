// Package node provides the base node every editor node is composed from:
// a root SVG element, a title, a frame shape, and ordered input and output
// sockets.
package node

import (
	"errors"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/svg"
)

// ErrMissingID is returned when a node is created without an id.
var ErrMissingID = errors.New("node: id is required")

// Node is the capability set that containers and views rely on.
type Node interface {
	Element() *svg.Element
	Position() geom.Vec
	Resize(size geom.Size) error
	AddSocketRaw(spec SocketSpec, layer Layer, dir Direction, index int) (*Socket, error)
}

// Compile-time interface check.
var _ Node = (*Base)(nil)

// Base implements the generic node behaviour. It is not safe for
// concurrent use.
type Base struct {
	id      string
	typ     string
	metrics margins.Node
	policy  SizePolicy

	position          geom.Vec
	temporaryPosition geom.Vec
	size              geom.Size

	element *svg.Element
	title   *svg.Element
	frame   *svg.Element

	inputs  []*Socket
	outputs []*Socket
}

// Option configures a Base.
type Option func(*Base)

// WithMetrics overrides the default node metrics.
func WithMetrics(m margins.Node) Option {
	return func(b *Base) { b.metrics = m }
}

// WithSizePolicy selects how Resize treats negative sizes.
func WithSizePolicy(p SizePolicy) Option {
	return func(b *Base) { b.policy = p }
}

// New creates a node with the given id and human-readable type label.
// The frame is attached to the root element; the title is created but left
// detached so the owning node type decides where it goes.
func New(id, typ string, opts ...Option) (*Base, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	b := &Base{
		id:      id,
		typ:     typ,
		metrics: margins.Default().Node,
		policy:  RejectNegative,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.element = svg.NewElement("svg")
	b.element.AddClass("n0de")
	b.element.SetAttr("data-n0de-id", id)
	b.element.SetAttr("overflow", "visible")

	b.title = svg.NewElement("text")
	b.title.AddClass("title")
	b.title.SetAttr("text-anchor", "middle")
	b.title.SetFloat("y", b.metrics.TitleHeight*0.7)
	b.title.SetText(typ)

	b.frame = svg.NewElement("rect")
	b.frame.AddClass("frame")
	b.frame.SetFloat("rx", b.metrics.CornerRadius)
	b.frame.SetFloat("ry", b.metrics.CornerRadius)
	b.element.AppendChild(b.frame)

	b.applySize(geom.S(b.metrics.MinWidth, b.metrics.TitleHeight))
	b.SetPosition(geom.Vec{})
	return b, nil
}

// ID returns the node's id.
func (b *Base) ID() string { return b.id }

// Type returns the node's human-readable type label.
func (b *Base) Type() string { return b.typ }

// Metrics returns the layout metrics the node was built with.
func (b *Base) Metrics() margins.Node { return b.metrics }

// Element returns the node's root element.
func (b *Base) Element() *svg.Element { return b.element }

// Title returns the title element.
func (b *Base) Title() *svg.Element { return b.title }

// Frame returns the border shape.
func (b *Base) Frame() *svg.Element { return b.frame }

// Size returns the node's current content size.
func (b *Base) Size() geom.Size { return b.size }

// Position returns the committed position.
func (b *Base) Position() geom.Vec { return b.position }

// TemporaryPosition returns the position used while a drag is in progress.
func (b *Base) TemporaryPosition() geom.Vec { return b.temporaryPosition }

// SetPosition commits a position. The temporary position follows it.
func (b *Base) SetPosition(p geom.Vec) {
	b.position = p
	b.temporaryPosition = p
	b.element.SetFloat("x", p.X)
	b.element.SetFloat("y", p.Y)
}

// SetTemporaryPosition moves only the temporary position.
func (b *Base) SetTemporaryPosition(p geom.Vec) {
	b.temporaryPosition = p
}
