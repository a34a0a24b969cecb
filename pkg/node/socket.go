package node

import (
	"errors"
	"fmt"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/svg"
)

var (
	// ErrInvalidDirection is returned for a direction other than In or Out.
	ErrInvalidDirection = errors.New("node: invalid socket direction")
	// ErrInvalidLayer is returned for a layer other than LayerOuter or LayerInner.
	ErrInvalidLayer = errors.New("node: invalid socket layer")
	// ErrInvalidSocket is returned for a malformed socket spec.
	ErrInvalidSocket = errors.New("node: invalid socket spec")
	// ErrSocketIndex is returned for an index outside the socket sequence.
	ErrSocketIndex = errors.New("node: socket index out of range")
)

// Direction says whether a socket is an input or an output.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Layer separates sockets owned by the outer node from sockets owned by
// inner nodes that share the same visual space.
type Layer string

const (
	LayerOuter Layer = "outer"
	LayerInner Layer = "inner"
)

// SocketSpec declares a socket.
type SocketSpec struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	ID    string `json:"id"`
}

// Socket is an attachment point placed on a node.
type Socket struct {
	Spec      SocketSpec
	Layer     Layer
	Direction Direction
	Index     int

	pos     geom.Vec
	radius  float64
	element *svg.Element
}

// Element returns the socket's group element.
func (s *Socket) Element() *svg.Element { return s.element }

// Position returns the socket centre relative to the owning node.
func (s *Socket) Position() geom.Vec { return s.pos }

// Contains reports whether p, relative to the owning node, hits the socket.
func (s *Socket) Contains(p geom.Vec) bool {
	return p.Sub(s.pos).Length() <= s.radius
}

func newSocket(spec SocketSpec, layer Layer, dir Direction, index int, m margins.Node) *Socket {
	g := svg.NewElement("g")
	g.AddClass("s0cket")
	g.AddClass(string(layer))
	g.AddClass(string(dir))
	g.SetAttr("data-s0cket-id", spec.ID)
	g.SetAttr("data-s0cket-type", spec.Type)

	dot := svg.NewElement("circle")
	dot.SetFloat("r", m.SocketRadius)
	g.AppendChild(dot)

	label := svg.NewElement("text")
	label.AddClass("label")
	if dir == Out {
		label.SetAttr("text-anchor", "end")
		label.SetFloat("x", -2*m.SocketRadius)
	} else {
		label.SetFloat("x", 2*m.SocketRadius)
	}
	label.SetAttr("dominant-baseline", "middle")
	label.SetText(spec.Label)
	g.AppendChild(label)

	return &Socket{
		Spec:      spec,
		Layer:     layer,
		Direction: dir,
		Index:     index,
		radius:    m.SocketRadius,
		element:   g,
	}
}

// AddSocketRaw places a socket at index in the input or output sequence.
// An index equal to the sequence length appends; a smaller index replaces
// the socket already there.
func (b *Base) AddSocketRaw(spec SocketSpec, layer Layer, dir Direction, index int) (*Socket, error) {
	seq, err := b.sequence(dir)
	if err != nil {
		return nil, err
	}
	if layer != LayerOuter && layer != LayerInner {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLayer, layer)
	}
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: socket id is required", ErrInvalidSocket)
	}
	if index < 0 || index > len(*seq) {
		return nil, fmt.Errorf("%w: %s index %d not in [0, %d]", ErrSocketIndex, dir, index, len(*seq))
	}

	s := newSocket(spec, layer, dir, index, b.metrics)
	if index < len(*seq) {
		b.element.ReplaceChild((*seq)[index].element, s.element)
		(*seq)[index] = s
	} else {
		b.element.AppendChild(s.element)
		*seq = append(*seq, s)
	}
	b.placeSocket(s)
	return s, nil
}

// Socket returns the socket at index in the given direction.
func (b *Base) Socket(dir Direction, index int) (*Socket, bool) {
	seq, err := b.sequence(dir)
	if err != nil || index < 0 || index >= len(*seq) {
		return nil, false
	}
	return (*seq)[index], true
}

// Inputs returns the input sockets in order.
func (b *Base) Inputs() []*Socket {
	return append([]*Socket(nil), b.inputs...)
}

// Outputs returns the output sockets in order.
func (b *Base) Outputs() []*Socket {
	return append([]*Socket(nil), b.outputs...)
}

// SocketAt returns the socket under p, given relative to the node.
func (b *Base) SocketAt(p geom.Vec) (*Socket, bool) {
	for _, seq := range [][]*Socket{b.inputs, b.outputs} {
		for _, s := range seq {
			if s.Contains(p) {
				return s, true
			}
		}
	}
	return nil, false
}

func (b *Base) sequence(dir Direction) (*[]*Socket, error) {
	switch dir {
	case In:
		return &b.inputs, nil
	case Out:
		return &b.outputs, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
}

// placeSocket stacks sockets below the title; inputs sit on the left edge
// and outputs on the right.
func (b *Base) placeSocket(s *Socket) {
	y := b.metrics.TitleHeight + (float64(s.Index)+0.5)*b.metrics.SocketSpacing
	x := 0.0
	if s.Direction == Out {
		x = b.size.W
	}
	s.pos = geom.V(x, y)
	s.element.SetAttr("transform", fmt.Sprintf("translate(%s,%s)", svg.FormatFloat(x), svg.FormatFloat(y)))
}
