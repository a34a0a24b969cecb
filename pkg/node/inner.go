package node

import (
	"fmt"

	"github.com/chazu/n0de/pkg/geom"
)

// NewInner builds a node nested inside an outer node. The title is drawn
// over the frame and all of its sockets sit on LayerInner.
func NewInner(spec Spec, opts ...Option) (*Base, error) {
	b, err := New(spec.ID, spec.Type, opts...)
	if err != nil {
		return nil, err
	}
	b.element.AddClass("innerN0de")
	b.element.AppendChild(b.title)

	for i, s := range spec.Inputs {
		if _, err := b.AddSocketRaw(s, LayerInner, In, i); err != nil {
			return nil, fmt.Errorf("inner node %s: input %d: %w", spec.ID, i, err)
		}
	}
	for i, s := range spec.Outputs {
		if _, err := b.AddSocketRaw(s, LayerInner, Out, i); err != nil {
			return nil, fmt.Errorf("inner node %s: output %d: %w", spec.ID, i, err)
		}
	}

	// Grow to fit the taller socket column.
	rows := max(len(spec.Inputs), len(spec.Outputs))
	h := b.metrics.TitleHeight + float64(rows)*b.metrics.SocketSpacing
	if err := b.Resize(geom.S(b.size.W, h)); err != nil {
		return nil, err
	}
	return b, nil
}
