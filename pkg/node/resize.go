package node

import (
	"errors"
	"fmt"

	"github.com/chazu/n0de/pkg/geom"
)

// ErrNegativeSize is returned by Resize under RejectNegative when either
// dimension is below zero.
var ErrNegativeSize = errors.New("node: negative size")

// SizePolicy decides what Resize does with negative dimensions. Zero is
// accepted under every policy.
type SizePolicy int

const (
	// RejectNegative fails the resize and leaves the node unchanged.
	RejectNegative SizePolicy = iota
	// ClampNegative resizes with negative dimensions replaced by zero.
	ClampNegative
)

func (p SizePolicy) String() string {
	switch p {
	case RejectNegative:
		return "reject"
	case ClampNegative:
		return "clamp"
	default:
		return "unknown"
	}
}

// Resize sets the node's content size. The frame definition, the root
// element and the output sockets follow; anything referencing the frame by
// id picks up the new geometry without being touched.
func (b *Base) Resize(size geom.Size) error {
	if size.Negative() {
		if b.policy != ClampNegative {
			return fmt.Errorf("%w: %s", ErrNegativeSize, size)
		}
		size = size.Clamp()
	}
	b.applySize(size)
	return nil
}

func (b *Base) applySize(size geom.Size) {
	b.size = size
	b.frame.SetFloat("width", size.W)
	b.frame.SetFloat("height", size.H)
	b.element.SetFloat("width", size.W)
	b.element.SetFloat("height", size.H)
	b.title.SetFloat("x", size.W/2)
	for _, s := range b.outputs {
		b.placeSocket(s)
	}
}
