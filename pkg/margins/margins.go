// Package margins holds the layout constants table for nodes: the outer
// node's margins inside the viewport and the metrics shared by every node.
package margins

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for tables containing negative values.
var ErrInvalid = errors.New("margins: invalid table")

// Outer holds the gaps between the viewport edge and the outer node's frame.
type Outer struct {
	SideMargin   float64 `yaml:"sideMargin" json:"sideMargin"`
	TopMargin    float64 `yaml:"topMargin" json:"topMargin"`
	BottomMargin float64 `yaml:"bottomMargin" json:"bottomMargin"`
}

// Node holds the metrics used to lay out any node.
type Node struct {
	TitleHeight   float64 `yaml:"titleHeight" json:"titleHeight"`
	SocketSpacing float64 `yaml:"socketSpacing" json:"socketSpacing"`
	SocketRadius  float64 `yaml:"socketRadius" json:"socketRadius"`
	CornerRadius  float64 `yaml:"cornerRadius" json:"cornerRadius"`
	MinWidth      float64 `yaml:"minWidth" json:"minWidth"`
}

// Table is the full margins configuration.
type Table struct {
	Outer Outer `yaml:"outerN0de" json:"outerN0de"`
	Node  Node  `yaml:"n0de" json:"n0de"`
}

// Default returns the built-in table.
func Default() Table {
	return Table{
		Outer: Outer{
			SideMargin:   24,
			TopMargin:    40,
			BottomMargin: 24,
		},
		Node: Node{
			TitleHeight:   24,
			SocketSpacing: 22,
			SocketRadius:  6,
			CornerRadius:  8,
			MinWidth:      120,
		},
	}
}

// Validate rejects negative entries.
func (t Table) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"outerN0de.sideMargin", t.Outer.SideMargin},
		{"outerN0de.topMargin", t.Outer.TopMargin},
		{"outerN0de.bottomMargin", t.Outer.BottomMargin},
		{"n0de.titleHeight", t.Node.TitleHeight},
		{"n0de.socketSpacing", t.Node.SocketSpacing},
		{"n0de.socketRadius", t.Node.SocketRadius},
		{"n0de.cornerRadius", t.Node.CornerRadius},
		{"n0de.minWidth", t.Node.MinWidth},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%w: %s is negative (%g)", ErrInvalid, f.name, f.v)
		}
	}
	return nil
}

// Parse decodes a YAML table. Keys that are absent keep their defaults.
func Parse(data []byte) (Table, error) {
	t := Default()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("margins: parse: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Load reads and parses the table at path.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("margins: %w", err)
	}
	return Parse(data)
}
