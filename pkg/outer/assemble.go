package outer

import (
	"fmt"

	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/svg"
)

// Each stage below can only be produced by the one before it, so the frame
// is always registered before anything references it.

type frameStage struct {
	base  Base
	frame *svg.Element
}

type registeredStage struct {
	frameStage
}

type maskStage struct {
	registeredStage
	mask      *svg.Element
	maskBack  *svg.Element
	maskFrame *svg.Element
}

// assembly is the finished frame/mask/border wiring of an outer node.
type assembly struct {
	maskStage
	border *svg.Element
}

func buildFrame(base Base) frameStage {
	frame := base.Frame()
	frame.SetID(FrameDefID)
	return frameStage{base: base, frame: frame}
}

func (s frameStage) registerDefinition(reg Registry) (registeredStage, error) {
	if err := reg.AddDef(s.frame); err != nil {
		return registeredStage{}, fmt.Errorf("outer: register frame definition: %w", err)
	}
	return registeredStage{s}, nil
}

// buildMaskLayer paints the full viewport black and the frame white, so
// only content inside the frame shows through.
func (s registeredStage) buildMaskLayer(reg Registry, m margins.Outer) maskStage {
	mask := reg.CreateElement("mask")
	mask.SetID(MaskID)

	back := reg.CreateElement("use")
	back.SetHref(svg.FullScreenRectID)
	back.SetID(MaskBackID)
	back.SetAttr("fill", "black")
	mask.AppendChild(back)

	frame := reg.CreateElement("use")
	frame.SetHref(FrameDefID)
	frame.SetFloat("x", m.SideMargin)
	frame.SetFloat("y", m.TopMargin)
	frame.SetAttr("fill", "white")
	mask.AppendChild(frame)

	return maskStage{registeredStage: s, mask: mask, maskBack: back, maskFrame: frame}
}

func (s maskStage) buildBorderLayer(reg Registry) assembly {
	border := reg.CreateElement("use")
	border.AddClass(FrameClass)
	border.SetHref(FrameDefID)
	s.base.Element().Prepend(border)
	return assembly{maskStage: s, border: border}
}

func assemble(reg Registry, base Base, m margins.Outer) (assembly, error) {
	registered, err := buildFrame(base).registerDefinition(reg)
	if err != nil {
		return assembly{}, err
	}
	return registered.buildMaskLayer(reg, m).buildBorderLayer(reg), nil
}
