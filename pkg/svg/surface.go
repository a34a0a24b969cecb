package svg

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// FullScreenRectID is the id of the viewport-sized rectangle the hosting
// document registers as a definition. Masks use it as their background.
const FullScreenRectID = "fullScreenRect"

// Namespace is the SVG XML namespace written on the root element.
const Namespace = "http://www.w3.org/2000/svg"

var (
	// ErrMissingID is returned when a definition without an id is registered.
	ErrMissingID = errors.New("svg: definition has no id")
	// ErrDuplicateDef is returned when a definition id is already registered.
	ErrDuplicateDef = errors.New("svg: duplicate definition")
)

// Surface owns a document root, its <defs> block, and the registry of
// reusable definitions keyed by id. A Surface lives as long as the document
// it renders and is not safe for concurrent use.
type Surface struct {
	root     *Element
	defs     *Element
	registry map[string]*Element
	logger   *zap.Logger
}

// NewSurface creates an empty document with a <defs> block.
func NewSurface(logger *zap.Logger) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := NewElement("svg")
	root.SetAttr("xmlns", Namespace)
	defs := NewElement("defs")
	root.AppendChild(defs)
	return &Surface{
		root:     root,
		defs:     defs,
		registry: make(map[string]*Element),
		logger:   logger.Named("svg"),
	}
}

// Root returns the document's root <svg> element.
func (s *Surface) Root() *Element { return s.root }

// CreateElement returns a new detached element.
func (s *Surface) CreateElement(tag string) *Element {
	return NewElement(tag)
}

// Use returns a new <use> element referencing the definition id.
func (s *Surface) Use(id string) *Element {
	u := s.CreateElement("use")
	u.SetHref(id)
	return u
}

// AddDef registers el as a reusable definition and moves it into the
// document's <defs> block. The element is detached from wherever it was,
// so it is only ever rendered through instances that reference it.
func (s *Surface) AddDef(el *Element) error {
	id := el.ID()
	if id == "" {
		return fmt.Errorf("%w: <%s>", ErrMissingID, el.Tag)
	}
	if _, exists := s.registry[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateDef, id)
	}
	s.defs.AppendChild(el)
	s.registry[id] = el
	s.logger.Debug("definition registered", zap.String("id", id), zap.String("tag", el.Tag))
	return nil
}

// RemoveDef drops a definition from the registry and the <defs> block.
// It reports whether the id was registered.
func (s *Surface) RemoveDef(id string) bool {
	el, ok := s.registry[id]
	if !ok {
		return false
	}
	el.Remove()
	delete(s.registry, id)
	s.logger.Debug("definition removed", zap.String("id", id))
	return true
}

// Def returns the registered definition with the given id.
func (s *Surface) Def(id string) (*Element, bool) {
	el, ok := s.registry[id]
	return el, ok
}

// DefIDs returns the registered definition ids in registration order.
func (s *Surface) DefIDs() []string {
	ids := make([]string, 0, len(s.registry))
	for _, c := range s.defs.children {
		if _, ok := s.registry[c.ID()]; ok {
			ids = append(ids, c.ID())
		}
	}
	return ids
}

// Render writes the whole document as SVG markup.
func (s *Surface) Render(w io.Writer) error {
	return Write(w, s.root)
}
