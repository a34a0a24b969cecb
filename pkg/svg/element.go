// Package svg is the drawing surface shared by every node in the editor.
// It keeps a retained SVG element tree, a registry of reusable definitions,
// and serializes the tree to markup for the front end.
package svg

import (
	"strconv"
	"strings"
)

// Attr is a single name/value attribute. Attributes keep insertion order
// so rendered markup is stable.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the SVG element tree.
type Element struct {
	Tag      string
	attrs    []Attr
	text     string
	children []*Element
	parent   *Element
}

// NewElement returns a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// ID returns the element's id attribute, or "".
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// SetID sets the id attribute.
func (e *Element) SetID(id string) {
	e.SetAttr("id", id)
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any previous value in place.
func (e *Element) SetAttr(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

// SetFloat sets a numeric attribute using the shortest exact formatting.
func (e *Element) SetFloat(name string, f float64) {
	e.SetAttr(name, FormatFloat(f))
}

// Float returns a numeric attribute. Missing or malformed values report false.
func (e *Element) Float(name string) (float64, bool) {
	v, ok := e.Attr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return
		}
	}
}

// Attrs returns a copy of the element's attributes in insertion order.
func (e *Element) Attrs() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Classes returns the entries of the class attribute.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class attribute contains c.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends c to the class attribute unless it is already present.
func (e *Element) AddClass(c string) {
	if e.HasClass(c) {
		return
	}
	classes := append(e.Classes(), c)
	e.SetAttr("class", strings.Join(classes, " "))
}

// Href returns the id referenced by a use element's href, without the
// leading '#'.
func (e *Element) Href() string {
	v, _ := e.Attr("href")
	return strings.TrimPrefix(v, "#")
}

// SetHref points the element at the definition with the given id.
func (e *Element) SetHref(id string) {
	e.SetAttr("href", "#"+id)
}

// Text returns the element's character data.
func (e *Element) Text() string { return e.text }

// SetText replaces the element's character data.
func (e *Element) SetText(s string) { e.text = s }

// Parent returns the element's parent, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the element's children in paint order.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int { return len(e.children) }

// FirstChild returns the first child, or nil.
func (e *Element) FirstChild() *Element {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// AppendChild adds c as the last child. Like the DOM, an element that
// already has a parent is moved rather than copied.
func (e *Element) AppendChild(c *Element) {
	c.Remove()
	c.parent = e
	e.children = append(e.children, c)
}

// Prepend adds c as the first child, moving it if it is attached elsewhere.
func (e *Element) Prepend(c *Element) {
	c.Remove()
	c.parent = e
	e.children = append([]*Element{c}, e.children...)
}

// ReplaceChild swaps old for c in place. It reports false, leaving the tree
// unchanged, when old is not a child of e.
func (e *Element) ReplaceChild(old, c *Element) bool {
	i := e.indexOf(old)
	if i < 0 {
		return false
	}
	if old == c {
		return true
	}
	c.Remove()
	// Removing c may have shifted old.
	i = e.indexOf(old)
	e.children[i] = c
	c.parent = e
	old.parent = nil
	return true
}

// RemoveChild detaches c from e.
func (e *Element) RemoveChild(c *Element) bool {
	i := e.indexOf(c)
	if i < 0 {
		return false
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	c.parent = nil
	return true
}

// RemoveChildren detaches every child of e.
func (e *Element) RemoveChildren() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// Remove detaches e from its parent, if any.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// Find returns the first element in the subtree rooted at e (e included)
// whose id matches.
func (e *Element) Find(id string) *Element {
	if e.ID() == id {
		return e
	}
	for _, c := range e.children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element in the subtree rooted at e for which match
// returns true, in document order.
func (e *Element) FindAll(match func(*Element) bool) []*Element {
	var out []*Element
	if match(e) {
		out = append(out, e)
	}
	for _, c := range e.children {
		out = append(out, c.FindAll(match)...)
	}
	return out
}

func (e *Element) indexOf(c *Element) int {
	for i, have := range e.children {
		if have == c {
			return i
		}
	}
	return -1
}

// FormatFloat formats f the way coordinates appear in rendered markup.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
