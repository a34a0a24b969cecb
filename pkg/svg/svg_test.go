package svg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementAttributesKeepOrder(t *testing.T) {
	el := NewElement("rect")
	el.SetAttr("width", "10")
	el.SetFloat("height", 12.5)
	el.SetAttr("width", "20")

	attrs := el.Attrs()
	require.Len(t, attrs, 2)
	assert.Equal(t, Attr{Name: "width", Value: "20"}, attrs[0])
	assert.Equal(t, Attr{Name: "height", Value: "12.5"}, attrs[1])

	h, ok := el.Float("height")
	require.True(t, ok)
	assert.Equal(t, 12.5, h)

	el.RemoveAttr("width")
	_, ok = el.Attr("width")
	assert.False(t, ok)
}

func TestElementClasses(t *testing.T) {
	el := NewElement("g")
	el.AddClass("s0cket")
	el.AddClass("outer")
	el.AddClass("outer")

	assert.Equal(t, []string{"s0cket", "outer"}, el.Classes())
	assert.True(t, el.HasClass("outer"))
	assert.False(t, el.HasClass("inner"))
}

func TestElementChildOrdering(t *testing.T) {
	root := NewElement("svg")
	a, b, c := NewElement("a"), NewElement("b"), NewElement("c")

	root.AppendChild(a)
	root.AppendChild(b)
	root.Prepend(c)
	assert.Equal(t, []*Element{c, a, b}, root.Children())
	assert.Same(t, c, root.FirstChild())

	// Appending an attached element moves it.
	root.AppendChild(c)
	assert.Equal(t, []*Element{a, b, c}, root.Children())

	other := NewElement("g")
	other.AppendChild(a)
	assert.Equal(t, 2, root.ChildCount())
	assert.Same(t, other, a.Parent())

	d := NewElement("d")
	require.True(t, root.ReplaceChild(b, d))
	assert.Equal(t, []*Element{d, c}, root.Children())
	assert.Nil(t, b.Parent())
	assert.False(t, root.ReplaceChild(b, d))

	root.RemoveChildren()
	assert.Zero(t, root.ChildCount())
	assert.Nil(t, d.Parent())
}

func TestElementFind(t *testing.T) {
	root := NewElement("svg")
	g := NewElement("g")
	leaf := NewElement("rect")
	leaf.SetID("leaf")
	leaf.AddClass("frame")
	g.AppendChild(leaf)
	root.AppendChild(g)

	assert.Same(t, leaf, root.Find("leaf"))
	assert.Nil(t, root.Find("missing"))

	frames := root.FindAll(func(e *Element) bool { return e.HasClass("frame") })
	assert.Equal(t, []*Element{leaf}, frames)
}

func TestSurfaceAddDef(t *testing.T) {
	s := NewSurface(nil)
	root := s.Root()
	frame := s.CreateElement("rect")
	frame.SetID("frameDef")
	root.AppendChild(frame)

	require.NoError(t, s.AddDef(frame))

	got, ok := s.Def("frameDef")
	require.True(t, ok)
	assert.Same(t, frame, got)
	// Registering moves the element out of the rendered tree into <defs>.
	assert.Equal(t, "defs", frame.Parent().Tag)
	assert.Equal(t, []string{"frameDef"}, s.DefIDs())
}

func TestSurfaceAddDefErrors(t *testing.T) {
	s := NewSurface(nil)

	err := s.AddDef(s.CreateElement("rect"))
	assert.ErrorIs(t, err, ErrMissingID)

	a := s.CreateElement("rect")
	a.SetID("dup")
	require.NoError(t, s.AddDef(a))

	b := s.CreateElement("path")
	b.SetID("dup")
	err = s.AddDef(b)
	assert.ErrorIs(t, err, ErrDuplicateDef)
	assert.Nil(t, b.Parent())
}

func TestSurfaceRemoveDef(t *testing.T) {
	s := NewSurface(nil)
	el := s.CreateElement("rect")
	el.SetID("gone")
	require.NoError(t, s.AddDef(el))

	assert.True(t, s.RemoveDef("gone"))
	assert.False(t, s.RemoveDef("gone"))
	assert.Nil(t, el.Parent())
	assert.Empty(t, s.DefIDs())

	// The id is free again.
	require.NoError(t, s.AddDef(el))
}

func TestSurfaceUse(t *testing.T) {
	s := NewSurface(nil)
	u := s.Use(FullScreenRectID)
	assert.Equal(t, "use", u.Tag)
	assert.Equal(t, FullScreenRectID, u.Href())
	v, _ := u.Attr("href")
	assert.Equal(t, "#fullScreenRect", v)
}

func TestRender(t *testing.T) {
	s := NewSurface(nil)
	title := s.CreateElement("text")
	title.SetText(`a < b & "c"`)
	title.SetAttr("data-label", `x"y`)
	s.Root().AppendChild(title)

	var buf bytes.Buffer
	require.NoError(t, s.Render(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg">`))
	assert.Contains(t, out, "  <defs/>\n")
	assert.Contains(t, out, `data-label="x&#34;y"`)
	assert.Contains(t, out, `>a &lt; b &amp; &#34;c&#34;</text>`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Equal(t, out, s.Root().String())
}
