package outer

import (
	"errors"
	"testing"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"github.com/chazu/n0de/pkg/node"
	"github.com/chazu/n0de/pkg/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBase wraps a real base node and records delegated calls.
type recordingBase struct {
	*node.Base
	resizes []geom.Size
	sockets []socketCall
}

type socketCall struct {
	spec  node.SocketSpec
	layer node.Layer
	dir   node.Direction
	index int
}

func (r *recordingBase) Resize(size geom.Size) error {
	r.resizes = append(r.resizes, size)
	return r.Base.Resize(size)
}

func (r *recordingBase) AddSocketRaw(spec node.SocketSpec, layer node.Layer, dir node.Direction, index int) (*node.Socket, error) {
	r.sockets = append(r.sockets, socketCall{spec, layer, dir, index})
	return r.Base.AddSocketRaw(spec, layer, dir, index)
}

// failingRegistry rejects every definition.
type failingRegistry struct {
	*svg.Surface
}

var errRegistry = errors.New("registry closed")

func (failingRegistry) AddDef(*svg.Element) error { return errRegistry }

var testMargins = margins.Outer{SideMargin: 10, TopMargin: 20, BottomMargin: 15}

func newRecorded(t *testing.T, opts ...node.Option) (*Node, *recordingBase, *svg.Surface) {
	t.Helper()
	base, err := node.New("outer-1", "Adder", opts...)
	require.NoError(t, err)
	rec := &recordingBase{Base: base}
	s := svg.NewSurface(nil)
	n, err := Wrap(s, testMargins, rec, node.Spec{ID: "outer-1", Type: "Adder"})
	require.NoError(t, err)
	return n, rec, s
}

func TestConstructionRootChildren(t *testing.T) {
	n, rec, _ := newRecorded(t)
	el := n.Element()

	assert.True(t, el.HasClass(NodeClass))
	titles := el.FindAll(func(e *svg.Element) bool { return e.HasClass("title") })
	assert.Equal(t, []*svg.Element{rec.Title()}, titles)

	borders := el.FindAll(func(e *svg.Element) bool { return e.Tag == "use" && e.Href() == FrameDefID })
	require.Len(t, borders, 1)
	assert.Same(t, n.Border(), borders[0])
	assert.True(t, n.Border().HasClass(FrameClass))

	children := el.Children()
	require.GreaterOrEqual(t, len(children), 2)
	assert.Same(t, n.Border(), children[0])
	assert.Same(t, rec.Title(), children[1])
}

func TestFrameRegisteredAsDefinitionOnly(t *testing.T) {
	n, rec, s := newRecorded(t)

	def, ok := s.Def(FrameDefID)
	require.True(t, ok)
	assert.Same(t, rec.Frame(), def)
	assert.Equal(t, "defs", def.Parent().Tag)
	// The raw frame is no longer drawn inside the node.
	assert.Nil(t, n.Element().Find(FrameDefID))
}

func TestMaskIdentityIsStable(t *testing.T) {
	n, _, _ := newRecorded(t)
	m := n.Mask()
	require.NoError(t, n.FitToWindow(geom.S(300, 300)))
	n.MoveTo(geom.V(1, 2))
	assert.Same(t, m, n.Mask())
	assert.Same(t, m, n.Mask())
	assert.Equal(t, MaskID, m.ID())
}

func TestMaskChildren(t *testing.T) {
	n, _, _ := newRecorded(t)

	for _, size := range []geom.Size{geom.S(200, 200), geom.S(640, 480), geom.S(1024, 768)} {
		require.NoError(t, n.FitToWindow(size))

		children := n.Mask().Children()
		require.Len(t, children, 2)

		back, frame := children[0], children[1]
		assert.Equal(t, MaskBackID, back.ID())
		assert.Equal(t, svg.FullScreenRectID, back.Href())
		assert.Equal(t, FrameDefID, frame.Href())
		assert.Same(t, n.MaskFrame(), frame)

		x, _ := frame.Float("x")
		y, _ := frame.Float("y")
		assert.Equal(t, 10.0, x)
		assert.Equal(t, 20.0, y)
	}
}

func TestPositionStartsAtMargins(t *testing.T) {
	n, _, _ := newRecorded(t)
	assert.Equal(t, geom.V(10, 20), n.Position())
	assert.Equal(t, n.Position(), n.TemporaryPosition())

	x, _ := n.Element().Float("x")
	y, _ := n.Element().Float("y")
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
}

func TestMoveToKeepsMaskAligned(t *testing.T) {
	n, _, _ := newRecorded(t)

	n.SetTemporaryPosition(geom.V(99, 99))
	x, _ := n.MaskFrame().Float("x")
	assert.Equal(t, 10.0, x, "a drag in progress must not move the mask")

	n.MoveTo(geom.V(30, 40))
	assert.Equal(t, geom.V(30, 40), n.Position())
	assert.Equal(t, geom.V(30, 40), n.TemporaryPosition())
	mx, _ := n.MaskFrame().Float("x")
	my, _ := n.MaskFrame().Float("y")
	ex, _ := n.Element().Float("x")
	ey, _ := n.Element().Float("y")
	assert.Equal(t, mx, ex)
	assert.Equal(t, my, ey)
}

func TestFitToWindowDelegatesContentSize(t *testing.T) {
	n, rec, _ := newRecorded(t)

	require.NoError(t, n.FitToWindow(geom.S(200, 200)))
	require.NoError(t, n.FitToWindow(geom.S(1000, 700)))

	assert.Equal(t, []geom.Size{geom.S(180, 165), geom.S(980, 665)}, rec.resizes)
	assert.Equal(t, geom.S(980, 665), n.Size())
}

func TestFitToWindowDoesNotTouchDecorations(t *testing.T) {
	n, _, _ := newRecorded(t)
	border := n.Border().Attrs()
	maskFrame := n.MaskFrame().Attrs()

	require.NoError(t, n.FitToWindow(geom.S(500, 400)))

	assert.Equal(t, border, n.Border().Attrs())
	assert.Equal(t, maskFrame, n.MaskFrame().Attrs())
}

func TestFitToWindowTooSmallRejected(t *testing.T) {
	n, rec, _ := newRecorded(t)
	require.NoError(t, n.FitToWindow(geom.S(200, 200)))

	err := n.FitToWindow(geom.S(15, 30))
	assert.ErrorIs(t, err, node.ErrNegativeSize)
	assert.Equal(t, geom.S(-5, -5), rec.resizes[len(rec.resizes)-1])
	assert.Equal(t, geom.S(180, 165), n.Size())
}

func TestFitToWindowTooSmallClamped(t *testing.T) {
	n, _, _ := newRecorded(t, node.WithSizePolicy(node.ClampNegative))

	require.NoError(t, n.FitToWindow(geom.S(15, 100)))
	assert.Equal(t, geom.S(0, 65), n.Size())
}

func TestFitToWindowExactlyMargins(t *testing.T) {
	n, _, _ := newRecorded(t)
	require.NoError(t, n.FitToWindow(geom.S(20, 35)))
	assert.Equal(t, geom.S(0, 0), n.Size())
}

func TestAddSocketTagsOuterLayer(t *testing.T) {
	n, rec, _ := newRecorded(t)
	spec := node.SocketSpec{Label: "x", Type: "num", ID: "s1"}

	s, err := n.AddSocket(spec, node.In, 0)
	require.NoError(t, err)

	require.Len(t, rec.sockets, 1)
	assert.Equal(t, socketCall{spec: spec, layer: node.LayerOuter, dir: node.In, index: 0}, rec.sockets[0])
	assert.Equal(t, spec, s.Spec)
	assert.True(t, s.Element().HasClass("outer"))
}

func TestAddSocketOverwrites(t *testing.T) {
	n, _, _ := newRecorded(t)

	_, err := n.AddSocket(node.SocketSpec{Label: "first", Type: "num", ID: "o1"}, node.Out, 0)
	require.NoError(t, err)
	_, err = n.AddSocket(node.SocketSpec{Label: "second", Type: "str", ID: "o2"}, node.Out, 0)
	require.NoError(t, err)

	s, ok := n.Socket(node.Out, 0)
	require.True(t, ok)
	assert.Equal(t, "o2", s.Spec.ID)
	assert.Len(t, n.Outputs(), 1)

	ids := n.Element().FindAll(func(e *svg.Element) bool {
		id, _ := e.Attr("data-s0cket-id")
		return id == "o1"
	})
	assert.Empty(t, ids)
}

func TestAddSocketErrorsPassThrough(t *testing.T) {
	n, _, _ := newRecorded(t)

	_, err := n.AddSocket(node.SocketSpec{Label: "x", ID: "s1"}, node.Direction("up"), 0)
	assert.ErrorIs(t, err, node.ErrInvalidDirection)

	_, err = n.AddSocket(node.SocketSpec{Label: "x"}, node.In, 0)
	assert.ErrorIs(t, err, node.ErrInvalidSocket)
}

func TestNewAddsSpecSockets(t *testing.T) {
	s := svg.NewSurface(nil)
	n, err := New(s, margins.Default(), node.Spec{
		ID:      "adder",
		Type:    "Adder",
		Inputs:  []node.SocketSpec{{Label: "a", Type: "num", ID: "a"}, {Label: "b", Type: "num", ID: "b"}},
		Outputs: []node.SocketSpec{{Label: "sum", Type: "num", ID: "sum"}},
	})
	require.NoError(t, err)

	assert.Len(t, n.Inputs(), 2)
	assert.Len(t, n.Outputs(), 1)
	for _, sock := range append(n.Inputs(), n.Outputs()...) {
		assert.Equal(t, node.LayerOuter, sock.Layer)
	}
	assert.Equal(t, "adder", n.ID())
}

func TestNewFailsWithoutID(t *testing.T) {
	s := svg.NewSurface(nil)
	_, err := New(s, margins.Default(), node.Spec{Type: "Adder"})
	assert.ErrorIs(t, err, node.ErrMissingID)
	assert.Empty(t, s.DefIDs())
}

func TestNewFailsOnBadSocketWithoutRegistering(t *testing.T) {
	s := svg.NewSurface(nil)
	_, err := New(s, margins.Default(), node.Spec{
		ID:     "adder",
		Inputs: []node.SocketSpec{{Label: "a"}},
	})
	assert.ErrorIs(t, err, node.ErrInvalidSocket)
	assert.Empty(t, s.DefIDs())
}

func TestRegistryErrorIsFatal(t *testing.T) {
	reg := failingRegistry{svg.NewSurface(nil)}
	n, err := New(reg, margins.Default(), node.Spec{ID: "x"})
	assert.Nil(t, n)
	assert.ErrorIs(t, err, errRegistry)
}

func TestSecondOuterNodeOnSameSurfaceFails(t *testing.T) {
	s := svg.NewSurface(nil)
	_, err := New(s, margins.Default(), node.Spec{ID: "a"})
	require.NoError(t, err)

	_, err = New(s, margins.Default(), node.Spec{ID: "b"})
	assert.ErrorIs(t, err, svg.ErrDuplicateDef)
}

func TestContainsAndSocketAt(t *testing.T) {
	n, _, _ := newRecorded(t)
	require.NoError(t, n.FitToWindow(geom.S(200, 200)))
	in, err := n.AddSocket(node.SocketSpec{Label: "a", ID: "a"}, node.In, 0)
	require.NoError(t, err)

	assert.True(t, n.Contains(geom.V(100, 100)))
	assert.False(t, n.Contains(geom.V(5, 100)))
	assert.False(t, n.Contains(geom.V(100, 190)))

	p := n.Position().Add(in.Position())
	got, ok := n.SocketAt(p)
	require.True(t, ok)
	assert.Same(t, in, got)
}
