package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchd/sketchd/internal/history"
	"github.com/sketchd/sketchd/internal/shape"
)

func mustCircle(t *testing.T, x, y, r int) *shape.Circle {
	t.Helper()
	c, err := shape.NewCircle(x, y, r)
	require.NoError(t, err)
	return c
}

func mustRect(t *testing.T, x, y, w, h int) *shape.Rect {
	t.Helper()
	r, err := shape.NewRect(x, y, w, h)
	require.NoError(t, err)
	return r
}

func dump(d *Document) string {
	var b strings.Builder
	d.Print(&b)
	return b.String()
}

func TestPrintEmpty(t *testing.T) {
	d := New()
	assert.Equal(t, "[empty]\n", dump(d))
}

func TestAddObjectAndPrint(t *testing.T) {
	d := New()
	d.AddObject(mustCircle(t, 10, 10, 5))
	d.AddObject(mustRect(t, 5, 7, 5, 6))

	want := "Circle (10, 10) R=5\nRectangle (5, 7) 5*6\n"
	assert.Equal(t, want, dump(d))
}

func TestHistoryRoundTrip(t *testing.T) {
	d := New()
	d.AddObject(mustCircle(t, 10, 10, 5))
	before := dump(d)

	s := mustRect(t, 0, 0, 2, 2)
	d.AddObject(s)
	require.Equal(t, 2, d.Len())

	require.NoError(t, d.Undo())
	assert.Equal(t, before, dump(d), "undo restores the exact prior sequence")

	require.NoError(t, d.Redo())
	require.Equal(t, 2, d.Len())
	assert.Same(t, shape.Shape(s), d.Objects()[1], "redo restores the same shape as last element")
}

func TestRedoInvalidation(t *testing.T) {
	d := New()
	a := mustCircle(t, 0, 0, 1)
	b := mustCircle(t, 5, 5, 1)

	d.AddObject(a)
	require.NoError(t, d.Undo())
	d.AddObject(b)

	assert.ErrorIs(t, d.Redo(), history.ErrNothingToRedo, "a must never resurrect")
	require.Equal(t, 1, d.Len())
	assert.Same(t, shape.Shape(b), d.Objects()[0])
}

func TestUndoUnderflowIsNoop(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.Undo(), history.ErrNothingToUndo)
	assert.ErrorIs(t, d.Redo(), history.ErrNothingToRedo)
	assert.Equal(t, 0, d.Len())
}

func TestStackingOcclusion(t *testing.T) {
	d := New()
	a := mustRect(t, 0, 0, 10, 10)
	b := mustCircle(t, 5, 5, 3)
	d.AddObject(a)
	d.AddObject(b)

	// (5,5) is inside both; the later-added circle wins
	found := d.FindObjectAt(5, 5)
	assert.Same(t, shape.Shape(b), found)

	// (0,0) is only inside the rectangle
	found = d.FindObjectAt(0, 0)
	assert.Same(t, shape.Shape(a), found)
}

func TestFindObjectAtMiss(t *testing.T) {
	d := New()
	d.AddObject(mustCircle(t, 0, 0, 1))
	assert.Nil(t, d.FindObjectAt(100, 100), "a miss is a valid negative result")
}

func TestRemoveLastRoundTrip(t *testing.T) {
	d := New()
	a := mustCircle(t, 0, 0, 1)
	b := mustRect(t, 1, 1, 2, 2)
	d.AddObject(a)
	d.AddObject(b)

	removed, err := d.RemoveLast()
	require.NoError(t, err)
	assert.Same(t, shape.Shape(b), removed)
	require.Equal(t, 1, d.Len())

	require.NoError(t, d.Undo())
	require.Equal(t, 2, d.Len())
	assert.Same(t, shape.Shape(b), d.Objects()[1], "undo of remove restores the removed shape in place")

	require.NoError(t, d.Redo())
	require.Equal(t, 1, d.Len())
}

func TestRemoveLastEmpty(t *testing.T) {
	d := New()
	_, err := d.RemoveLast()
	require.Error(t, err)
	assert.Equal(t, 0, d.Len())
	assert.ErrorIs(t, d.Undo(), history.ErrNothingToUndo, "failed remove must not be recorded")
}

// The end-to-end scenario: seeded circle, then a group; the query point
// (5,6) translates to group-local (3,4), inside the rectangle; undo
// removes the group; redo restores it with children and order intact.
func TestConcreteScenario(t *testing.T) {
	d := New()
	require.Equal(t, 0, d.Len())

	d.AddObject(mustCircle(t, 10, 10, 5))

	g := shape.NewGroup(2, 2)
	rect := mustRect(t, 3, 4, 2, 3)
	g.Add(rect)
	g.Add(mustCircle(t, 1, 5, 2))
	d.AddObject(g)

	found := d.FindObjectAt(5, 6)
	require.NotNil(t, found)
	assert.Same(t, shape.Shape(rect), found)

	withGroup := dump(d)

	require.NoError(t, d.Undo())
	assert.Equal(t, "Circle (10, 10) R=5\n", dump(d))

	require.NoError(t, d.Redo())
	assert.Equal(t, withGroup, dump(d), "redo restores the group with same children and order")
	assert.Same(t, shape.Shape(rect), d.FindObjectAt(5, 6))
}

func TestSampleDocument(t *testing.T) {
	d := NewSampleDocument()

	want := "Circle (10, 10) R=5\n" +
		"Group (2, 2)\n" +
		"+Rectangle (3, 4) 2*3\n" +
		"+Circle (1, 5) R=2\n" +
		"+Group (4, 6)\n" +
		"++Circle (0, 1) R=3\n" +
		"Rectangle (5, 7) 5*6\n"
	assert.Equal(t, want, dump(d))

	// Three seeding edits are all undoable
	require.NoError(t, d.Undo())
	require.NoError(t, d.Undo())
	require.NoError(t, d.Undo())
	assert.Equal(t, "[empty]\n", dump(d))
}
