package shape

import (
	"fmt"
	"io"
	"strings"

	"github.com/sketchd/sketchd/internal/typeid"
)

// Group is a composite shape owning an ordered list of children.
// Child coordinates are relative to the group's own origin, so child
// lookups translate the query point down through each frame. Insertion
// order is stacking order: later-added children draw later and win
// hit tests.
type Group struct {
	id       string
	x, y     int
	children []Shape
}

// NewGroup creates an empty group at the given origin.
func NewGroup(x, y int) *Group {
	return &Group{id: typeid.NewGroupID(), x: x, y: y}
}

func (g *Group) ID() string { return g.id }

// Add appends a child on top of the stacking order. The group takes
// exclusive ownership of the child.
func (g *Group) Add(child Shape) {
	g.children = append(g.children, child)
}

// Children returns the children in insertion order. The returned slice
// is a copy; the children themselves remain owned by the group.
func (g *Group) Children() []Shape {
	out := make([]Shape, len(g.children))
	copy(out, g.children)
	return out
}

func (g *Group) Draw(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sGroup (%d, %d)\n", strings.Repeat(Indent, indent), g.x, g.y)
	for _, child := range g.children {
		child.Draw(w, indent+1)
	}
}

// ContainsPoint reports whether any child contains the point after
// translation into the group's local frame. A group has no intrinsic
// area: an empty group contains nothing.
func (g *Group) ContainsPoint(px, py int) bool {
	for i := len(g.children) - 1; i >= 0; i-- {
		if g.children[i].ContainsPoint(px-g.x, py-g.y) {
			return true
		}
	}
	return false
}

// FindDeepest returns the deepest shape containing the point, which must
// be expressed in the group's parent frame. Children are scanned in
// reverse insertion order so the topmost match wins; a matching sub-group
// is searched recursively with the translated point. If no child matches,
// the group itself is the result (the caller already established that the
// group matched at its own level).
func (g *Group) FindDeepest(px, py int) Shape {
	lx, ly := px-g.x, py-g.y
	for i := len(g.children) - 1; i >= 0; i-- {
		child := g.children[i]
		if !child.ContainsPoint(lx, ly) {
			continue
		}
		if sub, ok := child.(*Group); ok {
			return sub.FindDeepest(lx, ly)
		}
		return child
	}
	return g
}

// Clone deep-copies the group and every descendant. The clone and the
// original share no children at any depth.
func (g *Group) Clone() Shape {
	clone := &Group{id: typeid.NewGroupID(), x: g.x, y: g.y}
	clone.children = make([]Shape, 0, len(g.children))
	for _, child := range g.children {
		clone.children = append(clone.children, child.Clone())
	}
	return clone
}

// Move shifts only the group's own origin. Children keep their relative
// coordinates, so the whole subtree translates rigidly.
func (g *Group) Move(dx, dy int) {
	g.x += dx
	g.y += dy
}

func (g *Group) Position() (int, int) { return g.x, g.y }
