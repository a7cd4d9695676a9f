package shape

import (
	"fmt"
	"io"
	"strings"

	"github.com/sketchd/sketchd/internal/typeid"
)

// Indent is the marker prefixing each tree-dump line, repeated once per depth level.
const Indent = "+"

// Shape is a drawable, hit-testable, cloneable, movable graphic entity.
// Coordinates handed to ContainsPoint must already be translated into the
// shape's parent frame; a Group translates them further for its children.
type Shape interface {
	// ID returns the shape's stable identifier.
	ID() string

	// Draw writes one line per node to w, prefixed by indent repetitions
	// of the indent marker.
	Draw(w io.Writer, indent int)

	// ContainsPoint reports whether the point lies inside the shape.
	ContainsPoint(px, py int) bool

	// Clone returns a fully independent deep copy with a fresh ID.
	Clone() Shape

	// Move shifts the shape's own origin by (dx, dy).
	Move(dx, dy int)

	// Position returns the current origin.
	Position() (x, y int)
}

// Circle is a leaf shape with a center origin and a positive radius.
type Circle struct {
	id     string
	x, y   int
	radius int
}

// NewCircle creates a circle. The radius must be positive.
func NewCircle(x, y, r int) (*Circle, error) {
	if r <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %d", r)
	}
	return &Circle{id: typeid.NewCircleID(), x: x, y: y, radius: r}, nil
}

func (c *Circle) ID() string { return c.id }

func (c *Circle) Draw(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sCircle (%d, %d) R=%d\n", strings.Repeat(Indent, indent), c.x, c.y, c.radius)
}

func (c *Circle) ContainsPoint(px, py int) bool {
	dx, dy := px-c.x, py-c.y
	return dx*dx+dy*dy <= c.radius*c.radius
}

func (c *Circle) Clone() Shape {
	return &Circle{id: typeid.NewCircleID(), x: c.x, y: c.y, radius: c.radius}
}

func (c *Circle) Move(dx, dy int) {
	c.x += dx
	c.y += dy
}

func (c *Circle) Position() (int, int) { return c.x, c.y }

// Radius returns the circle's radius. Radii are fixed at construction.
func (c *Circle) Radius() int { return c.radius }

// Rect is a leaf shape with a top-left origin and positive width and height.
type Rect struct {
	id            string
	x, y          int
	width, height int
}

// NewRect creates a rectangle. Width and height must be positive.
func NewRect(x, y, w, h int) (*Rect, error) {
	if w <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", w)
	}
	if h <= 0 {
		return nil, fmt.Errorf("height must be positive, got %d", h)
	}
	return &Rect{id: typeid.NewRectID(), x: x, y: y, width: w, height: h}, nil
}

func (r *Rect) ID() string { return r.id }

func (r *Rect) Draw(w io.Writer, indent int) {
	fmt.Fprintf(w, "%sRectangle (%d, %d) %d*%d\n", strings.Repeat(Indent, indent), r.x, r.y, r.width, r.height)
}

// ContainsPoint uses an inclusive axis-aligned bounding-box test.
func (r *Rect) ContainsPoint(px, py int) bool {
	return px >= r.x && px <= r.x+r.width && py >= r.y && py <= r.y+r.height
}

func (r *Rect) Clone() Shape {
	return &Rect{id: typeid.NewRectID(), x: r.x, y: r.y, width: r.width, height: r.height}
}

func (r *Rect) Move(dx, dy int) {
	r.x += dx
	r.y += dy
}

func (r *Rect) Position() (int, int) { return r.x, r.y }

// Size returns the rectangle's width and height.
func (r *Rect) Size() (w, h int) { return r.width, r.height }

// DrawLine renders a shape's own draw line without descending into children.
// Used by surfaces that need a one-line description of a hit-test result.
func DrawLine(s Shape) string {
	var b strings.Builder
	if g, ok := s.(*Group); ok {
		x, y := g.Position()
		fmt.Fprintf(&b, "Group (%d, %d)", x, y)
		return b.String()
	}
	s.Draw(&b, 0)
	return strings.TrimSuffix(b.String(), "\n")
}
