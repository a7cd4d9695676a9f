package document

import "github.com/sketchd/sketchd/internal/shape"

// NewSampleDocument builds the demo scene: a circle, a group containing a
// rectangle, a circle, and a nested group, then a rectangle on top.
func NewSampleDocument() *Document {
	doc := New()

	c1, _ := shape.NewCircle(10, 10, 5)
	r1, _ := shape.NewRect(5, 7, 5, 6)

	group1 := shape.NewGroup(2, 2)
	gr, _ := shape.NewRect(3, 4, 2, 3)
	gc, _ := shape.NewCircle(1, 5, 2)
	group1.Add(gr)
	group1.Add(gc)

	group2 := shape.NewGroup(4, 6)
	g2c, _ := shape.NewCircle(0, 1, 3)
	group2.Add(g2c)
	group1.Add(group2)

	doc.AddObject(c1)
	doc.AddObject(group1)
	doc.AddObject(r1)

	return doc
}
