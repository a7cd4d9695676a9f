// Package document implements the aggregate root of the scene graph: the
// ordered collection of top-level shapes and the command history that
// mutates it.
package document

import (
	"fmt"
	"io"

	"github.com/sketchd/sketchd/internal/history"
	"github.com/sketchd/sketchd/internal/shape"
)

// Document owns the ordered sequence of top-level shapes. Order is
// stacking order: the last shape is topmost for hit testing. All
// structural edits go through reversible commands recorded in the
// document's history.
type Document struct {
	objects []shape.Shape
	history *history.History
}

// New creates an empty document.
func New() *Document {
	return &Document{history: history.New()}
}

// AddObject appends a shape on top of the document, wrapped as a
// reversible command. The command executes immediately and is recorded.
func (d *Document) AddObject(s shape.Shape) {
	cmd := &addCommand{doc: d, shape: s}
	cmd.Execute()
	d.history.Record(cmd)
}

// RemoveLast removes the topmost shape as a reversible command and
// returns it. Returns an error without mutating when the document is
// empty.
func (d *Document) RemoveLast() (shape.Shape, error) {
	if len(d.objects) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	cmd := &removeLastCommand{doc: d}
	cmd.Execute()
	d.history.Record(cmd)
	return cmd.removed, nil
}

// Undo reverses the most recent edit. Returns history.ErrNothingToUndo
// as a non-fatal no-op signal when there is nothing to undo.
func (d *Document) Undo() error { return d.history.Undo() }

// Redo re-applies the most recently undone edit. Returns
// history.ErrNothingToRedo when the redo stack is empty.
func (d *Document) Redo() error { return d.history.Redo() }

// CanUndo reports whether an edit can be undone.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether an undone edit can be re-applied.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// Print writes the textual tree dump of every top-level shape in order,
// or "[empty]" when the document has no shapes.
func (d *Document) Print(w io.Writer) {
	if len(d.objects) == 0 {
		fmt.Fprintln(w, "[empty]")
		return
	}
	for _, obj := range d.objects {
		obj.Draw(w, 0)
	}
}

// FindObjectAt returns the deepest shape containing the point, scanning
// top-level shapes in reverse order so later-added shapes occlude earlier
// ones. A matching group is searched recursively. Returns nil when no
// shape contains the point; a miss is a valid negative result, not an
// error.
func (d *Document) FindObjectAt(x, y int) shape.Shape {
	for i := len(d.objects) - 1; i >= 0; i-- {
		obj := d.objects[i]
		if !obj.ContainsPoint(x, y) {
			continue
		}
		if grp, ok := obj.(*shape.Group); ok {
			return grp.FindDeepest(x, y)
		}
		return obj
	}
	return nil
}

// Len returns the number of top-level shapes.
func (d *Document) Len() int { return len(d.objects) }

// Objects returns the top-level shapes in stacking order. The slice is a
// copy; the shapes remain owned by the document.
func (d *Document) Objects() []shape.Shape {
	out := make([]shape.Shape, len(d.objects))
	copy(out, d.objects)
	return out
}

// addCommand appends a shape to the document's top-level collection.
// Undo removes the last element, which is necessarily the shape this
// command appended: only a matching Execute ever pushes.
type addCommand struct {
	doc   *Document
	shape shape.Shape
}

func (c *addCommand) Execute() {
	c.doc.objects = append(c.doc.objects, c.shape)
}

func (c *addCommand) Undo() {
	if n := len(c.doc.objects); n > 0 {
		c.doc.objects = c.doc.objects[:n-1]
	}
}

// removeLastCommand pops the topmost shape and remembers it so Undo can
// restore it in place.
type removeLastCommand struct {
	doc     *Document
	removed shape.Shape
}

func (c *removeLastCommand) Execute() {
	n := len(c.doc.objects)
	if n == 0 {
		return
	}
	c.removed = c.doc.objects[n-1]
	c.doc.objects = c.doc.objects[:n-1]
}

func (c *removeLastCommand) Undo() {
	if c.removed != nil {
		c.doc.objects = append(c.doc.objects, c.removed)
	}
}
