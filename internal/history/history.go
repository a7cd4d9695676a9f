// Package history implements a two-stack undo/redo controller over
// reversible document commands.
package history

import "errors"

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is a reversible unit of document mutation. Execute applies the
// forward effect and Undo exactly reverses it. The protocol guarantees
// Execute and Undo alternate: a command is executed once when recorded,
// then only ever undone and re-executed as the user navigates history.
type Command interface {
	Execute()
	Undo()
}

// History owns the undo and redo stacks, both most-recent-last.
type History struct {
	undo []Command
	redo []Command
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Record pushes an already-executed command onto the undo stack and
// discards the redo stack: a new edit after undo makes the undone
// timeline permanently unreachable.
func (h *History) Record(cmd Command) {
	h.undo = append(h.undo, cmd)
	h.redo = h.redo[:0]
}

// Undo reverses the most recent command and moves it to the redo stack.
// Returns ErrNothingToUndo when the undo stack is empty; state is
// unchanged in that case.
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo()
	h.redo = append(h.redo, cmd)
	return nil
}

// Redo re-applies the most recently undone command and moves it back to
// the undo stack. Returns ErrNothingToRedo when the redo stack is empty.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
