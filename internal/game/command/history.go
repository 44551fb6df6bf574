package command

import (
	"errors"
)

var (
	// ErrNothingToUndo is returned when the executed stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned when the undone stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// stack is a LIFO of commands.
type stack struct {
	items []Command
}

func (s *stack) push(c Command) { s.items = append(s.items, c) }

func (s *stack) pop() (Command, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	idx := len(s.items) - 1
	c := s.items[idx]
	s.items[idx] = nil
	s.items = s.items[:idx]
	return c, true
}

func (s *stack) peek() (Command, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

func (s *stack) list() []Command { return append([]Command(nil), s.items...) }

// History records executed and undone commands. Recording a fresh command
// discards everything that was undone. It is not safe for concurrent use;
// the owning match serializes access.
type History struct {
	executed stack
	undone   stack
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Record pushes a freshly executed command and clears the redo stack.
func (h *History) Record(c Command) {
	h.executed.push(c)
	h.undone = stack{}
}

// PopExecuted removes the most recent executed command.
func (h *History) PopExecuted() (Command, error) {
	c, ok := h.executed.pop()
	if !ok {
		return nil, ErrNothingToUndo
	}
	return c, nil
}

// PopUndone removes the most recently undone command.
func (h *History) PopUndone() (Command, error) {
	c, ok := h.undone.pop()
	if !ok {
		return nil, ErrNothingToRedo
	}
	return c, nil
}

// PushExecuted puts a command back on the executed stack without touching
// the redo stack. Used for redo and for rolling back a failed undo.
func (h *History) PushExecuted(c Command) { h.executed.push(c) }

// PushUndone puts a command on the redo stack.
func (h *History) PushUndone(c Command) { h.undone.push(c) }

// LastExecuted peeks at the command Undo would reverse.
func (h *History) LastExecuted() (Command, bool) { return h.executed.peek() }

func (h *History) CanUndo() bool { return len(h.executed.items) > 0 }
func (h *History) CanRedo() bool { return len(h.undone.items) > 0 }

// Executed lists executed commands, oldest first.
func (h *History) Executed() []Command { return h.executed.list() }

// Undone lists undone commands, oldest undo first.
func (h *History) Undone() []Command { return h.undone.list() }

// Clear drops both stacks. Called at turn boundaries.
func (h *History) Clear() {
	h.executed = stack{}
	h.undone = stack{}
}
