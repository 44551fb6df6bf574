package command

import (
	"fmt"

	"github.com/elementarclash/clash-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Executor validates, executes and records commands against one state.
type Executor struct {
	state   State
	history *History
	logger  *zap.Logger
}

// NewExecutor creates an executor with an empty history. A nil logger
// disables logging.
func NewExecutor(state State, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{state: state, history: NewHistory(), logger: logger}
}

// History exposes the executor's history.
func (e *Executor) History() *History { return e.history }

// Submit validates cmd and, when it passes, executes and records it. A
// rejected command leaves the state untouched.
func (e *Executor) Submit(cmd Command) ValidationResult {
	res := cmd.Validate(e.state)
	if !res.OK {
		e.logger.Debug("command rejected",
			zap.String("command", cmd.String()),
			zap.String("reason", res.Reason))
		return res
	}
	cmd.Execute(e.state)
	e.history.Record(cmd)
	e.state.Publish(rules.NewEvent(rules.EventCommandExecuted, cmd.ActorID(), "").WithDescription(cmd.String()))
	e.logger.Debug("command executed", zap.String("command", cmd.String()))
	return res
}

// Undo reverses the most recent command. When reversal fails the command
// stays on the executed stack.
func (e *Executor) Undo() (Command, error) {
	cmd, err := e.history.PopExecuted()
	if err != nil {
		return nil, err
	}
	if err := e.undo(cmd); err != nil {
		e.history.PushExecuted(cmd)
		e.logger.Warn("undo failed", zap.String("command", cmd.String()), zap.Error(err))
		return nil, err
	}
	e.history.PushUndone(cmd)
	e.state.Publish(rules.NewEvent(rules.EventCommandUndone, cmd.ActorID(), "").WithDescription(cmd.String()))
	return cmd, nil
}

// undo runs cmd.Undo, restoring the history slot before a panic escapes.
func (e *Executor) undo(cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.history.PushExecuted(cmd)
			panic(r)
		}
	}()
	return cmd.Undo(e.state)
}

// Redo re-executes the most recently undone command after validating it
// again. A command that no longer validates stays on the redo stack.
func (e *Executor) Redo() (Command, error) {
	cmd, err := e.history.PopUndone()
	if err != nil {
		return nil, err
	}
	if res := cmd.Validate(e.state); !res.OK {
		e.history.PushUndone(cmd)
		return nil, fmt.Errorf("cannot redo %s: %s", cmd, res.Reason)
	}
	cmd.Execute(e.state)
	e.history.PushExecuted(cmd)
	e.state.Publish(rules.NewEvent(rules.EventCommandRedone, cmd.ActorID(), "").WithDescription(cmd.String()))
	return cmd, nil
}
