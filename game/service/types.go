package service

import (
	"github.com/wricardo/toy-robot/game/engine"
)

// PlaceCommand carries already-validated place parameters
type PlaceCommand struct {
	X    int                `json:"x"`
	Y    int                `json:"y"`
	Face engine.Orientation `json:"face"`
}

// UnitState converts the command into the engine's state type
func (c PlaceCommand) UnitState() engine.UnitState {
	return engine.UnitState{
		Position:    engine.Position{X: c.X, Y: c.Y},
		Orientation: c.Face,
	}
}

// CommandResult contains the result of a command
type CommandResult struct {
	Action  engine.Action     `json:"action"`
	Outcome engine.Outcome    `json:"outcome"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Placed  bool              `json:"placed"`
	State   *engine.UnitState `json:"state,omitempty"`
}

// StateInfo describes the current placement
type StateInfo struct {
	Placed bool              `json:"placed"`
	State  *engine.UnitState `json:"state,omitempty"`
	Report string            `json:"report"`
}

func newStateInfo(p engine.Placement) *StateInfo {
	info := &StateInfo{Report: engine.FormatReport(p)}
	if s, ok := p.State(); ok {
		info.Placed = true
		info.State = &s
	}
	return info
}

func newCommandResult(tr engine.Transition) *CommandResult {
	result := &CommandResult{
		Action:  tr.Action,
		Outcome: tr.Outcome,
		Success: true,
		Message: tr.Message(),
	}
	if s, ok := tr.After.State(); ok {
		result.Placed = true
		result.State = &s
	}
	return result
}
