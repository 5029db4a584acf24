// Package engine provides the core command logic for the toy robot board.
//
// The engine package implements:
//   - Orientation and position types for a fixed 6x6 grid
//   - Left/right rotation over the NORTH, EAST, SOUTH, WEST cycle
//   - Boundary-safe forward movement driven by a per-orientation table
//   - The placed/unplaced state machine and its command outcomes
//
// Core Types:
//
// Placement is the optional unit state: either Placed(UnitState) or
// Unplaced(). Every command takes the current Placement and returns a
// Transition holding the next Placement and an Outcome. Commands that need a
// unit on the board fail with ErrNotPlaced and leave the placement untouched.
//
// The engine holds no state of its own and performs no I/O. Callers read the
// current placement from a store, apply a command, and write back whatever
// the transition changed.
//
// Usage:
//
//	tr := engine.Place(engine.UnitState{Position: engine.Position{X: 3, Y: 3}, Orientation: engine.South})
//	tr, err := engine.MoveForward(tr.After)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(tr.Message()) // Toy model moved one unit forward.
//
// Movement Rules:
//
// NORTH increments y, SOUTH decrements y, EAST increments x and WEST
// decrements x. A move that would leave [0,5] on either axis is blocked: the
// position is kept and the outcome is OutcomeBlocked, which is a success.
package engine
