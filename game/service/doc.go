// Package service provides the business logic layer for the toy robot board.
//
// The service package implements:
//   - Place, rotate, move, report and remove commands
//   - Serialized read-compute-write access to the state store
//   - Change notification for push transports
//   - Command counters for Prometheus
//
// Core Interfaces:
//
// UnitService is the main service interface used by every transport.
// StateStore is the storage it depends on; game/store provides the
// implementations. Observer receives the new state after each committed
// change.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the engine. It reads the current placement, asks the engine for the
// transition, and writes back only the field the transition changed, all
// under a single mutex.
//
// Usage:
//
//	st := store.NewMemory()
//	svc := service.NewUnitService(st)
//
//	_, err := svc.Place(ctx, service.PlaceCommand{X: 3, Y: 3, Face: engine.South})
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := svc.Move(ctx) // res.Outcome == engine.OutcomeMoved
//
// Errors:
//
// Commands that need a placed unit return engine.ErrNotPlaced unwrapped.
// Store failures are wrapped with the action name.
package service
