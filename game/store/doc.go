// Package store provides state storage for the toy robot board.
//
// The store package implements:
//   - A Store interface holding zero or one unit record
//   - An in-memory store guarded by a read/write mutex
//   - A SQLite store backed by modernc.org/sqlite
//
// Core Types:
//
// Store is the storage contract. Get returns an engine.Placement, so "is a
// unit placed" is answered by the presence of the record and nothing else.
// SetPosition and SetOrientation fail with ErrNoUnit when nothing is placed;
// Remove always succeeds.
//
// Stores know nothing about grid rules. Callers are expected to hand them
// values that already satisfy the board invariant.
//
// Usage:
//
//	st, err := store.Open(store.DriverSQLite, ":memory:")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	err = st.Place(ctx, engine.UnitState{Position: engine.Position{X: 1, Y: 2}, Orientation: engine.North})
//	placement, err := st.Get(ctx)
//
// Durability:
//
// The SQLite store recreates its table on open. State never survives a
// restart, whichever driver is used.
package store
