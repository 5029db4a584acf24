package store

import (
	"context"
	"sync"

	"github.com/wricardo/toy-robot/game/engine"
)

// Memory keeps the unit record in process memory
type Memory struct {
	state  engine.UnitState
	placed bool
	mu     sync.RWMutex
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

// Place replaces any existing record
func (m *Memory) Place(ctx context.Context, state engine.UnitState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state
	m.placed = true
	return nil
}

// Get returns the current record
func (m *Memory) Get(ctx context.Context) (engine.Placement, error) {
	if err := ctx.Err(); err != nil {
		return engine.Unplaced(), err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.placed {
		return engine.Unplaced(), nil
	}
	return engine.Placed(m.state), nil
}

// SetPosition overwrites the stored position
func (m *Memory) SetPosition(ctx context.Context, pos engine.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.placed {
		return ErrNoUnit
	}
	m.state.Position = pos
	return nil
}

// SetOrientation overwrites the stored orientation
func (m *Memory) SetOrientation(ctx context.Context, o engine.Orientation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.placed {
		return ErrNoUnit
	}
	m.state.Orientation = o
	return nil
}

// Remove deletes the record; removing nothing is fine
func (m *Memory) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = engine.UnitState{}
	m.placed = false
	return nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
