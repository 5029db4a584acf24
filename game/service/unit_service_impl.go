package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/toy-robot/game/engine"
)

// unitServiceImpl implements the UnitService interface
type unitServiceImpl struct {
	store    StateStore
	observer Observer
	metrics  *Metrics

	// mu serializes read -> compute -> write so a precondition check and the
	// mutation it guards cannot interleave with another command.
	mu sync.Mutex
}

// Option configures the service
type Option func(*unitServiceImpl)

// WithObserver registers an observer for committed changes
func WithObserver(o Observer) Option {
	return func(s *unitServiceImpl) {
		s.observer = o
	}
}

// WithMetrics enables command counters
func WithMetrics(m *Metrics) Option {
	return func(s *unitServiceImpl) {
		s.metrics = m
	}
}

// NewUnitService creates a new unit service backed by store
func NewUnitService(store StateStore, opts ...Option) UnitService {
	s := &unitServiceImpl{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place puts the unit on the board, replacing any previous one
func (s *unitServiceImpl) Place(ctx context.Context, cmd PlaceCommand) (*CommandResult, error) {
	return s.execute(ctx, engine.Command{Action: engine.ActionPlace, State: cmd.UnitState()})
}

// Rotate turns the unit left or right
func (s *unitServiceImpl) Rotate(ctx context.Context, dir engine.Direction) (*CommandResult, error) {
	return s.execute(ctx, engine.Command{Action: engine.ActionRotate, Direction: dir})
}

// Move advances the unit one cell if it stays on the board
func (s *unitServiceImpl) Move(ctx context.Context) (*CommandResult, error) {
	return s.execute(ctx, engine.Command{Action: engine.ActionMove})
}

// Report returns the unit's position and orientation
func (s *unitServiceImpl) Report(ctx context.Context) (*CommandResult, error) {
	return s.execute(ctx, engine.Command{Action: engine.ActionReport})
}

// Remove takes the unit off the board
func (s *unitServiceImpl) Remove(ctx context.Context) (*CommandResult, error) {
	return s.execute(ctx, engine.Command{Action: engine.ActionRemove})
}

// State returns the current placement
func (s *unitServiceImpl) State(ctx context.Context) (*StateInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return newStateInfo(cur), nil
}

// execute runs one command against the stored placement
func (s *unitServiceImpl) execute(ctx context.Context, cmd engine.Command) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	tr, err := engine.Apply(cur, cmd)
	if err != nil {
		s.metrics.observe(string(cmd.Action), outcomeRejected, cur.IsPlaced())
		if errors.Is(err, engine.ErrNotPlaced) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", cmd.Action, err)
	}

	if err := s.commit(ctx, tr); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", cmd.Action, err)
	}
	s.metrics.observe(string(tr.Action), string(tr.Outcome), tr.After.IsPlaced())

	if s.observer != nil && tr.Changed() {
		s.observer.StateChanged(newStateInfo(tr.After))
	}

	return newCommandResult(tr), nil
}

// commit writes only what the transition changed
func (s *unitServiceImpl) commit(ctx context.Context, tr engine.Transition) error {
	after, placed := tr.After.State()

	switch tr.Outcome {
	case engine.OutcomePlaced:
		return s.store.Place(ctx, after)
	case engine.OutcomeRotatedLeft, engine.OutcomeRotatedRight:
		return s.store.SetOrientation(ctx, after.Orientation)
	case engine.OutcomeMoved:
		return s.store.SetPosition(ctx, after.Position)
	case engine.OutcomeRemoved:
		return s.store.Remove(ctx)
	case engine.OutcomeBlocked, engine.OutcomeReported:
		return nil
	default:
		return fmt.Errorf("unhandled outcome %q (placed=%v)", tr.Outcome, placed)
	}
}
