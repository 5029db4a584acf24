package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/toy-robot/game/engine"
	_ "modernc.org/sqlite"
)

const schema = `
DROP TABLE IF EXISTS toy_model;
CREATE TABLE toy_model (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	x    INTEGER NOT NULL,
	y    INTEGER NOT NULL,
	face TEXT    NOT NULL
);`

// SQLite persists the unit record in a single-row SQLite table
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at dsn and recreates the table.
// An empty dsn means an in-memory database.
func OpenSQLite(dsn string) (*SQLite, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create toy_model table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Place replaces any existing record in one transaction
func (s *SQLite) Place(ctx context.Context, state engine.UnitState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin place: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM toy_model`); err != nil {
		return fmt.Errorf("clear toy_model: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO toy_model (id, x, y, face) VALUES (1, ?, ?, ?)`,
		state.Position.X, state.Position.Y, state.Orientation.String(),
	); err != nil {
		return fmt.Errorf("insert toy_model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit place: %w", err)
	}
	return nil
}

// Get returns the current record
func (s *SQLite) Get(ctx context.Context) (engine.Placement, error) {
	var (
		state engine.UnitState
		face  string
	)
	err := s.db.QueryRowContext(ctx, `SELECT x, y, face FROM toy_model WHERE id = 1`).
		Scan(&state.Position.X, &state.Position.Y, &face)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Unplaced(), nil
	}
	if err != nil {
		return engine.Unplaced(), fmt.Errorf("select toy_model: %w", err)
	}

	state.Orientation, err = engine.ParseOrientation(face)
	if err != nil {
		return engine.Unplaced(), fmt.Errorf("decode toy_model face: %w", err)
	}
	return engine.Placed(state), nil
}

// SetPosition overwrites the stored position
func (s *SQLite) SetPosition(ctx context.Context, pos engine.Position) error {
	res, err := s.db.ExecContext(ctx, `UPDATE toy_model SET x = ?, y = ? WHERE id = 1`, pos.X, pos.Y)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return requireRow(res)
}

// SetOrientation overwrites the stored orientation
func (s *SQLite) SetOrientation(ctx context.Context, o engine.Orientation) error {
	res, err := s.db.ExecContext(ctx, `UPDATE toy_model SET face = ? WHERE id = 1`, o.String())
	if err != nil {
		return fmt.Errorf("update face: %w", err)
	}
	return requireRow(res)
}

// Remove deletes the record if present
func (s *SQLite) Remove(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM toy_model`); err != nil {
		return fmt.Errorf("delete toy_model: %w", err)
	}
	return nil
}

// Close closes the SQLite handle
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// requireRow maps an update that touched nothing to ErrNoUnit
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoUnit
	}
	return nil
}
