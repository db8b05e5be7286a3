// SPDX-License-Identifier: MIT

package recorder

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/katalvlaran/cmefsp/state"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - runs, snapshots, probabilities
const currentSchemaVersion = 1

// Run describes one solver run.
type Run struct {
	ID        string
	Model     string
	Species   []string
	Epsilon   float64
	CreatedAt time.Time
}

// Store persists runs and their snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// SaveRun inserts run. A zero CreatedAt is set to now.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	species, err := json.Marshal(run.Species)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, model, species, epsilon, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Model, string(species), run.Epsilon, run.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	return nil
}

// Run loads the run with the given id. Returns ErrNotFound if absent.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	var (
		run     Run
		species string
		created int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, model, species, epsilon, created_at FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Model, &species, &run.Epsilon, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: run %q", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	if err := json.Unmarshal([]byte(species), &run.Species); err != nil {
		return Run{}, fmt.Errorf("read run: species: %w", err)
	}
	run.CreatedAt = time.UnixMilli(created)

	return run, nil
}

// WriteSnapshot stores p for (runID, t), replacing any earlier snapshot at
// the same time. The run must exist.
func (s *Store) WriteSnapshot(ctx context.Context, runID string, t float64, p state.Sparse) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM snapshots WHERE run_id = ? AND t = ?`, runID, t); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, t, mass) VALUES (?, ?, ?)
	`, runID, t, p.Mass())
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO probabilities (snapshot_id, state, p) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	defer stmt.Close()
	for _, k := range p.SortedKeys() {
		if _, err = stmt.ExecContext(ctx, id, string(k), p[k]); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// Snapshot loads the distribution stored for (runID, t).
// Returns ErrNotFound if there is none.
func (s *Store) Snapshot(ctx context.Context, runID string, t float64) (state.Sparse, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM snapshots WHERE run_id = ? AND t = ?`, runID, t).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %q at t=%g", ErrNotFound, runID, t)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT state, p FROM probabilities WHERE snapshot_id = ? ORDER BY state COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer rows.Close()

	p := state.Sparse{}
	for rows.Next() {
		var (
			key string
			v   float64
		)
		if err := rows.Scan(&key, &v); err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		p[state.Key(key)] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	return p, nil
}

// Times returns the snapshot times of runID in increasing order.
// Returns an empty slice (not nil) when there are none.
func (s *Store) Times(ctx context.Context, runID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t FROM snapshots WHERE run_id = ? ORDER BY t ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query times: %w", err)
	}
	defer rows.Close()

	times := []float64{}
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("query times: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate times: %w", err)
	}

	return times, nil
}

// Sink returns a Recorder Sink writing snapshots of runID with ctx.
func (s *Store) Sink(ctx context.Context, runID string) Sink {
	return storeSink{ctx: ctx, store: s, runID: runID}
}

type storeSink struct {
	ctx   context.Context
	store *Store
	runID string
}

func (ss storeSink) Record(t float64, p state.Sparse) error {
	return ss.store.WriteSnapshot(ss.ctx, ss.runID, t, p)
}
