// Package store is the durable record store for evaluations, comparisons
// and user-defined behaviors, backed by a SQLite database. Records are kept
// as JSON documents so nested stage records survive restarts intact.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mangleddev/behaviorlab/internal/models"
)

// ErrNotFound is returned when an id does not match any stored record.
var ErrNotFound = errors.New("record not found")

// Store provides access to all persisted evaluation data.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evaluations (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			document   BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS comparisons (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			document   BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS behaviors (
			key         TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			position    INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// CreateEvaluation persists a new evaluation record.
func (s *Store) CreateEvaluation(ctx context.Context, ev *models.Evaluation) error {
	return s.insert(ctx, "evaluations", ev.ID, ev.CreatedAt, ev)
}

// GetEvaluation loads one evaluation, or ErrNotFound.
func (s *Store) GetEvaluation(ctx context.Context, id string) (*models.Evaluation, error) {
	var ev models.Evaluation
	if err := s.get(ctx, "evaluations", id, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListEvaluations returns all evaluations in creation order.
func (s *Store) ListEvaluations(ctx context.Context) ([]models.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM evaluations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var ev models.Evaluation
		if err := json.Unmarshal(doc, &ev); err != nil {
			return nil, fmt.Errorf("decoding evaluation: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// UpdateEvaluation applies mutate to the current record and writes the
// result back. This is a read-modify-write without a transaction lock: the
// orchestration contract guarantees a single writer per evaluation id.
func (s *Store) UpdateEvaluation(ctx context.Context, id string, mutate func(*models.Evaluation)) (*models.Evaluation, error) {
	ev, err := s.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(ev)
	if err := s.put(ctx, "evaluations", id, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// DeleteEvaluation removes one evaluation, or returns ErrNotFound.
func (s *Store) DeleteEvaluation(ctx context.Context, id string) error {
	return s.delete(ctx, "evaluations", id)
}

// CreateComparison persists a new comparison record.
func (s *Store) CreateComparison(ctx context.Context, c *models.Comparison) error {
	return s.insert(ctx, "comparisons", c.ID, c.CreatedAt, c)
}

// GetComparison loads one comparison, or ErrNotFound.
func (s *Store) GetComparison(ctx context.Context, id string) (*models.Comparison, error) {
	var c models.Comparison
	if err := s.get(ctx, "comparisons", id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComparisons returns all comparisons in creation order.
func (s *Store) ListComparisons(ctx context.Context) ([]models.Comparison, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM comparisons ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing comparisons: %w", err)
	}
	defer rows.Close()

	var out []models.Comparison
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var c models.Comparison
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decoding comparison: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateComparison applies mutate to the current record and writes the
// result back.
func (s *Store) UpdateComparison(ctx context.Context, id string, mutate func(*models.Comparison)) (*models.Comparison, error) {
	c, err := s.GetComparison(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(c)
	if err := s.put(ctx, "comparisons", id, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComparison removes one comparison, or returns ErrNotFound.
func (s *Store) DeleteComparison(ctx context.Context, id string) error {
	return s.delete(ctx, "comparisons", id)
}

// ListBehaviors returns the full catalog, built-ins first, then user-defined
// behaviors in insertion order.
func (s *Store) ListBehaviors(ctx context.Context) ([]models.Behavior, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, description FROM behaviors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing behaviors: %w", err)
	}
	defer rows.Close()

	out := append([]models.Behavior(nil), DefaultBehaviors...)
	for rows.Next() {
		var b models.Behavior
		if err := rows.Scan(&b.Key, &b.Description); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBehavior finds one behavior by key across both catalogs, or
// ErrNotFound.
func (s *Store) GetBehavior(ctx context.Context, key string) (*models.Behavior, error) {
	all, err := s.ListBehaviors(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Key == key {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

// AddBehavior appends a user-defined behavior. Keys must be unique across
// built-in and custom behaviors.
func (s *Store) AddBehavior(ctx context.Context, key, description string) (*models.Behavior, error) {
	if key == "" {
		return nil, models.NewValidationError("key", "behavior key is required")
	}
	existing, err := s.ListBehaviors(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if b.Key == key {
			return nil, models.NewValidationError("key", "behavior with key %q already exists", key)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO behaviors (key, description, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM behaviors))`,
		key, description)
	if err != nil {
		return nil, fmt.Errorf("adding behavior: %w", err)
	}
	return &models.Behavior{Key: key, Description: description}, nil
}

func (s *Store) insert(ctx context.Context, table, id string, createdAt time.Time, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", table, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, created_at, document) VALUES (?, ?, ?)`,
		id, createdAt.UTC().Format(time.RFC3339Nano), doc)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, table, id string, v any) error {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM `+table+` WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading from %s: %w", table, err)
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return fmt.Errorf("decoding %s record %s: %w", table, id, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, table, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", table, err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET document = ? WHERE id = ?`, doc, id)
	if err != nil {
		return fmt.Errorf("updating %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) delete(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
