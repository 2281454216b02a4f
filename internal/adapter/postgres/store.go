package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
)

// Store implements statestore.Store using PostgreSQL. Each Save replaces the
// whole collection inside one transaction, matching the port's contract.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// LoadEvents returns the event log in insertion order.
func (s *Store) LoadEvents(ctx context.Context) ([]coordination.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM coordination_events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	var events []coordination.Event
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev, ok := decodeRow[coordination.Event]("coordination_events", data)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// SaveEvents replaces the full event log.
func (s *Store) SaveEvents(ctx context.Context, events []coordination.Event) error {
	return s.replace(ctx, "coordination_events", func(ctx context.Context, tx pgx.Tx) error {
		for i := range events {
			data, err := json.Marshal(events[i])
			if err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO coordination_events (data) VALUES ($1)`, data); err != nil {
				return fmt.Errorf("insert event: %w", err)
			}
		}
		return nil
	})
}

// LoadPatterns returns the pattern map keyed by canonical pattern key.
func (s *Store) LoadPatterns(ctx context.Context) (map[string]coordination.Pattern, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, data FROM coordination_patterns`)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	defer rows.Close()

	patterns := make(map[string]coordination.Pattern)
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		p, ok := decodeRow[coordination.Pattern]("coordination_patterns", data)
		if !ok {
			continue
		}
		patterns[key] = p
	}
	return patterns, rows.Err()
}

// SavePatterns replaces the full pattern map.
func (s *Store) SavePatterns(ctx context.Context, patterns map[string]coordination.Pattern) error {
	return s.replace(ctx, "coordination_patterns", func(ctx context.Context, tx pgx.Tx) error {
		for key, p := range patterns {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode pattern %s: %w", key, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO coordination_patterns (key, data) VALUES ($1, $2)`, key, data); err != nil {
				return fmt.Errorf("insert pattern %s: %w", key, err)
			}
		}
		return nil
	})
}

// LoadInsights returns the insight list.
func (s *Store) LoadInsights(ctx context.Context) ([]coordination.Insight, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM coordination_insights`)
	if err != nil {
		return nil, fmt.Errorf("load insights: %w", err)
	}
	defer rows.Close()

	var insights []coordination.Insight
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		in, ok := decodeRow[coordination.Insight]("coordination_insights", data)
		if !ok {
			continue
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}

// SaveInsights replaces the full insight list.
func (s *Store) SaveInsights(ctx context.Context, insights []coordination.Insight) error {
	return s.replace(ctx, "coordination_insights", func(ctx context.Context, tx pgx.Tx) error {
		for i := range insights {
			data, err := json.Marshal(insights[i])
			if err != nil {
				return fmt.Errorf("encode insight: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO coordination_insights (id, data) VALUES ($1, $2)`, insights[i].ID, data); err != nil {
				return fmt.Errorf("insert insight %s: %w", insights[i].ID, err)
			}
		}
		return nil
	})
}

// decodeRow unmarshals one stored jsonb document. A row that no longer
// decodes must not take the engine down; it is logged and skipped so the
// collection loads with whatever state is still readable.
func decodeRow[T any](table string, data []byte) (T, bool) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Warn("state row corrupt, skipping", "table", table, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// replace truncates the table and runs insert inside one transaction.
func (s *Store) replace(ctx context.Context, table string, insert func(context.Context, pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
