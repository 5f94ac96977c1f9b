package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Record is one journaled processor event.
type Record struct {
	ID        int64
	Kind      string
	Processor string
	Command   string
	HandleID  string
	Priority  int
	Seq       int64
	Tags      []string
	Depth     int
	Error     string
	CreatedAt time.Time
}

// Filter narrows Records. Zero fields match everything.
type Filter struct {
	Processor string
	Kind      string
	Limit     int
}

// Append inserts a record and returns its id.
// A zero CreatedAt is stamped with the current time.
func (s *Store) Append(ctx context.Context, r Record) (int64, error) {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := sonnet.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("append: marshal tags: %w", err)
	}

	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(kind, processor, command, handle_id, priority, seq, tags, depth, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Kind,
		r.Processor,
		r.Command,
		r.HandleID,
		r.Priority,
		r.Seq,
		string(tagsJSON),
		r.Depth,
		r.Error,
		created.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("append: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append: last insert id: %w", err)
	}
	return id, nil
}

// Records returns journaled events matching f in append order.
func (s *Store) Records(ctx context.Context, f Filter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Processor != "" {
		where = append(where, "processor = ?")
		args = append(args, f.Processor)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}

	query := `SELECT id, kind, processor, command, handle_id, priority, seq, tags, depth, error, created_at FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			tagsJSON string
			created  int64
		)
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Processor, &r.Command, &r.HandleID,
			&r.Priority, &r.Seq, &tagsJSON, &r.Depth, &r.Error, &created,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := sonnet.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return nil, fmt.Errorf("record %d: unmarshal tags: %w", r.ID, err)
		}
		r.CreatedAt = time.Unix(0, created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Count returns the number of journaled events for processor, or for all
// processors when processor is empty.
func (s *Store) Count(ctx context.Context, processor string) (int, error) {
	query := "SELECT COUNT(*) FROM events"
	var args []any
	if processor != "" {
		query += " WHERE processor = ?"
		args = append(args, processor)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
