// Package journal persists every resolved roll to SQLite so sessions can be
// audited and replayed.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Entry is one journaled roll.
type Entry struct {
	ID        string
	Session   string
	Seq       int64
	Seed      int64
	Position  int64 // RNG draws consumed once this roll was made
	Feature   string
	Actor     string
	Target    string
	Pool      int
	Faces     []int
	DC        int
	Net       int
	Outcome   string
	Margin    int
	CreatedAt time.Time
}

// Store is a SQLite-backed roll journal.
type Store struct {
	sqlDB *sql.DB
}

// Open opens or creates the journal at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// NewSession returns a fresh session identifier.
func NewSession() string { return uuid.NewString() }

// Record persists one roll. An empty ID is filled with a new UUID and a
// zero CreatedAt with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("journal is not open")
	}
	e.Session = strings.TrimSpace(e.Session)
	if e.Session == "" {
		return fmt.Errorf("session is required")
	}
	if e.Feature == "" {
		return fmt.Errorf("feature is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	faces, err := json.Marshal(e.Faces)
	if err != nil {
		return fmt.Errorf("encode faces: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO rolls (
	id,
	session,
	seq,
	seed,
	position,
	feature,
	actor,
	target,
	pool,
	faces,
	dc,
	net,
	outcome,
	margin,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		e.ID,
		e.Session,
		e.Seq,
		e.Seed,
		e.Position,
		e.Feature,
		e.Actor,
		e.Target,
		e.Pool,
		string(faces),
		e.DC,
		e.Net,
		e.Outcome,
		e.Margin,
		e.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record roll: %w", err)
	}
	return nil
}

// List returns a session's rolls in sequence order.
func (s *Store) List(ctx context.Context, session string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("journal is not open")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	session,
	seq,
	seed,
	position,
	feature,
	actor,
	target,
	pool,
	faces,
	dc,
	net,
	outcome,
	margin,
	created_at
FROM rolls
WHERE session = ?
ORDER BY seq ASC
`, session)
	if err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var faces string
		var createdAt int64
		if err := rows.Scan(
			&e.ID,
			&e.Session,
			&e.Seq,
			&e.Seed,
			&e.Position,
			&e.Feature,
			&e.Actor,
			&e.Target,
			&e.Pool,
			&faces,
			&e.DC,
			&e.Net,
			&e.Outcome,
			&e.Margin,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		if err := json.Unmarshal([]byte(faces), &e.Faces); err != nil {
			return nil, fmt.Errorf("decode faces for roll %s: %w", e.ID, err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rolls: %w", err)
	}
	return entries, nil
}

// Last returns the final roll of a session, or false if it has none.
func (s *Store) Last(ctx context.Context, session string) (Entry, bool, error) {
	entries, err := s.List(ctx, session)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}
