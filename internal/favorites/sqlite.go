package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	entity_id TEXT PRIMARY KEY,
	note      TEXT NOT NULL DEFAULT '',
	added_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore persists favorites in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening favorites database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing favorites schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Add pins an entity. Re-adding updates the note and keeps the
// original timestamp.
func (s *SQLiteStore) Add(ctx context.Context, entityID, note string) error {
	if entityID == "" {
		return fmt.Errorf("entity_id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (entity_id, note, added_at) VALUES (?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET note = excluded.note`,
		entityID, note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// Remove unpins an entity. Removing an unknown entity is not an error.
func (s *SQLiteStore) Remove(ctx context.Context, entityID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE entity_id = ?`, entityID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// List returns all favorites ordered by entity ID.
func (s *SQLiteStore) List(ctx context.Context) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id, note, added_at FROM favorites ORDER BY entity_id`)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.EntityID, &f.Note, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
