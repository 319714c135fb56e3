// Package history keeps a local ledger of successful releases in a
// SQLite database under the artifacts directory.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/nandakiran-r/TestPiper/internal/release"
)

const DefaultFilename = "releases.db"

// Entry is one recorded release.
type Entry struct {
	ID        string
	Image     string
	ImageID   string
	Refs      []string
	CreatedAt time.Time
}

// Ledger records and lists releases.
type Ledger struct {
	db *sql.DB
}

var _ release.Recorder = &Ledger{}

// Open opens (and if needed initializes) the ledger at path. The path
// ":memory:" yields an ephemeral ledger.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open release ledger: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS releases (
		id TEXT PRIMARY KEY,
		image TEXT NOT NULL,
		image_id TEXT NOT NULL,
		refs TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize release ledger: %w", err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores the receipt of a successful release.
func (l *Ledger) Record(ctx context.Context, receipt release.Receipt) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO releases (id, image, image_id, refs, created_at) VALUES (?, ?, ?, ?, ?)`,
		receipt.ID,
		receipt.Image,
		receipt.ImageID,
		strings.Join(receipt.Refs, ","),
		receipt.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("could not record release: %w", err)
	}
	return nil
}

// List returns recorded releases, newest first.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, image, image_id, refs, created_at FROM releases ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("could not list releases: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var refs string
		if err := rows.Scan(&e.ID, &e.Image, &e.ImageID, &refs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not scan release row: %w", err)
		}
		if refs != "" {
			e.Refs = strings.Split(refs, ",")
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
