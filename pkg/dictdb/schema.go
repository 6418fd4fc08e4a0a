package dictdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/kotobasearch/pkg/kerrors"
)

//go:embed schema.sql
var schemaSQL string

// DB is a handle on the read-only dictionary corpus. The process opens
// exactly one (or a small pool of) of these at startup; it is never
// written to at query time.
type DB struct {
	*sql.DB
}

// Open opens (or creates, for the seed/test path) the SQLite database at
// path and applies the read-only-friendly PRAGMAs from the resource model.
// The schema is applied only when readOnly is false; a read-only open
// expects the tables to exist already.
//
// readOnly=false is used only by the seed helper and by tests that build
// fixture databases; the query pipeline always opens with readOnly=true.
func Open(path string, readOnly bool) (*DB, error) {
	dsn := path
	if readOnly {
		dsn = fmt.Sprintf("file:%s?mode=ro", path)
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &kerrors.DatabaseUnavailable{Path: path, Err: err}
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, &kerrors.DatabaseUnavailable{Path: path, Err: err}
	}

	pragmas := []string{
		"PRAGMA journal_mode = DELETE",
		"PRAGMA cache_size = -8000", // ~8 MiB, negative = KiB
		"PRAGMA mmap_size = 268435456",
		"PRAGMA temp_store = MEMORY",
	}
	if readOnly {
		pragmas = append(pragmas, "PRAGMA query_only = ON")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, &kerrors.DatabaseUnavailable{Path: path, Err: fmt.Errorf("%s: %w", p, err)}
		}
	}

	if !readOnly {
		if _, err := conn.Exec(schemaSQL); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &DB{conn}, nil
}

// ValidateIntegrity implements validateDatabaseIntegrity(): it verifies the
// required tables exist and that the forward FTS index row count equals
// the entry count, per the data-model invariant. A mismatch means the
// database is corrupt and the core must refuse to serve.
func (d *DB) ValidateIntegrity(ctx context.Context) error {
	required := []string{"dictionary_entries", "word_senses", "example_sentences", "dictionary_fts"}
	for _, table := range required {
		var name string
		err := d.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table).Scan(&name)
		if err == sql.ErrNoRows {
			return &kerrors.DatabaseCorrupt{Reason: fmt.Sprintf("missing required table %q", table)}
		}
		if err != nil {
			return &kerrors.TransientDatabaseError{Op: "validate schema", Err: err}
		}
	}

	var entryCount, ftsCount int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM dictionary_entries`).Scan(&entryCount); err != nil {
		return &kerrors.TransientDatabaseError{Op: "count entries", Err: err}
	}
	// dictionary_fts is external-content, so a plain COUNT(*) on it would
	// read dictionary_entries; the docsize shadow table has one row per
	// indexed document.
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM dictionary_fts_docsize`).Scan(&ftsCount); err != nil {
		return &kerrors.TransientDatabaseError{Op: "count fts rows", Err: err}
	}
	if entryCount != ftsCount {
		return &kerrors.DatabaseCorrupt{Reason: fmt.Sprintf("forward FTS row count %d does not match entry count %d", ftsCount, entryCount)}
	}
	return nil
}
