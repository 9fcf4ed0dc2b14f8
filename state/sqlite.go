package state

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/wippyai/wasm-programs/errors"
	"github.com/wippyai/wasm-programs/handle"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	owner INTEGER NOT NULL,
	key   BLOB    NOT NULL,
	value BLOB,
	PRIMARY KEY (owner, key)
);
CREATE TABLE IF NOT EXISTS programs (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	wasm BLOB NOT NULL
);`

// SQLite is a Backend persisted in a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Backend = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path. Use ":memory:" for a
// throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Get returns the value stored under key for owner.
func (s *SQLite) Get(ctx context.Context, owner handle.Handle, key []byte) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE owner = ? AND key = ?",
		owner.Int64(), key,
	).Scan(&v)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(errors.PhaseStorage, key)
		}
		return nil, errors.Wrap(errors.PhaseStorage, errors.KindHostStore, err, "query value")
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

// Put inserts or replaces the value under key for owner.
func (s *SQLite) Put(ctx context.Context, owner handle.Handle, key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv (owner, key, value) VALUES (?, ?, ?)",
		owner.Int64(), key, value,
	)
	if err != nil {
		return errors.Wrap(errors.PhaseStorage, errors.KindHostStore, err, "save value")
	}
	return nil
}

// PutProgram inserts wasm and returns its row id as the program handle.
func (s *SQLite) PutProgram(ctx context.Context, wasm []byte) (handle.Handle, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO programs (wasm) VALUES (?)", wasm)
	if err != nil {
		return handle.Invalid, errors.Wrap(errors.PhaseLoad, errors.KindHostStore, err, "save program")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return handle.Invalid, errors.Wrap(errors.PhaseLoad, errors.KindHostStore, err, "program id")
	}
	return handle.FromHost(id), nil
}

// Program returns the module published as id.
func (s *SQLite) Program(ctx context.Context, id handle.Handle) ([]byte, error) {
	var wasm []byte
	err := s.db.QueryRowContext(ctx, "SELECT wasm FROM programs WHERE id = ?", id.Int64()).Scan(&wasm)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
				Value(id).
				Detail("%s not published", id).
				Build()
		}
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindHostStore, err, "query program")
	}
	return wasm, nil
}

// Programs lists published handles in ascending order.
func (s *SQLite) Programs(ctx context.Context) ([]handle.Handle, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM programs ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindHostStore, err, "list programs")
	}
	defer rows.Close()

	var ids []handle.Handle
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindHostStore, err, "scan program id")
		}
		ids = append(ids, handle.FromHost(id))
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
