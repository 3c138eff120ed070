package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the station's local store: a single writer connection and a small
// query-only pool over the same file.
type DB struct {
	Path string
	W    *bun.DB
	R    *bun.DB
}

const readPoolSize = 4

// OpenDB opens (creating if needed) the database file at path.
func OpenDB(path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create %s: %w", dir, err)
		}
	}

	w, err := openHandle(path, url.Values{"_txlock": {"immediate"}}, 1)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open writer: %w", err)
	}
	// The writer creates the file so the read pool can open it read-only.
	if err := w.Ping(); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("sqlite: open writer: %w", err)
	}

	r, err := openReadPool(path)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("sqlite: open read pool: %w", err)
	}

	return &DB{
		Path: path,
		W:    bun.NewDB(w, sqlitedialect.New()),
		R:    bun.NewDB(r, sqlitedialect.New()),
	}, nil
}

func openReadPool(path string) (*sql.DB, error) {
	r, err := openHandle(path, url.Values{"mode": {"ro"}, "_query_only": {"1"}}, readPoolSize)
	if err != nil {
		return nil, err
	}
	if err := r.Ping(); err == nil {
		return r, nil
	} else if !strings.Contains(err.Error(), "unable to open database file") {
		_ = r.Close()
		return nil, err
	}
	// Some filesystems refuse mode=ro on a file the writer just created.
	_ = r.Close()
	return openHandle(path, url.Values{"_query_only": {"1"}}, readPoolSize)
}

func openHandle(path string, extra url.Values, maxOpen int) (*sql.DB, error) {
	params := url.Values{
		"_foreign_keys": {"on"},
		"_busy_timeout": {"5000"},
	}
	for k, v := range extra {
		params[k] = v
	}
	h, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	h.SetMaxOpenConns(maxOpen)
	h.SetConnMaxIdleTime(5 * time.Minute)
	h.SetConnMaxLifetime(15 * time.Minute)
	return h, nil
}

// Close closes both handles.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var errs []error
	if db.W != nil {
		errs = append(errs, db.W.Close())
	}
	if db.R != nil {
		errs = append(errs, db.R.Close())
	}
	return errors.Join(errs...)
}
