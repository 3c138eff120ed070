package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// schemaMigration records one applied migration file.
type schemaMigration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// ApplyMigrations applies the *.sql files in dir, or the embedded set when
// dir is empty.
func ApplyMigrations(ctx context.Context, db *DB, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return ApplyEmbeddedMigrations(ctx, db)
	}
	return applyMigrations(ctx, db, os.DirFS(dir), ".")
}

// ApplyEmbeddedMigrations applies the migrations compiled into the binary.
func ApplyEmbeddedMigrations(ctx context.Context, db *DB) error {
	return applyMigrations(ctx, db, embeddedMigrations, "migrations")
}

// applyMigrations runs each file not yet recorded in schema_migrations, in
// lexical order, each in its own transaction together with its record.
func applyMigrations(ctx context.Context, db *DB, fsys fs.FS, root string) error {
	files, err := fs.Glob(fsys, path.Join(root, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewCreateTable().Model((*schemaMigration)(nil)).IfNotExists().Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, file := range files {
		name := path.Base(file)
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.NewInsert().Model(&schemaMigration{Name: name, AppliedAt: time.Now().UTC()}).Exec(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		slog.Info("applied migration", slog.String("name", name))
	}
	return nil
}

func appliedMigrations(ctx context.Context, db *DB) (map[string]bool, error) {
	var names []string
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model((*schemaMigration)(nil)).Column("name").Scan(ctx, &names)
	})
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}
