/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "bzwparse/internal/log"
	"bzwparse/internal/version"

	// Postgres via database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the index schema. Bump it when changing the schema
// and add a step to runMigrations.
const schemaVersion = 2

// Driver names accepted by OpenIndex.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Index stores parsed documents in a relational database so maps can be
// queried across files.
type Index struct {
	db  *sql.DB
	d   dialect
	log *slog.Logger
}

// dialect holds what differs between the supported databases.
type dialect struct {
	driver string
	serial string // auto-increment primary key column type
	dollar bool   // $n placeholders instead of ?
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite3":
		return dialect{driver: DriverSQLite, serial: "INTEGER PRIMARY KEY"}, nil
	case DriverPostgres, "postgres", "postgresql":
		return dialect{driver: DriverPostgres, serial: "BIGSERIAL PRIMARY KEY", dollar: true}, nil
	}
	return dialect{}, fmt.Errorf("unsupported index driver %q (want sqlite or pgx)", driver)
}

// rebind rewrites ? placeholders for the dialect. Queries in this package
// never contain a literal question mark.
func (d dialect) rebind(q string) string {
	if !d.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// sqliteDSN turns a plain path into a URI with a busy timeout and creates
// the parent directory. URIs and ":memory:" pass through.
func sqliteDSN(dsn string) (string, error) {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "", errors.New("index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return "", fmt.Errorf("create index dir: %w", err)
	}
	return fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(dsn)), nil
}

// OpenIndex opens or creates the index, ensures the meta/version tables and
// brings the schema up to date.
func OpenIndex(ctx context.Context, driver, dsn string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(slog.String("driver", driver))
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if d.driver == DriverSQLite {
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	ix := &Index{db: db, d: d, log: applog.WithComponent("storage")}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if d.driver == DriverSQLite {
		// One connection keeps pragmas in effect and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			l.Error("enable WAL failed", slog.Any("err", err))
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
			l.Warn("enable foreign_keys failed", slog.Any("err", err))
		}
	} else if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", d.driver, err)
	}

	for _, step := range []func(context.Context) error{ix.ensureMetaAndVersion, ix.ensureIndexSchema, ix.runMigrations} {
		if err := step(ctx); err != nil {
			_ = db.Close()
			l.Error("prepare index failed", slog.Any("err", err))
			return nil, err
		}
	}
	l.Debug("index ready")
	return ix, nil
}

func (ix *Index) Close() error { return ix.db.Close() }

// SchemaVersion reports the schema version recorded in the database.
func (ix *Index) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (ix *Index) exec(ctx context.Context, q string, args ...any) error {
	_, err := ix.db.ExecContext(ctx, ix.d.rebind(q), args...)
	return err
}

func (ix *Index) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
	}
	for _, q := range ddl {
		if err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh database starts at 1 and migrates forward like any other.
		if err := ix.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, 1, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if err := ix.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates the version 1 tables.
func (ix *Index) ensureIndexSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id        ` + ix.d.serial + `,
			source    TEXT    NOT NULL,
			parsed_at TEXT    NOT NULL,
			ok        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source)`,
		`CREATE TABLE IF NOT EXISTS objects (
			id          ` + ix.d.serial + `,
			document_id BIGINT  NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			parent_id   BIGINT  REFERENCES objects(id) ON DELETE CASCADE,
			kind        TEXT    NOT NULL,
			name        TEXT    NOT NULL,
			ordinal     INTEGER NOT NULL,
			line        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_objects_document ON objects(document_id)`,
		`CREATE TABLE IF NOT EXISTS parameters (
			id        ` + ix.d.serial + `,
			object_id BIGINT  NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
			name      TEXT    NOT NULL,
			ordinal   INTEGER NOT NULL,
			line      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_parameters_object ON parameters(object_id)`,
		`CREATE TABLE IF NOT EXISTS param_values (
			parameter_id BIGINT  NOT NULL REFERENCES parameters(id) ON DELETE CASCADE,
			ordinal      INTEGER NOT NULL,
			kind         TEXT    NOT NULL,
			num          DOUBLE PRECISION,
			text         TEXT,
			PRIMARY KEY(parameter_id, ordinal)
		)`,
	}
	for _, q := range ddl {
		if err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func (ix *Index) runMigrations(ctx context.Context) error {
	cur, err := ix.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if cur > schemaVersion {
		// Written by a newer build; leave it alone.
		ix.log.Warn("index schema is newer than this build", slog.Int("schema", cur))
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`ALTER TABLE documents ADD COLUMN diagnostics INTEGER NOT NULL DEFAULT 0`,
				`CREATE INDEX IF NOT EXISTS idx_objects_kind_name ON objects(kind, name)`,
			}
		}
		tx, err := ix.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, ix.d.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		ix.log.Info("index migrated", slog.Int("schema", next))
		cur = next
	}
	return nil
}
