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
	"strconv"
	"strings"
	"time"

	applog "novelbox/internal/log"
	"novelbox/internal/version"

	// PostgreSQL through database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"

	// schemaVersion tracks the backlog schema. Bump it together with a
	// migration step in runMigrations.
	schemaVersion = 2
)

// Config selects the backend. For sqlite, DSN may be a plain file path.
type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Backlog is a handle on the backlog database.
type Backlog struct {
	db     *sql.DB
	driver string
}

// Open connects, prepares the schema and runs pending migrations.
func Open(ctx context.Context, cfg Config) (*Backlog, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("driver", driver))
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("storage: dsn is required")
	}
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(cfg.DSN)
	case DriverPgx:
		db, err = sql.Open(DriverPgx, cfg.DSN)
		if err == nil {
			db.SetMaxOpenConns(4)
		}
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, err
	}
	b := &Backlog{db: db, driver: driver}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			l.Error("enable WAL failed", slog.Any("err", err))
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if err := b.ensureMetaAndVersion(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := b.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure backlog schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := b.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("backlog ready")
	return b, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create backlog dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(dsn))
	}
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Close releases the connection pool.
func (b *Backlog) Close() error { return b.db.Close() }

// Driver names the backend in use.
func (b *Backlog) Driver() string { return b.driver }

// rebind rewrites '?' placeholders to PostgreSQL's $n form.
func (b *Backlog) rebind(q string) string {
	if b.driver != DriverPgx {
		return q
	}
	return rebindDollar(q)
}

func rebindDollar(q string) string {
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (b *Backlog) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return b.db.ExecContext(ctx, b.rebind(q), args...)
}

func (b *Backlog) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return b.db.QueryRowContext(ctx, b.rebind(q), args...)
}

func (b *Backlog) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := b.exec(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := b.queryRow(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := b.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema; migrations move it forward
		if _, err := b.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func (b *Backlog) ensureSchema(ctx context.Context) error {
	id := "id INTEGER PRIMARY KEY"
	if b.driver == DriverPgx {
		id = "id BIGSERIAL PRIMARY KEY"
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			` + id + `,
			box     TEXT NOT NULL,
			ref     TEXT NOT NULL,
			text    TEXT NOT NULL,
			read_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pages_box ON pages(box);`,
		`CREATE INDEX IF NOT EXISTS idx_pages_ref ON pages(ref);`,
	}
	for _, q := range ddl {
		if _, err := b.exec(ctx, q); err != nil {
			return fmt.Errorf("create backlog schema: %w", err)
		}
	}
	return nil
}

// SchemaVersion reads the stored schema number.
func (b *Backlog) SchemaVersion(ctx context.Context) (int, error) {
	var cur int
	if err := b.queryRow(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return cur, nil
}

// runMigrations applies incremental steps up to schemaVersion.
func (b *Backlog) runMigrations(ctx context.Context) error {
	cur, err := b.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if cur > schemaVersion {
		// written by a newer build; leave it alone
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// v1 databases had no lookup indexes
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_pages_box ON pages(box);`,
				`CREATE INDEX IF NOT EXISTS idx_pages_ref ON pages(ref);`,
			}
		}
		tx, err := b.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, b.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}
