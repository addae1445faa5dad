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
	"time"
)

// Entry is one finished page.
type Entry struct {
	ID   int64
	Box  string
	Ref  string
	Text string
	At   time.Time
}

// Append stores e and returns its id. A zero At is stamped with now.
func (b *Backlog) Append(ctx context.Context, e Entry) (int64, error) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	var id int64
	err := b.queryRow(ctx, `INSERT INTO pages (box, ref, text, read_at) VALUES(?, ?, ?, ?) RETURNING id`,
		e.Box, e.Ref, e.Text, e.At.UTC().Format(time.RFC3339Nano)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append page: %w", err)
	}
	return id, nil
}

// List returns the newest pages first. An empty box matches every box;
// limit <= 0 returns everything.
func (b *Backlog) List(ctx context.Context, box string, limit int) ([]Entry, error) {
	q := `SELECT id, box, ref, text, read_at FROM pages`
	var args []any
	if box != "" {
		q += ` WHERE box = ?`
		args = append(args, box)
	}
	q += ` ORDER BY id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := b.db.QueryContext(ctx, b.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at string
		)
		if err := rows.Scan(&e.ID, &e.Box, &e.Ref, &e.Text, &at); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return out, nil
}

// HasRead reports whether any page from ref was recorded.
func (b *Backlog) HasRead(ctx context.Context, ref string) (bool, error) {
	var one int
	err := b.queryRow(ctx, `SELECT 1 FROM pages WHERE ref = ? LIMIT 1`, ref).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("read history: %w", err)
	}
	return true, nil
}

// Count is the number of stored pages.
func (b *Backlog) Count(ctx context.Context) (int, error) {
	var n int
	if err := b.queryRow(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

// Clear deletes every page.
func (b *Backlog) Clear(ctx context.Context) error {
	if _, err := b.exec(ctx, `DELETE FROM pages`); err != nil {
		return fmt.Errorf("clear backlog: %w", err)
	}
	return nil
}
