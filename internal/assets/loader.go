/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assets resolves script references against a file system. It
// implements the engine's script loader: "path#section" selects a section
// of a markup file after the box's template tables are applied.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"novelbox/internal/log"
	"novelbox/internal/script"
	"novelbox/internal/template"
)

// ErrNoSection is returned when a file has no section of the requested name.
var ErrNoSection = errors.New("no such section")

// Loader compiles and caches scripts from FS. Safe for concurrent use.
type Loader struct {
	FS fs.FS

	mu      sync.Mutex
	tables  map[string][]template.Rule
	scripts map[string]*script.Script
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{FS: fsys}
}

// SplitRef separates "path#section". A missing '#' selects the unnamed
// leading section.
func SplitRef(ref string) (path, section string) {
	path, section, _ = strings.Cut(ref, "#")
	return path, section
}

// Load returns the orders of the referenced section. Every call yields a
// fresh copy, so callers may pop from it.
func (l *Loader) Load(ref string, templates []string) (script.Orders, error) {
	path, section := SplitRef(ref)
	s, err := l.Script(path, templates)
	if err != nil {
		return nil, err
	}
	o, ok := s.Section(section)
	if !ok {
		return nil, fmt.Errorf("%s: section %q: %w", path, section, ErrNoSection)
	}
	return o, nil
}

// Script compiles path with the given template tables applied in order.
func (l *Loader) Script(path string, templates []string) (*script.Script, error) {
	key := path + "|" + strings.Join(templates, "|")
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.scripts[key]; ok {
		return s, nil
	}
	if l.FS == nil {
		return nil, errors.New("assets: no file system")
	}
	data, err := fs.ReadFile(l.FS, path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var rules []template.Rule
	for _, t := range templates {
		r, err := l.table(t)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r...)
	}
	s := script.Parse(template.Preprocess(string(data), rules))
	if l.scripts == nil {
		l.scripts = make(map[string]*script.Script)
	}
	l.scripts[key] = s
	log.WithComponent("assets").Debug("script compiled",
		slog.String("path", path), slog.Int("sections", len(s.Names)), slog.Int("rules", len(rules)))
	return s, nil
}

// table loads a rule table once per path. Callers hold l.mu.
func (l *Loader) table(path string) ([]template.Rule, error) {
	if r, ok := l.tables[path]; ok {
		return r, nil
	}
	f, err := l.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template table: %w", err)
	}
	defer func() { _ = f.Close() }()
	r, err := template.ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if l.tables == nil {
		l.tables = make(map[string][]template.Rule)
	}
	l.tables[path] = r
	return r, nil
}

// Reset drops every cached table and script.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.tables = nil
	l.scripts = nil
	l.mu.Unlock()
}
