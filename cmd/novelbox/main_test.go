/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"novelbox/internal/config"
	"novelbox/internal/crash"
)

const playYAML = `
dialogs:
  - name: main
    size: {w: 200, h: 60}
    popup: {kind: fix}
    breaker: {mode: input}
    script: intro.md
    areas:
      - {name: text, size: {w: 200, h: 60}, font_size: 10, typing: {mode: page}}
`

func writeStory(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"dialogs.yaml": playYAML,
		"intro.md":     "Hello</p>HERO",
		"names.csv":    "HERO,Aki\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(dir string) config.AppConfig {
	cfg := config.Defaults()
	cfg.Scripts.Root = dir
	cfg.Storage.DSN = filepath.Join(dir, "backlog.sqlite")
	cfg.Engine.MaxFrames = 500
	return cfg
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(config.Defaults(), "frobnicate", nil, &bytes.Buffer{}, &crash.Context{})
	if !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
}

func TestRunMissingArgs(t *testing.T) {
	for _, cmd := range []string{"parse", "expand", "play", "proof"} {
		if err := run(config.Defaults(), cmd, nil, &bytes.Buffer{}, &crash.Context{}); !errors.Is(err, errUsage) {
			t.Fatalf("%s: err = %v", cmd, err)
		}
	}
}

func TestParseAndExpand(t *testing.T) {
	dir := writeStory(t)
	var out bytes.Buffer
	if err := run(config.Defaults(), "parse", []string{filepath.Join(dir, "intro.md")}, &out, &crash.Context{}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out.String(), `== ""`) {
		t.Fatalf("parse output missing default section:\n%s", out.String())
	}
	out.Reset()
	if err := run(config.Defaults(), "parse", []string{filepath.Join(dir, "intro.md"), "nope"}, &out, &crash.Context{}); err == nil {
		t.Fatalf("missing section should fail")
	}
	out.Reset()
	err := run(config.Defaults(), "expand", []string{filepath.Join(dir, "intro.md"), filepath.Join(dir, "names.csv")}, &out, &crash.Context{})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if out.String() != "Hello</p>Aki" {
		t.Fatalf("expand = %q", out.String())
	}
}

func TestPlayRecordsBacklog(t *testing.T) {
	dir := writeStory(t)
	cfg := testConfig(dir)
	var out bytes.Buffer
	rc := &crash.Context{}
	if err := run(cfg, "play", []string{filepath.Join(dir, "dialogs.yaml")}, &out, rc); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "[main] Hello") || !strings.Contains(out.String(), "[main] HERO") {
		t.Fatalf("play output:\n%s", out.String())
	}
	if rc.Frame == nil || rc.Frame() == 0 {
		t.Fatalf("crash context should see engine frames")
	}
	out.Reset()
	if err := run(cfg, "backlog", nil, &out, rc); err != nil {
		t.Fatalf("backlog: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "Hello") || !strings.HasSuffix(lines[1], "HERO") {
		t.Fatalf("backlog output:\n%s", out.String())
	}
}

func TestProofWritesPNGs(t *testing.T) {
	dir := writeStory(t)
	cfg := testConfig(dir)
	cfg.Storage.DSN = ""
	outDir := filepath.Join(dir, "proof")
	var out bytes.Buffer
	if err := run(cfg, "proof", []string{filepath.Join(dir, "dialogs.yaml"), outDir}, &out, &crash.Context{}); err != nil {
		t.Fatalf("proof: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "page-001.png")); err != nil {
		t.Fatalf("first page missing: %v", err)
	}
}
