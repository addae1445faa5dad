/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDialogs = `
version: 1
templates: [names.csv]
dialogs:
  - name: main
    position: {x: 10, y: 400}
    size: {w: 600, h: 120}
    popup: {kind: scale, sec: 0.25}
    breaker: {mode: input, all_range: true}
    script: intro.md#start
    areas:
      - name: text
        position: {x: 12, y: 12}
        size: {w: 576, h: 96}
        style: dialogue
        typing: {mode: char, sec: 0.03}
        feeding: {mode: scroll, size: 1, sec: 0.2}
    choice:
      axis: vertical
      scaling: count
      size: {w: 300, h: 90}
      buttons:
        - {name: b0, size: {w: 300, h: 30}}
        - {name: b1, position: {y: 30}, size: {w: 300, h: 30}}
`

func TestParseDialogFile(t *testing.T) {
	df, err := ParseDialogFile([]byte(sampleDialogs))
	if err != nil {
		t.Fatalf("ParseDialogFile: %v", err)
	}
	if len(df.Dialogs) != 1 || len(df.Templates) != 1 {
		t.Fatalf("decoded = %+v", df)
	}
	d := df.Dialogs[0]
	if d.Position.Y != 400 || d.Popup.Sec != 0.25 || !d.Breaker.AllRange {
		t.Fatalf("dialog = %+v", d)
	}
	if a := d.Areas[0]; a.Typing.Mode != "char" || a.Feeding.Size != 1 || a.Style != "dialogue" {
		t.Fatalf("area = %+v", a)
	}
	if d.Choice == nil || len(d.Choice.Buttons) != 2 || d.Choice.Buttons[1].Position.Y != 30 {
		t.Fatalf("choice = %+v", d.Choice)
	}
}

func TestParseDialogFileSchemaErrors(t *testing.T) {
	bad := `
dialogs:
  - name: main
    breaker: {mode: sometimes}
    areas: []
    colour: red
`
	_, err := ParseDialogFile([]byte(bad))
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(se.Problems) < 3 {
		t.Fatalf("expected every violation reported, got %v", se.Problems)
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Fatalf("unknown field should be named: %v", err)
	}
}

func TestParseDialogFileBadYAML(t *testing.T) {
	if _, err := ParseDialogFile([]byte("dialogs: [")); err == nil {
		t.Fatalf("malformed yaml should fail")
	}
}

func TestLoadDialogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialogs.yaml")
	if err := os.WriteFile(path, []byte(sampleDialogs), 0o644); err != nil {
		t.Fatal(err)
	}
	df, err := LoadDialogFile(path)
	if err != nil || df.Dialogs[0].Script != "intro.md#start" {
		t.Fatalf("LoadDialogFile = %+v, %v", df, err)
	}
	if _, err := LoadDialogFile(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}
