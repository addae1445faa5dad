/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package template

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNamedGroupReplacement(t *testing.T) {
	rules, err := ParseTable(strings.NewReader(`"\*(?<t>.*?)\*","[$t]"` + "\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := Expand("a*b*c", rules); got != "a[b]c" {
		t.Fatalf("expand = %q, want a[b]c", got)
	}
}

func TestRulesApplyInOrder(t *testing.T) {
	table := "a,b\nb,c\n"
	rules, err := ParseTable(strings.NewReader(table))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := Expand("ab", rules); got != "cc" {
		t.Fatalf("expand = %q, want cc", got)
	}
	// Reversed table gives a different result.
	rules, _ = ParseTable(strings.NewReader("b,c\na,b\n"))
	if got := Expand("ab", rules); got != "bc" {
		t.Fatalf("expand = %q, want bc", got)
	}
}

func TestQuotedCells(t *testing.T) {
	table := `"x","say ""hi"", ok"` + "\n" + `"nl","line1` + "\n" + `line2"` + "\n"
	rules, err := ParseTable(strings.NewReader(table))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}
	if rules[0].Replacement != `say "hi", ok` {
		t.Fatalf("unexpected replacement %q", rules[0].Replacement)
	}
	if rules[1].Replacement != "line1\nline2" {
		t.Fatalf("unexpected replacement %q", rules[1].Replacement)
	}
}

func TestBadRows(t *testing.T) {
	_, err := ParseTable(strings.NewReader("ok,fine\n\"(\",x\n"))
	var te Error
	if !errors.As(err, &te) || te.Line != 2 {
		t.Fatalf("expected row 2 error, got %v", err)
	}
	if _, err := ParseTable(strings.NewReader("one,two,three\n")); err == nil {
		t.Fatalf("expected cell count error")
	}
	if _, err := ParseTable(strings.NewReader("only\n")); err == nil {
		t.Fatalf("expected cell count error")
	}
}

func TestLoadTableAndPreprocess(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "rules.csv")
	if err := os.WriteFile(p, []byte(`"\{name\}","Alice"`+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rules, err := LoadTable(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// e + combining acute must compose before matching.
	got := Preprocess("{name} e\u0301", rules)
	if got != "Alice \u00e9" {
		t.Fatalf("preprocess = %q", got)
	}
	if _, err := LoadTable(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
