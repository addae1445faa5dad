/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package template expands regex/replacement rules over raw script text
// before it reaches the script parser. Rules come from a CSV table, one
// `"regex","replacement"` row each, applied in file order.
package template

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// Rule is one compiled table row.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Error reports a bad table row. Line is 1-based.
type Error struct {
	Line    int
	Message string
	Err     error
}

func (e Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template row %d: %s: %v", e.Line, e.Message, e.Err)
	}
	return fmt.Sprintf("template row %d: %s", e.Line, e.Message)
}

func (e Error) Unwrap() error { return e.Err }

// ParseTable reads and compiles a rule table. Any malformed row fails the
// whole table.
func ParseTable(r io.Reader) ([]Rule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = false
	var rules []Rule
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, Error{Line: pe.StartLine, Message: "malformed csv", Err: err}
			}
			return nil, fmt.Errorf("read template table: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != 2 {
			return nil, Error{Line: line, Message: fmt.Sprintf("expected 2 cells, got %d", len(rec))}
		}
		re, err := regexp.Compile(rec[0])
		if err != nil {
			return nil, Error{Line: line, Message: "invalid pattern", Err: err}
		}
		rules = append(rules, Rule{Pattern: re, Replacement: rec[1]})
	}
	return rules, nil
}

// LoadTable opens path and parses it with ParseTable.
func LoadTable(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template table %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	rules, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Expand applies every rule to the whole text, in order. Each rule finishes
// before the next one sees the result.
func Expand(text string, rules []Rule) string {
	for _, r := range rules {
		if r.Pattern == nil {
			continue
		}
		text = r.Pattern.ReplaceAllString(text, r.Replacement)
	}
	return text
}

// Preprocess normalizes text to NFC and expands it.
func Preprocess(text string, rules []Rule) string {
	return Expand(norm.NFC.String(text), rules)
}
