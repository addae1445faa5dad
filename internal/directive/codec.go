/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package directive

// Text form of directive payloads:
//
//	{"novelbox.Kind": (field: value, field: value)}
//
// Values are numbers, Go-quoted strings, true/false, None, Some(v),
// idents with an optional payload like Scale(sec: 0.5), tuples ("a", "b")
// and lists [v, v].

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type nodeKind int

const (
	numNode nodeKind = iota
	strNode
	boolNode
	identNode
	tupleNode
	listNode
	structNode
)

type node struct {
	kind  nodeKind
	num   float64
	text  string // string value or ident name
	b     bool
	items []*node // tuple/list elements
	// struct fields; keys keep source order
	keys   []string
	fields map[string]*node
	// ident payload (struct or tuple)
	payload *node
}

type parser struct {
	src string
	pos int
}

// parseDocument parses `{"id": (fields)}` and returns the id and the field struct.
func parseDocument(src string) (string, *node, error) {
	p := &parser{src: src}
	p.skipSpace()
	if !p.eat('{') {
		return "", nil, p.errorf("expected '{'")
	}
	p.skipSpace()
	id, err := p.parseString()
	if err != nil {
		return "", nil, err
	}
	p.skipSpace()
	if !p.eat(':') {
		return "", nil, p.errorf("expected ':'")
	}
	p.skipSpace()
	body, err := p.parseParen()
	if err != nil {
		return "", nil, err
	}
	if body.kind == tupleNode && len(body.items) == 0 {
		body = &node{kind: structNode, fields: map[string]*node{}}
	}
	if body.kind != structNode {
		return "", nil, p.errorf("expected field list")
	}
	p.skipSpace()
	p.eat(',')
	p.skipSpace()
	if !p.eat('}') {
		return "", nil, p.errorf("expected '}'")
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return "", nil, p.errorf("trailing input")
	}
	return id, body, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("directive: offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		r, n := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += n
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseValue() (*node, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return &node{kind: strNode, text: s}, nil
	case c == '(':
		return p.parseParen()
	case c == '[':
		return p.parseList()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case isIdentStart(c):
		name := p.parseIdent()
		switch name {
		case "true", "false":
			return &node{kind: boolNode, b: name == "true"}, nil
		}
		n := &node{kind: identNode, text: name}
		p.skipSpace()
		if p.peek() == '(' {
			pl, err := p.parseParen()
			if err != nil {
				return nil, err
			}
			n.payload = pl
		}
		return n, nil
	default:
		return nil, p.errorf("unexpected %q", string(c))
	}
}

func (p *parser) parseString() (string, error) {
	if p.peek() != '"' {
		return "", p.errorf("expected string")
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return "", p.errorf("bad string: %v", err)
			}
			return s, nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) parseNumber() (*node, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '-' || c == '+' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return &node{kind: numNode, num: v}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isIdentStart(c) || (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// parseParen reads either a struct `(a: v, b: v)` or a tuple `(v, v)`.
func (p *parser) parseParen() (*node, error) {
	if !p.eat('(') {
		return nil, p.errorf("expected '('")
	}
	p.skipSpace()
	if p.eat(')') {
		return &node{kind: tupleNode}, nil
	}
	if p.looksLikeField() {
		n := &node{kind: structNode, fields: map[string]*node{}}
		for {
			p.skipSpace()
			if p.eat(')') {
				return n, nil
			}
			key := p.parseIdent()
			if key == "" {
				return nil, p.errorf("expected field name")
			}
			p.skipSpace()
			if !p.eat(':') {
				return nil, p.errorf("expected ':' after %s", key)
			}
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if _, dup := n.fields[key]; !dup {
				n.keys = append(n.keys, key)
			}
			n.fields[key] = v
			p.skipSpace()
			if p.eat(',') {
				continue
			}
			if !p.eat(')') {
				return nil, p.errorf("expected ',' or ')'")
			}
			return n, nil
		}
	}
	n := &node{kind: tupleNode}
	items, err := p.parseItems(')')
	if err != nil {
		return nil, err
	}
	n.items = items
	return n, nil
}

func (p *parser) looksLikeField() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !isIdentStart(p.peek()) {
		return false
	}
	p.parseIdent()
	p.skipSpace()
	return p.peek() == ':'
}

func (p *parser) parseList() (*node, error) {
	if !p.eat('[') {
		return nil, p.errorf("expected '['")
	}
	items, err := p.parseItems(']')
	if err != nil {
		return nil, err
	}
	return &node{kind: listNode, items: items}, nil
}

func (p *parser) parseItems(closer byte) ([]*node, error) {
	var items []*node
	for {
		p.skipSpace()
		if p.eat(closer) {
			return items, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.eat(',') {
			continue
		}
		if !p.eat(closer) {
			return nil, p.errorf("expected ',' or %q", string(closer))
		}
		return items, nil
	}
}

// writer renders the text form.
type writer struct {
	b     strings.Builder
	first bool
}

func newWriter(id string) *writer {
	w := &writer{first: true}
	w.b.WriteString("{")
	w.b.WriteString(strconv.Quote(id))
	w.b.WriteString(": (")
	return w
}

func (w *writer) String() string { return w.b.String() + ")}" }

func (w *writer) field(name string) {
	if !w.first {
		w.b.WriteString(", ")
	}
	w.first = false
	w.b.WriteString(name)
	w.b.WriteString(": ")
}

func (w *writer) Float32(name string, v float32) {
	w.field(name)
	w.b.WriteString(formatFloat(float64(v), 32))
}

func (w *writer) Float64(name string, v float64) {
	w.field(name)
	w.b.WriteString(formatFloat(v, 64))
}

func (w *writer) Str(name, v string) {
	w.field(name)
	w.b.WriteString(strconv.Quote(v))
}

func (w *writer) Bool(name string, v bool) {
	w.field(name)
	w.b.WriteString(strconv.FormatBool(v))
}

func (w *writer) Option(name string, v *string) {
	w.field(name)
	if v == nil {
		w.b.WriteString("None")
		return
	}
	w.b.WriteString("Some(")
	w.b.WriteString(strconv.Quote(*v))
	w.b.WriteString(")")
}

func (w *writer) Raw(name, text string) {
	w.field(name)
	w.b.WriteString(text)
}

func formatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'f', -1, bits)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// fields reads typed values out of a struct node. Missing fields keep the
// default; present fields of the wrong shape mark the read as bad.
type fields struct {
	n   *node
	bad bool
}

func (f *fields) get(name string) *node {
	if f.n == nil {
		return nil
	}
	return f.n.fields[name]
}

func (f *fields) Float64(name string, def float64) float64 {
	v := f.get(name)
	if v == nil {
		return def
	}
	if v.kind != numNode {
		f.bad = true
		return def
	}
	return v.num
}

func (f *fields) Float32(name string, def float32) float32 {
	return float32(f.Float64(name, float64(def)))
}

func (f *fields) String(name, def string) string {
	v := f.get(name)
	if v == nil {
		return def
	}
	if v.kind != strNode {
		f.bad = true
		return def
	}
	return v.text
}

func (f *fields) Bool(name string, def bool) bool {
	v := f.get(name)
	if v == nil {
		return def
	}
	if v.kind != boolNode {
		f.bad = true
		return def
	}
	return v.b
}

// Option reads None / Some("x"). A bare string is accepted as Some.
func (f *fields) Option(name string) *string {
	v := f.get(name)
	if v == nil {
		return nil
	}
	switch {
	case v.kind == strNode:
		s := v.text
		return &s
	case v.kind == identNode && v.text == "None" && v.payload == nil:
		return nil
	case v.kind == identNode && v.text == "Some" && v.payload != nil &&
		v.payload.kind == tupleNode && len(v.payload.items) == 1 && v.payload.items[0].kind == strNode:
		s := v.payload.items[0].text
		return &s
	}
	f.bad = true
	return nil
}
