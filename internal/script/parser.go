/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"novelbox/internal/directive"
)

// Entities recognised by name.
var entities = map[string]rune{
	"&nbsp;": '\u00a0',
	"&idsp;": '\u3000',
}

var (
	reEscape    = regexp.MustCompile("^\\\\([!-/:-@\\[-`{-~])")
	reEntity    = regexp.MustCompile(`^&(?:nbsp|idsp);`)
	reH1        = regexp.MustCompile(`(?is)^<h1\s*>(.*?)</h1\s*>`)
	reHash      = regexp.MustCompile(`^#{1,6}[ \t]+([^\r\n]*)(?:\r?\n|$)`)
	reUnderline = regexp.MustCompile(`^([^\r\n]*\S[^\r\n]*)\r?\n=+[ \t]*(?:\r?\n|$)`)
	reParagraph = regexp.MustCompile(`(?i)^(?:</p\s*>|[ \t]*\r?\n(?:[ \t]*\r?\n)+)`)
	reLineBreak = regexp.MustCompile(`(?i)^(?:<br\s*/?>|[ \t]{2,}\r?\n)`)
	reScript    = regexp.MustCompile(`(?is)^<script\s*>(.*?)</script\s*>`)
	reLink      = regexp.MustCompile(`^\(([^\s()"]+)[ \t]+"([^"]*)"\)`)
	reChoice    = regexp.MustCompile(`^\*[ \t]+([^\r\n(]*)\(([^\s()"]+)[ \t]+"([^"]*)"\)[ \t]*(?:\r?\n|$)`)
	reTag       = regexp.MustCompile(`^<[^<>]*>`)
)

// Parse compiles markup into sections of orders. It cannot fail: any
// character no rule claims becomes a Type order, except raw whitespace,
// which is dropped.
func Parse(input string) *Script {
	p := &parser{src: input, out: &Script{Sections: map[string]Orders{}}}
	p.run()
	return p.out
}

type parser struct {
	src     string
	pos     int
	out     *Script
	section string
	buf     []Order
}

type rule func(p *parser, rest string) bool

// Rules in priority order; the first that matches at a position wins.
var rules = []rule{
	(*parser).escape,
	(*parser).entity,
	(*parser).h1,
	(*parser).hashHeader,
	(*parser).underlineHeader,
	(*parser).paragraph,
	(*parser).lineBreak,
	(*parser).script,
	(*parser).link,
	(*parser).choices,
	(*parser).tag,
	(*parser).char,
}

func (p *parser) run() {
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		for _, r := range rules {
			if r(p, rest) {
				break
			}
		}
	}
	p.flush()
}

func (p *parser) atLineStart() bool { return p.pos == 0 || p.src[p.pos-1] == '\n' }

func (p *parser) emit(o Order) { p.buf = append(p.buf, o) }

// flush stores the pending orders under the current section name.
// A repeated name overwrites the earlier list.
func (p *parser) flush() {
	if _, seen := p.out.Sections[p.section]; !seen {
		p.out.Names = append(p.out.Names, p.section)
	}
	p.out.Sections[p.section] = FromReading(p.buf)
	p.buf = nil
}

func (p *parser) header(title string, consumed int) {
	p.flush()
	p.section = strings.TrimSpace(title)
	p.pos += consumed
}

func (p *parser) escape(rest string) bool {
	m := reEscape.FindStringSubmatch(rest)
	if m == nil {
		return false
	}
	r, _ := utf8.DecodeRuneInString(m[1])
	p.emit(TypeOf(r))
	p.pos += len(m[0])
	return true
}

func (p *parser) entity(rest string) bool {
	m := reEntity.FindString(rest)
	if m == "" {
		return false
	}
	p.emit(TypeOf(entities[m]))
	p.pos += len(m)
	return true
}

func (p *parser) h1(rest string) bool {
	m := reH1.FindStringSubmatch(rest)
	if m == nil {
		return false
	}
	p.header(m[1], len(m[0]))
	return true
}

func (p *parser) hashHeader(rest string) bool {
	if !p.atLineStart() {
		return false
	}
	m := reHash.FindStringSubmatch(rest)
	if m == nil {
		return false
	}
	p.header(m[1], len(m[0]))
	return true
}

func (p *parser) underlineHeader(rest string) bool {
	if !p.atLineStart() {
		return false
	}
	m := reUnderline.FindStringSubmatch(rest)
	if m == nil {
		return false
	}
	p.header(m[1], len(m[0]))
	return true
}

func (p *parser) paragraph(rest string) bool {
	m := reParagraph.FindString(rest)
	if m == "" {
		return false
	}
	p.emit(Order{Kind: PageFeed})
	p.pos += len(m)
	return true
}

func (p *parser) lineBreak(rest string) bool {
	m := reLineBreak.FindString(rest)
	if m == "" {
		return false
	}
	p.emit(Order{Kind: CarriageReturn})
	p.pos += len(m)
	return true
}

func (p *parser) script(rest string) bool {
	m := reScript.FindStringSubmatch(rest)
	if m == nil {
		return false
	}
	p.emit(Through(m[1]))
	p.pos += len(m[0])
	return true
}

func (p *parser) link(rest string) bool {
	m := reLink.FindStringSubmatch(rest)
	if m == nil {
		return false
	}
	p.emit(Through(directive.Encode(directive.LoadScript{Path: m[1], Box: m[2]})))
	p.pos += len(m[0])
	return true
}

// choices collects consecutive "* label(path "box")" lines into one SetupChoice.
func (p *parser) choices(rest string) bool {
	if !p.atLineStart() {
		return false
	}
	var pairs []directive.ChoicePair
	consumed := 0
	for {
		m := reChoice.FindStringSubmatch(rest[consumed:])
		if m == nil {
			break
		}
		pairs = append(pairs, directive.ChoicePair{
			Label:   strings.TrimSpace(m[1]),
			Payload: directive.Encode(directive.LoadScript{Path: m[2], Box: m[3]}),
		})
		consumed += len(m[0])
	}
	if len(pairs) == 0 {
		return false
	}
	p.emit(Through(directive.Encode(directive.SetupChoice{Choices: pairs})))
	p.pos += consumed
	return true
}

func (p *parser) tag(rest string) bool {
	m := reTag.FindString(rest)
	if m == "" {
		return false
	}
	p.pos += len(m)
	return true
}

func (p *parser) char(rest string) bool {
	r, n := utf8.DecodeRuneInString(rest)
	p.pos += n
	switch r {
	case ' ', '\t', '\r', '\n':
	default:
		p.emit(TypeOf(r))
	}
	return true
}
