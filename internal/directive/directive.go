/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package directive holds the typed event payloads that scripts embed in
// <script> blocks and that the interpreter raises for itself, plus their
// text codec. Decoding an unknown identifier is a soft miss, not an error.
package directive

import (
	"strconv"
	"strings"
)

// Namespace prefixes every identifier in the text form.
const Namespace = "novelbox."

// Directive is a closed set; every kind lives in this package.
type Directive interface {
	// Kind is the identifier without the namespace, e.g. "ChangeFontSize".
	Kind() string
	encode(w *writer)
}

// SinkKind selects the close (or popup) animation.
type SinkKind int

const (
	SinkScale SinkKind = iota // tween size to or from zero over Sec
	SinkFix                   // no tween
)

// SinkType is the animation used when a box pops up or sinks down.
type SinkType struct {
	Kind SinkKind
	Sec  float64
}

// Scale returns a scaling animation lasting sec seconds.
func Scale(sec float64) SinkType { return SinkType{Kind: SinkScale, Sec: sec} }

// Fix returns the no-animation type.
func Fix() SinkType { return SinkType{Kind: SinkFix} }

// Duration is zero for Fix.
func (s SinkType) Duration() float64 {
	if s.Kind == SinkFix {
		return 0
	}
	return s.Sec
}

func (s SinkType) text() string {
	if s.Kind == SinkFix {
		return "Fix"
	}
	return "Scale(sec: " + formatFloat(s.Sec, 64) + ")"
}

func readSink(f *fields, name string, def SinkType) SinkType {
	v := f.get(name)
	if v == nil {
		return def
	}
	if v.kind != identNode {
		f.bad = true
		return def
	}
	switch v.text {
	case "Fix":
		if v.payload != nil {
			f.bad = true
		}
		return Fix()
	case "Scale":
		if v.payload == nil || v.payload.kind != structNode {
			f.bad = true
			return def
		}
		sub := fields{n: v.payload}
		st := Scale(sub.Float64("sec", 0))
		f.bad = f.bad || sub.bad
		return st
	}
	f.bad = true
	return def
}

// ChoicePair is one menu entry: the label markup and the directive text
// fired when it is chosen.
type ChoicePair struct {
	Label   string
	Payload string
}

type ChangeFontSize struct {
	Size float32
}

// SinkDownWindow closes a box. Target nil means the current box. Immediate
// skips the breaker wait and starts the close animation right away.
type SinkDownWindow struct {
	Sink      SinkType
	Target    *string
	Immediate bool
}

// SimpleWait pauses typing of the target box for Sec seconds.
type SimpleWait struct {
	Sec    float64
	Target *string
}

// BreakWait forces a timed page wait on the target box.
type BreakWait struct {
	Sec    float64
	Target *string
}

// InputForFeeding arms a gate on Box/Area that feeds the page when activated.
// Empty names mean the current box or area.
type InputForFeeding struct {
	Box  string
	Area string
}

// InputForSkipping arms a skip gate: the first activation completes typing,
// the next one dispatches Next.
type InputForSkipping struct {
	Box  string
	Area string
	Next string
}

type ChangeCurrentTextArea struct {
	Box  string
	Area string
}

type ChangeCurrentDialogBox struct {
	Box string
}

// SetupChoice opens a choice box for the current box.
type SetupChoice struct {
	Choices []ChoicePair
}

// ChoiceMade is bound to each choice button; Payload is the chosen pair's directive.
type ChoiceMade struct {
	ChoiceBox string
	Payload   string
}

// LoadScript replaces the script of Box with Path ("file#section"). An empty
// Box means the current box.
type LoadScript struct {
	Path string
	Box  string
}

// ForceFeeding advances the target box past its current page wait.
type ForceFeeding struct {
	Target *string
}

func (ChangeFontSize) Kind() string         { return "ChangeFontSize" }
func (SinkDownWindow) Kind() string         { return "SinkDownWindow" }
func (SimpleWait) Kind() string             { return "SimpleWait" }
func (BreakWait) Kind() string              { return "BreakWait" }
func (InputForFeeding) Kind() string        { return "InputForFeeding" }
func (InputForSkipping) Kind() string       { return "InputForSkipping" }
func (ChangeCurrentTextArea) Kind() string  { return "ChangeCurrentTextArea" }
func (ChangeCurrentDialogBox) Kind() string { return "ChangeCurrentDialogBox" }
func (SetupChoice) Kind() string            { return "SetupChoice" }
func (ChoiceMade) Kind() string             { return "ChoiceMade" }
func (LoadScript) Kind() string             { return "LoadScript" }
func (ForceFeeding) Kind() string           { return "ForceFeeding" }

func (d ChangeFontSize) encode(w *writer) { w.Float32("size", d.Size) }

func (d SinkDownWindow) encode(w *writer) {
	w.Raw("sink_type", d.Sink.text())
	w.Option("target", d.Target)
	w.Bool("immediate", d.Immediate)
}

func (d SimpleWait) encode(w *writer) {
	w.Float64("sec", d.Sec)
	w.Option("target", d.Target)
}

func (d BreakWait) encode(w *writer) {
	w.Float64("sec", d.Sec)
	w.Option("target", d.Target)
}

func (d InputForFeeding) encode(w *writer) {
	w.Str("box", d.Box)
	w.Str("area", d.Area)
}

func (d InputForSkipping) encode(w *writer) {
	w.Str("box", d.Box)
	w.Str("area", d.Area)
	w.Str("next", d.Next)
}

func (d ChangeCurrentTextArea) encode(w *writer) {
	w.Str("box", d.Box)
	w.Str("area", d.Area)
}

func (d ChangeCurrentDialogBox) encode(w *writer) { w.Str("box", d.Box) }

func (d SetupChoice) encode(w *writer) {
	var b strings.Builder
	b.WriteString("[")
	for i, c := range d.Choices {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(strconv.Quote(c.Label))
		b.WriteString(", ")
		b.WriteString(strconv.Quote(c.Payload))
		b.WriteString(")")
	}
	b.WriteString("]")
	w.Raw("choices", b.String())
}

func (d ChoiceMade) encode(w *writer) {
	w.Str("choice_box", d.ChoiceBox)
	w.Str("payload", d.Payload)
}

func (d LoadScript) encode(w *writer) {
	w.Str("path", d.Path)
	w.Str("box", d.Box)
}

func (d ForceFeeding) encode(w *writer) { w.Option("target", d.Target) }

// Encode renders d in its text form.
func Encode(d Directive) string {
	w := newWriter(Namespace + d.Kind())
	d.encode(w)
	return w.String()
}

// Decode parses text and returns the directive it names. The second result
// is false for malformed text, unknown identifiers and badly typed fields.
func Decode(text string) (Directive, bool) {
	id, body, err := parseDocument(strings.TrimSpace(text))
	if err != nil {
		return nil, false
	}
	dec, ok := registry[id]
	if !ok {
		return nil, false
	}
	f := &fields{n: body}
	d := dec(f)
	if f.bad || d == nil {
		return nil, false
	}
	return d, true
}

// Known reports whether id (with namespace) has a decoder.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// Str is a helper for optional name fields.
func Str(s string) *string { return &s }
