/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// A compiled script is a flat stream of orders per named section.
// Section headers come from <h1>, "# heading" lines or "====" underlines;
// text before the first header belongs to the unnamed section "".

// Kind tags an Order.
type Kind int

const (
	Type           Kind = iota // show one character
	CarriageReturn             // forced line break
	PageFeed                   // forced page break
	ThroughEvent               // directive text to decode and dispatch
)

func (k Kind) String() string {
	switch k {
	case Type:
		return "Type"
	case CarriageReturn:
		return "CarriageReturn"
	case PageFeed:
		return "PageFeed"
	case ThroughEvent:
		return "ThroughEvent"
	default:
		return "Kind(?)"
	}
}

// Order is one compiled instruction. Char is set for Type, Payload for ThroughEvent.
type Order struct {
	Kind    Kind
	Char    rune
	Payload string
}

func TypeOf(r rune) Order { return Order{Kind: Type, Char: r} }
func Through(payload string) Order { return Order{Kind: ThroughEvent, Payload: payload} }

func (o Order) String() string {
	switch o.Kind {
	case Type:
		return "Type(" + string(o.Char) + ")"
	case ThroughEvent:
		return "ThroughEvent(" + o.Payload + ")"
	default:
		return o.Kind.String()
	}
}

// Orders is stored back to front: the last element runs next, so popping
// yields reading order.
type Orders []Order

// FromReading builds a stack from orders in reading order.
func FromReading(reading []Order) Orders {
	out := make(Orders, len(reading))
	for i, o := range reading {
		out[len(reading)-1-i] = o
	}
	return out
}

// Pop removes and returns the next order.
func (s *Orders) Pop() (Order, bool) {
	n := len(*s)
	if n == 0 {
		return Order{}, false
	}
	o := (*s)[n-1]
	*s = (*s)[:n-1]
	return o, true
}

// Push puts o back so it is the next to pop.
func (s *Orders) Push(o Order) { *s = append(*s, o) }

// Len is the number of orders left.
func (s Orders) Len() int { return len(s) }

// Reading returns a copy in reading order.
func (s Orders) Reading() []Order {
	out := make([]Order, len(s))
	for i, o := range s {
		out[len(s)-1-i] = o
	}
	return out
}

// Clone returns an independent copy.
func (s Orders) Clone() Orders { return append(Orders(nil), s...) }

// Script is a parsed source: sections by name plus their first-seen order.
type Script struct {
	Sections map[string]Orders
	Names    []string
}

// Section returns a private copy of the named section.
func (s *Script) Section(name string) (Orders, bool) {
	if s == nil {
		return nil, false
	}
	o, ok := s.Sections[name]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Text renders the Type orders of a section in reading order, with "\n"
// for line breaks and "\f" for page breaks. Directives are omitted.
func (s Orders) Text() string {
	var b []rune
	for _, o := range s.Reading() {
		switch o.Kind {
		case Type:
			b = append(b, o.Char)
		case CarriageReturn:
			b = append(b, '\n')
		case PageFeed:
			b = append(b, '\f')
		}
	}
	return string(b)
}
