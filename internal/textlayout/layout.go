/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Abstractions for per-glyph text measurement.
// The dialog interpreter places characters one at a time, so everything here
// answers "how wide is this rune" and "how tall is a line" for a font set.

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Height is the full line advance.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Measurer is what the interpreter needs from a text engine. Fonts is an
// ordered font set; the first family that has a glyph for r wins.
type Measurer interface {
	Advance(fonts []string, size float32, r rune) float32
	LineHeight(fonts []string, size float32) float32
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// MonoMeasurer gives every rune the same advance, proportional to size.
// Width and Height are fractions of the font size; zero means 0.5 and 1.2.
type MonoMeasurer struct {
	Width, Height float32
}

func (m MonoMeasurer) Advance(_ []string, size float32, _ rune) float32 {
	w := m.Width
	if w == 0 {
		w = 0.5
	}
	return w * size
}

func (m MonoMeasurer) LineHeight(_ []string, size float32) float32 {
	h := m.Height
	if h == 0 {
		h = 1.2
	}
	return h * size
}

// Typesetter measures runes against a FontLibrary with per-rune font-set
// fallback, and falls back to Provider (basicfont by default) when no
// family in the set covers a rune.
type Typesetter struct {
	Lib      *FontLibrary
	Fallback Provider
	DPI      float64

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float32
}

func NewTypesetter(lib *FontLibrary) *Typesetter { return &Typesetter{Lib: lib} }

func (t *Typesetter) Advance(fonts []string, size float32, r rune) float32 {
	face := t.faceFor(fonts, size, r)
	adv, ok := face.GlyphAdvance(r)
	if !ok && adv == 0 {
		// a missing glyph is drawn as the replacement and takes its room
		adv, _ = face.GlyphAdvance('\ufffd')
	}
	return toPx(adv)
}

func (t *Typesetter) LineHeight(fonts []string, size float32) float32 {
	var face font.Face
	if len(fonts) > 0 {
		face = t.face(fonts[0], size)
	}
	if face == nil {
		face = t.fallback(size)
	}
	return metricsOf(face).Height()
}

func (t *Typesetter) faceFor(fonts []string, size float32, r rune) font.Face {
	for _, fam := range fonts {
		if !t.Lib.Covers(fam, r) {
			continue
		}
		if f := t.face(fam, size); f != nil {
			return f
		}
	}
	return t.fallback(size)
}

func (t *Typesetter) face(family string, size float32) font.Face {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := faceKey{family: family, size: size}
	if f, ok := t.faces[k]; ok {
		return f
	}
	f := OTProvider{Lib: t.Lib, DPI: t.DPI}.resolveLib(FontSpec{Family: family, SizePt: size})
	if f == nil {
		return nil
	}
	if t.faces == nil {
		t.faces = make(map[faceKey]font.Face)
	}
	t.faces[k] = f
	return f
}

func (t *Typesetter) fallback(size float32) font.Face {
	fb := t.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	f, _ := fb.Resolve(FontSpec{SizePt: size})
	return f
}

func toPx(v fixed.Int26_6) float32 { return float32(v) / 64 }

// Measure returns the width of s and the line height for one font set.
func Measure(m Measurer, fonts []string, size float32, s string) (w, h float32) {
	for _, r := range s {
		w += m.Advance(fonts, size, r)
	}
	return w, m.LineHeight(fonts, size)
}
