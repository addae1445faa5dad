/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestMonoMeasurerScalesWithSize(t *testing.T) {
	m := MonoMeasurer{}
	if a := m.Advance(nil, 10, 'x'); a != 5 {
		t.Fatalf("advance = %v, want 5", a)
	}
	if h := m.LineHeight(nil, 10); h != 12 {
		t.Fatalf("line height = %v, want 12", h)
	}
	m = MonoMeasurer{Width: 1, Height: 2}
	w, h := Measure(m, nil, 8, "abc")
	if w != 24 || h != 16 {
		t.Fatalf("measure = %v,%v", w, h)
	}
}

func TestTypesetterBasicFallback(t *testing.T) {
	ts := NewTypesetter(NewFontLibrary())
	if a := ts.Advance([]string{"Nonexistent"}, 12, 'A'); a != 7 {
		t.Fatalf("basicfont advance = %v, want 7", a)
	}
	if h := ts.LineHeight(nil, 12); h != 13 {
		t.Fatalf("basicfont line height = %v, want 13", h)
	}
}

func TestTypesetterFontSetFallback(t *testing.T) {
	lib := NewFontLibrary()
	if err := lib.add("Go", 400, false, "goregular", goregular.TTF); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !lib.Covers("Go", 'A') {
		t.Fatalf("Go font should cover A")
	}
	if lib.Covers("Go", 'あ') {
		t.Fatalf("Go font should not cover hiragana")
	}
	if lib.Covers("Missing", 'A') {
		t.Fatalf("unknown family covers nothing")
	}

	ts := NewTypesetter(lib)
	fonts := []string{"Go"}
	a := ts.Advance(fonts, 24, 'W')
	if a <= 0 || a == 7 {
		t.Fatalf("expected opentype advance, got %v", a)
	}
	// Uncovered rune drops to basicfont.
	if b := ts.Advance(fonts, 24, 'あ'); b != 7 {
		t.Fatalf("expected basicfont fallback advance 7, got %v", b)
	}
	if ts.LineHeight(fonts, 24) <= ts.LineHeight(fonts, 12) {
		t.Fatalf("line height should grow with size")
	}
}

func TestTypesetterMissingGlyphKeepsWidth(t *testing.T) {
	ts := NewTypesetter(NewFontLibrary())
	for _, r := range []rune{'\u3000', '漢'} {
		if a := ts.Advance(nil, 12, r); a != 7 {
			t.Fatalf("advance of %U = %v, want replacement width 7", r, a)
		}
	}
	if w, _ := Measure(ts, nil, 12, "\u3000\u3000"); w != 14 {
		t.Fatalf("two ideographic spaces measure %v", w)
	}
}

func TestOTProvider_Fallback(t *testing.T) {
	otp := OTProvider{Lib: NewFontLibrary()}
	face, met := otp.Resolve(FontSpec{Family: "Nonexistent", SizePt: 12})
	if face == nil || met.Height() <= 0 {
		t.Fatalf("expected fallback face with metrics: %+v", met)
	}
}
