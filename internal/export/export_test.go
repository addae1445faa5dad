/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"novelbox/internal/vector"
)

func samplePages() []Page {
	return []Page{
		{
			Box:   "main",
			Ref:   "intro.md#start",
			Frame: vector.R(10, 10, 200, 100),
			Areas: []Area{{
				Name: "text",
				Rect: vector.R(20, 20, 180, 80),
				Lines: []Line{
					{Text: "Grüße, world", Y: 0, Height: 12, Size: 10},
					{Text: "second line", Y: 12, Height: 12, Size: 10},
				},
			}},
		},
		{Box: "main", Frame: vector.R(0, 0, 900, 100), Areas: []Area{{Rect: vector.R(0, 0, 900, 100), Lines: []Line{{Text: "wide"}}}}},
	}
}

func TestProofPDFCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "proof", "dialog.pdf")
	if err := ProofPDF(samplePages(), out, PDFOptions{IncludeGuides: true}); err != nil {
		t.Fatalf("ProofPDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if len(data) < 200 || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected pdf output (%d bytes)", len(data))
	}
}

func TestProofPDFRejectsEmpty(t *testing.T) {
	if err := ProofPDF(nil, filepath.Join(t.TempDir(), "x.pdf"), PDFOptions{}); err == nil {
		t.Fatalf("expected error for no pages")
	}
}

func TestProofPNGWritesPages(t *testing.T) {
	dir := t.TempDir()
	names, err := ProofPNG(samplePages(), dir, PNGOptions{IncludeGuides: true, Scale: 2})
	if err != nil {
		t.Fatalf("ProofPNG: %v", err)
	}
	if len(names) != 2 || filepath.Base(names[0]) != "page-001.png" {
		t.Fatalf("names = %v", names)
	}
	f, err := os.Open(names[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestSnapshotDrawsText(t *testing.T) {
	p := samplePages()[0]
	img := Snapshot(p, PNGOptions{})
	// Somewhere inside the first line's band a pixel must be inked.
	inked := false
	for y := 10; y < 23 && !inked; y++ {
		for x := 10; x < 100; x++ {
			if c := img.RGBAAt(x, y); c.R < 128 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Fatalf("no text pixels drawn")
	}
}

func TestPageText(t *testing.T) {
	p := Page{Areas: []Area{{Lines: []Line{{Text: "a"}, {Text: "b"}}}, {Lines: []Line{{Text: "c"}}}}}
	if got := p.Text(); got != "a\nb\n\nc" {
		t.Fatalf("Text = %q", got)
	}
}
