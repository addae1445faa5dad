/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders recorded dialog pages for proofreading: a PDF with
// one sheet per page, or one PNG per page.
package export

import (
	"image/color"

	"novelbox/internal/vector"
)

// Page is a laid-out dialog page as the interpreter placed it.
type Page struct {
	Box   string
	Ref   string
	Frame vector.Rect
	Areas []Area
}

// Area is one text area of a page; Rect is in screen coordinates.
type Area struct {
	Name  string
	Rect  vector.Rect
	Lines []Line
}

// Line is relative to its area; Y is the top of the line box.
type Line struct {
	Text   string
	X, Y   float32
	Height float32
	Size   float32
}

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

// orDefault keeps c unless it is the zero color.
func orDefault(c, def color.RGBA) color.RGBA {
	if c == (color.RGBA{}) {
		return def
	}
	return c
}

// Text joins the page's lines, one per row, areas separated by a blank row.
func (p Page) Text() string {
	var out []byte
	for i, a := range p.Areas {
		if i > 0 {
			out = append(out, '\n', '\n')
		}
		for j, l := range a.Lines {
			if j > 0 {
				out = append(out, '\n')
			}
			out = append(out, l.Text...)
		}
	}
	return string(out)
}
