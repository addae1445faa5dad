/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry shared by dialog boxes, text areas and input gates.
// Float values use float32 to align with font metrics.

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float32 }

func (p Pt) Add(o Pt) Pt { return Pt{p.X + o.X, p.Y + o.Y} }
func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }

// Size is a width/height pair.
type Size struct{ W, H float32 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float32
	W, H float32
}

func R(x, y, w, h float32) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// At places a rectangle of size s with its min corner at p.
func At(p Pt, s Size) Rect { return Rect{X: p.X, Y: p.Y, W: s.W, H: s.H} }

// Everywhere covers every point a pointer can report.
var Everywhere = Rect{X: -math.MaxFloat32 / 2, Y: -math.MaxFloat32 / 2, W: math.MaxFloat32, H: math.MaxFloat32}

func (r Rect) Min() Pt          { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt          { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt       { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Size() Size       { return Size{r.W, r.H} }
func (r Rect) Offset(d Pt) Rect { return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H} }

// Contains reports whether p lies inside r; edges count as inside.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// ScaleAbout scales r by s around its own center. Used for popup and sink animations.
func (r Rect) ScaleAbout(s float32) Rect {
	c := r.Center()
	w, h := r.W*s, r.H*s
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Lerp interpolates linearly between a and b; t is clamped to [0,1].
func Lerp(a, b, t float32) float32 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float32, places int) float32 {
	if places < 0 {
		return v
	}
	pow := float32(math.Pow(10, float64(places)))
	return float32(math.Round(float64(v*pow))) / pow
}
