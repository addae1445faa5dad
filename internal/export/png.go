/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PNGOptions controls PNG snapshots. Scale multiplies screen units into
// pixels (default 1); Face draws the text (default basicfont 7x13).
type PNGOptions struct {
	Scale         float64
	IncludeGuides bool
	Face          font.Face
	Background    color.RGBA
	GuideColor    color.RGBA
	FrameColor    color.RGBA
	TextColor     color.RGBA
}

// ProofPNG writes page-NNN.png into outDir for every page and returns the
// file names.
func ProofPNG(pages []Page, outDir string, opt PNGOptions) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var names []string
	for i, p := range pages {
		img := Snapshot(p, opt)
		name := filepath.Join(outDir, fmt.Sprintf("page-%03d.png", i+1))
		if err := writePNG(name, img); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Snapshot rasterizes one page at the frame's origin.
func Snapshot(p Page, opt PNGOptions) *image.RGBA {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	face := opt.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	px := func(v float32) int { return int(math.Round(float64(v) * scale)) }
	w, h := max(px(p.Frame.W), 1), max(px(p.Frame.H), 1)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: orDefault(opt.Background, white)}, image.Point{}, draw.Src)
	strokeRect(img, 0, 0, w-1, h-1, orDefault(opt.FrameColor, black))

	d := &font.Drawer{Dst: img, Src: image.NewUniform(orDefault(opt.TextColor, black)), Face: face}
	ascent := face.Metrics().Ascent
	for _, a := range p.Areas {
		x0, y0 := px(a.Rect.X-p.Frame.X), px(a.Rect.Y-p.Frame.Y)
		if opt.IncludeGuides {
			strokeRect(img, x0, y0, x0+px(a.Rect.W)-1, y0+px(a.Rect.H)-1, orDefault(opt.GuideColor, red))
		}
		for _, l := range a.Lines {
			d.Dot = fixed.Point26_6{
				X: fixed.I(x0 + px(l.X)),
				Y: fixed.I(y0+px(l.Y)) + ascent,
			}
			d.DrawString(l.Text)
		}
	}
	return img
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
