/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls the proof sheet. Units are points.
// The sheet defaults to A4 portrait, Margin to 36.
type PDFOptions struct {
	Title         string
	PageW, PageH  float64
	Margin        float64
	IncludeGuides bool
	GuideColor    color.RGBA
	FrameColor    color.RGBA
}

// ProofPDF writes one sheet per page to outPath. Each sheet carries a
// heading with the box name and script reference, the box frame scaled to
// fit and each line of text at its laid-out position.
func ProofPDF(pages []Page, outPath string, opt PDFOptions) error {
	if len(pages) == 0 {
		return errors.New("export: no pages")
	}
	pw, ph := opt.PageW, opt.PageH
	if pw <= 0 || ph <= 0 {
		pw, ph = 595, 842
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 36
	}
	guide := orDefault(opt.GuideColor, red)
	frame := orDefault(opt.FrameColor, black)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	title := opt.Title
	if title == "" {
		title = "Dialog proof"
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor("novelbox", false)
	// Core fonts are cp1252; translate everything that goes through Text.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, p := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(0, 0, 0)
		head := fmt.Sprintf("%d  %s", i+1, p.Box)
		if p.Ref != "" {
			head += "  (" + p.Ref + ")"
		}
		pdf.Text(margin, margin, tr(head))

		top := margin + 18
		avail := pw - 2*margin
		scale := 1.0
		if fw := float64(p.Frame.W); fw > avail {
			scale = avail / fw
		}
		ox := margin - float64(p.Frame.X)*scale
		oy := top - float64(p.Frame.Y)*scale

		setDrawColor(pdf, frame)
		pdf.SetLineWidth(0.5)
		pdf.Rect(margin, top, float64(p.Frame.W)*scale, float64(p.Frame.H)*scale, "D")

		for _, a := range p.Areas {
			ax := ox + float64(a.Rect.X)*scale
			ay := oy + float64(a.Rect.Y)*scale
			if opt.IncludeGuides {
				setDrawColor(pdf, guide)
				pdf.SetLineWidth(0.2)
				pdf.Rect(ax, ay, float64(a.Rect.W)*scale, float64(a.Rect.H)*scale, "D")
			}
			for _, l := range a.Lines {
				size := float64(l.Size)
				if size <= 0 {
					size = 12
				}
				pdf.SetFont("Helvetica", "", size*scale)
				// baseline sits one font size below the line top
				pdf.Text(ax+float64(l.X)*scale, ay+(float64(l.Y)+size)*scale, tr(l.Text))
			}
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}
