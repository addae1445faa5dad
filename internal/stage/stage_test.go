/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stage

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"golang.org/x/image/font/gofont/goregular"

	"novelbox/internal/assets"
	"novelbox/internal/config"
	"novelbox/internal/engine"
	"novelbox/internal/log"
	"novelbox/internal/textlayout"
)

const dialogYAML = `
templates: [names.csv]
dialogs:
  - name: main
    position: {x: 0, y: 300}
    size: {w: 200, h: 100}
    popup: {kind: fix}
    breaker: {mode: input}
    script: intro.md
    areas:
      - name: text
        size: {w: 200, h: 100}
        font_size: 10
        typing: {mode: page}
    choice:
      popup: {kind: fix}
      sink: {kind: fix}
      size: {w: 100, h: 40}
      buttons:
        - {name: b0, size: {w: 100, h: 20}, font_size: 10}
        - {name: b1, position: {y: 20}, size: {w: 100, h: 20}, font_size: 10}
  - name: side
    breaker: {mode: auto, sec: 0.5}
    templates: [other.csv]
    areas:
      - {name: text, style: dialogue, align: center, feeding: {mode: scroll, size: 2, sec: 0.3}}
`

func storyFS() fstest.MapFS {
	return fstest.MapFS{
		"intro.md":  {Data: []byte("Hello</p>HERO\n* Left(left.md \"main\")\n* Right(right.md \"main\")")},
		"left.md":   {Data: []byte("Left!")},
		"right.md":  {Data: []byte("Right!")},
		"names.csv": {Data: []byte("HERO,Aki\n")},
	}
}

func TestDialogsConvert(t *testing.T) {
	df, err := config.ParseDialogFile([]byte(dialogYAML))
	if err != nil {
		t.Fatalf("ParseDialogFile: %v", err)
	}
	ds, err := Dialogs(df, []string{"fallback.csv"})
	if err != nil {
		t.Fatalf("Dialogs: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("got %d dialogs", len(ds))
	}
	main, side := ds[0], ds[1]
	if main.Breaker.Mode != engine.InputWait || main.Popup.Duration() != 0 || main.Position.Y != 300 {
		t.Fatalf("main = %+v", main)
	}
	if len(main.Templates) != 1 || main.Templates[0] != "names.csv" {
		t.Fatalf("main should inherit file templates, got %v", main.Templates)
	}
	if main.Areas[0].Typing.Mode != engine.ByPage || main.Choice == nil || len(main.Choice.Buttons) != 2 {
		t.Fatalf("main areas/choice = %+v %+v", main.Areas, main.Choice)
	}
	if main.Choice.Axis != engine.Vertical || main.Choice.Scaling != engine.ScaleFixed {
		t.Fatalf("choice defaults = %+v", main.Choice)
	}
	if side.Templates[0] != "other.csv" || side.Breaker.Sec != 0.5 {
		t.Fatalf("side = %+v", side)
	}
	a := side.Areas[0]
	st, _ := textlayout.GetStyle("Dialogue")
	if a.FontSize != st.SizePt || a.Tracking != st.Tracking || len(a.Fonts) != len(st.Fonts) {
		t.Fatalf("style not applied: %+v", a)
	}
	if a.Align != engine.AlignCenter || a.Feeding.Mode != engine.Scroll || a.Feeding.Size != 2 || a.Feeding.Duration != 0.3 {
		t.Fatalf("side area = %+v", a)
	}
}

func TestDialogsRejectUnknownStyle(t *testing.T) {
	df := config.DialogFile{Dialogs: []config.DialogSpec{{Name: "x", Areas: []config.AreaSpec{{Name: "t", Style: "gothic"}}}}}
	if _, err := Dialogs(df, nil); err == nil {
		t.Fatalf("unknown style should fail")
	}
}

type countRec struct{ texts []string }

func (c *countRec) RecordPage(_, _, text string) { c.texts = append(c.texts, text) }

func newStage(t *testing.T, auto bool, pick Picker, rec engine.Recorder) *Stage {
	t.Helper()
	df, err := config.ParseDialogFile([]byte(dialogYAML))
	if err != nil {
		t.Fatal(err)
	}
	df.Dialogs = df.Dialogs[:1]
	ds, err := Dialogs(df, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{
		Loader:    assets.NewLoader(storyFS()),
		Measurer:  textlayout.MonoMeasurer{},
		Recorder:  rec,
		Logger:    log.Nop(),
		Auto:      auto,
		Pick:      pick,
		MaxFrames: 200,
	})
	s.Open(ds...)
	return s
}

func TestRunPlaysThroughChoice(t *testing.T) {
	rec := &countRec{}
	var chosen []engine.ChoosenEvent
	s := newStage(t, true, func(box string, labels []string) int {
		if box != "main_choice" || len(labels) != 2 || labels[1] != "Right" {
			t.Errorf("pick got %q %v", box, labels)
		}
		return 1
	}, rec)
	s.opts.OnNote = func(n engine.Notification) {
		if c, ok := n.(engine.ChoosenEvent); ok {
			chosen = append(chosen, c)
		}
	}
	frames, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v after %d frames", err, frames)
	}
	pages := s.Pages()
	var texts []string
	for _, p := range pages {
		texts = append(texts, p.Text())
	}
	if len(texts) != 3 || texts[0] != "Hello" || texts[1] != "Aki" || texts[2] != "Right!" {
		t.Fatalf("pages = %q", texts)
	}
	if len(rec.texts) != 3 {
		t.Fatalf("recorder saw %d pages", len(rec.texts))
	}
	if len(chosen) != 1 {
		t.Fatalf("chosen = %+v", chosen)
	}
	p := pages[0]
	if p.Box != "main" || p.Ref != "intro.md" || p.Frame.Y != 300 || len(p.Areas) != 1 || p.Areas[0].Rect.Y != 300 {
		t.Fatalf("first page layout = %+v", p)
	}
	if pages[2].Ref != "right.md" {
		t.Fatalf("third page ref = %q", pages[2].Ref)
	}
}

func TestRunPressesArmedChoiceWithoutPicker(t *testing.T) {
	var notes []engine.Notification
	s := newStage(t, true, nil, nil)
	s.opts.OnNote = func(n engine.Notification) { notes = append(notes, n) }
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var pushed, chosen bool
	for _, n := range notes {
		switch n := n.(type) {
		case engine.ButtonIsPushed:
			pushed = pushed || n.Box == "main_choice"
		case engine.ChoosenEvent:
			chosen = n.ChoiceBox == "main_choice"
		}
	}
	if !pushed || !chosen {
		t.Fatalf("choice was not pressed through: %+v", notes)
	}
	pages := s.Pages()
	if len(pages) != 3 || pages[2].Text() != "Left!" || pages[2].Ref != "left.md" {
		t.Fatalf("rank 0 should load left.md, pages = %+v", pages)
	}
}

func TestRunWithoutAutoStalls(t *testing.T) {
	s := newStage(t, false, nil, nil)
	_, err := s.Run(context.Background())
	if !errors.Is(err, ErrFrameLimit) {
		t.Fatalf("err = %v, want ErrFrameLimit", err)
	}
	if len(s.Pages()) != 1 {
		t.Fatalf("only the first page should be captured, got %d", len(s.Pages()))
	}
}

func TestRunHonorsContext(t *testing.T) {
	s := newStage(t, true, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestFontMeasurer(t *testing.T) {
	fsys := fstest.MapFS{"fonts/Go.ttf": {Data: goregular.TTF}}
	m, err := FontMeasurer(fsys, []string{"fonts/Go.ttf"})
	if err != nil {
		t.Fatalf("FontMeasurer: %v", err)
	}
	if adv := m.Advance([]string{"Go"}, 16, 'M'); adv <= 0 {
		t.Fatalf("advance = %v", adv)
	}
	if _, err := FontMeasurer(fsys, []string{"fonts/none.ttf"}); err == nil {
		t.Fatalf("missing font should fail")
	}
}
