/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stage drives the interpreter without a screen: it converts dialog
// files into boxes, ticks the engine at a fixed step, presses gates when
// asked to and keeps a laid-out copy of every finished page.
package stage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"novelbox/internal/engine"
	"novelbox/internal/export"
	"novelbox/internal/log"
	"novelbox/internal/textlayout"
)

// ErrFrameLimit is returned when a run does not settle within MaxFrames.
var ErrFrameLimit = errors.New("stage: frame limit reached")

// Picker chooses a button index for a choice box given the shown labels.
type Picker func(box string, labels []string) int

type Options struct {
	Loader   engine.ScriptLoader
	Measurer textlayout.Measurer
	Recorder engine.Recorder // receives pages after they are captured
	Logger   *slog.Logger

	FrameRate int  // ticks per second, default 60
	Auto      bool // press armed gates
	MaxFrames int  // default 100000
	Pick      Picker
	OnNote    func(engine.Notification)
}

// Stage owns an engine and the pages it produced.
type Stage struct {
	e     *engine.Engine
	opts  Options
	log   *slog.Logger
	pages []export.Page

	// pending choice navigation: moves left before the press
	moves  int
	picked string
}

func New(opts Options) *Stage {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = 100000
	}
	if opts.Logger == nil {
		opts.Logger = log.WithComponent("stage")
	}
	s := &Stage{opts: opts, log: opts.Logger}
	s.e = engine.New(engine.Options{
		Loader:   opts.Loader,
		Measurer: opts.Measurer,
		Recorder: s,
		Logger:   opts.Logger,
	})
	return s
}

// Engine exposes the driven engine.
func (s *Stage) Engine() *engine.Engine { return s.e }

// Open queues boxes in order.
func (s *Stage) Open(dialogs ...engine.OpenDialog) {
	for _, d := range dialogs {
		s.e.Open(d)
	}
}

// Pages returns the captured pages in reading order.
func (s *Stage) Pages() []export.Page { return append([]export.Page(nil), s.pages...) }

// RecordPage snapshots the box's layout while its lines are still present.
func (s *Stage) RecordPage(box, ref, text string) {
	if b := s.e.Box(box); b != nil {
		s.pages = append(s.pages, Snapshot(b))
	}
	if s.opts.Recorder != nil {
		s.opts.Recorder.RecordPage(box, ref, text)
	}
}

// Snapshot copies the visible, non-empty areas of b.
func Snapshot(b *engine.DialogBox) export.Page {
	p := export.Page{Box: b.Name, Ref: b.Ref, Frame: b.Rect()}
	if b.Scale() == 0 {
		p.Frame.W, p.Frame.H = b.Size.W, b.Size.H
		p.Frame.X, p.Frame.Y = b.Position.X, b.Position.Y
	}
	for _, a := range b.Areas {
		if !a.Visible || len(a.Lines) == 0 {
			continue
		}
		ea := export.Area{Name: a.Name, Rect: b.AreaRect(a)}
		for _, l := range a.Lines {
			size := a.FontSize
			if len(l.Chars) > 0 {
				size = l.Chars[0].Size
			}
			ea.Lines = append(ea.Lines, export.Line{
				Text:   l.String(),
				X:      l.OffsetX(a.Config.Align, a.Config.Size.W),
				Y:      l.Y,
				Height: l.Height,
				Size:   size,
			})
		}
		p.Areas = append(p.Areas, ea)
	}
	return p
}

// Run ticks until the engine is idle and Auto has nothing left to press.
// It returns the number of frames run.
func (s *Stage) Run(ctx context.Context) (int, error) {
	dt := 1 / float64(s.opts.FrameRate)
	for n := 0; n < s.opts.MaxFrames; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		in, act := s.input()
		// an armed choice box is idle to the engine but still actionable here
		if n > 0 && !act && s.e.Idle() {
			return n, nil
		}
		s.e.Tick(dt, in)
		if act && !in.Activate {
			s.moves--
		}
		for _, note := range s.e.Drain() {
			s.observe(note)
		}
	}
	s.log.Warn("run did not settle", slog.Int("frames", s.opts.MaxFrames))
	return s.opts.MaxFrames, ErrFrameLimit
}

func (s *Stage) observe(n engine.Notification) {
	if s.opts.OnNote != nil {
		s.opts.OnNote(n)
	}
	switch n := n.(type) {
	case engine.ButtonIsSelected:
		if n.Rank == 0 && s.picked != n.Box {
			s.plan(n.Box)
		}
	case engine.FinisClosingBox:
		if n.Box == s.picked {
			s.picked = ""
		}
	}
}

// plan decides how many moves reach the picked button of a fresh choice box.
func (s *Stage) plan(box string) {
	b := s.e.Box(box)
	if b == nil || !b.IsChoice() {
		return
	}
	var labels []string
	for _, a := range b.Areas {
		if a.Selectable != nil {
			labels = append(labels, a.Text())
		}
	}
	s.picked = box
	s.moves = 0
	if s.opts.Pick != nil && len(labels) > 0 {
		k := s.opts.Pick(box, labels)
		if k > 0 && k < len(labels) {
			s.moves = k
		}
	}
	s.log.Debug("choice planned", slog.String("box", box), slog.Int("rank", s.moves), slog.Int("choices", len(labels)))
}

// input is what Auto would send this frame; false means nothing.
func (s *Stage) input() (engine.Input, bool) {
	if !s.opts.Auto {
		return engine.Input{}, false
	}
	cur := s.e.Current()
	if cur == nil || cur.Phase != engine.WaitingAction && !cur.IsChoice() {
		return engine.Input{}, false
	}
	box, _, ok := s.e.Selected()
	if !ok || box != cur.Name {
		return engine.Input{}, false
	}
	if cur.IsChoice() && s.moves > 0 {
		return engine.Input{Move: forward(cur)}, true
	}
	return engine.Input{Activate: true}, true
}

// forward is the direction that advances the selection rank.
func forward(b *engine.DialogBox) engine.Direction {
	for _, a := range b.Areas {
		if a.Selectable != nil && a.Selectable.Axis == engine.Horizontal {
			return engine.Right
		}
	}
	return engine.Down
}

// FontMeasurer loads font files from fsys into a typesetter. The family is
// the file name without extension.
func FontMeasurer(fsys fs.FS, files []string) (textlayout.Measurer, error) {
	lib := textlayout.NewFontLibrary()
	for _, f := range files {
		family := strings.TrimSuffix(path.Base(f), path.Ext(f))
		if err := lib.LoadFS(fsys, family, f); err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
	}
	log.WithComponent("stage").Debug("fonts loaded", slog.Any("families", lib.Families()))
	return textlayout.NewTypesetter(lib), nil
}
