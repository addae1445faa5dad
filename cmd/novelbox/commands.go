/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"novelbox/internal/assets"
	"novelbox/internal/config"
	"novelbox/internal/crash"
	"novelbox/internal/engine"
	"novelbox/internal/export"
	applog "novelbox/internal/log"
	"novelbox/internal/script"
	"novelbox/internal/stage"
	"novelbox/internal/storage"
	"novelbox/internal/template"
	"novelbox/internal/textlayout"
)

func parseCmd(out io.Writer, path, section string, all bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s := script.Parse(template.Preprocess(string(data), nil))
	names := s.Names
	if !all {
		names = []string{section}
	}
	for _, name := range names {
		o, ok := s.Section(name)
		if !ok {
			return fmt.Errorf("%s: no section %q", path, name)
		}
		_, _ = fmt.Fprintf(out, "== %q (%d orders)\n", name, o.Len())
		for _, ord := range o.Reading() {
			_, _ = fmt.Fprintln(out, ord.String())
		}
	}
	return nil
}

func expandCmd(out io.Writer, path, table string) error {
	rules, err := template.LoadTable(table)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, template.Preprocess(string(data), rules))
	return err
}

// session is one headless run of a dialog file.
type session struct {
	stage *stage.Stage
	ds    []engine.OpenDialog
}

func newSession(cfg config.AppConfig, dialogPath string, rec engine.Recorder, onNote func(engine.Notification)) (*session, error) {
	df, err := config.LoadDialogFile(dialogPath)
	if err != nil {
		return nil, err
	}
	ds, err := stage.Dialogs(df, cfg.Scripts.Templates)
	if err != nil {
		return nil, err
	}
	root := cfg.Scripts.Root
	if root == "" {
		root = filepath.Dir(dialogPath)
	}
	fsys := os.DirFS(root)
	var m textlayout.Measurer
	if len(cfg.Scripts.Fonts) > 0 {
		if m, err = stage.FontMeasurer(fsys, cfg.Scripts.Fonts); err != nil {
			return nil, err
		}
	}
	st := stage.New(stage.Options{
		Loader:    assets.NewLoader(fsys),
		Measurer:  m,
		Recorder:  rec,
		FrameRate: cfg.Engine.FrameRate,
		Auto:      cfg.Engine.AutoAdvance,
		MaxFrames: cfg.Engine.MaxFrames,
		OnNote:    onNote,
	})
	return &session{stage: st, ds: ds}, nil
}

func (s *session) run(rc *crash.Context) error {
	rc.Frame = s.stage.Engine().Frame
	s.stage.Open(s.ds...)
	_, err := s.stage.Run(context.Background())
	return err
}

// openBacklog returns a writer, or nil when no backlog is configured.
func openBacklog(cfg config.AppConfig) (*storage.Backlog, *storage.Writer) {
	if cfg.Storage.DSN == "" {
		return nil, nil
	}
	b, err := storage.Open(context.Background(), storage.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
	if err != nil {
		applog.WithComponent("backlog").Warn("backlog disabled", slog.String("driver", cfg.Storage.Driver), slog.Any("err", err))
		return nil, nil
	}
	return b, storage.NewWriter(b, 0)
}

type printer struct {
	out  io.Writer
	next engine.Recorder
}

func (p printer) RecordPage(box, ref, text string) {
	_, _ = fmt.Fprintf(p.out, "[%s] %s\n", box, strings.ReplaceAll(text, "\n", "\n    "))
	if p.next != nil {
		p.next.RecordPage(box, ref, text)
	}
}

func playCmd(cfg config.AppConfig, out io.Writer, dialogPath string, rc *crash.Context) error {
	b, w := openBacklog(cfg)
	var rec engine.Recorder = printer{out: out}
	if w != nil {
		rec = printer{out: out, next: w}
		rc.Flush = w.Close
		defer func() {
			w.Close()
			_ = b.Close()
		}()
	}
	s, err := newSession(cfg, dialogPath, rec, func(n engine.Notification) {
		if c, ok := n.(engine.ChoosenEvent); ok {
			_, _ = fmt.Fprintf(out, "-> chose %s\n", c.Payload)
		}
	})
	if err != nil {
		return err
	}
	return s.run(rc)
}

func proofCmd(cfg config.AppConfig, out io.Writer, dialogPath, outPath string, rc *crash.Context) error {
	s, err := newSession(cfg, dialogPath, nil, nil)
	if err != nil {
		return err
	}
	if err := s.run(rc); err != nil {
		return err
	}
	pages := s.stage.Pages()
	if strings.EqualFold(filepath.Ext(outPath), ".pdf") {
		if err := export.ProofPDF(pages, outPath, export.PDFOptions{Title: filepath.Base(dialogPath), IncludeGuides: true}); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "wrote %d pages to %s\n", len(pages), outPath)
		return nil
	}
	names, err := export.ProofPNG(pages, outPath, export.PNGOptions{IncludeGuides: true})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "wrote %d images to %s\n", len(names), outPath)
	return nil
}

func backlogCmd(cfg config.AppConfig, out io.Writer, dsn string, n int) error {
	if dsn == "" {
		return fmt.Errorf("no backlog configured: %w", errUsage)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b, err := storage.Open(ctx, storage.Config{Driver: cfg.Storage.Driver, DSN: dsn})
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	entries, err := b.List(ctx, "", n)
	if err != nil {
		return err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		_, _ = fmt.Fprintf(out, "%s  %-10s %-20s %s\n", e.At.Local().Format("2006-01-02 15:04:05"), e.Box, e.Ref, strings.ReplaceAll(e.Text, "\n", " / "))
	}
	return nil
}
