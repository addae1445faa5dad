/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"log/slog"

	"novelbox/internal/directive"
	"novelbox/internal/script"
)

// typeBox materializes orders into the current area until the box has to
// pause: a page end, a wait, a box switch or an empty stream.
func (e *Engine) typeBox(b *DialogBox) {
	for b.Phase == Typing && b.pause <= 0 {
		a := b.CurrentArea()
		if a == nil {
			return
		}
		o, ok := b.orders.Pop()
		if !ok {
			e.idle(b)
			return
		}
		switch o.Kind {
		case script.Type:
			if e.place(a, o.Char) {
				b.recorded = false
				continue
			}
			b.orders.Push(o)
			if !e.newLine(a) {
				e.pageEnd(b)
			}
		case script.CarriageReturn:
			if !e.newLine(a) {
				// the break belongs to the next page
				b.orders.Push(o)
				e.pageEnd(b)
			}
		case script.PageFeed:
			e.pageEnd(b)
		case script.ThroughEvent:
			if !e.through(b, o.Payload) {
				return
			}
		}
	}
}

// through handles a directive met while typing. Directives that shape the
// text run now; the rest are queued for the fire pass. It returns false
// when typing must stop for this frame.
func (e *Engine) through(b *DialogBox, payload string) bool {
	d, ok := directive.Decode(payload)
	if !ok {
		e.log.DebugContext(e.ctx, "directive dropped", slog.String("box", b.Name), slog.String("text", payload))
		return true
	}
	switch d := d.(type) {
	case directive.ChangeFontSize:
		setFontSize(b, d.Size)
	case directive.ChangeCurrentTextArea:
		if d.Box != "" && d.Box != b.Name {
			e.queue(d, b.ID)
			return true
		}
		e.switchArea(b, d.Area)
	case directive.ChangeCurrentDialogBox:
		e.queue(d, b.ID)
		return false
	case directive.SimpleWait:
		if t := e.resolveOpt(d.Target, b.ID); t != nil {
			t.pause += d.Sec
		}
	case directive.BreakWait:
		e.breakWait(e.resolveOpt(d.Target, b.ID), d.Sec)
	case directive.InputForFeeding:
		if t := e.resolve(d.Box, b.ID); t != nil {
			e.inputWait(t, d.Area, feedText(t), false)
		}
	case directive.InputForSkipping:
		if t := e.resolve(d.Box, b.ID); t != nil {
			e.inputWait(t, d.Area, d.Next, true)
		}
	case directive.SinkDownWindow:
		e.sinkDown(e.resolveOpt(d.Target, b.ID), d)
	default:
		e.queue(d, b.ID)
	}
	return true
}

// place appends r to the last line. It returns false when r does not fit
// the width; the first char of a line always fits.
func (e *Engine) place(a *TextArea, r rune) bool {
	if len(a.Lines) == 0 {
		e.appendLine(a, 0)
	}
	l := a.Lines[len(a.Lines)-1]
	cfg := a.Config
	adv := e.measurer.Advance(cfg.Fonts, a.FontSize, r) + cfg.Tracking
	if len(l.Chars) > 0 && cfg.Size.W > 0 && l.Width+adv > cfg.Size.W {
		return false
	}
	delay := a.lag + e.step(a, l)
	a.lag = delay
	c := &Char{Rune: r, X: l.Width, Advance: adv, Size: a.FontSize, Timer: delay}
	if delay <= 0 {
		show(a, c)
	}
	l.Chars = append(l.Chars, c)
	l.Width += adv
	if h := e.lineHeight(a); h > l.Height {
		l.Height = h
	}
	return true
}

// step is the reveal delay added before a char placed on l.
func (e *Engine) step(a *TextArea, l *Line) float64 {
	t := a.Config.Typing
	switch t.Mode {
	case ByChar:
		return t.Sec
	case ByLine:
		// The area's very first line starts without the line delay.
		if len(l.Chars) == 0 && l.serial > 0 {
			return t.Sec
		}
	}
	return 0
}

func (e *Engine) lineHeight(a *TextArea) float32 {
	return e.measurer.LineHeight(a.Config.Fonts, a.FontSize) + a.Config.Leading
}

// newLine starts a line below the last one. It returns false, creating
// nothing, when the line would overflow the area height.
func (e *Engine) newLine(a *TextArea) bool {
	if len(a.Lines) == 0 {
		e.appendLine(a, 0)
		return true
	}
	last := a.Lines[len(a.Lines)-1]
	y := last.Y + last.Height
	if a.Config.Size.H > 0 && y+e.lineHeight(a) > a.Config.Size.H {
		return false
	}
	e.appendLine(a, y)
	return true
}

func (e *Engine) appendLine(a *TextArea, y float32) {
	a.Lines = append(a.Lines, &Line{Y: y, OffsetY: y, Height: e.lineHeight(a), Alpha: 1, serial: a.lineCount})
	a.lineCount++
}

func show(a *TextArea, c *Char) {
	c.Shown = true
	c.Timer = 0
	if a.Config.Writing.Mode == Wipe && a.Config.Writing.Sec > 0 {
		c.Wipe = 0
		return
	}
	c.Wipe = 1
}

// reveal counts down char timers and advances wipes.
func (e *Engine) reveal(a *TextArea, dt float64) {
	a.lag -= dt
	if a.lag < 0 {
		a.lag = 0
	}
	w := a.Config.Writing
	for _, l := range a.Lines {
		for _, c := range l.Chars {
			switch {
			case !c.Shown:
				c.Timer -= dt
				if c.Timer <= 0 {
					show(a, c)
				}
			case c.Wipe < 1:
				c.Wipe += float32(dt / w.Sec)
				if c.Wipe > 1 {
					c.Wipe = 1
				}
			}
		}
	}
}

// complete force-reveals every char of a and cancels wipes.
func complete(a *TextArea) {
	for _, l := range a.Lines {
		for _, c := range l.Chars {
			c.Shown = true
			c.Timer = 0
			c.Wipe = 1
		}
	}
	a.lag = 0
}

func feedText(b *DialogBox) string {
	return directive.Encode(directive.ForceFeeding{Target: directive.Str(b.Name)})
}

// pageEnd parks the box in WaitingAction and arms its breaker.
func (e *Engine) pageEnd(b *DialogBox) {
	a := b.CurrentArea()
	e.record(b)
	b.Phase = WaitingAction
	b.iconVisible = true
	e.notify(FeedWaitingEvent{Box: b.Name, Wait: a.lag})
	e.arm(b, a, feedText(b), b.Breaker.Sec+a.lag)
}

// arm installs the breaker: a timer for Auto, a skip gate for InputWait.
func (e *Engine) arm(b *DialogBox, a *TextArea, payload string, delay float64) {
	b.waiting = true
	if b.Breaker.Mode == Auto || a == nil {
		b.timers = append(b.timers, &Timer{Remaining: delay, Fire: payload})
		return
	}
	e.setGate(b, a, Gate{Payload: payload, Rect: b.AreaRect(a), AllRange: b.Breaker.AllRange, Skip: true})
}

func (e *Engine) breakWait(b *DialogBox, sec float64) {
	if b == nil || b.Phase != Typing {
		return
	}
	a := b.CurrentArea()
	lag := 0.0
	if a != nil {
		lag = a.lag
	}
	e.record(b)
	b.Phase = WaitingAction
	b.waiting = true
	e.notify(FeedWaitingEvent{Box: b.Name, Wait: lag})
	b.timers = append(b.timers, &Timer{Remaining: sec + lag, Fire: feedText(b)})
}

// inputWait parks b until the gate on the named area (or the current one)
// is activated.
func (e *Engine) inputWait(b *DialogBox, area string, payload string, skip bool) {
	a := b.CurrentArea()
	if area != "" {
		a = b.Area(area)
	}
	if a == nil {
		return
	}
	if b.Phase == Typing {
		e.record(b)
		b.Phase = WaitingAction
		e.notify(FeedWaitingEvent{Box: b.Name, Wait: a.lag})
	}
	b.waiting = true
	b.iconVisible = true
	g := Gate{Payload: payload, Rect: b.AreaRect(a), AllRange: b.Breaker.AllRange, Skip: skip}
	e.setGate(b, a, g)
}

// clearWait drops every timer and gate holding the box.
func (e *Engine) clearWait(b *DialogBox) {
	b.timers = nil
	b.waiting = false
	b.iconVisible = false
	e.clearTargets(b)
}

// feed leaves WaitingAction and clears the page per the area's style.
func (e *Engine) feed(b *DialogBox) {
	if b == nil || b.Phase != WaitingAction {
		return
	}
	e.clearWait(b)
	a := b.CurrentArea()
	if a == nil {
		b.Phase = Typing
		return
	}
	e.notify(StartFeedingEvent{Box: b.Name, Area: a.Name})
	fs := a.Config.Feeding
	if fs.Mode != Scroll {
		a.Lines = nil
		a.lag = 0
		b.Phase = Typing
		return
	}
	k := fs.Size
	if k == 0 {
		k = len(a.Lines)
	}
	if len(a.Lines) < k || k == 0 {
		b.Phase = Typing
		return
	}
	shift := a.Lines[k-1].Y + a.Lines[k-1].Height
	if fs.Duration <= 0 {
		dropLines(a, k, shift)
		b.Phase = Typing
		return
	}
	a.feed = &feedAnim{lines: k, shift: shift, duration: fs.Duration}
	b.Phase = Feeding
}

func (e *Engine) progressFeed(b *DialogBox, dt float64) {
	a := b.CurrentArea()
	if a == nil || a.feed == nil {
		b.Phase = Typing
		return
	}
	f := a.feed
	f.elapsed += dt
	t := anim{elapsed: f.elapsed, duration: f.duration}.progress()
	for i, l := range a.Lines {
		l.OffsetY = l.Y - f.shift*t
		if i < f.lines {
			l.Alpha = 1 - t
		}
	}
	if f.elapsed >= f.duration {
		dropLines(a, f.lines, f.shift)
		a.feed = nil
		b.Phase = Typing
	}
}

func dropLines(a *TextArea, k int, shift float32) {
	a.Lines = append([]*Line(nil), a.Lines[k:]...)
	for _, l := range a.Lines {
		l.Y -= shift
		l.OffsetY = l.Y
		l.Alpha = 1
	}
}

// sinkDown closes b. Without Immediate it first waits on the breaker and
// re-issues itself with Immediate set.
func (e *Engine) sinkDown(b *DialogBox, d directive.SinkDownWindow) {
	if b == nil || b.Phase == SinkingDown || b.Phase == Fixed {
		return
	}
	e.record(b)
	if !d.Immediate {
		next := directive.Encode(directive.SinkDownWindow{Sink: d.Sink, Target: directive.Str(b.Name), Immediate: true})
		a := b.CurrentArea()
		lag := 0.0
		if a != nil {
			lag = a.lag
		}
		e.clearWait(b)
		b.Phase = WaitingAction
		e.arm(b, a, next, b.Breaker.Sec+lag)
		return
	}
	e.clearWait(b)
	b.sink = d.Sink
	b.Phase = SinkingDown
	b.anim = anim{duration: d.Sink.Duration()}
	if b.anim.done() {
		b.Phase = Fixed
	}
}

// loadScript swaps b's stream and starts a fresh page.
func (e *Engine) loadScript(b *DialogBox, ref string) {
	if b == nil {
		return
	}
	orders, err := e.load(ref, b.templates)
	if err != nil {
		e.log.WarnContext(e.ctx, "load script", slog.String("box", b.Name), slog.String("ref", ref), slog.Any("err", err))
		return
	}
	e.record(b)
	e.clearWait(b)
	for _, a := range b.Areas {
		a.Lines = nil
		a.lag = 0
		a.feed = nil
	}
	b.orders = orders
	b.Ref = ref
	b.pause = 0
	switch b.Phase {
	case WaitingAction, Feeding:
		b.Phase = Typing
	}
}

// idle runs when the stream is empty.
func (e *Engine) idle(b *DialogBox) {
	if b.choice != nil && !b.choice.armed {
		e.armChoice(b)
		return
	}
	e.record(b)
}

// record hands the page to the recorder once.
func (e *Engine) record(b *DialogBox) {
	if b.recorded || b.choice != nil || e.recorder == nil {
		return
	}
	a := b.CurrentArea()
	if a == nil {
		return
	}
	text := a.Text()
	if text == "" {
		return
	}
	b.recorded = true
	e.recorder.RecordPage(b.Name, b.Ref, text)
}
