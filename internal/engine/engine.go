/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine is the per-frame dialog interpreter. Each Tick runs three
// passes in a fixed order: setting (current box/area switches, font size,
// teardown, promotion of pending boxes), progress (timers, reveals and
// animations, then typing), fire (spawns, queued directives, input gates).
// Nothing blocks; waits persist as timers or gates across frames.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"novelbox/internal/directive"
	"novelbox/internal/log"
	"novelbox/internal/script"
	"novelbox/internal/textlayout"
	"novelbox/internal/vector"
)

var errNoLoader = errors.New("engine: no script loader configured")

// ScriptLoader resolves "path#section" references to compiled streams.
type ScriptLoader interface {
	Load(ref string, templates []string) (script.Orders, error)
}

// Recorder receives each finished page. Implementations must not block.
type Recorder interface {
	RecordPage(box, ref, text string)
}

type Options struct {
	Loader   ScriptLoader
	Measurer textlayout.Measurer
	Recorder Recorder
	Logger   *slog.Logger
}

// Direction is a navigation input for the selection cursor.
type Direction int

const (
	NoMove Direction = iota
	Up
	Down
	Left
	Right
)

// Input is the abstract per-frame activation state.
type Input struct {
	Activate     bool // confirm key / button, independent of the pointer
	Pointer      vector.Pt
	PointerDown  bool
	PointerMoved bool
	Move         Direction
}

type queued struct {
	d      directive.Directive
	origin BoxID
}

type target struct {
	box  BoxID
	area int
}

// Engine owns every box. It is not safe for concurrent use; drive it from
// one goroutine.
type Engine struct {
	loader   ScriptLoader
	measurer textlayout.Measurer
	recorder Recorder
	log      *slog.Logger

	boxes    []*DialogBox
	current  BoxID
	pendingQ []BoxID
	opens    []OpenDialog
	settingQ []queued
	fireQ    []queued

	selected    target
	hasSelected bool

	notes []Notification
	frame uint64
	ctx   context.Context
}

// New builds an engine. A nil Measurer falls back to a basicfont typesetter.
func New(opts Options) *Engine {
	e := &Engine{
		loader:   opts.Loader,
		measurer: opts.Measurer,
		recorder: opts.Recorder,
		log:      opts.Logger,
		current:  noBox,
		ctx:      context.Background(),
	}
	if e.measurer == nil {
		e.measurer = textlayout.NewTypesetter(nil)
	}
	if e.log == nil {
		e.log = log.WithComponent("engine")
	}
	return e
}

// Open queues a box; it spawns in the next fire pass and waits as pending
// until no other box is current.
func (e *Engine) Open(o OpenDialog) { e.opens = append(e.opens, o) }

// Dispatch queues a host directive. Box and area names resolve against the
// current box when left empty.
func (e *Engine) Dispatch(d directive.Directive) { e.queue(d, noBox) }

// DispatchText decodes and queues text. Unknown or malformed text is dropped
// and reported as false.
func (e *Engine) DispatchText(text string) bool { return e.dispatchFrom(text, noBox) }

// Park attaches an external handle to a box; it is handed back in
// FinisClosingBox instead of being destroyed.
func (e *Engine) Park(box, handle string) bool {
	b := e.byName(box)
	if b == nil {
		return false
	}
	b.parked = append(b.parked, handle)
	return true
}

// Tick advances one frame.
func (e *Engine) Tick(dt float64, in Input) {
	if dt < 0 {
		dt = 0
	}
	e.frame++
	e.ctx = log.ContextWithTick(context.Background(), e.frame)
	e.setting()
	e.progress(dt)
	e.fire(in)
}

// Drain returns and clears the notifications raised so far.
func (e *Engine) Drain() []Notification {
	n := e.notes
	e.notes = nil
	return n
}

// Frame is the number of ticks run.
func (e *Engine) Frame() uint64 { return e.frame }

// Box finds a live box by name. The result is a read-only view.
func (e *Engine) Box(name string) *DialogBox { return e.byName(name) }

// Boxes lists live boxes in spawn order.
func (e *Engine) Boxes() []*DialogBox {
	var out []*DialogBox
	for _, b := range e.boxes {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Current is the box receiving script advancement, or nil.
func (e *Engine) Current() *DialogBox { return e.boxAt(e.current) }

// Selected names the selected target, if any.
func (e *Engine) Selected() (box, area string, ok bool) {
	if !e.hasSelected {
		return "", "", false
	}
	b := e.boxAt(e.selected.box)
	if b == nil || e.selected.area >= len(b.Areas) {
		return "", "", false
	}
	return b.Name, b.Areas[e.selected.area].Name, true
}

// Idle reports whether nothing can change without host input: no boxes,
// or the current box is idle typing with an empty stream.
func (e *Engine) Idle() bool {
	if len(e.opens) > 0 || len(e.fireQ) > 0 || len(e.settingQ) > 0 {
		return false
	}
	b := e.Current()
	if b == nil {
		return len(e.pendingQ) == 0
	}
	if b.Phase != Typing || b.orders.Len() > 0 || b.pause > 0 || len(b.timers) > 0 {
		return false
	}
	for _, a := range b.Areas {
		if !a.AllShown() {
			return false
		}
	}
	return true
}

func (e *Engine) boxAt(id BoxID) *DialogBox {
	if id < 0 || int(id) >= len(e.boxes) {
		return nil
	}
	return e.boxes[id]
}

func (e *Engine) byName(name string) *DialogBox {
	for _, b := range e.boxes {
		if b != nil && b.Name == name {
			return b
		}
	}
	return nil
}

// resolve maps a box name to a box; empty means the origin box, falling
// back to the current one.
func (e *Engine) resolve(name string, origin BoxID) *DialogBox {
	if name == "" {
		if b := e.boxAt(origin); b != nil {
			return b
		}
		return e.Current()
	}
	return e.byName(name)
}

func (e *Engine) resolveOpt(name *string, origin BoxID) *DialogBox {
	if name == nil {
		return e.resolve("", origin)
	}
	return e.resolve(*name, origin)
}

func (e *Engine) notify(n Notification) { e.notes = append(e.notes, n) }

func (e *Engine) dispatchFrom(text string, origin BoxID) bool {
	d, ok := directive.Decode(text)
	if !ok {
		e.log.DebugContext(e.ctx, "directive dropped", slog.String("text", text))
		return false
	}
	e.queue(d, origin)
	return true
}

func isSetting(d directive.Directive) bool {
	switch d.(type) {
	case directive.ChangeCurrentTextArea, directive.ChangeCurrentDialogBox, directive.ChangeFontSize:
		return true
	}
	return false
}

func (e *Engine) queue(d directive.Directive, origin BoxID) {
	if isSetting(d) {
		e.settingQ = append(e.settingQ, queued{d: d, origin: origin})
		return
	}
	e.fireQ = append(e.fireQ, queued{d: d, origin: origin})
}

// setting pass: tear down closed boxes, apply switches, promote.
func (e *Engine) setting() {
	for _, b := range e.boxes {
		if b != nil && b.Phase == Fixed {
			e.despawn(b)
		}
	}
	q := e.settingQ
	e.settingQ = nil
	for _, it := range q {
		e.applySetting(it)
	}
	if e.Current() == nil {
		e.current = noBox
		e.promote()
	}
}

func (e *Engine) applySetting(it queued) {
	switch d := it.d.(type) {
	case directive.ChangeCurrentDialogBox:
		e.makeCurrent(e.byName(d.Box))
	case directive.ChangeCurrentTextArea:
		if b := e.resolve(d.Box, it.origin); b != nil {
			e.switchArea(b, d.Area)
		}
	case directive.ChangeFontSize:
		if b := e.resolve("", it.origin); b != nil {
			setFontSize(b, d.Size)
		}
	}
}

func setFontSize(b *DialogBox, size float32) {
	if a := b.CurrentArea(); a != nil && size > 0 {
		a.FontSize = size
	}
}

func (e *Engine) switchArea(b *DialogBox, name string) {
	for i, a := range b.Areas {
		if a.Name == name {
			b.current = i
			a.Visible = true
			return
		}
	}
	e.log.DebugContext(e.ctx, "no such text area", slog.String("box", b.Name), slog.String("area", name))
}

// makeCurrent puts b in front; the previous current box goes to the head
// of the pending queue so it resumes first.
func (e *Engine) makeCurrent(b *DialogBox) {
	if b == nil || b.ID == e.current {
		return
	}
	e.unqueue(b.ID)
	if cur := e.Current(); cur != nil {
		cur.Pending = true
		e.pendingQ = append([]BoxID{cur.ID}, e.pendingQ...)
	}
	b.Pending = false
	e.current = b.ID
	if e.hasSelected && e.selected.box != b.ID {
		e.hasSelected = false
	}
}

func (e *Engine) promote() {
	for len(e.pendingQ) > 0 {
		id := e.pendingQ[0]
		e.pendingQ = e.pendingQ[1:]
		if b := e.boxAt(id); b != nil {
			b.Pending = false
			e.current = id
			return
		}
	}
}

func (e *Engine) unqueue(id BoxID) {
	out := e.pendingQ[:0]
	for _, p := range e.pendingQ {
		if p != id {
			out = append(out, p)
		}
	}
	e.pendingQ = out
}

func (e *Engine) despawn(b *DialogBox) {
	e.boxes[b.ID] = nil
	e.unqueue(b.ID)
	if e.current == b.ID {
		e.current = noBox
	}
	if e.hasSelected && e.selected.box == b.ID {
		e.hasSelected = false
	}
	detached := append([]string(nil), b.parked...)
	e.log.DebugContext(e.ctx, "box closed", slog.String("box", b.Name), slog.Int("detached", len(detached)))
	e.notify(FinisClosingBox{Box: b.Name, Detached: detached})
}

// progress pass: animations and timers, then typing.
func (e *Engine) progress(dt float64) {
	for _, b := range e.boxes {
		if b == nil || b.Pending {
			continue
		}
		e.progressBox(b, dt)
	}
}

func (e *Engine) progressBox(b *DialogBox, dt float64) {
	switch b.Phase {
	case Preparing:
		b.Phase = PoppingUp
		b.anim = anim{duration: b.popup.Duration()}
		if b.anim.done() {
			b.Phase = Typing
		}
	case PoppingUp:
		b.anim.elapsed += dt
		if b.anim.done() {
			b.Phase = Typing
		}
	case SinkingDown:
		b.anim.elapsed += dt
		if b.anim.done() {
			b.Phase = Fixed
		}
		return
	case Fixed:
		return
	}

	e.tickTimers(b, dt)
	if b.pause > 0 {
		b.pause -= dt
		if b.pause < 0 {
			b.pause = 0
		}
	}
	for _, a := range b.Areas {
		e.reveal(a, dt)
	}
	if b.Phase == Feeding {
		e.progressFeed(b, dt)
	}
	if b.Phase == Typing {
		e.typeBox(b)
	}
}

func (e *Engine) tickTimers(b *DialogBox, dt float64) {
	keep := b.timers[:0]
	var fired []string
	for _, t := range b.timers {
		t.Remaining -= dt
		if t.Remaining <= 0 {
			fired = append(fired, t.Fire)
			continue
		}
		keep = append(keep, t)
	}
	b.timers = keep
	for _, f := range fired {
		b.waiting = false
		e.dispatchFrom(f, b.ID)
	}
}

// fire pass: spawn requested boxes, run queued directives, read input.
// Directives raised here land in the next frame.
func (e *Engine) fire(in Input) {
	opens := e.opens
	e.opens = nil
	for _, o := range opens {
		e.spawn(o)
	}
	q := e.fireQ
	e.fireQ = nil
	for _, it := range q {
		e.run(it)
	}
	e.shift(in)
	e.goGate(in)
}

func (e *Engine) run(it queued) {
	switch d := it.d.(type) {
	case directive.ForceFeeding:
		e.feed(e.resolveOpt(d.Target, it.origin))
	case directive.LoadScript:
		e.loadScript(e.resolve(d.Box, it.origin), d.Path)
	case directive.SetupChoice:
		e.openChoice(e.resolve("", it.origin), d.Choices)
	case directive.ChoiceMade:
		e.choiceMade(d)
	case directive.SinkDownWindow:
		e.sinkDown(e.resolveOpt(d.Target, it.origin), d)
	case directive.SimpleWait:
		if b := e.resolveOpt(d.Target, it.origin); b != nil {
			b.pause += d.Sec
		}
	case directive.BreakWait:
		e.breakWait(e.resolveOpt(d.Target, it.origin), d.Sec)
	case directive.InputForFeeding:
		if b := e.resolve(d.Box, it.origin); b != nil {
			e.inputWait(b, d.Area, feedText(b), false)
		}
	case directive.InputForSkipping:
		if b := e.resolve(d.Box, it.origin); b != nil {
			e.inputWait(b, d.Area, d.Next, true)
		}
	default:
		e.applySetting(it)
	}
}

func (e *Engine) spawn(o OpenDialog) {
	if o.Name == "" || e.byName(o.Name) != nil {
		e.log.WarnContext(e.ctx, "open dialog rejected", slog.String("box", o.Name))
		return
	}
	b := e.newBox(o)
	switch {
	case o.Script != "":
		orders, err := e.load(o.Script, o.Templates)
		if err != nil {
			e.log.ErrorContext(e.ctx, "load script", slog.String("box", o.Name), slog.String("ref", o.Script), slog.Any("err", err))
		}
		b.orders = orders
	case o.Source != "":
		b.orders, _ = script.Parse(o.Source).Section("")
	}
	if o.Icon != "" {
		b.icon = o.Icon
		b.parked = append(b.parked, o.Icon)
	}
	e.addBox(b)
}

func (e *Engine) newBox(o OpenDialog) *DialogBox {
	b := &DialogBox{
		ID:        BoxID(len(e.boxes)),
		Name:      o.Name,
		Position:  o.Position,
		Size:      o.Size,
		Phase:     Preparing,
		Pending:   true,
		Breaker:   o.Breaker,
		Ref:       o.Script,
		popup:     o.Popup,
		current:   -1,
		parent:    noBox,
		choiceCfg: o.Choice,
		templates: o.Templates,
	}
	for _, cfg := range o.Areas {
		if cfg.Size == (vector.Size{}) {
			cfg.Size = o.Size
		}
		size := cfg.FontSize
		if size <= 0 {
			size = 16
		}
		b.Areas = append(b.Areas, &TextArea{Name: cfg.Name, Config: cfg, FontSize: size, Visible: true, box: b.ID})
	}
	if len(b.Areas) > 0 {
		b.current = 0
	}
	return b
}

func (e *Engine) addBox(b *DialogBox) {
	e.boxes = append(e.boxes, b)
	e.pendingQ = append(e.pendingQ, b.ID)
	e.log.DebugContext(e.ctx, "box spawned", slog.String("box", b.Name), slog.Int("orders", b.orders.Len()))
}

func (e *Engine) load(ref string, templates []string) (script.Orders, error) {
	if e.loader == nil {
		return nil, errNoLoader
	}
	return e.loader.Load(ref, templates)
}
