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

	"novelbox/internal/choice"
	"novelbox/internal/directive"
)

// openChoice spawns the choice box of parent with all configured buttons
// and shows the first len(pairs). The choice box becomes current next frame.
func (e *Engine) openChoice(parent *DialogBox, pairs []directive.ChoicePair) {
	if parent == nil || parent.choiceCfg == nil || len(parent.choiceCfg.Buttons) == 0 {
		e.log.WarnContext(e.ctx, "choice without choice box config")
		return
	}
	cfg := parent.choiceCfg
	name := cfg.Name
	if name == "" {
		name = parent.Name + "_choice"
	}
	if e.byName(name) != nil {
		e.log.WarnContext(e.ctx, "choice box already open", slog.String("box", name))
		return
	}
	total := len(cfg.Buttons)
	if len(pairs) > total {
		e.log.WarnContext(e.ctx, "too many choices", slog.String("box", name), slog.Int("choices", len(pairs)), slog.Int("buttons", total))
		pairs = pairs[:total]
	}
	names := make([]string, total)
	for i, bc := range cfg.Buttons {
		names[i] = bc.Name
	}
	orders, err := choice.Build(name, pairs, names)
	if err != nil {
		e.log.WarnContext(e.ctx, "build choice", slog.Any("err", err))
		return
	}
	size := cfg.Size
	if cfg.Scaling == ScaleByCount {
		f := float32(len(pairs)) / float32(total)
		if cfg.Axis == Vertical {
			size.H *= f
		} else {
			size.W *= f
		}
	}
	b := e.newBox(OpenDialog{
		Name:     name,
		Position: cfg.Position,
		Size:     size,
		Popup:    cfg.Popup,
		Breaker:  WaitBreaker{Mode: InputWait},
		Areas:    cfg.Buttons,
	})
	b.orders = orders
	b.parent = parent.ID
	b.sink = cfg.Sink
	b.Ref = parent.Ref
	b.choice = &choiceState{payloads: choice.Payloads(name, pairs), shown: len(pairs)}
	for i, a := range b.Areas {
		a.Visible = i < len(pairs)
	}
	e.addBox(b)
	e.settingQ = append(e.settingQ, queued{d: directive.ChangeCurrentDialogBox{Box: name}, origin: parent.ID})
}

// armChoice makes the shown buttons selectable once their labels are typed.
func (e *Engine) armChoice(b *DialogBox) {
	cs := b.choice
	cs.armed = true
	if cs.shown == 0 {
		return
	}
	axis := Vertical
	if p := e.boxAt(b.parent); p != nil && p.choiceCfg != nil {
		axis = p.choiceCfg.Axis
	}
	for i := 0; i < cs.shown && i < len(b.Areas); i++ {
		a := b.Areas[i]
		a.Selectable = &Selectable{Axis: axis, Number: i}
		a.Gate = &Gate{Payload: cs.payloads[i], Rect: b.AreaRect(a)}
	}
	b.waiting = true
	e.selectTarget(b, 0, true)
}

// choiceMade reports the pick, forwards its directive to the parent box,
// drops the unused buttons and closes the choice box.
func (e *Engine) choiceMade(d directive.ChoiceMade) {
	b := e.byName(d.ChoiceBox)
	if b == nil || b.choice == nil {
		return
	}
	e.notify(ChoosenEvent{Payload: d.Payload, ChoiceBox: b.Name})
	if d.Payload != "" {
		e.dispatchFrom(d.Payload, b.parent)
	}
	if n := b.choice.shown; n < len(b.Areas) {
		b.Areas = b.Areas[:n]
		if b.current >= n {
			b.current = n - 1
		}
	}
	e.sinkDown(b, directive.SinkDownWindow{Sink: b.sink, Immediate: true})
}
