/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import "sort"

// setGate arms g on a and selects a without announcing it.
func (e *Engine) setGate(b *DialogBox, a *TextArea, g Gate) {
	a.Gate = &g
	for i, x := range b.Areas {
		if x == a {
			e.selectTarget(b, i, false)
			return
		}
	}
}

func (e *Engine) selectTarget(b *DialogBox, idx int, announce bool) {
	e.selected = target{box: b.ID, area: idx}
	e.hasSelected = true
	a := b.Areas[idx]
	if announce && a.Selectable != nil {
		e.notify(ButtonIsSelected{Box: b.Name, Area: a.Name, Axis: a.Selectable.Axis, Rank: a.Selectable.Number})
	}
}

func (e *Engine) selectedArea() (*DialogBox, *TextArea) {
	if !e.hasSelected {
		return nil, nil
	}
	b := e.boxAt(e.selected.box)
	if b == nil || e.selected.area >= len(b.Areas) {
		return nil, nil
	}
	return b, b.Areas[e.selected.area]
}

// clearTargets disarms every gate and selectable in b.
func (e *Engine) clearTargets(b *DialogBox) {
	for _, a := range b.Areas {
		a.Gate = nil
		a.Selectable = nil
	}
	if e.hasSelected && e.selected.box == b.ID {
		e.hasSelected = false
	}
}

// shift moves the selection: pointer hover first, then direction keys
// along the selected target's axis with wrap-around.
func (e *Engine) shift(in Input) {
	b := e.Current()
	if b == nil {
		return
	}
	if in.PointerMoved || in.PointerDown {
		for i, a := range b.Areas {
			if a.Selectable == nil || !a.Visible || !b.AreaRect(a).Contains(in.Pointer) {
				continue
			}
			if !e.hasSelected || e.selected.box != b.ID || e.selected.area != i {
				e.selectTarget(b, i, true)
			}
			break
		}
	}
	if in.Move == NoMove {
		return
	}
	sb, sel := e.selectedArea()
	if sb != b || sel == nil || sel.Selectable == nil {
		return
	}
	axis := sel.Selectable.Axis
	dir := 0
	switch {
	case axis == Vertical && in.Move == Up, axis == Horizontal && in.Move == Left:
		dir = -1
	case axis == Vertical && in.Move == Down, axis == Horizontal && in.Move == Right:
		dir = 1
	}
	if dir == 0 {
		return
	}
	var ring []int
	for i, a := range b.Areas {
		if a.Selectable != nil && a.Selectable.Axis == axis {
			ring = append(ring, i)
		}
	}
	sort.SliceStable(ring, func(i, j int) bool {
		return b.Areas[ring[i]].Selectable.Number < b.Areas[ring[j]].Selectable.Number
	})
	pos := 0
	for i, idx := range ring {
		if idx == e.selected.area {
			pos = i
		}
	}
	n := len(ring)
	e.selectTarget(b, ring[(pos+dir+n)%n], true)
}

// goGate activates the selected target's gate on a press.
func (e *Engine) goGate(in Input) {
	b, a := e.selectedArea()
	if b == nil || b.ID != e.current || b.Pending || a.Gate == nil {
		return
	}
	if in.Activate || (in.PointerDown && a.Gate.contains(in.Pointer)) {
		e.push(b, a)
	}
}

// push fires a's gate. A skip gate over unfinished text only completes the
// text and stays armed.
func (e *Engine) push(b *DialogBox, a *TextArea) {
	g := a.Gate
	e.notify(ButtonIsPushed{Box: b.Name, Area: a.Name})
	if g.Skip && !a.AllShown() {
		complete(a)
		b.iconVisible = false
		return
	}
	b.waiting = false
	e.clearTargets(b)
	e.dispatchFrom(g.Payload, b.ID)
}

// SkipAhead acts like an activation on the named area's skip gate. It
// reports false when no skip gate is armed there.
func (e *Engine) SkipAhead(box, area string) bool {
	b := e.byName(box)
	if b == nil {
		return false
	}
	a := b.Area(area)
	if a == nil || a.Gate == nil || !a.Gate.Skip {
		return false
	}
	e.push(b, a)
	return true
}
