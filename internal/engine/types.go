/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"strings"

	"novelbox/internal/directive"
	"novelbox/internal/script"
	"novelbox/internal/vector"
)

// Phase is a dialog box's state.
type Phase int

const (
	Preparing Phase = iota
	PoppingUp
	Typing
	WaitingAction
	Feeding
	SinkingDown
	Fixed // close animation done; torn down on the next setting pass
)

var phaseNames = [...]string{"Preparing", "PoppingUp", "Typing", "WaitingAction", "Feeding", "SinkingDown", "Fixed"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Phase(?)"
}

// TypingMode picks how reveal delays are scheduled.
type TypingMode int

const (
	ByChar TypingMode = iota // Sec between consecutive chars
	ByLine                   // Sec before the first char of each new line
	ByPage                   // whole page at once
)

type TypingTiming struct {
	Mode TypingMode
	Sec  float64
}

type WritingMode int

const (
	Put  WritingMode = iota // char appears fully when revealed
	Wipe                    // char wipes in over Sec after reveal
)

type WritingStyle struct {
	Mode WritingMode
	Sec  float64
}

type FeedingMode int

const (
	Rid    FeedingMode = iota // drop all lines at once
	Scroll                    // slide Size lines out over Duration
)

// FeedingStyle controls how a page is cleared. Scroll with Size 0 clears
// every line; Size k with fewer than k lines present clears none.
type FeedingStyle struct {
	Mode     FeedingMode
	Size     int
	Duration float64
}

type BreakerMode int

const (
	Auto      BreakerMode = iota // leave the wait after Sec plus pending reveal
	InputWait                    // wait for an activation
)

// WaitBreaker decides how a box leaves WaitingAction. AllRange makes any
// pointer press count, not only presses inside the text area.
type WaitBreaker struct {
	Mode     BreakerMode
	Sec      float64
	AllRange bool
}

// Axis is a selection axis.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextAreaConfig describes one area. Position is relative to the box.
type TextAreaConfig struct {
	Name     string
	Position vector.Pt
	Size     vector.Size
	Fonts    []string
	FontSize float32
	Tracking float32
	Leading  float32
	Align    Align
	Typing   TypingTiming
	Writing  WritingStyle
	Feeding  FeedingStyle
}

type ScalingMode int

const (
	ScaleFixed   ScalingMode = iota // box keeps its configured size
	ScaleByCount                    // extent along the axis shrinks to shown/max buttons
)

// ChoiceBoxConfig is the template for the box SetupChoice opens.
type ChoiceBoxConfig struct {
	Name     string // defaults to "<parent>_choice"
	Position vector.Pt
	Size     vector.Size
	Axis     Axis
	Buttons  []TextAreaConfig
	Popup    directive.SinkType
	Sink     directive.SinkType
	Scaling  ScalingMode
}

// OpenDialog requests a new box. Script is a "path#section" reference
// resolved by the engine's loader; Source is inline markup used when Script
// is empty.
type OpenDialog struct {
	Name      string
	Position  vector.Pt
	Size      vector.Size
	Popup     directive.SinkType
	Breaker   WaitBreaker
	Script    string
	Source    string
	Templates []string
	Areas     []TextAreaConfig
	Choice    *ChoiceBoxConfig
	Icon      string // external waiting-icon handle parked under the box
}

// BoxID indexes the engine's box arena.
type BoxID int

const noBox BoxID = -1

// Timer fires a directive when Remaining reaches zero.
type Timer struct {
	Remaining float64
	Fire      string
}

// Char is one placed character. Timer counts down its reveal delay.
type Char struct {
	Rune    rune
	X       float32
	Advance float32
	Size    float32
	Timer   float64
	Shown   bool
	Wipe    float32 // 0..1
}

// Line is one visual line. Y is its layout position; OffsetY is where it is
// drawn, which differs from Y while a scroll feed runs.
type Line struct {
	Chars   []*Char
	Width   float32
	Height  float32
	Y       float32
	OffsetY float32
	Alpha   float32
	serial  int
}

// String returns the line's characters.
func (l *Line) String() string {
	var b strings.Builder
	for _, c := range l.Chars {
		b.WriteRune(c.Rune)
	}
	return b.String()
}

// OffsetX is the horizontal start of the line inside an area of width w.
func (l *Line) OffsetX(align Align, w float32) float32 {
	switch align {
	case AlignCenter:
		return (w - l.Width) / 2
	case AlignRight:
		return w - l.Width
	default:
		return 0
	}
}

// Selectable marks an area as a choosable target ranked by Number on Axis.
type Selectable struct {
	Axis   Axis
	Number int
}

// Gate is an armed activation target. Skip gates complete typing on the
// first press and dispatch their payload on the next.
type Gate struct {
	Payload  string
	Rect     vector.Rect
	AllRange bool
	Skip     bool
}

func (g *Gate) contains(p vector.Pt) bool {
	return g.AllRange || g.Rect.Contains(p)
}

// TextArea is a typed-text viewport inside a box.
type TextArea struct {
	Name       string
	Config     TextAreaConfig
	FontSize   float32
	Lines      []*Line
	Visible    bool
	Selectable *Selectable
	Gate       *Gate

	box       BoxID
	lag       float64 // seconds until the last scheduled char is revealed
	lineCount int     // lines ever created in this area
	feed      *feedAnim
}

type feedAnim struct {
	lines    int
	shift    float32
	elapsed  float64
	duration float64
}

// Text returns every placed character, lines joined by "\n".
func (a *TextArea) Text() string {
	parts := make([]string, len(a.Lines))
	for i, l := range a.Lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// AllShown reports whether every placed char has been revealed and wiped in.
func (a *TextArea) AllShown() bool {
	for _, l := range a.Lines {
		for _, c := range l.Chars {
			if !c.Shown || c.Wipe < 1 {
				return false
			}
		}
	}
	return true
}

type anim struct {
	elapsed  float64
	duration float64
}

func (a anim) done() bool { return a.elapsed >= a.duration }

func (a anim) progress() float32 {
	if a.duration <= 0 {
		return 1
	}
	return vector.Lerp(0, 1, float32(a.elapsed/a.duration))
}

// DialogBox is a named window with its own script cursor and areas.
type DialogBox struct {
	ID       BoxID
	Name     string
	Position vector.Pt
	Size     vector.Size
	Phase    Phase
	Pending  bool
	Breaker  WaitBreaker
	Areas    []*TextArea
	Ref      string

	popup     directive.SinkType
	sink      directive.SinkType
	anim      anim
	orders    script.Orders
	templates []string
	current   int
	timers    []*Timer
	pause     float64
	waiting   bool // a gate or timer is holding the box in WaitingAction

	choiceCfg *ChoiceBoxConfig
	parent    BoxID
	choice    *choiceState

	icon        string
	iconVisible bool
	parked      []string
	recorded    bool
}

type choiceState struct {
	payloads []string
	shown    int
	armed    bool
}

// Rect is the box's on-screen rectangle including the popup/sink scale.
func (b *DialogBox) Rect() vector.Rect {
	return vector.At(b.Position, b.Size).ScaleAbout(b.Scale())
}

// Scale is the popup/sink animation factor in [0,1].
func (b *DialogBox) Scale() float32 {
	switch b.Phase {
	case Preparing, Fixed:
		return 0
	case PoppingUp:
		return b.anim.progress()
	case SinkingDown:
		return 1 - b.anim.progress()
	default:
		return 1
	}
}

// Area finds an area by name.
func (b *DialogBox) Area(name string) *TextArea {
	for _, a := range b.Areas {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// CurrentArea is the area receiving typed characters, or nil.
func (b *DialogBox) CurrentArea() *TextArea {
	if b.current < 0 || b.current >= len(b.Areas) {
		return nil
	}
	return b.Areas[b.current]
}

// Remaining is the number of orders left in the box's stream.
func (b *DialogBox) Remaining() int { return b.orders.Len() }

// IconVisible reports whether the waiting icon should be drawn.
func (b *DialogBox) IconVisible() bool { return b.iconVisible }

// IsChoice reports whether the box was opened by SetupChoice.
func (b *DialogBox) IsChoice() bool { return b.choice != nil }

// AreaRect is a's rectangle in screen coordinates, ignoring popup scale.
func (b *DialogBox) AreaRect(a *TextArea) vector.Rect {
	return vector.At(b.Position.Add(a.Config.Position), a.Config.Size)
}

// Waiting reports whether a timer or gate is holding the box.
func (b *DialogBox) Waiting() bool { return b.waiting }
