/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stage

import (
	"fmt"
	"strings"

	"novelbox/internal/config"
	"novelbox/internal/directive"
	"novelbox/internal/engine"
	"novelbox/internal/textlayout"
	"novelbox/internal/vector"
)

// Dialogs converts a validated dialog file into open requests. Boxes without
// template tables inherit the file's, then fallback.
func Dialogs(df config.DialogFile, fallback []string) ([]engine.OpenDialog, error) {
	templates := df.Templates
	if len(templates) == 0 {
		templates = fallback
	}
	out := make([]engine.OpenDialog, 0, len(df.Dialogs))
	for _, d := range df.Dialogs {
		o, err := dialog(d, templates)
		if err != nil {
			return nil, fmt.Errorf("dialog %q: %w", d.Name, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func dialog(d config.DialogSpec, templates []string) (engine.OpenDialog, error) {
	o := engine.OpenDialog{
		Name:      d.Name,
		Position:  point(d.Position),
		Size:      extent(d.Size),
		Popup:     anim(d.Popup),
		Script:    d.Script,
		Source:    d.Source,
		Templates: d.Templates,
		Icon:      d.Icon,
	}
	if len(o.Templates) == 0 {
		o.Templates = templates
	}
	switch strings.ToLower(d.Breaker.Mode) {
	case "", "auto":
		o.Breaker.Mode = engine.Auto
	case "input":
		o.Breaker.Mode = engine.InputWait
	default:
		return o, fmt.Errorf("unknown breaker mode %q", d.Breaker.Mode)
	}
	o.Breaker.Sec = d.Breaker.Sec
	o.Breaker.AllRange = d.Breaker.AllRange
	for _, a := range d.Areas {
		cfg, err := area(a)
		if err != nil {
			return o, err
		}
		o.Areas = append(o.Areas, cfg)
	}
	if c := d.Choice; c != nil {
		cb := &engine.ChoiceBoxConfig{
			Name:     c.Name,
			Position: point(c.Position),
			Size:     extent(c.Size),
			Popup:    anim(c.Popup),
			Sink:     anim(c.Sink),
		}
		switch strings.ToLower(c.Axis) {
		case "", "vertical":
			cb.Axis = engine.Vertical
		case "horizontal":
			cb.Axis = engine.Horizontal
		default:
			return o, fmt.Errorf("unknown axis %q", c.Axis)
		}
		switch strings.ToLower(c.Scaling) {
		case "", "fixed":
			cb.Scaling = engine.ScaleFixed
		case "count":
			cb.Scaling = engine.ScaleByCount
		default:
			return o, fmt.Errorf("unknown scaling %q", c.Scaling)
		}
		for _, b := range c.Buttons {
			cfg, err := area(b)
			if err != nil {
				return o, fmt.Errorf("button: %w", err)
			}
			cb.Buttons = append(cb.Buttons, cfg)
		}
		o.Choice = cb
	}
	return o, nil
}

func area(a config.AreaSpec) (engine.TextAreaConfig, error) {
	cfg := engine.TextAreaConfig{
		Name:     a.Name,
		Position: point(a.Position),
		Size:     extent(a.Size),
		Fonts:    a.Fonts,
		FontSize: a.FontSize,
		Tracking: a.Tracking,
		Leading:  a.Leading,
	}
	if a.Style != "" {
		st, ok := style(a.Style)
		if !ok {
			return cfg, fmt.Errorf("area %q: unknown style %q", a.Name, a.Style)
		}
		if len(cfg.Fonts) == 0 {
			cfg.Fonts = st.Fonts
		}
		if cfg.FontSize == 0 {
			cfg.FontSize = st.SizePt
		}
		if cfg.Tracking == 0 {
			cfg.Tracking = st.Tracking
		}
		if cfg.Leading == 0 {
			cfg.Leading = st.Leading
		}
	}
	switch strings.ToLower(a.Align) {
	case "", "left":
		cfg.Align = engine.AlignLeft
	case "center":
		cfg.Align = engine.AlignCenter
	case "right":
		cfg.Align = engine.AlignRight
	default:
		return cfg, fmt.Errorf("area %q: unknown align %q", a.Name, a.Align)
	}
	switch strings.ToLower(a.Typing.Mode) {
	case "", "char":
		cfg.Typing.Mode = engine.ByChar
	case "line":
		cfg.Typing.Mode = engine.ByLine
	case "page":
		cfg.Typing.Mode = engine.ByPage
	default:
		return cfg, fmt.Errorf("area %q: unknown typing mode %q", a.Name, a.Typing.Mode)
	}
	cfg.Typing.Sec = a.Typing.Sec
	switch strings.ToLower(a.Writing.Mode) {
	case "", "put":
		cfg.Writing.Mode = engine.Put
	case "wipe":
		cfg.Writing.Mode = engine.Wipe
	default:
		return cfg, fmt.Errorf("area %q: unknown writing mode %q", a.Name, a.Writing.Mode)
	}
	cfg.Writing.Sec = a.Writing.Sec
	switch strings.ToLower(a.Feeding.Mode) {
	case "", "rid":
		cfg.Feeding.Mode = engine.Rid
	case "scroll":
		cfg.Feeding.Mode = engine.Scroll
	default:
		return cfg, fmt.Errorf("area %q: unknown feeding mode %q", a.Name, a.Feeding.Mode)
	}
	cfg.Feeding.Size = a.Feeding.Size
	cfg.Feeding.Duration = a.Feeding.Sec
	return cfg, nil
}

// style matches preset names case-insensitively.
func style(name string) (textlayout.TextStyle, bool) {
	for _, n := range textlayout.ListStyles() {
		if strings.EqualFold(n, name) {
			return textlayout.GetStyle(n)
		}
	}
	return textlayout.TextStyle{}, false
}

func point(p config.Point) vector.Pt    { return vector.Pt{X: p.X, Y: p.Y} }
func extent(s config.Extent) vector.Size { return vector.Size{W: s.W, H: s.H} }

func anim(a config.Anim) directive.SinkType {
	if strings.EqualFold(a.Kind, "fix") {
		return directive.Fix()
	}
	return directive.Scale(a.Sec)
}
