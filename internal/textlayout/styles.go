/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// TextStyle is a reusable text preset for dialog text areas: a font set in
// fallback order, a base size and layout parameters. Tracking and Leading
// are measured in pixels.

type TextStyle struct {
	Name     string
	Fonts    []string
	SizePt   float32
	Tracking float32 // px added after every glyph
	Leading  float32 // extra px added to line height
}

var builtinStyles = map[string]TextStyle{
	"Narration": {
		Name:    "Narration",
		Fonts:   []string{"Go", "Noto Sans CJK JP"},
		SizePt:  18,
		Leading: 4,
	},
	"Dialogue": {
		Name:     "Dialogue",
		Fonts:    []string{"Go", "Noto Sans CJK JP"},
		SizePt:   20,
		Tracking: 0.5,
		Leading:  6,
	},
	"Choice": {
		Name:    "Choice",
		Fonts:   []string{"Go Medium", "Go", "Noto Sans CJK JP"},
		SizePt:  18,
		Leading: 0,
	},
}

// GetStyle returns a builtin style preset by name. The second return value is false if
// the style is not found.
func GetStyle(name string) (TextStyle, bool) {
	s, ok := builtinStyles[name]
	if ok {
		s.Fonts = append([]string(nil), s.Fonts...)
	}
	return s, ok
}

// ListStyles lists the names of the builtin styles in stable order.
func ListStyles() []string {
	return []string{"Narration", "Dialogue", "Choice"}
}
