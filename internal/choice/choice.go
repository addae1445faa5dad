/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package choice turns a list of (label, directive) pairs into the compiled
// stream a choice box types out, one label per button area.
package choice

import (
	"fmt"
	"strings"

	"novelbox/internal/directive"
	"novelbox/internal/script"
)

// Build composes markup that switches to each button area before typing its
// label, and compiles it with the script parser. Labels are real markup, so
// they may carry their own directives.
func Build(box string, choices []directive.ChoicePair, buttonAreas []string) (script.Orders, error) {
	if len(choices) > len(buttonAreas) {
		return nil, fmt.Errorf("choice box %q: %d choices but only %d buttons", box, len(choices), len(buttonAreas))
	}
	var b strings.Builder
	for i, c := range choices {
		b.WriteString("<script>")
		b.WriteString(directive.Encode(directive.ChangeCurrentTextArea{Box: box, Area: buttonAreas[i]}))
		b.WriteString("</script>")
		b.WriteString(c.Label)
	}
	s := script.Parse(b.String())
	orders, _ := s.Section("")
	return orders, nil
}

// Payloads returns the ChoiceMade text bound to each button, in order.
func Payloads(choiceBox string, choices []directive.ChoicePair) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = directive.Encode(directive.ChoiceMade{ChoiceBox: choiceBox, Payload: c.Payload})
	}
	return out
}
