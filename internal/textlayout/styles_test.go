/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

func TestBuiltinStyles(t *testing.T) {
	names := ListStyles()
	if len(names) != 3 {
		t.Fatalf("expected 3 builtin styles, got %v", names)
	}
	for _, n := range names {
		s, ok := GetStyle(n)
		if !ok {
			t.Fatalf("%s style missing", n)
		}
		if len(s.Fonts) == 0 || s.SizePt <= 0 {
			t.Fatalf("%s style incomplete: %+v", n, s)
		}
	}
	if _, ok := GetStyle("SFX"); ok {
		t.Fatalf("unexpected style found")
	}
}

func TestGetStyleReturnsCopy(t *testing.T) {
	s, _ := GetStyle("Dialogue")
	s.Fonts[0] = "changed"
	again, _ := GetStyle("Dialogue")
	if again.Fonts[0] == "changed" {
		t.Fatalf("style fonts share backing array with preset")
	}
}
