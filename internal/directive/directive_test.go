/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package directive

import (
	"reflect"
	"strings"
	"testing"
)

func allKinds() []Directive {
	inner := Encode(LoadScript{Path: "story.md#left", Box: "main"})
	return []Directive{
		ChangeFontSize{Size: 24.5},
		ChangeFontSize{Size: 0.1},
		SinkDownWindow{Sink: Scale(0.5), Target: Str("main"), Immediate: true},
		SinkDownWindow{Sink: Fix()},
		SimpleWait{Sec: 1.25},
		SimpleWait{Sec: 2, Target: Str("side")},
		BreakWait{Sec: 0.3, Target: Str("main")},
		InputForFeeding{Box: "main", Area: "text"},
		InputForSkipping{Box: "main", Area: "text", Next: Encode(ForceFeeding{Target: Str("main")})},
		ChangeCurrentTextArea{Box: "main_choice", Area: "button1"},
		ChangeCurrentDialogBox{Box: "side"},
		SetupChoice{Choices: []ChoicePair{{Label: "Go left", Payload: inner}, {Label: `Say "no"`, Payload: ""}}},
		SetupChoice{},
		ChoiceMade{ChoiceBox: "main_choice", Payload: inner},
		LoadScript{Path: "story.md#intro"},
		ForceFeeding{},
		ForceFeeding{Target: Str("main")},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, d := range allKinds() {
		text := Encode(d)
		got, ok := Decode(text)
		if !ok {
			t.Fatalf("decode failed for %s", text)
		}
		if !reflect.DeepEqual(got, d) {
			t.Fatalf("round trip mismatch:\n text %s\n got  %#v\n want %#v", text, got, d)
		}
		// Encoding is stable.
		if again := Encode(got); again != text {
			t.Fatalf("re-encode differs: %s vs %s", again, text)
		}
	}
}

func TestEncodeShape(t *testing.T) {
	got := Encode(SinkDownWindow{Sink: Scale(0.5), Target: Str("main")})
	want := `{"novelbox.SinkDownWindow": (sink_type: Scale(sec: 0.5), target: Some("main"), immediate: false)}`
	if got != want {
		t.Fatalf("encode = %s\nwant     %s", got, want)
	}
	if got := Encode(ChangeFontSize{Size: 24}); got != `{"novelbox.ChangeFontSize": (size: 24.0)}` {
		t.Fatalf("float formatting: %s", got)
	}
	if got := Encode(ForceFeeding{}); got != `{"novelbox.ForceFeeding": (target: None)}` {
		t.Fatalf("option formatting: %s", got)
	}
}

func TestDecodeSoftMisses(t *testing.T) {
	cases := []string{
		``,
		`hello`,
		`{"other.Thing": (a: 1.0)}`,
		`{"novelbox.Unknown": ()}`,
		`{"novelbox.ChangeFontSize": (size: "big")}`,
		`{"novelbox.ChangeFontSize": (size: 1.0)`,
		`{"novelbox.SinkDownWindow": (sink_type: Wobble)}`,
		`{"novelbox.SetupChoice": (choices: [("only one")])}`,
		`{"novelbox.ForceFeeding": (target: Some(1.0))}`,
		`{"novelbox.LoadScript": (path: "a.md")} trailing`,
	}
	for _, c := range cases {
		if d, ok := Decode(c); ok {
			t.Fatalf("expected soft miss for %q, got %#v", c, d)
		}
	}
}

func TestDecodeDefaultsAndWhitespace(t *testing.T) {
	d, ok := Decode("  {\"novelbox.SinkDownWindow\" : (\n  target: \"main\",\n)}\n")
	if !ok {
		t.Fatalf("expected decode")
	}
	sd := d.(SinkDownWindow)
	if sd.Sink != Fix() || sd.Target == nil || *sd.Target != "main" || sd.Immediate {
		t.Fatalf("unexpected defaults: %#v", sd)
	}
	d, ok = Decode(`{"novelbox.ForceFeeding": ()}`)
	if !ok || d.(ForceFeeding).Target != nil {
		t.Fatalf("empty field list should decode with defaults: %#v", d)
	}
}

func TestKnownIdentifiers(t *testing.T) {
	for _, d := range allKinds() {
		if !Known(Namespace + d.Kind()) {
			t.Fatalf("%s not registered", d.Kind())
		}
	}
	if Known("novelbox.Nope") || Known("ChangeFontSize") {
		t.Fatalf("unexpected registry hit")
	}
}

func TestSinkDuration(t *testing.T) {
	if Fix().Duration() != 0 || Scale(0.4).Duration() != 0.4 {
		t.Fatalf("duration mismatch")
	}
	if !strings.Contains(Encode(SinkDownWindow{Sink: Fix()}), "sink_type: Fix") {
		t.Fatalf("fix encoding missing")
	}
}
