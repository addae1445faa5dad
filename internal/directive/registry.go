/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package directive

type decodeFunc func(f *fields) Directive

// registry is fixed at init and read-only afterwards.
var registry = map[string]decodeFunc{}

func register(kind string, fn decodeFunc) { registry[Namespace+kind] = fn }

func init() {
	register("ChangeFontSize", func(f *fields) Directive {
		return ChangeFontSize{Size: f.Float32("size", 0)}
	})
	register("SinkDownWindow", func(f *fields) Directive {
		return SinkDownWindow{
			Sink:      readSink(f, "sink_type", Fix()),
			Target:    f.Option("target"),
			Immediate: f.Bool("immediate", false),
		}
	})
	register("SimpleWait", func(f *fields) Directive {
		return SimpleWait{Sec: f.Float64("sec", 0), Target: f.Option("target")}
	})
	register("BreakWait", func(f *fields) Directive {
		return BreakWait{Sec: f.Float64("sec", 0), Target: f.Option("target")}
	})
	register("InputForFeeding", func(f *fields) Directive {
		return InputForFeeding{Box: f.String("box", ""), Area: f.String("area", "")}
	})
	register("InputForSkipping", func(f *fields) Directive {
		return InputForSkipping{Box: f.String("box", ""), Area: f.String("area", ""), Next: f.String("next", "")}
	})
	register("ChangeCurrentTextArea", func(f *fields) Directive {
		return ChangeCurrentTextArea{Box: f.String("box", ""), Area: f.String("area", "")}
	})
	register("ChangeCurrentDialogBox", func(f *fields) Directive {
		return ChangeCurrentDialogBox{Box: f.String("box", "")}
	})
	register("SetupChoice", func(f *fields) Directive {
		return SetupChoice{Choices: readPairs(f, "choices")}
	})
	register("ChoiceMade", func(f *fields) Directive {
		return ChoiceMade{ChoiceBox: f.String("choice_box", ""), Payload: f.String("payload", "")}
	})
	register("LoadScript", func(f *fields) Directive {
		return LoadScript{Path: f.String("path", ""), Box: f.String("box", "")}
	})
	register("ForceFeeding", func(f *fields) Directive {
		return ForceFeeding{Target: f.Option("target")}
	})
}

func readPairs(f *fields, name string) []ChoicePair {
	v := f.get(name)
	if v == nil {
		return nil
	}
	if v.kind != listNode {
		f.bad = true
		return nil
	}
	if len(v.items) == 0 {
		return nil
	}
	out := make([]ChoicePair, 0, len(v.items))
	for _, it := range v.items {
		if it.kind != tupleNode || len(it.items) != 2 || it.items[0].kind != strNode || it.items[1].kind != strNode {
			f.bad = true
			return nil
		}
		out = append(out, ChoicePair{Label: it.items[0].text, Payload: it.items[1].text})
	}
	return out
}
