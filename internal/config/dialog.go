/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed dialog.schema.json
var dialogSchema []byte

// DialogFile lists the boxes a headless run opens, in order.
type DialogFile struct {
	Version   int          `yaml:"version"`
	Templates []string     `yaml:"templates,omitempty"`
	Dialogs   []DialogSpec `yaml:"dialogs"`
}

type Point struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

type Extent struct {
	W float32 `yaml:"w"`
	H float32 `yaml:"h"`
}

// Anim is a popup or sink animation: kind "scale" (default) or "fix".
type Anim struct {
	Kind string  `yaml:"kind,omitempty"`
	Sec  float64 `yaml:"sec,omitempty"`
}

type Timing struct {
	Mode string  `yaml:"mode,omitempty"`
	Sec  float64 `yaml:"sec,omitempty"`
}

type Feeding struct {
	Mode string  `yaml:"mode,omitempty"`
	Size int     `yaml:"size,omitempty"`
	Sec  float64 `yaml:"sec,omitempty"`
}

type Breaker struct {
	Mode     string  `yaml:"mode,omitempty"`
	Sec      float64 `yaml:"sec,omitempty"`
	AllRange bool    `yaml:"all_range,omitempty"`
}

// AreaSpec describes a text area or a choice button. Style names a text
// style preset whose fonts and metrics apply where the area leaves them unset.
type AreaSpec struct {
	Name     string   `yaml:"name"`
	Position Point    `yaml:"position"`
	Size     Extent   `yaml:"size"`
	Style    string   `yaml:"style,omitempty"`
	Fonts    []string `yaml:"fonts,omitempty"`
	FontSize float32  `yaml:"font_size,omitempty"`
	Tracking float32  `yaml:"tracking,omitempty"`
	Leading  float32  `yaml:"leading,omitempty"`
	Align    string   `yaml:"align,omitempty"`
	Typing   Timing   `yaml:"typing,omitempty"`
	Writing  Timing   `yaml:"writing,omitempty"`
	Feeding  Feeding  `yaml:"feeding,omitempty"`
}

type ChoiceSpec struct {
	Name     string     `yaml:"name,omitempty"`
	Position Point      `yaml:"position"`
	Size     Extent     `yaml:"size"`
	Axis     string     `yaml:"axis,omitempty"`
	Popup    Anim       `yaml:"popup,omitempty"`
	Sink     Anim       `yaml:"sink,omitempty"`
	Scaling  string     `yaml:"scaling,omitempty"`
	Buttons  []AreaSpec `yaml:"buttons"`
}

type DialogSpec struct {
	Name      string      `yaml:"name"`
	Position  Point       `yaml:"position"`
	Size      Extent      `yaml:"size"`
	Popup     Anim        `yaml:"popup,omitempty"`
	Breaker   Breaker     `yaml:"breaker,omitempty"`
	Script    string      `yaml:"script,omitempty"`
	Source    string      `yaml:"source,omitempty"`
	Templates []string    `yaml:"templates,omitempty"`
	Icon      string      `yaml:"icon,omitempty"`
	Areas     []AreaSpec  `yaml:"areas"`
	Choice    *ChoiceSpec `yaml:"choice,omitempty"`
}

// SchemaError lists every violation found in a dialog file.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "dialog file invalid: " + strings.Join(e.Problems, "; ")
}

// LoadDialogFile reads and validates a dialog YAML file.
func LoadDialogFile(path string) (DialogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DialogFile{}, fmt.Errorf("read dialog file: %w", err)
	}
	df, err := ParseDialogFile(data)
	if err != nil {
		return DialogFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return df, nil
}

// ParseDialogFile validates data against the embedded schema, then decodes it.
func ParseDialogFile(data []byte) (DialogFile, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return DialogFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(dialogSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return DialogFile{}, fmt.Errorf("validate: %w", err)
	}
	if !res.Valid() {
		se := &SchemaError{}
		for _, e := range res.Errors() {
			se.Problems = append(se.Problems, e.String())
		}
		return DialogFile{}, se
	}
	var df DialogFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DialogFile{}, fmt.Errorf("decode dialog file: %w", err)
	}
	return df, nil
}
