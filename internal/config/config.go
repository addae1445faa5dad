/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type EngineConfig struct {
	FrameRate   int  `yaml:"frame_rate"`   // ticks per second for headless runs
	AutoAdvance bool `yaml:"auto_advance"` // activate input gates automatically
	MaxFrames   int  `yaml:"max_frames"`   // safety stop for headless runs
}

type ScriptsConfig struct {
	Root      string   `yaml:"root"`      // base dir for script references; empty means the dialog file's dir
	Templates []string `yaml:"templates"` // tables applied to boxes that name none
	Fonts     []string `yaml:"fonts"`     // extra TTF/OTF files, family = file base name
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "pgx"
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Engine        EngineConfig  `yaml:"engine"`
	Scripts       ScriptsConfig `yaml:"scripts"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Engine:        EngineConfig{FrameRate: 60, AutoAdvance: true, MaxFrames: 100000},
		Storage:       StorageConfig{Driver: "sqlite", DSN: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvFrameRate     = "NBX_FRAME_RATE"
	EnvAutoAdvance   = "NBX_AUTO_ADVANCE"
	EnvMaxFrames     = "NBX_MAX_FRAMES"
	EnvScriptsRoot   = "NBX_SCRIPTS_ROOT"
	EnvStorageDriver = "NBX_STORAGE_DRIVER"
	EnvStorageDSN    = "NBX_STORAGE_DSN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "NBX_LOG_LEVEL"
	EnvLogFormat = "NBX_LOG_FORMAT"
	EnvLogSource = "NBX_LOG_SOURCE"
	EnvLogFile   = "NBX_LOG_FILE"
)

// Dir returns the per-user config directory.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "novelbox")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "novelbox")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "novelbox")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "novelbox")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// An unreadable file is not an error; a malformed one is.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, err
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		if dir, err := Dir(); err == nil {
			cfg.Storage.DSN = filepath.Join(dir, "backlog.sqlite")
		}
	}
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Engine.FrameRate > 0 {
		dst.Engine.FrameRate = src.Engine.FrameRate
	}
	if src.Engine.MaxFrames > 0 {
		dst.Engine.MaxFrames = src.Engine.MaxFrames
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Engine.AutoAdvance = src.Engine.AutoAdvance
	if strings.TrimSpace(src.Scripts.Root) != "" {
		dst.Scripts.Root = strings.TrimSpace(src.Scripts.Root)
	}
	if len(src.Scripts.Templates) > 0 {
		dst.Scripts.Templates = append([]string(nil), src.Scripts.Templates...)
	}
	if len(src.Scripts.Fonts) > 0 {
		dst.Scripts.Fonts = append([]string(nil), src.Scripts.Fonts...)
	}
	if strings.TrimSpace(src.Storage.Driver) != "" {
		dst.Storage.Driver = strings.ToLower(strings.TrimSpace(src.Storage.Driver))
	}
	if strings.TrimSpace(src.Storage.DSN) != "" {
		dst.Storage.DSN = strings.TrimSpace(src.Storage.DSN)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvFrameRate)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Engine.FrameRate = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxFrames)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Engine.MaxFrames = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoAdvance)); v != "" {
		cfg.Engine.AutoAdvance = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvScriptsRoot)); v != "" {
		cfg.Scripts.Root = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageDSN)); v != "" {
		cfg.Storage.DSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"engine.frame_rate":   EnvFrameRate,
	"engine.auto_advance": EnvAutoAdvance,
	"engine.max_frames":   EnvMaxFrames,
	"scripts.root":        EnvScriptsRoot,
	"storage.driver":      EnvStorageDriver,
	"storage.dsn":         EnvStorageDSN,
	"logging.level":       EnvLogLevel,
	"logging.format":      EnvLogFormat,
	"logging.source":      EnvLogSource,
	"logging.file":        EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
