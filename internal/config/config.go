/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
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
// Minimal schema to start; can evolve with config_version migrations.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields should be preserved when possible (yaml handles this by ignoring extras on unmarshal).

// EditorConfig holds the interactive-canvas defaults handed to new sessions.
type EditorConfig struct {
	GridSize      float64 `yaml:"grid_size"`      // grid cell size in canvas px before display scale
	SnapThreshold float64 `yaml:"snap_threshold"` // smart-guide snap distance in px
	SnapToGrid    bool    `yaml:"snap_to_grid"`
	SmartGuides   bool    `yaml:"smart_guides"`
	HistoryCap    int     `yaml:"history_cap"`
}

type FontsConfig struct {
	Dir string `yaml:"dir"` // directory scanned for .ttf/.otf files
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Fonts         FontsConfig   `yaml:"fonts"`
	Logging       LoggingConfig `yaml:"logging"`
}

// MaxHistoryCap bounds the configurable snapshot count; full snapshots
// get expensive past this and the memory use is unbounded otherwise.
const MaxHistoryCap = 200

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			GridSize:      10,
			SnapThreshold: 5,
			SnapToGrid:    false,
			SmartGuides:   true,
			HistoryCap:    50,
		},
		Fonts:   FontsConfig{Dir: ""},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvGridSize      = "GLM_GRID_SIZE"
	EnvSnapThreshold = "GLM_SNAP_THRESHOLD"
	EnvSnapToGrid    = "GLM_SNAP_TO_GRID"
	EnvSmartGuides   = "GLM_SMART_GUIDES"
	EnvHistoryCap    = "GLM_HISTORY_CAP"
	EnvFontsDir      = "GLM_FONTS_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GLM_LOG_LEVEL"
	EnvLogFormat = "GLM_LOG_FORMAT"
	EnvLogSource = "GLM_LOG_SOURCE"
	EnvLogFile   = "GLM_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoLabelMaker")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoLabelMaker")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "golabelmaker")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	clamp(&cfg)
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
	if src.Editor.GridSize != 0 {
		dst.Editor.GridSize = src.Editor.GridSize
	}
	if src.Editor.SnapThreshold != 0 {
		dst.Editor.SnapThreshold = src.Editor.SnapThreshold
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Editor.SnapToGrid = src.Editor.SnapToGrid
	dst.Editor.SmartGuides = src.Editor.SmartGuides
	if src.Editor.HistoryCap != 0 {
		dst.Editor.HistoryCap = src.Editor.HistoryCap
	}
	if strings.TrimSpace(src.Fonts.Dir) != "" {
		dst.Fonts.Dir = strings.TrimSpace(src.Fonts.Dir)
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

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.GridSize = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.SnapThreshold = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapToGrid)); v != "" {
		cfg.Editor.SnapToGrid = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSmartGuides)); v != "" {
		cfg.Editor.SmartGuides = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryCap)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryCap = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontsDir)); v != "" {
		cfg.Fonts.Dir = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// clamp keeps config-supplied values inside safe bounds.
func clamp(cfg *AppConfig) {
	if cfg.Editor.HistoryCap < 1 {
		cfg.Editor.HistoryCap = Defaults().Editor.HistoryCap
	}
	if cfg.Editor.HistoryCap > MaxHistoryCap {
		cfg.Editor.HistoryCap = MaxHistoryCap
	}
	if cfg.Editor.GridSize <= 0 {
		cfg.Editor.GridSize = Defaults().Editor.GridSize
	}
	if cfg.Editor.SnapThreshold <= 0 {
		cfg.Editor.SnapThreshold = Defaults().Editor.SnapThreshold
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "editor.grid_size":
		name = EnvGridSize
	case "editor.snap_threshold":
		name = EnvSnapThreshold
	case "editor.snap_to_grid":
		name = EnvSnapToGrid
	case "editor.smart_guides":
		name = EnvSmartGuides
	case "editor.history_cap":
		name = EnvHistoryCap
	case "fonts.dir":
		name = EnvFontsDir
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}
