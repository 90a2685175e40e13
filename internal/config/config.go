/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the per-user bzwparse configuration. The YAML file
// supplies persistent choices; BZW_* environment variables override it at
// runtime and are never written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"bzwparse/internal/bzw"
	applog "bzwparse/internal/log"

	"gopkg.in/yaml.v3"
)

// ParserConfig selects the syntax tokens and error policy. Empty strings
// mean the built-in defaults, except for CommentMarker where an explicit ""
// disables comments and nil means the default.
type ParserConfig struct {
	Policy        string  `yaml:"policy"` // "strict" | "permissive"
	Terminator    string  `yaml:"terminator"`
	CommentMarker *string `yaml:"comment_marker"`
}

// IndexConfig points the index command at a database.
type IndexConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "pgx"
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the whole user-editable configuration.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Parser        ParserConfig  `yaml:"parser"`
	Index         IndexConfig   `yaml:"index"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	d := bzw.DefaultOptions()
	return AppConfig{
		ConfigVersion: 1,
		Parser:        ParserConfig{Policy: d.Policy.String(), Terminator: d.Terminator, CommentMarker: &d.CommentMarker},
		Index:         IndexConfig{Driver: "sqlite", DSN: "bzwindex.db"},
		Logging:       LoggingConfig{Level: "warn", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvPolicy      = "BZW_POLICY"
	EnvTerminator  = "BZW_TERMINATOR"
	EnvComment     = "BZW_COMMENT"
	EnvIndexDriver = "BZW_INDEX_DRIVER"
	EnvIndexDSN    = "BZW_INDEX_DSN"
	EnvLogLevel    = "BZW_LOG_LEVEL"
	EnvLogFormat   = "BZW_LOG_FORMAT"
	EnvLogSource   = "BZW_LOG_SOURCE"
	EnvLogFile     = "BZW_LOG_FILE"
)

// envKeys maps dotted config keys to the variable overriding them.
var envKeys = map[string]string{
	"parser.policy":         EnvPolicy,
	"parser.terminator":     EnvTerminator,
	"parser.comment_marker": EnvComment,
	"index.driver":          EnvIndexDriver,
	"index.dsn":             EnvIndexDSN,
	"logging.level":         EnvLogLevel,
	"logging.format":        EnvLogFormat,
	"logging.source":        EnvLogSource,
	"logging.file":          EnvLogFile,
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "bzwparse")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "bzwparse")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "bzwparse")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "bzwparse")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path, or at ConfigPath when path is empty,
// applies defaults and merges environment overrides. A missing file is not
// an error; an explicit path that does not exist is.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to path, or to ConfigPath when path is empty.
func Save(cfg AppConfig, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
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
	if v := strings.TrimSpace(src.Parser.Policy); v != "" {
		dst.Parser.Policy = strings.ToLower(v)
	}
	// Tokens are taken verbatim; option validation rejects whitespace.
	if src.Parser.Terminator != "" {
		dst.Parser.Terminator = src.Parser.Terminator
	}
	if src.Parser.CommentMarker != nil {
		m := *src.Parser.CommentMarker
		dst.Parser.CommentMarker = &m
	}
	if v := strings.TrimSpace(src.Index.Driver); v != "" {
		dst.Index.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Index.DSN); v != "" {
		dst.Index.DSN = v
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPolicy)); v != "" {
		cfg.Parser.Policy = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTerminator); v != "" {
		cfg.Parser.Terminator = v
	}
	if v := os.Getenv(EnvComment); v != "" {
		cfg.Parser.CommentMarker = &v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIndexDriver)); v != "" {
		cfg.Index.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvIndexDSN)); v != "" {
		cfg.Index.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// ParserOptions translates the parser section into core options. Unset
// fields fall back to bzw.DefaultOptions.
func (c AppConfig) ParserOptions() (bzw.Options, error) {
	opts := bzw.DefaultOptions()
	if c.Parser.Terminator != "" {
		opts.Terminator = c.Parser.Terminator
	}
	if c.Parser.CommentMarker != nil {
		opts.CommentMarker = *c.Parser.CommentMarker
	}
	p, err := bzw.ParsePolicy(c.Parser.Policy)
	if err != nil {
		return opts, fmt.Errorf("parser.policy: %w", err)
	}
	opts.Policy = p
	return opts, nil
}

// LogOptions translates the logging section for log.Init.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
