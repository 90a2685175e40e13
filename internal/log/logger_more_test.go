/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("BZW_LOG_LEVEL", "debug")
	t.Setenv("BZW_LOG_FORMAT", "json")
	t.Setenv("BZW_LOG_SOURCE", "true")
	t.Setenv("BZW_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("BZW_LOG_LEVEL", "")
	t.Setenv("BZW_LOG_FORMAT", "")
	t.Setenv("BZW_LOG_SOURCE", "")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "console" || opts.AddSource {
		t.Fatalf("defaults mismatch: %+v", opts)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " INFO ": slog.LevelInfo, "warn": slog.LevelWarn,
		"error": slog.LevelError, "bogus": slog.LevelWarn, "": slog.LevelWarn,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandler_Behavior(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{w: &buf, level: slog.LevelWarn, source: true}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")})
	h2 = h2.WithGroup("grp")

	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "boom"}
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("name", "red base"))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, " k=v") {
		t.Fatalf("output missing expected content: %q", out)
	}
	if !strings.Contains(out, "grp.n=42") {
		t.Fatalf("grouped attr missing or malformed: %q", out)
	}
	if !strings.Contains(out, "ERR") {
		t.Fatalf("expected ERR level tag in output: %q", out)
	}
	if !strings.Contains(out, "grp.pi=3.14") {
		t.Fatalf("expected float: %q", out)
	}
	if !strings.Contains(out, `grp.name="red base"`) {
		t.Fatalf("expected quoted value: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("missing newline: %q", out)
	}
}

func TestFanoutFiltersByLevel(t *testing.T) {
	var lo, hi bytes.Buffer
	f := fanout{
		&consoleHandler{w: &lo, level: slog.LevelDebug},
		&consoleHandler{w: &hi, level: slog.LevelError},
	}
	l := slog.New(f)
	l.Info("info-only")
	l.Error("both")
	if !strings.Contains(lo.String(), "info-only") || !strings.Contains(lo.String(), "both") {
		t.Fatalf("low handler output: %q", lo.String())
	}
	if strings.Contains(hi.String(), "info-only") || !strings.Contains(hi.String(), "both") {
		t.Fatalf("high handler output: %q", hi.String())
	}
}

func TestConsoleHandler_SourceFromPC(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{w: &buf, level: slog.LevelDebug, source: true}
	var pcs [1]uintptr
	runtime.Callers(1, pcs[:])
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "here", pcs[0])
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "src=") || !strings.Contains(out, "logger_more_test.go:") {
		t.Fatalf("expected source location: %q", out)
	}
}
