/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// redirect points reports at a temp dir and captures stderr and exit.
func redirect(t *testing.T) (dir string, out *bytes.Buffer, code *int) {
	t.Helper()
	dir = t.TempDir()
	out = &bytes.Buffer{}
	code = new(int)
	oldDir, oldErr, oldExit := reportDir, stderr, exitFn
	reportDir = func() string { return dir }
	stderr = out
	exitFn = func(c int) { *code = c }
	t.Cleanup(func() { reportDir, stderr, exitFn = oldDir, oldErr, oldExit })
	return dir, out, code
}

func TestWriteReportContents(t *testing.T) {
	redirect(t)
	path, err := writeReport("maps/ctf.bzw", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"bzwparse Crash Report", "Input: maps/ctf.bzw", "Panic: boom", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}

func TestWriteReportWithoutInput(t *testing.T) {
	redirect(t)
	path, err := writeReport("", 42, nil)
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "Input:") {
		t.Fatalf("unexpected input line:\n%s", b)
	}
}

// TestRecover_Panic ensures Recover handles a panic, writes a report and
// requests exit code 2 without terminating the test process.
func TestRecover_Panic(t *testing.T) {
	dir, out, code := redirect(t)

	func() {
		defer Recover("world.bzw")
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 1 || !strings.HasPrefix(files[0].Name(), "bzwparse-crash-") {
		t.Fatalf("expected one crash report in %s, got %v", dir, files)
	}
	if !strings.Contains(out.String(), "internal error: boom") {
		t.Fatalf("stderr message missing: %q", out.String())
	}
}

func TestRecover_NoPanic(t *testing.T) {
	dir, _, code := redirect(t)
	func() {
		defer Recover("")
	}()
	if *code != 0 {
		t.Fatalf("exit called without panic: %d", *code)
	}
	if files, _ := os.ReadDir(dir); len(files) != 0 {
		t.Fatalf("unexpected report files: %v", files)
	}
}
