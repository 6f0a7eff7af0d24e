/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRecoverWritesReportAndExits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("cache dir override uses XDG_CACHE_HOME")
	}
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	exitCode := -1
	oldExit := exitFn
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover()
		panic("boom")
	}()

	if exitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode)
	}

	crashDir := filepath.Join(cache, "writedown", "crash")
	entries, err := os.ReadDir(crashDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one crash report in %s: %v / %v", crashDir, entries, err)
	}
	body, err := os.ReadFile(filepath.Join(crashDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(body), "panic: boom") {
		t.Fatalf("report missing panic value:\n%s", body)
	}
	if !strings.Contains(string(body), "writedown v") {
		t.Fatalf("report missing version line:\n%s", body)
	}
}

func TestRecoverNoopWithoutPanic(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover()
	}()

	if called {
		t.Fatalf("Recover exited without a panic")
	}
}
