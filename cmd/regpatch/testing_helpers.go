package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/regpatch/internal/config"
	"github.com/joshuapare/regpatch/internal/layout"
)

// testArchive writes a zeroed archive large enough for the default layout
// and returns its path.
func testArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regulation.bin")
	data := make([]byte, layout.Default().MinArchiveSize())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

// resetFlags restores every flag global and the config to defaults.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose = false
	quiet = false
	jsonOut = false
	cfgPath = ""
	logLevel = ""
	cfg = config.Default()

	patchDryRun = false
	patchNoVerify = false
	patchAll = false
	patchLayout = ""
	patchBackupSuffix = ""
	verifyAll = false
	verifyLayout = ""
	showLayout = ""
	layoutYAML = false
	layoutProfile = ""
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
