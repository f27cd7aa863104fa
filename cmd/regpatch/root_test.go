package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regpatch/internal/format"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        func(archive, dir string) []string
		wantErr     string
		wantErrIs   error
		wantPatched bool
		wantContain []string
		wantLog     []string
	}{
		{
			name:        "bare archive argument patches",
			args:        func(a, _ string) []string { return []string{a} },
			wantPatched: true,
			wantContain: []string{"✓ Archive patched successfully!"},
		},
		{
			name:        "verbose prints duration",
			args:        func(a, _ string) []string { return []string{"-v", a} },
			wantPatched: true,
			wantContain: []string{"Duration:"},
		},
		{
			name:      "verify subcommand on unpatched archive",
			args:      func(a, _ string) []string { return []string{"verify", a} },
			wantErrIs: format.ErrVerification,
		},
		{
			name:    "bad log level",
			args:    func(a, _ string) []string { return []string{"--log-level", "loud", a} },
			wantErr: "unknown log level",
		},
		{
			name: "missing config file",
			args: func(a, dir string) []string {
				return []string{"--config", filepath.Join(dir, "missing.yaml"), a}
			},
			wantErr: "reading config",
		},
		{
			name: "config supplies archive and json log file",
			args: func(a, dir string) []string {
				cfgFile := filepath.Join(dir, "regpatch.yaml")
				body := fmt.Sprintf("archive_path: %s\nlog_level: debug\nlog_format: json\nlog_file: %s\n",
					a, filepath.Join(dir, "regpatch.log"))
				require.NoError(t, os.WriteFile(cfgFile, []byte(body), 0o644))
				return []string{"--config", cfgFile}
			},
			wantPatched: true,
			wantLog:     []string{`"msg":"field written"`, `"record":"ui_counter"`},
		},
		{
			name: "log level flag overrides config",
			args: func(a, dir string) []string {
				cfgFile := filepath.Join(dir, "regpatch.yaml")
				body := fmt.Sprintf("log_level: debug\nlog_file: %s\n", filepath.Join(dir, "regpatch.log"))
				require.NoError(t, os.WriteFile(cfgFile, []byte(body), 0o644))
				return []string{"--config", cfgFile, "--log-level", "error", a}
			},
			wantPatched: true,
			wantLog:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			archive := testArchive(t)
			dir := t.TempDir()

			rootCmd.SetArgs(tt.args(archive, dir))
			t.Cleanup(func() {
				rootCmd.SetArgs(nil)
				_ = shutdownLog()
			})

			output, err := captureOutput(t, rootCmd.Execute)
			require.NoError(t, shutdownLog())

			switch {
			case tt.wantErr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
			default:
				require.NoError(t, err)
			}
			assertContains(t, output, tt.wantContain)

			if tt.wantPatched {
				assert.FileExists(t, archive+".backup")
			} else {
				assert.NoFileExists(t, archive+".backup")
			}

			if tt.wantLog != nil {
				data, err := os.ReadFile(filepath.Join(dir, "regpatch.log"))
				require.NoError(t, err)
				logs := string(data)
				assertContains(t, logs, tt.wantLog)
				if len(tt.wantLog) == 0 {
					assert.False(t, strings.Contains(logs, "field written"),
						"debug records must be filtered by --log-level error")
				}
			}
		})
	}
}
