package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testBinaryPath string

func TestMain(m *testing.M) {
	repoRoot := mustRepoRoot()
	binPath := filepath.Join(os.TempDir(), "asa-test-bin")
	build := exec.Command("go", "build", "-o", binPath, "./cmd/asa")
	build.Dir = repoRoot
	build.Env = os.Environ()
	if out, err := build.CombinedOutput(); err != nil {
		_, _ = os.Stderr.WriteString("failed to build asa test binary: " + err.Error() + "\n" + string(out))
		os.Exit(1)
	}
	testBinaryPath = binPath
	code := m.Run()
	_ = os.Remove(binPath)
	os.Exit(code)
}

func TestGoldenJSONErrors(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		goldenFile string
	}{
		{
			name:       "campaigns list",
			args:       []string{"campaigns", "list", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "campaigns delete",
			args:       []string{"campaigns", "delete", "1", "--force", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "ad-groups list",
			args:       []string{"ad-groups", "list", "1", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "keywords list",
			args:       []string{"keywords", "list", "1", "2", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "negatives list",
			args:       []string{"keywords", "negatives", "list", "1", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "keyword report",
			args:       []string{"reports", "keywords", "1", "--start", "2026-02-01", "--end", "2026-02-07", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "search term report",
			args:       []string{"reports", "search-terms", "1", "-s", "2026-02-01", "-e", "2026-02-07", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "bid check",
			args:       []string{"optimize", "bid-check", "--dry-run", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "impression share summary",
			args:       []string{"impression-share", "summary", "--format", "json"},
			goldenFile: "missing_credentials.json",
		},
		{
			name:       "bad campaign id",
			args:       []string{"campaigns", "get", "abc", "--format", "json"},
			goldenFile: "invalid_campaign_id.json",
		},
		{
			name:       "bad report date",
			args:       []string{"reports", "campaigns", "--start", "2026-13-01", "--end", "2026-02-07", "--format", "json"},
			goldenFile: "invalid_date.json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := runCLIForJSON(t, tc.args...)
			expected := loadGoldenJSON(t, tc.goldenFile)
			if diff := cmp.Diff(expected, actual); diff != "" {
				t.Fatalf("json mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// runCLIForJSON runs the binary in an empty directory without ASA_*
// variables and decodes stdout. Exit code 1 is the expected failure.
func runCLIForJSON(t *testing.T, args ...string) map[string]any {
	t.Helper()
	cmd := exec.Command(testBinaryPath, args...)
	cmd.Env = filteredEnvWithoutAdsCreds(os.Environ())
	cmd.Dir = t.TempDir()
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
		t.Fatalf("command failed: %v\noutput:\n%s", err, string(out))
	}
	trimmed := strings.TrimSpace(string(out))
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw:\n%s", err, trimmed)
	}
	return payload
}

func loadGoldenJSON(t *testing.T, name string) map[string]any {
	t.Helper()
	path := filepath.Join(mustRepoRoot(), "cmd", "asa", "testdata", "golden", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("invalid golden JSON %s: %v", path, err)
	}
	return payload
}

func filteredEnvWithoutAdsCreds(env []string) []string {
	filtered := make([]string, 0, len(env))
	for _, kv := range env {
		if strings.HasPrefix(kv, "ASA_") {
			continue
		}
		filtered = append(filtered, kv)
	}
	return filtered
}

func mustRepoRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	current := wd
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			panic("unable to locate repository root from " + wd)
		}
		current = parent
	}
}
