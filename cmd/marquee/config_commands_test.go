package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "marquee.toml")
	content := "[paths]\n" +
		"data_dir = \"" + filepath.Join(base, "data") + "\"\n" +
		"log_dir = \"" + filepath.Join(base, "logs") + "\"\n\n" +
		"[tmdb]\n" +
		"api_key = \"test-key\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output does not mention target path: %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "api_key") {
		t.Errorf("sample config missing api_key stanza")
	}

	// A second init without --overwrite refuses to clobber the file.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target exists")
	}
}

func TestConfigValidate(t *testing.T) {
	path := writeTestConfig(t)
	out, err := runCommand(t, "config", "validate", "--config", path)
	if err != nil {
		t.Fatalf("config validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestConfigShow(t *testing.T) {
	path := writeTestConfig(t)
	out, err := runCommand(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\n%s", err, out)
	}
	for _, want := range []string{"tmdb.api_key_set", "yes", "enrichment.concurrency"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheStatsEmpty(t *testing.T) {
	path := writeTestConfig(t)
	out, err := runCommand(t, "--config", path, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Entries") {
		t.Errorf("unexpected output: %q", out)
	}
}
