package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "logpaneld ") {
		t.Errorf("output: %q", buf.String())
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logpanel.yaml")
	if err := os.WriteFile(path, []byte("version: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", path, "--log-level", "error"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected config error")
	}
}

func TestRunRequiresInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logpanel.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", path, "--log-level", "error"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no instances") {
		t.Fatalf("expected no instances error, got %v", err)
	}
}
