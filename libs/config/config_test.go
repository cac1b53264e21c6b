package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "8085")
	if p, err := Port("TEST_PORT", "1"); err != nil || p != "8085" {
		t.Fatalf("expected 8085, got %q (err=%v)", p, err)
	}

	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "1"); err == nil {
		t.Fatal("expected error for out of range port")
	}
}

func TestIntAndDuration(t *testing.T) {
	if n, err := Int("TEST_UNSET_INT", 31); err != nil || n != 31 {
		t.Fatalf("expected fallback 31, got %d (err=%v)", n, err)
	}
	t.Setenv("TEST_INT", "abc")
	if _, err := Int("TEST_INT", 1); err == nil {
		t.Fatal("expected error for malformed int")
	}

	t.Setenv("TEST_DURATION", "90s")
	d, err := Duration("TEST_DURATION", time.Minute)
	if err != nil || d != 90*time.Second {
		t.Fatalf("expected 90s, got %s (err=%v)", d, err)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("TEST_BOOL", "Yes")
	if !Bool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TEST_BOOL", "nope")
	if Bool("TEST_BOOL", true) {
		t.Fatal("expected false for unrecognised value")
	}

	t.Setenv("TEST_LIST", " a, ,b ,c")
	got := List("TEST_LIST", "")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("FREESLOTS_DOTENV_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FREESLOTS_DOTENV_KEY") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := String("FREESLOTS_DOTENV_KEY", ""); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
