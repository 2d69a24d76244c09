package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GEOSAMPLER_TEST_A=from-file\nGEOSAMPLER_TEST_B=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEOSAMPLER_TEST_B", "preset")
	t.Cleanup(func() { _ = os.Unsetenv("GEOSAMPLER_TEST_A") })

	if err := Load(path); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := os.Getenv("GEOSAMPLER_TEST_A"); got != "from-file" {
		t.Errorf("GEOSAMPLER_TEST_A = %q, want from-file", got)
	}
	if got := os.Getenv("GEOSAMPLER_TEST_B"); got != "preset" {
		t.Errorf("GEOSAMPLER_TEST_B = %q, existing variables must win", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
}
