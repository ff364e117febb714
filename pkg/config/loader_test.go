package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLoader(home, cwd string) *Loader {
	loader := NewLoader(nil)
	loader.homeDir = func() (string, error) { return home, nil }
	loader.workingDir = func() (string, error) { return cwd, nil }
	return loader
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderDefaults(t *testing.T) {
	loader := newTestLoader(t.TempDir(), t.TempDir())

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.MaxDocuments != DefaultConfig().Cache.MaxDocuments {
		t.Errorf("expected default max documents, got %d", cfg.Cache.MaxDocuments)
	}
}

func TestLoaderPrecedence(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), "cache:\n  max_documents: 5\nlog:\n  level: warn\n")
	writeFile(t, filepath.Join(project, ProjectConfigFile), "log:\n  level: debug\n")
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeFile(t, explicit, "log:\n  encoding: json\n")

	cfg, err := newTestLoader(home, nested).Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cache.MaxDocuments != 5 {
		t.Errorf("expected user max documents 5, got %d", cfg.Cache.MaxDocuments)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected project level debug to win, got %s", cfg.Log.Level)
	}
	if cfg.Log.Encoding != "json" {
		t.Errorf("expected explicit encoding json, got %s", cfg.Log.Encoding)
	}
}

func TestLoaderExplicitMissing(t *testing.T) {
	loader := newTestLoader(t.TempDir(), t.TempDir())
	if _, err := loader.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoaderInvalid(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, ProjectConfigFile), "cache:\n  max_documents: -4\n")

	_, err := newTestLoader(t.TempDir(), cwd).Load("")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	loader := newTestLoader(home, t.TempDir())

	path, err := loader.EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if path != filepath.Join(home, UserConfigDir, UserConfigFile) {
		t.Errorf("unexpected path %s", path)
	}
	if _, err := LoadFromFile(path); err != nil {
		t.Errorf("created config should load: %v", err)
	}

	// Second call leaves the file alone.
	writeFile(t, path, "cache:\n  max_documents: 1\n")
	if _, err := loader.EnsureUserConfig(); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.MaxDocuments != 1 {
		t.Errorf("existing config was overwritten")
	}
}
