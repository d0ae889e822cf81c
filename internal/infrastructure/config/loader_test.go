package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Preferences.DefaultModel == "" {
		t.Fatal("default model missing")
	}
	if !cfg.Security.ConfirmationRequired() {
		t.Fatal("confirmation must default to required")
	}
	if len(cfg.Security.DangerousCommands) == 0 {
		t.Fatal("dangerous command list missing")
	}
	if cfg.Logging.AuditFile == "" || cfg.Training.DatasetFile == "" {
		t.Fatal("log paths missing")
	}
}

func TestLoadMergesUserFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "preferences:\n  default_model: gpt-4o-mini\nsecurity:\n  require_confirmation: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Preferences.DefaultModel != "gpt-4o-mini" {
		t.Fatalf("user override lost: %q", cfg.Preferences.DefaultModel)
	}
	if cfg.Security.ConfirmationRequired() {
		t.Fatal("require_confirmation=false not honored")
	}
	// Keys the user never wrote keep the embedded defaults.
	if len(cfg.Models) == 0 {
		t.Fatal("default model list lost in merge")
	}
	if !cfg.Logging.Enabled() {
		t.Fatal("audit logging should stay enabled by default")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("models: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Preferences.DefaultModel = "claude-sonnet"
	if err := loader.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(cfg, reloaded); diff != "" {
		t.Fatalf("round trip mismatch (-saved +reloaded):\n%s", diff)
	}
}

func TestPathReadsDottedKeys(t *testing.T) {
	cfg, err := NewFileLoader(filepath.Join(t.TempDir(), "config.yaml")).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	value, ok := Path(cfg, "security.require_confirmation")
	if !ok {
		t.Fatal("key not found")
	}
	if value != true {
		t.Fatalf("want true, got %v (%T)", value, value)
	}

	if _, ok := Path(cfg, "security.no_such_key"); ok {
		t.Fatal("missing key must report not-found")
	}
	if _, ok := Path(cfg, "preferences.default_model.too_deep"); ok {
		t.Fatal("descending through a scalar must report not-found")
	}
}

func TestSetPathCoercesScalars(t *testing.T) {
	cfg, err := NewFileLoader(filepath.Join(t.TempDir(), "config.yaml")).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	updated, err := SetPath(cfg, "security.require_confirmation", "false")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if updated.Security.ConfirmationRequired() {
		t.Fatal("bool coercion failed")
	}

	updated, err = SetPath(cfg, "preferences.timeout", "60")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if updated.Preferences.TimeoutSeconds != 60 {
		t.Fatalf("int coercion failed: %d", updated.Preferences.TimeoutSeconds)
	}

	updated, err = SetPath(cfg, "preferences.default_model", "llama3")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if updated.Preferences.DefaultModel != "llama3" {
		t.Fatalf("string set failed: %q", updated.Preferences.DefaultModel)
	}
}

func TestConfigOverrideViaEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env-config.yaml")
	body := "preferences:\n  default_model: llama3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AISH_CONFIG", path)

	loader := NewFileLoader("")
	if got := loader.Path(); got != path {
		t.Fatalf("env override not honored: %q", got)
	}
}
