package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Inspect.Port != DefaultInspectPort {
		t.Errorf("Inspect.Port = %d, want %d", cfg.Inspect.Port, DefaultInspectPort)
	}
	if cfg.Inspect.Host != DefaultInspectHost {
		t.Errorf("Inspect.Host = %q, want %q", cfg.Inspect.Host, DefaultInspectHost)
	}
	if cfg.YieldThreshold() != time.Millisecond {
		t.Errorf("YieldThreshold() = %v, want 1ms", cfg.YieldThreshold())
	}
	if cfg.SliceBudget() != 5*time.Millisecond {
		t.Errorf("SliceBudget() = %v, want 5ms", cfg.SliceBudget())
	}
	if cfg.Engine.MaxRenderPhaseUpdates != DefaultMaxRenderPhaseUpdates {
		t.Errorf("Engine.MaxRenderPhaseUpdates = %d, want %d", cfg.Engine.MaxRenderPhaseUpdates, DefaultMaxRenderPhaseUpdates)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing config
	_, err := Load(tmpDir)
	if err == nil || !strings.Contains(err.Error(), "E121") {
		t.Errorf("Load() error = %v, want E121", err)
	}

	configJSON := `{
  "name": "demo",
  "log": {"level": "debug"},
  "engine": {"yieldThreshold": "2ms"},
  "inspect": {"port": 8080, "tracing": true}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "demo" {
		t.Errorf("Name = %q, want %q", cfg.Name, "demo")
	}
	if cfg.Inspect.Port != 8080 {
		t.Errorf("Inspect.Port = %d, want %d", cfg.Inspect.Port, 8080)
	}
	if !cfg.Inspect.Tracing {
		t.Error("Inspect.Tracing should be true")
	}
	if cfg.YieldThreshold() != 2*time.Millisecond {
		t.Errorf("YieldThreshold() = %v, want 2ms", cfg.YieldThreshold())
	}
	if level, err := cfg.LogLevel(); err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, %v, want DEBUG", level, err)
	}

	// Omitted fields keep their defaults.
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.Inspect.Host != DefaultInspectHost {
		t.Errorf("Inspect.Host = %q, want %q", cfg.Inspect.Host, DefaultInspectHost)
	}
	if cfg.Loop.MaxQueue != DefaultMaxQueue {
		t.Errorf("Loop.MaxQueue = %d, want %d", cfg.Loop.MaxQueue, DefaultMaxQueue)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)

	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E120") {
		t.Errorf("Expected E120 error, got: %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadOrDefault(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(tmpDir); err == nil {
		t.Error("LoadOrDefault should return parse errors")
	}
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Inspect.Port = 9000
	cfg.Bench.Rows = 10

	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Inspect.Port != 9000 {
		t.Errorf("Inspect.Port = %d, want %d", loaded.Inspect.Port, 9000)
	}
	if loaded.Bench.Rows != 10 {
		t.Errorf("Bench.Rows = %d, want %d", loaded.Bench.Rows, 10)
	}

	loaded.Inspect.Port = 9001
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reloaded.Inspect.Port != 9001 {
		t.Errorf("Inspect.Port = %d, want %d", reloaded.Inspect.Port, 9001)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative port", func(c *Config) { c.Inspect.Port = -1 }},
		{"port too large", func(c *Config) { c.Inspect.Port = 70000 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad threshold", func(c *Config) { c.Engine.YieldThreshold = "soon" }},
		{"negative threshold", func(c *Config) { c.Engine.YieldThreshold = "-1ms" }},
		{"zero slice", func(c *Config) { c.Loop.SliceBudget = "0s" }},
		{"negative updates", func(c *Config) { c.Engine.MaxRenderPhaseUpdates = -1 }},
		{"negative rows", func(c *Config) { c.Bench.Rows = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), "E122") {
				t.Errorf("Validate() = %v, want E122", err)
			}
		})
	}
}

func TestDurationFallback(t *testing.T) {
	cfg := New()
	cfg.Engine.YieldThreshold = "bogus"
	cfg.Loop.SliceBudget = ""

	if got := cfg.YieldThreshold(); got != time.Millisecond {
		t.Errorf("YieldThreshold() = %v, want 1ms", got)
	}
	if got := cfg.SliceBudget(); got != 5*time.Millisecond {
		t.Errorf("SliceBudget() = %v, want 5ms", got)
	}
}

func TestInspectAddress(t *testing.T) {
	cfg := New()
	cfg.Inspect.Host = "0.0.0.0"
	cfg.Inspect.Port = 8080

	if addr := cfg.InspectAddress(); addr != "0.0.0.0:8080" {
		t.Errorf("InspectAddress = %q, want %q", addr, "0.0.0.0:8080")
	}
	if url := cfg.InspectURL(); url != "http://0.0.0.0:8080" {
		t.Errorf("InspectURL = %q, want %q", url, "http://0.0.0.0:8080")
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	if Exists(tmpDir) {
		t.Error("Exists should be false for empty directory")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(tmpDir) {
		t.Error("Exists should be true after creating config")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nestedDir); err == nil {
		t.Error("FindProjectRoot should fail when no config exists")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nestedDir)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot = %q, want %q", root, tmpDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Inspect.Port != DefaultInspectPort {
		t.Errorf("Inspect.Port = %d, want %d", cfg.Inspect.Port, DefaultInspectPort)
	}
	if cfg.Engine.YieldThreshold != DefaultYieldThreshold {
		t.Errorf("Engine.YieldThreshold = %q, want %q", cfg.Engine.YieldThreshold, DefaultYieldThreshold)
	}
	if cfg.Loop.SliceBudget != DefaultSliceBudget {
		t.Errorf("Loop.SliceBudget = %q, want %q", cfg.Loop.SliceBudget, DefaultSliceBudget)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after applyDefaults = %v", err)
	}
}
