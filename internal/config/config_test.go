package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hackmaster/internal/wordlist"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Server.Addr != ":4000" {
		t.Errorf("Server.Addr = %s, want :4000", cfg.Server.Addr)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Wordlists.SampleLines != 10 {
		t.Errorf("Wordlists.SampleLines = %d, want 10", cfg.Wordlists.SampleLines)
	}
	if cfg.Generator.MinLength != wordlist.DefaultMinLength {
		t.Errorf("Generator.MinLength = %d, want %d", cfg.Generator.MinLength, wordlist.DefaultMinLength)
	}
	if cfg.Generator.FilterNetworkName == nil || !*cfg.Generator.FilterNetworkName {
		t.Error("Generator.FilterNetworkName should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestGeneratorOptions(t *testing.T) {
	t.Run("defaults match the stock grammar", func(t *testing.T) {
		opts := DefaultConfig().GeneratorOptions()
		if opts.MinLength != 8 || !opts.FilterNetworkName {
			t.Errorf("unexpected options %+v", opts)
		}
		if len(opts.Separators) != len(wordlist.DefaultSeparators) {
			t.Errorf("Separators = %v, want defaults", opts.Separators)
		}
		if len(opts.Fillers) != len(wordlist.DefaultFillers) {
			t.Errorf("Fillers = %v, want defaults", opts.Fillers)
		}
	})

	t.Run("overrides are carried", func(t *testing.T) {
		cfg := DefaultConfig()
		off := false
		cfg.Generator.FilterNetworkName = &off
		cfg.Generator.MinLength = 10
		cfg.Generator.Separators = []string{"_"}

		opts := cfg.GeneratorOptions()
		if opts.FilterNetworkName {
			t.Error("FilterNetworkName override lost")
		}
		if opts.MinLength != 10 {
			t.Errorf("MinLength = %d, want 10", opts.MinLength)
		}
		if len(opts.Separators) != 1 || opts.Separators[0] != "_" {
			t.Errorf("Separators = %v, want [_]", opts.Separators)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative min length", func(c *Config) { c.Generator.MinLength = -1 }, "min_length"},
		{"negative sample", func(c *Config) { c.Wordlists.SampleLines = -5 }, "sample_lines"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Server.WriteTimeout = Duration(2 * time.Minute)
	cfg.Wordlists.Dir = "/var/lib/hackmaster/wordlists"
	cfg.Generator.Fillers = []string{"2024", "0000"}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %s, want 127.0.0.1:8080", loaded.Server.Addr)
	}
	if loaded.Server.WriteTimeout.Duration() != 2*time.Minute {
		t.Errorf("Server.WriteTimeout = %s, want 2m", loaded.Server.WriteTimeout.Duration())
	}
	if loaded.Wordlists.Dir != "/var/lib/hackmaster/wordlists" {
		t.Errorf("Wordlists.Dir = %s", loaded.Wordlists.Dir)
	}
	if len(loaded.Generator.Fillers) != 2 || loaded.Generator.Fillers[0] != "2024" {
		t.Errorf("Generator.Fillers = %v, want [2024 0000]", loaded.Generator.Fillers)
	}
	if loaded.Generator.FilterNetworkName == nil || !*loaded.Generator.FilterNetworkName {
		t.Error("FilterNetworkName should survive a round trip")
	}
}

func TestLoadPartialFileAppliesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "generator:\n  filter_network_name: false\n  separators: [\"!\", \"\"]\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":4000" {
		t.Errorf("Server.Addr = %s, want default", cfg.Server.Addr)
	}
	opts := cfg.GeneratorOptions()
	if opts.FilterNetworkName {
		t.Error("filter_network_name: false was ignored")
	}
	if len(opts.Separators) != 2 || opts.Separators[1] != "" {
		t.Errorf("Separators = %q, want [! \"\"]", opts.Separators)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	os.WriteFile(badYAML, []byte("server: [unclosed"), 0644)
	if _, _, err := LoadFromPath(badYAML); err == nil {
		t.Error("expected parse error")
	}

	badValue := filepath.Join(dir, "value.yaml")
	os.WriteFile(badValue, []byte("generator:\n  min_length: -3\n"), 0644)
	if _, _, err := LoadFromPath(badValue); err == nil {
		t.Error("expected validation error")
	}

	if _, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	if found := FindConfigPath(); found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
