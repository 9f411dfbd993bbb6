package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dnmerge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// TestLoadConfig verifies values read from an explicit config file.
func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
format: json
schema_file: schema.yaml
sheet: Data
comma: ";"
lazy_quotes: true
provenance: false
placeholders: ["-", "n/a"]
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if config.SchemaFile != "schema.yaml" || config.Sheet != "Data" {
		t.Errorf("SchemaFile/Sheet = %q/%q", config.SchemaFile, config.Sheet)
	}
	if config.CommaRune() != ';' {
		t.Errorf("CommaRune() = %q, want ';'", config.CommaRune())
	}
	if !config.LazyQuotes || config.Provenance {
		t.Errorf("LazyQuotes/Provenance = %v/%v, want true/false", config.LazyQuotes, config.Provenance)
	}
	if len(config.Placeholders) != 2 || config.Placeholders[1] != "n/a" {
		t.Errorf("Placeholders = %v", config.Placeholders)
	}
	if config.LogFormat == "" || config.LogOutput == "" {
		t.Error("logging defaults not set")
	}
}

// TestLoadConfig_Defaults verifies defaults when the file sets nothing.
func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if !config.Provenance {
		t.Error("Provenance should default to true")
	}
	if config.CommaRune() != ',' {
		t.Errorf("CommaRune() = %q, want ','", config.CommaRune())
	}
}

// TestLoadConfig_Environment verifies DNMERGE_* variables override the file.
func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("DNMERGE_SHEET", "FromEnv")
	t.Setenv("DNMERGE_FORMAT", "yaml")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig(writeConfig(t, "sheet: FromFile\n"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.Sheet != "FromEnv" {
		t.Errorf("Sheet = %q, want FromEnv", config.Sheet)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", config.Format)
	}
	if config.EnvLogLevel != "debug" || config.LogLevel != "" {
		t.Errorf("EnvLogLevel/LogLevel = %q/%q, want debug/empty", config.EnvLogLevel, config.LogLevel)
	}
}

// TestLoadConfig_Errors verifies unreadable files and invalid values fail.
func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
	if _, err := LoadConfig(writeConfig(t, "comma: ';;'\n")); err == nil {
		t.Error("expected error for multi-character comma")
	}
}

// TestConfig_UpdateFromFlags verifies flags override loaded values.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "json"}
	config.UpdateFromFlags(true, false, true, "", "warn")

	if !config.Verbose || !config.NoColor || config.Quiet {
		t.Errorf("flags not applied: %+v", config)
	}
	if config.Format != "json" {
		t.Errorf("empty --format should keep %q, got %q", "json", config.Format)
	}
	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", config.LogLevel)
	}

	config.UpdateFromFlags(false, false, false, "yaml", "")
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", config.Format)
	}
}
