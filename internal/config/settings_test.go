package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	NewSettings().AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return fs
}

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := LoadSettings(newFlagSet(t), "")
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q, want %q", s.APIBase, DefaultAPIBase)
	}
	if s.LogLevel != "" {
		t.Errorf("LogLevel = %q, want empty", s.LogLevel)
	}
}

func TestLoadSettings_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	file := filepath.Join(t.TempDir(), "settings.yaml")
	content := "api-base: https://file.example/api/\nvehicles-url: https://file.example/tree\nlog-level: warn\n"
	if err := os.WriteFile(file, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VININSIGHT_VEHICLES_URL", "https://env.example/tree")

	s, err := LoadSettings(newFlagSet(t, "--log-level=debug"), file)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.APIBase != "https://file.example/api" {
		t.Errorf("APIBase = %q, want file value without trailing slash", s.APIBase)
	}
	if s.VehiclesURL != "https://env.example/tree" {
		t.Errorf("VehiclesURL = %q, want env value", s.VehiclesURL)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want flag value", s.LogLevel)
	}
}

func TestLoadSettings_ExplicitFileMissing(t *testing.T) {
	_, err := LoadSettings(newFlagSet(t), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("LoadSettings() expected error for missing explicit file")
	}
}
