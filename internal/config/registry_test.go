package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, "vininsight"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}

	credPath, err := GetCredentialsPath()
	if err != nil {
		t.Fatalf("GetCredentialsPath() error = %v", err)
	}
	if filepath.Base(credPath) != "credentials.yaml" {
		t.Errorf("GetCredentialsPath() should end with 'credentials.yaml', got: %v", credPath)
	}
}

func TestLoadRegistry_Missing(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %d, want 1", reg.Version)
	}
	if got := reg.Get(APIKeySlot); got != "" {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.yaml")

	reg := NewRegistry()
	reg.Set(APIKeySlot, "secret")
	reg.Set("other_slot", "kept")
	if err := reg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("file mode = %o, want 0600", perm)
		}
		dirInfo, _ := os.Stat(filepath.Dir(path))
		if perm := dirInfo.Mode().Perm(); perm != 0700 {
			t.Errorf("dir mode = %o, want 0700", perm)
		}
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# VIN Insight Credentials") {
		t.Error("saved file is missing the header comment")
	}

	loaded, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if got := loaded.Get(APIKeySlot); got != "secret" {
		t.Errorf("Get(APIKeySlot) = %q, want %q", got, "secret")
	}
	if got := loaded.Get("other_slot"); got != "kept" {
		t.Errorf("Get(other_slot) = %q, want %q", got, "kept")
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "version: [", wantErr: "failed to parse"},
		{name: "future version", content: "version: 2\ncredentials:\n  a: b\n", wantErr: "unsupported credentials version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadRegistry(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadRegistry() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistry_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %d, want 1", reg.Version)
	}
}
