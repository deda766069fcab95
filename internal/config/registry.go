package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName         = "vininsight"
	credentialsFile = "credentials.yaml"
	settingsFile    = "settings.yaml"
	logFile         = "vininsight.log"

	// registryVersion is the only on-disk format understood by this build.
	registryVersion = 1
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// Registry is the on-disk credential registry.
// Slots other than the API key are preserved across load/save.
type Registry struct {
	Version     int               `yaml:"version"`
	Credentials map[string]string `yaml:"credentials,omitempty"`
}

// NewRegistry creates an empty registry at the current version.
func NewRegistry() *Registry {
	return &Registry{
		Version:     registryVersion,
		Credentials: make(map[string]string),
	}
}

// Get returns the value stored in slot, or "" if the slot is empty.
func (r *Registry) Get(slot string) string {
	if r.Credentials == nil {
		return ""
	}
	return r.Credentials[slot]
}

// Set overwrites slot with value.
func (r *Registry) Set(slot, value string) {
	if r.Credentials == nil {
		r.Credentials = make(map[string]string)
	}
	r.Credentials[slot] = value
}

// Delete removes slot from the registry.
func (r *Registry) Delete(slot string) {
	delete(r.Credentials, slot)
}

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/vininsight or $HOME/.config/vininsight
//   - macOS: $HOME/.config/vininsight (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\vininsight
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetCredentialsPath returns the default path of the credential registry.
func GetCredentialsPath() (string, error) {
	return inConfigDir(credentialsFile)
}

// GetSettingsPath returns the default path of the settings file.
func GetSettingsPath() (string, error) {
	return inConfigDir(settingsFile)
}

// GetLogPath returns the default log file used while the TUI owns the terminal.
func GetLogPath() (string, error) {
	return inConfigDir(logFile)
}

func inConfigDir(name string) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, name), nil
}

// LoadRegistry reads the registry at path.
// A missing file yields a new empty registry.
func LoadRegistry(path string) (*Registry, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// An empty file decodes to the zero value.
	if registry.Version == 0 && len(registry.Credentials) == 0 {
		return NewRegistry(), nil
	}
	if registry.Version != registryVersion {
		return nil, fmt.Errorf("unsupported credentials version: %d (expected %d)", registry.Version, registryVersion)
	}
	if registry.Credentials == nil {
		registry.Credentials = make(map[string]string)
	}

	return &registry, nil
}

// Save writes the registry to path.
// Performs an atomic write to prevent corruption on crash.
func (r *Registry) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	header := []byte(`# VIN Insight Credentials
# This file stores the auto.dev API key used for VIN decoding.
#
# Security Note: the key is stored in PLAINTEXT and never expires.
# Remove it with "vininsight key clear".
#
# Location: ` + path + `

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary credentials file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save credentials file: %w", err)
	}

	return nil
}
