package config

import (
	"fmt"
	"strings"

	"github.com/ubuntu/decorate"
)

// APIKeySlot is the fixed registry slot holding the decode API key.
const APIKeySlot = "vininsight_apikey"

// CredentialStore persists the single decode API credential.
type CredentialStore interface {
	// Save overwrites the stored value unconditionally.
	Save(value string) error
	// Load returns the last saved value, or "" if nothing was saved.
	Load() (string, error)
}

// FileCredentialStore keeps the credential in a YAML registry file.
type FileCredentialStore struct {
	Path string
}

// NewFileCredentialStore returns a store backed by the registry at path.
// An empty path selects the default location in the config directory.
func NewFileCredentialStore(path string) (*FileCredentialStore, error) {
	if path == "" {
		p, err := GetCredentialsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get credentials path: %w", err)
		}
		path = p
	}
	return &FileCredentialStore{Path: path}, nil
}

// Save stores value in the API key slot. No validation is performed.
func (s *FileCredentialStore) Save(value string) (err error) {
	defer decorate.OnError(&err, "could not save credential")

	reg, err := LoadRegistry(s.Path)
	if err != nil {
		return err
	}
	reg.Set(APIKeySlot, value)
	return reg.Save(s.Path)
}

// Load returns the stored API key.
func (s *FileCredentialStore) Load() (_ string, err error) {
	defer decorate.OnError(&err, "could not load credential")

	reg, err := LoadRegistry(s.Path)
	if err != nil {
		return "", err
	}
	return reg.Get(APIKeySlot), nil
}

// Clear removes the API key slot, leaving other slots intact.
func (s *FileCredentialStore) Clear() (err error) {
	defer decorate.OnError(&err, "could not clear credential")

	reg, err := LoadRegistry(s.Path)
	if err != nil {
		return err
	}
	reg.Delete(APIKeySlot)
	return reg.Save(s.Path)
}

// MemoryCredentialStore is an in-process store for tests and dry runs.
type MemoryCredentialStore struct {
	Value string
	// Err, when set, is returned by both Save and Load.
	Err error
}

// Save implements CredentialStore.
func (s *MemoryCredentialStore) Save(value string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Value = value
	return nil
}

// Load implements CredentialStore.
func (s *MemoryCredentialStore) Load() (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Value, nil
}

// MaskKey renders a credential for display, keeping only the last four runes.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "(not set)"
	}
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}
