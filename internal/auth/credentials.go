// internal/auth/credentials.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "catalogsync"
	// FallbackDir is the directory for file-based storage (when keyring fails)
	FallbackDir = ".catalogsync/credentials"
)

// ErrCredentialsNotFound is returned when nothing is stored for a login
var ErrCredentialsNotFound = errors.New("credentials not found")

// Store persists site credentials in the OS keyring, or in 0600 files under
// the user's home directory where no keyring is available (CI, containers).
type Store struct {
	// Dir overrides the fallback directory; empty means ~/.catalogsync/credentials
	Dir string
	// FileOnly skips the keyring lookup
	FileOnly bool

	fileBased *bool
}

// NewStore returns a Store that decides between keyring and files on first use
func NewStore() *Store {
	return &Store{}
}

func (s *Store) useFileBasedStorage() bool {
	if s.FileOnly {
		return true
	}
	if s.fileBased != nil {
		return *s.fileBased
	}

	if os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "" {
		result := true
		s.fileBased = &result
		return true
	}

	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := err != nil
	s.fileBased = &result

	if !result {
		keyring.Delete(KeyringService, testKey)
	}

	return result
}

func (s *Store) path(login string) (string, error) {
	dir := s.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, FallbackDir)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(login)+".json"), nil
}

// Save stores creds under creds.Login
func (s *Store) Save(creds Credentials) error {
	if creds.Login == "" {
		return fmt.Errorf("login cannot be empty")
	}

	data, err := json.Marshal(map[string]string{"password": creds.Password})
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	if s.useFileBasedStorage() {
		path, err := s.path(creds.Login)
		if err != nil {
			return fmt.Errorf("failed to get credentials path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save credentials file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, creds.Login, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Load returns the stored credentials for login
func (s *Store) Load(login string) (Credentials, error) {
	if login == "" {
		return Credentials{}, fmt.Errorf("login cannot be empty")
	}

	var data string
	if s.useFileBasedStorage() {
		path, err := s.path(login)
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to get credentials path: %w", err)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Credentials{}, ErrCredentialsNotFound
			}
			return Credentials{}, fmt.Errorf("failed to load credentials file: %w", err)
		}
		data = string(raw)
	} else {
		v, err := keyring.Get(KeyringService, login)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return Credentials{}, ErrCredentialsNotFound
			}
			return Credentials{}, fmt.Errorf("failed to load from keyring: %w", err)
		}
		data = v
	}

	var stored map[string]string
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return Credentials{}, fmt.Errorf("failed to deserialize credentials: %w", err)
	}

	return Credentials{Login: login, Password: stored["password"]}, nil
}

// Delete removes the stored credentials for login
func (s *Store) Delete(login string) error {
	if login == "" {
		return fmt.Errorf("login cannot be empty")
	}

	if s.useFileBasedStorage() {
		path, err := s.path(login)
		if err != nil {
			return fmt.Errorf("failed to get credentials path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete credentials file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, login); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
