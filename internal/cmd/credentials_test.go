package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
	"github.com/octoenergy/tentaclio-gsheets/internal/secrets"
)

type memStore struct {
	creds  config.ClientCredentials
	stored bool
	setErr error
}

func (s *memStore) ClientCredentials() (config.ClientCredentials, error) {
	if !s.stored {
		return config.ClientCredentials{}, errors.New("not found")
	}
	return s.creds, nil
}

func (s *memStore) SetClientCredentials(c config.ClientCredentials) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.creds = c
	s.stored = true
	return nil
}

func (s *memStore) DeleteClientCredentials() error {
	s.stored = false
	return nil
}

func stubSecretsStore(t *testing.T, store secrets.Store, err error) {
	t.Helper()

	orig := openSecretsStore
	t.Cleanup(func() { openSecretsStore = orig })
	openSecretsStore = func() (secrets.Store, error) { return store, err }
}

func writeCredentialsFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "creds.json")
	payload := `{"installed":{"client_id":"id","client_secret":"sec"}}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write creds: %v", err)
	}

	return path
}

func TestCredentialsSetCmd_Keyring(t *testing.T) {
	store := &memStore{}
	stubSecretsStore(t, store, nil)

	out := captureStdout(t, func() {
		cmd := &CredentialsSetCmd{}
		if err := runKong(t, cmd, []string{writeCredentialsFile(t)}, testContext(t, true), &RootFlags{}); err != nil {
			t.Fatalf("credentials set: %v", err)
		}
	})

	if !store.stored || store.creds.ClientID != "id" {
		t.Fatalf("credentials not stored: %#v", store)
	}

	var payload struct {
		Stored string `json:"stored"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	if payload.Stored != "keyring" {
		t.Fatalf("stored = %q", payload.Stored)
	}
}

func TestCredentialsSetCmd_KeyringFailureFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	stubSecretsStore(t, &memStore{setErr: errors.New("locked")}, nil)

	cmd := &CredentialsSetCmd{}
	if err := runKong(t, cmd, []string{writeCredentialsFile(t)}, testContext(t, false), &RootFlags{}); err != nil {
		t.Fatalf("credentials set: %v", err)
	}

	got, err := config.ReadClientCredentials()
	if err != nil {
		t.Fatalf("ReadClientCredentials: %v", err)
	}

	if got.ClientID != "id" || got.ClientSecret != "sec" {
		t.Fatalf("unexpected fallback credentials: %#v", got)
	}
}

func TestCredentialsSetCmd_NoKeyring(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store := &memStore{}
	stubSecretsStore(t, store, nil)

	out := captureStdout(t, func() {
		cmd := &CredentialsSetCmd{}
		args := []string{writeCredentialsFile(t), "--no-keyring"}
		if err := runKong(t, cmd, args, testContext(t, true), &RootFlags{}); err != nil {
			t.Fatalf("credentials set: %v", err)
		}
	})

	if store.stored {
		t.Fatal("keyring should not be used with --no-keyring")
	}

	var payload struct {
		Stored string `json:"stored"`
		Path   string `json:"path"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	if payload.Stored != "file" || payload.Path == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCredentialsSetCmd_InvalidJSON(t *testing.T) {
	stubSecretsStore(t, &memStore{}, nil)

	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte(`{"installed":{}}`), 0o600); err != nil {
		t.Fatalf("write creds: %v", err)
	}

	cmd := &CredentialsSetCmd{}
	if err := runKong(t, cmd, []string{path}, testContext(t, false), &RootFlags{}); err == nil {
		t.Fatal("expected error for invalid credentials json")
	}
}
