// Package secrets stores the OAuth client credentials in the OS keyring,
// with the plain config-dir credentials.json as fallback.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
)

type Store interface {
	ClientCredentials() (config.ClientCredentials, error)
	SetClientCredentials(config.ClientCredentials) error
	DeleteClientCredentials() error
}

type KeyringStore struct {
	ring keyring.Keyring
}

const (
	keyringPasswordEnv = "TENTACLIO__GSHEETS_KEYRING_PASSWORD" //nolint:gosec // env var name, not a credential
	keyringBackendEnv  = "TENTACLIO__GSHEETS_KEYRING_BACKEND"  //nolint:gosec // env var name, not a credential

	clientCredentialsKey = "oauth-client"
)

var (
	errNoTTY                 = errors.New("no TTY available for keyring file backend password prompt")
	errInvalidKeyringBackend = errors.New("invalid keyring backend")
	errEmptyCredentials      = errors.New("missing client_id/client_secret")

	openKeyringFunc = openKeyring
)

func allowedBackends() ([]keyring.BackendType, error) {
	switch normalizeBackend(os.Getenv(keyringBackendEnv)) {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected auto, keychain, or file)", errInvalidKeyringBackend, os.Getenv(keyringBackendEnv))
	}
}

func fileKeyringPasswordFuncFrom(password string, isTTY bool) keyring.PromptFunc {
	if password != "" {
		return keyring.FixedStringPrompt(password)
	}

	if isTTY {
		return keyring.TerminalPrompt
	}

	return func(_ string) (string, error) {
		return "", fmt.Errorf("%w; set %s", errNoTTY, keyringPasswordEnv)
	}
}

func fileKeyringPasswordFunc() keyring.PromptFunc {
	return fileKeyringPasswordFuncFrom(os.Getenv(keyringPasswordEnv), term.IsTerminal(int(os.Stdin.Fd())))
}

func normalizeBackend(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func openKeyring() (keyring.Keyring, error) {
	// On Linux/WSL/containers, OS keychains (secret-service/kwallet) may
	// be unavailable. In that case github.com/99designs/keyring falls
	// back to the "file" backend, which *requires* both a directory and
	// a password prompt function.
	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, fmt.Errorf("ensure keyring dir: %w", err)
	}

	backends, err := allowedBackends()
	if err != nil {
		return nil, err
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              config.AppName,
		KeychainTrustApplication: runtime.GOOS == "darwin",
		AllowedBackends:          backends,
		FileDir:                  keyringDir,
		FilePasswordFunc:         fileKeyringPasswordFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}

	return ring, nil
}

func OpenDefault() (Store, error) {
	ring, err := openKeyringFunc()
	if err != nil {
		return nil, err
	}

	return &KeyringStore{ring: ring}, nil
}

func (s *KeyringStore) SetClientCredentials(c config.ClientCredentials) error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errEmptyCredentials
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := s.ring.Set(keyring.Item{
		Key:  clientCredentialsKey,
		Data: payload,
	}); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	return nil
}

func (s *KeyringStore) ClientCredentials() (config.ClientCredentials, error) {
	item, err := s.ring.Get(clientCredentialsKey)
	if err != nil {
		return config.ClientCredentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var c config.ClientCredentials
	if err := json.Unmarshal(item.Data, &c); err != nil {
		return config.ClientCredentials{}, fmt.Errorf("decode credentials: %w", err)
	}

	if c.ClientID == "" || c.ClientSecret == "" {
		return config.ClientCredentials{}, errEmptyCredentials
	}

	return c, nil
}

func (s *KeyringStore) DeleteClientCredentials() error {
	if err := s.ring.Remove(clientCredentialsKey); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}

	return nil
}

// ResolveClientCredentials looks the OAuth client up in the keyring
// first and falls back to the config-dir credentials.json.
func ResolveClientCredentials() (config.ClientCredentials, error) {
	if store, err := OpenDefault(); err == nil {
		c, credErr := store.ClientCredentials()
		if credErr == nil {
			return c, nil
		}

		if !errors.Is(credErr, keyring.ErrKeyNotFound) {
			slog.Debug("keyring credentials lookup failed", "error", credErr)
		}
	} else {
		slog.Debug("keyring unavailable", "error", err)
	}

	return config.ReadClientCredentials()
}
