package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const AppName = "tentaclio-gsheets"

// TokenFileEnv overrides the token file location. The double underscore
// follows the host library's namespacing for per-scheme settings.
const TokenFileEnv = "TENTACLIO__GSHEETS_TOKEN_FILE"

const tokenFileName = ".tentaclio_google_sheets.json"

// DefaultTokenFile is the token file location used when TokenFileEnv is
// unset: a dotfile in the home directory, falling back to the current
// working directory when the home directory cannot be resolved.
func DefaultTokenFile() string {
	base, err := os.UserHomeDir()
	if err != nil {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			base = wd
		} else {
			base = "."
		}
	}

	return filepath.Join(base, tokenFileName)
}

// TokenFile resolves the effective token file path.
func TokenFile() string {
	if v := os.Getenv(TokenFileEnv); v != "" {
		return v
	}

	return DefaultTokenFile()
}

// Dir is the config directory holding the OAuth client credentials.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}

	return filepath.Join(base, AppName), nil
}

func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("ensure config dir: %w", err)
	}

	return dir, nil
}

// KeyringDir is where the keyring "file" backend stores encrypted
// entries. Kept separate from the main config dir because the file
// backend creates one file per key.
func KeyringDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "keyring"), nil
}

func EnsureKeyringDir() (string, error) {
	dir, err := KeyringDir()
	if err != nil {
		return "", err
	}
	// keyring's file backend uses 0700 by default; match that.

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("ensure keyring dir: %w", err)
	}

	return dir, nil
}

func ClientCredentialsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "credentials.json"), nil
}
