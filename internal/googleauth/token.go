package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
)

var errEmptyToken = errors.New("token has no access or refresh token")

// TokenMissingError means the token file is absent or unusable; the fix
// is re-running the token generation flow.
type TokenMissingError struct {
	Path  string
	Cause error
}

func (e *TokenMissingError) Error() string {
	return fmt.Sprintf("no usable token at %s", e.Path)
}

func (e *TokenMissingError) Unwrap() error {
	return e.Cause
}

// LoadToken reads a JSON-encoded oauth2 token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path) //nolint:gosec // user-provided path
	if err != nil {
		return nil, &TokenMissingError{Path: path, Cause: err}
	}

	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, &TokenMissingError{Path: path, Cause: err}
	}

	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, &TokenMissingError{Path: path, Cause: errEmptyToken}
	}

	return &tok, nil
}

// SaveToken writes tok to path atomically with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	b = append(b, '\n')

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit token: %w", err)
	}

	return nil
}

// TokenSource loads the token at path and returns a source that
// refreshes it through the OAuth client and re-saves the file whenever
// the access token rotates.
func TokenSource(ctx context.Context, path string, creds config.ClientCredentials) (oauth2.TokenSource, error) {
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}

	cfg := oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes(),
	}

	return &persistingSource{
		path: path,
		src:  oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok)),
		last: tok.AccessToken,
	}, nil
}

// persistingSource mirrors refreshed tokens back to the token file so
// the next process starts from a live access token.
type persistingSource struct {
	mu   sync.Mutex
	path string
	src  oauth2.TokenSource
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token from %s: %w", s.path, err)
	}

	if tok.AccessToken != s.last {
		if saveErr := SaveToken(s.path, tok); saveErr != nil {
			slog.Warn("could not persist refreshed token", "path", s.path, "error", saveErr)
		} else {
			slog.Debug("persisted refreshed token", "path", s.path)
			s.last = tok.AccessToken
		}
	}

	return tok, nil
}
