package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
)

func TestSaveLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	tok := &oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token file mode = %o", perm)
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}

	if got.AccessToken != "at" || got.RefreshToken != "rt" {
		t.Fatalf("unexpected token: %#v", got)
	}
}

func TestLoadToken_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	_, err := LoadToken(path)

	var missing *TokenMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected TokenMissingError, got: %v", err)
	}

	if missing.Path != path || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unexpected error detail: %#v", missing)
	}
}

func TestLoadToken_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var missing *TokenMissingError
	if _, err := LoadToken(path); !errors.As(err, &missing) {
		t.Fatalf("expected TokenMissingError, got: %v", err)
	}
}

func TestLoadToken_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"token_type":"Bearer"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var missing *TokenMissingError
	if _, err := LoadToken(path); !errors.As(err, &missing) {
		t.Fatalf("expected TokenMissingError, got: %v", err)
	}

	if !errors.Is(missing.Cause, errEmptyToken) {
		t.Fatalf("unexpected cause: %v", missing.Cause)
	}
}

func TestTokenSource_ReusesLiveToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	tok := &oauth2.Token{AccessToken: "live", RefreshToken: "rt", TokenType: "Bearer"}
	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	ts, err := TokenSource(context.Background(), path, config.ClientCredentials{ClientID: "id", ClientSecret: "sec"})
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}

	got, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	if got.AccessToken != "live" {
		t.Fatalf("unexpected token: %#v", got)
	}
}

func TestTokenSource_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	var missing *TokenMissingError
	if _, err := TokenSource(context.Background(), path, config.ClientCredentials{}); !errors.As(err, &missing) {
		t.Fatalf("expected TokenMissingError, got: %v", err)
	}
}

type staticSource struct {
	tok *oauth2.Token
	err error
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	return s.tok, s.err
}

func TestPersistingSource_SavesRotatedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	inner := &staticSource{tok: &oauth2.Token{AccessToken: "fresh", RefreshToken: "rt", TokenType: "Bearer"}}
	src := &persistingSource{path: path, src: inner, last: "stale"}

	got, err := src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	if got.AccessToken != "fresh" {
		t.Fatalf("unexpected token: %#v", got)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read persisted token: %v", err)
	}

	var saved oauth2.Token
	if err := json.Unmarshal(b, &saved); err != nil {
		t.Fatalf("decode persisted token: %v", err)
	}

	if saved.AccessToken != "fresh" || saved.RefreshToken != "rt" {
		t.Fatalf("unexpected persisted token: %#v", saved)
	}

	// A second call sees the same token and leaves the file alone.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := src.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no re-save, stat err: %v", err)
	}
}

func TestPersistingSource_RefreshError(t *testing.T) {
	inner := &staticSource{err: errors.New("boom")}
	src := &persistingSource{path: "/tmp/unused", src: inner}

	if _, err := src.Token(); err == nil {
		t.Fatal("expected refresh error")
	}
}
