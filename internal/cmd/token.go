package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
	"github.com/octoenergy/tentaclio-gsheets/internal/googleauth"
	"github.com/octoenergy/tentaclio-gsheets/internal/outfmt"
	"github.com/octoenergy/tentaclio-gsheets/internal/secrets"
	"github.com/octoenergy/tentaclio-gsheets/internal/ui"
)

type TokenCmd struct {
	Generate TokenGenerateCmd `cmd:"" name:"generate" help:"Generate the token file via the browser OAuth flow"`
	Show     TokenShowCmd     `cmd:"" name:"show" help:"Show the token file location and expiry"`
}

// seams for tests
var (
	authorizeFn              = googleauth.Authorize
	resolveClientCredentials = secrets.ResolveClientCredentials
)

type TokenGenerateCmd struct {
	CredentialsFile string        `name:"credentials-file" help:"Google OAuth client JSON (default: stored credentials)" placeholder:"PATH"`
	OutputFile      string        `name:"output-file" help:"Token file destination (default: resolved token file)" placeholder:"PATH"`
	Manual          bool          `name:"manual" help:"Print the auth URL and paste the redirect instead of serving a local callback"`
	ForceConsent    bool          `name:"force-consent" help:"Force the consent screen (re-issues a refresh token)"`
	Timeout         time.Duration `name:"timeout" default:"2m" help:"Authorization timeout"`
}

func (c *TokenGenerateCmd) Run(ctx context.Context, flags *RootFlags) error {
	u := ui.FromContext(ctx)

	var creds config.ClientCredentials

	if c.CredentialsFile != "" {
		b, err := os.ReadFile(c.CredentialsFile) //nolint:gosec // user-provided path
		if err != nil {
			return fmt.Errorf("read %s: %w", c.CredentialsFile, err)
		}

		if creds, err = config.ParseGoogleOAuthClientJSON(b); err != nil {
			return err
		}
	} else {
		var err error
		if creds, err = resolveClientCredentials(); err != nil {
			return err
		}
	}

	out := c.OutputFile
	if out == "" {
		out = flags.TokenFile
	}

	if out == "" {
		out = config.TokenFile()
	}

	tok, err := authorizeFn(ctx, googleauth.AuthorizeOptions{
		Credentials:  creds,
		Manual:       c.Manual,
		ForceConsent: c.ForceConsent,
		Timeout:      c.Timeout,
	})
	if err != nil {
		return err
	}

	if err := googleauth.SaveToken(out, tok); err != nil {
		return err
	}

	if out != config.TokenFile() {
		warnf(ctx, "Note: set %s=%s so the adapter finds this token file", config.TokenFileEnv, out)
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{"tokenFile": out})
	}

	u.Err().Successf("Token file saved to %s", out)

	return nil
}

type TokenShowCmd struct{}

func (c *TokenShowCmd) Run(ctx context.Context, flags *RootFlags) error {
	path := flags.TokenFile
	if path == "" {
		path = config.TokenFile()
	}

	tok, err := googleauth.LoadToken(path)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{
			"tokenFile":       path,
			"expiry":          tok.Expiry,
			"hasRefreshToken": tok.RefreshToken != "",
		})
	}

	fmt.Printf("Token file: %s\n", path)
	if !tok.Expiry.IsZero() {
		fmt.Printf("Expires:    %s\n", tok.Expiry.Format(time.RFC3339))
	}
	fmt.Printf("Refresh:    %v\n", tok.RefreshToken != "")

	return nil
}
