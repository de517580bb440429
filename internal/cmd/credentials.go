package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
	"github.com/octoenergy/tentaclio-gsheets/internal/outfmt"
	"github.com/octoenergy/tentaclio-gsheets/internal/secrets"
	"github.com/octoenergy/tentaclio-gsheets/internal/ui"
)

type CredentialsCmd struct {
	Set CredentialsSetCmd `cmd:"" name:"set" help:"Import a Google OAuth client credentials JSON"`
}

var openSecretsStore = secrets.OpenDefault

type CredentialsSetCmd struct {
	File      string `arg:"" name:"file" help:"credentials.json downloaded from the Google Cloud console" type:"existingfile"`
	NoKeyring bool   `name:"no-keyring" help:"Store in the config dir instead of the OS keyring"`
}

func (c *CredentialsSetCmd) Run(ctx context.Context, flags *RootFlags) error {
	u := ui.FromContext(ctx)

	b, err := os.ReadFile(c.File) //nolint:gosec // user-provided path
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	creds, err := config.ParseGoogleOAuthClientJSON(b)
	if err != nil {
		return err
	}

	if !c.NoKeyring {
		if store, storeErr := openSecretsStore(); storeErr == nil {
			if setErr := store.SetClientCredentials(creds); setErr == nil {
				if outfmt.IsJSON(ctx) {
					return outfmt.WriteJSON(os.Stdout, map[string]any{"stored": "keyring"})
				}

				u.Err().Successf("Credentials stored in the OS keyring")

				return nil
			} else {
				slog.Warn("keyring store failed, falling back to file", "error", setErr)
			}
		} else {
			slog.Warn("keyring unavailable, falling back to file", "error", storeErr)
		}
	}

	if err := config.WriteClientCredentials(creds); err != nil {
		return err
	}

	path, err := config.ClientCredentialsPath()
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{"stored": "file", "path": path})
	}

	u.Err().Successf("Credentials stored at %s", path)

	return nil
}
