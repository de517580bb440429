// Package errfmt renders errors as actionable one-line messages for the
// CLI.
package errfmt

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
	"github.com/octoenergy/tentaclio-gsheets/internal/googleauth"
)

func Format(err error) string {
	if err == nil {
		return ""
	}

	var tokenErr *googleauth.TokenMissingError
	if errors.As(err, &tokenErr) {
		return fmt.Sprintf("No usable token at %s. Run: tentaclio-gsheets token generate", tokenErr.Path)
	}

	var credErr *config.CredentialsMissingError
	if errors.As(err, &credErr) {
		return fmt.Sprintf("OAuth client credentials missing. Run: tentaclio-gsheets credentials set <credentials.json> (expected at %s)", credErr.Path)
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "Secret not found in keyring. Run: tentaclio-gsheets credentials set <credentials.json>"
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}

		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s", gerr.Code, reason, gerr.Message)
		}

		return fmt.Sprintf("Google API error (%d): %s", gerr.Code, gerr.Message)
	}

	return err.Error()
}
