package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	gsheets "github.com/octoenergy/tentaclio-gsheets"
	"github.com/octoenergy/tentaclio-gsheets/internal/outfmt"
	"github.com/octoenergy/tentaclio-gsheets/internal/ui"
)

// newSheetsClient is a seam for tests.
var newSheetsClient = func(ctx context.Context, flags *RootFlags) (*gsheets.Client, error) {
	return gsheets.NewClient(ctx, gsheets.WithTokenFile(flags.TokenFile))
}

type GetCmd struct {
	URL                  string `arg:"" name:"url" help:"Worksheet URL (gsheet://{spreadsheet_id}/{sheet_name})"`
	File                 string `name:"file" help:"Write CSV to a file instead of stdout" placeholder:"PATH"`
	IncludeHiddenRows    bool   `name:"include-hidden-rows" default:"true" negatable:"" help:"Include rows hidden in the sheet"`
	IncludeHiddenColumns bool   `name:"include-hidden-columns" default:"true" negatable:"" help:"Include columns hidden in the sheet"`
}

func (c *GetCmd) Run(ctx context.Context, kctx *kong.Context, flags *RootFlags) error {
	u := ui.FromContext(ctx)

	sheetURL, err := gsheets.ParseURL(strings.TrimSpace(c.URL))
	if err != nil {
		return usage(err.Error())
	}

	// Flags win over URL query options when given explicitly.
	if flagProvided(kctx, "include-hidden-rows") {
		sheetURL.IncludeHiddenRows = c.IncludeHiddenRows
	}

	if flagProvided(kctx, "include-hidden-columns") {
		sheetURL.IncludeHiddenColumns = c.IncludeHiddenColumns
	}

	client, err := newSheetsClient(ctx, flags)
	if err != nil {
		return err
	}

	grid, err := client.Values(ctx, sheetURL)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{
			"spreadsheetId": sheetURL.SpreadsheetID,
			"range":         sheetURL.Range,
			"values":        grid,
		})
	}

	b, err := gsheets.EncodeCSV(grid)
	if err != nil {
		return err
	}

	if c.File == "" {
		_, err := os.Stdout.Write(b)
		return err
	}

	if err := writeFileAtomic(c.File, b); err != nil {
		return err
	}

	u.Err().Successf("Retrieved %s to %s", c.URL, c.File)

	return nil
}

// writeFileAtomic stages the payload in a temp file next to the target
// and renames it into place.
func writeFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gsheet-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit output file: %w", err)
	}

	return nil
}
