package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	gsheets "github.com/octoenergy/tentaclio-gsheets"
	"github.com/octoenergy/tentaclio-gsheets/internal/outfmt"
	"github.com/octoenergy/tentaclio-gsheets/internal/ui"
)

type PutCmd struct {
	URL  string `arg:"" name:"url" help:"Worksheet URL (gsheet://{spreadsheet_id}/{sheet_name})"`
	File string `name:"file" help:"Read CSV from a file instead of stdin" placeholder:"PATH"`
}

func (c *PutCmd) Run(ctx context.Context, flags *RootFlags) error {
	u := ui.FromContext(ctx)

	sheetURL, err := gsheets.ParseURL(strings.TrimSpace(c.URL))
	if err != nil {
		return usage(err.Error())
	}

	var b []byte
	if c.File == "" {
		if b, err = io.ReadAll(os.Stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		if b, err = os.ReadFile(c.File); err != nil { //nolint:gosec // user-provided path
			return fmt.Errorf("read %s: %w", c.File, err)
		}
	}

	grid, err := gsheets.DecodeCSV(b)
	if err != nil {
		return err
	}

	client, err := newSheetsClient(ctx, flags)
	if err != nil {
		return err
	}

	resp, err := client.Update(ctx, sheetURL, grid)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{
			"spreadsheetId": sheetURL.SpreadsheetID,
			"updatedRange":  resp.UpdatedRange,
			"updatedRows":   resp.UpdatedRows,
			"updatedCells":  resp.UpdatedCells,
		})
	}

	u.Err().Successf("Updated %d cells in %s", resp.UpdatedCells, c.URL)

	return nil
}
