package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	gsheets "github.com/octoenergy/tentaclio-gsheets"
	"github.com/octoenergy/tentaclio-gsheets/internal/outfmt"
)

type MetadataCmd struct {
	URL string `arg:"" name:"url" help:"Worksheet URL (gsheet://{spreadsheet_id}/{sheet_name})"`
}

func (c *MetadataCmd) Run(ctx context.Context, flags *RootFlags) error {
	sheetURL, err := gsheets.ParseURL(strings.TrimSpace(c.URL))
	if err != nil {
		return usage(err.Error())
	}

	client, err := newSheetsClient(ctx, flags)
	if err != nil {
		return err
	}

	info, err := client.Metadata(ctx, sheetURL)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		return outfmt.WriteJSON(os.Stdout, info)
	}

	fmt.Printf("Title:    %s\n", info.Title)
	fmt.Printf("ID:       %s\n", info.SpreadsheetID)

	if info.Locale != "" {
		fmt.Printf("Locale:   %s\n", info.Locale)
	}

	if info.TimeZone != "" {
		fmt.Printf("TimeZone: %s\n", info.TimeZone)
	}
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tROWS\tCOLS\tHIDDEN")
	for _, sheet := range info.Sheets {
		hidden := ""
		if sheet.Hidden {
			hidden = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", sheet.Title, sheet.RowCount, sheet.ColumnCount, hidden)
	}

	return tw.Flush()
}
