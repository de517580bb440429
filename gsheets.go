// Package gsheets reads and writes Google Sheets worksheets as CSV byte
// streams.
//
// A worksheet is addressed by a gsheet:// URL:
//
//	gsheet://{spreadsheet_id}/{sheet_or_range}
//
// The host is the spreadsheet id and the path is an A1-notation range,
// usually just a sheet name. Hidden rows and columns are included by
// default and can be excluded per URL:
//
//	gsheet://1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/Sheet1?include_hidden_rows=false
//
// Basic usage:
//
//	client, err := gsheets.NewClient(ctx)
//	if err != nil { ... }
//	rc, err := client.OpenReader(ctx, "gsheet://1BxiMVs.../Sheet1")
//	if err != nil { ... }
//	defer rc.Close()
//	records, err := csv.NewReader(rc).ReadAll()
//
// Streams opened by the client carry plain CSV, so downstream consumers
// (csv readers, dataframe loaders) need no knowledge of the Sheets API.
// A URL-dispatch host can mount the adapter through the Opener interface.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Schemes returns the URL schemes handled by this adapter.
func Schemes() []string {
	return []string{"gsheet", "gsheets"}
}

// Opener is the surface a URL-dispatch host needs to mount the adapter.
// *Client satisfies it.
type Opener interface {
	OpenReader(ctx context.Context, rawURL string) (io.ReadCloser, error)
	OpenWriter(ctx context.Context, rawURL string) (io.WriteCloser, error)
}

var (
	errMissingSpreadsheetID = errors.New("missing spreadsheet id")
	errUnsupportedScheme    = errors.New("unsupported scheme (expected gsheet:// or gsheets://)")
)

// URL identifies a worksheet and the per-call read options.
type URL struct {
	SpreadsheetID string
	// Range is an A1-notation range, typically just a sheet name. Empty
	// means the service default (the first sheet).
	Range string

	IncludeHiddenRows    bool
	IncludeHiddenColumns bool
}

// ParseURL parses a gsheet:// URL into its descriptor. Hidden rows and
// columns are included unless the query string opts out.
func ParseURL(raw string) (URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("parse sheet url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "gsheet" && scheme != "gsheets" {
		return URL{}, fmt.Errorf("%w: %q", errUnsupportedScheme, parsed.Scheme)
	}

	if parsed.Host == "" {
		return URL{}, fmt.Errorf("%w: %q", errMissingSpreadsheetID, raw)
	}

	u := URL{
		SpreadsheetID:        parsed.Host,
		Range:                strings.TrimPrefix(parsed.Path, "/"),
		IncludeHiddenRows:    true,
		IncludeHiddenColumns: true,
	}

	q := parsed.Query()

	if v, err := queryBool(q, "include_hidden_rows"); err != nil {
		return URL{}, err
	} else if v != nil {
		u.IncludeHiddenRows = *v
	}

	if v, err := queryBool(q, "include_hidden_columns"); err != nil {
		return URL{}, err
	} else if v != nil {
		u.IncludeHiddenColumns = *v
	}

	return u, nil
}

// String renders the descriptor back into URL form.
func (u URL) String() string {
	out := url.URL{
		Scheme: "gsheet",
		Host:   u.SpreadsheetID,
		Path:   "/" + u.Range,
	}

	q := url.Values{}
	if !u.IncludeHiddenRows {
		q.Set("include_hidden_rows", "false")
	}

	if !u.IncludeHiddenColumns {
		q.Set("include_hidden_columns", "false")
	}
	out.RawQuery = q.Encode()

	return out.String()
}

func queryBool(q url.Values, key string) (*bool, error) {
	if !q.Has(key) {
		return nil, nil
	}

	v, err := strconv.ParseBool(q.Get(key))
	if err != nil {
		return nil, fmt.Errorf("invalid %s=%q: %w", key, q.Get(key), err)
	}

	return &v, nil
}
