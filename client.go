package gsheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"google.golang.org/api/sheets/v4"

	"github.com/octoenergy/tentaclio-gsheets/internal/googleapi"
)

var errWriterClosed = errors.New("writer already closed")

// Client wraps a Sheets service and exposes worksheets as CSV streams.
type Client struct {
	svc *sheets.Service
}

type clientOptions struct {
	tokenFile  string
	httpClient *http.Client
	endpoint   string
	noAuth     bool
}

// Option configures NewClient.
type Option func(*clientOptions)

// WithTokenFile overrides the token file path for this client.
func WithTokenFile(path string) Option {
	return func(o *clientOptions) { o.tokenFile = path }
}

// WithHTTPClient supplies a pre-built HTTP client, bypassing the OAuth
// transport. Intended for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithEndpoint points the client at an alternate API endpoint. Intended
// for tests.
func WithEndpoint(url string) Option {
	return func(o *clientOptions) { o.endpoint = url }
}

// WithoutAuthentication disables OAuth entirely. Intended for tests.
func WithoutAuthentication() Option {
	return func(o *clientOptions) { o.noAuth = true }
}

// NewClient builds a Sheets-backed client. Without overrides it
// authenticates with the token file, refreshing and re-saving the token
// as needed.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	svc, err := googleapi.NewSheets(ctx, googleapi.Options{
		TokenFile:  o.tokenFile,
		HTTPClient: o.httpClient,
		Endpoint:   o.endpoint,
		NoAuth:     o.noAuth,
	})
	if err != nil {
		return nil, err
	}

	return &Client{svc: svc}, nil
}

// NewClientWithService wraps an existing Sheets service.
func NewClientWithService(svc *sheets.Service) *Client {
	return &Client{svc: svc}
}

// Values fetches the cell grid for u, dropping hidden rows and columns
// when the descriptor opts out of them.
func (c *Client) Values(ctx context.Context, u URL) ([][]string, error) {
	slog.Debug("fetching sheet values", "spreadsheet", u.SpreadsheetID, "range", u.Range)

	resp, err := c.svc.Spreadsheets.Values.Get(u.SpreadsheetID, u.Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch values for %s: %w", u.SpreadsheetID, err)
	}

	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellString(cell)
		}
		grid = append(grid, cells)
	}

	if u.IncludeHiddenRows && u.IncludeHiddenColumns {
		return grid, nil
	}

	meta, err := c.hidden(ctx, u)
	if err != nil {
		return nil, err
	}

	return dropHidden(grid, meta, u), nil
}

// Update pushes a cell grid to u via values.update with USER_ENTERED
// input semantics.
func (c *Client) Update(ctx context.Context, u URL, grid [][]string) (*sheets.UpdateValuesResponse, error) {
	slog.Debug("updating sheet values", "spreadsheet", u.SpreadsheetID, "range", u.Range, "rows", len(grid))

	values := make([][]any, len(grid))
	for i, row := range grid {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	vr := &sheets.ValueRange{Values: values}

	resp, err := c.svc.Spreadsheets.Values.Update(u.SpreadsheetID, u.Range, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("update values for %s: %w", u.SpreadsheetID, err)
	}

	return resp, nil
}

// SheetInfo describes one tab of a spreadsheet.
type SheetInfo struct {
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount"`
	ColumnCount int64  `json:"columnCount"`
	Hidden      bool   `json:"hidden,omitempty"`
}

// SpreadsheetInfo describes a spreadsheet document.
type SpreadsheetInfo struct {
	SpreadsheetID string      `json:"spreadsheetId"`
	Title         string      `json:"title"`
	Locale        string      `json:"locale,omitempty"`
	TimeZone      string      `json:"timeZone,omitempty"`
	URL           string      `json:"url,omitempty"`
	Sheets        []SheetInfo `json:"sheets"`
}

// Metadata fetches document-level properties for u.
func (c *Client) Metadata(ctx context.Context, u URL) (*SpreadsheetInfo, error) {
	resp, err := c.svc.Spreadsheets.Get(u.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet %s: %w", u.SpreadsheetID, err)
	}

	info := &SpreadsheetInfo{
		SpreadsheetID: resp.SpreadsheetId,
		URL:           resp.SpreadsheetUrl,
	}
	if resp.Properties != nil {
		info.Title = resp.Properties.Title
		info.Locale = resp.Properties.Locale
		info.TimeZone = resp.Properties.TimeZone
	}

	for _, sheet := range resp.Sheets {
		if sheet.Properties == nil {
			continue
		}
		si := SheetInfo{
			Title:  sheet.Properties.Title,
			Index:  sheet.Properties.Index,
			Hidden: sheet.Properties.Hidden,
		}
		if gp := sheet.Properties.GridProperties; gp != nil {
			si.RowCount = gp.RowCount
			si.ColumnCount = gp.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}

	return info, nil
}

// OpenReader fetches the worksheet behind rawURL and returns its CSV
// encoding as a stream.
func (c *Client) OpenReader(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	grid, err := c.Values(ctx, u)
	if err != nil {
		return nil, err
	}

	b, err := EncodeCSV(grid)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

// OpenWriter returns a writer that buffers CSV bytes and pushes the
// parsed grid to the worksheet on Close.
func (c *Client) OpenWriter(ctx context.Context, rawURL string) (io.WriteCloser, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	return &sheetWriter{ctx: ctx, client: c, url: u}, nil
}

type sheetWriter struct {
	ctx    context.Context
	client *Client
	url    URL

	buf      bytes.Buffer
	closed   bool
	closeErr error
}

func (w *sheetWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errWriterClosed
	}

	return w.buf.Write(p)
}

// Close parses the buffered CSV and pushes it to the worksheet. A second
// Close returns the first result.
func (w *sheetWriter) Close() error {
	if w.closed {
		return w.closeErr
	}
	w.closed = true

	grid, err := DecodeCSV(w.buf.Bytes())
	if err != nil {
		w.closeErr = err
		return err
	}

	if _, err := w.client.Update(w.ctx, w.url, grid); err != nil {
		w.closeErr = err
		return err
	}

	return nil
}

type hiddenMeta struct {
	rows []bool
	cols []bool
}

// hidden fetches the per-row/per-column hiddenByUser flags for the range.
func (c *Client) hidden(ctx context.Context, u URL) (hiddenMeta, error) {
	call := c.svc.Spreadsheets.Get(u.SpreadsheetID).
		IncludeGridData(true).
		Fields("sheets(data(rowMetadata(hiddenByUser),columnMetadata(hiddenByUser)))")
	if u.Range != "" {
		call = call.Ranges(u.Range)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return hiddenMeta{}, fmt.Errorf("fetch grid metadata for %s: %w", u.SpreadsheetID, err)
	}

	if len(resp.Sheets) == 0 || len(resp.Sheets[0].Data) == 0 {
		slog.Warn("spreadsheet has no grid metadata", "spreadsheet", u.SpreadsheetID)
		return hiddenMeta{}, nil
	}

	data := resp.Sheets[0].Data[0]

	meta := hiddenMeta{
		rows: make([]bool, len(data.RowMetadata)),
		cols: make([]bool, len(data.ColumnMetadata)),
	}
	for i, m := range data.RowMetadata {
		meta.rows[i] = m.HiddenByUser
	}

	for i, m := range data.ColumnMetadata {
		meta.cols[i] = m.HiddenByUser
	}

	return meta, nil
}

// dropHidden removes rows and columns flagged hidden. Cells or rows
// beyond the metadata are kept: absent metadata means visible.
func dropHidden(grid [][]string, meta hiddenMeta, u URL) [][]string {
	out := grid

	if !u.IncludeHiddenColumns {
		filtered := make([][]string, 0, len(out))
		for _, row := range out {
			cells := make([]string, 0, len(row))
			for i, cell := range row {
				if i < len(meta.cols) && meta.cols[i] {
					continue
				}
				cells = append(cells, cell)
			}
			filtered = append(filtered, cells)
		}
		out = filtered
	}

	if !u.IncludeHiddenRows {
		filtered := make([][]string, 0, len(out))
		for i, row := range out {
			if i < len(meta.rows) && meta.rows[i] {
				continue
			}
			filtered = append(filtered, row)
		}
		out = filtered
	}

	return out
}

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
