package gsheets

import (
	"strings"
	"testing"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want URL
	}{
		{
			name: "sheet_name",
			raw:  "gsheet://dunder-mifflin/dwight-schrute-range",
			want: URL{
				SpreadsheetID:        "dunder-mifflin",
				Range:                "dwight-schrute-range",
				IncludeHiddenRows:    true,
				IncludeHiddenColumns: true,
			},
		},
		{
			name: "gsheets_scheme",
			raw:  "gsheets://dunder-mifflin/Sheet1",
			want: URL{
				SpreadsheetID:        "dunder-mifflin",
				Range:                "Sheet1",
				IncludeHiddenRows:    true,
				IncludeHiddenColumns: true,
			},
		},
		{
			name: "empty_range",
			raw:  "gsheet://dunder-mifflin",
			want: URL{
				SpreadsheetID:        "dunder-mifflin",
				IncludeHiddenRows:    true,
				IncludeHiddenColumns: true,
			},
		},
		{
			name: "a1_range",
			raw:  "gsheet://dunder-mifflin/Sheet1!A2:E",
			want: URL{
				SpreadsheetID:        "dunder-mifflin",
				Range:                "Sheet1!A2:E",
				IncludeHiddenRows:    true,
				IncludeHiddenColumns: true,
			},
		},
		{
			name: "hidden_options",
			raw:  "gsheet://dunder-mifflin/Sheet1?include_hidden_rows=false&include_hidden_columns=false",
			want: URL{
				SpreadsheetID: "dunder-mifflin",
				Range:         "Sheet1",
			},
		},
		{
			name: "hidden_options_explicit_true",
			raw:  "gsheet://dunder-mifflin/Sheet1?include_hidden_rows=true",
			want: URL{
				SpreadsheetID:        "dunder-mifflin",
				Range:                "Sheet1",
				IncludeHiddenRows:    true,
				IncludeHiddenColumns: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			if err != nil {
				t.Fatalf("ParseURL(%q): %v", tt.raw, err)
			}

			if got != tt.want {
				t.Fatalf("ParseURL(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseURL_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "wrong_scheme", raw: "https://docs.google.com/spreadsheets/d/abc", want: "unsupported scheme"},
		{name: "no_scheme", raw: "dunder-mifflin/Sheet1", want: "unsupported scheme"},
		{name: "missing_id", raw: "gsheet:///Sheet1", want: "missing spreadsheet id"},
		{name: "bad_bool", raw: "gsheet://id/Sheet1?include_hidden_rows=maybe", want: "include_hidden_rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseURL(tt.raw); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q error, got: %v", tt.want, err)
			}
		})
	}
}

func TestURL_String(t *testing.T) {
	u := URL{
		SpreadsheetID:        "dunder-mifflin",
		Range:                "Sheet1",
		IncludeHiddenRows:    false,
		IncludeHiddenColumns: true,
	}

	got := u.String()
	if !strings.HasPrefix(got, "gsheet://dunder-mifflin/Sheet1") {
		t.Fatalf("unexpected url: %q", got)
	}

	if !strings.Contains(got, "include_hidden_rows=false") {
		t.Fatalf("expected hidden rows opt-out in %q", got)
	}

	roundTrip, err := ParseURL(got)
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}

	if roundTrip != u {
		t.Fatalf("round trip mismatch: %#v != %#v", roundTrip, u)
	}
}

func TestSchemes(t *testing.T) {
	got := Schemes()
	if len(got) != 2 || got[0] != "gsheet" || got[1] != "gsheets" {
		t.Fatalf("unexpected schemes: %#v", got)
	}
}
