// Package googleapi builds authenticated Sheets API services with the
// retry and reliability behavior shared by every call the adapter makes.
package googleapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
	"github.com/octoenergy/tentaclio-gsheets/internal/googleauth"
	"github.com/octoenergy/tentaclio-gsheets/internal/secrets"
)

const defaultHTTPTimeout = 30 * time.Second

var resolveClientCredentials = secrets.ResolveClientCredentials

// Options controls how the Sheets service is constructed. The zero
// value authenticates with the default token file.
type Options struct {
	// TokenFile overrides the token file path; empty means the
	// configured default.
	TokenFile string
	// HTTPClient bypasses the OAuth transport entirely (tests).
	HTTPClient *http.Client
	// Endpoint points at an alternate API endpoint (tests).
	Endpoint string
	// NoAuth disables authentication (tests).
	NoAuth bool
}

// NewSheets constructs a Sheets service. The production path wires the
// token-file oauth2 source through a TLS1.2+ transport with retry
// handling for rate limits and server errors.
func NewSheets(ctx context.Context, opts Options) (*sheets.Service, error) {
	clientOpts, err := clientOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return svc, nil
}

func clientOptions(ctx context.Context, opts Options) ([]option.ClientOption, error) {
	var out []option.ClientOption

	if opts.NoAuth {
		out = append(out, option.WithoutAuthentication())
	}

	switch {
	case opts.HTTPClient != nil:
		out = append(out, option.WithHTTPClient(opts.HTTPClient))
	case opts.NoAuth:
		// unauthenticated default transport
	default:
		c, err := authenticatedClient(ctx, opts.TokenFile)
		if err != nil {
			return nil, err
		}
		out = append(out, option.WithHTTPClient(c))
	}

	if opts.Endpoint != "" {
		out = append(out, option.WithEndpoint(opts.Endpoint))
	}

	return out, nil
}

func authenticatedClient(ctx context.Context, tokenFile string) (*http.Client, error) {
	if tokenFile == "" {
		tokenFile = config.TokenFile()
	}

	slog.Debug("building authenticated sheets client", "token_file", tokenFile)

	creds, err := resolveClientCredentials()
	if err != nil {
		return nil, err
	}

	// Ensure refresh-token exchanges don't hang forever.
	refreshCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: defaultHTTPTimeout})

	ts, err := googleauth.TokenSource(refreshCtx, tokenFile, creds)
	if err != nil {
		return nil, err
	}

	baseTransport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	return &http.Client{
		Transport: NewRetryTransport(&oauth2.Transport{
			Source: ts,
			Base:   baseTransport,
		}),
		Timeout: defaultHTTPTimeout,
	}, nil
}
