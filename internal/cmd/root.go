// Package cmd implements the tentaclio-gsheets command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/octoenergy/tentaclio-gsheets/internal/config"
	"github.com/octoenergy/tentaclio-gsheets/internal/errfmt"
	"github.com/octoenergy/tentaclio-gsheets/internal/outfmt"
	"github.com/octoenergy/tentaclio-gsheets/internal/ui"
)

type RootFlags struct {
	Color     string `name:"color" help:"Color output: auto|always|never" default:"auto" env:"TENTACLIO__GSHEETS_COLOR"`
	JSON      bool   `name:"json" help:"JSON output" env:"TENTACLIO__GSHEETS_JSON"`
	Plain     bool   `name:"plain" help:"Plain output" env:"TENTACLIO__GSHEETS_PLAIN"`
	Debug     bool   `name:"debug" help:"Debug logging"`
	TokenFile string `name:"token-file" help:"Token file path" env:"TENTACLIO__GSHEETS_TOKEN_FILE" placeholder:"PATH"`
}

type CLI struct {
	RootFlags

	Credentials CredentialsCmd `cmd:"" name:"credentials" help:"Manage the Google OAuth client credentials"`
	Token       TokenCmd       `cmd:"" name:"token" help:"Manage the Sheets token file"`
	Get         GetCmd         `cmd:"" name:"get" help:"Download a gsheet:// worksheet as CSV"`
	Put         PutCmd         `cmd:"" name:"put" help:"Upload CSV to a gsheet:// worksheet"`
	Metadata    MetadataCmd    `cmd:"" name:"metadata" help:"Show spreadsheet metadata"`
}

// Execute parses args and runs the selected command.
func Execute(args []string) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name(config.AppName),
		kong.Description("Read and write Google Sheets as CSV streams via gsheet:// URLs."),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	mode, err := outfmt.FromFlags(cli.JSON, cli.Plain)
	if err != nil {
		return err
	}

	color := cli.Color
	if mode.JSON {
		color = "never"
	}

	u, err := ui.New(ui.Options{Stdout: os.Stdout, Stderr: os.Stderr, Color: color})
	if err != nil {
		return err
	}

	ctx := outfmt.WithMode(context.Background(), mode)
	ctx = ui.WithUI(ctx, u)

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.RootFlags)

	if runErr := kctx.Run(); runErr != nil {
		u.Err().Error(errfmt.Format(runErr))
		return runErr
	}

	return nil
}

func warnf(ctx context.Context, format string, args ...any) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Errorf(format, args...)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}
