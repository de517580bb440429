package main

import (
	"errors"
	"os"

	"github.com/octoenergy/tentaclio-gsheets/internal/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		os.Exit(1)
	}
}
