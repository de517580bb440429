package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/octoenergy/tentaclio-gsheets/internal/ui"
)

func PromptLine(ctx context.Context, prompt string) (string, error) {
	return PromptLineFrom(ctx, prompt, os.Stdin)
}

func PromptLineFrom(ctx context.Context, prompt string, r io.Reader) (string, error) {
	if u := ui.FromContext(ctx); u != nil {
		u.Err().Print(prompt)
	} else {
		_, _ = fmt.Fprint(os.Stderr, prompt)
	}

	return ReadLine(r)
}

// ReadLine reads a single line and trims the trailing newline. EOF with
// a non-empty line is not an error.
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")

	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read line: %w", err)
	}

	return line, nil
}
