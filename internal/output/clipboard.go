// Package output puts delivered text on the clipboard and posts the paste keystroke.
package output

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard replaces the clipboard contents with text.
type Clipboard interface {
	Write(ctx context.Context, text string) error
}

// CommandClipboard pipes text into an external tool such as wl-copy.
type CommandClipboard struct {
	Argv []string
}

func (c CommandClipboard) Write(ctx context.Context, text string) error {
	return runCommandWithInput(ctx, c.Argv, text)
}

// SystemClipboard writes through atotto/clipboard, which shells out to
// wl-copy, xclip, or xsel depending on what is installed.
type SystemClipboard struct{}

func (SystemClipboard) Write(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return errors.New("no supported clipboard utility found")
	}
	return clipboard.WriteAll(text)
}

func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return errors.New("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if detail := strings.TrimSpace(string(out)); detail != "" {
			return fmt.Errorf("run %s: %w (%s)", argv[0], err, detail)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
