// Package app dispatches vox commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rbright/vox/internal/audio"
	"github.com/rbright/vox/internal/cli"
	"github.com/rbright/vox/internal/config"
	"github.com/rbright/vox/internal/doctor"
	"github.com/rbright/vox/internal/ipc"
	"github.com/rbright/vox/internal/logging"
	"github.com/rbright/vox/internal/version"
)

const forwardTimeout = 2 * time.Second

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("vox"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("vox"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	if parsed.Forwarded() {
		return r.commandForward(ctx, string(parsed.Command))
	}

	logRuntime, err := logging.New(false)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}
	logger.Info("command start", "command", parsed.Command, "log", logRuntime.Path)

	switch parsed.Command {
	case cli.CommandRun:
		return r.commandRun(ctx, parsed.ConfigPath, logRuntime, logger)
	case cli.CommandDoctor:
		return r.commandDoctor(parsed.ConfigPath, logger)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDoctor(configPath string, logger *slog.Logger) int {
	loaded, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	r.printWarnings(loaded.Warnings, logger)

	report := doctor.Run(loaded)
	fmt.Fprintln(r.Stdout, report.String())
	if report.OK() {
		return 0
	}
	return 1
}

func (r Runner) printWarnings(warnings []config.Warning, logger *slog.Logger) {
	for _, w := range warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			yesNo(device.Available),
			yesNo(device.Muted),
		)
	}
	return 0
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// commandForward sends status or reload to the running daemon.
func (r Runner) commandForward(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, err := ipc.Forward(ctx, socketPath, command, forwardTimeout)
	switch {
	case errors.Is(err, ipc.ErrNotRunning):
		if command == ipc.CommandStatus {
			fmt.Fprintln(r.Stdout, "not running")
			return 3
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	case err != nil:
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	case !resp.OK:
		fmt.Fprintf(r.Stderr, "error: %s\n", resp.Error)
		return 1
	}

	if command == ipc.CommandStatus {
		fmt.Fprintln(r.Stdout, formatStatus(resp))
		return 0
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func formatStatus(resp ipc.Response) string {
	state := resp.State
	if state == "" {
		state = "idle"
	}
	if resp.PendingPaste {
		state += " (paste pending)"
	}
	return state
}
