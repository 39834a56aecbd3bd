package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rbright/vox/internal/gesture/hook"
	"github.com/rbright/vox/internal/hypr"
	"github.com/rbright/vox/internal/ipc"
	"github.com/rbright/vox/internal/logging"
	"github.com/rbright/vox/internal/session"
	"github.com/rbright/vox/internal/settings"
)

// commandRun owns the runtime socket and runs the controller until ctx ends.
func (r Runner) commandRun(ctx context.Context, configPath string, logs logging.Runtime, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		if !errors.Is(err, ipc.ErrAlreadyRunning) {
			logger.Error("acquire socket failed", "error", err.Error())
		}
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	store, err := settings.Open(configPath, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load settings failed", "error", err.Error())
		return 1
	}
	snap := store.Current()
	r.printWarnings(snap.Warnings, logger)
	logs.SetVerbose(snap.Config.Debug.Verbose)

	builder := newRuntimeBuilder(logger)
	controller, err := session.NewController(session.Options{
		Logger: logger,
		Focus:  hypr.FocusedApp,
		Build:  builder.build,
		Reload: func() error {
			_, err := store.Reload()
			return err
		},
	}, snap)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("start controller failed", "error", err.Error())
		return 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()
	go forwardSnapshots(runCtx, updates, controller, logs)
	go reloadOnHangup(runCtx, store, logger)
	go hook.New(logger).Run(runCtx, controller.ObserveFlags)

	serveErr := make(chan error, 1)
	go func() { serveErr <- ipc.Serve(runCtx, listener, controller) }()

	controllerDone := make(chan error, 1)
	go func() { controllerDone <- controller.Run(runCtx) }()

	logger.Info("daemon started",
		"socket", socketPath,
		"config", snap.Path,
		"trigger", snap.Config.Gesture.Trigger,
		"modifier", snap.Config.Gesture.Modifier,
	)

	var failure error
	select {
	case <-ctx.Done():
		cancel()
		failure = <-serveErr
	case failure = <-serveErr:
		cancel()
	}
	<-controllerDone

	if failure != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", failure)
		logger.Error("ipc server failed", "error", failure.Error())
		return 1
	}
	logger.Info("daemon stopped")
	return 0
}

func forwardSnapshots(ctx context.Context, updates <-chan settings.Snapshot, controller *session.Controller, logs logging.Runtime) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			logs.SetVerbose(snap.Config.Debug.Verbose)
			controller.Apply(snap)
		}
	}
}

func reloadOnHangup(ctx context.Context, store *settings.Store, logger *slog.Logger) {
	hangups := make(chan os.Signal, 1)
	signal.Notify(hangups, syscall.SIGHUP)
	defer signal.Stop(hangups)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hangups:
			if _, err := store.Reload(); err != nil {
				logger.Warn("reload on SIGHUP failed", "error", err.Error())
			}
		}
	}
}
