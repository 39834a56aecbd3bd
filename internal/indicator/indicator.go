// Package indicator shows recording state notifications and plays audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/vox/internal/config"
)

const (
	iconWarning = 0
	iconInfo    = 1
	iconError   = 3

	colorRecording = "rgb(89b4fa)"
	colorNotice    = "rgb(f9e2af)"
	colorError     = "rgb(f38ba8)"

	// recordingTimeoutMS keeps the recording notice up until it is dismissed.
	recordingTimeoutMS = 300000

	recordingText = "Recording…"
	errorText     = "Dictation failed"
)

// Notifier routes indicator output to the configured backend.
type Notifier struct {
	cfg    config.IndicatorConfig
	logger *slog.Logger
	play   func([]int16) error

	mu                    sync.Mutex
	desktopNotificationID uint32
	fileCues              map[cueKind][]int16
	soundMu               sync.Mutex
}

func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		play:     playPCM,
		fileCues: make(map[cueKind][]int16),
	}
}

// RecordingStarted shows the recording notice and plays the start cue.
func (n *Notifier) RecordingStarted(ctx context.Context) {
	n.playCue(cueStart)
	n.show(ctx, iconInfo, recordingTimeoutMS, colorRecording, recordingText)
}

// RecordingStopped dismisses the recording notice.
func (n *Notifier) RecordingStopped(ctx context.Context) {
	n.playCue(cueStop)
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, n.dismiss)
}

// Delivered plays the completion cue once text has been pasted.
func (n *Notifier) Delivered(context.Context) {
	n.playCue(cueComplete)
}

// Error shows a short-lived error notice.
func (n *Notifier) Error(ctx context.Context, text string) {
	n.playCue(cueError)
	if strings.TrimSpace(text) == "" {
		text = errorText
	}
	n.show(ctx, iconError, timeoutOr(n.cfg.ErrorTimeoutMS, 1600), colorError, text)
}

// Notice shows an informational message without a cue.
func (n *Notifier) Notice(ctx context.Context, text string) {
	n.show(ctx, iconWarning, timeoutOr(n.cfg.NoticeTimeoutMS, 4000), colorNotice, text)
}

func (n *Notifier) show(ctx context.Context, icon int, timeoutMS int, color string, text string) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, icon, timeoutMS, color, text)
	})
}

func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.debug("indicator dispatch failed", err)
	}
}

func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	go func() {
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := n.play(n.cueSamples(kind)); err != nil {
			n.debug("indicator audio cue failed", err)
		}
	}()
}

func (n *Notifier) debug(msg string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(msg, "error", err.Error())
}

func timeoutOr(ms int, fallback int) int {
	if ms <= 0 {
		return fallback
	}
	return ms
}
