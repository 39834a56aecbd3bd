package output

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/vox/internal/config"
)

const (
	clipboardTimeout = 2 * time.Second
	pasteTimeout     = 1200 * time.Millisecond
)

// Injector delivers text: clipboard first, then a paste after a settle delay.
type Injector struct {
	clipboard Clipboard
	paster    Paster
	settle    time.Duration
	logger    *slog.Logger

	afterFunc func(time.Duration, func())
}

// NewInjector builds an Injector. A nil paster disables the keystroke.
func NewInjector(clip Clipboard, paster Paster, settle time.Duration, logger *slog.Logger) *Injector {
	return &Injector{
		clipboard: clip,
		paster:    paster,
		settle:    settle,
		logger:    logger,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// FromConfig builds an Injector from the clipboard and paste sections.
func FromConfig(cfg config.Config, logger *slog.Logger) (*Injector, error) {
	var clip Clipboard
	switch strings.ToLower(cfg.Clipboard.Backend) {
	case "system":
		clip = SystemClipboard{}
	case "command":
		clip = CommandClipboard{Argv: cfg.Clipboard.Command.Argv}
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", cfg.Clipboard.Backend)
	}

	var paster Paster
	if cfg.Paste.Enable {
		switch strings.ToLower(cfg.Paste.Backend) {
		case "hypr":
			paster = HyprPaster{Shortcut: cfg.Paste.Shortcut}
		case "command":
			paster = CommandPaster{Argv: cfg.Paste.Command.Argv}
		case "keys":
			paster = &KeysPaster{}
		default:
			return nil, fmt.Errorf("unknown paste backend %q", cfg.Paste.Backend)
		}
	}

	settle := time.Duration(cfg.Paste.SettleMS) * time.Millisecond
	return NewInjector(clip, paster, settle, logger), nil
}

// Deliver returns immediately. done runs exactly once, after the paste was
// posted (or skipped), with the clipboard error if the write failed. Paste
// failures are logged and leave the clipboard set.
func (i *Injector) Deliver(ctx context.Context, text string, done func(error)) {
	go func() {
		clipCtx, cancel := context.WithTimeout(ctx, clipboardTimeout)
		err := i.clipboard.Write(clipCtx, text)
		cancel()
		if err != nil {
			done(fmt.Errorf("set clipboard: %w", err))
			return
		}
		if i.paster == nil {
			done(nil)
			return
		}

		i.afterFunc(i.settle, func() {
			pasteCtx, cancel := context.WithTimeout(ctx, pasteTimeout)
			defer cancel()
			if err := i.paster.Paste(pasteCtx); err != nil && i.logger != nil {
				i.logger.Error("paste dispatch failed; clipboard remains set", "error", err.Error())
			}
			done(nil)
		})
	}()
}
