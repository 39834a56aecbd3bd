package output

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"

	"github.com/rbright/vox/internal/hypr"
)

// Paster posts one synthetic paste keystroke to the focused window.
type Paster interface {
	Paste(ctx context.Context) error
}

// HyprPaster sends the shortcut to the active window through hyprctl.
type HyprPaster struct {
	Shortcut string
}

func (p HyprPaster) Paste(ctx context.Context) error {
	window, err := activeWindowWithRetry(ctx, 5, 10*time.Millisecond)
	if err != nil {
		return err
	}
	payload, err := buildPasteShortcut(p.Shortcut, window.Address)
	if err != nil {
		return err
	}
	return hypr.SendShortcut(ctx, payload)
}

// CommandPaster runs a user-supplied command, e.g. `wtype -M ctrl v -m ctrl`.
type CommandPaster struct {
	Argv []string
}

func (p CommandPaster) Paste(ctx context.Context) error {
	return runCommandWithInput(ctx, p.Argv, "")
}

// KeysPaster emits Ctrl+V through a virtual uinput keyboard. The device is
// created on first use and reused afterwards.
type KeysPaster struct {
	once sync.Once
	kb   keybd_event.KeyBonding
	err  error
}

func (p *KeysPaster) Paste(context.Context) error {
	p.once.Do(func() {
		p.kb, p.err = keybd_event.NewKeyBonding()
		if p.err != nil {
			p.err = fmt.Errorf("create virtual keyboard: %w", p.err)
			return
		}
		p.kb.SetKeys(keybd_event.VK_V)
		p.kb.HasCTRL(true)
	})
	if p.err != nil {
		return p.err
	}
	return p.kb.Launching()
}

func buildPasteShortcut(shortcut string, windowAddress string) (string, error) {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" {
		return "", errors.New("paste shortcut cannot be empty")
	}
	address := strings.TrimSpace(windowAddress)
	if address == "" {
		return "", errors.New("active window address is required")
	}
	return shortcut + ",address:" + address, nil
}

func activeWindowWithRetry(ctx context.Context, attempts int, delay time.Duration) (hypr.ActiveWindow, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		window, err := hypr.QueryActiveWindow(ctx)
		if err == nil {
			return window, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return hypr.ActiveWindow{}, ctx.Err()
		case <-time.After(delay):
		}
	}
	return hypr.ActiveWindow{}, fmt.Errorf("resolve active window: %w", lastErr)
}
