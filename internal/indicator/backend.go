package indicator

import (
	"context"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/rbright/vox/internal/hypr"
)

func (n *Notifier) backend() string {
	return strings.ToLower(strings.TrimSpace(n.cfg.Backend))
}

func (n *Notifier) appName() string {
	if name := strings.TrimSpace(n.cfg.DesktopAppName); name != "" {
		return name
	}
	return "vox"
}

func (n *Notifier) notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	switch n.backend() {
	case "desktop":
		return n.notifyDesktop(ctx, timeoutMS, text)
	case "beeep":
		return beeep.Notify(n.appName(), text, "")
	default:
		return hypr.Notify(ctx, icon, timeoutMS, color, text)
	}
}

func (n *Notifier) dismiss(ctx context.Context) error {
	switch n.backend() {
	case "desktop":
		return n.dismissDesktop(ctx)
	case "beeep":
		// beeep notifications expire on their own.
		return nil
	default:
		return hypr.DismissNotify(ctx)
	}
}

// notifyDesktop replaces the previous desktop notification in place.
func (n *Notifier) notifyDesktop(ctx context.Context, timeoutMS int, text string) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	id, err := desktopNotify(ctx, n.appName(), replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}
