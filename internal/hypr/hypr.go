// Package hypr wraps the hyprctl queries and dispatches vox relies on.
package hypr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNotRunning is returned when no Hyprland instance is reachable from this session.
var ErrNotRunning = errors.New("hyprland instance signature not set")

const defaultNotifyColor = "rgb(89b4fa)"

// Running reports whether the session advertises a Hyprland instance.
func Running() bool {
	return strings.TrimSpace(os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")) != ""
}

// SendShortcut posts a literal sendshortcut payload such as "CTRL,V,address:0x1".
func SendShortcut(ctx context.Context, payload string) error {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return errors.New("sendshortcut requires a non-empty payload")
	}
	_, err := hyprctl(ctx, "--quiet", "dispatch", "sendshortcut", payload)
	return err
}

// Notify shows a compositor notification.
func Notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if strings.TrimSpace(color) == "" {
		color = defaultNotifyColor
	}
	_, err := hyprctl(ctx,
		"--quiet", "dispatch", "notify",
		strconv.Itoa(icon), strconv.Itoa(timeoutMS), color, text,
	)
	return err
}

// DismissNotify clears every visible compositor notification.
func DismissNotify(ctx context.Context) error {
	_, err := hyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
	return err
}

func hyprctl(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err == nil {
		return out, nil
	}
	if detail := strings.TrimSpace(string(out)); detail != "" {
		return nil, fmt.Errorf("hyprctl %s: %w (%s)", strings.Join(args, " "), err, detail)
	}
	return nil, fmt.Errorf("hyprctl %s: %w", strings.Join(args, " "), err)
}
