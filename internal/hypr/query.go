package hypr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ActiveWindow is the subset of `hyprctl -j activewindow` vox reads.
type ActiveWindow struct {
	Address      string `json:"address"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	Title        string `json:"title"`
}

// AppID is the identifier used to pick a formatting category.
func (w ActiveWindow) AppID() string {
	if w.Class != "" {
		return strings.ToLower(w.Class)
	}
	return strings.ToLower(w.InitialClass)
}

type monitor struct {
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}

// QueryActiveWindow returns the focused client. A workspace with no client
// yields an empty address, which is reported as an error.
func QueryActiveWindow(ctx context.Context) (ActiveWindow, error) {
	var window ActiveWindow
	if err := queryJSON(ctx, "activewindow", &window); err != nil {
		return ActiveWindow{}, err
	}
	window.Address = strings.TrimSpace(window.Address)
	window.Class = strings.TrimSpace(window.Class)
	window.InitialClass = strings.TrimSpace(window.InitialClass)
	window.Title = strings.TrimSpace(window.Title)
	if window.Address == "" {
		return ActiveWindow{}, errors.New("hyprctl activewindow returned empty address")
	}
	return window, nil
}

// FocusedApp returns the active window's app id, or "" when nothing is focused.
func FocusedApp(ctx context.Context) (string, error) {
	window, err := QueryActiveWindow(ctx)
	if err != nil {
		return "", err
	}
	return window.AppID(), nil
}

// QueryFocusedMonitor returns the focused monitor, falling back to the first one.
func QueryFocusedMonitor(ctx context.Context) (string, error) {
	var monitors []monitor
	if err := queryJSON(ctx, "monitors", &monitors); err != nil {
		return "", err
	}
	if len(monitors) == 0 {
		return "", errors.New("hyprctl monitors returned no outputs")
	}
	for _, m := range monitors {
		if m.Focused {
			return strings.TrimSpace(m.Name), nil
		}
	}
	return strings.TrimSpace(monitors[0].Name), nil
}

func queryJSON(ctx context.Context, target string, into any) error {
	out, err := hyprctl(ctx, "-j", target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, into); err != nil {
		return fmt.Errorf("decode hyprctl %s json: %w", target, err)
	}
	return nil
}
