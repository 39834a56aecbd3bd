// Package doctor runs readiness diagnostics for config, desktop tools, audio,
// and the recognizer and formatter credentials.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/rbright/vox/internal/audio"
	"github.com/rbright/vox/internal/config"
	"github.com/rbright/vox/internal/deepgram"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded)}

	checks = append(checks, checkEnv("XDG_SESSION_TYPE", func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), "wayland")
	}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"))

	if usesHyprland(cfg) {
		checks = append(checks, checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
			return strings.TrimSpace(v) != ""
		}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"))
		checks = append(checks, checkBinary("hyprctl", "focus lookup and notifications use hyprctl"))
	}

	checks = append(checks, checkClipboard(cfg.Clipboard))
	if cfg.Paste.Enable {
		checks = append(checks, checkPaste(cfg.Paste))
	}

	checks = append(checks, checkAudioSelection(cfg))
	checks = append(checks, checkRecognizer(cfg))
	checks = append(checks, checkFormatter(cfg))

	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		message = fmt.Sprintf("%q not found; using defaults", loaded.Path)
	}
	if n := len(loaded.Warnings); n > 0 && loaded.Exists {
		message = fmt.Sprintf("%s (%d warnings)", message, n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

func usesHyprland(cfg config.Config) bool {
	return (cfg.Paste.Enable && cfg.Paste.Backend == "hypr") ||
		(cfg.Indicator.Enable && cfg.Indicator.Backend == "hypr")
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

func checkClipboard(cfg config.ClipboardConfig) Check {
	if cfg.Backend == "command" {
		return checkCommand(cfg.Command.Argv, "clipboard.command")
	}
	if clipboard.Unsupported {
		return Check{Name: "clipboard", Pass: false, Message: "no wl-copy, xclip, or xsel found in PATH"}
	}
	return Check{Name: "clipboard", Pass: true, Message: "system clipboard utility available"}
}

func checkPaste(cfg config.PasteConfig) Check {
	switch cfg.Backend {
	case "command":
		return checkCommand(cfg.Command.Argv, "paste.command")
	case "keys":
		f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
		if err != nil {
			return Check{Name: "paste.keys", Pass: false, Message: fmt.Sprintf("cannot open /dev/uinput: %v", err)}
		}
		_ = f.Close()
		return Check{Name: "paste.keys", Pass: true, Message: "/dev/uinput is writable"}
	default:
		return Check{Name: "paste.hypr", Pass: true, Message: fmt.Sprintf("shortcut %q via hyprctl", cfg.Shortcut)}
	}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

func checkRecognizer(cfg config.Config) Check {
	client := deepgram.New(deepgram.Config{Endpoint: cfg.Recognizer.Endpoint}, nil)
	if !client.Available() {
		return Check{Name: "recognizer", Pass: false, Message: fmt.Sprintf("endpoint %q is not a ws:// or wss:// URL", cfg.Recognizer.Endpoint)}
	}
	if cfg.Secrets.Recognizer() == "" {
		return Check{Name: "recognizer", Pass: false, Message: "VOX_RECOGNIZER_API_KEY (or DEEPGRAM_API_KEY) is not set"}
	}
	return Check{Name: "recognizer", Pass: true, Message: fmt.Sprintf("credential set for %s", cfg.Recognizer.Endpoint)}
}

// checkFormatter lists models at the configured base URL. A missing key is not
// a failure; dictation then always pastes the plain transcript.
func checkFormatter(cfg config.Config) Check {
	key := cfg.Secrets.Formatter()
	if key == "" {
		return Check{Name: "formatter", Pass: true, Message: "no VOX_FORMATTER_API_KEY; AI formatting disabled"}
	}

	url := strings.TrimRight(strings.TrimSpace(cfg.Formatter.BaseURL), "/") + "/models"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Check{Name: "formatter", Pass: false, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+key)

	client := http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Check{Name: "formatter", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Check{Name: "formatter", Pass: false, Message: fmt.Sprintf("HTTP %d: credential rejected by %s", resp.StatusCode, url)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Check{Name: "formatter", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url)}
	}
	return Check{Name: "formatter", Pass: true, Message: fmt.Sprintf("model %q at %s", cfg.Formatter.Model, cfg.Formatter.BaseURL)}
}
