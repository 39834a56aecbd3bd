package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var (
	clipboardBackends = []string{"command", "system"}
	pasteBackends     = []string{"hypr", "command", "keys"}
	indicatorBackends = []string{"hypr", "desktop", "beeep"}
	appCategories     = []string{"email", "message", "chat", "terminal", "default"}
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	var warnings []Warning

	endpoint, err := url.Parse(strings.TrimSpace(cfg.Recognizer.Endpoint))
	if err != nil || endpoint.Host == "" {
		return nil, fmt.Errorf("recognizer.endpoint must be an absolute URL")
	}
	if endpoint.Scheme != "ws" && endpoint.Scheme != "wss" {
		return nil, fmt.Errorf("recognizer.endpoint must use ws or wss")
	}
	if cfg.Recognizer.ConnectTimeoutMS <= 0 {
		return nil, fmt.Errorf("recognizer.connect_timeout_ms must be > 0")
	}
	if cfg.Recognizer.DrainTimeoutMS < 0 {
		return nil, fmt.Errorf("recognizer.drain_timeout_ms must be >= 0")
	}

	if cfg.Gesture.Trigger == "" {
		return nil, fmt.Errorf("gesture.trigger must not be empty")
	}
	if cfg.Gesture.Modifier == "" {
		return nil, fmt.Errorf("gesture.modifier must not be empty")
	}
	if strings.EqualFold(cfg.Gesture.Trigger, cfg.Gesture.Modifier) {
		return nil, fmt.Errorf("gesture.trigger and gesture.modifier must differ")
	}

	base, err := url.Parse(cfg.Formatter.BaseURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("formatter.base_url must be an http(s) URL")
	}
	if cfg.Formatter.Model == "" {
		return nil, fmt.Errorf("formatter.model must not be empty")
	}
	if cfg.Formatter.Temperature < 0 || cfg.Formatter.Temperature > 2 {
		return nil, fmt.Errorf("formatter.temperature must be within [0, 2]")
	}
	if cfg.Formatter.MaxTokens <= 0 {
		return nil, fmt.Errorf("formatter.max_tokens must be > 0")
	}
	if cfg.Formatter.TimeoutMS <= 0 {
		return nil, fmt.Errorf("formatter.timeout_ms must be > 0")
	}

	if cfg.Profile.Formality < 0 || cfg.Profile.Formality > 2 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("profile.formality %d is out of range; treating as auto", cfg.Profile.Formality)})
	}

	for class, category := range cfg.Apps {
		if !slices.Contains(appCategories, category) {
			return nil, fmt.Errorf("apps[%q] must be one of: %s", class, strings.Join(appCategories, ", "))
		}
	}

	clipboard := strings.ToLower(cfg.Clipboard.Backend)
	if !slices.Contains(clipboardBackends, clipboard) {
		return nil, fmt.Errorf("clipboard.backend must be one of: %s", strings.Join(clipboardBackends, ", "))
	}
	if clipboard == "command" && len(cfg.Clipboard.Command.Argv) == 0 {
		return nil, fmt.Errorf("clipboard.command must not be empty when clipboard.backend=command")
	}

	if cfg.Paste.SettleMS < 0 {
		return nil, fmt.Errorf("paste.settle_ms must be >= 0")
	}
	if cfg.Paste.Enable {
		paste := strings.ToLower(cfg.Paste.Backend)
		if !slices.Contains(pasteBackends, paste) {
			return nil, fmt.Errorf("paste.backend must be one of: %s", strings.Join(pasteBackends, ", "))
		}
		if paste == "command" && len(cfg.Paste.Command.Argv) == 0 {
			return nil, fmt.Errorf("paste.command must not be empty when paste.backend=command")
		}
		if paste == "hypr" && cfg.Paste.Shortcut == "" {
			return nil, fmt.Errorf("paste.shortcut must not be empty when paste.backend=hypr")
		}
	}

	indicator := strings.ToLower(cfg.Indicator.Backend)
	if !slices.Contains(indicatorBackends, indicator) {
		return nil, fmt.Errorf("indicator.backend must be one of: %s", strings.Join(indicatorBackends, ", "))
	}
	if indicator != "hypr" && cfg.Indicator.DesktopAppName == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=%s", indicator)
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}
	if cfg.Indicator.NoticeTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.notice_timeout_ms must be >= 0")
	}

	return warnings, nil
}
