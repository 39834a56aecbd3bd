package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"

	return Config{
		Recognizer: RecognizerConfig{
			Endpoint:         "wss://api.deepgram.com/v1/listen",
			Model:            "nova-2",
			Language:         "en-US",
			Punctuate:        true,
			SmartFormat:      true,
			ConnectTimeoutMS: 5000,
			DrainTimeoutMS:   1500,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Gesture: GestureConfig{
			Trigger:  "ctrl_r",
			Modifier: "shift",
		},
		Formatter: FormatterConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			MaxTokens:   1024,
			TimeoutMS:   30000,
		},
		Profile: ProfileConfig{Formality: 1},
		Apps: map[string]string{
			"thunderbird":            "email",
			"geary":                  "email",
			"evolution":              "email",
			"org.gnome.evolution":    "email",
			"signal":                 "message",
			"org.telegram.desktop":   "message",
			"slack":                  "chat",
			"discord":                "chat",
			"kitty":                  "terminal",
			"alacritty":              "terminal",
			"foot":                   "terminal",
			"com.mitchellh.ghostty":  "terminal",
			"org.wezfurlong.wezterm": "terminal",
			"org.kde.konsole":        "terminal",
			"org.gnome.terminal":     "terminal",
			"org.gnome.ptyxis":       "terminal",
			"xterm":                  "terminal",
		},
		Clipboard: ClipboardConfig{
			Backend: "command",
			Command: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
		},
		Paste: PasteConfig{
			Enable:   true,
			Backend:  "hypr",
			Shortcut: "CTRL,V",
			SettleMS: 100,
		},
		Indicator: IndicatorConfig{
			Enable:          true,
			Backend:         "hypr",
			DesktopAppName:  "vox",
			SoundEnable:     true,
			ErrorTimeoutMS:  1600,
			NoticeTimeoutMS: 4000,
		},
	}
}
