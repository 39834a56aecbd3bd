package config

import (
	"fmt"
	"strings"
)

// fileConfig mirrors the on-disk JSONC layout. Pointer fields distinguish
// "unset" from zero values so defaults survive partial files.
type fileConfig struct {
	Recognizer *fileRecognizer   `json:"recognizer"`
	Audio      *fileAudio        `json:"audio"`
	Gesture    *fileGesture      `json:"gesture"`
	Formatter  *fileFormatter    `json:"formatter"`
	Profile    *fileProfile      `json:"profile"`
	Apps       map[string]string `json:"apps"`
	Clipboard  *fileClipboard    `json:"clipboard"`
	Paste      *filePaste        `json:"paste"`
	Indicator  *fileIndicator    `json:"indicator"`
	Debug      *fileDebug        `json:"debug"`
}

type fileRecognizer struct {
	Endpoint         *string `json:"endpoint"`
	Model            *string `json:"model"`
	Language         *string `json:"language"`
	Punctuate        *bool   `json:"punctuate"`
	SmartFormat      *bool   `json:"smart_format"`
	ConnectTimeoutMS *int    `json:"connect_timeout_ms"`
	DrainTimeoutMS   *int    `json:"drain_timeout_ms"`
}

type fileAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type fileGesture struct {
	Trigger  *string `json:"trigger"`
	Modifier *string `json:"modifier"`
}

type fileFormatter struct {
	BaseURL     *string  `json:"base_url"`
	Model       *string  `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	TimeoutMS   *int     `json:"timeout_ms"`
}

type fileProfile struct {
	CasualName *string `json:"casual_name"`
	FormalName *string `json:"formal_name"`
	Formality  *int    `json:"formality"`
}

type fileClipboard struct {
	Backend *string `json:"backend"`
	Command *string `json:"command"`
}

type filePaste struct {
	Enable   *bool   `json:"enable"`
	Backend  *string `json:"backend"`
	Shortcut *string `json:"shortcut"`
	Command  *string `json:"command"`
	SettleMS *int    `json:"settle_ms"`
}

type fileIndicator struct {
	Enable            *bool   `json:"enable"`
	Backend           *string `json:"backend"`
	DesktopAppName    *string `json:"desktop_app_name"`
	SoundEnable       *bool   `json:"sound_enable"`
	SoundStartFile    *string `json:"sound_start_file"`
	SoundStopFile     *string `json:"sound_stop_file"`
	SoundCompleteFile *string `json:"sound_complete_file"`
	SoundErrorFile    *string `json:"sound_error_file"`
	ErrorTimeoutMS    *int    `json:"error_timeout_ms"`
	NoticeTimeoutMS   *int    `json:"notice_timeout_ms"`
}

type fileDebug struct {
	Verbose    *bool `json:"verbose"`
	AudioDump  *bool `json:"audio_dump"`
	StreamDump *bool `json:"stream_dump"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func (f fileConfig) applyTo(cfg *Config) error {
	if r := f.Recognizer; r != nil {
		setTrimmed(&cfg.Recognizer.Endpoint, r.Endpoint)
		setTrimmed(&cfg.Recognizer.Model, r.Model)
		setTrimmed(&cfg.Recognizer.Language, r.Language)
		set(&cfg.Recognizer.Punctuate, r.Punctuate)
		set(&cfg.Recognizer.SmartFormat, r.SmartFormat)
		set(&cfg.Recognizer.ConnectTimeoutMS, r.ConnectTimeoutMS)
		set(&cfg.Recognizer.DrainTimeoutMS, r.DrainTimeoutMS)
	}

	if a := f.Audio; a != nil {
		set(&cfg.Audio.Input, a.Input)
		set(&cfg.Audio.Fallback, a.Fallback)
	}

	if g := f.Gesture; g != nil {
		setTrimmed(&cfg.Gesture.Trigger, g.Trigger)
		setTrimmed(&cfg.Gesture.Modifier, g.Modifier)
	}

	if fm := f.Formatter; fm != nil {
		setTrimmed(&cfg.Formatter.BaseURL, fm.BaseURL)
		setTrimmed(&cfg.Formatter.Model, fm.Model)
		set(&cfg.Formatter.Temperature, fm.Temperature)
		set(&cfg.Formatter.MaxTokens, fm.MaxTokens)
		set(&cfg.Formatter.TimeoutMS, fm.TimeoutMS)
	}

	if p := f.Profile; p != nil {
		setTrimmed(&cfg.Profile.CasualName, p.CasualName)
		setTrimmed(&cfg.Profile.FormalName, p.FormalName)
		set(&cfg.Profile.Formality, p.Formality)
	}

	for class, category := range f.Apps {
		class = strings.ToLower(strings.TrimSpace(class))
		if class == "" {
			return fmt.Errorf("apps contains an empty window class")
		}
		category = strings.ToLower(strings.TrimSpace(category))
		if category == "" {
			delete(cfg.Apps, class)
			continue
		}
		cfg.Apps[class] = category
	}

	if c := f.Clipboard; c != nil {
		setTrimmed(&cfg.Clipboard.Backend, c.Backend)
		if c.Command != nil {
			cmd, err := parseCommand("clipboard.command", *c.Command)
			if err != nil {
				return err
			}
			cfg.Clipboard.Command = cmd
		}
	}

	if p := f.Paste; p != nil {
		set(&cfg.Paste.Enable, p.Enable)
		setTrimmed(&cfg.Paste.Backend, p.Backend)
		setTrimmed(&cfg.Paste.Shortcut, p.Shortcut)
		set(&cfg.Paste.SettleMS, p.SettleMS)
		if p.Command != nil {
			cmd, err := parseCommand("paste.command", *p.Command)
			if err != nil {
				return err
			}
			cfg.Paste.Command = cmd
		}
	}

	if i := f.Indicator; i != nil {
		set(&cfg.Indicator.Enable, i.Enable)
		setTrimmed(&cfg.Indicator.Backend, i.Backend)
		setTrimmed(&cfg.Indicator.DesktopAppName, i.DesktopAppName)
		set(&cfg.Indicator.SoundEnable, i.SoundEnable)
		setTrimmed(&cfg.Indicator.SoundStartFile, i.SoundStartFile)
		setTrimmed(&cfg.Indicator.SoundStopFile, i.SoundStopFile)
		setTrimmed(&cfg.Indicator.SoundCompleteFile, i.SoundCompleteFile)
		setTrimmed(&cfg.Indicator.SoundErrorFile, i.SoundErrorFile)
		set(&cfg.Indicator.ErrorTimeoutMS, i.ErrorTimeoutMS)
		set(&cfg.Indicator.NoticeTimeoutMS, i.NoticeTimeoutMS)
	}

	if d := f.Debug; d != nil {
		set(&cfg.Debug.Verbose, d.Verbose)
		set(&cfg.Debug.EnableAudioDump, d.AudioDump)
		set(&cfg.Debug.EnableStreamDump, d.StreamDump)
	}

	return nil
}
