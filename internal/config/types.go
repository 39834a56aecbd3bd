// Package config resolves, parses, validates, and defaults vox configuration.
package config

// Config is the fully materialized runtime configuration used by vox.
type Config struct {
	Recognizer RecognizerConfig
	Audio      AudioConfig
	Gesture    GestureConfig
	Formatter  FormatterConfig
	Profile    ProfileConfig
	// Apps maps a lowercased window class to a formatting category.
	Apps      map[string]string
	Clipboard ClipboardConfig
	Paste     PasteConfig
	Indicator IndicatorConfig
	Debug     DebugConfig
	Secrets   Secrets
}

// RecognizerConfig controls the streaming speech recognizer connection.
type RecognizerConfig struct {
	Endpoint         string
	Model            string
	Language         string
	Punctuate        bool
	SmartFormat      bool
	ConnectTimeoutMS int
	DrainTimeoutMS   int
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// GestureConfig names the trigger and AI modifier keys.
type GestureConfig struct {
	Trigger  string
	Modifier string
}

// FormatterConfig controls the chat-completions formatter.
type FormatterConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	TimeoutMS   int
}

// ProfileConfig carries the user's names and preferred formality index.
type ProfileConfig struct {
	CasualName string
	FormalName string
	// Formality is 0 (casual), 1 (auto), or 2 (formal).
	Formality int
}

// ClipboardConfig selects how text reaches the clipboard.
type ClipboardConfig struct {
	Backend string
	Command CommandConfig
}

// PasteConfig controls the synthetic paste that follows a clipboard commit.
type PasteConfig struct {
	Enable   bool
	Backend  string
	Shortcut string
	Command  CommandConfig
	SettleMS int
}

// IndicatorConfig controls visual indicator and audio cue behavior.
type IndicatorConfig struct {
	Enable            bool
	Backend           string
	DesktopAppName    string
	SoundEnable       bool
	SoundStartFile    string
	SoundStopFile     string
	SoundCompleteFile string
	SoundErrorFile    string
	ErrorTimeoutMS    int
	NoticeTimeoutMS   int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	Verbose          bool
	EnableAudioDump  bool
	EnableStreamDump bool
}

// Secrets are credentials read from the environment, never from the config file.
type Secrets struct {
	RecognizerAPIKey string `env:"VOX_RECOGNIZER_API_KEY"`
	FormatterAPIKey  string `env:"VOX_FORMATTER_API_KEY"`

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	GroqAPIKey     string `env:"GROQ_API_KEY"`
}

// Recognizer returns the effective recognizer key.
func (s Secrets) Recognizer() string {
	if s.RecognizerAPIKey != "" {
		return s.RecognizerAPIKey
	}
	return s.DeepgramAPIKey
}

// Formatter returns the effective formatter key.
func (s Secrets) Formatter() string {
	if s.FormatterAPIKey != "" {
		return s.FormatterAPIKey
	}
	return s.GroqAPIKey
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
