// Package settings owns the live configuration snapshot and republishes it
// whenever the config file or credentials are reloaded.
package settings

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/vox/internal/config"
	"github.com/rbright/vox/internal/formatting"
	"github.com/rbright/vox/internal/gesture"
	"github.com/rbright/vox/internal/llm"
)

// Snapshot is an immutable view of the settings at one point in time.
type Snapshot struct {
	Path      string
	Config    config.Config
	Warnings  []config.Warning
	Binding   gesture.Binding
	Formatter formatting.TextFormatter
	// CredentialGeneration changes whenever the formatter credential changes.
	CredentialGeneration uint64
}

func (s Snapshot) Names() formatting.Names {
	return formatting.Names{
		Casual: strings.TrimSpace(s.Config.Profile.CasualName),
		Formal: strings.TrimSpace(s.Config.Profile.FormalName),
	}
}

func (s Snapshot) Formality() formatting.Formality {
	return formatting.FormalityFromIndex(s.Config.Profile.Formality)
}

// Loader reads one configuration generation.
type Loader func(path string) (config.Loaded, error)

// FormatterFactory builds the formatter for a configuration.
type FormatterFactory func(cfg config.Config, logger *slog.Logger) formatting.TextFormatter

// Store holds the current snapshot and fans changes out to subscribers.
type Store struct {
	path         string
	load         Loader
	newFormatter FormatterFactory
	logger       *slog.Logger

	mu          sync.Mutex
	current     Snapshot
	subscribers map[int]chan Snapshot
	nextID      int
}

// Open loads the config at path (or the default location) with the remote formatter.
func Open(path string, logger *slog.Logger) (*Store, error) {
	return NewStore(path, config.Load, NewFormatter, logger)
}

func NewStore(path string, load Loader, newFormatter FormatterFactory, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:         path,
		load:         load,
		newFormatter: newFormatter,
		logger:       logger,
		subscribers:  make(map[int]chan Snapshot),
	}
	snap, err := s.build(Snapshot{})
	if err != nil {
		return nil, err
	}
	s.current = snap
	return s, nil
}

// NewFormatter returns None without a credential, else the remote formatter.
func NewFormatter(cfg config.Config, logger *slog.Logger) formatting.TextFormatter {
	key := cfg.Secrets.Formatter()
	if key == "" {
		return formatting.None{}
	}
	return llm.New(llm.Config{
		BaseURL:     cfg.Formatter.BaseURL,
		APIKey:      key,
		Model:       cfg.Formatter.Model,
		Temperature: cfg.Formatter.Temperature,
		MaxTokens:   cfg.Formatter.MaxTokens,
		Timeout:     time.Duration(cfg.Formatter.TimeoutMS) * time.Millisecond,
	}, logger)
}

func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reload re-reads configuration and credentials. On failure the current
// snapshot stays in effect.
func (s *Store) Reload() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.build(s.current)
	if err != nil {
		return s.current, err
	}
	s.current = snap
	for _, ch := range s.subscribers {
		publish(ch, snap)
	}
	if s.logger != nil {
		s.logger.Info("settings reloaded",
			"config", snap.Path,
			"formatter_configured", formatting.Configured(snap.Formatter),
			"credential_generation", snap.CredentialGeneration,
		)
	}
	return snap, nil
}

// Subscribe returns a channel that always holds the latest unseen snapshot.
// The returned func unsubscribes.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) build(prev Snapshot) (Snapshot, error) {
	loaded, err := s.load(s.path)
	if err != nil {
		return Snapshot{}, err
	}
	cfg := loaded.Config

	binding, err := gesture.ParseBinding(cfg.Gesture.Trigger, cfg.Gesture.Modifier)
	if err != nil {
		return Snapshot{}, fmt.Errorf("gesture: %w", err)
	}

	generation := prev.CredentialGeneration
	if prev.Formatter == nil || prev.Config.Secrets.Formatter() != cfg.Secrets.Formatter() {
		generation++
	}

	formatter := s.newFormatter(cfg, s.logger)
	if formatter == nil {
		formatter = formatting.None{}
	}

	return Snapshot{
		Path:                 loaded.Path,
		Config:               cfg,
		Warnings:             loaded.Warnings,
		Binding:              binding,
		Formatter:            formatter,
		CredentialGeneration: generation,
	}, nil
}

// publish replaces any snapshot the subscriber has not consumed yet.
func publish(ch chan Snapshot, snap Snapshot) {
	select {
	case <-ch:
	default:
	}
	ch <- snap
}
