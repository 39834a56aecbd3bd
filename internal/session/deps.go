package session

import (
	"context"

	"github.com/rbright/vox/internal/settings"
)

// Recording is a running transcription session.
type Recording interface {
	Stop()
}

// Transcriber starts recordings. onFinal runs at most once per recording, on
// an arbitrary goroutine.
type Transcriber interface {
	Start(ctx context.Context, onFinal func(text string)) (Recording, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, onFinal func(text string)) (Recording, error)

func (f TranscriberFunc) Start(ctx context.Context, onFinal func(text string)) (Recording, error) {
	return f(ctx, onFinal)
}

// Injector delivers text to the focused application. done runs exactly once.
type Injector interface {
	Deliver(ctx context.Context, text string, done func(error))
}

// Indicator is the user-visible feedback surface.
type Indicator interface {
	RecordingStarted(context.Context)
	RecordingStopped(context.Context)
	Delivered(context.Context)
	Error(ctx context.Context, text string)
	Notice(ctx context.Context, text string)
}

// FocusFunc returns the identifier of the focused application.
type FocusFunc func(ctx context.Context) (string, error)

// Runtime is the set of collaborators rebuilt whenever settings change.
// A nil Indicator keeps the current one.
type Runtime struct {
	Transcriber Transcriber
	Injector    Injector
	Indicator   Indicator
}

// Builder wires a Runtime for a settings snapshot.
type Builder func(settings.Snapshot) (Runtime, error)

// Reloader re-reads settings; the new snapshot arrives through Apply.
type Reloader func() error

type noopIndicator struct{}

func (noopIndicator) RecordingStarted(context.Context) {}
func (noopIndicator) RecordingStopped(context.Context) {}
func (noopIndicator) Delivered(context.Context)        {}
func (noopIndicator) Error(context.Context, string)    {}
func (noopIndicator) Notice(context.Context, string)   {}
