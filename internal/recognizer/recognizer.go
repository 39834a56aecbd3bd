// Package recognizer defines the streaming speech-recognition contract shared
// by engines and the transcription session.
package recognizer

import (
	"context"
	"errors"
	"io"
)

var (
	ErrUnavailable             = errors.New("speech recognizer unavailable")
	ErrNoSpeechTimeout         = errors.New("no speech detected before recognizer timeout")
	ErrCanceled                = errors.New("recognition canceled")
	ErrRecordingFailed         = errors.New("recording failed")
	ErrMicrophoneDenied        = errors.New("microphone access denied")
	ErrMicrophoneNotDetermined = errors.New("microphone access not determined")
	ErrSpeechDenied            = errors.New("speech recognition denied")
	ErrSpeechNotDetermined     = errors.New("speech recognition not determined")
)

// Result is the best transcription so far. Text is cumulative for the stream.
type Result struct {
	Text    string
	IsFinal bool
}

type AuthStatus int

const (
	Authorized AuthStatus = iota
	Denied
	NotDetermined
)

func (s AuthStatus) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	case NotDetermined:
		return "not_determined"
	default:
		return "unknown"
	}
}

// OpenOptions tunes one recognition stream.
type OpenOptions struct {
	// Dump receives each raw server message followed by a newline.
	Dump io.Writer
}

// Engine opens recognition streams.
type Engine interface {
	Available() bool
	Authorization(ctx context.Context) AuthStatus
	Open(ctx context.Context, opts OpenOptions) (Stream, error)
}

// Stream is one live recognition request. Results is closed when the stream
// terminates; Err then reports why (nil for a clean close).
type Stream interface {
	Send(pcm []byte) error
	Results() <-chan Result
	Err() error
	// End stops accepting audio and asks the engine to finalize.
	End() error
	Cancel()
}
