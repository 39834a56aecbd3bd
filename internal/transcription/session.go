// Package transcription runs one microphone-to-recognizer session and reports
// its transcript exactly once.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/vox/internal/audio"
	"github.com/rbright/vox/internal/recognizer"
)

// Microphone opens PCM captures.
type Microphone interface {
	Authorize(ctx context.Context) error
	Open(ctx context.Context) (Capture, error)
}

// Capture is a running PCM tap.
type Capture interface {
	Chunks() <-chan []byte
	Stop() error
	RawPCM() []byte
}

// Options tune session teardown and debug artifacts.
type Options struct {
	// DrainTimeout bounds how long a stopped session waits for the final result.
	DrainTimeout time.Duration
	AudioDump    bool
	StreamDump   bool
}

// Starter opens sessions against one engine and microphone.
type Starter struct {
	engine recognizer.Engine
	mic    Microphone
	opts   Options
	logger *slog.Logger
}

func NewStarter(engine recognizer.Engine, mic Microphone, opts Options, logger *slog.Logger) *Starter {
	return &Starter{engine: engine, mic: mic, opts: opts, logger: logger}
}

// Start checks availability and permissions, then begins streaming. onFinal
// runs at most once, on the session's receive goroutine.
func (st *Starter) Start(ctx context.Context, onFinal func(text string)) (*Session, error) {
	if !st.engine.Available() {
		return nil, recognizer.ErrUnavailable
	}

	if err := st.mic.Authorize(ctx); err != nil {
		st.debug("microphone authorization failed", err)
		if errors.Is(err, audio.ErrServerUnavailable) {
			return nil, recognizer.NewPermissionError(recognizer.ErrMicrophoneNotDetermined)
		}
		return nil, recognizer.NewPermissionError(recognizer.ErrMicrophoneDenied)
	}

	switch st.engine.Authorization(ctx) {
	case recognizer.Denied:
		return nil, recognizer.NewPermissionError(recognizer.ErrSpeechDenied)
	case recognizer.NotDetermined:
		return nil, recognizer.NewPermissionError(recognizer.ErrSpeechNotDetermined)
	}

	var dump io.WriteCloser
	if st.opts.StreamDump {
		file, err := createDebugFile("stream", "jsonl")
		if err != nil {
			st.debug("stream dump unavailable", err)
		} else {
			dump = file
		}
	}

	openOpts := recognizer.OpenOptions{}
	if dump != nil {
		openOpts.Dump = dump
	}
	stream, err := st.engine.Open(ctx, openOpts)
	if err != nil {
		closeQuietly(dump)
		return nil, err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	capture, err := st.mic.Open(sessionCtx)
	if err != nil {
		cancel()
		stream.Cancel()
		closeQuietly(dump)
		return nil, fmt.Errorf("%w: %w", recognizer.ErrRecordingFailed, err)
	}

	s := &Session{
		stream:   stream,
		capture:  capture,
		onFinal:  onFinal,
		opts:     st.opts,
		logger:   st.logger,
		dump:     dump,
		cancel:   cancel,
		pumped:   make(chan struct{}),
		received: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.pump()
	go s.receive()
	return s, nil
}

func (st *Starter) debug(msg string, err error) {
	if st.logger != nil {
		st.logger.Debug(msg, "error", err.Error())
	}
}

// Session is one live recording. All methods are safe for concurrent use.
type Session struct {
	stream  recognizer.Stream
	capture Capture
	onFinal func(string)
	opts    Options
	logger  *slog.Logger
	dump    io.Closer
	cancel  context.CancelFunc

	mu        sync.Mutex
	lastBest  string
	finalized bool

	stopOnce sync.Once
	pumped   chan struct{}
	received chan struct{}
	done     chan struct{}
}

// LastBest returns the most recent non-empty transcription.
func (s *Session) LastBest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBest
}

// Stop ends capture and the recognition request. The final result may still
// arrive within the drain window; afterwards the stream is cancelled.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		_ = s.capture.Stop()
		go s.teardown()
	})
}

// Done is closed once the session has fully released its resources.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) teardown() {
	defer close(s.done)

	<-s.pumped
	if err := s.stream.End(); err != nil {
		s.debug("end recognition request", err)
	}

	drain := time.NewTimer(s.opts.DrainTimeout)
	defer drain.Stop()
	select {
	case <-s.received:
	case <-drain.C:
		s.debug("recognizer drain window elapsed", context.DeadlineExceeded)
	}

	s.stream.Cancel()
	<-s.received
	s.cancel()
	closeQuietly(s.dump)

	if s.opts.AudioDump {
		if err := writeDebugWAV(s.capture.RawPCM()); err != nil {
			s.debug("write debug audio", err)
		}
	}
}

func (s *Session) pump() {
	defer close(s.pumped)

	failed := false
	for chunk := range s.capture.Chunks() {
		if failed {
			continue
		}
		if err := s.stream.Send(chunk); err != nil {
			s.debug("send audio", err)
			failed = true
			_ = s.capture.Stop()
		}
	}
}

func (s *Session) receive() {
	defer close(s.received)

	for result := range s.stream.Results() {
		if result.Text == "" {
			continue
		}
		s.mu.Lock()
		s.lastBest = result.Text
		s.mu.Unlock()

		if result.IsFinal {
			s.finalize(result.Text)
		}
	}

	err := s.stream.Err()
	switch {
	case err == nil, errors.Is(err, recognizer.ErrCanceled):
	case errors.Is(err, recognizer.ErrNoSpeechTimeout):
		if text := s.LastBest(); text != "" {
			s.finalize(text)
		}
	default:
		s.debug("recognition stream failed", err)
	}
}

func (s *Session) finalize(text string) {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	s.finalized = true
	s.mu.Unlock()

	if s.onFinal != nil {
		s.onFinal(text)
	}
}

func (s *Session) debug(msg string, err error) {
	if s.logger != nil {
		s.logger.Debug(msg, "error", err.Error())
	}
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
