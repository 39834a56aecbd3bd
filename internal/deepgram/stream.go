package deepgram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rbright/vox/internal/recognizer"
)

// closeNoAudio is the reason code sent with 1011 when the server stops waiting for audio.
const closeNoAudio = "NET-0001"

type message struct {
	Type         string `json:"type"`
	IsFinal      bool   `json:"is_final"`
	SpeechFinal  bool   `json:"speech_final"`
	FromFinalize bool   `json:"from_finalize"`
	Channel      struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

type control struct {
	Type string `json:"type"`
}

type stream struct {
	conn   *websocket.Conn
	dump   io.Writer
	logger *slog.Logger

	results chan recognizer.Result
	closed  chan struct{}

	writeMu sync.Mutex
	ended   bool

	mu        sync.Mutex
	err       error
	text      transcript
	finalSent bool

	closeOnce sync.Once
	canceled  bool
}

func newStream(conn *websocket.Conn, dump io.Writer, logger *slog.Logger) *stream {
	return &stream{
		conn:    conn,
		dump:    dump,
		logger:  logger,
		results: make(chan recognizer.Result, 32),
		closed:  make(chan struct{}),
	}
}

func (s *stream) Results() <-chan recognizer.Result {
	return s.results
}

func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *stream) Send(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.ended {
		return errors.New("stream already ended")
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, pcm)
}

// End flushes the server-side buffer and closes the request. Results keep
// arriving until the server closes the socket.
func (s *stream) End() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.ended {
		return nil
	}
	s.ended = true

	if err := s.conn.WriteJSON(control{Type: "Finalize"}); err != nil {
		return fmt.Errorf("send finalize: %w", err)
	}
	if err := s.conn.WriteJSON(control{Type: "CloseStream"}); err != nil {
		return fmt.Errorf("send close stream: %w", err)
	}
	return nil
}

func (s *stream) Cancel() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.canceled = true
		s.mu.Unlock()
		close(s.closed)
		_ = s.conn.Close()
	})
}

func (s *stream) receive() {
	defer close(s.results)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.finish(err)
			return
		}
		if s.dump != nil {
			_, _ = s.dump.Write(append(data, '\n'))
		}
		s.handle(data)
	}
}

func (s *stream) handle(data []byte) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.debug("recognizer message decode failed", err)
		return
	}
	if msg.Type != "Results" {
		return
	}

	segment := ""
	if len(msg.Channel.Alternatives) > 0 {
		segment = msg.Channel.Alternatives[0].Transcript
	}

	s.mu.Lock()
	text := s.text.observe(segment, msg.IsFinal)
	final := msg.FromFinalize && !s.finalSent
	if final {
		s.finalSent = true
	}
	s.mu.Unlock()

	s.emit(recognizer.Result{Text: text, IsFinal: final})
}

// finish classifies the terminal read error. A clean close after End without
// a finalize acknowledgement still yields one final result.
func (s *stream) finish(readErr error) {
	err := classify(readErr)

	s.writeMu.Lock()
	ended := s.ended
	s.writeMu.Unlock()

	s.mu.Lock()
	if s.canceled {
		err = recognizer.ErrCanceled
	}
	s.err = err
	emitFinal := err == nil && ended && !s.finalSent
	if emitFinal {
		s.finalSent = true
	}
	text := s.text.text()
	s.mu.Unlock()

	if emitFinal {
		s.emit(recognizer.Result{Text: text, IsFinal: true})
	}
	s.Cancel()
}

func (s *stream) emit(r recognizer.Result) {
	select {
	case s.results <- r:
	case <-s.closed:
	}
}

func classify(err error) error {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return fmt.Errorf("read recognizer stream: %w", err)
	}
	switch {
	case closeErr.Code == websocket.CloseNormalClosure:
		return nil
	case closeErr.Code == websocket.CloseInternalServerErr && strings.Contains(closeErr.Text, closeNoAudio):
		return recognizer.ErrNoSpeechTimeout
	default:
		return fmt.Errorf("recognizer closed stream: %w", err)
	}
}

func (s *stream) debug(msg string, err error) {
	if s.logger != nil {
		s.logger.Debug(msg, "error", err.Error())
	}
}
