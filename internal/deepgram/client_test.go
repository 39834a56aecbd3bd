package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/rbright/vox/internal/recognizer"
)

// fakeServer records what the client sent. Handlers run off the test
// goroutine, so they only record and never assert.
type fakeServer struct {
	mu      sync.Mutex
	query   url.Values
	auth    string
	audio   int
	control []string
}

func newFakeServer(t *testing.T, handle func(f *fakeServer, conn *websocket.Conn)) (*fakeServer, string) {
	t.Helper()
	f := &fakeServer{}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.query = r.URL.Query()
		f.auth = r.Header.Get("Authorization")
		f.mu.Unlock()

		if f.auth == "Token bad-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(f, conn)
	}))
	t.Cleanup(srv.Close)
	return f, "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/listen"
}

// readUntilControl consumes audio frames and returns the next control message type.
func (f *fakeServer) readUntilControl(conn *websocket.Conn) string {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return ""
		}
		if kind == websocket.BinaryMessage {
			f.mu.Lock()
			f.audio += len(data)
			f.mu.Unlock()
			continue
		}
		var msg control
		_ = json.Unmarshal(data, &msg)
		f.mu.Lock()
		f.control = append(f.control, msg.Type)
		f.mu.Unlock()
		return msg.Type
	}
}

func results(transcript string, isFinal, fromFinalize bool) map[string]any {
	return map[string]any{
		"type":          "Results",
		"is_final":      isFinal,
		"from_finalize": fromFinalize,
		"channel": map[string]any{
			"alternatives": []map[string]any{{"transcript": transcript, "confidence": 0.9}},
		},
	}
}

func collect(t *testing.T, s recognizer.Stream) []recognizer.Result {
	t.Helper()
	var out []recognizer.Result
	timeout := time.After(3 * time.Second)
	for {
		select {
		case r, ok := <-s.Results():
			if !ok {
				return out
			}
			out = append(out, r)
		case <-timeout:
			t.Fatal("stream did not terminate")
		}
	}
}

func TestOpenStreamsAudioAndReportsFinalizedText(t *testing.T) {
	f, endpoint := newFakeServer(t, func(f *fakeServer, conn *websocket.Conn) {
		_ = conn.WriteJSON(results("hello", false, false))
		_ = conn.WriteJSON(results("hello world", true, false))
		if f.readUntilControl(conn) != "Finalize" {
			return
		}
		_ = conn.WriteJSON(results("again", true, true))
		if f.readUntilControl(conn) != "CloseStream" {
			return
		}
		_ = conn.WriteJSON(map[string]any{"type": "Metadata"})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	client := New(Config{Endpoint: endpoint, APIKey: "good-key", Model: "nova-2", Language: "en-US", Punctuate: true}, nil)
	require.True(t, client.Available())
	require.Equal(t, recognizer.Authorized, client.Authorization(context.Background()))

	s, err := client.Open(context.Background(), recognizer.OpenOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Send(make([]byte, 640)))
	require.NoError(t, s.Send(nil))

	first := <-s.Results()
	require.Equal(t, recognizer.Result{Text: "hello"}, first)
	second := <-s.Results()
	require.Equal(t, recognizer.Result{Text: "hello world"}, second)

	require.NoError(t, s.End())
	require.NoError(t, s.End())
	require.Error(t, s.Send([]byte{1, 2}))

	rest := collect(t, s)
	require.Equal(t, []recognizer.Result{{Text: "hello world again", IsFinal: true}}, rest)
	require.NoError(t, s.Err())

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, "Token good-key", f.auth)
	require.Equal(t, "linear16", f.query.Get("encoding"))
	require.Equal(t, "16000", f.query.Get("sample_rate"))
	require.Equal(t, "1", f.query.Get("channels"))
	require.Equal(t, "true", f.query.Get("interim_results"))
	require.Equal(t, "true", f.query.Get("punctuate"))
	require.Equal(t, "false", f.query.Get("smart_format"))
	require.Equal(t, "nova-2", f.query.Get("model"))
	require.Equal(t, "en-US", f.query.Get("language"))
	require.Equal(t, 640, f.audio)
	require.Equal(t, []string{"Finalize", "CloseStream"}, f.control)
}

func TestCleanCloseAfterEndEmitsFinalResult(t *testing.T) {
	_, endpoint := newFakeServer(t, func(f *fakeServer, conn *websocket.Conn) {
		_ = conn.WriteJSON(results("partial words", false, false))
		f.readUntilControl(conn)
		f.readUntilControl(conn)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	s, err := New(Config{Endpoint: endpoint, APIKey: "k"}, nil).Open(context.Background(), recognizer.OpenOptions{})
	require.NoError(t, err)
	require.Equal(t, recognizer.Result{Text: "partial words"}, <-s.Results())
	require.NoError(t, s.End())

	require.Equal(t, []recognizer.Result{{Text: "partial words", IsFinal: true}}, collect(t, s))
	require.NoError(t, s.Err())
}

func TestNoAudioCloseMapsToNoSpeechTimeout(t *testing.T) {
	_, endpoint := newFakeServer(t, func(_ *fakeServer, conn *websocket.Conn) {
		_ = conn.WriteJSON(results("hello world", false, false))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(
			websocket.CloseInternalServerErr,
			"did not receive audio data within the timeout window (NET-0001)",
		))
	})

	s, err := New(Config{Endpoint: endpoint, APIKey: "k"}, nil).Open(context.Background(), recognizer.OpenOptions{})
	require.NoError(t, err)

	require.Equal(t, []recognizer.Result{{Text: "hello world"}}, collect(t, s))
	require.ErrorIs(t, s.Err(), recognizer.ErrNoSpeechTimeout)
}

func TestOpenRejectedKeyLatchesDenied(t *testing.T) {
	_, endpoint := newFakeServer(t, func(*fakeServer, *websocket.Conn) {})
	client := New(Config{Endpoint: endpoint, APIKey: "bad-key"}, nil)

	_, err := client.Open(context.Background(), recognizer.OpenOptions{})
	require.ErrorIs(t, err, recognizer.ErrSpeechDenied)

	var permErr *recognizer.PermissionError
	require.True(t, errors.As(err, &permErr))
	require.Equal(t, recognizer.Denied, client.Authorization(context.Background()))
}

func TestOpenUnreachableEndpointIsUnavailable(t *testing.T) {
	client := New(Config{Endpoint: "ws://127.0.0.1:1/v1/listen", APIKey: "k", ConnectTimeout: time.Second}, nil)

	_, err := client.Open(context.Background(), recognizer.OpenOptions{})
	require.ErrorIs(t, err, recognizer.ErrUnavailable)
}

func TestAvailabilityAndAuthorizationFromConfig(t *testing.T) {
	require.False(t, New(Config{Endpoint: "https://api.deepgram.com/v1/listen"}, nil).Available())
	require.False(t, New(Config{Endpoint: "wss://"}, nil).Available())
	require.Equal(t, recognizer.NotDetermined, New(Config{Endpoint: "wss://api.deepgram.com/v1/listen"}, nil).Authorization(context.Background()))
}

func TestCancelReportsCanceled(t *testing.T) {
	release := make(chan struct{})
	_, endpoint := newFakeServer(t, func(*fakeServer, *websocket.Conn) {
		<-release
	})
	defer close(release)

	var dump strings.Builder
	s, err := New(Config{Endpoint: endpoint, APIKey: "k"}, nil).Open(context.Background(), recognizer.OpenOptions{Dump: &dump})
	require.NoError(t, err)

	s.Cancel()
	require.Empty(t, collect(t, s))
	require.ErrorIs(t, s.Err(), recognizer.ErrCanceled)
}

func TestDumpReceivesRawMessages(t *testing.T) {
	_, endpoint := newFakeServer(t, func(_ *fakeServer, conn *websocket.Conn) {
		_ = conn.WriteJSON(results("dumped", false, false))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})

	var dump strings.Builder
	s, err := New(Config{Endpoint: endpoint, APIKey: "k"}, nil).Open(context.Background(), recognizer.OpenOptions{Dump: &dump})
	require.NoError(t, err)
	collect(t, s)

	require.Contains(t, dump.String(), `"transcript":"dumped"`)
	require.True(t, strings.HasSuffix(dump.String(), "\n"))
}
