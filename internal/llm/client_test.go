package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/rbright/vox/internal/formatting"
)

type capturedRequest struct {
	path string
	auth string
	body string
}

func newFormatterServer(t *testing.T, status int, body string) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		seen []capturedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, capturedRequest{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(raw)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), seen...)
	}
}

func newRemote(url string) *Remote {
	return New(Config{
		BaseURL:     url,
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   1024,
		Timeout:     5 * time.Second,
	}, nil)
}

func chatBody(content string) string {
	return `{"id":"c1","object":"chat.completion","created":1,"model":"test-model","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` +
		quote(content) + `}}]}`
}

func quote(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}

func TestFormatSuccess(t *testing.T) {
	server, requests := newFormatterServer(t, http.StatusOK, chatBody("  Hello there.\n"))

	req := formatting.Request{
		Text:    "hello there",
		Context: formatting.Context{TargetApp: "slack", Category: formatting.CategoryChat, Formality: formatting.Auto},
	}
	out, err := newRemote(server.URL).Format(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Hello there.", out)

	seen := requests()
	require.Len(t, seen, 1)
	require.Equal(t, "/chat/completions", seen[0].path)
	require.Equal(t, "Bearer test-key", seen[0].auth)

	body := seen[0].body
	require.Equal(t, "test-model", gjson.Get(body, "model").String())
	require.InDelta(t, 0.7, gjson.Get(body, "temperature").Float(), 1e-9)
	require.EqualValues(t, 1024, gjson.Get(body, "max_tokens").Int())
	require.Equal(t, "system", gjson.Get(body, "messages.0.role").String())
	require.Contains(t, gjson.Get(body, "messages.0.content").String(), "Current app: slack")
	require.Equal(t, "user", gjson.Get(body, "messages.1.role").String())
	require.Contains(t, gjson.Get(body, "messages.1.content").String(), "Text: hello there")
}

func TestFormatMalformedResponses(t *testing.T) {
	tests := map[string]string{
		"no choices":    `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`,
		"blank content": chatBody("   "),
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			server, _ := newFormatterServer(t, http.StatusOK, body)
			_, err := newRemote(server.URL).Format(context.Background(), formatting.Request{Text: "x"})
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFormatErrorPayloadInSuccessfulResponse(t *testing.T) {
	server, _ := newFormatterServer(t, http.StatusOK, `{"error":{"message":"model overloaded","type":"server_error"}}`)

	_, err := newRemote(server.URL).Format(context.Background(), formatting.Request{Text: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "model overloaded", apiErr.Message)
}

func TestFormatHTTPErrorStatus(t *testing.T) {
	server, requests := newFormatterServer(t, http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`)

	_, err := newRemote(server.URL).Format(context.Background(), formatting.Request{Text: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.NotEmpty(t, apiErr.Message)
	require.Len(t, requests(), 1, "retries must be disabled")
}

func TestFormatTransportFailure(t *testing.T) {
	server, _ := newFormatterServer(t, http.StatusOK, chatBody("x"))
	url := server.URL
	server.Close()

	_, err := newRemote(url).Format(context.Background(), formatting.Request{Text: "x"})
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}
