// Package llm implements the remote chat-completions text formatter.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"

	"github.com/rbright/vox/internal/formatting"
)

var ErrMalformedResponse = errors.New("malformed formatter response")

// APIError is a failure reported by the formatter service itself.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("formatter api error (status %d): %s", e.StatusCode, e.Message)
}

// Config describes one OpenAI-compatible endpoint.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Remote formats text through an OpenAI-compatible chat completions API.
type Remote struct {
	client openai.Client
	cfg    Config
	logger *slog.Logger
}

var _ formatting.TextFormatter = (*Remote)(nil)

func New(cfg Config, logger *slog.Logger) *Remote {
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	)
	return &Remote{client: client, cfg: cfg, logger: logger}
}

// Format sends one rewrite request and returns the trimmed first choice.
func (r *Remote) Format(ctx context.Context, req formatting.Request) (string, error) {
	prompt := BuildPrompt(req)
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(r.cfg.Temperature),
		MaxTokens:   openai.Int(int64(r.cfg.MaxTokens)),
	}

	started := time.Now()
	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.StatusCode, Message: apiErrorMessage(apiErr)}
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if msg := gjson.Get(resp.RawJSON(), "error.message"); msg.Exists() {
		return "", &APIError{StatusCode: http.StatusOK, Message: msg.String()}
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	if r.logger != nil {
		r.logger.Debug("formatter response",
			"category", string(req.Context.Category),
			"model", r.cfg.Model,
			"latency_ms", time.Since(started).Milliseconds(),
			"chars", len(content),
		)
	}
	return content, nil
}

func apiErrorMessage(err *openai.Error) string {
	if err.Message != "" {
		return err.Message
	}
	raw := err.RawJSON()
	for _, path := range []string{"error.message", "message"} {
		if msg := gjson.Get(raw, path).String(); msg != "" {
			return msg
		}
	}
	return http.StatusText(err.StatusCode)
}
