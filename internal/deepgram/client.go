// Package deepgram streams PCM to a Deepgram-compatible live transcription
// websocket and reports cumulative results.
package deepgram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rbright/vox/internal/recognizer"
)

// Config describes the recognizer endpoint and request options.
type Config struct {
	Endpoint       string
	APIKey         string
	Model          string
	Language       string
	Punctuate      bool
	SmartFormat    bool
	SampleRate     int
	Channels       int
	ConnectTimeout time.Duration
}

// Client opens live transcription streams. It implements recognizer.Engine.
type Client struct {
	cfg    Config
	logger *slog.Logger
	dialer *websocket.Dialer

	// rejected latches after the server refuses the configured key.
	rejected atomic.Bool
}

var _ recognizer.Engine = (*Client)(nil)

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.ConnectTimeout,
		},
	}
}

// Available reports whether the endpoint is usable at all.
func (c *Client) Available() bool {
	_, err := c.listenURL()
	return err == nil
}

func (c *Client) Authorization(context.Context) recognizer.AuthStatus {
	switch {
	case strings.TrimSpace(c.cfg.APIKey) == "":
		return recognizer.NotDetermined
	case c.rejected.Load():
		return recognizer.Denied
	default:
		return recognizer.Authorized
	}
}

// Open dials the endpoint and starts the receive loop.
func (c *Client) Open(ctx context.Context, opts recognizer.OpenOptions) (recognizer.Stream, error) {
	target, err := c.listenURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", recognizer.ErrUnavailable, err)
	}

	header := http.Header{}
	header.Set("Authorization", "Token "+c.cfg.APIKey)

	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			c.rejected.Store(true)
			return nil, recognizer.NewPermissionError(recognizer.ErrSpeechDenied)
		}
		return nil, fmt.Errorf("%w: dial %s: %w", recognizer.ErrUnavailable, redact(target), err)
	}

	s := newStream(conn, opts.Dump, c.logger)
	go s.receive()
	return s, nil
}

func (c *Client) listenURL() (string, error) {
	u, err := url.Parse(strings.TrimSpace(c.cfg.Endpoint))
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return "", errors.New("endpoint must be a ws:// or wss:// URL")
	}

	q := u.Query()
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(c.cfg.SampleRate))
	q.Set("channels", strconv.Itoa(c.cfg.Channels))
	q.Set("interim_results", "true")
	q.Set("punctuate", strconv.FormatBool(c.cfg.Punctuate))
	q.Set("smart_format", strconv.FormatBool(c.cfg.SmartFormat))
	if model := strings.TrimSpace(c.cfg.Model); model != "" {
		q.Set("model", model)
	}
	if lang := strings.TrimSpace(c.cfg.Language); lang != "" {
		q.Set("language", lang)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func redact(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}
