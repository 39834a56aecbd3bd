package formatting

import (
	"context"
	"errors"
)

// ErrNoFormatter is returned by None.
var ErrNoFormatter = errors.New("no formatter configured")

// Request is one rewrite call.
type Request struct {
	Text    string
	Context Context
	Names   Names
}

// TextFormatter rewrites dictated text for a target context.
type TextFormatter interface {
	Format(ctx context.Context, req Request) (string, error)
}

// None is the formatter used when no credential is configured.
type None struct{}

func (None) Format(context.Context, Request) (string, error) {
	return "", ErrNoFormatter
}

// Configured reports whether f can actually format.
func Configured(f TextFormatter) bool {
	if f == nil {
		return false
	}
	_, none := f.(None)
	return !none
}
