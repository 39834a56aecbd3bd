package formatting

import (
	"context"
	"fmt"
)

// Result is what the pipeline produced for one transcript.
type Result struct {
	Text             string
	UsedAI           bool
	MissingFormatter bool
	// Err records a formatter failure that was absorbed by falling back.
	Err error
}

// Pipeline owns the formatter handle and names captured at finalization.
type Pipeline struct {
	Formatter TextFormatter
	Names     Names
}

// Process never fails; a formatter error falls back to the cleaned original.
func (p Pipeline) Process(ctx context.Context, text string, useAI bool, fc Context) Result {
	if !useAI {
		return Result{Text: Cleanup(text, fc.Category)}
	}
	if !Configured(p.Formatter) {
		return Result{Text: Cleanup(text, fc.Category), MissingFormatter: true}
	}

	formatted, err := p.Formatter.Format(ctx, Request{Text: text, Context: fc, Names: p.Names})
	if err != nil {
		return Result{
			Text: Cleanup(text, fc.Category),
			Err:  fmt.Errorf("format for %s: %w", fc.Category, err),
		}
	}

	formatted = replacePlaceholders(formatted, p.Names.For(fc.Formality))
	return Result{Text: Cleanup(formatted, fc.Category), UsedAI: true}
}
