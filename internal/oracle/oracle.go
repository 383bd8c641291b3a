// Package oracle abstracts the external reasoning service used throughout
// the evaluation pipeline: one-shot structured calls for analysis, scenario
// generation and judging, and interactive sessions for driving the agent
// under test.
package oracle

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTimeout bounds a one-shot call when no timeout is supplied.
const DefaultTimeout = 120 * time.Second

// Result is the outcome of a one-shot oracle call. JSON is set when the raw
// response body itself parsed as JSON; Text always carries the unwrapped
// response text.
type Result struct {
	Text string
	JSON json.RawMessage
}

// InvokeOptions configures a single one-shot call.
type InvokeOptions struct {
	SystemPrompt string
	Timeout      time.Duration
}

// OneShot is a request/response oracle. Implementations return a
// *TimeoutError when the call exceeds its timeout and a *ProcessError when
// the underlying invocation fails.
type OneShot interface {
	Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Result, error)
}

// SessionConfig configures an interactive session.
type SessionConfig struct {
	SystemPrompt string
}

// Session is one interactive conversation with the agent under test. The
// interface provides no end-of-response signal; callers own all quiescence
// and timeout logic.
type Session interface {
	// Write sends text to the session as one user message.
	Write(text string) error
	// Output delivers raw output chunks as they arrive. The channel is
	// closed when the session ends.
	Output() <-chan []byte
	// Done is closed when the underlying process exits, expectedly or not.
	Done() <-chan struct{}
	// Close tears the session down. Safe to call multiple times and after
	// the session has already exited.
	Close() error
}

// Interactive opens sessions with the agent under test.
type Interactive interface {
	OpenSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

// InvokeJSON performs a one-shot call and applies the JSON extraction order
// to its response: a fenced JSON code block first, then the entire text,
// otherwise a *ParseError carrying a truncated preview.
func InvokeJSON(ctx context.Context, o OneShot, prompt string, opts InvokeOptions) (json.RawMessage, error) {
	res, err := o.Invoke(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	return ExtractJSON(res)
}
