package oracle

import (
	"fmt"
	"time"
)

// TimeoutError reports a one-shot call that exceeded its timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("oracle call timed out after %s", e.Timeout)
}

// ProcessError reports an oracle invocation whose underlying process failed
// to start or exited non-zero.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle process failed: %v", e.Err)
	}
	return fmt.Sprintf("oracle process exited with code %d: %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// parse previews are capped so a garbage response doesn't flood error
// messages or stored stage records.
const parsePreviewLen = 200

// ParseError reports a response that could not be interpreted as JSON by any
// extraction strategy. Preview holds a truncated copy of the offending text.
type ParseError struct {
	Preview string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON response: %s", e.Preview)
}

func newParseError(text string) *ParseError {
	if len(text) > parsePreviewLen {
		text = text[:parsePreviewLen]
	}
	return &ParseError{Preview: text}
}
