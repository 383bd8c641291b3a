package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultCommand is the external CLI invoked when none is configured.
const DefaultCommand = "claude"

// CLIOracle invokes an external reasoning CLI. One-shot calls run the
// command in non-interactive mode and read stdout; interactive sessions keep
// a long-lived process attached through pipes.
type CLIOracle struct {
	// Command is the executable to run; defaults to DefaultCommand.
	Command string
	// ExtraArgs are appended to every invocation, before the prompt.
	ExtraArgs []string
}

// NewCLIOracle creates a CLIOracle for the given command. An empty command
// selects DefaultCommand.
func NewCLIOracle(command string, extraArgs ...string) *CLIOracle {
	return &CLIOracle{Command: command, ExtraArgs: extraArgs}
}

func (o *CLIOracle) command() string {
	if o.Command == "" {
		return DefaultCommand
	}
	return o.Command
}

// Invoke implements [OneShot] by running one non-interactive CLI call.
func (o *CLIOracle) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Result, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-p", "--permission-mode", "default", "--output-format", "json"}
	if opts.SystemPrompt != "" {
		args = append(args, "--system-prompt", opts.SystemPrompt)
	}
	args = append(args, o.ExtraArgs...)
	args = append(args, prompt)

	preview := strings.ReplaceAll(prompt, "\n", " ")
	if len(preview) > 100 {
		preview = preview[:100]
	}
	slog.Debug("oracle invoke", "command", o.command(), "prompt", preview, "timeout", timeout)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cctx, o.command(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	slog.Debug("oracle invoke finished", "elapsed", time.Since(start), "err", err)

	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Timeout: timeout}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ProcessError{ExitCode: exitErr.ExitCode(), Stderr: truncateStderr(stderr.String())}
		}
		return nil, &ProcessError{Err: fmt.Errorf("spawning %s: %w", o.command(), err)}
	}

	text := strings.TrimSpace(stdout.String())
	res := &Result{Text: text}
	if raw := tryParse(text); raw != nil {
		res.JSON = raw
		res.Text = unwrapText(raw, text)
	}
	return res, nil
}

// unwrapText lifts the answer text out of a CLI result envelope, falling
// back to the raw body for anything else.
func unwrapText(raw json.RawMessage, fallback string) string {
	var envelope struct {
		Type    string `json:"type"`
		Result  string `json:"result"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fallback
	}
	if envelope.Type == "result" && envelope.Result != "" {
		return envelope.Result
	}
	if envelope.Content != "" {
		return envelope.Content
	}
	return fallback
}

func truncateStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 500 {
		return s[:500]
	}
	return s
}

// OpenSession implements [Interactive] by starting the agent process with
// its stdin and stdout attached through pipes.
func (o *CLIOracle) OpenSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	var args []string
	if cfg.SystemPrompt != "" {
		args = append(args, "--system-prompt", cfg.SystemPrompt)
	}

	cmd := exec.Command(o.command(), args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, &ProcessError{Err: fmt.Errorf("starting %s: %w", o.command(), err)}
	}
	slog.Debug("interactive session started", "command", o.command(), "pid", cmd.Process.Pid)

	s := &cliSession{
		cmd:    cmd,
		stdin:  stdin,
		output: make(chan []byte, 64),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
	go s.readLoop(stdout)
	go func() {
		_ = cmd.Wait()
		close(s.done)
	}()
	return s, nil
}

type cliSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output chan []byte
	done   chan struct{}
	quit   chan struct{}

	closeOnce sync.Once
}

func (s *cliSession) readLoop(r io.Reader) {
	defer close(s.output)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.output <- chunk:
			case <-s.quit:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *cliSession) Write(text string) error {
	// Pipes want a newline where a real terminal would see a carriage
	// return.
	_, err := io.WriteString(s.stdin, text+"\n")
	if err != nil {
		return fmt.Errorf("writing to session: %w", err)
	}
	return nil
}

func (s *cliSession) Output() <-chan []byte { return s.output }

func (s *cliSession) Done() <-chan struct{} { return s.done }

func (s *cliSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		_ = s.stdin.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
	return nil
}

var (
	_ OneShot     = (*CLIOracle)(nil)
	_ Interactive = (*CLIOracle)(nil)
)
