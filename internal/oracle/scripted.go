package oracle

import (
	"context"
	"sync"
)

// ScriptedOracle is a OneShot implementation for tests: it answers from a
// fixed queue of responses, or from a Handler when one is set, and records
// every prompt it receives.
type ScriptedOracle struct {
	// Handler, when non-nil, computes each response dynamically.
	Handler func(prompt string) (*Result, error)

	mu        sync.Mutex
	responses []scriptedResponse
	prompts   []string
}

type scriptedResponse struct {
	text string
	err  error
}

// NewScriptedOracle queues the given response texts in order.
func NewScriptedOracle(responses ...string) *ScriptedOracle {
	o := &ScriptedOracle{}
	for _, r := range responses {
		o.Queue(r)
	}
	return o
}

// Queue appends a successful response.
func (o *ScriptedOracle) Queue(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responses = append(o.responses, scriptedResponse{text: text})
}

// QueueError appends a failing response.
func (o *ScriptedOracle) QueueError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.responses = append(o.responses, scriptedResponse{err: err})
}

// Prompts returns a copy of all prompts received so far.
func (o *ScriptedOracle) Prompts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.prompts...)
}

// CallCount returns how many invocations have been made.
func (o *ScriptedOracle) CallCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.prompts)
}

// Invoke implements [OneShot].
func (o *ScriptedOracle) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.prompts = append(o.prompts, prompt)
	handler := o.Handler
	if handler == nil {
		if len(o.responses) == 0 {
			o.mu.Unlock()
			return nil, &ProcessError{Err: errNoScript}
		}
		next := o.responses[0]
		o.responses = o.responses[1:]
		o.mu.Unlock()
		if next.err != nil {
			return nil, next.err
		}
		res := &Result{Text: next.text}
		if raw := tryParse(next.text); raw != nil {
			res.JSON = raw
		}
		return res, nil
	}
	o.mu.Unlock()
	return handler(prompt)
}

var errNoScript = &exhaustedScriptError{}

type exhaustedScriptError struct{}

func (*exhaustedScriptError) Error() string { return "scripted oracle has no responses left" }

// ScriptedSession is a Session implementation for tests. Output is emitted
// by the test via Emit, optionally in response to writes via OnWrite.
type ScriptedSession struct {
	// OnWrite, when non-nil, runs in its own goroutine for every Write.
	OnWrite func(s *ScriptedSession, text string)

	output   chan []byte
	done     chan struct{}
	quit     chan struct{}
	exitOnce sync.Once
	quitOnce sync.Once

	mu     sync.Mutex
	writes []string
}

// NewScriptedSession creates an idle scripted session.
func NewScriptedSession() *ScriptedSession {
	return &ScriptedSession{
		output: make(chan []byte, 64),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
}

// Emit delivers one output chunk to the session's consumer.
func (s *ScriptedSession) Emit(data string) {
	select {
	case s.output <- []byte(data):
	case <-s.quit:
	}
}

// Exit simulates the underlying process terminating.
func (s *ScriptedSession) Exit() {
	s.exitOnce.Do(func() { close(s.done) })
}

// Writes returns a copy of everything written to the session so far.
func (s *ScriptedSession) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// Write implements [Session].
func (s *ScriptedSession) Write(text string) error {
	s.mu.Lock()
	s.writes = append(s.writes, text)
	s.mu.Unlock()
	if s.OnWrite != nil {
		go s.OnWrite(s, text)
	}
	return nil
}

// Output implements [Session].
func (s *ScriptedSession) Output() <-chan []byte { return s.output }

// Done implements [Session].
func (s *ScriptedSession) Done() <-chan struct{} { return s.done }

// Close implements [Session].
func (s *ScriptedSession) Close() error {
	s.quitOnce.Do(func() { close(s.quit) })
	return nil
}

// ScriptedInteractive opens ScriptedSessions from a factory, tracking how
// many sessions are open at once.
type ScriptedInteractive struct {
	// NewSession builds each session; defaults to NewScriptedSession.
	NewSession func() *ScriptedSession

	mu       sync.Mutex
	open     int
	maxOpen  int
	sessions []*ScriptedSession
}

// OpenSession implements [Interactive].
func (f *ScriptedInteractive) OpenSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	build := f.NewSession
	if build == nil {
		build = NewScriptedSession
	}
	s := build()

	f.mu.Lock()
	f.open++
	if f.open > f.maxOpen {
		f.maxOpen = f.open
	}
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()

	go func() {
		<-s.quit
		f.mu.Lock()
		f.open--
		f.mu.Unlock()
	}()
	return s, nil
}

// MaxOpen reports the high-water mark of simultaneously open sessions.
func (f *ScriptedInteractive) MaxOpen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxOpen
}

// Sessions returns every session opened so far.
func (f *ScriptedInteractive) Sessions() []*ScriptedSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ScriptedSession(nil), f.sessions...)
}

var (
	_ OneShot     = (*ScriptedOracle)(nil)
	_ Session     = (*ScriptedSession)(nil)
	_ Interactive = (*ScriptedInteractive)(nil)
)
