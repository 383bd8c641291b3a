// Package rollout drives generated scenarios against the agent under test
// over interactive sessions, producing conversation transcripts.
package rollout

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/prompts"
	"github.com/mangleddev/behaviorlab/internal/validation"
)

// Default engine timings. The agent's interactive surface gives no
// end-of-response signal, so turn boundaries are detected by output
// quiescence.
const (
	DefaultWarmUp         = 1 * time.Second
	DefaultQuiescencePoll = 500 * time.Millisecond
	DefaultQuiescenceIdle = 2 * time.Second
	DefaultTurnTimeout    = 60 * time.Second
	DefaultMaxConcurrent  = 3
)

// Engine runs scenario rollouts with bounded parallelism. Timings are fields
// so tests can compress them.
type Engine struct {
	Agent oracle.Interactive
	User  oracle.OneShot
	Log   *slog.Logger

	WarmUp         time.Duration
	QuiescencePoll time.Duration
	QuiescenceIdle time.Duration
	TurnTimeout    time.Duration
	UserTimeout    time.Duration
	MaxConcurrent  int
}

// NewEngine returns an engine with production timings. Agent opens sessions
// with the system under test; user plays the simulated user deciding whether
// each conversation continues.
func NewEngine(agent oracle.Interactive, user oracle.OneShot, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		Agent:          agent,
		User:           user,
		Log:            log,
		WarmUp:         DefaultWarmUp,
		QuiescencePoll: DefaultQuiescencePoll,
		QuiescenceIdle: DefaultQuiescenceIdle,
		TurnTimeout:    DefaultTurnTimeout,
		UserTimeout:    oracle.DefaultTimeout / 2,
		MaxConcurrent:  DefaultMaxConcurrent,
	}
}

// Run executes every scenario and returns one transcript per scenario, in
// scenario order. Per-scenario failures are recorded on the transcript and
// never abort the run. onBatch, if non-nil, is called after each batch with
// the cumulative completed count.
func (e *Engine) Run(ctx context.Context, scenarios []models.Scenario, promptCfg models.PromptConfig, maxTurns int, onBatch func(completed, total int)) []models.Transcript {
	total := len(scenarios)
	transcripts := make([]models.Transcript, total)

	for start := 0; start < total; start += e.MaxConcurrent {
		end := start + e.MaxConcurrent
		if end > total {
			end = total
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				transcripts[i] = e.runScenario(gctx, scenarios[i], promptCfg, maxTurns)
				return nil
			})
		}
		g.Wait()

		// Progress is reported in whole batches, as started, so the
		// counter can briefly lead individual slow scenarios.
		completed := start + e.MaxConcurrent
		if completed > total {
			completed = total
		}
		e.Log.Info("rollout progress", "completed", completed, "total", total)
		if onBatch != nil {
			onBatch(completed, total)
		}
	}
	return transcripts
}

// collectOutcome classifies how one wait-for-response ended.
type collectOutcome int

const (
	outcomeQuiet collectOutcome = iota
	outcomeExited
	outcomeTimeout
	outcomeCancelled
)

func (e *Engine) runScenario(ctx context.Context, scenario models.Scenario, promptCfg models.PromptConfig, maxTurns int) models.Transcript {
	tr := models.Transcript{
		ScenarioID: scenario.ID,
		Scenario:   scenario,
		Turns:      []models.TranscriptTurn{},
	}

	sess, err := e.Agent.OpenSession(ctx, oracle.SessionConfig{SystemPrompt: promptCfg.SystemPrompt})
	if err != nil {
		tr.Error = "opening session: " + err.Error()
		return tr
	}
	defer sess.Close()

	// Give the session a moment to initialize before the first message.
	select {
	case <-time.After(e.WarmUp):
	case <-sess.Done():
		tr.Error = "session exited before any output"
		return tr
	case <-ctx.Done():
		tr.Error = ctx.Err().Error()
		return tr
	}

	message := scenario.Prompt
	for {
		tr.Turns = append(tr.Turns, userTurn(message))
		if err := sess.Write(message); err != nil {
			tr.Error = "writing to session: " + err.Error()
			return tr
		}

		raw, outcome := e.collectResponse(ctx, sess)
		switch outcome {
		case outcomeTimeout:
			tr.Error = "response timeout"
			return tr
		case outcomeCancelled:
			tr.Error = ctx.Err().Error()
			return tr
		case outcomeExited:
			return e.finishOnExit(tr)
		}

		response := oracle.CleanSessionOutput(oracle.StripANSI(raw))
		if response != "" {
			tr.Turns = append(tr.Turns, assistantTurn(response))
		}
		tr.TurnCount++

		if tr.TurnCount >= maxTurns {
			tr.Completed = true
			return tr
		}

		decision := e.decideNextAction(ctx, tr.Turns, scenario)
		if decision.Action != models.ActionRespond || decision.Message == "" {
			tr.Completed = true
			return tr
		}
		// Output emitted while the decision was in flight belongs to no
		// turn; discard it so it cannot leak into the next response.
		drainOutput(sess)
		message = decision.Message
	}
}

// drainOutput discards any buffered session output without blocking.
func drainOutput(sess oracle.Session) {
	for {
		select {
		case _, ok := <-sess.Output():
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// finishOnExit applies the session-exit rule: an exit before the
// conversation started is a failure, an exit mid-conversation ends it
// normally.
func (e *Engine) finishOnExit(tr models.Transcript) models.Transcript {
	if len(tr.Turns) == 0 {
		tr.Error = "session exited before any output"
		return tr
	}
	tr.Completed = true
	return tr
}

// collectResponse accumulates session output until it goes quiet, the
// per-turn timeout elapses, or the session ends.
func (e *Engine) collectResponse(ctx context.Context, sess oracle.Session) (string, collectOutcome) {
	var buf bytes.Buffer
	last := time.Now()

	timeout := time.NewTimer(e.TurnTimeout)
	defer timeout.Stop()
	poll := time.NewTicker(e.QuiescencePoll)
	defer poll.Stop()

	for {
		select {
		case chunk, ok := <-sess.Output():
			if !ok {
				return buf.String(), outcomeExited
			}
			buf.Write(chunk)
			last = time.Now()
		case <-sess.Done():
			return buf.String(), outcomeExited
		case <-poll.C:
			if time.Since(last) > e.QuiescenceIdle {
				return buf.String(), outcomeQuiet
			}
		case <-timeout.C:
			return buf.String(), outcomeTimeout
		case <-ctx.Done():
			return buf.String(), outcomeCancelled
		}
	}
}

// decideNextAction asks the simulated-user oracle whether the conversation
// should continue. Any failure ends the conversation rather than the rollout.
func (e *Engine) decideNextAction(ctx context.Context, turns []models.TranscriptTurn, scenario models.Scenario) models.Decision {
	complete := models.Decision{Action: models.ActionComplete}

	prompt, err := prompts.Render(prompts.SimulatedUser, map[string]any{
		"scenario":   scenario,
		"transcript": prompts.TranscriptText(turns),
	})
	if err != nil {
		e.Log.Warn("rendering user decision prompt", "scenario", scenario.ID, "error", err)
		return complete
	}

	raw, err := oracle.InvokeJSON(ctx, e.User, prompt, oracle.InvokeOptions{Timeout: e.UserTimeout})
	if err != nil {
		e.Log.Warn("user decision failed, completing conversation", "scenario", scenario.ID, "error", err)
		return complete
	}
	if errs := validation.ValidateDecision(raw); len(errs) > 0 {
		e.Log.Warn("user decision payload invalid", "scenario", scenario.ID, "errors", errs)
		return complete
	}

	var decision models.Decision
	if err := oracle.DecodeInto(raw, &decision); err != nil {
		e.Log.Warn("user decision payload undecodable", "scenario", scenario.ID, "error", err)
		return complete
	}
	return decision
}

func userTurn(content string) models.TranscriptTurn {
	return models.TranscriptTurn{Role: models.RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

func assistantTurn(content string) models.TranscriptTurn {
	return models.TranscriptTurn{Role: models.RoleAssistant, Content: content, Timestamp: time.Now().UTC()}
}
