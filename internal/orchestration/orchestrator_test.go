package orchestration

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mangleddev/behaviorlab/internal/config"
	"github.com/mangleddev/behaviorlab/internal/models"
	"github.com/mangleddev/behaviorlab/internal/oracle"
	"github.com/mangleddev/behaviorlab/internal/rollout"
	"github.com/mangleddev/behaviorlab/internal/store"
)

const understandingJSON = `{
	"coreDefinition": "responds briefly without filler",
	"observableMarkers": ["short answers"]
}`

const oneScenarioJSON = `{
	"scenarios": [{"id": "s1", "prompt": "Explain what a mutex is."}]
}`

const twoScenariosJSON = `{
	"scenarios": [
		{"id": "s1", "prompt": "Explain what a mutex is."},
		{"id": "s2", "prompt": "Summarize this design doc."}
	]
}`

// newTestOrchestrator wires a real store and rollout engine around a
// scripted stage oracle. The agent under test answers every message with a
// fixed response.
func newTestOrchestrator(t *testing.T) (*Orchestrator, *oracle.ScriptedOracle) {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	agent := &oracle.ScriptedInteractive{
		NewSession: func() *oracle.ScriptedSession {
			s := oracle.NewScriptedSession()
			s.OnWrite = func(s *oracle.ScriptedSession, _ string) { s.Emit("a short answer") }
			return s
		},
	}
	stageOracle := oracle.NewScriptedOracle()

	engine := rollout.NewEngine(agent, stageOracle, nil)
	engine.WarmUp = 5 * time.Millisecond
	engine.QuiescencePoll = 5 * time.Millisecond
	engine.QuiescenceIdle = 25 * time.Millisecond

	return New(st, stageOracle, engine, nil), stageOracle
}

// eventRecorder collects progress events across goroutines.
type eventRecorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *eventRecorder) record(ev ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

func intPtr(v int) *int { return &v }

func quickOverrides() config.Overrides {
	return config.Overrides{NumJudges: intPtr(1), MaxTurns: intPtr(1)}
}

func TestCreateEvaluation_Defaults(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	ev, err := orch.CreateEvaluation(context.Background(), NewEvaluationParams{
		BehaviorKey: "concise_responses",
		Tier:        "quick",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ev.ID)
	require.Equal(t, "concise_responses (quick)", ev.Name)
	require.Equal(t, "quick", ev.Config.Tier)
	require.Equal(t, 5, ev.Config.NumScenarios)
	require.Equal(t, 1, ev.Config.NumJudges)
	require.Equal(t, 3, ev.Config.MaxTurns)
	require.InDelta(t, 0.5, ev.Config.Diversity, 1e-9)
	require.Equal(t, models.StatusPending, ev.Status)
	require.Equal(t, models.StatusPending, ev.Stages.Understanding.Status)
	require.Equal(t, models.StatusPending, ev.Stages.Judgment.Status)
}

func TestCreateEvaluation_UnknownBehavior(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.CreateEvaluation(context.Background(), NewEvaluationParams{BehaviorKey: "no_such_behavior"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = orch.CreateEvaluation(context.Background(), NewEvaluationParams{})
	require.ErrorAs(t, err, &verr)
}

func TestRunEvaluation_EndToEnd(t *testing.T) {
	orch, stageOracle := newTestOrchestrator(t)
	ctx := context.Background()

	ev, err := orch.CreateEvaluation(ctx, NewEvaluationParams{
		BehaviorKey: "concise_responses",
		Tier:        "quick",
		Overrides:   quickOverrides(),
	})
	require.NoError(t, err)

	// One understanding call, one ideation call, then one judge call per
	// scenario. With maxTurns 1 the simulated user is never consulted.
	stageOracle.Queue(understandingJSON)
	stageOracle.Queue(twoScenariosJSON)
	stageOracle.Queue(`{"score": 0.6, "confidence": "medium"}`)
	stageOracle.Queue(`{"score": 0.8, "confidence": "high"}`)

	rec := &eventRecorder{}
	orch.OnProgress(rec.record)

	final, err := orch.RunEvaluation(ctx, ev.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, final.Status)
	require.NotNil(t, final.StartedAt)
	require.NotNil(t, final.CompletedAt)
	require.Equal(t, 4, stageOracle.CallCount())

	require.NotNil(t, final.Results)
	require.NotNil(t, final.Results.OverallScore)
	require.InDelta(t, 0.7, *final.Results.OverallScore, 1e-9)
	require.InDelta(t, 0.6, final.Results.ScoreDistribution.Min, 1e-9)
	require.InDelta(t, 0.8, final.Results.ScoreDistribution.Max, 1e-9)

	require.Len(t, final.Stages.Judgment.Judgments, 2)
	require.Equal(t, models.StatusCompleted, final.Stages.Understanding.Status)
	require.Equal(t, models.StatusCompleted, final.Stages.Ideation.Status)
	require.Equal(t, models.StatusCompleted, final.Stages.Rollout.Status)
	require.Equal(t, models.StatusCompleted, final.Stages.Judgment.Status)

	types := rec.types()
	require.Equal(t, EventEvaluationStart, types[0])
	require.Contains(t, types, EventStageProgress)
	require.Equal(t, EventEvaluationComplete, types[len(types)-1])

	require.False(t, orch.IsActive(ev.ID))
	require.Empty(t, orch.ActiveRuns())
}

func TestRunEvaluation_StageFailure(t *testing.T) {
	// An empty scripted oracle fails the understanding call.
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	ev, err := orch.CreateEvaluation(ctx, NewEvaluationParams{
		BehaviorKey: "concise_responses",
		Tier:        "quick",
		Overrides:   quickOverrides(),
	})
	require.NoError(t, err)

	rec := &eventRecorder{}
	orch.OnProgress(rec.record)

	_, err = orch.RunEvaluation(ctx, ev.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "understanding stage")

	stored, err := orch.store.GetEvaluation(ctx, ev.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusError, stored.Status)
	require.NotEmpty(t, stored.Error)
	require.Equal(t, models.StatusError, stored.Stages.Understanding.Status)

	types := rec.types()
	require.Equal(t, EventEvaluationError, types[len(types)-1])
	require.False(t, orch.IsActive(ev.ID))
}

func TestRunEvaluation_AlreadyActive(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	ev, err := orch.CreateEvaluation(ctx, NewEvaluationParams{
		BehaviorKey: "concise_responses",
		Tier:        "quick",
	})
	require.NoError(t, err)

	require.NoError(t, orch.register(ev.ID))
	require.True(t, orch.IsActive(ev.ID))

	_, err = orch.RunEvaluation(ctx, ev.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already active")
}

func TestRunEvaluation_NotFound(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.RunEvaluation(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateComparison(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()

	c, err := orch.CreateComparison(ctx, NewComparisonParams{
		Name:          "tone experiment",
		BehaviorKey:   "concise_responses",
		Tier:          "quick",
		PromptConfigA: models.PromptConfig{Variant: "A"},
		PromptConfigB: models.PromptConfig{SystemPrompt: "Be extremely terse.", Variant: "B"},
	})
	require.NoError(t, err)
	require.Equal(t, "tone experiment", c.Name)
	require.Equal(t, models.StatusPending, c.Status)

	evalA, err := orch.store.GetEvaluation(ctx, c.EvaluationA)
	require.NoError(t, err)
	require.Equal(t, "tone experiment / A", evalA.Name)
	require.Empty(t, evalA.PromptConfig.SystemPrompt)

	evalB, err := orch.store.GetEvaluation(ctx, c.EvaluationB)
	require.NoError(t, err)
	require.Equal(t, "tone experiment / B", evalB.Name)
	require.Equal(t, "Be extremely terse.", evalB.PromptConfig.SystemPrompt)
}

func TestRunComparison_EndToEnd(t *testing.T) {
	orch, stageOracle := newTestOrchestrator(t)
	ctx := context.Background()

	c, err := orch.CreateComparison(ctx, NewComparisonParams{
		BehaviorKey:   "concise_responses",
		Tier:          "quick",
		Overrides:     quickOverrides(),
		PromptConfigB: models.PromptConfig{SystemPrompt: "Be extremely terse."},
	})
	require.NoError(t, err)
	require.Equal(t, "concise_responses comparison", c.Name)

	// Side A then side B, each: understanding, ideation, one verdict.
	stageOracle.Queue(understandingJSON)
	stageOracle.Queue(oneScenarioJSON)
	stageOracle.Queue(`{"score": 0.4, "confidence": "medium"}`)
	stageOracle.Queue(understandingJSON)
	stageOracle.Queue(oneScenarioJSON)
	stageOracle.Queue(`{"score": 0.8, "confidence": "high"}`)

	final, err := orch.RunComparison(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, final.Status)
	require.NotNil(t, final.Results)
	require.Equal(t, "B", final.Results.Winner)
	require.InDelta(t, 0.4, final.Results.ScoreA, 1e-9)
	require.InDelta(t, 0.8, final.Results.ScoreB, 1e-9)
	require.InDelta(t, 0.4, final.Results.Difference, 1e-9)

	evalA, err := orch.store.GetEvaluation(ctx, c.EvaluationA)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, evalA.Status)
}

func TestRunComparison_Tie(t *testing.T) {
	orch, stageOracle := newTestOrchestrator(t)
	ctx := context.Background()

	c, err := orch.CreateComparison(ctx, NewComparisonParams{
		BehaviorKey: "concise_responses",
		Tier:        "quick",
		Overrides:   quickOverrides(),
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		stageOracle.Queue(understandingJSON)
		stageOracle.Queue(oneScenarioJSON)
		stageOracle.Queue(`{"score": 0.5, "confidence": "medium"}`)
	}

	final, err := orch.RunComparison(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "tie", final.Results.Winner)
	require.Zero(t, final.Results.Difference)
}

func TestRunComparison_NoScoreFails(t *testing.T) {
	orch, stageOracle := newTestOrchestrator(t)
	ctx := context.Background()

	c, err := orch.CreateComparison(ctx, NewComparisonParams{
		BehaviorKey: "concise_responses",
		Tier:        "quick",
		Overrides:   quickOverrides(),
	})
	require.NoError(t, err)

	// Side A's only judge declines to score; the evaluation still completes
	// but the comparison cannot be resolved.
	stageOracle.Queue(understandingJSON)
	stageOracle.Queue(oneScenarioJSON)
	stageOracle.Queue(`{"score": null, "confidence": "low"}`)
	stageOracle.Queue(understandingJSON)
	stageOracle.Queue(oneScenarioJSON)
	stageOracle.Queue(`{"score": 0.5, "confidence": "medium"}`)

	_, err = orch.RunComparison(ctx, c.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "produced no overall score")

	stored, err := orch.store.GetComparison(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusError, stored.Status)
	require.NotEmpty(t, stored.Error)

	evalA, err := orch.store.GetEvaluation(ctx, c.EvaluationA)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, evalA.Status)
	require.Nil(t, evalA.Results.OverallScore)
}
