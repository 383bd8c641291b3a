package models

import "time"

// Status is the lifecycle state of an evaluation or comparison.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// StageName identifies one of the four pipeline stages.
type StageName string

const (
	StageUnderstanding StageName = "understanding"
	StageIdeation      StageName = "ideation"
	StageRollout       StageName = "rollout"
	StageJudgment      StageName = "judgment"
)

// Behavior is a named, immutable behavior definition. The catalog is the
// union of the built-in set and user-defined behaviors; keys are globally
// unique.
type Behavior struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// PromptConfig carries optional system instructions applied to the agent
// under test. It is the only field that differs between the two sides of a
// comparison.
type PromptConfig struct {
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Variant      string `json:"variant,omitempty"`
}

// EvaluationConfig is the resolved per-evaluation configuration. Fields are
// populated from the tier default table at creation time; any explicitly
// supplied value overrides its tier default.
type EvaluationConfig struct {
	Tier         string  `json:"tier"`
	NumScenarios int     `json:"numScenarios"`
	NumJudges    int     `json:"numJudges"`
	MaxTurns     int     `json:"maxTurns"`
	Diversity    float64 `json:"diversity"`
}

// StageRecord tracks one stage's status and output. Only the fields relevant
// to the owning stage are populated: Result for understanding, Scenarios for
// ideation, Transcripts plus progress counters for rollout, Judgments plus
// progress counters for judgment.
type StageRecord struct {
	Status      Status     `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`

	Result        *Understanding `json:"result,omitempty"`
	ScenarioCount int            `json:"scenarioCount,omitempty"`
	Scenarios     []Scenario     `json:"scenarios,omitempty"`
	Completed     int            `json:"completed,omitempty"`
	Total         int            `json:"total,omitempty"`
	Transcripts   []Transcript   `json:"transcripts,omitempty"`
	Judgments     []Judgment     `json:"judgments,omitempty"`
}

// Stages holds the four per-stage sub-records of an evaluation.
type Stages struct {
	Understanding StageRecord `json:"understanding"`
	Ideation      StageRecord `json:"ideation"`
	Rollout       StageRecord `json:"rollout"`
	Judgment      StageRecord `json:"judgment"`
}

// Record returns a pointer to the named stage record, or nil for an unknown
// stage name.
func (s *Stages) Record(name StageName) *StageRecord {
	switch name {
	case StageUnderstanding:
		return &s.Understanding
	case StageIdeation:
		return &s.Ideation
	case StageRollout:
		return &s.Rollout
	case StageJudgment:
		return &s.Judgment
	}
	return nil
}

// Evaluation is the central entity: one behavior evaluated against one agent
// configuration. Owned exclusively by the record store; only the orchestrator
// and stage functions mutate it. Status never transitions backward.
type Evaluation struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	BehaviorKey  string             `json:"behaviorKey"`
	PromptConfig PromptConfig       `json:"promptConfig"`
	Config       EvaluationConfig   `json:"config"`
	Status       Status             `json:"status"`
	Stages       Stages             `json:"stages"`
	Results      *EvaluationResults `json:"results"`
	Error        string             `json:"error,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	StartedAt    *time.Time         `json:"startedAt,omitempty"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty"`
}

// EvaluationResults is the aggregate populated after the judgment stage
// completes successfully.
type EvaluationResults struct {
	OverallScore      *float64           `json:"overallScore"`
	ScoreDistribution *ScoreDistribution `json:"scoreDistribution"`
	KeyQuotes         []Evidence         `json:"keyQuotes"`
	FailurePatterns   []string           `json:"failurePatterns"`
}

// ScoreDistribution summarizes the spread of valid judgment scores. Std is
// the population standard deviation.
type ScoreDistribution struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Comparison pairs two evaluations (identical scale configuration, differing
// only in prompt config) and records which scored higher.
type Comparison struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	EvaluationA string             `json:"evaluationA"`
	EvaluationB string             `json:"evaluationB"`
	BehaviorKey string             `json:"behaviorKey"`
	Status      Status             `json:"status"`
	Results     *ComparisonResults `json:"results,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
}

// ComparisonResults records the outcome of an A/B comparison. Winner is "A",
// "B", or "tie"; a strictly greater overall score wins.
type ComparisonResults struct {
	Winner     string  `json:"winner"`
	ScoreA     float64 `json:"scoreA"`
	ScoreB     float64 `json:"scoreB"`
	Difference float64 `json:"difference"`
}
