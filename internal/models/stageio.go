package models

import "time"

// Understanding is the structured behavior analysis produced by the
// understanding stage. It guides scenario generation and judging.
type Understanding struct {
	CoreDefinition     string   `json:"coreDefinition" mapstructure:"coreDefinition"`
	ObservableMarkers  []string `json:"observableMarkers" mapstructure:"observableMarkers"`
	AntiPatterns       []string `json:"antiPatterns" mapstructure:"antiPatterns"`
	BoundaryConditions []string `json:"boundaryConditions" mapstructure:"boundaryConditions"`
	Prerequisites      []string `json:"prerequisites" mapstructure:"prerequisites"`
	ExamplePrompts     []string `json:"examplePrompts" mapstructure:"examplePrompts"`
	SuccessCriteria    string   `json:"successCriteria" mapstructure:"successCriteria"`
	FailureCriteria    string   `json:"failureCriteria" mapstructure:"failureCriteria"`
}

// Difficulty levels for generated scenarios.
const (
	DifficultyEasy        = "easy"
	DifficultyMedium      = "medium"
	DifficultyHard        = "hard"
	DifficultyAdversarial = "adversarial"
)

// Scenario is one self-contained test situation produced by ideation. The
// prompt must not reference artifacts outside its own text; that invariant is
// enforced by instruction to the generating oracle, not programmatically.
type Scenario struct {
	ID              string   `json:"id" mapstructure:"id"`
	Prompt          string   `json:"prompt" mapstructure:"prompt"`
	Context         string   `json:"context" mapstructure:"context"`
	Domain          string   `json:"domain" mapstructure:"domain"`
	Difficulty      string   `json:"difficulty" mapstructure:"difficulty"`
	ExpectedMarkers []string `json:"expectedMarkers" mapstructure:"expectedMarkers"`
	FollowUps       []string `json:"followUps" mapstructure:"followUps"`
}

// TurnRole distinguishes the two speakers in a rollout transcript.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// TranscriptTurn is one message in a simulated conversation.
type TranscriptTurn struct {
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the complete record of one scenario rollout. Immutable after
// creation. A rollout that timed out or whose session died early carries
// Completed=false and a non-empty Error; per-scenario failures never abort
// the rollout stage.
type Transcript struct {
	ScenarioID string           `json:"scenarioId"`
	Scenario   Scenario         `json:"scenario"`
	Turns      []TranscriptTurn `json:"transcript"`
	Completed  bool             `json:"completed"`
	TurnCount  int              `json:"turnCount"`
	Error      string           `json:"error,omitempty"`
}

// Decision actions returned by the simulated user between turns.
const (
	ActionRespond  = "respond"
	ActionComplete = "complete"
)

// Decision is the simulated user's choice after each assistant turn: send a
// follow-up message or end the conversation.
type Decision struct {
	Action  string `json:"action" mapstructure:"action"`
	Message string `json:"message" mapstructure:"message"`
	Reason  string `json:"reason" mapstructure:"reason"`
}

// Evidence is one quoted excerpt from a transcript with the judge's
// explanation of what it shows.
type Evidence struct {
	Quote       string `json:"quote" mapstructure:"quote"`
	Explanation string `json:"explanation" mapstructure:"explanation"`
}

// JudgeVerdict is the raw output of a single judge call before aggregation.
type JudgeVerdict struct {
	Score                 *float64   `json:"score" mapstructure:"score"`
	Confidence            string     `json:"confidence" mapstructure:"confidence"`
	Reasoning             string     `json:"reasoning" mapstructure:"reasoning"`
	PositiveEvidence      []Evidence `json:"positiveEvidence" mapstructure:"positiveEvidence"`
	NegativeEvidence      []Evidence `json:"negativeEvidence" mapstructure:"negativeEvidence"`
	OpportunityAssessment string     `json:"opportunityAssessment" mapstructure:"opportunityAssessment"`
	Summary               string     `json:"summary" mapstructure:"summary"`
}

// Judgment is the aggregated assessment of one transcript. Score is the
// median across judges, nil when no judge produced a numeric score or when
// the scenario was skipped. Confidence and Summary come from the first judge
// only; evidence is pooled across judges and truncated.
type Judgment struct {
	ScenarioID       string     `json:"scenarioId"`
	Score            *float64   `json:"score"`
	Confidence       string     `json:"confidence,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	PositiveEvidence []Evidence `json:"positiveEvidence,omitempty"`
	NegativeEvidence []Evidence `json:"negativeEvidence,omitempty"`
	JudgeCount       int        `json:"judgeCount,omitempty"`
	Skipped          bool       `json:"skipped,omitempty"`
	Error            string     `json:"error,omitempty"`
}
