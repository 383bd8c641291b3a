package webapi

import (
	"time"

	"github.com/mangleddev/behaviorlab/internal/models"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// CreateBehaviorRequest adds a custom behavior to the catalog.
type CreateBehaviorRequest struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// CreateEvaluationRequest creates a pending evaluation. Optional config
// fields override the tier defaults.
type CreateEvaluationRequest struct {
	Name         string              `json:"name"`
	BehaviorKey  string              `json:"behaviorKey"`
	PromptConfig models.PromptConfig `json:"promptConfig"`
	Tier         string              `json:"tier"`
	NumScenarios *int                `json:"numScenarios,omitempty"`
	NumJudges    *int                `json:"numJudges,omitempty"`
	MaxTurns     *int                `json:"maxTurns,omitempty"`
	Diversity    *float64            `json:"diversity,omitempty"`
}

// CreateComparisonRequest creates a comparison and its two underlying
// evaluations.
type CreateComparisonRequest struct {
	Name          string              `json:"name"`
	BehaviorKey   string              `json:"behaviorKey"`
	Tier          string              `json:"tier"`
	NumScenarios  *int                `json:"numScenarios,omitempty"`
	NumJudges     *int                `json:"numJudges,omitempty"`
	MaxTurns      *int                `json:"maxTurns,omitempty"`
	Diversity     *float64            `json:"diversity,omitempty"`
	PromptConfigA models.PromptConfig `json:"promptConfigA"`
	PromptConfigB models.PromptConfig `json:"promptConfigB"`
}

// RunAccepted acknowledges an asynchronous run trigger.
type RunAccepted struct {
	ID     string        `json:"id"`
	Status models.Status `json:"status"`
}

// StatusResponse is the pollable run status of an evaluation.
type StatusResponse struct {
	ID          string                    `json:"id"`
	Status      models.Status             `json:"status"`
	Stages      models.Stages             `json:"stages"`
	Results     *models.EvaluationResults `json:"results"`
	StartedAt   *time.Time                `json:"startedAt,omitempty"`
	CompletedAt *time.Time                `json:"completedAt,omitempty"`
	Error       string                    `json:"error,omitempty"`
	Active      bool                      `json:"active"`
}

// ActiveRunsResponse lists ids currently driven by the orchestrator.
type ActiveRunsResponse struct {
	Active []string `json:"active"`
}
