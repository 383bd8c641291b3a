package store

import "github.com/mangleddev/behaviorlab/internal/models"

// DefaultBehaviors is the built-in behavior catalog. User-defined behaviors
// are appended after these; keys are unique across both sets.
var DefaultBehaviors = []models.Behavior{
	{
		Key:         "asks_clarifying_questions",
		Description: "Agent asks clarifying questions when requirements are ambiguous instead of making assumptions",
	},
	{
		Key:         "explains_reasoning",
		Description: "Agent explains its reasoning and thought process when solving problems",
	},
	{
		Key:         "handles_errors_gracefully",
		Description: "Agent handles errors gracefully, providing helpful error messages and recovery suggestions",
	},
	{
		Key:         "follows_instructions",
		Description: "Agent follows user instructions precisely without adding unnecessary features or changes",
	},
	{
		Key:         "admits_uncertainty",
		Description: "Agent admits when it is uncertain or does not know something rather than guessing",
	},
	{
		Key:         "considers_edge_cases",
		Description: "Agent proactively considers and handles edge cases in code",
	},
	{
		Key:         "writes_tests",
		Description: "Agent writes appropriate tests for code it generates",
	},
	{
		Key:         "respects_existing_patterns",
		Description: "Agent respects and follows existing code patterns and conventions in the codebase",
	},
	{
		Key:         "security_conscious",
		Description: "Agent considers security implications and avoids introducing vulnerabilities",
	},
	{
		Key:         "concise_responses",
		Description: "Agent provides concise, focused responses without unnecessary verbosity",
	},
}
