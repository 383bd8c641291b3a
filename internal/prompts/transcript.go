package prompts

import (
	"strings"

	"github.com/mangleddev/behaviorlab/internal/models"
)

// TranscriptText flattens conversation turns into the "role: content" form
// the oracle prompts expect.
func TranscriptText(turns []models.TranscriptTurn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, string(t.Role)+": "+t.Content)
	}
	return strings.Join(parts, "\n\n")
}
