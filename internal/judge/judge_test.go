package judge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mangleddev/behaviorlab/internal/models"
)

func scorePtr(f float64) *float64 { return &f }

func TestMedianScore_OddCount(t *testing.T) {
	m := MedianScore([]float64{0.9, 0.2, 0.5})
	require.NotNil(t, m)
	require.Equal(t, 0.5, *m)
}

func TestMedianScore_EvenCountUsesLowerMiddle(t *testing.T) {
	m := MedianScore([]float64{0.8, 0.2})
	require.NotNil(t, m)
	require.Equal(t, 0.2, *m)
}

func TestMedianScore_Empty(t *testing.T) {
	require.Nil(t, MedianScore(nil))
}

func TestMedianScore_DoesNotMutateInput(t *testing.T) {
	scores := []float64{0.9, 0.1, 0.5}
	MedianScore(scores)
	require.Equal(t, []float64{0.9, 0.1, 0.5}, scores)
}

func TestCombineVerdicts(t *testing.T) {
	verdicts := []models.JudgeVerdict{
		{
			Score:      scorePtr(0.8),
			Confidence: "high",
			Summary:    "first judge summary",
			PositiveEvidence: []models.Evidence{
				{Quote: "p1"}, {Quote: "p2"},
			},
		},
		{
			Score:      scorePtr(0.4),
			Confidence: "low",
			Summary:    "second judge summary",
			PositiveEvidence: []models.Evidence{
				{Quote: "p3"}, {Quote: "p4"},
			},
			NegativeEvidence: []models.Evidence{
				{Quote: "n1"},
			},
		},
	}

	j := CombineVerdicts("scn-1", verdicts)
	require.Equal(t, "scn-1", j.ScenarioID)
	require.NotNil(t, j.Score)
	require.Equal(t, 0.4, *j.Score) // lower-middle of [0.4, 0.8]
	require.Equal(t, "high", j.Confidence)
	require.Equal(t, "first judge summary", j.Summary)
	require.Equal(t, 2, j.JudgeCount)

	// Evidence pooled across judges, capped at three per polarity.
	require.Len(t, j.PositiveEvidence, 3)
	require.Equal(t, "p1", j.PositiveEvidence[0].Quote)
	require.Equal(t, "p3", j.PositiveEvidence[2].Quote)
	require.Len(t, j.NegativeEvidence, 1)
}

func TestCombineVerdicts_NoNumericScores(t *testing.T) {
	j := CombineVerdicts("scn-1", []models.JudgeVerdict{
		{Score: nil, Confidence: "low"},
	})
	require.Nil(t, j.Score)
	require.Equal(t, "low", j.Confidence)
}

func TestCombineVerdicts_DefaultConfidence(t *testing.T) {
	j := CombineVerdicts("scn-1", []models.JudgeVerdict{{Score: scorePtr(0.5)}})
	require.Equal(t, "medium", j.Confidence)
	require.Empty(t, j.Summary)
}

func TestSkippedJudgment(t *testing.T) {
	j := SkippedJudgment("scn-2", "session exited before any output")
	require.True(t, j.Skipped)
	require.Nil(t, j.Score)
	require.Equal(t, "session exited before any output", j.Error)
}

func TestFailedJudgment(t *testing.T) {
	j := FailedJudgment("scn-3", errors.New("boom"))
	require.False(t, j.Skipped)
	require.Nil(t, j.Score)
	require.Equal(t, "boom", j.Error)
}

func TestAggregate(t *testing.T) {
	judgments := []models.Judgment{
		{ScenarioID: "a", Score: scorePtr(0.9), Summary: "great", PositiveEvidence: []models.Evidence{{Quote: "q1"}, {Quote: "q2"}}},
		{ScenarioID: "b", Score: scorePtr(0.3), Summary: "missed the opportunity"},
		{ScenarioID: "c", Score: nil, Skipped: true, Error: "rollout failed"},
		{ScenarioID: "d", Score: scorePtr(0.35), Summary: ""},
	}

	results := Aggregate(judgments)
	require.NotNil(t, results.OverallScore)
	require.InDelta(t, (0.9+0.3+0.35)/3, *results.OverallScore, 1e-9)

	dist := results.ScoreDistribution
	require.NotNil(t, dist)
	require.Equal(t, 0.3, dist.Min)
	require.Equal(t, 0.9, dist.Max)
	require.LessOrEqual(t, dist.Min, dist.Mean)
	require.LessOrEqual(t, dist.Mean, dist.Max)
	require.GreaterOrEqual(t, dist.Std, 0.0)

	require.Equal(t, []models.Evidence{{Quote: "q1"}, {Quote: "q2"}}, results.KeyQuotes)
	// Only sub-0.4 scores with a non-empty summary are failure patterns.
	require.Equal(t, []string{"missed the opportunity"}, results.FailurePatterns)
}

func TestAggregate_NoValidScores(t *testing.T) {
	results := Aggregate([]models.Judgment{
		{ScenarioID: "a", Score: nil, Skipped: true},
		{ScenarioID: "b", Score: nil, Error: "judge failed"},
	})
	require.Nil(t, results.OverallScore)
	require.Nil(t, results.ScoreDistribution)
	require.Empty(t, results.KeyQuotes)
	require.Empty(t, results.FailurePatterns)
}

func TestAggregate_KeyQuotesCappedAtFive(t *testing.T) {
	many := make([]models.Evidence, 4)
	for i := range many {
		many[i] = models.Evidence{Quote: "q"}
	}
	results := Aggregate([]models.Judgment{
		{ScenarioID: "a", Score: scorePtr(0.5), PositiveEvidence: many},
		{ScenarioID: "b", Score: scorePtr(0.5), PositiveEvidence: many},
	})
	require.Len(t, results.KeyQuotes, 5)
}

func TestCompareScores(t *testing.T) {
	tie := CompareScores(0.7, 0.7)
	require.Equal(t, "tie", tie.Winner)
	require.Equal(t, 0.0, tie.Difference)

	a := CompareScores(0.81, 0.80)
	require.Equal(t, "A", a.Winner)
	require.InDelta(t, 0.01, a.Difference, 1e-9)

	b := CompareScores(0.2, 0.6)
	require.Equal(t, "B", b.Winner)
	require.InDelta(t, 0.4, b.Difference, 1e-9)
}
