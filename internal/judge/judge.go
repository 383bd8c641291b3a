// Package judge aggregates per-judge verdicts into scenario judgments and
// evaluation-level results.
package judge

import (
	"sort"

	"github.com/mangleddev/behaviorlab/internal/metrics"
	"github.com/mangleddev/behaviorlab/internal/models"
)

const (
	// maxEvidencePerPolarity caps the evidence kept on a combined judgment.
	maxEvidencePerPolarity = 3

	// maxKeyQuotes caps the quotes surfaced on evaluation results.
	maxKeyQuotes = 5

	// failureThreshold is the score below which a judgment's summary is
	// reported as a failure pattern.
	failureThreshold = 0.4
)

// MedianScore returns the median of the given scores, using the lower-middle
// element when the count is even. It returns nil for an empty slice. The
// input is not modified.
func MedianScore(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)
	m := sorted[(len(sorted)-1)/2]
	return &m
}

// CombineVerdicts merges the verdicts from one scenario's judge panel into a
// single judgment. The score is the median of the numeric scores; confidence
// and summary come from the first judge; evidence is pooled across judges and
// truncated per polarity.
func CombineVerdicts(scenarioID string, verdicts []models.JudgeVerdict) models.Judgment {
	var scores []float64
	for _, v := range verdicts {
		if v.Score != nil {
			scores = append(scores, *v.Score)
		}
	}

	var positive, negative []models.Evidence
	for _, v := range verdicts {
		positive = append(positive, v.PositiveEvidence...)
		negative = append(negative, v.NegativeEvidence...)
	}

	j := models.Judgment{
		ScenarioID:       scenarioID,
		Score:            MedianScore(scores),
		Confidence:       "medium",
		PositiveEvidence: truncateEvidence(positive),
		NegativeEvidence: truncateEvidence(negative),
		JudgeCount:       len(verdicts),
	}
	if len(verdicts) > 0 {
		if verdicts[0].Confidence != "" {
			j.Confidence = verdicts[0].Confidence
		}
		j.Summary = verdicts[0].Summary
	}
	return j
}

// SkippedJudgment records a scenario that never produced output and was not
// sent to any judge.
func SkippedJudgment(scenarioID, rolloutErr string) models.Judgment {
	return models.Judgment{
		ScenarioID: scenarioID,
		Score:      nil,
		Error:      rolloutErr,
		Skipped:    true,
	}
}

// FailedJudgment records a scenario whose judge panel failed outright.
func FailedJudgment(scenarioID string, err error) models.Judgment {
	return models.Judgment{
		ScenarioID: scenarioID,
		Score:      nil,
		Error:      err.Error(),
	}
}

// Aggregate computes evaluation-level results from the full judgment set.
// Skipped and failed judgments contribute no score; if no judgment carries a
// score, OverallScore and ScoreDistribution are nil.
func Aggregate(judgments []models.Judgment) *models.EvaluationResults {
	var valid []float64
	for _, j := range judgments {
		if j.Score != nil {
			valid = append(valid, *j.Score)
		}
	}

	results := &models.EvaluationResults{
		KeyQuotes:       keyQuotes(judgments),
		FailurePatterns: failurePatterns(judgments),
	}

	if len(valid) > 0 {
		mean := metrics.Mean(valid)
		min, max := metrics.MinMax(valid)
		results.OverallScore = &mean
		results.ScoreDistribution = &models.ScoreDistribution{
			Min:  min,
			Max:  max,
			Mean: mean,
			Std:  metrics.StdDev(valid),
		}
	}
	return results
}

// CompareScores resolves an A/B comparison: the strictly greater overall
// score wins; equal scores tie.
func CompareScores(scoreA, scoreB float64) *models.ComparisonResults {
	winner := "tie"
	if scoreA > scoreB {
		winner = "A"
	} else if scoreB > scoreA {
		winner = "B"
	}
	diff := scoreA - scoreB
	if diff < 0 {
		diff = -diff
	}
	return &models.ComparisonResults{
		Winner:     winner,
		ScoreA:     scoreA,
		ScoreB:     scoreB,
		Difference: diff,
	}
}

func keyQuotes(judgments []models.Judgment) []models.Evidence {
	quotes := []models.Evidence{}
	for _, j := range judgments {
		quotes = append(quotes, j.PositiveEvidence...)
	}
	if len(quotes) > maxKeyQuotes {
		quotes = quotes[:maxKeyQuotes]
	}
	return quotes
}

func failurePatterns(judgments []models.Judgment) []string {
	patterns := []string{}
	for _, j := range judgments {
		if j.Score != nil && *j.Score < failureThreshold && j.Summary != "" {
			patterns = append(patterns, j.Summary)
		}
	}
	return patterns
}

func truncateEvidence(ev []models.Evidence) []models.Evidence {
	if ev == nil {
		return []models.Evidence{}
	}
	if len(ev) > maxEvidencePerPolarity {
		return ev[:maxEvidencePerPolarity]
	}
	return ev
}
