// Package config resolves evaluation-scale configuration from named tiers.
package config

import "github.com/mangleddev/behaviorlab/internal/models"

// Tier names understood by TierConfig.
const (
	TierQuick         = "quick"
	TierStandard      = "standard"
	TierComprehensive = "comprehensive"
)

// DefaultDiversity is used when no diversity value is supplied at creation.
const DefaultDiversity = 0.5

// TierDefaults holds the scale parameters a tier implies.
type TierDefaults struct {
	NumScenarios int
	NumJudges    int
	MaxTurns     int
}

var tierTable = map[string]TierDefaults{
	TierQuick:         {NumScenarios: 5, NumJudges: 1, MaxTurns: 3},
	TierStandard:      {NumScenarios: 20, NumJudges: 3, MaxTurns: 5},
	TierComprehensive: {NumScenarios: 50, NumJudges: 3, MaxTurns: 10},
}

// TierConfig returns the defaults for the named tier. Unknown tier names
// (including the empty string) fall back to standard; this function is total
// and never errors.
func TierConfig(tier string) TierDefaults {
	if d, ok := tierTable[tier]; ok {
		return d
	}
	return tierTable[TierStandard]
}

// Overrides carries the config fields a caller supplied explicitly at
// evaluation creation. Nil fields take the tier default.
type Overrides struct {
	NumScenarios *int
	NumJudges    *int
	MaxTurns     *int
	Diversity    *float64
}

// Resolve produces the final evaluation config for a tier, applying any
// explicit overrides field by field.
func Resolve(tier string, o Overrides) models.EvaluationConfig {
	d := TierConfig(tier)
	cfg := models.EvaluationConfig{
		Tier:         tier,
		NumScenarios: d.NumScenarios,
		NumJudges:    d.NumJudges,
		MaxTurns:     d.MaxTurns,
		Diversity:    DefaultDiversity,
	}
	if cfg.Tier == "" {
		cfg.Tier = TierStandard
	}
	if o.NumScenarios != nil {
		cfg.NumScenarios = *o.NumScenarios
	}
	if o.NumJudges != nil {
		cfg.NumJudges = *o.NumJudges
	}
	if o.MaxTurns != nil {
		cfg.MaxTurns = *o.MaxTurns
	}
	if o.Diversity != nil {
		cfg.Diversity = *o.Diversity
	}
	return cfg
}
