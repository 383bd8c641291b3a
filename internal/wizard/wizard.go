// Package wizard collects new-evaluation parameters through an interactive
// terminal form.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mangleddev/behaviorlab/internal/config"
	"github.com/mangleddev/behaviorlab/internal/models"
)

// EvaluationSpec holds all fields collected during the interactive wizard.
type EvaluationSpec struct {
	Name         string
	BehaviorKey  string
	Tier         string
	SystemPrompt string
	Diversity    *float64
}

// RunEvaluationWizard runs an interactive huh form to collect evaluation
// parameters. The behavior select is populated from the passed catalog.
func RunEvaluationWizard(in io.Reader, out io.Writer, behaviors []models.Behavior) (*EvaluationSpec, error) {
	if len(behaviors) == 0 {
		return nil, fmt.Errorf("behavior catalog is empty")
	}

	var (
		name         string
		behaviorKey  = behaviors[0].Key
		tier         = config.TierStandard
		systemPrompt string
		diversityRaw string
	)

	behaviorOptions := make([]huh.Option[string], 0, len(behaviors))
	for _, b := range behaviors {
		behaviorOptions = append(behaviorOptions, huh.NewOption(b.Key, b.Key))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Behavior").
				Description("The behavior this evaluation measures").
				Options(behaviorOptions...).
				Value(&behaviorKey),
			huh.NewInput().
				Title("Evaluation name").
				Description("Optional; defaults to behavior and tier").
				Placeholder("my evaluation").
				Value(&name),
			huh.NewSelect[string]().
				Title("Tier").
				Description("Scale of the run: scenarios, judges, max turns").
				Options(
					huh.NewOption("quick (5 scenarios, 1 judge, 3 turns)", config.TierQuick),
					huh.NewOption("standard (20 scenarios, 3 judges, 5 turns)", config.TierStandard),
					huh.NewOption("comprehensive (50 scenarios, 3 judges, 10 turns)", config.TierComprehensive),
				).
				Value(&tier),
			huh.NewInput().
				Title("System prompt").
				Description("Optional instructions applied to the agent under test").
				Value(&systemPrompt),
			huh.NewInput().
				Title("Diversity").
				Description("0 to 1; blank keeps the default 0.5").
				Placeholder("0.5").
				Value(&diversityRaw).
				Validate(validateDiversity),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	spec := &EvaluationSpec{
		Name:         strings.TrimSpace(name),
		BehaviorKey:  behaviorKey,
		Tier:         tier,
		SystemPrompt: strings.TrimSpace(systemPrompt),
	}
	if raw := strings.TrimSpace(diversityRaw); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing diversity: %w", err)
		}
		spec.Diversity = &d
	}
	return spec, nil
}

func validateDiversity(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("diversity must be a number")
	}
	if d < 0 || d > 1 {
		return fmt.Errorf("diversity must be between 0 and 1")
	}
	return nil
}
