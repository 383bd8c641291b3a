// Package prompts holds the instruction templates sent to the reasoning
// oracle for each pipeline stage, plus the renderer that fills them.
package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Render resolves {{.name}} placeholders in tmpl from vars. Non-string
// values are rendered as indented JSON so structured inputs (an
// understanding, a scenario) read naturally inside a prompt. Rendering fails
// on placeholders with no matching variable.
func Render(tmpl string, vars map[string]any) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	data := make(map[string]string, len(vars))
	for k, v := range vars {
		s, err := stringify(v)
		if err != nil {
			return "", fmt.Errorf("prompts: variable %q: %w", k, err)
		}
		data[k] = s
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("prompts: parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompts: render: %w", err)
	}
	return buf.String(), nil
}

func stringify(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	default:
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
