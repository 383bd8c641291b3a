package oracle

import (
	"regexp"
	"strings"
)

var ansiPattern = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// StripANSI removes terminal control sequences from text.
func StripANSI(text string) string {
	return ansiPattern.ReplaceAllString(text, "")
}

// CleanSessionOutput extracts readable content from raw interactive-session
// output: control sequences stripped, carriage returns normalized, runs of
// blank lines collapsed.
func CleanSessionOutput(output string) string {
	cleaned := StripANSI(output)
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
