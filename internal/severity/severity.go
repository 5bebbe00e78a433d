// Package severity classifies ticket text into a three-level urgency scale.
package severity

import "strings"

// Level is a ticket urgency classification.
type Level string

const (
	High   Level = "High"
	Medium Level = "Medium"
	Low    Level = "Low"
)

// Classify maps ticket text to a severity level with a fixed keyword rule,
// evaluated in priority order: urgent/critical beat issue/problem. Matching
// is a case-insensitive substring check, so the function is deterministic
// for a given input.
func Classify(text string) Level {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "urgent") || strings.Contains(t, "critical"):
		return High
	case strings.Contains(t, "issue") || strings.Contains(t, "problem"):
		return Medium
	}
	return Low
}
