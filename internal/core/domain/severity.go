package domain

import "strings"

// Severity of a case or evidence record in the downstream store.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var severityByCategory = map[string]Severity{
	"critical":      SeverityHigh,
	"suspicious":    SeverityMedium,
	"compliance":    SeverityLow,
	"informational": SeverityLow,
}

// SeverityFromCategory maps a model category to a severity. Matching is
// case-insensitive; unmapped categories are low.
func SeverityFromCategory(category string) Severity {
	if s, ok := severityByCategory[strings.ToLower(category)]; ok {
		return s
	}
	return SeverityLow
}

// SeverityFromScore converts a 0-100 threat score to a severity.
func SeverityFromScore(score int) Severity {
	if score > 75 {
		return SeverityHigh
	}
	if score > 45 {
		return SeverityMedium
	}
	return SeverityLow
}
