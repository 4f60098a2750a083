package models

import "fmt"

// Severity ranks how important a finding is.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
	SeverityStyle      Severity = "style"
)

// Rank returns a numeric rank for sorting (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 4
	case SeverityWarning:
		return 3
	case SeveritySuggestion:
		return 2
	case SeverityStyle:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold reports whether s is at or above min.
func (s Severity) MeetsThreshold(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity validates a severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeveritySuggestion, SeverityStyle:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q (want error, warning, suggestion, or style)", s)
}

// Category groups findings by the concern they address.
type Category string

const (
	CategoryStyle         Category = "style"
	CategoryNaming        Category = "naming"
	CategoryImports       Category = "imports"
	CategoryComplexity    Category = "complexity"
	CategoryFunctions     Category = "functions"
	CategoryDocumentation Category = "documentation"
	CategorySecurity      Category = "security"
	CategoryTesting       Category = "testing"
	CategoryDuplication   Category = "duplication"
)

// FindingSource identifies which side of the pipeline produced a finding.
type FindingSource string

const (
	SourceStatic FindingSource = "static"
	SourceAI     FindingSource = "ai"
)

// Finding is one reported issue with severity, location, and message.
type Finding struct {
	RuleID     string        `json:"rule_id"`
	Severity   Severity      `json:"severity"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	FilePath   string        `json:"file_path"`
	Line       int           `json:"line"`
	EndLine    int           `json:"end_line,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Source     FindingSource `json:"source"`
}

// DedupKey identifies a finding for deduplication. Findings that differ only
// by message text collapse to the same key; the first encountered wins.
func (f Finding) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d", f.RuleID, f.FilePath, f.Line)
}
