package models

import "time"

// SeverityCounts holds finding counts by severity level.
type SeverityCounts struct {
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Suggestions int `json:"suggestions"`
	Styles      int `json:"styles"`
}

// Total returns the sum across all severities.
func (c SeverityCounts) Total() int {
	return c.Errors + c.Warnings + c.Suggestions + c.Styles
}

// Summary provides an overview of a review run.
type Summary struct {
	Counts          SeverityCounts `json:"counts"`
	HighestSeverity Severity       `json:"highest_severity,omitempty"`
}

// ComputeSummary calculates the summary from findings.
func ComputeSummary(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Counts.Errors++
		case SeverityWarning:
			s.Counts.Warnings++
		case SeveritySuggestion:
			s.Counts.Suggestions++
		case SeverityStyle:
			s.Counts.Styles++
		}
		if f.Severity.Rank() > s.HighestSeverity.Rank() {
			s.HighestSeverity = f.Severity
		}
	}
	return s
}

// ReviewResult is the engine's sole output artifact for one run: the ordered,
// bounded finding list plus summary counts. The engine is stateless across
// runs; persistence is the store's concern.
type ReviewResult struct {
	RunID         string    `json:"run_id"`
	Findings      []Finding `json:"findings"`
	Summary       Summary   `json:"summary"`
	FilesReviewed int       `json:"files_reviewed"`
	FilesSkipped  int       `json:"files_skipped"`
	Incomplete    bool      `json:"incomplete"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
}

// ReviewRecord is one persisted review run.
type ReviewRecord struct {
	ID         string
	Target     string // path, directory, or diff range that was reviewed
	ReviewType string
	Result     *ReviewResult
	CreatedAt  time.Time
}
