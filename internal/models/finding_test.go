package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRank_Ordering(t *testing.T) {
	assert.Greater(t, SeverityError.Rank(), SeverityWarning.Rank())
	assert.Greater(t, SeverityWarning.Rank(), SeveritySuggestion.Rank())
	assert.Greater(t, SeveritySuggestion.Rank(), SeverityStyle.Rank())
	assert.Equal(t, 0, Severity("bogus").Rank())
}

func TestMeetsThreshold(t *testing.T) {
	assert.True(t, SeverityError.MeetsThreshold(SeverityWarning))
	assert.True(t, SeverityWarning.MeetsThreshold(SeverityWarning))
	assert.False(t, SeverityStyle.MeetsThreshold(SeveritySuggestion))
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity("warning")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, s)

	_, err = ParseSeverity("critical")
	assert.Error(t, err)
}

func TestComputeSummary(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
		{Severity: SeverityStyle},
	}
	s := ComputeSummary(findings)
	assert.Equal(t, 1, s.Counts.Errors)
	assert.Equal(t, 2, s.Counts.Warnings)
	assert.Equal(t, 0, s.Counts.Suggestions)
	assert.Equal(t, 1, s.Counts.Styles)
	assert.Equal(t, 4, s.Counts.Total())
	assert.Equal(t, SeverityError, s.HighestSeverity)
}

func TestDedupKey_IgnoresMessage(t *testing.T) {
	a := Finding{RuleID: "naming.class", FilePath: "a.py", Line: 3, Message: "one"}
	b := Finding{RuleID: "naming.class", FilePath: "a.py", Line: 3, Message: "two"}
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	c := Finding{RuleID: "naming.class", FilePath: "a.py", Line: 4, Message: "one"}
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}
