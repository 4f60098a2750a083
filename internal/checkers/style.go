package checkers

import (
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// checkStyle enforces line length, file length, and trailing whitespace.
func checkStyle(u *source.Unit, fm metrics.FileMetrics, cfg *config.Config) []models.Finding {
	rules := cfg.Review.Rules
	var findings []models.Finding

	for i, line := range u.Lines {
		if n := len([]rune(line)); n > rules.MaxLineLength {
			findings = append(findings, models.Finding{
				RuleID:   "style.line_length",
				Severity: models.SeverityStyle,
				Category: models.CategoryStyle,
				Message:  fmt.Sprintf("Line is %d characters long (limit %d)", n, rules.MaxLineLength),
				FilePath: u.Path,
				Line:     i + 1,
				Source:   models.SourceStatic,
			})
		}
		if line != "" && strings.TrimRight(line, " \t") != line {
			findings = append(findings, models.Finding{
				RuleID:   "style.trailing_whitespace",
				Severity: models.SeverityStyle,
				Category: models.CategoryStyle,
				Message:  "Line has trailing whitespace",
				FilePath: u.Path,
				Line:     i + 1,
				Source:   models.SourceStatic,
			})
		}
	}

	if fm.TotalLines > rules.MaxFileLines {
		findings = append(findings, models.Finding{
			RuleID:   "style.file_length",
			Severity: models.SeverityWarning,
			Category: models.CategoryStyle,
			Message:  fmt.Sprintf("File is %d lines long (limit %d); consider splitting it", fm.TotalLines, rules.MaxFileLines),
			FilePath: u.Path,
			Line:     1,
			Source:   models.SourceStatic,
		})
	}
	return findings
}
