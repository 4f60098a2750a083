package checkers

import (
	"fmt"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// checkComplexity compares each function's complexity metrics against the
// configured ceilings.
func checkComplexity(u *source.Unit, fm metrics.FileMetrics, cfg *config.Config) []models.Finding {
	cx := cfg.Review.Rules.Complexity
	var findings []models.Finding

	for _, m := range fm.Functions {
		if m.Cognitive > cx.MaxCognitiveComplexity {
			findings = append(findings, models.Finding{
				RuleID:     "complexity.cognitive",
				Severity:   models.SeverityWarning,
				Category:   models.CategoryComplexity,
				Message:    fmt.Sprintf("Function %q has cognitive complexity %d (limit %d)", m.Name, m.Cognitive, cx.MaxCognitiveComplexity),
				FilePath:   u.Path,
				Line:       m.StartLine,
				Suggestion: "Flatten nesting or extract helper functions",
				Source:     models.SourceStatic,
			})
		}
		if m.Cyclomatic > cx.MaxCyclomaticComplexity {
			findings = append(findings, models.Finding{
				RuleID:     "complexity.cyclomatic",
				Severity:   models.SeverityWarning,
				Category:   models.CategoryComplexity,
				Message:    fmt.Sprintf("Function %q has cyclomatic complexity %d (limit %d)", m.Name, m.Cyclomatic, cx.MaxCyclomaticComplexity),
				FilePath:   u.Path,
				Line:       m.StartLine,
				Suggestion: "Split independent branches into separate functions",
				Source:     models.SourceStatic,
			})
		}
		if m.MaxNesting > cx.MaxNestedBlocks {
			findings = append(findings, models.Finding{
				RuleID:     "complexity.nesting",
				Severity:   models.SeverityWarning,
				Category:   models.CategoryComplexity,
				Message:    fmt.Sprintf("Function %q nests %d blocks deep (limit %d)", m.Name, m.MaxNesting, cx.MaxNestedBlocks),
				FilePath:   u.Path,
				Line:       m.StartLine,
				Suggestion: "Use early returns to reduce nesting",
				Source:     models.SourceStatic,
			})
		}
	}
	return findings
}
