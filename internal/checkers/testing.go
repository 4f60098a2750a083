package checkers

import (
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// checkTesting applies only to test files: each test function needs at least
// the configured number of assertions, and files with known coverage must
// meet the floor.
func checkTesting(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	if !u.IsTest {
		return nil
	}
	tf := cfg.Review.Rules.TestFiles
	prof := source.ProfileFor(u.Language)
	var findings []models.Finding

	if tf.RequireAssertions {
		for _, fn := range u.Functions {
			if !isTestFunction(u.Language, fn.Name) {
				continue
			}
			asserts := 0
			for ln := fn.BodyStart; ln <= fn.EndLine && ln <= len(u.Lines); ln++ {
				line := u.Lines[ln-1]
				for _, pat := range prof.AssertPatterns {
					asserts += strings.Count(line, pat)
				}
			}
			if asserts < tf.MinAssertions {
				findings = append(findings, models.Finding{
					RuleID:     "testing.no_assertions",
					Severity:   models.SeverityWarning,
					Category:   models.CategoryTesting,
					Message:    fmt.Sprintf("Test %q has %d assertions (minimum %d); it can never fail meaningfully", fn.Name, asserts, tf.MinAssertions),
					FilePath:   u.Path,
					Line:       fn.StartLine,
					Suggestion: "Assert on the behavior the test exercises",
					Source:     models.SourceStatic,
				})
			}
		}
	}

	if tf.MinCoverage > 0 && u.Coverage != nil && *u.Coverage < tf.MinCoverage {
		findings = append(findings, models.Finding{
			RuleID:   "testing.low_coverage",
			Severity: models.SeverityWarning,
			Category: models.CategoryTesting,
			Message:  fmt.Sprintf("Coverage %.1f%% is below the %.1f%% floor", *u.Coverage, tf.MinCoverage),
			FilePath: u.Path,
			Line:     1,
			Source:   models.SourceStatic,
		})
	}
	return findings
}

func isTestFunction(lang source.Language, name string) bool {
	switch lang {
	case source.LangGo:
		return strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark")
	default:
		return strings.HasPrefix(name, "test_") || strings.HasPrefix(name, "test")
	}
}
