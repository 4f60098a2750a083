// Package checkers holds the static rule checkers. Each checker inspects one
// parsed unit plus its metrics and emits findings; the registry fixes their
// execution order so results are stable run to run.
package checkers

import (
	"fmt"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// Checker is one registered rule family.
type Checker struct {
	ID       string
	Category models.Category
	Check    func(u *source.Unit, fm metrics.FileMetrics, cfg *config.Config) []models.Finding
}

// CheckerError reports a checker that panicked on a unit. The run continues;
// the failed checker contributes no findings for that file.
type CheckerError struct {
	CheckerID string
	Path      string
	Cause     any
}

func (e *CheckerError) Error() string {
	return fmt.Sprintf("checker %s failed on %s: %v", e.CheckerID, e.Path, e.Cause)
}

// All returns the checkers in registration order. Order matters: when
// duplicate findings collide, the earlier checker's finding wins.
func All() []Checker {
	return []Checker{
		{ID: "style", Category: models.CategoryStyle, Check: checkStyle},
		{ID: "naming", Category: models.CategoryNaming, Check: checkNaming},
		{ID: "magic_numbers", Category: models.CategoryStyle, Check: checkMagicNumbers},
		{ID: "imports", Category: models.CategoryImports, Check: checkImports},
		{ID: "complexity", Category: models.CategoryComplexity, Check: checkComplexity},
		{ID: "functions", Category: models.CategoryFunctions, Check: checkFunctions},
		{ID: "documentation", Category: models.CategoryDocumentation, Check: checkDocumentation},
		{ID: "security", Category: models.CategorySecurity, Check: checkSecurity},
		{ID: "testing", Category: models.CategoryTesting, Check: checkTesting},
		{ID: "unused", Category: models.CategoryStyle, Check: checkUnused},
		{ID: "string_literals", Category: models.CategoryDuplication, Check: checkStringLiterals},
	}
}

// Run executes every checker against one unit. A panicking checker is
// reported as a *CheckerError and skipped; it never takes down the run or
// invents findings. For test files, rules listed in test_files.ignore_rules
// are suppressed here so individual checkers stay unaware of the policy.
func Run(u *source.Unit, fm metrics.FileMetrics, cfg *config.Config) ([]models.Finding, []error) {
	var findings []models.Finding
	var errs []error

	for _, c := range All() {
		result := func() (out []models.Finding) {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, &CheckerError{CheckerID: c.ID, Path: u.Path, Cause: r})
					out = nil
				}
			}()
			return c.Check(u, fm, cfg)
		}()
		findings = append(findings, result...)
	}

	if u.IsTest {
		tf := cfg.Review.Rules.TestFiles
		kept := findings[:0]
		for _, f := range findings {
			if !tf.RuleIgnored(f.RuleID) {
				kept = append(kept, f)
			}
		}
		findings = kept
	}
	return findings, errs
}
