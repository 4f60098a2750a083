package checkers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// checkMagicNumbers flags numeric literals that carry no name. Values on the
// configured ignore list and constant definitions are exempt.
func checkMagicNumbers(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	mn := cfg.Review.Rules.MagicNumbers
	if !mn.Enabled {
		return nil
	}
	if u.IsTest && mn.IgnoreInTests {
		return nil
	}

	ignored := make(map[float64]bool, len(mn.IgnoreValues))
	for _, v := range mn.IgnoreValues {
		ignored[v] = true
	}

	var findings []models.Finding
	reported := map[int]bool{} // one finding per line

	for _, tok := range source.Tokenize(u) {
		if tok.Kind != source.TokenNumber || reported[tok.Line] {
			continue
		}
		val, err := strconv.ParseFloat(strings.ReplaceAll(tok.Text, "_", ""), 64)
		if err != nil || ignored[val] {
			continue
		}
		line := u.Lines[tok.Line-1]
		if m := assignedNameRe.FindStringSubmatch(line); m != nil && isConstantName(m[2]) {
			continue
		}
		reported[tok.Line] = true
		findings = append(findings, models.Finding{
			RuleID:     "magic_numbers.literal",
			Severity:   models.SeveritySuggestion,
			Category:   models.CategoryStyle,
			Message:    fmt.Sprintf("Magic number %s; give it a named constant", tok.Text),
			FilePath:   u.Path,
			Line:       tok.Line,
			Suggestion: fmt.Sprintf("Extract %s into a named constant", tok.Text),
			Source:     models.SourceStatic,
		})
	}
	return findings
}
