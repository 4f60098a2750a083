package checkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

var styleRes = map[string]*regexp.Regexp{
	"PascalCase":           regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`),
	"camelCase":            regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
	"snake_case":           regexp.MustCompile(`^_*[a-z][a-z0-9_]*$`),
	"SCREAMING_SNAKE_CASE": regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`),
}

// matchesStyle reports whether name conforms to the named case style.
// Unknown styles accept everything; validation rejects them upstream.
func matchesStyle(name, style string) bool {
	re, ok := styleRes[style]
	if !ok {
		return true
	}
	return re.MatchString(name)
}

var assignedNameRe = regexp.MustCompile(`^(\s*)([A-Za-z_]\w*)\s*(?::[^=]+)?=[^=]`)

// checkNaming enforces the configured case styles for classes, functions,
// variables, and constants. A module-level all-caps assignment counts as a
// constant; everything else assigned is a variable.
func checkNaming(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	naming := cfg.Review.Rules.Naming
	var findings []models.Finding

	for _, cls := range u.Classes {
		if !matchesStyle(cls.Name, naming.Classes) {
			findings = append(findings, models.Finding{
				RuleID:     "naming.class",
				Severity:   models.SeverityStyle,
				Category:   models.CategoryNaming,
				Message:    fmt.Sprintf("Class %q does not follow %s", cls.Name, naming.Classes),
				FilePath:   u.Path,
				Line:       cls.Line,
				Suggestion: fmt.Sprintf("Rename %q to match %s", cls.Name, naming.Classes),
				Source:     models.SourceStatic,
			})
		}
	}

	for _, fn := range u.Functions {
		if isConstantName(fn.Name) {
			continue
		}
		if !matchesStyle(fn.Name, naming.Functions) {
			findings = append(findings, models.Finding{
				RuleID:     "naming.function",
				Severity:   models.SeverityStyle,
				Category:   models.CategoryNaming,
				Message:    fmt.Sprintf("Function %q does not follow %s", fn.Name, naming.Functions),
				FilePath:   u.Path,
				Line:       fn.StartLine,
				Suggestion: fmt.Sprintf("Rename %q to match %s", fn.Name, naming.Functions),
				Source:     models.SourceStatic,
			})
		}
	}

	// Naming of assigned names only applies where the convention is
	// meaningful; go and javascript projects rarely configure it the
	// python way, so restrict the scan to python units.
	if u.Language != source.LangPython {
		return findings
	}

	seen := map[string]bool{}
	for i, line := range u.Lines {
		m := assignedNameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[2]
		if seen[name] || isKeywordish(name) {
			continue
		}
		seen[name] = true

		if len(m[1]) == 0 && isConstantName(name) {
			if !matchesStyle(name, naming.Constants) {
				findings = append(findings, models.Finding{
					RuleID:   "naming.constant",
					Severity: models.SeverityStyle,
					Category: models.CategoryNaming,
					Message:  fmt.Sprintf("Constant %q does not follow %s", name, naming.Constants),
					FilePath: u.Path,
					Line:     i + 1,
					Source:   models.SourceStatic,
				})
			}
			continue
		}
		if !matchesStyle(name, naming.Variables) {
			findings = append(findings, models.Finding{
				RuleID:     "naming.variable",
				Severity:   models.SeverityStyle,
				Category:   models.CategoryNaming,
				Message:    fmt.Sprintf("Variable %q does not follow %s", name, naming.Variables),
				FilePath:   u.Path,
				Line:       i + 1,
				Suggestion: fmt.Sprintf("Rename %q to match %s", name, naming.Variables),
				Source:     models.SourceStatic,
			})
		}
	}
	return findings
}

// isConstantName reports the all-caps convention for constants.
func isConstantName(name string) bool {
	return strings.ToUpper(name) == name && strings.ToLower(name) != name
}

func isKeywordish(name string) bool {
	switch name {
	case "if", "elif", "else", "while", "for", "return", "import", "from",
		"def", "class", "with", "try", "except", "raise", "assert":
		return true
	}
	return false
}
