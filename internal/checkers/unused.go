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

// checkUnused flags names a file defines and never references afterwards:
// imports, functions nothing in the file calls, and assigned variables. The
// scan is textual and file-local, so an exported name a sibling module uses
// can still be reported; underscore-prefixed names are exempt as the
// conventional marker for intentionally private or discarded values. The
// assignment conventions it relies on are python's, so other languages are
// skipped.
func checkUnused(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	uc := cfg.Review.Rules.Unused
	if !uc.Enabled || u.Language != source.LangPython {
		return nil
	}
	var findings []models.Finding

	if uc.CheckImports {
		for _, imp := range u.Imports {
			name := importedName(imp)
			if name == "" || name == "*" || strings.HasPrefix(name, "_") {
				continue
			}
			if referencedAfter(u, imp.Line, name) {
				continue
			}
			findings = append(findings, models.Finding{
				RuleID:     "unused.import",
				Severity:   models.SeveritySuggestion,
				Category:   models.CategoryStyle,
				Message:    fmt.Sprintf("Import %q is never used", name),
				FilePath:   u.Path,
				Line:       imp.Line,
				Suggestion: "Remove the unused import",
				Source:     models.SourceStatic,
			})
		}
	}

	if uc.CheckFunctions {
		for _, fn := range u.Functions {
			if strings.HasPrefix(fn.Name, "_") {
				continue
			}
			if u.IsTest && strings.HasPrefix(fn.Name, "test_") {
				continue
			}
			if functionReferenced(u, fn) {
				continue
			}
			findings = append(findings, models.Finding{
				RuleID:     "unused.function",
				Severity:   models.SeveritySuggestion,
				Category:   models.CategoryStyle,
				Message:    fmt.Sprintf("Function %q is never called", fn.Name),
				FilePath:   u.Path,
				Line:       fn.StartLine,
				Suggestion: "Remove it, or prefix it with an underscore if it is kept deliberately",
				Source:     models.SourceStatic,
			})
		}
	}

	if uc.CheckVariables {
		seen := map[string]bool{}
		for i, line := range u.Lines {
			m := assignedNameRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[2]
			if seen[name] || strings.HasPrefix(name, "_") || isKeywordish(name) {
				continue
			}
			seen[name] = true
			if referencedAfter(u, i+1, name) {
				continue
			}
			findings = append(findings, models.Finding{
				RuleID:     "unused.variable",
				Severity:   models.SeveritySuggestion,
				Category:   models.CategoryStyle,
				Message:    fmt.Sprintf("Variable %q is assigned but never used", name),
				FilePath:   u.Path,
				Line:       i + 1,
				Suggestion: "Remove the assignment, or name it _ to discard the value",
				Source:     models.SourceStatic,
			})
		}
	}
	return findings
}

// importedName returns the name an import binds in the file: the alias when
// present, otherwise the imported name itself. Multi-name imports are out of
// scope for the textual scan and return "".
func importedName(imp source.Import) string {
	raw := imp.Raw
	if idx := strings.Index(raw, "import "); idx >= 0 {
		raw = raw[idx+len("import "):]
	}
	if idx := strings.Index(raw, " as "); idx >= 0 {
		raw = raw[idx+4:]
	}
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, ",(") {
		return ""
	}
	if idx := strings.Index(raw, "."); idx >= 0 {
		// "import os.path" binds the root package.
		raw = raw[:idx]
	}
	return raw
}

// referencedAfter reports whether name appears on any line after the given
// 1-based line number.
func referencedAfter(u *source.Unit, line int, name string) bool {
	for i := line; i < len(u.Lines); i++ {
		if strings.Contains(u.Lines[i], name) {
			return true
		}
	}
	return false
}

// functionReferenced reports whether any line other than the definition calls
// the function or binds it to a name.
func functionReferenced(u *source.Unit, fn source.Function) bool {
	call := fn.Name + "("
	bind := fn.Name + " ="
	for i, line := range u.Lines {
		if i+1 == fn.StartLine {
			continue
		}
		if strings.Contains(line, call) || strings.Contains(line, bind) {
			return true
		}
	}
	return false
}

var (
	stringLitRe = regexp.MustCompile(`"([^"\\]*(?:\\.[^"\\]*)*)"|'([^'\\]*(?:\\.[^'\\]*)*)'`)

	// Literals that repeat legitimately: constant-ish names, URLs, pure
	// punctuation or digits, plain lowercase words.
	literalSkipRes = []*regexp.Regexp{
		regexp.MustCompile(`^[A-Z_]+$`),
		regexp.MustCompile(`^https?://`),
		regexp.MustCompile(`^[\W\d]+$`),
		regexp.MustCompile(`^[a-z_]+$`),
	}
)

// checkStringLiterals flags a string literal repeated often enough to deserve
// a named constant. One finding per literal, at its first occurrence.
func checkStringLiterals(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	sc := cfg.Review.Rules.StringLiterals
	if !sc.Enabled {
		return nil
	}

	occurrences := map[string][]int{}
	var order []string
	for i, line := range u.Lines {
		for _, m := range stringLitRe.FindAllStringSubmatch(line, -1) {
			lit := m[1]
			if lit == "" {
				lit = m[2]
			}
			if len(lit) < sc.MinLength || skipLiteral(lit) {
				continue
			}
			if _, ok := occurrences[lit]; !ok {
				order = append(order, lit)
			}
			occurrences[lit] = append(occurrences[lit], i+1)
		}
	}

	var findings []models.Finding
	for _, lit := range order {
		lines := occurrences[lit]
		if len(lines) < sc.MinOccurrences {
			continue
		}
		display := lit
		if len(display) > 30 {
			display = display[:30] + "..."
		}
		findings = append(findings, models.Finding{
			RuleID:     "string_literals.duplicate",
			Severity:   models.SeveritySuggestion,
			Category:   models.CategoryDuplication,
			Message:    fmt.Sprintf("String literal %q appears %d times", display, len(lines)),
			FilePath:   u.Path,
			Line:       lines[0],
			Suggestion: "Define it once as a named constant",
			Source:     models.SourceStatic,
		})
	}
	return findings
}

func skipLiteral(lit string) bool {
	for _, re := range literalSkipRes {
		if re.MatchString(lit) {
			return true
		}
	}
	return false
}
