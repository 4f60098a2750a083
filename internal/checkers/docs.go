package checkers

import (
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// checkDocumentation requires docstrings on public functions and classes and
// a minimum word count on the docstrings that exist. Names with a leading
// underscore are private and exempt.
func checkDocumentation(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	doc := cfg.Review.Rules.Documentation
	if !doc.RequireDocstrings {
		return nil
	}
	var findings []models.Finding

	for _, fn := range u.Functions {
		if strings.HasPrefix(fn.Name, "_") {
			continue
		}
		switch {
		case fn.DocWords == 0:
			findings = append(findings, models.Finding{
				RuleID:     "documentation.missing",
				Severity:   models.SeveritySuggestion,
				Category:   models.CategoryDocumentation,
				Message:    fmt.Sprintf("Function %q has no docstring", fn.Name),
				FilePath:   u.Path,
				Line:       fn.StartLine,
				Suggestion: "Document what the function does and returns",
				Source:     models.SourceStatic,
			})
		case fn.DocWords < doc.MinDocstringWords:
			findings = append(findings, models.Finding{
				RuleID:   "documentation.too_short",
				Severity: models.SeveritySuggestion,
				Category: models.CategoryDocumentation,
				Message:  fmt.Sprintf("Docstring of %q is %d words; say more (minimum %d)", fn.Name, fn.DocWords, doc.MinDocstringWords),
				FilePath: u.Path,
				Line:     fn.StartLine,
				Source:   models.SourceStatic,
			})
		default:
			findings = append(findings, checkDocSections(u, fn, doc)...)
		}
	}

	for _, cls := range u.Classes {
		if strings.HasPrefix(cls.Name, "_") {
			continue
		}
		if cls.DocWords == 0 {
			findings = append(findings, models.Finding{
				RuleID:     "documentation.missing_class",
				Severity:   models.SeveritySuggestion,
				Category:   models.CategoryDocumentation,
				Message:    fmt.Sprintf("Class %q has no docstring", cls.Name),
				FilePath:   u.Path,
				Line:       cls.Line,
				Suggestion: "Document the class responsibility",
				Source:     models.SourceStatic,
			})
		}
	}
	return findings
}

// checkDocSections enforces the optional Args/Returns/Raises sections on
// python docstrings. Other languages have no section convention to check.
func checkDocSections(u *source.Unit, fn source.Function, doc config.DocumentationConfig) []models.Finding {
	if u.Language != source.LangPython {
		return nil
	}
	lower := strings.ToLower(fn.Doc)
	var findings []models.Finding

	if doc.RequireParamDocs && len(fn.Params) > 0 && !hasDocSection(lower, "args:", "parameters:", ":param") {
		findings = append(findings, models.Finding{
			RuleID:   "documentation.missing_param_docs",
			Severity: models.SeveritySuggestion,
			Category: models.CategoryDocumentation,
			Message:  fmt.Sprintf("Docstring of %q does not document its parameters", fn.Name),
			FilePath: u.Path,
			Line:     fn.StartLine,
			Source:   models.SourceStatic,
		})
	}
	if doc.RequireReturnDocs && fn.HasReturnType && !hasDocSection(lower, "returns:", "return:", ":return") {
		findings = append(findings, models.Finding{
			RuleID:   "documentation.missing_return_docs",
			Severity: models.SeveritySuggestion,
			Category: models.CategoryDocumentation,
			Message:  fmt.Sprintf("Docstring of %q does not document its return value", fn.Name),
			FilePath: u.Path,
			Line:     fn.StartLine,
			Source:   models.SourceStatic,
		})
	}
	if doc.RequireRaisesDocs && functionRaises(u, fn) && !hasDocSection(lower, "raises:", ":raises") {
		findings = append(findings, models.Finding{
			RuleID:   "documentation.missing_raises_docs",
			Severity: models.SeveritySuggestion,
			Category: models.CategoryDocumentation,
			Message:  fmt.Sprintf("Docstring of %q does not document the exceptions it raises", fn.Name),
			FilePath: u.Path,
			Line:     fn.StartLine,
			Source:   models.SourceStatic,
		})
	}
	return findings
}

func hasDocSection(lowerDoc string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(lowerDoc, m) {
			return true
		}
	}
	return false
}

// functionRaises reports whether the function body contains a raise statement.
func functionRaises(u *source.Unit, fn source.Function) bool {
	for i := fn.BodyStart - 1; i < fn.EndLine && i < len(u.Lines); i++ {
		t := strings.TrimSpace(u.Lines[i])
		if t == "raise" || strings.HasPrefix(t, "raise ") {
			return true
		}
	}
	return false
}
