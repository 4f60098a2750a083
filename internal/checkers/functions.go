package checkers

import (
	"fmt"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// checkFunctions enforces signature and body-size rules per function.
func checkFunctions(u *source.Unit, fm metrics.FileMetrics, cfg *config.Config) []models.Finding {
	fns := cfg.Review.Rules.Functions
	var findings []models.Finding

	byName := make(map[string]metrics.FunctionMetrics, len(fm.Functions))
	for _, m := range fm.Functions {
		byName[fmt.Sprintf("%s:%d", m.Name, m.StartLine)] = m
	}

	add := func(rule string, sev models.Severity, fn source.Function, msg, suggestion string) {
		findings = append(findings, models.Finding{
			RuleID:     "functions." + rule,
			Severity:   sev,
			Category:   models.CategoryFunctions,
			Message:    msg,
			FilePath:   u.Path,
			Line:       fn.StartLine,
			Suggestion: suggestion,
			Source:     models.SourceStatic,
		})
	}

	for _, fn := range u.Functions {
		if n := len(fn.Params); n > fns.MaxArguments {
			add("max_arguments", models.SeverityWarning, fn,
				fmt.Sprintf("Function %q takes %d arguments (limit %d)", fn.Name, n, fns.MaxArguments),
				"Group related arguments into a parameter object")
		}

		defaults, boolFlags := 0, 0
		for _, p := range fn.Params {
			if p.HasDefault {
				defaults++
			}
			if p.IsBoolFlag {
				boolFlags++
			}
		}
		if defaults > fns.MaxDefaultArguments {
			add("max_default_arguments", models.SeveritySuggestion, fn,
				fmt.Sprintf("Function %q has %d default arguments (limit %d)", fn.Name, defaults, fns.MaxDefaultArguments),
				"Move optional settings into a config parameter")
		}
		if boolFlags > fns.MaxBooleanFlags {
			add("max_boolean_flags", models.SeveritySuggestion, fn,
				fmt.Sprintf("Function %q has %d boolean flags (limit %d); flags hide two behaviors in one function", fn.Name, boolFlags, fns.MaxBooleanFlags),
				"Split the flag variants into separate functions")
		}

		if fns.RequireReturnType && !fn.HasReturnType && u.Language == source.LangPython {
			add("missing_return_type", models.SeveritySuggestion, fn,
				fmt.Sprintf("Function %q has no return type annotation", fn.Name),
				"Annotate the return type")
		}

		m, ok := byName[fmt.Sprintf("%s:%d", fn.Name, fn.StartLine)]
		if !ok {
			continue
		}
		if m.Lines > fns.MaxLines {
			add("max_lines", models.SeverityWarning, fn,
				fmt.Sprintf("Function %q is %d lines long (limit %d)", fn.Name, m.Lines, fns.MaxLines),
				"Extract cohesive blocks into helpers")
		}
		if m.Returns > fns.MaxReturns {
			add("max_returns", models.SeveritySuggestion, fn,
				fmt.Sprintf("Function %q has %d return statements (limit %d)", fn.Name, m.Returns, fns.MaxReturns),
				"Consolidate exit points")
		}
		if m.LocalVars > fns.MaxLocalVariables {
			add("max_local_variables", models.SeverityWarning, fn,
				fmt.Sprintf("Function %q declares %d local variables (limit %d)", fn.Name, m.LocalVars, fns.MaxLocalVariables),
				"Extract related locals into a struct or helper")
		}
	}
	return findings
}
