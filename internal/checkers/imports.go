package checkers

import (
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// pythonStdlib covers the modules import grouping needs to recognize; the
// long tail of rarely-imported stdlib modules lands in third_party, which
// only ever softens a finding.
var pythonStdlib = map[string]bool{
	"abc": true, "argparse": true, "asyncio": true, "base64": true,
	"collections": true, "contextlib": true, "copy": true, "csv": true,
	"dataclasses": true, "datetime": true, "decimal": true, "enum": true,
	"functools": true, "glob": true, "hashlib": true, "http": true,
	"importlib": true, "inspect": true, "io": true, "itertools": true,
	"json": true, "logging": true, "math": true, "os": true,
	"pathlib": true, "pickle": true, "queue": true, "random": true,
	"re": true, "shutil": true, "socket": true, "sqlite3": true,
	"string": true, "struct": true, "subprocess": true, "sys": true,
	"tempfile": true, "threading": true, "time": true, "traceback": true,
	"types": true, "typing": true, "unittest": true, "urllib": true,
	"uuid": true, "warnings": true, "xml": true, "zlib": true,
}

// checkImports enforces relative-import policy, group ordering, and
// alphabetical order within groups.
func checkImports(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	imp := cfg.Review.Rules.Imports
	var findings []models.Finding

	if !imp.AllowRelative {
		for _, im := range u.Imports {
			if im.Relative {
				findings = append(findings, models.Finding{
					RuleID:     "imports.relative",
					Severity:   models.SeverityWarning,
					Category:   models.CategoryImports,
					Message:    "Relative import; use an absolute import path",
					FilePath:   u.Path,
					Line:       im.Line,
					Suggestion: "Rewrite as an absolute import",
					Source:     models.SourceStatic,
				})
			}
		}
	}

	if len(u.Imports) < 2 {
		return findings
	}

	groupRank := make(map[string]int, len(imp.Groups))
	for i, g := range imp.Groups {
		groupRank[g] = i
	}

	if imp.RequireSeparateGroups {
		prevRank := -1
		for _, im := range u.Imports {
			rank, ok := groupRank[importGroup(u.Language, im)]
			if !ok {
				continue
			}
			if rank < prevRank {
				findings = append(findings, models.Finding{
					RuleID:   "imports.grouping",
					Severity: models.SeverityStyle,
					Category: models.CategoryImports,
					Message:  fmt.Sprintf("Import out of group order; expected %s imports first", imp.Groups[rank]),
					FilePath: u.Path,
					Line:     im.Line,
					Source:   models.SourceStatic,
				})
			}
			if rank > prevRank {
				prevRank = rank
			}
		}
	}

	if imp.RequireSorted {
		for i := 1; i < len(u.Imports); i++ {
			prev, cur := u.Imports[i-1], u.Imports[i]
			// Only compare within one contiguous group.
			if importGroup(u.Language, prev) != importGroup(u.Language, cur) {
				continue
			}
			if cur.Line == prev.Line+1 && strings.ToLower(cur.Module) < strings.ToLower(prev.Module) {
				findings = append(findings, models.Finding{
					RuleID:   "imports.order",
					Severity: models.SeverityStyle,
					Category: models.CategoryImports,
					Message:  fmt.Sprintf("Import %q is not in alphabetical order", cur.Module),
					FilePath: u.Path,
					Line:     cur.Line,
					Source:   models.SourceStatic,
				})
			}
		}
	}
	return findings
}

// importGroup classifies an import as stdlib, third_party, or local.
func importGroup(lang source.Language, im source.Import) string {
	if im.Relative {
		return "local"
	}
	switch lang {
	case source.LangPython:
		root := im.Module
		if dot := strings.Index(root, "."); dot >= 0 {
			root = root[:dot]
		}
		if pythonStdlib[root] {
			return "stdlib"
		}
		return "third_party"
	case source.LangGo:
		// Module paths with a dotted first segment are remote.
		first := im.Module
		if slash := strings.Index(first, "/"); slash >= 0 {
			first = first[:slash]
		}
		if strings.Contains(first, ".") {
			return "third_party"
		}
		return "stdlib"
	default:
		if strings.HasPrefix(im.Module, ".") {
			return "local"
		}
		return "third_party"
	}
}
