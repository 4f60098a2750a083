package engine

import (
	"path"
	"sort"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/models"
)

// aggregate turns the raw combined finding stream into the final report
// list: dedup, severity floor, focus filter, ignore patterns, deterministic
// sort, truncation. Input order is significant: earlier findings win dedup
// collisions, so callers append static findings first and AI findings last.
func aggregate(findings []models.Finding, cfg *config.Config) []models.Finding {
	rev := cfg.Review

	seen := make(map[string]bool, len(findings))
	out := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		key := f.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		if !f.Severity.MeetsThreshold(rev.MinSeverity) {
			continue
		}
		if len(rev.FocusAreas) > 0 && !inFocus(f, rev.FocusAreas) {
			continue
		}
		if pathIgnored(f.FilePath, rev.IgnorePatterns) {
			continue
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})

	if rev.MaxComments > 0 && len(out) > rev.MaxComments {
		out = out[:rev.MaxComments]
	}
	return out
}

func inFocus(f models.Finding, areas []string) bool {
	for _, a := range areas {
		if strings.EqualFold(a, string(f.Category)) {
			return true
		}
	}
	return false
}

// pathIgnored matches a finding's file path against ignore_patterns. A
// pattern is a glob over the full path or the base name, or a plain fragment
// matched by containment ("generated/").
func pathIgnored(filePath string, patterns []string) bool {
	base := path.Base(filePath)
	for _, p := range patterns {
		if ok, _ := path.Match(p, filePath); ok {
			return true
		}
		if ok, _ := path.Match(p, base); ok {
			return true
		}
		if strings.Contains(filePath, p) {
			return true
		}
	}
	return false
}
