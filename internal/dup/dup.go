// Package dup detects structurally duplicated functions across the reviewed
// units. Function bodies are normalized to token streams (identifiers VAR,
// numbers NUM, strings STR) so renamed copies still match; similarity is the
// ratio of the longest common token subsequence to the combined length.
package dup

import (
	"fmt"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

type candidate struct {
	unit   *source.Unit
	fn     source.Function
	tokens []string
	// lineSigs is the normalized form of each non-empty body line, used
	// to require a contiguous run of matching lines between a pair.
	lineSigs []string
}

// Detect compares every function pair across the units and returns one
// finding per pair whose similarity meets the threshold and whose bodies
// share at least min_lines consecutive matching normalized lines. It runs
// after all units are parsed; duplication is inherently a cross-file concern.
func Detect(units []*source.Unit, cfg *config.Config) []models.Finding {
	dc := cfg.Review.Rules.Duplication
	if !dc.Enabled {
		return nil
	}

	var cands []candidate
	for _, u := range units {
		for _, fn := range u.Functions {
			if fn.EndLine-fn.StartLine+1 < dc.MinLines {
				continue
			}
			toks := source.Normalize(
				source.TokenizeRange(u, fn.BodyStart, fn.EndLine),
				dc.IgnoreComments, dc.IgnoreDocstrings,
			)
			if len(toks) < dc.MinTokens {
				continue
			}
			texts := make([]string, len(toks))
			for i, t := range toks {
				texts[i] = t.Text
			}
			cands = append(cands, candidate{
				unit: u, fn: fn,
				tokens:   texts,
				lineSigs: lineSignatures(toks),
			})
		}
	}

	var findings []models.Finding
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			a, b := cands[i], cands[j]
			ratio := similarity(a.tokens, b.tokens)
			if ratio < dc.SimilarityThreshold {
				continue
			}
			if longestCommonRun(a.lineSigs, b.lineSigs) < dc.MinLines {
				continue
			}
			findings = append(findings, models.Finding{
				RuleID:   "duplication.similar_code",
				Severity: models.SeverityWarning,
				Category: models.CategoryDuplication,
				Message: fmt.Sprintf("Function %q is %d%% similar to %q (%s:%d)",
					a.fn.Name, int(ratio*100), b.fn.Name, b.unit.Path, b.fn.StartLine),
				FilePath:   a.unit.Path,
				Line:       a.fn.StartLine,
				Suggestion: "Extract the shared logic into one helper",
				Source:     models.SourceStatic,
			})
		}
	}
	return findings
}

// lineSignatures joins the normalized tokens of each source line into one
// comparable string per line. Lines with no tokens contribute nothing.
func lineSignatures(toks []source.Token) []string {
	var sigs []string
	cur := -1
	var parts []string
	for _, t := range toks {
		if t.Line != cur {
			if len(parts) > 0 {
				sigs = append(sigs, strings.Join(parts, " "))
			}
			parts = parts[:0]
			cur = t.Line
		}
		parts = append(parts, t.Text)
	}
	if len(parts) > 0 {
		sigs = append(sigs, strings.Join(parts, " "))
	}
	return sigs
}

// longestCommonRun returns the length of the longest run of consecutive
// elements equal between a and b.
func longestCommonRun(a, b []string) int {
	best := 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}

// similarity returns 2*lcs/(len(a)+len(b)), the token-level analogue of a
// diff match ratio. 1.0 means identical streams.
func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Two rows of the LCS table suffice.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}
