// Package metrics derives per-file and per-function measurements from parsed
// source units. Extraction is pure: same unit in, same numbers out, no
// configuration involved. Checkers compare these numbers against thresholds.
package metrics

import (
	"regexp"
	"strings"

	"github.com/gavelhq/gavel/internal/source"
)

// FunctionMetrics holds the measurements for one function.
type FunctionMetrics struct {
	Name      string
	StartLine int
	EndLine   int
	// Lines is the total span of the function including its signature.
	Lines int
	// Cyclomatic is 1 plus one per branch point and boolean operator.
	Cyclomatic int
	// Cognitive weights each branch point by how deeply it is nested:
	// a branch at nesting depth d contributes 1+d. Boolean operators
	// contribute 1 each.
	Cognitive int
	// MaxNesting is the deepest block nesting reached by a branch point,
	// where a branch at the top of the function body counts as 1.
	MaxNesting int
	Returns    int
	LocalVars  int
}

// FileMetrics holds the measurements for one file.
type FileMetrics struct {
	Path       string
	TotalLines int
	CodeLines  int
	Functions  []FunctionMetrics
}

// Extract computes all metrics for a unit.
func Extract(u *source.Unit) FileMetrics {
	fm := FileMetrics{
		Path:       u.Path,
		TotalLines: totalLines(u),
		Functions:  make([]FunctionMetrics, 0, len(u.Functions)),
	}
	prof := source.ProfileFor(u.Language)
	for _, line := range u.Lines {
		t := strings.TrimSpace(line)
		if t != "" && !(prof.LineComment != "" && strings.HasPrefix(t, prof.LineComment)) {
			fm.CodeLines++
		}
	}
	for _, fn := range u.Functions {
		fm.Functions = append(fm.Functions, extractFunction(u, prof, fn))
	}
	return fm
}

func totalLines(u *source.Unit) int {
	n := len(u.Lines)
	// A trailing newline leaves one empty split element.
	if n > 0 && u.Lines[n-1] == "" {
		n--
	}
	return n
}

func extractFunction(u *source.Unit, prof source.Profile, fn source.Function) FunctionMetrics {
	m := FunctionMetrics{
		Name:       fn.Name,
		StartLine:  fn.StartLine,
		EndLine:    fn.EndLine,
		Lines:      fn.EndLine - fn.StartLine + 1,
		Cyclomatic: 1,
	}

	locals := map[string]bool{}
	bodyIndent, indentUnit := pythonIndentation(u, fn)

	// Braces opened by the signature itself set the body's base depth.
	braceDepth := 0
	if !prof.BlockByIndent {
		for ln := fn.StartLine; ln < fn.BodyStart && ln <= len(u.Lines); ln++ {
			braceDepth += strings.Count(u.Lines[ln-1], "{") - strings.Count(u.Lines[ln-1], "}")
		}
	}

	for ln := fn.BodyStart; ln <= fn.EndLine && ln <= len(u.Lines); ln++ {
		line := u.Lines[ln-1]

		nesting := 0
		if prof.BlockByIndent {
			nesting = pythonNesting(line, bodyIndent, indentUnit)
		} else {
			nesting = braceDepth - 1
			if nesting < 0 {
				nesting = 0
			}
		}

		toks := source.TokenizeRange(u, ln, ln)
		firstCode := true
		for i, tok := range toks {
			switch tok.Kind {
			case source.TokenComment, source.TokenString:
				continue
			case source.TokenKeyword:
				if prof.DecisionKeywords[tok.Text] {
					m.Cyclomatic++
					m.Cognitive += 1 + nesting
					if nesting+1 > m.MaxNesting {
						m.MaxNesting = nesting + 1
					}
				}
				if tok.Text == "return" && firstCode {
					m.Returns++
				}
				for _, op := range prof.BoolOperators {
					if tok.Text == op {
						m.Cyclomatic++
						m.Cognitive++
					}
				}
			case source.TokenPunct:
				// && and || arrive as two adjacent punct tokens.
				if (tok.Text == "&" || tok.Text == "|") && i+1 < len(toks) &&
					toks[i+1].Text == tok.Text && hasOperator(prof, tok.Text+tok.Text) {
					m.Cyclomatic++
					m.Cognitive++
					// Consume the pair by skipping the twin on its turn.
					toks[i+1].Text = ""
				}
			}
			firstCode = false
		}

		if name := localAssignment(u.Language, line); name != "" {
			locals[name] = true
		}

		if !prof.BlockByIndent {
			braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		}
	}

	m.LocalVars = len(locals)
	return m
}

// pythonIndentation returns the indent of the first body line and the indent
// step between nesting levels.
func pythonIndentation(u *source.Unit, fn source.Function) (bodyIndent, unit int) {
	for ln := fn.BodyStart; ln <= fn.EndLine && ln <= len(u.Lines); ln++ {
		if strings.TrimSpace(u.Lines[ln-1]) == "" {
			continue
		}
		bodyIndent = indentOf(u.Lines[ln-1])
		unit = bodyIndent - fn.Indent
		if unit <= 0 {
			unit = 4
		}
		return bodyIndent, unit
	}
	return fn.Indent + 4, 4
}

func pythonNesting(line string, bodyIndent, unit int) int {
	if strings.TrimSpace(line) == "" {
		return 0
	}
	n := (indentOf(line) - bodyIndent) / unit
	if n < 0 {
		return 0
	}
	return n
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

func hasOperator(prof source.Profile, op string) bool {
	for _, o := range prof.BoolOperators {
		if o == op {
			return true
		}
	}
	return false
}

var (
	pyAssignRe = regexp.MustCompile(`^\s*([a-zA-Z_]\w*)\s*(?::[^=]+)?=[^=]`)
	goAssignRe = regexp.MustCompile(`^\s*([a-zA-Z_]\w*)(?:\s*,\s*[a-zA-Z_]\w*)*\s*:=`)
	goVarRe    = regexp.MustCompile(`^\s*var\s+([a-zA-Z_]\w*)`)
	jsDeclRe   = regexp.MustCompile(`^\s*(?:const|let|var)\s+([a-zA-Z_$]\w*)`)
)

// localAssignment returns the name bound by a local declaration on this line,
// or "" when the line declares nothing.
func localAssignment(lang source.Language, line string) string {
	switch lang {
	case source.LangPython:
		if m := pyAssignRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	case source.LangGo:
		if m := goAssignRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
		if m := goVarRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	case source.LangJavaScript:
		if m := jsDeclRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
