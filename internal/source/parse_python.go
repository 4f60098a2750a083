package source

import (
	"regexp"
	"strings"
)

var (
	pyDefRe    = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`)
	pyImportRe = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	pyFromRe   = regexp.MustCompile(`^\s*from\s+([\w.]*)\s+import\b`)
)

// parsePython fills in the structural fields of a python unit. It is a
// line-oriented scan, not a full grammar: good enough to locate definitions,
// signatures, docstrings, and imports, which is all the checkers consume.
func parsePython(u *Unit) {
	inString := false
	var stringDelim string

	for i := 0; i < len(u.Lines); i++ {
		line := u.Lines[i]

		if inString {
			if strings.Contains(line, stringDelim) {
				inString = false
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if opensTripleString(trimmed, &stringDelim) {
			inString = true
			continue
		}

		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			u.Imports = append(u.Imports, Import{
				Raw:    trimmed,
				Module: m[1],
				Line:   i + 1,
			})
			continue
		}
		if m := pyFromRe.FindStringSubmatch(line); m != nil {
			mod := m[1]
			u.Imports = append(u.Imports, Import{
				Raw:      trimmed,
				Module:   mod,
				Line:     i + 1,
				Relative: mod == "" || strings.HasPrefix(trimmed, "from ."),
			})
			continue
		}

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			indent := indentWidth(line)
			doc, _ := pythonDocstring(u.Lines, i+1, indent)
			u.Classes = append(u.Classes, Class{
				Name:     m[2],
				Line:     i + 1,
				Doc:      doc,
				DocWords: countWords(doc),
			})
			continue
		}

		if m := pyDefRe.FindStringSubmatch(line); m != nil {
			fn, next := parsePythonDef(u.Lines, i, m[2])
			u.Functions = append(u.Functions, fn)
			i = next - 1 // resume at the line after the signature
		}
	}
}

// opensTripleString reports whether a line opens an unterminated
// triple-quoted string and records its delimiter.
func opensTripleString(trimmed string, delim *string) bool {
	for _, d := range []string{`"""`, `'''`} {
		idx := strings.Index(trimmed, d)
		if idx < 0 {
			continue
		}
		rest := trimmed[idx+3:]
		if !strings.Contains(rest, d) {
			*delim = d
			return true
		}
	}
	return false
}

// parsePythonDef parses one def starting at line index start. It returns the
// function and the index of the first body line.
func parsePythonDef(lines []string, start int, name string) (Function, int) {
	indent := indentWidth(lines[start])

	// Signatures may span lines; collect until the parens balance and the
	// trailing colon appears.
	sig := lines[start]
	end := start
	for depth := parenDelta(lines[start]); depth > 0 && end+1 < len(lines); {
		end++
		sig += " " + strings.TrimSpace(lines[end])
		depth += parenDelta(lines[end])
	}

	fn := Function{
		Name:      name,
		StartLine: start + 1,
		BodyStart: end + 2,
		Indent:    indent,
	}

	open := strings.Index(sig, "(")
	closing := strings.LastIndex(sig, ")")
	if open >= 0 && closing > open {
		fn.Params = parsePythonParams(sig[open+1 : closing])
		fn.HasReturnType = strings.Contains(sig[closing:], "->")
	}

	doc, docEnd := pythonDocstring(lines, end+1, indent)
	fn.Doc = doc
	fn.DocWords = countWords(doc)
	fn.EndLine = pythonBlockEnd(lines, max(end+1, docEnd), indent)
	if fn.EndLine < fn.StartLine {
		fn.EndLine = fn.StartLine
	}
	return fn, end + 1
}

func parenDelta(line string) int {
	return strings.Count(line, "(") - strings.Count(line, ")")
}

// parsePythonParams splits a parameter list on top-level commas and
// classifies each entry.
func parsePythonParams(raw string) []Param {
	var params []Param
	for _, part := range splitTopLevel(raw, ',') {
		p := strings.TrimSpace(part)
		if p == "" || p == "self" || p == "cls" || p == "*" || p == "/" {
			continue
		}
		p = strings.TrimLeft(p, "*")

		var param Param
		rest := p
		if eq := topLevelIndex(p, '='); eq >= 0 {
			param.HasDefault = true
			def := strings.TrimSpace(p[eq+1:])
			param.IsBoolFlag = def == "True" || def == "False"
			rest = p[:eq]
		}
		if colon := strings.Index(rest, ":"); colon >= 0 {
			param.HasType = true
			typ := strings.TrimSpace(rest[colon+1:])
			if strings.HasPrefix(typ, "bool") && param.HasDefault {
				param.IsBoolFlag = true
			}
			rest = rest[:colon]
		}
		param.Name = strings.TrimSpace(rest)
		if param.Name == "" {
			continue
		}
		params = append(params, param)
	}
	return params
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets or
// quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// topLevelIndex returns the index of the first unnested, unquoted occurrence
// of c in s, or -1.
func topLevelIndex(s string, c byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(' || ch == '[' || ch == '{':
			depth++
		case ch == ')' || ch == ']' || ch == '}':
			depth--
		case ch == c && depth == 0:
			return i
		}
	}
	return -1
}

// pythonDocstring looks for a docstring starting at line index start (the
// first body line of a def or class at the given indent). It returns the
// docstring text and the index of the first line after it.
func pythonDocstring(lines []string, start, indent int) (doc string, next int) {
	i := start
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || indentWidth(lines[i]) <= indent {
		return "", start
	}
	trimmed := strings.TrimSpace(lines[i])
	var delim string
	switch {
	case strings.HasPrefix(trimmed, `"""`):
		delim = `"""`
	case strings.HasPrefix(trimmed, `'''`):
		delim = `'''`
	default:
		return "", start
	}

	body := trimmed[len(delim):]
	if end := strings.Index(body, delim); end >= 0 {
		// Single-line docstring.
		return body[:end], i + 1
	}
	var b strings.Builder
	b.WriteString(body)
	for i++; i < len(lines); i++ {
		t := lines[i]
		b.WriteString("\n")
		if idx := strings.Index(t, delim); idx >= 0 {
			b.WriteString(t[:idx])
			return b.String(), i + 1
		}
		b.WriteString(t)
	}
	return b.String(), len(lines)
}

// pythonBlockEnd returns the 1-based last line of the indented block that
// starts after a definition at the given indent.
func pythonBlockEnd(lines []string, start, indent int) int {
	end := start // 0-based last known body line
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentWidth(lines[i]) <= indent {
			break
		}
		end = i
	}
	return end + 1
}
