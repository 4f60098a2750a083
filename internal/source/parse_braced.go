package source

import (
	"regexp"
	"strings"
)

var (
	goFuncRe   = regexp.MustCompile(`^func\s+(?:\([^)]+\)\s+)?([A-Za-z_]\w*)\s*\(`)
	goTypeRe   = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+(?:struct|interface)\b`)
	goImportRe = regexp.MustCompile(`^import\s+(?:\w+\s+)?"([^"]+)"`)
	goGroupRe  = regexp.MustCompile(`^\s*(?:\w+\s+)?"([^"]+)"`)

	jsFuncRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$]\w*)\s*\(`)
	jsArrowRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$]\w*)\s*=\s*(?:async\s+)?\(`)
	jsClassRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$]\w*)`)
	jsFromRe  = regexp.MustCompile(`^\s*import\b.*?from\s+['"]([^'"]+)['"]`)
	jsReqRe   = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
)

// parseBraced fills in the structural fields of a go or javascript unit,
// using brace depth to delimit bodies.
func parseBraced(u *Unit) {
	isGo := u.Language == LangGo
	inImportGroup := false

	for i := 0; i < len(u.Lines); i++ {
		line := u.Lines[i]
		trimmed := strings.TrimSpace(line)

		if isGo {
			if inImportGroup {
				if trimmed == ")" {
					inImportGroup = false
					continue
				}
				if m := goGroupRe.FindStringSubmatch(line); m != nil {
					u.Imports = append(u.Imports, Import{Raw: trimmed, Module: m[1], Line: i + 1})
				}
				continue
			}
			if strings.HasPrefix(trimmed, "import (") {
				inImportGroup = true
				continue
			}
			if m := goImportRe.FindStringSubmatch(line); m != nil {
				u.Imports = append(u.Imports, Import{Raw: trimmed, Module: m[1], Line: i + 1})
				continue
			}
			if m := goTypeRe.FindStringSubmatch(line); m != nil {
				doc := docComment(u.Lines, i)
				u.Classes = append(u.Classes, Class{
					Name:     m[1],
					Line:     i + 1,
					Doc:      doc,
					DocWords: countWords(doc),
				})
				continue
			}
			if m := goFuncRe.FindStringSubmatch(line); m != nil {
				fn := parseBracedFunc(u.Lines, i, m[1], true)
				fn.Doc = docComment(u.Lines, i)
				fn.DocWords = countWords(fn.Doc)
				u.Functions = append(u.Functions, fn)
			}
			continue
		}

		// JavaScript.
		if m := jsFromRe.FindStringSubmatch(line); m != nil {
			u.Imports = append(u.Imports, Import{
				Raw:      trimmed,
				Module:   m[1],
				Line:     i + 1,
				Relative: strings.HasPrefix(m[1], "."),
			})
			continue
		}
		if m := jsReqRe.FindStringSubmatch(line); m != nil {
			u.Imports = append(u.Imports, Import{
				Raw:      trimmed,
				Module:   m[1],
				Line:     i + 1,
				Relative: strings.HasPrefix(m[1], "."),
			})
			continue
		}
		if m := jsClassRe.FindStringSubmatch(line); m != nil {
			u.Classes = append(u.Classes, Class{Name: m[1], Line: i + 1})
			continue
		}
		name := ""
		if m := jsFuncRe.FindStringSubmatch(line); m != nil {
			name = m[1]
		} else if m := jsArrowRe.FindStringSubmatch(line); m != nil && strings.Contains(line, "=>") {
			name = m[1]
		}
		if name != "" {
			fn := parseBracedFunc(u.Lines, i, name, false)
			u.Functions = append(u.Functions, fn)
		}
	}
}

// parseBracedFunc parses a function starting at line index start, delimiting
// the body by brace depth.
func parseBracedFunc(lines []string, start int, name string, isGo bool) Function {
	fn := Function{
		Name:      name,
		StartLine: start + 1,
		Indent:    indentWidth(lines[start]),
	}

	// Collect the signature until the parameter parens balance.
	sig := lines[start]
	sigEnd := start
	for depth := parenDelta(lines[start]); depth > 0 && sigEnd+1 < len(lines); {
		sigEnd++
		sig += " " + strings.TrimSpace(lines[sigEnd])
		depth += parenDelta(lines[sigEnd])
	}
	fn.BodyStart = sigEnd + 2

	open := strings.Index(sig, "(")
	closing := matchingParen(sig, open)
	if open >= 0 && closing > open {
		if isGo {
			fn.Params = parseGoParams(sig[open+1 : closing])
			after := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sig[closing+1:]), "{"))
			fn.HasReturnType = after != ""
		} else {
			fn.Params = parseJSParams(sig[open+1 : closing])
			fn.HasReturnType = strings.HasPrefix(strings.TrimSpace(sig[closing+1:]), ":")
		}
	}

	// Walk braces from the signature to the close of the body.
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for j := 0; j < len(lines[i]); j++ {
			switch lines[i][j] {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			fn.EndLine = i + 1
			return fn
		}
	}
	fn.EndLine = len(lines)
	return fn
}

// matchingParen returns the index of the paren closing the one at open.
func matchingParen(s string, open int) int {
	if open < 0 {
		return -1
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseGoParams classifies a go parameter list. Grouped parameters
// ("a, b int") count one param per name.
func parseGoParams(raw string) []Param {
	var params []Param
	for _, part := range splitTopLevel(raw, ',') {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		name := p
		hasType := false
		isBool := false
		if sp := strings.IndexAny(p, " \t"); sp >= 0 {
			name = p[:sp]
			hasType = true
			isBool = strings.HasSuffix(strings.TrimSpace(p[sp:]), "bool")
		}
		params = append(params, Param{Name: name, HasType: hasType, IsBoolFlag: isBool})
	}
	return params
}

// parseJSParams classifies a javascript parameter list; defaults use '='.
func parseJSParams(raw string) []Param {
	var params []Param
	for _, part := range splitTopLevel(raw, ',') {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		p = strings.TrimPrefix(p, "...")
		var param Param
		rest := p
		if eq := topLevelIndex(p, '='); eq >= 0 {
			param.HasDefault = true
			def := strings.TrimSpace(p[eq+1:])
			param.IsBoolFlag = def == "true" || def == "false"
			rest = p[:eq]
		}
		if colon := strings.Index(rest, ":"); colon >= 0 {
			param.HasType = true
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

// docComment collects the contiguous line-comment block directly above line
// index i, top to bottom.
func docComment(lines []string, i int) string {
	var block []string
	for j := i - 1; j >= 0; j-- {
		t := strings.TrimSpace(lines[j])
		if !strings.HasPrefix(t, "//") {
			break
		}
		block = append([]string{strings.TrimSpace(strings.TrimPrefix(t, "//"))}, block...)
	}
	return strings.Join(block, "\n")
}
