package source

import "strings"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenKeyword
	TokenNumber
	TokenString
	TokenComment
	TokenPunct
)

// Token is one lexical token with its source line.
type Token struct {
	Text string
	Kind TokenKind
	Line int
	// Doc marks python triple-quoted strings, which stand in for
	// docstrings at the token level.
	Doc bool
}

// Tokenize lexes a unit into a flat token stream. Comments are emitted as
// single tokens so callers can keep or drop them.
func Tokenize(u *Unit) []Token {
	return tokenizeRange(u, 1, len(u.Lines))
}

// TokenizeRange lexes the given 1-based inclusive line range of a unit.
func TokenizeRange(u *Unit, startLine, endLine int) []Token {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(u.Lines) {
		endLine = len(u.Lines)
	}
	return tokenizeRange(u, startLine, endLine)
}

func tokenizeRange(u *Unit, startLine, endLine int) []Token {
	prof := ProfileFor(u.Language)
	var toks []Token

	inBlockComment := false
	inString := false
	var stringDelim string
	var pending Token

	for ln := startLine; ln <= endLine; ln++ {
		line := u.Lines[ln-1]
		i := 0
		for i < len(line) {
			if inBlockComment {
				if end := strings.Index(line[i:], "*/"); end >= 0 {
					pending.Text += line[i : i+end+2]
					toks = append(toks, pending)
					inBlockComment = false
					i += end + 2
					continue
				}
				pending.Text += line[i:] + "\n"
				i = len(line)
				continue
			}
			if inString {
				if end := strings.Index(line[i:], stringDelim); end >= 0 {
					pending.Text += line[i : i+end+len(stringDelim)]
					toks = append(toks, pending)
					inString = false
					i += end + len(stringDelim)
					continue
				}
				pending.Text += line[i:] + "\n"
				i = len(line)
				continue
			}

			c := line[i]
			switch {
			case c == ' ' || c == '\t' || c == '\r':
				i++

			case prof.LineComment != "" && strings.HasPrefix(line[i:], prof.LineComment):
				toks = append(toks, Token{Text: line[i:], Kind: TokenComment, Line: ln})
				i = len(line)

			case u.Language != LangPython && strings.HasPrefix(line[i:], "/*"):
				pending = Token{Text: "", Kind: TokenComment, Line: ln}
				inBlockComment = true
				if end := strings.Index(line[i+2:], "*/"); end >= 0 {
					pending.Text = line[i : i+2+end+2]
					toks = append(toks, pending)
					inBlockComment = false
					i += 2 + end + 2
				} else {
					pending.Text = line[i:] + "\n"
					i = len(line)
				}

			case u.Language == LangPython && (strings.HasPrefix(line[i:], `"""`) || strings.HasPrefix(line[i:], `'''`)):
				stringDelim = line[i : i+3]
				pending = Token{Text: "", Kind: TokenString, Line: ln, Doc: true}
				rest := line[i+3:]
				if end := strings.Index(rest, stringDelim); end >= 0 {
					pending.Text = line[i : i+3+end+3]
					toks = append(toks, pending)
					i += 3 + end + 3
				} else {
					pending.Text = line[i:] + "\n"
					inString = true
					i = len(line)
				}

			case c == '"' || c == '\'' || c == '`':
				delim := c
				j := i + 1
				for j < len(line) {
					if line[j] == '\\' {
						j += 2
						continue
					}
					if line[j] == delim {
						break
					}
					j++
				}
				if j < len(line) {
					toks = append(toks, Token{Text: line[i : j+1], Kind: TokenString, Line: ln})
					i = j + 1
				} else if c == '`' && u.Language != LangPython {
					// Raw/template strings continue across lines.
					stringDelim = "`"
					pending = Token{Text: line[i:] + "\n", Kind: TokenString, Line: ln}
					inString = true
					i = len(line)
				} else {
					toks = append(toks, Token{Text: line[i:], Kind: TokenString, Line: ln})
					i = len(line)
				}

			case c >= '0' && c <= '9':
				j := i
				for j < len(line) && isNumChar(line[j]) {
					j++
				}
				toks = append(toks, Token{Text: line[i:j], Kind: TokenNumber, Line: ln})
				i = j

			case isIdentStart(c):
				j := i
				for j < len(line) && isIdentChar(line[j]) {
					j++
				}
				word := line[i:j]
				kind := TokenIdent
				if prof.Keywords[word] {
					kind = TokenKeyword
				}
				toks = append(toks, Token{Text: word, Kind: kind, Line: ln})
				i = j

			default:
				toks = append(toks, Token{Text: string(c), Kind: TokenPunct, Line: ln})
				i++
			}
		}
	}
	if inBlockComment || inString {
		toks = append(toks, pending)
	}
	return toks
}

// Normalize rewrites a token stream for structural comparison: identifiers
// become VAR, numbers NUM, string literals STR. Keywords and punctuation pass
// through so control flow still distinguishes code. Comments and docstrings
// are dropped according to the flags.
func Normalize(toks []Token, ignoreComments, ignoreDocstrings bool) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		switch t.Kind {
		case TokenComment:
			if ignoreComments {
				continue
			}
			out = append(out, t)
		case TokenString:
			if t.Doc && ignoreDocstrings {
				continue
			}
			t.Text = "STR"
			out = append(out, t)
		case TokenIdent:
			t.Text = "VAR"
			out = append(out, t)
		case TokenNumber:
			t.Text = "NUM"
			out = append(out, t)
		default:
			out = append(out, t)
		}
	}
	return out
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '_' || c == 'x' || c == 'X' ||
		c == 'e' || c == 'E' || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
