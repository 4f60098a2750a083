package source

// Profile carries the per-language facts the metric and checker layers need:
// keyword sets, decision points, boolean operators, and comment syntax.
type Profile struct {
	LineComment   string
	BlockByIndent bool
	// Keywords survive token normalization so control flow differences
	// still distinguish otherwise-identical code.
	Keywords map[string]bool
	// DecisionKeywords each add a branch for complexity purposes.
	DecisionKeywords map[string]bool
	// LoopKeywords is the subset of decision keywords that open loops.
	LoopKeywords map[string]bool
	// BoolOperators each add a branch when used in a condition.
	BoolOperators []string
	// AssertPatterns mark a line as a test assertion when present.
	AssertPatterns []string
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var pythonProfile = Profile{
	LineComment:   "#",
	BlockByIndent: true,
	Keywords: set(
		"False", "None", "True", "and", "as", "assert", "async", "await",
		"break", "class", "continue", "def", "del", "elif", "else", "except",
		"finally", "for", "from", "global", "if", "import", "in", "is",
		"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
		"while", "with", "yield", "match", "case",
	),
	DecisionKeywords: set("if", "elif", "for", "while", "except", "case"),
	LoopKeywords:     set("for", "while"),
	BoolOperators:    []string{"and", "or"},
	AssertPatterns:   []string{"assert ", "self.assert", "pytest.raises", ".assert_called"},
}

var goProfile = Profile{
	LineComment: "//",
	Keywords: set(
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var", "true", "false", "nil",
	),
	DecisionKeywords: set("if", "for", "case", "select"),
	LoopKeywords:     set("for"),
	BoolOperators:    []string{"&&", "||"},
	AssertPatterns:   []string{"t.Error", "t.Fatal", "assert.", "require.", ".Equal("},
}

var jsProfile = Profile{
	LineComment: "//",
	Keywords: set(
		"async", "await", "break", "case", "catch", "class", "const",
		"continue", "default", "delete", "do", "else", "export", "extends",
		"finally", "for", "function", "if", "import", "in", "instanceof",
		"let", "new", "of", "return", "static", "super", "switch", "this",
		"throw", "try", "typeof", "var", "void", "while", "yield",
		"true", "false", "null", "undefined",
	),
	DecisionKeywords: set("if", "for", "while", "case", "catch", "do"),
	LoopKeywords:     set("for", "while", "do"),
	BoolOperators:    []string{"&&", "||"},
	AssertPatterns:   []string{"expect(", "assert(", "assert.", "should."},
}

// ProfileFor returns the profile for a detected language.
func ProfileFor(lang Language) Profile {
	switch lang {
	case LangPython:
		return pythonProfile
	case LangGo:
		return goProfile
	case LangJavaScript:
		return jsProfile
	default:
		return Profile{}
	}
}
