package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTexts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestTokenize_Python(t *testing.T) {
	u, err := Parse(File{Path: "t.py", Content: "x = 42  # answer\ns = 'hi'\n"})
	require.NoError(t, err)

	toks := Tokenize(u)
	texts := tokenTexts(toks)
	assert.Equal(t, []string{"x", "=", "42", "# answer", "s", "=", "'hi'"}, texts)
	assert.Equal(t, TokenComment, toks[3].Kind)
	assert.Equal(t, TokenNumber, toks[2].Kind)
	assert.Equal(t, 2, toks[4].Line)
}

func TestTokenize_KeywordsKeepKind(t *testing.T) {
	u, err := Parse(File{Path: "t.py", Content: "if x and y:\n    return x\n"})
	require.NoError(t, err)

	toks := Tokenize(u)
	kinds := map[string]TokenKind{}
	for _, tok := range toks {
		kinds[tok.Text] = tok.Kind
	}
	assert.Equal(t, TokenKeyword, kinds["if"])
	assert.Equal(t, TokenKeyword, kinds["and"])
	assert.Equal(t, TokenKeyword, kinds["return"])
	assert.Equal(t, TokenIdent, kinds["x"])
}

func TestTokenize_Docstring(t *testing.T) {
	src := "def f():\n    \"\"\"Does the thing\n    across lines.\"\"\"\n    return 1\n"
	u, err := Parse(File{Path: "t.py", Content: src})
	require.NoError(t, err)

	toks := Tokenize(u)
	var doc *Token
	for i := range toks {
		if toks[i].Doc {
			doc = &toks[i]
			break
		}
	}
	require.NotNil(t, doc)
	assert.Equal(t, TokenString, doc.Kind)
	assert.Equal(t, 2, doc.Line)
}

func TestNormalize(t *testing.T) {
	u, err := Parse(File{Path: "t.py", Content: "total = price * 3  # tax\nname = 'bob'\n"})
	require.NoError(t, err)

	norm := Normalize(Tokenize(u), true, true)
	assert.Equal(t, []string{"VAR", "=", "VAR", "*", "NUM", "VAR", "=", "STR"}, tokenTexts(norm))
}

func TestNormalize_KeepsComments(t *testing.T) {
	u, err := Parse(File{Path: "t.py", Content: "x = 1  # note\n"})
	require.NoError(t, err)

	norm := Normalize(Tokenize(u), false, true)
	assert.Equal(t, []string{"VAR", "=", "NUM", "# note"}, tokenTexts(norm))
}

func TestNormalize_StructurallyIdenticalFunctions(t *testing.T) {
	a := "def add_tax(price):\n    total = price * 1.2\n    return total\n"
	b := "def with_fee(cost):\n    amount = cost * 9.9\n    return amount\n"

	ua, err := Parse(File{Path: "a.py", Content: a})
	require.NoError(t, err)
	ub, err := Parse(File{Path: "b.py", Content: b})
	require.NoError(t, err)

	na := Normalize(Tokenize(ua), true, true)
	nb := Normalize(Tokenize(ub), true, true)
	assert.Equal(t, tokenTexts(na), tokenTexts(nb))
}

func TestTokenizeRange(t *testing.T) {
	u, err := Parse(File{Path: "t.py", Content: "a = 1\nb = 2\nc = 3\n"})
	require.NoError(t, err)

	toks := TokenizeRange(u, 2, 2)
	assert.Equal(t, []string{"b", "=", "2"}, tokenTexts(toks))
}
