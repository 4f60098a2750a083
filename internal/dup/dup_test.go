package dup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/source"
)

const sumLogic = `def total_price(items):
    result = 0
    count = 0
    for item in items:
        if item.active:
            result = result + item.price * item.quantity
            count = count + 1
    if count == 0:
        return 0
    return result / count
`

// Same structure as sumLogic with every name and number changed.
const sumLogicRenamed = `def average_weight(boxes):
    total = 0
    seen = 0
    for box in boxes:
        if box.loaded:
            total = total + box.weight * box.stacking
            seen = seen + 1
    if seen == 7:
        return 9
    return total / seen
`

const unrelatedLogic = `def load_settings(path):
    with open(path) as handle:
        data = handle.read()
    parts = data.split("\n")
    settings = {}
    for part in parts:
        key, value = part.split("=")
        settings[key] = value
    return settings
`

func parseAll(t *testing.T, files map[string]string) []*source.Unit {
	t.Helper()
	var units []*source.Unit
	for _, path := range []string{"a.py", "b.py", "c.py"} {
		content, ok := files[path]
		if !ok {
			continue
		}
		u, err := source.Parse(source.File{Path: path, Content: content})
		require.NoError(t, err)
		units = append(units, u)
	}
	return units
}

func TestDetect_RenamedCopyIsFound(t *testing.T) {
	units := parseAll(t, map[string]string{
		"a.py": sumLogic,
		"b.py": sumLogicRenamed,
	})
	findings := Detect(units, config.Default())

	require.Len(t, findings, 1, "one finding per similar pair")
	f := findings[0]
	assert.Equal(t, "duplication.similar_code", f.RuleID)
	assert.Equal(t, "a.py", f.FilePath)
	assert.Contains(t, f.Message, "total_price")
	assert.Contains(t, f.Message, "average_weight")
	assert.Contains(t, f.Message, "b.py")
}

func TestDetect_UnrelatedFunctionsPass(t *testing.T) {
	units := parseAll(t, map[string]string{
		"a.py": sumLogic,
		"c.py": unrelatedLogic,
	})
	findings := Detect(units, config.Default())
	assert.Empty(t, findings)
}

func TestDetect_ThresholdBoundsFindings(t *testing.T) {
	units := parseAll(t, map[string]string{
		"a.py": sumLogic,
		"b.py": sumLogicRenamed,
		"c.py": unrelatedLogic,
	})

	cfg := config.Default()
	findings := Detect(units, cfg)
	require.Len(t, findings, 1, "only the renamed copy clears 0.85")

	cfg.Review.Rules.Duplication.SimilarityThreshold = 0.5
	loose := Detect(units, cfg)
	assert.GreaterOrEqual(t, len(loose), 1)
	assert.LessOrEqual(t, len(findings), len(loose))
}

func TestDetect_ShortFunctionsSkipped(t *testing.T) {
	short := `def tiny(x):
    return x + 1
`
	units := parseAll(t, map[string]string{
		"a.py": short,
		"b.py": short,
	})
	findings := Detect(units, config.Default())
	assert.Empty(t, findings, "below min_tokens and min_lines")
}

// High token overlap with every second line altered, so no contiguous run of
// matching lines survives.
const steppedA = `def stepped_sum(x):
    a1 = x + 1
    a2 = x + 2
    a3 = x + 3
    a4 = x + 4
    a5 = x + 5
    a6 = x + 6
    a7 = x + 7
    a8 = x + 8
    a9 = x + 9
    b1 = x + 1
    b2 = x + 2
    return a1
`

const steppedB = `def stepped_gain(y):
    c1 = y + 1
    c2 = y + 2 + 9
    c3 = y + 3
    c4 = y + 4 + 9
    c5 = y + 5
    c6 = y + 6 + 9
    c7 = y + 7
    c8 = y + 8 + 9
    c9 = y + 9
    d1 = y + 1 + 9
    d2 = y + 2
    return c1
`

func TestDetect_ScatteredSimilarityNotFlagged(t *testing.T) {
	units := parseAll(t, map[string]string{
		"a.py": steppedA,
		"b.py": steppedB,
	})
	findings := Detect(units, config.Default())
	assert.Empty(t, findings, "token similarity alone is not enough")
}

func TestLongestCommonRun(t *testing.T) {
	a := []string{"p", "q", "r", "s"}
	assert.Equal(t, 4, longestCommonRun(a, a))
	assert.Equal(t, 2, longestCommonRun(a, []string{"r", "s", "x"}))
	assert.Equal(t, 0, longestCommonRun(a, []string{"x", "y"}))
	assert.Equal(t, 0, longestCommonRun(a, nil))
}

func TestDetect_Disabled(t *testing.T) {
	units := parseAll(t, map[string]string{
		"a.py": sumLogic,
		"b.py": sumLogicRenamed,
	})
	cfg := config.Default()
	cfg.Review.Rules.Duplication.Enabled = false
	assert.Nil(t, Detect(units, cfg))
}

func TestSimilarity(t *testing.T) {
	a := []string{"if", "VAR", ":", "return", "NUM"}
	assert.Equal(t, 1.0, similarity(a, a))

	b := []string{"for", "VAR", "in", "VAR", ":"}
	assert.Less(t, similarity(a, b), 0.5)

	assert.Equal(t, 0.0, similarity(nil, a))
}
