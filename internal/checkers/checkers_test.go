package checkers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

func runOn(t *testing.T, path, content string, isTest bool) []models.Finding {
	t.Helper()
	u, err := source.Parse(source.File{Path: path, Content: content, IsTest: isTest})
	require.NoError(t, err)
	findings, errs := Run(u, metrics.Extract(u), config.Default())
	require.Empty(t, errs)
	return findings
}

func withRule(findings []models.Finding, ruleID string) []models.Finding {
	var out []models.Finding
	for _, f := range findings {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}
	return out
}

func TestNaming_ClassCaseViolation(t *testing.T) {
	src := `class myClass:
    """Holds a handful of values for the demonstration."""

    def run(self):
        """Run the demonstration and return its outcome."""
        return 1
`
	findings := runOn(t, "demo.py", src, false)

	hits := withRule(findings, "naming.class")
	require.Len(t, hits, 1, "one violation, one finding")
	assert.Equal(t, 1, hits[0].Line)
	assert.Equal(t, models.SeverityStyle, hits[0].Severity)
	assert.Contains(t, hits[0].Message, "myClass")
}

func TestNaming_ConstantsAndVariables(t *testing.T) {
	src := `MAX_RETRIES = 3
BadName = 1


def work():
    """Do a small amount of representative work."""
    someValue = 2
    return someValue
`
	findings := runOn(t, "consts.py", src, false)

	assert.Empty(t, withRule(findings, "naming.constant"))
	vars := withRule(findings, "naming.variable")
	require.Len(t, vars, 2)
	assert.Contains(t, vars[0].Message, "BadName")
	assert.Contains(t, vars[1].Message, "someValue")
}

func TestStyle_LineLength(t *testing.T) {
	long := "x = '" + strings.Repeat("a", 120) + "'\n"
	findings := runOn(t, "long.py", long, false)

	hits := withRule(findings, "style.line_length")
	require.Len(t, hits, 1)
	assert.Equal(t, models.SeverityStyle, hits[0].Severity)
}

func TestStyle_FileLength(t *testing.T) {
	src := strings.Repeat("x = x\n", 301)
	findings := runOn(t, "big.py", src, false)
	assert.Len(t, withRule(findings, "style.file_length"), 1)
}

func TestMagicNumbers(t *testing.T) {
	src := `TIMEOUT_SECONDS = 30


def wait():
    """Sleep for a while before the next polling attempt."""
    delay = 7.5
    count = 1
    return delay * count
`
	findings := runOn(t, "wait.py", src, false)

	hits := withRule(findings, "magic_numbers.literal")
	require.Len(t, hits, 1, "constant definition and ignored value 1 are exempt")
	assert.Contains(t, hits[0].Message, "7.5")
	assert.Equal(t, models.SeveritySuggestion, hits[0].Severity)
}

func TestImports_RelativeAndOrder(t *testing.T) {
	src := `import requests
import os
from . import siblings
`
	findings := runOn(t, "imp.py", src, false)

	assert.Len(t, withRule(findings, "imports.relative"), 1)
	// requests (third_party) precedes os (stdlib).
	assert.NotEmpty(t, withRule(findings, "imports.grouping"))
}

func TestComplexity_DeepNesting(t *testing.T) {
	src := `def deep(a, b, c, d):
    """Walk four levels of guards before producing a result."""
    if a:
        if b:
            if c:
                if d:
                    return 1
    return 0
`
	cfg := config.Default()
	cfg.Review.Rules.Complexity.MaxCognitiveComplexity = 9

	u, err := source.Parse(source.File{Path: "deep.py", Content: src})
	require.NoError(t, err)
	findings, errs := Run(u, metrics.Extract(u), cfg)
	require.Empty(t, errs)

	cog := withRule(findings, "complexity.cognitive")
	require.Len(t, cog, 1)
	assert.Contains(t, cog[0].Message, "10")

	nest := withRule(findings, "complexity.nesting")
	require.Len(t, nest, 1)
}

func TestFunctions_TooManyArguments(t *testing.T) {
	src := `def wide(a, b, c, d, e, f):
    """Accept too many positional arguments for one function."""
    return a
`
	findings := runOn(t, "wide.py", src, false)
	hits := withRule(findings, "functions.max_arguments")
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Message, "6 arguments")
}

func TestFunctions_BooleanFlags(t *testing.T) {
	src := `def render(data, bold=False, dim=False, wide=False) -> str:
    """Render the given data using the selected display options."""
    return str(data)
`
	findings := runOn(t, "render.py", src, false)
	assert.Len(t, withRule(findings, "functions.max_boolean_flags"), 1)
}

func TestDocumentation_MissingAndShort(t *testing.T) {
	src := `def undocumented(x) -> int:
    return x


def terse(x) -> int:
    """Too short."""
    return x


def _private(x) -> int:
    return x
`
	findings := runOn(t, "docs.py", src, false)

	assert.Len(t, withRule(findings, "documentation.missing"), 1)
	assert.Len(t, withRule(findings, "documentation.too_short"), 1)
}

func TestDocumentation_RequiredSections(t *testing.T) {
	src := `def convert(value, unit) -> float:
    """Convert a measurement value into the requested unit."""
    if unit not in TABLE:
        raise ValueError(unit)
    return value * TABLE[unit]


def documented(value, unit) -> float:
    """Convert a measurement value into the requested unit.

    Args:
        value: the measurement to convert.
        unit: target unit name.

    Returns:
        The converted value.

    Raises:
        ValueError: when the unit is unknown.
    """
    if unit not in TABLE:
        raise ValueError(unit)
    return value * TABLE[unit]
`
	u, err := source.Parse(source.File{Path: "convert.py", Content: src})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Review.Rules.Documentation.RequireParamDocs = true
	cfg.Review.Rules.Documentation.RequireReturnDocs = true
	cfg.Review.Rules.Documentation.RequireRaisesDocs = true

	findings, errs := Run(u, metrics.Extract(u), cfg)
	require.Empty(t, errs)

	for _, rule := range []string{
		"documentation.missing_param_docs",
		"documentation.missing_return_docs",
		"documentation.missing_raises_docs",
	} {
		hits := withRule(findings, rule)
		require.Len(t, hits, 1, rule)
		assert.Equal(t, 1, hits[0].Line, rule)
		assert.Contains(t, hits[0].Message, "convert")
	}
}

func TestSecurity_Patterns(t *testing.T) {
	src := `import hashlib
import os


def unsafe(user_id, cmd) -> None:
    """Collect several classic mistakes in one place for review."""
    cursor.execute(f"SELECT * FROM users WHERE id = {user_id}")
    digest = hashlib.md5(cmd.encode())
    os.system(cmd)
    password = "hunter2-forever"
`
	findings := runOn(t, "unsafe.py", src, false)

	for _, rule := range []string{
		"security.sql_injection",
		"security.weak_hashes",
		"security.shell_injection",
		"security.hardcoded_secrets",
	} {
		hits := withRule(findings, rule)
		assert.Len(t, hits, 1, rule)
		if len(hits) == 1 {
			assert.Equal(t, models.SeverityError, hits[0].Severity)
		}
	}
}

func TestSecurity_CommentLinesSkipped(t *testing.T) {
	src := `def safe() -> None:
    """Show that commented-out calls do not trip the scanner."""
    # os.system(cmd)
    return None
`
	findings := runOn(t, "safe.py", src, false)
	assert.Empty(t, withRule(findings, "security.shell_injection"))
}

func TestTesting_AssertionsRequired(t *testing.T) {
	src := `def test_nothing():
    """Exercise the setup path without checking anything at all."""
    value = compute(42)
    print(value)
`
	findings := runOn(t, "test_nothing.py", src, true)

	hits := withRule(findings, "testing.no_assertions")
	require.Len(t, hits, 1)
	assert.Equal(t, models.SeverityWarning, hits[0].Severity)
}

func TestRun_TestFileSuppressesIgnoredRules(t *testing.T) {
	src := `def test_math():
    """Check a handful of arithmetic identities in one pass."""
    assert compute(37) == 74
`
	findings := runOn(t, "test_math.py", src, true)

	// magic_numbers and documentation are suppressed for test files by
	// default; the assertion rule still applies and passes here.
	assert.Empty(t, withRule(findings, "magic_numbers.literal"))
	assert.Empty(t, withRule(findings, "documentation.missing"))
	assert.Empty(t, withRule(findings, "testing.no_assertions"))
}

func TestTesting_LowCoverage(t *testing.T) {
	cov := 40.0
	u, err := source.Parse(source.File{
		Path:     "test_cov.py",
		Content:  "def test_ok():\n    \"\"\"Check one value to keep the assertion rule satisfied.\"\"\"\n    assert 1 == 1\n",
		IsTest:   true,
		Coverage: &cov,
	})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Review.Rules.TestFiles.MinCoverage = 80

	findings, errs := Run(u, metrics.Extract(u), cfg)
	require.Empty(t, errs)
	assert.Len(t, withRule(findings, "testing.low_coverage"), 1)
}

func TestUnused_ImportFunctionVariable(t *testing.T) {
	src := `import os
import json


def shout(value):
    """Uppercase the value for display."""
    return os.fsencode(value).upper()


def announce(value):
    """Shout the value after doubling it."""
    leftover = value * 2
    return shout(value)
`
	findings := runOn(t, "mod.py", src, false)

	imports := withRule(findings, "unused.import")
	require.Len(t, imports, 1)
	assert.Contains(t, imports[0].Message, "json")
	assert.Equal(t, 2, imports[0].Line)

	fns := withRule(findings, "unused.function")
	require.Len(t, fns, 1, "shout is called by announce; announce is not")
	assert.Contains(t, fns[0].Message, "announce")
	assert.Equal(t, models.SeveritySuggestion, fns[0].Severity)

	vars := withRule(findings, "unused.variable")
	require.Len(t, vars, 1)
	assert.Contains(t, vars[0].Message, "leftover")
}

func TestUnused_UnderscoreNamesExempt(t *testing.T) {
	src := `def _seed(value):
    """Prime the cache before anything reads it."""
    _scratch = value
    return None
`
	findings := runOn(t, "seed.py", src, false)
	assert.Empty(t, withRule(findings, "unused.function"))
	assert.Empty(t, withRule(findings, "unused.variable"))
}

func TestStringLiterals_RepeatedLiteral(t *testing.T) {
	src := `def label(kind):
    """Map an event kind onto its displayed label."""
    if kind == "deployment-failed":
        return "deployment-failed"
    log_event("deployment-failed")
    return kind
`
	findings := runOn(t, "labels.py", src, false)

	hits := withRule(findings, "string_literals.duplicate")
	require.Len(t, hits, 1, "one finding per repeated literal")
	assert.Contains(t, hits[0].Message, "deployment-failed")
	assert.Contains(t, hits[0].Message, "3 times")
	assert.Equal(t, 3, hits[0].Line, "reported at the first occurrence")
}

func TestStringLiterals_URLsExempt(t *testing.T) {
	src := `def endpoints():
    """Return the service endpoints polled by the agent."""
    first = fetch("https://example.com/api/v1")
    second = fetch("https://example.com/api/v1")
    third = fetch("https://example.com/api/v1")
    return [first, second, third]
`
	findings := runOn(t, "endpoints.py", src, false)
	assert.Empty(t, withRule(findings, "string_literals.duplicate"))
}

func TestCheckerError_Message(t *testing.T) {
	err := &CheckerError{CheckerID: "naming", Path: "a.py", Cause: "boom"}
	assert.Contains(t, err.Error(), "naming")
	assert.Contains(t, err.Error(), "a.py")
}
