package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

const messyFile = `import requests
import os


def Process(data, a, b, c, d, e):
    password = "super-secret-value"
    if data:
        if a:
            if b:
                if c:
                    return os.system(data)
    return None
`

func run(t *testing.T, cfg *config.Config, files []source.File, ai []models.Finding) *models.ReviewResult {
	t.Helper()
	res, err := New(cfg).Run(context.Background(), files, ai)
	require.NoError(t, err)
	return res
}

func TestRun_FindsAndOrders(t *testing.T) {
	cfg := config.Default()
	res := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, nil)

	require.NotEmpty(t, res.Findings)
	assert.Equal(t, 1, res.FilesReviewed)
	assert.False(t, res.Incomplete)
	assert.NotEmpty(t, res.RunID)

	// Severity never increases down the list.
	for i := 1; i < len(res.Findings); i++ {
		assert.GreaterOrEqual(t,
			res.Findings[i-1].Severity.Rank(),
			res.Findings[i].Severity.Rank())
	}
	assert.Equal(t, models.SeverityError, res.Summary.HighestSeverity)
}

func TestRun_MaxCommentsBound(t *testing.T) {
	cfg := config.Default()
	cfg.Review.MaxComments = 3
	cfg.Review.MinSeverity = models.SeverityStyle

	res := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, nil)
	assert.Len(t, res.Findings, 3)

	// The kept findings are the highest-severity ones.
	assert.Equal(t, models.SeverityError, res.Findings[0].Severity)
}

func TestRun_MinSeverityFloor(t *testing.T) {
	cfg := config.Default()
	cfg.Review.MinSeverity = models.SeverityError

	res := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, nil)
	require.NotEmpty(t, res.Findings)
	for _, f := range res.Findings {
		assert.Equal(t, models.SeverityError, f.Severity)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := config.Default()
	files := []source.File{
		{Path: "messy.py", Content: messyFile},
		{Path: "also.py", Content: messyFile},
		{Path: "third.py", Content: messyFile},
	}

	first := run(t, cfg, files, nil)
	for i := 0; i < 5; i++ {
		again := run(t, cfg, files, nil)
		assert.Equal(t, first.Findings, again.Findings)
	}
}

func TestRun_DedupKeepsFirst(t *testing.T) {
	cfg := config.Default()
	ai := []models.Finding{
		// Collides with the static security finding on line 6.
		{RuleID: "security.hardcoded_secrets", Severity: models.SeverityError,
			FilePath: "messy.py", Line: 6, Message: "ai version"},
	}
	res := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, ai)

	var hits []models.Finding
	for _, f := range res.Findings {
		if f.RuleID == "security.hardcoded_secrets" && f.Line == 6 {
			hits = append(hits, f)
		}
	}
	require.Len(t, hits, 1)
	assert.Equal(t, models.SourceStatic, hits[0].Source, "static finding wins the collision")
}

func TestRun_AIFindingsValidated(t *testing.T) {
	cfg := config.Default()
	ai := []models.Finding{
		{RuleID: "", Severity: models.SeverityWarning, FilePath: "messy.py", Line: 2, Message: "style nit"},
		{Severity: "critical", FilePath: "messy.py", Line: 2, Message: "bad severity"},
		{Severity: models.SeverityWarning, FilePath: "", Line: 2, Message: "no path"},
		{Severity: models.SeverityWarning, FilePath: "messy.py", Line: -4, Message: "bad line"},
	}

	var warned []string
	eng := New(cfg)
	eng.Warnf = func(format string, args ...any) {
		warned = append(warned, fmt.Sprintf(format, args...))
	}
	res, err := eng.Run(context.Background(), []source.File{{Path: "messy.py", Content: messyFile}}, ai)
	require.NoError(t, err)

	var aiKept []models.Finding
	for _, f := range res.Findings {
		if f.Source == models.SourceAI {
			aiKept = append(aiKept, f)
		}
	}
	require.Len(t, aiKept, 1, "only the well-formed AI finding survives")
	assert.Equal(t, "ai.review", aiKept[0].RuleID)
	assert.Len(t, warned, 3)
}

func TestRun_ParseFailureSkipsFile(t *testing.T) {
	cfg := config.Default()
	cfg.Review.MinSeverity = models.SeverityStyle

	res := run(t, cfg, []source.File{
		{Path: "fine.py", Content: "VALUE = 1\n"},
		{Path: "binary.dat", Content: "\x00\x01"},
	}, nil)

	assert.Equal(t, 1, res.FilesReviewed)
	assert.Equal(t, 1, res.FilesSkipped)

	var placeholder *models.Finding
	for i := range res.Findings {
		if res.Findings[i].RuleID == "parse.error" {
			placeholder = &res.Findings[i]
		}
	}
	require.NotNil(t, placeholder)
	assert.Equal(t, models.SeverityStyle, placeholder.Severity)
	assert.Equal(t, "binary.dat", placeholder.FilePath)
}

func TestRun_MaxFilesCap(t *testing.T) {
	cfg := config.Default()
	cfg.Review.MaxFiles = 2

	files := make([]source.File, 5)
	for i := range files {
		files[i] = source.File{Path: fmt.Sprintf("f%d.py", i), Content: "VALUE = 1\n"}
	}
	res := run(t, cfg, files, nil)

	assert.Equal(t, 2, res.FilesReviewed)
	assert.Equal(t, 3, res.FilesSkipped)
	assert.True(t, res.Incomplete)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []source.File{
		{Path: "messy.py", Content: messyFile},
		{Path: "also.py", Content: messyFile},
		{Path: "third.py", Content: messyFile},
	}
	res, err := New(config.Default()).Run(ctx, files, nil)
	require.NoError(t, err)
	assert.True(t, res.Incomplete)

	// Every input file is accounted for even when its worker never ran.
	assert.Equal(t, len(files), res.FilesReviewed+res.FilesSkipped)
}

func TestRun_ChangedLinesRestrictFindings(t *testing.T) {
	cfg := config.Default()
	cfg.Review.MinSeverity = models.SeverityStyle

	full := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, nil)
	require.NotEmpty(t, full.Findings)

	// Only the hardcoded secret's line changed.
	diff := run(t, cfg, []source.File{{
		Path: "messy.py", Content: messyFile,
		ChangedLines: map[int]bool{6: true},
	}}, nil)

	assert.Less(t, len(diff.Findings), len(full.Findings))
	for _, f := range diff.Findings {
		if f.Line > 0 {
			assert.Equal(t, 6, f.Line)
		}
	}
}

func TestRun_FocusAreas(t *testing.T) {
	cfg := config.Default()
	cfg.Review.FocusAreas = []string{"security"}

	res := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, nil)
	require.NotEmpty(t, res.Findings)
	for _, f := range res.Findings {
		assert.Equal(t, models.CategorySecurity, f.Category)
	}
}

func TestRun_IgnorePatterns(t *testing.T) {
	cfg := config.Default()
	cfg.Review.IgnorePatterns = []string{"*_gen.py", "legacy/"}

	clean := "_total = 1\n"
	res := run(t, cfg, []source.File{
		{Path: "messy.py", Content: messyFile},
		{Path: "api_gen.py", Content: messyFile},
		{Path: "legacy/old.py", Content: messyFile},
		{Path: "app.py", Content: clean},
	}, nil)

	require.NotEmpty(t, res.Findings)
	for _, f := range res.Findings {
		assert.Equal(t, "messy.py", f.FilePath)
	}
}

func TestPathIgnored(t *testing.T) {
	patterns := []string{"*_pb2.py", "vendor/"}
	assert.True(t, pathIgnored("proto/api_pb2.py", patterns))
	assert.True(t, pathIgnored("vendor/lib.py", patterns))
	assert.False(t, pathIgnored("app.py", patterns))
}

func TestAggregate_Idempotent(t *testing.T) {
	cfg := config.Default()
	res := run(t, cfg, []source.File{{Path: "messy.py", Content: messyFile}}, nil)

	again := aggregate(res.Findings, cfg)
	assert.Equal(t, res.Findings, again)
}
