// Package engine orchestrates a review run: parse the change set, extract
// metrics, execute the checkers, detect duplication, merge AI findings, and
// aggregate everything into one bounded, deterministically ordered result.
package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gavelhq/gavel/internal/checkers"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/dup"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// Engine runs reviews. It is stateless across runs; construct once and reuse.
type Engine struct {
	cfg *config.Config
	// Warnf receives recoverable diagnostics (checker panics, skipped
	// files, dropped AI findings). Defaults to discarding them.
	Warnf func(format string, args ...any)
}

// New builds an engine for the given configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:   cfg,
		Warnf: func(string, ...any) {},
	}
}

// fileResult carries one file's outcome from the parallel phase. Results are
// assembled in input order afterwards so scheduling never changes output.
type fileResult struct {
	unit     *source.Unit
	findings []models.Finding
	parseErr *source.ParseError
}

// Run reviews the given files plus externally produced AI findings. Files
// beyond review.max_files are skipped and the result is marked incomplete;
// the same flag is set when ctx is cancelled mid-run, with whatever findings
// were already produced.
func (e *Engine) Run(ctx context.Context, files []source.File, aiFindings []models.Finding) (*models.ReviewResult, error) {
	started := time.Now()
	result := &models.ReviewResult{
		RunID:     ulid.Make().String(),
		StartedAt: started,
	}

	if maxFiles := e.cfg.Review.MaxFiles; maxFiles > 0 && len(files) > maxFiles {
		e.Warnf("reviewing first %d of %d files", maxFiles, len(files))
		result.FilesSkipped += len(files) - maxFiles
		result.Incomplete = true
		files = files[:maxFiles]
	}

	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.reviewFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancellation: report what completed rather than nothing.
		result.Incomplete = true
	}

	var findings []models.Finding
	var units []*source.Unit
	unitByPath := make(map[string]*source.Unit, len(files))

	for i, r := range results {
		switch {
		case r.parseErr != nil:
			result.FilesSkipped++
			e.Warnf("%v", r.parseErr)
			findings = append(findings, models.Finding{
				RuleID:   "parse.error",
				Severity: models.SeverityStyle,
				Category: models.CategoryStyle,
				Message:  "File could not be parsed and was skipped: " + r.parseErr.Reason,
				FilePath: files[i].Path,
				Source:   models.SourceStatic,
			})
		case r.unit != nil:
			result.FilesReviewed++
			units = append(units, r.unit)
			unitByPath[r.unit.Path] = r.unit
			for _, f := range r.findings {
				if r.unit.LineChanged(f.Line) {
					findings = append(findings, f)
				}
			}
		default:
			// Cancellation won the race before this file's worker ran;
			// the slot is empty but the file was still not reviewed.
			result.FilesSkipped++
		}
	}

	for _, f := range dup.Detect(units, e.cfg) {
		if u := unitByPath[f.FilePath]; u == nil || u.LineChanged(f.Line) {
			findings = append(findings, f)
		}
	}

	// AI findings come last so deterministic static findings win dedup
	// collisions.
	findings = append(findings, e.admitAIFindings(aiFindings, unitByPath)...)

	result.Findings = aggregate(findings, e.cfg)
	result.Summary = models.ComputeSummary(result.Findings)
	result.DurationMS = time.Since(started).Milliseconds()
	return result, nil
}

// reviewFile parses one file and runs the checkers. Never returns an error:
// parse failures are recorded, checker panics are reported and skipped.
func (e *Engine) reviewFile(f source.File) fileResult {
	u, err := source.Parse(f)
	if err != nil {
		if perr, ok := err.(*source.ParseError); ok {
			return fileResult{parseErr: perr}
		}
		return fileResult{parseErr: &source.ParseError{Path: f.Path, Reason: err.Error()}}
	}

	fm := metrics.Extract(u)
	findings, errs := checkers.Run(u, fm, e.cfg)
	for _, cerr := range errs {
		e.Warnf("%v", cerr)
	}
	return fileResult{unit: u, findings: findings}
}

// admitAIFindings validates externally produced findings: a malformed entry
// is dropped with a diagnostic, never guessed at. Valid entries are stamped
// as AI-sourced and restricted to changed lines like everything else.
func (e *Engine) admitAIFindings(in []models.Finding, unitByPath map[string]*source.Unit) []models.Finding {
	var out []models.Finding
	for _, f := range in {
		if f.FilePath == "" || f.Message == "" || f.Line < 0 {
			e.Warnf("dropping malformed AI finding: rule=%q path=%q", f.RuleID, f.FilePath)
			continue
		}
		if _, err := models.ParseSeverity(string(f.Severity)); err != nil {
			e.Warnf("dropping AI finding with severity %q on %s", f.Severity, f.FilePath)
			continue
		}
		if f.RuleID == "" {
			f.RuleID = "ai.review"
		}
		f.Source = models.SourceAI
		if u := unitByPath[f.FilePath]; u != nil && !u.LineChanged(f.Line) {
			continue
		}
		out = append(out, f)
	}
	return out
}
