package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gavelhq/gavel/internal/ai"
	"github.com/gavelhq/gavel/internal/changeset"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/engine"
	"github.com/gavelhq/gavel/internal/git"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/output"
	"github.com/gavelhq/gavel/internal/source"
)

var (
	reviewDiffBase    string
	reviewPR          int
	reviewPost        bool
	reviewFormat      string
	reviewOutput      string
	reviewAIProvider  string
	reviewSave        bool
	reviewMaxComments int
	reviewMinSeverity string
	reviewFocus       []string
	reviewFailOn      string
)

var reviewCmd = &cobra.Command{
	Use:   "review [paths...]",
	Short: "Run a code review over files or a git diff",
	Long: `Run the static checkers (and optionally an AI pass) over the given
paths, or over the files changed since a base ref with --diff, or over a
pull request's changed lines with --pr.

--pr reads file contents from the working tree, so the PR branch should
be checked out. Without arguments, reviews the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRun(cmd.Context(), args)
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewDiffBase, "diff", "", "Review only lines changed since this git ref")
	reviewCmd.Flags().IntVar(&reviewPR, "pr", 0, "Review the changed lines of this pull request (via gh)")
	reviewCmd.Flags().BoolVar(&reviewPost, "post", false, "Submit the result as a PR review (requires --pr)")
	reviewCmd.Flags().StringVarP(&reviewFormat, "format", "f", "text", "Output format: text, markdown, json")
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "Write the report to a file instead of stdout")
	reviewCmd.Flags().StringVar(&reviewAIProvider, "ai", "", "AI provider override: anthropic or none")
	reviewCmd.Flags().BoolVar(&reviewSave, "save", false, "Save the run to review history")
	reviewCmd.Flags().IntVar(&reviewMaxComments, "max-comments", 0, "Cap the number of reported findings")
	reviewCmd.Flags().StringVar(&reviewMinSeverity, "min-severity", "", "Lowest severity to report")
	reviewCmd.Flags().StringSliceVar(&reviewFocus, "focus", nil, "Only report these categories (e.g. security,complexity)")
	reviewCmd.Flags().StringVar(&reviewFailOn, "fail-on", "", "Exit non-zero when findings at or above this severity exist")
	rootCmd.AddCommand(reviewCmd)
}

func reviewRun(ctx context.Context, args []string) error {
	cfg, err := loadReviewConfig()
	if err != nil {
		return err
	}
	if err := applyReviewFlags(cfg); err != nil {
		return err
	}

	files, target, err := collectFiles(args, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		ui.Info("No reviewable files found.")
		return nil
	}
	ui.VerboseLog("Reviewing %d files", len(files))

	aiFindings := runAIPass(ctx, cfg, files)

	eng := engine.New(cfg)
	eng.Warnf = ui.Warning
	res, err := eng.Run(ctx, files, aiFindings)
	if err != nil {
		return err
	}

	if err := writeReport(res); err != nil {
		return err
	}

	if reviewSave {
		if err := saveRun(ctx, target, cfg.Review.Type, res); err != nil {
			return err
		}
		ui.Success("Saved run %s", res.RunID)
	}

	if reviewPost {
		if reviewPR == 0 {
			return fmt.Errorf("--post requires --pr")
		}
		if err := postPRReview(cfg, res); err != nil {
			return err
		}
	}

	return checkFailOn(res)
}

// postPRReview submits the result to the pull request. The verdict follows
// the github config: request changes on errors, approve clean runs when
// auto_approve is set, otherwise comment.
func postPRReview(cfg *config.Config, res *models.ReviewResult) error {
	event := decideReviewEvent(cfg.GitHub, res)
	if event == git.ReviewApprove && !cfg.GitHub.CommentOnApproval {
		return git.NewGitHubClient().SubmitReview(".", reviewPR, event, "")
	}

	var body strings.Builder
	if err := (&output.MarkdownWriter{}).Write(&body, res); err != nil {
		return err
	}
	if err := git.NewGitHubClient().SubmitReview(".", reviewPR, event, body.String()); err != nil {
		return err
	}
	ui.Success("Posted %s review on PR #%d", strings.ToLower(string(event)), reviewPR)
	return nil
}

func decideReviewEvent(gh config.GitHubConfig, res *models.ReviewResult) git.ReviewEvent {
	if res.Summary.Counts.Errors > 0 && gh.RequestChangesOnErrors {
		return git.ReviewRequestChanges
	}
	if res.Summary.Counts.Total() == 0 && gh.AutoApprove {
		return git.ReviewApprove
	}
	return git.ReviewComment
}

// applyReviewFlags overlays command-line flags onto the loaded config and
// re-validates, so a bad flag value fails the same way a bad file would.
func applyReviewFlags(cfg *config.Config) error {
	if reviewMaxComments > 0 {
		cfg.Review.MaxComments = reviewMaxComments
	}
	if reviewMinSeverity != "" {
		sev, err := models.ParseSeverity(reviewMinSeverity)
		if err != nil {
			return err
		}
		cfg.Review.MinSeverity = sev
	}
	if len(reviewFocus) > 0 {
		cfg.Review.FocusAreas = reviewFocus
	}
	if reviewAIProvider != "" {
		cfg.AI.Provider = reviewAIProvider
	}
	return cfg.Validate()
}

// collectFiles resolves the change set: a git diff with --diff, otherwise the
// given paths (defaulting to the current directory). target is the label
// stored with a saved run.
func collectFiles(args []string, cfg *config.Config) ([]source.File, string, error) {
	if reviewPR > 0 {
		repoPath := "."
		if len(args) > 0 {
			repoPath = args[0]
		}
		root, err := git.NewClient().RepoRoot(repoPath)
		if err != nil {
			return nil, "", err
		}
		raw, err := git.NewGitHubClient().PRDiff(repoPath, reviewPR)
		if err != nil {
			return nil, "", err
		}
		files, err := changeset.FromUnifiedDiff(root, raw, cfg)
		if err != nil {
			return nil, "", err
		}
		return files, fmt.Sprintf("pr#%d", reviewPR), nil
	}

	if reviewDiffBase != "" {
		repoPath := "."
		if len(args) > 0 {
			repoPath = args[0]
		}
		files, err := changeset.FromDiff(git.NewClient(), repoPath, reviewDiffBase, cfg)
		if err != nil {
			return nil, "", err
		}
		return files, fmt.Sprintf("%s..%s", reviewDiffBase, repoPath), nil
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := changeset.FromPaths(paths, cfg)
	if err != nil {
		return nil, "", err
	}
	return files, paths[0], nil
}

// runAIPass asks the configured provider for findings. AI failures degrade to
// a static-only review rather than failing the run.
func runAIPass(ctx context.Context, cfg *config.Config, files []source.File) []models.Finding {
	provider, err := ai.NewProvider(cfg.AI, viper.GetString("anthropic.api_key"))
	if err != nil {
		ui.Warning("AI pass skipped: %v", err)
		return nil
	}
	if provider == nil {
		return nil
	}

	ui.VerboseLog("Requesting AI review from %s", provider.Name())
	findings, err := provider.Review(ctx, files, cfg.Review.Type)
	if err != nil {
		ui.Warning("AI pass failed, continuing with static checkers only: %v", err)
		return nil
	}
	return findings
}

func writeReport(res *models.ReviewResult) error {
	writer, err := output.GetWriter(reviewFormat)
	if err != nil {
		return err
	}

	var w io.Writer = ui.Out
	if reviewOutput != "" {
		f, err := os.Create(reviewOutput)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writer.Write(w, res)
}

func saveRun(ctx context.Context, target, reviewType string, res *models.ReviewResult) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	return s.SaveRun(ctx, &models.ReviewRecord{
		Target:     target,
		ReviewType: reviewType,
		Result:     res,
	})
}

// checkFailOn turns findings at or above the --fail-on severity into a
// non-zero exit, for CI gates.
func checkFailOn(res *models.ReviewResult) error {
	if reviewFailOn == "" {
		return nil
	}
	sev, err := models.ParseSeverity(reviewFailOn)
	if err != nil {
		return err
	}
	var n int
	for _, f := range res.Findings {
		if f.Severity.MeetsThreshold(sev) {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d findings at or above %s severity", n, sev)
	}
	return nil
}
