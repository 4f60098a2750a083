package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gavelhq/gavel/internal/models"
)

// ReportWriter renders a review result in one output format.
type ReportWriter interface {
	Write(w io.Writer, res *models.ReviewResult) error
}

// GetWriter returns the writer for a format name: text, markdown, or json.
func GetWriter(format string) (ReportWriter, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, markdown, or json)", format)
	}
}

// TextWriter renders findings grouped by file for terminal reading.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, res *models.ReviewResult) error {
	if len(res.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		fmt.Fprintf(w, "\n%d files reviewed in %dms\n", res.FilesReviewed, res.DurationMS)
		return nil
	}

	var lastFile string
	for _, f := range res.Findings {
		if f.FilePath != lastFile {
			if lastFile != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s\n", Cyan(f.FilePath))
			lastFile = f.FilePath
		}
		fmt.Fprintf(w, "  %s:%d [%s] %s (%s)\n", f.FilePath, f.Line, SeverityColor(f.Severity), f.Message, f.RuleID)
		if f.Suggestion != "" {
			fmt.Fprintf(w, "      suggestion: %s\n", f.Suggestion)
		}
	}

	c := res.Summary.Counts
	fmt.Fprintf(w, "\n%d findings: %d errors, %d warnings, %d suggestions, %d style\n",
		c.Total(), c.Errors, c.Warnings, c.Suggestions, c.Styles)
	fmt.Fprintf(w, "%d files reviewed in %dms\n", res.FilesReviewed, res.DurationMS)
	if res.Incomplete {
		fmt.Fprintln(w, "note: review is incomplete")
	}
	return nil
}

// MarkdownWriter renders a report suitable for a PR comment.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *models.ReviewResult) error {
	fmt.Fprintln(w, "## Code Review")
	fmt.Fprintln(w)

	c := res.Summary.Counts
	if c.Total() == 0 {
		fmt.Fprintln(w, "No findings. :white_check_mark:")
		return nil
	}

	fmt.Fprintf(w, "**%d findings** — %d errors, %d warnings, %d suggestions, %d style\n\n",
		c.Total(), c.Errors, c.Warnings, c.Suggestions, c.Styles)

	fmt.Fprintln(w, "| Severity | Location | Rule | Message |")
	fmt.Fprintln(w, "|---|---|---|---|")
	for _, f := range res.Findings {
		msg := strings.ReplaceAll(f.Message, "|", "\\|")
		fmt.Fprintf(w, "| %s | %s:%d | `%s` | %s |\n", f.Severity, f.FilePath, f.Line, f.RuleID, msg)
	}

	if res.Incomplete {
		fmt.Fprintln(w, "\n_Review is incomplete; some files were skipped._")
	}
	return nil
}

// JSONWriter emits the full result document.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, res *models.ReviewResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
