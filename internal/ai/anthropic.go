package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// maxFileChars bounds how much of one file goes into the prompt; huge files
// get truncated rather than blowing the context window.
const maxFileChars = 12000

// Anthropic reviews code through the Anthropic Messages API.
type Anthropic struct {
	api         *anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
}

// NewAnthropic creates the provider with the given API key and model config.
func NewAnthropic(cfg config.AIConfig, apiKey string) *Anthropic {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Anthropic{
		api:         &client,
		model:       anthropic.Model(cfg.Model),
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

// rawFinding is the JSON shape the model is asked to return.
type rawFinding struct {
	Rule       string `json:"rule"`
	Severity   string `json:"severity"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// buildPrompt constructs the system and user prompts for a review request.
func buildPrompt(files []source.File, reviewType string) (system string, user string) {
	system = `You are a code reviewer. Review the provided files and return ONLY a JSON array of findings with these fields:
- "rule": short identifier for the kind of problem, e.g. "error_handling", "race_condition"
- "severity": one of "error", "warning", "suggestion", "style"
- "file": the file path exactly as given
- "line": line number the finding refers to (1-based)
- "message": what is wrong and why it matters, one or two sentences
- "suggestion": concrete fix, or empty string

Rules:
- Report real problems: bugs, race conditions, resource leaks, incorrect error handling, misleading logic
- Do not report formatting or naming; separate tooling covers those
- Severity "error" is for code that is wrong, not code you would write differently
- Return valid JSON only, no markdown fencing or explanation
- Return [] if the code is fine`

	var sb strings.Builder
	fmt.Fprintf(&sb, "Review type: %s\n\n", reviewType)
	for _, f := range files {
		content := f.Content
		if len(content) > maxFileChars {
			content = content[:maxFileChars] + "\n... (truncated)"
		}
		fmt.Fprintf(&sb, "=== %s ===\n%s\n\n", f.Path, content)
	}
	user = sb.String()
	return
}

// Review sends the change set to the model and parses its findings. A
// response that is not a JSON array is an error; individually malformed
// entries are passed through for the engine to reject.
func (a *Anthropic) Review(ctx context.Context, files []source.File, reviewType string) ([]models.Finding, error) {
	if len(files) == 0 {
		return nil, nil
	}
	systemPrompt, userPrompt := buildPrompt(files, reviewType)

	msg, err := a.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	raw, err := parseFindings(text)
	if err != nil {
		return nil, err
	}

	findings := make([]models.Finding, 0, len(raw))
	for _, r := range raw {
		rule := r.Rule
		if rule != "" && !strings.HasPrefix(rule, "ai.") {
			rule = "ai." + rule
		}
		findings = append(findings, models.Finding{
			RuleID:     rule,
			Severity:   models.Severity(r.Severity),
			Message:    r.Message,
			FilePath:   r.File,
			Line:       r.Line,
			Suggestion: r.Suggestion,
			Source:     models.SourceAI,
		})
	}
	return findings, nil
}

// parseFindings decodes the model output, stripping markdown fencing if the
// model added it anyway.
func parseFindings(text string) ([]rawFinding, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var raw []rawFinding
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse AI response as JSON: %w\nraw response: %s", err, text)
	}
	return raw, nil
}
