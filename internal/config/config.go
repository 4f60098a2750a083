// Package config holds the typed review configuration tree. It is loaded once
// per run, validated, and passed by value to every component; nothing in the
// engine mutates it or reads process-wide state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gavelhq/gavel/internal/models"
)

// Config is the root configuration document.
type Config struct {
	AI     AIConfig     `yaml:"ai"`
	GitHub GitHubConfig `yaml:"github"`
	Review ReviewConfig `yaml:"review"`
}

// AIConfig selects and tunes the AI findings provider.
type AIConfig struct {
	Provider    string  `yaml:"provider" validate:"oneof=anthropic none"`
	Model       string  `yaml:"model" validate:"required"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=1"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// GitHubConfig carries settings consumed by the reporting collaborator.
// The engine itself never talks to GitHub; these ride along so one document
// configures the whole workflow.
type GitHubConfig struct {
	AutoApprove            bool     `yaml:"auto_approve"`
	CommentOnApproval      bool     `yaml:"comment_on_approval"`
	RequestChangesOnErrors bool     `yaml:"request_changes_on_errors"`
	IgnoreFiles            []string `yaml:"ignore_files"`
	IgnorePaths            []string `yaml:"ignore_paths"`
}

// ReviewConfig parameterizes a single review run.
type ReviewConfig struct {
	Type           string          `yaml:"type" validate:"oneof=full security performance maintainability style documentation quick"`
	MaxFiles       int             `yaml:"max_files" validate:"gte=0"`
	MaxComments    int             `yaml:"max_comments" validate:"gte=0"`
	MinSeverity    models.Severity `yaml:"min_severity" validate:"oneof=error warning suggestion style"`
	FocusAreas     []string        `yaml:"focus_areas"`
	IgnorePatterns []string        `yaml:"ignore_patterns"`
	Rules          RuleConfig      `yaml:"rules"`
}

// RuleConfig holds per-category rule thresholds.
type RuleConfig struct {
	MaxLineLength  int                  `yaml:"max_line_length" validate:"gt=0"`
	MaxFileLines   int                  `yaml:"max_file_lines" validate:"gt=0"`
	Naming         NamingConfig         `yaml:"naming_conventions"`
	MagicNumbers   MagicNumbersConfig   `yaml:"magic_numbers"`
	Imports        ImportsConfig        `yaml:"imports"`
	Complexity     ComplexityConfig     `yaml:"complexity"`
	Functions      FunctionsConfig      `yaml:"functions"`
	Documentation  DocumentationConfig  `yaml:"documentation"`
	Security       SecurityConfig       `yaml:"security"`
	Duplication    DuplicationConfig    `yaml:"duplication"`
	Unused         UnusedConfig         `yaml:"unused_code"`
	StringLiterals StringLiteralsConfig `yaml:"string_literals"`
	TestFiles      TestFilesConfig      `yaml:"test_files"`
}

// NamingConfig names the case style required per identifier kind.
// Recognized styles: PascalCase, snake_case, camelCase, SCREAMING_SNAKE_CASE.
type NamingConfig struct {
	Classes   string `yaml:"classes" validate:"oneof=PascalCase snake_case camelCase SCREAMING_SNAKE_CASE"`
	Functions string `yaml:"functions" validate:"oneof=PascalCase snake_case camelCase SCREAMING_SNAKE_CASE"`
	Variables string `yaml:"variables" validate:"oneof=PascalCase snake_case camelCase SCREAMING_SNAKE_CASE"`
	Constants string `yaml:"constants" validate:"oneof=PascalCase snake_case camelCase SCREAMING_SNAKE_CASE"`
}

type MagicNumbersConfig struct {
	Enabled       bool      `yaml:"enabled"`
	IgnoreValues  []float64 `yaml:"ignore_values"`
	IgnoreInTests bool      `yaml:"ignore_in_tests"`
}

type ImportsConfig struct {
	Groups                []string `yaml:"groups"`
	RequireSorted         bool     `yaml:"require_sorted"`
	RequireSeparateGroups bool     `yaml:"require_separate_groups"`
	AllowRelative         bool     `yaml:"allow_relative"`
}

type ComplexityConfig struct {
	MaxCognitiveComplexity  int `yaml:"max_cognitive_complexity" validate:"gt=0"`
	MaxCyclomaticComplexity int `yaml:"max_cyclomatic_complexity" validate:"gt=0"`
	MaxNestedBlocks         int `yaml:"max_nested_blocks" validate:"gt=0"`
}

type FunctionsConfig struct {
	MaxArguments        int  `yaml:"max_arguments" validate:"gt=0"`
	MaxDefaultArguments int  `yaml:"max_default_arguments" validate:"gte=0"`
	MaxBooleanFlags     int  `yaml:"max_boolean_flags" validate:"gte=0"`
	MaxLines            int  `yaml:"max_lines" validate:"gt=0"`
	MaxReturns          int  `yaml:"max_returns" validate:"gt=0"`
	MaxLocalVariables   int  `yaml:"max_local_variables" validate:"gt=0"`
	RequireReturnType   bool `yaml:"require_return_type"`
}

type DocumentationConfig struct {
	RequireDocstrings bool `yaml:"require_docstrings"`
	MinDocstringWords int  `yaml:"min_docstring_words" validate:"gt=0"`
	RequireParamDocs  bool `yaml:"require_param_docs"`
	RequireReturnDocs bool `yaml:"require_return_docs"`
	RequireRaisesDocs bool `yaml:"require_raises_docs"`
}

type SecurityConfig struct {
	Enabled                 bool `yaml:"enabled"`
	CheckSQLInjection       bool `yaml:"check_sql_injection"`
	CheckDynamicEval        bool `yaml:"check_dynamic_eval"`
	CheckHardcodedSecrets   bool `yaml:"check_hardcoded_secrets"`
	CheckWeakHashes         bool `yaml:"check_weak_hashes"`
	CheckShellInjection     bool `yaml:"check_shell_injection"`
	CheckDeserialization    bool `yaml:"check_deserialization"`
	CheckUnescapedOutput    bool `yaml:"check_unescaped_output"`
	CheckSensitiveLogging   bool `yaml:"check_sensitive_logging"`
}

type DuplicationConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MinTokens           int     `yaml:"min_tokens" validate:"gt=0"`
	MinLines            int     `yaml:"min_lines" validate:"gt=0"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gt=0,lte=1"`
	IgnoreComments      bool    `yaml:"ignore_comments"`
	IgnoreDocstrings    bool    `yaml:"ignore_docstrings"`
}

// UnusedConfig controls the dead-code scan: names a file defines and then
// never references again. Underscore-prefixed names are always exempt.
type UnusedConfig struct {
	Enabled        bool `yaml:"enabled"`
	CheckImports   bool `yaml:"check_imports"`
	CheckFunctions bool `yaml:"check_functions"`
	CheckVariables bool `yaml:"check_variables"`
}

// StringLiteralsConfig controls the repeated-string-literal rule.
type StringLiteralsConfig struct {
	Enabled        bool `yaml:"enabled"`
	MinLength      int  `yaml:"min_length" validate:"gt=0"`
	MinOccurrences int  `yaml:"min_occurrences" validate:"gt=1"`
}

type TestFilesConfig struct {
	Patterns          []string `yaml:"patterns"`
	RequireAssertions bool     `yaml:"require_assertions"`
	MinAssertions     int      `yaml:"min_assertions" validate:"gte=0"`
	MinCoverage       float64  `yaml:"min_coverage" validate:"gte=0,lte=100"`
	IgnoreRules       []string `yaml:"ignore_rules"`
}

// Matches reports whether path is a test file under these patterns. A path
// matching several patterns counts as a test file exactly once.
func (t TestFilesConfig) Matches(path string) bool {
	base := filepath.Base(path)
	norm := filepath.ToSlash(path)
	for _, pat := range t.Patterns {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, norm); ok {
			return true
		}
		// Directory patterns like "tests/*" match anywhere in the path.
		if strings.HasSuffix(pat, "/*") {
			dir := strings.TrimSuffix(pat, "/*")
			if strings.Contains(norm, "/"+dir+"/") || strings.HasPrefix(norm, dir+"/") {
				return true
			}
		}
	}
	return false
}

// RuleIgnored reports whether a rule ID is suppressed for test files.
// Entries match a whole checker ("magic_numbers") or a full rule ID
// ("functions.unused").
func (t TestFilesConfig) RuleIgnored(ruleID string) bool {
	for _, ig := range t.IgnoreRules {
		if ruleID == ig || strings.HasPrefix(ruleID, ig+".") {
			return true
		}
	}
	return false
}

// Default returns the fully populated default configuration. Every threshold
// has a value here; an overlay file only needs to name what it changes.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-5",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		GitHub: GitHubConfig{
			AutoApprove:            false,
			CommentOnApproval:      true,
			RequestChangesOnErrors: true,
		},
		Review: ReviewConfig{
			Type:        "full",
			MaxFiles:    50,
			MaxComments: 50,
			MinSeverity: models.SeveritySuggestion,
			Rules: RuleConfig{
				MaxLineLength: 100,
				MaxFileLines:  300,
				Naming: NamingConfig{
					Classes:   "PascalCase",
					Functions: "snake_case",
					Variables: "snake_case",
					Constants: "SCREAMING_SNAKE_CASE",
				},
				MagicNumbers: MagicNumbersConfig{
					Enabled:       true,
					IgnoreValues:  []float64{-1, 0, 1, 100, 1000},
					IgnoreInTests: true,
				},
				Imports: ImportsConfig{
					Groups:                []string{"stdlib", "third_party", "local"},
					RequireSorted:         true,
					RequireSeparateGroups: true,
					AllowRelative:         false,
				},
				Complexity: ComplexityConfig{
					MaxCognitiveComplexity:  15,
					MaxCyclomaticComplexity: 10,
					MaxNestedBlocks:         3,
				},
				Functions: FunctionsConfig{
					MaxArguments:        5,
					MaxDefaultArguments: 3,
					MaxBooleanFlags:     2,
					MaxLines:            50,
					MaxReturns:          3,
					MaxLocalVariables:   15,
					RequireReturnType:   true,
				},
				Documentation: DocumentationConfig{
					RequireDocstrings: true,
					MinDocstringWords: 5,
					RequireParamDocs:  false,
					RequireReturnDocs: false,
					RequireRaisesDocs: false,
				},
				Security: SecurityConfig{
					Enabled:               true,
					CheckSQLInjection:     true,
					CheckDynamicEval:      true,
					CheckHardcodedSecrets: true,
					CheckWeakHashes:       true,
					CheckShellInjection:   true,
					CheckDeserialization:  true,
					CheckUnescapedOutput:  true,
					CheckSensitiveLogging: true,
				},
				Duplication: DuplicationConfig{
					Enabled:             true,
					MinTokens:           35,
					MinLines:            4,
					SimilarityThreshold: 0.85,
					IgnoreComments:      true,
					IgnoreDocstrings:    true,
				},
				Unused: UnusedConfig{
					Enabled:        true,
					CheckImports:   true,
					CheckFunctions: true,
					CheckVariables: true,
				},
				StringLiterals: StringLiteralsConfig{
					Enabled:        true,
					MinLength:      10,
					MinOccurrences: 3,
				},
				TestFiles: TestFilesConfig{
					Patterns: []string{
						"test_*.py", "*_test.py", "tests/*",
						"*_test.go", "*.test.js", "*.spec.js",
					},
					RequireAssertions: true,
					MinAssertions:     1,
					MinCoverage:       0,
					IgnoreRules:       []string{"magic_numbers", "documentation", "unused"},
				},
			},
		},
	}
}

// Load builds the effective configuration: defaults overlaid with the YAML
// document at path (when path is non-empty), then validated. Any failure here
// is fatal to the run; no checker executes against a bad configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// Unmarshal onto the populated struct: fields absent from the
		// document keep their defaults rather than zeroing out.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole tree; the returned error names every bad field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
