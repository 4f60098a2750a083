package checkers

import (
	"regexp"
	"strings"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/metrics"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// securityRule is one pattern family within the security checker.
type securityRule struct {
	id         string
	enabled    func(c config.SecurityConfig) bool
	patterns   []*regexp.Regexp
	message    string
	suggestion string
}

var securityRules = []securityRule{
	{
		id:      "sql_injection",
		enabled: func(c config.SecurityConfig) bool { return c.CheckSQLInjection },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\.execute\(\s*f["']`),
			regexp.MustCompile(`(?i)\.execute\([^)]*(%s|%d)`),
			regexp.MustCompile(`(?i)\.execute\([^)]*\.format\(`),
			regexp.MustCompile(`(?i)\.execute\([^)]*\+\s*\w`),
			regexp.MustCompile(`(?i)(select|insert|update|delete)\s.*["']\s*\+\s*\w`),
		},
		message:    "SQL built from string interpolation; parameterize the query",
		suggestion: "Use placeholder parameters instead of string formatting",
	},
	{
		id:      "dynamic_eval",
		enabled: func(c config.SecurityConfig) bool { return c.CheckDynamicEval },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\beval\s*\(`),
			regexp.MustCompile(`\bexec\s*\(`),
			regexp.MustCompile(`new\s+Function\s*\(`),
		},
		message:    "Dynamic code evaluation",
		suggestion: "Replace eval/exec with explicit dispatch",
	},
	{
		id:      "hardcoded_secrets",
		enabled: func(c config.SecurityConfig) bool { return c.CheckHardcodedSecrets },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(password|passwd|secret|api_key|apikey|auth_token|access_token)\s*[:=]\s*["'][^"']{4,}["']`),
		},
		message:    "Credential appears to be hardcoded",
		suggestion: "Load secrets from the environment or a secret store",
	},
	{
		id:      "weak_hashes",
		enabled: func(c config.SecurityConfig) bool { return c.CheckWeakHashes },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`hashlib\.(md5|sha1)\s*\(`),
			regexp.MustCompile(`crypto/(md5|sha1)`),
			regexp.MustCompile(`(?i)createhash\(\s*["'](md5|sha1)["']`),
		},
		message:    "Weak hash algorithm",
		suggestion: "Use SHA-256 or stronger",
	},
	{
		id:      "shell_injection",
		enabled: func(c config.SecurityConfig) bool { return c.CheckShellInjection },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`subprocess\.\w+\([^)]*shell\s*=\s*True`),
			regexp.MustCompile(`os\.system\s*\(`),
			regexp.MustCompile(`child_process.*exec\s*\(`),
		},
		message:    "Command executed through a shell",
		suggestion: "Pass an argument vector without shell interpretation",
	},
	{
		id:      "deserialization",
		enabled: func(c config.SecurityConfig) bool { return c.CheckDeserialization },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`pickle\.loads?\s*\(`),
			regexp.MustCompile(`yaml\.load\s*\([^)]*\)`),
			regexp.MustCompile(`marshal\.loads?\s*\(`),
		},
		message:    "Unsafe deserialization of untrusted data",
		suggestion: "Use a safe loader or a schema-checked format",
	},
	{
		id:      "unescaped_output",
		enabled: func(c config.SecurityConfig) bool { return c.CheckUnescapedOutput },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\.innerHTML\s*=`),
			regexp.MustCompile(`document\.write\s*\(`),
			regexp.MustCompile(`render_template_string\s*\(`),
			regexp.MustCompile(`\|\s*safe\b`),
		},
		message:    "Output rendered without escaping",
		suggestion: "Escape or sanitize before rendering",
	},
	{
		id:      "sensitive_logging",
		enabled: func(c config.SecurityConfig) bool { return c.CheckSensitiveLogging },
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(log|logger|logging|print|console)\.?\w*\([^)]*\b(password|passwd|secret|token|api_key)\b`),
		},
		message:    "Sensitive value may be written to logs",
		suggestion: "Redact credentials before logging",
	},
}

// checkSecurity scans line by line for the enabled security patterns.
// Findings are errors: these are the rules a review must not let through.
func checkSecurity(u *source.Unit, _ metrics.FileMetrics, cfg *config.Config) []models.Finding {
	sec := cfg.Review.Rules.Security
	if !sec.Enabled {
		return nil
	}
	prof := source.ProfileFor(u.Language)
	var findings []models.Finding

	for i, line := range u.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || (prof.LineComment != "" && strings.HasPrefix(trimmed, prof.LineComment)) {
			continue
		}
		for _, rule := range securityRules {
			if !rule.enabled(sec) {
				continue
			}
			for _, re := range rule.patterns {
				if !re.MatchString(line) {
					continue
				}
				// yaml.load with an explicit safe loader is fine.
				if rule.id == "deserialization" && strings.Contains(line, "SafeLoader") {
					break
				}
				findings = append(findings, models.Finding{
					RuleID:     "security." + rule.id,
					Severity:   models.SeverityError,
					Category:   models.CategorySecurity,
					Message:    rule.message,
					FilePath:   u.Path,
					Line:       i + 1,
					Suggestion: rule.suggestion,
					Source:     models.SourceStatic,
				})
				break
			}
		}
	}
	return findings
}
