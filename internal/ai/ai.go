// Package ai produces review findings from an AI provider. Providers return
// raw findings; the engine validates and merges them, so a provider never
// needs to know the aggregation rules.
package ai

import (
	"context"
	"fmt"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/models"
	"github.com/gavelhq/gavel/internal/source"
)

// Provider reviews a change set and returns findings.
type Provider interface {
	Name() string
	Review(ctx context.Context, files []source.File, reviewType string) ([]models.Finding, error)
}

// NewProvider builds the configured provider. Provider "none" returns nil:
// the review runs on static checkers alone.
func NewProvider(cfg config.AIConfig, apiKey string) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropic(cfg, apiKey), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
