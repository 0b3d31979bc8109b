// Package oracle is the classification boundary: it hands the rendered
// request to the configured language-model backend and returns its raw text.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"tunesort/internal/config"
	"tunesort/internal/prompt"
	"tunesort/internal/services"
	"tunesort/internal/services/gemini"
	"tunesort/internal/services/llm"
)

// Oracle classifies a request and returns free-form response text.
type Oracle interface {
	Classify(ctx context.Context, request string) (string, error)
}

// HealthChecker is implemented by backends that can verify their credentials.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Completer is the shape shared by the llm and gemini clients.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Backend adapts a completion client to Oracle.
type Backend struct {
	name   string
	client Completer
}

// New builds the backend selected by cfg.Oracle.Provider.
func New(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "oracle", "new", "config is nil", nil)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Oracle.Provider)) {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:         cfg.Oracle.APIKey,
			Model:          cfg.Oracle.Model,
			BaseURL:        cfg.Oracle.BaseURL,
			TimeoutSeconds: cfg.Oracle.TimeoutSeconds,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "oracle", "new gemini client", "", err)
		}
		return &Backend{name: "gemini:" + client.Model(), client: client}, nil
	case config.ProviderOpenAI, "":
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.Oracle.APIKey,
			BaseURL:        cfg.Oracle.BaseURL,
			Model:          cfg.Oracle.Model,
			Referer:        cfg.Oracle.Referer,
			Title:          cfg.Oracle.Title,
			TimeoutSeconds: cfg.Oracle.TimeoutSeconds,
		})
		return &Backend{name: "openai:" + cfg.Oracle.Model, client: client}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "oracle", "new", fmt.Sprintf("unknown provider %q", cfg.Oracle.Provider), nil)
	}
}

// NewFromCompleter wraps an arbitrary completion client.
func NewFromCompleter(name string, client Completer) *Backend {
	return &Backend{name: name, client: client}
}

// Name identifies the provider and model.
func (b *Backend) Name() string { return b.name }

// Classify sends request with the fixed system prompt. Any failure, including
// an empty reply, is wrapped as services.ErrOracleUnavailable.
func (b *Backend) Classify(ctx context.Context, request string) (string, error) {
	text, err := b.client.Complete(ctx, prompt.SystemPrompt, request)
	if err != nil {
		return "", services.Wrap(services.ErrOracleUnavailable, "oracle", "classify", b.name, err)
	}
	return text, nil
}

// HealthCheck verifies the backend is reachable with the configured key.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if err := b.client.HealthCheck(ctx); err != nil {
		return services.Wrap(services.ErrOracleUnavailable, "oracle", "health check", b.name, err)
	}
	return nil
}
