// Package gemini provides a text completion client for Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const defaultTimeout = 120 * time.Second

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; empty uses Google's default.
	BaseURL        string
	TimeoutSeconds int
	HTTPClient     *http.Client
}

// Client wraps the official genai client.
type Client struct {
	cli     *genai.Client
	model   string
	timeout time.Duration
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	cli, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{cli: cli, model: model, timeout: timeout}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Complete sends the prompts in a single GenerateContent call and returns the
// concatenated text of the first candidate.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("gemini complete: user prompt required")
	}
	genCfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}
	if system := strings.TrimSpace(systemPrompt); system != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return c.generate(ctx, userPrompt, genCfg, "gemini complete")
}

// HealthCheck issues a short request to verify the key and model.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.generate(ctx, "Reply with the single word OK.", &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: 5,
	}, "gemini health")
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToUpper(content), "OK") {
		return fmt.Errorf("gemini health: unexpected response %q", content)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, prompt string, genCfg *genai.GenerateContentConfig, op string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}}},
		genCfg,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%s: empty candidates", op)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%s: empty content (finish_reason=%q)", op, resp.Candidates[0].FinishReason)
	}
	return text, nil
}
