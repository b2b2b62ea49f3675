// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides text-completion clients for the supported model
// providers behind a single Completer interface.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Completer sends one prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
)

// maxOutputTokens bounds every reply. Relevance replies are one short JSON object.
const maxOutputTokens = 256

var (
	ErrUnknownProvider = errors.New("unknown LLM provider")
	ErrMissingAPIKey   = errors.New("missing LLM API key")
)

type provider struct {
	defaultModel string
	keyEnv       string
	build        func(apiKey, model string, client *http.Client) Completer
}

var providers = map[string]provider{
	ProviderAnthropic: {
		defaultModel: "claude-3-haiku-20240307",
		keyEnv:       "ANTHROPIC_API_KEY",
		build: func(k, m string, c *http.Client) Completer {
			return &AnthropicClient{APIKey: k, Model: m, Client: c}
		},
	},
	ProviderOpenAI: {
		defaultModel: "gpt-3.5-turbo",
		keyEnv:       "OPENAI_API_KEY",
		build: func(k, m string, c *http.Client) Completer {
			return &OpenAIClient{APIKey: k, Model: m, Client: c}
		},
	},
	ProviderGoogle: {
		defaultModel: "gemini-1.5-flash",
		keyEnv:       "GOOGLE_API_KEY",
		build: func(k, m string, c *http.Client) Completer {
			return &GoogleClient{APIKey: k, Model: m, Client: c}
		},
	},
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// KeyEnv returns the environment variable holding the named provider's key.
func KeyEnv(name string) (string, bool) {
	p, ok := providers[strings.ToLower(name)]
	return p.keyEnv, ok
}

// DefaultModel returns the named provider's default model.
func DefaultModel(name string) string {
	return providers[strings.ToLower(name)].defaultModel
}

// Validate checks that cfg names a known provider and carries a key.
func Validate(cfg types.LLMConfig) error {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	p, ok := providers[name]
	if !ok {
		return fmt.Errorf("%w %q (supported: %s)", ErrUnknownProvider, cfg.Provider, strings.Join(Providers(), ", "))
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%w: %s is required for provider %s", ErrMissingAPIKey, p.keyEnv, name)
	}
	return nil
}

// New builds the Completer for cfg. A nil client gets a 60s timeout.
func New(cfg types.LLMConfig, client *http.Client) (Completer, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	p := providers[name]
	model := cfg.Model
	if model == "" {
		model = p.defaultModel
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return p.build(cfg.APIKey, model, client), nil
}

// postJSON marshals body, posts it with 429 retry, and decodes the reply into out.
func postJSON(ctx context.Context, client *http.Client, service, url string, headers map[string]string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return httputil.DecodeJSON(ctx, client, req, service, out)
}
