// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// googleAPIBase is the Generative Language API root. Package-level var for test substitution.
var googleAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GoogleClient calls the Gemini generateContent API.
type GoogleClient struct {
	APIKey string
	Model  string
	Client *http.Client
}

type googleRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
}

// Complete returns the text parts of the first candidate.
func (c *GoogleClient) Complete(ctx context.Context, prompt string) (string, error) {
	body := googleRequest{
		Contents:         []googleContent{{Role: "user", Parts: []googlePart{{Text: prompt}}}},
		GenerationConfig: googleGenerationConfig{MaxOutputTokens: maxOutputTokens},
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent", googleAPIBase, url.PathEscape(c.Model))
	headers := map[string]string{"x-goog-api-key": c.APIKey}

	var resp googleResponse
	if err := postJSON(ctx, c.Client, "Google API", endpoint, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Google API returned no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("Google API returned empty content")
	}
	return sb.String(), nil
}
