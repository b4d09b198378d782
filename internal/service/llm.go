package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chudo9991/more.tech.2025-sub000/internal/config"
)

// TextGenerator is the LLM collaborator boundary. Implementations must
// honor the context deadline; callers treat any error as recoverable and
// switch to deterministic fallbacks.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
	Enabled() bool
}

type geminiGenerator struct {
	config *config.AIConfig
	client *http.Client
}

// NewGeminiGenerator builds a Gemini-backed TextGenerator with a bounded
// request timeout from config.
func NewGeminiGenerator(cfg *config.AIConfig) TextGenerator {
	return &geminiGenerator{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

func (g *geminiGenerator) Enabled() bool {
	return g.config.IsEnabled()
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("%w: no API key configured", ErrGenerationUnavailable)
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  maxTokens,
			"temperature":      temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", g.config.ModelEndpoint(), g.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrGenerationUnavailable, resp.StatusCode)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", fmt.Errorf("%w: empty response", ErrGenerationUnavailable)
}
