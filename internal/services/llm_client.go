package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"maru/internal/models"
)

// Completer is the text-completion capability the parser and synthesizer
// consume. Implementations return the assistant's text for one call.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, turns []models.ChatTurn, temperature float64, maxTokens int) (string, error)
}

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewLLMClient creates a client for the configured provider
func NewLLMClient(baseURL, apiKey, model string) *LLMClient {
	return &LLMClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []models.ChatTurn `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete implements Completer
func (c *LLMClient) Complete(ctx context.Context, systemPrompt string, turns []models.ChatTurn, temperature float64, maxTokens int) (string, error) {
	messages := make([]models.ChatTurn, 0, len(turns)+1)
	if systemPrompt != "" {
		messages = append(messages, models.ChatTurn{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, turns...)

	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("completion error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
