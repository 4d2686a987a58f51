package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// --- Database check ---

// Pinger is the slice of the database handle the check needs
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DatabaseCheck probes the SQLite connection
type DatabaseCheck struct {
	DB Pinger
}

func (c *DatabaseCheck) Name() string { return "database" }

func (c *DatabaseCheck) Check(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// --- LLM endpoint check ---

// LLMCheck probes the chat completions provider with a models listing,
// the cheapest authenticated request an OpenAI-compatible server offers.
type LLMCheck struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func (c *LLMCheck) Name() string { return "llm" }

func (c *LLMCheck) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("llm endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *LLMCheck) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// --- Search instance check ---

// SearchCheck probes the SearXNG instance front page
type SearchCheck struct {
	BaseURL string
	Client  *http.Client
}

func (c *SearchCheck) Name() string { return "search" }

func (c *SearchCheck) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return err
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("search instance returned status %d", resp.StatusCode)
	}
	return nil
}
