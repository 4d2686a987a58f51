package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"maru/internal/models"
)

func TestLLMClientComplete(t *testing.T) {
	var got struct {
		Model       string            `json:"model"`
		Messages    []models.ChatTurn `json:"messages"`
		Temperature float64           `json:"temperature"`
		MaxTokens   int               `json:"max_tokens"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected auth header: %s", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"안녕하세요"}}]}`))
	}))
	defer server.Close()

	client := NewLLMClient(server.URL, "test-key", "test-model")
	reply, err := client.Complete(context.Background(), "시스템", []models.ChatTurn{{Role: models.RoleUser, Content: "안녕"}}, 0.3, 100)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "안녕하세요" {
		t.Errorf("Unexpected reply: %s", reply)
	}
	if got.Model != "test-model" || got.Temperature != 0.3 || got.MaxTokens != 100 {
		t.Errorf("Unexpected request payload: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("System prompt should lead the messages: %+v", got.Messages)
	}
}

func TestLLMClientNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewLLMClient(server.URL, "", "m")
	if _, err := client.Complete(context.Background(), "", nil, 0, 0); err == nil {
		t.Error("Non-200 status should be an error")
	}
}

func TestLLMClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewLLMClient(server.URL, "", "m")
	if _, err := client.Complete(context.Background(), "", nil, 0, 0); err == nil {
		t.Error("API-level error should be surfaced")
	}
}

func TestLLMClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewLLMClient(server.URL, "", "m")
	if _, err := client.Complete(context.Background(), "", nil, 0, 0); err == nil {
		t.Error("Empty choices should be an error")
	}
}
