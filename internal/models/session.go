package models

import "time"

// Message roles stored in conversation history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is the persisted metadata of one conversation thread.
// ExpiresAt slides forward to LastAccessed + TTL on every access; the
// expiry sweep deletes rows whose ExpiresAt has passed.
type Session struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ConversationMessage is one stored turn of a session. Metadata is
// diagnostic only (e.g. which intents produced an assistant reply).
type ConversationMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ChatTurn is the minimal {role, content} shape sent to the LLM as
// conversation context.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
