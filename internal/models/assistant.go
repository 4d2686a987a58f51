package models

// AssistantRequest is the body of POST /assistant
type AssistantRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// ActionSummary is the per-action slice of an AssistantResponse
type ActionSummary struct {
	Intent     string `json:"intent"`
	Capability string `json:"capability"`
	Status     string `json:"status"`
}

// AssistantResponse is the body returned by POST /assistant
type AssistantResponse struct {
	Response    string          `json:"response"`
	ActionCount int             `json:"action_count"`
	Actions     []ActionSummary `json:"actions"`
	Status      string          `json:"status"`
	SessionID   string          `json:"session_id,omitempty"`
}

// SessionDetailResponse is the body of GET /sessions/:id
type SessionDetailResponse struct {
	Session  *Session              `json:"session"`
	Messages []ConversationMessage `json:"messages"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// SessionStatsResponse is the body of GET /sessions-stats
type SessionStatsResponse struct {
	ActiveSessions int `json:"active_sessions"`
	TotalMessages  int `json:"total_messages"`
}
