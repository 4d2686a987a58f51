package models

// Action statuses reported by capability handlers
const (
	ActionStatusOK    = "ok"
	ActionStatusError = "error"
)

// Well-known intent and capability names
const (
	IntentUnknown      = "unknown"
	CapabilityFallback = "fallback"
)

// Action is one unit of work extracted from a user request.
// DependsOn carries 1-based indices of earlier actions whose output this
// action wants; the planner emits it but the executor currently injects
// every prior result regardless (see executor).
type Action struct {
	Intent     string         `json:"intent"`
	Capability string         `json:"capability"`
	Parameters map[string]any `json:"parameters"`
	DependsOn  []int          `json:"depends_on,omitempty"`
}

// ParsedRequest is the planner output for one inbound request.
// Actions is never empty: the parser substitutes a fallback action on any
// failure, so downstream code can iterate without nil checks.
type ParsedRequest struct {
	Actions []Action `json:"actions"`
	RawText string   `json:"raw_text"`
}

// ActionResult is the outcome of one handler invocation. Result is an
// opaque capability-specific payload, only meaningful when Status is "ok".
// Message is always set.
type ActionResult struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message"`
}

// PriorResult is one entry of the accumulated context the executor threads
// into later actions under the "previous_results" parameter key.
// ActionIndex is 1-based to match DependsOn.
type PriorResult struct {
	ActionIndex int    `json:"action_index"`
	Intent      string `json:"intent"`
	Capability  string `json:"capability"`
	Result      any    `json:"result"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}
