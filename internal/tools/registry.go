package tools

import (
	"context"
	"fmt"
	"sync"

	"maru/internal/models"
)

// Handler is the implementation behind one capability. Handle never
// returns a Go error: every failure mode is reported through the
// ActionResult status so the executor can keep going.
type Handler interface {
	Name() string
	Handle(ctx context.Context, action string, params map[string]any) models.ActionResult
}

// Registry manages all registered capability handlers
type Registry struct {
	handlers map[string]Handler
	mutex    sync.RWMutex
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a handler to the registry
func (r *Registry) Register(h Handler) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if h == nil || h.Name() == "" {
		return fmt.Errorf("handler must have a non-empty name")
	}
	if _, exists := r.handlers[h.Name()]; exists {
		return fmt.Errorf("handler %s is already registered", h.Name())
	}

	r.handlers[h.Name()] = h
	return nil
}

// Get retrieves a handler by capability name
func (r *Registry) Get(name string) (Handler, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	h, exists := r.handlers[name]
	return h, exists
}

// Names returns the registered capability names
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// errorResult builds a uniform error ActionResult
func errorResult(message string) models.ActionResult {
	return models.ActionResult{
		Status:  models.ActionStatusError,
		Message: message,
	}
}

// okResult builds a uniform success ActionResult
func okResult(result any, message string) models.ActionResult {
	return models.ActionResult{
		Status:  models.ActionStatusOK,
		Result:  result,
		Message: message,
	}
}

// stringParam reads a string parameter, tolerating absent or non-string values
func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
