package services

import (
	"log"

	"maru/internal/config"
	"maru/internal/models"
	"maru/internal/tools"
)

// Router resolves an action to its capability handler. Resolution never
// fails: explicit registered capability wins, then the intent table, then
// the fallback handler.
type Router struct {
	intentMap config.IntentMap
	registry  *tools.Registry
	fallback  tools.Handler
}

// NewRouter creates a router over the handler registry. The fallback
// handler must already be registered; resolution panics never, so a
// missing fallback is a wiring bug caught at construction time.
func NewRouter(intentMap config.IntentMap, registry *tools.Registry) *Router {
	fallback, ok := registry.Get(models.CapabilityFallback)
	if !ok {
		log.Fatalf("❌ [ROUTER] Fallback handler not registered")
	}
	return &Router{
		intentMap: intentMap,
		registry:  registry,
		fallback:  fallback,
	}
}

// Resolve returns the handler for an action. Deterministic, no I/O.
func (r *Router) Resolve(action models.Action) tools.Handler {
	// Explicit capability wins when it is actually wired up
	if action.Capability != "" {
		if h, ok := r.registry.Get(action.Capability); ok {
			return h
		}
	}

	// Intent table, then the registry again: a mapped capability that was
	// never registered still ends at the fallback handler.
	name, ok := r.intentMap[action.Intent]
	if !ok {
		name = models.CapabilityFallback
	}
	if h, ok := r.registry.Get(name); ok {
		return h
	}
	return r.fallback
}
