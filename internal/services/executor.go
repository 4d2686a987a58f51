package services

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"maru/internal/models"
	"maru/internal/tools"
)

// Executor runs a parsed request's actions strictly in order, threading
// every prior result into later actions so chained steps (search → note)
// can embed earlier output.
type Executor struct {
	router  *Router
	metrics *Metrics
}

// NewExecutor creates the sequential action executor
func NewExecutor(router *Router, metrics *Metrics) *Executor {
	return &Executor{router: router, metrics: metrics}
}

// Execute runs each action through its resolved handler. A failing action
// records an error result and the loop continues: later actions decide for
// themselves whether a missing predecessor result matters. The returned
// slice always has exactly one entry per input action, in input order.
func (e *Executor) Execute(ctx context.Context, parsed models.ParsedRequest) ([]models.ActionResult, []models.PriorResult) {
	results := make([]models.ActionResult, 0, len(parsed.Actions))
	accumulated := make([]models.PriorResult, 0, len(parsed.Actions))

	for i, action := range parsed.Actions {
		handler := e.router.Resolve(action)

		// Copy params and inject a snapshot of everything so far. All
		// prior results are passed regardless of DependsOn; downstream
		// prompts rely on seeing the full history.
		params := make(map[string]any, len(action.Parameters)+1)
		for k, v := range action.Parameters {
			params[k] = v
		}
		prior := make([]models.PriorResult, len(accumulated))
		copy(prior, accumulated)
		params["previous_results"] = prior

		result := e.invoke(ctx, handler, action, params)

		log.Printf("⚙️  [EXECUTOR] Action %d/%d intent=%s capability=%s status=%s",
			i+1, len(parsed.Actions), action.Intent, handler.Name(), result.Status)
		if e.metrics != nil {
			e.metrics.ActionOutcomes.WithLabelValues(action.Intent, result.Status).Inc()
		}

		results = append(results, result)
		accumulated = append(accumulated, models.PriorResult{
			ActionIndex: i + 1,
			Intent:      action.Intent,
			Capability:  handler.Name(),
			Result:      result.Result,
			Status:      result.Status,
			Message:     result.Message,
		})
	}

	return results, accumulated
}

// invoke calls one handler, converting a panic into an error result so a
// misbehaving capability cannot abort the rest of the request.
func (e *Executor) invoke(ctx context.Context, handler tools.Handler, action models.Action, params map[string]any) (result models.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 [EXECUTOR] PANIC in handler '%s': %v\n%s", handler.Name(), r, debug.Stack())
			result = models.ActionResult{
				Status:  models.ActionStatusError,
				Message: fmt.Sprintf("작업 처리 중 오류가 발생했습니다 (%s)", action.Intent),
			}
		}
	}()

	return handler.Handle(ctx, action.Intent, params)
}
