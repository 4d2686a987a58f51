package tools

import (
	"context"
	"fmt"
	"log"

	"maru/internal/models"
)

// FallbackHandler answers any action nothing else claimed. It never fails:
// the pipeline relies on it as the terminal resolution of routing.
type FallbackHandler struct{}

// NewFallbackHandler creates the fallback capability handler
func NewFallbackHandler() *FallbackHandler {
	return &FallbackHandler{}
}

// Name implements Handler
func (h *FallbackHandler) Name() string { return models.CapabilityFallback }

// Handle implements Handler
func (h *FallbackHandler) Handle(ctx context.Context, action string, params map[string]any) models.ActionResult {
	if errMsg := stringParam(params, "error"); errMsg != "" {
		log.Printf("⚠️  [FALLBACK] Handling parse failure: %s", errMsg)
		return models.ActionResult{
			Status:  models.ActionStatusError,
			Message: fmt.Sprintf("요청을 이해하지 못했습니다: %s", errMsg),
		}
	}

	return models.ActionResult{
		Status:  models.ActionStatusError,
		Message: "죄송합니다. 아직 처리할 수 없는 요청입니다. 메모, 일정, 웹 검색, 파일 조회를 도와드릴 수 있어요.",
	}
}
