package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"maru/internal/models"
)

const synthesizerSystemPrompt = "당신은 친절한 AI 개인 비서입니다. 사용자에게 간결하고 명확한 한국어로 응답합니다."

// Synthesizer turns the per-action results of one request into a single
// natural-language reply. It never returns an error: LLM failure degrades
// to a templated reply built from the raw results.
type Synthesizer struct {
	completer Completer
}

// NewSynthesizer creates the response synthesizer
func NewSynthesizer(completer Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

// Synthesize builds the reply for one request. history, when supplied, is
// prepended as prior chat turns so multi-turn answers stay consistent.
func (s *Synthesizer) Synthesize(ctx context.Context, results []models.ActionResult, parsed models.ParsedRequest, history []models.ChatTurn) string {
	if len(results) == 0 {
		return "죄송합니다. 처리할 작업이 없습니다."
	}

	// Every action failed: short-circuit with an apology, no LLM call.
	allFailed := true
	for _, r := range results {
		if r.Status == models.ActionStatusOK {
			allFailed = false
			break
		}
	}
	if allFailed {
		return fmt.Sprintf("죄송합니다. 오류가 발생했습니다: %s", firstMessage(results))
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "사용자의 요청: %q\n\n실행된 작업 결과:\n", parsed.RawText)
	for i, r := range results {
		action := parsed.Actions[i]
		fmt.Fprintf(&prompt, "%d. intent=%s capability=%s status=%s\n", i+1, action.Intent, action.Capability, r.Status)
		if r.Result != nil {
			fmt.Fprintf(&prompt, "   결과: %v\n", r.Result)
		}
		fmt.Fprintf(&prompt, "   메시지: %s\n", r.Message)
	}
	prompt.WriteString(`
위 실행 결과를 바탕으로 사용자에게 자연스러운 한국어로 응답을 생성해주세요.
- 간결하고 명확하게 작성
- 작업 순서대로 모든 결과의 핵심 정보를 포함
- 실패한 작업이 있다면 정중하게 안내
- 친근한 톤 사용`)

	turns := make([]models.ChatTurn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, models.ChatTurn{Role: models.RoleUser, Content: prompt.String()})

	reply, err := s.completer.Complete(ctx, synthesizerSystemPrompt, turns, 0.7, 500)
	if err != nil {
		log.Printf("❌ [SYNTHESIZER] Completion failed: %v", err)
		return s.templatedReply(results)
	}

	return strings.TrimSpace(reply)
}

// templatedReply is the LLM-free fallback: the first successful result
// plus a success count.
func (s *Synthesizer) templatedReply(results []models.ActionResult) string {
	succeeded := 0
	var firstOK *models.ActionResult
	for i := range results {
		if results[i].Status == models.ActionStatusOK {
			succeeded++
			if firstOK == nil {
				firstOK = &results[i]
			}
		}
	}

	if firstOK != nil && firstOK.Result != nil {
		return fmt.Sprintf("작업 %d건이 완료되었습니다. 결과: %v", succeeded, firstOK.Result)
	}
	return fmt.Sprintf("작업 %d건이 완료되었습니다.", succeeded)
}

func firstMessage(results []models.ActionResult) string {
	for _, r := range results {
		if r.Message != "" {
			return r.Message
		}
	}
	return "알 수 없는 오류"
}
