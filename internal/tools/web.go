package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"

	"maru/internal/models"

	"github.com/markusmobius/go-trafilatura"
)

const (
	searchCacheTTL  = 5 * time.Minute
	maxSearchHits   = 5
	maxFetchBytes   = 2 << 20 // 2 MiB page cap
	maxExtractRunes = 4000
)

// WebHandler answers web_search through a SearXNG instance and web_fetch
// through a robots-aware HTTP GET with readable-text extraction.
type WebHandler struct {
	searxngURL  string
	client      *http.Client
	searchCache *cache.Cache
	robotsCache *cache.Cache
	limiter     *rate.Limiter
}

// NewWebHandler creates the web capability handler
func NewWebHandler(searxngURL string) *WebHandler {
	return &WebHandler{
		searxngURL:  strings.TrimSuffix(searxngURL, "/"),
		client:      &http.Client{Timeout: 20 * time.Second},
		searchCache: cache.New(searchCacheTTL, 10*time.Minute),
		robotsCache: cache.New(1*time.Hour, 15*time.Minute),
		limiter:     rate.NewLimiter(rate.Limit(2), 4), // 2 req/s, burst 4
	}
}

// Name implements Handler
func (h *WebHandler) Name() string { return "web" }

// SearchHit is one search result entry
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchResult is the payload for web_search
type SearchResult struct {
	Query   string      `json:"query"`
	Hits    []SearchHit `json:"hits"`
	Summary string      `json:"summary"`
}

// FetchResult is the payload for web_fetch
type FetchResult struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Handle implements Handler
func (h *WebHandler) Handle(ctx context.Context, action string, params map[string]any) models.ActionResult {
	switch action {
	case "web_search":
		return h.search(ctx, params)
	case "web_fetch":
		return h.fetch(ctx, params)
	default:
		return errorResult(fmt.Sprintf("웹 기능이 지원하지 않는 동작입니다: %s", action))
	}
}

func (h *WebHandler) search(ctx context.Context, params map[string]any) models.ActionResult {
	query := stringParam(params, "query")
	if query == "" {
		query = stringParam(params, "text")
	}
	if query == "" {
		return errorResult("검색어가 없습니다")
	}

	if cached, found := h.searchCache.Get(query); found {
		log.Printf("🔍 [WEB] Search cache hit: %q", query)
		return okResult(cached, "검색 결과를 찾았습니다")
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return errorResult("검색 요청이 취소되었습니다")
	}

	searchURL := fmt.Sprintf("%s/search?q=%s&format=json&language=ko", h.searxngURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return errorResult("검색 요청 생성에 실패했습니다")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		log.Printf("❌ [WEB] Search request failed: %v", err)
		return errorResult("웹 검색에 실패했습니다")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [WEB] Search returned status %d", resp.StatusCode)
		return errorResult(fmt.Sprintf("웹 검색에 실패했습니다 (HTTP %d)", resp.StatusCode))
	}

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFetchBytes)).Decode(&payload); err != nil {
		log.Printf("❌ [WEB] Failed to decode search response: %v", err)
		return errorResult("검색 결과 해석에 실패했습니다")
	}

	result := SearchResult{Query: query}
	var summary strings.Builder
	for i, r := range payload.Results {
		if i >= maxSearchHits {
			break
		}
		result.Hits = append(result.Hits, SearchHit{Title: r.Title, URL: r.URL, Snippet: r.Content})
		fmt.Fprintf(&summary, "%d. %s: %s\n", i+1, r.Title, r.Content)
	}
	result.Summary = strings.TrimRight(summary.String(), "\n")

	if len(result.Hits) == 0 {
		return okResult(result, "검색 결과가 없습니다")
	}

	h.searchCache.Set(query, result, cache.DefaultExpiration)
	return okResult(result, fmt.Sprintf("검색 결과 %d건을 찾았습니다", len(result.Hits)))
}

func (h *WebHandler) fetch(ctx context.Context, params map[string]any) models.ActionResult {
	rawURL := stringParam(params, "url")
	if rawURL == "" {
		return errorResult("가져올 URL이 없습니다")
	}

	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		return errorResult("올바르지 않은 URL입니다")
	}

	if !h.robotsAllowed(ctx, target) {
		return errorResult("해당 사이트의 robots.txt가 수집을 허용하지 않습니다")
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return errorResult("웹 요청이 취소되었습니다")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return errorResult("웹 요청 생성에 실패했습니다")
	}
	req.Header.Set("User-Agent", "maru-assistant/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		log.Printf("❌ [WEB] Fetch failed for %s: %v", target, err)
		return errorResult("페이지를 가져오지 못했습니다")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorResult(fmt.Sprintf("페이지를 가져오지 못했습니다 (HTTP %d)", resp.StatusCode))
	}

	extracted, err := trafilatura.Extract(io.LimitReader(resp.Body, maxFetchBytes), trafilatura.Options{
		OriginalURL:     target,
		IncludeImages:   false,
		ExcludeComments: true,
	})
	if err != nil || extracted == nil {
		log.Printf("❌ [WEB] Extraction failed for %s: %v", target, err)
		return errorResult("페이지 본문 추출에 실패했습니다")
	}

	text := extracted.ContentText
	if runes := []rune(text); len(runes) > maxExtractRunes {
		text = string(runes[:maxExtractRunes])
	}

	result := FetchResult{URL: target.String(), Text: text}
	if extracted.Metadata.Title != "" {
		result.Title = extracted.Metadata.Title
	}

	return okResult(result, "페이지 본문을 가져왔습니다")
}

// robotsAllowed checks the target host's robots.txt, caching the parsed
// ruleset per host. Unreachable or malformed robots.txt allows the fetch.
func (h *WebHandler) robotsAllowed(ctx context.Context, target *url.URL) bool {
	host := target.Scheme + "://" + target.Host

	var robots *robotstxt.RobotsData
	if cached, found := h.robotsCache.Get(host); found {
		robots = cached.(*robotstxt.RobotsData)
	} else {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
		if err != nil {
			return true
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return true
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
		if err != nil {
			return true
		}
		robots, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
		if err != nil {
			return true
		}
		h.robotsCache.Set(host, robots, cache.DefaultExpiration)
	}

	return robots.TestAgent(target.Path, "maru-assistant")
}
