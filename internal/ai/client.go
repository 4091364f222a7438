// Package ai wraps the Google Gemini generateContent API with pacing,
// bounded retry, per-user daily quotas, and deterministic fallbacks.
// Callers always get a usable payload; network trouble degrades quality,
// never availability.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/keshon/learning-mentor/internal/jsonsafe"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
	"github.com/keshon/learning-mentor/pkg/retrylimit"
)

const (
	geminiURL      = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	requestTimeout = 60 * time.Second
	maxAttempts    = 3
	initialBackoff = 2 * time.Second
)

// HTTPError carries the status code of a failed API call so the retry loop
// can tell throttling from hard failures.
type HTTPError struct {
	Code int
	Body string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.Code, jsonsafe.Truncate(e.Body, 200))
}

func (e *HTTPError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to Gemini. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable in tests
	apiKey     string
	model      string
	limiter    *retrylimit.AdaptiveLimiter
	quota      *quotaTracker
	clock      *timeutil.Clock
	backoff    time.Duration
}

func NewClient(apiKey, model string, dailyLimitPerUser int, clock *timeutil.Clock) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    geminiURL,
		apiKey:     apiKey,
		model:      model,
		// Gemini free tier tolerates short bursts but not sustained load.
		limiter: retrylimit.New(0.5, 2),
		quota:   newQuotaTracker(dailyLimitPerUser),
		clock:   clock,
		backoff: initialBackoff,
	}
}

// RemainingRequests reports how many quota-gated calls the user has left
// today.
func (c *Client) RemainingRequests(userID string) int {
	return c.quota.remaining(userID, c.clock.Today())
}

// generate performs one prompt round trip with pacing and bounded retry on
// 429/5xx.
func (c *Client) generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	var text string
	err := retrylimit.Do(ctx, c.limiter, retrylimit.Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: c.backoff,
		MaxDelay:     30 * time.Second,
		Jitter:       true,
		Retryable: func(err error) bool {
			var httpErr *HTTPError
			return errors.As(err, &httpErr) && httpErr.retryable()
		},
		OnRetry: func(attempt int, err error) {
			log.Printf("[WARN] Gemini attempt %d failed: %v, retrying", attempt, err)
		},
	}, func() error {
		var err error
		text, err = c.callOnce(ctx, prompt, temperature, maxTokens)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return text, nil
}

func (c *Client) callOnce(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     temperature,
			"maxOutputTokens": maxTokens,
			"topP":            0.95,
			"topK":            40,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(c.baseURL, c.model) + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{Code: resp.StatusCode, Body: string(body)}
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini empty response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// generateJSON runs a prompt and salvages a JSON object out of the reply.
func (c *Client) generateJSON(ctx context.Context, prompt string, temperature float64) (map[string]any, error) {
	text, err := c.generate(ctx, prompt, temperature, 1024)
	if err != nil {
		return nil, err
	}
	raw := jsonsafe.ExtractJSON(jsonsafe.CleanJSONString(text))
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in gemini reply")
	}
	result := jsonsafe.Unmarshal(raw, nil)
	if result == nil {
		return nil, fmt.Errorf("gemini JSON unparseable")
	}
	return result, nil
}

// AnalyzeLogs scores a day's combined logs. Quota-gated per user; over
// quota or on any failure the deterministic fallback analysis is returned.
func (c *Client) AnalyzeLogs(ctx context.Context, userID, logs string, conceptHistory map[string]int) map[string]any {
	today := c.clock.Today()
	if !c.quota.allow(userID, today) {
		log.Printf("[WARN] Gemini daily quota reached for user %s", userID)
		return FallbackAnalysis()
	}

	prompt := fmt.Sprintf(analyzerPrompt, logs, formatConceptHistory(conceptHistory))

	result, err := c.generateJSON(ctx, prompt, 0.3)
	if err != nil {
		log.Printf("[ERR] Gemini analysis failed: %v", err)
		return FallbackAnalysis()
	}

	for _, field := range []string{"primary_focus", "concepts_detected", "depth_score", "confidence"} {
		if _, ok := result[field]; !ok {
			log.Printf("[WARN] Gemini analysis missing field %q, using fallback", field)
			return FallbackAnalysis()
		}
	}

	c.quota.record(userID, today)
	return result
}

// MentorFeedback turns an analysis into personalized coaching. Not
// quota-gated; it rides on an already-paid analysis.
func (c *Client) MentorFeedback(ctx context.Context, analysis map[string]any, user *state.User, recent []*state.Evaluation) map[string]any {
	prompt := fmt.Sprintf(mentorPrompt,
		jsonsafe.MarshalIndent(analysis),
		user.Streak,
		user.Points,
		user.Level().Name,
		user.DaysActive,
		formatRecentPerformance(recent),
	)

	result, err := c.generateJSON(ctx, prompt, 0.7)
	if err != nil {
		log.Printf("[ERR] Gemini mentor feedback failed: %v", err)
		return FallbackMentorFeedback(user)
	}
	return result
}

// WeeklySummary rates the last week of evaluations. Quota-gated per user.
func (c *Client) WeeklySummary(ctx context.Context, userID string, evals []*state.Evaluation, user *state.User) map[string]any {
	today := c.clock.Today()
	if !c.quota.allow(userID, today) {
		log.Printf("[WARN] Gemini daily quota reached for user %s", userID)
		return FallbackWeeklySummary()
	}

	weekData := compileWeekData(evals)
	prompt := fmt.Sprintf(weeklySummaryPrompt,
		jsonsafe.MarshalIndent(weekData),
		user.Streak,
		user.Points,
		user.Level().Name,
	)

	result, err := c.generateJSON(ctx, prompt, 0.7)
	if err != nil {
		log.Printf("[ERR] Gemini weekly summary failed: %v", err)
		return FallbackWeeklySummary()
	}

	c.quota.record(userID, today)
	return result
}

// GoalTrajectory writes a free-form mastery roadmap for the user.
func (c *Client) GoalTrajectory(ctx context.Context, user *state.User, recent []*state.Evaluation) string {
	focuses := make([]string, 0, len(recent))
	for _, e := range recent {
		if f, ok := e.Analysis["primary_focus"].(string); ok {
			focuses = append(focuses, f)
		}
	}
	if len(focuses) > 5 {
		focuses = focuses[len(focuses)-5:]
	}

	prompt := fmt.Sprintf(trajectoryPrompt,
		user.Points,
		user.Streak,
		user.Level().Name,
		user.DaysActive,
		jsonsafe.Marshal(user.TopicCoverage),
		strings.Join(focuses, ", "),
	)

	text, err := c.generate(ctx, prompt, 0.8, 512)
	if err != nil || text == "" {
		if err != nil {
			log.Printf("[ERR] Gemini trajectory failed: %v", err)
		}
		return FallbackTrajectory()
	}
	return text
}

// GenerateText runs an arbitrary prompt, for the interactive mentor path.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, 0.7, 1024)
}

func formatConceptHistory(history map[string]int) string {
	if len(history) == 0 {
		return "No previous concept history"
	}

	type pair struct {
		concept string
		count   int
	}
	pairs := make([]pair, 0, len(history))
	for c, n := range history {
		pairs = append(pairs, pair{c, n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].concept < pairs[j].concept
	})
	if len(pairs) > 20 {
		pairs = pairs[:20]
	}

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s (%dx)", p.concept, p.count)
	}
	return strings.Join(parts, ", ")
}

func formatRecentPerformance(recent []*state.Evaluation) string {
	if len(recent) == 0 {
		return "No recent performance data"
	}
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}

	lines := make([]string, len(recent))
	for i, e := range recent {
		depth := "N/A"
		focus := "N/A"
		if v, ok := e.Analysis["depth_score"]; ok {
			depth = fmt.Sprintf("%v", v)
		}
		if v, ok := e.Analysis["primary_focus"].(string); ok {
			focus = v
		}
		lines[i] = fmt.Sprintf("- Day %d: Depth %s, Focus: %s", i+1, depth, focus)
	}
	return strings.Join(lines, "\n")
}

func compileWeekData(evals []*state.Evaluation) map[string]any {
	topics := make(map[string]bool)
	concepts := make(map[string]bool)
	totalDepth := 0.0

	for _, e := range evals {
		totalDepth += floatOf(e.Analysis["depth_score"])
		if f, ok := e.Analysis["primary_focus"].(string); ok {
			topics[f] = true
		}
		if list, ok := e.Analysis["concepts_detected"].([]any); ok {
			for _, c := range list {
				if s, ok := c.(string); ok {
					concepts[s] = true
				}
			}
		}
	}

	avgDepth := 0.0
	if len(evals) > 0 {
		avgDepth = totalDepth / float64(len(evals))
	}

	return map[string]any{
		"days_logged":    len(evals),
		"avg_depth":      avgDepth,
		"topics_covered": sortedKeys(topics),
		"all_concepts":   sortedKeys(concepts),
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func floatOf(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
