// Package evaluator runs the daily scoring pipeline: collect a user's
// learning logs, analyze them locally and through the AI collaborator,
// award points and badges, and record the evaluation.
package evaluator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/textscan"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

// Log is one collected message with its arrival time.
type Log struct {
	Content   string
	Timestamp time.Time
}

// MessageSource fetches a user's messages from a channel for one calendar
// date. The Discord adapter implements it; tests fake it.
type MessageSource interface {
	UserMessages(ctx context.Context, channelID, userID, date string) ([]Log, error)
}

// Provider is the AI collaborator surface the evaluator needs. Every
// method degrades internally and always returns a usable payload.
type Provider interface {
	AnalyzeLogs(ctx context.Context, userID, logs string, conceptHistory map[string]int) map[string]any
	MentorFeedback(ctx context.Context, analysis map[string]any, user *state.User, recent []*state.Evaluation) map[string]any
	WeeklySummary(ctx context.Context, userID string, evals []*state.Evaluation, user *state.User) map[string]any
}

// Result is a completed evaluation plus the local context that produced it.
type Result struct {
	Evaluation    *state.Evaluation
	LocalDepth    float64
	QualifiedLogs int
	TotalLogs     int
	AwardedBadges []string
	LevelChanged  bool
	NewLevel      config.SkillLevel
}

// CombinedDepth is the 0-10 depth used for badges and display.
func (r *Result) CombinedDepth() float64 {
	return r.Evaluation.CombinedDepth(r.LocalDepth)
}

// Evaluator orchestrates the daily scoring flow. One mutex serializes
// end-to-end evaluations so concurrent triggers cannot double-award.
type Evaluator struct {
	mu sync.Mutex

	cfg    *config.Config
	states *state.Manager
	source MessageSource
	ai     Provider
	clock  *timeutil.Clock
}

func New(cfg *config.Config, states *state.Manager, source MessageSource, provider Provider, clock *timeutil.Clock) *Evaluator {
	return &Evaluator{cfg: cfg, states: states, source: source, ai: provider, clock: clock}
}

// CollectDailyLogs gathers a user's logs for a date from the learning
// channel and their daily thread, in chronological order. Under-length
// messages are dropped here, so a day of only chatter collects as no
// logs at all. An empty date means the current effective date.
func (e *Evaluator) CollectDailyLogs(ctx context.Context, userID, date string) ([]Log, error) {
	if date == "" {
		date = e.clock.EffectiveDate()
	}

	logs, err := e.source.UserMessages(ctx, e.cfg.LearningChannelID, userID, date)
	if err != nil {
		return nil, fmt.Errorf("collect learning channel: %w", err)
	}

	if threadID := e.states.DailyThread(userID); threadID != "" {
		threadLogs, err := e.source.UserMessages(ctx, threadID, userID, date)
		if err != nil {
			log.Printf("[WARN] Could not fetch thread %s: %v", threadID, err)
		} else {
			logs = append(logs, threadLogs...)
		}
	}

	kept := logs[:0]
	for _, l := range logs {
		cleaned := textscan.CleanContent(l.Content)
		if utf8.RuneCountInString(cleaned) >= e.cfg.MinMessageLength {
			kept = append(kept, l)
		}
	}
	logs = kept

	sort.Slice(logs, func(i, j int) bool { return logs[i].Timestamp.Before(logs[j].Timestamp) })
	return logs, nil
}

// EvaluateUser runs the full pipeline for today. Returns nil without error
// when the user was already evaluated (unless force) or has no logs.
func (e *Evaluator) EvaluateUser(ctx context.Context, userID string, force bool) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !force && e.states.HasEvaluatedToday(userID) {
		log.Printf("[INFO] User %s already evaluated today", userID)
		return nil, nil
	}

	user, ok := e.states.GetUser(userID)
	if !ok {
		return nil, state.ErrUserNotFound
	}

	logs, err := e.CollectDailyLogs(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		log.Printf("[INFO] No logs found for user %s", userID)
		return nil, nil
	}

	texts := make([]string, len(logs))
	for i, l := range logs {
		texts[i] = l.Content
	}
	combined := textscan.SummarizeLogs(texts, 2000)

	// Local analysis with intra-batch duplicate suppression.
	var allConcepts []string
	var qualified []textscan.Report
	var accepted []string
	totalDepth := 0

	for _, text := range texts {
		report := textscan.Analyze(text, accepted, e.cfg.MinMessageLength)
		if !report.Qualifies {
			continue
		}
		qualified = append(qualified, report)
		accepted = append(accepted, text)
		allConcepts = append(allConcepts, report.Concepts...)
		totalDepth += report.DepthScore
	}

	localDepth := float64(totalDepth) / float64(max(len(qualified), 1))

	penalty, repeated := textscan.RepetitionPenalty(allConcepts, user.ConceptFrequency)

	var newConcepts []string
	for _, c := range allConcepts {
		if _, seen := user.ConceptFrequency[c]; !seen {
			newConcepts = append(newConcepts, c)
		}
	}

	analysis := e.ai.AnalyzeLogs(ctx, userID, combined, user.ConceptFrequency)

	recent := sortedEvaluations(e.states.CachedEvaluations(userID, 7))
	feedback := e.ai.MentorFeedback(ctx, analysis, user, recent)

	// Points: base per qualifying log, depth bonus when the blended depth
	// clears 7, repetition penalty last.
	basePoints := e.cfg.BasePoints * len(qualified)
	depthBonus := 0

	aiDepth := floatField(analysis, "depth_score", 5)
	confidence := floatField(analysis, "confidence", 0.5)
	blendedDepth := aiDepth*confidence + localDepth*2*(1-confidence)
	if blendedDepth >= 7 {
		depthBonus = e.cfg.DepthBonus * len(qualified)
	}
	totalPoints := int(float64(basePoints+depthBonus) * penalty)

	eval := &state.Evaluation{
		ID:                uuid.NewString(),
		UserID:            userID,
		Date:              e.clock.EffectiveDate(),
		Analysis:          analysis,
		MentorFeedback:    feedback,
		PointsEarned:      totalPoints,
		NewConcepts:       capList(newConcepts, 10),
		RepeatedConcepts:  capList(repeated, 10),
		RepetitionPenalty: penalty,
		Timestamp:         e.clock.FormatDateTime(e.clock.Now()),
	}

	result := &Result{
		Evaluation:    eval,
		LocalDepth:    localDepth,
		QualifiedLogs: len(qualified),
		TotalLogs:     len(logs),
	}

	if err := e.apply(userID, result, allConcepts); err != nil {
		return nil, err
	}

	if err := e.states.MarkEvaluated(userID); err != nil {
		return nil, err
	}
	if err := e.states.CacheEvaluation(userID, eval.Date, eval); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Completed evaluation for user %s: %d points", userID, totalPoints)
	return result, nil
}

// apply writes the evaluation outcome into state: points, concepts, topic
// coverage, badges, and skill level.
func (e *Evaluator) apply(userID string, result *Result, concepts []string) error {
	if _, err := e.states.AddPoints(userID, result.Evaluation.PointsEarned); err != nil {
		return err
	}
	if _, err := e.states.UpdateConceptFrequency(userID, concepts); err != nil {
		return err
	}

	primary, _ := result.Evaluation.Analysis["primary_focus"].(string)
	err := e.states.UpdateUser(userID, func(u *state.User) {
		if _, tracked := u.TopicCoverage[primary]; tracked {
			u.TopicCoverage[primary]++
		} else if primary == "Mixed" {
			for topic := range u.TopicCoverage {
				u.TopicCoverage[topic] += 0.25
			}
		}
	})
	if err != nil {
		return err
	}

	result.AwardedBadges = e.checkBadges(userID, result)

	levelIdx, changed, err := e.states.UpdateSkillLevel(userID)
	if err != nil {
		return err
	}
	result.LevelChanged = changed
	result.NewLevel = config.SkillLevels[levelIdx]
	return nil
}

func (e *Evaluator) checkBadges(userID string, result *Result) []string {
	user, ok := e.states.GetUser(userID)
	if !ok {
		return nil
	}

	var awarded []string
	grant := func(id string) {
		fresh, err := e.states.AwardBadge(userID, id)
		if err != nil {
			log.Printf("[WARN] Failed to award badge %s: %v", id, err)
			return
		}
		if fresh {
			awarded = append(awarded, id)
		}
	}

	if user.TotalLogs >= 1 {
		grant("first_log")
	}
	if user.Streak >= 7 {
		grant("streak_7")
	}
	if user.Streak >= 30 {
		grant("streak_30")
	}
	if user.Streak >= 100 {
		grant("streak_100")
	}
	if result.CombinedDepth() >= 9 {
		grant("depth_master")
	}

	allCovered := len(user.TopicCoverage) > 0
	for _, v := range user.TopicCoverage {
		if v < 1 {
			allCovered = false
			break
		}
	}
	if allCovered {
		grant("all_topics")
	}

	return awarded
}

// Simulation is a what-if scoring preview. Nothing is persisted.
type Simulation struct {
	Analysis          map[string]any
	ConceptsDetected  []string
	NewConcepts       []string
	RepeatedConcepts  []string
	RepetitionPenalty float64
	EstimatedPoints   int
	QualifiedLogs     int
}

// SimulateDay scores hypothetical logs against a user's history without
// touching state. Only qualifying logs earn points.
func (e *Evaluator) SimulateDay(ctx context.Context, userID string, logs []string) (*Simulation, error) {
	user, ok := e.states.GetUser(userID)
	if !ok {
		return nil, state.ErrUserNotFound
	}

	combined := textscan.SummarizeLogs(logs, 2000)

	var allConcepts []string
	qualified := 0
	for _, l := range logs {
		report := textscan.Analyze(l, nil, e.cfg.MinMessageLength)
		if report.Qualifies {
			qualified++
			allConcepts = append(allConcepts, report.Concepts...)
		}
	}

	analysis := e.ai.AnalyzeLogs(ctx, userID, combined, user.ConceptFrequency)
	penalty, repeated := textscan.RepetitionPenalty(allConcepts, user.ConceptFrequency)

	var newConcepts []string
	for _, c := range allConcepts {
		if _, seen := user.ConceptFrequency[c]; !seen {
			newConcepts = append(newConcepts, c)
		}
	}

	base := e.cfg.BasePoints * qualified
	bonus := 0
	if floatField(analysis, "depth_score", 5) >= 7 {
		bonus = e.cfg.DepthBonus * qualified
	}

	return &Simulation{
		Analysis:          analysis,
		ConceptsDetected:  allConcepts,
		NewConcepts:       newConcepts,
		RepeatedConcepts:  repeated,
		RepetitionPenalty: penalty,
		EstimatedPoints:   int(float64(base+bonus) * penalty),
		QualifiedLogs:     qualified,
	}, nil
}

// WeeklySummary builds the AI-rated week report. With no cached
// evaluations it returns an empty-marked payload and makes no AI call.
func (e *Evaluator) WeeklySummary(ctx context.Context, userID string) (map[string]any, error) {
	user, ok := e.states.GetUser(userID)
	if !ok {
		return nil, state.ErrUserNotFound
	}

	evals := sortedEvaluations(e.states.CachedEvaluations(userID, 7))
	if len(evals) == 0 {
		return map[string]any{
			"message": "No evaluations this week yet. Keep logging!",
			"_empty":  true,
		}, nil
	}

	return e.ai.WeeklySummary(ctx, userID, evals, user), nil
}

func sortedEvaluations(byDate map[string]*state.Evaluation) []*state.Evaluation {
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]*state.Evaluation, 0, len(dates))
	for _, d := range dates {
		out = append(out, byDate[d])
	}
	return out
}

func capList(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func floatField(m map[string]any, key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}
