// Package mentor answers student questions and produces status reports
// with career-pathway context. Read-only: it never mutates state.
package mentor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/keshon/learning-mentor/internal/jsonsafe"
	"github.com/keshon/learning-mentor/internal/state"
)

// TextGenerator is the one AI capability the mentor needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Mentor provides interactive Q&A grounded in a user's progress.
type Mentor struct {
	states *state.Manager
	ai     TextGenerator
}

func New(states *state.Manager, ai TextGenerator) *Mentor {
	return &Mentor{states: states, ai: ai}
}

const qaPrompt = `You are an AI Learning Mentor helping students on their AI/ML engineering and research journey.

STUDENT PROFILE:
%s

CURRENT STATUS:
- Skill Level: %s
- Total Points: %d
- Current Streak: %d days
- Days Active: %d
- Total Logs: %d

CAREER PATHWAY:
%s

RECENT ACTIVITY:
%s

STUDENT QUESTION:
"%s"

Provide a helpful, encouraging response that:
1. Directly answers their question
2. References their current progress and status
3. Gives actionable next steps
4. Relates to their career goal (ML Engineer/AI Researcher)
5. Is concise (3-5 sentences max)

Response (plain text, conversational tone):`

const statusPrompt = `You are an AI Learning Mentor creating a comprehensive status report.

STUDENT PROFILE:
%s

CURRENT MILESTONE: %s
Progress: %.1f%% to next milestone

CAREER PATHWAY PROGRESS:
%s

RECENT PERFORMANCE (last 7 days):
%s

Create a status summary as JSON:
{
  "overall_status": "brief 2-sentence summary",
  "strengths": ["list of 2-3 strengths"],
  "areas_to_improve": ["list of 2-3 areas"],
  "next_immediate_steps": ["3 specific actionable steps"],
  "motivation_message": "1 encouraging sentence",
  "estimated_time_to_next_level": "realistic estimate with reasoning"
}

Return ONLY the JSON.`

// AnswerQuestion answers a student's question with their profile and
// pathway standing as context. Always returns displayable text.
func (m *Mentor) AnswerQuestion(ctx context.Context, userID, question string) string {
	user, ok := m.states.GetUser(userID)
	if !ok {
		return "I don't have your learning data yet. Start logging your learning journey!"
	}

	prompt := fmt.Sprintf(qaPrompt,
		buildProfile(user),
		user.Level().Name,
		user.Points,
		user.Streak,
		user.DaysActive,
		user.TotalLogs,
		buildPathwayInfo(user),
		buildRecentActivity(user),
		question,
	)

	response, err := m.ai.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(response) == "" {
		if err != nil {
			log.Printf("[ERR] Mentor Q&A failed: %v", err)
		}
		return "I'm having trouble connecting to my AI brain right now. Try again in a moment!"
	}
	return strings.TrimSpace(response)
}

// StatusReport generates a structured progress report. The progress block
// is always present even when the AI summary fails.
func (m *Mentor) StatusReport(ctx context.Context, userID string) (map[string]any, error) {
	user, ok := m.states.GetUser(userID)
	if !ok {
		return nil, state.ErrUserNotFound
	}

	progress := ProgressSummary(user)
	progressBlock := map[string]any{
		"current_milestone":    progress.Current.Name,
		"progress_percentage":  progress.Percentage,
		"focus_areas":          progress.FocusAreas,
		"recommended_projects": progress.RecommendedProjects,
		"ml_engineer_recs":     progress.MLEngineerRecs,
		"researcher_recs":      progress.ResearcherRecs,
	}
	if progress.Next != nil {
		progressBlock["next_milestone"] = progress.Next.Name
	}

	prompt := fmt.Sprintf(statusPrompt,
		buildProfile(user),
		progress.Current.Name,
		progress.Percentage,
		buildPathwayInfo(user),
		buildRecentStats(user),
	)

	response, err := m.ai.GenerateText(ctx, prompt)
	if err != nil {
		log.Printf("[ERR] Mentor status report failed: %v", err)
		return map[string]any{
			"overall_status": "Status summary unavailable right now, but your progress is tracked below.",
			"progress":       progressBlock,
		}, nil
	}

	report := jsonsafe.Unmarshal(jsonsafe.ExtractJSON(response), map[string]any{
		"overall_status": "Status summary unavailable right now, but your progress is tracked below.",
	})
	report["progress"] = progressBlock
	return report, nil
}

func buildProfile(user *state.User) string {
	var covered []string
	for topic, count := range user.TopicCoverage {
		if count > 0 {
			covered = append(covered, fmt.Sprintf("%s(%.2g)", topic, count))
		}
	}
	topics := "None yet"
	if len(covered) > 0 {
		topics = strings.Join(covered, ", ")
	}

	parts := []string{
		fmt.Sprintf("Points: %d", user.Points),
		fmt.Sprintf("Streak: %d days", user.Streak),
		"Topics covered: " + topics,
	}
	if len(user.Badges) > 0 {
		parts = append(parts, fmt.Sprintf("Badges: %d", len(user.Badges)))
	}
	return strings.Join(parts, " | ")
}

func buildPathwayInfo(user *state.User) string {
	progress := ProgressSummary(user)

	parts := []string{
		"Current Stage: " + progress.Current.Name,
		fmt.Sprintf("Progress: %.1f%%", progress.Percentage),
	}
	if progress.Next != nil {
		parts = append(parts, "Next Milestone: "+progress.Next.Name)
	}
	if len(progress.FocusAreas) > 0 {
		parts = append(parts, "Current Focus: "+progress.FocusAreas[0])
	}
	return strings.Join(parts, "\n")
}

func buildRecentActivity(user *state.User) string {
	last := user.LastEvaluation
	if last == nil {
		return "No recent evaluations"
	}

	depth := last.Analysis["depth_score"]
	concepts := 0
	if list, ok := last.Analysis["concepts_detected"].([]any); ok {
		concepts = len(list)
	}
	return fmt.Sprintf("Last eval depth: %v/10, Concepts: %d", depth, concepts)
}

func buildRecentStats(user *state.User) string {
	consistency := 0.0
	if user.DaysActive > 0 {
		consistency = float64(user.TotalLogs) / float64(user.DaysActive) * 100
	}
	return fmt.Sprintf("Consistency: %.0f%%", consistency)
}
