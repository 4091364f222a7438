package evaluator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/state"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

type memStore struct {
	blob   string
	exists bool
}

func (s *memStore) FindState() (string, bool, error) { return s.blob, s.exists, nil }
func (s *memStore) CreateState(blob string) error    { s.blob, s.exists = blob, true; return nil }
func (s *memStore) WriteState(blob string) error     { s.blob = blob; return nil }
func (s *memStore) AppendBackup(blob string) error   { return nil }

type fakeSource struct {
	byChannel map[string][]Log
	err       error
}

func (f *fakeSource) UserMessages(_ context.Context, channelID, _, _ string) ([]Log, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byChannel[channelID], nil
}

type fakeProvider struct {
	analysis map[string]any
	feedback map[string]any
	weekly   map[string]any
	calls    int
}

func (f *fakeProvider) AnalyzeLogs(context.Context, string, string, map[string]int) map[string]any {
	f.calls++
	return f.analysis
}
func (f *fakeProvider) MentorFeedback(context.Context, map[string]any, *state.User, []*state.Evaluation) map[string]any {
	return f.feedback
}
func (f *fakeProvider) WeeklySummary(context.Context, string, []*state.Evaluation, *state.User) map[string]any {
	return f.weekly
}

func testConfig() *config.Config {
	return &config.Config{
		LearningChannelID: "chan-learning",
		MinMessageLength:  30,
		BasePoints:        10,
		DepthBonus:        5,
	}
}

func newTestEvaluator(t *testing.T, source *fakeSource, provider *fakeProvider) (*Evaluator, *state.Manager) {
	t.Helper()
	clock := timeutil.NewFixed("UTC", 3, time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC))
	states := state.NewManager(&memStore{}, clock)
	require.NoError(t, states.Initialize(map[string]string{"111": "alice", "222": "bob"}))
	return New(testConfig(), states, source, provider, clock), states
}

func confidentAnalysis(depth float64) map[string]any {
	return map[string]any{
		"primary_focus":     "DL",
		"concepts_detected": []any{"cnn"},
		"depth_score":       depth,
		"confidence":        0.9,
	}
}

const techLog = "Today I learned about CNNs and implemented convolution layers with dropout and batch normalization in PyTorch"
const otherLog = "Studied gradient descent optimizers, compared adam against sgd on a toy regression problem in numpy"

func TestEvaluateUserFullFlow(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {
			{Content: techLog, Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
			{Content: otherLog, Timestamp: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
		},
	}}
	provider := &fakeProvider{
		analysis: confidentAnalysis(8),
		feedback: map[string]any{"mentor_feedback": "solid work"},
	}
	ev, states := newTestEvaluator(t, source, provider)

	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	require.NotNil(t, result)

	// 2 qualifying logs, blended depth 8 (confident AI), no repetition:
	// (10*2 + 5*2) * 1.0 = 30
	assert.Equal(t, 30, result.Evaluation.PointsEarned)
	assert.Equal(t, 2, result.QualifiedLogs)
	assert.Equal(t, 2, result.TotalLogs)
	assert.Equal(t, 1.0, result.Evaluation.RepetitionPenalty)
	assert.NotEmpty(t, result.Evaluation.ID)
	assert.Equal(t, "2026-03-15", result.Evaluation.Date)

	u, _ := states.GetUser("111")
	assert.Equal(t, 30, u.Points)
	assert.True(t, states.HasEvaluatedToday("111"))
	assert.Equal(t, float64(1), u.TopicCoverage["DL"])
	assert.Positive(t, u.ConceptFrequency["cnn"])

	cached := states.CachedEvaluations("111", 7)
	assert.Contains(t, cached, "2026-03-15")
}

func TestEvaluateUserSkipsWhenAlreadyEvaluated(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: techLog, Timestamp: time.Now()}},
	}}
	provider := &fakeProvider{analysis: confidentAnalysis(8), feedback: map[string]any{}}
	ev, states := newTestEvaluator(t, source, provider)

	require.NoError(t, states.MarkEvaluated("111"))

	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, provider.calls)

	// force overrides the guard
	result, err = ev.EvaluateUser(context.Background(), "111", true)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestEvaluateUserNoLogs(t *testing.T) {
	ev, _ := newTestEvaluator(t, &fakeSource{byChannel: map[string][]Log{}}, &fakeProvider{})
	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestEvaluateUserShortLogsOnly(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: "read a bit", Timestamp: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)}},
	}}
	provider := &fakeProvider{analysis: confidentAnalysis(8), feedback: map[string]any{}}
	ev, states := newTestEvaluator(t, source, provider)

	// a day of only chatter is treated as no logs: no AI call, no quota
	// spent, and the user is not marked evaluated
	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, provider.calls)
	assert.False(t, states.HasEvaluatedToday("111"))

	u, _ := states.GetUser("111")
	assert.Equal(t, 0, u.Points)
	assert.Empty(t, states.CachedEvaluations("111", 7))

	// a real log later the same day still evaluates normally
	source.byChannel["chan-learning"] = append(source.byChannel["chan-learning"],
		Log{Content: techLog, Timestamp: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)})

	result, err = ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.TotalLogs)
	assert.Equal(t, 1, result.QualifiedLogs)
}

func TestEvaluateUserUnknownUser(t *testing.T) {
	ev, _ := newTestEvaluator(t, &fakeSource{}, &fakeProvider{})
	_, err := ev.EvaluateUser(context.Background(), "999", false)
	assert.ErrorIs(t, err, state.ErrUserNotFound)
}

func TestEvaluateUserDuplicateSuppression(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {
			{Content: techLog, Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
			{Content: techLog, Timestamp: time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)},
		},
	}}
	provider := &fakeProvider{analysis: confidentAnalysis(8), feedback: map[string]any{}}
	ev, _ := newTestEvaluator(t, source, provider)

	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.QualifiedLogs)
	assert.Equal(t, 2, result.TotalLogs)
	assert.Equal(t, 15, result.Evaluation.PointsEarned) // (10 + 5) * 1.0
}

func TestEvaluateUserRepetitionPenalty(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: techLog, Timestamp: time.Now()}},
	}}
	provider := &fakeProvider{analysis: confidentAnalysis(8), feedback: map[string]any{}}
	ev, states := newTestEvaluator(t, source, provider)

	// make every concept in the log already well-worn
	require.NoError(t, states.UpdateUser("111", func(u *state.User) {
		for _, c := range []string{"cnn", "convolution", "dropout", "batch normalization", "normalization", "pytorch"} {
			u.ConceptFrequency[c] = 5
		}
	}))

	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 0.5, result.Evaluation.RepetitionPenalty)
	assert.Equal(t, 7, result.Evaluation.PointsEarned) // int(15 * 0.5)
	assert.Empty(t, result.Evaluation.NewConcepts)
	assert.NotEmpty(t, result.Evaluation.RepeatedConcepts)
}

func TestEvaluateUserHesitantAIBlendsLocalDepth(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: "went for a long relaxed walk outside and thought about the weather today", Timestamp: time.Now()}},
	}}
	// hesitant high AI score: blended = 9*0.2 + local*2*0.8; local depth for
	// this non-technical log is 0, so blended 1.8 and no bonus.
	provider := &fakeProvider{
		analysis: map[string]any{
			"primary_focus":     "Mixed",
			"concepts_detected": []any{},
			"depth_score":       9.0,
			"confidence":        0.2,
		},
		feedback: map[string]any{},
	}
	ev, _ := newTestEvaluator(t, source, provider)

	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 10, result.Evaluation.PointsEarned) // base only
}

func TestBadges(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: techLog, Timestamp: time.Now()}},
	}}
	provider := &fakeProvider{analysis: confidentAnalysis(9.5), feedback: map[string]any{}}
	ev, states := newTestEvaluator(t, source, provider)

	require.NoError(t, states.UpdateUser("111", func(u *state.User) {
		u.TotalLogs = 5
		u.Streak = 8
	}))

	result, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Contains(t, result.AwardedBadges, "first_log")
	assert.Contains(t, result.AwardedBadges, "streak_7")
	assert.Contains(t, result.AwardedBadges, "depth_master")
	assert.NotContains(t, result.AwardedBadges, "streak_30")

	// second evaluation awards nothing new
	second, err := ev.EvaluateUser(context.Background(), "111", true)
	require.NoError(t, err)
	assert.Empty(t, second.AwardedBadges)
}

func TestMixedFocusSpreadsCoverage(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: techLog, Timestamp: time.Now()}},
	}}
	provider := &fakeProvider{
		analysis: map[string]any{
			"primary_focus":     "Mixed",
			"concepts_detected": []any{},
			"depth_score":       5.0,
			"confidence":        0.9,
		},
		feedback: map[string]any{},
	}
	ev, states := newTestEvaluator(t, source, provider)

	_, err := ev.EvaluateUser(context.Background(), "111", false)
	require.NoError(t, err)

	u, _ := states.GetUser("111")
	for _, topic := range config.Topics {
		assert.Equal(t, 0.25, u.TopicCoverage[topic])
	}
}

func TestSimulateDay(t *testing.T) {
	provider := &fakeProvider{analysis: confidentAnalysis(8)}
	ev, states := newTestEvaluator(t, &fakeSource{}, provider)

	sim, err := ev.SimulateDay(context.Background(), "111", []string{techLog, "short"})
	require.NoError(t, err)

	// only the qualifying log earns: (10 + 5) * 1.0
	assert.Equal(t, 1, sim.QualifiedLogs)
	assert.Equal(t, 15, sim.EstimatedPoints)

	// state untouched
	u, _ := states.GetUser("111")
	assert.Equal(t, 0, u.Points)
	assert.False(t, states.HasEvaluatedToday("111"))
}

func TestSimulateDayAllShortLogs(t *testing.T) {
	provider := &fakeProvider{analysis: confidentAnalysis(8)}
	ev, _ := newTestEvaluator(t, &fakeSource{}, provider)

	sim, err := ev.SimulateDay(context.Background(), "111", []string{"short"})
	require.NoError(t, err)
	assert.Equal(t, 0, sim.QualifiedLogs)
	assert.Equal(t, 0, sim.EstimatedPoints)
}

func TestWeeklySummary(t *testing.T) {
	provider := &fakeProvider{weekly: map[string]any{"week_rating": "B"}}
	ev, states := newTestEvaluator(t, &fakeSource{}, provider)

	t.Run("empty week", func(t *testing.T) {
		got, err := ev.WeeklySummary(context.Background(), "111")
		require.NoError(t, err)
		assert.Equal(t, true, got["_empty"])
	})

	t.Run("with cached evaluations", func(t *testing.T) {
		require.NoError(t, states.CacheEvaluation("111", "2026-03-15", &state.Evaluation{Date: "2026-03-15"}))
		got, err := ev.WeeklySummary(context.Background(), "111")
		require.NoError(t, err)
		assert.Equal(t, "B", got["week_rating"])
	})
}

func TestCollectDailyLogsMergesThread(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {{Content: techLog, Timestamp: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}},
		"thread-9":      {{Content: otherLog, Timestamp: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)}},
	}}
	ev, states := newTestEvaluator(t, source, &fakeProvider{})
	require.NoError(t, states.SetDailyThread("111", "thread-9"))

	logs, err := ev.CollectDailyLogs(context.Background(), "111", "")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, otherLog, logs[0].Content) // chronological
	assert.Equal(t, techLog, logs[1].Content)
}

func TestCollectDailyLogsDropsUnderLength(t *testing.T) {
	source := &fakeSource{byChannel: map[string][]Log{
		"chan-learning": {
			{Content: "ok", Timestamp: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
			{Content: "<@123> nice", Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
			{Content: techLog, Timestamp: time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)},
		},
	}}
	ev, _ := newTestEvaluator(t, source, &fakeProvider{})

	logs, err := ev.CollectDailyLogs(context.Background(), "111", "")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, techLog, logs[0].Content)
}
