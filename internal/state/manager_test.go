package state

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/learning-mentor/internal/timeutil"
)

type memStore struct {
	blob    string
	exists  bool
	backups []string
	writes  int
}

func (s *memStore) FindState() (string, bool, error) { return s.blob, s.exists, nil }
func (s *memStore) CreateState(blob string) error {
	s.blob, s.exists = blob, true
	return nil
}
func (s *memStore) WriteState(blob string) error {
	s.blob = blob
	s.writes++
	return nil
}
func (s *memStore) AppendBackup(blob string) error {
	s.backups = append(s.backups, blob)
	return nil
}

func testClock(t *testing.T) *timeutil.Clock {
	t.Helper()
	return timeutil.NewFixed("UTC", 3, time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC))
}

func newTestManager(t *testing.T) (*Manager, *memStore) {
	t.Helper()
	store := &memStore{}
	m := NewManager(store, testClock(t))
	require.NoError(t, m.Initialize(map[string]string{"111": "alice", "222": "bob"}))
	return m, store
}

func TestInitializeCreatesState(t *testing.T) {
	m, store := newTestManager(t)

	assert.True(t, store.exists)
	u, ok := m.GetUser("111")
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, 0, u.Points)
	assert.Equal(t, HealthSafe, u.StreakHealth)
	assert.Len(t, m.AllUsers(), 2)
}

func TestInitializeLoadsAndRoundTrips(t *testing.T) {
	m1, store := newTestManager(t)
	_, err := m1.AddPoints("111", 42)
	require.NoError(t, err)
	_, _, err = m1.UpdateStreak("111", "2026-03-15")
	require.NoError(t, err)

	m2 := NewManager(store, testClock(t))
	require.NoError(t, m2.Initialize(map[string]string{"111": "alice", "222": "bob"}))

	u, ok := m2.GetUser("111")
	require.True(t, ok)
	assert.Equal(t, 42, u.Points)
	assert.Equal(t, 1, u.Streak)
	assert.Equal(t, "2026-03-15", u.LastLogDate)
}

func TestInitializeMigratesV1(t *testing.T) {
	store := &memStore{
		blob:   `{"state_version":1,"bot_metadata":{"version":"1.0.0"},"users":{"111":{"user_id":"111","username":"alice","points":10}}}`,
		exists: true,
	}
	m := NewManager(store, testClock(t))
	require.NoError(t, m.Initialize(map[string]string{"111": "alice"}))

	u, ok := m.GetUser("111")
	require.True(t, ok)
	assert.Equal(t, 10, u.Points)
	assert.NotNil(t, u.ConceptFrequency)
	assert.Equal(t, HealthSafe, u.StreakHealth)

	status := m.HealthStatus()
	assert.Equal(t, 2, status["state_version"])
	// migration persisted
	assert.Contains(t, store.blob, `"state_version":2`)
}

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name        string
		lastLog     string
		startStreak int
		logDate     string
		wantStreak  int
		wantHealth  string
	}{
		{"first log ever", "", 0, "2026-03-15", 1, HealthSafe},
		{"same day repeat", "2026-03-15", 4, "2026-03-15", 4, HealthSafe},
		{"consecutive day", "2026-03-14", 4, "2026-03-15", 5, HealthSafe},
		{"gap breaks streak", "2026-03-10", 9, "2026-03-15", 1, HealthBroken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			require.NoError(t, m.UpdateUser("111", func(u *User) {
				u.LastLogDate = tt.lastLog
				u.Streak = tt.startStreak
			}))

			streak, health, err := m.UpdateStreak("111", tt.logDate)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, tt.wantHealth, health)

			u, _ := m.GetUser("111")
			assert.Equal(t, tt.logDate, u.LastLogDate)
		})
	}
}

func TestMaxStreakMonotonic(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.UpdateUser("111", func(u *User) {
		u.Streak = 9
		u.MaxStreak = 9
		u.LastLogDate = "2026-03-01"
	}))

	// streak breaks but max stays
	streak, health, err := m.UpdateStreak("111", "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, HealthBroken, health)

	u, _ := m.GetUser("111")
	assert.Equal(t, 9, u.MaxStreak)
}

func TestAddPointsAndSkillLevel(t *testing.T) {
	m, _ := newTestManager(t)

	total, err := m.AddPoints("111", 600)
	require.NoError(t, err)
	assert.Equal(t, 600, total)

	level, changed, err := m.UpdateSkillLevel("111")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, level) // Intermediate at 500

	// no change on second call
	_, changed, err = m.UpdateSkillLevel("111")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = m.AddPoints("999", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAwardBadgeIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.AwardBadge("111", "first_log")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := m.AwardBadge("111", "first_log")
	require.NoError(t, err)
	assert.False(t, again)

	u, _ := m.GetUser("111")
	assert.Equal(t, []string{"first_log"}, u.Badges)
}

func TestConceptFrequency(t *testing.T) {
	m, _ := newTestManager(t)

	freq, err := m.UpdateConceptFrequency("111", []string{"cnn", "cnn", "dropout"})
	require.NoError(t, err)
	assert.Equal(t, 2, freq["cnn"])
	assert.Equal(t, 1, freq["dropout"])
}

func TestIncrementTotalLogs(t *testing.T) {
	m, _ := newTestManager(t)

	n, err := m.IncrementTotalLogs("111")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, _ := m.GetUser("111")
	assert.Equal(t, 1, u.DaysActive)

	// once last_log_date is today, days active stops advancing
	require.NoError(t, m.UpdateUser("111", func(u *User) { u.LastLogDate = "2026-03-15" }))
	_, err = m.IncrementTotalLogs("111")
	require.NoError(t, err)
	u, _ = m.GetUser("111")
	assert.Equal(t, 1, u.DaysActive)
	assert.Equal(t, 2, u.TotalLogs)
}

func TestDailyFlagsAndEvaluationMarker(t *testing.T) {
	m, _ := newTestManager(t)

	assert.False(t, m.HasEvaluatedToday("111"))
	assert.Equal(t, "none", m.GetDailyFlag("111", "missing", "none"))

	require.NoError(t, m.MarkEvaluated("111"))
	assert.True(t, m.HasEvaluatedToday("111"))
	assert.False(t, m.HasEvaluatedToday("222"))

	u, _ := m.GetUser("111")
	assert.Equal(t, 1, u.EvaluationCount)
	assert.Equal(t, 1, m.root.Metadata.TotalEvaluations)
}

func TestCacheEvaluationEviction(t *testing.T) {
	m, _ := newTestManager(t)

	for i := 1; i <= 8; i++ {
		date := fmt.Sprintf("2026-03-%02d", i+7) // 2026-03-08 .. 2026-03-15
		err := m.CacheEvaluation("111", date, &Evaluation{UserID: "111", Date: date})
		require.NoError(t, err)
	}

	cached := m.CachedEvaluations("111", 30)
	assert.Len(t, cached, 7)
	assert.NotContains(t, cached, "2026-03-08") // oldest evicted
	assert.Contains(t, cached, "2026-03-15")

	u, _ := m.GetUser("111")
	require.NotNil(t, u.LastEvaluation)
	assert.Equal(t, "2026-03-15", u.LastEvaluation.Date)
}

func TestCachedEvaluationsWindow(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.CacheEvaluation("111", "2026-03-15", &Evaluation{Date: "2026-03-15"}))
	require.NoError(t, m.CacheEvaluation("111", "2026-03-01", &Evaluation{Date: "2026-03-01"}))

	// only dates inside the window come back
	recent := m.CachedEvaluations("111", 7)
	assert.Len(t, recent, 1)
	assert.Contains(t, recent, "2026-03-15")
}

func TestSaveRejectsOversizedState(t *testing.T) {
	m, store := newTestManager(t)
	writesBefore := store.writes

	err := m.UpdateUser("111", func(u *User) {
		u.Username = strings.Repeat("x", 5000)
	})
	assert.ErrorIs(t, err, ErrStateTooLarge)
	// nothing written since the failed mutation
	assert.Equal(t, writesBefore, store.writes)
}

func TestSaveWithBackup(t *testing.T) {
	m, store := newTestManager(t)
	require.NoError(t, m.Save(true))
	require.Len(t, store.backups, 1)
	assert.Equal(t, store.blob, store.backups[0])
}

func TestCleanupOldFlags(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.SetDailyFlag("111", "evaluated", true))

	// plant an ancient flag directly
	m.root.DailyFlags["2025-01-01"] = map[string]Flags{"111": {"evaluated": true}}

	require.NoError(t, m.CleanupOldFlags(7))
	assert.NotContains(t, m.root.DailyFlags, "2025-01-01")
	assert.Contains(t, m.root.DailyFlags, "2026-03-15")
}

func TestClearDailyFlags(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.SetDailyFlag("111", "evaluated", true))
	m.root.DailyFlags["2026-03-14"] = map[string]Flags{"222": {"evaluated": true}}

	require.NoError(t, m.ClearDailyFlags())
	assert.NotContains(t, m.root.DailyFlags, "2026-03-15")
	assert.Contains(t, m.root.DailyFlags, "2026-03-14")

	// clearing an empty day is a no-op
	require.NoError(t, m.ClearDailyFlags())
}

func TestResetDailyState(t *testing.T) {
	m, _ := newTestManager(t)

	// logged today: stays safe
	require.NoError(t, m.UpdateUser("111", func(u *User) {
		u.LastLogDate = "2026-03-15"
		u.StreakHealth = HealthSafe
	}))
	// stale log: goes at-risk
	require.NoError(t, m.UpdateUser("222", func(u *User) {
		u.LastLogDate = "2026-03-10"
		u.StreakHealth = HealthSafe
	}))

	require.NoError(t, m.ResetDailyState())

	a, _ := m.GetUser("111")
	b, _ := m.GetUser("222")
	assert.Equal(t, HealthSafe, a.StreakHealth)
	assert.Equal(t, HealthAtRisk, b.StreakHealth)
}

func TestDailyThread(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Equal(t, "", m.DailyThread("111"))
	require.NoError(t, m.SetDailyThread("111", "555"))
	assert.Equal(t, "555", m.DailyThread("111"))
}

func TestCombinedDepth(t *testing.T) {
	t.Run("confident ai score wins", func(t *testing.T) {
		e := &Evaluation{Analysis: map[string]any{"depth_score": 8.0, "confidence": 0.9}}
		assert.InDelta(t, 8.0, e.CombinedDepth(2.0), 0.001)
	})
	t.Run("hesitant ai blends with local", func(t *testing.T) {
		e := &Evaluation{Analysis: map[string]any{"depth_score": 8.0, "confidence": 0.5}}
		// 8*0.5 + 3*2*0.5 = 7
		assert.InDelta(t, 7.0, e.CombinedDepth(3.0), 0.001)
	})
	t.Run("missing analysis uses defaults", func(t *testing.T) {
		e := &Evaluation{}
		// 5*0.5 + 3*2*0.5 = 5.5
		assert.InDelta(t, 5.5, e.CombinedDepth(3.0), 0.001)
	})
}
