// Package state manages all bot state as a single JSON blob persisted
// through a BlobStore (a pinned Discord message in production). One mutex
// serializes every mutation and save; nothing else writes the blob.
package state

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/keshon/learning-mentor/internal/config"
	"github.com/keshon/learning-mentor/internal/jsonsafe"
	"github.com/keshon/learning-mentor/internal/timeutil"
)

// ErrStateTooLarge is returned when the serialized state no longer fits in
// an embed description. The save is rejected; the previous blob stays
// intact.
var ErrStateTooLarge = errors.New("state exceeds embed size limit")

// ErrUserNotFound is returned for operations on untracked users.
var ErrUserNotFound = errors.New("user not tracked")

// BlobStore persists the serialized state blob. The Discord adapter backs
// it with a pinned message plus a backup thread.
type BlobStore interface {
	// FindState returns the current blob, or found=false when no state
	// message exists yet.
	FindState() (blob string, found bool, err error)
	// CreateState stores the first blob and pins it.
	CreateState(blob string) error
	// WriteState replaces the blob in place.
	WriteState(blob string) error
	// AppendBackup adds a snapshot to the append-only backup store.
	AppendBackup(blob string) error
}

// Manager owns the in-memory state and its persistence.
type Manager struct {
	mu    sync.Mutex
	store BlobStore
	clock *timeutil.Clock

	root        *Root
	initialized bool
	lastSave    string
}

func NewManager(store BlobStore, clock *timeutil.Clock) *Manager {
	return &Manager{store: store, clock: clock, root: defaultRoot()}
}

// Initialize loads state from the store or creates a fresh blob seeding
// the given users (id -> username).
func (m *Manager) Initialize(users map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, found, err := m.store.FindState()
	if err != nil {
		return fmt.Errorf("find state: %w", err)
	}

	if found {
		root := &Root{}
		if err := jsonsafe.UnmarshalInto(blob, root); err != nil {
			log.Printf("[WARN] State blob unreadable, starting fresh: %v", err)
			root = defaultRoot()
			root.Metadata.StartedAt = m.clock.FormatDateTime(m.clock.Now())
		}
		m.root = root
		m.root.normalize()
		m.migrateLocked()

		// Newly tracked users may be missing from an older blob.
		for id, name := range users {
			if _, ok := m.root.Users[id]; !ok {
				u := defaultUser(id, name)
				u.CreatedAt = m.clock.FormatDateTime(m.clock.Now())
				m.root.Users[id] = u
			}
		}

		m.initialized = true
		log.Printf("[INFO] Loaded state: %d users, version %d", len(m.root.Users), m.root.Version)
		return nil
	}

	m.root = defaultRoot()
	m.root.Metadata.StartedAt = m.clock.FormatDateTime(m.clock.Now())
	for id, name := range users {
		u := defaultUser(id, name)
		u.CreatedAt = m.clock.FormatDateTime(m.clock.Now())
		m.root.Users[id] = u
	}
	m.root.LastUpdated = m.clock.FormatDateTime(m.clock.Now())

	payload, err := m.serializeLocked()
	if err != nil {
		return err
	}
	if err := m.store.CreateState(payload); err != nil {
		return fmt.Errorf("create state: %w", err)
	}

	m.initialized = true
	log.Printf("[INFO] Created new state for %d users", len(m.root.Users))
	return nil
}

// migrateLocked upgrades older blobs in place. Version 2 added concept
// frequency tracking, streak health, and the evaluation cache.
func (m *Manager) migrateLocked() {
	if m.root.Version >= config.StateVersion {
		return
	}
	log.Printf("[INFO] Migrating state from version %d to %d", m.root.Version, config.StateVersion)

	if m.root.Version < 2 {
		for _, u := range m.root.Users {
			if u.ConceptFrequency == nil {
				u.ConceptFrequency = make(map[string]int)
			}
			if u.StreakHealth == "" {
				u.StreakHealth = HealthSafe
			}
		}
		if m.root.Evaluations == nil {
			m.root.Evaluations = make(map[string]map[string]*Evaluation)
		}
	}

	m.root.Version = config.StateVersion
	if err := m.saveLocked(false); err != nil {
		log.Printf("[WARN] Failed to persist migrated state: %v", err)
	}
}

func (m *Manager) serializeLocked() (string, error) {
	payload := jsonsafe.Marshal(m.root)
	if len(payload) > jsonsafe.EmbedLimit {
		log.Printf("[ERR] State blob is %d chars, limit %d; refusing to save", len(payload), jsonsafe.EmbedLimit)
		return "", fmt.Errorf("%w: %d chars", ErrStateTooLarge, len(payload))
	}
	return payload, nil
}

// Save persists the current state, optionally appending a backup snapshot.
// An oversized blob fails with ErrStateTooLarge and leaves the stored copy
// untouched.
func (m *Manager) Save(createBackup bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(createBackup)
}

func (m *Manager) saveLocked(createBackup bool) error {
	m.root.LastUpdated = m.clock.FormatDateTime(m.clock.Now())

	payload, err := m.serializeLocked()
	if err != nil {
		return err
	}
	if err := m.store.WriteState(payload); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	m.lastSave = m.root.LastUpdated

	if createBackup {
		// Backups are best-effort; snapshots may be truncated to fit.
		snapshot := jsonsafe.Truncate(payload, jsonsafe.EmbedLimit)
		if err := m.store.AppendBackup(snapshot); err != nil {
			log.Printf("[WARN] Failed to append backup: %v", err)
		}
	}
	return nil
}

// GetUser returns a copy of a tracked user's record.
func (m *Manager) GetUser(id string) (*User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return nil, false
	}
	return u.clone(), true
}

// AllUsers returns copies of every tracked user.
func (m *Manager) AllUsers() []*User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*User, 0, len(m.root.Users))
	for _, u := range m.root.Users {
		out = append(out, u.clone())
	}
	return out
}

// UpdateUser applies mutate to a user's record and saves.
func (m *Manager) UpdateUser(id string, mutate func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return ErrUserNotFound
	}
	mutate(u)
	return m.saveLocked(false)
}

// AddPoints credits points and returns the new total.
func (m *Manager) AddPoints(id string, points int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return 0, ErrUserNotFound
	}
	u.Points += points
	return u.Points, m.saveLocked(false)
}

// UpdateStreak advances a user's streak for a log on logDate and returns
// the new streak with its health. MaxStreak is monotonic.
func (m *Manager) UpdateStreak(id, logDate string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return 0, HealthBroken, ErrUserNotFound
	}

	newStreak := u.Streak
	health := HealthSafe

	switch {
	case u.LastLogDate == "":
		newStreak = 1
	case timeutil.IsSameDay(u.LastLogDate, logDate):
		// already counted for this day
	case m.clock.IsConsecutiveDay(u.LastLogDate, logDate):
		newStreak = u.Streak + 1
	case u.LastLogDate == m.clock.Yesterday():
		newStreak = u.Streak + 1
	default:
		newStreak = 1
		health = HealthBroken
	}

	u.Streak = newStreak
	if newStreak > u.MaxStreak {
		u.MaxStreak = newStreak
	}
	u.LastLogDate = logDate
	u.StreakHealth = health

	return newStreak, health, m.saveLocked(false)
}

// UpdateConceptFrequency bumps frequency counters for the given concepts
// and returns the updated map.
func (m *Manager) UpdateConceptFrequency(id string, concepts []string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	for _, c := range concepts {
		u.ConceptFrequency[c]++
	}
	out := make(map[string]int, len(u.ConceptFrequency))
	for k, v := range u.ConceptFrequency {
		out[k] = v
	}
	return out, m.saveLocked(false)
}

// IncrementTotalLogs counts a new log, bumping days active on the first
// log of a day. Returns the new log total.
func (m *Manager) IncrementTotalLogs(id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return 0, ErrUserNotFound
	}
	u.TotalLogs++
	if u.LastLogDate != m.clock.Today() {
		u.DaysActive++
	}
	return u.TotalLogs, m.saveLocked(false)
}

// AwardBadge grants a badge once. Returns true only on first award.
func (m *Manager) AwardBadge(id, badgeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return false, ErrUserNotFound
	}
	if u.HasBadge(badgeID) {
		return false, nil
	}
	u.Badges = append(u.Badges, badgeID)
	return true, m.saveLocked(false)
}

// UpdateSkillLevel recomputes the level from points. Returns the level
// index and whether it changed.
func (m *Manager) UpdateSkillLevel(id string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.root.Users[id]
	if !ok {
		return 0, false, ErrUserNotFound
	}

	newLevel := 0
	for i, lvl := range config.SkillLevels {
		if u.Points >= lvl.MinPoints {
			newLevel = i
		}
	}

	if newLevel == u.SkillLevel {
		return newLevel, false, nil
	}
	u.SkillLevel = newLevel
	return newLevel, true, m.saveLocked(false)
}

// SetDailyFlag records a per-user flag for today.
func (m *Manager) SetDailyFlag(id, flag string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	date := m.clock.Today()
	if m.root.DailyFlags[date] == nil {
		m.root.DailyFlags[date] = make(map[string]Flags)
	}
	if m.root.DailyFlags[date][id] == nil {
		m.root.DailyFlags[date][id] = make(Flags)
	}
	m.root.DailyFlags[date][id][flag] = value
	return m.saveLocked(false)
}

// GetDailyFlag reads a per-user flag for today, returning def when unset.
func (m *Manager) GetDailyFlag(id, flag string, def any) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, ok := m.root.DailyFlags[m.clock.Today()]
	if !ok {
		return def
	}
	flags, ok := users[id]
	if !ok {
		return def
	}
	v, ok := flags[flag]
	if !ok {
		return def
	}
	return v
}

// HasEvaluatedToday reports whether the daily evaluation already ran.
func (m *Manager) HasEvaluatedToday(id string) bool {
	v, _ := m.GetDailyFlag(id, "evaluated", false).(bool)
	return v
}

// MarkEvaluated sets today's evaluated flag and bumps evaluation counters.
func (m *Manager) MarkEvaluated(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	date := m.clock.Today()
	if m.root.DailyFlags[date] == nil {
		m.root.DailyFlags[date] = make(map[string]Flags)
	}
	if m.root.DailyFlags[date][id] == nil {
		m.root.DailyFlags[date][id] = make(Flags)
	}
	m.root.DailyFlags[date][id]["evaluated"] = true

	if u, ok := m.root.Users[id]; ok {
		u.EvaluationCount++
	}
	m.root.Metadata.TotalEvaluations++

	return m.saveLocked(false)
}

// evaluationCacheCap bounds per-user cached evaluations.
const evaluationCacheCap = 7

// CacheEvaluation stores an evaluation record, evicting the oldest date
// once the per-user cache is full, and mirrors it as the user's last
// evaluation.
func (m *Manager) CacheEvaluation(id, date string, eval *Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.root.Evaluations[id] == nil {
		m.root.Evaluations[id] = make(map[string]*Evaluation)
	}
	cache := m.root.Evaluations[id]

	if len(cache) >= evaluationCacheCap {
		oldest := ""
		for d := range cache {
			if oldest == "" || d < oldest {
				oldest = d
			}
		}
		delete(cache, oldest)
	}
	cache[date] = eval

	if u, ok := m.root.Users[id]; ok {
		u.LastEvaluation = eval
	}
	return m.saveLocked(false)
}

// CachedEvaluations returns the user's cached evaluations from the last
// n days, keyed by date.
func (m *Manager) CachedEvaluations(id string, days int) map[string]*Evaluation {
	m.mu.Lock()
	defer m.mu.Unlock()

	cache, ok := m.root.Evaluations[id]
	if !ok {
		return map[string]*Evaluation{}
	}

	out := make(map[string]*Evaluation)
	for _, date := range m.clock.LastNDays(days) {
		if e, found := cache[date]; found {
			out[date] = e
		}
	}
	return out
}

// SetDailyThread remembers a user's current daily thread.
func (m *Manager) SetDailyThread(id, threadID string) error {
	return m.UpdateUser(id, func(u *User) { u.DailyThreadID = threadID })
}

// DailyThread returns a user's current daily thread, "" when none.
func (m *Manager) DailyThread(id string) string {
	u, ok := m.GetUser(id)
	if !ok {
		return ""
	}
	return u.DailyThreadID
}

// ClearDailyFlags removes all of today's per-user flags, letting daily
// gates such as "evaluated" fire again.
func (m *Manager) ClearDailyFlags() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	date := m.clock.Today()
	if _, ok := m.root.DailyFlags[date]; !ok {
		return nil
	}
	delete(m.root.DailyFlags, date)
	return m.saveLocked(false)
}

// CleanupOldFlags drops daily flags older than keepDays to keep the blob
// small.
func (m *Manager) CleanupOldFlags(keepDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := make(map[string]bool)
	for _, d := range m.clock.LastNDays(keepDays) {
		recent[d] = true
	}

	removed := 0
	for date := range m.root.DailyFlags {
		if !recent[date] {
			delete(m.root.DailyFlags, date)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	log.Printf("[INFO] Cleaned up %d old daily flag entries", removed)
	return m.saveLocked(false)
}

// ResetDailyState runs at the day boundary: anyone who has not logged
// today or yesterday moves from safe to at-risk. Users who already logged
// today stay safe.
func (m *Manager) ResetDailyState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := m.clock.Today()
	yesterday := m.clock.Yesterday()

	for _, u := range m.root.Users {
		if u.LastLogDate == "" || u.LastLogDate == today || u.LastLogDate == yesterday {
			continue
		}
		if u.StreakHealth == HealthSafe {
			u.StreakHealth = HealthAtRisk
		}
	}
	return m.saveLocked(false)
}

// HealthStatus summarizes the manager for the health command.
func (m *Manager) HealthStatus() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"initialized":      m.initialized,
		"last_save":        m.lastSave,
		"state_version":    m.root.Version,
		"user_count":       len(m.root.Users),
		"state_size_bytes": jsonsafe.Size(m.root),
	}
}

// Snapshot returns the current serialized blob for diagnostics and manual
// backups. Oversized state still serializes here; only saves reject it.
func (m *Manager) Snapshot() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return jsonsafe.Marshal(m.root)
}
