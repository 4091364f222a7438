package ai

import "sync"

// quotaTracker caps quota-gated Gemini calls per user per calendar day.
// Purely in-memory; a restart resets it, which errs on the generous side.
type quotaTracker struct {
	mu    sync.Mutex
	limit int
	used  map[string]int // key: userID + "|" + date
}

func newQuotaTracker(limit int) *quotaTracker {
	if limit < 1 {
		limit = 1
	}
	return &quotaTracker{limit: limit, used: make(map[string]int)}
}

func (q *quotaTracker) key(userID, date string) string {
	return userID + "|" + date
}

func (q *quotaTracker) allow(userID, date string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used[q.key(userID, date)] < q.limit
}

func (q *quotaTracker) record(userID, date string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := q.key(userID, date)
	q.used[key]++

	// Drop stale entries so the map never grows unbounded.
	for k := range q.used {
		if !endsWith(k, date) {
			delete(q.used, k)
		}
	}
}

func (q *quotaTracker) remaining(userID, date string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	left := q.limit - q.used[q.key(userID, date)]
	if left < 0 {
		return 0
	}
	return left
}

func endsWith(key, date string) bool {
	return len(key) >= len(date) && key[len(key)-len(date):] == date
}
