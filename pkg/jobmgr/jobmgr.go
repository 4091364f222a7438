// Package jobmgr runs named background jobs: one-shot async tasks and
// recurring ticker loops, with per-job and global cancellation and
// in-memory tracking. No retry logic, no persistence.
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Job is a running unit of work.
type Job struct {
	Name     string
	Interval time.Duration // zero for one-shot jobs
	Started  time.Time
	cancel   context.CancelFunc
}

// StatusReporter receives lifecycle events, e.g. "running:dashboard",
// "error:dashboard:timeout", "done:dashboard".
type StatusReporter func(string)

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	reporter StatusReporter
}

// NewManager creates a Manager. The reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{jobs: make(map[string]*Job), reporter: reporter}
}

// StartAsync runs a one-shot job in its own goroutine. Duplicate names
// are rejected while the first run is alive. Jobs remove themselves when
// the runner returns.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	return m.launch(name, 0, func(ctx context.Context) {
		m.report("running:" + name)
		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}
	})
}

// Every starts a recurring job that fires immediately and then on each
// interval tick until cancelled. Runner errors are reported and the loop
// keeps going; only cancellation stops a recurring job.
func (m *Manager) Every(name string, interval time.Duration, runner func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}

	return m.launch(name, interval, func(ctx context.Context) {
		m.report("running:" + name)

		run := func() {
			if err := runner(ctx); err != nil && ctx.Err() == nil {
				m.report("error:" + name + ":" + err.Error())
			}
		}

		run()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				m.report("done:" + name)
				return
			case <-ticker.C:
				run()
			}
		}
	})
}

func (m *Manager) launch(name string, interval time.Duration, body func(ctx context.Context)) error {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job %q is already running", name)
	}
	m.jobs[name] = &Job{Name: name, Interval: interval, Started: time.Now(), cancel: cancel}
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.jobs, name)
			m.mu.Unlock()
		}()
		body(ctx)
	}()
	return nil
}

// Stop cancels a job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	job.cancel()
	delete(m.jobs, name)
	return nil
}

// StopAll cancels every running job. Used at shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, job := range m.jobs {
		job.cancel()
		delete(m.jobs, name)
	}
}

// List returns active job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return "Running jobs: " + strings.Join(active, ", ")
}

func (m *Manager) report(s string) {
	if m.reporter != nil {
		m.reporter(s)
	}
}
