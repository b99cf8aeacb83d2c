// Package schedule runs debates on a timetable.
//
// Jobs persist as JSON:
//
//	{ "version": 1, "jobs": [ { "id":"…", "name":"…", "enabled":true,
//	    "schedule":{"kind":"every","everyMs":…},
//	    "payload":{"roster":"…","proposition":"…","rounds":1,"deliver":false},
//	    "state":{"nextRunAtMs":…,"lastRunAtMs":…,"lastStatus":"ok"},
//	    "createdAtMs":…, "updatedAtMs":…, "deleteAfterRun":false } ] }
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

// Spec describes when a job fires: at a moment, on an interval, or on a
// cron expression.
type Spec struct {
	Kind    string  `json:"kind"`              // "every" | "cron" | "at"
	AtMs    *int64  `json:"atMs,omitempty"`    // one-time
	EveryMs *int64  `json:"everyMs,omitempty"` // interval
	Expr    *string `json:"expr,omitempty"`    // cron expression
	TZ      *string `json:"tz,omitempty"`      // IANA timezone
}

// Payload describes the debate a job runs.
type Payload struct {
	Roster      string  `json:"roster"`
	Provider    string  `json:"provider,omitempty"`
	Proposition string  `json:"proposition"`
	Rounds      int     `json:"rounds"`
	MaxAgents   int     `json:"maxAgents,omitempty"`
	Deliver     bool    `json:"deliver"`
	Channel     *string `json:"channel,omitempty"`
	To          *string `json:"to,omitempty"`
}

// JobState tracks run bookkeeping.
type JobState struct {
	NextRunAtMs *int64  `json:"nextRunAtMs,omitempty"`
	LastRunAtMs *int64  `json:"lastRunAtMs,omitempty"`
	LastStatus  *string `json:"lastStatus,omitempty"`
	LastError   *string `json:"lastError,omitempty"`
}

// Job is one scheduled debate.
type Job struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	Schedule       Spec     `json:"schedule"`
	Payload        Payload  `json:"payload"`
	State          JobState `json:"state"`
	CreatedAtMs    int64    `json:"createdAtMs"`
	UpdatedAtMs    int64    `json:"updatedAtMs"`
	DeleteAfterRun bool     `json:"deleteAfterRun"`
}

type jobStore struct {
	Version int   `json:"version"`
	Jobs    []Job `json:"jobs"`
}

// OnJobFunc runs the job's debate and returns the transcript text to
// deliver when payload.Deliver is set.
type OnJobFunc func(ctx context.Context, job Job) (string, error)

// Service manages scheduled jobs: persistence, timers, and execution.
type Service struct {
	storePath string
	onJob     OnJobFunc

	mu    sync.Mutex
	store jobStore

	// Active timers / cron entries keyed by job ID.
	timers    map[string]*time.Timer
	robfig    *robfigcron.Cron
	robfigIDs map[string]robfigcron.EntryID
}

// NewService creates a Service persisting to storePath (a jobs.json path).
func NewService(storePath string) *Service {
	return &Service{
		storePath: storePath,
		timers:    make(map[string]*time.Timer),
		robfig:    robfigcron.New(),
		robfigIDs: make(map[string]robfigcron.EntryID),
	}
}

// SetOnJob registers the callback executed when a job fires.
// Must be set before Start().
func (s *Service) SetOnJob(fn OnJobFunc) { s.onJob = fn }

// Start loads jobs from disk, recomputes next-run times, and arms all
// timers. Blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.loadLocked(); err != nil {
		slog.Warn("schedule: load failed, starting empty", "err", err)
	}
	s.recomputeNextRunsLocked()
	s.saveLocked()
	s.armAllLocked(ctx)
	s.mu.Unlock()

	s.robfig.Start()
	slog.Info("schedule: started", "jobs", len(s.store.Jobs))

	<-ctx.Done()

	<-s.robfig.Stop().Done()
	s.mu.Lock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.mu.Unlock()
	return ctx.Err()
}

// AddJob validates the spec, persists the job, and returns it.
func (s *Service) AddJob(name string, spec Spec, payload Payload, deleteAfterRun bool) (Job, error) {
	switch spec.Kind {
	case "every":
		if spec.EveryMs == nil || *spec.EveryMs <= 0 {
			return Job{}, fmt.Errorf("every schedule needs a positive interval")
		}
	case "cron":
		if spec.Expr == nil || *spec.Expr == "" {
			return Job{}, fmt.Errorf("cron schedule needs an expression")
		}
	case "at":
		if spec.AtMs == nil {
			return Job{}, fmt.Errorf("at schedule needs a time")
		}
	default:
		return Job{}, fmt.Errorf("unknown schedule kind %q", spec.Kind)
	}
	if payload.Proposition == "" {
		return Job{}, fmt.Errorf("payload needs a proposition")
	}
	if payload.Rounds <= 0 {
		payload.Rounds = 1
	}

	now := nowMs()
	job := Job{
		ID:             shortID(),
		Name:           name,
		Enabled:        true,
		Schedule:       spec,
		Payload:        payload,
		State:          JobState{NextRunAtMs: computeNextRun(spec, now)},
		CreatedAtMs:    now,
		UpdatedAtMs:    now,
		DeleteAfterRun: deleteAfterRun,
	}

	s.mu.Lock()
	s.store.Jobs = append(s.store.Jobs, job)
	s.saveLocked()
	s.mu.Unlock()

	slog.Info("schedule: added job", "name", name, "id", job.ID, "kind", spec.Kind)
	return job, nil
}

// RemoveJob removes a job by ID and returns true if found.
func (s *Service) RemoveJob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.store.Jobs)
	filtered := s.store.Jobs[:0]
	for _, j := range s.store.Jobs {
		if j.ID != id {
			filtered = append(filtered, j)
		}
	}
	s.store.Jobs = filtered
	if len(filtered) < before {
		s.cancelTimerLocked(id)
		s.saveLocked()
		return true
	}
	return false
}

// ListJobs returns jobs sorted by next run time; includeDisabled controls
// visibility.
func (s *Service) ListJobs(includeDisabled bool) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked()
	var jobs []Job
	for _, j := range s.store.Jobs {
		if includeDisabled || j.Enabled {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool {
		a := int64(^uint64(0) >> 1)
		b := int64(^uint64(0) >> 1)
		if jobs[i].State.NextRunAtMs != nil {
			a = *jobs[i].State.NextRunAtMs
		}
		if jobs[k].State.NextRunAtMs != nil {
			b = *jobs[k].State.NextRunAtMs
		}
		return a < b
	})
	return jobs
}

// EnableJob enables or disables a job.
func (s *Service) EnableJob(id string, enabled bool) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.store.Jobs {
		if s.store.Jobs[i].ID == id {
			s.store.Jobs[i].Enabled = enabled
			s.store.Jobs[i].UpdatedAtMs = nowMs()
			if enabled {
				s.store.Jobs[i].State.NextRunAtMs = computeNextRun(s.store.Jobs[i].Schedule, nowMs())
			} else {
				s.store.Jobs[i].State.NextRunAtMs = nil
				s.cancelTimerLocked(id)
			}
			s.saveLocked()
			return s.store.Jobs[i], true
		}
	}
	return Job{}, false
}

// RunJob manually executes a job (force=true ignores disabled flag).
func (s *Service) RunJob(ctx context.Context, id string, force bool) bool {
	s.mu.Lock()
	var job *Job
	for i := range s.store.Jobs {
		if s.store.Jobs[i].ID == id {
			if !force && !s.store.Jobs[i].Enabled {
				s.mu.Unlock()
				return false
			}
			job = &s.store.Jobs[i]
			break
		}
	}
	if job == nil {
		s.mu.Unlock()
		return false
	}
	jobCopy := *job
	s.mu.Unlock()

	s.executeJob(ctx, jobCopy)
	return true
}

func (s *Service) recomputeNextRunsLocked() {
	now := nowMs()
	for i := range s.store.Jobs {
		if s.store.Jobs[i].Enabled {
			s.store.Jobs[i].State.NextRunAtMs = computeNextRun(s.store.Jobs[i].Schedule, now)
		}
	}
}

func (s *Service) armAllLocked(ctx context.Context) {
	for _, j := range s.store.Jobs {
		if j.Enabled {
			s.armJobLocked(ctx, j)
		}
	}
}

func (s *Service) armJobLocked(ctx context.Context, job Job) {
	s.cancelTimerLocked(job.ID)

	switch job.Schedule.Kind {
	case "every":
		if job.Schedule.EveryMs == nil || *job.Schedule.EveryMs <= 0 {
			return
		}
		d := time.Duration(*job.Schedule.EveryMs) * time.Millisecond
		t := time.AfterFunc(d, func() {
			s.executeJob(ctx, job)
			// Re-arm from the store in case the job changed meanwhile.
			s.mu.Lock()
			for _, j := range s.store.Jobs {
				if j.ID == job.ID && j.Enabled {
					s.armJobLocked(ctx, j)
					break
				}
			}
			s.mu.Unlock()
		})
		s.timers[job.ID] = t

	case "at":
		if job.Schedule.AtMs == nil {
			return
		}
		delay := time.Until(time.UnixMilli(*job.Schedule.AtMs))
		if delay < 0 {
			return
		}
		t := time.AfterFunc(delay, func() {
			s.executeJob(ctx, job)
		})
		s.timers[job.ID] = t

	case "cron":
		if job.Schedule.Expr == nil {
			return
		}
		loc := time.Local
		if job.Schedule.TZ != nil && *job.Schedule.TZ != "" {
			if l, err := time.LoadLocation(*job.Schedule.TZ); err == nil {
				loc = l
			}
		}
		parsed, err := cronParser().Parse(*job.Schedule.Expr)
		if err != nil {
			slog.Warn("schedule: invalid cron expression", "job", job.ID, "expr", *job.Schedule.Expr, "err", err)
			return
		}
		jobCopy := job
		entryID := s.robfig.Schedule(
			withLocation(parsed, loc),
			robfigcron.FuncJob(func() { s.executeJob(ctx, jobCopy) }),
		)
		s.robfigIDs[job.ID] = entryID
	}
}

func (s *Service) cancelTimerLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	if eid, ok := s.robfigIDs[id]; ok {
		s.robfig.Remove(eid)
		delete(s.robfigIDs, id)
	}
}

func (s *Service) executeJob(ctx context.Context, job Job) {
	startMs := nowMs()
	slog.Info("schedule: executing job", "name", job.Name, "id", job.ID)

	lastStatus := "ok"
	var lastErr *string

	if s.onJob != nil {
		if _, err := s.onJob(ctx, job); err != nil {
			lastStatus = "error"
			e := err.Error()
			lastErr = &e
			slog.Error("schedule: job failed", "name", job.Name, "err", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.store.Jobs {
		if s.store.Jobs[i].ID != job.ID {
			continue
		}
		now := nowMs()
		s.store.Jobs[i].State.LastRunAtMs = &startMs
		s.store.Jobs[i].State.LastStatus = &lastStatus
		s.store.Jobs[i].State.LastError = lastErr
		s.store.Jobs[i].UpdatedAtMs = now

		if job.Schedule.Kind == "at" {
			if job.DeleteAfterRun {
				filtered := s.store.Jobs[:0]
				for _, j := range s.store.Jobs {
					if j.ID != job.ID {
						filtered = append(filtered, j)
					}
				}
				s.store.Jobs = filtered
			} else {
				s.store.Jobs[i].Enabled = false
				s.store.Jobs[i].State.NextRunAtMs = nil
			}
		} else {
			s.store.Jobs[i].State.NextRunAtMs = computeNextRun(job.Schedule, now)
		}
		break
	}
	s.saveLocked()
}

func (s *Service) loadLocked() error {
	if len(s.store.Jobs) > 0 {
		return nil // already loaded
	}
	data, err := os.ReadFile(s.storePath)
	if os.IsNotExist(err) {
		s.store = jobStore{Version: 1}
		return nil
	}
	if err != nil {
		return err
	}
	var st jobStore
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	s.store = st
	return nil
}

func (s *Service) saveLocked() {
	if err := os.MkdirAll(filepath.Dir(s.storePath), 0o755); err != nil {
		slog.Warn("schedule: mkdir failed", "err", err)
		return
	}
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		slog.Warn("schedule: marshal failed", "err", err)
		return
	}
	if err := os.WriteFile(s.storePath, data, 0o644); err != nil {
		slog.Warn("schedule: write failed", "err", err)
	}
}

func nowMs() int64 { return time.Now().UnixMilli() }

func shortID() string {
	return fmt.Sprintf("%08x", time.Now().UnixNano()&0xFFFFFFFF)
}

// Five-field expressions, minute resolution.
func cronParser() robfigcron.Parser {
	return robfigcron.NewParser(
		robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow,
	)
}

func computeNextRun(spec Spec, nowMs int64) *int64 {
	switch spec.Kind {
	case "at":
		if spec.AtMs != nil && *spec.AtMs > nowMs {
			v := *spec.AtMs
			return &v
		}
	case "every":
		if spec.EveryMs != nil && *spec.EveryMs > 0 {
			v := nowMs + *spec.EveryMs
			return &v
		}
	case "cron":
		if spec.Expr != nil {
			loc := time.Local
			if spec.TZ != nil && *spec.TZ != "" {
				if l, err := time.LoadLocation(*spec.TZ); err == nil {
					loc = l
				}
			}
			if parsed, err := cronParser().Parse(*spec.Expr); err == nil {
				next := parsed.Next(time.UnixMilli(nowMs).In(loc))
				v := next.UnixMilli()
				return &v
			}
		}
	}
	return nil
}

// withLocation wraps a Schedule to always evaluate in a specific location.
type locSchedule struct {
	inner robfigcron.Schedule
	loc   *time.Location
}

func (l locSchedule) Next(t time.Time) time.Time {
	return l.inner.Next(t.In(l.loc))
}

func withLocation(s robfigcron.Schedule, loc *time.Location) robfigcron.Schedule {
	return locSchedule{inner: s, loc: loc}
}
