// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobInfo describes a registered job
type JobInfo struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	Next     *time.Time `json:"next,omitempty"` // nil until the scheduler is started
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]registration
}

type registration struct {
	id       cron.EntryID
	schedule string
}

// New creates a new scheduler. A job still running when its next tick fires
// is skipped, and a panicking job is recovered and logged.
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	adapter := cronLogger{log: log}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.SkipIfStillRunning(adapter), cron.Recover(adapter)),
		),
		log:     log,
		entries: make(map[string]registration),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a standard five-field cron spec or a
// descriptor such as "@hourly" or "@every 5m". Job names are unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[job.Name()]; ok {
		s.cron.Remove(prev.id)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return err
	}
	s.entries[job.Name()] = registration{id: id, schedule: schedule}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// Jobs lists the registered jobs by name
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]JobInfo, 0, len(s.entries))
	for name, reg := range s.entries {
		info := JobInfo{Name: name, Schedule: reg.schedule}
		if next := s.cron.Entry(reg.id).Next; !next.IsZero() {
			info.Next = &next
		}
		jobs = append(jobs, info)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	if err := job.Run(); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		return
	}
	s.log.Debug().
		Str("job", job.Name()).
		Dur("duration", time.Since(start)).
		Msg("Job completed")
}

// cronLogger routes cron's own messages through zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
