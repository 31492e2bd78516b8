package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"hinglish-snaps/internal/logger"
	"hinglish-snaps/metrics"
	"hinglish-snaps/trace"
)

// JobFunc is one run of a scheduled job.
type JobFunc func(ctx context.Context)

type job struct {
	name    string
	spec    string
	fn      JobFunc
	entryID cron.EntryID
	running atomic.Bool
}

// Scheduler runs named jobs on cron specs. A job never overlaps itself: a
// tick that arrives while the previous run is active is skipped.
type Scheduler struct {
	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs map[string]*job
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := logger.CronLogger{}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		ctx:    ctx,
		cancel: cancel,
		jobs:   map[string]*job{},
	}
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}
	j := &job{name: name, spec: spec, fn: fn}
	id, err := s.cron.AddFunc(spec, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("scheduler: job %q spec %q: %w", name, spec, err)
	}
	j.entryID = id
	s.jobs[name] = j
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		logger.InfoWithFields("job scheduled", logger.Fields{"job": j.name, "spec": j.spec})
	}
}

// RunNow triggers a guarded run of the named job in the background. It
// returns false if the job is unknown.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(j)
	}()
	return true
}

// NextRun returns the next scheduled time of the named job.
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(j.entryID).Next
}

func (s *Scheduler) run(j *job) {
	if !j.running.CompareAndSwap(false, true) {
		metrics.JobSkippedTotal.WithLabelValues(j.name).Inc()
		logger.WarnWithFields("job still running, tick skipped", logger.Fields{"job": j.name})
		return
	}
	defer j.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorWithFields("job panicked", logger.Fields{"job": j.name, "panic": fmt.Sprint(r)})
		}
	}()

	if s.ctx.Err() != nil {
		return
	}
	metrics.JobRunsTotal.WithLabelValues(j.name).Inc()
	start := time.Now()
	ctx := trace.WithNewRequest(s.ctx)
	requestID := trace.RequestIDFromContext(ctx)
	logger.DebugWithFields("job started", logger.Fields{"job": j.name, "request_id": requestID})
	j.fn(ctx)
	logger.InfoWithFields("job finished", logger.Fields{
		"job":        j.name,
		"request_id": requestID,
		"duration":   time.Since(start).String(),
	})
}

// Stop stops scheduling and waits for running jobs. If ctx expires first the
// jobs' context is cancelled and ctx.Err is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}
