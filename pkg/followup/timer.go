package followup

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/ironoak/pkg/logger"
	"github.com/jordanlanch/ironoak/pkg/store"
)

const (
	// PartitionFollowUps holds scheduled follow-up jobs
	PartitionFollowUps = "followups"

	followUpsFile = "followups.json"
	runTimeout    = 2 * time.Minute
)

// TimerScheduler fires jobs from in-process timers. Each job is written to
// disk before its timer is armed and removed when it fires, so Restore can
// re-arm whatever a restart interrupted.
type TimerScheduler struct {
	col    *store.Collection[*Job]
	runner Runner
	log    logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewTimerScheduler stores jobs under dataDir
func NewTimerScheduler(dataDir string, locks *store.PartitionLocks, log logger.Logger) *TimerScheduler {
	return &TimerScheduler{
		col:    store.NewCollection[*Job](PartitionFollowUps, filepath.Join(dataDir, followUpsFile), locks),
		log:    log,
		now:    time.Now,
		timers: make(map[string]*time.Timer),
	}
}

// SetRunner sets the job executor. Must be called before Schedule or Restore.
func (s *TimerScheduler) SetRunner(r Runner) {
	s.runner = r
}

// Collection exposes the job partition for backups
func (s *TimerScheduler) Collection() *store.Collection[*Job] {
	return s.col
}

// Schedule persists job and arms its timer
func (s *TimerScheduler) Schedule(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	rec := job
	err := s.col.Mutate(ctx, func(jobs []*Job) ([]*Job, error) {
		return append(jobs, &rec), nil
	})
	if err != nil {
		return err
	}

	s.arm(job)
	return nil
}

// Restore re-arms every persisted job. Overdue jobs fire right away.
func (s *TimerScheduler) Restore(ctx context.Context) (int, error) {
	var pending []Job
	err := s.col.View(ctx, func(jobs []*Job) error {
		for _, j := range jobs {
			pending = append(pending, *j)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, j := range pending {
		s.arm(j)
	}
	return len(pending), nil
}

// Pending returns the number of armed timers
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms all timers and waits for running jobs. Persisted jobs stay on
// disk for the next Restore.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *TimerScheduler) arm(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if _, ok := s.timers[job.ID]; ok {
		return
	}

	delay := job.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timers[job.ID] = time.AfterFunc(delay, func() { s.fire(job) })
}

func (s *TimerScheduler) fire(job Job) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, job.ID)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	claimed := false
	err := s.col.Mutate(ctx, func(jobs []*Job) ([]*Job, error) {
		for i, j := range jobs {
			if j.ID == job.ID {
				claimed = true
				return append(jobs[:i], jobs[i+1:]...), nil
			}
		}
		return nil, nil
	})
	if err != nil {
		s.log.Error("failed to claim follow-up job", "job_id", job.ID, "error", err)
		return
	}
	if !claimed {
		return
	}

	if err := s.runner.RunFollowUp(ctx, job); err != nil {
		s.log.Error("follow-up job failed", "job_id", job.ID, "lead_id", job.LeadID, "error", err)
	}
}
