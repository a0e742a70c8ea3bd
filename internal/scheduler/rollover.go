package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readworld/internal/settingsstore"
	"github.com/mrlokans/readworld/internal/tasks"
)

// CleanupSchedule is when old activity entries are purged.
const CleanupSchedule = "30 3 * * *"

// Roller applies the monthly counter reset.
type Roller interface {
	Rollover(ctx context.Context) bool
}

type ScheduleSource interface {
	RolloverSchedule(ctx context.Context) string
}

// Enqueuer hands background work to the task queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// RolloverScheduler resets the monthly counters of a long-running process and
// queues periodic activity log cleanup.
type RolloverScheduler struct {
	roller    Roller
	schedules ScheduleSource
	queue     Enqueuer
	retention time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewRolloverScheduler builds a scheduler. queue may be nil, in which case no
// cleanup job is registered.
func NewRolloverScheduler(roller Roller, schedules ScheduleSource, queue Enqueuer, retention time.Duration) *RolloverScheduler {
	return &RolloverScheduler{
		roller:    roller,
		schedules: schedules,
		queue:     queue,
		retention: retention,
		cron:      newCron(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

func (s *RolloverScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	schedule := s.schedules.RolloverSchedule(ctx)
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.runRollover(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule rollover job: %w", err)
	}
	s.entryID = entryID

	if s.queue != nil {
		if _, err := s.cron.AddFunc(CleanupSchedule, s.enqueueCleanup); err != nil {
			return fmt.Errorf("failed to schedule cleanup job: %w", err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.NextRunTime(schedule, time.Now())
	log.Printf("Rollover scheduler: started with schedule '%s' (%s). Next run: %v",
		schedule, settingsstore.DescribeSchedule(schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs. Safe to call more than once.
func (s *RolloverScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	// a fresh cron so Start can register jobs again
	s.cron = newCron()

	log.Printf("Rollover scheduler: stopped")
}

// Reschedule restarts the scheduler after the schedule setting changed.
func (s *RolloverScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow performs a rollover check immediately and reports whether counters changed.
func (s *RolloverScheduler) RunNow(ctx context.Context) bool {
	return s.runRollover(ctx)
}

func (s *RolloverScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next rollover check happens, or nil when stopped.
func (s *RolloverScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RolloverScheduler) runRollover(ctx context.Context) bool {
	changed := s.roller.Rollover(ctx)
	if changed {
		log.Printf("Rollover scheduler: monthly counters reset")
	}
	return changed
}

func (s *RolloverScheduler) enqueueCleanup() {
	id, err := s.queue.Enqueue(tasks.NewCleanupAuditEventsTask(s.retention))
	if err != nil {
		log.Printf("Rollover scheduler: failed to queue activity cleanup: %v", err)
		return
	}
	log.Printf("Rollover scheduler: queued activity cleanup %s", id)
}
