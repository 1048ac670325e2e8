package services

import (
	"log"
	"sync"
	"time"

	"clan-bingo-system/models"

	"github.com/go-co-op/gocron/v2"
)

// SchedulerService drives the lifecycle tick and one-shot wake jobs. The
// in-memory job set is rebuilt from rotation_schedules on every start, so
// pending wakes survive process restarts.
type SchedulerService struct {
	Lifecycle *LifecycleService
	Interval  time.Duration

	sched gocron.Scheduler

	mu   sync.Mutex
	jobs map[string]gocron.Job
}

func NewSchedulerService(lifecycle *LifecycleService, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SchedulerService{
		Lifecycle: lifecycle,
		Interval:  interval,
		jobs:      make(map[string]gocron.Job),
	}
}

// Start launches the periodic tick and rebuilds the persisted wake jobs.
func (s *SchedulerService) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(s.Interval),
		gocron.NewTask(func() {
			if err := s.Lifecycle.Tick(); err != nil {
				log.Printf("[Scheduler] Tick failed: %v", err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	if err := s.RebuildWakeJobs(); err != nil {
		log.Printf("[Scheduler] Wake rebuild failed: %v", err)
	}

	log.Printf("⏰ [Scheduler] Started (tick every %s)", s.Interval)
	return nil
}

// Stop shuts the scheduler down.
func (s *SchedulerService) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}

// RebuildWakeJobs replaces the in-memory one-shot set from the persisted
// rotation_schedules rows. Keyed by entity, so re-registration is
// idempotent.
func (s *SchedulerService) RebuildWakeJobs() error {
	var schedules []models.RotationSchedule
	if err := s.Lifecycle.DB.Find(&schedules).Error; err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, job := range s.jobs {
		_ = s.sched.RemoveJob(job.ID())
		delete(s.jobs, key)
	}

	now := time.Now()
	for _, schedule := range schedules {
		wakeAt := schedule.WakeAt
		if !wakeAt.After(now) {
			// Overdue wakes run on the immediate tick instead.
			continue
		}
		job, err := s.sched.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(wakeAt)),
			gocron.NewTask(func() {
				if err := s.Lifecycle.Tick(); err != nil {
					log.Printf("[Scheduler] Wake tick failed: %v", err)
				}
			}),
		)
		if err != nil {
			log.Printf("[Scheduler] Failed to register wake %s: %v", schedule.EntityKey, err)
			continue
		}
		s.jobs[schedule.EntityKey] = job
		log.Printf("[Scheduler] Wake registered: %s at %s", schedule.EntityKey, wakeAt.Format(time.RFC3339))
	}
	return nil
}
