package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/paybot/internal/bot/tasks"
	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/internal/metrics"
)

// Scheduler runs the configured maintenance tasks on cron schedules
// evaluated in the ledger timezone.
type Scheduler struct {
	cron   gocron.Scheduler
	logger *slog.Logger
	jobs   []job

	mu        sync.Mutex
	started   bool
	scheduled int
}

type job struct {
	name     string
	schedule string
	run      tasks.ScheduledTaskFunc
}

// NewScheduler matches the enabled tasks in cfg against the registry.
// Unknown and disabled tasks are logged and left out.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, registry map[string]tasks.ScheduledTaskFunc, loc *time.Location) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	log := logger.With("component", "scheduler")

	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create cron scheduler: %w", err)
	}

	s := &Scheduler{cron: cron, logger: log}
	if cfg == nil {
		return s, nil
	}

	names := make([]string, 0, len(cfg.Tasks))
	for name := range cfg.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		tc := cfg.Tasks[name]
		run, ok := registry[name]
		switch {
		case !tc.Enabled:
			log.Info("Task disabled", "task_name", name)
		case !ok:
			log.Warn("Task configured but not registered", "task_name", name)
		case tc.Schedule == "":
			log.Warn("Task enabled without a schedule", "task_name", name)
		default:
			s.jobs = append(s.jobs, job{name: name, schedule: tc.Schedule, run: run})
		}
	}
	return s, nil
}

// Start registers every job and starts the cron loop. A job whose schedule
// does not parse is logged and skipped.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("scheduler already started")
	}

	for _, j := range s.jobs {
		_, err := s.cron.NewJob(
			gocron.CronJob(j.schedule, true),
			gocron.NewTask(s.wrap(j)),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			s.logger.Error("Invalid task schedule", "task_name", j.name, "schedule", j.schedule, "error", err)
			continue
		}
		s.logger.Info("Task scheduled", "task_name", j.name, "schedule", j.schedule)
		s.scheduled++
	}
	if len(s.jobs) == 0 {
		s.logger.Warn("No scheduled tasks enabled")
	}

	s.cron.Start()
	s.started = true
	s.logger.Info("Scheduler started", "tasks_scheduled", s.scheduled)
	return nil
}

func (s *Scheduler) wrap(j job) func() {
	return func() {
		start := time.Now()
		err := j.run(context.Background())
		metrics.TaskRun(j.name, err)
		if err != nil {
			s.logger.Error("Scheduled task failed", "task_name", j.name, "duration", time.Since(start), "error", err)
			return
		}
		s.logger.Debug("Scheduled task finished", "task_name", j.name, "duration", time.Since(start))
	}
}

// Scheduled returns how many jobs Start registered.
func (s *Scheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

// Stop shuts the cron loop down, waiting for running jobs. Stopping a
// scheduler that was never started is a no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	s.logger.Info("Scheduler stopped")
	return nil
}
