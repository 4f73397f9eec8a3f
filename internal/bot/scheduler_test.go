package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgard/paybot/internal/bot/tasks"
	"github.com/edgard/paybot/internal/config"
)

func TestSchedulerSchedulesEnabledKnownTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"sql_maintenance":     noop,
		"storage_healthcheck": noop,
		"disabled":            noop,
		"bad_cron":            noop,
	}
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"sql_maintenance":     {Enabled: true, Schedule: "0 0 3 * * 0"},
		"storage_healthcheck": {Enabled: true, Schedule: "0 */5 * * * *"},
		"disabled":            {Enabled: false, Schedule: "* * * * * *"},
		"unregistered":        {Enabled: true, Schedule: "* * * * * *"},
		"bad_cron":            {Enabled: true, Schedule: "not a cron"},
	}}

	loc, err := time.LoadLocation("UTC")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, taskMap, loc)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() succeeded, want error")
	}
	if got := s.Scheduled(); got != 2 {
		t.Errorf("Scheduled() = %d, want 2", got)
	}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestSchedulerWithoutTasks(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.Scheduled() != 0 {
		t.Errorf("Scheduled() = %d, want 0", s.Scheduled())
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
