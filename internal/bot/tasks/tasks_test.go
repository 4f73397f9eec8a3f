package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/edgard/paybot/internal/database"
	"github.com/edgard/paybot/internal/ledger"
)

type stubStore struct {
	*database.MemoryStore
	pingErr        error
	maintenanceErr error
	maintenance    int
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func (s *stubStore) RunSQLMaintenance(context.Context) error {
	s.maintenance++
	return s.maintenanceErr
}

func testDeps(store database.Store) TaskDeps {
	return TaskDeps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Store: store}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	registered := RegisterAllTasks(testDeps(database.NewMemoryStore()))
	for _, name := range []string{"sql_maintenance", "storage_healthcheck"} {
		if registered[name] == nil {
			t.Errorf("task %q not registered", name)
		}
	}
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &stubStore{MemoryStore: database.NewMemoryStore()}
	if err := newSQLMaintenanceTask(testDeps(store))(context.Background()); err != nil {
		t.Fatalf("task error = %v", err)
	}
	if store.maintenance != 1 {
		t.Errorf("maintenance ran %d times, want 1", store.maintenance)
	}

	store.maintenanceErr = errors.New("locked")
	if err := newSQLMaintenanceTask(testDeps(store))(context.Background()); err == nil {
		t.Error("task succeeded despite maintenance failure")
	}
}

func TestStorageHealthcheckTask(t *testing.T) {
	t.Parallel()

	store := &stubStore{MemoryStore: database.NewMemoryStore()}
	task := newStorageHealthcheckTask(testDeps(store))
	if err := task(context.Background()); err != nil {
		t.Fatalf("healthy store: task error = %v", err)
	}

	store.pingErr = errors.New("connection refused")
	if err := task(context.Background()); !errors.Is(err, ledger.ErrStorageUnavailable) {
		t.Errorf("unhealthy store: task error = %v, want ErrStorageUnavailable", err)
	}
}
