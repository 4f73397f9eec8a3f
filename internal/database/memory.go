package database

import (
	"context"
	"slices"
	"sync"

	"github.com/edgard/paybot/internal/ledger"
)

// MemoryStore is a non-durable Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	payments map[int64][]ledger.PaymentRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[int64][]ledger.PaymentRecord)}
}

// Ping always succeeds unless ctx is done.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// InsertPayments appends records under one lock.
func (m *MemoryStore) InsertPayments(ctx context.Context, records ...ledger.PaymentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.payments[rec.ConversationID] = append(m.payments[rec.ConversationID], rec)
	}
	return nil
}

// PaymentsInRange returns copies of the chat's records dated within r.
func (m *MemoryStore) PaymentsInRange(ctx context.Context, chatID int64, r ledger.DateRange) ([]ledger.PaymentRecord, error) {
	return m.collect(ctx, chatID, func(rec ledger.PaymentRecord) bool {
		return r.Contains(rec.CivilDate)
	})
}

// AllPayments returns copies of the chat's records.
func (m *MemoryStore) AllPayments(ctx context.Context, chatID int64) ([]ledger.PaymentRecord, error) {
	return m.collect(ctx, chatID, func(ledger.PaymentRecord) bool { return true })
}

// RunSQLMaintenance is a no-op.
func (m *MemoryStore) RunSQLMaintenance(context.Context) error {
	return nil
}

func (m *MemoryStore) collect(ctx context.Context, chatID int64, keep func(ledger.PaymentRecord) bool) ([]ledger.PaymentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.PaymentRecord
	for _, rec := range m.payments[chatID] {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	slices.SortStableFunc(out, func(a, b ledger.PaymentRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
