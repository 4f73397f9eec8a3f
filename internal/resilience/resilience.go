// Package resilience guards ledger storage with a circuit breaker and retries
// idempotent reads with exponential backoff.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Config tunes the breaker and the read retries.
type Config struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// ReadAttempts bounds attempts for queries. Writes are never retried.
	ReadAttempts uint
	// RetryDelay is the initial backoff between read attempts.
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFailures == 0 {
		c.MaxFailures = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.ReadAttempts == 0 {
		c.ReadAttempts = 1
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 100 * time.Millisecond
	}
	return c
}

// Repository decorates a ledger.Repository.
type Repository struct {
	next    ledger.Repository
	breaker *gobreaker.CircuitBreaker[struct{}]
	cfg     Config
	logger  *slog.Logger
}

// Wrap returns repo guarded by a circuit breaker named name.
func Wrap(name string, repo ledger.Repository, cfg Config, logger *slog.Logger) *Repository {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "resilience", "breaker", name)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// A caller giving up is not a storage fault.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			log.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	}
	metrics.SetBreakerState(name, int(gobreaker.StateClosed))

	return &Repository{
		next:    repo,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		cfg:     cfg,
		logger:  log,
	}
}

// State reports the breaker state, e.g. "closed" or "open".
func (r *Repository) State() string {
	return r.breaker.State().String()
}

// InsertPayments runs a single guarded write.
func (r *Repository) InsertPayments(ctx context.Context, records ...ledger.PaymentRecord) error {
	return r.guard(func() error {
		return r.next.InsertPayments(ctx, records...)
	})
}

// PaymentsInRange runs a guarded, retried read.
func (r *Repository) PaymentsInRange(ctx context.Context, conversationID int64, dr ledger.DateRange) ([]ledger.PaymentRecord, error) {
	var out []ledger.PaymentRecord
	err := r.read(ctx, "payments_in_range", func() error {
		var err error
		out, err = r.next.PaymentsInRange(ctx, conversationID, dr)
		return err
	})
	return out, err
}

// AllPayments runs a guarded, retried read.
func (r *Repository) AllPayments(ctx context.Context, conversationID int64) ([]ledger.PaymentRecord, error) {
	var out []ledger.PaymentRecord
	err := r.read(ctx, "all_payments", func() error {
		var err error
		out, err = r.next.AllPayments(ctx, conversationID)
		return err
	})
	return out, err
}

func (r *Repository) guard(op func() error) error {
	_, err := r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

func (r *Repository) read(ctx context.Context, name string, op func() error) error {
	return retry.Do(
		func() error { return r.guard(op) },
		retry.Context(ctx),
		retry.Attempts(r.cfg.ReadAttempts),
		retry.Delay(r.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, gobreaker.ErrOpenState) &&
				!errors.Is(err, gobreaker.ErrTooManyRequests) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.DebugContext(ctx, "Retrying storage read", "operation", name, "attempt", n+1, "error", err)
		}),
	)
}
