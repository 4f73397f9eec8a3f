package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/edgard/paybot/internal/metrics"
)

// DefaultTimeout bounds storage calls when Options.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// Repository is the durable backing store for payment records.
// Implementations must scope every read by conversation id and return
// records ordered by CreatedAt ascending.
type Repository interface {
	// InsertPayments stores all records atomically: either every record is
	// committed or none is.
	InsertPayments(ctx context.Context, records ...PaymentRecord) error
	PaymentsInRange(ctx context.Context, conversationID int64, r DateRange) ([]PaymentRecord, error)
	AllPayments(ctx context.Context, conversationID int64) ([]PaymentRecord, error)
}

// Options configures a Ledger.
type Options struct {
	// Location is the reference timezone civil dates are computed in.
	Location *time.Location
	// Timeout bounds each storage call.
	Timeout time.Duration
	// Now is the clock; defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Ledger appends and reads payment records.
type Ledger struct {
	repo    Repository
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Ledger over repo.
func New(repo Repository, opts Options) *Ledger {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ledger{
		repo:    repo,
		loc:     opts.Location,
		timeout: opts.Timeout,
		now:     opts.Now,
		logger:  opts.Logger.With("component", "ledger"),
	}
}

// Location returns the reference timezone.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Today returns the current civil date in the reference timezone.
func (l *Ledger) Today() civil.Date {
	return civil.DateOf(l.now().In(l.loc))
}

// Append stores a single draft and returns the committed record.
func (l *Ledger) Append(ctx context.Context, d Draft) (PaymentRecord, error) {
	records, err := l.AppendAll(ctx, d)
	if err != nil {
		return PaymentRecord{}, err
	}
	return records[0], nil
}

// AppendAll stores drafts in one atomic write. All records share the same
// creation instant and civil date.
func (l *Ledger) AppendAll(ctx context.Context, drafts ...Draft) ([]PaymentRecord, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	for _, d := range drafts {
		if err := d.validate(); err != nil {
			return nil, err
		}
	}

	now := l.now().UTC()
	date := civil.DateOf(now.In(l.loc))
	records := make([]PaymentRecord, len(drafts))
	for i, d := range drafts {
		records[i] = PaymentRecord{
			ID:                uuid.Must(uuid.NewV7()).String(),
			ConversationID:    d.ConversationID,
			ConversationTitle: d.ConversationTitle,
			ReporterID:        d.ReporterID,
			ReporterName:      d.ReporterName,
			SourceText:        d.SourceText,
			AmountUSD:         d.AmountUSD,
			AmountKHR:         d.AmountKHR,
			CivilDate:         date,
			CreatedAt:         now,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	err := l.repo.InsertPayments(ctx, records...)
	metrics.ObserveLedger("append", start, err)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to append payments",
			"chat_id", drafts[0].ConversationID, "count", len(records), "error", err)
		return nil, unavailable("append", err)
	}

	l.logger.DebugContext(ctx, "Payments appended",
		"chat_id", drafts[0].ConversationID, "count", len(records), "civil_date", date.String())
	return records, nil
}

// Query returns the conversation's records whose civil date lies in r,
// ordered by creation time.
func (l *Ledger) Query(ctx context.Context, conversationID int64, r DateRange) ([]PaymentRecord, error) {
	if r.Empty() {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	records, err := l.repo.PaymentsInRange(ctx, conversationID, r)
	metrics.ObserveLedger("query", start, err)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to query payments",
			"chat_id", conversationID, "start", r.Start.String(), "end", r.End.String(), "error", err)
		return nil, unavailable("query", err)
	}
	return records, nil
}

// QueryAll returns the conversation's full history ordered by creation time.
func (l *Ledger) QueryAll(ctx context.Context, conversationID int64) ([]PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	records, err := l.repo.AllPayments(ctx, conversationID)
	metrics.ObserveLedger("query_all", start, err)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to query payment history", "chat_id", conversationID, "error", err)
		return nil, unavailable("query all", err)
	}
	return records, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
