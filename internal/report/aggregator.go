package report

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/edgard/paybot/internal/ledger"
)

// Querier reads the ledger. *ledger.Ledger implements it.
type Querier interface {
	Today() civil.Date
	Query(ctx context.Context, conversationID int64, r ledger.DateRange) ([]ledger.PaymentRecord, error)
	QueryAll(ctx context.Context, conversationID int64) ([]ledger.PaymentRecord, error)
}

// Summary holds totals for one period.
type Summary struct {
	Period Period
	// Range is zero for AllTime.
	Range ledger.DateRange
	USD   decimal.Decimal
	KHR   decimal.Decimal
	Count int
}

// DailySummary lists a single civil date's records with their totals.
type DailySummary struct {
	Date    civil.Date
	Records []ledger.PaymentRecord
	USD     decimal.Decimal
	KHR     decimal.Decimal
}

// Count is the number of records on the day.
func (d DailySummary) Count() int {
	return len(d.Records)
}

// Aggregator sums ledger records over civil-date windows.
type Aggregator struct {
	q Querier
}

// New creates an Aggregator.
func New(q Querier) *Aggregator {
	return &Aggregator{q: q}
}

// Today returns the current civil date the windows are resolved against.
func (a *Aggregator) Today() civil.Date {
	return a.q.Today()
}

// Records returns the conversation's records for p, with the range used.
func (a *Aggregator) Records(ctx context.Context, conversationID int64, p Period) ([]ledger.PaymentRecord, ledger.DateRange, error) {
	if !p.Valid() {
		return nil, ledger.DateRange{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}

	r, bounded := Window(a.q.Today(), p)
	if !bounded {
		records, err := a.q.QueryAll(ctx, conversationID)
		return records, ledger.DateRange{}, err
	}
	records, err := a.q.Query(ctx, conversationID, r)
	return records, r, err
}

// Summarize totals the conversation's records for p. No records yields zero
// totals, not an error.
func (a *Aggregator) Summarize(ctx context.Context, conversationID int64, p Period) (Summary, error) {
	records, r, err := a.Records(ctx, conversationID, p)
	if err != nil {
		return Summary{}, err
	}
	usd, khr := Sum(records)
	return Summary{Period: p, Range: r, USD: usd, KHR: khr, Count: len(records)}, nil
}

// SummarizeDetailed returns the records dated date with their totals.
func (a *Aggregator) SummarizeDetailed(ctx context.Context, conversationID int64, date civil.Date) (DailySummary, error) {
	if !date.IsValid() {
		return DailySummary{}, fmt.Errorf("invalid date %s", date)
	}
	records, err := a.q.Query(ctx, conversationID, ledger.SingleDay(date))
	if err != nil {
		return DailySummary{}, err
	}
	usd, khr := Sum(records)
	return DailySummary{Date: date, Records: records, USD: usd, KHR: khr}, nil
}

// Sum adds the amounts of records per currency.
func Sum(records []ledger.PaymentRecord) (usd, khr decimal.Decimal) {
	usd, khr = decimal.Zero, decimal.Zero
	for _, rec := range records {
		usd = usd.Add(rec.AmountUSD)
		khr = khr.Add(rec.AmountKHR)
	}
	return usd, khr
}
