// Package ledger holds the append-only payment ledger: record types, the
// storage contract and the Ledger service that stamps civil dates and bounds
// every storage call with a timeout.
package ledger

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var (
	// ErrStorageUnavailable is returned when a durable read or write could not
	// complete. Callers may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidDraft is returned for drafts that can never be stored.
	ErrInvalidDraft = errors.New("invalid payment draft")
)

// PaymentRecord is an immutable ledger entry.
type PaymentRecord struct {
	ID                string
	ConversationID    int64
	ConversationTitle string
	ReporterID        int64
	ReporterName      string
	// SourceText is the text the amounts came from; empty when unknown.
	SourceText string
	AmountUSD  decimal.Decimal
	AmountKHR  decimal.Decimal
	// CivilDate is the reference-timezone date of CreatedAt, fixed at write time.
	CivilDate civil.Date
	CreatedAt time.Time
}

// Draft is what the ingestion path supplies; the ledger fills in identity and
// time.
type Draft struct {
	ConversationID    int64
	ConversationTitle string
	ReporterID        int64
	ReporterName      string
	SourceText        string
	AmountUSD         decimal.Decimal
	AmountKHR         decimal.Decimal
}

func (d Draft) validate() error {
	if d.ConversationID == 0 {
		return errors.Join(ErrInvalidDraft, errors.New("conversation id is zero"))
	}
	if d.AmountUSD.IsNegative() || d.AmountKHR.IsNegative() {
		return errors.Join(ErrInvalidDraft, errors.New("amounts must not be negative"))
	}
	return nil
}

// DateRange is an inclusive range of civil dates.
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

// Contains reports whether d lies within the range, bounds included.
func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Empty reports whether the range selects no dates.
func (r DateRange) Empty() bool {
	return r.Start.After(r.End)
}

// SingleDay returns the range covering only d.
func SingleDay(d civil.Date) DateRange {
	return DateRange{Start: d, End: d}
}
