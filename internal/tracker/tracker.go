// Package tracker ties amount extraction, the ledger, aggregation and export
// together for the message-dispatch layer.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"github.com/edgard/paybot/internal/currency"
	"github.com/edgard/paybot/internal/export"
	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/metrics"
	"github.com/edgard/paybot/internal/report"
)

// ManualPrefix marks source texts recorded through an explicit add.
const ManualPrefix = "Manual entry: "

// Entry is an inbound piece of text to record.
type Entry struct {
	ConversationID    int64
	ConversationTitle string
	ReporterID        int64
	ReporterName      string
	Text              string
	// Manual is set for explicit adds.
	Manual bool
}

// Recorded is the outcome of Record. Records is empty when no amount was
// detected.
type Recorded struct {
	Matches []currency.Match
	Records []ledger.PaymentRecord
}

// Export is a rendered workbook ready for upload.
type Export struct {
	Filename string
	Data     []byte
	Count    int
	Period   report.Period
}

// Service is the entry point used by the bot handlers.
type Service struct {
	ledger *ledger.Ledger
	agg    *report.Aggregator
	logger *slog.Logger
}

// New creates a Service over l.
func New(l *ledger.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		ledger: l,
		agg:    report.New(l),
		logger: logger.With("component", "tracker"),
	}
}

// Today returns the current civil date in the reference timezone.
func (s *Service) Today() civil.Date {
	return s.ledger.Today()
}

// Location returns the reference timezone.
func (s *Service) Location() *time.Location {
	return s.ledger.Location()
}

// Detect extracts the amounts in text without recording them.
func (s *Service) Detect(text string) []currency.Match {
	return currency.ExtractAll(text)
}

// Record extracts the amounts in e.Text and appends one record per amount in
// a single atomic write.
func (s *Service) Record(ctx context.Context, e Entry) (Recorded, error) {
	matches := currency.ExtractAll(e.Text)
	if len(matches) == 0 {
		return Recorded{}, nil
	}

	source := e.Text
	if e.Manual {
		source = ManualPrefix + e.Text
	}

	drafts := make([]ledger.Draft, 0, len(matches))
	for _, m := range matches {
		d := ledger.Draft{
			ConversationID:    e.ConversationID,
			ConversationTitle: e.ConversationTitle,
			ReporterID:        e.ReporterID,
			ReporterName:      e.ReporterName,
			SourceText:        source,
		}
		switch m.Kind {
		case currency.USD:
			d.AmountUSD = m.Amount
		case currency.KHR:
			d.AmountKHR = m.Amount
		}
		drafts = append(drafts, d)
	}

	records, err := s.ledger.AppendAll(ctx, drafts...)
	if err != nil {
		return Recorded{Matches: matches}, err
	}

	for _, m := range matches {
		metrics.AmountDetected(m.Kind.String(), m.Marker.String())
	}
	s.logger.InfoContext(ctx, "Payments recorded",
		"chat_id", e.ConversationID, "user_id", e.ReporterID, "count", len(records), "manual", e.Manual)
	return Recorded{Matches: matches, Records: records}, nil
}

// Summarize totals the conversation's payments over p.
func (s *Service) Summarize(ctx context.Context, conversationID int64, p report.Period) (report.Summary, error) {
	return s.agg.Summarize(ctx, conversationID, p)
}

// DailySummary lists the payments recorded on date.
func (s *Service) DailySummary(ctx context.Context, conversationID int64, date civil.Date) (report.DailySummary, error) {
	return s.agg.SummarizeDetailed(ctx, conversationID, date)
}

// Export renders the conversation's payments over p as a workbook.
func (s *Service) Export(ctx context.Context, conversationID int64, p report.Period) (Export, error) {
	records, _, err := s.agg.Records(ctx, conversationID, p)
	if err != nil {
		return Export{}, err
	}

	data, err := export.Render(records, p.Label(), export.WithLocation(s.ledger.Location()))
	if err != nil {
		return Export{}, fmt.Errorf("failed to render export: %w", err)
	}
	metrics.ExportRendered()

	s.logger.InfoContext(ctx, "Export rendered",
		"chat_id", conversationID, "period", string(p), "records", len(records), "bytes", len(data))
	return Export{
		Filename: export.Filename(p.Short(), s.agg.Today()),
		Data:     data,
		Count:    len(records),
		Period:   p,
	}, nil
}
