package database

import (
	"database/sql"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/edgard/paybot/internal/ledger"
)

// paymentRow is the persisted shape of a ledger.PaymentRecord.
// Civil dates are stored as YYYY-MM-DD text in every dialect.
type paymentRow struct {
	ID          string          `db:"id"`
	ChatID      int64           `db:"chat_id"`
	ChatTitle   string          `db:"chat_title"`
	UserID      int64           `db:"user_id"`
	Username    string          `db:"username"`
	MessageText sql.NullString  `db:"message_text"`
	USDAmount   decimal.Decimal `db:"usd_amount"`
	RielAmount  decimal.Decimal `db:"riel_amount"`
	CivilDate   string          `db:"civil_date"`
	CreatedAt   time.Time       `db:"created_at"`
}

func newPaymentRow(r ledger.PaymentRecord) paymentRow {
	return paymentRow{
		ID:          r.ID,
		ChatID:      r.ConversationID,
		ChatTitle:   r.ConversationTitle,
		UserID:      r.ReporterID,
		Username:    r.ReporterName,
		MessageText: sql.NullString{String: r.SourceText, Valid: r.SourceText != ""},
		USDAmount:   r.AmountUSD,
		RielAmount:  r.AmountKHR,
		CivilDate:   r.CivilDate.String(),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func (p paymentRow) record() (ledger.PaymentRecord, error) {
	date, err := civil.ParseDate(p.CivilDate)
	if err != nil {
		return ledger.PaymentRecord{}, fmt.Errorf("payment %s has invalid civil date %q: %w", p.ID, p.CivilDate, err)
	}
	return ledger.PaymentRecord{
		ID:                p.ID,
		ConversationID:    p.ChatID,
		ConversationTitle: p.ChatTitle,
		ReporterID:        p.UserID,
		ReporterName:      p.Username,
		SourceText:        p.MessageText.String,
		AmountUSD:         p.USDAmount,
		AmountKHR:         p.RielAmount,
		CivilDate:         date,
		CreatedAt:         p.CreatedAt.UTC(),
	}, nil
}

func toRecords(rows []paymentRow) ([]ledger.PaymentRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	records := make([]ledger.PaymentRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
