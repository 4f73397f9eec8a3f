package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/internal/ledger"
)

// Store is a ledger backend with health and maintenance hooks.
type Store interface {
	ledger.Repository

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// RunSQLMaintenance performs backend housekeeping such as VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// Open builds the Store selected by cfg.Driver. The returned func releases
// the backend.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (Store, func(), error) {
	if cfg.Driver == DriverMemory {
		return NewMemoryStore(), func() {}, nil
	}

	db, err := NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewStore(db, logger), func() { CloseDB(db) }, nil
}

// sqlxStore implements Store on SQLite or PostgreSQL through sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by a connected sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store", "driver", db.DriverName()),
	}
}

const selectPayments = `
        SELECT id, chat_id, chat_title, user_id, username, message_text,
               usd_amount, riel_amount, civil_date, created_at
        FROM payments
`

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertPayments writes all records in one transaction.
func (s *sqlxStore) InsertPayments(ctx context.Context, records ...ledger.PaymentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving payments",
			"chat_id", records[0].ConversationID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	query := `
        INSERT INTO payments (id, chat_id, chat_title, user_id, username, message_text,
                              usd_amount, riel_amount, civil_date, created_at)
        VALUES (:id, :chat_id, :chat_title, :user_id, :username, :message_text,
                :usd_amount, :riel_amount, :civil_date, :created_at);
    `
	for _, rec := range records {
		if _, err := tx.NamedExecContext(ctx, query, newPaymentRow(rec)); err != nil {
			s.logger.ErrorContext(ctx, "Error saving payment",
				"chat_id", rec.ConversationID, "payment_id", rec.ID, "error", err)
			return fmt.Errorf("failed to save payment %s (chat %d): %w", rec.ID, rec.ConversationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "chat_id", records[0].ConversationID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Payments saved", "chat_id", records[0].ConversationID, "count", len(records))
	return nil
}

// PaymentsInRange returns the chat's payments whose civil date lies in r.
func (s *sqlxStore) PaymentsInRange(ctx context.Context, chatID int64, r ledger.DateRange) ([]ledger.PaymentRecord, error) {
	query := s.db.Rebind(selectPayments + `
        WHERE chat_id = ? AND civil_date >= ? AND civil_date <= ?
        ORDER BY created_at ASC, id ASC;
    `)

	var rows []paymentRow
	if err := s.db.SelectContext(ctx, &rows, query, chatID, r.Start.String(), r.End.String()); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching payments in range",
			"chat_id", chatID, "start", r.Start.String(), "end", r.End.String(), "error", err)
		return nil, fmt.Errorf("failed to fetch payments for chat %d: %w", chatID, err)
	}
	return toRecords(rows)
}

// AllPayments returns the chat's full history.
func (s *sqlxStore) AllPayments(ctx context.Context, chatID int64) ([]ledger.PaymentRecord, error) {
	query := s.db.Rebind(selectPayments + `
        WHERE chat_id = ?
        ORDER BY created_at ASC, id ASC;
    `)

	var rows []paymentRow
	if err := s.db.SelectContext(ctx, &rows, query, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching payment history", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to fetch payment history for chat %d: %w", chatID, err)
	}
	return toRecords(rows)
}

// RunSQLMaintenance optimizes the database: PRAGMA optimize and VACUUM on
// SQLite, ANALYZE on PostgreSQL.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	var statements []string
	switch s.db.DriverName() {
	case "sqlite":
		statements = []string{"PRAGMA optimize;", "VACUUM;"}
	default:
		statements = []string{"ANALYZE payments;"}
	}

	for _, stmt := range statements {
		s.logger.InfoContext(ctx, "Running SQL maintenance", "statement", stmt)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.ErrorContext(ctx, "SQL maintenance failed", "statement", stmt, "error", err)
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed")
	return nil
}
