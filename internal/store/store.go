package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"lodgetix/internal/logger"
	"lodgetix/pkg/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store reads imported payment and registration documents from Postgres.
// Documents are kept as JSONB in the shape they were imported in; attendees
// and tickets referenced by id live in their own tables so reference-shaped
// registrations can be resolved with batched lookups.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Store {
	return &Store{
		db:  db,
		log: logger.WithComponent("store"),
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// PaymentByID fetches one payment document by any of its identifiers.
func (s *Store) PaymentByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	const query = `
		SELECT data FROM payments
		WHERE id = $1
		   OR data->>'paymentId' = $1
		   OR data->>'transactionId' = $1
		   OR data->>'sourcePaymentId' = $1
		LIMIT 1`

	var payment models.PaymentRecord
	if err := s.getJSON(ctx, &payment, query, id); err != nil {
		return nil, fmt.Errorf("store: payment %s: %w", id, err)
	}
	return &payment, nil
}

// RegistrationByID fetches one registration document.
func (s *Store) RegistrationByID(ctx context.Context, id string) (*models.RegistrationRecord, error) {
	const query = `
		SELECT data FROM registrations
		WHERE id = $1 OR data->>'registrationId' = $1
		LIMIT 1`

	var reg models.RegistrationRecord
	if err := s.getJSON(ctx, &reg, query, id); err != nil {
		return nil, fmt.Errorf("store: registration %s: %w", id, err)
	}
	return &reg, nil
}

// RegistrationByConfirmation fetches a registration by confirmation number.
func (s *Store) RegistrationByConfirmation(ctx context.Context, confirmation string) (*models.RegistrationRecord, error) {
	const query = `
		SELECT data FROM registrations
		WHERE confirmation_number = $1
		LIMIT 1`

	var reg models.RegistrationRecord
	if err := s.getJSON(ctx, &reg, query, confirmation); err != nil {
		return nil, fmt.Errorf("store: registration confirmation %s: %w", confirmation, err)
	}
	return &reg, nil
}

// AttendeesByIDs fetches attendee documents in one batched query. Missing
// ids are skipped, not errors; the association cascade copes with gaps.
func (s *Store) AttendeesByIDs(ctx context.Context, ids []string) ([]models.AttendeeRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT data FROM attendees WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: attendees: %w", err)
	}

	attendees, err := selectDocs[models.AttendeeRecord](ctx, s.db, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: attendees: %w", err)
	}
	return attendees, nil
}

// TicketsByIDs fetches ticket documents in one batched query.
func (s *Store) TicketsByIDs(ctx context.Context, ids []string) ([]models.TicketRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT data FROM tickets WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: tickets: %w", err)
	}

	tickets, err := selectDocs[models.TicketRecord](ctx, s.db, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: tickets: %w", err)
	}
	return tickets, nil
}

// TicketsByAttendeeIDs fetches every ticket attached to the given attendees.
func (s *Store) TicketsByAttendeeIDs(ctx context.Context, attendeeIDs []string) ([]models.TicketRecord, error) {
	if len(attendeeIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT data FROM tickets WHERE attendee_id IN (?)`, attendeeIDs)
	if err != nil {
		return nil, fmt.Errorf("store: tickets by attendee: %w", err)
	}

	tickets, err := selectDocs[models.TicketRecord](ctx, s.db, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: tickets by attendee: %w", err)
	}
	return tickets, nil
}

// MatchedPayment is one row of the batch worklist: a completed payment and
// the registration it was matched to.
type MatchedPayment struct {
	PaymentID      string
	RegistrationID string
}

// MatchedPayments lists completed payments that have been matched to a
// registration, for batch generation. A zero limit means no limit.
func (s *Store) MatchedPayments(ctx context.Context, limit int) ([]MatchedPayment, error) {
	query := `
		SELECT id, data->>'matchedRegistrationId' AS registration_id
		FROM payments
		WHERE data->>'matchedRegistrationId' IS NOT NULL
		  AND lower(coalesce(data->>'status', 'completed'))
		      IN ('paid', 'succeeded', 'success', 'complete', 'completed')
		ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: matched payments: %w", err)
	}
	defer rows.Close()

	var matched []MatchedPayment
	for rows.Next() {
		var m MatchedPayment
		if err := rows.Scan(&m.PaymentID, &m.RegistrationID); err != nil {
			return nil, fmt.Errorf("store: matched payments: %w", err)
		}
		matched = append(matched, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: matched payments: %w", err)
	}

	s.log.Debug().Int("count", len(matched)).Msg("Matched payments listed")
	return matched, nil
}

// SaveInvoice upserts a generated invoice document keyed by invoice number.
func (s *Store) SaveInvoice(ctx context.Context, inv *models.Invoice) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("store: save invoice: %w", err)
	}

	const query = `
		INSERT INTO invoices (invoice_number, invoice_type, payment_id, registration_id, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (invoice_number)
		DO UPDATE SET data = EXCLUDED.data, payment_id = EXCLUDED.payment_id, registration_id = EXCLUDED.registration_id`

	if _, err := s.db.ExecContext(ctx, query, inv.InvoiceNumber, inv.InvoiceType, inv.PaymentID, inv.RegistrationID, data); err != nil {
		return fmt.Errorf("store: save invoice %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}

// NextInvoiceSequence reserves the next value of the invoice numbering
// sequence.
func (s *Store) NextInvoiceSequence(ctx context.Context) (int, error) {
	var seq int
	if err := s.db.GetContext(ctx, &seq, `SELECT nextval('invoice_number_seq')`); err != nil {
		return 0, fmt.Errorf("store: invoice sequence: %w", err)
	}
	return seq, nil
}

func (s *Store) getJSON(ctx context.Context, dest any, query string, args ...any) error {
	var raw []byte
	if err := s.db.GetContext(ctx, &raw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, dest)
}

// selectDocs runs a query returning JSONB documents and decodes each row.
func selectDocs[T any](ctx context.Context, db *sqlx.DB, query string, args ...any) ([]T, error) {
	var raws [][]byte
	if err := db.SelectContext(ctx, &raws, query, args...); err != nil {
		return nil, err
	}

	docs := make([]T, 0, len(raws))
	for _, raw := range raws {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
