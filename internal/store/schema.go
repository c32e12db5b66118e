package store

import (
	"context"
	"fmt"
)

// schema is the document layout the import jobs write into. Everything is
// JSONB plus the columns we query on.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS payments (
		id   TEXT PRIMARY KEY,
		data JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id                  TEXT PRIMARY KEY,
		confirmation_number TEXT,
		data                JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendees (
		id   TEXT PRIMARY KEY,
		data JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id          TEXT PRIMARY KEY,
		attendee_id TEXT,
		data        JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		invoice_number  TEXT PRIMARY KEY,
		invoice_type    TEXT NOT NULL,
		payment_id      TEXT,
		registration_id TEXT,
		data            JSONB NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS invoice_number_seq`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_confirmation
		ON registrations (confirmation_number)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_attendee
		ON tickets (attendee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_matched
		ON payments ((data->>'matchedRegistrationId'))
		WHERE data->>'matchedRegistrationId' IS NOT NULL`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	s.log.Debug().Msg("Schema ensured")
	return nil
}
