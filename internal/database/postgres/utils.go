package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/osse101/CropCycle_Go/internal/logger"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation
const pgUniqueViolation = "23505"

// SafeRollback rolls back a transaction and logs any error that isn't ErrTxClosed
func SafeRollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
	}
}

// parseID binds a string id to a UUID column.
// Lookups treat ids that fail to parse as unknown rather than as database errors.
func parseID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// nonNil keeps NOT NULL array columns from receiving NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// timestamptz converts an optional time for a nullable column
func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// timePtr reads a nullable column back as an optional UTC time
func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	u := ts.Time.UTC()
	return &u
}
