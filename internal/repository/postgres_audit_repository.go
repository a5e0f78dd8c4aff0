package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
)

// PostgresAuditRepository persists gatekeeper decisions. Writes arrive in
// batches from the audit worker, never from the request path.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates an audit log backed by PostgreSQL.
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{pool: pool}
}

// InsertBatch writes a batch of audit entries in one round trip.
func (r *PostgresAuditRepository) InsertBatch(ctx context.Context, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		roles := make([]string, len(e.Roles))
		for i, role := range e.Roles {
			roles[i] = string(role)
		}
		batch.Queue(`
			INSERT INTO access_audit (id, occurred_at, subject, path, roles, state, redirect_to, request_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.OccurredAt, e.Subject, e.Path, roles, string(e.State), e.RedirectTo, e.RequestID,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert audit batch: %w", err)
		}
	}
	return nil
}

// DeleteOlderThan removes entries past the retention window and returns the
// number deleted.
func (r *PostgresAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM access_audit WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}
