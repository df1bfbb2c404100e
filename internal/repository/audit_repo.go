package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"uniadmin-console/internal/core"
	"uniadmin-console/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresAuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) core.AuditRepository {
	return &PostgresAuditRepository{db: db}
}

func (r *PostgresAuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	if entry.Details == nil {
		details = []byte("{}")
	}

	query := `
		INSERT INTO admin.audit_log (id, actor, action, target, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.Exec(ctx, query,
		entry.ID, entry.Actor, entry.Action, entry.Target, details, entry.CreatedAt)
	return err
}

func (r *PostgresAuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := `
		SELECT id, actor, action, target, details, created_at
		FROM admin.audit_log
		ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0, limit)
	for rows.Next() {
		var (
			entry   models.AuditEntry
			details []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Target, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode audit details for %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
