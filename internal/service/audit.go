package service

import (
	"context"
	"time"

	"uniadmin-console/internal/core"
	"uniadmin-console/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recordAudit stores an audit entry. The action it describes has already
// happened on the backend, so a storage failure is only logged.
func recordAudit(ctx context.Context, repo core.AuditRepository, logger zerolog.Logger, at time.Time, actor, action, target string, details map[string]any) {
	if repo == nil {
		return
	}

	entry := &models.AuditEntry{
		ID:        uuid.New().String(),
		Actor:     actor,
		Action:    action,
		Target:    target,
		Details:   details,
		CreatedAt: at.UTC(),
	}
	if err := repo.Record(ctx, entry); err != nil {
		logger.Warn().
			Err(err).
			Str("actor", actor).
			Str("action", action).
			Str("target", target).
			Msg("Failed to record audit entry")
	}
}
