package handlers

import (
	"net/http"

	"uniadmin-console/internal/database"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// ListAudit handles GET /api/v1/admin/audit?limit=
// @Summary      Audit trail
// @Description  List the most recent administrative actions
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Max entries (default 50, max 200)"
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/v1/admin/audit [get]
func (h *Handlers) ListAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, h.app, http.StatusServiceUnavailable, "Audit log is not available")
		return
	}

	limit := queryInt(r, "limit", defaultAuditLimit)
	if limit < 1 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.app.Logger.Error().
			Str("request_id", getRequestID(r.Context())).
			Err(err).
			Msg("Failed to read audit log")
		writeError(w, h.app, http.StatusInternalServerError, "Failed to fetch audit log")
		return
	}

	writeSuccess(w, h.app, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
	}, "Audit log retrieved successfully")
}

// GetDatabaseStats retrieves the audit store's pool statistics
// @Summary      Database Statistics
// @Description  Get the audit store's connection pool stats
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/v1/admin/db-stats [get]
func (h *Handlers) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.app.DB == nil {
		writeError(w, h.app, http.StatusServiceUnavailable, "Database is not configured")
		return
	}
	stats := database.GetConnectionStats(h.app.DB)
	writeSuccess(w, h.app, stats, "Database statistics retrieved")
}
