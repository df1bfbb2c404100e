package models

import "time"

// Audit actions.
const (
	ActionUpdateRole         = "user.update_role"
	ActionToggleBlock        = "user.toggle_block"
	ActionCreateVacancy      = "vacancy.create"
	ActionUpdateVacancy      = "vacancy.update"
	ActionToggleVisibility   = "vacancy.toggle_visibility"
	ActionUpdateProfile      = "profile.update"
	ActionUpdateProfileImage = "profile.update_image"
)

// AuditEntry records one administrative action.
type AuditEntry struct {
	ID        string         `json:"id" db:"id"`
	Actor     string         `json:"actor" db:"actor"`
	Action    string         `json:"action" db:"action"`
	Target    string         `json:"target" db:"target"`
	Details   map[string]any `json:"details,omitempty" db:"details"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
