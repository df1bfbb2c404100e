// File: internal/models/user.go
package models

import (
	"strings"
	"time"
)

// Roles known to the backend. Values are stored lowercase.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Roles lists the assignable roles in display order.
var Roles = []string{RoleAdmin, RoleModerator, RoleUser}

// User is an account as returned by the backend API.
type User struct {
	ObjectID  string    `json:"_id,omitempty"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Date      time.Time `json:"date"`
	IsBlocked bool      `json:"isBlocked"`
	NIC       string    `json:"id,omitempty"` // the backend calls the identity number "id"
	Img       string    `json:"img,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Gender    *string   `json:"gender,omitempty"`
	Birthday  *string   `json:"birthday,omitempty"`
}

// Status returns the account status label shown to admins.
func (u *User) Status() string {
	if u.IsBlocked {
		return "Blocked"
	}
	return "Active"
}

// HasRole compares roles case-insensitively.
func (u *User) HasRole(role string) bool {
	return strings.EqualFold(u.Role, role)
}

// UserQuery holds the list filters of the users page.
type UserQuery struct {
	Search string
	Role   string
	Page   int
}

// UserPage is one page of the filtered user list.
type UserPage struct {
	Users      []User             `json:"users"`
	Pagination PaginationMetadata `json:"pagination"`
	RoleCounts map[string]int     `json:"role_counts"`
}

// UserDetails is the read-only detail view of one account.
type UserDetails struct {
	User    User            `json:"user"`
	Status  string          `json:"status"`
	Derived *DerivedDetails `json:"derived,omitempty"`
}

// UpdateRoleRequest represents a role change request
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// BlockStatus is returned after toggling a user's block flag.
type BlockStatus struct {
	UserName  string `json:"userName"`
	IsBlocked bool   `json:"isBlocked"`
	Status    string `json:"status"`
}
