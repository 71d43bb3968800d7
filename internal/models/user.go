package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleLandlord   UserRole = "LANDLORD"
	RoleSubAdmin   UserRole = "SUBADMIN"
	RoleManager    UserRole = "MANAGER"
	RoleTenant     UserRole = "TENANT"
)

// Sub-admin permission keys a landlord can grant.
const (
	PermissionProperties    = "properties"
	PermissionRooms         = "rooms"
	PermissionTenants       = "tenants"
	PermissionExpenses      = "expenses"
	PermissionAnnouncements = "announcements"
	PermissionComplaints    = "complaints"
	PermissionDocuments     = "documents"
	PermissionDues          = "dues"
	PermissionVisits        = "visits"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FullName     string         `db:"full_name" json:"full_name"`
	Phone        string         `db:"phone" json:"phone"`
	Role         UserRole       `db:"role" json:"role"`
	LandlordID   *string        `db:"landlord_id" json:"landlord_id,omitempty"`
	Permissions  pq.StringArray `db:"permissions" json:"permissions"`
	Active       bool           `db:"active" json:"active"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasPermission reports whether the user may act on the named module.
// Landlords and superadmins implicitly hold every permission.
func (u *User) HasPermission(key string) bool {
	switch u.Role {
	case RoleSuperAdmin, RoleLandlord:
		return true
	}
	for _, p := range u.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

// Staff reports whether the account operates under a landlord and
// inherits that landlord's standing.
func (u *User) Staff() bool {
	return u.Role == RoleSubAdmin || u.Role == RoleManager
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	LandlordID string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
