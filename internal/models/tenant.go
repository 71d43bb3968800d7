package models

import "time"

// Tenant represents an occupant assigned to a room.
type Tenant struct {
	ID         string     `db:"id" json:"id"`
	PropertyID string     `db:"property_id" json:"property_id"`
	RoomID     *string    `db:"room_id" json:"room_id,omitempty"`
	FullName   string     `db:"full_name" json:"full_name"`
	Email      string     `db:"email" json:"email"`
	Phone      string     `db:"phone" json:"phone"`
	Rent       int64      `db:"rent" json:"rent"`
	Deposit    int64      `db:"deposit" json:"deposit"`
	MovedInAt  time.Time  `db:"moved_in_at" json:"moved_in_at"`
	MovedOutAt *time.Time `db:"moved_out_at" json:"moved_out_at,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// TenantFilter narrows tenant listings.
type TenantFilter struct {
	PropertyID string
	RoomID     string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
}
