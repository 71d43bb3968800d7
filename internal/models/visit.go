package models

import "time"

// VisitStatus tracks a scheduled property visit request.
type VisitStatus string

const (
	VisitStatusRequested VisitStatus = "REQUESTED"
	VisitStatusConfirmed VisitStatus = "CONFIRMED"
	VisitStatusCompleted VisitStatus = "COMPLETED"
	VisitStatusCancelled VisitStatus = "CANCELLED"
)

// VisitRequest represents a prospective tenant's scheduled visit.
type VisitRequest struct {
	ID          string      `db:"id" json:"id"`
	PropertyID  string      `db:"property_id" json:"property_id"`
	VisitorName string      `db:"visitor_name" json:"visitor_name"`
	Phone       string      `db:"phone" json:"phone"`
	Email       string      `db:"email" json:"email"`
	SlotAt      time.Time   `db:"slot_at" json:"slot_at"`
	Status      VisitStatus `db:"status" json:"status"`
	Note        string      `db:"note" json:"note"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// VisitFilter narrows visit listings.
type VisitFilter struct {
	PropertyID string
	Status     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
