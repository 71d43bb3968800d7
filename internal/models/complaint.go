package models

import "time"

// ComplaintStatus tracks the resolution workflow of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
)

// ComplaintCategory buckets complaints for triage.
type ComplaintCategory string

const (
	ComplaintCategoryElectrical ComplaintCategory = "ELECTRICAL"
	ComplaintCategoryPlumbing   ComplaintCategory = "PLUMBING"
	ComplaintCategoryCleaning   ComplaintCategory = "CLEANING"
	ComplaintCategoryNoise      ComplaintCategory = "NOISE"
	ComplaintCategoryOther      ComplaintCategory = "OTHER"
)

// Complaint represents a tenant-raised issue against a property.
type Complaint struct {
	ID             string            `db:"id" json:"id"`
	PropertyID     string            `db:"property_id" json:"property_id"`
	TenantID       string            `db:"tenant_id" json:"tenant_id"`
	Category       ComplaintCategory `db:"category" json:"category"`
	Subject        string            `db:"subject" json:"subject"`
	Description    string            `db:"description" json:"description"`
	PhotoPath      *string           `db:"photo_path" json:"photo_path,omitempty"`
	Status         ComplaintStatus   `db:"status" json:"status"`
	ResolutionNote *string           `db:"resolution_note" json:"resolution_note,omitempty"`
	ResolvedBy     *string           `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time        `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	PropertyID string
	TenantID   string
	Status     string
	Category   string
	Page       int
	PageSize   int
}
