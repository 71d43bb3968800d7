package models

import "time"

// PropertyReviewStatus gates which public reviews are shown.
type PropertyReviewStatus string

const (
	PropertyReviewPending  PropertyReviewStatus = "PENDING"
	PropertyReviewApproved PropertyReviewStatus = "APPROVED"
	PropertyReviewHidden   PropertyReviewStatus = "HIDDEN"
)

// PropertyReview represents a public rating left on a listed property.
type PropertyReview struct {
	ID           string               `db:"id" json:"id"`
	PropertyID   string               `db:"property_id" json:"property_id"`
	ReviewerName string               `db:"reviewer_name" json:"reviewer_name"`
	Rating       int                  `db:"rating" json:"rating"`
	Comment      string               `db:"comment" json:"comment"`
	Status       PropertyReviewStatus `db:"status" json:"status"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `db:"updated_at" json:"updated_at"`
}

// PropertyReviewFilter narrows review listings.
type PropertyReviewFilter struct {
	PropertyID string
	Status     string
	MinRating  int
	Page       int
	PageSize   int
}

// PropertyRatingSummary aggregates approved review ratings.
type PropertyRatingSummary struct {
	PropertyID string  `db:"property_id" json:"property_id"`
	Average    float64 `db:"average" json:"average"`
	Count      int     `db:"count" json:"count"`
}
