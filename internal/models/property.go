package models

import (
	"time"

	"github.com/lib/pq"
)

// PropertyType classifies a listed property.
type PropertyType string

const (
	PropertyTypePG         PropertyType = "PG"
	PropertyTypeFlat       PropertyType = "FLAT"
	PropertyTypeHostel     PropertyType = "HOSTEL"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
)

// Property represents a rentable property owned by a landlord.
type Property struct {
	ID          string         `db:"id" json:"id"`
	LandlordID  string         `db:"landlord_id" json:"landlord_id"`
	ManagerID   *string        `db:"manager_id" json:"manager_id,omitempty"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Type        PropertyType   `db:"type" json:"type"`
	Address     string         `db:"address" json:"address"`
	City        string         `db:"city" json:"city"`
	State       string         `db:"state" json:"state"`
	Pincode     string         `db:"pincode" json:"pincode"`
	MinRent     int64          `db:"min_rent" json:"min_rent"`
	MaxRent     int64          `db:"max_rent" json:"max_rent"`
	Amenities   pq.StringArray `db:"amenities" json:"amenities"`
	Listed      bool           `db:"listed" json:"listed"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// PropertyFilter narrows public and admin property listings.
type PropertyFilter struct {
	LandlordID string
	ManagerID  string
	City       string
	Type       string
	MaxRent    int64
	ListedOnly bool
	Search     string
	Page       int
	PageSize   int
}

// PropertyDetail bundles a property with room availability counts.
type PropertyDetail struct {
	Property
	TotalRooms  int `db:"total_rooms" json:"total_rooms"`
	VacantBeds  int `db:"vacant_beds" json:"vacant_beds"`
	ReviewCount int `db:"review_count" json:"review_count"`
}
