package models

import "time"

// RoomType describes sharing arrangement of a room.
type RoomType string

const (
	RoomTypeSingle RoomType = "SINGLE"
	RoomTypeDouble RoomType = "DOUBLE"
	RoomTypeTriple RoomType = "TRIPLE"
	RoomTypeDorm   RoomType = "DORM"
)

// Room represents one lettable room inside a property.
type Room struct {
	ID         string    `db:"id" json:"id"`
	PropertyID string    `db:"property_id" json:"property_id"`
	Number     string    `db:"number" json:"number"`
	Floor      int       `db:"floor" json:"floor"`
	Type       RoomType  `db:"type" json:"type"`
	Rent       int64     `db:"rent" json:"rent"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Occupied   int       `db:"occupied" json:"occupied"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Vacant reports remaining free beds.
func (r *Room) Vacant() int {
	if v := r.Capacity - r.Occupied; v > 0 {
		return v
	}
	return 0
}

// RoomFilter narrows room listings.
type RoomFilter struct {
	PropertyID string
	VacantOnly bool
	Floor      *int
	Page       int
	PageSize   int
}
