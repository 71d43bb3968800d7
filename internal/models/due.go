package models

import "time"

// DueStatus tracks rent due settlement.
type DueStatus string

const (
	DueStatusPending DueStatus = "PENDING"
	DueStatusPartial DueStatus = "PARTIAL"
	DueStatusPaid    DueStatus = "PAID"
)

// PaymentMethod records how a due was settled.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodBank   PaymentMethod = "BANK"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// Due represents one month's rent due for a tenant.
type Due struct {
	ID         string         `db:"id" json:"id"`
	PropertyID string         `db:"property_id" json:"property_id"`
	TenantID   string         `db:"tenant_id" json:"tenant_id"`
	Period     string         `db:"period" json:"period"` // YYYY-MM
	Amount     int64          `db:"amount" json:"amount"`
	PaidAmount int64          `db:"paid_amount" json:"paid_amount"`
	Status     DueStatus      `db:"status" json:"status"`
	DueDate    time.Time      `db:"due_date" json:"due_date"`
	PaidAt     *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	Method     *PaymentMethod `db:"method" json:"method,omitempty"`
	ReceiptNo  *string        `db:"receipt_no" json:"receipt_no,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Outstanding reports the unpaid remainder.
func (d *Due) Outstanding() int64 {
	if rem := d.Amount - d.PaidAmount; rem > 0 {
		return rem
	}
	return 0
}

// DueFilter narrows due listings.
type DueFilter struct {
	PropertyID  string
	TenantID    string
	Period      string
	Status      string
	OverdueOnly bool
	Page        int
	PageSize    int
}

// DueDetail joins a due with tenant and room labels for statements.
type DueDetail struct {
	Due
	TenantName string  `db:"tenant_name" json:"tenant_name"`
	RoomNumber *string `db:"room_number" json:"room_number,omitempty"`
}
