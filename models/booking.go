package models

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
)

// Booking rows are mutated only through status transitions; dates, property
// and tenant are fixed at creation. There is no soft-delete column: the
// tenant-only removal path is a real delete.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PropertyID uint `gorm:"column:property_id;index;not null" json:"propertyId"`
	TenantID   uint `gorm:"column:tenant_id;index;not null" json:"tenantId"`

	// Calendar dates, normalized to midnight UTC before they ever reach
	// the database.
	StartDate time.Time `gorm:"column:start_date;not null" json:"startDate"`
	EndDate   time.Time `gorm:"column:end_date;not null" json:"endDate"`

	Status  string `gorm:"column:status;size:32;not null;default:pending;index" json:"status"`
	Message string `gorm:"column:message;type:text" json:"message,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Property Property `gorm:"foreignKey:PropertyID;references:ID" json:"property,omitempty"`
	Tenant   User     `gorm:"foreignKey:TenantID;references:ID" json:"tenant,omitempty"`
}

// BlockingStatuses are the booking states that count toward overlap
// conflicts. Rejected and cancelled bookings never block.
func BlockingStatuses() []string {
	return []string{BookingStatusPending, BookingStatusApproved}
}

func IsValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}
