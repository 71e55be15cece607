// Package domain holds the stay-night ledger: one chargeable record per
// occupied night. This table, not the reservation's aggregate total, is
// the ground truth for what is owed.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrStayNotFound       = errors.New("stay not found")
	ErrNightAlreadyExists = errors.New("night already generated for this date")
	ErrNoUnpaidNights     = errors.New("reservation has no outstanding nights")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
)

// Stay is the operational record of one occupancy, created at check-in.
type Stay struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ReservationID snowflake.ID `gorm:"not null;index" json:"reservation_id"`
	BookingID     snowflake.ID `gorm:"not null;uniqueIndex" json:"booking_id"`
	RoomID        snowflake.ID `gorm:"not null;index" json:"room_id"`
	StartedAt     time.Time    `gorm:"not null" json:"started_at"`
	EndedAt       *time.Time   `json:"ended_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Stay) TableName() string { return "stays" }

// StayNight is one chargeable night. Unique per (stay, date); only ever
// mutated to flip IsPaid, never deleted while the stay exists.
type StayNight struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	StayID        snowflake.ID `gorm:"not null;index;uniqueIndex:idx_stay_date,priority:1" json:"stay_id"`
	ReservationID snowflake.ID `gorm:"not null;index" json:"reservation_id"`
	RoomID        snowflake.ID `gorm:"not null;index" json:"room_id"`
	Date          time.Time    `gorm:"not null;uniqueIndex:idx_stay_date,priority:2" json:"date"`
	Price         int64        `gorm:"not null" json:"price"`
	IsPaid        bool         `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (StayNight) TableName() string { return "stay_nights" }

// AppliedResult reports what a payment application did to the ledger.
type AppliedResult struct {
	NightsPaid    int   `json:"nights_paid"`
	AmountApplied int64 `json:"amount_applied"`
	// Outstanding is sum(night.price) - sum(payments), computed
	// independently of the paid flags so partial and overpayment are
	// tolerated. Negative means overpaid.
	Outstanding int64 `json:"outstanding"`
}

// Balance is the reservation's ledger position.
type Balance struct {
	TotalOwed   int64 `json:"total_owed"`
	TotalPaid   int64 `json:"total_paid"`
	Outstanding int64 `json:"outstanding"`
}
