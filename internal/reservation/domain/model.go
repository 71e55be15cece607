// Package domain holds the reservation aggregate: one reservation owns
// one or more room bookings, each with its own date range and nightly
// price.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Reservation struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerName     string       `gorm:"type:text;not null" json:"customer_name"`
	CustomerDocument string       `gorm:"type:text" json:"customer_document,omitempty"`
	TotalAmount      int64        `gorm:"not null" json:"total_amount"`
	DepositAmount    int64        `gorm:"not null;default:0" json:"deposit_amount"`
	// CancelledAt soft-deletes the reservation; rows are never hard
	// deleted while stay nights or payments reference them.
	CancelledAt *time.Time    `gorm:"index" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
	Bookings    []RoomBooking `gorm:"foreignKey:ReservationID" json:"bookings,omitempty"`
}

func (Reservation) TableName() string { return "reservations" }

func (r *Reservation) Cancelled() bool { return r.CancelledAt != nil }

type RoomBooking struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ReservationID snowflake.ID `gorm:"not null;index" json:"reservation_id"`
	RoomID        snowflake.ID `gorm:"not null;index" json:"room_id"`
	// CheckInDate and CheckOutDate are calendar dates (00:00 UTC).
	// The range is closed-inclusive on both ends for occupancy.
	CheckInDate  time.Time `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate time.Time `gorm:"not null;index" json:"check_out_date"`
	// CheckInTime overrides the property default, HH:MM wall clock.
	CheckInTime   *string `gorm:"type:text" json:"check_in_time,omitempty"`
	PricePerNight int64   `gorm:"not null" json:"price_per_night"`
	Guests        int     `gorm:"not null;default:1" json:"guests"`
	// CheckedInAt/CheckedOutAt are the authoritative per-booking
	// check-in state; the room status flag is a projection of these.
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (RoomBooking) TableName() string { return "room_bookings" }

// Nights is the chargeable night count: checkout day excluded.
func (b *RoomBooking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate) / (24 * time.Hour))
}

func (b *RoomBooking) Subtotal() int64 {
	return int64(b.Nights()) * b.PricePerNight
}

// ContainsDate reports whether d falls inside the booking's inclusive
// occupancy range.
func (b *RoomBooking) ContainsDate(d time.Time) bool {
	return !d.Before(b.CheckInDate) && !d.After(b.CheckOutDate)
}

func (b *RoomBooking) IsCheckedIn() bool {
	return b.CheckedInAt != nil && b.CheckedOutAt == nil
}
