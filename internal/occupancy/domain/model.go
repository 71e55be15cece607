// Package domain holds the occupancy timeline types: the immutable
// per-day historical snapshot (the fact) and the derived per-day
// classification (the projection, recomputed on read, never persisted).
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
)

var (
	ErrSnapshotExists = errors.New("snapshot already exists for this room and date")
	ErrFutureSnapshot = errors.New("snapshots are only written for past dates")
)

type OccupancyStatus string

const (
	StatusFree            OccupancyStatus = "free"
	StatusReserved        OccupancyStatus = "reserved"
	StatusOccupied        OccupancyStatus = "occupied"
	StatusPendingCheckout OccupancyStatus = "pending_checkout"
	StatusCleaning        OccupancyStatus = "cleaning"
	StatusMaintenance     OccupancyStatus = "maintenance"
)

// RoomDailyStatus is the authoritative record of what a room's day
// actually was. Written once the date has passed and never recomputed
// from live reservation state, which may since have been edited.
type RoomDailyStatus struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	RoomID snowflake.ID `gorm:"not null;uniqueIndex:idx_room_date,priority:1" json:"room_id"`
	Date   time.Time    `gorm:"not null;uniqueIndex:idx_room_date,priority:2" json:"date"`
	Status roomdomain.RoomStatus `gorm:"type:text;not null" json:"status"`
	CleaningStatus string        `gorm:"type:text" json:"cleaning_status,omitempty"`
	ReservationID  *snowflake.ID `gorm:"index" json:"reservation_id,omitempty"`
	GuestName      string        `gorm:"type:text" json:"guest_name,omitempty"`
	TotalAmount    int64         `gorm:"not null;default:0" json:"total_amount"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
}

func (RoomDailyStatus) TableName() string { return "room_daily_statuses" }

// MappedStatus folds a stored room status into the occupancy statuses a
// past day can present.
func (s *RoomDailyStatus) MappedStatus() OccupancyStatus {
	switch s.Status {
	case roomdomain.StatusOccupied:
		return StatusOccupied
	case roomdomain.StatusMaintenance:
		return StatusMaintenance
	case roomdomain.StatusCleaning:
		return StatusCleaning
	}
	return StatusFree
}

// DayStatus is one classified calendar day for a room.
type DayStatus struct {
	Date          time.Time       `json:"date"`
	Status        OccupancyStatus `json:"status"`
	BookingID     *snowflake.ID   `json:"booking_id,omitempty"`
	ReservationID *snowflake.ID   `json:"reservation_id,omitempty"`
	// Gap marks a past day with no snapshot: classified free by
	// deliberate, auditable default.
	Gap bool `json:"-"`
}

// StatusRange is a run of consecutive days with the same status,
// produced for calendar display. CheckInOn/CheckOutOn carry the marker
// dates when the range's booking starts or ends inside it.
type StatusRange struct {
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"`
	Status        OccupancyStatus `json:"status"`
	BookingID     *snowflake.ID   `json:"booking_id,omitempty"`
	ReservationID *snowflake.ID   `json:"reservation_id,omitempty"`
	CheckInOn     *time.Time      `json:"check_in_on,omitempty"`
	CheckOutOn    *time.Time      `json:"check_out_on,omitempty"`
}
