package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

// Repository methods take the gorm handle so callers can pass either
// the root connection or an open transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, r *Reservation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reservation, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Reservation, error)
	SetCancelled(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateTotal(ctx context.Context, db *gorm.DB, id snowflake.ID, total int64) error

	FindBooking(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RoomBooking, error)
	// BookingsForRoomBetween returns non-cancelled bookings whose
	// inclusive range overlaps [from, to], ordered by check-in date.
	BookingsForRoomBetween(ctx context.Context, db *gorm.DB, roomID snowflake.ID, from, to time.Time) ([]*RoomBooking, error)
	// ActiveBookingForRoom returns the booking currently checked in
	// on the room, if any.
	ActiveBookingForRoom(ctx context.Context, db *gorm.DB, roomID snowflake.ID) (*RoomBooking, error)
	SetBookingCheckedIn(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	SetBookingCheckedOut(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	UpdateBookingCheckOutDate(ctx context.Context, db *gorm.DB, id snowflake.ID, checkOut time.Time) error
}
