package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type CreateBookingRequest struct {
	RoomID       snowflake.ID
	CheckInDate  time.Time
	CheckOutDate time.Time
	CheckInTime  *string
	// PricePerNight zero means "use the room's occupancy price table".
	PricePerNight int64
	Guests        int
}

type CreateReservationRequest struct {
	CustomerName     string
	CustomerDocument string
	DepositAmount    int64
	Bookings         []CreateBookingRequest
}

type Service interface {
	Create(ctx context.Context, req CreateReservationRequest) (*Reservation, error)
	Get(ctx context.Context, id snowflake.ID) (*Reservation, error)
	List(ctx context.Context, page pagination.Pagination) ([]*Reservation, error)
	Cancel(ctx context.Context, id snowflake.ID) error

	// CheckIn stamps the booking, opens its stay with chargeable
	// nights, and projects the room status flag to occupied.
	CheckIn(ctx context.Context, bookingID snowflake.ID) (*RoomBooking, error)
	CheckOut(ctx context.Context, bookingID snowflake.ID) (*RoomBooking, error)
	// Extend pushes the checkout date forward, topping up stay
	// nights when the guest is already checked in.
	Extend(ctx context.Context, bookingID snowflake.ID, newCheckOut time.Time) (*RoomBooking, error)
}
