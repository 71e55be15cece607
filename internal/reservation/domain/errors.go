package domain

import "errors"

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrBookingNotFound      = errors.New("room booking not found")
	ErrNoBookings           = errors.New("reservation requires at least one room booking")
	ErrCheckOutBeforeIn     = errors.New("check_out_date is before check_in_date")
	ErrInvalidPrice         = errors.New("price_per_night must be positive")
	ErrReservationCancelled = errors.New("reservation is cancelled")
	ErrAlreadyCheckedIn     = errors.New("booking is already checked in")
	ErrNotCheckedIn         = errors.New("booking is not checked in")
	ErrAlreadyCheckedOut    = errors.New("booking is already checked out")
	ErrRoomHasActiveStay    = errors.New("room already has an active checked-in booking")
	ErrCancelAfterActivity  = errors.New("reservation has stay or payment activity; settle via checkout instead")
	ErrExtendNotForward     = errors.New("new check_out_date must be after the current one")
	ErrExtendConflict       = errors.New("extension overlaps another booking on the room")
)
