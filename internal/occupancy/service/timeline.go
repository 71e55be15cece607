// Package service implements the occupancy timeline engine: per-day
// classification of a room's calendar, snapshot-backed for past dates
// and derived from live bookings for today and the future.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	"github.com/casalunahms/casaluna/internal/config"
	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	"github.com/casalunahms/casaluna/pkg/dates"
)

type Engine struct {
	db  *gorm.DB
	log *zap.Logger

	loc             *time.Location
	defaultCheckIn  string
	defaultCheckOut string

	genID           *snowflake.Node
	clock           clock.Clock
	repo            occupancydomain.Repository
	roomRepo        roomdomain.Repository
	reservationRepo reservationdomain.Repository
}

type EngineParam struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Cfg             config.Config
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            occupancydomain.Repository
	RoomRepo        roomdomain.Repository
	ReservationRepo reservationdomain.Repository
}

func NewEngine(p EngineParam) (*Engine, error) {
	loc, err := time.LoadLocation(p.Cfg.Hotel.Timezone)
	if err != nil {
		return nil, err
	}
	return &Engine{
		db:  p.DB,
		log: p.Log.Named("occupancy.engine"),

		loc:             loc,
		defaultCheckIn:  p.Cfg.Hotel.DefaultCheckInTime,
		defaultCheckOut: p.Cfg.Hotel.DefaultCheckOutTime,

		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		roomRepo:        p.RoomRepo,
		reservationRepo: p.ReservationRepo,
	}, nil
}

// Timeline classifies every date in [from, to] for one room.
func (e *Engine) Timeline(ctx context.Context, roomID snowflake.ID, from, to time.Time) ([]occupancydomain.DayStatus, error) {
	room, err := e.roomRepo.FindByID(ctx, e.db, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, roomdomain.ErrRoomNotFound
	}

	bookings, err := e.reservationRepo.BookingsForRoomBetween(ctx, e.db, roomID, from, to)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now(ctx)
	today := dates.Date(now, e.loc)

	snapshots := map[time.Time]*occupancydomain.RoomDailyStatus{}
	if from.Before(today) {
		snapEnd := to
		if !snapEnd.Before(today) {
			snapEnd = today.AddDate(0, 0, -1)
		}
		snaps, err := e.repo.ListByRoomBetween(ctx, e.db, roomID, from, snapEnd)
		if err != nil {
			return nil, err
		}
		for _, s := range snaps {
			snapshots[s.Date.UTC()] = s
		}
	}

	var days []occupancydomain.DayStatus
	for d := from; !d.After(to); d = dates.Next(d) {
		days = append(days, e.classifyDay(d, today, now, room, bookings, snapshots))
	}
	return days, nil
}

// BookingsBetween exposes the live bookings backing a timeline so
// callers can fold days into ranges with check-in/out markers.
func (e *Engine) BookingsBetween(ctx context.Context, roomID snowflake.ID, from, to time.Time) ([]*reservationdomain.RoomBooking, error) {
	return e.reservationRepo.BookingsForRoomBetween(ctx, e.db, roomID, from, to)
}

// classifyDay never fails: dates outside any booking and past dates
// with no snapshot degrade to free.
func (e *Engine) classifyDay(
	d, today time.Time,
	now time.Time,
	room *roomdomain.Room,
	bookings []*reservationdomain.RoomBooking,
	snapshots map[time.Time]*occupancydomain.RoomDailyStatus,
) occupancydomain.DayStatus {
	day := occupancydomain.DayStatus{Date: d, Status: occupancydomain.StatusFree}

	if d.Before(today) {
		snap, ok := snapshots[d.UTC()]
		if !ok {
			day.Gap = true
			return day
		}
		day.Status = snap.MappedStatus()
		day.ReservationID = snap.ReservationID
		return day
	}

	booking := activeBookingFor(bookings, d)
	if booking == nil {
		switch room.Status {
		case roomdomain.StatusMaintenance:
			day.Status = occupancydomain.StatusMaintenance
		case roomdomain.StatusCleaning:
			day.Status = occupancydomain.StatusCleaning
		}
		return day
	}

	day.BookingID = &booking.ID
	day.ReservationID = &booking.ReservationID

	switch {
	case d.After(booking.CheckOutDate):
		day.Status = occupancydomain.StatusFree
	case booking.CheckedOutAt != nil:
		// Stay already settled; the remainder of the range is free.
		day.Status = occupancydomain.StatusFree
	case !booking.IsCheckedIn():
		// The whole range reads reserved until the guest arrives,
		// independent of where d sits inside it.
		day.Status = occupancydomain.StatusReserved
	case d.Before(booking.CheckOutDate):
		day.Status = occupancydomain.StatusOccupied
	default:
		// d is the checkout day of a checked-in stay.
		checkOutInstant, err := dates.InstantOn(booking.CheckOutDate, e.defaultCheckOut, e.loc)
		if err == nil && now.Before(checkOutInstant) {
			day.Status = occupancydomain.StatusPendingCheckout
		} else {
			day.Status = occupancydomain.StatusFree
		}
	}
	return day
}

// activeBookingFor picks the booking whose inclusive range contains d,
// preferring a checked-in stay when ranges overlap.
func activeBookingFor(bookings []*reservationdomain.RoomBooking, d time.Time) *reservationdomain.RoomBooking {
	var candidate *reservationdomain.RoomBooking
	for _, b := range bookings {
		if !b.ContainsDate(d) {
			continue
		}
		if b.IsCheckedIn() {
			return b
		}
		if candidate == nil {
			candidate = b
		}
	}
	return candidate
}

// Compress folds consecutive days with the same status into ranges. A
// range keeps the booking active on its first day; expanding the
// ranges day by day reproduces the input classification exactly.
func Compress(days []occupancydomain.DayStatus, bookings []*reservationdomain.RoomBooking) []occupancydomain.StatusRange {
	byID := make(map[snowflake.ID]*reservationdomain.RoomBooking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	var ranges []occupancydomain.StatusRange
	for _, day := range days {
		if n := len(ranges); n > 0 && ranges[n-1].Status == day.Status {
			ranges[n-1].End = day.Date
			continue
		}
		r := occupancydomain.StatusRange{
			Start:         day.Date,
			End:           day.Date,
			Status:        day.Status,
			BookingID:     day.BookingID,
			ReservationID: day.ReservationID,
		}
		ranges = append(ranges, r)
	}

	// Markers belong to the exact check-in/check-out dates even when
	// those days sit inside a longer visual range.
	for i := range ranges {
		r := &ranges[i]
		if r.BookingID == nil {
			continue
		}
		b, ok := byID[*r.BookingID]
		if !ok {
			continue
		}
		if !b.CheckInDate.Before(r.Start) && !b.CheckInDate.After(r.End) {
			d := b.CheckInDate
			r.CheckInOn = &d
		}
		if !b.CheckOutDate.Before(r.Start) && !b.CheckOutDate.After(r.End) {
			d := b.CheckOutDate
			r.CheckOutOn = &d
		}
	}
	return ranges
}
