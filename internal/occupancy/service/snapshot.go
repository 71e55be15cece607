package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/casalunahms/casaluna/internal/metrics"
	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	"github.com/casalunahms/casaluna/pkg/dates"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

// SnapshotDay freezes the given past date into one immutable
// RoomDailyStatus per room. Existing snapshots are left untouched, so
// the roll-over can be re-run safely after a partial failure.
func (e *Engine) SnapshotDay(ctx context.Context, date time.Time) (int, error) {
	now := e.clock.Now(ctx)
	today := dates.Date(now, e.loc)
	if !date.Before(today) {
		return 0, occupancydomain.ErrFutureSnapshot
	}

	written := 0
	page := pagination.Pagination{PageSize: 200}
	for {
		rooms, err := e.roomRepo.List(ctx, e.db, page)
		if err != nil {
			return written, err
		}
		for _, room := range rooms {
			ok, err := e.snapshotRoomDay(ctx, room, date)
			if err != nil {
				return written, err
			}
			if ok {
				written++
			}
		}
		next := page.Next(len(rooms))
		if next == nil {
			break
		}
		page.PageToken = next.NextPageToken
	}

	metrics.SnapshotsWritten.Add(float64(written))
	e.log.Info("occupancy day rolled over",
		zap.String("date", dates.Format(date)),
		zap.Int("written", written))
	return written, nil
}

func (e *Engine) snapshotRoomDay(ctx context.Context, room *roomdomain.Room, date time.Time) (bool, error) {
	existing, err := e.repo.FindByRoomAndDate(ctx, e.db, room.ID, date)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	snap := &occupancydomain.RoomDailyStatus{
		ID:             e.genID.Generate(),
		RoomID:         room.ID,
		Date:           date,
		Status:         roomdomain.StatusFree,
		CleaningStatus: "clean",
		CreatedAt:      e.clock.Now(ctx),
	}
	if room.Status == roomdomain.StatusDirty {
		snap.CleaningStatus = "dirty"
	}

	bookings, err := e.reservationRepo.BookingsForRoomBetween(ctx, e.db, room.ID, date, date)
	if err != nil {
		return false, err
	}
	var stayed *reservationBookingInfo
	for _, b := range bookings {
		if b.CheckedInAt != nil {
			res, err := e.reservationRepo.FindByID(ctx, e.db, b.ReservationID)
			if err != nil {
				return false, err
			}
			if res != nil {
				stayed = &reservationBookingInfo{
					reservationID: res.ID,
					guestName:     res.CustomerName,
					totalAmount:   res.TotalAmount,
				}
			} else {
				stayed = &reservationBookingInfo{reservationID: b.ReservationID}
			}
			break
		}
	}

	switch {
	case stayed != nil:
		snap.Status = roomdomain.StatusOccupied
		id := stayed.reservationID
		snap.ReservationID = &id
		snap.GuestName = stayed.guestName
		snap.TotalAmount = stayed.totalAmount
	case room.Status == roomdomain.StatusMaintenance:
		snap.Status = roomdomain.StatusMaintenance
	case room.Status == roomdomain.StatusCleaning:
		snap.Status = roomdomain.StatusCleaning
	}

	if err := e.repo.Insert(ctx, e.db, snap); err != nil {
		return false, err
	}
	return true, nil
}

type reservationBookingInfo struct {
	reservationID snowflake.ID
	guestName     string
	totalAmount   int64
}
