package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
	occupancyrepo "github.com/casalunahms/casaluna/internal/occupancy/repository"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	reservationrepo "github.com/casalunahms/casaluna/internal/reservation/repository"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	roomrepo "github.com/casalunahms/casaluna/internal/room/repository"
	"github.com/casalunahms/casaluna/pkg/dates"
)

type engineFixture struct {
	engine *Engine
	db     *gorm.DB
	node   *snowflake.Node
}

func newEngineFixture(t *testing.T, now time.Time) *engineFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&roomdomain.Room{},
		&reservationdomain.Reservation{},
		&reservationdomain.RoomBooking{},
		&occupancydomain.RoomDailyStatus{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	engine := &Engine{
		db:  db,
		log: zap.NewNop(),

		loc:             time.UTC,
		defaultCheckIn:  "15:00",
		defaultCheckOut: "12:00",

		genID:           node,
		clock:           clock.Fixed{T: now},
		repo:            occupancyrepo.Provide(),
		roomRepo:        roomrepo.Provide(),
		reservationRepo: reservationrepo.Provide(),
	}
	return &engineFixture{engine: engine, db: db, node: node}
}

func (f *engineFixture) setNow(now time.Time) {
	f.engine.clock = clock.Fixed{T: now}
}

func (f *engineFixture) createRoom(t *testing.T, number string, status roomdomain.RoomStatus) *roomdomain.Room {
	t.Helper()
	room := &roomdomain.Room{
		ID:          f.node.Generate(),
		Number:      number,
		BedsCount:   1,
		MaxCapacity: 2,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(room).Error)
	return room
}

func (f *engineFixture) createBooking(t *testing.T, roomID snowflake.ID, checkIn, checkOut string, checkedIn bool) *reservationdomain.RoomBooking {
	t.Helper()
	in, err := dates.Parse(checkIn)
	require.NoError(t, err)
	out, err := dates.Parse(checkOut)
	require.NoError(t, err)

	res := &reservationdomain.Reservation{
		ID:           f.node.Generate(),
		CustomerName: "Marta Jaramillo",
		TotalAmount:  150000,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(res).Error)

	checkInTime := "15:00"
	booking := &reservationdomain.RoomBooking{
		ID:            f.node.Generate(),
		ReservationID: res.ID,
		RoomID:        roomID,
		CheckInDate:   in,
		CheckOutDate:  out,
		CheckInTime:   &checkInTime,
		PricePerNight: 50000,
		Guests:        1,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if checkedIn {
		at := in.Add(16 * time.Hour)
		booking.CheckedInAt = &at
	}
	require.NoError(t, f.db.Create(booking).Error)
	return booking
}

func (f *engineFixture) statusOn(t *testing.T, roomID snowflake.ID, day string) occupancydomain.OccupancyStatus {
	t.Helper()
	d, err := dates.Parse(day)
	require.NoError(t, err)
	days, err := f.engine.Timeline(context.Background(), roomID, d, d)
	require.NoError(t, err)
	require.Len(t, days, 1)
	return days[0].Status
}

func TestClassifyCheckedInStayScenario(t *testing.T) {
	// Room 101, booking 2025-01-10 -> 2025-01-13, checked in,
	// default checkout 12:00.
	now := time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	room := f.createRoom(t, "101", roomdomain.StatusOccupied)
	f.createBooking(t, room.ID, "2025-01-10", "2025-01-13", true)

	assert.Equal(t, occupancydomain.StatusOccupied, f.statusOn(t, room.ID, "2025-01-10"))
	assert.Equal(t, occupancydomain.StatusOccupied, f.statusOn(t, room.ID, "2025-01-12"))

	// On the checkout day the stay lingers until the cutoff.
	f.setNow(time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, occupancydomain.StatusPendingCheckout, f.statusOn(t, room.ID, "2025-01-13"))

	f.setNow(time.Date(2025, 1, 13, 13, 0, 0, 0, time.UTC))
	assert.Equal(t, occupancydomain.StatusFree, f.statusOn(t, room.ID, "2025-01-13"))
	assert.Equal(t, occupancydomain.StatusFree, f.statusOn(t, room.ID, "2025-01-14"))
}

func TestClassifyReservedWholeRange(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	room := f.createRoom(t, "102", roomdomain.StatusReserved)
	f.createBooking(t, room.ID, "2025-01-10", "2025-01-13", false)

	// Reserved across the inclusive range, independent of position.
	for _, day := range []string{"2025-01-10", "2025-01-11", "2025-01-12", "2025-01-13"} {
		assert.Equal(t, occupancydomain.StatusReserved, f.statusOn(t, room.ID, day), day)
	}
	assert.Equal(t, occupancydomain.StatusFree, f.statusOn(t, room.ID, "2025-01-09"))
	assert.Equal(t, occupancydomain.StatusFree, f.statusOn(t, room.ID, "2025-01-14"))
}

func TestClassifyRoomFlagWithoutBooking(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)

	maint := f.createRoom(t, "201", roomdomain.StatusMaintenance)
	assert.Equal(t, occupancydomain.StatusMaintenance, f.statusOn(t, maint.ID, "2025-01-09"))

	cleaning := f.createRoom(t, "202", roomdomain.StatusCleaning)
	assert.Equal(t, occupancydomain.StatusCleaning, f.statusOn(t, cleaning.ID, "2025-01-08"))

	dirty := f.createRoom(t, "203", roomdomain.StatusDirty)
	assert.Equal(t, occupancydomain.StatusFree, f.statusOn(t, dirty.ID, "2025-01-08"))
}

func TestPastDatesUseSnapshotNotLiveState(t *testing.T) {
	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	room := f.createRoom(t, "103", roomdomain.StatusFree)

	// Snapshot says 2025-01-05 was occupied; live bookings say
	// nothing. The snapshot wins.
	d, _ := dates.Parse("2025-01-05")
	resID := f.node.Generate()
	require.NoError(t, f.db.Create(&occupancydomain.RoomDailyStatus{
		ID:            f.node.Generate(),
		RoomID:        room.ID,
		Date:          d,
		Status:        roomdomain.StatusOccupied,
		ReservationID: &resID,
		GuestName:     "Former Guest",
		TotalAmount:   90000,
		CreatedAt:     time.Now().UTC(),
	}).Error)

	assert.Equal(t, occupancydomain.StatusOccupied, f.statusOn(t, room.ID, "2025-01-05"))

	// A past date with no snapshot degrades to free, flagged as a gap.
	gapDay, _ := dates.Parse("2025-01-06")
	days, err := f.engine.Timeline(context.Background(), room.ID, gapDay, gapDay)
	require.NoError(t, err)
	require.True(t, days[0].Gap)
	assert.Equal(t, occupancydomain.StatusFree, days[0].Status)
}

func TestPastSnapshotMapping(t *testing.T) {
	now := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	room := f.createRoom(t, "104", roomdomain.StatusFree)

	cases := map[string]struct {
		stored roomdomain.RoomStatus
		want   occupancydomain.OccupancyStatus
	}{
		"2025-01-10": {roomdomain.StatusMaintenance, occupancydomain.StatusMaintenance},
		"2025-01-11": {roomdomain.StatusCleaning, occupancydomain.StatusCleaning},
		"2025-01-12": {roomdomain.StatusDirty, occupancydomain.StatusFree},
		"2025-01-13": {roomdomain.StatusReserved, occupancydomain.StatusFree},
	}
	for day, tc := range cases {
		d, _ := dates.Parse(day)
		require.NoError(t, f.db.Create(&occupancydomain.RoomDailyStatus{
			ID:        f.node.Generate(),
			RoomID:    room.ID,
			Date:      d,
			Status:    tc.stored,
			CreatedAt: time.Now().UTC(),
		}).Error)
	}
	for day, tc := range cases {
		assert.Equal(t, tc.want, f.statusOn(t, room.ID, day), day)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	room := f.createRoom(t, "105", roomdomain.StatusReserved)
	booking := f.createBooking(t, room.ID, "2025-01-10", "2025-01-13", false)

	from, _ := dates.Parse("2025-01-08")
	to, _ := dates.Parse("2025-01-16")
	days, err := f.engine.Timeline(context.Background(), room.ID, from, to)
	require.NoError(t, err)
	require.Len(t, days, 9)

	ranges := Compress(days, []*reservationdomain.RoomBooking{booking})
	require.Len(t, ranges, 3) // free, reserved, free

	// Re-expanding the ranges must reproduce the per-day
	// classification exactly.
	expanded := map[string]occupancydomain.OccupancyStatus{}
	for _, r := range ranges {
		for d := r.Start; !d.After(r.End); d = dates.Next(d) {
			expanded[dates.Format(d)] = r.Status
		}
	}
	require.Len(t, expanded, len(days))
	for _, day := range days {
		assert.Equal(t, day.Status, expanded[dates.Format(day.Date)], dates.Format(day.Date))
	}
}

func TestCompressMarkersStickToBookingDates(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	room := f.createRoom(t, "106", roomdomain.StatusReserved)
	booking := f.createBooking(t, room.ID, "2025-01-10", "2025-01-13", false)

	from, _ := dates.Parse("2025-01-10")
	to, _ := dates.Parse("2025-01-13")
	days, err := f.engine.Timeline(context.Background(), room.ID, from, to)
	require.NoError(t, err)

	ranges := Compress(days, []*reservationdomain.RoomBooking{booking})
	require.Len(t, ranges, 1)
	r := ranges[0]
	require.NotNil(t, r.CheckInOn)
	require.NotNil(t, r.CheckOutOn)
	assert.Equal(t, "2025-01-10", dates.Format(*r.CheckInOn))
	assert.Equal(t, "2025-01-13", dates.Format(*r.CheckOutOn))
	require.NotNil(t, r.BookingID)
	assert.Equal(t, booking.ID, *r.BookingID)
}

func TestSnapshotDayWritesOncePerRoom(t *testing.T) {
	now := time.Date(2025, 1, 14, 1, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)
	occupied := f.createRoom(t, "301", roomdomain.StatusOccupied)
	f.createBooking(t, occupied.ID, "2025-01-10", "2025-01-15", true)
	idle := f.createRoom(t, "302", roomdomain.StatusFree)

	yesterday, _ := dates.Parse("2025-01-13")
	written, err := f.engine.SnapshotDay(context.Background(), yesterday)
	require.NoError(t, err)
	require.Equal(t, 2, written)

	snap, err := f.engine.repo.FindByRoomAndDate(context.Background(), f.db, occupied.ID, yesterday)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, roomdomain.StatusOccupied, snap.Status)
	assert.Equal(t, "Marta Jaramillo", snap.GuestName)
	require.NotNil(t, snap.ReservationID)

	idleSnap, err := f.engine.repo.FindByRoomAndDate(context.Background(), f.db, idle.ID, yesterday)
	require.NoError(t, err)
	require.NotNil(t, idleSnap)
	assert.Equal(t, roomdomain.StatusFree, idleSnap.Status)

	// Roll-over re-run is a no-op.
	written, err = f.engine.SnapshotDay(context.Background(), yesterday)
	require.NoError(t, err)
	require.Zero(t, written)
}

func TestSnapshotDayRejectsTodayAndFuture(t *testing.T) {
	now := time.Date(2025, 1, 14, 1, 0, 0, 0, time.UTC)
	f := newEngineFixture(t, now)

	today, _ := dates.Parse("2025-01-14")
	_, err := f.engine.SnapshotDay(context.Background(), today)
	require.ErrorIs(t, err, occupancydomain.ErrFutureSnapshot)
}
