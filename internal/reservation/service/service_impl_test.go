package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	"github.com/casalunahms/casaluna/internal/config"
	"github.com/casalunahms/casaluna/internal/lock"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	paymentrepo "github.com/casalunahms/casaluna/internal/payment/repository"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	reservationrepo "github.com/casalunahms/casaluna/internal/reservation/repository"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	roomrepo "github.com/casalunahms/casaluna/internal/room/repository"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
	staynightrepo "github.com/casalunahms/casaluna/internal/staynight/repository"
	staynightservice "github.com/casalunahms/casaluna/internal/staynight/service"
	"github.com/casalunahms/casaluna/pkg/dates"
)

var testNow = time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&roomdomain.Room{},
		&reservationdomain.Reservation{},
		&reservationdomain.RoomBooking{},
		&staynightdomain.Stay{},
		&staynightdomain.StayNight{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fixed := clock.Fixed{T: testNow}
	ledger := staynightservice.NewService(staynightservice.ServiceParam{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fixed,
		Repo:        staynightrepo.Provide(),
		PaymentRepo: paymentrepo.Provide(),
	})

	cfg := config.Config{}
	cfg.Hotel.CheckoutRoomStatus = "cleaning"

	svc := &Service{
		db:       db,
		log:      zap.NewNop(),
		cfg:      cfg,
		genID:    node,
		clock:    fixed,
		locker:   lock.New(nil),
		repo:     reservationrepo.Provide(),
		roomRepo: roomrepo.Provide(),
		ledger:   ledger,
	}
	return svc, db, node
}

func createRoom(t *testing.T, db *gorm.DB, node *snowflake.Node, number string) *roomdomain.Room {
	t.Helper()
	room := &roomdomain.Room{
		ID:          node.Generate(),
		Number:      number,
		BedsCount:   2,
		MaxCapacity: 3,
		OccupancyPrices: datatypes.JSONMap{
			"1": int64(50000),
			"2": int64(80000),
		},
		Status:    roomdomain.StatusFree,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(t, roomrepo.Provide().Insert(context.Background(), db, room))
	return room
}

func createReservation(t *testing.T, svc *Service, roomID snowflake.ID, in, out string, guests int) *reservationdomain.Reservation {
	t.Helper()
	checkIn, err := dates.Parse(in)
	require.NoError(t, err)
	checkOut, err := dates.Parse(out)
	require.NoError(t, err)

	res, err := svc.Create(context.Background(), reservationdomain.CreateReservationRequest{
		CustomerName: "Laura Mejia",
		Bookings: []reservationdomain.CreateBookingRequest{{
			RoomID:       roomID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			Guests:       guests,
		}},
	})
	require.NoError(t, err)
	return res
}

func roomStatus(t *testing.T, db *gorm.DB, id snowflake.ID) roomdomain.RoomStatus {
	t.Helper()
	room, err := roomrepo.Provide().FindByID(context.Background(), db, id)
	require.NoError(t, err)
	require.NotNil(t, room)
	return room.Status
}

func TestCreateReservationPricesFromOccupancyTable(t *testing.T) {
	svc, db, node := newTestService(t)
	room := createRoom(t, db, node, "101")

	// 3 nights for 2 guests at the 80,000 tier.
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 2)
	require.Equal(t, int64(240000), res.TotalAmount)
	require.Len(t, res.Bookings, 1)
	require.Equal(t, int64(80000), res.Bookings[0].PricePerNight)
	require.Equal(t, roomdomain.StatusReserved, roomStatus(t, db, room.ID))
}

func TestCreateReservationRejectsInvertedDates(t *testing.T) {
	svc, db, node := newTestService(t)
	room := createRoom(t, db, node, "101")

	checkIn, _ := dates.Parse("2025-01-13")
	checkOut, _ := dates.Parse("2025-01-10")
	_, err := svc.Create(context.Background(), reservationdomain.CreateReservationRequest{
		CustomerName: "Laura Mejia",
		Bookings: []reservationdomain.CreateBookingRequest{{
			RoomID:       room.ID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			Guests:       1,
		}},
	})
	require.ErrorIs(t, err, reservationdomain.ErrCheckOutBeforeIn)
}

func TestCheckInOpensStayAndOccupiesRoom(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	booking, err := svc.CheckIn(ctx, res.Bookings[0].ID)
	require.NoError(t, err)
	require.NotNil(t, booking.CheckedInAt)
	require.Equal(t, roomdomain.StatusOccupied, roomStatus(t, db, room.ID))

	nights, err := svc.ledger.Nights(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, nights, 3)

	// Re-running check-in is rejected, not duplicated.
	_, err = svc.CheckIn(ctx, res.Bookings[0].ID)
	require.ErrorIs(t, err, reservationdomain.ErrAlreadyCheckedIn)
}

func TestCheckInRejectsSecondActiveBookingOnRoom(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	room := createRoom(t, db, node, "101")

	first := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)
	second := createReservation(t, svc, room.ID, "2025-01-11", "2025-01-14", 1)

	_, err := svc.CheckIn(ctx, first.Bookings[0].ID)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, second.Bookings[0].ID)
	require.ErrorIs(t, err, reservationdomain.ErrRoomHasActiveStay)
}

func TestCheckOutClosesStayAndSendsRoomToCleaning(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	_, err := svc.CheckIn(ctx, res.Bookings[0].ID)
	require.NoError(t, err)

	booking, err := svc.CheckOut(ctx, res.Bookings[0].ID)
	require.NoError(t, err)
	require.NotNil(t, booking.CheckedOutAt)
	require.Equal(t, roomdomain.StatusCleaning, roomStatus(t, db, room.ID))

	_, err = svc.CheckOut(ctx, res.Bookings[0].ID)
	require.ErrorIs(t, err, reservationdomain.ErrAlreadyCheckedOut)
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	svc, db, node := newTestService(t)
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	_, err := svc.CheckOut(context.Background(), res.Bookings[0].ID)
	require.ErrorIs(t, err, reservationdomain.ErrNotCheckedIn)
}

func TestCancelBeforeActivityFreesRoom(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	require.NoError(t, svc.Cancel(ctx, res.ID))
	require.Equal(t, roomdomain.StatusFree, roomStatus(t, db, room.ID))

	_, err := svc.CheckIn(ctx, res.Bookings[0].ID)
	require.ErrorIs(t, err, reservationdomain.ErrReservationCancelled)
}

func TestCancelRejectedAfterCheckIn(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	_, err := svc.CheckIn(ctx, res.Bookings[0].ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Cancel(ctx, res.ID), reservationdomain.ErrCancelAfterActivity)
}

func TestExtendTopsUpNightsAndTotal(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	_, err := svc.CheckIn(ctx, res.Bookings[0].ID)
	require.NoError(t, err)

	newCheckOut, _ := dates.Parse("2025-01-15")
	booking, err := svc.Extend(ctx, res.Bookings[0].ID, newCheckOut)
	require.NoError(t, err)
	require.Equal(t, newCheckOut, booking.CheckOutDate)

	nights, err := svc.ledger.Nights(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, nights, 5)

	updated, err := svc.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, int64(250000), updated.TotalAmount)
}

func TestExtendRejectsBackwardDate(t *testing.T) {
	svc, db, node := newTestService(t)
	room := createRoom(t, db, node, "101")
	res := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)

	earlier, _ := dates.Parse("2025-01-12")
	_, err := svc.Extend(context.Background(), res.Bookings[0].ID, earlier)
	require.ErrorIs(t, err, reservationdomain.ErrExtendNotForward)
}

func TestExtendRejectsOverlapWithNextBooking(t *testing.T) {
	svc, db, node := newTestService(t)
	room := createRoom(t, db, node, "101")
	first := createReservation(t, svc, room.ID, "2025-01-10", "2025-01-13", 1)
	createReservation(t, svc, room.ID, "2025-01-14", "2025-01-16", 1)

	pushed, _ := dates.Parse("2025-01-15")
	_, err := svc.Extend(context.Background(), first.Bookings[0].ID, pushed)
	require.ErrorIs(t, err, reservationdomain.ErrExtendConflict)
}
