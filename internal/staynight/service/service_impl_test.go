package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	paymentrepo "github.com/casalunahms/casaluna/internal/payment/repository"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
	staynightrepo "github.com/casalunahms/casaluna/internal/staynight/repository"
	"github.com/casalunahms/casaluna/pkg/dates"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&staynightdomain.Stay{},
		&staynightdomain.StayNight{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:          db,
		log:         zap.NewNop(),
		genID:       node,
		clock:       clock.Fixed{T: time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)},
		repo:        staynightrepo.Provide(),
		paymentRepo: paymentrepo.Provide(),
	}
	return svc, db, node
}

func newBooking(t *testing.T, node *snowflake.Node, checkIn, checkOut string, price int64) *reservationdomain.RoomBooking {
	t.Helper()
	in, err := dates.Parse(checkIn)
	require.NoError(t, err)
	out, err := dates.Parse(checkOut)
	require.NoError(t, err)
	return &reservationdomain.RoomBooking{
		ID:            node.Generate(),
		ReservationID: node.Generate(),
		RoomID:        node.Generate(),
		CheckInDate:   in,
		CheckOutDate:  out,
		PricePerNight: price,
	}
}

func TestBeginStayGeneratesNightsExcludingCheckoutDay(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	booking := newBooking(t, node, "2025-01-10", "2025-01-13", 50000)
	stay, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	nights, err := svc.Nights(ctx, booking.ReservationID)
	require.NoError(t, err)
	require.Len(t, nights, 3)
	require.Equal(t, "2025-01-10", dates.Format(nights[0].Date))
	require.Equal(t, "2025-01-12", dates.Format(nights[2].Date))
	for _, n := range nights {
		require.Equal(t, int64(50000), n.Price)
		require.False(t, n.IsPaid)
		require.Equal(t, stay.ID, n.StayID)
	}

	balance, err := svc.Outstanding(ctx, booking.ReservationID)
	require.NoError(t, err)
	require.Equal(t, int64(150000), balance.TotalOwed)
	require.Equal(t, booking.Subtotal(), balance.TotalOwed)
}

func TestGenerateNightsIdempotent(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	booking := newBooking(t, node, "2025-01-10", "2025-01-13", 50000)
	stay, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	created, err := svc.GenerateNights(ctx, db, stay, booking)
	require.NoError(t, err)
	require.Zero(t, created)

	// Re-running check-in must reuse the stay, not duplicate it.
	again, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)
	require.Equal(t, stay.ID, again.ID)

	nights, err := svc.Nights(ctx, booking.ReservationID)
	require.NoError(t, err)
	require.Len(t, nights, 3)
}

func TestGenerateNightsFillsExtension(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	booking := newBooking(t, node, "2025-01-10", "2025-01-13", 50000)
	stay, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	booking.CheckOutDate, _ = dates.Parse("2025-01-15")
	created, err := svc.GenerateNights(ctx, db, stay, booking)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	nights, err := svc.Nights(ctx, booking.ReservationID)
	require.NoError(t, err)
	require.Len(t, nights, 5)
}

func TestDuplicateNightFailsLoudly(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	booking := newBooking(t, node, "2025-01-10", "2025-01-11", 50000)
	stay, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	repo := staynightrepo.Provide()
	err = repo.InsertNight(ctx, db, &staynightdomain.StayNight{
		ID:            node.Generate(),
		StayID:        stay.ID,
		ReservationID: booking.ReservationID,
		RoomID:        booking.RoomID,
		Date:          booking.CheckInDate,
		Price:         50000,
	})
	require.ErrorIs(t, err, staynightdomain.ErrNightAlreadyExists)
}

func recordPayment(t *testing.T, db *gorm.DB, node *snowflake.Node, reservationID snowflake.ID, amount int64) {
	t.Helper()
	repo := paymentrepo.Provide()
	require.NoError(t, repo.Insert(context.Background(), db, &paymentdomain.Payment{
		ID:            node.Generate(),
		ReservationID: reservationID,
		Amount:        amount,
		MethodID:      node.Generate(),
		Channel:       paymentdomain.ChannelCash,
		Source:        paymentdomain.SourceLodging,
		ReceiptNumber: node.Generate().String(),
		PaidAt:        time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC),
	}))
}

func TestApplyPaymentFIFOPartialNight(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	// 3 nights at 50,000 (total 150,000); a payment of 120,000 marks
	// nights 1 and 2 paid and leaves 30,000 outstanding.
	booking := newBooking(t, node, "2025-01-10", "2025-01-13", 50000)
	_, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	recordPayment(t, db, node, booking.ReservationID, 120000)

	result, err := svc.Apply(ctx, db, booking.ReservationID, 120000)
	require.NoError(t, err)
	require.Equal(t, 2, result.NightsPaid)
	require.Equal(t, int64(120000), result.AmountApplied)
	require.Equal(t, int64(30000), result.Outstanding)

	nights, err := svc.Nights(ctx, booking.ReservationID)
	require.NoError(t, err)
	require.True(t, nights[0].IsPaid)
	require.True(t, nights[1].IsPaid)
	require.False(t, nights[2].IsPaid)
}

func TestApplyPaymentNeverPaysMoreNightsThanCovered(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	booking := newBooking(t, node, "2025-01-10", "2025-01-14", 50000)
	_, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	// 130,000 over uniform 50,000 nights: floor(130000/50000) = 2.
	recordPayment(t, db, node, booking.ReservationID, 130000)
	result, err := svc.Apply(ctx, db, booking.ReservationID, 130000)
	require.NoError(t, err)
	require.Equal(t, 2, result.NightsPaid)
}

func TestApplyOverpaymentAccepted(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	booking := newBooking(t, node, "2025-01-10", "2025-01-12", 40000)
	_, err := svc.BeginStay(ctx, db, booking)
	require.NoError(t, err)

	recordPayment(t, db, node, booking.ReservationID, 100000)
	result, err := svc.Apply(ctx, db, booking.ReservationID, 100000)
	require.NoError(t, err)
	require.Equal(t, 2, result.NightsPaid)
	require.Equal(t, int64(-20000), result.Outstanding)

	balance, err := svc.Outstanding(ctx, booking.ReservationID)
	require.NoError(t, err)
	require.Equal(t, int64(-20000), balance.Outstanding)
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	svc, db, node := newTestService(t)

	_, err := svc.Apply(context.Background(), db, node.Generate(), 0)
	require.ErrorIs(t, err, staynightdomain.ErrNonPositiveAmount)

	_, err = svc.Apply(context.Background(), db, node.Generate(), -500)
	require.ErrorIs(t, err, staynightdomain.ErrNonPositiveAmount)
}
