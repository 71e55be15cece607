package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
	"github.com/casalunahms/casaluna/pkg/dates"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	repo        staynightdomain.Repository
	paymentRepo paymentdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        staynightdomain.Repository
	PaymentRepo paymentdomain.Repository
}

func NewService(p ServiceParam) staynightdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("staynight.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		paymentRepo: p.PaymentRepo,
	}
}

func (s *Service) BeginStay(ctx context.Context, tx *gorm.DB, booking *reservationdomain.RoomBooking) (*staynightdomain.Stay, error) {
	existing, err := s.repo.FindStayByBooking(ctx, tx, booking.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Re-running check-in must not duplicate the stay; top up
		// any missing nights instead.
		if _, err := s.GenerateNights(ctx, tx, existing, booking); err != nil {
			return nil, err
		}
		return existing, nil
	}

	now := s.clock.Now(ctx)
	stay := &staynightdomain.Stay{
		ID:            s.genID.Generate(),
		ReservationID: booking.ReservationID,
		BookingID:     booking.ID,
		RoomID:        booking.RoomID,
		StartedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertStay(ctx, tx, stay); err != nil {
		return nil, err
	}

	created, err := s.GenerateNights(ctx, tx, stay, booking)
	if err != nil {
		return nil, err
	}
	s.log.Info("stay started",
		zap.Int64("stay_id", int64(stay.ID)),
		zap.Int64("booking_id", int64(booking.ID)),
		zap.Int("nights", created))
	return stay, nil
}

// GenerateNights creates one chargeable night per date in
// [check_in_date, check_out_date); the checkout day is not a chargeable
// night. Already-generated dates are skipped, so re-running for an
// extended window only fills the gap.
func (s *Service) GenerateNights(ctx context.Context, tx *gorm.DB, stay *staynightdomain.Stay, booking *reservationdomain.RoomBooking) (int, error) {
	existing, err := s.repo.ExistingDates(ctx, tx, stay.ID)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now(ctx)
	created := 0
	for d := booking.CheckInDate; d.Before(booking.CheckOutDate); d = dates.Next(d) {
		if existing[d.UTC()] {
			continue
		}
		night := &staynightdomain.StayNight{
			ID:            s.genID.Generate(),
			StayID:        stay.ID,
			ReservationID: stay.ReservationID,
			RoomID:        stay.RoomID,
			Date:          d,
			Price:         booking.PricePerNight,
			IsPaid:        false,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.InsertNight(ctx, tx, night); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Service) EndStayForBooking(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID) error {
	stay, err := s.repo.FindStayByBooking(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if stay == nil {
		return staynightdomain.ErrStayNotFound
	}
	return s.repo.EndStay(ctx, tx, stay.ID, s.clock.Now(ctx))
}

// Apply walks unpaid nights oldest-first, flipping each to paid while
// the remaining amount covers its full price. A partial remainder
// leaves that night unpaid; the outstanding balance is computed
// independently as sum(prices) - sum(payments) so partial and
// overpayment both come out right.
func (s *Service) Apply(ctx context.Context, tx *gorm.DB, reservationID snowflake.ID, amount int64) (staynightdomain.AppliedResult, error) {
	var result staynightdomain.AppliedResult
	if amount <= 0 {
		return result, staynightdomain.ErrNonPositiveAmount
	}

	unpaid, err := s.repo.UnpaidByReservation(ctx, tx, reservationID)
	if err != nil {
		return result, err
	}

	remaining := amount
	for _, night := range unpaid {
		if remaining < night.Price {
			break
		}
		if err := s.repo.MarkPaid(ctx, tx, night.ID); err != nil {
			return result, err
		}
		remaining -= night.Price
		result.NightsPaid++
	}
	result.AmountApplied = amount

	balance, err := s.balance(ctx, tx, reservationID)
	if err != nil {
		return result, err
	}
	result.Outstanding = balance.Outstanding
	return result, nil
}

func (s *Service) Outstanding(ctx context.Context, reservationID snowflake.ID) (staynightdomain.Balance, error) {
	return s.balance(ctx, s.db, reservationID)
}

func (s *Service) balance(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (staynightdomain.Balance, error) {
	owed, err := s.repo.SumPricesByReservation(ctx, db, reservationID)
	if err != nil {
		return staynightdomain.Balance{}, err
	}
	paid, err := s.paymentRepo.SumByReservation(ctx, db, reservationID)
	if err != nil {
		return staynightdomain.Balance{}, err
	}
	return staynightdomain.Balance{
		TotalOwed:   owed,
		TotalPaid:   paid,
		Outstanding: owed - paid,
	}, nil
}

func (s *Service) Nights(ctx context.Context, reservationID snowflake.ID) ([]*staynightdomain.StayNight, error) {
	return s.repo.ListByReservation(ctx, s.db, reservationID)
}

func (s *Service) HasLedgerActivity(ctx context.Context, reservationID snowflake.ID) (bool, error) {
	count, err := s.repo.CountByReservation(ctx, s.db, reservationID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	payments, err := s.paymentRepo.ListByReservation(ctx, s.db, reservationID)
	if err != nil {
		return false, err
	}
	return len(payments) > 0, nil
}
