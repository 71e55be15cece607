package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	"github.com/casalunahms/casaluna/internal/config"
	"github.com/casalunahms/casaluna/internal/lock"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	cfg config.Config

	genID    *snowflake.Node
	clock    clock.Clock
	locker   *lock.Locker
	repo     reservationdomain.Repository
	roomRepo roomdomain.Repository
	ledger   staynightdomain.Service
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	GenID    *snowflake.Node
	Clock    clock.Clock
	Locker   *lock.Locker
	Repo     reservationdomain.Repository
	RoomRepo roomdomain.Repository
	Ledger   staynightdomain.Service
}

func NewService(p ServiceParam) reservationdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("reservation.service"),
		cfg: p.Cfg,

		genID:    p.GenID,
		clock:    p.Clock,
		locker:   p.Locker,
		repo:     p.Repo,
		roomRepo: p.RoomRepo,
		ledger:   p.Ledger,
	}
}

func (s *Service) Create(ctx context.Context, req reservationdomain.CreateReservationRequest) (*reservationdomain.Reservation, error) {
	if len(req.Bookings) == 0 {
		return nil, reservationdomain.ErrNoBookings
	}

	now := s.clock.Now(ctx)
	res := &reservationdomain.Reservation{
		ID:               s.genID.Generate(),
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerDocument: strings.TrimSpace(req.CustomerDocument),
		DepositAmount:    req.DepositAmount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var total int64
	for _, b := range req.Bookings {
		if b.CheckOutDate.Before(b.CheckInDate) {
			return nil, reservationdomain.ErrCheckOutBeforeIn
		}
		room, err := s.roomRepo.FindByID(ctx, s.db, b.RoomID)
		if err != nil {
			return nil, err
		}
		if room == nil {
			return nil, roomdomain.ErrRoomNotFound
		}

		price := b.PricePerNight
		if price == 0 {
			price = room.PriceForOccupancy(b.Guests)
		}
		if price <= 0 {
			return nil, reservationdomain.ErrInvalidPrice
		}

		booking := reservationdomain.RoomBooking{
			ID:            s.genID.Generate(),
			ReservationID: res.ID,
			RoomID:        b.RoomID,
			CheckInDate:   b.CheckInDate,
			CheckOutDate:  b.CheckOutDate,
			CheckInTime:   b.CheckInTime,
			PricePerNight: price,
			Guests:        max(b.Guests, 1),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		total += booking.Subtotal()
		res.Bookings = append(res.Bookings, booking)
	}
	res.TotalAmount = total

	if err := s.repo.Insert(ctx, s.db, res); err != nil {
		return nil, err
	}

	// Project the room flag for display; occupancy classification is
	// derived from bookings, so a lost race here is cosmetic only.
	for _, b := range res.Bookings {
		_, _ = s.roomRepo.UpdateStatusCAS(ctx, s.db, b.RoomID,
			[]roomdomain.RoomStatus{roomdomain.StatusFree}, roomdomain.StatusReserved)
	}

	s.log.Info("reservation created",
		zap.Int64("reservation_id", int64(res.ID)),
		zap.Int("bookings", len(res.Bookings)),
		zap.Int64("total", res.TotalAmount))
	return res, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*reservationdomain.Reservation, error) {
	res, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, reservationdomain.ErrReservationNotFound
	}
	return res, nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) ([]*reservationdomain.Reservation, error) {
	return s.repo.List(ctx, s.db, page)
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) error {
	res, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if res == nil {
		return reservationdomain.ErrReservationNotFound
	}
	if res.Cancelled() {
		return reservationdomain.ErrReservationCancelled
	}
	for i := range res.Bookings {
		if res.Bookings[i].CheckedInAt != nil {
			return reservationdomain.ErrCancelAfterActivity
		}
	}
	active, err := s.ledger.HasLedgerActivity(ctx, id)
	if err != nil {
		return err
	}
	if active {
		return reservationdomain.ErrCancelAfterActivity
	}

	if err := s.repo.SetCancelled(ctx, s.db, id, s.clock.Now(ctx)); err != nil {
		return err
	}
	for i := range res.Bookings {
		_, _ = s.roomRepo.UpdateStatusCAS(ctx, s.db, res.Bookings[i].RoomID,
			[]roomdomain.RoomStatus{roomdomain.StatusReserved}, roomdomain.StatusFree)
	}
	s.log.Info("reservation cancelled", zap.Int64("reservation_id", int64(id)))
	return nil
}

func (s *Service) CheckIn(ctx context.Context, bookingID snowflake.ID) (*reservationdomain.RoomBooking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	err = s.locker.WithLock(ctx, "room:"+booking.RoomID.String(), func(ctx context.Context) error {
		if booking.CheckedOutAt != nil {
			return reservationdomain.ErrAlreadyCheckedOut
		}
		if booking.IsCheckedIn() {
			return reservationdomain.ErrAlreadyCheckedIn
		}

		// At most one active booking per room, enforced here rather
		// than assumed from the room flag.
		active, err := s.repo.ActiveBookingForRoom(ctx, s.db, booking.RoomID)
		if err != nil {
			return err
		}
		if active != nil && active.ID != booking.ID {
			return reservationdomain.ErrRoomHasActiveStay
		}

		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := s.clock.Now(ctx)
			if err := s.repo.SetBookingCheckedIn(ctx, tx, booking.ID, now); err != nil {
				return err
			}
			booking.CheckedInAt = &now

			if _, err := s.ledger.BeginStay(ctx, tx, booking); err != nil {
				return err
			}

			ok, err := s.roomRepo.UpdateStatusCAS(ctx, tx, booking.RoomID,
				[]roomdomain.RoomStatus{roomdomain.StatusFree, roomdomain.StatusReserved},
				roomdomain.StatusOccupied)
			if err != nil {
				return err
			}
			if !ok {
				return roomdomain.ErrInvalidTransition
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking checked in",
		zap.Int64("booking_id", int64(booking.ID)),
		zap.Int64("room_id", int64(booking.RoomID)))
	return booking, nil
}

func (s *Service) CheckOut(ctx context.Context, bookingID snowflake.ID) (*reservationdomain.RoomBooking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	checkoutStatus := roomdomain.RoomStatus(s.cfg.Hotel.CheckoutRoomStatus)

	err = s.locker.WithLock(ctx, "room:"+booking.RoomID.String(), func(ctx context.Context) error {
		if booking.CheckedOutAt != nil {
			return reservationdomain.ErrAlreadyCheckedOut
		}
		if !booking.IsCheckedIn() {
			return reservationdomain.ErrNotCheckedIn
		}

		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := s.clock.Now(ctx)
			if err := s.repo.SetBookingCheckedOut(ctx, tx, booking.ID, now); err != nil {
				return err
			}
			booking.CheckedOutAt = &now

			if err := s.ledger.EndStayForBooking(ctx, tx, booking.ID); err != nil {
				return err
			}

			ok, err := s.roomRepo.UpdateStatusCAS(ctx, tx, booking.RoomID,
				[]roomdomain.RoomStatus{roomdomain.StatusOccupied, roomdomain.StatusPendingCheckout},
				checkoutStatus)
			if err != nil {
				return err
			}
			if !ok {
				return roomdomain.ErrInvalidTransition
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking checked out",
		zap.Int64("booking_id", int64(booking.ID)),
		zap.Int64("room_id", int64(booking.RoomID)))
	return booking, nil
}

func (s *Service) Extend(ctx context.Context, bookingID snowflake.ID, newCheckOut time.Time) (*reservationdomain.RoomBooking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !newCheckOut.After(booking.CheckOutDate) {
		return nil, reservationdomain.ErrExtendNotForward
	}

	// The extension must not run into the next booking on the room.
	others, err := s.repo.BookingsForRoomBetween(ctx, s.db, booking.RoomID,
		booking.CheckOutDate, newCheckOut)
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		if other.ID != booking.ID {
			return nil, reservationdomain.ErrExtendConflict
		}
	}

	err = s.locker.WithLock(ctx, "reservation:"+booking.ReservationID.String(), func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			addedNights := int64(newCheckOut.Sub(booking.CheckOutDate) / (24 * time.Hour))
			if err := s.repo.UpdateBookingCheckOutDate(ctx, tx, booking.ID, newCheckOut); err != nil {
				return err
			}
			booking.CheckOutDate = newCheckOut

			res, err := s.repo.FindByID(ctx, tx, booking.ReservationID)
			if err != nil {
				return err
			}
			if res == nil {
				return reservationdomain.ErrReservationNotFound
			}
			newTotal := res.TotalAmount + addedNights*booking.PricePerNight
			if err := s.repo.UpdateTotal(ctx, tx, res.ID, newTotal); err != nil {
				return err
			}

			if booking.IsCheckedIn() {
				// BeginStay reuses the existing stay and fills
				// only the added dates.
				if _, err := s.ledger.BeginStay(ctx, tx, booking); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking extended",
		zap.Int64("booking_id", int64(booking.ID)),
		zap.Time("new_check_out", newCheckOut))
	return booking, nil
}

func (s *Service) loadBooking(ctx context.Context, bookingID snowflake.ID) (*reservationdomain.RoomBooking, error) {
	booking, err := s.repo.FindBooking(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, reservationdomain.ErrBookingNotFound
	}
	res, err := s.repo.FindByID(ctx, s.db, booking.ReservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, reservationdomain.ErrReservationNotFound
	}
	if res.Cancelled() {
		return nil, reservationdomain.ErrReservationCancelled
	}
	return booking, nil
}
