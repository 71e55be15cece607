package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	"github.com/casalunahms/casaluna/internal/lock"
	"github.com/casalunahms/casaluna/internal/metrics"
	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID           *snowflake.Node
	clock           clock.Clock
	locker          *lock.Locker
	repo            paymentdomain.Repository
	reservationRepo reservationdomain.Repository
	ledger          staynightdomain.Service
}

type ServiceParam struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Locker          *lock.Locker
	Repo            paymentdomain.Repository
	ReservationRepo reservationdomain.Repository
	Ledger          staynightdomain.Service
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("payment.service"),

		genID:           p.GenID,
		clock:           p.Clock,
		locker:          p.Locker,
		repo:            p.Repo,
		reservationRepo: p.ReservationRepo,
		ledger:          p.Ledger,
	}
}

func (s *Service) Record(ctx context.Context, req paymentdomain.RecordPaymentRequest) (*paymentdomain.RecordPaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, paymentdomain.ErrNonPositiveAmount
	}
	if !req.Source.Valid() {
		return nil, paymentdomain.ErrInvalidSource
	}

	method, err := s.repo.FindMethodByCode(ctx, s.db, strings.TrimSpace(req.MethodCode))
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, paymentdomain.ErrMethodNotFound
	}

	reservation, err := s.reservationRepo.FindByID(ctx, s.db, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, reservationdomain.ErrReservationNotFound
	}
	if reservation.Cancelled() {
		return nil, reservationdomain.ErrReservationCancelled
	}

	receipt := strings.TrimSpace(req.ReceiptNumber)
	if receipt == "" {
		receipt = uuid.NewString()
	} else {
		// Retried submission with the same receipt returns the
		// original outcome instead of double-charging.
		existing, err := s.repo.FindByReceipt(ctx, s.db, receipt)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			balance, err := s.ledger.Outstanding(ctx, req.ReservationID)
			if err != nil {
				return nil, err
			}
			return &paymentdomain.RecordPaymentResponse{
				Payment: existing,
				Applied: staynightdomain.AppliedResult{Outstanding: balance.Outstanding},
			}, nil
		}
	}

	var resp paymentdomain.RecordPaymentResponse
	err = s.locker.WithLock(ctx, "reservation:"+req.ReservationID.String(), func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := s.clock.Now(ctx)
			p := &paymentdomain.Payment{
				ID:            s.genID.Generate(),
				ReservationID: req.ReservationID,
				Amount:        req.Amount,
				MethodID:      method.ID,
				Channel:       method.Channel,
				Source:        req.Source,
				BankName:      strings.TrimSpace(req.BankName),
				Reference:     strings.TrimSpace(req.Reference),
				ReceiptNumber: receipt,
				PaidAt:        now,
				CreatedAt:     now,
			}
			if err := s.repo.Insert(ctx, tx, p); err != nil {
				return err
			}

			applied := staynightdomain.AppliedResult{AmountApplied: req.Amount}
			if req.Source != paymentdomain.SourceRefund {
				var err error
				applied, err = s.ledger.Apply(ctx, tx, req.ReservationID, req.Amount)
				if err != nil {
					return err
				}
			}

			resp.Payment = p
			resp.Applied = applied
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(method.Channel)).Inc()
	s.log.Info("payment recorded",
		zap.Int64("reservation_id", int64(req.ReservationID)),
		zap.Int64("amount", req.Amount),
		zap.String("channel", string(method.Channel)),
		zap.Int("nights_paid", resp.Applied.NightsPaid))
	return &resp, nil
}

func (s *Service) ListByReservation(ctx context.Context, reservationID snowflake.ID) ([]*paymentdomain.Payment, error) {
	return s.repo.ListByReservation(ctx, s.db, reservationID)
}

// CreateMethod resolves the settlement channel once, at ingestion.
func (s *Service) CreateMethod(ctx context.Context, code, name string) (*paymentdomain.PaymentMethod, error) {
	m := &paymentdomain.PaymentMethod{
		ID:        s.genID.Generate(),
		Code:      strings.TrimSpace(code),
		Name:      strings.TrimSpace(name),
		Channel:   paymentdomain.ResolveChannel(code, name),
		CreatedAt: s.clock.Now(ctx),
	}
	if err := s.repo.InsertMethod(ctx, s.db, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMethods(ctx context.Context) ([]*paymentdomain.PaymentMethod, error) {
	return s.repo.ListMethods(ctx, s.db)
}
