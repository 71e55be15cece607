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
	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	locker      *lock.Locker
	repo        shiftdomain.Repository
	paymentRepo paymentdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Locker      *lock.Locker
	Repo        shiftdomain.Repository
	PaymentRepo paymentdomain.Repository
}

func NewService(p ServiceParam) shiftdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("shift.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		locker:      p.Locker,
		repo:        p.Repo,
		paymentRepo: p.PaymentRepo,
	}
}

func (s *Service) Open(ctx context.Context, openedBy string, openingBase int64) (*shiftdomain.ShiftHandover, error) {
	if openingBase < 0 {
		return nil, shiftdomain.ErrNegativeBase
	}

	now := s.clock.Now(ctx)
	shift := &shiftdomain.ShiftHandover{
		ID:           s.genID.Generate(),
		Reference:    uuid.NewString(),
		OpenedBy:     strings.TrimSpace(openedBy),
		StartedAt:    &now,
		OpeningBase:  openingBase,
		ExpectedBase: openingBase,
		Status:       shiftdomain.ShiftActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertShift(ctx, s.db, shift); err != nil {
		return nil, err
	}

	s.log.Info("shift opened",
		zap.Int64("shift_id", int64(shift.ID)),
		zap.Int64("opening_base", openingBase))
	return shift, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*shiftdomain.ShiftHandover, error) {
	shift, err := s.repo.FindShift(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, shiftdomain.ErrShiftNotFound
	}
	return shift, nil
}

func (s *Service) RecordSale(ctx context.Context, sale *shiftdomain.Sale) error {
	if !sale.PaymentMethod.Valid() {
		return shiftdomain.ErrNonPositiveAmount
	}
	if sale.CashAmount < 0 || sale.TransferAmount < 0 || sale.CashAmount+sale.TransferAmount <= 0 {
		return shiftdomain.ErrNonPositiveAmount
	}
	sale.ID = s.genID.Generate()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = s.clock.Now(ctx)
	}
	return s.repo.InsertSale(ctx, s.db, sale)
}

func (s *Service) RecordOutflow(ctx context.Context, out *shiftdomain.CashOutflow) error {
	if out.Amount <= 0 {
		return shiftdomain.ErrNonPositiveAmount
	}
	if out.Kind != shiftdomain.OutflowExpense && out.Kind != shiftdomain.OutflowWithdrawal {
		out.Kind = shiftdomain.OutflowExpense
	}
	out.ID = s.genID.Generate()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = s.clock.Now(ctx)
	}
	return s.repo.InsertOutflow(ctx, s.db, out)
}

func (s *Service) Reconcile(ctx context.Context, id snowflake.ID) (*shiftdomain.ReconciliationResult, error) {
	var result *shiftdomain.ReconciliationResult
	err := s.locker.WithLock(ctx, "shift:"+id.String(), func(ctx context.Context) error {
		shift, err := s.repo.FindShift(ctx, s.db, id)
		if err != nil {
			return err
		}
		if shift == nil {
			return shiftdomain.ErrShiftNotFound
		}
		if shift.Status != shiftdomain.ShiftActive {
			return shiftdomain.ErrShiftNotActive
		}

		// One transaction per pass so concurrent sale and payment
		// inserts cannot produce a torn read across the aggregates.
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			r, err := s.aggregate(ctx, tx, shift)
			if err != nil {
				return err
			}
			ok, err := s.repo.UpdateTotals(ctx, tx, shift.ID, *r)
			if err != nil {
				return err
			}
			if !ok {
				return shiftdomain.ErrShiftNotActive
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ReconciliationsRun.Inc()
	return result, nil
}

func (s *Service) aggregate(ctx context.Context, tx *gorm.DB, shift *shiftdomain.ShiftHandover) (*shiftdomain.ReconciliationResult, error) {
	from, to := shift.Window(s.clock.Now(ctx))

	salesCash, err := s.repo.SumSalesCashBetween(ctx, tx, from, to)
	if err != nil {
		return nil, err
	}
	salesTransfer, err := s.repo.SumSalesTransferBetween(ctx, tx, from, to)
	if err != nil {
		return nil, err
	}
	paymentsCash, err := s.paymentRepo.SumChannelBetween(ctx, tx, paymentdomain.ChannelCash, from, to)
	if err != nil {
		return nil, err
	}
	paymentsTransfer, err := s.paymentRepo.SumChannelBetween(ctx, tx, paymentdomain.ChannelTransfer, from, to)
	if err != nil {
		return nil, err
	}
	unclassified, err := s.paymentRepo.SumChannelBetween(ctx, tx, paymentdomain.ChannelNone, from, to)
	if err != nil {
		return nil, err
	}
	cashOut, err := s.repo.SumOutflowsBetween(ctx, tx, from, to)
	if err != nil {
		return nil, err
	}

	r := &shiftdomain.ReconciliationResult{
		WindowStart:    from,
		WindowEnd:      to,
		OpeningBase:    shift.OpeningBase,
		CashIn:         salesCash + paymentsCash,
		TransferIn:     salesTransfer + paymentsTransfer,
		CashOut:        cashOut,
		UnclassifiedIn: unclassified,
	}
	r.ExpectedBase = r.OpeningBase + r.CashIn - r.CashOut
	return r, nil
}

func (s *Service) Deliver(ctx context.Context, id snowflake.ID, receivedBase int64) (*shiftdomain.ShiftHandover, error) {
	if receivedBase < 0 {
		return nil, shiftdomain.ErrNegativeBase
	}

	err := s.locker.WithLock(ctx, "shift:"+id.String(), func(ctx context.Context) error {
		shift, err := s.repo.FindShift(ctx, s.db, id)
		if err != nil {
			return err
		}
		if shift == nil {
			return shiftdomain.ErrShiftNotFound
		}
		if shift.Status != shiftdomain.ShiftActive {
			return shiftdomain.ErrShiftNotActive
		}

		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Close the window first so the final pass aggregates
			// exactly what the drawer saw.
			now := s.clock.Now(ctx)
			shift.EndedAt = &now

			r, err := s.aggregate(ctx, tx, shift)
			if err != nil {
				return err
			}
			if ok, err := s.repo.UpdateTotals(ctx, tx, shift.ID, *r); err != nil {
				return err
			} else if !ok {
				return shiftdomain.ErrShiftNotActive
			}

			variance := receivedBase - r.ExpectedBase
			ok, err := s.repo.MarkDelivered(ctx, tx, shift.ID, receivedBase, variance, now)
			if err != nil {
				return err
			}
			if !ok {
				return shiftdomain.ErrShiftNotActive
			}

			s.log.Info("shift delivered",
				zap.Int64("shift_id", int64(shift.ID)),
				zap.Int64("expected_base", r.ExpectedBase),
				zap.Int64("received_base", receivedBase),
				zap.Int64("variance", variance))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Receive(ctx context.Context, id snowflake.ID, receivedBy string) (*shiftdomain.ShiftHandover, error) {
	ok, err := s.repo.MarkReceived(ctx, s.db, id, strings.TrimSpace(receivedBy))
	if err != nil {
		return nil, err
	}
	if !ok {
		shift, err := s.repo.FindShift(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if shift == nil {
			return nil, shiftdomain.ErrShiftNotFound
		}
		return nil, shiftdomain.ErrShiftNotDelivered
	}
	return s.Get(ctx, id)
}
