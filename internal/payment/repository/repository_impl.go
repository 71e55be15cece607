package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

func (r *repo) InsertMethod(ctx context.Context, db *gorm.DB, m *paymentdomain.PaymentMethod) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.PaymentMethod, error) {
	var m paymentdomain.PaymentMethod
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindMethodByCode(ctx context.Context, db *gorm.DB, code string) (*paymentdomain.PaymentMethod, error) {
	var m paymentdomain.PaymentMethod
	err := db.WithContext(ctx).Where("code = ?", code).Limit(1).Find(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) ListMethods(ctx context.Context, db *gorm.DB) ([]*paymentdomain.PaymentMethod, error) {
	var methods []*paymentdomain.PaymentMethod
	if err := db.WithContext(ctx).Order("code ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *paymentdomain.Payment) error {
	err := db.WithContext(ctx).Create(p).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return paymentdomain.ErrDuplicateReceipt
	}
	return err
}

func (r *repo) FindByReceipt(ctx context.Context, db *gorm.DB, receipt string) (*paymentdomain.Payment, error) {
	var p paymentdomain.Payment
	err := db.WithContext(ctx).Where("receipt_number = ?", receipt).Limit(1).Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) ([]*paymentdomain.Payment, error) {
	var payments []*paymentdomain.Payment
	err := db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// SumByReservation nets refunds against money received.
func (r *repo) SumByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&paymentdomain.Payment{}).
		Select("COALESCE(SUM(CASE WHEN source = ? THEN -amount ELSE amount END), 0)", paymentdomain.SourceRefund).
		Where("reservation_id = ?", reservationID).
		Scan(&total).Error
	return total, err
}

// SumChannelBetween excludes refunds; drawer refunds are recorded as
// cash outflows on the shift side.
func (r *repo) SumChannelBetween(ctx context.Context, db *gorm.DB, channel paymentdomain.SettlementChannel, from, to time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&paymentdomain.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("channel = ?", channel).
		Where("source <> ?", paymentdomain.SourceRefund).
		Where("paid_at >= ? AND paid_at <= ?", from, to).
		Scan(&total).Error
	return total, err
}
