package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
)

type repo struct{}

func Provide() shiftdomain.Repository {
	return &repo{}
}

func (r *repo) InsertShift(ctx context.Context, db *gorm.DB, shift *shiftdomain.ShiftHandover) error {
	return db.WithContext(ctx).Create(shift).Error
}

func (r *repo) FindShift(ctx context.Context, db *gorm.DB, id snowflake.ID) (*shiftdomain.ShiftHandover, error) {
	var shift shiftdomain.ShiftHandover
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&shift).Error
	if err != nil {
		return nil, err
	}
	if shift.ID == 0 {
		return nil, nil
	}
	return &shift, nil
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, res shiftdomain.ReconciliationResult) (bool, error) {
	result := db.WithContext(ctx).
		Model(&shiftdomain.ShiftHandover{}).
		Where("id = ? AND status = ?", id, shiftdomain.ShiftActive).
		Updates(map[string]any{
			"cash_in":         res.CashIn,
			"transfer_in":     res.TransferIn,
			"cash_out":        res.CashOut,
			"unclassified_in": res.UnclassifiedIn,
			"expected_base":   res.ExpectedBase,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) MarkDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, receivedBase, variance int64, endedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).
		Model(&shiftdomain.ShiftHandover{}).
		Where("id = ? AND status = ?", id, shiftdomain.ShiftActive).
		Updates(map[string]any{
			"received_base": receivedBase,
			"variance":      variance,
			"ended_at":      endedAt,
			"status":        shiftdomain.ShiftDelivered,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) MarkReceived(ctx context.Context, db *gorm.DB, id snowflake.ID, receivedBy string) (bool, error) {
	result := db.WithContext(ctx).
		Model(&shiftdomain.ShiftHandover{}).
		Where("id = ? AND status = ?", id, shiftdomain.ShiftDelivered).
		Updates(map[string]any{
			"received_by": receivedBy,
			"status":      shiftdomain.ShiftReceived,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) InsertSale(ctx context.Context, db *gorm.DB, sale *shiftdomain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) InsertOutflow(ctx context.Context, db *gorm.DB, out *shiftdomain.CashOutflow) error {
	return db.WithContext(ctx).Create(out).Error
}

func (r *repo) SumSalesCashBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&shiftdomain.Sale{}).
		Select("COALESCE(SUM(cash_amount), 0)").
		Where("payment_method IN ?", []shiftdomain.SaleMethod{shiftdomain.SaleCash, shiftdomain.SaleMixed}).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&total).Error
	return total, err
}

func (r *repo) SumSalesTransferBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&shiftdomain.Sale{}).
		Select("COALESCE(SUM(transfer_amount), 0)").
		Where("payment_method IN ?", []shiftdomain.SaleMethod{shiftdomain.SaleTransfer, shiftdomain.SaleMixed}).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&total).Error
	return total, err
}

func (r *repo) SumOutflowsBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&shiftdomain.CashOutflow{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&total).Error
	return total, err
}
