package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertShift(ctx context.Context, db *gorm.DB, shift *ShiftHandover) error
	FindShift(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ShiftHandover, error)
	// UpdateTotals persists a reconciliation pass; only allowed while
	// the shift is active so the guard lives in the WHERE clause.
	UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, r ReconciliationResult) (bool, error)
	MarkDelivered(ctx context.Context, db *gorm.DB, id snowflake.ID, receivedBase, variance int64, endedAt time.Time) (bool, error)
	MarkReceived(ctx context.Context, db *gorm.DB, id snowflake.ID, receivedBy string) (bool, error)

	InsertSale(ctx context.Context, db *gorm.DB, sale *Sale) error
	InsertOutflow(ctx context.Context, db *gorm.DB, out *CashOutflow) error

	SumSalesCashBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	SumSalesTransferBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	SumOutflowsBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
}
