package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertMethod(ctx context.Context, db *gorm.DB, m *PaymentMethod) error
	FindMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentMethod, error)
	FindMethodByCode(ctx context.Context, db *gorm.DB, code string) (*PaymentMethod, error)
	ListMethods(ctx context.Context, db *gorm.DB) ([]*PaymentMethod, error)

	Insert(ctx context.Context, db *gorm.DB, p *Payment) error
	FindByReceipt(ctx context.Context, db *gorm.DB, receipt string) (*Payment, error)
	ListByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) ([]*Payment, error)
	SumByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (int64, error)
	// SumChannelBetween totals payments settling through channel with
	// paid_at inside [from, to].
	SumChannelBetween(ctx context.Context, db *gorm.DB, channel SettlementChannel, from, to time.Time) (int64, error)
}
