package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertStay(ctx context.Context, db *gorm.DB, stay *Stay) error
	FindStayByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*Stay, error)
	EndStay(ctx context.Context, db *gorm.DB, stayID snowflake.ID, at time.Time) error

	InsertNight(ctx context.Context, db *gorm.DB, night *StayNight) error
	// ExistingDates returns the set of dates already generated for a stay.
	ExistingDates(ctx context.Context, db *gorm.DB, stayID snowflake.ID) (map[time.Time]bool, error)
	// UnpaidByReservation returns unpaid nights oldest-first.
	UnpaidByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) ([]*StayNight, error)
	ListByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) ([]*StayNight, error)
	MarkPaid(ctx context.Context, db *gorm.DB, nightID snowflake.ID) error
	SumPricesByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (int64, error)
	CountByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (int64, error)
}
