package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
)

// Service owns the chargeable-night ledger. Methods that take a *gorm.DB
// participate in the caller's transaction.
type Service interface {
	// BeginStay creates the stay for a booking at check-in and
	// generates its chargeable nights. Idempotent per booking.
	BeginStay(ctx context.Context, tx *gorm.DB, booking *reservationdomain.RoomBooking) (*Stay, error)
	// GenerateNights fills any missing nights for the stay's current
	// booking window, one per date in [check_in, check_out). Existing
	// dates are left untouched.
	GenerateNights(ctx context.Context, tx *gorm.DB, stay *Stay, booking *reservationdomain.RoomBooking) (int, error)
	EndStayForBooking(ctx context.Context, tx *gorm.DB, bookingID snowflake.ID) error

	// Apply consumes a received amount against unpaid nights oldest
	// first. The payment row must already be recorded in the same
	// transaction so the independent balance computation sees it.
	Apply(ctx context.Context, tx *gorm.DB, reservationID snowflake.ID, amount int64) (AppliedResult, error)

	Outstanding(ctx context.Context, reservationID snowflake.ID) (Balance, error)
	Nights(ctx context.Context, reservationID snowflake.ID) ([]*StayNight, error)
	HasLedgerActivity(ctx context.Context, reservationID snowflake.ID) (bool, error)
}
