package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
)

type repo struct{}

func Provide() staynightdomain.Repository {
	return &repo{}
}

func (r *repo) InsertStay(ctx context.Context, db *gorm.DB, stay *staynightdomain.Stay) error {
	return db.WithContext(ctx).Create(stay).Error
}

func (r *repo) FindStayByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*staynightdomain.Stay, error) {
	var stay staynightdomain.Stay
	err := db.WithContext(ctx).Where("booking_id = ?", bookingID).Limit(1).Find(&stay).Error
	if err != nil {
		return nil, err
	}
	if stay.ID == 0 {
		return nil, nil
	}
	return &stay, nil
}

func (r *repo) EndStay(ctx context.Context, db *gorm.DB, stayID snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&staynightdomain.Stay{}).
		Where("id = ? AND ended_at IS NULL", stayID).
		Updates(map[string]any{"ended_at": at, "updated_at": at}).Error
}

// InsertNight surfaces the unique (stay, date) constraint as a domain
// error; duplicate nights indicate double-charging risk and must fail
// loudly.
func (r *repo) InsertNight(ctx context.Context, db *gorm.DB, night *staynightdomain.StayNight) error {
	err := db.WithContext(ctx).Create(night).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return staynightdomain.ErrNightAlreadyExists
	}
	return err
}

func (r *repo) ExistingDates(ctx context.Context, db *gorm.DB, stayID snowflake.ID) (map[time.Time]bool, error) {
	var nights []staynightdomain.StayNight
	err := db.WithContext(ctx).
		Select("date").
		Where("stay_id = ?", stayID).
		Find(&nights).Error
	if err != nil {
		return nil, err
	}
	existing := make(map[time.Time]bool, len(nights))
	for _, n := range nights {
		existing[n.Date.UTC()] = true
	}
	return existing, nil
}

func (r *repo) UnpaidByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) ([]*staynightdomain.StayNight, error) {
	var nights []*staynightdomain.StayNight
	err := db.WithContext(ctx).
		Where("reservation_id = ? AND is_paid = ?", reservationID, false).
		Order("date ASC").
		Find(&nights).Error
	if err != nil {
		return nil, err
	}
	return nights, nil
}

func (r *repo) ListByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) ([]*staynightdomain.StayNight, error) {
	var nights []*staynightdomain.StayNight
	err := db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("date ASC").
		Find(&nights).Error
	if err != nil {
		return nil, err
	}
	return nights, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, nightID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&staynightdomain.StayNight{}).
		Where("id = ?", nightID).
		Updates(map[string]any{"is_paid": true, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) SumPricesByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&staynightdomain.StayNight{}).
		Select("COALESCE(SUM(price), 0)").
		Where("reservation_id = ?", reservationID).
		Scan(&total).Error
	return total, err
}

func (r *repo) CountByReservation(ctx context.Context, db *gorm.DB, reservationID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&staynightdomain.StayNight{}).
		Where("reservation_id = ?", reservationID).
		Count(&count).Error
	return count, err
}
