package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	"github.com/casalunahms/casaluna/pkg/db/option"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type repo struct{}

func Provide() reservationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, res *reservationdomain.Reservation) error {
	return db.WithContext(ctx).Create(res).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*reservationdomain.Reservation, error) {
	var res reservationdomain.Reservation
	err := db.WithContext(ctx).
		Preload("Bookings").
		Where("id = ?", id).
		Limit(1).
		Find(&res).Error
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		return nil, nil
	}
	return &res, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*reservationdomain.Reservation, error) {
	var items []*reservationdomain.Reservation
	query := db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Preload("Bookings").
		Order("created_at DESC, id DESC")
	query = option.ApplyPagination(page).Apply(query)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetCancelled(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where("id = ? AND cancelled_at IS NULL", id).
		Updates(map[string]any{"cancelled_at": at, "updated_at": at}).Error
}

func (r *repo) UpdateTotal(ctx context.Context, db *gorm.DB, id snowflake.ID, total int64) error {
	return db.WithContext(ctx).
		Model(&reservationdomain.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{"total_amount": total, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) FindBooking(ctx context.Context, db *gorm.DB, id snowflake.ID) (*reservationdomain.RoomBooking, error) {
	var b reservationdomain.RoomBooking
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) BookingsForRoomBetween(ctx context.Context, db *gorm.DB, roomID snowflake.ID, from, to time.Time) ([]*reservationdomain.RoomBooking, error) {
	var bookings []*reservationdomain.RoomBooking
	err := db.WithContext(ctx).
		Model(&reservationdomain.RoomBooking{}).
		Joins("JOIN reservations ON reservations.id = room_bookings.reservation_id").
		Where("reservations.cancelled_at IS NULL").
		Where("room_bookings.room_id = ?", roomID).
		Where("room_bookings.check_in_date <= ? AND room_bookings.check_out_date >= ?", to, from).
		Order("room_bookings.check_in_date ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) ActiveBookingForRoom(ctx context.Context, db *gorm.DB, roomID snowflake.ID) (*reservationdomain.RoomBooking, error) {
	var b reservationdomain.RoomBooking
	err := db.WithContext(ctx).
		Where("room_id = ? AND checked_in_at IS NOT NULL AND checked_out_at IS NULL", roomID).
		Limit(1).
		Find(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) SetBookingCheckedIn(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&reservationdomain.RoomBooking{}).
		Where("id = ? AND checked_in_at IS NULL", id).
		Updates(map[string]any{"checked_in_at": at, "updated_at": at}).Error
}

func (r *repo) SetBookingCheckedOut(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&reservationdomain.RoomBooking{}).
		Where("id = ? AND checked_out_at IS NULL", id).
		Updates(map[string]any{"checked_out_at": at, "updated_at": at}).Error
}

func (r *repo) UpdateBookingCheckOutDate(ctx context.Context, db *gorm.DB, id snowflake.ID, checkOut time.Time) error {
	return db.WithContext(ctx).
		Model(&reservationdomain.RoomBooking{}).
		Where("id = ?", id).
		Updates(map[string]any{"check_out_date": checkOut, "updated_at": time.Now().UTC()}).Error
}
