package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	occupancydomain "github.com/casalunahms/casaluna/internal/occupancy/domain"
)

type repo struct{}

func Provide() occupancydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snap *occupancydomain.RoomDailyStatus) error {
	err := db.WithContext(ctx).Create(snap).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return occupancydomain.ErrSnapshotExists
	}
	return err
}

func (r *repo) FindByRoomAndDate(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (*occupancydomain.RoomDailyStatus, error) {
	var snap occupancydomain.RoomDailyStatus
	err := db.WithContext(ctx).
		Where("room_id = ? AND date = ?", roomID, date).
		Limit(1).
		Find(&snap).Error
	if err != nil {
		return nil, err
	}
	if snap.ID == 0 {
		return nil, nil
	}
	return &snap, nil
}

func (r *repo) ListByRoomBetween(ctx context.Context, db *gorm.DB, roomID snowflake.ID, from, to time.Time) ([]*occupancydomain.RoomDailyStatus, error) {
	var snaps []*occupancydomain.RoomDailyStatus
	err := db.WithContext(ctx).
		Where("room_id = ? AND date >= ? AND date <= ?", roomID, from, to).
		Order("date ASC").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	return snaps, nil
}
