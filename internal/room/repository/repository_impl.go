package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	"github.com/casalunahms/casaluna/pkg/db/option"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type repo struct{}

func Provide() roomdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, room *roomdomain.Room) error {
	err := db.WithContext(ctx).Create(room).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return roomdomain.ErrRoomNumberTaken
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*roomdomain.Room, error) {
	var room roomdomain.Room
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&room).Error
	if err != nil {
		return nil, err
	}
	if room.ID == 0 {
		return nil, nil
	}
	return &room, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*roomdomain.Room, error) {
	var room roomdomain.Room
	err := db.WithContext(ctx).
		Where("number = ?", number).
		Limit(1).
		Find(&room).Error
	if err != nil {
		return nil, err
	}
	if room.ID == 0 {
		return nil, nil
	}
	return &room, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*roomdomain.Room, error) {
	var rooms []*roomdomain.Room
	query := db.WithContext(ctx).Model(&roomdomain.Room{}).Order("number ASC")
	query = option.ApplyPagination(page).Apply(query)
	if err := query.Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repo) UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from []roomdomain.RoomStatus, to roomdomain.RoomStatus) (bool, error) {
	result := db.WithContext(ctx).
		Model(&roomdomain.Room{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) MarkCleaned(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).
		Model(&roomdomain.Room{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_cleaned_at": now,
			"updated_at":      now,
		}).Error
}
