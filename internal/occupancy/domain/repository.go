package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert writes a snapshot exactly once; an existing (room, date)
	// row is an invariant violation surfaced as ErrSnapshotExists.
	Insert(ctx context.Context, db *gorm.DB, snap *RoomDailyStatus) error
	FindByRoomAndDate(ctx context.Context, db *gorm.DB, roomID snowflake.ID, date time.Time) (*RoomDailyStatus, error)
	ListByRoomBetween(ctx context.Context, db *gorm.DB, roomID snowflake.ID, from, to time.Time) ([]*RoomDailyStatus, error)
}
