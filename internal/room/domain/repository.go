package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

// Repository methods take the gorm handle so callers can pass either
// the root connection or an open transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, room *Room) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Room, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Room, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Room, error)

	// UpdateStatusCAS moves a room's status only when the current
	// value is one of from; reports false when another writer won.
	UpdateStatusCAS(ctx context.Context, db *gorm.DB, id snowflake.ID, from []RoomStatus, to RoomStatus) (bool, error)
	MarkCleaned(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
