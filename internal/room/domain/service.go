package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type CreateRoomRequest struct {
	Number          string
	BedsCount       int
	MaxCapacity     int
	OccupancyPrices map[string]int64
}

type Service interface {
	Create(ctx context.Context, req CreateRoomRequest) (*Room, error)
	Get(ctx context.Context, id snowflake.ID) (*Room, error)
	List(ctx context.Context, page pagination.Pagination) ([]*Room, error)

	// SetStatus applies a manual status change, holding the state
	// machine's transition rules. Completing a cleaning stamps
	// LastCleanedAt.
	SetStatus(ctx context.Context, id snowflake.ID, to RoomStatus) (*Room, error)
}
