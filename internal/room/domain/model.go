// Package domain holds the room aggregate and its status state machine.
package domain

import (
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type RoomStatus string

const (
	StatusFree            RoomStatus = "free"
	StatusReserved        RoomStatus = "reserved"
	StatusOccupied        RoomStatus = "occupied"
	StatusPendingCheckout RoomStatus = "pending_checkout"
	StatusCleaning        RoomStatus = "cleaning"
	StatusDirty           RoomStatus = "dirty"
	StatusMaintenance     RoomStatus = "maintenance"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidRoom       = errors.New("invalid room attributes")
	ErrRoomNumberTaken   = errors.New("room number already exists")
	ErrInvalidStatus     = errors.New("invalid room status")
	ErrInvalidTransition = errors.New("invalid room status transition")
	ErrStatusConflict    = errors.New("room status changed concurrently")
)

func (s RoomStatus) Valid() bool {
	switch s {
	case StatusFree, StatusReserved, StatusOccupied, StatusPendingCheckout,
		StatusCleaning, StatusDirty, StatusMaintenance:
		return true
	}
	return false
}

// transitions encodes §check-in/checkout/cleaning flows: check-in moves
// free/reserved rooms to occupied, checkout moves occupied rooms through
// pending_checkout into cleaning or dirty, cleaning completion frees the
// room, and maintenance is toggled from any unoccupied state.
var transitions = map[RoomStatus][]RoomStatus{
	StatusFree:            {StatusReserved, StatusOccupied, StatusCleaning, StatusMaintenance},
	StatusReserved:        {StatusFree, StatusOccupied, StatusMaintenance},
	StatusOccupied:        {StatusPendingCheckout, StatusCleaning, StatusDirty},
	StatusPendingCheckout: {StatusCleaning, StatusDirty},
	StatusCleaning:        {StatusFree, StatusMaintenance},
	StatusDirty:           {StatusCleaning, StatusMaintenance},
	StatusMaintenance:     {StatusFree, StatusCleaning},
}

func CanTransition(from, to RoomStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Room struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Number      string       `gorm:"type:text;not null;uniqueIndex" json:"number"`
	BedsCount   int          `gorm:"not null" json:"beds_count"`
	MaxCapacity int          `gorm:"not null" json:"max_capacity"`
	// OccupancyPrices maps guest count to nightly price in pesos,
	// e.g. {"1": 50000, "2": 80000}.
	OccupancyPrices datatypes.JSONMap `json:"occupancy_prices"`
	Status          RoomStatus        `gorm:"type:text;not null;index" json:"status"`
	LastCleanedAt   *time.Time        `json:"last_cleaned_at,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

// PriceForOccupancy looks up the nightly price for a guest count,
// falling back to the largest tier at or below it.
func (r *Room) PriceForOccupancy(guests int) int64 {
	var best int64
	bestCount := -1
	for key, raw := range r.OccupancyPrices {
		count, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		price, ok := toInt64(raw)
		if !ok {
			continue
		}
		if count <= guests && count > bestCount {
			bestCount = count
			best = price
		}
	}
	return best
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
