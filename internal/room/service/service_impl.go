package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/casalunahms/casaluna/internal/clock"
	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  roomdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  roomdomain.Repository
}

func NewService(p ServiceParam) roomdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("room.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req roomdomain.CreateRoomRequest) (*roomdomain.Room, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" || req.BedsCount <= 0 || req.MaxCapacity <= 0 {
		return nil, roomdomain.ErrInvalidRoom
	}

	prices := datatypes.JSONMap{}
	for tier, price := range req.OccupancyPrices {
		prices[tier] = price
	}

	now := s.clock.Now(ctx)
	room := &roomdomain.Room{
		ID:              s.genID.Generate(),
		Number:          number,
		BedsCount:       req.BedsCount,
		MaxCapacity:     req.MaxCapacity,
		OccupancyPrices: prices,
		Status:          roomdomain.StatusFree,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*roomdomain.Room, error) {
	room, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, roomdomain.ErrRoomNotFound
	}
	return room, nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) ([]*roomdomain.Room, error) {
	return s.repo.List(ctx, s.db, page)
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, to roomdomain.RoomStatus) (*roomdomain.Room, error) {
	if !to.Valid() {
		return nil, roomdomain.ErrInvalidStatus
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.Status == to {
		return room, nil
	}
	if !roomdomain.CanTransition(room.Status, to) {
		return nil, roomdomain.ErrInvalidTransition
	}

	// The CAS re-checks the status read above; a concurrent check-in or
	// checkout surfaces as a conflict instead of a silent overwrite.
	ok, err := s.repo.UpdateStatusCAS(ctx, s.db, id, []roomdomain.RoomStatus{room.Status}, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, roomdomain.ErrStatusConflict
	}

	if room.Status == roomdomain.StatusCleaning && to == roomdomain.StatusFree {
		if err := s.repo.MarkCleaned(ctx, s.db, id); err != nil {
			return nil, err
		}
	}

	s.log.Info("room status changed",
		zap.Int64("room_id", int64(id)),
		zap.String("from", string(room.Status)),
		zap.String("to", string(to)))
	return s.Get(ctx, id)
}
