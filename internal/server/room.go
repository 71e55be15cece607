package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	roomdomain "github.com/casalunahms/casaluna/internal/room/domain"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type createRoomRequest struct {
	Number          string           `json:"number"`
	BedsCount       int              `json:"beds_count"`
	MaxCapacity     int              `json:"max_capacity"`
	OccupancyPrices map[string]int64 `json:"occupancy_prices"`
}

type setRoomStatusRequest struct {
	Status string `json:"status"`
}

// @Summary      Create Room
// @Description  Register a room with its occupancy price table
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body createRoomRequest true "Create Room Request"
// @Success      200  {object}  DataResponse
// @Router       /rooms [post]
func (s *Server) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	room, err := s.roomSvc.Create(c.Request.Context(), roomdomain.CreateRoomRequest{
		Number:          strings.TrimSpace(req.Number),
		BedsCount:       req.BedsCount,
		MaxCapacity:     req.MaxCapacity,
		OccupancyPrices: req.OccupancyPrices,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, room)
}

// @Summary      List Rooms
// @Tags         rooms
// @Produce      json
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /rooms [get]
func (s *Server) ListRooms(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rooms, err := s.roomSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, rooms, query.Next(len(rooms)))
}

// @Summary      Get Room
// @Tags         rooms
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  DataResponse
// @Router       /rooms/{id} [get]
func (s *Server) GetRoomByID(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	room, err := s.roomSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, room)
}

// @Summary      Set Room Status
// @Description  Manually move a room through its status state machine
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Room ID"
// @Param        request  body  setRoomStatusRequest  true  "Set Room Status Request"
// @Success      200  {object}  DataResponse
// @Router       /rooms/{id}/status [post]
func (s *Server) SetRoomStatus(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var req setRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	room, err := s.roomSvc.SetStatus(c.Request.Context(), id, roomdomain.RoomStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, room)
}
