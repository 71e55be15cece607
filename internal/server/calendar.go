package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	occupancyservice "github.com/casalunahms/casaluna/internal/occupancy/service"
	"github.com/casalunahms/casaluna/pkg/dates"
)

type snapshotDayRequest struct {
	Date string `json:"date"`
}

// @Summary      Get Calendar
// @Description  Per-day occupancy classification for a room, optionally compressed into ranges
// @Tags         calendar
// @Produce      json
// @Param        room_id  query  string  true   "Room ID"
// @Param        from     query  string  true   "Start date (YYYY-MM-DD)"
// @Param        to       query  string  true   "End date (YYYY-MM-DD)"
// @Param        compress query  bool    false  "Fold consecutive days into ranges"
// @Success      200  {object}  DataResponse
// @Router       /calendar [get]
func (s *Server) GetCalendar(c *gin.Context) {
	var query struct {
		RoomID   string `form:"room_id"`
		From     string `form:"from"`
		To       string `form:"to"`
		Compress bool   `form:"compress"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	roomID, err := snowflake.ParseString(strings.TrimSpace(query.RoomID))
	if err != nil || roomID == 0 {
		AbortWithError(c, newValidationError("room_id", "invalid_id", "invalid room id"))
		return
	}
	from, err := dates.Parse(query.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_date", "expected YYYY-MM-DD"))
		return
	}
	to, err := dates.Parse(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_date", "expected YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		AbortWithError(c, newValidationError("to", "invalid_range", "to must not be before from"))
		return
	}

	days, err := s.occupancy.Timeline(c.Request.Context(), roomID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !query.Compress {
		respondData(c, gin.H{"room_id": roomID, "days": days})
		return
	}

	bookings, err := s.occupancy.BookingsBetween(c.Request.Context(), roomID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"room_id": roomID, "ranges": occupancyservice.Compress(days, bookings)})
}

// @Summary      Snapshot Calendar Day
// @Description  Write the immutable occupancy snapshot for a past date
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        request  body  snapshotDayRequest  true  "Snapshot request"
// @Success      200  {object}  DataResponse
// @Router       /calendar/snapshot [post]
func (s *Server) SnapshotCalendarDay(c *gin.Context) {
	var req snapshotDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "expected YYYY-MM-DD"))
		return
	}

	written, err := s.occupancy.SnapshotDay(c.Request.Context(), date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"date": req.Date, "snapshots_written": written})
}
