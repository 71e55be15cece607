package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	reservationdomain "github.com/casalunahms/casaluna/internal/reservation/domain"
	"github.com/casalunahms/casaluna/pkg/dates"
	"github.com/casalunahms/casaluna/pkg/db/pagination"
)

type createBookingRequest struct {
	RoomID        string  `json:"room_id"`
	CheckInDate   string  `json:"check_in_date"`
	CheckOutDate  string  `json:"check_out_date"`
	CheckInTime   *string `json:"check_in_time,omitempty"`
	PricePerNight int64   `json:"price_per_night"`
	Guests        int     `json:"guests"`
}

type createReservationRequest struct {
	CustomerName     string                 `json:"customer_name"`
	CustomerDocument string                 `json:"customer_document"`
	DepositAmount    int64                  `json:"deposit_amount"`
	Bookings         []createBookingRequest `json:"bookings"`
}

type bookingActionRequest struct {
	// BookingID may be omitted when the reservation has exactly one
	// room booking.
	BookingID string `json:"booking_id"`
}

type extendBookingRequest struct {
	BookingID    string `json:"booking_id"`
	CheckOutDate string `json:"check_out_date"`
}

// @Summary      Create Reservation
// @Description  Create a reservation with one or more room bookings
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        request body createReservationRequest true "Create Reservation Request"
// @Success      200  {object}  DataResponse
// @Router       /reservations [post]
func (s *Server) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	domainReq := reservationdomain.CreateReservationRequest{
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerDocument: strings.TrimSpace(req.CustomerDocument),
		DepositAmount:    req.DepositAmount,
	}
	for _, b := range req.Bookings {
		roomID, err := snowflake.ParseString(b.RoomID)
		if err != nil {
			AbortWithError(c, newValidationError("room_id", "invalid_id", "invalid room id"))
			return
		}
		checkIn, err := dates.Parse(b.CheckInDate)
		if err != nil {
			AbortWithError(c, newValidationError("check_in_date", "invalid_date", "expected YYYY-MM-DD"))
			return
		}
		checkOut, err := dates.Parse(b.CheckOutDate)
		if err != nil {
			AbortWithError(c, newValidationError("check_out_date", "invalid_date", "expected YYYY-MM-DD"))
			return
		}
		domainReq.Bookings = append(domainReq.Bookings, reservationdomain.CreateBookingRequest{
			RoomID:        roomID,
			CheckInDate:   checkIn,
			CheckOutDate:  checkOut,
			CheckInTime:   b.CheckInTime,
			PricePerNight: b.PricePerNight,
			Guests:        b.Guests,
		})
	}

	resp, err := s.reservationSvc.Create(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      List Reservations
// @Tags         reservations
// @Produce      json
// @Param        page_token  query  string  false  "Page Token"
// @Param        page_size   query  int     false  "Page Size"
// @Success      200  {object}  ListResponse
// @Router       /reservations [get]
func (s *Server) ListReservations(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reservations, err := s.reservationSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, reservations, query.Next(len(reservations)))
}

// @Summary      Get Reservation
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  DataResponse
// @Router       /reservations/{id} [get]
func (s *Server) GetReservationByID(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	resp, err := s.reservationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Cancel Reservation
// @Description  Cancel a reservation that has no stay or payment activity
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  DataResponse
// @Router       /reservations/{id}/cancel [post]
func (s *Server) CancelReservation(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	if err := s.reservationSvc.Cancel(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"cancelled": true})
}

// @Summary      Check In
// @Description  Check a booking in, opening its chargeable stay
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id       path  string                true   "Reservation ID"
// @Param        request  body  bookingActionRequest  false  "Booking selector"
// @Success      200  {object}  DataResponse
// @Router       /reservations/{id}/check-in [post]
func (s *Server) CheckIn(c *gin.Context) {
	bookingID, apiErr := s.resolveBookingID(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	if bookingID == 0 {
		return
	}

	booking, err := s.reservationSvc.CheckIn(c.Request.Context(), bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, booking)
}

// @Summary      Check Out
// @Description  Check a booking out, closing its stay and freeing the room
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id       path  string                true   "Reservation ID"
// @Param        request  body  bookingActionRequest  false  "Booking selector"
// @Success      200  {object}  DataResponse
// @Router       /reservations/{id}/check-out [post]
func (s *Server) CheckOut(c *gin.Context) {
	bookingID, apiErr := s.resolveBookingID(c)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	if bookingID == 0 {
		return
	}

	booking, err := s.reservationSvc.CheckOut(c.Request.Context(), bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, booking)
}

// @Summary      Extend Booking
// @Description  Push a booking's checkout date forward
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Reservation ID"
// @Param        request  body  extendBookingRequest  true  "Extend Booking Request"
// @Success      200  {object}  DataResponse
// @Router       /reservations/{id}/extend [post]
func (s *Server) ExtendBooking(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var req extendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	newCheckOut, err := dates.Parse(req.CheckOutDate)
	if err != nil {
		AbortWithError(c, newValidationError("check_out_date", "invalid_date", "expected YYYY-MM-DD"))
		return
	}

	bookingID, apiErr := s.pickBooking(c, id, req.BookingID)
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}
	if bookingID == 0 {
		return
	}

	booking, err := s.reservationSvc.Extend(c.Request.Context(), bookingID, newCheckOut)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, booking)
}

// @Summary      List Stay Nights
// @Description  The reservation's chargeable-night ledger
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  ListResponse
// @Router       /reservations/{id}/nights [get]
func (s *Server) ListStayNights(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	nights, err := s.staynightSvc.Nights(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, nights, nil)
}

// @Summary      Get Balance
// @Description  Total owed, total paid, and outstanding for a reservation
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  DataResponse
// @Router       /reservations/{id}/balance [get]
func (s *Server) GetBalance(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	balance, err := s.staynightSvc.Outstanding(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, balance)
}

// resolveBookingID reads the reservation id from the path and the
// optional booking selector from the body. A zero return with nil error
// means the response has already been written.
func (s *Server) resolveBookingID(c *gin.Context) (snowflake.ID, *APIError) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		return 0, apiErr
	}

	var req bookingActionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return 0, invalidRequestError()
		}
	}
	return s.pickBooking(c, id, req.BookingID)
}

func (s *Server) pickBooking(c *gin.Context, reservationID snowflake.ID, rawBookingID string) (snowflake.ID, *APIError) {
	if raw := strings.TrimSpace(rawBookingID); raw != "" {
		bookingID, err := snowflake.ParseString(raw)
		if err != nil {
			return 0, newValidationError("booking_id", "invalid_id", "invalid booking id")
		}
		return bookingID, nil
	}

	reservation, err := s.reservationSvc.Get(c.Request.Context(), reservationID)
	if err != nil {
		AbortWithError(c, err)
		return 0, nil
	}
	if len(reservation.Bookings) != 1 {
		return 0, newValidationError("booking_id", "ambiguous_booking", "booking_id is required for multi-room reservations")
	}
	return reservation.Bookings[0].ID, nil
}
