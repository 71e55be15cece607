package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	paymentdomain "github.com/casalunahms/casaluna/internal/payment/domain"
)

type recordPaymentRequest struct {
	ReservationID string `json:"reservation_id"`
	Amount        int64  `json:"amount"`
	MethodCode    string `json:"method_code"`
	Source        string `json:"source"`
	BankName      string `json:"bank_name"`
	Reference     string `json:"reference"`
	ReceiptNumber string `json:"receipt_number"`
}

type createPaymentMethodRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// @Summary      Record Payment
// @Description  Append a payment and apply it to the reservation's night ledger
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Idempotency Key"
// @Param        request body recordPaymentRequest true "Record Payment Request"
// @Success      200  {object}  DataResponse
// @Router       /payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reservationID, err := snowflake.ParseString(strings.TrimSpace(req.ReservationID))
	if err != nil || reservationID == 0 {
		AbortWithError(c, newValidationError("reservation_id", "invalid_id", "invalid reservation id"))
		return
	}

	receipt := strings.TrimSpace(req.ReceiptNumber)
	if receipt == "" {
		receipt = idempotencyKeyFromHeader(c)
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordPaymentRequest{
		ReservationID: reservationID,
		Amount:        req.Amount,
		MethodCode:    strings.TrimSpace(req.MethodCode),
		Source:        paymentdomain.PaymentSource(strings.TrimSpace(req.Source)),
		BankName:      strings.TrimSpace(req.BankName),
		Reference:     strings.TrimSpace(req.Reference),
		ReceiptNumber: receipt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      List Reservation Payments
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  ListResponse
// @Router       /reservations/{id}/payments [get]
func (s *Server) ListReservationPayments(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	payments, err := s.paymentSvc.ListByReservation(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, payments, nil)
}

// @Summary      List Payment Methods
// @Tags         payments
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /payment-methods [get]
func (s *Server) ListPaymentMethods(c *gin.Context) {
	methods, err := s.paymentSvc.ListMethods(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, methods, nil)
}

// @Summary      Create Payment Method
// @Description  Register a payment method; its settlement channel is resolved from the code and name
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body createPaymentMethodRequest true "Create Payment Method Request"
// @Success      200  {object}  DataResponse
// @Router       /payment-methods [post]
func (s *Server) CreatePaymentMethod(c *gin.Context) {
	var req createPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	method, err := s.paymentSvc.CreateMethod(c.Request.Context(), strings.TrimSpace(req.Code), strings.TrimSpace(req.Name))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, method)
}
