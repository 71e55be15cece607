package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	shiftdomain "github.com/casalunahms/casaluna/internal/shift/domain"
)

type openShiftRequest struct {
	OpenedBy    string `json:"opened_by"`
	OpeningBase int64  `json:"opening_base"`
}

type deliverShiftRequest struct {
	ReceivedBase int64 `json:"received_base"`
}

type receiveShiftRequest struct {
	ReceivedBy string `json:"received_by"`
}

type recordSaleRequest struct {
	Description    string `json:"description"`
	CashAmount     int64  `json:"cash_amount"`
	TransferAmount int64  `json:"transfer_amount"`
	PaymentMethod  string `json:"payment_method"`
}

type recordOutflowRequest struct {
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// @Summary      Open Shift
// @Description  Open a cash-drawer shift with its counted opening base
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        request body openShiftRequest true "Open Shift Request"
// @Success      200  {object}  DataResponse
// @Router       /shifts [post]
func (s *Server) OpenShift(c *gin.Context) {
	var req openShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shift, err := s.shiftSvc.Open(c.Request.Context(), strings.TrimSpace(req.OpenedBy), req.OpeningBase)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, shift)
}

// @Summary      Get Shift
// @Tags         shifts
// @Produce      json
// @Param        id   path      string  true  "Shift ID"
// @Success      200  {object}  DataResponse
// @Router       /shifts/{id} [get]
func (s *Server) GetShiftByID(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	shift, err := s.shiftSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, shift)
}

// @Summary      Reconcile Shift
// @Description  Recompute the expected drawer position for an active shift
// @Tags         shifts
// @Produce      json
// @Param        id   path      string  true  "Shift ID"
// @Success      200  {object}  DataResponse
// @Router       /shifts/{id}/reconcile [post]
func (s *Server) ReconcileShift(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	result, err := s.shiftSvc.Reconcile(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, result)
}

// @Summary      Deliver Shift
// @Description  Run the final reconciliation, record the counted base and variance, and freeze the shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        id       path  string               true  "Shift ID"
// @Param        request  body  deliverShiftRequest  true  "Deliver Shift Request"
// @Success      200  {object}  DataResponse
// @Router       /shifts/{id}/deliver [post]
func (s *Server) DeliverShift(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var req deliverShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shift, err := s.shiftSvc.Deliver(c.Request.Context(), id, req.ReceivedBase)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, shift)
}

// @Summary      Receive Shift
// @Description  Countersign a delivered shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        id       path  string               true  "Shift ID"
// @Param        request  body  receiveShiftRequest  true  "Receive Shift Request"
// @Success      200  {object}  DataResponse
// @Router       /shifts/{id}/receive [post]
func (s *Server) ReceiveShift(c *gin.Context) {
	id, apiErr := idParam(c, "id")
	if apiErr != nil {
		AbortWithError(c, apiErr)
		return
	}

	var req receiveShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	shift, err := s.shiftSvc.Receive(c.Request.Context(), id, strings.TrimSpace(req.ReceivedBy))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, shift)
}

// @Summary      Record Sale
// @Description  Record a point-of-sale entry counted by shift reconciliation
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        request body recordSaleRequest true "Record Sale Request"
// @Success      200  {object}  DataResponse
// @Router       /sales [post]
func (s *Server) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sale := &shiftdomain.Sale{
		Description:    strings.TrimSpace(req.Description),
		CashAmount:     req.CashAmount,
		TransferAmount: req.TransferAmount,
		PaymentMethod:  shiftdomain.SaleMethod(strings.TrimSpace(req.PaymentMethod)),
	}
	if err := s.shiftSvc.RecordSale(c.Request.Context(), sale); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, sale)
}

// @Summary      Record Outflow
// @Description  Record money leaving the drawer (expense or withdrawal)
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        request body recordOutflowRequest true "Record Outflow Request"
// @Success      200  {object}  DataResponse
// @Router       /outflows [post]
func (s *Server) RecordOutflow(c *gin.Context) {
	var req recordOutflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	out := &shiftdomain.CashOutflow{
		Amount: req.Amount,
		Kind:   shiftdomain.OutflowKind(strings.TrimSpace(req.Kind)),
		Reason: strings.TrimSpace(req.Reason),
	}
	if err := s.shiftSvc.RecordOutflow(c.Request.Context(), out); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, out)
}
