package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	staynightdomain "github.com/casalunahms/casaluna/internal/staynight/domain"
)

type RecordPaymentRequest struct {
	ReservationID snowflake.ID
	Amount        int64
	MethodCode    string
	Source        PaymentSource
	BankName      string
	Reference     string
	// ReceiptNumber is optional; when supplied it deduplicates
	// retried submissions.
	ReceiptNumber string
}

type RecordPaymentResponse struct {
	Payment *Payment                   `json:"payment"`
	Applied staynightdomain.AppliedResult `json:"applied"`
}

type Service interface {
	// Record appends a payment and applies it to the stay-night
	// ledger in one transaction, serialized per reservation.
	Record(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResponse, error)
	ListByReservation(ctx context.Context, reservationID snowflake.ID) ([]*Payment, error)
	CreateMethod(ctx context.Context, code, name string) (*PaymentMethod, error)
	ListMethods(ctx context.Context) ([]*PaymentMethod, error)
}
