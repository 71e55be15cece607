// Package domain holds the append-only payment ledger. Ordering matters
// only for reconciliation windows; totals are commutative sums.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrMethodNotFound    = errors.New("payment method not found")
	ErrInvalidSource     = errors.New("invalid payment source")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrDuplicateReceipt  = errors.New("receipt number already recorded")
)

// SettlementChannel is the explicit cash/transfer bucket a payment
// settles through, resolved once at ingestion instead of re-matching
// method names on every reconciliation.
type SettlementChannel string

const (
	ChannelCash     SettlementChannel = "cash"
	ChannelTransfer SettlementChannel = "transfer"
	ChannelNone     SettlementChannel = "none"
)

// ResolveChannel classifies a payment method by its code or display
// name. Unmatched methods settle through neither bucket.
func ResolveChannel(code, name string) SettlementChannel {
	for _, s := range []string{code, name} {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "cash", "efectivo":
			return ChannelCash
		case "transfer", "transferencia":
			return ChannelTransfer
		}
	}
	return ChannelNone
}

type PaymentSource string

const (
	SourceLodging     PaymentSource = "lodging"
	SourceConsumption PaymentSource = "consumption"
	SourceDeposit     PaymentSource = "deposit"
	SourceCheckout    PaymentSource = "checkout"
	SourceRefund      PaymentSource = "refund"
)

func (s PaymentSource) Valid() bool {
	switch s {
	case SourceLodging, SourceConsumption, SourceDeposit, SourceCheckout, SourceRefund:
		return true
	}
	return false
}

type PaymentMethod struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Code      string            `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Channel   SettlementChannel `gorm:"type:text;not null" json:"channel"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

type Payment struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	ReservationID snowflake.ID      `gorm:"not null;index" json:"reservation_id"`
	Amount        int64             `gorm:"not null" json:"amount"`
	MethodID      snowflake.ID      `gorm:"not null" json:"method_id"`
	Channel       SettlementChannel `gorm:"type:text;not null;index" json:"channel"`
	Source        PaymentSource     `gorm:"type:text;not null" json:"source"`
	BankName      string            `gorm:"type:text" json:"bank_name,omitempty"`
	Reference     string            `gorm:"type:text" json:"reference,omitempty"`
	// ReceiptNumber doubles as the idempotency key for ingestion.
	ReceiptNumber string    `gorm:"type:text;not null;uniqueIndex" json:"receipt_number"`
	PaidAt        time.Time `gorm:"not null;index" json:"paid_at"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }
