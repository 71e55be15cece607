// Package domain holds the cash-drawer shift handover and the point of
// sale entries reconciled against it.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrShiftNotFound     = errors.New("shift not found")
	ErrShiftNotActive    = errors.New("shift is no longer active")
	ErrShiftNotDelivered = errors.New("shift has not been delivered")
	ErrNegativeBase      = errors.New("opening base cannot be negative")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

type ShiftStatus string

const (
	ShiftActive    ShiftStatus = "active"
	ShiftDelivered ShiftStatus = "delivered"
	ShiftReceived  ShiftStatus = "received"
)

// ShiftHandover is one cash-drawer shift. Totals are recomputed by
// reconciliation while active and freeze at delivery; a received shift
// is immutable.
type ShiftHandover struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Reference string       `gorm:"type:text;not null;uniqueIndex" json:"reference"`
	OpenedBy  string       `gorm:"type:text;not null" json:"opened_by"`
	// ReceivedBy countersigns the handover.
	ReceivedBy string `gorm:"type:text" json:"received_by,omitempty"`
	// StartedAt may be null on imported rows; reconciliation falls
	// back to CreatedAt.
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	EndedAt        *time.Time  `json:"ended_at,omitempty"`
	OpeningBase    int64       `gorm:"not null" json:"opening_base"`
	CashIn         int64       `gorm:"not null;default:0" json:"cash_in"`
	TransferIn     int64       `gorm:"not null;default:0" json:"transfer_in"`
	CashOut        int64       `gorm:"not null;default:0" json:"cash_out"`
	UnclassifiedIn int64       `gorm:"not null;default:0" json:"unclassified_in"`
	ExpectedBase   int64       `gorm:"not null;default:0" json:"expected_base"`
	ReceivedBase   int64       `gorm:"not null;default:0" json:"received_base"`
	Variance       int64       `gorm:"not null;default:0" json:"variance"`
	Status         ShiftStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}

func (ShiftHandover) TableName() string { return "shift_handovers" }

// Window is the shift's reconciliation window, clamped so the end is
// never before the start.
func (s *ShiftHandover) Window(now time.Time) (time.Time, time.Time) {
	start := s.CreatedAt
	if s.StartedAt != nil {
		start = *s.StartedAt
	}
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}

type SaleMethod string

const (
	SaleCash     SaleMethod = "cash"
	SaleTransfer SaleMethod = "transfer"
	SaleMixed    SaleMethod = "mixed"
)

func (m SaleMethod) Valid() bool {
	switch m {
	case SaleCash, SaleTransfer, SaleMixed:
		return true
	}
	return false
}

// Sale is a point-of-sale entry (consumptions, shop items); mixed
// sales split their amount across both legs.
type Sale struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Description    string       `gorm:"type:text" json:"description,omitempty"`
	CashAmount     int64        `gorm:"not null;default:0" json:"cash_amount"`
	TransferAmount int64        `gorm:"not null;default:0" json:"transfer_amount"`
	PaymentMethod  SaleMethod   `gorm:"type:text;not null" json:"payment_method"`
	CreatedAt      time.Time    `gorm:"not null;index" json:"created_at"`
}

func (Sale) TableName() string { return "sales" }

type OutflowKind string

const (
	OutflowExpense    OutflowKind = "expense"
	OutflowWithdrawal OutflowKind = "withdrawal"
)

// CashOutflow is money leaving the drawer: petty-cash expenses and
// drawer withdrawals alike reduce the expected base.
type CashOutflow struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	Kind      OutflowKind  `gorm:"type:text;not null" json:"kind"`
	Reason    string       `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

func (CashOutflow) TableName() string { return "cash_outflows" }

// ReconciliationResult is the aggregated drawer position for a window.
type ReconciliationResult struct {
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	OpeningBase    int64     `json:"opening_base"`
	CashIn         int64     `json:"cash_in"`
	TransferIn     int64     `json:"transfer_in"`
	CashOut        int64     `json:"cash_out"`
	UnclassifiedIn int64     `json:"unclassified_in"`
	ExpectedBase   int64     `json:"expected_base"`
}
