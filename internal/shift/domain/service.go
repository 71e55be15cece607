package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Open(ctx context.Context, openedBy string, openingBase int64) (*ShiftHandover, error)
	Get(ctx context.Context, id snowflake.ID) (*ShiftHandover, error)

	RecordSale(ctx context.Context, sale *Sale) error
	RecordOutflow(ctx context.Context, out *CashOutflow) error

	// Reconcile recomputes the drawer position for an active shift.
	// Safe to call repeatedly; rejected once the shift is delivered.
	Reconcile(ctx context.Context, id snowflake.ID) (*ReconciliationResult, error)
	// Deliver runs a final reconciliation, records the counted base
	// and variance, and freezes the shift.
	Deliver(ctx context.Context, id snowflake.ID, receivedBase int64) (*ShiftHandover, error)
	// Receive countersigns a delivered shift.
	Receive(ctx context.Context, id snowflake.ID, receivedBy string) (*ShiftHandover, error)
}
