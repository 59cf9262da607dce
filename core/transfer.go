package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransferDirection direction of a custody transfer
type TransferDirection string

const (
	TransferDirectionIn  TransferDirection = "in"
	TransferDirectionOut TransferDirection = "out"
)

// Transfer custody movement record, one row per vault transfer.
// Amounts are stored in the underlying asset's external precision.
type Transfer struct {
	ID        uint64            `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string            `sql:"size:36;unique_index:trace_idx" json:"trace_id"`
	AccountID string            `sql:"size:64;index:account_idx" json:"account_id"`
	Direction TransferDirection `sql:"size:8" json:"direction"`
	Amount    decimal.Decimal   `sql:"type:decimal(32,16)" json:"amount"`
	CreatedAt time.Time         `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// ITransferStore custody transfer store interface
type ITransferStore interface {
	Create(ctx context.Context, transfer *Transfer) error
	Sum(ctx context.Context) (decimal.Decimal, error)
	List(ctx context.Context, fromID uint64, limit int) ([]*Transfer, error)
}
