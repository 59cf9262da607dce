package core

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount sentinel requesting a full withdraw or full repay
var MaxAmount = decimal.New(math.MaxInt64, 0)

// FlashLoanData opaque user payload forwarded to the recipient callback
type FlashLoanData []byte

// SolvencyChecker solvency post-condition gate. The pool invokes it
// inside the borrow and withdraw transactions so an insolvent outcome
// unwinds the ledger; a nil checker disables the gate.
type SolvencyChecker interface {
	RequireSolvent(ctx context.Context, accountID string) error
	CheckSolvency(ctx context.Context, accountID string, debt decimal.Decimal) error
}

// ILendingPool pool entry points. Every mutating call runs the
// accrue -> ledger mutation -> rate refresh sequence under the pool lock.
type ILendingPool interface {
	// BindSolvencyChecker attaches the solvency gate after
	// construction; the solvency engine itself repays through the
	// pool, so the two are wired in this order.
	BindSolvencyChecker(checker SolvencyChecker)
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error)
	Borrow(ctx context.Context, managerID, onBehalfOf string, amount decimal.Decimal, now time.Time) error
	Repay(ctx context.Context, from, onBehalfOf string, amount decimal.Decimal, now time.Time) (decimal.Decimal, error)
	FlashLoan(ctx context.Context, initiatorID string, recipient FlashLoanRecipient, amount decimal.Decimal, data FlashLoanData, now time.Time) error
	ClaimYield(ctx context.Context, now time.Time) (decimal.Decimal, error)
}
