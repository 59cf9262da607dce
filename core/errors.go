package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationPaused protocol globally paused
	ErrOperationPaused ErrorCode = 100001
	// ErrProtocolDeprecated protocol deprecated, only withdraw/repay allowed
	ErrProtocolDeprecated ErrorCode = 100002
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100003

	// ErrInvalidParams invalid params
	ErrInvalidParams ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrInvalidDecimals unsupported asset decimals
	ErrInvalidDecimals ErrorCode = 100102
	// ErrInvalidAccount empty account id
	ErrInvalidAccount ErrorCode = 100103
	// ErrReserveNotFound no reserve
	ErrReserveNotFound ErrorCode = 100104

	// ErrDepositCapExceeded deposit over reserve cap
	ErrDepositCapExceeded ErrorCode = 100200
	// ErrMaxDepositPerAccountExceeded deposit over per-account cap
	ErrMaxDepositPerAccountExceeded ErrorCode = 100201
	// ErrInsufficientLiquidity pool balance too small for the action
	ErrInsufficientLiquidity ErrorCode = 100202
	// ErrInvalidMinimumOpenBorrow open borrow below the configured floor
	ErrInvalidMinimumOpenBorrow ErrorCode = 100203

	// ErrAccountInsolvent account over its borrowing power
	ErrAccountInsolvent ErrorCode = 100300
	// ErrAccountBeingLiquidated account is under liquidation
	ErrAccountBeingLiquidated ErrorCode = 100301
	// ErrAccountHealthy liquidation attempted on a healthy account
	ErrAccountHealthy ErrorCode = 100302
	// ErrNotClaimableProfit nothing to claim from the yield source
	ErrNotClaimableProfit ErrorCode = 100303

	// ErrUtilizationTooHigh utilization above the configured cap
	ErrUtilizationTooHigh ErrorCode = 100400
	// ErrPoolBalanceTooLow idle balance below the configured floor
	ErrPoolBalanceTooLow ErrorCode = 100401

	// ErrPriceRetrievalFailed both primary and backup price feeds failed
	ErrPriceRetrievalFailed ErrorCode = 100500

	// ErrInvalidFlashLoanRecipientReturn flash loan callback reported failure
	ErrInvalidFlashLoanRecipientReturn ErrorCode = 100600
	// ErrInvalidPostFlashLoanBalance balance after flash loan below pre-balance
	ErrInvalidPostFlashLoanBalance ErrorCode = 100601
	// ErrInsufficientFlashLoanFeeAmount flash loan fee under the expected fee
	ErrInsufficientFlashLoanFeeAmount ErrorCode = 100602
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
