package pool

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"lotus/core"
	"lotus/pkg/number"
	ledgersrv "lotus/service/ledger"
	ledgerstore "lotus/store/ledger"
	reservestore "lotus/store/reserve"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAssetID      = "965e5c6e-434c-3fa9-b780-c50f43cd955c"
	testManagerID    = "account-manager"
	testFeeCollector = "fee-collector"
)

var t0 = time.Unix(1700000000, 0)

type fakeVault struct {
	balance decimal.Decimal
	outs    map[string]decimal.Decimal
}

func newFakeVault() *fakeVault {
	return &fakeVault{outs: make(map[string]decimal.Decimal)}
}

func (v *fakeVault) TransferIn(ctx context.Context, from string, amount decimal.Decimal) error {
	v.balance = v.balance.Add(amount)
	return nil
}

func (v *fakeVault) TransferOut(ctx context.Context, to string, amount decimal.Decimal) error {
	if amount.GreaterThan(v.balance) {
		return errors.New("vault: insufficient funds")
	}

	v.balance = v.balance.Sub(amount)
	v.outs[to] = v.outs[to].Add(amount)
	return nil
}

func (v *fakeVault) Balance(ctx context.Context) (decimal.Decimal, error) {
	return v.balance, nil
}

type fakeRecipient struct {
	id      string
	vault   *fakeVault
	payback decimal.Decimal
	ok      bool
	err     error
}

func (r *fakeRecipient) ID() string { return r.id }

func (r *fakeRecipient) ReceiveFlashLoan(ctx context.Context, initiator, assetID string, amount, fee decimal.Decimal, data core.FlashLoanData) (bool, core.FlashLoanData, error) {
	if r.err != nil || !r.ok {
		return false, nil, r.err
	}

	r.vault.balance = r.vault.balance.Add(r.payback)
	return true, data, nil
}

type fakeYield struct {
	claimable decimal.Decimal
	claimErr  error
	pays      decimal.Decimal // overrides the claimed amount when set
}

func (y *fakeYield) ClaimableYield(ctx context.Context) (decimal.Decimal, error) {
	return y.claimable, nil
}

func (y *fakeYield) Claim(ctx context.Context) (decimal.Decimal, error) {
	if y.claimErr != nil {
		return decimal.Zero, y.claimErr
	}

	claimed := y.claimable
	if y.pays.IsPositive() {
		claimed = y.pays
	}
	y.claimable = decimal.Zero
	return claimed, nil
}

type testEnv struct {
	pool     core.ILendingPool
	vault    *fakeVault
	yield    *fakeYield
	reserves core.IReserveStore
	ledgers  core.ILedgerService
	props    property.Store
}

func testReserve() *core.Reserve {
	return &core.Reserve{
		AssetID:            testAssetID,
		Symbol:             "LOT",
		LiquidityIndex:     number.One,
		BorrowIndex:        number.One,
		LastUpdatedAt:      t0,
		OptimalUtilization: number.Decimal("0.8"),
		BaseRate:           number.Decimal("0.02"),
		Slope1:             number.Decimal("0.1"),
		Slope2:             number.Decimal("1"),
	}
}

func setupEnv(t *testing.T, reserve *core.Reserve) *testEnv {
	database := db.MustOpen(db.Config{
		Dialect: "sqlite3",
		Host:    filepath.Join(t.TempDir(), "lotus.db"),
	})
	require.Nil(t, db.Migrate(database))
	t.Cleanup(func() { database.Close() })

	reserves := reservestore.New(database)
	require.Nil(t, reserves.Save(context.Background(), database, reserve))

	ledgers := ledgersrv.New(ledgerstore.New(database))
	props := propertystore.New(database)
	vault := newFakeVault()
	yield := &fakeYield{}

	cfg := Config{
		AssetID:          testAssetID,
		FeeCollectorID:   testFeeCollector,
		AccountManagerID: testManagerID,
	}

	return &testEnv{
		pool:     New(database, cfg, reserves, ledgers, props, vault, yield),
		vault:    vault,
		yield:    yield,
		reserves: reserves,
		ledgers:  ledgers,
		props:    props,
	}
}

func (env *testEnv) reserve(t *testing.T) *core.Reserve {
	reserve, err := env.reserves.Find(context.Background(), testAssetID)
	require.Nil(t, err)
	require.NotZero(t, reserve.ID)
	return reserve
}

func TestDepositThenWithdrawAll(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, testReserve())

	deposited, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)
	assert.Equal(t, "1000", deposited.String())

	scaled, err := env.ledgers.ScaledBalance(ctx, core.LedgerDeposit, "alice")
	require.Nil(t, err)
	assert.Equal(t, "1000", scaled.String())
	assert.Equal(t, "1000", env.vault.balance.String())

	// a full withdraw leaves no scaled dust behind
	withdrawn, err := env.pool.Withdraw(ctx, "alice", core.MaxAmount, t0.Add(time.Hour))
	require.Nil(t, err)
	assert.Equal(t, "1000", withdrawn.String())

	scaled, err = env.ledgers.ScaledBalance(ctx, core.LedgerDeposit, "alice")
	require.Nil(t, err)
	assert.True(t, scaled.IsZero())

	reserve := env.reserve(t)
	assert.True(t, reserve.AssetBalance.IsZero())
	assert.True(t, reserve.TotalScaledDeposits.IsZero())
	assert.True(t, env.vault.balance.IsZero())
}

func TestDepositValidation(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, testReserve())

	_, err := env.pool.Deposit(ctx, "", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrInvalidAccount, err)

	_, err = env.pool.Deposit(ctx, "alice", decimal.Zero, t0)
	assert.Equal(t, core.ErrInvalidAmount, err)

	_, err = env.pool.Deposit(ctx, "alice", number.Decimal("-5"), t0)
	assert.Equal(t, core.ErrInvalidAmount, err)
}

func TestDepositCaps(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.DepositCap = number.Decimal("100")
	reserve.MaxDepositPerAccount = number.Decimal("40")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("30"), t0)
	require.Nil(t, err)

	_, err = env.pool.Deposit(ctx, "alice", number.Decimal("20"), t0)
	assert.Equal(t, core.ErrMaxDepositPerAccountExceeded, err)

	_, err = env.pool.Deposit(ctx, "bob", number.Decimal("40"), t0)
	require.Nil(t, err)

	_, err = env.pool.Deposit(ctx, "carol", number.Decimal("30"), t0)
	require.Nil(t, err)

	// the pool-wide cap of 100 is now fully used
	_, err = env.pool.Deposit(ctx, "dave", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrDepositCapExceeded, err)
}

func TestWithdrawExceedsIdleLiquidity(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, testReserve())

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("100"), t0)
	require.Nil(t, err)

	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("60"), t0))

	// only 40 is idle, the rest is lent out
	_, err = env.pool.Withdraw(ctx, "alice", number.Decimal("50"), t0)
	assert.Equal(t, core.ErrInsufficientLiquidity, err)

	withdrawn, err := env.pool.Withdraw(ctx, "alice", number.Decimal("40"), t0)
	require.Nil(t, err)
	assert.Equal(t, "40", withdrawn.String())
}

func TestBorrowAuthorizationAndFloor(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.MinimumOpenBorrow = number.Decimal("50")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)

	err = env.pool.Borrow(ctx, "intruder", "bob", number.Decimal("100"), t0)
	assert.Equal(t, core.ErrOperationForbidden, err)

	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("100"), t0))

	debt, err := env.ledgers.ScaledBalance(ctx, core.LedgerDebt, "bob")
	require.Nil(t, err)
	assert.Equal(t, "100", debt.String())

	// below the open-borrow floor, the whole transaction unwinds
	err = env.pool.Borrow(ctx, testManagerID, "carol", number.Decimal("10"), t0)
	assert.Equal(t, core.ErrInvalidMinimumOpenBorrow, err)

	debt, err = env.ledgers.ScaledBalance(ctx, core.LedgerDebt, "carol")
	require.Nil(t, err)
	assert.True(t, debt.IsZero())
	assert.Equal(t, "900", env.vault.balance.String())

	// topping an existing position above the floor is fine
	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("10"), t0))
}

func TestRepayCapsAtDebtAndKeepsFloor(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.MinimumOpenBorrow = number.Decimal("50")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)
	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("100"), t0))

	// a partial repay may not leave dust-debt under the floor
	_, err = env.pool.Repay(ctx, "bob", "bob", number.Decimal("60"), t0)
	assert.Equal(t, core.ErrInvalidMinimumOpenBorrow, err)

	paid, err := env.pool.Repay(ctx, "bob", "bob", number.Decimal("40"), t0)
	require.Nil(t, err)
	assert.Equal(t, "40", paid.String())

	// paying more than owed caps at the outstanding debt
	paid, err = env.pool.Repay(ctx, "bob", "bob", number.Decimal("500"), t0)
	require.Nil(t, err)
	assert.Equal(t, "60", paid.String())

	debt, err := env.ledgers.ScaledBalance(ctx, core.LedgerDebt, "bob")
	require.Nil(t, err)
	assert.True(t, debt.IsZero())

	_, err = env.pool.Repay(ctx, "bob", "bob", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrInvalidAmount, err)
}

func TestInterestAccrualFlow(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.LendingFeeRate = number.Decimal("0.1")
	reserve.MinimumCollectionAmount = number.Decimal("0.0001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)
	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("500"), t0))

	// u = 0.5 -> borrow rate 0.05, liquidity rate 0.05*0.5*0.9
	current := env.reserve(t)
	assert.Equal(t, "0.05", current.BorrowRate.String())
	assert.Equal(t, "0.0225", current.LiquidityRate.String())

	year := t0.Add(365 * 24 * time.Hour)

	paid, err := env.pool.Repay(ctx, "bob", "bob", core.MaxAmount, year)
	require.Nil(t, err)
	assert.True(t, paid.GreaterThan(number.Decimal("525")))
	assert.True(t, paid.LessThan(number.Decimal("526")))

	withdrawn, err := env.pool.Withdraw(ctx, "alice", core.MaxAmount, year)
	require.Nil(t, err)
	assert.True(t, withdrawn.GreaterThan(number.Decimal("1022")))
	assert.True(t, withdrawn.LessThan(number.Decimal("1023")))

	// the borrower paid more than the depositor earned; the spread
	// plus rounding dust was swept to the fee collector
	treasury, err := env.ledgers.ScaledBalance(ctx, core.LedgerDeposit, testFeeCollector)
	require.Nil(t, err)
	assert.True(t, treasury.IsPositive())

	current = env.reserve(t)
	assert.False(t, current.AssetBalance.IsNegative())
	assert.True(t, current.LiquidityIndex.GreaterThan(number.One))
	assert.True(t, current.BorrowIndex.GreaterThan(current.LiquidityIndex))
}

func TestUtilizationGate(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.UtilizationCap = number.Decimal("0.8")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("100"), t0)
	require.Nil(t, err)

	err = env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("90"), t0)
	assert.Equal(t, core.ErrUtilizationTooHigh, err)

	// the rejected borrow left no trace
	assert.Equal(t, "100", env.vault.balance.String())
	debt, err := env.ledgers.ScaledBalance(ctx, core.LedgerDebt, "bob")
	require.Nil(t, err)
	assert.True(t, debt.IsZero())

	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("80"), t0))
}

func TestMinimumPoolBalanceGate(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.MinimumPoolBalance = number.Decimal("20")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("100"), t0)
	require.Nil(t, err)

	err = env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("90"), t0)
	assert.Equal(t, core.ErrPoolBalanceTooLow, err)

	require.Nil(t, env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("80"), t0))
}

func TestPausedAndDeprecated(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, testReserve())

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("100"), t0)
	require.Nil(t, err)

	require.Nil(t, env.props.Save(ctx, core.SysPropertyPaused, true))

	_, err = env.pool.Deposit(ctx, "alice", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrOperationPaused, err)
	_, err = env.pool.Withdraw(ctx, "alice", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrOperationPaused, err)

	require.Nil(t, env.props.Save(ctx, core.SysPropertyPaused, false))
	require.Nil(t, env.props.Save(ctx, core.SysPropertyDeprecated, true))

	// deprecation winds the pool down: no new exposure, exits allowed
	_, err = env.pool.Deposit(ctx, "alice", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrProtocolDeprecated, err)
	err = env.pool.Borrow(ctx, testManagerID, "bob", number.Decimal("60"), t0)
	assert.Equal(t, core.ErrProtocolDeprecated, err)

	withdrawn, err := env.pool.Withdraw(ctx, "alice", number.Decimal("10"), t0)
	require.Nil(t, err)
	assert.Equal(t, "10", withdrawn.String())
}

func TestFlashLoan(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.FlashLoanFeeRate = number.Decimal("0.001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)

	fee := number.Decimal("0.5")
	recipient := &fakeRecipient{
		id:      "taker",
		vault:   env.vault,
		payback: number.Decimal("500").Add(fee),
		ok:      true,
	}

	require.Nil(t, env.pool.FlashLoan(ctx, "initiator", recipient, number.Decimal("500"), core.FlashLoanData("payload"), t0))

	// the fee went to the collector, the pool is made whole
	assert.Equal(t, fee.String(), env.vault.outs[testFeeCollector].String())
	assert.Equal(t, "1000", env.vault.balance.String())
}

func TestFlashLoanFailures(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.FlashLoanFeeRate = number.Decimal("0.001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)

	err = env.pool.FlashLoan(ctx, "initiator", &fakeRecipient{id: "taker", vault: env.vault, ok: true}, number.Decimal("2000"), nil, t0)
	assert.Equal(t, core.ErrInsufficientLiquidity, err)

	err = env.pool.FlashLoan(ctx, "initiator", &fakeRecipient{id: "taker", vault: env.vault, ok: false}, number.Decimal("100"), nil, t0)
	assert.Equal(t, core.ErrInvalidFlashLoanRecipientReturn, err)

	err = env.pool.FlashLoan(ctx, "initiator", &fakeRecipient{id: "taker", vault: env.vault, err: errors.New("boom")}, number.Decimal("100"), nil, t0)
	assert.Equal(t, core.ErrInvalidFlashLoanRecipientReturn, err)
}

func TestFlashLoanRepaymentChecks(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.FlashLoanFeeRate = number.Decimal("0.001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)

	// returned less than borrowed
	short := &fakeRecipient{id: "taker", vault: env.vault, payback: number.Decimal("90"), ok: true}
	err = env.pool.FlashLoan(ctx, "initiator", short, number.Decimal("100"), nil, t0)
	assert.Equal(t, core.ErrInvalidPostFlashLoanBalance, err)
}

func TestFlashLoanFeeShortfall(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.FlashLoanFeeRate = number.Decimal("0.001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("1000"), t0)
	require.Nil(t, err)

	// principal returned but no fee on top
	exact := &fakeRecipient{id: "taker", vault: env.vault, payback: number.Decimal("100"), ok: true}
	err = env.pool.FlashLoan(ctx, "initiator", exact, number.Decimal("100"), nil, t0)
	assert.Equal(t, core.ErrInsufficientFlashLoanFeeAmount, err)
}

func TestClaimYield(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.MinimumCollectionAmount = number.Decimal("0.0001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("100"), t0)
	require.Nil(t, err)

	_, err = env.pool.ClaimYield(ctx, t0)
	assert.Equal(t, core.ErrNotClaimableProfit, err)

	env.yield.claimable = number.Decimal("5")
	claimed, err := env.pool.ClaimYield(ctx, t0)
	require.Nil(t, err)
	assert.Equal(t, "5", claimed.String())

	// claimed yield is credited to the fee collector as deposit tokens
	treasury, err := env.ledgers.RealBalance(ctx, core.LedgerDeposit, testFeeCollector, number.One)
	require.Nil(t, err)
	assert.Equal(t, "5", treasury.String())

	current := env.reserve(t)
	assert.Equal(t, "105", current.AssetBalance.String())
}

func TestClaimYieldFailureUnwinds(t *testing.T) {
	ctx := context.Background()
	reserve := testReserve()
	reserve.MinimumCollectionAmount = number.Decimal("0.0001")
	env := setupEnv(t, reserve)

	_, err := env.pool.Deposit(ctx, "alice", number.Decimal("100"), t0)
	require.Nil(t, err)

	// a failing source leaves no trace in the accounting
	env.yield.claimable = number.Decimal("5")
	env.yield.claimErr = errors.New("source down")
	_, err = env.pool.ClaimYield(ctx, t0)
	assert.NotNil(t, err)

	treasury, err := env.ledgers.RealBalance(ctx, core.LedgerDeposit, testFeeCollector, number.One)
	require.Nil(t, err)
	assert.True(t, treasury.IsZero())
	assert.Equal(t, "100", env.reserve(t).AssetBalance.String())

	// a source paying out less than advertised unwinds too
	env.yield.claimErr = nil
	env.yield.claimable = number.Decimal("5")
	env.yield.pays = number.Decimal("3")
	_, err = env.pool.ClaimYield(ctx, t0)
	assert.NotNil(t, err)

	treasury, err = env.ledgers.RealBalance(ctx, core.LedgerDeposit, testFeeCollector, number.One)
	require.Nil(t, err)
	assert.True(t, treasury.IsZero())
	assert.Equal(t, "100", env.reserve(t).AssetBalance.String())
}

func TestReserveMissing(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t, testReserve())

	// the configured asset has no reserve row
	svc := env.pool.(*poolService)
	svc.cfg.AssetID = "unknown"
	_, err := svc.Deposit(ctx, "alice", number.Decimal("1"), t0)
	assert.Equal(t, core.ErrReserveNotFound, err)
}
