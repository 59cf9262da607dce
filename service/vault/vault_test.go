package vault

import (
	"context"
	"path/filepath"
	"testing"

	"lotus/core"
	"lotus/service/asset"
	transferstore "lotus/store/transfer"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransferStore(t *testing.T) core.ITransferStore {
	t.Helper()

	database := db.MustOpen(db.Config{
		Dialect: "sqlite3",
		Host:    filepath.Join(t.TempDir(), "lotus.db"),
	})
	t.Cleanup(func() { database.Close() })

	require.Nil(t, db.Migrate(database))

	return transferstore.New(database)
}

func TestTransferLedgerBalance(t *testing.T) {
	ctx := context.Background()
	transfers := newTestTransferStore(t)
	vault := New(transfers, nil)

	require.Nil(t, vault.TransferIn(ctx, "alice", decimal.NewFromInt(100)))
	require.Nil(t, vault.TransferOut(ctx, "bob", decimal.NewFromInt(30)))

	balance, err := vault.Balance(ctx)
	require.Nil(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)), "balance should net transfers, got %s", balance)

	rows, err := transfers.List(ctx, 0, 10)
	require.Nil(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, core.TransferDirectionIn, rows[0].Direction)
	assert.Equal(t, "alice", rows[0].AccountID)
	assert.Equal(t, core.TransferDirectionOut, rows[1].Direction)
	assert.NotEmpty(t, rows[0].TraceID)
	assert.NotEqual(t, rows[0].TraceID, rows[1].TraceID)
}

func TestTransferRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	vault := New(newTestTransferStore(t), nil)

	assert.Equal(t, core.ErrInvalidAmount, vault.TransferIn(ctx, "alice", decimal.Zero))
	assert.Equal(t, core.ErrInvalidAmount, vault.TransferOut(ctx, "alice", decimal.NewFromInt(-1)))
}

func TestTransferTruncatesToAssetDecimals(t *testing.T) {
	ctx := context.Background()
	transfers := newTestTransferStore(t)

	adapter, err := asset.NewAdapter("usdc", 6)
	require.Nil(t, err)

	vault := New(transfers, adapter)

	amount, _ := decimal.NewFromString("10.1234567")
	require.Nil(t, vault.TransferIn(ctx, "alice", amount))

	rows, err := transfers.List(ctx, 0, 1)
	require.Nil(t, err)
	require.Len(t, rows, 1)

	want, _ := decimal.NewFromString("10.123456")
	assert.True(t, rows[0].Amount.Equal(want), "custody row should be truncated to 6 decimals, got %s", rows[0].Amount)

	balance, err := vault.Balance(ctx)
	require.Nil(t, err)
	assert.True(t, balance.Equal(want))
}
