package cmd

import (
	"lotus/core"
	accountsrv "lotus/service/account"
	"lotus/service/asset"
	collateralsrv "lotus/service/collateral"
	ledgersrv "lotus/service/ledger"
	"lotus/service/oracle"
	poolsrv "lotus/service/pool"
	vaultsrv "lotus/service/vault"
	ledgerstore "lotus/store/ledger"
	liquidationstore "lotus/store/liquidation"
	reservestore "lotus/store/reserve"
	transferstore "lotus/store/transfer"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideSystem() *core.System {
	return &core.System{
		Admins:  cfg.Admins,
		Version: rootCmd.Version,
	}
}

// ---------------store-----------------------------------------

func provideReserveStore(db *db.DB) core.IReserveStore {
	return reservestore.New(db)
}

func provideLedgerStore(db *db.DB) core.ILedgerStore {
	return ledgerstore.New(db)
}

func provideLiquidationStore(db *db.DB) core.ILiquidationStore {
	return liquidationstore.New(db)
}

func provideTransferStore(db *db.DB) core.ITransferStore {
	return transferstore.New(db)
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

// ------------------service------------------------------------

func provideLedgerService(ledgerStore core.ILedgerStore) core.ILedgerService {
	return ledgersrv.New(ledgerStore)
}

func provideAssetAdapter() core.IRebasingAssetAdapter {
	if cfg.App.AssetDecimals == 0 {
		return nil
	}

	adapter, err := asset.NewAdapter(cfg.App.AssetID, cfg.App.AssetDecimals)
	if err != nil {
		panic(err)
	}

	return adapter
}

func provideVault(transferStore core.ITransferStore) core.IAssetVault {
	return vaultsrv.New(transferStore, provideAssetAdapter())
}

func providePriceProvider() core.IPriceProvider {
	primary := oracle.NewRestFeed(cfg.PriceOracle.EndPoint)

	var backup core.IPriceFeed
	if cfg.PriceOracle.BackupEndPoint != "" {
		backup = oracle.NewRestFeed(cfg.PriceOracle.BackupEndPoint)
	}

	return oracle.New(primary, backup)
}

func provideCollateralProvider() core.ICollateralProvider {
	return collateralsrv.New(cfg.Collateral.EndPoint, cfg.Collateral.AssetID)
}

func providePool(
	database *db.DB,
	reserveStore core.IReserveStore,
	ledgerSrv core.ILedgerService,
	propertyStore property.Store,
	vault core.IAssetVault,
) core.ILendingPool {
	return poolsrv.New(
		database,
		poolsrv.Config{
			AssetID:          cfg.App.AssetID,
			FeeCollectorID:   cfg.App.FeeCollectorID,
			AccountManagerID: cfg.App.AccountManagerID,
		},
		reserveStore,
		ledgerSrv,
		propertyStore,
		vault,
		nil,
	)
}

func provideSolvency(
	database *db.DB,
	reserveStore core.IReserveStore,
	ledgerSrv core.ILedgerService,
	liquidationStore core.ILiquidationStore,
	pool core.ILendingPool,
) core.ISolvencyService {
	return accountsrv.New(
		database,
		cfg.App.Risk,
		cfg.App.AssetID,
		reserveStore,
		ledgerSrv,
		liquidationStore,
		providePriceProvider(),
		provideCollateralProvider(),
		nil,
		pool,
	)
}
