package reserve

import (
	"context"

	"lotus/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type reserveStore struct {
	db *db.DB
}

// New new reserve store
func New(db *db.DB) core.IReserveStore {
	return &reserveStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Reserve{})
		if err := tx.AutoMigrate(core.Reserve{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *reserveStore) Save(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	return tx.Update().Create(reserve).Error
}

func (s *reserveStore) Find(ctx context.Context, assetID string) (*core.Reserve, error) {
	var reserve core.Reserve
	if err := s.db.View().Where("asset_id = ?", assetID).First(&reserve).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Reserve{AssetID: assetID}, nil
		}
		return nil, err
	}

	return &reserve, nil
}

func (s *reserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	var reserves []*core.Reserve
	if err := s.db.View().Find(&reserves).Error; err != nil {
		return nil, err
	}

	return reserves, nil
}

func (s *reserveStore) Update(ctx context.Context, tx *db.DB, reserve *core.Reserve) error {
	version := reserve.Version
	reserve.Version++

	// updates go through a map so fields dropping back to zero,
	// the idle balance included, are still written
	updated := tx.Update().Model(core.Reserve{}).
		Where("id = ? and version = ?", reserve.ID, version).
		Updates(map[string]interface{}{
			"asset_balance":             reserve.AssetBalance,
			"borrow_rate":               reserve.BorrowRate,
			"liquidity_rate":            reserve.LiquidityRate,
			"liquidity_index":           reserve.LiquidityIndex,
			"borrow_index":              reserve.BorrowIndex,
			"last_updated_at":           reserve.LastUpdatedAt,
			"total_scaled_deposits":     reserve.TotalScaledDeposits,
			"total_scaled_debt":         reserve.TotalScaledDebt,
			"optimal_utilization":       reserve.OptimalUtilization,
			"base_rate":                 reserve.BaseRate,
			"slope1":                    reserve.Slope1,
			"slope2":                    reserve.Slope2,
			"utilization_cap":           reserve.UtilizationCap,
			"minimum_pool_balance":      reserve.MinimumPoolBalance,
			"lending_fee_rate":          reserve.LendingFeeRate,
			"flash_loan_fee_rate":       reserve.FlashLoanFeeRate,
			"deposit_cap":               reserve.DepositCap,
			"max_deposit_per_account":   reserve.MaxDepositPerAccount,
			"minimum_open_borrow":       reserve.MinimumOpenBorrow,
			"minimum_collection_amount": reserve.MinimumCollectionAmount,
			"version":                   reserve.Version,
		})
	if updated.Error != nil {
		return updated.Error
	}

	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
