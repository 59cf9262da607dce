package liquidation

import (
	"context"

	"lotus/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type liquidationStore struct {
	db *db.DB
}

// New new liquidation status store
func New(db *db.DB) core.ILiquidationStore {
	return &liquidationStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LiquidationStatus{})
		if err := tx.AutoMigrate(core.LiquidationStatus{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *liquidationStore) Find(ctx context.Context, accountID string) (*core.LiquidationStatus, error) {
	var status core.LiquidationStatus
	if err := s.db.View().Where("account_id = ?", accountID).First(&status).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.LiquidationStatus{AccountID: accountID}, nil
		}
		return nil, err
	}

	return &status, nil
}

func (s *liquidationStore) Save(ctx context.Context, tx *db.DB, status *core.LiquidationStatus) error {
	return tx.Update().Create(status).Error
}

func (s *liquidationStore) Update(ctx context.Context, tx *db.DB, status *core.LiquidationStatus) error {
	version := status.Version
	status.Version++

	updated := tx.Update().Model(core.LiquidationStatus{}).
		Where("account_id = ? and version = ?", status.AccountID, version).
		Updates(map[string]interface{}{
			"is_liquidating":       status.IsLiquidating,
			"liquidation_start_at": status.LiquidationStartAt,
			"version":              status.Version,
		})
	if updated.Error != nil {
		return updated.Error
	}

	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *liquidationStore) AllLiquidating(ctx context.Context) ([]*core.LiquidationStatus, error) {
	var statuses []*core.LiquidationStatus
	if err := s.db.View().Where("is_liquidating = ?", true).Find(&statuses).Error; err != nil {
		return nil, err
	}

	return statuses, nil
}
