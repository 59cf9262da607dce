package transfer

import (
	"context"

	"lotus/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type transferStore struct {
	db *db.DB
}

// New new custody transfer store
func New(db *db.DB) core.ITransferStore {
	return &transferStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Transfer{})
		if err := tx.AutoMigrate(core.Transfer{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *transferStore) Create(ctx context.Context, transfer *core.Transfer) error {
	return s.db.Update().Where("trace_id = ?", transfer.TraceID).
		FirstOrCreate(transfer).Error
}

func (s *transferStore) Sum(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Sum decimal.Decimal
	}

	if err := s.db.View().Model(core.Transfer{}).
		Select("coalesce(sum(case when direction = 'in' then amount else -amount end), 0) as sum").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Sum, nil
}

func (s *transferStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Transfer, error) {
	var transfers []*core.Transfer
	if err := s.db.View().
		Where("id > ?", fromID).
		Order("id").
		Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, err
	}

	return transfers, nil
}
