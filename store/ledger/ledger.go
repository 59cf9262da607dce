package ledger

import (
	"context"

	"lotus/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type ledgerStore struct {
	db *db.DB
}

// New new scaled balance store
func New(db *db.DB) core.ILedgerStore {
	return &ledgerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.ScaledBalance{})
		if err := tx.AutoMigrate(core.ScaledBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *ledgerStore) Find(ctx context.Context, kind core.LedgerKind, accountID string) (*core.ScaledBalance, error) {
	var balance core.ScaledBalance
	if err := s.db.View().Where("ledger = ? and account_id = ?", kind, accountID).First(&balance).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.ScaledBalance{Ledger: kind, AccountID: accountID}, nil
		}
		return nil, err
	}

	return &balance, nil
}

// FindTx reads through the open transaction; mutating paths use it so
// a row touched twice in one transaction stays consistent.
func (s *ledgerStore) FindTx(ctx context.Context, tx *db.DB, kind core.LedgerKind, accountID string) (*core.ScaledBalance, error) {
	var balance core.ScaledBalance
	if err := tx.Update().Where("ledger = ? and account_id = ?", kind, accountID).First(&balance).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.ScaledBalance{Ledger: kind, AccountID: accountID}, nil
		}
		return nil, err
	}

	return &balance, nil
}

func (s *ledgerStore) Save(ctx context.Context, tx *db.DB, balance *core.ScaledBalance) error {
	return tx.Update().Create(balance).Error
}

func (s *ledgerStore) Update(ctx context.Context, tx *db.DB, balance *core.ScaledBalance) error {
	version := balance.Version
	balance.Version++

	updated := tx.Update().Model(core.ScaledBalance{}).
		Where("ledger = ? and account_id = ? and version = ?", balance.Ledger, balance.AccountID, version).
		Updates(map[string]interface{}{
			"scaled":  balance.Scaled,
			"version": balance.Version,
		})
	if updated.Error != nil {
		return updated.Error
	}

	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *ledgerStore) SumScaled(ctx context.Context, kind core.LedgerKind) (decimal.Decimal, error) {
	var result struct {
		Sum decimal.Decimal
	}

	if err := s.db.View().Model(core.ScaledBalance{}).
		Select("coalesce(sum(scaled), 0) as sum").
		Where("ledger = ?", kind).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Sum, nil
}

func (s *ledgerStore) Accounts(ctx context.Context, kind core.LedgerKind) ([]string, error) {
	var accounts []string
	rows, err := s.db.View().Model(core.ScaledBalance{}).
		Select("account_id").
		Where("ledger = ? and scaled > 0", kind).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}
