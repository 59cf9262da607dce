package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lotus config
type Config struct {
	App         App         `json:"app" valid:"required"`
	DB          db.Config   `json:"db"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Collateral  Collateral  `json:"collateral"`
	Admins      []string    `json:"admins"`
}

// App app config
type App struct {
	AssetID          string `json:"asset_id" valid:"required"`
	Symbol           string `json:"symbol" valid:"required"`
	AssetDecimals    int32  `json:"asset_decimals"`
	FeeCollectorID   string `json:"fee_collector_id" valid:"required"`
	AccountManagerID string `json:"account_manager_id" valid:"required"`
	Location         string `json:"location"`

	Risk RiskParams `json:"risk"`
}

// Collateral collateral provider config
type Collateral struct {
	EndPoint string `json:"end_point"`
	AssetID  string `json:"asset_id"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint       string `json:"end_point"`
	BackupEndPoint string `json:"backup_end_point"`
}
