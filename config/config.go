package config

import (
	"errors"

	"lotus/core"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LOTUS")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	return validate(config)
}

func validate(config *core.Config) error {
	app := config.App
	if govalidator.IsNull(app.AssetID) || govalidator.IsNull(app.Symbol) {
		return errors.New("config: app.asset_id and app.symbol are required")
	}

	if govalidator.IsNull(app.FeeCollectorID) || govalidator.IsNull(app.AccountManagerID) {
		return errors.New("config: app.fee_collector_id and app.account_manager_id are required")
	}

	risk := app.Risk
	if !risk.CollateralRatio.IsPositive() || !risk.MaxLTV.IsPositive() || !risk.LiquidationBonus.IsPositive() {
		return errors.New("config: app.risk thresholds must be positive")
	}

	return nil
}
