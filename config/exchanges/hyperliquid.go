package exchange

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type HyperliquidConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	AccountAddress string `mapstructure:"account_address"`
	UseTestnet     bool   `mapstructure:"use_testnet"`
}

func (c *HyperliquidConfig) LoadHyperliquidConfig() {
	viper.SetDefault("hyperliquid.base_url", "https://api.hyperliquid.xyz")
	if v := os.Getenv("HYPERLIQUID_BASE_URL"); v != "" {
		viper.Set("hyperliquid.base_url", v)
	}
	viper.Set("hyperliquid.account_address", os.Getenv("HYPERLIQUID_ACCOUNT_ADDRESS"))
	viper.Set("hyperliquid.use_testnet", os.Getenv("HYPERLIQUID_USE_TESTNET") == "true")

	if err := viper.UnmarshalKey("hyperliquid", c); err != nil {
		panic(fmt.Sprintf("Failed to unmarshal hyperliquid config: %v", err))
	}

	err := c.Validate()
	if err != nil {
		panic(fmt.Sprintf("HyperliquidConfig validation failed: %v", err))
	}
}

func (c *HyperliquidConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
