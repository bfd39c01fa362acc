package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	// Solana RPC
	RPCUrl     string
	Commitment string

	// Privacy pool daemon
	PoolURL   string
	PoolAsset string

	// 1Click swap service
	JWTToken    string
	SlippageBps int32
	Referral    string

	// Signing backend
	Backend      string
	Mnemonic     string
	Passphrase   string
	AccountIndex uint32

	AutoConfirm bool
}

// Load reads configuration from environment variables and an optional
// .veil.yaml config file.
func Load() (*Config, error) {
	viper.SetConfigName(".veil")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("commitment", "confirmed")
	viper.SetDefault("pool_url", "http://127.0.0.1:18082/json_rpc")
	viper.SetDefault("pool_asset", "SOL")
	viper.SetDefault("slippage_bps", 100)
	viper.SetDefault("backend", "mnemonic")

	viper.SetEnvPrefix("VEIL")
	viper.AutomaticEnv()

	// Config file is optional.
	_ = viper.ReadInConfig()

	cfg := &Config{
		RPCUrl:       viper.GetString("rpc_url"),
		Commitment:   viper.GetString("commitment"),
		PoolURL:      viper.GetString("pool_url"),
		PoolAsset:    viper.GetString("pool_asset"),
		JWTToken:     viper.GetString("jwt_token"),
		SlippageBps:  viper.GetInt32("slippage_bps"),
		Referral:     viper.GetString("referral"),
		Backend:      viper.GetString("backend"),
		Mnemonic:     viper.GetString("mnemonic"),
		Passphrase:   viper.GetString("passphrase"),
		AccountIndex: viper.GetUint32("account_index"),
		AutoConfirm:  viper.GetBool("auto_confirm"),
	}

	return cfg, nil
}

// RequireJWT validates that the 1Click token is configured; cross-chain
// funding and token listing cannot run without it.
func (c *Config) RequireJWT() error {
	if c.JWTToken == "" {
		return fmt.Errorf("JWT token not found. Please set VEIL_JWT_TOKEN or add jwt_token to your .veil.yaml config file")
	}
	return nil
}
