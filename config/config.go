// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xolosArmy/RMZWallet-sub000/network"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
	"github.com/xolosArmy/RMZWallet-sub000/wallet"
)

// EnvPrefix prefixes every environment override, e.g. RMZ_FEE_RATE_PER_KB
// or RMZ_RPC_URL.
const EnvPrefix = "RMZ"

// DefaultLookupConcurrency bounds parallel offer lookups.
const DefaultLookupConcurrency = 8

// Config holds the engine configuration.
type Config struct {
	Network           string            `mapstructure:"network"`
	NetworkFile       string            `mapstructure:"network_file"` // JSON chain parameters, overrides Network
	FeeRatePerKb      uint64            `mapstructure:"fee_rate_per_kb"`
	DustSats          uint64            `mapstructure:"dust_sats"`
	RPC               network.RPCConfig `mapstructure:"rpc"`
	TxCacheSize       int               `mapstructure:"tx_cache_size"`
	TxCacheTTL        time.Duration     `mapstructure:"tx_cache_ttl"`
	LookupConcurrency int               `mapstructure:"lookup_concurrency"`
	LogLevel          string            `mapstructure:"log_level"`
	LogDevelopment    bool              `mapstructure:"log_development"`
}

// DefaultConfig returns mainnet settings with the standard fee rate and dust.
func DefaultConfig() Config {
	return Config{
		Network:           "mainnet",
		FeeRatePerKb:      tx.DefaultFeeRate,
		DustSats:          tx.DustLimit,
		RPC:               network.RPCConfig{Timeout: network.DefaultRPCTimeout},
		TxCacheSize:       network.DefaultTxCacheSize,
		TxCacheTTL:        network.DefaultTxCacheTTL,
		LookupConcurrency: DefaultLookupConcurrency,
		LogLevel:          "info",
	}
}

// WalletNetwork returns the chain parameters of cfg.NetworkFile when set,
// else of the predefined cfg.Network.
func (c Config) WalletNetwork() (*wallet.NetworkConfig, error) {
	if c.NetworkFile != "" {
		return wallet.LoadCustomNetwork(c.NetworkFile)
	}
	n, err := wallet.GetNetwork(c.Network)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
	}
	return n, nil
}

// ResolveRPC fills unset RPC fields from env and the network presets.
func (c Config) ResolveRPC(env map[string]string) (*network.RPCConfig, error) {
	return network.ResolveConfig(&c.RPC, env, c.Network)
}

// Load reads the configuration at path (any format viper understands,
// chosen by extension) over the defaults, applies RMZ_* environment
// overrides and validates the result. An empty path reads only defaults and
// environment.
func Load(path string) (Config, error) {
	v := newViper(DefaultConfig())
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. The format follows
// the file extension.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	v := viper.New()
	for key, val := range settings(cfg) {
		v.Set(key, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func newViper(defaults Config) *viper.Viper {
	v := viper.New()
	for key, val := range settings(defaults) {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// settings flattens cfg into viper keys. Every key must be listed for
// AutomaticEnv to reach it during Unmarshal.
func settings(cfg Config) map[string]interface{} {
	return map[string]interface{}{
		"network":            cfg.Network,
		"network_file":       cfg.NetworkFile,
		"fee_rate_per_kb":    cfg.FeeRatePerKb,
		"dust_sats":          cfg.DustSats,
		"rpc.url":            cfg.RPC.URL,
		"rpc.user":           cfg.RPC.User,
		"rpc.password":       cfg.RPC.Password,
		"rpc.timeout":        cfg.RPC.Timeout.String(),
		"rpc.network":        cfg.RPC.Network,
		"tx_cache_size":      cfg.TxCacheSize,
		"tx_cache_ttl":       cfg.TxCacheTTL.String(),
		"lookup_concurrency": cfg.LookupConcurrency,
		"log_level":          cfg.LogLevel,
		"log_development":    cfg.LogDevelopment,
	}
}
