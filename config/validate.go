// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
	"github.com/xolosArmy/RMZWallet-sub000/wallet"
)

// MinRelayFeeRate is the lowest fee rate (sat/kB) nodes relay.
const MinRelayFeeRate = 1000

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.NetworkFile != "" {
		if _, err := wallet.LoadCustomNetwork(cfg.NetworkFile); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
		}
	} else if _, err := wallet.GetNetwork(cfg.Network); err != nil {
		return ErrInvalidNetwork
	}

	if cfg.FeeRatePerKb < MinRelayFeeRate {
		return fmt.Errorf("%w: %d < %d sat/kB", ErrFeeRateTooLow, cfg.FeeRatePerKb, MinRelayFeeRate)
	}

	if cfg.DustSats < tx.DustLimit {
		return fmt.Errorf("%w: %d < %d", ErrDustTooLow, cfg.DustSats, tx.DustLimit)
	}

	if cfg.RPC.URL != "" {
		if err := validateURL(cfg.RPC.URL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRPCURL, err)
		}
	}

	if cfg.TxCacheSize < 0 || cfg.TxCacheTTL < 0 {
		return ErrInvalidCache
	}

	if cfg.LookupConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
