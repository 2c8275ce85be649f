// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrFeeRateTooLow indicates the fee rate is below the minimum relay rate.
	ErrFeeRateTooLow = errors.New("config: fee rate below minimum relay fee")

	// ErrDustTooLow indicates the dust threshold is below the network dust limit.
	ErrDustTooLow = errors.New("config: dust below network dust limit")

	// ErrInvalidRPCURL indicates the node RPC URL is malformed.
	ErrInvalidRPCURL = errors.New("config: invalid RPC URL")

	// ErrInvalidCache indicates a negative cache size or TTL.
	ErrInvalidCache = errors.New("config: invalid tx cache settings")

	// ErrInvalidConcurrency indicates the lookup concurrency is not positive.
	ErrInvalidConcurrency = errors.New("config: lookup concurrency must be positive")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the configuration file cannot be parsed.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")
)
