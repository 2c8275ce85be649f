package network

import (
	"fmt"
	"time"
)

// DefaultRPCTimeout bounds a single JSON-RPC round trip.
const DefaultRPCTimeout = 30 * time.Second

// RPCConfig holds the connection parameters for an eCash node's JSON-RPC interface.
type RPCConfig struct {
	URL      string        `json:"url" mapstructure:"url"`
	User     string        `json:"user" mapstructure:"user"`
	Password string        `json:"password" mapstructure:"password"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	Network  string        `json:"network" mapstructure:"network"`
}

// NetworkPresets contains default RPC configurations for local nodes.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "rmz", Password: "rmz"},
	"testnet": {URL: "http://localhost:18332", User: "rmz", Password: "rmz"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. explicit settings (highest priority)
//  2. environment variables (RMZ_RPC_URL, RMZ_RPC_USER, RMZ_RPC_PASS)
//  3. network presets (lowest priority, regtest/testnet only)
func ResolveConfig(explicit *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v := env["RMZ_RPC_URL"]; v != "" {
			result.URL = v
		}
		if v := env["RMZ_RPC_USER"]; v != "" {
			result.User = v
		}
		if v := env["RMZ_RPC_PASS"]; v != "" {
			result.Password = v
		}
	}

	if explicit != nil {
		if explicit.URL != "" {
			result.URL = explicit.URL
		}
		if explicit.User != "" {
			result.User = explicit.User
		}
		if explicit.Password != "" {
			result.Password = explicit.Password
		}
		if explicit.Timeout > 0 {
			result.Timeout = explicit.Timeout
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s has no preset (set RMZ_RPC_URL or rpc.url)", ErrMissingRPCURL, network)
	}
	if result.Timeout <= 0 {
		result.Timeout = DefaultRPCTimeout
	}
	return &result, nil
}
