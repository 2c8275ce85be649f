package wallet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// NetworkConfig defines network parameters for an eCash network.
type NetworkConfig struct {
	Name           string `json:"name"`
	CashAddrPrefix string `json:"cashaddr_prefix"`
	DefaultPort    uint16 `json:"default_port"`
	RPCPort        uint16 `json:"rpc_port"`
	GenesisHash    string `json:"genesis_hash"`
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{
		Name:           "mainnet",
		CashAddrPrefix: "ecash",
		DefaultPort:    8333,
		RPCPort:        8332,
		GenesisHash:    "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
	}

	TestNet = NetworkConfig{
		Name:           "testnet",
		CashAddrPrefix: "ectest",
		DefaultPort:    18333,
		RPCPort:        18332,
		GenesisHash:    "000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
	}

	RegTest = NetworkConfig{
		Name:           "regtest",
		CashAddrPrefix: "ecregtest",
		DefaultPort:    18444,
		RPCPort:        18443,
		GenesisHash:    "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
	}
)

// predefined maps network names to their configs.
var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// LoadCustomNetwork loads a NetworkConfig from a JSON file.
func LoadCustomNetwork(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to read network config: %w", err)
	}

	var config NetworkConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("wallet: failed to parse network config: %w", err)
	}

	if config.Name == "" {
		return nil, fmt.Errorf("wallet: network config must have a name")
	}
	if config.CashAddrPrefix == "" {
		return nil, fmt.Errorf("%w: network %q has no cashaddr prefix", ErrInvalidNetwork, config.Name)
	}

	return &config, nil
}

// Address encodes the output script as a cashaddr of this network. Only
// P2PKH and P2SH scripts have an address.
func (n *NetworkConfig) Address(lockingScript []byte) (string, error) {
	if hash, ok := tx.P2PKHHash(lockingScript); ok {
		return EncodeCashAddr(n.CashAddrPrefix, AddrP2PKH, hash)
	}
	if hash, ok := tx.P2SHHash(lockingScript); ok {
		return EncodeCashAddr(n.CashAddrPrefix, AddrP2SH, hash)
	}
	return "", fmt.Errorf("%w: script has no address form", ErrInvalidAddress)
}

// LockingScript decodes a cashaddr of this network into its output script.
// The prefix may be omitted.
func (n *NetworkConfig) LockingScript(addr string) ([]byte, error) {
	prefix, typ, hash, err := DecodeCashAddr(addr, n.CashAddrPrefix)
	if err != nil {
		return nil, err
	}
	if prefix != n.CashAddrPrefix {
		return nil, fmt.Errorf("%w: prefix %q on %s", ErrWrongNetwork, prefix, n.Name)
	}
	switch typ {
	case AddrP2PKH:
		return tx.P2PKHScript(hash)
	case AddrP2SH:
		return tx.P2SHScriptFromHash(hash)
	}
	return nil, fmt.Errorf("%w: address type %d", ErrInvalidAddress, typ)
}
