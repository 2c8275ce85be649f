package wallet

import (
	"fmt"
	"strings"

	"github.com/gcash/bchd/chaincfg"
	"github.com/gcash/bchutil"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// AddrType is the cashaddr version type.
type AddrType byte

const (
	AddrP2PKH AddrType = 0
	AddrP2SH  AddrType = 1
)

const cashAddrCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// chainParams carries prefix the way bchutil expects it.
func chainParams(name, prefix string) *chaincfg.Params {
	return &chaincfg.Params{Name: name, CashAddressPrefix: prefix}
}

// EncodeCashAddr encodes a 20-byte hash as "prefix:payload".
func EncodeCashAddr(prefix string, typ AddrType, hash []byte) (string, error) {
	if len(hash) != tx.PubKeyHashLen {
		return "", fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidAddress, tx.PubKeyHashLen, len(hash))
	}
	if prefix == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrInvalidAddress)
	}
	prefix = strings.ToLower(prefix)
	params := chainParams(prefix, prefix)

	var addr bchutil.Address
	var err error
	switch typ {
	case AddrP2PKH:
		addr, err = bchutil.NewAddressPubKeyHash(hash, params)
	case AddrP2SH:
		addr, err = bchutil.NewAddressScriptHashFromHash(hash, params)
	default:
		return "", fmt.Errorf("%w: address type %d", ErrInvalidAddress, typ)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return withPrefix(prefix, addr.EncodeAddress()), nil
}

// DecodeCashAddr decodes a cashaddr. When addr carries no prefix,
// defaultPrefix is used for the checksum. Mixed case and legacy base58
// addresses are rejected.
func DecodeCashAddr(addr, defaultPrefix string) (prefix string, typ AddrType, hash []byte, err error) {
	if strings.ToLower(addr) != addr && strings.ToUpper(addr) != addr {
		return "", 0, nil, fmt.Errorf("%w: mixed case", ErrInvalidAddress)
	}
	addr = strings.ToLower(addr)

	prefix, body, found := strings.Cut(addr, ":")
	if !found {
		prefix, body = strings.ToLower(defaultPrefix), addr
	}
	if prefix == "" || len(body) < 8 {
		return "", 0, nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if i := strings.IndexFunc(body, func(r rune) bool { return !strings.ContainsRune(cashAddrCharset, r) }); i >= 0 {
		return "", 0, nil, fmt.Errorf("%w: invalid character %q", ErrInvalidAddress, body[i])
	}

	decoded, err := bchutil.DecodeAddress(prefix+":"+body, chainParams(prefix, prefix))
	if err != nil {
		return "", 0, nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	switch a := decoded.(type) {
	case *bchutil.AddressPubKeyHash:
		typ = AddrP2PKH
		hash = a.ScriptAddress()
	case *bchutil.AddressScriptHash:
		typ = AddrP2SH
		hash = a.ScriptAddress()
	default:
		return "", 0, nil, fmt.Errorf("%w: unsupported address %T", ErrInvalidAddress, decoded)
	}
	return prefix, typ, append([]byte(nil), hash...), nil
}

// withPrefix returns encoded as "prefix:payload" whether or not bchutil
// already included the prefix.
func withPrefix(prefix, encoded string) string {
	if strings.HasPrefix(encoded, prefix+":") {
		return encoded
	}
	return prefix + ":" + encoded
}
