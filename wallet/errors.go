package wallet

import "errors"

var (
	// ErrInvalidNetwork indicates unknown network name with no custom config.
	ErrInvalidNetwork = errors.New("wallet: invalid network name")

	// ErrInvalidAddress indicates a malformed cashaddr or an unsupported address type.
	ErrInvalidAddress = errors.New("wallet: invalid address")

	// ErrWrongNetwork indicates an address belongs to another network.
	ErrWrongNetwork = errors.New("wallet: address is for another network")
)
