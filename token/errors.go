package token

import "errors"

var (
	// ErrMalformedPayload indicates a recognized payload is truncated or corrupt.
	ErrMalformedPayload = errors.New("token: malformed payload")

	// ErrUnsupportedProtocol indicates a token type or message this codec does not handle.
	ErrUnsupportedProtocol = errors.New("token: unsupported protocol")

	// ErrAmountOutOfRange indicates an amount does not fit the protocol's integer width.
	ErrAmountOutOfRange = errors.New("token: amount out of range")

	// ErrInvalidTokenID indicates a token id is not 32 bytes of hex.
	ErrInvalidTokenID = errors.New("token: token id must be 64 hex characters")

	// ErrTooManyOutputs indicates a message lists more amounts than the protocol allows.
	ErrTooManyOutputs = errors.New("token: too many outputs")

	// ErrInvalidGenesis indicates genesis metadata violates protocol limits.
	ErrInvalidGenesis = errors.New("token: invalid genesis info")
)
