package tx

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("tx: invalid parameters")

	// ErrInvalidTxID indicates a transaction id is not 64 hex characters.
	ErrInvalidTxID = errors.New("tx: txid must be 64 hex characters")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")

	// ErrInvalidOPReturn indicates the OP_RETURN script is malformed.
	ErrInvalidOPReturn = errors.New("tx: invalid OP_RETURN format")

	// ErrMessageTooLong indicates an OP_RETURN message exceeds the relay limit.
	ErrMessageTooLong = errors.New("tx: OP_RETURN message too long")

	// ErrNoPlaceholder indicates a signer cannot take part in a size measurement pass.
	ErrNoPlaceholder = errors.New("tx: signer has no placeholder for measurement")
)
