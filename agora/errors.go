package agora

import (
	"errors"

	"github.com/xolosArmy/RMZWallet-sub000/token"
)

var (
	// ErrInvalidOfferID indicates an offer id is neither "txid:vout" nor {"txid","vout"} JSON.
	ErrInvalidOfferID = errors.New("agora: invalid offer id")

	// ErrGranularityMismatch indicates an atom amount is not a multiple of the
	// offer's truncation unit.
	ErrGranularityMismatch = errors.New("agora: amount does not match offer granularity")

	// ErrTokenMismatch indicates the offer holds a different token than expected.
	ErrTokenMismatch = errors.New("agora: token id mismatch")

	// ErrBelowMinimumAccept indicates a partial accept under the offer's floor.
	ErrBelowMinimumAccept = errors.New("agora: accepted amount below offer minimum")

	// ErrNotCovenant indicates the output is not a funded agora covenant.
	ErrNotCovenant = errors.New("agora: output is not an agora offer")

	// ErrInvalidParams indicates offer parameters that cannot form a valid offer.
	ErrInvalidParams = errors.New("agora: invalid offer parameters")

	// ErrPriceOutOfRange indicates a price the covenant integers cannot represent.
	ErrPriceOutOfRange = errors.New("agora: price out of range")

	// ErrOverflow indicates an intermediate amount exceeds 64 bits.
	ErrOverflow = errors.New("agora: arithmetic overflow")

	// ErrWrongInput indicates an ad signatory was asked to sign an input it is not bound to.
	ErrWrongInput = errors.New("agora: signatory not bound to this input")
)

// Token codec errors surface unchanged from offer decoding.
var (
	ErrUnsupportedProtocol = token.ErrUnsupportedProtocol
	ErrMalformedPayload    = token.ErrMalformedPayload
)
