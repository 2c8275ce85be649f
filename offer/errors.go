package offer

import "errors"

var (
	// ErrInvalidRequest indicates a request failed boundary validation.
	ErrInvalidRequest = errors.New("offer: invalid request")

	// ErrNoChainSource indicates the engine was built without a ChainDataSource.
	ErrNoChainSource = errors.New("offer: no chain data source")

	// ErrNotOfferOwner indicates the key cannot cancel the offer.
	ErrNotOfferOwner = errors.New("offer: key does not own the offer")

	// ErrOfferSpent indicates the offer's covenant output is already spent.
	ErrOfferSpent = errors.New("offer: offer already spent")

	// ErrMixedTokenUTXOs indicates the selected token UTXOs disagree on protocol or type.
	ErrMixedTokenUTXOs = errors.New("offer: token UTXOs of mixed protocol or type")
)
