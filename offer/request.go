package offer

import (
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/xolosArmy/RMZWallet-sub000/agora"
	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// ListPartialRequest lists a divisible offer of TokenID.
type ListPartialRequest struct {
	Key                  *ec.PrivateKey
	TokenID              string
	OfferedAtoms         uint64 // rounded down to the offer's truncation unit
	PriceNanoSatsPerAtom uint64
	MinAcceptedAtoms     uint64
	EnforcedLockTime     uint32
	ScriptIntegerBits    uint // 0 for agora.DefaultScriptIntegerBits
}

func (r ListPartialRequest) Validate() error {
	if err := validateKeyAndToken(r.Key, r.TokenID); err != nil {
		return err
	}
	if r.OfferedAtoms == 0 {
		return fmt.Errorf("%w: zero offered atoms", ErrInvalidRequest)
	}
	if r.PriceNanoSatsPerAtom == 0 {
		return fmt.Errorf("%w: zero price", ErrInvalidRequest)
	}
	if r.MinAcceptedAtoms == 0 || r.MinAcceptedAtoms > r.OfferedAtoms {
		return fmt.Errorf("%w: minimum accept %d not in [1, %d]", ErrInvalidRequest, r.MinAcceptedAtoms, r.OfferedAtoms)
	}
	return nil
}

// ListOneshotRequest lists all of OfferedAtoms for exactly AskedSats.
type ListOneshotRequest struct {
	Key          *ec.PrivateKey
	TokenID      string
	OfferedAtoms uint64
	AskedSats    uint64
}

func (r ListOneshotRequest) Validate() error {
	if err := validateKeyAndToken(r.Key, r.TokenID); err != nil {
		return err
	}
	if r.OfferedAtoms == 0 {
		return fmt.Errorf("%w: zero offered atoms", ErrInvalidRequest)
	}
	if r.AskedSats < tx.DustLimit {
		return fmt.Errorf("%w: asked %d sats, below dust", ErrInvalidRequest, r.AskedSats)
	}
	return nil
}

// AcceptRequest buys from the offer at OfferID. AcceptedAtoms of 0 takes the
// whole offer; partial amounts are rounded down to the offer's granularity.
type AcceptRequest struct {
	Key           *ec.PrivateKey
	OfferID       string
	TokenID       string
	AcceptedAtoms uint64
}

func (r AcceptRequest) Validate() error {
	if err := validateKeyAndToken(r.Key, r.TokenID); err != nil {
		return err
	}
	_, err := agora.ParseOfferID(r.OfferID)
	return err
}

// CancelRequest returns the offer's tokens to the maker.
type CancelRequest struct {
	Key     *ec.PrivateKey
	OfferID string
	TokenID string
}

func (r CancelRequest) Validate() error {
	if err := validateKeyAndToken(r.Key, r.TokenID); err != nil {
		return err
	}
	_, err := agora.ParseOfferID(r.OfferID)
	return err
}

// ServiceFee is an extra payment attached to a send.
type ServiceFee struct {
	Address string
	Sats    uint64
}

// SendRequest pays AmountSats to To, optionally with an OP_RETURN message
// and a service fee.
type SendRequest struct {
	Key        *ec.PrivateKey
	To         string
	AmountSats uint64
	Message    string
	ServiceFee *ServiceFee
}

func (r SendRequest) Validate() error {
	if r.Key == nil {
		return fmt.Errorf("%w: missing key", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidRequest)
	}
	if r.AmountSats < tx.DustLimit {
		return fmt.Errorf("%w: amount %d below dust", ErrInvalidRequest, r.AmountSats)
	}
	if f := r.ServiceFee; f != nil {
		if strings.TrimSpace(f.Address) == "" {
			return fmt.Errorf("%w: service fee without address", ErrInvalidRequest)
		}
		if f.Sats < tx.DustLimit {
			return fmt.Errorf("%w: service fee %d below dust", ErrInvalidRequest, f.Sats)
		}
	}
	return nil
}

// TokenSendRequest sends Atoms of TokenID to To.
type TokenSendRequest struct {
	Key     *ec.PrivateKey
	TokenID string
	To      string
	Atoms   uint64
}

func (r TokenSendRequest) Validate() error {
	if err := validateKeyAndToken(r.Key, r.TokenID); err != nil {
		return err
	}
	if strings.TrimSpace(r.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidRequest)
	}
	if r.Atoms == 0 {
		return fmt.Errorf("%w: zero atoms", ErrInvalidRequest)
	}
	return nil
}

func validateKeyAndToken(key *ec.PrivateKey, tokenID string) error {
	if key == nil {
		return fmt.Errorf("%w: missing key", ErrInvalidRequest)
	}
	if _, err := tx.ValidateTxID(tokenID); err != nil {
		return fmt.Errorf("%w: token id: %w", ErrInvalidRequest, err)
	}
	return nil
}
