package offer

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// Request is a caller request entering the engine through Submit. It is
// implemented by IntentRequest, LegacyInputsRequest and RawHexRequest.
type Request interface {
	Validate() error
	isRequest()
}

// IntentRequest asks the engine to build one operation from the wallet's
// UTXOs. Exactly one field must be set.
type IntentRequest struct {
	ListPartial *ListPartialRequest
	ListOneshot *ListOneshotRequest
	Accept      *AcceptRequest
	Cancel      *CancelRequest
	Send        *SendRequest
	SendToken   *TokenSendRequest
}

func (IntentRequest) isRequest() {}

func (r IntentRequest) Validate() error {
	var set []interface{ Validate() error }
	if r.ListPartial != nil {
		set = append(set, r.ListPartial)
	}
	if r.ListOneshot != nil {
		set = append(set, r.ListOneshot)
	}
	if r.Accept != nil {
		set = append(set, r.Accept)
	}
	if r.Cancel != nil {
		set = append(set, r.Cancel)
	}
	if r.Send != nil {
		set = append(set, r.Send)
	}
	if r.SendToken != nil {
		set = append(set, r.SendToken)
	}
	if len(set) != 1 {
		return fmt.Errorf("%w: intent must set exactly one operation, got %d", ErrInvalidRequest, len(set))
	}
	return set[0].Validate()
}

// LegacyInputsRequest is an XEC send funded only from Inputs, which must all
// be plain outputs locked to the sender's key.
type LegacyInputsRequest struct {
	Send   SendRequest
	Inputs []*tx.UTXO
}

func (LegacyInputsRequest) isRequest() {}

func (r LegacyInputsRequest) Validate() error {
	if err := r.Send.Validate(); err != nil {
		return err
	}
	if len(r.Inputs) == 0 {
		return fmt.Errorf("%w: no inputs", ErrInvalidRequest)
	}
	for i, u := range r.Inputs {
		if u == nil {
			return fmt.Errorf("%w: input %d is nil", ErrInvalidRequest, i)
		}
		if _, err := tx.ValidateTxID(u.Outpoint.TxID); err != nil {
			return fmt.Errorf("%w: input %d: %w", ErrInvalidRequest, i, err)
		}
		if !u.IsPlain() {
			return fmt.Errorf("%w: input %d carries tokens", ErrInvalidRequest, i)
		}
	}
	return nil
}

// RawHexRequest broadcasts a transaction signed elsewhere.
type RawHexRequest struct {
	Hex string
}

func (RawHexRequest) isRequest() {}

func (r RawHexRequest) Validate() error {
	_, err := r.decode()
	return err
}

func (r RawHexRequest) decode() (*tx.Built, error) {
	s := strings.TrimSpace(r.Hex)
	if s == "" {
		return nil, fmt.Errorf("%w: empty transaction hex", ErrInvalidRequest)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction hex: %w", ErrInvalidRequest, err)
	}
	t, err := tx.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &tx.Built{Tx: t, Raw: raw, TxID: tx.TxIDHex(t)}, nil
}

// Submit validates req and runs it. Validation failures return a Draft
// result without touching the chain.
func (e *Engine) Submit(ctx context.Context, req Request) (*Result, error) {
	if req == nil {
		return &Result{State: StateDraft}, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return &Result{State: StateDraft}, err
	}
	switch r := req.(type) {
	case IntentRequest:
		return e.submitIntent(ctx, r)
	case LegacyInputsRequest:
		return e.submitLegacy(ctx, r)
	case RawHexRequest:
		return e.submitRaw(ctx, r)
	}
	return &Result{State: StateDraft}, fmt.Errorf("%w: unsupported request %T", ErrInvalidRequest, req)
}

func (e *Engine) submitIntent(ctx context.Context, r IntentRequest) (*Result, error) {
	switch {
	case r.ListPartial != nil:
		return e.ListPartial(ctx, *r.ListPartial)
	case r.ListOneshot != nil:
		return e.ListOneshot(ctx, *r.ListOneshot)
	case r.Accept != nil:
		return e.Accept(ctx, *r.Accept)
	case r.Cancel != nil:
		return e.Cancel(ctx, *r.Cancel)
	case r.Send != nil:
		return e.SendXEC(ctx, *r.Send)
	default:
		return e.SendToken(ctx, *r.SendToken)
	}
}

func (e *Engine) submitLegacy(ctx context.Context, r LegacyInputsRequest) (*Result, error) {
	res := &Result{State: StateDraft}
	o, err := newOwner(r.Send.Key)
	if err != nil {
		return res, err
	}
	for i, u := range r.Inputs {
		if !bytes.Equal(u.Script, o.script) {
			return res, fmt.Errorf("%w: input %d is not locked to the sender", ErrInvalidRequest, i)
		}
	}
	return res, e.sendXEC(ctx, res, o, r.Inputs, r.Send)
}

func (e *Engine) submitRaw(ctx context.Context, r RawHexRequest) (*Result, error) {
	built, err := r.decode()
	if err != nil {
		return &Result{State: StateDraft}, err
	}
	res := &Result{State: StateSigned, TxHex: built.Hex()}
	return res, e.broadcast(ctx, res, built)
}
