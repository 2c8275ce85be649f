package agora

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	crypto "github.com/bsv-blockchain/go-sdk/primitives/hash"
	sighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"

	"github.com/xolosArmy/RMZWallet-sub000/tx"
)

// Branch selects the covenant path an unlocker takes.
type Branch byte

const (
	// BranchAccept spends the offer to a buyer.
	BranchAccept Branch = iota
	// BranchCancel returns the offer to its maker.
	BranchCancel
)

// maxCovenantSigLen is the longest low-S DER signature without a sighash byte.
const maxCovenantSigLen = tx.MaxSignatureLen - 1

// CovenantUnlocker spends an offer output through one covenant branch.
//
//	accept:  <covSig> <preimage prefix> <taker outputs> [<scaled>] OP_1 <redeem>
//	cancel:  <sig> OP_0 <redeem>
//
// The input's ScriptCode must be the offer's ScriptCode.
type CovenantUnlocker struct {
	key         *ec.PrivateKey
	redeem      []byte
	scriptCode  []byte
	branch      Branch
	enforced    int
	partial     bool
	scaled      int64
	takerBound  int
	placeholder bool
}

// NewAcceptUnlocker returns the unlocker a buyer uses on an offer output
// for plan. takerBound is the largest serialized size of the outputs after
// the enforced ones; it sizes the placeholder before they are final.
func NewAcceptUnlocker(o *Offer, plan *AcceptPlan, takerBound int) (*CovenantUnlocker, error) {
	if o == nil || plan == nil {
		return nil, fmt.Errorf("%w: offer and plan", tx.ErrNilParam)
	}
	if len(o.RedeemScript) == 0 || len(o.ScriptCode) == 0 {
		return nil, fmt.Errorf("%w: offer without covenant scripts", ErrInvalidParams)
	}
	c := &CovenantUnlocker{
		key:        covenantKey,
		redeem:     o.RedeemScript,
		scriptCode: o.ScriptCode,
		branch:     BranchAccept,
		enforced:   int(plan.BuyerVout),
		takerBound: takerBound,
	}
	if p := o.Partial; p != nil {
		scaled, ok := fit64(mulWide(plan.AcceptedAtoms>>p.atomShift(), p.AtomsScaleFactor))
		if !ok || scaled > maxScriptInt {
			return nil, fmt.Errorf("%w: %d accepted atoms", ErrOverflow, plan.AcceptedAtoms)
		}
		c.partial, c.scaled = true, int64(scaled)
	}
	return c, nil
}

// NewCancelUnlocker returns the unlocker the maker uses to reclaim an offer.
// key must be the offer's cancel key.
func NewCancelUnlocker(key *ec.PrivateKey, o *Offer) (*CovenantUnlocker, error) {
	if key == nil || o == nil {
		return nil, fmt.Errorf("%w: cancel key and offer", tx.ErrNilParam)
	}
	if !bytes.Equal(key.PubKey().Compressed(), o.CancelPk()) {
		return nil, fmt.Errorf("%w: key does not control this covenant", ErrInvalidParams)
	}
	return &CovenantUnlocker{key: key, redeem: o.RedeemScript, scriptCode: o.ScriptCode, branch: BranchCancel}, nil
}

// Branch returns the path this unlocker takes.
func (c *CovenantUnlocker) Branch() Branch { return c.branch }

func (c *CovenantUnlocker) Sign(t *transaction.Transaction, inputIndex uint32) (*script.Script, error) {
	b := &scriptBuilder{}
	if c.branch == BranchCancel {
		sig := tx.PlaceholderSignature()
		if !c.placeholder {
			var err error
			if sig, err = tx.SignInput(t, inputIndex, c.key); err != nil {
				return nil, err
			}
		}
		b.push(sig).num(0)
	} else {
		covSig, prefix, taker, err := c.acceptPushes(t, inputIndex)
		if err != nil {
			return nil, err
		}
		b.push(covSig).push(prefix).push(taker)
		if c.partial {
			b.num(c.scaled)
		}
		b.num(1)
	}
	b.push(c.redeem)
	s, err := b.script()
	if err != nil {
		return nil, err
	}
	return script.NewFromBytes(s), nil
}

// acceptPushes returns the covenant signature over the input's preimage,
// the preimage up to hashOutputs, and the outputs the covenant does not
// rebuild.
func (c *CovenantUnlocker) acceptPushes(t *transaction.Transaction, inputIndex uint32) (covSig, prefix, taker []byte, err error) {
	if c.placeholder {
		n := c.takerBound
		if t != nil && len(t.Outputs) > c.enforced {
			n = max(n, len(takerOutputs(t, c.enforced)))
		}
		covSig = make([]byte, maxCovenantSigLen)
		covSig[0] = 0x30
		return covSig, make([]byte, preimagePrefixLen(c.scriptCode)), make([]byte, n), nil
	}
	if t == nil || len(t.Outputs) <= c.enforced {
		return nil, nil, nil, fmt.Errorf("%w: accept needs outputs after the %d enforced", ErrInvalidParams, c.enforced)
	}
	preimage, err := t.CalcInputPreimage(inputIndex, sighash.AllForkID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: preimage for input %d: %w", tx.ErrSigningFailed, inputIndex, err)
	}
	prefix = preimage[:len(preimage)-preimageTailLen]
	at := scriptCodeAt(c.scriptCode)
	if len(prefix) != preimagePrefixLen(c.scriptCode) || !bytes.Equal(prefix[at:at+len(c.scriptCode)], c.scriptCode) {
		return nil, nil, nil, fmt.Errorf("%w: input %d is not signed over the covenant script code", ErrInvalidParams, inputIndex)
	}
	taker = takerOutputs(t, c.enforced)
	if len(takerOutputs(t, 0)) > maxScriptElementSize {
		return nil, nil, nil, fmt.Errorf("%w: outputs exceed %d bytes", ErrInvalidParams, maxScriptElementSize)
	}
	sig, err := c.key.Sign(crypto.Sha256d(preimage))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: covenant signature: %w", tx.ErrSigningFailed, err)
	}
	return sig.Serialize(), prefix, taker, nil
}

// takerOutputs serializes the outputs of t from index from on.
func takerOutputs(t *transaction.Transaction, from int) []byte {
	var out []byte
	for _, o := range t.Outputs[from:] {
		out = append(out, o.Bytes()...)
	}
	return out
}

func (c *CovenantUnlocker) EstimateLength(t *transaction.Transaction, inputIndex uint32) uint32 {
	s, err := c.Placeholder().Sign(t, inputIndex)
	if err != nil {
		return 0
	}
	return uint32(len(*s))
}

// Placeholder returns an unlocker with the same shape and placeholder pushes.
func (c *CovenantUnlocker) Placeholder() tx.Signer {
	p := *c
	p.placeholder = true
	return &p
}

// AdSignatory can unlock exactly one ad-setup output: the one at outpoint
// whose redeem script is <ad> OP_DROP <pk> OP_CHECKSIG. It refuses any other
// input.
type AdSignatory struct {
	key         *ec.PrivateKey
	redeem      []byte
	outpoint    tx.Outpoint
	placeholder bool
}

// NewAdSignatory binds key to the ad-setup output at outpoint carrying ad.
func NewAdSignatory(key *ec.PrivateKey, ad []byte, outpoint tx.Outpoint) (*AdSignatory, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: ad key", tx.ErrNilParam)
	}
	redeem, err := AdSetupScript(ad, key.PubKey().Compressed())
	if err != nil {
		return nil, err
	}
	return &AdSignatory{key: key, redeem: redeem, outpoint: outpoint}, nil
}

// RedeemScript returns the ad-setup redeem script.
func (a *AdSignatory) RedeemScript() []byte { return a.redeem }

func (a *AdSignatory) Sign(t *transaction.Transaction, inputIndex uint32) (*script.Script, error) {
	sig := tx.PlaceholderSignature()
	if !a.placeholder {
		if int(inputIndex) >= len(t.Inputs) {
			return nil, fmt.Errorf("%w: input %d out of range", ErrWrongInput, inputIndex)
		}
		in := t.Inputs[inputIndex]
		if in.SourceTXID == nil || in.SourceTXID.String() != a.outpoint.TxID || in.SourceTxOutIndex != a.outpoint.Vout {
			return nil, fmt.Errorf("%w: input %d is not %s", ErrWrongInput, inputIndex, a.outpoint)
		}
		var err error
		if sig, err = tx.SignInput(t, inputIndex, a.key); err != nil {
			return nil, err
		}
	}
	s := &script.Script{}
	if err := s.AppendPushData(sig); err != nil {
		return nil, fmt.Errorf("%w: %w", tx.ErrScriptBuild, err)
	}
	if err := s.AppendPushData(a.redeem); err != nil {
		return nil, fmt.Errorf("%w: %w", tx.ErrScriptBuild, err)
	}
	return s, nil
}

func (a *AdSignatory) EstimateLength(t *transaction.Transaction, inputIndex uint32) uint32 {
	s, err := a.Placeholder().Sign(t, inputIndex)
	if err != nil {
		return 0
	}
	return uint32(len(*s))
}

// Placeholder returns a signatory with the same shape and a placeholder signature.
func (a *AdSignatory) Placeholder() tx.Signer {
	p := *a
	p.placeholder = true
	return &p
}
